// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthWard Contributors

// Package exempt decides which actors bypass the authentication gate.
// Exemptions come from two sources: rules written in a small DSL
// (e.g. `group is "staff"`) and glob patterns over actor names.
package exempt

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/samber/oops"
)

// CodeRuleInvalid is the error code for rules that fail to parse or
// compile.
const CodeRuleInvalid = "EXEMPT_RULE_INVALID"

// MaxNestingDepth is the maximum allowed nesting depth for rule terms.
const MaxNestingDepth = 16

// ruleLexer defines the token types for the exemption rule DSL.
var ruleLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"[^"]*"`},
	{Name: "Ident", Pattern: `[a-zA-Z_]\w*`},
	{Name: "Punct", Pattern: `[()]`},
	{Name: "whitespace", Pattern: `\s+`},
})

// Rule is the root of a parsed exemption rule.
//
// Grammar: "any" | or_expr
type Rule struct {
	Pos lexer.Position `parser:"" json:"-"`
	Any bool           `parser:"  @'any'" json:"any,omitempty"`
	Or  *OrExpr        `parser:"| @@" json:"or,omitempty"`
}

// OrExpr holds one or more and-expressions separated by "or".
type OrExpr struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Terms []*AndExpr     `parser:"@@ ('or' @@)*" json:"terms"`
}

// AndExpr holds one or more terms separated by "and".
type AndExpr struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Terms []*Term        `parser:"@@ ('and' @@)*" json:"terms"`
}

// Term is a negation, a parenthesized group, or a bare predicate.
type Term struct {
	Pos       lexer.Position `parser:"" json:"-"`
	Negation  *Term          `parser:"  'not' @@" json:"negation,omitempty"`
	Grouped   *OrExpr        `parser:"| '(' @@ ')'" json:"grouped,omitempty"`
	Predicate *Predicate     `parser:"| @@" json:"predicate,omitempty"`
}

// Predicate matches: ("name" | "group") ("is" | "like") string_literal
//
// "is" compares case-insensitively; "like" matches a glob pattern.
type Predicate struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Field string         `parser:"@('name' | 'group')" json:"field"`
	Op    string         `parser:"@('is' | 'like')" json:"op"`
	Value string         `parser:"@String" json:"value"`
}

// parser is the singleton participle parser instance.
var parser *participle.Parser[Rule]

func init() {
	var err error
	parser, err = NewParser()
	if err != nil {
		panic(fmt.Sprintf("failed to build exemption rule parser: %v", err))
	}
}

// NewParser constructs a participle parser for the Rule grammar.
func NewParser() (*participle.Parser[Rule], error) {
	return participle.Build[Rule](
		participle.Lexer(ruleLexer),
		participle.Unquote("String"),
	)
}

// Parse parses one exemption rule into an AST.
func Parse(ruleText string) (*Rule, error) {
	rule, err := parser.ParseString("", ruleText)
	if err != nil {
		return nil, oops.Code(CodeRuleInvalid).
			With("rule", ruleText).
			Wrapf(err, "parsing exemption rule")
	}
	if rule.Or != nil {
		if err := validateOr(rule.Or, 0); err != nil {
			return nil, oops.Code(CodeRuleInvalid).
				With("rule", ruleText).
				Wrap(err)
		}
	}
	return rule, nil
}

func validateOr(or *OrExpr, depth int) error {
	if depth > MaxNestingDepth {
		return fmt.Errorf("nesting depth exceeds maximum of %d", MaxNestingDepth)
	}
	for _, and := range or.Terms {
		for _, term := range and.Terms {
			if err := validateTerm(term, depth); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateTerm(t *Term, depth int) error {
	switch {
	case t.Negation != nil:
		return validateTerm(t.Negation, depth+1)
	case t.Grouped != nil:
		return validateOr(t.Grouped, depth+1)
	case t.Predicate != nil:
		if t.Predicate.Value == "" {
			return fmt.Errorf("predicate value must not be empty")
		}
	}
	return nil
}
