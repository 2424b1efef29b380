// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthWard Contributors

package exempt

import (
	"strings"

	"github.com/gobwas/glob"
	"github.com/samber/oops"

	"github.com/authward/authward/internal/config"
)

// Subject is what a rule is evaluated against.
type Subject struct {
	Name   string
	Groups []string
}

// compiledRule pairs a parsed rule with its precompiled glob patterns,
// keyed by the pattern text. Globs are compiled once at Matcher
// construction so evaluation is allocation-free.
type compiledRule struct {
	rule  *Rule
	globs map[string]glob.Glob
}

// Matcher evaluates the configured exemptions. Construction compiles
// every rule and pattern up front; a Matcher is immutable and safe for
// concurrent use.
type Matcher struct {
	rules []compiledRule
	names []glob.Glob
}

// NewMatcher compiles the exemption settings. Any rule or pattern that
// fails to compile rejects the whole configuration.
func NewMatcher(settings config.ExemptionSettings) (*Matcher, error) {
	m := &Matcher{}

	for _, text := range settings.Rules {
		rule, err := Parse(text)
		if err != nil {
			return nil, err
		}
		globs := make(map[string]glob.Glob)
		if err := compileGlobs(rule, globs); err != nil {
			return nil, oops.Code(CodeRuleInvalid).
				With("rule", text).
				Wrap(err)
		}
		m.rules = append(m.rules, compiledRule{rule: rule, globs: globs})
	}

	for _, pattern := range settings.UnrestrictedNames {
		g, err := glob.Compile(strings.ToLower(pattern))
		if err != nil {
			return nil, oops.Code(CodeRuleInvalid).
				With("pattern", pattern).
				Wrapf(err, "compiling unrestricted name pattern")
		}
		m.names = append(m.names, g)
	}

	return m, nil
}

// Exempt reports whether the subject bypasses the gate, either through
// a rule or an unrestricted-name pattern.
func (m *Matcher) Exempt(subject Subject) bool {
	if m.UnrestrictedName(subject.Name) {
		return true
	}
	for _, cr := range m.rules {
		if cr.eval(subject) {
			return true
		}
	}
	return false
}

// UnrestrictedName reports whether the name matches an
// unrestricted-name pattern. Matching is case-insensitive.
func (m *Matcher) UnrestrictedName(name string) bool {
	lower := strings.ToLower(name)
	for _, g := range m.names {
		if g.Match(lower) {
			return true
		}
	}
	return false
}

func compileGlobs(rule *Rule, into map[string]glob.Glob) error {
	if rule.Or == nil {
		return nil
	}
	return walkPredicates(rule.Or, func(p *Predicate) error {
		if p.Op != "like" {
			return nil
		}
		g, err := glob.Compile(strings.ToLower(p.Value))
		if err != nil {
			return err
		}
		into[p.Value] = g
		return nil
	})
}

func walkPredicates(or *OrExpr, fn func(*Predicate) error) error {
	for _, and := range or.Terms {
		for _, term := range and.Terms {
			if err := walkTerm(term, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

func walkTerm(t *Term, fn func(*Predicate) error) error {
	switch {
	case t.Negation != nil:
		return walkTerm(t.Negation, fn)
	case t.Grouped != nil:
		return walkPredicates(t.Grouped, fn)
	case t.Predicate != nil:
		return fn(t.Predicate)
	}
	return nil
}

func (c compiledRule) eval(subject Subject) bool {
	if c.rule.Any {
		return true
	}
	if c.rule.Or == nil {
		return false
	}
	return c.evalOr(c.rule.Or, subject)
}

func (c compiledRule) evalOr(or *OrExpr, subject Subject) bool {
	for _, and := range or.Terms {
		if c.evalAnd(and, subject) {
			return true
		}
	}
	return false
}

func (c compiledRule) evalAnd(and *AndExpr, subject Subject) bool {
	for _, term := range and.Terms {
		if !c.evalTerm(term, subject) {
			return false
		}
	}
	return true
}

func (c compiledRule) evalTerm(t *Term, subject Subject) bool {
	switch {
	case t.Negation != nil:
		return !c.evalTerm(t.Negation, subject)
	case t.Grouped != nil:
		return c.evalOr(t.Grouped, subject)
	case t.Predicate != nil:
		return c.evalPredicate(t.Predicate, subject)
	}
	return false
}

func (c compiledRule) evalPredicate(p *Predicate, subject Subject) bool {
	match := func(value string) bool {
		if p.Op == "like" {
			if g, ok := c.globs[p.Value]; ok {
				return g.Match(strings.ToLower(value))
			}
			return false
		}
		return strings.EqualFold(value, p.Value)
	}

	switch p.Field {
	case "name":
		return match(subject.Name)
	case "group":
		for _, g := range subject.Groups {
			if match(g) {
				return true
			}
		}
	}
	return false
}
