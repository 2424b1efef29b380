// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthWard Contributors

package config

import (
	"os"
	"sync/atomic"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Load builds Settings from defaults, an optional YAML file, and optional
// command-line flag overrides, in that precedence order. The file is
// validated against the generated JSON schema before unmarshalling.
func Load(path string, flags *pflag.FlagSet) (*Settings, error) {
	settings := Default()
	k := koanf.New(".")

	if path != "" {
		raw, err := os.ReadFile(path) //nolint:gosec // path is operator-supplied
		if err != nil {
			return nil, oops.Code(CodeConfigInvalid).
				With("path", path).
				Wrap(err)
		}
		if err := ValidateYAML(raw); err != nil {
			return nil, oops.Code(CodeConfigInvalid).
				With("path", path).
				Wrap(err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code(CodeConfigInvalid).
				With("path", path).
				Wrap(err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code(CodeConfigInvalid).
				With("operation", "apply flag overrides").
				Wrap(err)
		}
	}

	if err := k.Unmarshal("", &settings); err != nil {
		return nil, oops.Code(CodeConfigInvalid).
			With("operation", "unmarshal settings").
			Wrap(err)
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Store publishes the current Settings to readers on any execution
// context. Components keep a *Store and call Current on every decision so
// option changes (e.g. a reload) take effect without restarts.
type Store struct {
	current atomic.Pointer[Settings]
}

// NewStore creates a Store holding the given settings.
func NewStore(s *Settings) *Store {
	st := &Store{}
	st.current.Store(s)
	return st
}

// Current returns the live settings. Callers must not mutate the result.
func (s *Store) Current() *Settings {
	return s.current.Load()
}

// Replace swaps in new settings atomically.
func (s *Store) Replace(next *Settings) {
	s.current.Store(next)
}
