// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthWard Contributors

// Package config loads and validates the AuthWard configuration.
package config

import (
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/samber/oops"
)

// SupportedSchemaRange is the semver constraint a config file's
// schema_version must satisfy.
const SupportedSchemaRange = "^1"

// Error codes for configuration failures.
const (
	CodeConfigInvalid       = "CONFIG_INVALID"
	CodeConfigSchemaVersion = "CONFIG_SCHEMA_VERSION"
)

// Settings is the full AuthWard configuration tree.
type Settings struct {
	SchemaVersion string                `koanf:"schema_version" json:"schema_version" jsonschema:"required"`
	Log           LogSettings           `koanf:"log" json:"log"`
	Database      DatabaseSettings      `koanf:"database" json:"database"`
	Observability ObservabilitySettings `koanf:"observability" json:"observability"`
	Restrictions  RestrictionSettings   `koanf:"restrictions" json:"restrictions"`
	Registration  RegistrationSettings  `koanf:"registration" json:"registration"`
	Names         NameSettings          `koanf:"names" json:"names"`
	Protection    ProtectionSettings    `koanf:"protection" json:"protection"`
	AntiBot       AntiBotSettings       `koanf:"antibot" json:"antibot"`
	Exemptions    ExemptionSettings     `koanf:"exemptions" json:"exemptions"`
}

// LogSettings configures structured logging.
type LogSettings struct {
	// Format is "json" or "text".
	Format string `koanf:"format" json:"format"`
}

// DatabaseSettings configures the PostgreSQL account store.
type DatabaseSettings struct {
	URL         string `koanf:"url" json:"url"`
	AutoMigrate bool   `koanf:"auto_migrate" json:"auto_migrate"`
}

// ObservabilitySettings configures the metrics/health HTTP server.
type ObservabilitySettings struct {
	Addr string `koanf:"addr" json:"addr"`
}

// RestrictionSettings gates what unauthenticated players may do.
type RestrictionSettings struct {
	AllowChat       bool     `koanf:"allow_chat" json:"allow_chat"`
	HideChat        bool     `koanf:"hide_chat" json:"hide_chat"`
	AllowedCommands []string `koanf:"allowed_commands" json:"allowed_commands"`
	MotdPassthrough bool     `koanf:"motd_passthrough" json:"motd_passthrough"`

	AllowedMovementRadius int  `koanf:"allowed_movement_radius" json:"allowed_movement_radius"`
	AllowUnauthedMovement bool `koanf:"allow_unauthed_movement" json:"allow_unauthed_movement"`
	RemoveSpeed           bool `koanf:"remove_speed" json:"remove_speed"`
	NoTeleport            bool `koanf:"no_teleport" json:"no_teleport"`

	SaveQuitLocation   bool `koanf:"save_quit_location" json:"save_quit_location"`
	ForceSingleSession bool `koanf:"force_single_session" json:"force_single_session"`
	AcceptCaseDrift    bool `koanf:"accept_case_drift" json:"accept_case_drift"`

	// UnrestrictedActions disables suppression for the named action
	// categories (e.g. "pickup", "fish") regardless of auth state.
	UnrestrictedActions []string `koanf:"unrestricted_actions" json:"unrestricted_actions"`
}

// Restricts reports whether the restriction flag for an action category is
// enabled. Chat honours allow_chat; every other category is restricted
// unless listed in unrestricted_actions.
func (r RestrictionSettings) Restricts(category string) bool {
	for _, c := range r.UnrestrictedActions {
		if strings.EqualFold(c, category) {
			return false
		}
	}
	if strings.EqualFold(category, "chat") {
		return !r.AllowChat
	}
	return true
}

// RegistrationSettings controls registration enforcement and join/quit
// broadcast handling.
type RegistrationSettings struct {
	Force               bool `koanf:"force" json:"force"`
	DelayJoinMessage    bool `koanf:"delay_join_message" json:"delay_join_message"`
	RemoveJoinMessages  bool `koanf:"remove_join_messages" json:"remove_join_messages"`
	RemoveLeaveMessages bool `koanf:"remove_leave_messages" json:"remove_leave_messages"`
}

// NameSettings is the character/length policy for presented names.
type NameSettings struct {
	Pattern   string `koanf:"pattern" json:"pattern"`
	MinLength int    `koanf:"min_length" json:"min_length"`
	MaxLength int    `koanf:"max_length" json:"max_length"`
}

// ProtectionSettings is the country filter for first-time connections.
// Registered identities bypass the filter entirely.
type ProtectionSettings struct {
	Enabled          bool     `koanf:"enabled" json:"enabled"`
	CountryWhitelist []string `koanf:"country_whitelist" json:"country_whitelist"`
	CountryBlacklist []string `koanf:"country_blacklist" json:"country_blacklist"`
}

// CountryAdmitted reports whether a resolved country code passes the
// filter. An empty whitelist admits everything not blacklisted.
func (p ProtectionSettings) CountryAdmitted(code string) bool {
	if !p.Enabled {
		return true
	}
	for _, c := range p.CountryBlacklist {
		if strings.EqualFold(c, code) {
			return false
		}
	}
	if len(p.CountryWhitelist) == 0 {
		return true
	}
	for _, c := range p.CountryWhitelist {
		if strings.EqualFold(c, code) {
			return true
		}
	}
	return false
}

// AntiBotSettings tunes the connection burst sensor.
type AntiBotSettings struct {
	Enabled bool `koanf:"enabled" json:"enabled"`
	// Sensitivity is the number of connections within the interval that
	// flips the sensor into reject mode.
	Sensitivity int `koanf:"sensitivity" json:"sensitivity"`
	// IntervalSeconds is the sliding window length.
	IntervalSeconds int `koanf:"interval_seconds" json:"interval_seconds"`
	// DurationMinutes is how long reject mode lasts before the sensor
	// resets (and the guard's kicked-set is cleared).
	DurationMinutes int `koanf:"duration_minutes" json:"duration_minutes"`
}

// ExemptionSettings lists actors that bypass the action gate.
type ExemptionSettings struct {
	// Rules are exemption rules in the rule DSL, e.g. `group is "staff"`.
	Rules []string `koanf:"rules" json:"rules"`
	// UnrestrictedNames are glob patterns of names that are never gated.
	UnrestrictedNames []string `koanf:"unrestricted_names" json:"unrestricted_names"`
}

// Default returns the settings used when no config file is supplied.
func Default() Settings {
	return Settings{
		SchemaVersion: "1.0.0",
		Log:           LogSettings{Format: "json"},
		Database:      DatabaseSettings{AutoMigrate: true},
		Observability: ObservabilitySettings{Addr: "127.0.0.1:9464"},
		Restrictions: RestrictionSettings{
			AllowedCommands:       []string{"/login", "/register", "/l", "/reg"},
			AllowedMovementRadius: 100,
			ForceSingleSession:    true,
			SaveQuitLocation:      true,
		},
		Registration: RegistrationSettings{},
		Names: NameSettings{
			Pattern:   `^[a-zA-Z0-9_]+$`,
			MinLength: 3,
			MaxLength: 16,
		},
		AntiBot: AntiBotSettings{
			Sensitivity:     5,
			IntervalSeconds: 5,
			DurationMinutes: 10,
		},
	}
}

// Validate checks cross-field consistency and the schema version gate.
func (s *Settings) Validate() error {
	version, err := semver.NewVersion(s.SchemaVersion)
	if err != nil {
		return oops.Code(CodeConfigSchemaVersion).
			With("schema_version", s.SchemaVersion).
			Wrap(err)
	}
	constraint, err := semver.NewConstraint(SupportedSchemaRange)
	if err != nil {
		return oops.Code(CodeConfigInvalid).Wrap(err)
	}
	if !constraint.Check(version) {
		return oops.Code(CodeConfigSchemaVersion).
			With("schema_version", s.SchemaVersion).
			With("supported", SupportedSchemaRange).
			Errorf("unsupported config schema version %s", s.SchemaVersion)
	}

	if s.Restrictions.AllowedMovementRadius < 0 {
		return oops.Code(CodeConfigInvalid).
			With("allowed_movement_radius", s.Restrictions.AllowedMovementRadius).
			Errorf("allowed_movement_radius must not be negative")
	}
	if s.Names.MinLength < 1 || s.Names.MaxLength < s.Names.MinLength {
		return oops.Code(CodeConfigInvalid).
			With("min_length", s.Names.MinLength).
			With("max_length", s.Names.MaxLength).
			Errorf("name length bounds are inconsistent")
	}
	if _, err := regexp.Compile(s.Names.Pattern); err != nil {
		return oops.Code(CodeConfigInvalid).
			With("pattern", s.Names.Pattern).
			Wrap(err)
	}
	if s.AntiBot.Sensitivity < 1 {
		return oops.Code(CodeConfigInvalid).
			With("sensitivity", s.AntiBot.Sensitivity).
			Errorf("antibot sensitivity must be at least 1")
	}
	if s.AntiBot.IntervalSeconds < 1 || s.AntiBot.DurationMinutes < 1 {
		return oops.Code(CodeConfigInvalid).
			Errorf("antibot interval and duration must be at least 1")
	}
	return nil
}
