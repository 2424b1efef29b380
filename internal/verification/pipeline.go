// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthWard Contributors

package verification

import (
	"context"
	"log/slog"
	"regexp"
	"sync"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/authward/authward/internal/antibot"
	"github.com/authward/authward/internal/auth"
	"github.com/authward/authward/internal/config"
	"github.com/authward/authward/internal/exempt"
	"github.com/authward/authward/internal/messages"
	"github.com/authward/authward/internal/observability"
	"github.com/authward/authward/internal/storage"
)

var tracer = otel.Tracer("authward/verification")

// Check names used for metric labels and span attributes.
const (
	checkAntibot       = "antibot"
	checkRegistration  = "registration"
	checkNameValidity  = "name_validity"
	checkNameCasing    = "name_casing"
	checkSingleSession = "single_session"
	checkCountry       = "country"
	checkServerFull    = "server_full"
)

// AcceptedConnection is the resolved input for the accepted-connection
// pipeline. The caller performs the account lookup up front; Account is
// nil when the identity is unregistered.
type AcceptedConnection struct {
	ConnID       ulid.ULID
	Identity     auth.Identity
	Country      string
	IsRegistered bool
	Account      *storage.Account
}

// Pipeline runs the verification checks in their fixed order, stopping
// at the first Deny.
type Pipeline struct {
	cfg      *config.Store
	guard    *antibot.Guard
	sessions *auth.SessionRegistry
	exempt   *exempt.Matcher
	logger   *slog.Logger

	mu        sync.Mutex
	nameRe    *regexp.Regexp
	nameReSrc string
}

// NewPipeline wires the pipeline's collaborators.
func NewPipeline(
	cfg *config.Store,
	guard *antibot.Guard,
	sessions *auth.SessionRegistry,
	matcher *exempt.Matcher,
	logger *slog.Logger,
) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{
		cfg:      cfg,
		guard:    guard,
		sessions: sessions,
		exempt:   matcher,
		logger:   logger,
	}
}

type check struct {
	name string
	run  func() Outcome
}

// PreConnectionCheck verifies a connection before the host accepts it.
// Order: antibot, registration-required, name-validity.
func (p *Pipeline) PreConnectionCheck(ctx context.Context, connID ulid.ULID, name string, isRegistered bool) Outcome {
	id := auth.NewIdentity(name)
	settings := p.cfg.Current()
	return p.run(ctx, "verification.pre_connection", connID, id, []check{
		{checkAntibot, func() Outcome { return p.antibotCheck(id, isRegistered) }},
		{checkRegistration, func() Outcome { return registrationCheck(settings, isRegistered) }},
		{checkNameValidity, func() Outcome { return p.nameValidityCheck(settings, id) }},
	})
}

// ConnectionAcceptedCheck verifies an accepted connection on the primary
// context. Order: antibot, registration-required, name-validity,
// name-casing, single-session, country.
func (p *Pipeline) ConnectionAcceptedCheck(ctx context.Context, conn AcceptedConnection) Outcome {
	settings := p.cfg.Current()
	return p.run(ctx, "verification.connection_accepted", conn.ConnID, conn.Identity, []check{
		{checkAntibot, func() Outcome { return p.antibotCheck(conn.Identity, conn.IsRegistered) }},
		{checkRegistration, func() Outcome { return registrationCheck(settings, conn.IsRegistered) }},
		{checkNameValidity, func() Outcome { return p.nameValidityCheck(settings, conn.Identity) }},
		{checkNameCasing, func() Outcome { return nameCasingCheck(settings, conn) }},
		{checkSingleSession, func() Outcome { return p.singleSessionCheck(settings, conn.Identity) }},
		{checkCountry, func() Outcome { return countryCheck(settings, conn) }},
	})
}

// FullServerCheck refuses joins on a full server unless the subject is
// exempt. Evaluated before the accepted-connection pipeline.
func (p *Pipeline) FullServerCheck(subject exempt.Subject, serverFull bool) Outcome {
	if !serverFull {
		return Allow()
	}
	if p.exempt != nil && p.exempt.Exempt(subject) {
		observability.RecordVerification(checkServerFull, observability.OutcomeAllow)
		return Allow()
	}
	observability.RecordVerification(checkServerFull, observability.OutcomeDeny)
	return Deny(messages.KickServerFull)
}

func (p *Pipeline) run(ctx context.Context, spanName string, connID ulid.ULID, id auth.Identity, checks []check) Outcome {
	_, span := tracer.Start(ctx, spanName, trace.WithAttributes(
		attribute.String("identity", id.Key()),
		attribute.String("conn_id", connID.String()),
	))
	defer span.End()

	for _, c := range checks {
		out := c.run()
		if out.Denied() {
			observability.RecordVerification(c.name, observability.OutcomeDeny)
			span.SetAttributes(
				attribute.String("verification.denied_check", c.name),
				attribute.String("verification.reason", string(out.Reason)),
			)
			p.logger.Info("verification denied",
				"conn_id", connID.String(),
				"identity", id.Key(),
				"check", c.name,
				"reason", string(out.Reason),
			)
			return out
		}
		observability.RecordVerification(c.name, observability.OutcomeAllow)
	}
	return Allow()
}

func (p *Pipeline) antibotCheck(id auth.Identity, isRegistered bool) Outcome {
	if p.guard.ShouldReject(id, isRegistered) {
		return Deny(messages.KickAntibot)
	}
	return Allow()
}

func registrationCheck(settings *config.Settings, isRegistered bool) Outcome {
	if settings.Registration.Force && !isRegistered {
		return Deny(messages.KickNotRegistered)
	}
	return Allow()
}

func (p *Pipeline) nameValidityCheck(settings *config.Settings, id auth.Identity) Outcome {
	name := id.Display()
	length := utf8.RuneCountInString(name)
	if length < settings.Names.MinLength || length > settings.Names.MaxLength {
		return Deny(messages.KickInvalidName, settings.Names.Pattern)
	}
	if re := p.namePattern(settings.Names.Pattern); re != nil && !re.MatchString(name) {
		return Deny(messages.KickInvalidName, settings.Names.Pattern)
	}
	return Allow()
}

// namePattern returns the compiled name pattern, recompiling only when
// the configured source changes. A pattern that fails to compile (it is
// rejected at config load, but the store can be replaced at runtime)
// disables the character check rather than denying every join.
func (p *Pipeline) namePattern(src string) *regexp.Regexp {
	p.mu.Lock()
	defer p.mu.Unlock()

	if src == p.nameReSrc {
		return p.nameRe
	}
	re, err := regexp.Compile(src)
	if err != nil {
		p.logger.Warn("invalid name pattern, character check disabled", "pattern", src)
		re = nil
	}
	p.nameReSrc = src
	p.nameRe = re
	return re
}

func nameCasingCheck(settings *config.Settings, conn AcceptedConnection) Outcome {
	if settings.Restrictions.AcceptCaseDrift || conn.Account == nil {
		return Allow()
	}
	if conn.Account.DisplayName != conn.Identity.Display() {
		return Deny(messages.KickInvalidCase, conn.Account.DisplayName)
	}
	return Allow()
}

func (p *Pipeline) singleSessionCheck(settings *config.Settings, id auth.Identity) Outcome {
	if settings.Restrictions.ForceSingleSession && p.sessions.IsActive(id) {
		return Deny(messages.KickAlreadyOnline)
	}
	return Allow()
}

func countryCheck(settings *config.Settings, conn AcceptedConnection) Outcome {
	if conn.IsRegistered {
		return Allow()
	}
	if !settings.Protection.CountryAdmitted(conn.Country) {
		return Deny(messages.KickCountryBanned, conn.Country)
	}
	return Allow()
}
