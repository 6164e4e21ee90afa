package application

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"atlas-core-connect-layer/internal/domain"
	"atlas-core-connect-layer/internal/metrics"
	"atlas-core-connect-layer/internal/ports"

	"github.com/rs/zerolog"
)

const (
	// DefaultStatusTTL is how long a connected probe result stays fresh.
	DefaultStatusTTL = 60 * time.Second

	// DefaultOverrideTTL is how long a manual disconnect forces the pair
	// to read as disconnected.
	DefaultOverrideTTL = time.Hour
)

// accountPattern accepts syntactically plausible email-style identifiers.
var accountPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// StatusBroker resolves whether a user is connected to an integration. It
// owns the probe cache and the manual disconnect overrides; GetStatus
// never returns an error, upstream failures resolve to disconnected.
type StatusBroker struct {
	registry    *Registry
	gateway     ports.GatewayClient
	cache       ports.StatusCache
	overrides   ports.OverrideStore
	statusTTL   time.Duration
	overrideTTL time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// StatusBrokerOptions tunes cache lifetimes and the clock.
type StatusBrokerOptions struct {
	StatusTTL   time.Duration
	OverrideTTL time.Duration
	Clock       func() time.Time
}

// NewStatusBroker creates a broker with production defaults.
func NewStatusBroker(
	registry *Registry,
	gateway ports.GatewayClient,
	cache ports.StatusCache,
	overrides ports.OverrideStore,
	logger zerolog.Logger,
) *StatusBroker {
	return NewStatusBrokerWithOptions(registry, gateway, cache, overrides, logger, StatusBrokerOptions{})
}

// NewStatusBrokerWithOptions creates a broker with explicit options.
func NewStatusBrokerWithOptions(
	registry *Registry,
	gateway ports.GatewayClient,
	cache ports.StatusCache,
	overrides ports.OverrideStore,
	logger zerolog.Logger,
	opts StatusBrokerOptions,
) *StatusBroker {
	if opts.StatusTTL <= 0 {
		opts.StatusTTL = DefaultStatusTTL
	}
	if opts.OverrideTTL <= 0 {
		opts.OverrideTTL = DefaultOverrideTTL
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &StatusBroker{
		registry:    registry,
		gateway:     gateway,
		cache:       cache,
		overrides:   overrides,
		statusTTL:   opts.StatusTTL,
		overrideTTL: opts.OverrideTTL,
		logger:      logger,
		now:         opts.Clock,
	}
}

// GetStatus resolves connectivity for one (integration, user) pair.
// Resolution order: known integration, plausible account, live disconnect
// override, unexpired cache entry, upstream probe.
func (b *StatusBroker) GetStatus(ctx context.Context, integrationID, user string) domain.ConnectionStatus {
	entry, ok := b.registry.Lookup(integrationID)
	if !ok {
		return domain.ConnectionStatus{Connected: false, Reason: "integration not found"}
	}

	if !accountPattern.MatchString(user) {
		return domain.ConnectionStatus{Connected: false, Reason: "invalid account identifier"}
	}

	if active, err := b.overrides.Active(ctx, integrationID, user); err != nil {
		b.logger.Warn().Err(err).
			Str("integration", integrationID).
			Msg("Failed to read disconnect override, continuing without it")
	} else if active {
		return domain.ConnectionStatus{Connected: false, Reason: "disconnected by user"}
	}

	if cached, err := b.cache.Get(ctx, integrationID, user); err != nil {
		b.logger.Warn().Err(err).
			Str("integration", integrationID).
			Msg("Status cache read failed, treating as miss")
	} else if cached != nil {
		return cached.Status()
	}

	status := b.probe(ctx, entry, user)
	b.cacheStatus(ctx, integrationID, user, status)
	return status
}

// probe issues the integration's lightweight connectivity check and
// interprets the outcome. Transient failures that survive the retry cap
// also resolve to disconnected.
func (b *StatusBroker) probe(ctx context.Context, entry RegistryEntry, user string) domain.ConnectionStatus {
	action, params := entry.Probe.BuildProbe(user)
	integrationID := entry.Descriptor.ID

	payload, err := b.gateway.Execute(ctx, entry.Descriptor.Connector, action, user, params)
	if err != nil {
		var upstream *domain.UpstreamError
		if errors.As(err, &upstream) && upstream.IndicatesDisconnected() {
			b.logger.Debug().
				Str("integration", integrationID).
				Int("status", upstream.StatusCode).
				Msg("Probe indicates user is not connected")
			metrics.ProbeResults.WithLabelValues(integrationID, "disconnected").Inc()
			return domain.ConnectionStatus{Connected: false, Reason: "not connected"}
		}

		b.logger.Warn().Err(err).
			Str("integration", integrationID).
			Msg("Probe failed, resolving status as disconnected")
		metrics.ProbeResults.WithLabelValues(integrationID, "error").Inc()
		return domain.ConnectionStatus{Connected: false, Reason: "probe failed"}
	}

	connected, account := entry.Probe.Interpret(payload, user)
	if !connected {
		// A success response without the proof-of-data marker is
		// inconclusive and must not be read as connected.
		metrics.ProbeResults.WithLabelValues(integrationID, "no_proof").Inc()
		return domain.ConnectionStatus{Connected: false, Reason: "not connected"}
	}

	metrics.ProbeResults.WithLabelValues(integrationID, "connected").Inc()
	return domain.ConnectionStatus{Connected: true, Account: account}
}

// cacheStatus records a probe outcome. Disconnected results get a quarter
// of the TTL so a freshly revoked connection is re-checked sooner than a
// healthy one is re-verified.
func (b *StatusBroker) cacheStatus(ctx context.Context, integrationID, user string, status domain.ConnectionStatus) {
	ttl := b.statusTTL
	if !status.Connected {
		ttl = b.statusTTL / 4
	}

	err := b.cache.Set(ctx, integrationID, user, domain.CachedStatus{
		Connected:  status.Connected,
		Account:    status.Account,
		CapturedAt: b.now(),
		TTL:        ttl,
	})
	if err != nil {
		b.logger.Warn().Err(err).
			Str("integration", integrationID).
			Msg("Failed to cache probe outcome")
	}
}

// MarkDisconnected force-caches a disconnected status for the pair, used
// when a dispatch fails with an auth-shaped upstream error.
func (b *StatusBroker) MarkDisconnected(ctx context.Context, integrationID, user string) {
	b.cacheStatus(ctx, integrationID, user, domain.ConnectionStatus{Connected: false})
}

// Disconnect revokes the gateway-side credential best-effort, drops any
// cached status, and installs a disconnect override so the pair reads as
// disconnected immediately even if the upstream revoke silently no-ops.
// Local state is authoritative for presentation, so a failed revoke does
// not fail the operation.
func (b *StatusBroker) Disconnect(ctx context.Context, integrationID, user string) domain.DisconnectReceipt {
	entry, ok := b.registry.Lookup(integrationID)
	if !ok {
		return domain.DisconnectReceipt{OK: false, Message: "integration not found"}
	}

	receipt := domain.DisconnectReceipt{OK: true, Message: fmt.Sprintf("%s disconnected", entry.Descriptor.DisplayName)}

	if err := b.gateway.Revoke(ctx, entry.Descriptor.Connector, user); err != nil {
		b.logger.Warn().Err(err).
			Str("integration", integrationID).
			Msg("Upstream revoke failed, local override still applies")
		receipt.RevokeFailed = true
	}

	if err := b.cache.Delete(ctx, integrationID, user); err != nil {
		b.logger.Warn().Err(err).
			Str("integration", integrationID).
			Msg("Failed to drop cached status during disconnect")
	}

	if err := b.overrides.Set(ctx, integrationID, user, b.overrideTTL); err != nil {
		b.logger.Warn().Err(err).
			Str("integration", integrationID).
			Msg("Failed to install disconnect override")
	}

	return receipt
}

// AuthURL resolves the OAuth authorization URL for the integration. A
// successful issuance clears any disconnect override and cached status so
// the first read after the user returns from OAuth re-probes upstream.
func (b *StatusBroker) AuthURL(ctx context.Context, integrationID, user string) (string, error) {
	entry, ok := b.registry.Lookup(integrationID)
	if !ok {
		return "", fmt.Errorf("integration not found: %s", integrationID)
	}

	authURL, err := b.gateway.AuthURL(ctx, entry.Descriptor.Connector, user)
	if err != nil {
		return "", fmt.Errorf("failed to resolve auth url for %s: %w", integrationID, err)
	}

	if err := b.overrides.Clear(ctx, integrationID, user); err != nil {
		b.logger.Warn().Err(err).
			Str("integration", integrationID).
			Msg("Failed to clear disconnect override after auth url issuance")
	}
	if err := b.cache.Delete(ctx, integrationID, user); err != nil {
		b.logger.Warn().Err(err).
			Str("integration", integrationID).
			Msg("Failed to drop cached status after auth url issuance")
	}

	return authURL, nil
}
