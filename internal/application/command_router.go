package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"atlas-core-connect-layer/internal/domain"
	"atlas-core-connect-layer/internal/metrics"
	"atlas-core-connect-layer/internal/ports"

	"github.com/rs/zerolog"
)

// StatusResolver is the broker surface the router depends on.
type StatusResolver interface {
	GetStatus(ctx context.Context, integrationID, user string) domain.ConnectionStatus
	MarkDisconnected(ctx context.Context, integrationID, user string)
}

// CommandRouter validates, maps, dispatches and normalizes structured
// commands. Every outcome is a CommandResult value; nothing is thrown
// across this boundary.
type CommandRouter struct {
	registry *Registry
	actions  *ActionMap
	status   StatusResolver
	gateway  ports.GatewayClient
	users    ports.UserRepository
	logger   zerolog.Logger
	now      func() time.Time
}

// NewCommandRouter creates a command router.
func NewCommandRouter(
	registry *Registry,
	actions *ActionMap,
	status StatusResolver,
	gateway ports.GatewayClient,
	users ports.UserRepository,
	logger zerolog.Logger,
) *CommandRouter {
	return &CommandRouter{
		registry: registry,
		actions:  actions,
		status:   status,
		gateway:  gateway,
		users:    users,
		logger:   logger,
		now:      time.Now,
	}
}

// Process runs one structured command through the pipeline:
// validate → resolve user → bypass/alias → connection check →
// action mapping → dispatch → normalize. Each step may terminate early
// with a failure result; only the network call inside dispatch retries.
func (r *CommandRouter) Process(ctx context.Context, cmd domain.StructuredCommand) domain.CommandResult {
	result := r.process(ctx, cmd)

	outcome := "success"
	if !result.Success {
		outcome = "failure"
	}
	metrics.CommandResults.WithLabelValues(strings.ToLower(cmd.Service), outcome).Inc()
	return result
}

func (r *CommandRouter) process(ctx context.Context, cmd domain.StructuredCommand) domain.CommandResult {
	if err := validateCommand(cmd); err != nil {
		return domain.Failure(fmt.Sprintf("validation failed: %v", err), "")
	}

	user, err := r.users.FindByIdentifier(ctx, cmd.UserID)
	if err != nil {
		r.logger.Error().Err(err).Str("user", cmd.UserID).Msg("User lookup failed")
		return domain.Failure("user lookup failed", "")
	}
	if user == nil {
		return domain.Failure("user not found", "")
	}

	// Informational services bypass the connection check entirely.
	if isBriefingService(cmd.Service) {
		return r.briefing(user)
	}

	integrationID, ok := r.actions.ResolveService(cmd.Service)
	if !ok {
		return domain.Failure(fmt.Sprintf("unsupported service: %s", cmd.Service), "")
	}

	status := r.status.GetStatus(ctx, integrationID, user.Email)
	if !status.Connected {
		return notConnectedResult(integrationID)
	}

	concrete, ok := r.actions.ResolveAction(integrationID, cmd.Action)
	if !ok {
		return domain.Failure(fmt.Sprintf("action %q is not supported by %s", cmd.Action, integrationID), "")
	}

	entry, ok := r.registry.Lookup(integrationID)
	if !ok {
		// Alias tables and registry are built from the same catalog, so
		// this only happens on a wiring mistake.
		return domain.Failure(fmt.Sprintf("unsupported service: %s", cmd.Service), "")
	}

	account := status.Account
	if account == "" {
		account = user.Email
	}

	payload, err := r.gateway.Execute(ctx, entry.Descriptor.Connector, concrete, account, cmd.Params)
	if err != nil {
		var upstream *domain.UpstreamError
		if errors.As(err, &upstream) && upstream.IsAuthShaped() {
			// The credential died between the status check and the
			// dispatch; record it so the next status read is honest.
			r.status.MarkDisconnected(ctx, integrationID, user.Email)
			return notConnectedResult(integrationID)
		}

		r.logger.Error().Err(err).
			Str("integration", integrationID).
			Str("action", concrete).
			Msg("Command dispatch failed")
		return domain.Failure("service execution failed", "")
	}

	return domain.CommandResult{Success: true, Data: payload}
}

// ProcessBatch fans out member commands concurrently and joins all of
// them. Result order matches input order and a failure in one member never
// affects the others.
func (r *CommandRouter) ProcessBatch(ctx context.Context, cmds []domain.StructuredCommand) []domain.CommandResult {
	results := make([]domain.CommandResult, len(cmds))

	var wg sync.WaitGroup
	for i, cmd := range cmds {
		wg.Add(1)
		go func(i int, cmd domain.StructuredCommand) {
			defer wg.Done()
			defer func() {
				if rec := recover(); rec != nil {
					r.logger.Error().
						Interface("panic", rec).
						Int("index", i).
						Msg("Command processing panicked")
					results[i] = domain.Failure("service execution failed", "")
				}
			}()
			results[i] = r.Process(ctx, cmd)
		}(i, cmd)
	}
	wg.Wait()

	return results
}

// CreateQuickCommand expands a named shorthand into a full structured
// command; nil for unknown shorthands.
func (r *CommandRouter) CreateQuickCommand(name, userID string, overrides map[string]any) *domain.StructuredCommand {
	return r.actions.CreateQuickCommand(name, userID, overrides)
}

// briefing returns the derived informational payload; presentation-layer
// wording is deliberately absent.
func (r *CommandRouter) briefing(user *domain.User) domain.CommandResult {
	return domain.CommandResult{
		Success: true,
		Data: map[string]any{
			"type":               "briefing",
			"date":               r.now().Format("2006-01-02"),
			"user":               user.Email,
			"suggested_commands": r.actions.QuickCommandNames(),
		},
	}
}

func validateCommand(cmd domain.StructuredCommand) error {
	switch {
	case cmd.Service == "":
		return fmt.Errorf("service is required")
	case cmd.Action == "":
		return fmt.Errorf("action is required")
	case cmd.UserID == "":
		return fmt.Errorf("user_id is required")
	case cmd.Params == nil:
		return fmt.Errorf("params is required")
	}
	return nil
}

func isBriefingService(service string) bool {
	switch strings.ToLower(strings.TrimSpace(service)) {
	case "briefing", "daily_briefing", "dailybriefing":
		return true
	}
	return false
}

func notConnectedResult(integrationID string) domain.CommandResult {
	return domain.Failure(
		fmt.Sprintf("%s is not connected", integrationID),
		fmt.Sprintf("Connect %s before sending commands to it.", integrationID),
	)
}
