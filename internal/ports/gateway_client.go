package ports

import "context"

// GatewayClient issues authenticated calls to the external integration
// gateway. Execute returns the normalized payload (envelope unwrapping is
// the client's concern); upstream failures surface as *domain.UpstreamError,
// transport failures as plain errors. Implementations retry transient
// failures internally.
type GatewayClient interface {
	// Execute runs a concrete backend action for an account.
	Execute(ctx context.Context, connector, action, account string, params map[string]any) (any, error)

	// AuthURL resolves the OAuth authorization URL for an account.
	AuthURL(ctx context.Context, connector, account string) (string, error)

	// Revoke drops the gateway-side credential. A gateway 404 is treated
	// as a no-op revoke, not an error.
	Revoke(ctx context.Context, connector, account string) error
}
