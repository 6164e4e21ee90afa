package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"atlas-core-connect-layer/internal/domain"
	"atlas-core-connect-layer/internal/metrics"
	"atlas-core-connect-layer/internal/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Config carries the gateway connection settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type client struct {
	config  Config
	http    *http.Client
	retryer *Retryer
	logger  zerolog.Logger
}

// NewClient creates a gateway client with the default retry policy.
func NewClient(config Config, logger zerolog.Logger) ports.GatewayClient {
	return NewClientWithOptions(config, DefaultRetryConfig(), logger)
}

// NewClientWithOptions creates a gateway client with an explicit retry policy.
func NewClientWithOptions(config Config, retry RetryConfig, logger zerolog.Logger) ports.GatewayClient {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	return &client{
		config:  config,
		http:    &http.Client{Timeout: config.Timeout},
		retryer: NewRetryer(retry, logger),
		logger:  logger,
	}
}

// Execute runs a concrete backend action for an account and returns the
// normalized payload. Transient failures are retried; upstream client
// errors surface as *domain.UpstreamError.
func (c *client) Execute(ctx context.Context, connector, action, account string, params map[string]any) (any, error) {
	endpoint := fmt.Sprintf("%s/connector/interactor/%s/action/%s/execute?account=%s",
		c.config.BaseURL,
		url.PathEscape(connector),
		url.PathEscape(action),
		url.QueryEscape(account),
	)

	if params == nil {
		params = map[string]any{}
	}

	return c.retryer.Do(ctx, "execute", func(ctx context.Context) (any, error) {
		body, err := c.call(ctx, http.MethodPost, endpoint, connector, action, params)
		if err != nil {
			return nil, err
		}
		return ExtractPayload(body), nil
	})
}

// AuthURL resolves the OAuth authorization URL for an account. The gateway
// returns either {"url": ...} or {"output": {"url": ...}}.
func (c *client) AuthURL(ctx context.Context, connector, account string) (string, error) {
	endpoint := fmt.Sprintf("%s/connector/interactor/%s/auth-url?account=%s",
		c.config.BaseURL,
		url.PathEscape(connector),
		url.QueryEscape(account),
	)

	body, err := c.call(ctx, http.MethodGet, endpoint, connector, "auth-url", nil)
	if err != nil {
		return "", err
	}

	if payload, ok := ExtractPayload(body).(map[string]any); ok {
		if authURL, ok := payload["url"].(string); ok && authURL != "" {
			return authURL, nil
		}
	}
	return "", fmt.Errorf("gateway auth-url response for %s carried no url", connector)
}

// Revoke drops the gateway-side credential. A 404 means there was nothing
// to revoke and is not an error.
func (c *client) Revoke(ctx context.Context, connector, account string) error {
	endpoint := fmt.Sprintf("%s/connector/interactor/%s/disconnect",
		c.config.BaseURL,
		url.PathEscape(connector),
	)

	_, err := c.call(ctx, http.MethodPost, endpoint, connector, "disconnect", map[string]any{"account": account})
	if err != nil {
		var upstream *domain.UpstreamError
		if errors.As(err, &upstream) && upstream.StatusCode == http.StatusNotFound {
			c.logger.Debug().
				Str("connector", connector).
				Msg("Gateway revoke returned 404, treating as no-op")
			return nil
		}
		return fmt.Errorf("failed to revoke %s credential: %w", connector, err)
	}
	return nil
}

// call performs one HTTP round trip and decodes the response. Upstream
// failures (HTTP error statuses and nested error bodies) come back as
// *domain.UpstreamError; transport failures as plain errors.
func (c *client) call(ctx context.Context, method, endpoint, connector, action string, payload map[string]any) (any, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway request: %w", err)
	}
	req.Header.Set("x-api-key", c.config.APIKey)
	req.Header.Set("X-Request-Id", uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.GatewayCallDuration.WithLabelValues(connector, action).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}

	// Tolerate empty and non-JSON bodies; the status code still counts.
	// The payload may be a top-level object or a top-level array.
	var body any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			body = nil
		}
	}

	obj, _ := body.(map[string]any)
	if body == nil {
		obj = map[string]any{}
		body = obj
	}
	if upstream := errorFromBody(resp.StatusCode, obj); upstream != nil {
		c.logger.Debug().
			Str("connector", connector).
			Str("action", action).
			Int("status", upstream.StatusCode).
			Msg("Gateway reported an error")
		return nil, upstream
	}
	return body, nil
}
