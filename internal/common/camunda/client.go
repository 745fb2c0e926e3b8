// internal/common/camunda/client.go
package camunda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"volunteer-workers/internal/common/config"
	"volunteer-workers/internal/common/errors"
)

// Client holds the worker manager's gateway connection.
type Client struct {
	client zbc.Client
	config ClientConfig
}

// ClientConfig holds the gateway address and connect behaviour.
type ClientConfig struct {
	GatewayAddress         string
	UsePlaintextConnection bool
	// RequestTimeout bounds each topology request.
	RequestTimeout time.Duration
	Retry          RetryConfig
}

// RetryConfig controls how long Connect waits for the gateway.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// ConfigFrom builds a ClientConfig from the loaded camunda section.
func ConfigFrom(c config.CamundaConfig) ClientConfig {
	return ClientConfig{
		GatewayAddress:         c.BrokerAddress,
		UsePlaintextConnection: true,
		RequestTimeout:         config.GetDuration(c.RequestTimeout),
		Retry: RetryConfig{
			MaxRetries: c.ConnectRetries,
			BaseDelay:  2 * time.Second,
			MaxDelay:   30 * time.Second,
		},
	}
}

// Connect opens the gateway connection and waits until the broker answers a
// topology request. Unreachable gateways are retried with backoff; any
// other failure is returned at once.
func Connect(ctx context.Context, cfg ClientConfig) (*Client, error) {
	zb, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         cfg.GatewayAddress,
		UsePlaintextConnection: cfg.UsePlaintextConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("create zeebe client: %w", err)
	}

	c := &Client{client: zb, config: cfg}
	if err := c.ExecuteWithRetry(ctx, "topology", c.topology); err != nil {
		zb.Close()
		return nil, fmt.Errorf("connect to zeebe at %s: %w", cfg.GatewayAddress, err)
	}
	return c, nil
}

// GetClient returns the raw client used to open job workers.
func (c *Client) GetClient() zbc.Client {
	return c.client
}

func (c *Client) Close() error {
	return c.client.Close()
}

// HealthCheck sends one topology request.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := c.topology(ctx); err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}

func (c *Client) topology(ctx context.Context) error {
	if c.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.RequestTimeout)
		defer cancel()
	}
	_, err := c.client.NewTopologyCommand().Send(ctx)
	return err
}

// ExecuteWithRetry runs op until it succeeds, fails permanently, or the
// retry budget runs out. The last error is mapped to a StandardError.
func (c *Client) ExecuteWithRetry(ctx context.Context, operation string, op func(context.Context) error) error {
	retry := c.config.Retry
	for attempt := 0; ; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if !isRetryableZeebeError(err) || attempt >= retry.MaxRetries {
			return mapZeebeError(err, operation, attempt+1)
		}

		delay := retry.BaseDelay << attempt
		if delay <= 0 || (retry.MaxDelay > 0 && delay > retry.MaxDelay) {
			delay = retry.MaxDelay
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("%s cancelled after %d attempts: %w", operation, attempt+1, ctx.Err())
		}
	}
}

// isRetryableZeebeError reports whether err means the gateway was not
// reachable yet. gRPC status codes are preferred; dial errors that carry
// no status fall back to their message.
func isRetryableZeebeError(err error) bool {
	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted:
			return true
		case codes.Unknown:
		default:
			return false
		}
	}
	msg := strings.ToLower(err.Error())
	for _, phrase := range []string{"connection refused", "connection reset", "deadline exceeded", "timeout", "unavailable"} {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}

func mapZeebeError(err error, operation string, attempts int) error {
	wrapped := fmt.Errorf("zeebe %s failed after %d attempts: %w", operation, attempts, err)

	switch status.Code(err) {
	case codes.DeadlineExceeded:
		return errors.NewTimeoutError("zeebe", wrapped)
	case codes.NotFound:
		return errors.NewResourceNotFoundError("zeebe", wrapped.Error())
	case codes.AlreadyExists:
		return errors.NewBusinessRuleError(wrapped.Error(), "zeebe resource already exists")
	case codes.Unauthenticated, codes.PermissionDenied:
		return errors.NewAuthenticationError(wrapped.Error())
	}
	if strings.Contains(strings.ToLower(err.Error()), "deadline exceeded") {
		return errors.NewTimeoutError("zeebe", wrapped)
	}
	return errors.NewExternalServiceError("zeebe", wrapped)
}
