package doctor

import (
	"context"
	"fmt"
	"net"

	"github.com/cenkalti/backoff/v5"

	"github.com/rbright/vesta/internal/config"
)

// APIAddress is the endpoint the network check dials.
const APIAddress = "api.openai.com:443"

type dialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// checkNetwork dials the API endpoint using the same retry schedule and
// request rate the API client is configured with.
func checkNetwork(ctx context.Context, cfg config.Config, dial dialFunc) Check {
	name := "network"
	if cfg.Features.OfflineMode {
		return Check{Name: name, Pass: true, Message: "skipped (offline mode)"}
	}

	limiter := cfg.API.NewLimiter()
	attempts := 0
	operation := func() (struct{}, error) {
		if err := limiter.Wait(ctx); err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		attempts++

		dialCtx, cancel := context.WithTimeout(ctx, cfg.API.Timeout)
		defer cancel()
		conn, err := dial(dialCtx, "tcp", APIAddress)
		if err != nil {
			return struct{}{}, err
		}
		return struct{}{}, conn.Close()
	}

	if _, err := backoff.Retry(ctx, operation, cfg.API.RetryOptions()...); err != nil {
		return Check{
			Name:    name,
			Pass:    false,
			Message: fmt.Sprintf("%s unreachable after %d attempts: %v (%s)", APIAddress, attempts, err, config.ErrorNetwork),
		}
	}
	return Check{Name: name, Pass: true, Message: fmt.Sprintf("%s reachable", APIAddress)}
}
