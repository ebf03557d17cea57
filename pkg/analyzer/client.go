package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// errNoData marks a terminal "provider has nothing for this address" outcome
// (HTTP 404). It is not retried and the caller substitutes its defaults.
var errNoData = errors.New("no data for token")

// getJSONRetry fetches url with bounded exponential backoff. 429 and other
// non-200 statuses are retried after backoff; 404 is terminal; context
// cancellation aborts the wait.
func getJSONRetry(ctx context.Context, client *http.Client, url string, maxRetries int) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		body, err := getJSON(ctx, client, url)
		switch {
		case err == nil:
			return body, nil
		case errors.Is(err, errNoData):
			return nil, errNoData
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, err
		default:
			lastErr = err
			log.Debug().Err(err).Int("attempt", attempt+1).Str("url", url).Msg("fetch retry")
		}
	}
	return nil, fmt.Errorf("after %d attempts: %w", maxRetries, lastErr)
}

func getJSON(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return io.ReadAll(io.LimitReader(resp.Body, 10<<20)) // 10MB max
	case resp.StatusCode == http.StatusNotFound:
		return nil, errNoData
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("rate limited (HTTP 429)")
	default:
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}
}
