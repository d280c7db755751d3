package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"sobot/internal/core/port"

	"github.com/rs/zerolog/log"
)

// HTTP is the outbound fetch collaborator used by command handlers and
// monitors. Every request carries a bounded wait; there are no retries.
type HTTP struct {
	client *http.Client
}

func NewHTTP(timeout time.Duration) *HTTP {
	return &HTTP{client: &http.Client{Timeout: timeout}}
}

func (h *HTTP) Request(ctx context.Context, url string) (*port.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	res, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error executing request: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	log.Debug().Str("url", url).Int("status", res.StatusCode).Int("bytes", len(body)).Msg("fetched")

	return &port.Response{Status: res.StatusCode, Body: body}, nil
}

// RequestMulti fans out one GET per URL and joins them all before returning.
// Results keep the input order, each one independently success or failure.
func (h *HTTP) RequestMulti(ctx context.Context, urls []string) []port.Result {
	results := make([]port.Result, len(urls))

	var wg sync.WaitGroup
	for i, url := range urls {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			res, err := h.Request(ctx, url)
			results[i] = port.Result{Response: res, Err: err}
		}(i, url)
	}
	wg.Wait()

	return results
}
