package sources

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// CheckResult is the reachability of one source.
type CheckResult struct {
	Source  Source
	Status  int
	Latency time.Duration
	Err     error
}

// OK reports a 2xx or 3xx response.
func (r CheckResult) OK() bool {
	return r.Err == nil && r.Status >= 200 && r.Status < 400
}

// Check requests every source with at most limit requests in flight and at most
// limit requests started per second. Results keep the input order; per-URL
// failures are reported in CheckResult.Err, only cancellation is returned.
func Check(ctx context.Context, client *http.Client, list []Source, limit int) ([]CheckResult, error) {
	if limit <= 0 {
		limit = 1
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	limiter := rate.NewLimiter(rate.Limit(limit), limit)
	results := make([]CheckResult, len(list))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, src := range list {
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				return err
			}
			results[i] = checkOne(gctx, client, src)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("check sources: %w", err)
	}
	return results, nil
}

func checkOne(ctx context.Context, client *http.Client, src Source) CheckResult {
	start := time.Now()
	status, err := request(ctx, client, http.MethodHead, src.URL)
	if err == nil && status == http.StatusMethodNotAllowed {
		status, err = request(ctx, client, http.MethodGet, src.URL)
	}
	return CheckResult{Source: src, Status: status, Latency: time.Since(start), Err: err}
}

func request(ctx context.Context, client *http.Client, method, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", "geosentinel/1.0")
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}
