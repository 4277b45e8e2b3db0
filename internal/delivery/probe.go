package delivery

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultProbeTimeout bounds a single provider probe when none is configured.
const DefaultProbeTimeout = 5 * time.Second

// Target is a provider and the endpoint used to check it.
type Target struct {
	ID      ProviderID
	URL     string
	Timeout time.Duration
}

// Prober performs one reachability check. A nil error means the provider is up.
type Prober interface {
	Probe(ctx context.Context, target Target) error
}

// ProbeFunc adapts a function to the Prober interface.
type ProbeFunc func(ctx context.Context, target Target) error

// Probe calls f.
func (f ProbeFunc) Probe(ctx context.Context, target Target) error {
	return f(ctx, target)
}

// HTTPProber checks a provider with a single HEAD request.
type HTTPProber struct {
	client    *http.Client
	userAgent string
}

// NewHTTPProber creates a prober. A nil client uses a client that does not follow redirects.
func NewHTTPProber(client *http.Client) *HTTPProber {
	if client == nil {
		client = &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}
	return &HTTPProber{
		client:    client,
		userAgent: "catalog-api-probe/1.0",
	}
}

// Probe sends HEAD to the target, retrying once with GET when HEAD is not allowed.
// Any status below 400 counts as reachable.
func (p *HTTPProber) Probe(ctx context.Context, target Target) error {
	timeout := target.Timeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	status, err := p.do(ctx, http.MethodHead, target.URL)
	if err != nil {
		return err
	}
	// 405 means HEAD is unsupported, not that the provider is down.
	if status == http.StatusMethodNotAllowed {
		status, err = p.do(ctx, http.MethodGet, target.URL)
		if err != nil {
			return err
		}
	}

	if status >= http.StatusBadRequest {
		return fmt.Errorf("probe %s: HTTP %d", target.ID, status)
	}
	return nil
}

func (p *HTTPProber) do(ctx context.Context, method, rawURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("build probe request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	return resp.StatusCode, nil
}
