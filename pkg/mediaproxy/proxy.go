// Package mediaproxy forwards client requests to upstream media and API hosts.
package mediaproxy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/jasim8799/api/internal/utils"
)

// Proxy errors
var (
	// ErrInvalidTarget is returned when the upstream URL is not an absolute http(s) URL.
	ErrInvalidTarget = errors.New("invalid proxy target")

	// ErrInvalidPrefix is returned when the mount prefix does not start with a slash.
	ErrInvalidPrefix = errors.New("invalid proxy prefix")
)

// Config describes one mounted proxy.
type Config struct {
	// Name identifies the proxy in logs.
	Name string

	// Prefix is the path the proxy is mounted at. It is stripped before forwarding.
	Prefix string

	// Target is the upstream base URL.
	Target string

	// FlushInterval is passed to the reverse proxy. Negative flushes after every write.
	FlushInterval time.Duration
}

// Gate decides whether a request may be forwarded right now.
type Gate func(ctx context.Context) error

// Proxy is a prefix-stripping reverse proxy.
type Proxy struct {
	name    string
	prefix  string
	target  *url.URL
	gate    Gate
	reverse *httputil.ReverseProxy
	logger  *utils.Logger
}

// Option configures a Proxy.
type Option func(*Proxy)

// WithGate rejects requests with 503 while gate returns an error.
func WithGate(gate Gate) Option {
	return func(p *Proxy) {
		p.gate = gate
	}
}

// WithTransport sets the transport used to reach the upstream.
func WithTransport(rt http.RoundTripper) Option {
	return func(p *Proxy) {
		p.reverse.Transport = rt
	}
}

// New creates a proxy for cfg.
func New(cfg Config, logger *utils.Logger, opts ...Option) (*Proxy, error) {
	target, err := ParseTarget(cfg.Target)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimSuffix(cfg.Prefix, "/")
	if !strings.HasPrefix(prefix, "/") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPrefix, cfg.Prefix)
	}

	p := &Proxy{
		name:   cfg.Name,
		prefix: prefix,
		target: target,
		logger: logger.Named("mediaproxy").With("proxy", cfg.Name),
	}
	p.reverse = &httputil.ReverseProxy{
		Rewrite:       p.rewrite,
		FlushInterval: cfg.FlushInterval,
		ErrorHandler:  p.upstreamError,
	}

	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// ParseTarget parses an upstream base URL.
func ParseTarget(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTarget, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTarget, raw)
	}
	return u, nil
}

// Prefix returns the mount path.
func (p *Proxy) Prefix() string {
	return p.prefix
}

// ServeHTTP forwards r upstream.
func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if p.gate != nil {
		if err := p.gate(r.Context()); err != nil {
			p.logger.Warn("Upstream gated", "path", r.URL.Path, "reason", err.Error())
			utils.RespondWithError(w, http.StatusServiceUnavailable, "Upstream provider is currently unavailable")
			return
		}
	}

	// Media streams outlive the server's write timeout.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		p.logger.Debug("Could not clear write deadline", "error", err.Error())
	}

	p.reverse.ServeHTTP(w, r)
}

func (p *Proxy) rewrite(pr *httputil.ProxyRequest) {
	pr.Out.URL.Path = stripPrefix(pr.In.URL.Path, p.prefix)
	pr.Out.URL.RawPath = ""
	pr.SetURL(p.target)
	pr.SetXForwarded()

	// Our credentials are not the upstream's.
	pr.Out.Header.Del("Authorization")
	pr.Out.Header.Del("x-api-key")
}

func (p *Proxy) upstreamError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	p.logger.Error("Upstream request failed", err, "path", r.URL.Path, "target", p.target.Host)
	utils.RespondWithError(w, http.StatusBadGateway, "Upstream request failed")
}

func stripPrefix(path, prefix string) string {
	rest := strings.TrimPrefix(path, prefix)
	if rest == "" || rest[0] != '/' {
		rest = "/" + rest
	}
	return rest
}
