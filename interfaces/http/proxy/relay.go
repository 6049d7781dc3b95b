// Package proxy runs the request relay as an HTTP reverse proxy: the first
// path segment selects a function URL, the request is re-signed and forwarded.
package proxy

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"time"

	"books-backend/infrastructure/config"
	"books-backend/infrastructure/edge"
	pkgerrors "books-backend/pkg/errors"
	"books-backend/pkg/observability"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// errUpstreamFailure marks a 5xx answer so the breaker counts it
var errUpstreamFailure = errors.New("upstream returned a server error")

// BreakerSettings controls the per-upstream circuit breaker
type BreakerSettings struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// BreakerSettingsFrom maps the relay config onto breaker settings
func BreakerSettingsFrom(cfg config.RelayConfig) BreakerSettings {
	return BreakerSettings{
		MaxRequests:      cfg.BreakerMaxRequests,
		Interval:         30 * time.Second,
		Timeout:          time.Duration(cfg.BreakerTimeoutSec) * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      cfg.BreakerMinRequests,
	}
}

type upstream struct {
	operation string
	target    *url.URL
	proxy     *httputil.ReverseProxy
}

// Relay forwards /<operation>/... to the function URL configured for that operation
type Relay struct {
	upstreams    map[string]*upstream
	fallback     http.Handler
	errorHandler *pkgerrors.ErrorHandler
	metrics      *observability.Collector
	logger       *zap.Logger
}

// NewRelay builds one signed reverse proxy per configured upstream.
// fallback serves every path whose first segment is not an operation.
func NewRelay(
	upstreams map[string]string,
	signer *edge.Signer,
	transport http.RoundTripper,
	settings BreakerSettings,
	fallback http.Handler,
	errorHandler *pkgerrors.ErrorHandler,
	metrics *observability.Collector,
	logger *zap.Logger,
) (*Relay, error) {
	if transport == nil {
		transport = http.DefaultTransport
	}
	if fallback == nil {
		fallback = http.NotFoundHandler()
	}

	relay := &Relay{
		upstreams:    make(map[string]*upstream, len(upstreams)),
		fallback:     fallback,
		errorHandler: errorHandler,
		metrics:      metrics,
		logger:       logger,
	}

	for operation, rawURL := range upstreams {
		target, err := url.Parse(rawURL)
		if err != nil || target.Host == "" {
			return nil, fmt.Errorf("invalid upstream URL for %s: %q", operation, rawURL)
		}
		relay.upstreams[operation] = relay.newUpstream(operation, target, signer, transport, settings)
	}
	return relay, nil
}

func (rl *Relay) newUpstream(operation string, target *url.URL, signer *edge.Signer, transport http.RoundTripper, settings BreakerSettings) *upstream {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        operation,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < settings.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= settings.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			rl.logger.Warn("Circuit breaker state changed",
				zap.String("operation", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	u := &upstream{operation: operation, target: target}
	u.proxy = &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.Out.URL.Scheme = target.Scheme
			pr.Out.URL.Host = target.Host
			pr.Out.URL.Path = edge.RewriteURI(pr.In.URL.Path)
			pr.Out.URL.RawPath = ""
			pr.Out.Host = target.Host
		},
		Transport: &signingTransport{
			operation: operation,
			signer:    signer,
			breaker:   breaker,
			next:      transport,
		},
		ModifyResponse: func(resp *http.Response) error {
			rl.metrics.RecordUpstream(operation, strconv.Itoa(resp.StatusCode))
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			rl.handleError(w, r, operation, err)
		},
	}
	return u
}

// ServeHTTP routes by the first path segment
func (rl *Relay) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u, ok := rl.upstreams[edge.FirstSegment(r.URL.Path)]
	if !ok {
		rl.fallback.ServeHTTP(w, r)
		return
	}

	rl.logger.Debug("Relaying request",
		zap.String("operation", u.operation),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("upstream", u.target.Host),
	)
	u.proxy.ServeHTTP(w, r)
}

func (rl *Relay) handleError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	var appErr error
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		rl.metrics.RecordUpstream(operation, "breaker_open")
		appErr = pkgerrors.NewUnavailableError(operation).WithCause(err)
	default:
		rl.metrics.RecordUpstream(operation, "error")
		appErr = pkgerrors.NewExternalError(operation, err)
	}
	rl.errorHandler.Handle(w, r, appErr)
}

// signingTransport signs each outbound request and runs it through the breaker
type signingTransport struct {
	operation string
	signer    *edge.Signer
	breaker   *gobreaker.CircuitBreaker
	next      http.RoundTripper
}

func (t *signingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil && req.Body != http.NoBody {
		var err error
		body, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
	}
	req.Body = io.NopCloser(bytes.NewReader(body))
	req.ContentLength = int64(len(body))
	req.Header.Del("Content-Length")

	if err := t.signer.Sign(req.Context(), req, body); err != nil {
		return nil, err
	}

	result, err := t.breaker.Execute(func() (interface{}, error) {
		resp, err := t.next.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			return resp, errUpstreamFailure
		}
		return resp, nil
	})

	resp, _ := result.(*http.Response)
	if errors.Is(err, errUpstreamFailure) && resp != nil {
		return resp, nil
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}
