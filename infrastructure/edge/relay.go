package edge

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// ErrNotCustomOrigin is returned when the request does not target a custom origin
var ErrNotCustomOrigin = errors.New("unexpected origin type, expected 'custom'")

// Relay turns a CloudFront origin request into one signed for a function URL
type Relay struct {
	signer *Signer
	logger *zap.Logger
}

// NewRelay creates a new relay
func NewRelay(signer *Signer, logger *zap.Logger) *Relay {
	return &Relay{
		signer: signer,
		logger: logger,
	}
}

// Handle is the Lambda@Edge entry point. The returned request is forwarded
// to the origin; an error aborts delivery.
func (r *Relay) Handle(ctx context.Context, event OriginRequestEvent) (*Request, error) {
	if ce := r.logger.Check(zap.DebugLevel, "Origin request event"); ce != nil {
		raw, _ := json.Marshal(event)
		ce.Write(zap.ByteString("event", raw))
	}

	if len(event.Records) == 0 {
		return nil, errors.New("event has no records")
	}

	request := event.Records[0].CF.Request
	if err := r.Rewrite(ctx, &request); err != nil {
		r.logger.Error("Failed to relay request", zap.String("uri", request.URI), zap.Error(err))
		return nil, err
	}

	if ce := r.logger.Check(zap.DebugLevel, "Signed request"); ce != nil {
		raw, _ := json.Marshal(request)
		ce.Write(zap.ByteString("request", raw))
	}
	return &request, nil
}

// Rewrite strips the forwarding header, drops the operation segment from
// the URI and signs the request in place.
func (r *Relay) Rewrite(ctx context.Context, request *Request) error {
	delete(request.Headers, strings.ToLower(ForwardedForHeader))

	if _, ok := request.Origin["custom"]; !ok {
		origin, _ := json.Marshal(request.Origin)
		return fmt.Errorf("%w, got: %s", ErrNotCustomOrigin, origin)
	}

	request.URI = RewriteURI(request.URI)

	host := request.Headers.Get("host")
	if host == "" {
		return errors.New("request has no host header")
	}

	target := "https://" + host + request.URI
	if request.QueryString != "" {
		target += "?" + request.QueryString
	}

	body, err := decodeBody(request.Body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, request.Method, target, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request to sign: %w", err)
	}
	for name, values := range request.Headers {
		if len(values) == 0 || name == "host" || name == "content-length" {
			continue
		}
		key := values[0].Key
		if key == "" {
			key = name
		}
		req.Header.Set(key, values[0].Value)
	}

	if err := r.signer.Sign(ctx, req, body); err != nil {
		return err
	}

	for key, values := range req.Header {
		request.Headers[strings.ToLower(key)] = []Header{{
			Key:   key,
			Value: strings.Join(values, ","),
		}}
	}
	return nil
}

func decodeBody(body *Body) ([]byte, error) {
	if body == nil || body.Data == "" {
		return nil, nil
	}
	if body.Encoding == "base64" {
		data, err := base64.StdEncoding.DecodeString(body.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode request body: %w", err)
		}
		return data, nil
	}
	return []byte(body.Data), nil
}
