// Package edge re-signs CloudFront origin requests so they can reach
// function URLs that require IAM authentication.
package edge

import (
	"encoding/json"
)

// OriginRequestEvent is the Lambda@Edge origin-request event
type OriginRequestEvent struct {
	Records []Record `json:"Records"`
}

// Record wraps the CloudFront payload of one event record
type Record struct {
	CF CloudFront `json:"cf"`
}

// CloudFront holds the distribution config and the request
type CloudFront struct {
	Config  json.RawMessage `json:"config,omitempty"`
	Request Request         `json:"request"`
}

// Headers maps a lower-case header name to its values
type Headers map[string][]Header

// Header is one CloudFront header entry
type Header struct {
	Key   string `json:"key,omitempty"`
	Value string `json:"value"`
}

// Get returns the first value of name, or ""
func (h Headers) Get(name string) string {
	values := h[name]
	if len(values) == 0 {
		return ""
	}
	return values[0].Value
}

// Body is the request body as exposed to origin-request functions
type Body struct {
	InputTruncated bool   `json:"inputTruncated"`
	Action         string `json:"action,omitempty"`
	Encoding       string `json:"encoding,omitempty"`
	Data           string `json:"data,omitempty"`
}

// Request is the CloudFront request. Origin is kept raw so every
// member the relay does not look at is returned unchanged.
type Request struct {
	ClientIP    string                     `json:"clientIp,omitempty"`
	Headers     Headers                    `json:"headers"`
	Method      string                     `json:"method"`
	QueryString string                     `json:"querystring"`
	URI         string                     `json:"uri"`
	Body        *Body                      `json:"body,omitempty"`
	Origin      map[string]json.RawMessage `json:"origin,omitempty"`
}
