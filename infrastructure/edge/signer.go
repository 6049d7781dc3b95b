package edge

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
)

// ServiceName is the SigV4 service of Lambda function URLs
const ServiceName = "lambda"

// ForwardedForHeader is dropped before signing. CloudFront appends to it
// after the function runs, which would break the signature.
const ForwardedForHeader = "X-Forwarded-For"

// RewriteURI drops the first path segment: /updateBook/42 becomes /42
func RewriteURI(uri string) string {
	trimmed := strings.TrimPrefix(uri, "/")
	if i := strings.Index(trimmed, "/"); i >= 0 {
		return trimmed[i:]
	}
	return "/"
}

// FirstSegment returns the first path segment: /updateBook/42 gives updateBook
func FirstSegment(uri string) string {
	trimmed := strings.TrimPrefix(uri, "/")
	if i := strings.Index(trimmed, "/"); i >= 0 {
		return trimmed[:i]
	}
	return trimmed
}

// RegionFromHost returns the third label of a function URL host,
// <id>.lambda-url.<region>.on.aws
func RegionFromHost(host string) (string, error) {
	labels := strings.Split(host, ".")
	if len(labels) < 3 || labels[2] == "" {
		return "", fmt.Errorf("cannot derive region from host %q", host)
	}
	return labels[2], nil
}

// Signer signs HTTP requests for the lambda service with the relay's own credentials
type Signer struct {
	signer      *v4.Signer
	credentials aws.CredentialsProvider
	region      string
	now         func() time.Time
}

// NewSigner creates a signer. region overrides the region taken from the host when set.
func NewSigner(credentials aws.CredentialsProvider, region string) *Signer {
	return &Signer{
		signer:      v4.NewSigner(),
		credentials: credentials,
		region:      region,
		now:         time.Now,
	}
}

// WithClock replaces the signing clock
func (s *Signer) WithClock(now func() time.Time) *Signer {
	s.now = now
	return s
}

// Sign adds Authorization, X-Amz-Date and, for temporary credentials,
// X-Amz-Security-Token to req. body must be the exact bytes sent.
func (s *Signer) Sign(ctx context.Context, req *http.Request, body []byte) error {
	region := s.region
	if region == "" {
		var err error
		if region, err = RegionFromHost(req.URL.Hostname()); err != nil {
			return err
		}
	}

	creds, err := s.credentials.Retrieve(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve signing credentials: %w", err)
	}

	req.Header.Del(ForwardedForHeader)

	hash := sha256.Sum256(body)
	if err := s.signer.SignHTTP(ctx, creds, req, hex.EncodeToString(hash[:]), ServiceName, region, s.now()); err != nil {
		return fmt.Errorf("failed to sign request: %w", err)
	}
	return nil
}
