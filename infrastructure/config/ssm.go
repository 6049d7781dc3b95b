package config

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ParameterGetter is the subset of the SSM client used to discover function URLs
type ParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// ParameterName returns the SSM parameter holding the function URL of an
// operation, e.g. "/books" + "getBook" -> "/books/GetBookUrl".
func ParameterName(prefix, operation string) string {
	runes := []rune(operation)
	if len(runes) > 0 {
		runes[0] = unicode.ToUpper(runes[0])
	}
	return strings.TrimSuffix(prefix, "/") + "/" + string(runes) + "Url"
}

// ResolveUpstreams fills the relay upstreams that are not configured
// explicitly from SSM. Explicit values always win.
func (r *RelayConfig) ResolveUpstreams(ctx context.Context, client ParameterGetter) error {
	if r.Upstreams == nil {
		r.Upstreams = make(map[string]string)
	}
	for _, op := range Operations {
		if r.Upstreams[op] != "" {
			continue
		}
		if r.SSMPrefix == "" {
			return fmt.Errorf("no upstream URL for %s and RELAY_SSM_PREFIX is not set", op)
		}
		name := ParameterName(r.SSMPrefix, op)
		out, err := client.GetParameter(ctx, &ssm.GetParameterInput{Name: aws.String(name)})
		if err != nil {
			return fmt.Errorf("failed to read parameter %s: %w", name, err)
		}
		if out.Parameter == nil || aws.ToString(out.Parameter.Value) == "" {
			return fmt.Errorf("parameter %s is empty", name)
		}
		r.Upstreams[op] = aws.ToString(out.Parameter.Value)
	}
	return nil
}
