package httpsession

import (
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/pkg/errors"
	"golang.org/x/net/publicsuffix"

	"github.com/customeros/fresh/internal/enum"
	"github.com/customeros/fresh/internal/tracing"
)

type Options struct {
	Timeout   time.Duration
	UserAgent string
	Transport http.RoundTripper
}

// New returns a fresh client for one reset attempt: its own cookie jar and
// the redirect behaviour the account asked for.
func New(policy enum.RedirectPolicy, opts Options) (*http.Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, errors.Wrap(err, "creating cookie jar")
	}

	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	client := &http.Client{
		Jar:     jar,
		Timeout: opts.Timeout,
		Transport: &tracingTransport{
			base:      base,
			userAgent: opts.UserAgent,
		},
	}
	if policy == enum.FollowNone {
		client.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return client, nil
}

// Factory builds sessions with fixed options.
type Factory func(policy enum.RedirectPolicy) (*http.Client, error)

func NewFactory(opts Options) Factory {
	return func(policy enum.RedirectPolicy) (*http.Client, error) {
		return New(policy, opts)
	}
}

type tracingTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *tracingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	span, ctx := opentracing.StartSpanFromContext(req.Context(), "http."+req.Method)
	defer span.Finish()
	tracing.TagComponentHttpClient(span)
	ext.HTTPMethod.Set(span, req.Method)
	ext.HTTPUrl.Set(span, req.URL.Redacted())

	req = req.Clone(ctx)
	if t.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", t.userAgent)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	ext.HTTPStatusCode.Set(span, uint16(resp.StatusCode))
	return resp, nil
}
