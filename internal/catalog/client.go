// Package catalog implements the client for the remote product catalog.
package catalog

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/xenking/catalog-view/internal/domain/product"
)

// DefaultURL is the public catalog the service browses by default.
const DefaultURL = "https://dummyjson.com/products"

const defaultMaxBodyBytes = 4 << 20

var _ product.Fetcher = (*Client)(nil)

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	// URL is the catalog endpoint; limit and skip are added as query
	// parameters.
	URL string
	// Timeout bounds a single upstream request.
	Timeout time.Duration
	// MaxBodyBytes bounds the size of a response body.
	MaxBodyBytes int64
	// Transport is the base round tripper. Defaults to http.DefaultTransport.
	Transport http.RoundTripper

	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

func (o *Options) setDefaults() {
	if o.URL == "" {
		o.URL = DefaultURL
	}
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = defaultMaxBodyBytes
	}
	if o.Transport == nil {
		o.Transport = http.DefaultTransport
	}
	if o.TracerProvider == nil {
		o.TracerProvider = otel.GetTracerProvider()
	}
	if o.MeterProvider == nil {
		o.MeterProvider = otel.GetMeterProvider()
	}
}

// Client fetches pages from the remote catalog. It never retries and never
// caches; concurrent requests for the same page share one upstream call.
type Client struct {
	endpoint     *url.URL
	http         *http.Client
	maxBodyBytes int64
	group        singleflight.Group

	tracer   trace.Tracer
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

// NewClient creates a Client for the catalog at opts.URL.
func NewClient(opts Options) (*Client, error) {
	opts.setDefaults()

	endpoint, err := url.Parse(opts.URL)
	if err != nil {
		return nil, errors.Wrap(err, "parse catalog url")
	}
	if endpoint.Scheme != "http" && endpoint.Scheme != "https" {
		return nil, errors.Errorf("catalog url %q: unsupported scheme", opts.URL)
	}

	meter := opts.MeterProvider.Meter("github.com/xenking/catalog-view/internal/catalog")
	requests, err := meter.Int64Counter("catalog.fetch.requests",
		metric.WithDescription("Upstream catalog fetches by outcome"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create requests counter")
	}
	duration, err := meter.Float64Histogram("catalog.fetch.duration",
		metric.WithDescription("Upstream catalog fetch duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create duration histogram")
	}

	return &Client{
		endpoint: endpoint,
		http: &http.Client{
			Timeout: opts.Timeout,
			Transport: otelhttp.NewTransport(opts.Transport,
				otelhttp.WithTracerProvider(opts.TracerProvider),
				otelhttp.WithMeterProvider(opts.MeterProvider),
			),
		},
		maxBodyBytes: opts.MaxBodyBytes,
		tracer:       opts.TracerProvider.Tracer("github.com/xenking/catalog-view/internal/catalog"),
		requests:     requests,
		duration:     duration,
	}, nil
}

// Fetch loads the page addressed by req. It issues one GET with limit and
// skip query parameters and returns a *product.NetworkError or a
// *product.DecodeError on failure.
//
// Identical concurrent requests are collapsed; each caller still returns as
// soon as its own ctx is done.
func (c *Client) Fetch(ctx context.Context, req product.PageRequest) (*product.Page, error) {
	req.ApplyDefaults()
	key := pageURL(c.endpoint, req.Size, req.Offset())

	ch := c.group.DoChan(key, func() (any, error) {
		return c.fetch(context.WithoutCancel(ctx), key, req)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		page := *res.Val.(*product.Page)
		return &page, nil
	}
}

// Ping checks that the catalog answers with a decodable page.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.fetch(ctx, pageURL(c.endpoint, 1, 0), product.PageRequest{Page: 1, Size: 1})
	return err
}

func (c *Client) fetch(ctx context.Context, target string, req product.PageRequest) (_ *product.Page, rerr error) {
	ctx, span := c.tracer.Start(ctx, "catalog.Fetch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.Int("catalog.limit", req.Size),
			attribute.Int("catalog.skip", req.Offset()),
		),
	)
	start := time.Now()
	defer func() {
		outcome := outcomeOf(rerr)
		attrs := metric.WithAttributes(attribute.String("outcome", outcome))
		c.requests.Add(ctx, 1, attrs)
		c.duration.Record(ctx, time.Since(start).Seconds(), attrs)
		if rerr != nil {
			span.RecordError(rerr)
			span.SetStatus(codes.Error, outcome)
		}
		span.End()
	}()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &product.NetworkError{URL: target, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &product.NetworkError{
			URL:        target,
			StatusCode: resp.StatusCode,
			Err:        errors.New(http.StatusText(resp.StatusCode)),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes+1))
	if err != nil {
		return nil, &product.NetworkError{URL: target, Err: errors.Wrap(err, "read body")}
	}
	if int64(len(body)) > c.maxBodyBytes {
		return nil, &product.DecodeError{Err: errors.Errorf("body exceeds %d bytes", c.maxBodyBytes)}
	}

	page, err := decodePage(body)
	if err != nil {
		return nil, &product.DecodeError{Err: err}
	}
	span.SetAttributes(
		attribute.Int("catalog.total", page.Total),
		attribute.Int("catalog.products", len(page.Products)),
	)
	return page, nil
}

// pageURL builds the request URL for one page, keeping any query parameters
// already present on the endpoint.
func pageURL(endpoint *url.URL, limit, skip int) string {
	u := *endpoint
	q := u.Query()
	q.Set("limit", strconv.Itoa(limit))
	q.Set("skip", strconv.Itoa(skip))
	u.RawQuery = q.Encode()
	return u.String()
}

func outcomeOf(err error) string {
	var (
		netErr *product.NetworkError
		decErr *product.DecodeError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &netErr):
		return "network_error"
	case errors.As(err, &decErr):
		return "decode_error"
	default:
		return "error"
	}
}
