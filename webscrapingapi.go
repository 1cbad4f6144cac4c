// Package webscrapingapi is a Go client for the Shifter WebScraping API,
// a service that scrapes websites through rotating proxies and an optional
// headless browser.
//
// Basic usage:
//
//	wsa := webscrapingapi.New("YOUR_API_KEY")
//
//	qb := webscrapingapi.NewQueryBuilder().
//		URL("http://httpbin.org/headers").
//		RenderJS("1").
//		SetHeaders(map[string]string{"Wsa-Test": "abcd"})
//
//	resp, err := wsa.Get(context.Background(), qb)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer resp.Body.Close()
//	html, _ := io.ReadAll(resp.Body)
//
// The provider adds parameters faster than this package models them, so
// every dispatch method has a raw variant taking the parameter map
// directly:
//
//	params := map[string]string{"url": "http://httpbin.org/headers"}
//	resp, err := wsa.RawGet(context.Background(), params, nil)
//
// Responses are returned as-is: a 401 for a bad key or a 422 for a missing
// url parameter is an ordinary response, not an error. Errors are only
// what the underlying transport reports.
package webscrapingapi

import (
	"context"
	"time"

	"resty.dev/v3"
)

// DefaultEndpoint is the production scraping endpoint.
const DefaultEndpoint = "https://scrape.shifter.io/v1"

// apiKeyParam is the query parameter carrying the credential. The client
// sets it last, so a colliding builder option can never replace it.
const apiKeyParam = "api_key"

// ClientOptions configures the transport behind a client. The zero value
// means the default endpoint and an unconfigured resty client.
type ClientOptions struct {
	// Endpoint overrides the scraping endpoint, e.g. for a test server.
	Endpoint string
	// Timeout applies to the whole request, transfer included. Zero
	// leaves the transport default (no timeout).
	Timeout time.Duration
	// UserAgent is sent on every request when non-empty.
	UserAgent string
	// HTTPClient supplies a caller-owned resty client. When set, Timeout
	// and UserAgent are ignored; configure the client directly instead.
	HTTPClient *resty.Client
}

// WebScrapingAPI dispatches scraping requests. It holds the credential and
// the transport and nothing else, so one instance is safe to share across
// goroutines for the life of the process.
type WebScrapingAPI struct {
	key      string
	endpoint string
	client   *resty.Client
}

// New returns a client for the production endpoint. No network activity
// happens until the first call.
func New(apiKey string) *WebScrapingAPI {
	return NewWithOptions(apiKey, nil)
}

// NewWithOptions returns a client with an overridden endpoint or transport.
func NewWithOptions(apiKey string, opts *ClientOptions) *WebScrapingAPI {
	if opts == nil {
		opts = &ClientOptions{}
	}

	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	client := opts.HTTPClient
	if client == nil {
		client = resty.New()
		if opts.Timeout > 0 {
			client.SetTimeout(opts.Timeout)
		}
		if opts.UserAgent != "" {
			client.SetHeader("User-Agent", opts.UserAgent)
		}
	}

	return &WebScrapingAPI{
		key:      apiKey,
		endpoint: endpoint,
		client:   client,
	}
}

// Close releases the transport's idle connections. Only needed when the
// client owns its resty client, i.e. ClientOptions.HTTPClient was nil.
func (w *WebScrapingAPI) Close() {
	w.client.Close()
}

// request assembles the common dispatch path: caller parameters first,
// credential last so it wins any collision, headers forwarded verbatim.
// Parameter values are percent-encoded by the transport.
func (w *WebScrapingAPI) request(ctx context.Context, params, headers map[string]string) *resty.Request {
	return w.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetHeaders(headers).
		SetQueryParam(apiKeyParam, w.key)
}

// Get scrapes the page described by the builder and returns the raw
// response. Transport failures are returned unchanged; non-2xx statuses
// are not errors.
func (w *WebScrapingAPI) Get(ctx context.Context, qb *QueryBuilder) (*resty.Response, error) {
	return w.RawGet(ctx, qb.Params(), qb.Headers())
}

// Post is Get with the builder's body map delivered as a JSON POST body.
func (w *WebScrapingAPI) Post(ctx context.Context, qb *QueryBuilder) (*resty.Response, error) {
	return w.RawPost(ctx, qb.Params(), qb.Headers(), qb.Body())
}

// Put is Get with the builder's body map delivered as a JSON PUT body.
func (w *WebScrapingAPI) Put(ctx context.Context, qb *QueryBuilder) (*resty.Response, error) {
	return w.RawPut(ctx, qb.Params(), qb.Headers(), qb.Body())
}

// RawGet issues a GET from a caller-supplied parameter map. The API key is
// injected automatically; callers must not include it themselves.
func (w *WebScrapingAPI) RawGet(ctx context.Context, params, headers map[string]string) (*resty.Response, error) {
	return w.request(ctx, params, headers).Get(w.endpoint)
}

// RawPost issues a POST from caller-supplied parameter, header and body
// maps. The body is JSON-encoded.
func (w *WebScrapingAPI) RawPost(ctx context.Context, params, headers, body map[string]string) (*resty.Response, error) {
	return w.request(ctx, params, headers).SetBody(body).Post(w.endpoint)
}

// RawPut is RawPost with the PUT method.
func (w *WebScrapingAPI) RawPut(ctx context.Context, params, headers, body map[string]string) (*resty.Response, error) {
	return w.request(ctx, params, headers).SetBody(body).Put(w.endpoint)
}
