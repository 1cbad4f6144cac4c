package webscrapingapi

// QueryBuilder accumulates scraping options for a single API call. Each
// setter stores a string value under a fixed parameter name; setting the
// same option twice keeps the last value. The builder performs no
// validation, the remote API is the sole validator of required fields.
//
// A zero builder is not usable, always construct with NewQueryBuilder.
type QueryBuilder struct {
	params  map[string]string
	headers map[string]string
	body    map[string]string
}

// NewQueryBuilder returns an empty QueryBuilder.
func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{
		params:  make(map[string]string),
		headers: make(map[string]string),
		body:    make(map[string]string),
	}
}

// SetParam stores an arbitrary query parameter. It is the escape hatch for
// provider options the named setters below do not model yet.
func (q *QueryBuilder) SetParam(name, value string) *QueryBuilder {
	q.params[name] = value
	return q
}

// URL sets the target page to scrape. The API rejects requests without it.
func (q *QueryBuilder) URL(value string) *QueryBuilder {
	return q.SetParam("url", value)
}

// RenderJS controls JavaScript execution before the page is returned
// ("1" or "0").
func (q *QueryBuilder) RenderJS(value string) *QueryBuilder {
	return q.SetParam("render_js", value)
}

// ProxyType selects the proxy pool, e.g. "datacenter" or "residential".
func (q *QueryBuilder) ProxyType(value string) *QueryBuilder {
	return q.SetParam("proxy_type", value)
}

// Country sets the proxy exit country as a two letter code.
func (q *QueryBuilder) Country(value string) *QueryBuilder {
	return q.SetParam("country", value)
}

// KeepHeaders forwards the custom headers to the target site ("1" or "0").
func (q *QueryBuilder) KeepHeaders(value string) *QueryBuilder {
	return q.SetParam("keep_headers", value)
}

// Session pins subsequent requests to the same proxy.
func (q *QueryBuilder) Session(value string) *QueryBuilder {
	return q.SetParam("session", value)
}

// Timeout sets the remote scrape timeout in milliseconds.
func (q *QueryBuilder) Timeout(value string) *QueryBuilder {
	return q.SetParam("timeout", value)
}

// Device selects the emulated device, e.g. "desktop" or "mobile".
func (q *QueryBuilder) Device(value string) *QueryBuilder {
	return q.SetParam("device", value)
}

// WaitUntil sets the browser lifecycle event to wait for when rendering.
func (q *QueryBuilder) WaitUntil(value string) *QueryBuilder {
	return q.SetParam("wait_until", value)
}

// WaitFor waits a fixed amount of milliseconds after the page load.
func (q *QueryBuilder) WaitFor(value string) *QueryBuilder {
	return q.SetParam("wait_for", value)
}

// WaitForCSS waits until the given CSS selector is present.
func (q *QueryBuilder) WaitForCSS(value string) *QueryBuilder {
	return q.SetParam("wait_for_css", value)
}

// Screenshot asks the API for a screenshot of the rendered page ("1").
func (q *QueryBuilder) Screenshot(value string) *QueryBuilder {
	return q.SetParam("screenshot", value)
}

// ExtractRules sets a JSON extraction rule set evaluated remotely.
func (q *QueryBuilder) ExtractRules(value string) *QueryBuilder {
	return q.SetParam("extract_rules", value)
}

// DisableStealth turns off the stealth browser mode ("1").
func (q *QueryBuilder) DisableStealth(value string) *QueryBuilder {
	return q.SetParam("disable_stealth", value)
}

// AutoParser enables the remote structured-data parser ("1").
func (q *QueryBuilder) AutoParser(value string) *QueryBuilder {
	return q.SetParam("auto_parser", value)
}

// JSInstructions sets a JSON list of browser instructions to run remotely.
func (q *QueryBuilder) JSInstructions(value string) *QueryBuilder {
	return q.SetParam("js_instructions", value)
}

// SetHeaders replaces the custom header set attached to the outgoing
// request. Headers are forwarded to the target site, not appended to the
// query string.
func (q *QueryBuilder) SetHeaders(headers map[string]string) *QueryBuilder {
	q.headers = headers
	return q
}

// SetBody replaces the body map sent with Post and Put calls. It is
// JSON-encoded on the wire and ignored by Get.
func (q *QueryBuilder) SetBody(body map[string]string) *QueryBuilder {
	q.body = body
	return q
}

// Param reports the current value of a single option.
func (q *QueryBuilder) Param(name string) (string, bool) {
	v, ok := q.params[name]
	return v, ok
}

// Params returns a copy of the accumulated option set.
func (q *QueryBuilder) Params() map[string]string {
	return copyMap(q.params)
}

// Headers returns a copy of the custom header set.
func (q *QueryBuilder) Headers() map[string]string {
	return copyMap(q.headers)
}

// Body returns a copy of the body map.
func (q *QueryBuilder) Body() map[string]string {
	return copyMap(q.body)
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
