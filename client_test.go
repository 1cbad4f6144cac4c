package webscrapingapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

const testKey = "TESTKEY"

// capture records what the fake API server received.
type capture struct {
	mu       sync.Mutex
	method   string
	rawQuery string
	query    url.Values
	header   http.Header
	body     []byte
}

func newTestServer(t *testing.T, status int, respBody string) (*WebScrapingAPI, *capture, *httptest.Server) {
	t.Helper()

	c := &capture{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		c.mu.Lock()
		c.method = r.Method
		c.rawQuery = r.URL.RawQuery
		c.query = r.URL.Query()
		c.header = r.Header.Clone()
		c.body = body
		c.mu.Unlock()

		w.WriteHeader(status)
		_, _ = w.Write([]byte(respBody))
	}))
	t.Cleanup(ts.Close)

	wsa := NewWithOptions(testKey, &ClientOptions{Endpoint: ts.URL})
	t.Cleanup(wsa.Close)

	return wsa, c, ts
}

func TestGetDispatch(t *testing.T) {
	wsa, c, _ := newTestServer(t, http.StatusOK, "<html></html>")

	qb := NewQueryBuilder().
		URL("http://httpbin.org/headers").
		RenderJS("1").
		SetHeaders(map[string]string{"Wsa-Test": "abcd"})

	resp, err := wsa.Get(context.Background(), qb)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode() != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode())
	}
	if c.method != http.MethodGet {
		t.Errorf("method = %q, want GET", c.method)
	}
	if got := c.query.Get("api_key"); got != testKey {
		t.Errorf("api_key = %q, want %q", got, testKey)
	}
	if got := c.query.Get("url"); got != "http://httpbin.org/headers" {
		t.Errorf("url param = %q, want %q", got, "http://httpbin.org/headers")
	}
	if got := c.query.Get("render_js"); got != "1" {
		t.Errorf("render_js = %q, want %q", got, "1")
	}
	if !strings.Contains(c.rawQuery, "url=http%3A%2F%2Fhttpbin.org%2Fheaders") {
		t.Errorf("url param not percent-encoded on the wire: %q", c.rawQuery)
	}
	if got := c.header.Get("Wsa-Test"); got != "abcd" {
		t.Errorf("Wsa-Test header = %q, want %q", got, "abcd")
	}
	if len(c.query) != 3 {
		t.Errorf("expected 3 query params, got %d: %v", len(c.query), c.query)
	}
}

func TestGetInjectsExactlyOneAPIKey(t *testing.T) {
	wsa, c, _ := newTestServer(t, http.StatusOK, "")

	// A colliding builder option must not replace the client's credential.
	qb := NewQueryBuilder().
		URL("http://example.com").
		SetParam("api_key", "bogus")

	resp, err := wsa.Get(context.Background(), qb)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	defer resp.Body.Close()

	keys := c.query["api_key"]
	if len(keys) != 1 {
		t.Fatalf("expected exactly one api_key param, got %d: %v", len(keys), keys)
	}
	if keys[0] != testKey {
		t.Errorf("api_key = %q, want %q", keys[0], testKey)
	}
}

func TestGetEmptyBuilder(t *testing.T) {
	wsa, c, _ := newTestServer(t, http.StatusUnprocessableEntity, "url is required")

	resp, err := wsa.Get(context.Background(), NewQueryBuilder())
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	defer resp.Body.Close()

	// No implicit defaults: only the injected credential goes on the wire,
	// and the remote rejection comes back as an ordinary response.
	if len(c.query) != 1 || c.query.Get("api_key") != testKey {
		t.Errorf("query = %v, want only api_key=%s", c.query, testKey)
	}
	if resp.StatusCode() != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", resp.StatusCode())
	}
}

func TestRawGet(t *testing.T) {
	wsa, c, _ := newTestServer(t, http.StatusOK, "")

	params := map[string]string{
		"url":           "http://httpbin.org/headers",
		"extract_rules": `{"title":"h1"}`,
	}
	headers := map[string]string{"Wsa-Test": "abcd"}

	resp, err := wsa.RawGet(context.Background(), params, headers)
	if err != nil {
		t.Fatalf("RawGet error: %v", err)
	}
	defer resp.Body.Close()

	if got := c.query.Get("url"); got != "http://httpbin.org/headers" {
		t.Errorf("url param = %q, want %q", got, "http://httpbin.org/headers")
	}
	if got := c.query.Get("extract_rules"); got != `{"title":"h1"}` {
		t.Errorf("extract_rules = %q", got)
	}
	if got := c.query.Get("api_key"); got != testKey {
		t.Errorf("api_key = %q, want %q", got, testKey)
	}
	if got := c.header.Get("Wsa-Test"); got != "abcd" {
		t.Errorf("Wsa-Test header = %q, want %q", got, "abcd")
	}
}

func TestNon2xxIsNotAnError(t *testing.T) {
	wsa, _, _ := newTestServer(t, http.StatusUnauthorized, `{"error":"invalid api key"}`)

	resp, err := wsa.Get(context.Background(), NewQueryBuilder().URL("http://example.com"))
	if err != nil {
		t.Fatalf("Get returned error for 401 response: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode() != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode())
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if string(body) != `{"error":"invalid api key"}` {
		t.Errorf("body = %q", string(body))
	}
}

func TestTransportErrorSurfaced(t *testing.T) {
	wsa, _, ts := newTestServer(t, http.StatusOK, "")
	ts.Close()

	_, err := wsa.Get(context.Background(), NewQueryBuilder().URL("http://example.com"))
	if err == nil {
		t.Fatal("expected a transport error after server shutdown, got nil")
	}
}

func TestPostDeliversJSONBody(t *testing.T) {
	wsa, c, _ := newTestServer(t, http.StatusOK, "")

	qb := NewQueryBuilder().
		URL("http://httpbin.org/post").
		SetBody(map[string]string{"foo": "bar"})

	resp, err := wsa.Post(context.Background(), qb)
	if err != nil {
		t.Fatalf("Post error: %v", err)
	}
	defer resp.Body.Close()

	if c.method != http.MethodPost {
		t.Errorf("method = %q, want POST", c.method)
	}
	if ct := c.header.Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	if got := c.query.Get("api_key"); got != testKey {
		t.Errorf("api_key = %q, want %q", got, testKey)
	}

	var body map[string]string
	if err := json.Unmarshal(c.body, &body); err != nil {
		t.Fatalf("body is not JSON: %v (%q)", err, c.body)
	}
	if body["foo"] != "bar" {
		t.Errorf("body[foo] = %q, want %q", body["foo"], "bar")
	}
}

func TestRawPut(t *testing.T) {
	wsa, c, _ := newTestServer(t, http.StatusOK, "")

	params := map[string]string{"url": "http://httpbin.org/put"}
	body := map[string]string{"k": "v"}

	resp, err := wsa.RawPut(context.Background(), params, nil, body)
	if err != nil {
		t.Fatalf("RawPut error: %v", err)
	}
	defer resp.Body.Close()

	if c.method != http.MethodPut {
		t.Errorf("method = %q, want PUT", c.method)
	}
	var got map[string]string
	if err := json.Unmarshal(c.body, &got); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if got["k"] != "v" {
		t.Errorf("body[k] = %q, want %q", got["k"], "v")
	}
}
