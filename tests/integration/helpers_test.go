package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

// baseURL returns the address of the server under test. Override with
// FINCORE_BASE_URL when the server does not run on the default port.
func baseURL() string {
	if url := os.Getenv("FINCORE_BASE_URL"); url != "" {
		return strings.TrimRight(url, "/")
	}
	return "http://localhost:8080"
}

// uniqueEmail generates a fresh email address so repeated runs do not
// collide on the unique email index.
func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d-%d@test.example.com", prefix, time.Now().UnixNano(), rand.Intn(100000))
}

// skipIfNotRunning probes the liveness endpoint and skips the test when the
// server is unreachable, so the suite is a no-op without a running stack.
func skipIfNotRunning(t *testing.T) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL() + "/health/live")
	if err != nil {
		t.Skipf("server not reachable at %s (stack not running?): %v", baseURL(), err)
	}
	resp.Body.Close()
}

// httpGet performs a GET and returns the status code and decoded JSON body.
func httpGet(t *testing.T, url string) (int, map[string]interface{}) {
	t.Helper()
	resp := doRequest(t, http.MethodGet, url, nil, nil)
	defer resp.Body.Close()
	return resp.StatusCode, decodeBody(t, resp.Body)
}

// httpPost performs a POST with a JSON body and returns the status code and
// decoded JSON body.
func httpPost(t *testing.T, url string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	resp := doRequest(t, http.MethodPost, url, body, nil)
	defer resp.Body.Close()
	return resp.StatusCode, decodeBody(t, resp.Body)
}

// httpPostResponse is httpPost but hands back the raw response so callers can
// inspect cookies and headers. The caller must close the body.
func httpPostResponse(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	return doRequest(t, http.MethodPost, url, body, nil)
}

// httpGetWithCookies performs a GET carrying the given cookies.
func httpGetWithCookies(t *testing.T, url string, cookies []*http.Cookie) (int, map[string]interface{}) {
	t.Helper()
	resp := doRequest(t, http.MethodGet, url, nil, cookies)
	defer resp.Body.Close()
	return resp.StatusCode, decodeBody(t, resp.Body)
}

// httpPostWithCookies performs a POST with a JSON body carrying the given cookies.
func httpPostWithCookies(t *testing.T, url string, body interface{}, cookies []*http.Cookie) (int, map[string]interface{}) {
	t.Helper()
	resp := doRequest(t, http.MethodPost, url, body, cookies)
	defer resp.Body.Close()
	return resp.StatusCode, decodeBody(t, resp.Body)
}

func doRequest(t *testing.T, method, url string, body interface{}, cookies []*http.Cookie) *http.Response {
	t.Helper()
	var bodyReader io.Reader
	if body != nil {
		jsonBytes, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshalling request body failed: %v", err)
		}
		bodyReader = bytes.NewReader(jsonBytes)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		t.Fatalf("creating %s request for %s failed: %v", method, url, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	return resp
}

// decodeBody decodes the response body as JSON. An empty body becomes an
// empty map; non-JSON content lands under a "raw" key for debugging.
func decodeBody(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	raw, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("reading response body failed: %v", err)
	}
	if len(raw) == 0 {
		return map[string]interface{}{}
	}
	var result map[string]interface{}
	if err := json.Unmarshal(raw, &result); err != nil {
		return map[string]interface{}{"raw": string(raw)}
	}
	return result
}

// requireStatus fails the test when the status code differs from want.
func requireStatus(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Fatalf("expected status %d, got %d", want, got)
	}
}

// extractField walks a dot-separated path through nested JSON maps, returning
// nil when any segment is missing.
func extractField(data map[string]interface{}, path string) interface{} {
	parts := strings.Split(path, ".")
	var current interface{} = data
	for _, part := range parts {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil
		}
		current, ok = m[part]
		if !ok {
			return nil
		}
	}
	return current
}

// extractString is extractField with a string assertion.
func extractString(t *testing.T, data map[string]interface{}, path string) string {
	t.Helper()
	val := extractField(data, path)
	if val == nil {
		t.Fatalf("expected string at path %q, got nil", path)
	}
	s, ok := val.(string)
	if !ok {
		t.Fatalf("expected string at path %q, got %T: %v", path, val, val)
	}
	return s
}
