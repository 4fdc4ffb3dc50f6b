package integration

import (
	"net/http"
	"strings"
	"testing"
)

func TestHealthz(t *testing.T) {
	resp := newClient(t).get("/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body := readBody(t, resp); body != "ok" {
		t.Errorf("body = %q, want ok", body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	// Make one request so the counters are non-empty.
	newClient(t).get("/healthz").Body.Close()

	resp := newClient(t).get("/metrics")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "vorlage_requests_total") {
		t.Error("exposition is missing the request counter")
	}
}

func TestDocsEndpoints(t *testing.T) {
	resp := newClient(t).get("/docs/api.json")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /docs/api.json: status = %d", resp.StatusCode)
	}
	var doc struct {
		OpenAPI string         `json:"openapi"`
		Paths   map[string]any `json:"paths"`
	}
	decodeJSON(t, resp, &doc)
	if doc.OpenAPI != "3.0.3" {
		t.Errorf("openapi = %q, want 3.0.3", doc.OpenAPI)
	}
	for _, path := range []string{"/auth/register", "/auth/me", "/keys", "/posts", "/posts/{id}"} {
		if _, ok := doc.Paths[path]; !ok {
			t.Errorf("document is missing path %s", path)
		}
	}

	resp = newClient(t).get("/docs")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /docs: status = %d", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, "/docs/api.json") {
		t.Error("viewer page does not reference the document")
	}
}

func TestRequestIDEcho(t *testing.T) {
	resp := newClient(t).get("/healthz")
	defer resp.Body.Close()
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("response is missing a generated X-Request-ID")
	}

	req, err := http.NewRequest(http.MethodGet, testServer.URL+"/healthz", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("X-Request-ID", "trace-me-123")
	resp2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp2.Body.Close()
	if got := resp2.Header.Get("X-Request-ID"); got != "trace-me-123" {
		t.Errorf("X-Request-ID = %q, want the client-supplied id echoed", got)
	}
}
