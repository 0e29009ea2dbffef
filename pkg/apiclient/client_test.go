package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

type tokenKey struct{}

func contextToken(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(srv.URL+"/api/", WithTokenSource(contextToken))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestPreSendHookAttachesBearerOnlyWithSession(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get("Authorization"))
		mu.Unlock()
		w.Write([]byte(`[]`))
	})

	var out []any
	ctx := context.WithValue(context.Background(), tokenKey{}, "tok-123")
	if err := client.Get(ctx, "/bookings", nil, &out); err != nil {
		t.Fatalf("get with token: %v", err)
	}
	if err := client.Get(context.Background(), "/services", nil, &out); err != nil {
		t.Fatalf("get without token: %v", err)
	}

	if seen[0] != "Bearer tok-123" {
		t.Fatalf("expected bearer header, got %q", seen[0])
	}
	if seen[1] != "" {
		t.Fatalf("expected no credential without a session, got %q", seen[1])
	}
}

func TestGetEncodesQueryAndJoinsBasePath(t *testing.T) {
	type filter struct {
		DateFrom string `url:"dateFrom,omitempty"`
		DateTo   string `url:"dateTo,omitempty"`
	}

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/bookings" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.RawQuery != "dateFrom=2026-10-01" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		w.Write([]byte(`[{"id":1}]`))
	})

	var out []map[string]int
	if err := client.Get(context.Background(), "bookings", filter{DateFrom: "2026-10-01"}, &out); err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(out) != 1 || out[0]["id"] != 1 {
		t.Fatalf("unexpected body %v", out)
	}
}

func TestPathEscapeKeepsSegment(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() != "/api/bookings/track/CW%2F01" {
			t.Errorf("unexpected escaped path %q", r.URL.EscapedPath())
		}
		w.Write([]byte(`{}`))
	})

	if err := client.Get(context.Background(), "/bookings/track/"+PathEscape("CW/01"), nil, nil); err != nil {
		t.Fatalf("get: %v", err)
	}
}

func TestErrorResponsesCarryBackendMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/bookings":
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"Token expired"}`))
		case "/api/bookings/track/X":
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"Booking not found"}`))
		default:
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`<html>oops</html>`))
		}
	})

	err := client.Get(context.Background(), "/bookings", nil, nil)
	if !IsUnauthorized(err) || Message(err) != "Token expired" {
		t.Fatalf("expected 401 with message, got %v", err)
	}

	err = client.Get(context.Background(), "/bookings/track/X", nil, nil)
	if !IsNotFound(err) || Message(err) != "Booking not found" {
		t.Fatalf("expected 404 with message, got %v", err)
	}

	err = client.Get(context.Background(), "/other", nil, nil)
	if StatusCode(err) != http.StatusBadGateway || Message(err) != "" {
		t.Fatalf("expected bare 502, got %v", err)
	}
}

func TestJSONAndMultipartBodies(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPatch:
			if r.Header.Get("Content-Type") != "application/json" {
				t.Errorf("unexpected content type %q", r.Header.Get("Content-Type"))
			}
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if body["status"] != "Approved" {
				t.Errorf("unexpected patch body %v", body)
			}
			w.Write([]byte(`{"status":"Approved"}`))
		case http.MethodPut:
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Errorf("parse multipart: %v", err)
			}
			if r.FormValue("name") != "Full Wash" || r.FormValue("price") != "50" {
				t.Errorf("unexpected fields %v", r.MultipartForm.Value)
			}
			file, header, err := r.FormFile("image")
			if err != nil {
				t.Errorf("missing image: %v", err)
				return
			}
			data, _ := io.ReadAll(file)
			if header.Filename != "car.png" || string(data) != "png-bytes" {
				t.Errorf("unexpected image %s %q", header.Filename, data)
			}
			w.Write([]byte(`{}`))
		}
	})

	var patched map[string]string
	if err := client.PatchJSON(context.Background(), "/bookings/1", map[string]string{"status": "Approved"}, &patched); err != nil {
		t.Fatalf("patch: %v", err)
	}

	form := &MultipartForm{}
	form.AddField("name", "Full Wash")
	form.AddField("price", "50")
	form.AddFile(FormFile{Field: "image", Filename: "car.png", ContentType: "image/png", Content: strings.NewReader("png-bytes")})
	if err := client.PutMultipart(context.Background(), "/services/1", form, nil); err != nil {
		t.Fatalf("put multipart: %v", err)
	}
}

func TestTransportFailures(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})

	var out map[string]any
	err := client.Get(context.Background(), "/services", nil, &out)
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected transport error for bad body, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = client.Get(ctx, "/services", nil, &out)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation to surface, got %v", err)
	}
}

func TestNewRejectsRelativeBase(t *testing.T) {
	if _, err := New("/api"); err == nil {
		t.Fatalf("expected relative base url to fail")
	}
}

func TestTimeoutDoesNotModifySharedClient(t *testing.T) {
	shared := &http.Client{}

	client, err := New("http://backend.test/api", WithHTTPClient(shared), WithTimeout(3*time.Second))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if shared.Timeout != 0 {
		t.Fatalf("shared client timeout changed to %s", shared.Timeout)
	}
	if client.http == shared || client.http.Timeout != 3*time.Second {
		t.Fatalf("client timeout %s, shared %v", client.http.Timeout, client.http == shared)
	}

	client, err = New("http://backend.test/api", WithTimeout(time.Second), WithHTTPClient(shared))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if shared.Timeout != 0 || client.http.Timeout != time.Second {
		t.Fatalf("option order changed the result: shared %s, client %s", shared.Timeout, client.http.Timeout)
	}
}
