package app

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/listfeed/listfeed/internal/config"
	"github.com/listfeed/listfeed/internal/fetch"
	"github.com/listfeed/listfeed/internal/records"
)

const (
	usersBody  = `[{"id":1,"email":"a@x.com","name":"A","company":{"name":"C"}},{"id":2,"email":"b@x.com","name":"B","company":{"name":"D"}}]`
	albumsBody = `{"feed":{"results":[{"id":"10","artistName":"Band","releaseDate":"2023-09-15","artistUrl":"https://a","artworkUrl100":"https://b"}]}}`
)

func newTestServer(t *testing.T, musiciansStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, usersBody)
	})
	mux.HandleFunc("/albums.json", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(musiciansStatus)
		_, _ = io.WriteString(w, albumsBody)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestApp(t *testing.T, srv *httptest.Server) *App {
	t.Helper()
	cfg := config.Default()
	cfg.UsersURL = srv.URL + "/users"
	cfg.MusiciansURL = srv.URL + "/albums.json"
	cfg.RequestTimeout = 2 * time.Second

	a := New(context.Background(), cfg, NewClient(cfg), zaptest.NewLogger(t))
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestFetch_All(t *testing.T) {
	a := newTestApp(t, newTestServer(t, http.StatusOK))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	results, err := a.Fetch(ctx, records.UsersResource, records.MusiciansResource)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[0].Resource != records.UsersResource || len(results[0].Records) != 2 {
		t.Fatalf("users result = %+v", results[0])
	}
	if results[1].Resource != records.MusiciansResource || len(results[1].Records) != 1 {
		t.Fatalf("musicians result = %+v", results[1])
	}
	if results[1].Records[0].Link() != "https://a" {
		t.Fatalf("musician link = %q", results[1].Records[0].Link())
	}
	if results[0].RequestID == "" {
		t.Fatal("RequestID is empty")
	}
}

func TestFetch_ReportsFailuresPerResource(t *testing.T) {
	a := newTestApp(t, newTestServer(t, http.StatusServiceUnavailable))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	results, err := a.Fetch(ctx, records.UsersResource, records.MusiciansResource)
	if err == nil {
		t.Fatal("Fetch returned nil error, want musicians failure")
	}
	if !strings.Contains(err.Error(), "musicians") {
		t.Fatalf("error = %q, want resource name", err)
	}
	if results[0].Err != nil {
		t.Fatalf("users failed: %v", results[0].Err)
	}
	if kind, ok := fetch.KindOf(results[1].Err); !ok || kind != fetch.KindInvalidStatusCode {
		t.Fatalf("musicians error = %v, want invalid status", results[1].Err)
	}
}

func TestFetch_UnknownResource(t *testing.T) {
	a := newTestApp(t, newTestServer(t, http.StatusOK))
	if _, err := a.Fetch(context.Background(), "albums"); err == nil {
		t.Fatal("Fetch(albums) returned nil error")
	}
}

func TestServeMetrics(t *testing.T) {
	a := newTestApp(t, newTestServer(t, http.StatusOK))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := a.Fetch(ctx, records.UsersResource); err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	addr, err := a.ServeMetrics("127.0.0.1:0")
	if err != nil {
		t.Fatalf("ServeMetrics returned error: %v", err)
	}
	resp, err := http.Get("http://" + addr.String() + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `listfeed_fetch_total{outcome="loaded",resource="users"} 1`) {
		t.Fatalf("metrics output missing users fetch:\n%s", body)
	}
}

func TestClose_IsIdempotent(t *testing.T) {
	a := newTestApp(t, newTestServer(t, http.StatusOK))
	if err := a.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("second Close returned error: %v", err)
	}
}
