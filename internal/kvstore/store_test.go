package kvstore

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

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/dgallion1/coursedraft/internal/metrics"
	"github.com/dgallion1/coursedraft/internal/pathstore"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	keys := Keys{Prefix: "test"}

	if _, err := s.Get(ctx, keys.Projects()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing key, got %v", err)
	}

	value := []byte(`[{"id":"proj_1"}]`)
	if err := s.Put(ctx, keys.Projects(), value); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.Get(ctx, keys.Projects())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != string(value) {
		t.Fatalf("expected %s, got %s", value, got)
	}

	if err := s.Put(ctx, keys.Projects(), []byte(`[]`)); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, _ = s.Get(ctx, keys.Projects())
	if string(got) != `[]` {
		t.Fatalf("expected overwrite, got %s", got)
	}

	if err := s.Delete(ctx, keys.Projects()); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, keys.Projects()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, keys.Theme()); err != nil {
		t.Fatalf("Delete missing key: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemory()
	defer s.Close()
	exerciseStore(t, s)
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	s := NewMemory()
	buf := []byte(`"dark"`)
	_ = s.Put(context.Background(), "k", buf)
	buf[1] = 'X'
	got, _ := s.Get(context.Background(), "k")
	if string(got) != `"dark"` {
		t.Fatalf("store aliases caller buffer: %s", got)
	}
}

func TestBadgerStore(t *testing.T) {
	s, err := OpenBadger(InMemoryBadgerConfig())
	if err != nil {
		t.Fatalf("OpenBadger: %v", err)
	}
	defer s.Close()
	exerciseStore(t, s)
}

func TestBadgerStorePersistsAcrossOpen(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultBadgerConfig(dir)
	cfg.GCInterval = 0

	s, err := OpenBadger(cfg)
	if err != nil {
		t.Fatalf("OpenBadger: %v", err)
	}
	if err := s.Put(context.Background(), "k", []byte(`"v"`)); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = OpenBadger(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	got, err := s.Get(context.Background(), "k")
	if err != nil || string(got) != `"v"` {
		t.Fatalf("expected persisted value, got %s %v", got, err)
	}
}

func TestBadgerRequiresPath(t *testing.T) {
	if _, err := OpenBadger(BadgerConfig{}); err == nil {
		t.Fatal("expected error without path")
	}
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := NewRedis(context.Background(), mr.Addr())
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	defer s.Close()
	exerciseStore(t, s)
}

func TestRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	if _, err := NewRedis(context.Background(), addr); err == nil {
		t.Fatal("expected ping error")
	}
}

// fakePathstore is an in-process stand-in for the pathstore HTTP API.
func fakePathstore(t *testing.T, apiKey string) *httptest.Server {
	t.Helper()
	var mu sync.Mutex
	nodes := map[string]json.RawMessage{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+apiKey {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		key := strings.TrimPrefix(r.URL.Path, "/kv/")
		mu.Lock()
		defer mu.Unlock()
		switch r.Method {
		case http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			var req pathstore.NodeRequest
			if err := json.Unmarshal(body, &req); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			nodes[key] = req.Value
			w.WriteHeader(http.StatusCreated)
		case http.MethodGet:
			v, ok := nodes[key]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_ = json.NewEncoder(w).Encode(pathstore.NodeResponse{Key: key, Value: v})
		case http.MethodDelete:
			delete(nodes, key)
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPathstoreStore(t *testing.T) {
	srv := fakePathstore(t, "secret")
	s := NewPathstore(pathstore.NewClient(srv.URL, "secret"))
	defer s.Close()
	exerciseStore(t, s)
}

func TestPathstoreRejectsNonJSON(t *testing.T) {
	srv := fakePathstore(t, "secret")
	s := NewPathstore(pathstore.NewClient(srv.URL, "secret"))
	if err := s.Put(context.Background(), "k", []byte("not json")); err == nil {
		t.Fatal("expected error for non-JSON value")
	}
}

func TestPathstoreAuthFailure(t *testing.T) {
	srv := fakePathstore(t, "secret")
	s := NewPathstore(pathstore.NewClient(srv.URL, "wrong"))
	if _, err := s.Get(context.Background(), "k"); err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestInstrumentCountsOps(t *testing.T) {
	s := Instrument("memory-test", NewMemory())
	ctx := context.Background()
	_, _ = s.Get(ctx, "missing")
	_ = s.Put(ctx, "k", []byte(`1`))

	if got := testutil.ToFloat64(metrics.StoreOps.WithLabelValues("memory-test", "get", "miss")); got != 1 {
		t.Errorf("expected 1 miss, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.StoreOps.WithLabelValues("memory-test", "put", "ok")); got != 1 {
		t.Errorf("expected 1 put, got %v", got)
	}
}

func TestKeys(t *testing.T) {
	k := Keys{Prefix: "/coursedraft/"}
	if k.Projects() != "coursedraft/projects" {
		t.Errorf("unexpected projects key %q", k.Projects())
	}
	if (Keys{}).Theme() != "theme" {
		t.Errorf("unexpected theme key %q", (Keys{}).Theme())
	}
}
