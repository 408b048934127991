package directory

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchByIDFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/supervisors/sup-1" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(Supervisor{ID: "sup-1", Name: "Ana", Email: "ana@demo.com"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second)
	sup, err := c.FetchByID(context.Background(), "sup-1")
	if err != nil {
		t.Fatalf("FetchByID: %v", err)
	}
	if sup.ID != "sup-1" || sup.Name != "Ana" {
		t.Fatalf("unexpected supervisor: %+v", sup)
	}
}

func TestFetchByIDNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second)
	_, err := c.FetchByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFetchByIDEmptyBodyMeansNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second)
	_, err := c.FetchByID(context.Background(), "sup-1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty body, got %v", err)
	}
}

func TestFetchByIDServerErrorCollapsesToUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second)
	_, err := c.FetchByID(context.Background(), "sup-1")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestFetchByIDConnectionRefusedCollapsesToUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // port is now dead

	c := NewClient(srv.URL, "", 500*time.Millisecond)
	_, err := c.FetchByID(context.Background(), "sup-1")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestFetchAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/supervisors" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode([]Supervisor{
			{ID: "sup-1", Name: "Ana"},
			{ID: "sup-2", Name: "Luis"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second)
	got, err := c.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(got) != 2 || got[1].ID != "sup-2" {
		t.Fatalf("unexpected supervisors: %+v", got)
	}
}

func TestFetchAllEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second)
	got, err := c.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty slice, got %#v", got)
	}
}

func TestAuthHeaderNormalization(t *testing.T) {
	cases := map[string]string{
		"plain-token":  "Bearer plain-token",
		"Bearer tok":   "Bearer tok",
		"Basic dXNyOg": "Basic dXNyOg",
		"":             "",
	}
	for token, want := range cases {
		var got string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Get("Authorization")
			_, _ = w.Write([]byte("[]"))
		}))
		c := NewClient(srv.URL, token, time.Second)
		if _, err := c.FetchAll(context.Background()); err != nil {
			t.Fatalf("FetchAll: %v", err)
		}
		srv.Close()
		if got != want {
			t.Fatalf("token %q: header %q, want %q", token, got, want)
		}
	}
}

func TestDefaultBaseURL(t *testing.T) {
	c := NewClient("", "", 0)
	if c.BaseURL() != "http://localhost:8096" {
		t.Fatalf("unexpected default base url: %s", c.BaseURL())
	}
}
