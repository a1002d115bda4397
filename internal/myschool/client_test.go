package myschool

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"roomcal/internal/model"
)

func testWindow() model.TimeWindow {
	return model.TimeWindow{
		Start: time.Date(2024, 6, 9, 22, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 6, 25, 21, 59, 59, int(999*time.Millisecond), time.UTC),
	}
}

func TestFetchRoomEvents(t *testing.T) {
	var gotQuery map[string][]string
	var gotAuth, gotAccept string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/events/resources" {
			http.NotFound(w, r)
			return
		}
		gotQuery = r.URL.Query()
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"id":42,"name":"Rehearsal","sessions":[]}],"meta":{"title":"e.090"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	payload, err := c.FetchRoomEvents(context.Background(), 436, testWindow(), "tok-123")
	if err != nil {
		t.Fatalf("FetchRoomEvents error = %v", err)
	}

	if len(payload.Data) != 1 || payload.Data[0].Name != "Rehearsal" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if payload.Meta.Title != "e.090" {
		t.Fatalf("Meta.Title = %q", payload.Meta.Title)
	}

	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want Bearer tok-123", gotAuth)
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q", gotAccept)
	}

	wantParams := map[string]string{
		"dateStart": "2024-06-09T22:00:00.000Z",
		"dateEnd":   "2024-06-25T21:59:59.999Z",
		"expand":    "true",
		"withTitle": "true",
		"rooms[]":   "436",
	}
	for k, want := range wantParams {
		vs := gotQuery[k]
		if len(vs) != 1 || vs[0] != want {
			t.Errorf("query %s = %v, want %q", k, vs, want)
		}
	}
}

func TestFetchRoomEventsAPIError(t *testing.T) {
	longBody := strings.Repeat("x", 500)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(longBody))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	_, err := c.FetchRoomEvents(context.Background(), 436, testWindow(), "expired")
	if err == nil {
		t.Fatal("expected an error for a 403 response")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error %T is not *APIError", err)
	}
	if apiErr.Status != http.StatusForbidden {
		t.Errorf("Status = %d, want 403", apiErr.Status)
	}
	if len(apiErr.Body) != maxErrorBodyLen {
		t.Errorf("Body length = %d, want truncation to %d", len(apiErr.Body), maxErrorBodyLen)
	}
}

func TestFetchRoomEventsBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	if _, err := c.FetchRoomEvents(context.Background(), 1, testWindow(), "tok"); err == nil {
		t.Fatal("expected a decode error")
	}
}
