package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/schoolwatch/vtrack/internal/search"
	"github.com/schoolwatch/vtrack/internal/wire"
)

var _ search.Backend = (*Client)(nil)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func reply(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func TestNewRejectsBadURL(t *testing.T) {
	for _, raw := range []string{"", "127.0.0.1:8080", "ftp://host", "http://[::1"} {
		if _, err := New(raw); err == nil {
			t.Errorf("New(%q) should fail", raw)
		}
	}
}

func TestSuggestSendsRequest(t *testing.T) {
	var got wire.SearchRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/search/suggestions" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content-type = %q", ct)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		reply(`{"success":true,"suggestions":["Maria Lopez","Mark Tan"]}`)(w, r)
	})

	list, err := c.Suggest(context.Background(), wire.SearchRequest{Query: "Ma", Type: wire.TypeStudentName})
	if err != nil {
		t.Fatal(err)
	}
	if got.Query != "Ma" || got.Type != wire.TypeStudentName {
		t.Errorf("server saw %+v", got)
	}
	if len(list) != 2 || list[0] != "Maria Lopez" {
		t.Errorf("suggestions = %v", list)
	}
}

func TestSearchDecodesViolations(t *testing.T) {
	c := newTestClient(t, reply(`{"success":true,"violations":[
		{"id":7,"student_id":"136-001","student_name":"Mark Tan","grade_level":"10","section":"B",
		 "violation_type":"No ID","date_formatted":"Mar 01, 2024 07:05 AM","status":"In Review",
		 "confidence":91.5,"reported_by":"System"}]}`))

	got, err := c.Search(context.Background(), wire.SearchRequest{Query: "mark", Type: wire.TypeStudentName})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d violations", len(got))
	}
	v := got[0]
	if v.ID != 7 || v.Status != wire.StatusInReview || v.Confidence == nil || *v.Confidence != 91.5 {
		t.Errorf("violation = %+v", v)
	}
}

func TestSearchFailures(t *testing.T) {
	tests := []struct {
		name      string
		handler   http.HandlerFunc
		malformed bool
		message   string
	}{
		{"negative ack", reply(`{"success":false,"message":"Search query is required"}`), false, "Search query is required"},
		{"negative ack without message", reply(`{"success":false}`), false, ""},
		{"http failure", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"success":false,"message":"DB error"}`))
		}, false, "DB error"},
		{"html error page", func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "<html>bad gateway</html>", http.StatusBadGateway)
		}, false, ""},
		{"not json", reply(`<?php echo "oops"; ?>`), true, ""},
		{"missing list", reply(`{"success":true}`), true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)
			_, err := c.Search(context.Background(), wire.SearchRequest{Query: "x"})
			if err == nil {
				t.Fatal("Search() should fail")
			}
			if got := errors.Is(err, ErrMalformed); got != tt.malformed {
				t.Errorf("errors.Is(ErrMalformed) = %v, want %v (err %v)", got, tt.malformed, err)
			}
			if tt.malformed {
				if msg := search.UserMessage(err); msg != search.GenericSearchError {
					t.Errorf("UserMessage = %q, want generic", msg)
				}
				return
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error %v is not *APIError", err)
			}
			if apiErr.Message != tt.message {
				t.Errorf("message = %q, want %q", apiErr.Message, tt.message)
			}
			want := tt.message
			if want == "" {
				want = search.GenericSearchError
			}
			if msg := search.UserMessage(err); msg != want {
				t.Errorf("UserMessage = %q, want %q", msg, want)
			}
		})
	}
}

func TestSearchHonorsContextDeadline(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Search(ctx, wire.SearchRequest{Query: "x"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want deadline exceeded", err)
	}
}

func TestLoginAndRegister(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/login":
			var creds wire.Credentials
			_ = json.NewDecoder(r.Body).Decode(&creds)
			if creds.Password != "pw" {
				reply(`{"success":false,"message":"Invalid credentials"}`)(w, r)
				return
			}
			reply(`{"success":true,"message":"Login successful","user":{"id":3,"username":"guard1","email":"g@x"}}`)(w, r)
		case "/api/register":
			reply(`{"success":true,"message":"Registration successful"}`)(w, r)
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	u, err := c.Login(ctx, wire.Credentials{Username: "guard1", Password: "pw"})
	if err != nil {
		t.Fatal(err)
	}
	if u.ID != 3 || u.Username != "guard1" {
		t.Errorf("user = %+v", u)
	}

	_, err = c.Login(ctx, wire.Credentials{Username: "guard1", Password: "bad"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "Invalid credentials" {
		t.Errorf("bad login error = %v", err)
	}

	if _, err := c.Register(ctx, wire.Registration{Username: "x"}); !errors.Is(err, ErrMalformed) {
		t.Errorf("register without user error = %v, want ErrMalformed", err)
	}
}

func TestListViolationsLimit(t *testing.T) {
	var rawQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/violations" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		rawQuery = r.URL.RawQuery
		reply(`{"success":true,"violations":[]}`)(w, r)
	})

	list, err := c.ListViolations(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 || rawQuery != "limit=5" {
		t.Errorf("list = %v, query = %q", list, rawQuery)
	}
}

func TestSubmitViolation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var v wire.NewViolation
		_ = json.NewDecoder(r.Body).Decode(&v)
		if v.StudentID == "" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"success":false,"message":"Missing field: student_id"}`))
			return
		}
		reply(`{"success":true,"message":"Violation recorded","violation_id":42}`)(w, r)
	})
	ctx := context.Background()

	id, err := c.SubmitViolation(ctx, wire.NewViolation{StudentID: "1", StudentName: "A", ViolationType: "Late"})
	if err != nil || id != 42 {
		t.Errorf("SubmitViolation = %d, %v", id, err)
	}

	_, err = c.SubmitViolation(ctx, wire.NewViolation{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest {
		t.Errorf("missing field error = %v", err)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	var upd wire.ProfileUpdate
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/profile":
			reply(`{"success":true,"profile":{"full_name":"Rosa","email":"r@x","address":"","contact_number":"0917","profile_photo":""}}`)(w, r)
		case "/api/profile/update":
			_ = json.NewDecoder(r.Body).Decode(&upd)
			reply(`{"success":true,"message":"Profile updated successfully"}`)(w, r)
		}
	})
	ctx := context.Background()

	p, err := c.Profile(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if p.FullName != "Rosa" || p.ContactNumber != "0917" {
		t.Errorf("profile = %+v", p)
	}
	if err := c.UpdateProfile(ctx, wire.ProfileUpdate{ID: 3, FullName: "Rosa D."}); err != nil {
		t.Fatal(err)
	}
	if upd.ID != 3 || upd.FullName != "Rosa D." {
		t.Errorf("server saw %+v", upd)
	}
}
