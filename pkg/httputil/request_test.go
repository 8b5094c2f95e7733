package httputil

import (
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
)

func TestQueryBool(t *testing.T) {
	tests := []struct {
		query        string
		key          string
		defaultValue bool
		want         bool
	}{
		{"users=true", "users", false, true},
		{"users=1", "users", false, true},
		{"users=false", "users", true, false},
		{"users=no", "users", true, false},
		{"", "users", true, true},
		{"", "users", false, false},
	}

	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/?"+tt.query, nil)
		if got := QueryBool(r, tt.key, tt.defaultValue); got != tt.want {
			t.Errorf("QueryBool(%q, default=%v) = %v, want %v", tt.query, tt.defaultValue, got, tt.want)
		}
	}
}

func TestQueryStrings(t *testing.T) {
	r := httptest.NewRequest("GET", "/?usernames=alice,bob,%20carol%20,", nil)
	got := QueryStrings(r, "usernames")
	want := []string{"alice", "bob", "carol"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("QueryStrings() = %v, want %v", got, want)
	}

	r = httptest.NewRequest("GET", "/", nil)
	if got := QueryStrings(r, "usernames"); got != nil {
		t.Errorf("QueryStrings() on absent param = %v, want nil", got)
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	if got := ClientIP(r); got != "10.0.0.1:1234" {
		t.Errorf("ClientIP() = %q, want remote addr", got)
	}

	r.Header.Set("X-Real-IP", "10.0.0.2")
	if got := ClientIP(r); got != "10.0.0.2" {
		t.Errorf("ClientIP() = %q, want X-Real-IP", got)
	}

	r.Header.Set("X-Forwarded-For", "10.0.0.3, 10.0.0.4")
	if got := ClientIP(r); got != "10.0.0.3" {
		t.Errorf("ClientIP() = %q, want first X-Forwarded-For entry", got)
	}
}

func TestParseJSON(t *testing.T) {
	var dest struct {
		Text string `json:"text"`
	}

	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"text":"hello"}`))
	if err := ParseJSON(r, &dest); err != nil {
		t.Fatalf("ParseJSON() error: %v", err)
	}
	if dest.Text != "hello" {
		t.Errorf("Text = %q, want hello", dest.Text)
	}

	r = httptest.NewRequest("POST", "/", strings.NewReader(`{broken`))
	if err := ParseJSON(r, &dest); err == nil {
		t.Error("ParseJSON() should fail on malformed JSON")
	}
}
