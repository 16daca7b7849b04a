package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestSessionManager_RoundTrip(t *testing.T) {
	m := NewSessionManager("test-secret")
	userID := uuid.New()

	w := httptest.NewRecorder()
	m.SetSessionCookie(w, userID)

	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("no cookies set by SetSessionCookie")
	}

	r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	r.AddCookie(cookies[0])

	got, ok := m.UserIDFromRequest(r)
	if !ok {
		t.Fatalf("valid cookie not accepted")
	}
	if got != userID {
		t.Fatalf("user id = %s, want %s", got, userID)
	}
}

func TestSessionManager_RejectsForgedCookie(t *testing.T) {
	m := NewSessionManager("test-secret")
	other := NewSessionManager("other-secret")

	w := httptest.NewRecorder()
	other.SetSessionCookie(w, uuid.New())

	r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	r.AddCookie(w.Result().Cookies()[0])

	if _, ok := m.UserIDFromRequest(r); ok {
		t.Fatalf("cookie signed with another key must be rejected")
	}
}

func TestSessionManager_RejectsMalformedCookie(t *testing.T) {
	m := NewSessionManager("test-secret")

	for _, value := range []string{"", "no-dot", "not-a-uuid.deadbeef"} {
		r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		r.AddCookie(&http.Cookie{Name: "session_token", Value: value})

		if _, ok := m.UserIDFromRequest(r); ok {
			t.Fatalf("malformed cookie %q must be rejected", value)
		}
	}
}

func TestSessionManager_ClearSessionCookie(t *testing.T) {
	m := NewSessionManager("test-secret")

	w := httptest.NewRecorder()
	m.ClearSessionCookie(w)

	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("no cookies set by ClearSessionCookie")
	}
	if cookies[0].Value != "" || cookies[0].MaxAge >= 0 {
		t.Fatalf("cookie not cleared: value=%q maxage=%d", cookies[0].Value, cookies[0].MaxAge)
	}
}
