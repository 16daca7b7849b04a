package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name           string
		sessionPresent bool
		path           string
		want           Decision
		wantTarget     string
	}{
		{name: "protected without session", sessionPresent: false, path: "/dashboard", want: DecisionDeny},
		{name: "protected subpath without session", sessionPresent: false, path: "/dashboard/invoices", want: DecisionDeny},
		{name: "protected with session", sessionPresent: true, path: "/dashboard", want: DecisionAllow},
		{name: "protected subpath with session", sessionPresent: true, path: "/dashboard/invoices/create", want: DecisionAllow},
		{name: "public without session", sessionPresent: false, path: "/login", want: DecisionAllow},
		{name: "root without session", sessionPresent: false, path: "/", want: DecisionAllow},
		{name: "public with session", sessionPresent: true, path: "/login", want: DecisionRedirect, wantTarget: DashboardPath},
		{name: "root with session", sessionPresent: true, path: "/", want: DecisionRedirect, wantTarget: DashboardPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, target := Decide(tt.sessionPresent, tt.path)
			if got != tt.want {
				t.Fatalf("Decide(%v, %q) = %v, want %v", tt.sessionPresent, tt.path, got, tt.want)
			}
			if target != tt.wantTarget {
				t.Fatalf("target = %q, want %q", target, tt.wantTarget)
			}
		})
	}
}

func TestSessionGate_DeniedRequestDoesNotReachHandler(t *testing.T) {
	gate := NewSessionGate(NewSessionManager("test-secret"))

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("protected handler must not run without session")
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/dashboard/invoices", nil)

	gate.Middleware(next).ServeHTTP(w, r)

	res := w.Result()
	if res.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusSeeOther)
	}
	if loc := res.Header.Get("Location"); loc != LoginPath {
		t.Fatalf("location = %q, want %q", loc, LoginPath)
	}
}

func TestSessionGate_AllowsAndInjectsUserID(t *testing.T) {
	m := NewSessionManager("test-secret")
	gate := NewSessionGate(m)
	userID := uuid.New()

	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		id, ok := GetUserIDFromContext(r.Context())
		if !ok {
			t.Fatalf("user id not in context")
		}
		if id != userID {
			t.Fatalf("user id from context = %s, want %s", id, userID)
		}
	})

	rec := httptest.NewRecorder()
	m.SetSessionCookie(rec, userID)

	r := httptest.NewRequest(http.MethodGet, "/dashboard/invoices", nil)
	r.AddCookie(rec.Result().Cookies()[0])

	gate.Middleware(next).ServeHTTP(httptest.NewRecorder(), r)

	if !nextCalled {
		t.Fatalf("next handler was not called")
	}
}

func TestSessionGate_RedirectsAuthenticatedFromPublicPage(t *testing.T) {
	m := NewSessionManager("test-secret")
	gate := NewSessionGate(m)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("public handler must not run for authenticated user")
	})

	rec := httptest.NewRecorder()
	m.SetSessionCookie(rec, uuid.New())

	r := httptest.NewRequest(http.MethodGet, "/login", nil)
	r.AddCookie(rec.Result().Cookies()[0])

	w := httptest.NewRecorder()
	gate.Middleware(next).ServeHTTP(w, r)

	res := w.Result()
	if res.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusSeeOther)
	}
	if loc := res.Header.Get("Location"); loc != DashboardPath {
		t.Fatalf("location = %q, want %q", loc, DashboardPath)
	}
}

func TestSessionGate_SkipsAPIPaths(t *testing.T) {
	gate := NewSessionGate(NewSessionManager("test-secret"))

	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
	})

	r := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	gate.Middleware(next).ServeHTTP(httptest.NewRecorder(), r)

	if !nextCalled {
		t.Fatalf("api path must bypass the gate")
	}
}
