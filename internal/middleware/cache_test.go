package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/mmeshcher/invoice-dashboard/internal/cache"
)

func TestCache_ServesSecondRequestFromStore(t *testing.T) {
	store := cache.NewMemory()

	hits := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"hit":` + strconv.Itoa(hits) + `}`))
	})

	h := Cache(store, "/dashboard/invoices")(next)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard/invoices", nil))

		res := w.Result()
		if res.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
		}
		if ct := res.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("content-type = %q, want application/json", ct)
		}
		if body := w.Body.String(); body != `{"hit":1}` {
			t.Fatalf("body = %q, want cached first response", body)
		}
	}

	if hits != 1 {
		t.Fatalf("handler hits = %d, want 1", hits)
	}
}

func TestCache_InvalidateForcesFreshResponse(t *testing.T) {
	store := cache.NewMemory()

	hits := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte("response"))
	})

	h := Cache(store, "/dashboard/invoices")(next)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/dashboard/invoices?page=2", nil))
	store.Invalidate("/dashboard/invoices")
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/dashboard/invoices?page=2", nil))

	if hits != 2 {
		t.Fatalf("handler hits = %d, want 2 after invalidation", hits)
	}
}

func TestCache_IgnoresOtherPathsAndMethods(t *testing.T) {
	store := cache.NewMemory()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	h := Cache(store, "/dashboard/invoices")(next)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/dashboard/invoices", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/dashboard/customers", nil))

	if store.Len() != 0 {
		t.Fatalf("cache entries = %d, want 0", store.Len())
	}
}

func TestCache_DoesNotStoreErrorResponses(t *testing.T) {
	store := cache.NewMemory()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	})

	h := Cache(store, "/dashboard/invoices")(next)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/dashboard/invoices", nil))

	if store.Len() != 0 {
		t.Fatalf("error response must not be cached, entries = %d", store.Len())
	}
}
