package middleware

import (
	"bytes"
	"net/http"

	"github.com/mmeshcher/invoice-dashboard/internal/cache"
)

type cachingResponseWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (w *cachingResponseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *cachingResponseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// Cache возвращает middleware, отдающее сохранённые ответы GET-запросов
// для указанных путей. Ключом служит путь вместе с параметрами, поэтому
// страницы поиска и пагинации кэшируются независимо. Сбрасываются записи
// сигналом Invalidate после успешной мутации.
func Cache(store *cache.Memory, paths ...string) func(http.Handler) http.Handler {
	cacheable := make(map[string]bool, len(paths))
	for _, p := range paths {
		cacheable[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet || !cacheable[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			key := r.URL.Path
			if r.URL.RawQuery != "" {
				key += "?" + r.URL.RawQuery
			}

			if entry, ok := store.Get(key); ok {
				if entry.ContentType != "" {
					w.Header().Set("Content-Type", entry.ContentType)
				}
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write(entry.Body)
				return
			}

			cw := &cachingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(cw, r)

			if cw.status == http.StatusOK {
				store.Put(key, cache.Entry{
					ContentType: cw.Header().Get("Content-Type"),
					Body:        cw.buf.Bytes(),
				})
			}
		})
	}
}
