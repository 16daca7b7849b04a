package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	custommiddleware "github.com/mmeshcher/invoice-dashboard/internal/middleware"
	"github.com/mmeshcher/invoice-dashboard/internal/service"
)

// SetupRouter настраивает HTTP-маршруты и middleware панели управления.
// Шлюз сессий стоит до маршрутизации, поэтому защищённые обработчики
// не выполняются для неаутентифицированных запросов. Кэш списка счетов
// подключён после шлюза: в него попадают только допущенные ответы.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))
	r.Use(h.gate.Middleware)
	r.Use(custommiddleware.Cache(h.listCache, service.InvoicesListPath))

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	r.Get("/login", h.GetLogin)

	r.Route("/dashboard", func(r chi.Router) {
		r.Get("/", h.GetDashboard)

		r.Route("/invoices", func(r chi.Router) {
			r.Get("/", h.ListInvoices)
			r.Post("/", h.CreateInvoice)
			r.Get("/create", h.ListCustomerOptions)

			r.Route("/{invoiceID}", func(r chi.Router) {
				r.Get("/", h.GetInvoice)
				r.Post("/", h.UpdateInvoice)
				r.Delete("/", h.DeleteInvoice)
			})
		})

		r.Get("/customers", h.ListCustomers)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
