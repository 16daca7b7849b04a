// Package handler содержит HTTP-обработчики панели управления счетами.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmeshcher/invoice-dashboard/internal/cache"
	"github.com/mmeshcher/invoice-dashboard/internal/middleware"
	"github.com/mmeshcher/invoice-dashboard/internal/model"
	"github.com/mmeshcher/invoice-dashboard/internal/repository"
	"github.com/mmeshcher/invoice-dashboard/internal/service"
	"github.com/mmeshcher/invoice-dashboard/internal/validation"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
	CreateInvoice(ctx context.Context, form url.Values) (uuid.UUID, error)
	UpdateInvoice(ctx context.Context, id uuid.UUID, form url.Values) error
	DeleteInvoice(ctx context.Context, id uuid.UUID) error
	GetInvoiceByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	ListInvoicesPage(ctx context.Context, query string, page int) ([]model.InvoiceRow, error)
	CountInvoicePages(ctx context.Context, query string) (int, error)
	LatestInvoices(ctx context.Context) ([]model.InvoiceRow, error)
	GetCardData(ctx context.Context) (*model.CardData, error)
	GetRevenue(ctx context.Context) ([]model.Revenue, error)
	ListCustomers(ctx context.Context) ([]model.Customer, error)
	ListCustomerRows(ctx context.Context, query string) ([]model.CustomerRow, error)
}

// Handler реализует HTTP-обработчики панели управления счетами.
type Handler struct {
	service   Service
	logger    *zap.Logger
	sessions  *middleware.SessionManager
	gate      *middleware.SessionGate
	listCache *cache.Memory
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, sessions *middleware.SessionManager, listCache *cache.Memory) *Handler {
	return &Handler{
		service:   s,
		logger:    logger,
		sessions:  sessions,
		gate:      middleware.NewSessionGate(sessions),
		listCache: listCache,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type messageResponse struct {
	Message string `json:"message"`
}

// Login выполняет аутентификацию по форме email/пароль и установку cookie сессии.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	user, err := h.service.Authenticate(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "Invalid credentials."})
			return
		}
		h.logger.Error("authenticate error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "Something went wrong."})
		return
	}

	h.sessions.SetSessionCookie(w, user.ID)
	http.Redirect(w, r, middleware.DashboardPath, http.StatusSeeOther)
}

// Logout завершает сессию и возвращает пользователя на страницу входа.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearSessionCookie(w)
	http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
}

type dashboardResponse struct {
	Cards          *model.CardData      `json:"cards"`
	Revenue        []model.Revenue      `json:"revenue"`
	LatestInvoices []invoiceRowResponse `json:"latestInvoices"`
}

type invoiceRowResponse struct {
	ID            string `json:"id"`
	Amount        int64  `json:"amount"`
	Status        string `json:"status"`
	Date          string `json:"date"`
	CustomerName  string `json:"name"`
	CustomerEmail string `json:"email"`
	ImageURL      string `json:"image_url"`
}

func toInvoiceRows(rows []model.InvoiceRow) []invoiceRowResponse {
	res := make([]invoiceRowResponse, 0, len(rows))
	for _, row := range rows {
		res = append(res, invoiceRowResponse{
			ID:            row.ID.String(),
			Amount:        row.Amount,
			Status:        string(row.Status),
			Date:          row.Date.Format("2006-01-02"),
			CustomerName:  row.CustomerName,
			CustomerEmail: row.CustomerEmail,
			ImageURL:      row.ImageURL,
		})
	}
	return res
}

// GetDashboard возвращает данные главной страницы: карточки, выручку
// и последние счета.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	cards, err := h.service.GetCardData(r.Context())
	if err != nil {
		h.logger.Error("card data error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	revenue, err := h.service.GetRevenue(r.Context())
	if err != nil {
		h.logger.Error("revenue error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	latest, err := h.service.LatestInvoices(r.Context())
	if err != nil {
		h.logger.Error("latest invoices error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, dashboardResponse{
		Cards:          cards,
		Revenue:        revenue,
		LatestInvoices: toInvoiceRows(latest),
	})
}

type invoicesListResponse struct {
	Invoices   []invoiceRowResponse `json:"invoices"`
	TotalPages int                  `json:"totalPages"`
}

// ListInvoices возвращает страницу списка счетов с учётом поисковой строки.
func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")

	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}

	rows, err := h.service.ListInvoicesPage(r.Context(), query, page)
	if err != nil {
		h.logger.Error("list invoices error", zap.Error(err), zap.String("query", query))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	totalPages, err := h.service.CountInvoicePages(r.Context(), query)
	if err != nil {
		h.logger.Error("count invoices error", zap.Error(err), zap.String("query", query))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, invoicesListResponse{
		Invoices:   toInvoiceRows(rows),
		TotalPages: totalPages,
	})
}

// writeMutationError переводит единый результат мутации в HTTP-ответ:
// ошибки валидации — структурой по полям без записи в лог, сбой
// хранилища — общим сообщением с записью в лог.
func (h *Handler) writeMutationError(w http.ResponseWriter, op string, err error) {
	var ferr *validation.FormError
	if errors.As(err, &ferr) {
		writeJSON(w, http.StatusUnprocessableEntity, ferr)
		return
	}

	var perr *service.PersistenceError
	if errors.As(err, &perr) {
		status := http.StatusInternalServerError
		if errors.Is(perr, repository.ErrInvoiceNotFound) {
			status = http.StatusNotFound
		}
		h.logger.Error(op+" error", zap.Error(perr.Err))
		writeJSON(w, status, messageResponse{Message: perr.Message})
		return
	}

	h.logger.Error(op+" error", zap.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// CreateInvoice создаёт счёт по данным формы и после успеха перенаправляет
// на список счетов.
func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if _, err := h.service.CreateInvoice(r.Context(), r.PostForm); err != nil {
		h.writeMutationError(w, "create invoice", err)
		return
	}

	http.Redirect(w, r, service.InvoicesListPath, http.StatusSeeOther)
}

// UpdateInvoice обновляет существующий счёт по данным формы.
func (h *Handler) UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "invoiceID"))
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.service.UpdateInvoice(r.Context(), id, r.PostForm); err != nil {
		h.writeMutationError(w, "update invoice", err)
		return
	}

	http.Redirect(w, r, service.InvoicesListPath, http.StatusSeeOther)
}

// DeleteInvoice удаляет счёт. Ответ без редиректа: пользователь остаётся
// на текущей странице списка.
func (h *Handler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "invoiceID"))
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteInvoice(r.Context(), id); err != nil {
		h.writeMutationError(w, "delete invoice", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type invoiceResponse struct {
	ID         string  `json:"id"`
	CustomerID string  `json:"customer_id"`
	Amount     float64 `json:"amount"`
	Status     string  `json:"status"`
	Date       string  `json:"date"`
}

// GetInvoice возвращает счёт для формы редактирования. Сумма отдаётся
// в долларах, как её вводит пользователь.
func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "invoiceID"))
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	inv, err := h.service.GetInvoiceByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrInvoiceNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		h.logger.Error("get invoice error", zap.Error(err), zap.String("invoiceID", id.String()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, invoiceResponse{
		ID:         inv.ID.String(),
		CustomerID: inv.CustomerID.String(),
		Amount:     float64(inv.Amount) / 100,
		Status:     string(inv.Status),
		Date:       inv.Date.Format("2006-01-02"),
	})
}

type customerOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListCustomerOptions возвращает клиентов для выпадающего списка формы счёта.
func (h *Handler) ListCustomerOptions(w http.ResponseWriter, r *http.Request) {
	customers, err := h.service.ListCustomers(r.Context())
	if err != nil {
		h.logger.Error("list customers error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	res := make([]customerOption, 0, len(customers))
	for _, c := range customers {
		res = append(res, customerOption{ID: c.ID.String(), Name: c.Name})
	}

	writeJSON(w, http.StatusOK, map[string][]customerOption{"customers": res})
}

type customerRowResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	ImageURL     string `json:"image_url"`
	InvoiceCount int64  `json:"total_invoices"`
	PendingCents int64  `json:"total_pending"`
	PaidCents    int64  `json:"total_paid"`
}

// ListCustomers возвращает таблицу клиентов с итогами по их счетам.
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")

	rows, err := h.service.ListCustomerRows(r.Context(), query)
	if err != nil {
		h.logger.Error("list customer rows error", zap.Error(err), zap.String("query", query))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	res := make([]customerRowResponse, 0, len(rows))
	for _, c := range rows {
		res = append(res, customerRowResponse{
			ID:           c.ID.String(),
			Name:         c.Name,
			Email:        c.Email,
			ImageURL:     c.ImageURL,
			InvoiceCount: c.InvoiceCount,
			PendingCents: c.PendingCents,
			PaidCents:    c.PaidCents,
		})
	}

	writeJSON(w, http.StatusOK, map[string][]customerRowResponse{"customers": res})
}

// GetLogin отвечает на редирект шлюза для неаутентифицированных запросов.
func (h *Handler) GetLogin(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Message: "Please log in to continue."})
}
