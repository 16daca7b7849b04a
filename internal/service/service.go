// Package service реализует бизнес-логику панели управления счетами.
package service

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmeshcher/invoice-dashboard/internal/cache"
	"github.com/mmeshcher/invoice-dashboard/internal/model"
	"github.com/mmeshcher/invoice-dashboard/internal/repository"
	"github.com/mmeshcher/invoice-dashboard/internal/validation"
)

// InvoicesListPath — путь списка счетов: цель редиректа после мутации
// и цель сигнала инвалидации кэша.
const InvoicesListPath = "/dashboard/invoices"

// InvoicesPerPage — размер страницы списка счетов.
const InvoicesPerPage = 6

// LatestInvoicesCount — число последних счетов на главной странице.
const LatestInvoicesCount = 5

// ErrInvalidCredentials возвращается при неверной паре email/пароль.
// Несуществующий email и неверный пароль неразличимы для вызывающего.
var ErrInvalidCredentials = errors.New("invalid credentials")

// PersistenceError оборачивает ошибку хранилища вместе с сообщением,
// пригодным для показа над формой. Отличает сбой базы от ошибок валидации.
type PersistenceError struct {
	Message string
	Err     error
}

// Error возвращает сообщение для формы.
func (e *PersistenceError) Error() string {
	return e.Message
}

// Unwrap возвращает исходную ошибку хранилища.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	CreateInvoice(ctx context.Context, customerID uuid.UUID, amountCents int64, status model.InvoiceStatus, date time.Time) (uuid.UUID, error)
	UpdateInvoice(ctx context.Context, id, customerID uuid.UUID, amountCents int64, status model.InvoiceStatus) error
	DeleteInvoice(ctx context.Context, id uuid.UUID) error
	GetInvoiceByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	ListInvoices(ctx context.Context, query string, limit, offset int) ([]model.InvoiceRow, error)
	CountInvoices(ctx context.Context, query string) (int64, error)
	LatestInvoices(ctx context.Context, limit int) ([]model.InvoiceRow, error)
	GetCardData(ctx context.Context) (*model.CardData, error)
	GetRevenue(ctx context.Context) ([]model.Revenue, error)
	ListCustomers(ctx context.Context) ([]model.Customer, error)
	ListCustomerRows(ctx context.Context, query string) ([]model.CustomerRow, error)
}

// Service содержит бизнес-логику панели управления счетами.
type Service struct {
	repo        Repository
	invalidator cache.Invalidator
	logger      *zap.Logger
}

// NewService создаёт сервис с указанным репозиторием и сигналом инвалидации кэша.
func NewService(repo Repository, invalidator cache.Invalidator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:        repo,
		invalidator: invalidator,
		logger:      logger,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// Authenticate проверяет пару email/пароль и возвращает пользователя.
// Неизвестный email и неверный пароль дают один и тот же
// ErrInvalidCredentials. Сбой хранилища возвращается как есть:
// это не ошибка учётных данных.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	if !validation.ValidCredentials(email, password) {
		s.logger.Debug("login rejected by credential schema", zap.String("email", email))
		return nil, ErrInvalidCredentials
	}

	u, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.logger.Debug("login attempt for unknown email", zap.String("email", email))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		s.logger.Debug("login attempt with wrong password", zap.String("email", email))
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

func (s *Service) invalidateInvoices() {
	if s.invalidator != nil {
		s.invalidator.Invalidate(InvoicesListPath)
	}
}

// CreateInvoice проверяет поля формы и создаёт новый счёт. Дата счёта —
// текущий день UTC. Возвращает *validation.FormError при некорректной
// форме и *PersistenceError при сбое хранилища; в первом случае база
// не затрагивается.
func (s *Service) CreateInvoice(ctx context.Context, form url.Values) (uuid.UUID, error) {
	fields, ferr := validation.ParseInvoiceForm(form)
	if ferr != nil {
		ferr.Message = "Missing Fields. Failed to Create Invoice."
		return uuid.Nil, ferr
	}

	date := time.Now().UTC().Truncate(24 * time.Hour)

	id, err := s.repo.CreateInvoice(ctx, fields.CustomerID, fields.AmountCents, fields.Status, date)
	if err != nil {
		return uuid.Nil, &PersistenceError{
			Message: "Database Error: Failed to Create Invoice.",
			Err:     err,
		}
	}

	s.invalidateInvoices()
	return id, nil
}

// UpdateInvoice проверяет поля формы и обновляет существующий счёт.
func (s *Service) UpdateInvoice(ctx context.Context, id uuid.UUID, form url.Values) error {
	fields, ferr := validation.ParseInvoiceForm(form)
	if ferr != nil {
		ferr.Message = "Missing Fields. Failed to Update Invoice."
		return ferr
	}

	err := s.repo.UpdateInvoice(ctx, id, fields.CustomerID, fields.AmountCents, fields.Status)
	if err != nil {
		return &PersistenceError{
			Message: "Database Error: Failed to Update Invoice.",
			Err:     err,
		}
	}

	s.invalidateInvoices()
	return nil
}

// DeleteInvoice удаляет счёт. Сбой хранилища возвращается вызывающему,
// а не проглатывается после записи в лог.
func (s *Service) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteInvoice(ctx, id); err != nil {
		return &PersistenceError{
			Message: "Database Error: Failed to Delete Invoice.",
			Err:     err,
		}
	}

	s.invalidateInvoices()
	return nil
}

// GetInvoiceByID возвращает счёт по идентификатору.
func (s *Service) GetInvoiceByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	return s.repo.GetInvoiceByID(ctx, id)
}

// ListInvoicesPage возвращает страницу списка счетов по поисковой строке.
// Нумерация страниц с единицы.
func (s *Service) ListInvoicesPage(ctx context.Context, query string, page int) ([]model.InvoiceRow, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * InvoicesPerPage
	return s.repo.ListInvoices(ctx, query, InvoicesPerPage, offset)
}

// CountInvoicePages возвращает число страниц списка счетов для пагинации.
func (s *Service) CountInvoicePages(ctx context.Context, query string) (int, error) {
	count, err := s.repo.CountInvoices(ctx, query)
	if err != nil {
		return 0, err
	}
	pages := (count + InvoicesPerPage - 1) / InvoicesPerPage
	return int(pages), nil
}

// LatestInvoices возвращает последние счета для главной страницы.
func (s *Service) LatestInvoices(ctx context.Context) ([]model.InvoiceRow, error) {
	return s.repo.LatestInvoices(ctx, LatestInvoicesCount)
}

// GetCardData возвращает сводные показатели главной страницы.
func (s *Service) GetCardData(ctx context.Context) (*model.CardData, error) {
	return s.repo.GetCardData(ctx)
}

// GetRevenue возвращает выручку по месяцам.
func (s *Service) GetRevenue(ctx context.Context) ([]model.Revenue, error) {
	return s.repo.GetRevenue(ctx)
}

// ListCustomers возвращает клиентов для формы счёта.
func (s *Service) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	return s.repo.ListCustomers(ctx)
}

// ListCustomerRows возвращает таблицу клиентов с итогами по счетам.
func (s *Service) ListCustomerRows(ctx context.Context, query string) ([]model.CustomerRow, error) {
	return s.repo.ListCustomerRows(ctx, query)
}
