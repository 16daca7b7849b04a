// Package model содержит доменные сущности панели управления счетами.
package model

import (
	"time"

	"github.com/google/uuid"
)

// User представляет зарегистрированного пользователя панели управления.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}

// Customer представляет клиента, на которого выставляются счета.
type Customer struct {
	ID       uuid.UUID
	Name     string
	Email    string
	ImageURL string
}

// InvoiceStatus описывает статус оплаты счёта.
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
)

// Invoice описывает счёт, выставленный клиенту. Сумма хранится в центах.
type Invoice struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	Amount     int64
	Status     InvoiceStatus
	Date       time.Time
}

// InvoiceRow описывает строку списка счетов вместе с данными клиента.
type InvoiceRow struct {
	ID            uuid.UUID
	Amount        int64
	Status        InvoiceStatus
	Date          time.Time
	CustomerName  string
	CustomerEmail string
	ImageURL      string
}

// Revenue содержит выручку за один месяц для графика на главной странице.
type Revenue struct {
	Month   string `json:"month"`
	Revenue int64  `json:"revenue"`
}

// CardData содержит сводные показатели для карточек на главной странице.
type CardData struct {
	InvoiceCount  int64 `json:"numberOfInvoices"`
	CustomerCount int64 `json:"numberOfCustomers"`
	PaidCents     int64 `json:"totalPaidInvoices"`
	PendingCents  int64 `json:"totalPendingInvoices"`
}

// CustomerRow описывает строку таблицы клиентов с итогами по их счетам.
type CustomerRow struct {
	ID           uuid.UUID
	Name         string
	Email        string
	ImageURL     string
	InvoiceCount int64
	PendingCents int64
	PaidCents    int64
}
