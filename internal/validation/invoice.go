// Package validation содержит проверку входных данных форм.
package validation

import (
	"net/mail"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/mmeshcher/invoice-dashboard/internal/model"
)

// Сообщения для полей формы счёта, отображаемые рядом с полем.
const (
	MsgCustomerRequired = "Please select a customer."
	MsgAmountPositive   = "Please enter an amount greater than $0."
	MsgStatusInvalid    = "Please select an invoice status."
)

// FormError содержит ошибки валидации формы по полям. Возвращается как
// значение, а не паника: форма отрисовывает сообщения рядом с полями.
type FormError struct {
	Message string              `json:"message"`
	Fields  map[string][]string `json:"errors"`
}

// Error возвращает сводное сообщение об ошибке формы.
func (e *FormError) Error() string {
	return e.Message
}

func (e *FormError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// InvoiceFields содержит типизированные поля формы счёта после валидации.
// Сумма приведена к центам.
type InvoiceFields struct {
	CustomerID  uuid.UUID
	AmountCents int64
	Status      model.InvoiceStatus
}

// ParseInvoiceForm проверяет поля формы счёта и приводит их к доменным типам.
// Любой некорректный ввод попадает в FormError, функция не возвращает паник
// и не прерывается на первой ошибке.
func ParseInvoiceForm(form url.Values) (InvoiceFields, *FormError) {
	var fields InvoiceFields
	ferr := &FormError{}

	customerID, err := uuid.Parse(strings.TrimSpace(form.Get("customerId")))
	if err != nil {
		ferr.add("customerId", MsgCustomerRequired)
	} else {
		fields.CustomerID = customerID
	}

	cents, ok := parseAmountCents(form.Get("amount"))
	if !ok || cents <= 0 {
		ferr.add("amount", MsgAmountPositive)
	} else {
		fields.AmountCents = cents
	}

	switch status := model.InvoiceStatus(form.Get("status")); status {
	case model.InvoiceStatusPending, model.InvoiceStatusPaid:
		fields.Status = status
	default:
		ferr.add("status", MsgStatusInvalid)
	}

	if len(ferr.Fields) > 0 {
		return InvoiceFields{}, ferr
	}

	return fields, nil
}

// parseAmountCents переводит десятичную строку в центы без плавающей точки,
// чтобы 45.50 давало ровно 4550. Допускается не более двух знаков после
// точки: доли цента отклоняются.
func parseAmountCents(s string) (int64, bool) {
	s = strings.TrimSpace(s)

	negative := false
	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	}

	intPart, fracPart, hasFrac := strings.Cut(s, ".")
	if intPart == "" && fracPart == "" {
		return 0, false
	}
	if hasFrac && len(fracPart) > 2 {
		return 0, false
	}

	var cents int64
	for _, ch := range intPart {
		if ch < '0' || ch > '9' {
			return 0, false
		}
		cents = cents*10 + int64(ch-'0')
		if cents > 1<<53 {
			return 0, false
		}
	}
	cents *= 100

	if hasFrac {
		frac := int64(0)
		for _, ch := range fracPart {
			if ch < '0' || ch > '9' {
				return 0, false
			}
			frac = frac*10 + int64(ch-'0')
		}
		if len(fracPart) == 1 {
			frac *= 10
		}
		cents += frac
	}

	if negative {
		cents = -cents
	}

	return cents, true
}

// MinPasswordLen — минимальная длина пароля при входе.
const MinPasswordLen = 6

// ValidCredentials проверяет форму пары email/пароль до обращения к базе.
func ValidCredentials(email, password string) bool {
	if len(password) < MinPasswordLen {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	return addr.Address == email
}
