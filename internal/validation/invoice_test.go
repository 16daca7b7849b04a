package validation

import (
	"net/url"
	"testing"

	"github.com/google/uuid"

	"github.com/mmeshcher/invoice-dashboard/internal/model"
)

func invoiceForm(customerID, amount, status string) url.Values {
	return url.Values{
		"customerId": {customerID},
		"amount":     {amount},
		"status":     {status},
	}
}

func TestParseInvoiceForm_Valid(t *testing.T) {
	customerID := uuid.New()

	tests := []struct {
		name      string
		amount    string
		status    string
		wantCents int64
	}{
		{name: "integer amount", amount: "45", status: "pending", wantCents: 4500},
		{name: "two decimals", amount: "45.50", status: "pending", wantCents: 4550},
		{name: "one decimal", amount: "45.5", status: "paid", wantCents: 4550},
		{name: "odd cents", amount: "45.55", status: "paid", wantCents: 4555},
		{name: "smallest amount", amount: "0.01", status: "pending", wantCents: 1},
		{name: "whitespace around amount", amount: " 12.30 ", status: "paid", wantCents: 1230},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, ferr := ParseInvoiceForm(invoiceForm(customerID.String(), tt.amount, tt.status))
			if ferr != nil {
				t.Fatalf("unexpected form error: %+v", ferr.Fields)
			}
			if fields.AmountCents != tt.wantCents {
				t.Fatalf("AmountCents = %d, want %d", fields.AmountCents, tt.wantCents)
			}
			if fields.CustomerID != customerID {
				t.Fatalf("CustomerID = %s, want %s", fields.CustomerID, customerID)
			}
			if string(fields.Status) != tt.status {
				t.Fatalf("Status = %q, want %q", fields.Status, tt.status)
			}
		})
	}
}

func TestParseInvoiceForm_RejectsAmount(t *testing.T) {
	customerID := uuid.New().String()

	amounts := []string{"0", "0.00", "-5", "-0.01", "", "abc", "1.234", "1,5"}

	for _, amount := range amounts {
		t.Run("amount "+amount, func(t *testing.T) {
			_, ferr := ParseInvoiceForm(invoiceForm(customerID, amount, "pending"))
			if ferr == nil {
				t.Fatalf("expected form error for amount %q", amount)
			}
			msgs := ferr.Fields["amount"]
			if len(msgs) != 1 || msgs[0] != MsgAmountPositive {
				t.Fatalf("amount errors = %v, want [%q]", msgs, MsgAmountPositive)
			}
		})
	}
}

func TestParseInvoiceForm_RejectsStatus(t *testing.T) {
	customerID := uuid.New().String()

	for _, status := range []string{"", "PAID", "overdue", "pending "} {
		t.Run("status "+status, func(t *testing.T) {
			_, ferr := ParseInvoiceForm(invoiceForm(customerID, "10", status))
			if ferr == nil {
				t.Fatalf("expected form error for status %q", status)
			}
			msgs := ferr.Fields["status"]
			if len(msgs) != 1 || msgs[0] != MsgStatusInvalid {
				t.Fatalf("status errors = %v, want [%q]", msgs, MsgStatusInvalid)
			}
		})
	}
}

func TestParseInvoiceForm_AcceptsBothStatuses(t *testing.T) {
	customerID := uuid.New().String()

	for _, status := range []model.InvoiceStatus{model.InvoiceStatusPending, model.InvoiceStatusPaid} {
		fields, ferr := ParseInvoiceForm(invoiceForm(customerID, "10", string(status)))
		if ferr != nil {
			t.Fatalf("unexpected form error for status %q: %+v", status, ferr.Fields)
		}
		if fields.Status != status {
			t.Fatalf("Status = %q, want %q", fields.Status, status)
		}
	}
}

func TestParseInvoiceForm_CollectsAllFieldErrors(t *testing.T) {
	_, ferr := ParseInvoiceForm(invoiceForm("", "-5", "paid"))
	if ferr == nil {
		t.Fatalf("expected form error")
	}

	if _, ok := ferr.Fields["customerId"]; !ok {
		t.Fatalf("expected error on customerId, got %v", ferr.Fields)
	}
	if _, ok := ferr.Fields["amount"]; !ok {
		t.Fatalf("expected error on amount, got %v", ferr.Fields)
	}
	if _, ok := ferr.Fields["status"]; ok {
		t.Fatalf("status is valid, got errors %v", ferr.Fields["status"])
	}
}

func TestValidCredentials(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		want     bool
	}{
		{name: "valid pair", email: "user@nextmail.com", password: "123456", want: true},
		{name: "short password", email: "user@nextmail.com", password: "12345", want: false},
		{name: "not an email", email: "not-an-email", password: "123456", want: false},
		{name: "empty email", email: "", password: "123456", want: false},
		{name: "display name form", email: "User <user@nextmail.com>", password: "123456", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidCredentials(tt.email, tt.password); got != tt.want {
				t.Fatalf("ValidCredentials(%q, %q) = %v, want %v", tt.email, tt.password, got, tt.want)
			}
		})
	}
}
