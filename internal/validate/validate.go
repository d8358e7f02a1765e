// Package validate provides input validation helpers for the artisan CLI.
package validate

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/manav03panchal/artisan/internal/errors"
)

const (
	// MaxTitleLength is the maximum length of an intervention title.
	MaxTitleLength = 128
	// MaxNameLength is the maximum length of a client name.
	MaxNameLength = 128
	// MaxAddressLength is the maximum length of a site address.
	MaxAddressLength = 512
	// MaxInvoiceNumberLength is the maximum length of an invoice number.
	MaxInvoiceNumberLength = 32
)

// invoiceNumberRegex allows numbers like "F-2026-014" or "2026/14".
var invoiceNumberRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._/-]*$`)

// phoneRegex accepts digits with the usual separators and a leading +.
var phoneRegex = regexp.MustCompile(`^\+?[0-9(][0-9 ().-]{3,}$`)

// Sanitize trims s, normalizes line endings to spaces and drops control
// characters, including null bytes.
func Sanitize(s string) string {
	s = strings.TrimSpace(s)
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			sb.WriteRune(' ')
		case unicode.IsControl(r):
		default:
			sb.WriteRune(r)
		}
	}
	return strings.TrimSpace(sb.String())
}

func text(field, value string, max int, suggestion string) error {
	if value == "" {
		return errors.NewUserError(strings.ToUpper(field[:1])+field[1:]+" cannot be empty", suggestion)
	}
	if utf8.RuneCountInString(value) > max {
		return errors.NewUserErrorWithField(field, value,
			strings.ToUpper(field[:1])+field[1:]+" too long",
			"Keep it under the length limit")
	}
	return nil
}

// Title validates an intervention title.
func Title(title string) error {
	err := text("title", title, MaxTitleLength, "Give the intervention a short title, e.g. 'Leak repair'.")
	if err != nil && title == "" {
		return err.(*errors.UserError).WithSentinel(errors.ErrTitleRequired)
	}
	return err
}

// ClientName validates a client name.
func ClientName(name string) error {
	return text("name", name, MaxNameLength, "Pass the client name, e.g. 'artisan client add \"Dupont\"'.")
}

// Address validates an optional site address.
func Address(address string) error {
	if address == "" {
		return nil
	}
	return text("address", address, MaxAddressLength, "")
}

// InvoiceNumber validates an invoice number.
func InvoiceNumber(number string) error {
	if err := text("invoice number", number, MaxInvoiceNumberLength, "Use the number printed on the invoice, e.g. F-2026-014."); err != nil {
		return err
	}
	if !invoiceNumberRegex.MatchString(number) {
		return errors.NewUserErrorWithField("invoice number", number,
			"Invalid invoice number",
			"Use letters, digits, dashes, dots or slashes, e.g. F-2026-014")
	}
	return nil
}

// Email validates an optional email address.
func Email(email string) error {
	if email == "" {
		return nil
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errors.NewUserErrorWithField("email", email, "Invalid email address", "Use a plain address like name@example.com")
	}
	return nil
}

// Phone validates an optional phone number.
func Phone(phone string) error {
	if phone == "" {
		return nil
	}
	if !phoneRegex.MatchString(phone) {
		return errors.NewUserErrorWithField("phone", phone, "Invalid phone number", "Use digits, spaces and an optional leading +")
	}
	return nil
}
