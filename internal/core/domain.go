package core

import (
	"errors"
	"strings"
	"time"
)

// TransferCategoryName is the reserved category every transfer leg is tagged with.
const TransferCategoryName = "Transfer category"

// DateLayout is the wire and form format for calendar days.
const DateLayout = "2006-01-02"

type (
	Date struct {
		time.Time
	}

	Money struct {
		Miliunits int64
	}

	Account struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		UserID string `json:"userId"`
	}

	Category struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		UserID string `json:"userId"`
	}

	Transaction struct {
		ID         string `json:"id"`
		Date       Date   `json:"date"`
		AccountID  string `json:"accountId"`
		CategoryID string `json:"categoryId"`
		Payee      string `json:"payee"`
		Amount     int64  `json:"amount"` // miliunits, negative = outflow
		Notes      string `json:"notes,omitempty"`
	}
)

var (
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrSameAccount        = errors.New("source and target account must differ")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrCategoryResolution = errors.New("transfer category could not be resolved")
	ErrSubmissionFailed   = errors.New("transfer submission failed")
	ErrEmptyName          = errors.New("empty name")
	ErrEmptyAccount       = errors.New("empty account id")
	ErrNotFound           = errors.New("not found")
	ErrAccountNotOwned    = errors.New("account does not belong to user")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar day in UTC.
func Today() Date {
	return DateOf(time.Now())
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// Epoch is the lower bound used for full-history balance queries.
func Epoch() Date {
	return NewDate(1970, 1, 1)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (m Money) Validate() error {
	if m.Miliunits <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Abs returns the magnitude of m.
func (m Money) Abs() Money {
	if m.Miliunits < 0 {
		return Money{Miliunits: -m.Miliunits}
	}
	return m
}

// Neg returns -m.
func (m Money) Neg() Money {
	return Money{Miliunits: -m.Miliunits}
}

func (m Money) String() string {
	return FormatMiliunits(m.Miliunits)
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if len(a.Name) > 100 {
		return errors.New("account name too long (max 100 characters)")
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return errors.New("category name too long (max 100 characters)")
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.AccountID) == "" {
		return ErrEmptyAccount
	}
	if t.Amount == 0 {
		return ErrInvalidAmount
	}
	if len(t.Payee) > 200 {
		return errors.New("payee too long (max 200 characters)")
	}
	if len(t.Notes) > 500 {
		return errors.New("notes too long (max 500 characters)")
	}
	return nil
}

// IsTransferCategory reports whether name is the reserved transfer category.
func IsTransferCategory(name string) bool {
	return name == TransferCategoryName
}
