// Package money computes the signed balance adjustments applied to accounts and
// credit cards when transactions are recorded, changed or removed.
//
// Amounts travel as decimal strings. An unsigned amount matches
// ^\d+(\.\d{1,2})?$ and a signed delta is the same text with an optional
// leading "-".
package money

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// TransactionType classifies a transaction as money coming in or going out.
type TransactionType string

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// TransactionSource names the kind of resource whose balance a transaction moves.
type TransactionSource string

const (
	SourceAccount    TransactionSource = "account"
	SourceCreditCard TransactionSource = "creditCard"
)

// ZeroAmount is returned for absent input.
const ZeroAmount = "0.00"

var (
	// ErrInvalidMonetaryAmount is returned when input cannot be read as an unsigned
	// decimal with at most two fractional digits.
	ErrInvalidMonetaryAmount = errors.New("invalid monetary amount")
	// ErrUnknownClassification is returned for a type/source pair outside the rule table.
	ErrUnknownClassification = errors.New("unknown transaction classification")
)

var unsignedPattern = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// Valid reports whether s is a known transaction source.
func (s TransactionSource) Valid() bool {
	return s == SourceAccount || s == SourceCreditCard
}

// NormalizeToUnsigned turns a string, number or nil into an unsigned amount.
// nil and "" yield ZeroAmount. One leading sign is dropped. Valid input keeps
// its precision, so "5" stays "5".
func NormalizeToUnsigned(value any) (string, error) {
	if value == nil {
		return ZeroAmount, nil
	}

	raw, err := cast.ToStringE(value)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidMonetaryAmount, value)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ZeroAmount, nil
	}

	unsigned := raw
	if unsigned[0] == '-' || unsigned[0] == '+' {
		unsigned = unsigned[1:]
	}

	if !unsignedPattern.MatchString(unsigned) {
		return "", fmt.Errorf("%w: %q", ErrInvalidMonetaryAmount, raw)
	}

	return unsigned, nil
}

// Increases reports whether a transaction of type t against source s raises the
// stored balance. For a credit card the balance is the amount owed, so an
// expense raises it and a refund lowers it.
func Increases(t TransactionType, s TransactionSource) (bool, error) {
	switch {
	case s == SourceAccount && t == Income:
		return true, nil
	case s == SourceAccount && t == Expense:
		return false, nil
	case s == SourceCreditCard && t == Expense:
		return true, nil
	case s == SourceCreditCard && t == Income:
		return false, nil
	}

	return false, fmt.Errorf("%w: type=%q source=%q", ErrUnknownClassification, t, s)
}

// SignedDelta returns the adjustment to apply to the owning balance.
func SignedDelta(t TransactionType, s TransactionSource, value any) (string, error) {
	amount, err := NormalizeToUnsigned(value)
	if err != nil {
		return "", err
	}

	up, err := Increases(t, s)
	if err != nil {
		return "", err
	}

	if up {
		return amount, nil
	}

	return "-" + amount, nil
}

// Invert flips the sign of a delta. Applying a delta and then its inverse leaves
// a balance unchanged.
func Invert(delta string) string {
	if strings.HasPrefix(delta, "-") {
		return delta[1:]
	}

	return "-" + strings.TrimPrefix(delta, "+")
}

// IsZero reports whether delta is numerically zero. Text outside the signed
// delta grammar is not zero.
func IsZero(delta string) bool {
	delta = strings.TrimSpace(delta)
	unsigned := delta
	if unsigned != "" && (unsigned[0] == '-' || unsigned[0] == '+') {
		unsigned = unsigned[1:]
	}
	if !unsignedPattern.MatchString(unsigned) {
		return false
	}

	d, err := decimal.NewFromString(unsigned)
	if err != nil {
		return false
	}

	return d.IsZero()
}

// Format normalizes value and renders it with exactly two fractional digits.
func Format(value any) (string, error) {
	amount, err := NormalizeToUnsigned(value)
	if err != nil {
		return "", err
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidMonetaryAmount, amount)
	}

	return d.StringFixed(2), nil
}

// Apply adds a signed delta to a stored balance. An empty balance counts as zero.
func Apply(balance, delta string) (string, error) {
	current := decimal.Zero

	if strings.TrimSpace(balance) != "" {
		b, err := decimal.NewFromString(balance)
		if err != nil {
			return "", fmt.Errorf("%w: balance %q", ErrInvalidMonetaryAmount, balance)
		}

		current = b
	}

	d, err := decimal.NewFromString(delta)
	if err != nil {
		return "", fmt.Errorf("%w: delta %q", ErrInvalidMonetaryAmount, delta)
	}

	return current.Add(d).StringFixed(2), nil
}

// Decimal parses a stored amount, treating empty text as zero.
func Decimal(amount string) (decimal.Decimal, error) {
	if strings.TrimSpace(amount) == "" {
		return decimal.Zero, nil
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidMonetaryAmount, amount)
	}

	return d, nil
}
