// Package service holds the workflows that span several repositories: the
// transaction ledger and its balance bookkeeping, guarded deletes, summaries,
// audit logging and bank linking.
package service

import "errors"

var (
	// ErrInvalidReference is returned when a transaction points at an account,
	// card, category, subcategory or tag the user does not own, or at a
	// subcategory outside the chosen category.
	ErrInvalidReference = errors.New("invalid reference")
	// ErrBankLinkUnavailable is returned when Plaid is not configured or failing.
	ErrBankLinkUnavailable = errors.New("bank link unavailable")
)
