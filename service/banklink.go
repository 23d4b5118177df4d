package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/plaid/plaid-go/v32/plaid"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// LinkToken is handed to the client to open Plaid Link.
type LinkToken struct {
	LinkToken  string    `json:"link_token"`
	Expiration time.Time `json:"expiration"`
}

// LinkTokenCreator is the Plaid call behind BankLinker.
type LinkTokenCreator interface {
	CreateLinkToken(ctx context.Context, clientUserID, language string) (LinkToken, error)
}

type plaidLinkTokens struct {
	client     *plaid.APIClient
	clientName string
}

// NewPlaidLinkTokens adapts a Plaid client. It returns nil for a nil client.
func NewPlaidLinkTokens(client *plaid.APIClient) LinkTokenCreator {
	if client == nil {
		return nil
	}
	return &plaidLinkTokens{client: client, clientName: "FinTrack"}
}

func (p *plaidLinkTokens) CreateLinkToken(ctx context.Context, clientUserID, language string) (LinkToken, error) {
	user := plaid.LinkTokenCreateRequestUser{
		ClientUserId: clientUserID,
	}

	request := plaid.NewLinkTokenCreateRequest(p.clientName, language, []plaid.CountryCode{plaid.COUNTRYCODE_US}, user)
	request.SetProducts([]plaid.Products{plaid.PRODUCTS_TRANSACTIONS})

	resp, _, err := p.client.PlaidApi.LinkTokenCreate(ctx).LinkTokenCreateRequest(*request).Execute()
	if err != nil {
		var plaidErr plaid.GenericOpenAPIError
		if errors.As(err, &plaidErr) {
			return LinkToken{}, fmt.Errorf("plaid link token: %w: %s", err, plaidErr.Body())
		}
		return LinkToken{}, fmt.Errorf("plaid link token: %w", err)
	}

	return LinkToken{LinkToken: resp.GetLinkToken(), Expiration: resp.GetExpiration()}, nil
}

// BankLinker creates Plaid Link tokens behind a circuit breaker.
type BankLinker struct {
	tokens  LinkTokenCreator
	breaker *gobreaker.CircuitBreaker
	log     *zap.Logger
}

// NewBankLinker accepts a nil creator, in which case every call reports
// ErrBankLinkUnavailable.
func NewBankLinker(tokens LinkTokenCreator, log *zap.Logger) *BankLinker {
	settings := gobreaker.Settings{
		Name:        "plaid",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &BankLinker{tokens: tokens, breaker: gobreaker.NewCircuitBreaker(settings), log: log}
}

func (b *BankLinker) Enabled() bool {
	return b.tokens != nil
}

func (b *BankLinker) CreateLinkToken(ctx context.Context, userID primitive.ObjectID, language string) (LinkToken, error) {
	if b.tokens == nil {
		return LinkToken{}, ErrBankLinkUnavailable
	}

	result, err := b.breaker.Execute(func() (interface{}, error) {
		return b.tokens.CreateLinkToken(ctx, userID.Hex(), language)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return LinkToken{}, fmt.Errorf("%w: %v", ErrBankLinkUnavailable, err)
		}
		b.log.Error("create link token", zap.String("user_id", userID.Hex()), zap.Error(err))
		return LinkToken{}, fmt.Errorf("%w: %v", ErrBankLinkUnavailable, err)
	}

	return result.(LinkToken), nil
}
