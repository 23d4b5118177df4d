package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/UmangSachdeva/fintrack/money"
)

// Transaction is an income or expense recorded against exactly one account or
// credit card. Amount is unsigned; the direction comes from Type and Source.
type Transaction struct {
	Base          `bson:",inline"`
	Description   string                  `json:"description" bson:"description"`
	Amount        string                  `json:"amount" bson:"amount"`
	Type          money.TransactionType   `json:"type" bson:"type"`
	Source        money.TransactionSource `json:"source" bson:"source"`
	AccountID     *primitive.ObjectID     `json:"account_id,omitempty" bson:"account_id,omitempty"`
	CreditCardID  *primitive.ObjectID     `json:"credit_card_id,omitempty" bson:"credit_card_id,omitempty"`
	CategoryID    *primitive.ObjectID     `json:"category_id,omitempty" bson:"category_id,omitempty"`
	SubcategoryID *primitive.ObjectID     `json:"subcategory_id,omitempty" bson:"subcategory_id,omitempty"`
	TagIDs        []primitive.ObjectID    `json:"tag_ids" bson:"tag_ids"`
	Date          time.Time               `json:"date" bson:"date"`
	Notes         string                  `json:"notes,omitempty" bson:"notes,omitempty"`
}

// OwnerID returns the account or credit card whose balance this transaction moves.
func (t *Transaction) OwnerID() primitive.ObjectID {
	if t.Source == money.SourceCreditCard && t.CreditCardID != nil {
		return *t.CreditCardID
	}
	if t.AccountID != nil {
		return *t.AccountID
	}
	return primitive.NilObjectID
}

// Delta is the signed adjustment this transaction applies to its owner's balance.
func (t *Transaction) Delta() (string, error) {
	return money.SignedDelta(t.Type, t.Source, t.Amount)
}
