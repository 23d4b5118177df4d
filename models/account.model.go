package models

type AccountType string

const (
	AccountChecking   AccountType = "checking"
	AccountSavings    AccountType = "savings"
	AccountInvestment AccountType = "investment"
	AccountWallet     AccountType = "wallet"
	AccountOther      AccountType = "other"
)

// Account is a bank account or cash wallet. Balance is a two-decimal string.
type Account struct {
	Base        `bson:",inline"`
	Name        string      `json:"name" bson:"name"`
	Type        AccountType `json:"type" bson:"type"`
	Institution string      `json:"institution,omitempty" bson:"institution,omitempty"`
	Balance     string      `json:"balance" bson:"balance"`
	Color       string      `json:"color,omitempty" bson:"color,omitempty"`
}

func (a *Account) GetBalance() string        { return a.Balance }
func (a *Account) SetBalance(balance string) { a.Balance = balance }
