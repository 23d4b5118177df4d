package models

// CreditCard tracks the amount currently owed in Balance.
type CreditCard struct {
	Base       `bson:",inline"`
	Name       string `json:"name" bson:"name"`
	Brand      string `json:"brand,omitempty" bson:"brand,omitempty"`
	Limit      string `json:"limit" bson:"limit"`
	Balance    string `json:"balance" bson:"balance"`
	ClosingDay int    `json:"closing_day" bson:"closing_day"`
	DueDay     int    `json:"due_day" bson:"due_day"`
	Color      string `json:"color,omitempty" bson:"color,omitempty"`
}

func (c *CreditCard) GetBalance() string        { return c.Balance }
func (c *CreditCard) SetBalance(balance string) { c.Balance = balance }
