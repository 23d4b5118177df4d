package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/UmangSachdeva/fintrack/money"
)

type Category struct {
	Base  `bson:",inline"`
	Name  string                `json:"name" bson:"name"`
	Type  money.TransactionType `json:"type" bson:"type"`
	Color string                `json:"color,omitempty" bson:"color,omitempty"`
	Icon  string                `json:"icon,omitempty" bson:"icon,omitempty"`
}

type Subcategory struct {
	Base       `bson:",inline"`
	CategoryID primitive.ObjectID `json:"category_id" bson:"category_id"`
	Name       string             `json:"name" bson:"name"`
}
