package models

type Tag struct {
	Base  `bson:",inline"`
	Name  string `json:"name" bson:"name"`
	Color string `json:"color,omitempty" bson:"color,omitempty"`
}
