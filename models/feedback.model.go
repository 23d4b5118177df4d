package models

type Feedback struct {
	Base        `bson:",inline"`
	Subject     string   `json:"subject" bson:"subject"`
	Message     string   `json:"message" bson:"message"`
	Attachments []string `json:"attachments" bson:"attachments"`
}
