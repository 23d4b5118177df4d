package models

type AuditAction string

const (
	AuditCreate AuditAction = "create"
	AuditUpdate AuditAction = "update"
	AuditDelete AuditAction = "delete"
	AuditSignup AuditAction = "signup"
	AuditLogin  AuditAction = "login"
	AuditLogout AuditAction = "logout"
	AuditUpload AuditAction = "upload"
)

type AuditLog struct {
	Base      `bson:",inline"`
	Action    AuditAction    `json:"action" bson:"action"`
	Entity    string         `json:"entity" bson:"entity"`
	EntityID  string         `json:"entity_id,omitempty" bson:"entity_id,omitempty"`
	RequestID string         `json:"request_id,omitempty" bson:"request_id,omitempty"`
	IP        string         `json:"ip,omitempty" bson:"ip,omitempty"`
	UserAgent string         `json:"user_agent,omitempty" bson:"user_agent,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty" bson:"metadata,omitempty"`
}
