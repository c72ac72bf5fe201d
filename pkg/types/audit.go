package types

type AuditType string

const (
	AuditUploadCountersignedAgreement AuditType = "upload_countersigned_agreement"
	AuditDeleteCountersignedAgreement AuditType = "delete_countersigned_agreement"
	AuditInviteUser                   AuditType = "invite_user"
)

type AuditEvent struct {
	Type       AuditType      `json:"type"`
	User       string         `json:"user"`
	ObjectType string         `json:"objectType"`
	ObjectID   string         `json:"objectId"`
	Data       map[string]any `json:"data"`
}
