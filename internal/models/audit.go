package models

import "time"

// AuditAction labels an auditable event.
type AuditAction string

const (
	AuditActionLogin          AuditAction = "LOGIN"
	AuditActionLogout         AuditAction = "LOGOUT"
	AuditActionPasswordChange AuditAction = "PASSWORD_CHANGE"
	AuditActionUpload         AuditAction = "DOCUMENTO_UPLOAD"
	AuditActionURLIngest      AuditAction = "DOCUMENTO_URL"
	AuditActionRoleAssign     AuditAction = "ROL_ASIGNADO"
	AuditActionUserDelete     AuditAction = "USUARIO_ELIMINADO"
)

// AuditLog is one row in the auditoria table.
type AuditLog struct {
	ID         string      `db:"id" json:"id"`
	UserID     *int64      `db:"usuario_id" json:"usuario_id,omitempty"`
	Action     AuditAction `db:"accion" json:"accion"`
	Resource   string      `db:"recurso" json:"recurso"`
	ResourceID *string     `db:"recurso_id" json:"recurso_id,omitempty"`
	Detail     []byte      `db:"detalle" json:"detalle,omitempty"`
	IPAddress  string      `db:"ip_address" json:"-"`
	UserAgent  string      `db:"user_agent" json:"-"`
	CreatedAt  time.Time   `db:"creado_en" json:"creado_en"`
}
