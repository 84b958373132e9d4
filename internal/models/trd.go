package models

import (
	"encoding/json"
	"time"
)

// TRDEntryType distinguishes retention-schedule from classification-scheme files.
type TRDEntryType string

const (
	TRDTypeTRD TRDEntryType = "TRD"
	TRDTypeCCD TRDEntryType = "CCD"
)

// TRDEntry records an uploaded retention-schedule or classification-scheme file.
type TRDEntry struct {
	ID          int64           `db:"id" json:"id"`
	Name        string          `db:"nombre" json:"nombre"`
	Type        TRDEntryType    `db:"tipo" json:"tipo"`
	Description string          `db:"descripcion" json:"descripcion"`
	StoragePath string          `db:"ruta_guardado" json:"ruta_guardado"`
	OwnerID     int64           `db:"usuario_id" json:"usuario_id"`
	Metadata    json.RawMessage `db:"metadatos" json:"metadatos,omitempty"`
	CreatedAt   time.Time       `db:"creado_en" json:"creado_en"`
}
