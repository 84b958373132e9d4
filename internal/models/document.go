package models

import "time"

// Document represents one ingested file's metadata row in the documentos table.
// Bytes live on disk under the owner's upload directory; the row only carries
// metadata. The content hash is expected unique per (owner, version).
type Document struct {
	ID              int64     `db:"id" json:"id"`
	Filename        string    `db:"nombre_archivo" json:"nombre_archivo"`
	Extension       string    `db:"extension" json:"extension"`
	Version         string    `db:"version" json:"version"`
	ContentHash     string    `db:"hash_archivo" json:"hash_archivo"`
	StoragePath     string    `db:"ruta_guardado" json:"ruta_guardado"`
	SizeKB          float64   `db:"tamano_kb" json:"tamano_kb"`
	Duplicate       bool      `db:"duplicado" json:"duplicado"`
	OwnerID         int64     `db:"usuario_id" json:"usuario_id"`
	ExpedienteID    *int64    `db:"expediente_id" json:"expediente_id,omitempty"`
	DocumentType    *string   `db:"tipo_documento" json:"tipo_documento,omitempty"`
	Category        *string   `db:"categoria" json:"categoria,omitempty"`
	Serie           *string   `db:"serie" json:"serie,omitempty"`
	Subserie        *string   `db:"subserie" json:"subserie,omitempty"`
	Confidence      *float64  `db:"confianza" json:"confianza,omitempty"`
	Confidentiality *string   `db:"confidencialidad" json:"confidencialidad,omitempty"`
	Author          *string   `db:"autor" json:"autor,omitempty"`
	ContentType     *string   `db:"content_type" json:"content_type,omitempty"`
	LastModified    *string   `db:"last_modified" json:"last_modified,omitempty"`
	Server          *string   `db:"servidor" json:"servidor,omitempty"`
	CreatedAt       time.Time `db:"creado_en" json:"creado_en"`
}

// DocumentHistory is one append-only version-history row per upload event,
// independent of the Document row's own version field.
type DocumentHistory struct {
	ID           int64     `db:"id" json:"id"`
	Filename     string    `db:"nombre_archivo" json:"nombre_archivo"`
	Version      string    `db:"version" json:"version"`
	UploaderName string    `db:"usuario" json:"usuario"`
	OwnerID      int64     `db:"usuario_id" json:"usuario_id"`
	UploadedAt   time.Time `db:"fecha_subida" json:"fecha_subida"`
	ContentHash  string    `db:"hash_archivo" json:"hash_archivo"`
}

// DocumentFilter narrows document listing queries.
type DocumentFilter struct {
	OwnerID      *int64
	ExpedienteID *int64
	Name         string
	Category     string
	Serie        string
	Extension    string
	Limit        int
	Offset       int
}

// Classification is the best-effort result of the classifier strategy.
// Confidence is a raw score, not a calibrated probability.
type Classification struct {
	Serie           string   `json:"serie"`
	Subserie        string   `json:"subserie"`
	Category        string   `json:"categoria"`
	Confidentiality string   `json:"confidencialidad"`
	DocumentType    string   `json:"tipo_documento"`
	Confidence      float64  `json:"confianza"`
	Keywords        []string `json:"palabras_clave,omitempty"`
}
