package dto

import "encoding/json"

// CreateFUIDRequest holds the payload for registering a new FUID record.
type CreateFUIDRequest struct {
	ExpedienteID     *int64          `json:"expediente_id"`
	Metadata         json.RawMessage `json:"metadatos" validate:"required"`
	ContentReference string          `json:"referencia_contenido"`
}

// VerifyFUIDResponse reports whether a FUID's stored hash still matches its metadata.
type VerifyFUIDResponse struct {
	Number string `json:"numero_fuid"`
	Valid  bool   `json:"valido"`
	Hash   string `json:"hash_fuid"`
}
