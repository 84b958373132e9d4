package models

import (
	"encoding/json"
	"time"
)

// FUID is the Formato Único de Inventario Documental record describing a
// classified case file: a generated identifier plus a metadata blob with an
// integrity hash.
type FUID struct {
	ID               int64           `db:"id" json:"id"`
	Number           string          `db:"numero_fuid" json:"numero_fuid"`
	ExpedienteID     *int64          `db:"expediente_id" json:"expediente_id,omitempty"`
	OwnerID          int64           `db:"usuario_id" json:"usuario_id"`
	Metadata         json.RawMessage `db:"metadatos" json:"metadatos,omitempty"`
	ContentReference *string         `db:"referencia_contenido" json:"referencia_contenido,omitempty"`
	Hash             string          `db:"hash_fuid" json:"hash_fuid"`
	CreatedAt        time.Time       `db:"creado_en" json:"creado_en"`
}
