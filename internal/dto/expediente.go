package dto

// CreateExpedienteRequest holds the payload for opening a new expediente.
type CreateExpedienteRequest struct {
	Code        string `json:"codigo" validate:"required"`
	Name        string `json:"nombre" validate:"required"`
	Description string `json:"descripcion"`
	Serie       string `json:"serie"`
	Subserie    string `json:"subserie"`
}

// AddDocumentRequest attaches an existing document to an expediente.
type AddDocumentRequest struct {
	DocumentID int64 `json:"documento_id" binding:"required"`
}

// UpdateExpedienteStatusRequest transitions an expediente between states.
type UpdateExpedienteStatusRequest struct {
	Status string `json:"estado" binding:"required,oneof=abierto cerrado archivado"`
}
