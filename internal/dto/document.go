package dto

import "github.com/david16260/gestor-documental/internal/models"

// UploadDocumentRequest contains the form fields submitted alongside a file upload.
type UploadDocumentRequest struct {
	Version      string `form:"version" json:"version" binding:"required"`
	Category     string `form:"categoria" json:"categoria"`
	ExpedienteID *int64 `form:"expediente_id" json:"expediente_id"`
}

// URLIngestRequest asks the server to fetch and ingest a document from an external URL.
type URLIngestRequest struct {
	URL          string `json:"url" binding:"required"`
	Version      string `json:"version"`
	ExpedienteID *int64 `json:"expediente_id"`
}

// DocumentFilter captures query parameters for listing documents.
type DocumentFilter struct {
	Name         string
	Category     string
	Serie        string
	ExpedienteID *int64
}

// DocumentResponse enriches stored metadata with the classification outcome.
type DocumentResponse struct {
	models.Document
	Message string `json:"mensaje,omitempty"`
}

// DownloadResponse carries a short-lived signed URL for a stored document.
type DownloadResponse struct {
	DocumentID  int64  `json:"documento_id"`
	Filename    string `json:"nombre_archivo"`
	DownloadURL string `json:"download_url"`
}
