package models

import "time"

// ExpedienteStatus constrains the case-file lifecycle.
type ExpedienteStatus string

const (
	ExpedienteAbierto   ExpedienteStatus = "abierto"
	ExpedienteCerrado   ExpedienteStatus = "cerrado"
	ExpedienteArchivado ExpedienteStatus = "archivado"
)

// Expediente is a case file grouping related documents.
type Expediente struct {
	ID          int64            `db:"id" json:"id"`
	Code        string           `db:"codigo" json:"codigo"`
	Name        string           `db:"nombre" json:"nombre"`
	Description string           `db:"descripcion" json:"descripcion"`
	Serie       string           `db:"serie" json:"serie,omitempty"`
	Subserie    string           `db:"subserie" json:"subserie,omitempty"`
	Status      ExpedienteStatus `db:"estado" json:"estado"`
	OwnerID     int64            `db:"usuario_id" json:"usuario_id"`
	CreatedAt   time.Time        `db:"creado_en" json:"creado_en"`
}

// FolioEntry is one row of the folio index: cumulative, contiguous page
// numbering across a document set using the fixed pages-per-size heuristic.
type FolioEntry struct {
	Order     int     `json:"orden"`
	Filename  string  `json:"nombre_archivo"`
	SizeKB    float64 `json:"tamano_kb"`
	PageStart int     `json:"pagina_inicio"`
	PageEnd   int     `json:"pagina_fin"`
	Date      string  `json:"fecha"`
}

// FolioIndex wraps the computed index with its totals.
type FolioIndex struct {
	OwnerID        int64        `json:"usuario_id"`
	TotalDocuments int          `json:"total_documentos"`
	TotalPages     int          `json:"total_paginas"`
	Entries        []FolioEntry `json:"indice"`
}
