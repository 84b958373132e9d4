package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/david16260/gestor-documental/internal/models"
)

// ErrDuplicateDocument signals that the unique (usuario_id, version,
// hash_archivo) constraint rejected an insert. The constraint is the real
// dedup guarantee; any in-application lookup is only a fast path.
var ErrDuplicateDocument = errors.New("documento duplicado")

const documentColumns = `id, nombre_archivo, extension, version, hash_archivo, ruta_guardado, tamano_kb, duplicado, usuario_id, expediente_id, tipo_documento, categoria, serie, subserie, confianza, confidencialidad, autor, content_type, last_modified, servidor, creado_en`

// DocumentRepository handles document metadata persistence.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository constructs the repository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create stores metadata for an ingested document and populates its generated
// identifier. A unique-constraint violation maps to ErrDuplicateDocument.
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO documentos
	(nombre_archivo, extension, version, hash_archivo, ruta_guardado, tamano_kb, duplicado, usuario_id, expediente_id, tipo_documento, categoria, serie, subserie, confianza, confidencialidad, autor, content_type, last_modified, servidor, creado_en)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20) RETURNING id`
	err := r.db.GetContext(ctx, &doc.ID, query,
		doc.Filename, doc.Extension, doc.Version, doc.ContentHash, doc.StoragePath,
		doc.SizeKB, doc.Duplicate, doc.OwnerID, doc.ExpedienteID, doc.DocumentType,
		doc.Category, doc.Serie, doc.Subserie, doc.Confidence, doc.Confidentiality,
		doc.Author, doc.ContentType, doc.LastModified, doc.Server, doc.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateDocument
		}
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

// GetByID retrieves one document row.
func (r *DocumentRepository) GetByID(ctx context.Context, id int64) (*models.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM documentos WHERE id = $1`, documentColumns)
	var doc models.Document
	if err := r.db.GetContext(ctx, &doc, query, id); err != nil {
		return nil, err
	}
	return &doc, nil
}

// FindDuplicate returns the prior upload matching the dedup key, if any.
func (r *DocumentRepository) FindDuplicate(ctx context.Context, ownerID int64, version, hash string) (*models.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM documentos WHERE usuario_id = $1 AND version = $2 AND hash_archivo = $3 LIMIT 1`, documentColumns)
	var doc models.Document
	if err := r.db.GetContext(ctx, &doc, query, ownerID, version, hash); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find duplicate: %w", err)
	}
	return &doc, nil
}

// ExistsByHash reports whether the owner already stored this content under
// any version label. Re-ingestions carry the duplicado flag.
func (r *DocumentRepository) ExistsByHash(ctx context.Context, ownerID int64, hash string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM documentos WHERE usuario_id = $1 AND hash_archivo = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, ownerID, hash); err != nil {
		return false, fmt.Errorf("exists by hash: %w", err)
	}
	return exists, nil
}

// List returns documents applying the given filters, newest first.
func (r *DocumentRepository) List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error) {
	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf(`SELECT %s FROM documentos`, documentColumns))
	args := make([]interface{}, 0, 4)
	conditions := make([]string, 0, 4)

	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		conditions = append(conditions, fmt.Sprintf("usuario_id = $%d", len(args)))
	}
	if filter.ExpedienteID != nil {
		args = append(args, *filter.ExpedienteID)
		conditions = append(conditions, fmt.Sprintf("expediente_id = $%d", len(args)))
	}
	if filter.Name != "" {
		args = append(args, "%"+filter.Name+"%")
		conditions = append(conditions, fmt.Sprintf("nombre_archivo ILIKE $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("categoria = $%d", len(args)))
	}
	if filter.Serie != "" {
		args = append(args, filter.Serie)
		conditions = append(conditions, fmt.Sprintf("serie = $%d", len(args)))
	}
	if filter.Extension != "" {
		args = append(args, filter.Extension)
		conditions = append(conditions, fmt.Sprintf("extension = $%d", len(args)))
	}

	if len(conditions) > 0 {
		builder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY creado_en DESC")
	if filter.Limit > 0 {
		builder.WriteString(fmt.Sprintf(" LIMIT %d", filter.Limit))
	}
	if filter.Offset > 0 {
		builder.WriteString(fmt.Sprintf(" OFFSET %d", filter.Offset))
	}

	var docs []models.Document
	if err := r.db.SelectContext(ctx, &docs, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// ListByOwner returns every document belonging to a user, oldest first. The
// stable ordering matters for folio numbering and index rendering.
func (r *DocumentRepository) ListByOwner(ctx context.Context, ownerID int64) ([]models.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM documentos WHERE usuario_id = $1 ORDER BY creado_en ASC, id ASC`, documentColumns)
	var docs []models.Document
	if err := r.db.SelectContext(ctx, &docs, query, ownerID); err != nil {
		return nil, fmt.Errorf("list documents by owner: %w", err)
	}
	return docs, nil
}

// ListByExpediente returns the documents attached to a case file.
func (r *DocumentRepository) ListByExpediente(ctx context.Context, expedienteID int64) ([]models.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM documentos WHERE expediente_id = $1 ORDER BY creado_en ASC, id ASC`, documentColumns)
	var docs []models.Document
	if err := r.db.SelectContext(ctx, &docs, query, expedienteID); err != nil {
		return nil, fmt.Errorf("list documents by expediente: %w", err)
	}
	return docs, nil
}

// AssignExpediente attaches a document to a case file.
func (r *DocumentRepository) AssignExpediente(ctx context.Context, docID, expedienteID int64) error {
	const query = `UPDATE documentos SET expediente_id = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, docID, expedienteID)
	if err != nil {
		return fmt.Errorf("assign expediente: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a document row.
func (r *DocumentRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM documentos WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// CreateHistory appends a version-history row for an upload event.
func (r *DocumentRepository) CreateHistory(ctx context.Context, h *models.DocumentHistory) error {
	if h.UploadedAt.IsZero() {
		h.UploadedAt = time.Now().UTC()
	}
	const query = `INSERT INTO historial_documentos (nombre_archivo, version, usuario, usuario_id, fecha_subida, hash_archivo) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err := r.db.GetContext(ctx, &h.ID, query, h.Filename, h.Version, h.UploaderName, h.OwnerID, h.UploadedAt, h.ContentHash); err != nil {
		return fmt.Errorf("create history: %w", err)
	}
	return nil
}

// HistoryByName returns the upload history for files matching a name
// fragment, newest first.
func (r *DocumentRepository) HistoryByName(ctx context.Context, ownerID int64, name string) ([]models.DocumentHistory, error) {
	const query = `SELECT id, nombre_archivo, version, usuario, usuario_id, fecha_subida, hash_archivo FROM historial_documentos WHERE usuario_id = $1 AND nombre_archivo ILIKE $2 ORDER BY fecha_subida DESC`
	var rows []models.DocumentHistory
	if err := r.db.SelectContext(ctx, &rows, query, ownerID, "%"+name+"%"); err != nil {
		return nil, fmt.Errorf("history by name: %w", err)
	}
	return rows, nil
}

// HistoryByOwner returns the full upload history for a user, newest first.
func (r *DocumentRepository) HistoryByOwner(ctx context.Context, ownerID int64) ([]models.DocumentHistory, error) {
	const query = `SELECT id, nombre_archivo, version, usuario, usuario_id, fecha_subida, hash_archivo FROM historial_documentos WHERE usuario_id = $1 ORDER BY fecha_subida DESC`
	var rows []models.DocumentHistory
	if err := r.db.SelectContext(ctx, &rows, query, ownerID); err != nil {
		return nil, fmt.Errorf("history by owner: %w", err)
	}
	return rows, nil
}
