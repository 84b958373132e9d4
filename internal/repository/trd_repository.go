package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/david16260/gestor-documental/internal/models"
)

// TRDRepository handles retention-schedule and classification-scheme records.
type TRDRepository struct {
	db *sqlx.DB
}

// NewTRDRepository constructs the repository.
func NewTRDRepository(db *sqlx.DB) *TRDRepository {
	return &TRDRepository{db: db}
}

// Create stores an uploaded TRD/CCD entry and populates its identifier.
func (r *TRDRepository) Create(ctx context.Context, e *models.TRDEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO trd_entries (nombre, tipo, descripcion, ruta_guardado, usuario_id, metadatos, creado_en) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	if err := r.db.GetContext(ctx, &e.ID, query, e.Name, e.Type, e.Description, e.StoragePath, e.OwnerID, e.Metadata, e.CreatedAt); err != nil {
		return fmt.Errorf("create trd entry: %w", err)
	}
	return nil
}

// GetByID retrieves one TRD/CCD entry.
func (r *TRDRepository) GetByID(ctx context.Context, id int64) (*models.TRDEntry, error) {
	const query = `SELECT id, nombre, tipo, descripcion, ruta_guardado, usuario_id, metadatos, creado_en FROM trd_entries WHERE id = $1`
	var e models.TRDEntry
	if err := r.db.GetContext(ctx, &e, query, id); err != nil {
		return nil, err
	}
	return &e, nil
}

// List returns stored entries, optionally filtered by type, newest first.
func (r *TRDRepository) List(ctx context.Context, entryType models.TRDEntryType) ([]models.TRDEntry, error) {
	query := `SELECT id, nombre, tipo, descripcion, ruta_guardado, usuario_id, metadatos, creado_en FROM trd_entries`
	args := []interface{}{}
	if entryType != "" {
		query += ` WHERE tipo = $1`
		args = append(args, entryType)
	}
	query += ` ORDER BY creado_en DESC`

	var entries []models.TRDEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list trd entries: %w", err)
	}
	return entries, nil
}
