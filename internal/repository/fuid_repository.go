package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/david16260/gestor-documental/internal/models"
)

// FUIDRepository handles persistence of inventory records.
type FUIDRepository struct {
	db *sqlx.DB
}

// NewFUIDRepository constructs the repository.
func NewFUIDRepository(db *sqlx.DB) *FUIDRepository {
	return &FUIDRepository{db: db}
}

// Create stores a new FUID record and populates its generated identifier.
func (r *FUIDRepository) Create(ctx context.Context, f *models.FUID) error {
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO fuids (numero_fuid, expediente_id, usuario_id, metadatos, referencia_contenido, hash_fuid, creado_en) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	if err := r.db.GetContext(ctx, &f.ID, query, f.Number, f.ExpedienteID, f.OwnerID, f.Metadata, f.ContentReference, f.Hash, f.CreatedAt); err != nil {
		return fmt.Errorf("create fuid: %w", err)
	}
	return nil
}

// GetByNumber retrieves a FUID record by its generated number.
func (r *FUIDRepository) GetByNumber(ctx context.Context, number string) (*models.FUID, error) {
	const query = `SELECT id, numero_fuid, expediente_id, usuario_id, metadatos, referencia_contenido, hash_fuid, creado_en FROM fuids WHERE numero_fuid = $1`
	var f models.FUID
	if err := r.db.GetContext(ctx, &f, query, number); err != nil {
		return nil, err
	}
	return &f, nil
}

// UpdateMetadata replaces a record's metadata and integrity hash.
func (r *FUIDRepository) UpdateMetadata(ctx context.Context, id int64, metadata []byte, hash string) error {
	const query = `UPDATE fuids SET metadatos = $2, hash_fuid = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, metadata, hash); err != nil {
		return fmt.Errorf("update fuid: %w", err)
	}
	return nil
}

// Delete removes a FUID record.
func (r *FUIDRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM fuids WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete fuid: %w", err)
	}
	return nil
}

// ListByOwner returns a user's FUID records, newest first.
func (r *FUIDRepository) ListByOwner(ctx context.Context, ownerID int64) ([]models.FUID, error) {
	const query = `SELECT id, numero_fuid, expediente_id, usuario_id, metadatos, referencia_contenido, hash_fuid, creado_en FROM fuids WHERE usuario_id = $1 ORDER BY creado_en DESC`
	var fuids []models.FUID
	if err := r.db.SelectContext(ctx, &fuids, query, ownerID); err != nil {
		return nil, fmt.Errorf("list fuids: %w", err)
	}
	return fuids, nil
}
