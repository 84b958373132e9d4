package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/david16260/gestor-documental/internal/models"
)

// ErrDuplicateCode signals that an expediente code is already taken.
var ErrDuplicateCode = errors.New("codigo de expediente duplicado")

// ExpedienteRepository handles case-file persistence.
type ExpedienteRepository struct {
	db *sqlx.DB
}

// NewExpedienteRepository constructs the repository.
func NewExpedienteRepository(db *sqlx.DB) *ExpedienteRepository {
	return &ExpedienteRepository{db: db}
}

// Create opens a new expediente. The codigo column carries a unique index.
func (r *ExpedienteRepository) Create(ctx context.Context, exp *models.Expediente) error {
	if exp.CreatedAt.IsZero() {
		exp.CreatedAt = time.Now().UTC()
	}
	if exp.Status == "" {
		exp.Status = models.ExpedienteAbierto
	}
	const query = `INSERT INTO expedientes (codigo, nombre, descripcion, serie, subserie, estado, usuario_id, creado_en) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	err := r.db.GetContext(ctx, &exp.ID, query, exp.Code, exp.Name, exp.Description, exp.Serie, exp.Subserie, exp.Status, exp.OwnerID, exp.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateCode
		}
		return fmt.Errorf("create expediente: %w", err)
	}
	return nil
}

// GetByID retrieves one expediente.
func (r *ExpedienteRepository) GetByID(ctx context.Context, id int64) (*models.Expediente, error) {
	const query = `SELECT id, codigo, nombre, descripcion, serie, subserie, estado, usuario_id, creado_en FROM expedientes WHERE id = $1`
	var exp models.Expediente
	if err := r.db.GetContext(ctx, &exp, query, id); err != nil {
		return nil, err
	}
	return &exp, nil
}

// ListByOwner returns a user's expedientes, newest first.
func (r *ExpedienteRepository) ListByOwner(ctx context.Context, ownerID int64) ([]models.Expediente, error) {
	const query = `SELECT id, codigo, nombre, descripcion, serie, subserie, estado, usuario_id, creado_en FROM expedientes WHERE usuario_id = $1 ORDER BY creado_en DESC`
	var exps []models.Expediente
	if err := r.db.SelectContext(ctx, &exps, query, ownerID); err != nil {
		return nil, fmt.Errorf("list expedientes: %w", err)
	}
	return exps, nil
}

// UpdateStatus transitions an expediente between lifecycle states.
func (r *ExpedienteRepository) UpdateStatus(ctx context.Context, id int64, status models.ExpedienteStatus) error {
	const query = `UPDATE expedientes SET estado = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status); err != nil {
		return fmt.Errorf("update expediente status: %w", err)
	}
	return nil
}
