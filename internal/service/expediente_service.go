package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/david16260/gestor-documental/internal/dto"
	"github.com/david16260/gestor-documental/internal/models"
	"github.com/david16260/gestor-documental/internal/repository"
	appErrors "github.com/david16260/gestor-documental/pkg/errors"
)

type expedienteRepository interface {
	Create(ctx context.Context, exp *models.Expediente) error
	GetByID(ctx context.Context, id int64) (*models.Expediente, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]models.Expediente, error)
	UpdateStatus(ctx context.Context, id int64, status models.ExpedienteStatus) error
}

type expedienteDocumentRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Document, error)
	ListByExpediente(ctx context.Context, expedienteID int64) ([]models.Document, error)
	AssignExpediente(ctx context.Context, docID, expedienteID int64) error
}

// ExpedienteService manages case files and their document membership.
type ExpedienteService struct {
	repo      expedienteRepository
	docs      expedienteDocumentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewExpedienteService constructs the service.
func NewExpedienteService(repo expedienteRepository, docs expedienteDocumentRepository, validate *validator.Validate, logger *zap.Logger) *ExpedienteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ExpedienteService{repo: repo, docs: docs, validator: validate, logger: logger}
}

// Create opens a new expediente for the caller.
func (s *ExpedienteService) Create(ctx context.Context, ownerID int64, req dto.CreateExpedienteRequest) (*models.Expediente, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid expediente payload")
	}

	exp := &models.Expediente{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Serie:       req.Serie,
		Subserie:    req.Subserie,
		Status:      models.ExpedienteAbierto,
		OwnerID:     ownerID,
	}
	if err := s.repo.Create(ctx, exp); err != nil {
		if errors.Is(err, repository.ErrDuplicateCode) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "ya existe un expediente con ese código")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create expediente")
	}

	s.logger.Info("expediente created", zap.String("codigo", exp.Code), zap.Int64("usuario_id", ownerID))
	return exp, nil
}

// Get loads an expediente, enforcing ownership.
func (s *ExpedienteService) Get(ctx context.Context, ownerID, id int64) (*models.Expediente, error) {
	exp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "expediente no encontrado")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load expediente")
	}
	if exp.OwnerID != ownerID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "el expediente pertenece a otro usuario")
	}
	return exp, nil
}

// List returns the caller's expedientes.
func (s *ExpedienteService) List(ctx context.Context, ownerID int64) ([]models.Expediente, error) {
	exps, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list expedientes")
	}
	return exps, nil
}

// AddDocument attaches an existing document to an open expediente.
func (s *ExpedienteService) AddDocument(ctx context.Context, ownerID, expedienteID, documentID int64) error {
	exp, err := s.Get(ctx, ownerID, expedienteID)
	if err != nil {
		return err
	}
	if exp.Status != models.ExpedienteAbierto {
		return appErrors.Clone(appErrors.ErrConflict, "el expediente no está abierto")
	}

	doc, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "documento no encontrado")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}
	if doc.OwnerID != ownerID {
		return appErrors.Clone(appErrors.ErrForbidden, "el documento pertenece a otro usuario")
	}

	if err := s.docs.AssignExpediente(ctx, documentID, expedienteID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to attach document")
	}
	return nil
}

// Documents returns the folio index of one expediente's documents.
func (s *ExpedienteService) Documents(ctx context.Context, ownerID, expedienteID int64) (*models.FolioIndex, error) {
	if _, err := s.Get(ctx, ownerID, expedienteID); err != nil {
		return nil, err
	}
	docs, err := s.docs.ListByExpediente(ctx, expedienteID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}
	return BuildFolioIndex(ownerID, docs), nil
}

// UpdateStatus transitions an expediente between lifecycle states.
func (s *ExpedienteService) UpdateStatus(ctx context.Context, ownerID, id int64, status models.ExpedienteStatus) error {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return err
	}
	switch status {
	case models.ExpedienteAbierto, models.ExpedienteCerrado, models.ExpedienteArchivado:
	default:
		return appErrors.Clone(appErrors.ErrValidation, "estado de expediente inválido")
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update expediente")
	}
	return nil
}
