package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/david16260/gestor-documental/internal/dto"
	"github.com/david16260/gestor-documental/internal/models"
	appErrors "github.com/david16260/gestor-documental/pkg/errors"
)

type trdRepository interface {
	Create(ctx context.Context, e *models.TRDEntry) error
	List(ctx context.Context, entryType models.TRDEntryType) ([]models.TRDEntry, error)
}

type trdArchiveValidator interface {
	ValidateTRDArchive(data []byte) error
}

type trdFileStorage interface {
	Save(filename string, data []byte) (string, error)
	Delete(filename string) error
	UserPath(userID, filename string) string
}

// TRDService manages retention-schedule (TRD) and classification-scheme
// (CCD) package uploads.
type TRDService struct {
	repo      trdRepository
	validator trdArchiveValidator
	storage   trdFileStorage
	logger    *zap.Logger
}

// NewTRDService constructs the service.
func NewTRDService(repo trdRepository, v trdArchiveValidator, storage trdFileStorage, logger *zap.Logger) *TRDService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TRDService{repo: repo, validator: v, storage: storage, logger: logger}
}

// Upload validates and stores a TRD/CCD package. Admin only; the handler
// enforces the role, this layer enforces the structure.
func (s *TRDService) Upload(ctx context.Context, actor *models.JWTClaims, req dto.UploadTRDRequest, filename string, data []byte) (*models.TRDEntry, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	entryType := models.TRDEntryType(strings.ToUpper(req.Type))
	if entryType != models.TRDTypeTRD && entryType != models.TRDTypeCCD {
		return nil, appErrors.Clone(appErrors.ErrValidation, "tipo debe ser TRD o CCD")
	}
	if len(data) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "se requiere un archivo")
	}

	if err := s.validator.ValidateTRDArchive(data); err != nil {
		return nil, err
	}

	sanitized := sanitizeFilename(filepath.Base(filename))
	relPath := s.storage.UserPath(strconv.FormatInt(actor.UserID, 10), fmt.Sprintf("trd/%s", sanitized))
	if _, err := s.storage.Save(relPath, data); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist package")
	}

	entry := &models.TRDEntry{
		Name:        sanitized,
		Type:        entryType,
		Description: req.Description,
		StoragePath: relPath,
		OwnerID:     actor.UserID,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		_ = s.storage.Delete(relPath)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create trd entry")
	}

	s.logger.Info("trd package stored", zap.String("tipo", string(entryType)), zap.String("nombre", sanitized))
	return entry, nil
}

// List returns stored entries, optionally filtered by type.
func (s *TRDService) List(ctx context.Context, rawType string) ([]models.TRDEntry, error) {
	var entryType models.TRDEntryType
	if rawType != "" {
		entryType = models.TRDEntryType(strings.ToUpper(rawType))
		if entryType != models.TRDTypeTRD && entryType != models.TRDTypeCCD {
			return nil, appErrors.Clone(appErrors.ErrValidation, "tipo debe ser TRD o CCD")
		}
	}
	entries, err := s.repo.List(ctx, entryType)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list trd entries")
	}
	return entries, nil
}
