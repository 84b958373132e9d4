package service

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/david16260/gestor-documental/internal/dto"
	"github.com/david16260/gestor-documental/internal/models"
	appErrors "github.com/david16260/gestor-documental/pkg/errors"
)

type fuidRepository interface {
	Create(ctx context.Context, f *models.FUID) error
	GetByNumber(ctx context.Context, number string) (*models.FUID, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]models.FUID, error)
	UpdateMetadata(ctx context.Context, id int64, metadata []byte, hash string) error
	Delete(ctx context.Context, id int64) error
}

type fuidExpedienteRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Expediente, error)
}

// FUIDService issues and verifies Formato Único de Inventario Documental
// records.
type FUIDService struct {
	repo        fuidRepository
	expedientes fuidExpedienteRepository
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewFUIDService constructs the service.
func NewFUIDService(repo fuidRepository, expedientes fuidExpedienteRepository, validate *validator.Validate, logger *zap.Logger) *FUIDService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &FUIDService{repo: repo, expedientes: expedientes, validator: validate, logger: logger}
}

// GenerateNumber builds a unique FUID identifier:
// FUID-YYYYMMDD-HHMMSS-XXXXXXXX.
func GenerateNumber(now time.Time) string {
	unique := strings.ToUpper(uuid.NewString()[:8])
	return fmt.Sprintf("FUID-%s-%s", now.Format("20060102-150405"), unique)
}

// MetadataHash computes a reproducible SHA-256 over the metadata with keys
// sorted, salted with the record's creation instant. Reproducibility is what
// makes later verification possible.
func MetadataHash(metadata json.RawMessage, createdAt time.Time) (string, error) {
	canonical, err := canonicalJSON(metadata)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(canonical + fmt.Sprintf("%d", createdAt.Unix())))
	return hex.EncodeToString(sum[:]), nil
}

// Create issues a new FUID record for the given owner.
func (s *FUIDService) Create(ctx context.Context, ownerID int64, req dto.CreateFUIDRequest) (*models.FUID, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid fuid payload")
	}
	if !json.Valid(req.Metadata) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "metadatos no son JSON válido")
	}

	if req.ExpedienteID != nil {
		if _, err := s.expedientes.GetByID(ctx, *req.ExpedienteID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "expediente no encontrado")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load expediente")
		}
	}

	now := time.Now().UTC()
	hash, err := MetadataHash(req.Metadata, now)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "metadatos no son JSON válido")
	}

	record := &models.FUID{
		Number:       GenerateNumber(now),
		ExpedienteID: req.ExpedienteID,
		OwnerID:      ownerID,
		Metadata:     req.Metadata,
		Hash:         hash,
		CreatedAt:    now,
	}
	if req.ContentReference != "" {
		record.ContentReference = &req.ContentReference
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create fuid")
	}

	s.logger.Info("fuid issued", zap.String("numero", record.Number), zap.Int64("usuario_id", ownerID))
	return record, nil
}

// Get returns a FUID record by its number.
func (s *FUIDService) Get(ctx context.Context, number string) (*models.FUID, error) {
	record, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "fuid no encontrado")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fuid")
	}
	return record, nil
}

// List returns the caller's FUID records.
func (s *FUIDService) List(ctx context.Context, ownerID int64) ([]models.FUID, error) {
	records, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list fuids")
	}
	return records, nil
}

// GetOwned loads a record by number and enforces ownership.
func (s *FUIDService) GetOwned(ctx context.Context, ownerID int64, number string) (*models.FUID, error) {
	record, err := s.Get(ctx, number)
	if err != nil {
		return nil, err
	}
	if record.OwnerID != ownerID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "el fuid pertenece a otro usuario")
	}
	return record, nil
}

// Update replaces the metadata of an owned record, recomputing the hash
// against the original creation instant.
func (s *FUIDService) Update(ctx context.Context, ownerID int64, number string, metadata json.RawMessage) (*models.FUID, error) {
	record, err := s.GetOwned(ctx, ownerID, number)
	if err != nil {
		return nil, err
	}
	if !json.Valid(metadata) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "metadatos no son JSON válido")
	}

	hash, err := MetadataHash(metadata, record.CreatedAt)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "metadatos no son JSON válido")
	}
	if err := s.repo.UpdateMetadata(ctx, record.ID, metadata, hash); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update fuid")
	}

	record.Metadata = metadata
	record.Hash = hash
	return record, nil
}

// Delete removes an owned record.
func (s *FUIDService) Delete(ctx context.Context, ownerID int64, number string) error {
	record, err := s.GetOwned(ctx, ownerID, number)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, record.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete fuid")
	}
	return nil
}

// Verify recomputes the metadata hash and reports whether it matches.
func (s *FUIDService) Verify(ctx context.Context, number string) (*dto.VerifyFUIDResponse, error) {
	record, err := s.Get(ctx, number)
	if err != nil {
		return nil, err
	}

	recomputed, err := MetadataHash(record.Metadata, record.CreatedAt)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to recompute hash")
	}

	return &dto.VerifyFUIDResponse{
		Number: record.Number,
		Valid:  recomputed == record.Hash,
		Hash:   record.Hash,
	}, nil
}

// canonicalJSON re-serialises JSON with object keys sorted at every level.
func canonicalJSON(raw json.RawMessage) (string, error) {
	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", err
	}
	var b strings.Builder
	if err := writeCanonical(&b, value); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeCanonical(b *strings.Builder, value interface{}) error {
	switch v := value.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			encoded, err := json.Marshal(k)
			if err != nil {
				return err
			}
			b.Write(encoded)
			b.WriteByte(':')
			if err := writeCanonical(b, v[k]); err != nil {
				return err
			}
		}
		b.WriteByte('}')
	case []interface{}:
		b.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := writeCanonical(b, item); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return err
		}
		b.Write(encoded)
	}
	return nil
}
