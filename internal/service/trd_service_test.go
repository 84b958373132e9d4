package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/david16260/gestor-documental/internal/dto"
	"github.com/david16260/gestor-documental/internal/models"
	appErrors "github.com/david16260/gestor-documental/pkg/errors"
)

type memTRDRepo struct {
	entries    []models.TRDEntry
	failCreate error
}

func (m *memTRDRepo) Create(_ context.Context, e *models.TRDEntry) error {
	if m.failCreate != nil {
		return m.failCreate
	}
	e.ID = int64(len(m.entries) + 1)
	m.entries = append(m.entries, *e)
	return nil
}

func (m *memTRDRepo) List(_ context.Context, entryType models.TRDEntryType) ([]models.TRDEntry, error) {
	if entryType == "" {
		return m.entries, nil
	}
	var out []models.TRDEntry
	for _, e := range m.entries {
		if e.Type == entryType {
			out = append(out, e)
		}
	}
	return out, nil
}

type passArchiveValidator struct{}

func (passArchiveValidator) ValidateTRDArchive([]byte) error { return nil }

type failArchiveValidator struct{}

func (failArchiveValidator) ValidateTRDArchive([]byte) error { return appErrors.ErrInvalidTRD }

func TestTRDUploadStoresPackage(t *testing.T) {
	repo := &memTRDRepo{}
	storage := &memFileStorage{}
	svc := NewTRDService(repo, passArchiveValidator{}, storage, nil)

	entry, err := svc.Upload(context.Background(), editorClaims(), dto.UploadTRDRequest{Type: "trd", Description: "tabla vigente"}, "tabla_retencion.zip", []byte("zip-bytes"))
	require.NoError(t, err)
	assert.Equal(t, models.TRDTypeTRD, entry.Type)
	assert.Equal(t, "1/trd/tabla_retencion.zip", entry.StoragePath)
	assert.Contains(t, storage.files, "1/trd/tabla_retencion.zip")
}

func TestTRDUploadRejectsUnknownType(t *testing.T) {
	svc := NewTRDService(&memTRDRepo{}, passArchiveValidator{}, &memFileStorage{}, nil)

	_, err := svc.Upload(context.Background(), editorClaims(), dto.UploadTRDRequest{Type: "PGD"}, "x.zip", []byte("zip"))
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestTRDUploadRejectsInvalidArchive(t *testing.T) {
	storage := &memFileStorage{}
	svc := NewTRDService(&memTRDRepo{}, failArchiveValidator{}, storage, nil)

	_, err := svc.Upload(context.Background(), editorClaims(), dto.UploadTRDRequest{Type: "CCD"}, "x.zip", []byte("zip"))
	require.Error(t, err)
	assert.Empty(t, storage.files)
}

func TestTRDUploadRollsBackOnRepositoryFailure(t *testing.T) {
	repo := &memTRDRepo{failCreate: assert.AnError}
	storage := &memFileStorage{}
	svc := NewTRDService(repo, passArchiveValidator{}, storage, nil)

	_, err := svc.Upload(context.Background(), editorClaims(), dto.UploadTRDRequest{Type: "TRD"}, "x.zip", []byte("zip"))
	require.Error(t, err)
	assert.Contains(t, storage.deleted, "1/trd/x.zip")
}

func TestTRDListFiltersByType(t *testing.T) {
	repo := &memTRDRepo{entries: []models.TRDEntry{
		{ID: 1, Name: "a.zip", Type: models.TRDTypeTRD},
		{ID: 2, Name: "b.zip", Type: models.TRDTypeCCD},
	}}
	svc := NewTRDService(repo, passArchiveValidator{}, &memFileStorage{}, nil)

	all, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	ccd, err := svc.List(context.Background(), "ccd")
	require.NoError(t, err)
	require.Len(t, ccd, 1)
	assert.Equal(t, "b.zip", ccd[0].Name)

	_, err = svc.List(context.Background(), "PGD")
	assert.Error(t, err)
}
