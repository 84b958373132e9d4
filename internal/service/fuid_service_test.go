package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/david16260/gestor-documental/internal/dto"
	"github.com/david16260/gestor-documental/internal/models"
)

type stubFUIDRepo struct {
	created  *models.FUID
	byNumber map[string]*models.FUID
}

func (s *stubFUIDRepo) Create(_ context.Context, f *models.FUID) error {
	f.ID = 1
	s.created = f
	return nil
}

func (s *stubFUIDRepo) GetByNumber(_ context.Context, number string) (*models.FUID, error) {
	if f, ok := s.byNumber[number]; ok {
		return f, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubFUIDRepo) UpdateMetadata(_ context.Context, _ int64, metadata []byte, hash string) error {
	if s.created != nil {
		s.created.Metadata = metadata
		s.created.Hash = hash
	}
	return nil
}

func (s *stubFUIDRepo) Delete(_ context.Context, _ int64) error {
	s.created = nil
	return nil
}

func (s *stubFUIDRepo) ListByOwner(_ context.Context, _ int64) ([]models.FUID, error) {
	if s.created == nil {
		return nil, nil
	}
	return []models.FUID{*s.created}, nil
}

type stubExpedienteRepo struct {
	byID map[int64]*models.Expediente
}

func (s *stubExpedienteRepo) GetByID(_ context.Context, id int64) (*models.Expediente, error) {
	if e, ok := s.byID[id]; ok {
		return e, nil
	}
	return nil, sql.ErrNoRows
}

func TestGenerateNumberFormat(t *testing.T) {
	now := time.Date(2026, 8, 31, 14, 30, 45, 0, time.UTC)
	number := GenerateNumber(now)
	assert.Regexp(t, regexp.MustCompile(`^FUID-20260831-143045-[0-9A-F-]{8}$`), number)
}

func TestMetadataHashStable(t *testing.T) {
	now := time.Now().UTC()
	a := json.RawMessage(`{"serie":"Legal","caja":3}`)
	b := json.RawMessage(`{"caja":3,"serie":"Legal"}`)

	hashA, err := MetadataHash(a, now)
	require.NoError(t, err)
	hashB, err := MetadataHash(b, now)
	require.NoError(t, err)

	// Key order must not change the hash.
	assert.Equal(t, hashA, hashB)
	assert.Len(t, hashA, 64)

	later, err := MetadataHash(a, now.Add(time.Second))
	require.NoError(t, err)
	assert.NotEqual(t, hashA, later)
}

func TestCreateAndVerifyFUID(t *testing.T) {
	repo := &stubFUIDRepo{byNumber: map[string]*models.FUID{}}
	svc := NewFUIDService(repo, &stubExpedienteRepo{}, nil, nil)

	record, err := svc.Create(context.Background(), 1, dto.CreateFUIDRequest{
		Metadata: json.RawMessage(`{"serie":"Legal","subserie":"Contratos"}`),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, record.Number)
	assert.NotEmpty(t, record.Hash)

	repo.byNumber[record.Number] = record
	result, err := svc.Verify(context.Background(), record.Number)
	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestVerifyFUIDDetectsTampering(t *testing.T) {
	repo := &stubFUIDRepo{byNumber: map[string]*models.FUID{}}
	svc := NewFUIDService(repo, &stubExpedienteRepo{}, nil, nil)

	record, err := svc.Create(context.Background(), 1, dto.CreateFUIDRequest{
		Metadata: json.RawMessage(`{"serie":"Legal"}`),
	})
	require.NoError(t, err)

	record.Metadata = json.RawMessage(`{"serie":"Finanzas"}`)
	repo.byNumber[record.Number] = record

	result, err := svc.Verify(context.Background(), record.Number)
	require.NoError(t, err)
	assert.False(t, result.Valid)
}

func TestCreateFUIDRejectsInvalidMetadata(t *testing.T) {
	svc := NewFUIDService(&stubFUIDRepo{}, &stubExpedienteRepo{}, nil, nil)
	_, err := svc.Create(context.Background(), 1, dto.CreateFUIDRequest{
		Metadata: json.RawMessage(`{no es json`),
	})
	require.Error(t, err)
}

func TestCreateFUIDUnknownExpediente(t *testing.T) {
	svc := NewFUIDService(&stubFUIDRepo{}, &stubExpedienteRepo{}, nil, nil)
	missing := int64(99)
	_, err := svc.Create(context.Background(), 1, dto.CreateFUIDRequest{
		Metadata:     json.RawMessage(`{"serie":"Legal"}`),
		ExpedienteID: &missing,
	})
	require.Error(t, err)
}
