package service

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/david16260/gestor-documental/internal/dto"
	"github.com/david16260/gestor-documental/internal/models"
	"github.com/david16260/gestor-documental/internal/repository"
	appErrors "github.com/david16260/gestor-documental/pkg/errors"
)

type memDocumentStore struct {
	docs       map[int64]*models.Document
	history    []models.DocumentHistory
	next       int64
	failCreate error
}

func (m *memDocumentStore) Create(_ context.Context, doc *models.Document) error {
	if m.failCreate != nil {
		return m.failCreate
	}
	m.next++
	doc.ID = m.next
	if m.docs == nil {
		m.docs = map[int64]*models.Document{}
	}
	m.docs[doc.ID] = doc
	return nil
}

func (m *memDocumentStore) GetByID(_ context.Context, id int64) (*models.Document, error) {
	if doc, ok := m.docs[id]; ok {
		return doc, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memDocumentStore) FindDuplicate(_ context.Context, ownerID int64, version, hash string) (*models.Document, error) {
	for _, doc := range m.docs {
		if doc.OwnerID == ownerID && doc.Version == version && doc.ContentHash == hash {
			return doc, nil
		}
	}
	return nil, nil
}

func (m *memDocumentStore) ExistsByHash(_ context.Context, ownerID int64, hash string) (bool, error) {
	for _, doc := range m.docs {
		if doc.OwnerID == ownerID && doc.ContentHash == hash {
			return true, nil
		}
	}
	return false, nil
}

func (m *memDocumentStore) List(_ context.Context, filter models.DocumentFilter) ([]models.Document, error) {
	var out []models.Document
	for _, doc := range m.docs {
		if filter.OwnerID != nil && doc.OwnerID != *filter.OwnerID {
			continue
		}
		out = append(out, *doc)
	}
	return out, nil
}

func (m *memDocumentStore) ListByOwner(_ context.Context, ownerID int64) ([]models.Document, error) {
	var out []models.Document
	for _, doc := range m.docs {
		if doc.OwnerID == ownerID {
			out = append(out, *doc)
		}
	}
	return out, nil
}

func (m *memDocumentStore) CreateHistory(_ context.Context, h *models.DocumentHistory) error {
	h.ID = int64(len(m.history) + 1)
	m.history = append(m.history, *h)
	return nil
}

func (m *memDocumentStore) HistoryByName(_ context.Context, ownerID int64, _ string) ([]models.DocumentHistory, error) {
	return m.history, nil
}

func (m *memDocumentStore) HistoryByOwner(_ context.Context, ownerID int64) ([]models.DocumentHistory, error) {
	return m.history, nil
}

type memFileStorage struct {
	files   map[string][]byte
	deleted []string
}

func (m *memFileStorage) Save(filename string, data []byte) (string, error) {
	if m.files == nil {
		m.files = map[string][]byte{}
	}
	m.files[filename] = data
	return filename, nil
}

func (m *memFileStorage) Open(filename string) (*os.File, error) {
	return nil, os.ErrNotExist
}

func (m *memFileStorage) Delete(filename string) error {
	delete(m.files, filename)
	m.deleted = append(m.deleted, filename)
	return nil
}

func (m *memFileStorage) UserPath(userID, filename string) string {
	return userID + "/" + filename
}

type passValidator struct{}

func (passValidator) Validate(string, []byte) error { return nil }
func (passValidator) Author(string, []byte) string  { return "" }

type failValidator struct{}

func (failValidator) Validate(string, []byte) error { return appErrors.ErrFileCorrupt }
func (failValidator) Author(string, []byte) string  { return "" }

type memAudit struct {
	entries []models.AuditLog
}

func (m *memAudit) CreateAuditLog(_ context.Context, log *models.AuditLog) error {
	m.entries = append(m.entries, *log)
	return nil
}

type memInvalidator struct{ calls int }

func (m *memInvalidator) Invalidate(context.Context, int64) { m.calls++ }

type memEnqueuer struct{ jobs []int64 }

func (m *memEnqueuer) EnqueueRender(docID, _ int64) { m.jobs = append(m.jobs, docID) }

func editorClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: 1, Name: "Editora", Email: "e@example.com", Role: models.RoleEditor}
}

func newTestDocumentService(store *memDocumentStore, storage *memFileStorage, v documentValidator, audit *memAudit, folio *memInvalidator, comp *memEnqueuer) *DocumentService {
	// Pass untyped nils so the service's nil-interface guards work.
	var auditDep auditLogger
	if audit != nil {
		auditDep = audit
	}
	var folioDep folioInvalidator
	if folio != nil {
		folioDep = folio
	}
	var compDep comprobanteEnqueuer
	if comp != nil {
		compDep = comp
	}
	return NewDocumentService(store, storage, nil, v, NewRulesClassifier(nil), nil, auditDep, folioDep, compDep, nil, DocumentServiceConfig{})
}

func TestUploadHappyPath(t *testing.T) {
	store := &memDocumentStore{}
	storage := &memFileStorage{}
	audit := &memAudit{}
	folio := &memInvalidator{}
	comp := &memEnqueuer{}
	svc := newTestDocumentService(store, storage, passValidator{}, audit, folio, comp)

	doc, err := svc.Upload(context.Background(), editorClaims(), DocumentUpload{
		Filename: "factura_enero.pdf",
		Version:  "1.0",
		Data:     []byte("%PDF-1.4 contenido"),
	})
	require.NoError(t, err)

	assert.Equal(t, "factura_enero.pdf", doc.Filename)
	assert.Equal(t, ".pdf", doc.Extension)
	assert.Len(t, doc.ContentHash, 32)
	assert.Contains(t, doc.StoragePath, doc.ContentHash[:12])
	require.NotNil(t, doc.Serie)
	assert.Equal(t, "Finanzas", *doc.Serie)

	assert.Len(t, store.history, 1)
	assert.Equal(t, 1, folio.calls)
	assert.Equal(t, []int64{doc.ID}, comp.jobs)
	assert.Len(t, audit.entries, 1)
	assert.NotEmpty(t, storage.files[doc.StoragePath])
}

func TestUploadRejectsViewerRole(t *testing.T) {
	svc := newTestDocumentService(&memDocumentStore{}, &memFileStorage{}, passValidator{}, nil, nil, nil)

	claims := &models.JWTClaims{UserID: 3, Role: models.RoleUsuario}
	_, err := svc.Upload(context.Background(), claims, DocumentUpload{Filename: "a.pdf", Version: "1.0", Data: []byte("x")})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestUploadRejectsExtension(t *testing.T) {
	svc := newTestDocumentService(&memDocumentStore{}, &memFileStorage{}, passValidator{}, nil, nil, nil)

	_, err := svc.Upload(context.Background(), editorClaims(), DocumentUpload{Filename: "script.exe", Version: "1.0", Data: []byte("MZ")})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnsupportedType.Code, appErrors.FromError(err).Code)
}

func TestUploadRejectsOversize(t *testing.T) {
	store := &memDocumentStore{}
	svc := NewDocumentService(store, &memFileStorage{}, nil, passValidator{}, NewRulesClassifier(nil), nil, nil, nil, nil, nil, DocumentServiceConfig{MaxFileSize: 16})

	_, err := svc.Upload(context.Background(), editorClaims(), DocumentUpload{Filename: "a.pdf", Version: "1.0", Data: make([]byte, 32)})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrFileTooLarge.Code, appErrors.FromError(err).Code)
}

func TestUploadDuplicateMessage(t *testing.T) {
	store := &memDocumentStore{}
	svc := newTestDocumentService(store, &memFileStorage{}, passValidator{}, nil, nil, nil)

	upload := DocumentUpload{Filename: "acta.pdf", Version: "1.0", Data: []byte("%PDF mismo contenido")}
	_, err := svc.Upload(context.Background(), editorClaims(), upload)
	require.NoError(t, err)

	_, err = svc.Upload(context.Background(), editorClaims(), upload)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrDuplicate.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "Ya subiste")
	assert.Contains(t, appErr.Message, "'1.0'")
}

func TestUploadSameContentNewVersionAccepted(t *testing.T) {
	store := &memDocumentStore{}
	svc := newTestDocumentService(store, &memFileStorage{}, passValidator{}, nil, nil, nil)

	data := []byte("%PDF mismo contenido")
	first, err := svc.Upload(context.Background(), editorClaims(), DocumentUpload{Filename: "acta.pdf", Version: "1.0", Data: data})
	require.NoError(t, err)
	assert.False(t, first.Duplicate)

	doc, err := svc.Upload(context.Background(), editorClaims(), DocumentUpload{Filename: "acta.pdf", Version: "2.0", Data: data})
	require.NoError(t, err)
	assert.Equal(t, "2.0", doc.Version)
	assert.True(t, doc.Duplicate)

	// A different user's identical bytes are not a re-ingestion.
	other := &models.JWTClaims{UserID: 2, Name: "Otro", Role: models.RoleEditor}
	foreign, err := svc.Upload(context.Background(), other, DocumentUpload{Filename: "acta.pdf", Version: "1.0", Data: data})
	require.NoError(t, err)
	assert.False(t, foreign.Duplicate)
}

func TestUploadValidatorFailureKeepsNothing(t *testing.T) {
	store := &memDocumentStore{}
	storage := &memFileStorage{}
	svc := newTestDocumentService(store, storage, failValidator{}, nil, nil, nil)

	_, err := svc.Upload(context.Background(), editorClaims(), DocumentUpload{Filename: "roto.pdf", Version: "1.0", Data: []byte("garbage")})
	require.Error(t, err)
	assert.Empty(t, store.docs)
	assert.Empty(t, storage.files)
}

func TestUploadStorageRollbackOnInsertFailure(t *testing.T) {
	store := &memDocumentStore{failCreate: fmt.Errorf("db down")}
	storage := &memFileStorage{}
	svc := newTestDocumentService(store, storage, passValidator{}, nil, nil, nil)

	_, err := svc.Upload(context.Background(), editorClaims(), DocumentUpload{Filename: "a.pdf", Version: "1.0", Data: []byte("x")})
	require.Error(t, err)
	assert.NotEmpty(t, storage.deleted)
	assert.Empty(t, storage.files)
}

func TestUploadUniqueViolationMapsToDuplicate(t *testing.T) {
	store := &memDocumentStore{failCreate: repository.ErrDuplicateDocument}
	storage := &memFileStorage{}
	svc := newTestDocumentService(store, storage, passValidator{}, nil, nil, nil)

	_, err := svc.Upload(context.Background(), editorClaims(), DocumentUpload{Filename: "a.pdf", Version: "1.0", Data: []byte("x")})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDuplicate.Code, appErrors.FromError(err).Code)
	assert.NotEmpty(t, storage.deleted)
}

type stubFetcher struct {
	file *FetchedFile
	err  error
}

func (s *stubFetcher) Fetch(context.Context, string) (*FetchedFile, error) {
	return s.file, s.err
}

func TestIngestFromURLCapturesTransportMetadata(t *testing.T) {
	store := &memDocumentStore{}
	fetcher := &stubFetcher{file: &FetchedFile{
		Filename:     "informe.pdf",
		Extension:    ".pdf",
		Data:         []byte("%PDF remoto"),
		ContentType:  "application/pdf",
		LastModified: "Mon, 02 Mar 2026 10:00:00 GMT",
		Server:       "nginx",
	}}
	svc := NewDocumentService(store, &memFileStorage{}, nil, passValidator{}, NewRulesClassifier(nil), fetcher, nil, nil, nil, nil, DocumentServiceConfig{})

	doc, err := svc.IngestFromURL(context.Background(), editorClaims(), dto.URLIngestRequest{URL: "https://example.com/informe.pdf"})
	require.NoError(t, err)
	require.NotNil(t, doc.ContentType)
	assert.Equal(t, "application/pdf", *doc.ContentType)
	require.NotNil(t, doc.Server)
	assert.Equal(t, "nginx", *doc.Server)
	assert.Equal(t, "1.0", doc.Version)
}

func TestGetEnforcesOwnership(t *testing.T) {
	store := &memDocumentStore{}
	svc := newTestDocumentService(store, &memFileStorage{}, passValidator{}, nil, nil, nil)

	doc, err := svc.Upload(context.Background(), editorClaims(), DocumentUpload{Filename: "a.pdf", Version: "1.0", Data: []byte("x")})
	require.NoError(t, err)

	other := &models.JWTClaims{UserID: 9, Role: models.RoleEditor}
	_, err = svc.Get(context.Background(), other, doc.ID)
	require.Error(t, err)

	admin := &models.JWTClaims{UserID: 9, Role: models.RoleAdmin}
	got, err := svc.Get(context.Background(), admin, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)
}

func TestHistoryRecordsEveryUpload(t *testing.T) {
	store := &memDocumentStore{}
	svc := newTestDocumentService(store, &memFileStorage{}, passValidator{}, nil, nil, nil)

	_, err := svc.Upload(context.Background(), editorClaims(), DocumentUpload{Filename: "a.pdf", Version: "1.0", Data: []byte("uno")})
	require.NoError(t, err)
	_, err = svc.Upload(context.Background(), editorClaims(), DocumentUpload{Filename: "a.pdf", Version: "2.0", Data: []byte("dos")})
	require.NoError(t, err)

	rows, err := svc.History(context.Background(), editorClaims(), "a.pdf")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, "Editora", rows[0].UploaderName)
}

func TestDigestAlgorithmConfigurable(t *testing.T) {
	store := &memDocumentStore{}
	svc := NewDocumentService(store, &memFileStorage{}, nil, passValidator{}, NewRulesClassifier(nil), nil, nil, nil, nil, nil, DocumentServiceConfig{HashAlgorithm: "sha256"})

	doc, err := svc.Upload(context.Background(), editorClaims(), DocumentUpload{Filename: "a.pdf", Version: "1.0", Data: []byte("x")})
	require.NoError(t, err)
	assert.Len(t, doc.ContentHash, 64)
}
