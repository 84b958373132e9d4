package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/david16260/gestor-documental/internal/dto"
	"github.com/david16260/gestor-documental/internal/middleware"
	"github.com/david16260/gestor-documental/internal/models"
	"github.com/david16260/gestor-documental/internal/service"
)

type expedienteRepoStub struct {
	expedientes map[int64]*models.Expediente
	nextID      int64
}

func newExpedienteRepoStub() *expedienteRepoStub {
	return &expedienteRepoStub{expedientes: map[int64]*models.Expediente{}, nextID: 1}
}

func (s *expedienteRepoStub) Create(_ context.Context, exp *models.Expediente) error {
	exp.ID = s.nextID
	s.nextID++
	s.expedientes[exp.ID] = exp
	return nil
}

func (s *expedienteRepoStub) GetByID(_ context.Context, id int64) (*models.Expediente, error) {
	exp, ok := s.expedientes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return exp, nil
}

func (s *expedienteRepoStub) ListByOwner(_ context.Context, ownerID int64) ([]models.Expediente, error) {
	var out []models.Expediente
	for _, exp := range s.expedientes {
		if exp.OwnerID == ownerID {
			out = append(out, *exp)
		}
	}
	return out, nil
}

func (s *expedienteRepoStub) UpdateStatus(_ context.Context, id int64, status models.ExpedienteStatus) error {
	if exp, ok := s.expedientes[id]; ok {
		exp.Status = status
	}
	return nil
}

type expedienteDocRepoStub struct {
	documents map[int64]*models.Document
}

func (s *expedienteDocRepoStub) GetByID(_ context.Context, id int64) (*models.Document, error) {
	doc, ok := s.documents[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return doc, nil
}

func (s *expedienteDocRepoStub) ListByExpediente(_ context.Context, expedienteID int64) ([]models.Document, error) {
	var out []models.Document
	for _, doc := range s.documents {
		if doc.ExpedienteID != nil && *doc.ExpedienteID == expedienteID {
			out = append(out, *doc)
		}
	}
	return out, nil
}

func (s *expedienteDocRepoStub) AssignExpediente(_ context.Context, docID, expedienteID int64) error {
	if doc, ok := s.documents[docID]; ok {
		doc.ExpedienteID = &expedienteID
	}
	return nil
}

func newExpedienteHandler(repo *expedienteRepoStub, docs *expedienteDocRepoStub) *ExpedienteHandler {
	return NewExpedienteHandler(service.NewExpedienteService(repo, docs, nil, nil))
}

func authedContext(t *testing.T, w *httptest.ResponseRecorder, method, target string, body interface{}, claims *models.JWTClaims) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c
}

func editorTestClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: 1, Name: "Editora", Email: "e@example.com", Role: models.RoleEditor}
}

func TestExpedienteHandlerCreate(t *testing.T) {
	h := newExpedienteHandler(newExpedienteRepoStub(), &expedienteDocRepoStub{})
	w := httptest.NewRecorder()
	c := authedContext(t, w, http.MethodPost, "/expedientes", dto.CreateExpedienteRequest{Code: "EXP-2026-001", Name: "Contratación"}, editorTestClaims())

	h.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"codigo":"EXP-2026-001"`)
	assert.Contains(t, w.Body.String(), `"estado":"abierto"`)
}

func TestExpedienteHandlerCreateMissingFields(t *testing.T) {
	h := newExpedienteHandler(newExpedienteRepoStub(), &expedienteDocRepoStub{})
	w := httptest.NewRecorder()
	c := authedContext(t, w, http.MethodPost, "/expedientes", dto.CreateExpedienteRequest{Name: "Sin código"}, editorTestClaims())

	h.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExpedienteHandlerGetForeignOwner(t *testing.T) {
	repo := newExpedienteRepoStub()
	require.NoError(t, repo.Create(context.Background(), &models.Expediente{Code: "EXP-X", Name: "Ajeno", OwnerID: 99, Status: models.ExpedienteAbierto}))
	h := newExpedienteHandler(repo, &expedienteDocRepoStub{})

	w := httptest.NewRecorder()
	c := authedContext(t, w, http.MethodGet, "/expedientes/1", nil, editorTestClaims())
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	h.Get(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestExpedienteHandlerAddDocumentToClosed(t *testing.T) {
	repo := newExpedienteRepoStub()
	require.NoError(t, repo.Create(context.Background(), &models.Expediente{Code: "EXP-C", Name: "Cerrado", OwnerID: 1, Status: models.ExpedienteCerrado}))
	docs := &expedienteDocRepoStub{documents: map[int64]*models.Document{
		5: {ID: 5, Filename: "acta.pdf", OwnerID: 1, SizeKB: 100, CreatedAt: time.Now()},
	}}
	h := newExpedienteHandler(repo, docs)

	w := httptest.NewRecorder()
	c := authedContext(t, w, http.MethodPost, "/expedientes/1/documentos", dto.AddDocumentRequest{DocumentID: 5}, editorTestClaims())
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	h.AddDocument(c)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestExpedienteHandlerDocumentsIndex(t *testing.T) {
	repo := newExpedienteRepoStub()
	require.NoError(t, repo.Create(context.Background(), &models.Expediente{Code: "EXP-A", Name: "Abierto", OwnerID: 1, Status: models.ExpedienteAbierto}))
	expID := int64(1)
	docs := &expedienteDocRepoStub{documents: map[int64]*models.Document{
		5: {ID: 5, Filename: "acta.pdf", OwnerID: 1, SizeKB: 250, ExpedienteID: &expID, CreatedAt: time.Now()},
	}}
	h := newExpedienteHandler(repo, docs)

	w := httptest.NewRecorder()
	c := authedContext(t, w, http.MethodGet, "/expedientes/1/documentos", nil, editorTestClaims())
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	h.Documents(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_documentos":1`)
	assert.Contains(t, w.Body.String(), `"pagina_fin":2`)
}
