package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/david16260/gestor-documental/internal/models"
)

func documentRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "nombre_archivo", "extension", "version", "hash_archivo", "ruta_guardado", "tamano_kb", "duplicado", "usuario_id", "expediente_id", "tipo_documento", "categoria", "serie", "subserie", "confianza", "confidencialidad", "autor", "content_type", "last_modified", "servidor", "creado_en"}).
		AddRow(int64(5), "informe.pdf", ".pdf", "1.0", "abc123", "1/abc123_informe.pdf", 250.0, false, int64(1), nil, "Documento", "General", nil, nil, 0.3, "Media", nil, nil, nil, nil, now)
}

func TestCreateDocumentReturnsID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	mock.ExpectQuery("INSERT INTO documentos").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))

	doc := &models.Document{Filename: "informe.pdf", Extension: ".pdf", Version: "1.0", ContentHash: "abc123", StoragePath: "1/abc123_informe.pdf", SizeKB: 250, OwnerID: 1}
	require.NoError(t, repo.Create(context.Background(), doc))
	assert.Equal(t, int64(5), doc.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDocumentUniqueViolation(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	mock.ExpectQuery("INSERT INTO documentos").
		WillReturnError(&pq.Error{Code: "23505"})

	doc := &models.Document{Filename: "informe.pdf", Extension: ".pdf", Version: "1.0", ContentHash: "abc123", OwnerID: 1}
	err := repo.Create(context.Background(), doc)
	assert.ErrorIs(t, err, ErrDuplicateDocument)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindDuplicate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	mock.ExpectQuery("SELECT .+ FROM documentos WHERE usuario_id").
		WithArgs(int64(1), "1.0", "abc123").
		WillReturnRows(documentRows(time.Now()))

	doc, err := repo.FindDuplicate(context.Background(), 1, "1.0", "abc123")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "informe.pdf", doc.Filename)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExistsByHash(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM documentos WHERE usuario_id = $1 AND hash_archivo = $2)")).
		WithArgs(int64(1), "abc123").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByHash(context.Background(), 1, "abc123")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindDuplicateNoRows(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	mock.ExpectQuery("SELECT .+ FROM documentos WHERE usuario_id").
		WithArgs(int64(1), "2.0", "zzz").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	doc, err := repo.FindDuplicate(context.Background(), 1, "2.0", "zzz")
	require.NoError(t, err)
	assert.Nil(t, doc)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByOwnerOrdering(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM documentos WHERE usuario_id = $1 ORDER BY creado_en ASC, id ASC")).
		WithArgs(int64(1)).
		WillReturnRows(documentRows(time.Now()))

	docs, err := repo.ListByOwner(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateHistory(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	mock.ExpectQuery("INSERT INTO historial_documentos").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))

	h := &models.DocumentHistory{Filename: "informe.pdf", Version: "1.0", UploaderName: "Usuario", OwnerID: 1, ContentHash: "abc123"}
	require.NoError(t, repo.CreateHistory(context.Background(), h))
	assert.Equal(t, int64(11), h.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryByName(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "nombre_archivo", "version", "usuario", "usuario_id", "fecha_subida", "hash_archivo"}).
		AddRow(int64(1), "informe.pdf", "1.0", "Usuario", int64(1), time.Now(), "abc123")
	mock.ExpectQuery("FROM historial_documentos WHERE usuario_id").
		WithArgs(int64(1), "%informe%").
		WillReturnRows(rows)

	history, err := repo.HistoryByName(context.Background(), 1, "informe")
	require.NoError(t, err)
	assert.Len(t, history, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
