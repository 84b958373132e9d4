package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/david16260/gestor-documental/internal/models"
)

func TestCreateExpediente(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewExpedienteRepository(db)

	mock.ExpectQuery("INSERT INTO expedientes").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))

	exp := &models.Expediente{Code: "EXP-2026-001", Name: "Contratación", OwnerID: 1}
	require.NoError(t, repo.Create(context.Background(), exp))
	assert.Equal(t, int64(3), exp.ID)
	assert.Equal(t, models.ExpedienteAbierto, exp.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateExpedienteDuplicateCode(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewExpedienteRepository(db)

	mock.ExpectQuery("INSERT INTO expedientes").
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.Expediente{Code: "EXP-2026-001", Name: "Contratación", OwnerID: 1})
	assert.ErrorIs(t, err, ErrDuplicateCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListExpedientesByOwner(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewExpedienteRepository(db)

	rows := sqlmock.NewRows([]string{"id", "codigo", "nombre", "descripcion", "serie", "subserie", "estado", "usuario_id", "creado_en"}).
		AddRow(int64(3), "EXP-2026-001", "Contratación", "", "", "", string(models.ExpedienteAbierto), int64(1), time.Now())
	mock.ExpectQuery("FROM expedientes WHERE usuario_id").
		WithArgs(int64(1)).
		WillReturnRows(rows)

	exps, err := repo.ListByOwner(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, exps, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
