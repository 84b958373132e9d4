package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/david16260/gestor-documental/internal/dto"
	"github.com/david16260/gestor-documental/internal/models"
	appErrors "github.com/david16260/gestor-documental/pkg/errors"
)

type memUserStore struct {
	users   map[int64]*models.User
	revoked []int64
	audits  []models.AuditLog
}

func (m *memUserStore) FindByID(_ context.Context, id int64) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memUserStore) List(_ context.Context, _ models.UserFilter) ([]models.User, int, error) {
	var out []models.User
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (m *memUserStore) UpdateRole(_ context.Context, id int64, role models.UserRole) error {
	if u, ok := m.users[id]; ok {
		u.Role = role
	}
	return nil
}

func (m *memUserStore) Delete(_ context.Context, id int64) error {
	if u, ok := m.users[id]; ok {
		u.Active = false
	}
	return nil
}

func (m *memUserStore) RevokeUserRefreshTokens(_ context.Context, userID int64) error {
	m.revoked = append(m.revoked, userID)
	return nil
}

func (m *memUserStore) CreateAuditLog(_ context.Context, log *models.AuditLog) error {
	m.audits = append(m.audits, *log)
	return nil
}

func adminClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: 1, Role: models.RoleAdmin}
}

func TestAssignRole(t *testing.T) {
	store := &memUserStore{users: map[int64]*models.User{
		2: {ID: 2, Role: models.RoleUsuario, Active: true},
	}}
	svc := NewUserService(store, nil)

	err := svc.AssignRole(context.Background(), adminClaims(), 2, dto.AssignRoleRequest{Role: "editor"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleEditor, store.users[2].Role)
	assert.Len(t, store.audits, 1)
}

func TestAssignRoleSelfRejected(t *testing.T) {
	store := &memUserStore{users: map[int64]*models.User{1: {ID: 1, Role: models.RoleAdmin}}}
	svc := NewUserService(store, nil)

	err := svc.AssignRole(context.Background(), adminClaims(), 1, dto.AssignRoleRequest{Role: "usuario"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAssignRoleRequiresAdmin(t *testing.T) {
	svc := NewUserService(&memUserStore{}, nil)
	editor := &models.JWTClaims{UserID: 3, Role: models.RoleEditor}

	err := svc.AssignRole(context.Background(), editor, 2, dto.AssignRoleRequest{Role: "editor"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestDeleteUserDeactivatesAndRevokes(t *testing.T) {
	store := &memUserStore{users: map[int64]*models.User{
		2: {ID: 2, Role: models.RoleUsuario, Active: true},
	}}
	svc := NewUserService(store, nil)

	require.NoError(t, svc.Delete(context.Background(), adminClaims(), 2))
	assert.False(t, store.users[2].Active)
	assert.Contains(t, store.revoked, int64(2))
}

func TestGetSelfAllowedOtherForbidden(t *testing.T) {
	store := &memUserStore{users: map[int64]*models.User{
		2: {ID: 2, Role: models.RoleUsuario},
		3: {ID: 3, Role: models.RoleUsuario},
	}}
	svc := NewUserService(store, nil)

	self := &models.JWTClaims{UserID: 2, Role: models.RoleUsuario}
	_, err := svc.Get(context.Background(), self, 2)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), self, 3)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
