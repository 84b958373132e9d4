package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"go.uber.org/zap"

	"github.com/david16260/gestor-documental/internal/dto"
	"github.com/david16260/gestor-documental/internal/models"
	appErrors "github.com/david16260/gestor-documental/pkg/errors"
)

type userStore interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	UpdateRole(ctx context.Context, id int64, role models.UserRole) error
	Delete(ctx context.Context, id int64) error
	RevokeUserRefreshTokens(ctx context.Context, userID int64) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// UserService covers account administration beyond the auth flows.
type UserService struct {
	repo   userStore
	logger *zap.Logger
}

// NewUserService constructs the service.
func NewUserService(repo userStore, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, logger: logger}
}

// Get loads one user. Admins may load anyone, others only themselves.
func (s *UserService) Get(ctx context.Context, actor *models.JWTClaims, id int64) (*models.User, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if actor.Role != models.RoleAdmin && actor.UserID != id {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "solo un admin puede consultar otros usuarios")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "usuario no encontrado")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

// List returns users with pagination. Admin only.
func (s *UserService) List(ctx context.Context, actor *models.JWTClaims, filter models.UserFilter) ([]models.User, int, error) {
	if actor == nil {
		return nil, 0, appErrors.ErrUnauthorized
	}
	if actor.Role != models.RoleAdmin {
		return nil, 0, appErrors.Clone(appErrors.ErrForbidden, "solo un admin puede listar usuarios")
	}
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	return users, total, nil
}

// AssignRole changes another user's role. Admin only, and an admin cannot
// demote themselves and lock the system out.
func (s *UserService) AssignRole(ctx context.Context, actor *models.JWTClaims, targetID int64, req dto.AssignRoleRequest) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if actor.Role != models.RoleAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "solo un admin puede asignar roles")
	}
	if actor.UserID == targetID {
		return appErrors.Clone(appErrors.ErrConflict, "no puedes cambiar tu propio rol")
	}

	role := models.UserRole(req.Role)
	switch role {
	case models.RoleAdmin, models.RoleEditor, models.RoleUsuario:
	default:
		return appErrors.Clone(appErrors.ErrValidation, "rol inválido")
	}

	if _, err := s.repo.FindByID(ctx, targetID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "usuario no encontrado")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	if err := s.repo.UpdateRole(ctx, targetID, role); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign role")
	}

	resourceID := strconv.FormatInt(targetID, 10)
	if err := s.repo.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     models.AuditActionRoleAssign,
		Resource:   "usuario",
		ResourceID: &resourceID,
		Detail:     []byte(`{"rol":"` + req.Role + `"}`),
	}); err != nil {
		s.logger.Warn("failed to record role audit log", zap.Error(err))
	}
	return nil
}

// Delete deactivates an account and revokes its sessions. Admin only.
func (s *UserService) Delete(ctx context.Context, actor *models.JWTClaims, targetID int64) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if actor.Role != models.RoleAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "solo un admin puede eliminar usuarios")
	}
	if actor.UserID == targetID {
		return appErrors.Clone(appErrors.ErrConflict, "no puedes eliminar tu propia cuenta")
	}

	if _, err := s.repo.FindByID(ctx, targetID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "usuario no encontrado")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	if err := s.repo.Delete(ctx, targetID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete user")
	}
	if err := s.repo.RevokeUserRefreshTokens(ctx, targetID); err != nil {
		s.logger.Warn("failed to revoke sessions of deleted user", zap.Error(err))
	}

	resourceID := strconv.FormatInt(targetID, 10)
	if err := s.repo.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     models.AuditActionUserDelete,
		Resource:   "usuario",
		ResourceID: &resourceID,
	}); err != nil {
		s.logger.Warn("failed to record delete audit log", zap.Error(err))
	}
	return nil
}
