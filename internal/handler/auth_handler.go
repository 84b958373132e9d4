package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/david16260/gestor-documental/internal/models"
	"github.com/david16260/gestor-documental/internal/service"
	appErrors "github.com/david16260/gestor-documental/pkg/errors"
	"github.com/david16260/gestor-documental/pkg/response"
)

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service *service.AuthService
	metrics *service.MetricsService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc *service.AuthService, metrics *service.MetricsService) *AuthHandler {
	return &AuthHandler{service: svc, metrics: metrics}
}

func bindJSON(c *gin.Context, dst interface{}, detail string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, detail))
		return false
	}
	return true
}

// Register godoc
// @Summary Registrar una cuenta
// @Description Crea un usuario con el rol por defecto
// @Tags Autenticación
// @Accept json
// @Produce json
// @Param payload body models.RegisterRequest true "Datos de registro"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if !bindJSON(c, &req, "datos de registro inválidos") {
		return
	}

	info, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, info)
}

// Login godoc
// @Summary Iniciar sesión
// @Description Autentica por correo y contraseña
// @Tags Autenticación
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Credenciales"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req, "credenciales inválidas") {
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.metrics.RecordLogin("denegado")
		response.Error(c, err)
		return
	}

	h.metrics.RecordLogin("ok")
	response.JSON(c, http.StatusOK, res, nil)
}

// Refresh godoc
// @Summary Renovar token de acceso
// @Description Intercambia un refresh token por un nuevo token de acceso
// @Tags Autenticación
// @Accept json
// @Produce json
// @Param payload body models.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshTokenRequest
	if !bindJSON(c, &req, "refresh token inválido") {
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	res, err := h.service.RefreshToken(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Logout godoc
// @Summary Cerrar sesión
// @Description Revoca el refresh token de la sesión actual
// @Tags Autenticación
// @Accept json
// @Produce json
// @Param payload body map[string]string true "Refresh token"
// @Success 204 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if !bindJSON(c, &payload, "refresh token requerido") {
		return
	}

	meta := models.LoginRequest{IP: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
	if err := h.service.Logout(c.Request.Context(), payload.RefreshToken, claims.UserID, meta); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// ChangePassword godoc
// @Summary Cambiar contraseña
// @Description Cambia la contraseña del usuario autenticado
// @Tags Autenticación
// @Accept json
// @Produce json
// @Param payload body models.ChangePasswordRequest true "Cambio de contraseña"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/change-password [post]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.ChangePasswordRequest
	if !bindJSON(c, &req, "datos inválidos") {
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), claims.UserID, req); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// ForgotPassword godoc
// @Summary Olvidé mi contraseña
// @Description Inicia el flujo de restablecimiento de contraseña
// @Tags Autenticación
// @Accept json
// @Produce json
// @Param payload body models.ResetPasswordRequest true "Correo registrado"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if !bindJSON(c, &req, "correo inválido") {
		return
	}

	token, err := h.service.ForgotPassword(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	// There is no outbound mailer yet, so the reset token travels in the
	// response body. The message is identical whether the account exists.
	data := gin.H{"mensaje": "si el correo existe, se enviará un enlace de restablecimiento"}
	if token != "" {
		data["token"] = token
	}
	response.JSON(c, http.StatusAccepted, data, nil)
}

// ResetPassword godoc
// @Summary Restablecer contraseña
// @Description Restablece la contraseña usando el token de recuperación
// @Tags Autenticación
// @Accept json
// @Produce json
// @Param payload body models.ConfirmResetPasswordRequest true "Nueva contraseña"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req models.ConfirmResetPasswordRequest
	if !bindJSON(c, &req, "datos inválidos") {
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Me godoc
// @Summary Usuario actual
// @Description Devuelve la información del usuario autenticado
// @Tags Autenticación
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	info := models.UserInfo{
		ID:    claims.UserID,
		Email: claims.Email,
		Name:  claims.Name,
		Role:  claims.Role,
	}

	response.JSON(c, http.StatusOK, info, nil)
}
