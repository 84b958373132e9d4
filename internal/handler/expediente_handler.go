package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/david16260/gestor-documental/internal/dto"
	"github.com/david16260/gestor-documental/internal/models"
	"github.com/david16260/gestor-documental/internal/service"
	appErrors "github.com/david16260/gestor-documental/pkg/errors"
	"github.com/david16260/gestor-documental/pkg/response"
)

// ExpedienteHandler exposes expediente lifecycle endpoints.
type ExpedienteHandler struct {
	service *service.ExpedienteService
}

// NewExpedienteHandler creates a new handler.
func NewExpedienteHandler(svc *service.ExpedienteService) *ExpedienteHandler {
	return &ExpedienteHandler{service: svc}
}

// Create godoc
// @Summary Create an expediente
// @Tags Expedientes
// @Accept json
// @Produce json
// @Param payload body dto.CreateExpedienteRequest true "Expediente payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /expedientes [post]
func (h *ExpedienteHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateExpedienteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "codigo y nombre son requeridos"))
		return
	}

	exp, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, exp)
}

// List godoc
// @Summary List expedientes for the caller
// @Tags Expedientes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /expedientes [get]
func (h *ExpedienteHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	expedientes, err := h.service.List(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, expedientes, nil)
}

// Get godoc
// @Summary Get an expediente
// @Tags Expedientes
// @Produce json
// @Param id path int true "Expediente ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /expedientes/{id} [get]
func (h *ExpedienteHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "id inválido"))
		return
	}

	exp, err := h.service.Get(c.Request.Context(), claims.UserID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, exp, nil)
}

// AddDocument godoc
// @Summary Attach a document to an expediente
// @Tags Expedientes
// @Accept json
// @Produce json
// @Param id path int true "Expediente ID"
// @Param payload body dto.AddDocumentRequest true "Document reference"
// @Success 204 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /expedientes/{id}/documentos [post]
func (h *ExpedienteHandler) AddDocument(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "id inválido"))
		return
	}

	var req dto.AddDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "documento_id es requerido"))
		return
	}

	if err := h.service.AddDocument(c.Request.Context(), claims.UserID, id, req.DocumentID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Documents godoc
// @Summary Folio index of an expediente
// @Description Lists the expediente's documents with their cumulative page ranges
// @Tags Expedientes
// @Produce json
// @Param id path int true "Expediente ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /expedientes/{id}/documentos [get]
func (h *ExpedienteHandler) Documents(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "id inválido"))
		return
	}

	index, err := h.service.Documents(c.Request.Context(), claims.UserID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, index, nil)
}

// UpdateStatus godoc
// @Summary Change expediente state
// @Description Moves an expediente between abierto, cerrado and archivado
// @Tags Expedientes
// @Accept json
// @Produce json
// @Param id path int true "Expediente ID"
// @Param payload body dto.UpdateExpedienteStatusRequest true "Target state"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /expedientes/{id}/estado [put]
func (h *ExpedienteHandler) UpdateStatus(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "id inválido"))
		return
	}

	var req dto.UpdateExpedienteStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "estado es requerido"))
		return
	}

	if err := h.service.UpdateStatus(c.Request.Context(), claims.UserID, id, models.ExpedienteStatus(req.Status)); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
