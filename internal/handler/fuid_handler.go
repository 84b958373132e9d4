package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/david16260/gestor-documental/internal/dto"
	"github.com/david16260/gestor-documental/internal/service"
	appErrors "github.com/david16260/gestor-documental/pkg/errors"
	"github.com/david16260/gestor-documental/pkg/response"
)

// FUIDHandler exposes FUID record endpoints.
type FUIDHandler struct {
	service *service.FUIDService
}

// NewFUIDHandler creates a new handler.
func NewFUIDHandler(svc *service.FUIDService) *FUIDHandler {
	return &FUIDHandler{service: svc}
}

// Create godoc
// @Summary Create a FUID record
// @Description Registers an inventory record with a deterministic metadata hash
// @Tags FUID
// @Accept json
// @Produce json
// @Param payload body dto.CreateFUIDRequest true "FUID payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /fuid [post]
func (h *FUIDHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateFUIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "metadata es requerida"))
		return
	}

	record, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, record)
}

// List godoc
// @Summary List the caller's FUID records
// @Tags FUID
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /fuid [get]
func (h *FUIDHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	records, err := h.service.List(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, records, nil)
}

// Get godoc
// @Summary Get a FUID record by number
// @Tags FUID
// @Produce json
// @Param numero path string true "FUID number"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /fuid/{numero} [get]
func (h *FUIDHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	record, err := h.service.GetOwned(c.Request.Context(), claims.UserID, c.Param("numero"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, record, nil)
}

// Update godoc
// @Summary Replace a FUID record's metadata
// @Description Recomputes the record hash against the original creation time
// @Tags FUID
// @Accept json
// @Produce json
// @Param numero path string true "FUID number"
// @Param payload body object true "New metadata document"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /fuid/{numero} [put]
func (h *FUIDHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload struct {
		Metadata json.RawMessage `json:"metadata" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "metadata es requerida"))
		return
	}

	record, err := h.service.Update(c.Request.Context(), claims.UserID, c.Param("numero"), payload.Metadata)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, record, nil)
}

// Delete godoc
// @Summary Delete a FUID record
// @Tags FUID
// @Produce json
// @Param numero path string true "FUID number"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /fuid/{numero} [delete]
func (h *FUIDHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(c.Request.Context(), claims.UserID, c.Param("numero")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Verify godoc
// @Summary Verify a FUID record's integrity
// @Description Recomputes the metadata hash and reports whether it matches
// @Tags FUID
// @Produce json
// @Param numero path string true "FUID number"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /fuid/{numero}/verificar [get]
func (h *FUIDHandler) Verify(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	result, err := h.service.Verify(c.Request.Context(), c.Param("numero"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result, nil)
}
