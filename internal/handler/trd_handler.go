package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/david16260/gestor-documental/internal/dto"
	"github.com/david16260/gestor-documental/internal/service"
	appErrors "github.com/david16260/gestor-documental/pkg/errors"
	"github.com/david16260/gestor-documental/pkg/response"
)

// TRDHandler exposes retention-schedule package endpoints.
type TRDHandler struct {
	service *service.TRDService
}

// NewTRDHandler creates a new handler.
func NewTRDHandler(svc *service.TRDService) *TRDHandler {
	return &TRDHandler{service: svc}
}

// Upload godoc
// @Summary Upload a TRD or CCD package
// @Description Validates the archive layout before storing it
// @Tags TRD
// @Accept multipart/form-data
// @Produce json
// @Param archivo formData file true "ZIP package"
// @Param tipo formData string true "TRD or CCD"
// @Param descripcion formData string false "Description"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /trd/upload [post]
func (h *TRDHandler) Upload(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.UploadTRDRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "tipo es requerido"))
		return
	}

	fileHeader, err := c.FormFile("archivo")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "se requiere un archivo"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "no se pudo leer el archivo"))
		return
	}
	defer file.Close() //nolint:errcheck

	data, err := io.ReadAll(file)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "no se pudo leer el archivo"))
		return
	}

	entry, err := h.service.Upload(c.Request.Context(), claims, req, fileHeader.Filename, data)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, entry)
}

// List godoc
// @Summary List stored TRD/CCD packages
// @Tags TRD
// @Produce json
// @Param tipo query string false "TRD or CCD"
// @Success 200 {object} response.Envelope
// @Router /trd [get]
func (h *TRDHandler) List(c *gin.Context) {
	entries, err := h.service.List(c.Request.Context(), c.Query("tipo"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, entries, nil)
}
