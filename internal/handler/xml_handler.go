package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/david16260/gestor-documental/internal/models"
	"github.com/david16260/gestor-documental/internal/service"
	appErrors "github.com/david16260/gestor-documental/pkg/errors"
	"github.com/david16260/gestor-documental/pkg/response"
)

// XMLHandler serves comprobante XML renderings for documents and expedientes.
type XMLHandler struct {
	comprobantes *service.ComprobanteService
	metrics      *service.MetricsService
}

// NewXMLHandler creates a new handler.
func NewXMLHandler(comprobantes *service.ComprobanteService, metrics *service.MetricsService) *XMLHandler {
	return &XMLHandler{comprobantes: comprobantes, metrics: metrics}
}

// Document godoc
// @Summary Comprobante for one document
// @Description Renders the DocumentoIndizado XML for a stored document
// @Tags XML
// @Produce xml
// @Param id path int true "Document ID"
// @Success 200 {string} string "XML body"
// @Failure 404 {object} response.Envelope
// @Router /xml/documento/{id} [get]
func (h *XMLHandler) Document(c *gin.Context) {
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

	xmlBody, doc, err := h.comprobantes.Generate(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if doc.OwnerID != claims.UserID && claims.Role != models.RoleAdmin {
		response.Error(c, appErrors.ErrForbidden)
		return
	}

	h.metrics.RecordComprobanteRender()
	c.Data(http.StatusOK, "application/xml; charset=utf-8", []byte(xmlBody))
}

// DownloadDocument godoc
// @Summary Persist and download a document comprobante
// @Description Saves the comprobante under the owner's xml directory and returns it as an attachment
// @Tags XML
// @Produce xml
// @Param id path int true "Document ID"
// @Success 200 {string} string "XML body"
// @Failure 404 {object} response.Envelope
// @Router /xml/documento/{id}/descargar [get]
func (h *XMLHandler) DownloadDocument(c *gin.Context) {
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

	xmlBody, doc, err := h.comprobantes.Generate(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if doc.OwnerID != claims.UserID && claims.Role != models.RoleAdmin {
		response.Error(c, appErrors.ErrForbidden)
		return
	}
	if _, err := h.comprobantes.GenerateAndSave(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	h.metrics.RecordComprobanteRender()
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s_comprobante.xml"`, doc.Filename))
	c.Data(http.StatusOK, "application/xml; charset=utf-8", []byte(xmlBody))
}

// Expediente godoc
// @Summary Comprobante for a user's expediente
// @Description Renders the cumulative index XML for every document a user owns
// @Tags XML
// @Produce xml
// @Param id path int true "User ID"
// @Success 200 {string} string "XML body"
// @Failure 403 {object} response.Envelope
// @Router /xml/expediente/usuario/{id} [get]
func (h *XMLHandler) Expediente(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	ownerID, ok := pathID(c, "id")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "id inválido"))
		return
	}
	if ownerID != claims.UserID && claims.Role != models.RoleAdmin {
		response.Error(c, appErrors.ErrForbidden)
		return
	}

	xmlBody, err := h.comprobantes.GenerateExpediente(c.Request.Context(), ownerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.metrics.RecordComprobanteRender()
	c.Data(http.StatusOK, "application/xml; charset=utf-8", []byte(xmlBody))
}

// DownloadExpediente godoc
// @Summary Download a user's expediente comprobante
// @Tags XML
// @Produce xml
// @Param id path int true "User ID"
// @Success 200 {string} string "XML body"
// @Failure 403 {object} response.Envelope
// @Router /xml/expediente/usuario/{id}/descargar [get]
func (h *XMLHandler) DownloadExpediente(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	ownerID, ok := pathID(c, "id")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "id inválido"))
		return
	}
	if ownerID != claims.UserID && claims.Role != models.RoleAdmin {
		response.Error(c, appErrors.ErrForbidden)
		return
	}

	xmlBody, err := h.comprobantes.GenerateExpediente(c.Request.Context(), ownerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.metrics.RecordComprobanteRender()
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="expediente_%d_comprobante.xml"`, ownerID))
	c.Data(http.StatusOK, "application/xml; charset=utf-8", []byte(xmlBody))
}
