package handler

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/david16260/gestor-documental/internal/dto"
	"github.com/david16260/gestor-documental/internal/service"
	appErrors "github.com/david16260/gestor-documental/pkg/errors"
	"github.com/david16260/gestor-documental/pkg/response"
)

// DocumentHandler exposes document ingestion and consultation endpoints.
type DocumentHandler struct {
	documents   *service.DocumentService
	folio       *service.FolioService
	expedientes *service.ExpedienteService
	metrics     *service.MetricsService
}

// NewDocumentHandler creates a new handler.
func NewDocumentHandler(documents *service.DocumentService, folio *service.FolioService, expedientes *service.ExpedienteService, metrics *service.MetricsService) *DocumentHandler {
	return &DocumentHandler{documents: documents, folio: folio, expedientes: expedientes, metrics: metrics}
}

// Upload godoc
// @Summary Upload a document
// @Description Ingests a multipart file with deduplication and validation
// @Tags Documentos
// @Accept multipart/form-data
// @Produce json
// @Param archivo formData file true "File content"
// @Param version formData string true "Document version"
// @Param categoria formData string false "Category override"
// @Param expediente_id formData int false "Expediente to attach the document to"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /documentos/upload [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.UploadDocumentRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "version es requerida"))
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

	doc, err := h.documents.Upload(c.Request.Context(), claims, service.DocumentUpload{
		Filename: fileHeader.Filename,
		Version:  req.Version,
		Category: req.Category,
		Data:     data,
	})
	if err != nil {
		h.metrics.RecordIngestionRejected(appErrors.FromError(err).Code)
		response.Error(c, err)
		return
	}
	h.metrics.RecordIngestion("upload", strings.TrimPrefix(filepath.Ext(doc.Filename), "."), int64(len(data)))

	if req.ExpedienteID != nil {
		if err := h.expedientes.AddDocument(c.Request.Context(), claims.UserID, *req.ExpedienteID, doc.ID); err != nil {
			response.Error(c, err)
			return
		}
		doc.ExpedienteID = req.ExpedienteID
	}

	response.Created(c, dto.DocumentResponse{
		Document: *doc,
		Message:  fmt.Sprintf("Archivo '%s' subido exitosamente", doc.Filename),
	})
}

// IngestFromURL godoc
// @Summary Ingest a document from an external URL
// @Description Downloads the target (Google Drive links are normalized) and runs the upload pipeline
// @Tags Documentos
// @Accept json
// @Produce json
// @Param payload body dto.URLIngestRequest true "Source URL"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /documentos/desde-url [post]
func (h *DocumentHandler) IngestFromURL(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.URLIngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "url es requerida"))
		return
	}

	doc, err := h.documents.IngestFromURL(c.Request.Context(), claims, req)
	if err != nil {
		h.metrics.RecordIngestionRejected(appErrors.FromError(err).Code)
		response.Error(c, err)
		return
	}
	h.metrics.RecordIngestion("url", strings.TrimPrefix(filepath.Ext(doc.Filename), "."), int64(doc.SizeKB*1024))

	if req.ExpedienteID != nil {
		if err := h.expedientes.AddDocument(c.Request.Context(), claims.UserID, *req.ExpedienteID, doc.ID); err != nil {
			response.Error(c, err)
			return
		}
		doc.ExpedienteID = req.ExpedienteID
	}

	response.Created(c, dto.DocumentResponse{
		Document: *doc,
		Message:  fmt.Sprintf("Archivo '%s' descargado e ingresado exitosamente", doc.Filename),
	})
}

// List godoc
// @Summary List documents
// @Description Lists documents owned by the caller; admins see everything
// @Tags Documentos
// @Produce json
// @Param categoria query string false "Filter by category"
// @Param serie query string false "Filter by serie"
// @Param expediente_id query int false "Filter by expediente"
// @Success 200 {object} response.Envelope
// @Router /documentos [get]
func (h *DocumentHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := dto.DocumentFilter{
		Name:     c.Query("nombre"),
		Category: c.Query("categoria"),
		Serie:    c.Query("serie"),
	}
	if raw := c.Query("expediente_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "expediente_id inválido"))
			return
		}
		filter.ExpedienteID = &id
	}

	docs, err := h.documents.List(c.Request.Context(), claims, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, docs, nil)
}

// Get godoc
// @Summary Get a document
// @Tags Documentos
// @Produce json
// @Param id path int true "Document ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /documentos/{id} [get]
func (h *DocumentHandler) Get(c *gin.Context) {
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

	doc, err := h.documents.Get(c.Request.Context(), claims, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, doc, nil)
}

// History godoc
// @Summary Upload history
// @Description Lists the upload history, optionally filtered by file name
// @Tags Documentos
// @Produce json
// @Param nombre_archivo query string false "File name to match"
// @Success 200 {object} response.Envelope
// @Router /documentos/historial [get]
func (h *DocumentHandler) History(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	rows, err := h.documents.History(c.Request.Context(), claims, c.Query("nombre_archivo"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, rows, nil)
}

// FolioIndex godoc
// @Summary Folio index
// @Description Returns the caller's cumulative page index as JSON, CSV or PDF
// @Tags Documentos
// @Produce json
// @Param formato query string false "json, csv or pdf" default(json)
// @Success 200 {object} response.Envelope
// @Router /documentos/indice_foliado [get]
func (h *DocumentHandler) FolioIndex(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	switch c.DefaultQuery("formato", "json") {
	case "json":
		index, err := h.folio.Index(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, index, nil)
	case "csv":
		data, err := h.folio.ExportCSV(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="indice_foliado.csv"`)
		c.Data(http.StatusOK, "text/csv", data)
	case "pdf":
		data, err := h.folio.ExportPDF(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="indice_foliado.pdf"`)
		c.Data(http.StatusOK, "application/pdf", data)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "formato debe ser json, csv o pdf"))
	}
}

// DownloadURL godoc
// @Summary Issue a signed download link
// @Tags Documentos
// @Produce json
// @Param id path int true "Document ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /documentos/{id}/descargar-url [get]
func (h *DocumentHandler) DownloadURL(c *gin.Context) {
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

	res, err := h.documents.GetDownloadURL(c.Request.Context(), claims, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Download godoc
// @Summary Download a document
// @Description Streams the stored file after validating the signed token
// @Tags Documentos
// @Produce octet-stream
// @Param id path int true "Document ID"
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /documentos/{id}/descargar [get]
func (h *DocumentHandler) Download(c *gin.Context) {
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
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token es requerido"))
		return
	}

	download, err := h.documents.Download(c.Request.Context(), claims, id, token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close() //nolint:errcheck

	headers := map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, download.Filename),
	}
	c.DataFromReader(http.StatusOK, download.SizeBytes, "application/octet-stream", download.File, headers)
}
