package service

import (
	"context"
	"database/sql"
	"encoding/xml"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/david16260/gestor-documental/internal/models"
	appErrors "github.com/david16260/gestor-documental/pkg/errors"
	"github.com/david16260/gestor-documental/pkg/jobs"
)

// JobTypeComprobante labels the async XML render task.
const JobTypeComprobante = "comprobante_xml"

// ComprobanteDir is the per-user storage subdirectory holding rendered XML
// comprobantes. Files there are regenerable from the document rows, so the
// periodic cleanup is scoped to it.
const ComprobanteDir = "xml"

// DocumentoIndizado is the per-document index element of the archival
// exchange format.
type DocumentoIndizado struct {
	XMLName                     xml.Name `xml:"DocumentoIndizado"`
	ID                          string   `xml:"Id"`
	NombreDocumento             string   `xml:"NombreDocumento"`
	TipologiaDocumental         string   `xml:"TipologiaDocumental"`
	FechaCreacionDocumento      string   `xml:"FechaCreacionDocumento"`
	FechaIncorporacionExpediente string  `xml:"FechaIncorporacionExpediente"`
	ValorHuella                 string   `xml:"ValorHuella"`
	FuncionResumen              string   `xml:"FuncionResumen"`
	OrdenDocumentoExpediente    string   `xml:"OrdenDocumentoExpediente"`
	PaginaInicio                string   `xml:"PaginaInicio"`
	PaginaFin                   string   `xml:"PaginaFin"`
	Formato                     string   `xml:"Formato"`
	Tamano                      string   `xml:"Tamano"`
}

// comprobanteRoot wraps a full user index with the xsi namespace for later
// XSD validation.
type comprobanteRoot struct {
	XMLName    xml.Name            `xml:"Root"`
	XSI        string              `xml:"xmlns:xsi,attr"`
	Documentos []DocumentoIndizado `xml:"DocumentoIndizado"`
}

type comprobanteDocumentRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Document, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]models.Document, error)
}

type comprobanteStorage interface {
	Save(filename string, data []byte) (string, error)
	UserPath(userID, filename string) string
}

// ComprobanteJobPayload carries the document to render asynchronously.
type ComprobanteJobPayload struct {
	DocumentID int64
	OwnerID    int64
}

// ComprobanteService renders archival XML index entries for stored
// documents, individually or as a user's consolidated expediente.
type ComprobanteService struct {
	docs          comprobanteDocumentRepository
	storage       comprobanteStorage
	hashAlgorithm string
	logger        *zap.Logger
	queue         *jobs.Queue
}

// NewComprobanteService constructs the service. The queue is attached later
// because its handler closes over the service itself.
func NewComprobanteService(docs comprobanteDocumentRepository, storage comprobanteStorage, hashAlgorithm string, logger *zap.Logger) *ComprobanteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if hashAlgorithm == "" {
		hashAlgorithm = "md5"
	}
	return &ComprobanteService{docs: docs, storage: storage, hashAlgorithm: hashAlgorithm, logger: logger}
}

// AttachQueue wires the async render queue.
func (s *ComprobanteService) AttachQueue(q *jobs.Queue) {
	s.queue = q
}

// HandleJob is the queue handler for async comprobante rendering.
func (s *ComprobanteService) HandleJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(ComprobanteJobPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}
	_, err := s.GenerateAndSave(ctx, payload.DocumentID)
	return err
}

// EnqueueRender schedules async XML rendering for a freshly stored document.
// Failures only log: the comprobante can always be regenerated on demand.
func (s *ComprobanteService) EnqueueRender(docID, ownerID int64) {
	if s.queue == nil {
		return
	}
	err := s.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    JobTypeComprobante,
		Payload: ComprobanteJobPayload{DocumentID: docID, OwnerID: ownerID},
	})
	if err != nil {
		s.logger.Warn("failed to enqueue comprobante render", zap.Int64("document_id", docID), zap.Error(err))
	}
}

// Generate renders the XML index element for one document.
func (s *ComprobanteService) Generate(ctx context.Context, docID int64) (string, *models.Document, error) {
	doc, err := s.docs.GetByID(ctx, docID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, appErrors.Clone(appErrors.ErrNotFound, "documento no encontrado")
		}
		return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}

	element := s.buildElement(doc, 1, 1, 1)
	out, err := xml.MarshalIndent(element, "", "  ")
	if err != nil {
		return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render xml")
	}
	return string(out) + "\n", doc, nil
}

// GenerateAndSave renders one document's comprobante and persists it under
// the owner's xml directory. Returns the stored relative path.
func (s *ComprobanteService) GenerateAndSave(ctx context.Context, docID int64) (string, error) {
	content, doc, err := s.Generate(ctx, docID)
	if err != nil {
		return "", err
	}

	filename := comprobanteFilename(doc.Filename)
	relPath := s.storage.UserPath(strconv.FormatInt(doc.OwnerID, 10), filepath.Join(ComprobanteDir, filename))
	if _, err := s.storage.Save(relPath, []byte(content)); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save xml")
	}

	s.logger.Info("comprobante rendered",
		zap.Int64("document_id", doc.ID),
		zap.String("path", relPath))
	return relPath, nil
}

// GenerateExpediente renders the consolidated index for every document a
// user owns, with cumulative page numbering.
func (s *ComprobanteService) GenerateExpediente(ctx context.Context, ownerID int64) (string, error) {
	docs, err := s.docs.ListByOwner(ctx, ownerID)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}
	if len(docs) == 0 {
		return "", appErrors.Clone(appErrors.ErrNotFound, "el usuario no tiene documentos")
	}

	root := comprobanteRoot{XSI: "http://www.w3.org/2001/XMLSchema-instance"}
	page := 1
	for idx, doc := range docs {
		pages := EstimatePages(doc.SizeKB)
		end := page + pages - 1
		root.Documentos = append(root.Documentos, s.buildElement(&doc, idx+1, page, end))
		page = end + 1
	}

	out, err := xml.MarshalIndent(root, "", "  ")
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render xml")
	}
	return xml.Header + string(out) + "\n", nil
}

// EstimatePages approximates printed pages at one page per 100 KB, never
// less than one.
func EstimatePages(sizeKB float64) int {
	pages := int(sizeKB / 100)
	if pages < 1 {
		return 1
	}
	return pages
}

func (s *ComprobanteService) buildElement(doc *models.Document, orden, pagInicio, pagFin int) DocumentoIndizado {
	date := doc.CreatedAt
	if date.IsZero() {
		date = time.Now().UTC()
	}

	huella := doc.ContentHash
	if len(huella) > 12 {
		huella = huella[:12]
	}

	return DocumentoIndizado{
		ID:                           fmt.Sprintf("%d%010dTD", doc.OwnerID, doc.ID),
		NombreDocumento:              strings.TrimSuffix(doc.Filename, filepath.Ext(doc.Filename)),
		TipologiaDocumental:          Tipologia(doc.Filename, doc.Extension),
		FechaCreacionDocumento:       date.Format("20060102"),
		FechaIncorporacionExpediente: date.Format("20060102"),
		ValorHuella:                  strings.ToUpper(huella),
		FuncionResumen:               strings.ToUpper(s.hashAlgorithm),
		OrdenDocumentoExpediente:     strconv.Itoa(orden),
		PaginaInicio:                 strconv.Itoa(pagInicio),
		PaginaFin:                    strconv.Itoa(pagFin),
		Formato:                      Formato(doc.Extension),
		Tamano:                       fmt.Sprintf("%d KB", int(doc.SizeKB)),
	}
}

// tipologias maps filename keywords to the standardised documentary typology.
var tipologias = []struct {
	keyword   string
	tipologia string
}{
	{"resolución", "Resolución"},
	{"resolucion", "Resolución"},
	{"acto administrativo", "Resolución"},
	{"comunicación", "Comunicación"},
	{"comunicacion", "Comunicación"},
	{"acta", "Acta"},
	{"contrato", "Contrato"},
	{"hoja de vida", "Hoja de Vida"},
	{"cedula", "Documento de identificación"},
	{"cédula", "Documento de identificación"},
	{"identificacion", "Documento de identificación"},
	{"libreta", "Documento de identificación"},
	{"licencia", "Documento de identificación"},
	{"diploma", "Soportes de estudio"},
	{"certificado", "Certificado"},
	{"certificación", "Certificado"},
	{"declaración", "Declaración"},
	{"declaracion", "Declaración"},
	{"formulario", "Formulario"},
}

// Tipologia resolves the documentary typology from filename keywords,
// falling back to a generic label by extension.
func Tipologia(filename, extension string) string {
	lower := strings.ToLower(filename)
	for _, t := range tipologias {
		if strings.Contains(lower, t.keyword) {
			return t.tipologia
		}
	}

	switch strings.ToLower(strings.TrimPrefix(extension, ".")) {
	case "pdf", "docx", "doc":
		return "Documento"
	case "jpg", "jpeg", "png":
		return "Imagen"
	case "xlsx", "xls":
		return "Hoja de cálculo"
	}
	return "Documento General"
}

// Formato maps an extension to its archival format label. PDF maps to PDF/A,
// the long-term preservation profile.
func Formato(extension string) string {
	ext := strings.ToLower(strings.TrimPrefix(extension, "."))
	formats := map[string]string{
		"pdf":  "PDF/A",
		"docx": "DOCX",
		"doc":  "DOC",
		"xlsx": "XLSX",
		"xls":  "XLS",
		"txt":  "TXT",
		"jpg":  "JPEG",
		"jpeg": "JPEG",
		"png":  "PNG",
		"xml":  "XML",
	}
	if f, ok := formats[ext]; ok {
		return f
	}
	return strings.ToUpper(ext)
}

func comprobanteFilename(original string) string {
	base := strings.TrimSuffix(original, filepath.Ext(original))
	return base + "_comprobante.xml"
}
