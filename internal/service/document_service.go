package service

import (
	"context"
	"crypto/md5"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/david16260/gestor-documental/internal/dto"
	"github.com/david16260/gestor-documental/internal/models"
	"github.com/david16260/gestor-documental/internal/repository"
	appErrors "github.com/david16260/gestor-documental/pkg/errors"
)

type documentStore interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id int64) (*models.Document, error)
	FindDuplicate(ctx context.Context, ownerID int64, version, hash string) (*models.Document, error)
	ExistsByHash(ctx context.Context, ownerID int64, hash string) (bool, error)
	List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]models.Document, error)
	CreateHistory(ctx context.Context, h *models.DocumentHistory) error
	HistoryByName(ctx context.Context, ownerID int64, name string) ([]models.DocumentHistory, error)
	HistoryByOwner(ctx context.Context, ownerID int64) ([]models.DocumentHistory, error)
}

type documentFileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	UserPath(userID, filename string) string
}

type documentSignedURLSigner interface {
	Generate(id, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (id, relPath string, expiresAt time.Time, err error)
}

type documentValidator interface {
	Validate(extension string, data []byte) error
	Author(extension string, data []byte) string
}

type documentFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*FetchedFile, error)
}

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type folioInvalidator interface {
	Invalidate(ctx context.Context, ownerID int64)
}

type comprobanteEnqueuer interface {
	EnqueueRender(docID, ownerID int64)
}

// DocumentUpload carries the raw content and form metadata of one upload.
type DocumentUpload struct {
	Filename string
	Version  string
	Category string
	Data     []byte
}

// DocumentDownload bundles a file reader with response metadata.
type DocumentDownload struct {
	File      *os.File
	Filename  string
	SizeBytes int64
	ExpiresAt time.Time
}

// DocumentServiceConfig holds ingestion validation parameters.
type DocumentServiceConfig struct {
	MaxFileSize       int64
	AllowedExtensions []string
	HashAlgorithm     string
	APIPrefix         string
}

// DocumentService runs the ingestion pipeline: extension and size gates,
// content hashing, dedup, structural validation, classification, storage
// and history. Every stored byte stream is immutable once written.
type DocumentService struct {
	repo        documentStore
	storage     documentFileStorage
	signer      documentSignedURLSigner
	validator   documentValidator
	classifier  Classifier
	fetcher     documentFetcher
	audit       auditLogger
	folio       folioInvalidator
	comprobante comprobanteEnqueuer
	logger      *zap.Logger
	cfg         DocumentServiceConfig
	extSet      map[string]struct{}
}

// NewDocumentService constructs the service with defaults.
func NewDocumentService(repo documentStore, storage documentFileStorage, signer documentSignedURLSigner, fileValidator documentValidator, classifier Classifier, fetcher documentFetcher, audit auditLogger, folio folioInvalidator, comprobante comprobanteEnqueuer, logger *zap.Logger, cfg DocumentServiceConfig) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 10 * 1024 * 1024
	}
	if len(cfg.AllowedExtensions) == 0 {
		cfg.AllowedExtensions = []string{".pdf", ".docx", ".xlsx", ".png", ".jpg", ".trd", ".ccd", ".zip"}
	}
	if cfg.HashAlgorithm == "" {
		cfg.HashAlgorithm = "md5"
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	extSet := make(map[string]struct{}, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		extSet[strings.ToLower(ext)] = struct{}{}
	}
	return &DocumentService{
		repo:        repo,
		storage:     storage,
		signer:      signer,
		validator:   fileValidator,
		classifier:  classifier,
		fetcher:     fetcher,
		audit:       audit,
		folio:       folio,
		comprobante: comprobante,
		logger:      logger,
		cfg:         cfg,
		extSet:      extSet,
	}
}

// Upload ingests a multipart upload for the actor. Only admin and editor
// roles may write.
func (s *DocumentService) Upload(ctx context.Context, actor *models.JWTClaims, upload DocumentUpload) (*models.Document, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if actor.Role != models.RoleAdmin && actor.Role != models.RoleEditor {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "se requiere rol editor o admin para subir documentos")
	}
	doc, err := s.ingest(ctx, actor, upload, nil)
	if err != nil {
		return nil, err
	}

	s.emitAudit(ctx, actor, models.AuditActionUpload, doc)
	return doc, nil
}

// IngestFromURL downloads an external document and runs it through the same
// pipeline as a direct upload.
func (s *DocumentService) IngestFromURL(ctx context.Context, actor *models.JWTClaims, req dto.URLIngestRequest) (*models.Document, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if actor.Role != models.RoleAdmin && actor.Role != models.RoleEditor {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "se requiere rol editor o admin para subir documentos")
	}
	if s.fetcher == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "fetcher unavailable")
	}

	version := req.Version
	if version == "" {
		version = "1.0"
	}

	fetched, err := s.fetcher.Fetch(ctx, req.URL)
	if err != nil {
		return nil, err
	}

	upload := DocumentUpload{
		Filename: fetched.Filename,
		Version:  version,
		Data:     fetched.Data,
	}
	doc, err := s.ingest(ctx, actor, upload, fetched)
	if err != nil {
		return nil, err
	}

	s.emitAudit(ctx, actor, models.AuditActionURLIngest, doc)
	return doc, nil
}

// ingest is the shared pipeline. fetched is non-nil for URL ingestion and
// contributes transport metadata.
func (s *DocumentService) ingest(ctx context.Context, actor *models.JWTClaims, upload DocumentUpload, fetched *FetchedFile) (*models.Document, error) {
	if upload.Filename == "" || len(upload.Data) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "se requiere un archivo")
	}
	if upload.Version == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "se requiere la versión")
	}

	ext := strings.ToLower(filepath.Ext(upload.Filename))
	if _, allowed := s.extSet[ext]; !allowed {
		return nil, appErrors.ErrUnsupportedType
	}
	if int64(len(upload.Data)) > s.cfg.MaxFileSize {
		return nil, appErrors.ErrFileTooLarge
	}

	digest := s.digest(upload.Data)

	// Fast path. The unique index on (usuario_id, version, hash_archivo) is
	// the real guarantee; a concurrent insert still surfaces below.
	if prior, err := s.repo.FindDuplicate(ctx, actor.UserID, upload.Version, digest); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check duplicates")
	} else if prior != nil {
		return nil, duplicateError(prior.Filename, prior.Version)
	}

	// Same bytes under a new version label are accepted but flagged.
	reingested, err := s.repo.ExistsByHash(ctx, actor.UserID, digest)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check duplicates")
	}

	if err := s.validator.Validate(ext, upload.Data); err != nil {
		return nil, err
	}

	sanitized := sanitizeFilename(filepath.Base(upload.Filename))
	stored := fmt.Sprintf("%s_%s", digest[:12], sanitized)
	relPath := s.storage.UserPath(strconv.FormatInt(actor.UserID, 10), stored)
	if _, err := s.storage.Save(relPath, upload.Data); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist file")
	}

	classification := s.classifier.Classify(sanitized, ext)

	doc := &models.Document{
		Filename:        sanitized,
		Extension:       ext,
		Version:         upload.Version,
		ContentHash:     digest,
		StoragePath:     relPath,
		SizeKB:          float64(len(upload.Data)) / 1024.0,
		Duplicate:       reingested,
		OwnerID:         actor.UserID,
		DocumentType:    strPtr(classification.DocumentType),
		Serie:           strPtr(classification.Serie),
		Subserie:        strPtr(classification.Subserie),
		Confidence:      &classification.Confidence,
		Confidentiality: strPtr(classification.Confidentiality),
	}
	if upload.Category != "" {
		doc.Category = &upload.Category
	} else {
		doc.Category = strPtr(classification.Category)
	}
	if author := s.validator.Author(ext, upload.Data); author != "" {
		doc.Author = &author
	}
	if fetched != nil {
		doc.ContentType = strPtr(fetched.ContentType)
		doc.LastModified = strPtr(fetched.LastModified)
		doc.Server = strPtr(fetched.Server)
	}

	if err := s.repo.Create(ctx, doc); err != nil {
		// Stored bytes must not outlive a failed metadata insert.
		_ = s.storage.Delete(relPath)
		if errors.Is(err, repository.ErrDuplicateDocument) {
			return nil, duplicateError(sanitized, upload.Version)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create document")
	}

	history := &models.DocumentHistory{
		Filename:     doc.Filename,
		Version:      doc.Version,
		UploaderName: actor.Name,
		OwnerID:      actor.UserID,
		UploadedAt:   time.Now().UTC(),
		ContentHash:  digest,
	}
	if err := s.repo.CreateHistory(ctx, history); err != nil {
		s.logger.Warn("failed to record upload history", zap.Error(err))
	}

	if s.folio != nil {
		s.folio.Invalidate(ctx, actor.UserID)
	}
	if s.comprobante != nil {
		s.comprobante.EnqueueRender(doc.ID, actor.UserID)
	}

	s.logger.Info("document ingested",
		zap.Int64("document_id", doc.ID),
		zap.Int64("usuario_id", actor.UserID),
		zap.String("nombre", doc.Filename),
		zap.String("hash", digest))
	return doc, nil
}

// Get loads one document enforcing ownership (admins see everything).
func (s *DocumentService) Get(ctx context.Context, actor *models.JWTClaims, id int64) (*models.Document, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "documento no encontrado")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}
	if actor.Role != models.RoleAdmin && doc.OwnerID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "el documento pertenece a otro usuario")
	}
	return doc, nil
}

// List returns the actor's documents. Admins may list any user via filter.
func (s *DocumentService) List(ctx context.Context, actor *models.JWTClaims, filter dto.DocumentFilter) ([]models.Document, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	repoFilter := models.DocumentFilter{
		Name:         filter.Name,
		Category:     filter.Category,
		Serie:        filter.Serie,
		ExpedienteID: filter.ExpedienteID,
	}
	if actor.Role != models.RoleAdmin {
		owner := actor.UserID
		repoFilter.OwnerID = &owner
	}
	docs, err := s.repo.List(ctx, repoFilter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}
	return docs, nil
}

// History returns upload history rows, optionally narrowed by filename.
func (s *DocumentService) History(ctx context.Context, actor *models.JWTClaims, name string) ([]models.DocumentHistory, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	var (
		rows []models.DocumentHistory
		err  error
	)
	if name == "" {
		rows, err = s.repo.HistoryByOwner(ctx, actor.UserID)
	} else {
		rows, err = s.repo.HistoryByName(ctx, actor.UserID, name)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load history")
	}
	return rows, nil
}

// GetDownloadURL issues a short-lived signed download link.
func (s *DocumentService) GetDownloadURL(ctx context.Context, actor *models.JWTClaims, id int64) (*dto.DownloadResponse, error) {
	if s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "download signer unavailable")
	}
	doc, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	token, _, err := s.signer.Generate(strconv.FormatInt(doc.ID, 10), doc.StoragePath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate download token")
	}
	base := strings.TrimRight(s.cfg.APIPrefix, "/")
	return &dto.DownloadResponse{
		DocumentID:  doc.ID,
		Filename:    doc.Filename,
		DownloadURL: fmt.Sprintf("%s/documentos/%d/descargar?token=%s", base, doc.ID, token),
	}, nil
}

// Download validates the signed token and opens the stored file.
func (s *DocumentService) Download(ctx context.Context, actor *models.JWTClaims, id int64, token string) (*DocumentDownload, error) {
	if s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "download signer unavailable")
	}
	doc, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	docID, relPath, expiresAt, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token inválido o expirado")
	}
	if docID != strconv.FormatInt(doc.ID, 10) || relPath != doc.StoragePath {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "el token no corresponde al documento")
	}

	file, err := s.storage.Open(doc.StoragePath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, http.StatusNotFound, "el archivo no está disponible")
	}
	info, err := file.Stat()
	if err != nil {
		file.Close() //nolint:errcheck
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat file")
	}
	return &DocumentDownload{
		File:      file,
		Filename:  doc.Filename,
		SizeBytes: info.Size(),
		ExpiresAt: expiresAt,
	}, nil
}

func (s *DocumentService) digest(data []byte) string {
	var h hash.Hash
	switch strings.ToLower(s.cfg.HashAlgorithm) {
	case "sha256":
		h = sha256.New()
	default:
		h = md5.New()
	}
	h.Write(data) //nolint:errcheck
	return hex.EncodeToString(h.Sum(nil))
}

func (s *DocumentService) emitAudit(ctx context.Context, actor *models.JWTClaims, action models.AuditAction, doc *models.Document) {
	if s.audit == nil {
		return
	}
	resourceID := strconv.FormatInt(doc.ID, 10)
	err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     action,
		Resource:   "documento",
		ResourceID: &resourceID,
		Detail:     []byte(fmt.Sprintf(`{"nombre":%q,"version":%q}`, doc.Filename, doc.Version)),
	})
	if err != nil {
		s.logger.Warn("failed to record document audit log", zap.Error(err))
	}
}

func duplicateError(filename, version string) *appErrors.Error {
	msg := fmt.Sprintf("Ya subiste anteriormente el archivo '%s' con la versión '%s'", filename, version)
	return appErrors.Clone(appErrors.ErrDuplicate, msg)
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
