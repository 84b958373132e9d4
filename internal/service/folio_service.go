package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/david16260/gestor-documental/internal/models"
	appErrors "github.com/david16260/gestor-documental/pkg/errors"
	"github.com/david16260/gestor-documental/pkg/export"
)

var folioHeaders = []string{"orden", "nombre_archivo", "tamano_kb", "pagina_inicio", "pagina_fin", "fecha"}

type folioDocumentRepository interface {
	ListByOwner(ctx context.Context, ownerID int64) ([]models.Document, error)
}

// FolioService computes the folio index: cumulative page numbering over a
// user's documents in upload order. Results are cached in Redis because the
// index is recomputed on every dashboard render.
type FolioService struct {
	docs     folioDocumentRepository
	cache    *redis.Client
	cacheTTL time.Duration
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
}

// NewFolioService constructs the service. A nil cache disables caching.
func NewFolioService(docs folioDocumentRepository, cache *redis.Client, cacheTTL time.Duration, logger *zap.Logger) *FolioService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &FolioService{
		docs:     docs,
		cache:    cache,
		cacheTTL: cacheTTL,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
	}
}

func folioCacheKey(ownerID int64) string {
	return fmt.Sprintf("folio:index:%d", ownerID)
}

// Index returns the folio index for a user, from cache when fresh.
func (s *FolioService) Index(ctx context.Context, ownerID int64) (*models.FolioIndex, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, folioCacheKey(ownerID)).Bytes()
		if err == nil {
			var cached models.FolioIndex
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn("folio cache read failed", zap.Error(err))
		}
	}

	docs, err := s.docs.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}

	index := BuildFolioIndex(ownerID, docs)

	if s.cache != nil {
		if raw, err := json.Marshal(index); err == nil {
			if err := s.cache.Set(ctx, folioCacheKey(ownerID), raw, s.cacheTTL).Err(); err != nil {
				s.logger.Warn("folio cache write failed", zap.Error(err))
			}
		}
	}
	return index, nil
}

// Invalidate drops the cached index after an upload changes the document set.
func (s *FolioService) Invalidate(ctx context.Context, ownerID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, folioCacheKey(ownerID)).Err(); err != nil {
		s.logger.Warn("folio cache invalidation failed", zap.Error(err))
	}
}

// ExportCSV renders the index as CSV bytes.
func (s *FolioService) ExportCSV(ctx context.Context, ownerID int64) ([]byte, error) {
	index, err := s.Index(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.csv.Render(folioDataset(index))
}

// ExportPDF renders the index as a tabular PDF.
func (s *FolioService) ExportPDF(ctx context.Context, ownerID int64) ([]byte, error) {
	index, err := s.Index(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.pdf.Render(folioDataset(index), "Índice Foliado")
}

// BuildFolioIndex assigns cumulative page ranges in document order.
func BuildFolioIndex(ownerID int64, docs []models.Document) *models.FolioIndex {
	index := &models.FolioIndex{
		OwnerID:        ownerID,
		TotalDocuments: len(docs),
		Entries:        make([]models.FolioEntry, 0, len(docs)),
	}

	page := 1
	for i, doc := range docs {
		pages := EstimatePages(doc.SizeKB)
		end := page + pages - 1
		index.Entries = append(index.Entries, models.FolioEntry{
			Order:     i + 1,
			Filename:  doc.Filename,
			SizeKB:    doc.SizeKB,
			PageStart: page,
			PageEnd:   end,
			Date:      doc.CreatedAt.Format("2006-01-02"),
		})
		page = end + 1
	}
	index.TotalPages = page - 1
	return index
}

func folioDataset(index *models.FolioIndex) export.Dataset {
	data := export.Dataset{Headers: folioHeaders}
	for _, e := range index.Entries {
		data.AddRow(
			strconv.Itoa(e.Order),
			e.Filename,
			strconv.FormatFloat(e.SizeKB, 'f', 1, 64),
			strconv.Itoa(e.PageStart),
			strconv.Itoa(e.PageEnd),
			e.Date,
		)
	}
	return data
}
