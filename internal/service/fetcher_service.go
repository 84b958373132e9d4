package service

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/david16260/gestor-documental/pkg/errors"
)

// FetchedFile is the outcome of downloading an external document.
type FetchedFile struct {
	Filename     string
	Extension    string
	Data         []byte
	ContentType  string
	LastModified string
	Server       string
}

// FetcherService downloads documents from external URLs. Google Drive and
// Google Docs links are normalised to their direct-download form first.
type FetcherService struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
	logger    *zap.Logger
}

// NewFetcherService constructs the fetcher.
func NewFetcherService(userAgent string, timeout time.Duration, maxBytes int64, logger *zap.Logger) *FetcherService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &FetcherService{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		maxBytes:  maxBytes,
		logger:    logger,
	}
}

var (
	driveFileRe   = regexp.MustCompile(`drive\.google\.com/file/d/([^/]+)`)
	docsRe        = regexp.MustCompile(`docs\.google\.com/document/d/([^/]+)`)
	sheetsRe      = regexp.MustCompile(`docs\.google\.com/spreadsheets/d/([^/]+)`)
	confirmTokenRe = regexp.MustCompile(`confirm=([0-9A-Za-z_-]+)`)
)

// NormalizeURL rewrites Google Drive and Google Workspace share links to
// direct-download endpoints. Other URLs pass through unchanged.
func NormalizeURL(raw string) string {
	if m := docsRe.FindStringSubmatch(raw); m != nil {
		return fmt.Sprintf("https://docs.google.com/document/d/%s/export?format=pdf", m[1])
	}
	if m := sheetsRe.FindStringSubmatch(raw); m != nil {
		return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/export?format=xlsx", m[1])
	}
	if m := driveFileRe.FindStringSubmatch(raw); m != nil {
		return fmt.Sprintf("https://drive.google.com/uc?export=download&id=%s", m[1])
	}
	return raw
}

// Fetch downloads the document behind the URL. Drive downloads that answer
// with an interstitial confirmation page are retried with the confirm token.
func (s *FetcherService) Fetch(ctx context.Context, rawURL string) (*FetchedFile, error) {
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return nil, appErrors.Clone(appErrors.ErrURLUnprocessable, "la URL no es válida")
	}

	target := NormalizeURL(rawURL)
	resp, body, err := s.get(ctx, target)
	if err != nil {
		return nil, err
	}

	// Large Drive files answer with an HTML warning page instead of the
	// binary. The page embeds a confirm token to retry with.
	if strings.Contains(target, "drive.google.com") && strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		if m := confirmTokenRe.FindSubmatch(body); m != nil {
			retry := target + "&confirm=" + string(m[1])
			s.logger.Debug("retrying drive download with confirm token", zap.String("url", retry))
			resp, body, err = s.get(ctx, retry)
			if err != nil {
				return nil, err
			}
		}
	}

	if len(body) == 0 {
		return nil, appErrors.Clone(appErrors.ErrURLUnprocessable, "la URL no devolvió contenido")
	}

	filename := filenameFromResponse(resp, rawURL)
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = extensionFromContentType(resp.Header.Get("Content-Type"))
		filename += ext
	}

	return &FetchedFile{
		Filename:     filename,
		Extension:    ext,
		Data:         body,
		ContentType:  resp.Header.Get("Content-Type"),
		LastModified: resp.Header.Get("Last-Modified"),
		Server:       resp.Header.Get("Server"),
	}, nil
}

func (s *FetcherService) get(ctx context.Context, target string) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrURLUnprocessable, "la URL no es válida")
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Debug("fetch failed", zap.String("url", target), zap.Error(err))
		return nil, nil, appErrors.Clone(appErrors.ErrURLUnprocessable, "no se pudo descargar la URL")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, appErrors.Clone(appErrors.ErrURLUnprocessable, fmt.Sprintf("la URL respondió con estado %d", resp.StatusCode))
	}

	reader := io.Reader(resp.Body)
	if s.maxBytes > 0 {
		reader = io.LimitReader(resp.Body, s.maxBytes+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrURLUnprocessable, "no se pudo leer la respuesta")
	}
	if s.maxBytes > 0 && int64(len(body)) > s.maxBytes {
		return nil, nil, appErrors.ErrFileTooLarge
	}
	return resp, body, nil
}

func filenameFromResponse(resp *http.Response, rawURL string) string {
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			if name := params["filename"]; name != "" {
				return sanitizeFilename(name)
			}
		}
	}

	if parsed, err := url.Parse(rawURL); err == nil {
		if base := path.Base(parsed.Path); base != "" && base != "/" && base != "." {
			return sanitizeFilename(base)
		}
	}
	return "documento_descargado"
}

func extensionFromContentType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ".bin"
	}
	switch mediaType {
	case "application/pdf":
		return ".pdf"
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return ".docx"
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return ".xlsx"
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	default:
		return ".bin"
	}
}

func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	replacer := strings.NewReplacer("/", "_", "\\", "_", "..", "_", "\x00", "")
	return replacer.Replace(name)
}
