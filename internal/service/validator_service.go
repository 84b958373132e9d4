package service

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	appErrors "github.com/david16260/gestor-documental/pkg/errors"
)

// ValidatorService performs structural checks on uploaded content before it
// is persisted. A file that parses wrong is rejected at the boundary instead
// of poisoning downstream indexing.
type ValidatorService struct {
	requireSignature bool
	logger           *zap.Logger
}

// NewValidatorService constructs the validator.
func NewValidatorService(requireSignature bool, logger *zap.Logger) *ValidatorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ValidatorService{requireSignature: requireSignature, logger: logger}
}

// Validate dispatches on extension. Extensions without a structural check
// pass through untouched.
func (v *ValidatorService) Validate(extension string, data []byte) error {
	switch strings.ToLower(extension) {
	case ".pdf":
		return v.validatePDF(data)
	case ".xlsx":
		return v.validateXLSX(data)
	case ".trd", ".ccd":
		return v.ValidateTRDArchive(data)
	default:
		return nil
	}
}

// validatePDF runs a relaxed pdfcpu validation pass and, when configured,
// requires an embedded digital signature.
func (v *ValidatorService) validatePDF(data []byte) error {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err == nil {
		err = api.ValidateContext(ctx)
	}
	if err != nil {
		v.logger.Debug("pdf validation failed", zap.Error(err))
		return appErrors.Clone(appErrors.ErrFileCorrupt, "el PDF está corrupto o no es válido")
	}

	if v.requireSignature && !ctx.SignatureExist && !ctx.AppendOnly {
		return appErrors.ErrSignatureMissing
	}
	return nil
}

// validateXLSX confirms the workbook opens and has at least one sheet.
func (v *ValidatorService) validateXLSX(data []byte) error {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		v.logger.Debug("xlsx validation failed", zap.Error(err))
		return appErrors.Clone(appErrors.ErrFileCorrupt, "el archivo XLSX está corrupto o no es válido")
	}
	defer f.Close() //nolint:errcheck

	if len(f.GetSheetList()) == 0 {
		return appErrors.Clone(appErrors.ErrFileCorrupt, "el archivo XLSX no contiene hojas")
	}
	return nil
}

// zipMagic is the local-file-header signature every zip payload starts with.
var zipMagic = []byte("PK\x03\x04")

// ValidateTRDArchive checks the mandatory layout of a TRD/CCD package when it
// arrives as a zip: metadata.xml plus a leading documentos/ directory. Any
// non-zip payload is accepted as-is.
func (v *ValidatorService) ValidateTRDArchive(data []byte) error {
	if !bytes.HasPrefix(data, zipMagic) {
		return nil
	}
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return appErrors.Clone(appErrors.ErrInvalidTRD, "el paquete TRD/CCD no es un ZIP válido")
	}
	if len(reader.File) == 0 {
		return appErrors.ErrInvalidTRD
	}

	hasMetadata := false
	for _, f := range reader.File {
		if f.Name == "metadata.xml" || strings.HasSuffix(f.Name, "/metadata.xml") {
			hasMetadata = true
			break
		}
	}
	if !hasMetadata {
		return appErrors.Clone(appErrors.ErrInvalidTRD, "falta metadata.xml en el paquete")
	}

	if !strings.HasPrefix(reader.File[0].Name, "documentos/") {
		return appErrors.Clone(appErrors.ErrInvalidTRD, "el paquete debe iniciar con el directorio documentos/")
	}
	return nil
}

// XLSXAuthor pulls the author from workbook core properties. Empty when the
// file has none.
func (v *ValidatorService) XLSXAuthor(data []byte) string {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return ""
	}
	defer f.Close() //nolint:errcheck

	props, err := f.GetDocProps()
	if err != nil || props == nil {
		return ""
	}
	return props.Creator
}

// sniffAuthor extracts author metadata for supported formats. DOCX files are
// zip packages carrying docProps/core.xml with a dc:creator element.
func (v *ValidatorService) sniffAuthor(extension string, data []byte) string {
	switch strings.ToLower(extension) {
	case ".xlsx":
		return v.XLSXAuthor(data)
	case ".docx":
		return docxCreator(data)
	case ".pdf":
		return pdfAuthor(data)
	}
	return ""
}

// Author is the exported author sniffing entry point.
func (v *ValidatorService) Author(extension string, data []byte) string {
	return v.sniffAuthor(extension, data)
}

func docxCreator(data []byte) string {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}
	for _, f := range reader.File {
		if f.Name != "docProps/core.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return ""
		}
		raw, err := io.ReadAll(io.LimitReader(rc, 64*1024))
		rc.Close() //nolint:errcheck
		if err != nil {
			return ""
		}
		return extractXMLElement(string(raw), "dc:creator")
	}
	return ""
}

func pdfAuthor(data []byte) string {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return ""
	}
	if err := api.ValidateContext(ctx); err != nil {
		return ""
	}
	return ctx.Author
}

func extractXMLElement(doc, element string) string {
	open := "<" + element
	start := strings.Index(doc, open)
	if start < 0 {
		return ""
	}
	rest := doc[start:]
	gt := strings.Index(rest, ">")
	if gt < 0 {
		return ""
	}
	rest = rest[gt+1:]
	end := strings.Index(rest, "</")
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(rest[:end])
}
