package service

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	appErrors "github.com/david16260/gestor-documental/pkg/errors"
)

func buildZip(t *testing.T, names []string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range names {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte("contenido"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestValidatePDFRejectsGarbage(t *testing.T) {
	v := NewValidatorService(false, nil)
	err := v.Validate(".pdf", []byte("not a pdf at all"))
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrFileCorrupt.Code, appErr.Code)
}

func TestValidateXLSXAcceptsWorkbook(t *testing.T) {
	f := excelize.NewFile()
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	v := NewValidatorService(false, nil)
	assert.NoError(t, v.Validate(".xlsx", buf.Bytes()))
}

func TestValidateXLSXRejectsGarbage(t *testing.T) {
	v := NewValidatorService(false, nil)
	err := v.Validate(".xlsx", []byte("nope"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrFileCorrupt.Code, appErrors.FromError(err).Code)
}

func TestValidateTRDArchive(t *testing.T) {
	v := NewValidatorService(false, nil)

	valid := buildZip(t, []string{"documentos/doc1.pdf", "metadata.xml"})
	assert.NoError(t, v.ValidateTRDArchive(valid))

	missingMetadata := buildZip(t, []string{"documentos/doc1.pdf"})
	err := v.ValidateTRDArchive(missingMetadata)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTRD.Code, appErrors.FromError(err).Code)

	wrongLayout := buildZip(t, []string{"otros/doc1.pdf", "metadata.xml"})
	err = v.ValidateTRDArchive(wrongLayout)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTRD.Code, appErrors.FromError(err).Code)

	truncated := append([]byte("PK\x03\x04"), []byte("recortado")...)
	err = v.ValidateTRDArchive(truncated)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTRD.Code, appErrors.FromError(err).Code)
}

func TestValidateTRDArchiveAcceptsNonZip(t *testing.T) {
	v := NewValidatorService(false, nil)

	assert.NoError(t, v.ValidateTRDArchive([]byte("serie;subserie;retencion\n100;10;5")))
	assert.NoError(t, v.Validate(".trd", []byte("texto plano")))
	assert.NoError(t, v.Validate(".ccd", []byte{0x25, 0x50, 0x44, 0x46}))
}

func TestValidateUnknownExtensionPasses(t *testing.T) {
	v := NewValidatorService(false, nil)
	assert.NoError(t, v.Validate(".png", []byte{0x89, 0x50, 0x4e, 0x47}))
}

func TestXLSXAuthor(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetDocProps(&excelize.DocProperties{Creator: "Maria Perez"}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	v := NewValidatorService(false, nil)
	assert.Equal(t, "Maria Perez", v.Author(".xlsx", buf.Bytes()))
}

func TestAuthorUnknownExtension(t *testing.T) {
	v := NewValidatorService(false, nil)
	assert.Empty(t, v.Author(".png", []byte("x")))
}
