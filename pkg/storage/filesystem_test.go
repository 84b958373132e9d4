package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupOlderThanOnlyTouchesSubdir(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	docPath := s.UserPath("1", "abc123_contrato.pdf")
	_, err = s.Save(docPath, []byte("%PDF-1.4"))
	require.NoError(t, err)

	xmlPath := s.UserPath("1", filepath.Join("xml", "contrato_comprobante.xml"))
	_, err = s.Save(xmlPath, []byte("<Root/>"))
	require.NoError(t, err)

	old := time.Now().Add(-31 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(s.Path(docPath), old, old))
	require.NoError(t, os.Chtimes(s.Path(xmlPath), old, old))

	deleted, err := s.CleanupOlderThan("xml", 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("1", "xml", "contrato_comprobante.xml")}, deleted)

	// The uploaded document outlived the sweep; only the comprobante left.
	_, err = os.Stat(s.Path(docPath))
	assert.NoError(t, err)
	_, err = os.Stat(s.Path(xmlPath))
	assert.True(t, os.IsNotExist(err))
}

func TestCleanupOlderThanKeepsRecentFiles(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	xmlPath := s.UserPath("7", filepath.Join("xml", "acta_comprobante.xml"))
	_, err = s.Save(xmlPath, []byte("<Root/>"))
	require.NoError(t, err)

	deleted, err := s.CleanupOlderThan("xml", time.Hour)
	require.NoError(t, err)
	assert.Empty(t, deleted)
	_, err = os.Stat(s.Path(xmlPath))
	assert.NoError(t, err)
}

func TestCleanupOlderThanRejectsEscapingSubdir(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, subdir := range []string{"", ".", "..", "../fuera", "/abs"} {
		_, err := s.CleanupOlderThan(subdir, time.Hour)
		assert.Error(t, err, subdir)
	}
}

func TestSaveRejectsTraversal(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = s.Save(filepath.Join("..", "fuga.txt"), []byte("x"))
	assert.Error(t, err)
	_, err = s.Save(string(filepath.Separator)+"fuga.txt", []byte("x"))
	assert.Error(t, err)
}
