package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/david16260/gestor-documental/pkg/errors"
)

func TestNormalizeURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{
			"https://docs.google.com/document/d/abc123/edit",
			"https://docs.google.com/document/d/abc123/export?format=pdf",
		},
		{
			"https://docs.google.com/spreadsheets/d/xyz789/edit#gid=0",
			"https://docs.google.com/spreadsheets/d/xyz789/export?format=xlsx",
		},
		{
			"https://drive.google.com/file/d/fileid42/view?usp=sharing",
			"https://drive.google.com/uc?export=download&id=fileid42",
		},
		{
			"https://example.com/informe.pdf",
			"https://example.com/informe.pdf",
		},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeURL(tc.in), tc.in)
	}
}

func TestFetchUsesContentDisposition(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Disposition", `attachment; filename="acta_firmada.pdf"`)
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4 fake")) //nolint:errcheck
	}))
	defer srv.Close()

	f := NewFetcherService("Mozilla/5.0", time.Second, 0, nil)
	got, err := f.Fetch(context.Background(), srv.URL+"/descarga")
	require.NoError(t, err)
	assert.Equal(t, "acta_firmada.pdf", got.Filename)
	assert.Equal(t, ".pdf", got.Extension)
	assert.Equal(t, "application/pdf", got.ContentType)
}

func TestFetchFallsBackToURLTail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4")) //nolint:errcheck
	}))
	defer srv.Close()

	f := NewFetcherService("", time.Second, 0, nil)
	got, err := f.Fetch(context.Background(), srv.URL+"/carpeta/informe_enero.pdf")
	require.NoError(t, err)
	assert.Equal(t, "informe_enero.pdf", got.Filename)
}

func TestFetchExtensionFromContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Write([]byte("PK fake xlsx")) //nolint:errcheck
	}))
	defer srv.Close()

	f := NewFetcherService("", time.Second, 0, nil)
	got, err := f.Fetch(context.Background(), srv.URL+"/export")
	require.NoError(t, err)
	assert.Equal(t, ".xlsx", got.Extension)
	assert.Equal(t, "export.xlsx", got.Filename)
}

func TestFetchRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewFetcherService("", time.Second, 0, nil)
	_, err := f.Fetch(context.Background(), srv.URL+"/missing.pdf")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrURLUnprocessable.Code, appErrors.FromError(err).Code)
}

func TestFetchEnforcesSizeLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write(make([]byte, 2048)) //nolint:errcheck
	}))
	defer srv.Close()

	f := NewFetcherService("", time.Second, 1024, nil)
	_, err := f.Fetch(context.Background(), srv.URL+"/grande.pdf")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrFileTooLarge.Code, appErrors.FromError(err).Code)
}

func TestFetchInvalidURL(t *testing.T) {
	f := NewFetcherService("", time.Second, 0, nil)
	_, err := f.Fetch(context.Background(), "::no-es-url")
	require.Error(t, err)
}
