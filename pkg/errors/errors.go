package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Generic errors shared across handlers. Messages are user-facing and
// therefore in Spanish.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "correo o contraseña inválidos")
	ErrInactiveAccount    = New("INACTIVE_ACCOUNT", http.StatusForbidden, "la cuenta está inactiva")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "recurso no encontrado")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "acceso denegado")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "no autenticado")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflicto con el estado actual del recurso")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "datos de entrada inválidos")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "error interno del servidor")
)

// Ingestion pipeline errors. Validation failures are caught at the boundary
// and surfaced as 4xx with a human readable detail.
var (
	ErrUnsupportedType  = New("UNSUPPORTED_TYPE", http.StatusBadRequest, "tipo de archivo no permitido")
	ErrFileTooLarge     = New("FILE_TOO_LARGE", http.StatusBadRequest, "archivo demasiado grande (máx 10 MB)")
	ErrFileCorrupt      = New("FILE_CORRUPT", http.StatusBadRequest, "archivo corrupto o no procesable")
	ErrDuplicate        = New("DUPLICATE_DOCUMENT", http.StatusBadRequest, "documento duplicado")
	ErrSignatureMissing = New("SIGNATURE_MISSING", http.StatusBadRequest, "el documento PDF no tiene firma digital válida")
	ErrInvalidTRD       = New("INVALID_TRD_STRUCTURE", http.StatusBadRequest, "estructura TRD/CCD inválida")
	ErrURLUnprocessable = New("URL_UNPROCESSABLE", http.StatusBadRequest, "no se pudo procesar la URL")
)

// FromError normalises any error into an *Error. Unknown errors are
// wrapped as internal so their details never leak to clients.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
