package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Gestor Documental API",
        "description": "Gestión documental con deduplicación, clasificación e índices foliados",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Autenticación", "description": "Registro, login y gestión de sesiones"},
        {"name": "Usuarios", "description": "Administración de cuentas y roles"},
        {"name": "Documentos", "description": "Ingesta, consulta y descarga de documentos"},
        {"name": "XML", "description": "Comprobantes de indexación electrónica"},
        {"name": "Expedientes", "description": "Expedientes y su índice foliado"},
        {"name": "FUID", "description": "Formato único de inventario documental"},
        {"name": "TRD", "description": "Tablas de retención y cuadros de clasificación"}
    ],
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["Autenticación"],
                "summary": "Registrar una cuenta",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Creado", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email en uso"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Autenticación"],
                "summary": "Iniciar sesión",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Credenciales inválidas"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Autenticación"],
                "summary": "Renovar token de acceso",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Autenticación"],
                "summary": "Usuario autenticado",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/documentos/upload": {
            "post": {
                "tags": ["Documentos"],
                "summary": "Subir un documento",
                "consumes": ["multipart/form-data"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "archivo", "in": "formData", "type": "file", "required": true},
                    {"name": "version", "in": "formData", "type": "string", "required": true},
                    {"name": "categoria", "in": "formData", "type": "string"},
                    {"name": "expediente_id", "in": "formData", "type": "integer"}
                ],
                "responses": {
                    "201": {"description": "Creado", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Archivo duplicado o inválido"}
                }
            }
        },
        "/documentos/desde-url": {
            "post": {
                "tags": ["Documentos"],
                "summary": "Ingresar un documento desde una URL externa",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/URLIngestRequest"}}
                ],
                "responses": {
                    "201": {"description": "Creado", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/documentos": {
            "get": {
                "tags": ["Documentos"],
                "summary": "Listar documentos",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "nombre", "in": "query", "type": "string"},
                    {"name": "categoria", "in": "query", "type": "string"},
                    {"name": "serie", "in": "query", "type": "string"},
                    {"name": "expediente_id", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/documentos/historial": {
            "get": {
                "tags": ["Documentos"],
                "summary": "Historial de subidas",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "nombre_archivo", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/documentos/indice_foliado": {
            "get": {
                "tags": ["Documentos"],
                "summary": "Índice foliado del usuario",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "formato", "in": "query", "type": "string", "enum": ["json", "csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/documentos/{id}/descargar": {
            "get": {
                "tags": ["Documentos"],
                "summary": "Descargar un documento con token firmado",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "integer", "required": true},
                    {"name": "token", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Archivo"},
                    "403": {"description": "Token inválido"}
                }
            }
        },
        "/xml/documento/{id}": {
            "get": {
                "tags": ["XML"],
                "summary": "Comprobante XML de un documento",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "integer", "required": true}
                ],
                "responses": {
                    "200": {"description": "XML"}
                }
            }
        },
        "/xml/expediente/usuario/{id}": {
            "get": {
                "tags": ["XML"],
                "summary": "Comprobante XML del expediente de un usuario",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "integer", "required": true}
                ],
                "responses": {
                    "200": {"description": "XML"}
                }
            }
        },
        "/expedientes": {
            "post": {
                "tags": ["Expedientes"],
                "summary": "Crear un expediente",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Creado", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Código en uso"}
                }
            },
            "get": {
                "tags": ["Expedientes"],
                "summary": "Listar expedientes del usuario",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/expedientes/{id}/documentos": {
            "post": {
                "tags": ["Expedientes"],
                "summary": "Adjuntar un documento",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "integer", "required": true}
                ],
                "responses": {
                    "204": {"description": "Adjuntado"},
                    "409": {"description": "Expediente cerrado"}
                }
            },
            "get": {
                "tags": ["Expedientes"],
                "summary": "Índice foliado del expediente",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "integer", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/fuid": {
            "post": {
                "tags": ["FUID"],
                "summary": "Crear un registro FUID",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Creado", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "get": {
                "tags": ["FUID"],
                "summary": "Listar registros FUID del usuario",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/fuid/{numero}/verificar": {
            "get": {
                "tags": ["FUID"],
                "summary": "Verificar la integridad de un registro FUID",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "numero", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/trd/upload": {
            "post": {
                "tags": ["TRD"],
                "summary": "Subir un paquete TRD o CCD",
                "consumes": ["multipart/form-data"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "archivo", "in": "formData", "type": "file", "required": true},
                    {"name": "tipo", "in": "formData", "type": "string", "required": true},
                    {"name": "descripcion", "in": "formData", "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Creado", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "required": ["nombre", "email", "password"],
            "properties": {
                "nombre": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "URLIngestRequest": {
            "type": "object",
            "required": ["url"],
            "properties": {
                "url": {"type": "string"},
                "version": {"type": "string"},
                "expediente_id": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
