// Package docs registers the OpenAPI description served at /swagger.
// Regenerate with `swag init -g cmd/tajeryar/main.go` after changing handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/user/auth/register": {"post": {"tags": ["auth"], "summary": "Register a new user", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}}},
        "/user/auth/login": {"post": {"tags": ["auth"], "summary": "Login user", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/user/auth/refresh": {"post": {"tags": ["auth"], "summary": "Refresh access token", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/api/v1/extract": {"post": {"security": [{"Bearer": []}], "tags": ["extraction"], "summary": "Extract a transaction from a transcript", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "400": {"description": "Empty transcript or invalid extraction"}, "422": {"description": "Model answer is not JSON"}, "502": {"description": "Language model unavailable"}}}},
        "/api/v1/extract/photo": {"post": {"security": [{"Bearer": []}], "tags": ["extraction"], "summary": "Extract a transaction from a receipt photo", "consumes": ["multipart/form-data"], "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "501": {"description": "Model cannot read images"}}}},
        "/api/v1/transcribe": {"post": {"security": [{"Bearer": []}], "tags": ["transcription"], "summary": "Transcribe a voice recording", "consumes": ["multipart/form-data"], "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "502": {"description": "Bad Gateway"}}}},
        "/api/v1/transactions": {
            "get": {"security": [{"Bearer": []}], "tags": ["transactions"], "summary": "List transactions", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"Bearer": []}], "tags": ["transactions"], "summary": "Save a transaction", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/api/v1/transactions/stats": {"get": {"security": [{"Bearer": []}], "tags": ["transactions"], "summary": "Transaction statistics", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/api/v1/transactions/export": {"get": {"security": [{"Bearer": []}], "tags": ["transactions"], "summary": "Export transactions to Excel", "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"], "responses": {"200": {"description": "OK"}}}},
        "/api/v1/transactions/{id}": {
            "get": {"security": [{"Bearer": []}], "tags": ["transactions"], "summary": "Get a transaction", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"security": [{"Bearer": []}], "tags": ["transactions"], "summary": "Update a transaction", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}},
            "delete": {"security": [{"Bearer": []}], "tags": ["transactions"], "summary": "Delete a transaction", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/api/v1/files": {
            "get": {"security": [{"Bearer": []}], "tags": ["files"], "summary": "List stored files", "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "post": {"security": [{"Bearer": []}], "tags": ["files"], "summary": "Upload a file", "consumes": ["multipart/form-data"], "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/api/v1/files/presign": {"post": {"security": [{"Bearer": []}], "tags": ["files"], "summary": "Create a temporary download link", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/api/v1/files/{objectName}": {"delete": {"security": [{"Bearer": []}], "tags": ["files"], "summary": "Delete a stored file", "parameters": [{"type": "string", "name": "objectName", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}}
    },
    "securityDefinitions": {
        "Bearer": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "TajerYar API",
	Description:      "Voice-driven bookkeeping for small shops: transcripts in, validated buy/sell transactions out.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
