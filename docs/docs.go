// Package docs registers the OpenAPI document served under /swagger.
// Regenerate with: swag init -g cmd/server/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support",
            "email": "bendahara@infor24"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Login user",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.LoginRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.Response"}}}
            }
        },
        "/auth/refresh": {
            "post": {"tags": ["Auth"], "summary": "Refresh access token", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}}
        },
        "/auth/logout": {
            "post": {"tags": ["Auth"], "summary": "Logout user", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}}
        },
        "/auth/me": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Auth"], "summary": "Get current user", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}}
        },
        "/bills": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Bills"],
                "summary": "List bills",
                "parameters": [
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "string", "name": "batch_id", "in": "query"},
                    {"type": "integer", "default": 1, "name": "page", "in": "query"},
                    {"type": "integer", "default": 20, "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Bills"],
                "summary": "Create bills",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.CreateBillBatchRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/response.Response"}}}
            }
        },
        "/bills/{id}/claim-paid": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["Bills"], "summary": "Claim bill as paid", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}}
        },
        "/bills/{id}/pay": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["Bills"], "summary": "Verify bill payment", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}}
        },
        "/bills/{id}/unverify": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["Bills"], "summary": "Unverify bill payment", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}}
        },
        "/transactions": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Transactions"], "summary": "List transactions", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["Transactions"], "summary": "Create transaction", "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.TransactionRequest"}}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/response.Response"}}}}
        },
        "/transactions/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Transactions"], "summary": "Get transaction", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["Transactions"], "summary": "Update transaction", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.TransactionRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["Transactions"], "summary": "Delete transaction", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}}
        },
        "/reports/summary": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Reports"], "summary": "Cash summary", "parameters": [{"type": "string", "name": "from", "in": "query"}, {"type": "string", "name": "to", "in": "query"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}}
        },
        "/export/rekap": {
            "get": {"security": [{"BearerAuth": []}], "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"], "tags": ["Reports"], "summary": "Export cash recap", "responses": {"200": {"description": "OK", "schema": {"type": "file"}}}}
        },
        "/dashboard": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Dashboard"], "summary": "Dashboard", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}}
        },
        "/users": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Users"], "summary": "List users", "parameters": [{"type": "string", "name": "role", "in": "query"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}}
        },
        "/users/{id}/reset-password": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["Users"], "summary": "Reset user password", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}}
        },
        "/members": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Members"], "summary": "List members", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["Members"], "summary": "Create member", "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.CreateMemberRequest"}}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/response.Response"}}}}
        },
        "/members/{id}": {
            "delete": {"security": [{"BearerAuth": []}], "tags": ["Members"], "summary": "Delete member", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}}
        },
        "/profile/password": {
            "put": {"security": [{"BearerAuth": []}], "tags": ["Profile"], "summary": "Change password", "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.ChangePasswordRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}}
        },
        "/public/upcoming-bills": {
            "get": {"tags": ["Public"], "summary": "Upcoming bills", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}}
        }
    },
    "definitions": {
        "handlers.LoginRequest": {
            "type": "object",
            "properties": {"email": {"type": "string", "example": "bendahara@infor24"}, "password": {"type": "string", "example": "inforumuka24"}}
        },
        "handlers.CreateBillBatchRequest": {
            "type": "object",
            "properties": {
                "amount": {"type": "number", "example": 5000},
                "description": {"type": "string", "example": "Kas Mingguan"},
                "due_date": {"type": "string", "example": "2026-10-20"},
                "weeks_count": {"type": "integer", "example": 4},
                "user_ids": {"type": "array", "items": {"type": "string"}},
                "for_all_users": {"type": "boolean", "example": true}
            }
        },
        "handlers.TransactionRequest": {
            "type": "object",
            "properties": {"amount": {"type": "number", "example": 30000}, "type": {"type": "string", "example": "KELUAR"}, "description": {"type": "string", "example": "Beli Spidol"}}
        },
        "handlers.CreateMemberRequest": {
            "type": "object",
            "properties": {"name": {"type": "string"}, "email": {"type": "string"}, "password": {"type": "string"}}
        },
        "handlers.ChangePasswordRequest": {
            "type": "object",
            "properties": {"old_password": {"type": "string"}, "new_password": {"type": "string"}}
        },
        "response.Response": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "data": {},
                "error": {"type": "string"},
                "fields": {"type": "array", "items": {"type": "object", "properties": {"field": {"type": "string"}, "rule": {"type": "string"}}}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:3000",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "Kas Kelas API",
	Description:      "API kas kelas: tagihan anggota, verifikasi pembayaran, pencatatan kas dan rekap.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
