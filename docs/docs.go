// Package docs registers the hand-maintained OpenAPI description served under /docs.
// Keep the paths in step with internal/api/router.go; the api package tests compare them.
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
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/health": {"get": {"tags": ["health"], "summary": "Liveness probe", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/auth/register": {"post": {"tags": ["auth"], "summary": "Register a user", "consumes": ["application/json"], "produces": ["application/json"],
            "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.RegisterRequest"}}],
            "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/types.APIResponse"}}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}, "429": {"description": "Too Many Requests"}}}},
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Exchange credentials for a bearer token", "consumes": ["application/json"], "produces": ["application/json"],
            "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.LoginRequest"}}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.APIResponse"}}, "401": {"description": "Unauthorized"}, "423": {"description": "Locked"}, "429": {"description": "Too Many Requests"}}}},
        "/auth/me": {"get": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Current user profile", "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/auth/change-password": {"post": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Change password", "consumes": ["application/json"],
            "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.ChangePasswordRequest"}}],
            "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/auth/forgot-password": {"post": {"tags": ["auth"], "summary": "Request a password reset token", "consumes": ["application/json"],
            "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.ForgotPasswordRequest"}}],
            "responses": {"200": {"description": "OK"}}}},
        "/auth/reset-password": {"post": {"tags": ["auth"], "summary": "Reset a password with a token", "consumes": ["application/json"],
            "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.ResetPasswordRequest"}}],
            "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/projects": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["projects"], "summary": "List projects visible to the caller", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "status", "in": "query"}, {"type": "string", "name": "archived", "in": "query"}],
                "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["projects"], "summary": "Create a project owned by the caller", "consumes": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.ProjectRequest"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/projects/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["projects"], "summary": "Get a project", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["projects"], "summary": "Replace a project (admin)", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.ProjectRequest"}}], "responses": {"200": {"description": "OK"}}},
            "patch": {"security": [{"BearerAuth": []}], "tags": ["projects"], "summary": "Update a project (admin)", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["projects"], "summary": "Delete a project and everything under it", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}}}
        },
        "/projects/{id}/archive": {"patch": {"security": [{"BearerAuth": []}], "tags": ["projects"], "summary": "Archive a project (admin)", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/projects/{id}/report": {"get": {"security": [{"BearerAuth": []}], "tags": ["reports"], "summary": "Render a project progress report", "produces": ["application/pdf"],
            "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"type": "string", "name": "startDate", "in": "query"}, {"type": "string", "name": "endDate", "in": "query"}, {"type": "string", "name": "folder", "in": "query"}, {"type": "string", "name": "logIds", "in": "query"}],
            "responses": {"200": {"description": "PDF document"}}}},
        "/projects/{id}/reports/daily": {"get": {"security": [{"BearerAuth": []}], "tags": ["reports"], "summary": "Render a report for a date range", "produces": ["application/pdf"],
            "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"type": "string", "name": "from", "in": "query"}, {"type": "string", "name": "to", "in": "query"}, {"type": "string", "name": "folder", "in": "query"}, {"type": "string", "name": "logIds", "in": "query"}],
            "responses": {"200": {"description": "PDF document"}}}},
        "/projects/{id}/logs": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["logs"], "summary": "List a project's daily logs, newest first",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"type": "string", "name": "startDate", "in": "query"}, {"type": "string", "name": "endDate", "in": "query"}, {"type": "string", "name": "activityType", "in": "query"}, {"type": "string", "name": "folder", "in": "query"}, {"type": "integer", "name": "page", "in": "query"}, {"type": "integer", "name": "limit", "in": "query"}],
                "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["logs"], "summary": "Create a daily log", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.LogRequest"}}], "responses": {"201": {"description": "Created"}}}
        },
        "/projects/{id}/folders": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["folders"], "summary": "List folders", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["folders"], "summary": "Create a folder", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.FolderRequest"}}], "responses": {"201": {"description": "Created"}}}
        },
        "/folders/{id}": {
            "patch": {"security": [{"BearerAuth": []}], "tags": ["folders"], "summary": "Rename a folder", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["folders"], "summary": "Delete a folder, detaching its logs", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}}}
        },
        "/logs/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["logs"], "summary": "Get a daily log with its attachments", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["logs"], "summary": "Replace a daily log", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "patch": {"security": [{"BearerAuth": []}], "tags": ["logs"], "summary": "Update a daily log", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["logs"], "summary": "Delete a daily log and its attachments", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}}}
        },
        "/logs/{id}/attachments": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["attachments"], "summary": "List a log's attachments", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["attachments"], "summary": "Upload photos or PDFs to a daily log", "consumes": ["multipart/form-data"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"type": "file", "name": "files", "in": "formData", "required": true}, {"type": "string", "name": "captions", "in": "formData"}, {"type": "string", "name": "tags", "in": "formData"}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/attachments/{id}": {"delete": {"security": [{"BearerAuth": []}], "tags": ["attachments"], "summary": "Delete an attachment", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}}}},
        "/attachments/{id}/comments": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["attachments"], "summary": "List comments, oldest first", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["attachments"], "summary": "Add a comment", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.CommentRequest"}}], "responses": {"201": {"description": "Created"}}}
        }
    },
    "definitions": {
        "types.APIError": {"type": "object", "properties": {"code": {"type": "string"}, "message": {"type": "string"}}},
        "types.APIResponse": {"type": "object", "properties": {"success": {"type": "boolean"}, "data": {}, "error": {"$ref": "#/definitions/types.APIError"}}},
        "types.RegisterRequest": {"type": "object", "properties": {"email": {"type": "string"}, "password": {"type": "string"}, "name": {"type": "string"}, "role": {"type": "string"}}},
        "types.LoginRequest": {"type": "object", "properties": {"email": {"type": "string"}, "password": {"type": "string"}}},
        "types.ChangePasswordRequest": {"type": "object", "properties": {"currentPassword": {"type": "string"}, "newPassword": {"type": "string"}}},
        "types.ForgotPasswordRequest": {"type": "object", "properties": {"email": {"type": "string"}}},
        "types.ResetPasswordRequest": {"type": "object", "properties": {"token": {"type": "string"}, "newPassword": {"type": "string"}}},
        "types.ProjectRequest": {"type": "object", "properties": {"name": {"type": "string"}, "client": {"type": "string"}, "siteAddress": {"type": "string"}, "startDate": {"type": "string"}, "endDate": {"type": "string"}, "status": {"type": "string"}}},
        "types.FolderRequest": {"type": "object", "properties": {"name": {"type": "string"}}},
        "types.CommentRequest": {"type": "object", "properties": {"text": {"type": "string"}}},
        "types.LogRequest": {"type": "object", "properties": {"date": {"type": "string"}, "weather": {"type": "object"}, "folder": {"type": "string"}, "siteArea": {"type": "string"}, "activityType": {"type": "string"}, "summary": {"type": "string"}, "issuesRisks": {"type": "string"}, "nextSteps": {"type": "string"}, "potentialClaim": {"type": "boolean"}, "delayCause": {"type": "string"}, "instructionRef": {"type": "string"}, "impact": {"type": "string"}, "costNote": {"type": "string"}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Site Tracker API",
	Description:      "Construction site daily logs, attachments and progress reports.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
