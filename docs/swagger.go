// Package docs registers the OpenAPI description served at /swagger.
package docs

import "github.com/swaggo/swag"

// @title           Team Kanban API
// @version         1.0
// @description     Multi-tenant kanban boards: organizations, boards, columns and ordered tasks.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token

// @tag.name Users
// @tag.description Registration and login

// @tag.name Boards
// @tag.description Board management and trash

// @tag.name Columns
// @tag.description Column management operations

// @tag.name Tasks
// @tag.description Task management and ordering

// @tag.name Organizations
// @tag.description Organizations, members and the active workspace

// @tag.name Invitations
// @tag.description Inviting users to an organization

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/register": {"post": {"tags": ["Users"], "summary": "Register a user with a personal workspace", "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}}},
        "/login": {"post": {"tags": ["Users"], "summary": "Open a session", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/boards": {
            "get": {"tags": ["Boards"], "security": [{"BearerAuth": []}], "summary": "List boards, ?deleted=true for the trash", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Boards"], "security": [{"BearerAuth": []}], "summary": "Create a board", "responses": {"201": {"description": "Created"}}}
        },
        "/boards/{id}": {
            "get": {"tags": ["Boards"], "security": [{"BearerAuth": []}], "summary": "Board with columns and tasks", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"tags": ["Boards"], "security": [{"BearerAuth": []}], "summary": "Update a board", "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["Boards"], "security": [{"BearerAuth": []}], "summary": "Move a board to the trash", "responses": {"200": {"description": "OK"}}}
        },
        "/boards/{id}/tasks/sort-order": {"post": {"tags": ["Tasks"], "security": [{"BearerAuth": []}], "summary": "Reorder tasks of a column", "responses": {"200": {"description": "OK"}, "409": {"description": "Concurrent modification"}}}},
        "/boards/{id}/tasks/move": {"post": {"tags": ["Tasks"], "security": [{"BearerAuth": []}], "summary": "Move a task to another column", "responses": {"200": {"description": "OK"}, "409": {"description": "Concurrent modification"}}}},
        "/organizations/active": {
            "get": {"tags": ["Organizations"], "security": [{"BearerAuth": []}], "summary": "Active organization", "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["Organizations"], "security": [{"BearerAuth": []}], "summary": "Switch the active organization", "responses": {"200": {"description": "OK"}}}
        },
        "/invitations": {
            "get": {"tags": ["Invitations"], "security": [{"BearerAuth": []}], "summary": "Pending invitations for the caller", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Invitations"], "security": [{"BearerAuth": []}], "summary": "Invite by email", "responses": {"201": {"description": "Created"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Team Kanban API",
	Description:      "Multi-tenant kanban boards: organizations, boards, columns and ordered tasks.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
