// Package docs registers the OpenAPI document served at /api/swagger.
// Regenerate with `swag init -g cmd/server/main.go` after changing handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {"name": "MIT", "url": "https://opensource.org/licenses/MIT"},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/signup": {"post": {"tags": ["auth"], "summary": "User signup", "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}, "422": {"description": "Unprocessable Entity"}}}},
        "/auth/login": {"post": {"tags": ["auth"], "summary": "User login", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/auth/logout": {"post": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Revoke the current token", "responses": {"200": {"description": "OK"}}}},
        "/users/me": {"get": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Current user's profile", "responses": {"200": {"description": "OK"}}}},
        "/posts": {
            "get": {"tags": ["posts"], "summary": "List posts", "parameters": [
                {"type": "integer", "default": 1, "name": "page", "in": "query"},
                {"type": "integer", "default": 10, "name": "page_size", "in": "query"},
                {"type": "string", "name": "category", "in": "query"}
            ], "responses": {"200": {"description": "OK"}, "422": {"description": "Unprocessable Entity"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["posts"], "summary": "Create a post", "responses": {"201": {"description": "Created"}, "422": {"description": "Unprocessable Entity"}}}
        },
        "/posts/{id}": {
            "get": {"tags": ["posts"], "summary": "Get a post with its comments, likes and shares", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["posts"], "summary": "Update a post", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}, "422": {"description": "Unprocessable Entity"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["posts"], "summary": "Delete a post and its engagement", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}}
        },
        "/posts/{id}/comments": {"get": {"tags": ["comments"], "summary": "List a post's comments", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/likes": {"post": {"security": [{"BearerAuth": []}], "tags": ["likes"], "summary": "Like or unlike a post", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/comments": {"post": {"security": [{"BearerAuth": []}], "tags": ["comments"], "summary": "Comment on a post", "responses": {"201": {"description": "Created"}, "404": {"description": "Not Found"}, "422": {"description": "Unprocessable Entity"}}}},
        "/comments/{id}": {"delete": {"security": [{"BearerAuth": []}], "tags": ["comments"], "summary": "Delete one of your comments", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}}},
        "/shares": {"post": {"security": [{"BearerAuth": []}], "tags": ["shares"], "summary": "Record a share of a post", "responses": {"201": {"description": "Created"}, "404": {"description": "Not Found"}}}},
        "/uploads/images": {
            "post": {"security": [{"BearerAuth": []}], "consumes": ["multipart/form-data"], "tags": ["uploads"], "summary": "Upload a post image", "parameters": [{"type": "file", "name": "file", "in": "formData", "required": true}], "responses": {"200": {"description": "OK"}, "422": {"description": "Unprocessable Entity"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["uploads"], "summary": "Delete an uploaded post image", "responses": {"200": {"description": "OK"}, "422": {"description": "Unprocessable Entity"}}}
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
	Host:             "localhost:8375",
	BasePath:         "/api",
	Schemes:          []string{"http", "https"},
	Title:            "Potluck API",
	Description:      "Community feed API with posts, comments, likes and shares",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
