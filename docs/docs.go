// Package docs holds the OpenAPI description served under /swagger/.
// Regenerate with: swag init -g cmd/api/main.go
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
        "/api/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a new user",
                "parameters": [
                    {"description": "Account details", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.registerRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.authResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login",
                "parameters": [
                    {"description": "Login credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.authResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/work-items": {
            "get": {
                "produces": ["application/json"],
                "tags": ["work-items"],
                "summary": "List work items",
                "parameters": [
                    {"type": "string", "description": "Filter by status (Todo, InProgress, Done)", "name": "status", "in": "query"},
                    {"type": "string", "description": "Filter by priority (Low, Medium, High)", "name": "priority", "in": "query"},
                    {"type": "string", "default": "createdAt", "description": "createdAt, updatedAt, title, status or priority", "name": "sortBy", "in": "query"},
                    {"type": "string", "default": "desc", "description": "asc or desc", "name": "sortDir", "in": "query"},
                    {"type": "integer", "default": 1, "description": "Page number", "name": "page", "in": "query"},
                    {"type": "integer", "default": 10, "description": "Page size (1-100)", "name": "pageSize", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.workItemPageResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["work-items"],
                "summary": "Create a work item",
                "parameters": [
                    {"type": "string", "description": "Replays the original item when the key was seen before", "name": "Idempotency-Key", "in": "header"},
                    {"description": "Work item", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.createWorkItemRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.workItemResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/work-items/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["work-items"],
                "summary": "Get a work item",
                "parameters": [
                    {"type": "string", "description": "Work item id (UUID)", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.workItemResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["work-items"],
                "summary": "Replace a work item",
                "parameters": [
                    {"type": "string", "description": "Work item id (UUID)", "name": "id", "in": "path", "required": true},
                    {"description": "Work item", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.updateWorkItemRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.workItemResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["work-items"],
                "summary": "Delete a work item",
                "parameters": [
                    {"type": "string", "description": "Work item id (UUID)", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}}
            }
        },
        "/health/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.readinessResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.readinessResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handler.errorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "details": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "handler.registerRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string", "example": "alice"},
                "email": {"type": "string", "example": "alice@example.com"},
                "password": {"type": "string", "example": "s3cret!"}
            }
        },
        "handler.loginRequest": {
            "type": "object",
            "properties": {
                "usernameOrEmail": {"type": "string", "example": "alice"},
                "password": {"type": "string", "example": "s3cret!"}
            }
        },
        "handler.authResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "username": {"type": "string"},
                "email": {"type": "string"},
                "expiresAt": {"type": "string"}
            }
        },
        "handler.createWorkItemRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string", "example": "Write release notes"},
                "description": {"type": "string", "example": "Cover the API changes"},
                "priority": {"type": "string", "enum": ["Low", "Medium", "High"]}
            }
        },
        "handler.updateWorkItemRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string", "example": "Write release notes"},
                "description": {"type": "string", "example": "Cover the API changes"},
                "status": {"type": "string", "enum": ["Todo", "InProgress", "Done"]},
                "priority": {"type": "string", "enum": ["Low", "Medium", "High"]}
            }
        },
        "handler.workItemResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "status": {"type": "string", "enum": ["Todo", "InProgress", "Done"]},
                "priority": {"type": "string", "enum": ["Low", "Medium", "High"]},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "handler.workItemPageResponse": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/handler.workItemResponse"}},
                "page": {"type": "integer"},
                "pageSize": {"type": "integer"},
                "totalCount": {"type": "integer"},
                "totalPages": {"type": "integer"},
                "hasNextPage": {"type": "boolean"},
                "hasPreviousPage": {"type": "boolean"}
            }
        },
        "handler.dependencyStatus": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "handler.readinessResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "dependencies": {"type": "object", "additionalProperties": {"$ref": "#/definitions/handler.dependencyStatus"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the session token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Work Items API",
	Description:      "Task tracker backend: accounts, session tokens and work items.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
