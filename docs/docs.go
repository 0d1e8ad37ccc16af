// Package docs registers the OpenAPI document served under /swagger.
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
        "/healthz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness and database check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/models.Envelope"}}
                }
            }
        },
        "/tasks": {
            "get": {
                "produces": ["application/json"],
                "tags": ["tasks"],
                "summary": "List all tasks",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/models.Envelope"}}
                }
            }
        },
        "/tasks/createTask": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tasks"],
                "summary": "Create a task",
                "parameters": [
                    {"description": "Task fields (partial)", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.Task"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/models.Envelope"}}
                }
            }
        },
        "/tasks/report.pdf": {
            "get": {
                "produces": ["application/pdf"],
                "tags": ["tasks"],
                "summary": "Task report",
                "parameters": [
                    {"type": "string", "description": "all | completed | pending", "name": "filter", "in": "query"},
                    {"type": "string", "description": "case-insensitive text match", "name": "search", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.Envelope"}}
                }
            }
        },
        "/tasks/{id}": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tasks"],
                "summary": "Update a task",
                "parameters": [
                    {"type": "string", "description": "Task ID", "name": "id", "in": "path", "required": true},
                    {"description": "Task fields (partial)", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.Task"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/models.Envelope"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["tasks"],
                "summary": "Delete a task",
                "parameters": [
                    {"type": "string", "description": "Task ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/models.Envelope"}}
                }
            }
        },
        "/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register",
                "parameters": [
                    {"description": "Account", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.RegisterRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/models.Envelope"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Sign in",
                "parameters": [
                    {"description": "Credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.Envelope"}}
                }
            }
        },
        "/auth/password/forgot": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Request a password reset",
                "parameters": [
                    {"description": "Email", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.ForgotPasswordRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.Envelope"}}
                }
            }
        },
        "/auth/password/reset": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Set a new password with a reset code",
                "parameters": [
                    {"description": "Code and new password", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.ResetPasswordRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.Envelope"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.Envelope"}}
                }
            }
        },
        "/auth/me/telegram": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Link a Telegram chat",
                "parameters": [
                    {"description": "Chat", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.TelegramLinkRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.Envelope"}}
                }
            }
        },
        "/auth/google/login": {
            "get": {
                "tags": ["auth"],
                "summary": "Start Google sign-in",
                "responses": {
                    "307": {"description": "Temporary Redirect"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.Envelope"}}
                }
            }
        },
        "/auth/google/callback": {
            "get": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Google sign-in callback",
                "parameters": [
                    {"type": "string", "description": "OAuth state", "name": "state", "in": "query", "required": true},
                    {"type": "string", "description": "Authorization code", "name": "code", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.Envelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.Envelope"}}
                }
            }
        }
    },
    "definitions": {
        "models.Envelope": {
            "type": "object",
            "properties": {
                "result": {"type": "string", "example": "success"},
                "data": {},
                "message": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "models.Reminder": {
            "type": "object",
            "properties": {
                "enabled": {"type": "boolean"},
                "time": {"type": "string", "example": "2030-01-01T09:00:00Z"}
            }
        },
        "models.Task": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "format": "uuid"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "completed": {"type": "boolean"},
                "dueDate": {"type": "string", "example": "2030-01-02"},
                "priority": {"type": "string", "enum": ["Low", "Medium", "High"]},
                "reminder": {"$ref": "#/definitions/models.Reminder"},
                "ownerId": {"type": "string"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "models.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "models.RegisterRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 6},
                "displayName": {"type": "string"}
            }
        },
        "models.ForgotPasswordRequest": {
            "type": "object",
            "required": ["email"],
            "properties": {
                "email": {"type": "string"}
            }
        },
        "models.ResetPasswordRequest": {
            "type": "object",
            "required": ["token", "password"],
            "properties": {
                "token": {"type": "string"},
                "password": {"type": "string", "minLength": 6}
            }
        },
        "models.TelegramLinkRequest": {
            "type": "object",
            "required": ["chatId"],
            "properties": {
                "chatId": {"type": "integer"},
                "notify": {"type": "boolean"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Taskverse API",
	Description:      "Task tracking API with reminders, ownership and PDF reports.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
