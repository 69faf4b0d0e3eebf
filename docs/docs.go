// Package docs registers the OpenAPI description served under /swagger.
//
// Regenerate with: swag init -g cmd/fleet-console/main.go
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
        "/session": {
            "get": {
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Session snapshot",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.snapshotResponse"}}}
            }
        },
        "/session/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Login",
                "parameters": [{"description": "Credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.sessionLoginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.snapshotResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/session/logout": {
            "post": {
                "tags": ["session"],
                "summary": "Logout",
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/session/idle": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Resolve idle prompt",
                "parameters": [{"description": "Choice", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.idleRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.snapshotResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/session/activity": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Report activity",
                "parameters": [{"description": "Activity", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.activityRequest"}}],
                "responses": {"202": {"description": "Accepted", "schema": {"$ref": "#/definitions/handler.activityResponse"}}}
            }
        },
        "/navigation": {
            "get": {
                "produces": ["application/json"],
                "tags": ["views"],
                "summary": "Navigation",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.navEntry"}}}}
            }
        }
    },
    "definitions": {
        "handler.errorResponse": {"type": "object", "properties": {"error": {"type": "string"}}},
        "handler.sessionLoginRequest": {"type": "object", "required": ["correo", "password"], "properties": {"correo": {"type": "string"}, "password": {"type": "string"}}},
        "handler.idleRequest": {"type": "object", "required": ["choice"], "properties": {"choice": {"type": "string", "enum": ["continue", "end"]}}},
        "handler.activityRequest": {"type": "object", "required": ["type"], "properties": {"type": {"type": "string", "enum": ["pointermove", "keydown", "click", "scroll"]}}},
        "handler.activityResponse": {"type": "object", "properties": {"accepted": {"type": "integer"}}},
        "handler.navEntry": {"type": "object", "properties": {"path": {"type": "string"}, "title": {"type": "string"}}},
        "handler.snapshotResponse": {
            "type": "object",
            "properties": {
                "state": {"type": "string", "enum": ["initializing", "anonymous", "active", "pending_confirmation"]},
                "loading": {"type": "boolean"},
                "awaiting_confirmation": {"type": "boolean"},
                "idle_deadline": {"type": "string", "format": "date-time"},
                "user": {"$ref": "#/definitions/domain.User"}
            }
        },
        "domain.User": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "nombre": {"type": "string"},
                "correo": {"type": "string"},
                "rol": {"type": "string", "enum": ["Administrador", "Recepcionista", "Mecanico", "Cliente"]}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Fleet Console API",
	Description:      "Session shell of the fleet workshop console.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
