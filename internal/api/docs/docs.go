// Package docs registers the OpenAPI document served at /swagger/*.
package docs

import "github.com/swaggo/swag"

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
        "/api/register": {
            "post": {
                "tags": ["account"],
                "summary": "Register a new account",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/credentials"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/authResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/api/login": {
            "post": {
                "tags": ["account"],
                "summary": "Login",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/credentials"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/authResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/api/me": {
            "get": {
                "tags": ["account"],
                "summary": "Current account",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/authResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/api/roles": {
            "post": {
                "tags": ["roles"],
                "summary": "Create a role",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/roleRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/role"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/api/roles/{name}": {
            "get": {
                "tags": ["roles"],
                "summary": "Get a role by name",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "name", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/role"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/api/roles/{name}/users": {
            "get": {
                "tags": ["roles"],
                "summary": "List users holding a role",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "name", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/roles/{name}/members": {
            "post": {
                "tags": ["roles"],
                "summary": "Queue bulk membership changes",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "name", "type": "string", "required": true}],
                "responses": {"202": {"description": "Accepted"}}
            }
        },
        "/api/users/{id}/roles/{name}": {
            "put": {
                "tags": ["roles"],
                "summary": "Add a user to a role",
                "security": [{"BearerAuth": []}],
                "responses": {"204": {"description": "No Content"}}
            },
            "delete": {
                "tags": ["roles"],
                "summary": "Remove a user from a role",
                "security": [{"BearerAuth": []}],
                "responses": {"204": {"description": "No Content"}}
            }
        }
    },
    "definitions": {
        "credentials": {
            "type": "object",
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "roleRequest": {
            "type": "object",
            "properties": {"name": {"type": "string"}}
        },
        "role": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "normalized_role_name": {"type": "string"}
            }
        },
        "user": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "user_name": {"type": "string"},
                "normalized_user_name": {"type": "string"},
                "email": {"type": "string"},
                "email_confirmed": {"type": "boolean"},
                "roles": {"type": "array", "items": {"type": "string"}}
            }
        },
        "authResponse": {
            "type": "object",
            "properties": {"token": {"type": "string"}, "user": {"$ref": "#/definitions/user"}}
        },
        "errorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Identity Store API",
	Description:      "User and role persistence with account registration, login and role administration.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
