// Package docs registers the OpenAPI document served under /swagger/.
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
        "/auth/me": {
            "get": {
                "description": "Returns the identity behind a bearer access token",
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current session",
                "parameters": [
                    {"type": "string", "description": "Bearer access token", "name": "Authorization", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.MeResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/auth/nonce": {
            "post": {
                "description": "Issues a single-use 32-byte nonce for the address to sign",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Request login nonce",
                "parameters": [
                    {"description": "Wallet address", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.NonceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.NonceResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/auth/wallet/login": {
            "post": {
                "description": "Verifies the signature over SHA-256 of the pending nonce and returns a session",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login with signature",
                "parameters": [
                    {"description": "Address and nonce signature", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Session"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/auth/wallet/register": {
            "post": {
                "description": "Registers a wallet public key and its derived address",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register wallet",
                "parameters": [
                    {"description": "Wallet identity", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.RegisterRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.RegisterResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "model.ErrorResponse": {
            "type": "object",
            "properties": {"code": {"type": "string"}, "error": {"type": "string"}}
        },
        "model.LoginRequest": {
            "type": "object",
            "properties": {"address": {"type": "string"}, "signature": {"type": "string"}}
        },
        "model.MeResponse": {
            "type": "object",
            "properties": {"address": {"type": "string"}, "expires_at": {"type": "string"}, "role": {"type": "string"}, "user_id": {"type": "string"}}
        },
        "model.NonceRequest": {
            "type": "object",
            "properties": {"address": {"type": "string"}}
        },
        "model.NonceResponse": {
            "type": "object",
            "properties": {"nonce": {"type": "string"}}
        },
        "model.RegisterRequest": {
            "type": "object",
            "properties": {"address": {"type": "string"}, "public_key": {"type": "string"}, "role": {"type": "string"}}
        },
        "model.RegisterResponse": {
            "type": "object",
            "properties": {"address": {"type": "string"}, "public_key": {"type": "string"}, "role": {"type": "string"}, "user_id": {"type": "string"}}
        },
        "model.Session": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "address": {"type": "string"},
                "expires_at": {"type": "string"},
                "public_key": {"type": "string"},
                "role": {"type": "string"},
                "token_type": {"type": "string"},
                "user_id": {"type": "string"}
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
	Title:            "wallet-auth API",
	Description:      "Wallet registration and nonce signature login.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
