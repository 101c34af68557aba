// Package docs registers the OpenAPI description served at /swagger/.
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
        "/api/score": {
            "get": {
                "description": "Returns the stored counters of the player identified by the quiz_player cookie or the player query parameter.",
                "produces": ["application/json"],
                "tags": ["Score"],
                "summary": "Get the player's score",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Player id, defaults to the cookie",
                        "name": "player",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/api.ScoreResponse"}
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {"type": "object", "additionalProperties": {"type": "string"}}
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {"type": "object", "additionalProperties": {"type": "string"}}
                    }
                }
            },
            "delete": {
                "description": "Clears both counters. Resetting an empty score is a no-op.",
                "tags": ["Score"],
                "summary": "Reset the player's score",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Player id, defaults to the cookie",
                        "name": "player",
                        "in": "query"
                    }
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {
                        "description": "Bad Request",
                        "schema": {"type": "object", "additionalProperties": {"type": "string"}}
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {"type": "object", "additionalProperties": {"type": "string"}}
                    }
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["System"],
                "summary": "Health check",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "object", "additionalProperties": {"type": "string"}}
                    }
                }
            }
        }
    },
    "definitions": {
        "api.ScoreResponse": {
            "type": "object",
            "properties": {
                "answered": {"type": "integer", "example": 20},
                "correct": {"type": "integer", "example": 12},
                "incorrect": {"type": "integer", "example": 8},
                "player_id": {"type": "string", "example": "a1b2c3d4e5f6g7h8"},
                "success_rate": {"type": "number", "example": 60},
                "tier": {"type": "string", "example": "Yürü be babuş!"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Terörist Quiz API",
	Description:      "Score API of the image trivia quiz.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
