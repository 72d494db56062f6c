// Package docs registers the OpenAPI description served under /swagger.
// Regenerate with `swag init -g cmd/main.go` after changing handler
// annotations.
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
        "/api/tournaments": {
            "get": {
                "produces": ["application/json"],
                "tags": ["tournaments"],
                "summary": "List tournaments",
                "parameters": [
                    {"type": "string", "description": "Tournament name substring", "name": "name", "in": "query"},
                    {"type": "string", "description": "Tournament day substring", "name": "day", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tournaments"],
                "summary": "Add a tournament to the catalog",
                "parameters": [
                    {"description": "Tournament", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.Tournament"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"type": "object", "additionalProperties": true}},
                    "409": {"description": "Tournament already exists", "schema": {"$ref": "#/definitions/handlers.errorBody"}},
                    "422": {"description": "Validation failed", "schema": {"$ref": "#/definitions/handlers.errorBody"}}
                }
            }
        },
        "/api/servers/{server}/teams": {
            "get": {
                "produces": ["application/json"],
                "tags": ["teams"],
                "summary": "Teams of a server",
                "parameters": [
                    {"type": "string", "description": "Discord server name", "name": "server", "in": "path", "required": true},
                    {"type": "string", "description": "Tournament name", "name": "tournamentName", "in": "query"},
                    {"type": "string", "description": "Tournament day", "name": "tournamentDay", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}}}
            }
        },
        "/api/servers/{server}/tentative": {
            "get": {
                "produces": ["application/json"],
                "tags": ["tentative"],
                "summary": "Tentative lists of a server",
                "parameters": [
                    {"type": "string", "description": "Discord server name", "name": "server", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}}}
            }
        },
        "/api/servers/{server}/exports": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["exports"],
                "summary": "Export a tournament roster",
                "parameters": [
                    {"type": "string", "description": "Discord server name", "name": "server", "in": "path", "required": true},
                    {"description": "Tournament to export", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.exportRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/services.ExportResult"}},
                    "503": {"description": "Export storage not configured", "schema": {"$ref": "#/definitions/handlers.errorBody"}}
                }
            }
        },
        "/api/teams/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["teams"],
                "summary": "Register a player on a team",
                "parameters": [
                    {"description": "Registration", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.registerRequest"}}
                ],
                "responses": {
                    "200": {"description": "Joined, or blocked with currentTeams", "schema": {"type": "object", "additionalProperties": true}},
                    "201": {"description": "Created a new team", "schema": {"type": "object", "additionalProperties": true}},
                    "422": {"description": "Validation failed or registration closed", "schema": {"$ref": "#/definitions/handlers.errorBody"}}
                }
            }
        },
        "/api/teams/join": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["teams"],
                "summary": "Join a named team",
                "parameters": [
                    {"description": "Join request", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.joinRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "404": {"description": "Team not found", "schema": {"$ref": "#/definitions/handlers.errorBody"}},
                    "409": {"description": "Team full or player already on it", "schema": {"$ref": "#/definitions/handlers.errorBody"}}
                }
            }
        },
        "/api/teams/unregister": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["teams"],
                "summary": "Remove a player from their teams",
                "parameters": [
                    {"description": "Player and tournaments", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.registerRequest"}}
                ],
                "responses": {"200": {"description": "The updated teams", "schema": {"type": "object", "additionalProperties": true}}}
            }
        },
        "/api/v2/teams/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["teams-v2"],
                "summary": "Register a player for a role",
                "parameters": [
                    {"description": "Registration", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.registerV2Request"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "201": {"description": "Created", "schema": {"type": "object", "additionalProperties": true}},
                    "422": {"description": "Validation failed or ineligible", "schema": {"$ref": "#/definitions/handlers.errorBody"}}
                }
            }
        },
        "/api/v2/teams/join": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["teams-v2"],
                "summary": "Join a named team for a role",
                "parameters": [
                    {"description": "Join request", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.joinV2Request"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "404": {"description": "Team not found", "schema": {"$ref": "#/definitions/handlers.errorBody"}},
                    "409": {"description": "Role taken or player already on the team", "schema": {"$ref": "#/definitions/handlers.errorBody"}}
                }
            }
        },
        "/api/v2/teams/unregister": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["teams-v2"],
                "summary": "Remove a player from their role teams",
                "parameters": [
                    {"description": "Player and tournaments", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.registerRequest"}}
                ],
                "responses": {"200": {"description": "The updated teams", "schema": {"type": "object", "additionalProperties": true}}}
            }
        },
        "/api/tentative": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tentative"],
                "summary": "Toggle a player's tentative status",
                "parameters": [
                    {"description": "Toggle request", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.tentativeRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}}}
            }
        },
        "/api/players/{playerID}": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["players"],
                "summary": "Create or update a player profile",
                "parameters": [
                    {"type": "string", "description": "Discord player id", "name": "playerID", "in": "path", "required": true},
                    {"description": "Profile", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.profileRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}}}
            }
        },
        "/ws/servers/{server}": {
            "get": {
                "tags": ["websocket"],
                "summary": "Subscribe to team updates of a server",
                "parameters": [
                    {"type": "string", "description": "Discord server name", "name": "server", "in": "path", "required": true}
                ],
                "responses": {"101": {"description": "Switching Protocols"}}
            }
        }
    },
    "definitions": {
        "handlers.errorBody": {
            "type": "object",
            "properties": {"code": {"type": "string"}, "error": {}}
        },
        "models.TournamentRef": {
            "type": "object",
            "properties": {"tournamentName": {"type": "string"}, "tournamentDay": {"type": "string"}}
        },
        "models.Tournament": {
            "type": "object",
            "properties": {
                "tournamentName": {"type": "string"},
                "tournamentDay": {"type": "string"},
                "startTime": {"type": "string", "format": "date-time"},
                "registrationTime": {"type": "string", "format": "date-time"}
            }
        },
        "handlers.registerRequest": {
            "type": "object",
            "properties": {
                "playerId": {"type": "string"},
                "serverName": {"type": "string"},
                "tournaments": {"type": "array", "items": {"$ref": "#/definitions/models.TournamentRef"}}
            }
        },
        "handlers.joinRequest": {
            "type": "object",
            "properties": {
                "playerId": {"type": "string"},
                "serverName": {"type": "string"},
                "teamName": {"type": "string"},
                "tournaments": {"type": "array", "items": {"$ref": "#/definitions/models.TournamentRef"}}
            }
        },
        "handlers.registerV2Request": {
            "type": "object",
            "properties": {
                "playerId": {"type": "string"},
                "serverName": {"type": "string"},
                "role": {"type": "string", "enum": ["Top", "Jg", "Mid", "Bot", "Supp"]},
                "tournaments": {"type": "array", "items": {"$ref": "#/definitions/models.TournamentRef"}}
            }
        },
        "handlers.joinV2Request": {
            "type": "object",
            "properties": {
                "playerId": {"type": "string"},
                "serverName": {"type": "string"},
                "role": {"type": "string", "enum": ["Top", "Jg", "Mid", "Bot", "Supp"]},
                "teamName": {"type": "string"},
                "tournament": {"$ref": "#/definitions/models.TournamentRef"}
            }
        },
        "handlers.tentativeRequest": {
            "type": "object",
            "properties": {
                "playerId": {"type": "string"},
                "serverName": {"type": "string"},
                "tournament": {"$ref": "#/definitions/models.TournamentRef"}
            }
        },
        "handlers.exportRequest": {
            "type": "object",
            "properties": {"tournament": {"$ref": "#/definitions/models.TournamentRef"}}
        },
        "handlers.profileRequest": {
            "type": "object",
            "properties": {
                "playerName": {"type": "string"},
                "serverName": {"type": "string"},
                "preferredChampions": {"type": "array", "items": {"type": "string"}}
            }
        },
        "services.ExportResult": {
            "type": "object",
            "properties": {
                "exportId": {"type": "string"},
                "key": {"type": "string"},
                "url": {"type": "string"},
                "teams": {"type": "integer"}
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
	Title:            "Clash Teams API",
	Description:      "Team assignment for League of Legends Clash on Discord servers.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
