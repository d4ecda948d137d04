// Package docs holds the OpenAPI description served at /swagger.
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
		"/auth/register": {
			"post": {
				"tags": [
					"auth"
				],
				"summary": "Register a new user",
				"produces": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.UserResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.RegisterRequest"
						}
					}
				]
			}
		},
		"/auth/login": {
			"post": {
				"tags": [
					"auth"
				],
				"summary": "Log in",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.TokenResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.LoginRequest"
						}
					}
				]
			}
		},
		"/auth/refresh": {
			"post": {
				"tags": [
					"auth"
				],
				"summary": "Refresh tokens",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.TokenResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.RefreshTokenRequest"
						}
					}
				]
			}
		},
		"/auth/me": {
			"get": {
				"tags": [
					"auth"
				],
				"summary": "Current user",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.UserResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/auth/logout": {
			"post": {
				"tags": [
					"auth"
				],
				"summary": "Log out",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.MessageResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/admin/only": {
			"get": {
				"tags": [
					"admin"
				],
				"summary": "Admin probe",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.AdminGreetingResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/admin/import": {
			"post": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"description": "Upload a CSV or XLSX catalog with program, course_code, course_name and optional credits, description and prerequisites columns. Row problems are reported, not fatal.",
				"consumes": [
					"multipart/form-data"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"admin"
				],
				"summary": "Import catalog",
				"parameters": [
					{
						"type": "file",
						"description": "Catalog file (.csv, .xlsx)",
						"name": "file",
						"in": "formData",
						"required": true
					},
					{
						"type": "string",
						"description": "Worksheet of an XLSX file",
						"name": "sheet",
						"in": "formData"
					},
					{
						"type": "boolean",
						"description": "Validate only",
						"name": "dryRun",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.ImportResponse"
						}
					},
					"400": {
						"description": "Missing or unreadable file",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				}
			}
		},
		"/graph/{program_id}": {
			"get": {
				"tags": [
					"graph"
				],
				"summary": "Program prerequisite graph",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.GraphResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"name": "program_id",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/health": {
			"get": {
				"tags": [
					"health"
				],
				"summary": "Health check",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.HealthResponse"
						}
					}
				}
			}
		},
		"/programs": {
			"get": {
				"tags": [
					"programs"
				],
				"summary": "List programs",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/dto.ProgramResponse"
							}
						}
					}
				}
			},
			"post": {
				"tags": [
					"programs"
				],
				"summary": "Create program",
				"produces": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.ProgramResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.CreateProgramRequest"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/programs/{id}": {
			"get": {
				"tags": [
					"programs"
				],
				"summary": "Get program",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.ProgramResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			},
			"delete": {
				"tags": [
					"programs"
				],
				"summary": "Delete program",
				"produces": [
					"application/json"
				],
				"responses": {
					"204": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/programs/{id}/courses": {
			"get": {
				"tags": [
					"courses"
				],
				"summary": "List program courses",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.CourseListResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "integer",
						"name": "page",
						"in": "query",
						"required": false
					},
					{
						"type": "integer",
						"name": "size",
						"in": "query",
						"required": false
					}
				]
			},
			"post": {
				"tags": [
					"courses"
				],
				"summary": "Create course",
				"produces": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.CourseResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.CourseRequest"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/programs/{id}/eligible": {
			"get": {
				"tags": [
					"progress"
				],
				"summary": "Eligible courses",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/dto.CourseResponse"
							}
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/courses/{id}": {
			"get": {
				"tags": [
					"courses"
				],
				"summary": "Get course",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.CourseResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			},
			"put": {
				"tags": [
					"courses"
				],
				"summary": "Update course",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.CourseResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.CourseRequest"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"delete": {
				"tags": [
					"courses"
				],
				"summary": "Delete course",
				"produces": [
					"application/json"
				],
				"responses": {
					"204": {
						"description": "OK"
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/courses/{id}/prerequisites": {
			"get": {
				"tags": [
					"prerequisites"
				],
				"summary": "Course prerequisites",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.RequirementResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			},
			"post": {
				"tags": [
					"prerequisites"
				],
				"summary": "Add prerequisite",
				"produces": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.CreatedResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.AddPrerequisiteRequest"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/courses/{id}/prerequisites/{prereqId}": {
			"delete": {
				"tags": [
					"prerequisites"
				],
				"summary": "Remove prerequisite",
				"produces": [
					"application/json"
				],
				"responses": {
					"204": {
						"description": "OK"
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "integer",
						"name": "prereqId",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/courses/{id}/prerequisite-groups": {
			"post": {
				"tags": [
					"prerequisites"
				],
				"summary": "Create prerequisite group",
				"produces": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.GroupResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.CreateGroupRequest"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/prerequisite-groups/{groupId}": {
			"delete": {
				"tags": [
					"prerequisites"
				],
				"summary": "Delete prerequisite group",
				"produces": [
					"application/json"
				],
				"responses": {
					"204": {
						"description": "OK"
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"name": "groupId",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/progress": {
			"get": {
				"tags": [
					"progress"
				],
				"summary": "My progress",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/dto.ProgressResponse"
							}
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/progress/{courseId}": {
			"put": {
				"tags": [
					"progress"
				],
				"summary": "Set course status",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.ProgressResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"name": "courseId",
						"in": "path",
						"required": true
					},
					{
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.SetProgressRequest"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"delete": {
				"tags": [
					"progress"
				],
				"summary": "Clear course status",
				"produces": [
					"application/json"
				],
				"responses": {
					"204": {
						"description": "OK"
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"name": "courseId",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/users/{id}/progress": {
			"get": {
				"tags": [
					"progress"
				],
				"summary": "User progress",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/dto.ProgressResponse"
							}
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/dto.ErrorResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		}
	},
	"definitions": {
		"dto.RegisterRequest": {
			"type": "object",
			"properties": {
				"email": {
					"type": "string",
					"example": "student@university.edu"
				},
				"password": {
					"type": "string"
				},
				"role": {
					"type": "string",
					"enum": [
						"admin",
						"advisor",
						"student"
					]
				}
			},
			"required": [
				"email",
				"password",
				"role"
			]
		},
		"dto.LoginRequest": {
			"type": "object",
			"properties": {
				"email": {
					"type": "string"
				},
				"password": {
					"type": "string"
				}
			},
			"required": [
				"email",
				"password"
			]
		},
		"dto.RefreshTokenRequest": {
			"type": "object",
			"properties": {
				"refresh_token": {
					"type": "string"
				}
			},
			"required": [
				"refresh_token"
			]
		},
		"dto.TokenResponse": {
			"type": "object",
			"properties": {
				"access_token": {
					"type": "string"
				},
				"refresh_token": {
					"type": "string"
				},
				"token_type": {
					"type": "string",
					"example": "bearer"
				},
				"expires_in": {
					"type": "integer"
				}
			}
		},
		"dto.UserResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "integer"
				},
				"email": {
					"type": "string"
				},
				"role": {
					"type": "string",
					"example": "student"
				}
			}
		},
		"dto.MessageResponse": {
			"type": "object",
			"properties": {
				"message": {
					"type": "string",
					"example": "Logged out"
				}
			}
		},
		"dto.AdminGreetingResponse": {
			"type": "object",
			"properties": {
				"msg": {
					"type": "string"
				}
			}
		},
		"dto.ImportRowError": {
			"type": "object",
			"properties": {
				"row": {
					"type": "integer",
					"example": 7
				},
				"message": {
					"type": "string"
				}
			}
		},
		"dto.ImportResponse": {
			"type": "object",
			"properties": {
				"file": {
					"type": "string"
				},
				"originalName": {
					"type": "string",
					"example": "catalog.csv"
				},
				"dryRun": {
					"type": "boolean"
				},
				"rows": {
					"type": "integer"
				},
				"programsCreated": {
					"type": "integer"
				},
				"coursesCreated": {
					"type": "integer"
				},
				"groups": {
					"type": "integer"
				},
				"members": {
					"type": "integer"
				},
				"skipped": {
					"type": "integer"
				},
				"errors": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/dto.ImportRowError"
					}
				}
			}
		},
		"dto.HealthResponse": {
			"type": "object",
			"properties": {
				"status": {
					"type": "string",
					"example": "ok"
				},
				"database": {
					"type": "string",
					"example": "up"
				}
			}
		},
		"dto.CreateProgramRequest": {
			"type": "object",
			"properties": {
				"name": {
					"type": "string",
					"example": "BS Computer Science"
				}
			},
			"required": [
				"name"
			]
		},
		"dto.ProgramResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "integer"
				},
				"name": {
					"type": "string"
				}
			}
		},
		"dto.CourseRequest": {
			"type": "object",
			"properties": {
				"code": {
					"type": "string",
					"example": "CS101"
				},
				"name": {
					"type": "string"
				},
				"credits": {
					"type": "integer"
				},
				"description": {
					"type": "string"
				}
			},
			"required": [
				"code",
				"name"
			]
		},
		"dto.CourseResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "integer"
				},
				"programId": {
					"type": "integer"
				},
				"code": {
					"type": "string",
					"example": "CS101"
				},
				"name": {
					"type": "string"
				},
				"credits": {
					"type": "integer"
				},
				"description": {
					"type": "string"
				}
			}
		},
		"dto.PaginationInfo": {
			"type": "object",
			"properties": {
				"currentPage": {
					"type": "integer"
				},
				"totalPages": {
					"type": "integer"
				},
				"pageSize": {
					"type": "integer"
				},
				"totalItems": {
					"type": "integer"
				}
			}
		},
		"dto.CourseListResponse": {
			"type": "object",
			"properties": {
				"items": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/dto.CourseResponse"
					}
				},
				"pagination": {
					"$ref": "#/definitions/dto.PaginationInfo"
				}
			}
		},
		"dto.AddPrerequisiteRequest": {
			"type": "object",
			"properties": {
				"prereqCourseId": {
					"type": "integer"
				}
			},
			"required": [
				"prereqCourseId"
			]
		},
		"dto.CreateGroupRequest": {
			"type": "object",
			"properties": {
				"kind": {
					"type": "string",
					"enum": [
						"AND",
						"OR"
					]
				},
				"memberCourseIds": {
					"type": "array",
					"items": {
						"type": "integer"
					}
				}
			},
			"required": [
				"kind",
				"memberCourseIds"
			]
		},
		"dto.CourseRefResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "integer"
				},
				"code": {
					"type": "string"
				},
				"name": {
					"type": "string"
				}
			}
		},
		"dto.GroupResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "integer"
				},
				"kind": {
					"type": "string",
					"example": "OR"
				},
				"members": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/dto.CourseRefResponse"
					}
				}
			}
		},
		"dto.RequirementResponse": {
			"type": "object",
			"properties": {
				"courseId": {
					"type": "integer"
				},
				"simple": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/dto.CourseRefResponse"
					}
				},
				"groups": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/dto.GroupResponse"
					}
				}
			}
		},
		"dto.CreatedResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "integer"
				}
			}
		},
		"dto.GraphNodeData": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string",
					"example": "CS101"
				},
				"label": {
					"type": "string"
				}
			}
		},
		"dto.GraphNode": {
			"type": "object",
			"properties": {
				"data": {
					"$ref": "#/definitions/dto.GraphNodeData"
				}
			}
		},
		"dto.GraphEdgeData": {
			"type": "object",
			"properties": {
				"source": {
					"type": "string",
					"example": "CS101"
				},
				"target": {
					"type": "string",
					"example": "CS102"
				}
			}
		},
		"dto.GraphEdge": {
			"type": "object",
			"properties": {
				"data": {
					"$ref": "#/definitions/dto.GraphEdgeData"
				}
			}
		},
		"dto.GraphResponse": {
			"type": "object",
			"properties": {
				"nodes": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/dto.GraphNode"
					}
				},
				"edges": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/dto.GraphEdge"
					}
				}
			}
		},
		"dto.SetProgressRequest": {
			"type": "object",
			"properties": {
				"status": {
					"type": "string",
					"enum": [
						"planned",
						"in_progress",
						"completed"
					]
				}
			},
			"required": [
				"status"
			]
		},
		"dto.ProgressResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "integer"
				},
				"userId": {
					"type": "integer"
				},
				"courseId": {
					"type": "integer"
				},
				"courseCode": {
					"type": "string"
				},
				"courseName": {
					"type": "string"
				},
				"status": {
					"type": "string",
					"example": "completed"
				},
				"updatedAt": {
					"type": "string"
				}
			}
		},
		"dto.ErrorDetail": {
			"type": "object",
			"properties": {
				"code": {
					"type": "string",
					"example": "AUTH_001"
				},
				"message": {
					"type": "string"
				},
				"field": {
					"type": "string"
				},
				"severity": {
					"type": "string",
					"example": "ERROR"
				},
				"details": {}
			}
		},
		"dto.ErrorResponse": {
			"type": "object",
			"properties": {
				"success": {
					"type": "boolean"
				},
				"error": {
					"$ref": "#/definitions/dto.ErrorDetail"
				},
				"timestamp": {
					"type": "string"
				}
			}
		}
	},
	"securityDefinitions": {
		"BearerAuth": {
			"description": "Type \"Bearer\" followed by a space and the access token.",
			"type": "apiKey",
			"name": "Authorization",
			"in": "header"
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8000",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Curriculum Planner API",
	Description:      "Programs, courses, AND/OR prerequisite graphs and student progress.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
