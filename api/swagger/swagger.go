package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "CourseHub Web Gateway",
        "description": "Browser-facing gateway for the CourseHub marketplace: sessions, guarded pages and catalog search",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {
            "name": "Pages",
            "description": "View models of the site pages"
        },
        {
            "name": "Session",
            "description": "Browser sign-in state"
        },
        {
            "name": "Actions",
            "description": "Signed-in actions"
        },
        {
            "name": "Instructor",
            "description": "Instructor course management"
        },
        {
            "name": "Admin",
            "description": "Category management"
        },
        {
            "name": "Ops",
            "description": "Probes and metrics"
        }
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": [
                    "Ops"
                ],
                "summary": "Liveness probe",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/ready": {
            "get": {
                "tags": [
                    "Ops"
                ],
                "summary": "Readiness probe",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Ready",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "503": {
                        "description": "Dependency unavailable",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                }
            }
        },
        "/metrics": {
            "get": {
                "tags": [
                    "Ops"
                ],
                "summary": "Prometheus metrics",
                "produces": [
                    "text/plain"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/": {
            "get": {
                "tags": [
                    "Pages"
                ],
                "summary": "Landing page",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Featured courses and parent categories",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                }
            }
        },
        "/courses": {
            "get": {
                "tags": [
                    "Pages"
                ],
                "summary": "Course catalog",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Search results",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "302": {
                        "description": "Redirect to canonical query"
                    },
                    "400": {
                        "description": "Malformed query",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "query",
                        "name": "keyword",
                        "type": "string",
                        "description": "Keyword (alias: search)"
                    },
                    {
                        "in": "query",
                        "name": "categoryId",
                        "type": "string",
                        "description": "Category (alias: category)"
                    },
                    {
                        "in": "query",
                        "name": "level",
                        "type": "string",
                        "description": "BEGINNER, INTERMEDIATE or ADVANCED"
                    },
                    {
                        "in": "query",
                        "name": "minPrice",
                        "type": "number",
                        "description": "Minimum price"
                    },
                    {
                        "in": "query",
                        "name": "maxPrice",
                        "type": "number",
                        "description": "Maximum price"
                    },
                    {
                        "in": "query",
                        "name": "minRating",
                        "type": "number",
                        "description": "Minimum rating"
                    },
                    {
                        "in": "query",
                        "name": "language",
                        "type": "string",
                        "description": "Language"
                    },
                    {
                        "in": "query",
                        "name": "hasCertificate",
                        "type": "boolean",
                        "description": "Only courses with certificate"
                    },
                    {
                        "in": "query",
                        "name": "hasLifetimeAccess",
                        "type": "boolean",
                        "description": "Only courses with lifetime access"
                    },
                    {
                        "in": "query",
                        "name": "sortBy",
                        "type": "string",
                        "description": "title, price, averageRating or createdAt"
                    },
                    {
                        "in": "query",
                        "name": "sortDirection",
                        "type": "string",
                        "description": "asc or desc"
                    },
                    {
                        "in": "query",
                        "name": "page",
                        "type": "integer",
                        "description": "Page"
                    },
                    {
                        "in": "query",
                        "name": "size",
                        "type": "integer",
                        "description": "Page size"
                    }
                ]
            }
        },
        "/courses/{id}": {
            "get": {
                "tags": [
                    "Pages"
                ],
                "summary": "Course details",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Course",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "required": true,
                        "type": "string"
                    }
                ]
            }
        },
        "/courses/{id}/enroll": {
            "post": {
                "tags": [
                    "Actions"
                ],
                "summary": "Enroll in a course",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Enrolled",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "401": {
                        "description": "Sign in required",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "required": true,
                        "type": "string"
                    }
                ]
            }
        },
        "/categories/{id}": {
            "get": {
                "tags": [
                    "Pages"
                ],
                "summary": "Category page",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Category, subcategories and courses",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "required": true,
                        "type": "string"
                    }
                ]
            }
        },
        "/login": {
            "get": {
                "tags": [
                    "Pages"
                ],
                "summary": "Login page",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Form",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "302": {
                        "description": "Already signed in"
                    }
                },
                "parameters": [
                    {
                        "in": "query",
                        "name": "redirect",
                        "type": "string",
                        "description": "Local path to continue to"
                    }
                ]
            }
        },
        "/register": {
            "get": {
                "tags": [
                    "Pages"
                ],
                "summary": "Registration page",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Form",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "302": {
                        "description": "Already signed in"
                    }
                },
                "parameters": [
                    {
                        "in": "query",
                        "name": "redirect",
                        "type": "string",
                        "description": "Local path to continue to"
                    }
                ]
            }
        },
        "/unauthorized": {
            "get": {
                "tags": [
                    "Pages"
                ],
                "summary": "Role mismatch page",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Explanation",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                }
            }
        },
        "/dashboard": {
            "get": {
                "tags": [
                    "Pages"
                ],
                "summary": "Student dashboard",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Enrolled courses",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "202": {
                        "description": "Session loading",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "302": {
                        "description": "Sign in required"
                    },
                    "401": {
                        "description": "Sign in required",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                }
            }
        },
        "/profile": {
            "get": {
                "tags": [
                    "Pages"
                ],
                "summary": "Profile page",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Profile",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "401": {
                        "description": "Sign in required",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                }
            }
        },
        "/settings": {
            "get": {
                "tags": [
                    "Pages"
                ],
                "summary": "Settings page",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Settings",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "401": {
                        "description": "Sign in required",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                }
            }
        },
        "/instructor": {
            "get": {
                "tags": [
                    "Pages"
                ],
                "summary": "Instructor dashboard",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Own courses and stats",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "403": {
                        "description": "Instructor role required",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                }
            }
        },
        "/instructor/courses": {
            "post": {
                "tags": [
                    "Instructor"
                ],
                "summary": "Create course",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "400": {
                        "description": "Validation failed",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "403": {
                        "description": "Instructor role required",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "body",
                        "name": "payload",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CourseRequest"
                        }
                    }
                ]
            }
        },
        "/instructor/courses/{id}": {
            "put": {
                "tags": [
                    "Instructor"
                ],
                "summary": "Update course",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Updated",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "400": {
                        "description": "Validation failed",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "in": "body",
                        "name": "payload",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CourseRequest"
                        }
                    }
                ]
            },
            "delete": {
                "tags": [
                    "Instructor"
                ],
                "summary": "Delete course",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "204": {
                        "description": "Deleted",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "required": true,
                        "type": "string"
                    }
                ]
            }
        },
        "/admin": {
            "get": {
                "tags": [
                    "Pages"
                ],
                "summary": "Admin dashboard",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Catalog overview",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "403": {
                        "description": "Admin role required",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                }
            }
        },
        "/admin/categories": {
            "post": {
                "tags": [
                    "Admin"
                ],
                "summary": "Create category",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "400": {
                        "description": "Validation failed",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "403": {
                        "description": "Admin role required",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "body",
                        "name": "payload",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CategoryRequest"
                        }
                    }
                ]
            }
        },
        "/admin/categories/{id}": {
            "put": {
                "tags": [
                    "Admin"
                ],
                "summary": "Update category",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Updated",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "400": {
                        "description": "Validation failed",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "in": "body",
                        "name": "payload",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CategoryRequest"
                        }
                    }
                ]
            },
            "delete": {
                "tags": [
                    "Admin"
                ],
                "summary": "Delete category",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "204": {
                        "description": "Deleted",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "required": true,
                        "type": "string"
                    }
                ]
            }
        },
        "/session": {
            "get": {
                "tags": [
                    "Session"
                ],
                "summary": "Current session",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Session state",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                }
            }
        },
        "/session/login": {
            "post": {
                "tags": [
                    "Session"
                ],
                "summary": "Sign in",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Signed in",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "400": {
                        "description": "Validation failed",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "401": {
                        "description": "Invalid credentials",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "query",
                        "name": "redirect",
                        "type": "string",
                        "description": "Local path to continue to"
                    },
                    {
                        "in": "body",
                        "name": "payload",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/LoginRequest"
                        }
                    }
                ]
            }
        },
        "/session/register": {
            "post": {
                "tags": [
                    "Session"
                ],
                "summary": "Sign up",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "Registered",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "400": {
                        "description": "Validation failed",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "in": "query",
                        "name": "redirect",
                        "type": "string",
                        "description": "Local path to continue to"
                    },
                    {
                        "in": "body",
                        "name": "payload",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/RegisterRequest"
                        }
                    }
                ]
            }
        },
        "/session/logout": {
            "post": {
                "tags": [
                    "Session"
                ],
                "summary": "Sign out",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Signed out",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "description": "Clears the browser session without contacting the marketplace"
            }
        }
    },
    "definitions": {
        "Error": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                },
                "kind": {
                    "type": "string",
                    "enum": [
                        "AUTHENTICATION",
                        "VALIDATION",
                        "AUTHORIZATION",
                        "NETWORK",
                        "NOT_FOUND",
                        "INTERNAL"
                    ]
                },
                "fields": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "string"
                    }
                }
            }
        },
        "Envelope": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "message": {
                    "type": "string"
                },
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/Error"
                },
                "meta": {
                    "type": "object"
                }
            }
        },
        "LoginRequest": {
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
        "RegisterRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "password": {
                    "type": "string"
                },
                "role": {
                    "type": "string",
                    "enum": [
                        "STUDENT",
                        "INSTRUCTOR",
                        "USER"
                    ]
                }
            },
            "required": [
                "name",
                "email",
                "password"
            ]
        },
        "CategoryRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "parentCategoryId": {
                    "type": "string"
                }
            },
            "required": [
                "name"
            ]
        },
        "CourseRequest": {
            "type": "object",
            "properties": {
                "title": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "shortDescription": {
                    "type": "string"
                },
                "price": {
                    "type": "number"
                },
                "categoryId": {
                    "type": "string"
                },
                "level": {
                    "type": "string",
                    "enum": [
                        "BEGINNER",
                        "INTERMEDIATE",
                        "ADVANCED"
                    ]
                },
                "language": {
                    "type": "string"
                },
                "duration": {
                    "type": "integer"
                },
                "requirements": {
                    "type": "string"
                },
                "whatYouWillLearn": {
                    "type": "string"
                },
                "targetAudience": {
                    "type": "string"
                },
                "isPublished": {
                    "type": "boolean"
                },
                "isFeatured": {
                    "type": "boolean"
                },
                "hasCertificate": {
                    "type": "boolean"
                },
                "hasLifetimeAccess": {
                    "type": "boolean"
                },
                "tags": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "thumbnailUrl": {
                    "type": "string"
                },
                "previewVideoUrl": {
                    "type": "string"
                }
            },
            "required": [
                "title",
                "description",
                "shortDescription",
                "categoryId",
                "level",
                "language"
            ]
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
