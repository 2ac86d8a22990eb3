package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Coaching Fees API",
        "description": "Fee status derivation, payments and attendance sessions for the coaching institute app",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Fees", "description": "Derived billing period statuses and payment actions"},
        {"name": "Attendance", "description": "Timed class attendance sessions"},
        {"name": "History", "description": "Payment and session history, exports"},
        {"name": "Ops", "description": "Operational endpoints"}
    ],
    "paths": {
        "/courses": {
            "get": {
                "tags": ["Fees"],
                "summary": "List active course offerings with their fee schedules",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{courseId}/fees/status": {
            "get": {
                "tags": ["Fees"],
                "summary": "Derive the per-period fee status map for a course",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "courseId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown course or enrollment"}
                }
            }
        },
        "/courses/{courseId}/fees/action": {
            "get": {
                "tags": ["Fees"],
                "summary": "Derive the single payment action for a course",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "courseId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{courseId}/payments": {
            "post": {
                "tags": ["Fees"],
                "summary": "Record a payment attempt for a billing period",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "courseId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitPaymentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "A pending attempt already exists for the period"}
                }
            }
        },
        "/classes/{classId}/sessions/current": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Resolve the live and recently closed sessions for a class",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "classId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Start a timed attendance session for a class",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StartSessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "A session is already running for the class"}
                }
            }
        },
        "/sessions/{sessionId}/present": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Mark the calling student present in a session",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "sessionId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "410": {"description": "The attendance window has closed"}
                }
            }
        },
        "/sessions/sweep": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Close every session past its deadline",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/history/payments": {
            "get": {
                "tags": ["History"],
                "summary": "List verified payments grouped by billing period",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/history/sessions": {
            "get": {
                "tags": ["History"],
                "summary": "List class sessions for the caller's courses",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/history/export": {
            "post": {
                "tags": ["History"],
                "summary": "Queue a history export",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/history/export/{jobId}": {
            "get": {
                "tags": ["History"],
                "summary": "Check the status of an export job",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "jobId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/download/{token}": {
            "get": {
                "tags": ["History"],
                "summary": "Download a rendered export via signed token",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File stream"},
                    "401": {"description": "Invalid or expired download link"}
                }
            }
        },
        "/metrics/summary": {
            "get": {
                "tags": ["Ops"],
                "summary": "Aggregated runtime metrics",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "SubmitPaymentRequest": {
            "type": "object",
            "required": ["period", "year", "amount", "transaction_id"],
            "properties": {
                "period": {"type": "string", "example": "April"},
                "year": {"type": "integer", "example": 2026},
                "amount": {"type": "integer", "example": 2000},
                "transaction_id": {"type": "string"}
            }
        },
        "StartSessionRequest": {
            "type": "object",
            "required": ["class_id", "course_id", "topic", "timer_minutes"],
            "properties": {
                "class_id": {"type": "string"},
                "course_id": {"type": "string"},
                "topic": {"type": "string"},
                "timer_minutes": {"type": "integer", "example": 30}
            }
        },
        "ExportRequest": {
            "type": "object",
            "required": ["type", "format"],
            "properties": {
                "type": {"type": "string", "enum": ["payments", "sessions"]},
                "format": {"type": "string", "enum": ["csv", "pdf"]}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
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
