package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Academic Core API",
        "description": "Semester registration and course offering scheduling backend",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Registrations", "description": "Semester registration window lifecycle"},
        {"name": "MyRegistration", "description": "Student-facing registration flows"},
        {"name": "Sections", "description": "Offered course sections"},
        {"name": "ClassSchedules", "description": "Room and faculty slot assignments"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/semester-registrations": {
            "get": {
                "tags": ["Registrations"],
                "summary": "List semester registrations",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "academicSemesterId", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Registrations"],
                "summary": "Open a registration window",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateRegistrationRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Another window is already upcoming or ongoing"}
                }
            }
        },
        "/semester-registrations/{id}/status": {
            "patch": {
                "tags": ["Registrations"],
                "summary": "Advance the window status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Illegal transition"}
                }
            }
        },
        "/semester-registrations/{id}/start-new-semester": {
            "post": {
                "tags": ["Registrations"],
                "summary": "Roll an ended window into the new semester",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Window not ended or semester already current"}
                }
            }
        },
        "/my-registration/enroll": {
            "post": {
                "tags": ["MyRegistration"],
                "summary": "Enroll into an offered course",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollCourseRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Already enrolled or capacity full"},
                    "412": {"description": "No active window or not registered"}
                }
            }
        },
        "/sections": {
            "post": {
                "tags": ["Sections"],
                "summary": "Create a section with its class schedules",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSectionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Duplicate title or slot conflict"}
                }
            }
        },
        "/class-schedules": {
            "post": {
                "tags": ["ClassSchedules"],
                "summary": "Assign a class schedule slot",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateClassScheduleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Room or faculty conflict"}
                }
            }
        }
    },
    "definitions": {
        "CreateRegistrationRequest": {
            "type": "object",
            "properties": {
                "startDate": {"type": "string", "format": "date-time"},
                "endDate": {"type": "string", "format": "date-time"},
                "minCredit": {"type": "integer"},
                "maxCredit": {"type": "integer"},
                "academicSemesterId": {"type": "string"}
            }
        },
        "UpdateStatusRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["UPCOMING", "ONGOING", "ENDED"]}
            }
        },
        "EnrollCourseRequest": {
            "type": "object",
            "properties": {
                "offeredCourseId": {"type": "string"},
                "offeredCourseSectionId": {"type": "string"}
            }
        },
        "CreateSectionRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "maxCapacity": {"type": "integer"},
                "offeredCourseId": {"type": "string"},
                "classSchedules": {"type": "array", "items": {"$ref": "#/definitions/ScheduleSlot"}}
            }
        },
        "CreateClassScheduleRequest": {
            "type": "object",
            "properties": {
                "dayOfWeek": {"type": "string"},
                "startTime": {"type": "string", "example": "09:00"},
                "endTime": {"type": "string", "example": "10:30"},
                "roomId": {"type": "string"},
                "facultyId": {"type": "string"},
                "offeredCourseSectionId": {"type": "string"},
                "semesterRegistrationId": {"type": "string"}
            }
        },
        "ScheduleSlot": {
            "type": "object",
            "properties": {
                "dayOfWeek": {"type": "string"},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"},
                "roomId": {"type": "string"},
                "facultyId": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
