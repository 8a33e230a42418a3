// Package docs registers the OpenAPI document served at /swagger/*. The
// document mirrors the swag annotations on the handlers in internal/api/handler
// and must list every route the router registers outside /health, /metrics
// and /swagger.
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
        "/auth/login": {
            "post": {
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Login credentials",
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handler.loginRequest"
                        }
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.authResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    }
                },
                "summary": "Login",
                "tags": [
                    "auth"
                ]
            }
        },
        "/auth/register": {
            "post": {
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "User registration details",
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handler.registerRequest"
                        }
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/handler.authResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    }
                },
                "summary": "Register a new user",
                "tags": [
                    "auth"
                ]
            }
        },
        "/delivery/admin/agents": {
            "get": {
                "parameters": [
                    {
                        "description": "Agent status",
                        "in": "query",
                        "name": "status",
                        "required": false,
                        "type": "string"
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "items": {
                                "$ref": "#/definitions/handler.agentResponse"
                            },
                            "type": "array"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "summary": "List agents",
                "tags": [
                    "admin"
                ]
            }
        },
        "/delivery/admin/agents/{id}/status": {
            "post": {
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Agent id",
                        "in": "path",
                        "name": "id",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Status",
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handler.agentStatusRequest"
                        }
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.agentResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "summary": "Change an agent's status",
                "tags": [
                    "admin"
                ]
            }
        },
        "/delivery/admin/agents/{id}/verify": {
            "post": {
                "parameters": [
                    {
                        "description": "Agent id",
                        "in": "path",
                        "name": "id",
                        "required": true,
                        "type": "string"
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.agentResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "summary": "Verify and activate an agent",
                "tags": [
                    "admin"
                ]
            }
        },
        "/delivery/admin/analytics": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.analyticsResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "summary": "Shipment outcome counts",
                "tags": [
                    "admin"
                ]
            }
        },
        "/delivery/admin/dispatch": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.dispatchResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "summary": "Retry dispatch for pending shipments",
                "tags": [
                    "admin"
                ]
            }
        },
        "/delivery/admin/shipments": {
            "get": {
                "parameters": [
                    {
                        "description": "Status",
                        "in": "query",
                        "name": "status",
                        "required": false,
                        "type": "string"
                    },
                    {
                        "description": "Delivery type",
                        "in": "query",
                        "name": "deliveryType",
                        "required": false,
                        "type": "string"
                    },
                    {
                        "description": "Assigned agent",
                        "in": "query",
                        "name": "agentId",
                        "required": false,
                        "type": "string"
                    },
                    {
                        "description": "Customer",
                        "in": "query",
                        "name": "customerId",
                        "required": false,
                        "type": "string"
                    },
                    {
                        "description": "Tracking number prefix",
                        "in": "query",
                        "name": "search",
                        "required": false,
                        "type": "string"
                    },
                    {
                        "description": "Created at or after (RFC3339 or YYYY-MM-DD)",
                        "in": "query",
                        "name": "dateFrom",
                        "required": false,
                        "type": "string"
                    },
                    {
                        "description": "Created at or before (RFC3339 or YYYY-MM-DD)",
                        "in": "query",
                        "name": "dateTo",
                        "required": false,
                        "type": "string"
                    },
                    {
                        "description": "Page (default 1)",
                        "in": "query",
                        "name": "page",
                        "required": false,
                        "type": "integer"
                    },
                    {
                        "description": "Page size (default 20, max 100)",
                        "in": "query",
                        "name": "limit",
                        "required": false,
                        "type": "integer"
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.listShipmentsResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "summary": "List shipments",
                "tags": [
                    "admin"
                ]
            }
        },
        "/delivery/admin/shipments/{id}/assign": {
            "post": {
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Shipment id",
                        "in": "path",
                        "name": "id",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Agent",
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handler.assignRequest"
                        }
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.shipmentResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "summary": "Assign a pending shipment to a specific agent",
                "tags": [
                    "admin"
                ]
            }
        },
        "/delivery/admin/shipments/{id}/cod/resolve": {
            "post": {
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Shipment id",
                        "in": "path",
                        "name": "id",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Resolution note",
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handler.resolveCODRequest"
                        }
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.shipmentResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "summary": "Close a cash-on-delivery discrepancy",
                "tags": [
                    "admin"
                ]
            }
        },
        "/delivery/admin/shipments/{id}/status": {
            "patch": {
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Shipment id",
                        "in": "path",
                        "name": "id",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Target status",
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handler.statusUpdateRequest"
                        }
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.transitionResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "summary": "Force a lifecycle transition",
                "tags": [
                    "admin"
                ]
            }
        },
        "/delivery/admin/zones": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "items": {
                                "$ref": "#/definitions/handler.zoneResponse"
                            },
                            "type": "array"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "summary": "List delivery zones",
                "tags": [
                    "zones"
                ]
            }
        },
        "/delivery/admin/zones/{code}": {
            "put": {
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Zone code",
                        "in": "path",
                        "name": "code",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Zone",
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handler.zoneRequest"
                        }
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.zoneResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "summary": "Create or replace a zone",
                "tags": [
                    "zones"
                ]
            }
        },
        "/delivery/admin/zones/{code}/resume": {
            "post": {
                "parameters": [
                    {
                        "description": "Zone code",
                        "in": "path",
                        "name": "code",
                        "required": true,
                        "type": "string"
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.zoneResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "summary": "Lift a zone suspension",
                "tags": [
                    "zones"
                ]
            }
        },
        "/delivery/admin/zones/{code}/suspend": {
            "post": {
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Zone code",
                        "in": "path",
                        "name": "code",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Reason",
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handler.suspendZoneRequest"
                        }
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.zoneResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "summary": "Suspend a zone",
                "tags": [
                    "zones"
                ]
            }
        },
        "/delivery/agent/availability": {
            "post": {
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Availability",
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handler.availabilityRequest"
                        }
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.agentResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "summary": "Go online or offline",
                "tags": [
                    "agent"
                ]
            }
        },
        "/delivery/agent/deliveries": {
            "get": {
                "parameters": [
                    {
                        "description": "Filter by status",
                        "in": "query",
                        "name": "status",
                        "required": false,
                        "type": "string"
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "items": {
                                "$ref": "#/definitions/handler.shipmentResponse"
                            },
                            "type": "array"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "summary": "Shipments assigned to the caller",
                "tags": [
                    "agent"
                ]
            }
        },
        "/delivery/agent/location": {
            "post": {
                "consumes": [
                    "application/json"
                ],
                "description": "Reports are queued and applied in device-timestamp order per agent.",
                "parameters": [
                    {
                        "description": "Position",
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handler.locationRequest"
                        }
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "202": {
                        "description": "Accepted",
                        "schema": {
                            "$ref": "#/definitions/handler.acceptedResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "summary": "Report the caller's position",
                "tags": [
                    "agent"
                ]
            }
        },
        "/delivery/agent/profile": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.agentResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "summary": "The caller's agent profile",
                "tags": [
                    "agent"
                ]
            }
        },
        "/delivery/agent/register": {
            "post": {
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Agent profile",
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handler.registerAgentRequest"
                        }
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/handler.agentResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "summary": "Onboard the caller as a delivery agent",
                "tags": [
                    "agent"
                ]
            }
        },
        "/delivery/quote": {
            "post": {
                "consumes": [
                    "application/json"
                ],
                "description": "Returns the ranked rate list. A route no zone serves yields success=false and no rates.",
                "parameters": [
                    {
                        "description": "Route and package",
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handler.quoteRequest"
                        }
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.quoteResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    }
                },
                "summary": "Price a delivery",
                "tags": [
                    "delivery"
                ]
            }
        },
        "/delivery/shipments": {
            "post": {
                "consumes": [
                    "application/json"
                ],
                "description": "Prices and stores the shipment and tries to assign an agent. With no agent available the shipment stays PENDING.",
                "parameters": [
                    {
                        "description": "Replays the earlier shipment created with the same key",
                        "in": "header",
                        "name": "Idempotency-Key",
                        "required": false,
                        "type": "string"
                    },
                    {
                        "description": "Shipment details",
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handler.createShipmentRequest"
                        }
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Idempotent replay",
                        "schema": {
                            "$ref": "#/definitions/handler.createShipmentResponse"
                        }
                    },
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/handler.createShipmentResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "summary": "Create a shipment",
                "tags": [
                    "delivery"
                ]
            }
        },
        "/delivery/shipments/{id}/cancel": {
            "post": {
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Shipment id",
                        "in": "path",
                        "name": "id",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Reason",
                        "in": "body",
                        "name": "body",
                        "required": false,
                        "schema": {
                            "$ref": "#/definitions/handler.cancelRequest"
                        }
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.transitionResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "summary": "Cancel a shipment before pickup",
                "tags": [
                    "delivery"
                ]
            }
        },
        "/delivery/shipments/{id}/proof": {
            "post": {
                "consumes": [
                    "multipart/form-data"
                ],
                "parameters": [
                    {
                        "description": "Shipment id",
                        "in": "path",
                        "name": "id",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Image file",
                        "in": "formData",
                        "name": "photo",
                        "required": true,
                        "type": "file"
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/handler.proofResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "summary": "Upload a delivery proof photo",
                "tags": [
                    "delivery"
                ]
            }
        },
        "/delivery/shipments/{id}/status": {
            "patch": {
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Shipment id",
                        "in": "path",
                        "name": "id",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Target status",
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handler.statusUpdateRequest"
                        }
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.transitionResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "summary": "Move a shipment through its lifecycle",
                "tags": [
                    "delivery"
                ]
            }
        },
        "/delivery/shipments/{id}/track": {
            "get": {
                "parameters": [
                    {
                        "description": "Shipment id",
                        "in": "path",
                        "name": "id",
                        "required": true,
                        "type": "string"
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.trackingResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "summary": "Track a shipment by id",
                "tags": [
                    "tracking"
                ]
            }
        },
        "/delivery/track/{trackingNumber}": {
            "get": {
                "parameters": [
                    {
                        "description": "Tracking number (e.g. DLV-00A1B2C3D4)",
                        "in": "path",
                        "name": "trackingNumber",
                        "required": true,
                        "type": "string"
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.trackingResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    }
                },
                "summary": "Public tracking",
                "tags": [
                    "tracking"
                ]
            }
        },
        "/delivery/track/{trackingNumber}/stream": {
            "get": {
                "description": "Sends a snapshot frame, then an update frame for every position or status change. The stream closes after a terminal status.",
                "parameters": [
                    {
                        "description": "Tracking number",
                        "in": "path",
                        "name": "trackingNumber",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "101": {
                        "description": "Switching Protocols"
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    }
                },
                "summary": "Live tracking stream (websocket)",
                "tags": [
                    "tracking"
                ]
            }
        }
    },
    "definitions": {
        "handler.acceptedResponse": {
            "properties": {
                "message": {
                    "type": "string"
                }
            },
            "type": "object"
        },
        "handler.addressRequest": {
            "properties": {
                "address": {
                    "type": "string"
                },
                "city": {
                    "type": "string"
                },
                "contactName": {
                    "type": "string"
                },
                "contactPhone": {
                    "type": "string"
                },
                "coordinates": {
                    "$ref": "#/definitions/handler.coordinatesRequest"
                },
                "country": {
                    "type": "string"
                },
                "state": {
                    "type": "string"
                }
            },
            "required": [
                "address",
                "city",
                "coordinates"
            ],
            "type": "object"
        },
        "handler.addressResponse": {
            "properties": {
                "address": {
                    "type": "string"
                },
                "city": {
                    "type": "string"
                },
                "contactName": {
                    "type": "string"
                },
                "contactPhone": {
                    "type": "string"
                },
                "coordinates": {
                    "$ref": "#/definitions/handler.coordinatesResponse"
                },
                "country": {
                    "type": "string"
                },
                "state": {
                    "type": "string"
                }
            },
            "type": "object"
        },
        "handler.agentContactResponse": {
            "properties": {
                "name": {
                    "type": "string"
                },
                "phone": {
                    "type": "string"
                },
                "vehicleType": {
                    "type": "string"
                }
            },
            "type": "object"
        },
        "handler.agentResponse": {
            "properties": {
                "activeShipmentId": {
                    "type": "string"
                },
                "completedDeliveries": {
                    "type": "integer"
                },
                "createdAt": {
                    "format": "date-time",
                    "type": "string"
                },
                "currentLocation": {
                    "$ref": "#/definitions/handler.locationResponse"
                },
                "earnings": {
                    "type": "number"
                },
                "failedDeliveries": {
                    "type": "integer"
                },
                "id": {
                    "type": "string"
                },
                "isAvailable": {
                    "type": "boolean"
                },
                "isVerified": {
                    "type": "boolean"
                },
                "lastActiveAt": {
                    "format": "date-time",
                    "type": "string"
                },
                "maxCapacityKg": {
                    "type": "number"
                },
                "name": {
                    "type": "string"
                },
                "phone": {
                    "type": "string"
                },
                "rating": {
                    "type": "number"
                },
                "status": {
                    "type": "string"
                },
                "totalDeliveries": {
                    "type": "integer"
                },
                "userId": {
                    "type": "string"
                },
                "vehicleType": {
                    "type": "string"
                }
            },
            "type": "object"
        },
        "handler.agentStatusRequest": {
            "properties": {
                "status": {
                    "type": "string"
                }
            },
            "required": [
                "status"
            ],
            "type": "object"
        },
        "handler.analyticsResponse": {
            "properties": {
                "byStatus": {
                    "additionalProperties": {
                        "type": "integer"
                    },
                    "type": "object"
                },
                "cancelled": {
                    "type": "integer"
                },
                "delivered": {
                    "type": "integer"
                },
                "deliveryRate": {
                    "type": "number"
                },
                "failed": {
                    "type": "integer"
                },
                "inFlight": {
                    "type": "integer"
                },
                "pending": {
                    "type": "integer"
                },
                "returned": {
                    "type": "integer"
                },
                "total": {
                    "type": "integer"
                }
            },
            "type": "object"
        },
        "handler.assignRequest": {
            "properties": {
                "agentId": {
                    "type": "string"
                }
            },
            "required": [
                "agentId"
            ],
            "type": "object"
        },
        "handler.authResponse": {
            "properties": {
                "token": {
                    "type": "string"
                },
                "user": {
                    "$ref": "#/definitions/handler.userResponse"
                }
            },
            "type": "object"
        },
        "handler.availabilityRequest": {
            "properties": {
                "available": {
                    "type": "boolean"
                }
            },
            "required": [
                "available"
            ],
            "type": "object"
        },
        "handler.cancelRequest": {
            "properties": {
                "reason": {
                    "type": "string"
                }
            },
            "type": "object"
        },
        "handler.codResponse": {
            "properties": {
                "collected": {
                    "type": "number"
                },
                "collectedAt": {
                    "format": "date-time",
                    "type": "string"
                },
                "discrepancy": {
                    "type": "boolean"
                },
                "expected": {
                    "type": "number"
                },
                "note": {
                    "type": "string"
                },
                "resolved": {
                    "type": "boolean"
                },
                "resolvedAt": {
                    "format": "date-time",
                    "type": "string"
                },
                "resolvedBy": {
                    "type": "string"
                }
            },
            "type": "object"
        },
        "handler.coordinatesRequest": {
            "properties": {
                "latitude": {
                    "type": "number"
                },
                "longitude": {
                    "type": "number"
                }
            },
            "required": [
                "latitude",
                "longitude"
            ],
            "type": "object"
        },
        "handler.coordinatesResponse": {
            "properties": {
                "latitude": {
                    "type": "number"
                },
                "longitude": {
                    "type": "number"
                }
            },
            "type": "object"
        },
        "handler.createShipmentRequest": {
            "properties": {
                "codAmount": {
                    "type": "number"
                },
                "deliveryAddress": {
                    "$ref": "#/definitions/handler.addressRequest"
                },
                "deliveryType": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "fragile": {
                    "type": "boolean"
                },
                "packageValue": {
                    "type": "number"
                },
                "pickupAddress": {
                    "$ref": "#/definitions/handler.addressRequest"
                },
                "scheduledFor": {
                    "format": "date-time",
                    "type": "string"
                },
                "weight": {
                    "type": "number"
                }
            },
            "required": [
                "pickupAddress",
                "deliveryAddress"
            ],
            "type": "object"
        },
        "handler.createShipmentResponse": {
            "properties": {
                "agentId": {
                    "type": "string"
                },
                "assignment": {
                    "type": "string"
                },
                "createdAt": {
                    "format": "date-time",
                    "type": "string"
                },
                "currency": {
                    "type": "string"
                },
                "deliveryFee": {
                    "type": "number"
                },
                "estimatedDelivery": {
                    "format": "date-time",
                    "type": "string"
                },
                "id": {
                    "type": "string"
                },
                "status": {
                    "type": "string"
                },
                "trackingNumber": {
                    "type": "string"
                }
            },
            "type": "object"
        },
        "handler.dispatchResponse": {
            "properties": {
                "assigned": {
                    "type": "integer"
                }
            },
            "type": "object"
        },
        "handler.errorResponse": {
            "properties": {
                "code": {
                    "type": "string"
                },
                "error": {
                    "type": "string"
                },
                "field": {
                    "type": "string"
                }
            },
            "type": "object"
        },
        "handler.feeBreakdownResponse": {
            "properties": {
                "base": {
                    "type": "number"
                },
                "billableDistanceKm": {
                    "type": "number"
                },
                "codFee": {
                    "type": "number"
                },
                "distanceKm": {
                    "type": "number"
                },
                "multiplier": {
                    "type": "number"
                },
                "platformFee": {
                    "type": "number"
                },
                "subtotal": {
                    "type": "number"
                },
                "total": {
                    "type": "number"
                },
                "weightSurcharge": {
                    "type": "number"
                },
                "zoneCode": {
                    "type": "string"
                }
            },
            "type": "object"
        },
        "handler.listShipmentsResponse": {
            "properties": {
                "data": {
                    "items": {
                        "$ref": "#/definitions/handler.shipmentResponse"
                    },
                    "type": "array"
                },
                "pagination": {
                    "$ref": "#/definitions/handler.paginationResponse"
                }
            },
            "type": "object"
        },
        "handler.locationRequest": {
            "properties": {
                "accuracy": {
                    "type": "number"
                },
                "latitude": {
                    "type": "number"
                },
                "longitude": {
                    "type": "number"
                },
                "recordedAt": {
                    "format": "date-time",
                    "type": "string"
                }
            },
            "required": [
                "latitude",
                "longitude"
            ],
            "type": "object"
        },
        "handler.locationResponse": {
            "properties": {
                "accuracy": {
                    "type": "number"
                },
                "latitude": {
                    "type": "number"
                },
                "longitude": {
                    "type": "number"
                },
                "recordedAt": {
                    "format": "date-time",
                    "type": "string"
                }
            },
            "type": "object"
        },
        "handler.loginRequest": {
            "properties": {
                "password": {
                    "type": "string"
                },
                "username": {
                    "type": "string"
                }
            },
            "type": "object"
        },
        "handler.paginationResponse": {
            "properties": {
                "limit": {
                    "type": "integer"
                },
                "page": {
                    "type": "integer"
                },
                "total": {
                    "type": "integer"
                },
                "totalPages": {
                    "type": "integer"
                }
            },
            "type": "object"
        },
        "handler.proofResponse": {
            "properties": {
                "url": {
                    "type": "string"
                }
            },
            "type": "object"
        },
        "handler.quoteRequest": {
            "properties": {
                "cod": {
                    "type": "boolean"
                },
                "delivery": {
                    "$ref": "#/definitions/handler.coordinatesRequest"
                },
                "deliveryType": {
                    "type": "string"
                },
                "packageValue": {
                    "type": "number"
                },
                "pickup": {
                    "$ref": "#/definitions/handler.coordinatesRequest"
                },
                "scheduledFor": {
                    "format": "date-time",
                    "type": "string"
                },
                "weight": {
                    "type": "number"
                }
            },
            "required": [
                "pickup",
                "delivery",
                "packageValue"
            ],
            "type": "object"
        },
        "handler.quoteResponse": {
            "properties": {
                "message": {
                    "type": "string"
                },
                "rates": {
                    "items": {
                        "$ref": "#/definitions/handler.rateResponse"
                    },
                    "type": "array"
                },
                "success": {
                    "type": "boolean"
                }
            },
            "type": "object"
        },
        "handler.rateCardRequest": {
            "properties": {
                "baseFee": {
                    "type": "number"
                },
                "freeDistanceKm": {
                    "type": "number"
                },
                "perKmRate": {
                    "type": "number"
                }
            },
            "type": "object"
        },
        "handler.rateCardResponse": {
            "properties": {
                "baseFee": {
                    "type": "number"
                },
                "freeDistanceKm": {
                    "type": "number"
                },
                "perKmRate": {
                    "type": "number"
                }
            },
            "type": "object"
        },
        "handler.rateResponse": {
            "properties": {
                "breakdown": {
                    "$ref": "#/definitions/handler.feeBreakdownResponse"
                },
                "carrier": {
                    "type": "string"
                },
                "currency": {
                    "type": "string"
                },
                "deliveryType": {
                    "type": "string"
                },
                "distanceKm": {
                    "type": "number"
                },
                "estimatedDays": {
                    "type": "integer"
                },
                "estimatedHours": {
                    "type": "number"
                },
                "fee": {
                    "type": "number"
                }
            },
            "type": "object"
        },
        "handler.registerAgentRequest": {
            "properties": {
                "maxCapacityKg": {
                    "type": "number"
                },
                "name": {
                    "type": "string"
                },
                "phone": {
                    "type": "string"
                },
                "vehicleType": {
                    "type": "string"
                }
            },
            "required": [
                "name",
                "phone",
                "vehicleType"
            ],
            "type": "object"
        },
        "handler.registerRequest": {
            "properties": {
                "email": {
                    "type": "string"
                },
                "password": {
                    "type": "string"
                },
                "role": {
                    "type": "string"
                },
                "username": {
                    "type": "string"
                }
            },
            "type": "object"
        },
        "handler.resolveCODRequest": {
            "properties": {
                "note": {
                    "type": "string"
                }
            },
            "required": [
                "note"
            ],
            "type": "object"
        },
        "handler.shipmentResponse": {
            "properties": {
                "agentId": {
                    "type": "string"
                },
                "cod": {
                    "$ref": "#/definitions/handler.codResponse"
                },
                "codAmount": {
                    "type": "number"
                },
                "createdAt": {
                    "format": "date-time",
                    "type": "string"
                },
                "currency": {
                    "type": "string"
                },
                "currentLocation": {
                    "$ref": "#/definitions/handler.locationResponse"
                },
                "customerId": {
                    "type": "string"
                },
                "deliveredAt": {
                    "format": "date-time",
                    "type": "string"
                },
                "deliveryAddress": {
                    "$ref": "#/definitions/handler.addressResponse"
                },
                "deliveryFee": {
                    "type": "number"
                },
                "deliveryType": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "distanceToDestinationKm": {
                    "type": "number"
                },
                "estimatedDelivery": {
                    "format": "date-time",
                    "type": "string"
                },
                "etaMinutes": {
                    "type": "integer"
                },
                "events": {
                    "items": {
                        "$ref": "#/definitions/handler.trackingEventResponse"
                    },
                    "type": "array"
                },
                "failedReason": {
                    "type": "string"
                },
                "fee": {
                    "$ref": "#/definitions/handler.feeBreakdownResponse"
                },
                "fragile": {
                    "type": "boolean"
                },
                "id": {
                    "type": "string"
                },
                "packageValue": {
                    "type": "number"
                },
                "pickupAddress": {
                    "$ref": "#/definitions/handler.addressResponse"
                },
                "proofOfDelivery": {
                    "type": "string"
                },
                "scheduledFor": {
                    "format": "date-time",
                    "type": "string"
                },
                "status": {
                    "type": "string"
                },
                "trackingNumber": {
                    "type": "string"
                },
                "updatedAt": {
                    "format": "date-time",
                    "type": "string"
                },
                "version": {
                    "type": "integer"
                },
                "weight": {
                    "type": "number"
                }
            },
            "type": "object"
        },
        "handler.statusUpdateRequest": {
            "properties": {
                "codCollected": {
                    "type": "number"
                },
                "failedReason": {
                    "type": "string"
                },
                "location": {
                    "$ref": "#/definitions/handler.coordinatesRequest"
                },
                "notes": {
                    "type": "string"
                },
                "proofOfDelivery": {
                    "type": "string"
                },
                "status": {
                    "type": "string"
                }
            },
            "required": [
                "status"
            ],
            "type": "object"
        },
        "handler.suspendZoneRequest": {
            "properties": {
                "reason": {
                    "type": "string"
                }
            },
            "required": [
                "reason"
            ],
            "type": "object"
        },
        "handler.trackingEventResponse": {
            "properties": {
                "description": {
                    "type": "string"
                },
                "location": {
                    "$ref": "#/definitions/handler.coordinatesResponse"
                },
                "recordedAt": {
                    "format": "date-time",
                    "type": "string"
                },
                "status": {
                    "type": "string"
                },
                "type": {
                    "type": "string"
                }
            },
            "type": "object"
        },
        "handler.trackingResponse": {
            "properties": {
                "agent": {
                    "$ref": "#/definitions/handler.agentContactResponse"
                },
                "currentLocation": {
                    "$ref": "#/definitions/handler.locationResponse"
                },
                "deliveredAt": {
                    "format": "date-time",
                    "type": "string"
                },
                "deliveryCity": {
                    "type": "string"
                },
                "deliveryType": {
                    "type": "string"
                },
                "distanceToDestinationKm": {
                    "type": "number"
                },
                "estimatedDelivery": {
                    "format": "date-time",
                    "type": "string"
                },
                "etaMinutes": {
                    "type": "integer"
                },
                "events": {
                    "items": {
                        "$ref": "#/definitions/handler.trackingEventResponse"
                    },
                    "type": "array"
                },
                "pickupCity": {
                    "type": "string"
                },
                "status": {
                    "type": "string"
                },
                "trackingNumber": {
                    "type": "string"
                }
            },
            "type": "object"
        },
        "handler.transitionResponse": {
            "properties": {
                "agentStats": {
                    "type": "string"
                },
                "agentStatsError": {
                    "type": "string"
                },
                "event": {
                    "$ref": "#/definitions/handler.trackingEventResponse"
                },
                "replayed": {
                    "type": "boolean"
                },
                "shipment": {
                    "$ref": "#/definitions/handler.shipmentResponse"
                }
            },
            "type": "object"
        },
        "handler.userResponse": {
            "properties": {
                "createdAt": {
                    "format": "date-time",
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "id": {
                    "type": "string"
                },
                "role": {
                    "type": "string"
                },
                "username": {
                    "type": "string"
                }
            },
            "type": "object"
        },
        "handler.zoneRequest": {
            "properties": {
                "centroid": {
                    "$ref": "#/definitions/handler.coordinatesRequest"
                },
                "isActive": {
                    "type": "boolean"
                },
                "name": {
                    "type": "string"
                },
                "override": {
                    "$ref": "#/definitions/handler.rateCardRequest"
                },
                "radiusKm": {
                    "type": "number"
                },
                "rates": {
                    "$ref": "#/definitions/handler.rateCardRequest"
                },
                "type": {
                    "type": "string"
                }
            },
            "required": [
                "name",
                "centroid",
                "rates"
            ],
            "type": "object"
        },
        "handler.zoneResponse": {
            "properties": {
                "centroid": {
                    "$ref": "#/definitions/handler.coordinatesResponse"
                },
                "code": {
                    "type": "string"
                },
                "isActive": {
                    "type": "boolean"
                },
                "isSuspended": {
                    "type": "boolean"
                },
                "name": {
                    "type": "string"
                },
                "override": {
                    "$ref": "#/definitions/handler.rateCardResponse"
                },
                "radiusKm": {
                    "type": "number"
                },
                "rates": {
                    "$ref": "#/definitions/handler.rateCardResponse"
                },
                "suspensionReason": {
                    "type": "string"
                },
                "type": {
                    "type": "string"
                },
                "updatedAt": {
                    "format": "date-time",
                    "type": "string"
                }
            },
            "type": "object"
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
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Delivery Dispatch API",
	Description:      "Last-mile delivery pricing, dispatch, lifecycle and live tracking.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
