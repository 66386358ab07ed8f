// Package docs holds the OpenAPI document served under /swagger. It uses the
// layout written by `swag init -g cmd/server/main.go -o docs --parseInternal`,
// so regenerating after a handler annotation changes replaces this file.
package docs

import "github.com/swaggo/swag/v2"

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
        "/customers/{id}": {
            "get": {
                "security": [
                    {
                        "PermissionHeader": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "customers"
                ],
                "summary": "Get a customer's balance, membership and PT summary",
                "operationId": "getCustomerDetail",
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Customer ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/entitlement.CustomerDetail"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    }
                }
            }
        },
        "/customers/{id}/bills": {
            "get": {
                "security": [
                    {
                        "PermissionHeader": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "customers"
                ],
                "summary": "List a customer's bills",
                "operationId": "listCustomerBills",
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Customer ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Comma separated statuses, e.g. ACTIVE,PARTIAL",
                        "name": "status",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Bill type",
                        "name": "bill_type",
                        "in": "query",
                        "enum": [
                            "MEMBERSHIP_SUBSCRIPTION",
                            "CUSTOM_AMOUNT",
                            "PT_PACKAGE"
                        ]
                    },
                    {
                        "type": "integer",
                        "description": "Page number",
                        "name": "page",
                        "in": "query",
                        "minimum": 1
                    },
                    {
                        "type": "integer",
                        "description": "Page size",
                        "name": "page_size",
                        "in": "query",
                        "minimum": 1,
                        "maximum": 200
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/entitlement.BillResponse"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    }
                }
            },
            "post": {
                "security": [
                    {
                        "PermissionHeader": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "customers"
                ],
                "summary": "Create a bill for a customer",
                "operationId": "createCustomerBill",
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Customer ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Bill creation request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handler.CreateBillRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/entitlement.BillResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    }
                }
            }
        },
        "/customers/{id}/payments": {
            "get": {
                "security": [
                    {
                        "PermissionHeader": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "customers"
                ],
                "summary": "List a customer's payments",
                "operationId": "listCustomerPayments",
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Customer ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "integer",
                        "description": "Page number",
                        "name": "page",
                        "in": "query",
                        "minimum": 1
                    },
                    {
                        "type": "integer",
                        "description": "Page size",
                        "name": "page_size",
                        "in": "query",
                        "minimum": 1,
                        "maximum": 200
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/entitlement.PaymentResponse"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    }
                }
            }
        },
        "/customers/{id}/membership": {
            "get": {
                "security": [
                    {
                        "PermissionHeader": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "customers"
                ],
                "summary": "Get a customer's current membership",
                "operationId": "getCustomerMembership",
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Customer ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/entitlement.MembershipView"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    }
                }
            },
            "post": {
                "security": [
                    {
                        "PermissionHeader": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "customers"
                ],
                "summary": "Assign a membership, superseding the active one",
                "operationId": "assignCustomerMembership",
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Customer ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Membership assignment request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handler.AssignMembershipRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/entitlement.AssignMembershipResult"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    }
                }
            }
        },
        "/customers/{id}/memberships": {
            "get": {
                "security": [
                    {
                        "PermissionHeader": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "customers"
                ],
                "summary": "List a customer's membership history",
                "operationId": "listCustomerMemberships",
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Customer ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/entitlement.MembershipResponse"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    }
                }
            }
        },
        "/customers/{id}/pt-packages": {
            "get": {
                "security": [
                    {
                        "PermissionHeader": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "customers"
                ],
                "summary": "List a customer's PT package allocations",
                "operationId": "listCustomerPtPackages",
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Customer ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Comma separated statuses, e.g. ACTIVE",
                        "name": "status",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/entitlement.AllocationResponse"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    }
                }
            },
            "post": {
                "security": [
                    {
                        "PermissionHeader": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "customers"
                ],
                "summary": "Assign a PT package and bill it",
                "operationId": "assignCustomerPtPackage",
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Customer ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "PT package assignment request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handler.AssignPtPackageRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/entitlement.PtPackageResult"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    }
                }
            }
        },
        "/bills/{id}": {
            "get": {
                "security": [
                    {
                        "PermissionHeader": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "bills"
                ],
                "summary": "Get a bill",
                "operationId": "getBillById",
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Bill ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/entitlement.BillResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    }
                }
            },
            "put": {
                "security": [
                    {
                        "PermissionHeader": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "bills"
                ],
                "summary": "Update an unlocked bill",
                "operationId": "updateBill",
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Bill ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Bill update request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handler.UpdateBillRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/entitlement.BillResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    }
                }
            },
            "delete": {
                "security": [
                    {
                        "PermissionHeader": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "bills"
                ],
                "summary": "Delete a bill and its payments",
                "operationId": "deleteBill",
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Bill ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/entitlement.DeleteBillResult"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    }
                }
            }
        },
        "/bills/{id}/payments": {
            "get": {
                "security": [
                    {
                        "PermissionHeader": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "bills"
                ],
                "summary": "List a bill's payments",
                "operationId": "listBillPayments",
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Bill ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/entitlement.PaymentResponse"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    }
                }
            },
            "post": {
                "security": [
                    {
                        "PermissionHeader": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "bills"
                ],
                "summary": "Record a payment against a bill",
                "operationId": "addBillPayment",
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Bill ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Payment request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handler.AddPaymentRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/entitlement.PaymentResult"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    }
                }
            }
        },
        "/payments/{id}": {
            "delete": {
                "security": [
                    {
                        "PermissionHeader": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "payments"
                ],
                "summary": "Delete a payment and recompute its bill",
                "operationId": "deletePayment",
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Payment ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/entitlement.BillResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    }
                }
            }
        },
        "/membership-plans/{id}/stats": {
            "get": {
                "security": [
                    {
                        "PermissionHeader": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "membership-plans"
                ],
                "summary": "Get active member count and monthly revenue of a plan",
                "operationId": "getMembershipPlanStats",
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Membership plan ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/entitlement.PlanStatsResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    }
                }
            }
        },
        "/pt-allocations/{id}/cancel": {
            "post": {
                "security": [
                    {
                        "PermissionHeader": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "pt-allocations"
                ],
                "summary": "Cancel a PT package allocation",
                "operationId": "cancelPtAllocation",
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Allocation ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Cancellation reason",
                        "name": "request",
                        "in": "body",
                        "required": false,
                        "schema": {
                            "$ref": "#/definitions/handler.CancelPtPackageRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/entitlement.PtPackageResult"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    }
                }
            }
        },
        "/pt-allocations/{id}/sessions": {
            "post": {
                "security": [
                    {
                        "PermissionHeader": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "pt-allocations"
                ],
                "summary": "Consume one session of a PT package allocation",
                "operationId": "recordPtSession",
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Allocation ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/entitlement.AllocationResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    }
                }
            }
        },
        "/system/info": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "system"
                ],
                "summary": "Get service name, version and uptime",
                "operationId": "getSystemInfo",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/handler.SystemInfoResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/health": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "system"
                ],
                "summary": "Run the registered health checks",
                "operationId": "getHealth",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/handler.HealthResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "dto.Response": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "data": {},
                "error": {
                    "$ref": "#/definitions/dto.ErrorInfo"
                },
                "meta": {
                    "$ref": "#/definitions/dto.Meta"
                }
            }
        },
        "dto.ErrorInfo": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string",
                    "example": "OVER_PAYMENT"
                },
                "kind": {
                    "type": "string",
                    "enum": [
                        "VALIDATION",
                        "STATE_CONFLICT",
                        "NOT_FOUND",
                        "ATOMICITY"
                    ]
                },
                "message": {
                    "type": "string"
                },
                "request_id": {
                    "type": "string"
                },
                "details": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.ValidationDetail"
                    }
                }
            }
        },
        "dto.ValidationDetail": {
            "type": "object",
            "properties": {
                "field": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                }
            }
        },
        "dto.Meta": {
            "type": "object",
            "properties": {
                "total": {
                    "type": "integer"
                },
                "page": {
                    "type": "integer"
                },
                "page_size": {
                    "type": "integer"
                },
                "total_pages": {
                    "type": "integer"
                },
                "view_fresh": {
                    "type": "boolean",
                    "description": "false when the customer view could not be refreshed after a mutation"
                },
                "warning": {
                    "type": "string"
                }
            }
        },
        "valueobject.Money": {
            "type": "object",
            "properties": {
                "amount_minor": {
                    "type": "integer",
                    "example": 150000
                },
                "amount": {
                    "type": "string",
                    "example": "1500.00"
                },
                "currency": {
                    "type": "string",
                    "example": "PHP"
                }
            }
        },
        "ledger.BillType": {
            "type": "string",
            "enum": [
                "MEMBERSHIP_SUBSCRIPTION",
                "CUSTOM_AMOUNT",
                "PT_PACKAGE"
            ],
            "x-enum-varnames": [
                "BillTypeMembershipSubscription",
                "BillTypeCustomAmount",
                "BillTypePtPackage"
            ]
        },
        "ledger.BillStatus": {
            "type": "string",
            "enum": [
                "ACTIVE",
                "PARTIAL",
                "PAID",
                "VOIDED"
            ],
            "x-enum-varnames": [
                "BillStatusActive",
                "BillStatusPartial",
                "BillStatusPaid",
                "BillStatusVoided"
            ]
        },
        "ledger.PaymentMethod": {
            "type": "string",
            "enum": [
                "CASH",
                "CARD",
                "GCASH",
                "BANK_TRANSFER",
                "OTHER"
            ],
            "x-enum-varnames": [
                "PaymentMethodCash",
                "PaymentMethodCard",
                "PaymentMethodGCash",
                "PaymentMethodBankTransfer",
                "PaymentMethodOther"
            ]
        },
        "membership.MembershipStatus": {
            "type": "string",
            "enum": [
                "ACTIVE",
                "EXPIRED",
                "NONE"
            ],
            "x-enum-varnames": [
                "MembershipStatusActive",
                "MembershipStatusExpired",
                "MembershipStatusNone"
            ]
        },
        "training.AllocationStatus": {
            "type": "string",
            "enum": [
                "ACTIVE",
                "COMPLETED",
                "CANCELLED"
            ],
            "x-enum-varnames": [
                "AllocationStatusActive",
                "AllocationStatusCompleted",
                "AllocationStatusCancelled"
            ]
        },
        "training.Summary": {
            "type": "object",
            "properties": {
                "active_count": {
                    "type": "integer"
                },
                "sessions_remaining": {
                    "type": "integer"
                },
                "completed_count": {
                    "type": "integer"
                },
                "cancelled_count": {
                    "type": "integer"
                }
            }
        },
        "entitlement.BillResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "customer_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "bill_date": {
                    "type": "string",
                    "format": "date-time"
                },
                "bill_type": {
                    "$ref": "#/definitions/ledger.BillType"
                },
                "gross_amount": {
                    "$ref": "#/definitions/valueobject.Money"
                },
                "discount_percentage": {
                    "type": "string",
                    "example": "10.00"
                },
                "net_amount": {
                    "$ref": "#/definitions/valueobject.Money"
                },
                "paid_amount": {
                    "$ref": "#/definitions/valueobject.Money"
                },
                "outstanding": {
                    "$ref": "#/definitions/valueobject.Money"
                },
                "status": {
                    "$ref": "#/definitions/ledger.BillStatus"
                },
                "reference_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "remark": {
                    "type": "string"
                },
                "voided_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "void_reason": {
                    "type": "string"
                },
                "created_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "updated_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "entitlement.PaymentResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "bill_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "customer_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "amount": {
                    "$ref": "#/definitions/valueobject.Money"
                },
                "payment_date": {
                    "type": "string",
                    "format": "date-time"
                },
                "method": {
                    "$ref": "#/definitions/ledger.PaymentMethod"
                },
                "reference_number": {
                    "type": "string"
                },
                "created_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "entitlement.PaymentResult": {
            "type": "object",
            "properties": {
                "payment": {
                    "$ref": "#/definitions/entitlement.PaymentResponse"
                },
                "bill": {
                    "$ref": "#/definitions/entitlement.BillResponse"
                }
            }
        },
        "entitlement.DeleteBillResult": {
            "type": "object",
            "properties": {
                "bill_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "customer_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "payments_removed": {
                    "type": "integer"
                }
            }
        },
        "entitlement.MembershipResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "customer_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "membership_plan_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "plan_name": {
                    "type": "string"
                },
                "membership_start_date": {
                    "type": "string",
                    "format": "date-time"
                },
                "membership_end_date": {
                    "type": "string",
                    "format": "date-time",
                    "description": "last covered day"
                },
                "status": {
                    "$ref": "#/definitions/membership.MembershipStatus"
                },
                "superseded_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "superseded_by": {
                    "type": "string",
                    "format": "uuid"
                },
                "created_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "entitlement.MembershipView": {
            "type": "object",
            "properties": {
                "status": {
                    "$ref": "#/definitions/membership.MembershipStatus"
                },
                "membership": {
                    "$ref": "#/definitions/entitlement.MembershipResponse"
                }
            }
        },
        "entitlement.AssignMembershipResult": {
            "type": "object",
            "properties": {
                "membership": {
                    "$ref": "#/definitions/entitlement.MembershipResponse"
                },
                "superseded": {
                    "$ref": "#/definitions/entitlement.MembershipResponse"
                },
                "bill": {
                    "$ref": "#/definitions/entitlement.BillResponse"
                }
            }
        },
        "entitlement.PlanStatsResponse": {
            "type": "object",
            "properties": {
                "plan_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "plan_name": {
                    "type": "string"
                },
                "active_members_count": {
                    "type": "integer"
                },
                "monthly_revenue": {
                    "$ref": "#/definitions/valueobject.Money"
                },
                "computed_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "entitlement.AllocationResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "customer_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "pt_package_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "coach_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "start_date": {
                    "type": "string",
                    "format": "date-time"
                },
                "sessions_total": {
                    "type": "integer"
                },
                "sessions_remaining": {
                    "type": "integer"
                },
                "status": {
                    "$ref": "#/definitions/training.AllocationStatus"
                },
                "bill_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "cancelled_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "cancel_reason": {
                    "type": "string"
                },
                "completed_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "created_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "entitlement.PtPackageResult": {
            "type": "object",
            "properties": {
                "allocation": {
                    "$ref": "#/definitions/entitlement.AllocationResponse"
                },
                "bill": {
                    "$ref": "#/definitions/entitlement.BillResponse"
                }
            }
        },
        "entitlement.CustomerDetail": {
            "type": "object",
            "properties": {
                "customer_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "name": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "phone": {
                    "type": "string"
                },
                "balance": {
                    "$ref": "#/definitions/valueobject.Money"
                },
                "open_bill_count": {
                    "type": "integer"
                },
                "membership": {
                    "$ref": "#/definitions/entitlement.MembershipView"
                },
                "pt_summary": {
                    "$ref": "#/definitions/training.Summary"
                },
                "computed_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "handler.CreateBillRequest": {
            "type": "object",
            "properties": {
                "bill_type": {
                    "type": "string",
                    "example": "CUSTOM_AMOUNT"
                },
                "gross_amount": {
                    "type": "string",
                    "example": "1500.00"
                },
                "discount_percentage": {
                    "type": "string",
                    "example": "10.00"
                },
                "bill_date": {
                    "type": "string",
                    "format": "date",
                    "example": "2026-03-10"
                },
                "reference_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "remark": {
                    "type": "string",
                    "maxLength": 500
                }
            },
            "required": [
                "bill_type",
                "gross_amount"
            ]
        },
        "handler.UpdateBillRequest": {
            "type": "object",
            "properties": {
                "bill_type": {
                    "type": "string"
                },
                "gross_amount": {
                    "type": "string",
                    "example": "1500.00"
                },
                "discount_percentage": {
                    "type": "string",
                    "example": "10.00"
                },
                "bill_date": {
                    "type": "string",
                    "format": "date",
                    "example": "2026-03-10"
                },
                "remark": {
                    "type": "string",
                    "maxLength": 500
                }
            }
        },
        "handler.AddPaymentRequest": {
            "type": "object",
            "properties": {
                "amount": {
                    "type": "string",
                    "example": "500.00"
                },
                "payment_method": {
                    "type": "string",
                    "example": "CASH"
                },
                "reference_number": {
                    "type": "string",
                    "maxLength": 100
                },
                "payment_date": {
                    "type": "string",
                    "format": "date",
                    "example": "2026-03-10"
                }
            },
            "required": [
                "amount",
                "payment_method"
            ]
        },
        "handler.AssignMembershipRequest": {
            "type": "object",
            "properties": {
                "membership_plan_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "start_date": {
                    "type": "string",
                    "format": "date",
                    "example": "2026-03-10"
                },
                "discount_percentage": {
                    "type": "string",
                    "example": "10.00"
                },
                "skip_bill": {
                    "type": "boolean"
                }
            },
            "required": [
                "membership_plan_id"
            ]
        },
        "handler.AssignPtPackageRequest": {
            "type": "object",
            "properties": {
                "pt_package_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "coach_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "start_date": {
                    "type": "string",
                    "format": "date",
                    "example": "2026-03-10"
                },
                "discount_percentage": {
                    "type": "string",
                    "example": "10.00"
                }
            },
            "required": [
                "pt_package_id"
            ]
        },
        "handler.CancelPtPackageRequest": {
            "type": "object",
            "properties": {
                "reason": {
                    "type": "string",
                    "maxLength": 500
                }
            }
        },
        "handler.SystemInfoResponse": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "version": {
                    "type": "string"
                },
                "go_version": {
                    "type": "string"
                },
                "uptime": {
                    "type": "string"
                }
            }
        },
        "handler.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {
                    "type": "string",
                    "example": "ok"
                },
                "checks": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "string"
                    }
                },
                "timestamp": {
                    "type": "string"
                }
            }
        }
    },
    "securityDefinitions": {
        "PermissionHeader": {
            "description": "Comma separated permission keys granted to the caller",
            "type": "apiKey",
            "name": "X-Permissions",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Gym Ledger API",
	Description:      "Customer bills, payments, memberships and PT packages for the gym front desk.\nEvery mutation returns the refreshed customer view state in meta.view_fresh.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
