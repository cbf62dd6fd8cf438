// Package docs registers the OpenAPI document served by gin-swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "termsOfService": "https://github.com/guttosm/stockcast",
        "contact": {
            "name": "API Support",
            "url": "https://github.com/guttosm/stockcast",
            "email": "support@example.com"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/models": {
            "get": {
                "description": "Tickers whose model (trained or placeholder) is cached in the registry",
                "produces": ["application/json"],
                "tags": ["predict"],
                "summary": "List cached models",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ModelsResponse"}}
                }
            }
        },
        "/api/v1/predict": {
            "post": {
                "description": "Returns a 3-day forecast ladder and a BUY/SELL/HOLD recommendation. Always answers with a forecast; degraded results carry source=fallback and a degraded_reason.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["predict"],
                "summary": "Predict a ticker",
                "parameters": [
                    {
                        "description": "Ticker to predict",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/dto.PredictRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "Success", "schema": {"$ref": "#/definitions/dto.PredictResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/v1/predict/{ticker}": {
            "get": {
                "description": "Same as POST /api/v1/predict with the ticker taken from the path",
                "produces": ["application/json"],
                "tags": ["predict"],
                "summary": "Predict a ticker",
                "parameters": [
                    {"type": "string", "example": "AAPL", "description": "Stock ticker", "name": "ticker", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Success", "schema": {"$ref": "#/definitions/dto.PredictResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/healthz": {
            "get": {
                "description": "Always returns OK if the service is running",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/readyz": {
            "get": {
                "description": "Returns ready if the price archive (when enabled) is reachable",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        }
    },
    "definitions": {
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "error_details": {"type": "string", "example": "strconv.ParseFloat: invalid syntax"},
                "message": {"type": "string", "example": "ticker is required"},
                "timestamp": {"type": "string"}
            }
        },
        "dto.ModelsResponse": {
            "type": "object",
            "properties": {
                "count": {"type": "integer", "example": 2},
                "tickers": {"type": "array", "items": {"type": "string"}, "example": ["AAPL", "MSFT"]}
            }
        },
        "dto.PredictRequest": {
            "type": "object",
            "properties": {
                "ticker": {"type": "string", "example": "AAPL"}
            }
        },
        "dto.PredictResponse": {
            "type": "object",
            "properties": {
                "confidence": {"type": "number", "example": 79},
                "current_price": {"type": "number", "example": 100},
                "degraded_reason": {"type": "string", "example": "fetch_data: data_unavailable: no data for symbol"},
                "forecast": {"type": "array", "items": {"$ref": "#/definitions/models.ForecastPoint"}},
                "generated_at": {"type": "string", "example": "2025-09-14T12:00:00Z"},
                "historical": {"type": "array", "items": {"$ref": "#/definitions/models.HistoricalPoint"}},
                "model_ticker": {"type": "string", "example": "AAPL"},
                "percent_change": {"type": "number", "example": 2},
                "predicted_price": {"type": "number", "example": 102},
                "recommendation": {"type": "string", "example": "HOLD"},
                "source": {"type": "string", "example": "model"},
                "ticker": {"type": "string", "example": "AAPL"}
            }
        },
        "models.ForecastPoint": {
            "type": "object",
            "properties": {
                "confidence": {"type": "number", "example": 71.1},
                "date": {"type": "string", "example": "2025-09-15"},
                "percent_change": {"type": "number", "example": 2.2},
                "price": {"type": "number", "example": 103.02},
                "recommendation": {"type": "string", "example": "BUY"}
            }
        },
        "models.HistoricalPoint": {
            "type": "object",
            "properties": {
                "date": {"type": "string", "example": "2025-09-12"},
                "price": {"type": "number", "example": 101.4}
            }
        }
    },
    "tags": [
        {"description": "Stock price forecasts", "name": "predict"},
        {"description": "Liveness and readiness probes", "name": "health"}
    ]
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "stockcast API",
	Description:      "Next-days stock price forecasts with a guaranteed answer.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
