package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the widget host.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg gin.IRouter) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>auth-widget - Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "auth-widget", "version": "v0.1.0" },
  "components": {
    "schemas": {
      "Credentials": { "type": "object", "properties": { "email": { "type": "string" }, "password": { "type": "string" } } }
    }
  },
  "paths": {
    "/session/login": {
      "post": {
        "summary": "Log in with email and password",
        "requestBody": { "content": { "application/json": { "schema": { "$ref": "#/components/schemas/Credentials" } } } },
        "responses": { "200": { "description": "logged in" }, "401": { "description": "rejected by the identity service" }, "429": { "description": "rate limited" }, "502": { "description": "identity service unreachable" } }
      }
    },
    "/session/register": {
      "post": {
        "summary": "Create an account (no session is started)",
        "requestBody": { "content": { "application/json": { "schema": { "$ref": "#/components/schemas/Credentials" } } } },
        "responses": { "200": { "description": "verification message" }, "409": { "description": "rejected by the identity service" } }
      }
    },
    "/session/refresh": { "post": { "summary": "Refresh the access token now", "responses": { "200": { "description": "refreshed" }, "401": { "description": "session expired" } } } },
    "/session/logout": { "post": { "summary": "End the session locally", "responses": { "200": { "description": "logged out" } } } },
    "/session/token": { "get": { "summary": "Current access token", "responses": { "200": { "description": "token" }, "401": { "description": "not logged in" } } } },
    "/session/state": { "get": { "summary": "Session state, next refresh and last notice", "responses": { "200": { "description": "state" } } } },
    "/session/oauth/{provider}": {
      "get": {
        "summary": "Redirect to a third-party login provider",
        "parameters": [ { "name": "provider", "in": "path", "required": true, "schema": { "type": "string" } } ],
        "responses": { "302": { "description": "redirect" } }
      }
    },
    "/session/me": { "get": { "summary": "Claims of the current access token", "responses": { "200": { "description": "claims" }, "401": { "description": "not logged in" } } } },
    "/widget": { "get": { "summary": "Labels for the current form mode", "responses": { "200": { "description": "view" } } } },
    "/widget/toggle": { "post": { "summary": "Switch between login and signup", "responses": { "200": { "description": "view" } } } },
    "/widget/submit": {
      "post": {
        "summary": "Submit the form in its current mode",
        "requestBody": { "content": { "application/json": { "schema": { "$ref": "#/components/schemas/Credentials" } } } },
        "responses": { "200": { "description": "status and view" } }
      }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "metrics" } } } }
  }
}`
