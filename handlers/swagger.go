package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>crowdup-api Swagger</title>
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

// Minimal OpenAPI document describing the session and post endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "crowdup-api", "version": "v1.0.0" },
  "paths": {
    "/api/auth/login": {
      "post": {
        "summary": "Log in with username or email",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","required":["usernameOrEmail","password"],"properties":{"usernameOrEmail":{"type":"string"},"password":{"type":"string"}}}}}},
        "responses": { "200": { "description": "user returned, session cookies set" }, "400": { "description": "invalid body" }, "401": { "description": "invalid credentials" } }
      }
    },
    "/api/auth/logout": {
      "post": { "summary": "Revoke the session and clear cookies", "responses": { "200": { "description": "logged out" } } }
    },
    "/api/auth/refresh": {
      "post": { "summary": "Rotate the refresh cookie", "responses": { "200": { "description": "new cookies set" }, "401": { "description": "invalid token" } } }
    },
    "/api/auth/me": {
      "get": { "summary": "Current user or null", "responses": { "200": { "description": "user or null" } } }
    },
    "/api/auth/change-password": {
      "post": {
        "summary": "Change the caller's password",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","required":["currentPassword","newPassword"],"properties":{"currentPassword":{"type":"string"},"newPassword":{"type":"string"}}}}}},
        "responses": { "200": { "description": "changed" }, "400": { "description": "wrong current password or weak new password" }, "401": { "description": "unauthenticated" }, "404": { "description": "user not found" }, "500": { "description": "internal error" } }
      }
    },
    "/api/auth/oauth/start": {
      "get": { "summary": "Redirect to the OAuth provider", "responses": { "302": { "description": "redirect" }, "500": { "description": "oauth not configured" } } }
    },
    "/api/posts": {
      "get": { "summary": "List posts", "responses": { "200": { "description": "posts" } } },
      "post": { "summary": "Create a post", "responses": { "201": { "description": "created" }, "401": { "description": "unauthenticated" }, "403": { "description": "origin not allowed" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
