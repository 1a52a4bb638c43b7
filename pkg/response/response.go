package response

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the JSON shape of every failed request.
type ErrorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Success sends a 200 response with "success": true merged into fields.
func Success(c *gin.Context, fields gin.H) {
	JSON(c, http.StatusOK, true, fields)
}

// JSON sends fields with the given status and success flag.
func JSON(c *gin.Context, status int, success bool, fields gin.H) {
	body := gin.H{"success": success}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(status, body)
}

// Error sends an error response.
func Error(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, ErrorBody{Error: message})
}

// ErrorWithDetails sends an error response carrying extra detail. Callers
// decide whether the detail is safe to expose.
func ErrorWithDetails(c *gin.Context, statusCode int, message, details string) {
	c.JSON(statusCode, ErrorBody{Error: message, Details: details})
}

// BadRequest sends a 400 error response.
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized sends a 401 error response.
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

// NotFound sends a 404 error response.
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// InternalError sends a 500 error response.
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// NoRoute answers unknown paths with the JSON error envelope.
func NoRoute(c *gin.Context) {
	NotFound(c, "Endpoint not found")
}

// Recovery converts panics into the JSON error envelope. The panic value
// is only echoed when exposeDetails is set.
func Recovery(exposeDetails bool) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		message := "Something went wrong"
		if exposeDetails {
			message = fmt.Sprint(recovered)
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Internal server error",
			"message": message,
		})
	})
}
