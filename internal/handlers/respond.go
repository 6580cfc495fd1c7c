package handlers

import (
	"log"
	"net/http"

	"go-taller/internal/apperr"

	"github.com/gin-gonic/gin"
)

// fail funnels every service error through the taxonomy. Unexpected errors
// are logged with full detail and the client only sees a generic message.
func fail(c *gin.Context, err error) {
	if e, ok := apperr.As(err); ok {
		body := gin.H{"error": e.Message, "code": e.Code}
		if e.Details != nil {
			body["details"] = e.Details
		}
		c.JSON(apperr.HTTPStatus(e), body)
		return
	}
	log.Printf("internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "Error interno del servidor",
		"code":  apperr.CodeInternal,
	})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "code": apperr.CodeInvalidInput})
}

func userID(c *gin.Context) uint {
	return c.MustGet("userID").(uint)
}
