package api

import (
	"log"
	"net/http"

	"blueme/pkg/apperr"

	"github.com/gin-gonic/gin"
)

// fail writes the error with its mapped status. Internal causes are logged
// and hidden behind a generic message.
func fail(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("Internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": apperr.UserMessage(err)})
}
