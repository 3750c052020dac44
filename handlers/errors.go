package handlers

import (
	"log"
	"net/http"

	"github.com/ansel1/merry/v2"
	"github.com/gin-gonic/gin"
)

// respondError writes err with the HTTP code it carries, 500 otherwise.
func respondError(c *gin.Context, err error) {
	code := merry.HTTPCode(err)
	if code == http.StatusInternalServerError {
		log.Printf("[HTTP] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(code, gin.H{"error": err.Error()})
}
