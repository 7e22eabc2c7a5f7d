package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// The API contract returns entities bare and errors as {"message": ...}.

func respondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"message": message})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

func respondData(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}
