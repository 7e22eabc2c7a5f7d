package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	machinedomain "github.com/plantdesklabs/plantdesk/internal/machine/domain"
	rentaldomain "github.com/plantdesklabs/plantdesk/internal/rental/domain"
	"go.uber.org/zap"
)

// abortWithError is the single translation point from the domain error
// taxonomy to HTTP. 404 not-found, 400 business rule or bad input, 500
// everything else.
func (s *Server) abortWithError(c *gin.Context, err error) {
	status, message := classify(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString("request_id")),
			zap.Error(err),
		)
	}
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, machinedomain.ErrMachineNotFound):
		return http.StatusNotFound, "Machine not found"
	case errors.Is(err, rentaldomain.ErrRentalNotFound):
		return http.StatusNotFound, "Rental not found"
	case errors.Is(err, machinedomain.ErrOutOfStock):
		return http.StatusBadRequest, "Machine out of stock"
	case errors.Is(err, rentaldomain.ErrInvalidCustomer):
		return http.StatusBadRequest, "Customer name is required"
	case errors.Is(err, rentaldomain.ErrInvalidDate):
		return http.StatusBadRequest, "Invalid start date"
	case errors.Is(err, rentaldomain.ErrInvalidRate):
		return http.StatusBadRequest, "Invalid monthly rate"
	case errors.Is(err, machinedomain.ErrInvalidName):
		return http.StatusBadRequest, "Machine name is required"
	case errors.Is(err, machinedomain.ErrInvalidStock):
		return http.StatusBadRequest, "Invalid stock"
	case errors.Is(err, machinedomain.ErrInvalidID), errors.Is(err, rentaldomain.ErrInvalidID):
		return http.StatusBadRequest, "Invalid id"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func invalidRequest(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
}
