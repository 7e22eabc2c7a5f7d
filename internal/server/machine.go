package server

import (
	"github.com/gin-gonic/gin"
	machinedomain "github.com/plantdesklabs/plantdesk/internal/machine/domain"
)

// @Summary      List machines
// @Tags         machines
// @Produce      json
// @Router       /machines [get]
func (s *Server) ListMachines(c *gin.Context) {
	machines, err := s.machineSvc.List(c.Request.Context())
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	respondData(c, machines)
}

// @Summary      Get machine
// @Tags         machines
// @Produce      json
// @Router       /machines/{id} [get]
func (s *Server) GetMachine(c *gin.Context) {
	m, err := s.machineSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	respondData(c, m)
}

// @Summary      Create machine
// @Tags         machines
// @Accept       json
// @Produce      json
// @Router       /machines [post]
func (s *Server) CreateMachine(c *gin.Context) {
	var req machinedomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c)
		return
	}

	m, err := s.machineSvc.Create(c.Request.Context(), req)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	respondCreated(c, m)
}

// @Summary      Update machine
// @Tags         machines
// @Accept       json
// @Produce      json
// @Router       /machines/{id} [put]
func (s *Server) UpdateMachine(c *gin.Context) {
	var req machinedomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c)
		return
	}

	m, err := s.machineSvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	respondData(c, m)
}

// @Summary      Delete machine
// @Tags         machines
// @Produce      json
// @Router       /machines/{id} [delete]
func (s *Server) DeleteMachine(c *gin.Context) {
	if err := s.machineSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.abortWithError(c, err)
		return
	}
	respondMessage(c, "Machine removed")
}
