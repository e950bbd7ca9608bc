package httpapi

import (
	"net/http"

	"trade-journal/internal/application/calculator"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleCompound(c *gin.Context) {
	var in calculator.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, errCodeBadRequest, "invalid body")
		return
	}
	proj, err := calculator.Project(in)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "projection": proj})
}
