package httpapi

import (
	"fmt"
	"net/http"

	analyticsDomain "trade-journal/internal/domain/analytics"

	"github.com/gin-gonic/gin"
)

func (s *Server) analyticsOptions(c *gin.Context) (analyticsDomain.Options, bool) {
	opts, err := parseAnalyticsOptions(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, errCodeBadRequest, err.Error())
		return opts, false
	}
	return opts, true
}

func (s *Server) handleOverview(c *gin.Context) {
	opts, ok := s.analyticsOptions(c)
	if !ok {
		return
	}
	ov, err := s.analyticsUC.Overview(c.Request.Context(), currentUserID(c), opts)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "overview": ov})
}

func (s *Server) handleEquity(c *gin.Context) {
	opts, ok := s.analyticsOptions(c)
	if !ok {
		return
	}
	points, err := s.analyticsUC.Equity(c.Request.Context(), currentUserID(c), opts)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if points == nil {
		points = []analyticsDomain.EquityPoint{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "equity": points})
}

func (s *Server) handleDashboard(c *gin.Context) {
	opts, ok := s.analyticsOptions(c)
	if !ok {
		return
	}
	dash, err := s.analyticsUC.Dashboard(c.Request.Context(), currentUserID(c), opts)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "dashboard": dash})
}

func (s *Server) handleDimension(c *gin.Context) {
	dim := analyticsDomain.Dimension(c.Param("dimension"))
	if !dim.Valid() {
		respondError(c, http.StatusNotFound, errCodeNotFound, fmt.Sprintf("unknown dimension %q", dim))
		return
	}
	opts, ok := s.analyticsOptions(c)
	if !ok {
		return
	}
	rows, err := s.analyticsUC.Query(c.Request.Context(), currentUserID(c), dim, opts)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if rows == nil {
		rows = []analyticsDomain.GroupSummary{}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"dimension": dim,
		"groups":    rows,
	})
}

func (s *Server) handleExportDimension(c *gin.Context) {
	dim := analyticsDomain.Dimension(c.Param("dimension"))
	if !dim.Valid() {
		respondError(c, http.StatusNotFound, errCodeNotFound, fmt.Sprintf("unknown dimension %q", dim))
		return
	}
	opts, ok := s.analyticsOptions(c)
	if !ok {
		return
	}
	out, err := s.reportsUC.ExportDimensionCSV(c.Request.Context(), currentUserID(c), dim, opts)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", dim))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(out))
}
