package httpapi

import (
	"net/http"
	"strings"
	"time"

	"trade-journal/internal/domain/journal"

	"github.com/gin-gonic/gin"
)

type tradeRequest struct {
	Pair            string  `json:"pair"`
	Date            string  `json:"date"`
	Day             string  `json:"day"`
	Action          string  `json:"action"`
	Direction       string  `json:"direction"`
	MarketCondition string  `json:"market_condition"`
	EntryPrice      float64 `json:"entry_price"`
	ExitPrice       float64 `json:"exit_price"`
	LotSize         float64 `json:"lot_size"`
	ProfitLoss      float64 `json:"profit_loss"`
	Pivots          string  `json:"pivots"`
	BankingLevel    string  `json:"banking_level"`
	MA              string  `json:"ma"`
	Fib             string  `json:"fib"`
	TopBobFv        string  `json:"top_bob_fv"`
	Notes           string  `json:"notes"`
}

func (r tradeRequest) toTrade() (journal.Trade, error) {
	var date time.Time
	if strings.TrimSpace(r.Date) != "" {
		d, err := parseDate(r.Date)
		if err != nil {
			return journal.Trade{}, err
		}
		date = d
	}
	return journal.Trade{
		Pair:            r.Pair,
		Date:            date,
		Day:             r.Day,
		Action:          journal.Action(r.Action),
		Direction:       journal.Direction(r.Direction),
		MarketCondition: r.MarketCondition,
		EntryPrice:      r.EntryPrice,
		ExitPrice:       r.ExitPrice,
		LotSize:         r.LotSize,
		ProfitLoss:      r.ProfitLoss,
		Pivots:          r.Pivots,
		BankingLevel:    r.BankingLevel,
		MA:              r.MA,
		Fib:             r.Fib,
		TopBobFv:        r.TopBobFv,
		Notes:           r.Notes,
	}, nil
}

func bindTrade(c *gin.Context) (journal.Trade, bool) {
	var body tradeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, errCodeBadRequest, "invalid body")
		return journal.Trade{}, false
	}
	t, err := body.toTrade()
	if err != nil {
		respondError(c, http.StatusBadRequest, errCodeBadRequest, err.Error())
		return journal.Trade{}, false
	}
	return t, true
}

func (s *Server) handleListTrades(c *gin.Context) {
	from, err := parseOptionalDate(c, "start_date")
	if err != nil {
		respondError(c, http.StatusBadRequest, errCodeBadRequest, err.Error())
		return
	}
	to, err := parseOptionalDate(c, "end_date")
	if err != nil {
		respondError(c, http.StatusBadRequest, errCodeBadRequest, err.Error())
		return
	}

	trades, err := s.journalUC.List(c.Request.Context(), journal.Filter{
		UserID:          currentUserID(c),
		Pair:            c.Query("pair"),
		MarketCondition: c.Query("market_condition"),
		From:            from,
		To:              to,
		Limit:           parseIntDefault(c.Query("limit"), 0),
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if trades == nil {
		trades = []journal.Trade{}
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"trades":  trades,
		"total":   len(trades),
	})
}

func (s *Server) handleCreateTrade(c *gin.Context) {
	t, ok := bindTrade(c)
	if !ok {
		return
	}
	created, err := s.journalUC.Create(c.Request.Context(), currentUserID(c), t)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "trade": created})
}

func (s *Server) handleGetTrade(c *gin.Context) {
	t, err := s.journalUC.Get(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "trade": t})
}

func (s *Server) handleUpdateTrade(c *gin.Context) {
	t, ok := bindTrade(c)
	if !ok {
		return
	}
	updated, err := s.journalUC.Update(c.Request.Context(), currentUserID(c), c.Param("id"), t)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "trade": updated})
}

func (s *Server) handleDeleteTrade(c *gin.Context) {
	if err := s.journalUC.Delete(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
