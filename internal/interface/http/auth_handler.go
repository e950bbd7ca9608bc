package httpapi

import (
	"errors"
	"log"
	"net/http"
	"time"

	"trade-journal/internal/application/auth"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleLogin(c *gin.Context) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, errCodeBadRequest, "invalid body")
		return
	}

	res, err := s.loginUC.Execute(c.Request.Context(), auth.LoginInput{
		Email:     body.Email,
		Password:  body.Password,
		UserAgent: c.GetHeader("User-Agent"),
		IP:        c.ClientIP(),
	})
	if err != nil {
		log.Printf("[Auth] login failure email=%s err=%v", body.Email, err)
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			respondError(c, http.StatusUnauthorized, errCodeInvalidCredentials, "invalid email or password")
		case errors.Is(err, auth.ErrUserInactive):
			respondError(c, http.StatusForbidden, errCodeForbidden, "account disabled")
		default:
			respondError(c, http.StatusInternalServerError, errCodeInternal, "login failed")
		}
		return
	}

	s.setRefreshCookie(c, res.Token.RefreshToken, res.Token.RefreshExpiry)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user": gin.H{
			"id":    res.User.ID,
			"email": res.User.Email,
			"name":  res.User.Name,
			"role":  res.User.Role,
		},
		"access_token": res.Token.AccessToken,
		"token_type":   "Bearer",
		"expiry":       res.Token.AccessExpiry.Format(time.RFC3339),
	})
}

// refreshTokenFrom 先讀 cookie，沒有再讀 JSON body。
func refreshTokenFrom(c *gin.Context) string {
	if t, err := c.Cookie(refreshCookieName); err == nil && t != "" {
		return t
	}
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.ShouldBindJSON(&body); err == nil {
		return body.RefreshToken
	}
	return ""
}

func (s *Server) handleRefresh(c *gin.Context) {
	refreshToken := refreshTokenFrom(c)
	if refreshToken == "" {
		respondError(c, http.StatusUnauthorized, errCodeUnauthorized, "refresh token missing")
		return
	}

	res, err := s.refreshUC.Execute(c.Request.Context(), refreshToken)
	if err != nil {
		respondError(c, http.StatusUnauthorized, errCodeUnauthorized, "invalid refresh token")
		return
	}

	s.setRefreshCookie(c, res.RefreshToken, res.RefreshExpiry)

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"access_token": res.AccessToken,
		"token_type":   "Bearer",
		"expiry":       res.AccessExpiry.Format(time.RFC3339),
	})
}

func (s *Server) handleLogout(c *gin.Context) {
	if refreshToken := refreshTokenFrom(c); refreshToken != "" {
		if err := s.logoutUC.Execute(c.Request.Context(), refreshToken); err != nil {
			log.Printf("[Auth] logout revoke failed: %v", err)
		}
	}

	c.SetCookie(refreshCookieName, "", -1, "/api/auth", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleMe(c *gin.Context) {
	user, err := s.authRepo.FindByID(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, http.StatusUnauthorized, errCodeUnauthorized, "unknown user")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
			"role":  user.Role,
		},
	})
}
