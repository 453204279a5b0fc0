package http

import (
	"net/http"

	"book-order-service/internal/domain"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	sess, err := h.admin.Login(req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, sess.ID, int(h.sessionTTL.Seconds()), "/", "", c.Request.TLS != nil, true)
	c.JSON(http.StatusOK, LoginResponse{Success: true, ExpiresAt: sess.ExpiresAt})
}

func (h *Handler) Logout(c *gin.Context) {
	if sid, err := c.Cookie(sessionCookie); err == nil {
		h.admin.Logout(sid)
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, "", -1, "/", "", c.Request.TLS != nil, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// requireAdmin rejects requests without a live session cookie before any
// body is read.
func (h *Handler) requireAdmin(c *gin.Context) {
	sid, _ := c.Cookie(sessionCookie)
	if _, err := h.admin.Authenticate(sid); err != nil {
		writeError(c, err)
		c.Abort()
		return
	}
	c.Set(sessionCookie, sid)
	c.Next()
}

func (h *Handler) GetSettings(c *gin.Context) {
	setting, err := h.admin.Settings(c.Request.Context(), c.GetString(sessionCookie))
	if err != nil {
		writeError(c, err)
		return
	}

	resp := SettingsResponse{YoutubeURL: setting.YoutubeURL}
	if !setting.UpdatedAt.IsZero() {
		resp.UpdatedAt = &setting.UpdatedAt
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	setting, n, err := h.admin.UpdateVideoURL(c.Request.Context(), c.GetString(sessionCookie), req.YoutubeURL)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, SettingsResponse{
		YoutubeURL:  setting.YoutubeURL,
		UpdatedAt:   &setting.UpdatedAt,
		Connections: &n,
	})
}

func (h *Handler) AdvanceOrder(c *gin.Context) {
	var req AdvanceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	order, err := h.admin.AdvanceOrder(c.Request.Context(), c.GetString(sessionCookie), c.Param("id"), domain.OrderStatus(req.Status))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
