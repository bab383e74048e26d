package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/dragonlog/internal/auth"
	"github.com/julianstephens/dragonlog/internal/models"
	"github.com/julianstephens/dragonlog/internal/progress"
)

type loginRequest struct {
	ID       string `json:"id" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expires_at"`
	User      models.UserProfile `json:"user"`
}

type toggleRequest struct {
	SectionID string `json:"section_id" binding:"required"`
	ItemID    string `json:"item_id" binding:"required"`
}

type toggleResponse struct {
	Checklist models.DailyInstance `json:"checklist"`
	Changed   bool                 `json:"changed"`
}

type streakResponse struct {
	Streak   int                 `json:"streak"`
	Longest  int                 `json:"longest"`
	Progress progress.Projection `json:"progress"`
}

func (s *Server) handleHealth(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleRegister(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if req.GoalDays == 0 {
		req.GoalDays = s.cfg.DefaultGoalDays
	}

	sess := s.newSession()
	user, err := sess.Register(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}

	token, expires, err := s.tokens.Issue(user.ID)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, tokenResponse{Token: token, ExpiresAt: expires, User: user})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	sess := s.newSession()
	user, err := sess.Login(c.Request.Context(), req.ID, req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	token, expires, err := s.tokens.Issue(user.ID)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, tokenResponse{Token: token, ExpiresAt: expires, User: user})
}

func (s *Server) handleMe(c *gin.Context) {
	user, _ := sessionFrom(c).User()
	success(c, user)
}

func (s *Server) handleGetTemplate(c *gin.Context) {
	tmpl, err := sessionFrom(c).Template()
	if err != nil {
		fail(c, err)
		return
	}
	success(c, tmpl)
}

func (s *Server) handlePutTemplate(c *gin.Context) {
	var tmpl models.Template
	if err := c.ShouldBindJSON(&tmpl); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	saved, err := sessionFrom(c).SaveTemplate(c.Request.Context(), tmpl)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, saved)
}

// dateParam resolves the :date path segment; "today" means the server's today
func dateParam(c *gin.Context) string {
	date := c.Param("date")
	if date == "today" {
		return sessionFrom(c).Today()
	}
	return date
}

func (s *Server) handleGetChecklist(c *gin.Context) {
	inst, err := sessionFrom(c).EnsureDailyChecklist(c.Request.Context(), dateParam(c))
	if err != nil {
		fail(c, err)
		return
	}
	success(c, inst)
}

func (s *Server) handleToggle(c *gin.Context) {
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "section_id and item_id are required")
		return
	}

	inst, changed, err := sessionFrom(c).ToggleItem(c.Request.Context(), dateParam(c), req.SectionID, req.ItemID)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, toggleResponse{Checklist: inst, Changed: changed})
}

func (s *Server) handleStreak(c *gin.Context) {
	sess := sessionFrom(c)
	proj, err := sess.Progress(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	longest, err := sess.LongestStreak()
	if err != nil {
		fail(c, err)
		return
	}
	success(c, streakResponse{Streak: proj.Streak, Longest: longest, Progress: proj})
}

// limitParam reads ?limit=, returning 0 when absent
func limitParam(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		badRequest(c, "limit must be a non-negative integer")
		return 0, false
	}
	return n, true
}

func (s *Server) handleLogs(c *gin.Context) {
	limit, ok := limitParam(c)
	if !ok {
		return
	}
	entries, err := sessionFrom(c).Logs(c.Request.Context(), limit)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, entries)
}

func (s *Server) handleStats(c *gin.Context) {
	limit, ok := limitParam(c)
	if !ok {
		return
	}
	stats, err := sessionFrom(c).Statistics(c.Request.Context(), limit)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, stats)
}
