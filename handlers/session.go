package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	autherrors "github.com/gogotex/gogotex/backend/auth-widget/internal/errors"
	"github.com/gogotex/gogotex/backend/auth-widget/internal/events"
	"github.com/gogotex/gogotex/backend/auth-widget/internal/session"
	"github.com/gogotex/gogotex/backend/auth-widget/internal/widget"
	"github.com/gogotex/gogotex/backend/auth-widget/pkg/logger"
	"github.com/gogotex/gogotex/backend/auth-widget/pkg/middleware"
)

// CredentialsRequest is the body of login, register and widget submit.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// NoticeBoard keeps the last notice emitted by the controller so the page can
// show it. Pass Post to session.WithNotifier.
type NoticeBoard struct {
	mu   sync.Mutex
	last *session.Notice
}

func (b *NoticeBoard) Post(n session.Notice) {
	b.mu.Lock()
	b.last = &n
	b.mu.Unlock()
}

func (b *NoticeBoard) Last() *session.Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}

// SessionHandler exposes the session controller and the widget form over HTTP.
type SessionHandler struct {
	ctrl     *session.Controller
	form     *widget.Form
	verifier middleware.Verifier
	notices  *NoticeBoard

	tokenMu     sync.Mutex
	lastTokenAt time.Time
}

func NewSessionHandler(ctrl *session.Controller, form *widget.Form, ver middleware.Verifier, notices *NoticeBoard) *SessionHandler {
	if notices == nil {
		notices = &NoticeBoard{}
	}
	h := &SessionHandler{ctrl: ctrl, form: form, verifier: ver, notices: notices}
	ctrl.Subscribe(events.Func(h.tokenChanged))
	return h
}

func (h *SessionHandler) tokenChanged(string) {
	h.tokenMu.Lock()
	h.lastTokenAt = time.Now()
	h.tokenMu.Unlock()
}

// Register mounts /session and /widget. limit, when non-nil, guards the
// endpoints that send credentials.
func (h *SessionHandler) Register(r gin.IRouter, limit gin.HandlerFunc) {
	guard := func(hf gin.HandlerFunc) []gin.HandlerFunc {
		if limit == nil {
			return []gin.HandlerFunc{hf}
		}
		return []gin.HandlerFunc{limit, hf}
	}

	s := r.Group("/session")
	s.POST("/login", guard(h.Login)...)
	s.POST("/register", guard(h.SignUp)...)
	s.POST("/refresh", h.Refresh)
	s.POST("/logout", h.Logout)
	s.GET("/token", h.Token)
	s.GET("/state", h.State)
	s.GET("/oauth/:provider", h.OAuth)
	s.GET("/me", middleware.RequireSession(h.ctrl, h.verifier), h.Me)

	w := r.Group("/widget")
	w.GET("", h.View)
	w.POST("/toggle", h.Toggle)
	w.POST("/submit", guard(h.Submit)...)
}

func (h *SessionHandler) Login(c *gin.Context) {
	var req CredentialsRequest
	if !bindCredentials(c, &req) {
		return
	}
	if err := h.ctrl.Login(c.Request.Context(), req.Email, req.Password); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": session.MsgLoginSuccess, "state": h.ctrl.State().String()})
}

// SignUp creates an account. No session is started.
func (h *SessionHandler) SignUp(c *gin.Context) {
	var req CredentialsRequest
	if !bindCredentials(c, &req) {
		return
	}
	msg, err := h.ctrl.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

func (h *SessionHandler) Refresh(c *gin.Context) {
	if err := h.ctrl.Refresh(c.Request.Context()); err != nil {
		if autherrors.Is(err, autherrors.ErrSessionChanged) && h.ctrl.State() == session.LoggedOut {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
			return
		}
		writeError(c, err)
		return
	}
	next, _ := h.ctrl.NextRefresh()
	c.JSON(http.StatusOK, gin.H{"state": h.ctrl.State().String(), "nextRefresh": next})
}

func (h *SessionHandler) Logout(c *gin.Context) {
	h.ctrl.Logout(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": session.MsgLoggedOut})
}

func (h *SessionHandler) Token(c *gin.Context) {
	tok := h.ctrl.AccessToken(c.Request.Context())
	if tok == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"accessToken": tok})
}

func (h *SessionHandler) State(c *gin.Context) {
	resp := gin.H{"state": h.ctrl.State().String()}
	if next, ok := h.ctrl.NextRefresh(); ok {
		resp["nextRefresh"] = next
	}
	h.tokenMu.Lock()
	if !h.lastTokenAt.IsZero() {
		resp["tokenChangedAt"] = h.lastTokenAt
	}
	h.tokenMu.Unlock()
	if n := h.notices.Last(); n != nil {
		resp["notice"] = gin.H{"message": n.Message, "isError": n.IsError()}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SessionHandler) OAuth(c *gin.Context) {
	c.Redirect(http.StatusFound, h.ctrl.BeginOAuth(c.Param("provider")))
}

func (h *SessionHandler) Me(c *gin.Context) {
	claims, _ := c.Get(middleware.ClaimsKey)
	c.JSON(http.StatusOK, gin.H{"claims": claims})
}

func (h *SessionHandler) View(c *gin.Context) {
	c.JSON(http.StatusOK, h.form.View())
}

func (h *SessionHandler) Toggle(c *gin.Context) {
	c.JSON(http.StatusOK, h.form.Toggle())
}

func (h *SessionHandler) Submit(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st := h.form.Submit(c.Request.Context(), h.ctrl, req.Email, req.Password)
	c.JSON(http.StatusOK, gin.H{"status": st, "view": h.form.View()})
}

func bindCredentials(c *gin.Context, req *CredentialsRequest) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	if req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": widget.MsgMissingFields})
		return false
	}
	return true
}

// statusFor maps session errors to HTTP statuses.
func statusFor(err error) int {
	var rej *autherrors.RejectedError
	switch {
	case autherrors.Is(err, autherrors.ErrSessionChanged):
		return http.StatusConflict
	case autherrors.Is(err, autherrors.ErrSessionExpired), autherrors.Is(err, autherrors.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case autherrors.As(err, &rej):
		if rej.Status >= 400 && rej.Status < 500 {
			return rej.Status
		}
		return http.StatusBadGateway
	case autherrors.Is(err, autherrors.ErrNetwork), autherrors.Is(err, autherrors.ErrMalformedResponse):
		return http.StatusBadGateway
	case autherrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": autherrors.UserMessage(err)})
}
