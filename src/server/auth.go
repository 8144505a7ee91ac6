package server

import (
	"net/http"
	"strings"

	"stock-dashboard/src/session"

	"github.com/gin-gonic/gin"
)

const (
	ctxSessionID = "session_id"
	ctxState     = "session_state"
)

// -----------------------------------------------------------------------------
// Session Middleware
// -----------------------------------------------------------------------------

// sessionMiddleware resolves the session cookie. Requests without a live
// session run on the default state and no session is stored for them until a
// handler saves state.
func (s *DashboardServer) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, err := c.Cookie(s.Config.Auth.CookieName); err == nil && id != "" {
			if st, ok := s.Sessions.Get(id); ok {
				c.Set(ctxSessionID, id)
				c.Set(ctxState, st)
				c.Next()
				return
			}
		}
		c.Set(ctxState, s.Sessions.Defaults())
		c.Next()
	}
}

func (s *DashboardServer) setCookie(c *gin.Context, id string) {
	maxAge := int(s.Sessions.TTL.Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.Config.Auth.CookieName, id, maxAge, "/", "", false, true)
}

// -----------------------------------------------------------------------------

// requireAuth lets only authenticated sessions through. Pages redirect to the
// login form, API and websocket callers get 401.
func (s *DashboardServer) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if st := currentState(c); st.Authenticated {
			c.Next()
			return
		}
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/") || path == "/ws" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "access_denied",
				"message": "login required",
			})
			return
		}
		c.Redirect(http.StatusSeeOther, "/login")
		c.Abort()
	}
}

// -----------------------------------------------------------------------------

func currentState(c *gin.Context) session.State {
	if v, ok := c.Get(ctxState); ok {
		if st, ok := v.(session.State); ok {
			return st
		}
	}
	return session.State{}
}

// saveState stores the next state for this request's session, starting a
// session first when the request has none.
func (s *DashboardServer) saveState(c *gin.Context, st session.State) {
	id := c.GetString(ctxSessionID)
	if id == "" {
		var err error
		if id, err = s.startSession(c); err != nil {
			s.Logger.Error("Failed to create session: %v", err)
			return
		}
	}
	if err := s.Sessions.Save(id, st); err != nil {
		s.Logger.Warning("Failed to save session state: %v", err)
		return
	}
	c.Set(ctxState, st)
}

// startSession creates a session, sets its cookie and binds it to the request.
func (s *DashboardServer) startSession(c *gin.Context) (string, error) {
	id, _, err := s.Sessions.Create()
	if err != nil {
		return "", err
	}
	s.setCookie(c, id)
	c.Set(ctxSessionID, id)
	return id, nil
}

// -----------------------------------------------------------------------------
// Login / Logout
// -----------------------------------------------------------------------------

func (s *DashboardServer) getLogin(c *gin.Context) {
	st := currentState(c)
	if st.Authenticated {
		c.Redirect(http.StatusSeeOther, "/stock")
		return
	}
	s.render(c, http.StatusOK, "login.html", pageData{
		Title:  "Login",
		Screen: string(session.ScreenLogin),
		Error:  loginError(c.Query("error")),
	})
}

func loginError(code string) string {
	if code == "denied" {
		return "Access denied. Incorrect password."
	}
	return ""
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) postLogin(c *gin.Context) {
	st := currentState(c)
	next, err := st.Authenticate(c.PostForm("password"), s.Config.Auth.Password)
	if err != nil {
		s.Logger.Warning("Rejected login attempt from %s", c.ClientIP())
		c.Redirect(http.StatusSeeOther, "/login?error=denied")
		return
	}

	// Rotate the session id on privilege change
	if oldID := c.GetString(ctxSessionID); oldID != "" {
		s.Sessions.Delete(oldID)
	}
	if _, err := s.startSession(c); err != nil {
		s.Logger.Error("Failed to create session: %v", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	s.saveState(c, next)

	s.Logger.Info("Login from %s", c.ClientIP())
	c.Redirect(http.StatusSeeOther, "/stock")
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getLogout(c *gin.Context) {
	if c.GetString(ctxSessionID) != "" {
		s.saveState(c, currentState(c).Logout())
	}
	c.Redirect(http.StatusSeeOther, "/login")
}
