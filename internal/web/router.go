// Package web serves the DestinyMatch screens and the checkout endpoints
// the PayPal buttons call.
package web

import (
	"fmt"
	"net/http"

	"github.com/BerylCAtieno/destiny-match/internal/logging"
	"github.com/BerylCAtieno/destiny-match/internal/session"
	"github.com/gin-gonic/gin"
)

const (
	cookieName = "destinymatch_session"
	sessionCtx = "session"
)

// NewRouter builds the gin engine with logging, templates and every route.
func NewRouter(h *Handler) (*gin.Engine, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	r := gin.New()
	r.Use(logging.GinRecovery(h.logger), logging.GinLogger(h.logger))
	r.SetHTMLTemplate(tmpl)

	r.GET("/health", h.Health)

	s := r.Group("/", h.withSession)
	s.GET("/", h.Index)
	s.POST("/start", h.Start)
	s.POST("/profiles", h.SubmitProfiles)
	s.POST("/reset", h.Reset)
	s.GET("/report.md", h.ReportMarkdown)
	s.GET("/api/session", h.SessionJSON)

	pay := s.Group("/payment")
	pay.GET("/ready", h.PaymentReady)
	pay.POST("/orders", h.CreateOrder)
	pay.POST("/orders/:id/capture", h.CaptureOrder)
	pay.POST("/error", h.PaymentError)
	pay.POST("/cancel", h.CancelPayment)

	return r, nil
}

// withSession attaches the visitor's session, creating one and setting the
// cookie when the request carries none or an expired id.
func (h *Handler) withSession(c *gin.Context) {
	var sess *session.Session
	if id, err := c.Cookie(cookieName); err == nil {
		sess, _ = h.store.Get(id)
	}
	if sess == nil {
		sess = h.store.Create()
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cookieName, sess.ID, 0, "/", "", h.secureCookie || c.Request.TLS != nil, true)
	}

	c.Set(sessionCtx, sess)
	c.Set(logging.SessionKey, sess.ID)
	c.Next()
}

func current(c *gin.Context) *session.Session {
	return c.MustGet(sessionCtx).(*session.Session)
}
