package web

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/BerylCAtieno/destiny-match/internal/analysis"
	"github.com/BerylCAtieno/destiny-match/internal/models"
	"github.com/BerylCAtieno/destiny-match/internal/payment"
	"github.com/BerylCAtieno/destiny-match/internal/report"
	"github.com/BerylCAtieno/destiny-match/internal/session"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const configErrorNotice = "Readings are unavailable: the analysis service is not configured."

type Options struct {
	Store    *session.Store
	Provider payment.Provider
	Gate     payment.GateConfig

	// PayPalClientID is the public client id loaded by the checkout script.
	PayPalClientID string
	// AnalysisReady is false when no generative AI key is configured.
	AnalysisReady bool
	// SecureCookie marks the session cookie Secure even on plain HTTP, for
	// deployments behind a TLS-terminating proxy.
	SecureCookie bool
}

type Handler struct {
	store          *session.Store
	provider       payment.Provider
	gateCfg        payment.GateConfig
	paypalClientID string
	analysisReady  bool
	secureCookie   bool
	logger         *zap.Logger
}

func NewHandler(opts Options, logger *zap.Logger) *Handler {
	return &Handler{
		store:          opts.Store,
		provider:       opts.Provider,
		gateCfg:        opts.Gate,
		paypalClientID: opts.PayPalClientID,
		analysisReady:  opts.AnalysisReady,
		secureCookie:   opts.SecureCookie,
		logger:         logger.Named("web"),
	}
}

// Index renders whichever screen the session is on.
func (h *Handler) Index(c *gin.Context) {
	sess := current(c)
	snap := sess.Seq.Snapshot()

	switch snap.Screen {
	case session.Landing:
		h.renderLanding(c, sess.Seq.TakeNotice())
	case session.Input:
		h.renderInput(c, http.StatusOK, snap, "")
	case session.Payment:
		h.renderPayment(c, sess)
	case session.Analyzing:
		c.HTML(http.StatusOK, "analyzing.tmpl", gin.H{})
	case session.Result:
		c.HTML(http.StatusOK, "result.tmpl", gin.H{
			"Report": report.NewView(snap.Result, *snap.PersonA, *snap.PersonB),
		})
	}
}

func (h *Handler) Start(c *gin.Context) {
	sess := current(c)
	if !h.analysisReady {
		h.fail(c, sess, http.StatusServiceUnavailable, analysis.ErrMissingAPIKey)
		return
	}
	if err := sess.Seq.Start(); err != nil {
		h.fail(c, sess, statusFor(err), err)
		return
	}
	h.respond(c, sess, http.StatusOK)
}

func (h *Handler) SubmitProfiles(c *gin.Context) {
	sess := current(c)

	a, b, err := bindProfiles(c)
	if err == nil {
		err = sess.Seq.SubmitProfiles(a, b)
	}
	if err != nil {
		status := statusFor(err)
		if status == http.StatusUnprocessableEntity && !wantsJSON(c) {
			snap := sess.Seq.Snapshot()
			snap.PersonA, snap.PersonB = &a, &b
			h.renderInput(c, status, snap, formMessage(err))
			return
		}
		h.fail(c, sess, status, err)
		return
	}

	sess.SetGate(payment.NewGate(h.provider, h.gateCfg, h.onPaid(sess), h.logger.With(zap.String("session_id", sess.ID))))
	h.respond(c, sess, http.StatusOK)
}

// onPaid hands the captured payment to the sequencer. The analysis outlives
// the capture request, so it runs detached from the request's cancellation.
func (h *Handler) onPaid(sess *session.Session) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		_, err := sess.Seq.CompletePaymentAsync(context.WithoutCancel(ctx))
		return err
	}
}

func (h *Handler) CancelPayment(c *gin.Context) {
	sess := current(c)
	if err := closeCheckout(sess, sess.Seq.CancelPayment); err != nil {
		h.fail(c, sess, statusFor(err), err)
		return
	}
	sess.ClearGate()
	h.respond(c, sess, http.StatusOK)
}

func (h *Handler) Reset(c *gin.Context) {
	sess := current(c)
	_ = closeCheckout(sess, func() error {
		sess.Seq.Reset()
		return nil
	})
	sess.ClearGate()
	h.respond(c, sess, http.StatusOK)
}

// closeCheckout runs fn after any capture in flight has settled and closes
// the session's checkout when fn succeeds. A payment captured meanwhile has
// already moved the session to Analyzing, so leaving Payment then fails.
func closeCheckout(sess *session.Session, fn func() error) error {
	if g := sess.Gate(); g != nil {
		return g.Close(fn)
	}
	return fn()
}

func (h *Handler) PaymentReady(c *gin.Context) {
	gate, ok := h.gate(c)
	if !ok {
		return
	}
	if err := gate.WaitReady(c.Request.Context()); err != nil {
		h.logger.Warn("payment provider not ready", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": gate.Err()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ready": true})
}

func (h *Handler) CreateOrder(c *gin.Context) {
	gate, ok := h.gate(c)
	if !ok {
		return
	}
	id, err := gate.CreateOrder(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": gate.Err()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

func (h *Handler) CaptureOrder(c *gin.Context) {
	gate, ok := h.gate(c)
	if !ok {
		return
	}

	err := gate.Approve(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, payment.ErrAlreadyCompleted), errors.Is(err, payment.ErrGateClosed),
		errors.Is(err, session.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusPaymentRequired, gin.H{"error": gate.Err()})
		return
	}

	sess := current(c)
	sess.ReleaseGate(gate)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "screen": sess.Seq.Screen()})
}

type widgetError struct {
	Message string `json:"message"`
}

// PaymentError receives errors raised by the checkout widget in the browser.
func (h *Handler) PaymentError(c *gin.Context) {
	gate, ok := h.gate(c)
	if !ok {
		return
	}
	var body widgetError
	if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}
	gate.Fail(errors.New(body.Message))
	c.JSON(http.StatusOK, gin.H{"error": gate.Err()})
}

func (h *Handler) ReportMarkdown(c *gin.Context) {
	snap := current(c).Seq.Snapshot()
	if snap.Screen != session.Result {
		c.String(http.StatusNotFound, "no report yet")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="destinymatch-report.md"`)
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report.Markdown(snap.Result, *snap.PersonA, *snap.PersonB)))
}

type sessionResponse struct {
	session.Snapshot
	PaymentError       string `json:"paymentError,omitempty"`
	AnalysisConfigured bool   `json:"analysisConfigured"`
}

func (h *Handler) SessionJSON(c *gin.Context) {
	c.JSON(http.StatusOK, h.sessionResponse(current(c)))
}

func (h *Handler) sessionResponse(sess *session.Session) sessionResponse {
	resp := sessionResponse{Snapshot: sess.Seq.Snapshot(), AnalysisConfigured: h.analysisReady}
	if g := sess.Gate(); g != nil {
		resp.PaymentError = g.Err()
	}
	return resp
}

func (h *Handler) Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// gate returns the checkout gate of a session on the Payment screen, or
// answers 409 itself.
func (h *Handler) gate(c *gin.Context) (*payment.Gate, bool) {
	sess := current(c)
	g := sess.Gate()
	if g == nil || sess.Seq.Screen() != session.Payment {
		c.JSON(http.StatusConflict, gin.H{"error": "no payment in progress"})
		return nil, false
	}
	return g, true
}

// respond answers a state-changing request: JSON callers get the new
// snapshot, browsers are sent back to the index.
func (h *Handler) respond(c *gin.Context, sess *session.Session, status int) {
	if wantsJSON(c) {
		c.JSON(status, h.sessionResponse(sess))
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) fail(c *gin.Context, sess *session.Session, status int, err error) {
	h.logger.Info("request rejected", zap.String("session_id", sess.ID), zap.Error(err))
	if wantsJSON(c) {
		c.JSON(status, gin.H{"error": err.Error(), "screen": sess.Seq.Screen()})
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, models.ErrIncompleteProfile), errors.Is(err, models.ErrInvalidGender):
		return http.StatusUnprocessableEntity
	case errors.Is(err, analysis.ErrMissingAPIKey):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func wantsJSON(c *gin.Context) bool {
	if c.ContentType() == gin.MIMEJSON {
		return true
	}
	return c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON
}
