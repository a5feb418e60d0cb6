package web

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/BerylCAtieno/destiny-match/internal/models"
	"github.com/BerylCAtieno/destiny-match/internal/session"
	"github.com/gin-gonic/gin"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

func parseTemplates() (*template.Template, error) {
	return template.New("").ParseFS(templateFS, "templates/*.tmpl")
}

type personFields struct {
	Prefix  string
	Title   string
	Profile models.Profile
	Genders []models.Gender
}

type inputPage struct {
	People []personFields
	Error  string
}

type paymentPage struct {
	ClientID    string
	Price       string
	Currency    string
	Description string
	Error       string
	PollMillis  int64
	WaitMillis  int64
}

func (h *Handler) renderLanding(c *gin.Context, notice string) {
	data := gin.H{
		"Notice":   notice,
		"Price":    h.gateCfg.Order.Amount,
		"Currency": h.gateCfg.Order.Currency,
	}
	if !h.analysisReady {
		data["ConfigError"] = configErrorNotice
	}
	c.HTML(http.StatusOK, "landing.tmpl", data)
}

func (h *Handler) renderInput(c *gin.Context, status int, snap session.Snapshot, msg string) {
	a := models.Profile{Gender: models.GenderMale}
	b := models.Profile{Gender: models.GenderFemale}
	if snap.PersonA != nil {
		a = *snap.PersonA
	}
	if snap.PersonB != nil {
		b = *snap.PersonB
	}
	c.HTML(status, "input.tmpl", inputPage{
		People: []personFields{
			{Prefix: "a", Title: "First person", Profile: a, Genders: models.Genders},
			{Prefix: "b", Title: "Second person", Profile: b, Genders: models.Genders},
		},
		Error: msg,
	})
}

func (h *Handler) renderPayment(c *gin.Context, sess *session.Session) {
	page := paymentPage{
		ClientID:    h.paypalClientID,
		Price:       h.gateCfg.Order.Amount,
		Currency:    h.gateCfg.Order.Currency,
		Description: h.gateCfg.Order.Description,
		PollMillis:  millis(h.gateCfg.PollInterval, 500*time.Millisecond),
		WaitMillis:  millis(h.gateCfg.ReadyTimeout, 10*time.Second),
	}
	if g := sess.Gate(); g != nil {
		page.Error = g.Err()
	}
	c.HTML(http.StatusOK, "payment.tmpl", page)
}

func millis(d, def time.Duration) int64 {
	if d <= 0 {
		d = def
	}
	return d.Milliseconds()
}

func formMessage(err error) string {
	if errors.Is(err, models.ErrInvalidGender) {
		return "Please choose Male, Female or Other for both people."
	}
	return "Please fill in Name and Birth Date for both people."
}
