package web

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BerylCAtieno/destiny-match/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var errBadRequest = errors.New("malformed request")

type profileJSON struct {
	Name      string `json:"name"`
	BirthDate string `json:"birthDate"`
	BirthTime string `json:"birthTime"`
	Gender    string `json:"gender"`
}

type profilesJSON struct {
	PersonA profileJSON `json:"personA"`
	PersonB profileJSON `json:"personB"`
}

// profilesForm is the flat form posted by the input screen.
type profilesForm struct {
	AName      string `form:"a_name"`
	AGender    string `form:"a_gender"`
	ABirthDate string `form:"a_birth_date"`
	ABirthTime string `form:"a_birth_time"`

	BName      string `form:"b_name"`
	BGender    string `form:"b_gender"`
	BBirthDate string `form:"b_birth_date"`
	BBirthTime string `form:"b_birth_time"`
}

// bindProfiles reads both profiles from a JSON body or a form post. The
// returned profiles are usable for re-rendering the form even on error.
func bindProfiles(c *gin.Context) (a, b models.Profile, err error) {
	var raw profilesJSON
	if c.ContentType() == gin.MIMEJSON {
		err = c.ShouldBindBodyWith(&raw, binding.JSON)
	} else {
		var form profilesForm
		err = c.ShouldBind(&form)
		raw = profilesJSON{
			PersonA: profileJSON{Name: form.AName, BirthDate: form.ABirthDate, BirthTime: form.ABirthTime, Gender: form.AGender},
			PersonB: profileJSON{Name: form.BName, BirthDate: form.BBirthDate, BirthTime: form.BBirthTime, Gender: form.BGender},
		}
	}
	if err != nil {
		return a, b, fmt.Errorf("%w: %v", errBadRequest, err)
	}

	a, errA := raw.PersonA.profile(models.GenderMale)
	b, errB := raw.PersonB.profile(models.GenderFemale)
	if errA != nil {
		return a, b, errA
	}
	return a, b, errB
}

// profile converts the posted fields, falling back to def for an empty gender.
func (p profileJSON) profile(def models.Gender) (models.Profile, error) {
	out := models.Profile{
		Name:      strings.TrimSpace(p.Name),
		BirthDate: strings.TrimSpace(p.BirthDate),
		BirthTime: strings.TrimSpace(p.BirthTime),
		Gender:    def,
	}
	if strings.TrimSpace(p.Gender) == "" {
		return out, nil
	}
	g, err := models.ParseGender(p.Gender)
	if err != nil {
		return out, err
	}
	out.Gender = g
	return out, nil
}
