package models

import (
	"errors"
	"fmt"
	"strings"
)

// UnknownBirthTime is sent to the analysis in place of an omitted birth time.
const UnknownBirthTime = "Unknown"

var (
	ErrIncompleteProfile = errors.New("incomplete profile")
	ErrInvalidGender     = errors.New("invalid gender")
)

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// Genders lists the accepted values in form order.
var Genders = []Gender{GenderMale, GenderFemale, GenderOther}

// ParseGender accepts any casing of the three known values.
func ParseGender(s string) (Gender, error) {
	for _, g := range Genders {
		if strings.EqualFold(strings.TrimSpace(s), string(g)) {
			return g, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidGender, s)
}

// Profile is one person's birth data as entered on the input screen.
type Profile struct {
	Name      string `json:"name"`
	BirthDate string `json:"birthDate"` // YYYY-MM-DD
	BirthTime string `json:"birthTime"` // HH:MM, empty when unknown
	Gender    Gender `json:"gender"`
}

// Validate checks that a name and a birth date are present. Birth time is
// optional and formats are left to the browser's date and time inputs.
func (p Profile) Validate() error {
	var missing []string
	if strings.TrimSpace(p.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(p.BirthDate) == "" {
		missing = append(missing, "birth date")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncompleteProfile, strings.Join(missing, " and "))
	}
	return nil
}

func (p Profile) BirthTimeOrUnknown() string {
	if t := strings.TrimSpace(p.BirthTime); t != "" {
		return t
	}
	return UnknownBirthTime
}
