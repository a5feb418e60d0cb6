package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validResult() *CompatibilityResult {
	return &CompatibilityResult{
		MatchScore: 78,
		Title:      "Karmic Union",
		Summary:    "Two stars that pull toward each other.",
		PersonA:    PersonAnalysis{DominantStar: "Tian Xiang", PersonalityTraits: "Loyal", LoveStyle: "Steady"},
		PersonB:    PersonAnalysis{DominantStar: "Lian Zhen", PersonalityTraits: "Passionate", LoveStyle: "Intense"},
		RelationshipDynamics: RelationshipDynamics{
			Strengths:  []string{"trust"},
			Challenges: []string{"pride"},
			Insight:    "Fate favours patience.",
		},
		Verdict: "Highly Recommended",
	}
}

func TestProfile_Validate(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		wantErr bool
	}{
		{"complete without time", Profile{Name: "Alice", BirthDate: "1990-01-01", Gender: GenderFemale}, false},
		{"complete with time", Profile{Name: "Bob", BirthDate: "1988-05-05", BirthTime: "14:30", Gender: GenderMale}, false},
		{"missing name", Profile{BirthDate: "1990-01-01"}, true},
		{"blank name", Profile{Name: "   ", BirthDate: "1990-01-01"}, true},
		{"missing date", Profile{Name: "Alice"}, true},
		{"empty", Profile{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrIncompleteProfile)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestProfile_Validate_NamesMissingFields(t *testing.T) {
	err := Profile{}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name and birth date")
}

func TestProfile_BirthTimeOrUnknown(t *testing.T) {
	assert.Equal(t, UnknownBirthTime, Profile{}.BirthTimeOrUnknown())
	assert.Equal(t, UnknownBirthTime, Profile{BirthTime: " "}.BirthTimeOrUnknown())
	assert.Equal(t, "14:30", Profile{BirthTime: "14:30"}.BirthTimeOrUnknown())
}

func TestParseGender(t *testing.T) {
	g, err := ParseGender("female")
	require.NoError(t, err)
	assert.Equal(t, GenderFemale, g)

	g, err = ParseGender(" Other ")
	require.NoError(t, err)
	assert.Equal(t, GenderOther, g)

	_, err = ParseGender("robot")
	assert.ErrorIs(t, err, ErrInvalidGender)
}

func TestCompatibilityResult_Validate(t *testing.T) {
	require.NoError(t, validResult().Validate())

	var nilResult *CompatibilityResult
	assert.ErrorIs(t, nilResult.Validate(), ErrInvalidResult)

	tests := []struct {
		name   string
		mutate func(r *CompatibilityResult)
		want   string
	}{
		{"score too high", func(r *CompatibilityResult) { r.MatchScore = 101 }, "out of range"},
		{"score negative", func(r *CompatibilityResult) { r.MatchScore = -1 }, "out of range"},
		{"no title", func(r *CompatibilityResult) { r.Title = "" }, "title is empty"},
		{"no insight", func(r *CompatibilityResult) { r.RelationshipDynamics.Insight = "" }, "niHaixiaInsight is empty"},
		{"no strengths", func(r *CompatibilityResult) { r.RelationshipDynamics.Strengths = nil }, "strengths is empty"},
		{"no challenges", func(r *CompatibilityResult) { r.RelationshipDynamics.Challenges = []string{} }, "challenges is empty"},
		{"no star", func(r *CompatibilityResult) { r.PersonB.DominantStar = "" }, "personB_analysis.dominantStar"},
		{"no traits", func(r *CompatibilityResult) { r.PersonA.PersonalityTraits = " " }, "personA_analysis.personalityTraits"},
		{"no love style", func(r *CompatibilityResult) { r.PersonB.LoveStyle = "" }, "personB_analysis.loveStyle"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validResult()
			tt.mutate(r)
			err := r.Validate()
			require.ErrorIs(t, err, ErrInvalidResult)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCompatibilityResult_Clone(t *testing.T) {
	var nilResult *CompatibilityResult
	assert.Nil(t, nilResult.Clone())

	orig := validResult()
	clone := orig.Clone()
	require.Equal(t, orig, clone)
	assert.NotSame(t, orig, clone)

	clone.Title = "changed"
	clone.RelationshipDynamics.Strengths[0] = "changed"
	clone.RelationshipDynamics.Challenges = append(clone.RelationshipDynamics.Challenges, "more")

	assert.Equal(t, "Karmic Union", orig.Title)
	assert.Equal(t, []string{"trust"}, orig.RelationshipDynamics.Strengths)
	assert.Equal(t, []string{"pride"}, orig.RelationshipDynamics.Challenges)
}
