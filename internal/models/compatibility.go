package models

import (
	"errors"
	"fmt"
	"strings"
)

// SchemaVersion identifies the response contract expected from the model.
const SchemaVersion = "v1"

var ErrInvalidResult = errors.New("invalid compatibility result")

// CompatibilityResult is the report produced by the generative model.
//
// JSON layout (v1):
//
//	{
//	  "matchScore": 0-100,
//	  "title": "string",
//	  "summary": "string",
//	  "personA_analysis": {"dominantStar", "personalityTraits", "loveStyle"},
//	  "personB_analysis": {"dominantStar", "personalityTraits", "loveStyle"},
//	  "relationship_dynamics": {
//	    "strengths": ["string"],
//	    "challenges": ["string"],
//	    "niHaixiaInsight": "string"
//	  },
//	  "verdict": "string"
//	}
type CompatibilityResult struct {
	MatchScore           int                  `json:"matchScore"`
	Title                string               `json:"title"`
	Summary              string               `json:"summary"`
	PersonA              PersonAnalysis       `json:"personA_analysis"`
	PersonB              PersonAnalysis       `json:"personB_analysis"`
	RelationshipDynamics RelationshipDynamics `json:"relationship_dynamics"`
	Verdict              string               `json:"verdict"`
}

type PersonAnalysis struct {
	DominantStar      string `json:"dominantStar"`
	PersonalityTraits string `json:"personalityTraits"`
	LoveStyle         string `json:"loveStyle"`
}

type RelationshipDynamics struct {
	Strengths  []string `json:"strengths"`
	Challenges []string `json:"challenges"`
	Insight    string   `json:"niHaixiaInsight"`
}

// Validate checks the shape of a decoded result. Field semantics are the
// model's business; only ranges and presence are enforced here.
func (r *CompatibilityResult) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil result", ErrInvalidResult)
	}

	var problems []string
	if r.MatchScore < 0 || r.MatchScore > 100 {
		problems = append(problems, fmt.Sprintf("matchScore %d out of range 0-100", r.MatchScore))
	}

	required := []struct {
		field string
		value string
	}{
		{"title", r.Title},
		{"summary", r.Summary},
		{"verdict", r.Verdict},
		{"personA_analysis.dominantStar", r.PersonA.DominantStar},
		{"personA_analysis.personalityTraits", r.PersonA.PersonalityTraits},
		{"personA_analysis.loveStyle", r.PersonA.LoveStyle},
		{"personB_analysis.dominantStar", r.PersonB.DominantStar},
		{"personB_analysis.personalityTraits", r.PersonB.PersonalityTraits},
		{"personB_analysis.loveStyle", r.PersonB.LoveStyle},
		{"relationship_dynamics.niHaixiaInsight", r.RelationshipDynamics.Insight},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			problems = append(problems, f.field+" is empty")
		}
	}

	if len(r.RelationshipDynamics.Strengths) == 0 {
		problems = append(problems, "relationship_dynamics.strengths is empty")
	}
	if len(r.RelationshipDynamics.Challenges) == 0 {
		problems = append(problems, "relationship_dynamics.challenges is empty")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidResult, strings.Join(problems, "; "))
	}
	return nil
}

// Clone returns a deep copy, or nil for a nil result.
func (r *CompatibilityResult) Clone() *CompatibilityResult {
	if r == nil {
		return nil
	}
	out := *r
	out.RelationshipDynamics.Strengths = append([]string(nil), r.RelationshipDynamics.Strengths...)
	out.RelationshipDynamics.Challenges = append([]string(nil), r.RelationshipDynamics.Challenges...)
	return &out
}
