// Package report turns a compatibility result into what the result screen and
// the markdown download show. Nothing here mutates its inputs.
package report

import (
	"fmt"
	"strings"

	"github.com/BerylCAtieno/destiny-match/internal/models"
)

// ringCircumference matches the r=70 circle of the score gauge.
const ringCircumference = 440

type Chart struct {
	Name              string
	DominantStar      string
	PersonalityTraits string
	LoveStyle         string
}

type View struct {
	Title      string
	NameA      string
	NameB      string
	Score      int
	RingOffset int
	Verdict    string
	Summary    string
	Insight    string
	Charts     [2]Chart
	Strengths  []string
	Challenges []string
}

func NewView(r *models.CompatibilityResult, a, b models.Profile) View {
	score := clamp(r.MatchScore)
	return View{
		Title:      r.Title,
		NameA:      a.Name,
		NameB:      b.Name,
		Score:      score,
		RingOffset: ringCircumference - ringCircumference*score/100,
		Verdict:    r.Verdict,
		Summary:    r.Summary,
		Insight:    r.RelationshipDynamics.Insight,
		Charts: [2]Chart{
			chart(a.Name, r.PersonA),
			chart(b.Name, r.PersonB),
		},
		Strengths:  append([]string(nil), r.RelationshipDynamics.Strengths...),
		Challenges: append([]string(nil), r.RelationshipDynamics.Challenges...),
	}
}

func chart(name string, p models.PersonAnalysis) Chart {
	return Chart{
		Name:              name,
		DominantStar:      p.DominantStar,
		PersonalityTraits: p.PersonalityTraits,
		LoveStyle:         p.LoveStyle,
	}
}

func clamp(score int) int {
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	}
	return score
}

// Markdown renders the report as a plain markdown document.
func Markdown(r *models.CompatibilityResult, a, b models.Profile) string {
	v := NewView(r, a, b)

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("# %s\n\n", v.Title))
	builder.WriteString(fmt.Sprintf("_%s & %s, Zi Wei Dou Shu report_\n\n", v.NameA, v.NameB))
	builder.WriteString(fmt.Sprintf("**Compatibility:** %d%%\n\n", v.Score))
	builder.WriteString(fmt.Sprintf("**Verdict:** %s\n\n", v.Verdict))
	builder.WriteString(fmt.Sprintf("> %s\n\n", v.Summary))

	builder.WriteString("## Master Ni's Insight\n\n")
	builder.WriteString(v.Insight + "\n")

	for _, c := range v.Charts {
		builder.WriteString(fmt.Sprintf("\n## %s's Chart\n\n", c.Name))
		builder.WriteString(fmt.Sprintf("- Dominant Star: %s\n", c.DominantStar))
		builder.WriteString(fmt.Sprintf("- Personality: %s\n", c.PersonalityTraits))
		builder.WriteString(fmt.Sprintf("- Love Style: %s\n", c.LoveStyle))
	}

	if len(v.Strengths) > 0 {
		builder.WriteString("\n## Karmic Strengths\n\n")
		for _, s := range v.Strengths {
			builder.WriteString(fmt.Sprintf("- %s\n", strings.TrimSpace(s)))
		}
	}

	if len(v.Challenges) > 0 {
		builder.WriteString("\n## Karmic Challenges\n\n")
		for _, c := range v.Challenges {
			builder.WriteString(fmt.Sprintf("- %s\n", strings.TrimSpace(c)))
		}
	}

	builder.WriteString("\n---\nFor entertainment purposes only.\n")
	return builder.String()
}
