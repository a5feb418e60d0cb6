package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/BerylCAtieno/destiny-match/internal/models"
	"github.com/google/generative-ai-go/genai"
)

const starDescription = "The major Zi Wei star (e.g., Zi Wei, Tian Ji, Tan Lang) in English. If birth time is unknown, use the Year Stem star or general archetype."

// ResponseSchema declares the v1 report shape to the model. It must stay in
// step with models.CompatibilityResult.
func ResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"matchScore": {Type: genai.TypeInteger, Description: "A compatibility score from 0 to 100 based on Zi Wei Dou Shu."},
			"title":      {Type: genai.TypeString, Description: "A short, mystical title for the relationship (e.g., 'Karmic Union')."},
			"summary":    {Type: genai.TypeString, Description: "A 2-sentence summary of the match."},
			"personA_analysis": personSchema(),
			"personB_analysis": personSchema(),
			"relationship_dynamics": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"strengths": {
						Type:        genai.TypeArray,
						Items:       &genai.Schema{Type: genai.TypeString},
						Description: "List of 3 relationship strengths.",
					},
					"challenges": {
						Type:        genai.TypeArray,
						Items:       &genai.Schema{Type: genai.TypeString},
						Description: "List of 3 relationship challenges.",
					},
					"niHaixiaInsight": {
						Type:        genai.TypeString,
						Description: "Specific advice mimicking Master Ni Haixia's tone (direct, emphasizing fate, karma, and practical reality of the stars).",
					},
				},
				Required: []string{"strengths", "challenges", "niHaixiaInsight"},
			},
			"verdict": {Type: genai.TypeString, Description: "Final recommendation: Highly Recommended, Proceed with Caution, or Not Recommended."},
		},
		Required: []string{"matchScore", "title", "summary", "personA_analysis", "personB_analysis", "relationship_dynamics", "verdict"},
	}
}

func personSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"dominantStar":      {Type: genai.TypeString, Description: starDescription},
			"personalityTraits": {Type: genai.TypeString, Description: "Brief personality description based on the star."},
			"loveStyle":         {Type: genai.TypeString, Description: "How they approach love."},
		},
		Required: []string{"dominantStar", "personalityTraits", "loveStyle"},
	}
}

// ParseResult decodes the model's JSON text and checks its shape.
func ParseResult(text string) (*models.CompatibilityResult, error) {
	text = stripCodeFence(text)
	if text == "" {
		return nil, ErrEmptyResponse
	}

	var result models.CompatibilityResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fmt.Errorf("failed to parse compatibility result: %w", err)
	}
	if err := result.Validate(); err != nil {
		return nil, err
	}
	return &result, nil
}

// Models occasionally wrap JSON output in a markdown fence even in JSON mode.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
