package worksheet

import "github.com/abhisek/nexus/internal/llm"

// WorksheetSchema defines the JSON schema for worksheet generation responses.
var WorksheetSchema = llm.MustSchema("worksheet", "A multiple-choice worksheet for one student",
	map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"questionText": map[string]any{
							"type":        "string",
							"description": "The question shown to the student",
						},
						"options": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"minItems":    4,
							"maxItems":    4,
							"description": "Exactly 4 answer options",
						},
						"correctAnswerIndex": map[string]any{
							"type":        "integer",
							"minimum":     0,
							"maximum":     3,
							"description": "Zero-based index of the correct option",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "Why the correct option is right, in student-friendly words",
						},
					},
					"required":             []any{"questionText", "options", "correctAnswerIndex", "explanation"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	})

// ArtifactSchema defines the JSON schema for reward sticker responses.
var ArtifactSchema = llm.MustSchema("artifact", "A collectible digital sticker or badge",
	map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "Short creative name of the sticker or badge",
			},
			"description": map[string]any{
				"type":        "string",
				"description": "One sentence describing the reward",
			},
			"rarity": map[string]any{
				"type": "string",
				"enum": []any{"Rare", "Legendary"},
			},
		},
		"required":             []any{"name", "description", "rarity"},
		"additionalProperties": false,
	})
