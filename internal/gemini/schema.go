package gemini

// Schema declares the expected shape of a structured model response, using
// the generativelanguage API's subset of OpenAPI types.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

const (
	typeArray   = "ARRAY"
	typeObject  = "OBJECT"
	typeString  = "STRING"
	typeInteger = "INTEGER"
)

// ideaResponseSchema: array of {title, idea}.
var ideaResponseSchema = &Schema{
	Type: typeArray,
	Items: &Schema{
		Type: typeObject,
		Properties: map[string]*Schema{
			"title": {
				Type:        typeString,
				Description: "A catchy, YouTube-style title for the video idea, including relevant emojis.",
			},
			"idea": {
				Type:        typeString,
				Description: "A complete video idea written as a detailed story outline or narrative summary in a single paragraph.",
			},
		},
		Required: []string{"title", "idea"},
	},
}

// scenePromptResponseSchema: array of scene prompt objects matching the
// ScenePrompt structure.
var scenePromptResponseSchema = &Schema{
	Type: typeArray,
	Items: &Schema{
		Type: typeObject,
		Properties: map[string]*Schema{
			"scene_number": {
				Type:        typeInteger,
				Description: "The sequential number of the scene, starting from 1.",
			},
			"duration_seconds": {
				Type:        typeInteger,
				Description: "The estimated duration of this scene in seconds. Usually 8 seconds.",
			},
			"characters": {
				Type:        typeArray,
				Description: "A list of all characters present in this scene.",
				Items: &Schema{
					Type: typeObject,
					Properties: map[string]*Schema{
						"name": {
							Type:        typeString,
							Description: "The unique identifier for the character (e.g., MAMA_CAT, LEO_01).",
						},
						"description": {
							Type:        typeString,
							Description: "The detailed physical description of the character.",
						},
					},
					Required: []string{"name", "description"},
				},
			},
			"prompt_details": {
				Type: typeObject,
				Properties: map[string]*Schema{
					"setting": {
						Type:        typeString,
						Description: "A detailed description of the scene's environment, time of day, and weather.",
					},
					"action": {
						Type:        typeString,
						Description: "A concise but detailed description of the main action occurring in the scene.",
					},
					"emotion_mood": {
						Type:        typeString,
						Description: `The dominant emotion or mood of the scene (e.g., "Peaceful and serene," "Tense and fearful," "Heartwarming and loving").`,
					},
					"camera_shot": {
						Type:        typeString,
						Description: `The type of camera shot to be used (e.g., "Wide shot," "Close-up shot on LEO_01," "Tracking shot following MAMA_CAT").`,
					},
					"visual_style": {
						Type:        typeString,
						Description: `The overall visual aesthetic. Should be consistent. e.g., "Hyperrealistic, cinematic, warm natural lighting, shallow depth of field, 8K resolution."`,
					},
				},
				Required: []string{"setting", "action", "emotion_mood", "camera_shot", "visual_style"},
			},
		},
		Required: []string{"scene_number", "duration_seconds", "characters", "prompt_details"},
	},
}

// metadataResponseSchema: {titles[3], description, hashtags[10]}.
var metadataResponseSchema = &Schema{
	Type: typeObject,
	Properties: map[string]*Schema{
		"titles": {
			Type:        typeArray,
			Items:       &Schema{Type: typeString},
			Description: "An array of exactly 3 catchy, YouTube-style video titles, each including relevant emojis.",
		},
		"description": {
			Type:        typeString,
			Description: "A compelling, paragraph-long video description suitable for YouTube. It should summarize the story's emotional journey and include a friendly call-to-action like 'Watch the full story to see what happens!' or 'Don't forget to like and subscribe for more heartwarming stories!'.",
		},
		"hashtags": {
			Type:        typeArray,
			Items:       &Schema{Type: typeString},
			Description: "An array of exactly 10 relevant hashtags for YouTube, without the '#' symbol. Examples: 'catstory', 'animatedshort', 'emotionalstory', 'familylove'.",
		},
	},
	Required: []string{"titles", "description", "hashtags"},
}
