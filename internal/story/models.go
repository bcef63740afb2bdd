package story

import "time"

// ProjectStatus values. A project starts as working, is promoted to
// completed by a successful script+prompts run, and can be toggled between
// completed and archived. There is no path back to working.
const (
	StatusWorking   = "working"
	StatusCompleted = "completed"
	StatusArchived  = "archived"
)

// VideoIdea is the ephemeral output of the idea stage. It is never
// persisted as-is; the user either saves its text or promotes it into a
// project.
type VideoIdea struct {
	Title string `json:"title" validate:"required"`
	Idea  string `json:"idea" validate:"required"`
}

// SavedIdea is an idea text bookmarked for later project creation.
// Saved ideas are deduplicated by exact text match.
type SavedIdea struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

// VideoMetadata holds publishing metadata generated from a script:
// three candidate titles, one description, ten hashtags (no leading '#').
type VideoMetadata struct {
	Titles      []string `json:"titles" validate:"required,min=1"`
	Description string   `json:"description" validate:"required"`
	Hashtags    []string `json:"hashtags" validate:"required,min=1"`
}

// ScenePromptCharacter identifies one character present in a scene, with
// the stable physical description defined in the script's character roster.
type ScenePromptCharacter struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// ScenePromptDetails carries the per-scene generation fields. Action is the
// verbatim action text from the script, never a summary. VisualStyle is
// identical across all scenes of one project.
type ScenePromptDetails struct {
	Setting     string `json:"setting" validate:"required"`
	Action      string `json:"action" validate:"required"`
	EmotionMood string `json:"emotion_mood" validate:"required"`
	CameraShot  string `json:"camera_shot" validate:"required"`
	VisualStyle string `json:"visual_style" validate:"required"`
}

// ScenePrompt is one structured scene description extracted from a script.
// SceneNumber is the natural key for per-scene actions; duplicates are
// tolerated but flagged as a data-quality warning.
type ScenePrompt struct {
	SceneNumber     int                    `json:"scene_number" validate:"min=1"`
	DurationSeconds int                    `json:"duration_seconds" validate:"min=1"`
	Characters      []ScenePromptCharacter `json:"characters" validate:"dive"`
	PromptDetails   ScenePromptDetails     `json:"prompt_details"`
}

// ScriptResult is the output of the script stage: the full script text and
// the title extracted from it (best effort).
type ScriptResult struct {
	Script string `json:"script"`
	Title  string `json:"title"`
}

// Project is the persisted unit of work tracking one idea through the
// pipeline. Script, JSON and Metadata are filled in monotonically; JSON
// holds the serialized ScenePrompt array exactly as committed.
type Project struct {
	ID        int64          `json:"id"`
	Title     string         `json:"title"`
	Idea      string         `json:"idea"`
	Script    string         `json:"script"`
	JSON      string         `json:"json"`
	Status    string         `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
	Metadata  *VideoMetadata `json:"metadata,omitempty"`
}

// IdeaSource is a tagged reference to the idea a project is created from:
// either a freshly generated idea (title + text) or a saved idea consumed
// by the promotion.
type IdeaSource struct {
	Kind    string
	Title   string
	Text    string
	SavedID int64
}

const (
	SourceFresh = "fresh"
	SourceSaved = "saved"
)

// FreshIdea builds an IdeaSource from a generated idea.
func FreshIdea(idea VideoIdea) IdeaSource {
	return IdeaSource{Kind: SourceFresh, Title: idea.Title, Text: idea.Idea}
}

// SavedIdeaRef builds an IdeaSource referring to a saved idea by id.
func SavedIdeaRef(id int64) IdeaSource {
	return IdeaSource{Kind: SourceSaved, SavedID: id}
}
