package api

import (
	"github.com/storycrafter/storycrafter-agent/internal/story"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

type GenerateIdeasRequest struct {
	Instructions string `json:"instructions"`
}

type IdeasResponse struct {
	Ideas []story.VideoIdea `json:"ideas"`
}

type SaveIdeaRequest struct {
	Text string `json:"text"`
}

type SavedIdeasResponse struct {
	Ideas []story.SavedIdea `json:"ideas"`
}

type SaveAllResponse struct {
	Saved []story.SavedIdea `json:"saved"`
}

// CreateProjectRequest promotes an idea into a project. Kind selects the
// source: "fresh" uses Title/Idea from the request, "saved" consumes the
// library entry identified by ID.
type CreateProjectRequest struct {
	Kind  string `json:"kind"`
	Title string `json:"title,omitempty"`
	Idea  string `json:"idea,omitempty"`
	ID    int64  `json:"id,omitempty"`
}

type ProjectsResponse struct {
	Projects []story.Project `json:"projects"`
}

type GenerateScriptRequest struct {
	Idea     string `json:"idea,omitempty"`
	Duration string `json:"duration,omitempty"`
}

type ScriptStageResponse struct {
	Script   string              `json:"script"`
	Title    string              `json:"title"`
	Prompts  []story.ScenePrompt `json:"prompts"`
	Warnings []string            `json:"warnings,omitempty"`
}

type CopyPromptResponse struct {
	SceneNumber int    `json:"sceneNumber"`
	Prompt      string `json:"prompt"`
}
