package story

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// Gateway is the model gateway contract the pipeline drives. Implemented by
// the gemini client; tests substitute a fake.
type Gateway interface {
	GenerateIdeas(ctx context.Context, instructions string) ([]VideoIdea, error)
	GenerateScript(ctx context.Context, storyIdea, duration string) (*ScriptResult, error)
	GenerateScenePrompts(ctx context.Context, script string) ([]ScenePrompt, error)
	GenerateMetadata(ctx context.Context, script string) (*VideoMetadata, error)
}

// Pipeline sequences the generation stages for a project and commits stage
// results to the store. Each stage call is a single attempt: a failure
// aborts the stage and leaves only the sub-steps that already committed.
type Pipeline struct {
	gateway Gateway
	store   *Store
	logger  *slog.Logger
}

func NewPipeline(gateway Gateway, store *Store, logger *slog.Logger) *Pipeline {
	return &Pipeline{gateway: gateway, store: store, logger: logger}
}

// ScriptStageResult carries everything the script stage produced: the
// committed script, title and serialized prompt array, the parsed prompts,
// and any scene-number quality warnings.
type ScriptStageResult struct {
	Script   string
	Title    string
	RawJSON  string
	Prompts  []ScenePrompt
	Warnings []string
}

// RunIdeaStage generates a batch of video ideas. Ideas are ephemeral: the
// store is not touched until the user saves or promotes one.
func (p *Pipeline) RunIdeaStage(ctx context.Context, instructions string) ([]VideoIdea, error) {
	return p.gateway.GenerateIdeas(ctx, instructions)
}

// RunScriptStage runs the dependent script and scene-prompt steps for the
// active project. Entering the stage invalidates previously generated
// downstream artifacts. The script and title are committed as soon as the
// script step succeeds; the serialized prompts and the completed status are
// committed only after the prompt step succeeds, so a prompt-step failure
// leaves the project with a script but no prompts and its status untouched.
func (p *Pipeline) RunScriptStage(ctx context.Context, projectID int64, idea, duration string) (*ScriptStageResult, error) {
	if projectID == 0 {
		return nil, &PreconditionError{Message: "no active project for script generation"}
	}
	if strings.TrimSpace(idea) == "" {
		return nil, &PreconditionError{Message: "a video idea is required to generate a script"}
	}
	if _, err := p.store.GetProject(projectID); err != nil {
		return nil, &PreconditionError{Message: fmt.Sprintf("active project %d no longer exists", projectID)}
	}

	empty := ""
	if err := p.store.UpdateProject(ctx, projectID, ProjectPatch{
		Script:        &empty,
		JSON:          &empty,
		ClearMetadata: true,
	}); err != nil {
		return nil, err
	}

	script, err := p.gateway.GenerateScript(ctx, idea, duration)
	if err != nil {
		return nil, err
	}

	if err := p.store.UpdateProject(ctx, projectID, ProjectPatch{
		Script: &script.Script,
		Title:  &script.Title,
	}); err != nil {
		return nil, err
	}

	prompts, err := p.gateway.GenerateScenePrompts(ctx, script.Script)
	if err != nil {
		return nil, err
	}

	warnings := sceneNumberWarnings(prompts)
	for _, w := range warnings {
		if p.logger != nil {
			p.logger.Warn("scene prompt quality issue", "project_id", projectID, "warning", w)
		}
	}

	raw, err := json.MarshalIndent(prompts, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize scene prompts: %w", err)
	}
	rawJSON := string(raw)

	completed := StatusCompleted
	if err := p.store.UpdateProject(ctx, projectID, ProjectPatch{
		JSON:   &rawJSON,
		Status: &completed,
	}); err != nil {
		return nil, err
	}

	if p.logger != nil {
		p.logger.Info("script stage completed", "project_id", projectID, "scenes", len(prompts))
	}

	return &ScriptStageResult{
		Script:   script.Script,
		Title:    script.Title,
		RawJSON:  rawJSON,
		Prompts:  prompts,
		Warnings: warnings,
	}, nil
}

// RunMetadataStage generates publishing metadata from the project's script
// and commits it. Re-invocation overwrites existing metadata; the status is
// never altered here.
func (p *Pipeline) RunMetadataStage(ctx context.Context, projectID int64, script string) (*VideoMetadata, error) {
	if projectID == 0 {
		return nil, &PreconditionError{Message: "no active project for metadata generation"}
	}
	if strings.TrimSpace(script) == "" {
		return nil, &PreconditionError{Message: "a script is required to generate metadata"}
	}
	if _, err := p.store.GetProject(projectID); err != nil {
		return nil, &PreconditionError{Message: fmt.Sprintf("active project %d no longer exists", projectID)}
	}

	metadata, err := p.gateway.GenerateMetadata(ctx, script)
	if err != nil {
		return nil, err
	}

	if err := p.store.UpdateProject(ctx, projectID, ProjectPatch{Metadata: metadata}); err != nil {
		return nil, err
	}

	if p.logger != nil {
		p.logger.Info("metadata stage completed", "project_id", projectID, "titles", len(metadata.Titles))
	}
	return metadata, nil
}

// sceneNumberWarnings flags duplicate and non-sequential scene numbers.
// These are tolerated, never fatal: scene_number is the natural key for
// per-scene actions, so consumers should know when it is unreliable.
func sceneNumberWarnings(prompts []ScenePrompt) []string {
	var warnings []string
	seen := make(map[int]bool, len(prompts))
	sequential := true

	for i, prompt := range prompts {
		if seen[prompt.SceneNumber] {
			warnings = append(warnings, fmt.Sprintf("duplicate scene_number %d", prompt.SceneNumber))
		}
		seen[prompt.SceneNumber] = true
		if prompt.SceneNumber != i+1 {
			sequential = false
		}
	}

	if !sequential && len(prompts) > 0 {
		warnings = append(warnings, "scene numbers are not sequential starting at 1")
	}
	return warnings
}
