package story

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// Tab values for the session's active view.
const (
	TabIdeas   = "ideas"
	TabScript  = "script"
	TabPrompts = "prompts"
)

// DefaultDuration is the initial pacing hint for script generation.
const DefaultDuration = "1 minute"

// Session is the single-user interaction state machine sitting between the
// presentation layer and the pipeline/store. At most one generation runs at
// a time; everything else it holds is working state for the current view.
type Session struct {
	pipeline *Pipeline
	store    *Store
	logger   *slog.Logger

	mu              sync.Mutex
	loading         bool
	lastError       string
	activeProjectID int64
	tab             string

	ideas    []VideoIdea
	ideaText string
	duration string
	script   string
	title    string
	rawJSON  string
	prompts  []ScenePrompt
	metadata *VideoMetadata
	copied   map[int]bool
	warnings []string
}

func NewSession(pipeline *Pipeline, store *Store, logger *slog.Logger) *Session {
	return &Session{
		pipeline: pipeline,
		store:    store,
		logger:   logger,
		tab:      TabIdeas,
		duration: DefaultDuration,
		copied:   make(map[int]bool),
	}
}

// beginGeneration claims the single generation slot. Starting a new
// generation clears the previous error.
func (s *Session) beginGeneration() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading {
		return ErrBusy
	}
	s.loading = true
	s.lastError = ""
	return nil
}

func (s *Session) finishGeneration(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.lastError = err.Error()
	}
}

// GenerateIdeas runs the idea stage and replaces the working idea batch.
// The lock is not held during the remote call.
func (s *Session) GenerateIdeas(ctx context.Context, instructions string) ([]VideoIdea, error) {
	if err := s.beginGeneration(); err != nil {
		return nil, err
	}

	ideas, err := s.pipeline.RunIdeaStage(ctx, instructions)
	s.finishGeneration(err)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.ideas = ideas
	s.tab = TabIdeas
	s.mu.Unlock()
	return ideas, nil
}

// Ideas returns the current working idea batch.
func (s *Session) Ideas() []VideoIdea {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]VideoIdea, len(s.ideas))
	copy(out, s.ideas)
	return out
}

// SaveIdea bookmarks one idea text in the library.
func (s *Session) SaveIdea(ctx context.Context, text string) (SavedIdea, error) {
	if strings.TrimSpace(text) == "" {
		return SavedIdea{}, &PreconditionError{Message: "idea text is empty"}
	}
	return s.store.SaveIdea(ctx, text)
}

// SaveAllIdeas bookmarks the whole working batch, skipping duplicates.
func (s *Session) SaveAllIdeas(ctx context.Context) []SavedIdea {
	s.mu.Lock()
	batch := make([]VideoIdea, len(s.ideas))
	copy(batch, s.ideas)
	s.mu.Unlock()
	return s.store.SaveAllIdeas(ctx, batch)
}

// StartProject promotes an idea into a new working project and switches the
// session to it. A saved source consumes the library entry atomically.
func (s *Session) StartProject(ctx context.Context, src IdeaSource) (Project, error) {
	var (
		text  string
		title string
		saved int64
	)

	switch src.Kind {
	case SourceFresh:
		text, title = src.Text, src.Title
	case SourceSaved:
		found := false
		for _, idea := range s.store.ListSavedIdeas() {
			if idea.ID == src.SavedID {
				text = idea.Text
				found = true
				break
			}
		}
		if !found {
			return Project{}, fmt.Errorf("saved idea %d: %w", src.SavedID, ErrNotFound)
		}
		saved = src.SavedID
	default:
		return Project{}, &PreconditionError{Message: fmt.Sprintf("unknown idea source %q", src.Kind)}
	}

	if strings.TrimSpace(text) == "" {
		return Project{}, &PreconditionError{Message: "idea text is empty"}
	}

	project, err := s.store.CreateProject(ctx, text, title, saved)
	if err != nil {
		return Project{}, err
	}

	s.mu.Lock()
	s.activeProjectID = project.ID
	s.ideaText = project.Idea
	s.tab = TabScript
	s.script = ""
	s.title = project.Title
	s.rawJSON = ""
	s.prompts = nil
	s.metadata = nil
	s.copied = make(map[int]bool)
	s.warnings = nil
	s.mu.Unlock()

	return project, nil
}

// GenerateScript runs the script stage for the active project. An empty idea
// argument reuses the session's working idea text; an empty duration reuses
// the current pacing hint. On failure the working copies are refreshed from
// the store so a partially committed script is still visible.
func (s *Session) GenerateScript(ctx context.Context, idea, duration string) (*ScriptStageResult, error) {
	s.mu.Lock()
	if idea == "" {
		idea = s.ideaText
	} else {
		s.ideaText = idea
	}
	if duration == "" {
		duration = s.duration
	} else {
		s.duration = duration
	}
	projectID := s.activeProjectID
	s.mu.Unlock()

	if err := s.beginGeneration(); err != nil {
		return nil, err
	}

	result, err := s.pipeline.RunScriptStage(ctx, projectID, idea, duration)
	s.finishGeneration(err)
	if err != nil {
		s.refreshFromStore(projectID)
		return nil, err
	}

	s.mu.Lock()
	s.script = result.Script
	s.title = result.Title
	s.rawJSON = result.RawJSON
	s.prompts = result.Prompts
	s.warnings = result.Warnings
	s.metadata = nil
	s.copied = make(map[int]bool)
	s.tab = TabPrompts
	s.mu.Unlock()

	return result, nil
}

// GenerateMetadata runs the metadata stage from the working script and keeps
// the result as the working metadata.
func (s *Session) GenerateMetadata(ctx context.Context) (*VideoMetadata, error) {
	s.mu.Lock()
	projectID := s.activeProjectID
	script := s.script
	s.mu.Unlock()

	if err := s.beginGeneration(); err != nil {
		return nil, err
	}

	metadata, err := s.pipeline.RunMetadataStage(ctx, projectID, script)
	s.finishGeneration(err)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.metadata = metadata
	s.mu.Unlock()
	return metadata, nil
}

// ViewProject resumes a stored project: working copies are loaded from the
// persisted fields and the tab advances to the furthest artifact present.
// A malformed stored prompt array yields an empty working array, never an
// error; the raw text is still available for export.
func (s *Session) ViewProject(ctx context.Context, id int64) (Project, error) {
	project, err := s.store.GetProject(id)
	if err != nil {
		return Project{}, err
	}

	var prompts []ScenePrompt
	if project.JSON != "" {
		if err := json.Unmarshal([]byte(project.JSON), &prompts); err != nil {
			prompts = nil
			if s.logger != nil {
				s.logger.Warn("stored scene prompts are not parseable", "project_id", id, "error", err)
			}
		}
	}

	tab := TabScript
	if project.JSON != "" {
		tab = TabPrompts
	}

	s.mu.Lock()
	s.activeProjectID = project.ID
	s.ideaText = project.Idea
	s.script = project.Script
	s.title = project.Title
	s.rawJSON = project.JSON
	s.prompts = prompts
	s.metadata = nil
	if project.Metadata != nil {
		m := *project.Metadata
		s.metadata = &m
	}
	s.copied = make(map[int]bool)
	s.warnings = sceneNumberWarnings(prompts)
	s.tab = tab
	s.mu.Unlock()

	return project, nil
}

// CopyPrompt returns the pretty-printed JSON of one scene by scene number
// and marks it copied. With duplicate scene numbers the first match wins.
func (s *Session) CopyPrompt(sceneNumber int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, prompt := range s.prompts {
		if prompt.SceneNumber == sceneNumber {
			data, err := json.MarshalIndent(prompt, "", "  ")
			if err != nil {
				return "", fmt.Errorf("serialize scene %d: %w", sceneNumber, err)
			}
			s.copied[sceneNumber] = true
			return string(data), nil
		}
	}
	return "", fmt.Errorf("scene %d: %w", sceneNumber, ErrNotFound)
}

// ExportPrompts returns the serialized prompt array exactly as committed.
func (s *Session) ExportPrompts() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rawJSON == "" {
		return "", &PreconditionError{Message: "no scene prompts to export"}
	}
	return s.rawJSON, nil
}

// ScriptView is the working script state.
type ScriptView struct {
	Idea     string `json:"idea"`
	Duration string `json:"duration"`
	Script   string `json:"script"`
	Title    string `json:"title"`
}

func (s *Session) Script() ScriptView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ScriptView{Idea: s.ideaText, Duration: s.duration, Script: s.script, Title: s.title}
}

func (s *Session) Metadata() *VideoMetadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.metadata == nil {
		return nil
	}
	m := *s.metadata
	return &m
}

// PromptsView is the working prompt state plus which scenes were copied.
type PromptsView struct {
	Prompts  []ScenePrompt `json:"prompts"`
	Copied   []int         `json:"copied"`
	Warnings []string      `json:"warnings,omitempty"`
}

func (s *Session) Prompts() PromptsView {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := PromptsView{Prompts: make([]ScenePrompt, len(s.prompts))}
	copy(out.Prompts, s.prompts)
	for scene := range s.copied {
		out.Copied = append(out.Copied, scene)
	}
	sort.Ints(out.Copied)
	out.Warnings = append(out.Warnings, s.warnings...)
	return out
}

// Snapshot is the session overview served by the status endpoint.
type Snapshot struct {
	Loading         bool     `json:"loading"`
	LastError       string   `json:"lastError,omitempty"`
	ActiveProjectID int64    `json:"activeProjectId,omitempty"`
	Tab             string   `json:"tab"`
	IdeaCount       int      `json:"ideaCount"`
	SavedIdeaCount  int      `json:"savedIdeaCount"`
	ProjectCount    int      `json:"projectCount"`
	Warnings        []string `json:"warnings,omitempty"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	snap := Snapshot{
		Loading:         s.loading,
		LastError:       s.lastError,
		ActiveProjectID: s.activeProjectID,
		Tab:             s.tab,
		IdeaCount:       len(s.ideas),
	}
	snap.Warnings = append(snap.Warnings, s.warnings...)
	s.mu.Unlock()

	snap.SavedIdeaCount = len(s.store.ListSavedIdeas())
	snap.ProjectCount = len(s.store.ListProjects(""))
	return snap
}

// Loading reports whether a generation is in flight.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// DeleteProject removes a project; deleting the active one resets the
// session's working state.
func (s *Session) DeleteProject(ctx context.Context, id int64) {
	s.store.DeleteProject(ctx, id)

	s.mu.Lock()
	if s.activeProjectID == id {
		s.activeProjectID = 0
		s.ideaText = ""
		s.script = ""
		s.title = ""
		s.rawJSON = ""
		s.prompts = nil
		s.metadata = nil
		s.copied = make(map[int]bool)
		s.warnings = nil
		s.tab = TabIdeas
	}
	s.mu.Unlock()
}

// refreshFromStore reloads the working copies for a project after a partial
// stage failure so committed sub-steps stay visible.
func (s *Session) refreshFromStore(projectID int64) {
	if projectID == 0 {
		return
	}
	project, err := s.store.GetProject(projectID)
	if err != nil {
		return
	}

	s.mu.Lock()
	if s.activeProjectID == projectID {
		s.script = project.Script
		s.title = project.Title
		s.rawJSON = project.JSON
	}
	s.mu.Unlock()
}
