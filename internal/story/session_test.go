package story

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// blockingGateway parks idea generation until released, to exercise the
// single in-flight guard.
type blockingGateway struct {
	fakeGateway
	started chan struct{}
	release chan struct{}
}

func (b *blockingGateway) GenerateIdeas(ctx context.Context, instructions string) ([]VideoIdea, error) {
	b.started <- struct{}{}
	<-b.release
	return b.ideas, b.ideasErr
}

func newTestSession(t *testing.T, gw Gateway) (*Session, *Store) {
	t.Helper()
	store, _ := newTestStore(t)
	pipeline := NewPipeline(gw, store, nil)
	return NewSession(pipeline, store, nil), store
}

func TestSession_BusyGuard(t *testing.T) {
	gw := &blockingGateway{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	gw.ideas = []VideoIdea{{Title: "T", Idea: "I"}}
	session, _ := newTestSession(t, gw)

	done := make(chan error, 1)
	go func() {
		_, err := session.GenerateIdeas(context.Background(), "")
		done <- err
	}()

	<-gw.started

	if !session.Loading() {
		t.Error("Loading() = false during in-flight generation")
	}
	if _, err := session.GenerateScript(context.Background(), "idea", "1 minute"); !errors.Is(err, ErrBusy) {
		t.Errorf("concurrent generation error = %v, want ErrBusy", err)
	}

	close(gw.release)
	if err := <-done; err != nil {
		t.Fatalf("GenerateIdeas() error = %v", err)
	}

	if session.Loading() {
		t.Error("Loading() = true after generation finished")
	}
}

func TestSession_LastErrorLatestWins(t *testing.T) {
	gw := &fakeGateway{ideasErr: errors.New("first failure")}
	session, _ := newTestSession(t, gw)
	ctx := context.Background()

	if _, err := session.GenerateIdeas(ctx, ""); err == nil {
		t.Fatal("GenerateIdeas() succeeded, want error")
	}
	if snap := session.Snapshot(); snap.LastError != "first failure" {
		t.Errorf("LastError = %q", snap.LastError)
	}

	gw.ideasErr = errors.New("second failure")
	if _, err := session.GenerateIdeas(ctx, ""); err == nil {
		t.Fatal("GenerateIdeas() succeeded, want error")
	}
	if snap := session.Snapshot(); snap.LastError != "second failure" {
		t.Errorf("LastError = %q, want latest", snap.LastError)
	}

	gw.ideasErr = nil
	gw.ideas = []VideoIdea{{Title: "T", Idea: "I"}}
	if _, err := session.GenerateIdeas(ctx, ""); err != nil {
		t.Fatalf("GenerateIdeas() error = %v", err)
	}
	if snap := session.Snapshot(); snap.LastError != "" {
		t.Errorf("LastError = %q after success, want empty", snap.LastError)
	}
}

func TestSession_StartProjectFromFreshIdea(t *testing.T) {
	session, store := newTestSession(t, &fakeGateway{})
	ctx := context.Background()

	project, err := session.StartProject(ctx, FreshIdea(VideoIdea{
		Title: "The Garden",
		Idea:  "a day in the garden",
	}))
	if err != nil {
		t.Fatalf("StartProject() error = %v", err)
	}

	if project.Title != "The Garden" {
		t.Errorf("title = %q", project.Title)
	}
	snap := session.Snapshot()
	if snap.ActiveProjectID != project.ID {
		t.Errorf("ActiveProjectID = %d, want %d", snap.ActiveProjectID, project.ID)
	}
	if snap.Tab != TabScript {
		t.Errorf("Tab = %q, want %q", snap.Tab, TabScript)
	}
	if got := len(store.ListProjects(StatusWorking)); got != 1 {
		t.Errorf("working project count = %d, want 1", got)
	}
}

func TestSession_StartProjectFromSavedIdea(t *testing.T) {
	session, store := newTestSession(t, &fakeGateway{})
	ctx := context.Background()

	saved, err := session.SaveIdea(ctx, "a saved idea")
	if err != nil {
		t.Fatalf("SaveIdea() error = %v", err)
	}

	project, err := session.StartProject(ctx, SavedIdeaRef(saved.ID))
	if err != nil {
		t.Fatalf("StartProject() error = %v", err)
	}
	if project.Idea != "a saved idea" {
		t.Errorf("idea = %q", project.Idea)
	}
	if got := len(store.ListSavedIdeas()); got != 0 {
		t.Errorf("saved idea survived promotion, count = %d", got)
	}

	if _, err := session.StartProject(ctx, SavedIdeaRef(saved.ID)); !errors.Is(err, ErrNotFound) {
		t.Errorf("re-promotion error = %v, want ErrNotFound", err)
	}
}

func TestSession_ScriptStageAdvancesTab(t *testing.T) {
	gw := &fakeGateway{
		script:  &ScriptResult{Script: "Title: X\n\nScene 1...", Title: "X"},
		prompts: []ScenePrompt{testPrompt(1)},
	}
	session, _ := newTestSession(t, gw)
	ctx := context.Background()

	if _, err := session.StartProject(ctx, FreshIdea(VideoIdea{Title: "T", Idea: "idea"})); err != nil {
		t.Fatalf("StartProject() error = %v", err)
	}

	if _, err := session.GenerateScript(ctx, "", ""); err != nil {
		t.Fatalf("GenerateScript() error = %v", err)
	}

	snap := session.Snapshot()
	if snap.Tab != TabPrompts {
		t.Errorf("Tab = %q, want %q", snap.Tab, TabPrompts)
	}
	view := session.Script()
	if view.Title != "X" || view.Idea != "idea" || view.Duration != DefaultDuration {
		t.Errorf("script view = %+v", view)
	}
}

func TestSession_CopyPromptMarksScene(t *testing.T) {
	gw := &fakeGateway{
		script:  &ScriptResult{Script: "Title: X\n\nScene 1...", Title: "X"},
		prompts: []ScenePrompt{testPrompt(1), testPrompt(2)},
	}
	session, _ := newTestSession(t, gw)
	ctx := context.Background()

	if _, err := session.StartProject(ctx, FreshIdea(VideoIdea{Title: "T", Idea: "idea"})); err != nil {
		t.Fatalf("StartProject() error = %v", err)
	}
	if _, err := session.GenerateScript(ctx, "", ""); err != nil {
		t.Fatalf("GenerateScript() error = %v", err)
	}

	text, err := session.CopyPrompt(2)
	if err != nil {
		t.Fatalf("CopyPrompt() error = %v", err)
	}
	if !strings.Contains(text, `"scene_number": 2`) {
		t.Errorf("copied text missing scene: %q", text)
	}

	view := session.Prompts()
	if len(view.Copied) != 1 || view.Copied[0] != 2 {
		t.Errorf("Copied = %v, want [2]", view.Copied)
	}

	if _, err := session.CopyPrompt(99); !errors.Is(err, ErrNotFound) {
		t.Errorf("CopyPrompt(99) error = %v, want ErrNotFound", err)
	}
}

func TestSession_ViewProjectResumesState(t *testing.T) {
	gw := &fakeGateway{
		script:  &ScriptResult{Script: "Title: X\n\nScene 1...", Title: "X"},
		prompts: []ScenePrompt{testPrompt(1)},
	}
	session, _ := newTestSession(t, gw)
	ctx := context.Background()

	project, err := session.StartProject(ctx, FreshIdea(VideoIdea{Title: "T", Idea: "idea"}))
	if err != nil {
		t.Fatalf("StartProject() error = %v", err)
	}
	if _, err := session.GenerateScript(ctx, "", ""); err != nil {
		t.Fatalf("GenerateScript() error = %v", err)
	}
	if _, err := session.CopyPrompt(1); err != nil {
		t.Fatalf("CopyPrompt() error = %v", err)
	}

	resumed, err := session.ViewProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("ViewProject() error = %v", err)
	}
	if resumed.Status != StatusCompleted {
		t.Errorf("status = %q", resumed.Status)
	}

	snap := session.Snapshot()
	if snap.Tab != TabPrompts {
		t.Errorf("Tab = %q, want %q", snap.Tab, TabPrompts)
	}

	// copied marks do not survive a resume
	view := session.Prompts()
	if len(view.Copied) != 0 {
		t.Errorf("Copied = %v after resume, want empty", view.Copied)
	}
	if len(view.Prompts) != 1 {
		t.Errorf("prompts = %d, want 1", len(view.Prompts))
	}
}

func TestSession_ViewProjectToleratesMalformedJSON(t *testing.T) {
	session, store := newTestSession(t, &fakeGateway{})
	ctx := context.Background()

	project, _ := store.CreateProject(ctx, "idea", "Title", 0)
	broken := "{not json"
	if err := store.UpdateProject(ctx, project.ID, ProjectPatch{JSON: &broken}); err != nil {
		t.Fatalf("UpdateProject() error = %v", err)
	}

	if _, err := session.ViewProject(ctx, project.ID); err != nil {
		t.Fatalf("ViewProject() error = %v, want tolerance", err)
	}

	view := session.Prompts()
	if len(view.Prompts) != 0 {
		t.Errorf("prompts from malformed json = %d, want 0", len(view.Prompts))
	}

	// the raw text is still exportable
	raw, err := session.ExportPrompts()
	if err != nil {
		t.Fatalf("ExportPrompts() error = %v", err)
	}
	if raw != broken {
		t.Errorf("ExportPrompts() = %q, want stored text", raw)
	}
}

func TestSession_ViewProjectWithoutPromptsUsesScriptTab(t *testing.T) {
	session, store := newTestSession(t, &fakeGateway{})
	ctx := context.Background()

	project, _ := store.CreateProject(ctx, "idea", "Title", 0)

	if _, err := session.ViewProject(ctx, project.ID); err != nil {
		t.Fatalf("ViewProject() error = %v", err)
	}
	if snap := session.Snapshot(); snap.Tab != TabScript {
		t.Errorf("Tab = %q, want %q", snap.Tab, TabScript)
	}
}

func TestSession_DeleteActiveProjectResets(t *testing.T) {
	session, _ := newTestSession(t, &fakeGateway{})
	ctx := context.Background()

	project, err := session.StartProject(ctx, FreshIdea(VideoIdea{Title: "T", Idea: "idea"}))
	if err != nil {
		t.Fatalf("StartProject() error = %v", err)
	}

	session.DeleteProject(ctx, project.ID)

	snap := session.Snapshot()
	if snap.ActiveProjectID != 0 {
		t.Errorf("ActiveProjectID = %d after delete, want 0", snap.ActiveProjectID)
	}
	if snap.Tab != TabIdeas {
		t.Errorf("Tab = %q, want %q", snap.Tab, TabIdeas)
	}
}

func TestSession_SaveAllIdeasUsesWorkingBatch(t *testing.T) {
	gw := &fakeGateway{ideas: []VideoIdea{
		{Title: "A", Idea: "idea a"},
		{Title: "B", Idea: "idea b"},
	}}
	session, store := newTestSession(t, gw)
	ctx := context.Background()

	if _, err := session.GenerateIdeas(ctx, ""); err != nil {
		t.Fatalf("GenerateIdeas() error = %v", err)
	}

	saved := session.SaveAllIdeas(ctx)
	if len(saved) != 2 {
		t.Fatalf("SaveAllIdeas() = %d, want 2", len(saved))
	}
	if got := len(store.ListSavedIdeas()); got != 2 {
		t.Errorf("library count = %d, want 2", got)
	}

	// idempotent for the same batch
	if again := session.SaveAllIdeas(ctx); len(again) != 0 {
		t.Errorf("second SaveAllIdeas() = %d, want 0", len(again))
	}
}

func TestSession_GenerateScriptPartialFailureKeepsCommitted(t *testing.T) {
	gw := &fakeGateway{
		script:    &ScriptResult{Script: "Title: Kept\n\nScene 1...", Title: "Kept"},
		promptErr: errors.New("model overloaded"),
	}
	session, _ := newTestSession(t, gw)
	ctx := context.Background()

	if _, err := session.StartProject(ctx, FreshIdea(VideoIdea{Title: "T", Idea: "idea"})); err != nil {
		t.Fatalf("StartProject() error = %v", err)
	}
	if _, err := session.GenerateScript(ctx, "", ""); err == nil {
		t.Fatal("GenerateScript() succeeded, want error")
	}

	// the committed script is refreshed into the working view
	deadline := time.Now().Add(time.Second)
	for session.Script().Script == "" && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if view := session.Script(); view.Script == "" || view.Title != "Kept" {
		t.Errorf("script view after partial failure = %+v", view)
	}
	if snap := session.Snapshot(); snap.LastError == "" {
		t.Error("LastError empty after failure")
	}
}
