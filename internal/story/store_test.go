package story

import (
	"context"
	"errors"
	"testing"
)

// memStore is an in-memory persistence collaborator for tests.
type memStore struct {
	data     map[string][]byte
	failSave bool
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Load(ctx context.Context, key string) ([]byte, error) {
	return m.data[key], nil
}

func (m *memStore) Save(ctx context.Context, key string, value []byte) error {
	if m.failSave {
		return errors.New("disk full")
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func newTestStore(t *testing.T) (*Store, *memStore) {
	t.Helper()
	persist := newMemStore()
	store := NewStore(persist, nil)
	store.Load(context.Background())
	return store, persist
}

func TestSaveIdea_DeduplicatesByText(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	first, err := store.SaveIdea(ctx, "a kitten learns to swim")
	if err != nil {
		t.Fatalf("SaveIdea() error = %v", err)
	}
	second, err := store.SaveIdea(ctx, "a kitten learns to swim")
	if err != nil {
		t.Fatalf("second SaveIdea() error = %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("duplicate save created new entry: %d != %d", first.ID, second.ID)
	}
	if got := len(store.ListSavedIdeas()); got != 1 {
		t.Errorf("saved idea count = %d, want 1", got)
	}
}

func TestSaveAllIdeas_SkipsExisting(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := store.SaveIdea(ctx, "idea one"); err != nil {
		t.Fatalf("SaveIdea() error = %v", err)
	}

	added := store.SaveAllIdeas(ctx, []VideoIdea{
		{Title: "One", Idea: "idea one"},
		{Title: "Two", Idea: "idea two"},
		{Title: "Three", Idea: "idea three"},
	})

	if len(added) != 2 {
		t.Fatalf("SaveAllIdeas() added %d, want 2", len(added))
	}
	if got := len(store.ListSavedIdeas()); got != 3 {
		t.Errorf("saved idea count = %d, want 3", got)
	}
}

func TestCreateProject_ConsumesSavedIdea(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	saved, err := store.SaveIdea(ctx, "a mother cat protects her kittens from a storm")
	if err != nil {
		t.Fatalf("SaveIdea() error = %v", err)
	}

	project, err := store.CreateProject(ctx, saved.Text, "", saved.ID)
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}

	if project.Status != StatusWorking {
		t.Errorf("new project status = %q, want %q", project.Status, StatusWorking)
	}
	if project.Title != "Untitled Video" {
		t.Errorf("default title = %q, want Untitled Video", project.Title)
	}
	if got := len(store.ListSavedIdeas()); got != 0 {
		t.Errorf("saved idea survived promotion, count = %d", got)
	}
}

func TestCreateProject_UnknownSavedIdea(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.CreateProject(context.Background(), "text", "Title", 12345)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("CreateProject() error = %v, want ErrNotFound", err)
	}
	if got := len(store.ListProjects("")); got != 0 {
		t.Errorf("failed promotion created a project, count = %d", got)
	}
}

func TestNextID_UniqueUnderRapidAllocation(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	seen := make(map[int64]bool)
	for i := 0; i < 50; i++ {
		project, err := store.CreateProject(ctx, "idea", "Title", 0)
		if err != nil {
			t.Fatalf("CreateProject() error = %v", err)
		}
		if seen[project.ID] {
			t.Fatalf("duplicate id %d", project.ID)
		}
		seen[project.ID] = true
	}
}

func TestStatusTransitions(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	project, err := store.CreateProject(ctx, "idea", "Title", 0)
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}

	// working -> archived is not allowed
	if err := store.ArchiveProject(ctx, project.ID); err == nil {
		t.Error("ArchiveProject() on working project succeeded, want error")
	}

	completed := StatusCompleted
	if err := store.UpdateProject(ctx, project.ID, ProjectPatch{Status: &completed}); err != nil {
		t.Fatalf("UpdateProject() error = %v", err)
	}

	if err := store.ArchiveProject(ctx, project.ID); err != nil {
		t.Fatalf("ArchiveProject() error = %v", err)
	}
	got, _ := store.GetProject(project.ID)
	if got.Status != StatusArchived {
		t.Errorf("status = %q, want %q", got.Status, StatusArchived)
	}

	// archiving twice fails and mutates nothing
	if err := store.ArchiveProject(ctx, project.ID); err == nil {
		t.Error("double ArchiveProject() succeeded, want error")
	}

	if err := store.UnarchiveProject(ctx, project.ID); err != nil {
		t.Fatalf("UnarchiveProject() error = %v", err)
	}
	got, _ = store.GetProject(project.ID)
	if got.Status != StatusCompleted {
		t.Errorf("status after unarchive = %q, want %q", got.Status, StatusCompleted)
	}
}

func TestListProjects_StatusFilter(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	a, _ := store.CreateProject(ctx, "idea a", "A", 0)
	if _, err := store.CreateProject(ctx, "idea b", "B", 0); err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}

	completed := StatusCompleted
	if err := store.UpdateProject(ctx, a.ID, ProjectPatch{Status: &completed}); err != nil {
		t.Fatalf("UpdateProject() error = %v", err)
	}

	if got := len(store.ListProjects("")); got != 2 {
		t.Errorf("unfiltered count = %d, want 2", got)
	}
	if got := len(store.ListProjects(StatusWorking)); got != 1 {
		t.Errorf("working count = %d, want 1", got)
	}
	if got := len(store.ListProjects(StatusCompleted)); got != 1 {
		t.Errorf("completed count = %d, want 1", got)
	}
}

func TestDeleteProject_AnyStatusAndNoOp(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	project, _ := store.CreateProject(ctx, "idea", "Title", 0)

	store.DeleteProject(ctx, project.ID)
	if _, err := store.GetProject(project.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetProject() after delete error = %v, want ErrNotFound", err)
	}

	// deleting again is a no-op
	store.DeleteProject(ctx, project.ID)
	store.DeleteIdea(ctx, 999)
}

func TestLoad_RestoresPersistedCollections(t *testing.T) {
	persist := newMemStore()
	store := NewStore(persist, nil)
	store.Load(context.Background())
	ctx := context.Background()

	if _, err := store.SaveIdea(ctx, "persisted idea"); err != nil {
		t.Fatalf("SaveIdea() error = %v", err)
	}
	project, err := store.CreateProject(ctx, "persisted project", "Title", 0)
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}

	reloaded := NewStore(persist, nil)
	reloaded.Load(context.Background())

	if got := len(reloaded.ListSavedIdeas()); got != 1 {
		t.Errorf("reloaded saved idea count = %d, want 1", got)
	}
	got, err := reloaded.GetProject(project.ID)
	if err != nil {
		t.Fatalf("GetProject() after reload error = %v", err)
	}
	if got.Idea != "persisted project" {
		t.Errorf("reloaded idea = %q", got.Idea)
	}

	// new ids must not collide with restored ones
	next, _ := reloaded.CreateProject(ctx, "another", "Title", 0)
	if next.ID <= project.ID {
		t.Errorf("new id %d not above restored id %d", next.ID, project.ID)
	}
}

func TestLoad_ToleratesCorruptData(t *testing.T) {
	persist := newMemStore()
	persist.data["projects"] = []byte("{not json")
	persist.data["saved_ideas"] = []byte("also not json")

	store := NewStore(persist, nil)
	store.Load(context.Background())

	if got := len(store.ListProjects("")); got != 0 {
		t.Errorf("projects from corrupt data = %d, want 0", got)
	}
	if got := len(store.ListSavedIdeas()); got != 0 {
		t.Errorf("saved ideas from corrupt data = %d, want 0", got)
	}
}

func TestMutations_SurvivePersistenceFailure(t *testing.T) {
	persist := newMemStore()
	store := NewStore(persist, nil)
	store.Load(context.Background())
	persist.failSave = true

	idea, err := store.SaveIdea(context.Background(), "kept in memory")
	if err != nil {
		t.Fatalf("SaveIdea() error = %v", err)
	}
	if idea.ID == 0 {
		t.Error("SaveIdea() returned zero id")
	}
	if got := len(store.ListSavedIdeas()); got != 1 {
		t.Errorf("saved idea count = %d, want 1 despite persistence failure", got)
	}
}

func TestUpdateProject_MergesPatch(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	project, _ := store.CreateProject(ctx, "idea", "Title", 0)

	script := "Title: The Brave Kitten\n\nScene 1..."
	title := "The Brave Kitten"
	if err := store.UpdateProject(ctx, project.ID, ProjectPatch{Script: &script, Title: &title}); err != nil {
		t.Fatalf("UpdateProject() error = %v", err)
	}

	metadata := &VideoMetadata{
		Titles:      []string{"a", "b", "c"},
		Description: "desc",
		Hashtags:    []string{"catstory"},
	}
	if err := store.UpdateProject(ctx, project.ID, ProjectPatch{Metadata: metadata}); err != nil {
		t.Fatalf("UpdateProject() metadata error = %v", err)
	}

	got, _ := store.GetProject(project.ID)
	if got.Script != script || got.Title != title {
		t.Errorf("patch lost fields: script=%q title=%q", got.Script, got.Title)
	}
	if got.Metadata == nil || got.Metadata.Description != "desc" {
		t.Errorf("metadata not merged: %+v", got.Metadata)
	}

	if err := store.UpdateProject(ctx, project.ID, ProjectPatch{ClearMetadata: true}); err != nil {
		t.Fatalf("UpdateProject() clear error = %v", err)
	}
	got, _ = store.GetProject(project.ID)
	if got.Metadata != nil {
		t.Error("ClearMetadata did not remove metadata")
	}
	if got.Script != script {
		t.Error("ClearMetadata touched unrelated fields")
	}
}
