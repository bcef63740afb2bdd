package story

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/storycrafter/storycrafter-agent/internal/storage"
)

// Store owns the canonical Project and SavedIdea collections. All mutations
// go through its operations; every mutation writes the full updated
// collection through the persistence collaborator before returning.
// Persistence failures are logged and tolerated - the in-memory collection
// stays authoritative for the session.
type Store struct {
	persist storage.Store
	logger  *slog.Logger

	mu         sync.Mutex
	projects   []*Project
	savedIdeas []*SavedIdea
	lastID     int64
}

func NewStore(persist storage.Store, logger *slog.Logger) *Store {
	return &Store{persist: persist, logger: logger}
}

// Load reads both persisted collections. Absent or corrupt data yields an
// empty collection, never an error: stale storage must not block a session.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.savedIdeas = loadCollection[SavedIdea](ctx, s.persist, storage.KeySavedIdeas, s.logger)
	s.projects = loadCollection[Project](ctx, s.persist, storage.KeyProjects, s.logger)

	for _, p := range s.projects {
		if p.ID > s.lastID {
			s.lastID = p.ID
		}
	}
	for _, i := range s.savedIdeas {
		if i.ID > s.lastID {
			s.lastID = i.ID
		}
	}

	if s.logger != nil {
		s.logger.Info("library loaded", "projects", len(s.projects), "saved_ideas", len(s.savedIdeas))
	}
}

func loadCollection[T any](ctx context.Context, persist storage.Store, key string, logger *slog.Logger) []*T {
	data, err := persist.Load(ctx, key)
	if err != nil {
		if logger != nil {
			logger.Warn("failed to load collection, starting empty", "key", key, "error", err)
		}
		return nil
	}
	if len(data) == 0 {
		return nil
	}

	var items []*T
	if err := json.Unmarshal(data, &items); err != nil {
		if logger != nil {
			logger.Warn("corrupt persisted collection, starting empty", "key", key, "error", err)
		}
		return nil
	}
	return items
}

// nextID allocates a unique integer id from the unix-millisecond clock,
// bumped monotonically on collision.
func (s *Store) nextID() int64 {
	id := time.Now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// CreateProject allocates a new working project from an idea text. When
// sourceSavedIdeaID is non-zero the referenced saved idea is consumed in
// the same logical operation.
func (s *Store) CreateProject(ctx context.Context, ideaText, title string, sourceSavedIdeaID int64) (Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sourceSavedIdeaID != 0 {
		found := false
		for _, idea := range s.savedIdeas {
			if idea.ID == sourceSavedIdeaID {
				found = true
				break
			}
		}
		if !found {
			return Project{}, fmt.Errorf("saved idea %d: %w", sourceSavedIdeaID, ErrNotFound)
		}
	}

	if title == "" {
		title = "Untitled Video"
	}

	project := &Project{
		ID:        s.nextID(),
		Title:     title,
		Idea:      ideaText,
		Status:    StatusWorking,
		CreatedAt: time.Now(),
	}
	s.projects = append(s.projects, project)

	if sourceSavedIdeaID != 0 {
		kept := s.savedIdeas[:0]
		for _, idea := range s.savedIdeas {
			if idea.ID != sourceSavedIdeaID {
				kept = append(kept, idea)
			}
		}
		s.savedIdeas = kept
		s.persistIdeasLocked(ctx)
	}
	s.persistProjectsLocked(ctx)

	if s.logger != nil {
		s.logger.Info("project created", "project_id", project.ID, "from_saved_idea", sourceSavedIdeaID != 0)
	}
	return cloneProject(project), nil
}

// SaveIdea bookmarks an idea text. Saving a text that already exists is a
// no-op returning the existing entry.
func (s *Store) SaveIdea(ctx context.Context, text string) (SavedIdea, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, idea := range s.savedIdeas {
		if idea.Text == text {
			return *idea, nil
		}
	}

	idea := &SavedIdea{ID: s.nextID(), Text: text}
	s.savedIdeas = append(s.savedIdeas, idea)
	s.persistIdeasLocked(ctx)
	return *idea, nil
}

// SaveAllIdeas bookmarks a generated batch, skipping texts already present.
func (s *Store) SaveAllIdeas(ctx context.Context, ideas []VideoIdea) []SavedIdea {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := make(map[string]bool, len(s.savedIdeas))
	for _, idea := range s.savedIdeas {
		existing[idea.Text] = true
	}

	var added []SavedIdea
	for _, idea := range ideas {
		if existing[idea.Idea] {
			continue
		}
		existing[idea.Idea] = true
		saved := &SavedIdea{ID: s.nextID(), Text: idea.Idea}
		s.savedIdeas = append(s.savedIdeas, saved)
		added = append(added, *saved)
	}

	if len(added) > 0 {
		s.persistIdeasLocked(ctx)
	}
	return added
}

// DeleteIdea removes a saved idea by id; deleting an unknown id is a no-op.
func (s *Store) DeleteIdea(ctx context.Context, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.savedIdeas[:0]
	removed := false
	for _, idea := range s.savedIdeas {
		if idea.ID == id {
			removed = true
			continue
		}
		kept = append(kept, idea)
	}
	s.savedIdeas = kept

	if removed {
		s.persistIdeasLocked(ctx)
	}
}

// ListSavedIdeas returns a copy of the saved ideas in insertion order.
func (s *Store) ListSavedIdeas() []SavedIdea {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]SavedIdea, len(s.savedIdeas))
	for i, idea := range s.savedIdeas {
		out[i] = *idea
	}
	return out
}

// ProjectPatch merges stage results and status transitions into a project.
// Nil fields are left untouched; ClearMetadata removes metadata explicitly.
type ProjectPatch struct {
	Title         *string
	Script        *string
	JSON          *string
	Status        *string
	Metadata      *VideoMetadata
	ClearMetadata bool
}

// UpdateProject applies a patch to the identified project and persists the
// collection.
func (s *Store) UpdateProject(ctx context.Context, id int64, patch ProjectPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	project := s.findLocked(id)
	if project == nil {
		return fmt.Errorf("project %d: %w", id, ErrNotFound)
	}

	if patch.Title != nil {
		project.Title = *patch.Title
	}
	if patch.Script != nil {
		project.Script = *patch.Script
	}
	if patch.JSON != nil {
		project.JSON = *patch.JSON
	}
	if patch.Status != nil {
		project.Status = *patch.Status
	}
	if patch.ClearMetadata {
		project.Metadata = nil
	}
	if patch.Metadata != nil {
		m := *patch.Metadata
		project.Metadata = &m
	}

	s.persistProjectsLocked(ctx)
	return nil
}

// GetProject returns a copy of the identified project.
func (s *Store) GetProject(id int64) (Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	project := s.findLocked(id)
	if project == nil {
		return Project{}, fmt.Errorf("project %d: %w", id, ErrNotFound)
	}
	return cloneProject(project), nil
}

// ListProjects returns projects in creation order, optionally filtered by
// status.
func (s *Store) ListProjects(status string) []Project {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Project
	for _, p := range s.projects {
		if status != "" && p.Status != status {
			continue
		}
		out = append(out, cloneProject(p))
	}
	return out
}

// ArchiveProject moves a completed project to archived.
func (s *Store) ArchiveProject(ctx context.Context, id int64) error {
	return s.transition(ctx, id, StatusCompleted, StatusArchived)
}

// UnarchiveProject moves an archived project back to completed.
func (s *Store) UnarchiveProject(ctx context.Context, id int64) error {
	return s.transition(ctx, id, StatusArchived, StatusCompleted)
}

func (s *Store) transition(ctx context.Context, id int64, from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	project := s.findLocked(id)
	if project == nil {
		return fmt.Errorf("project %d: %w", id, ErrNotFound)
	}
	if project.Status != from {
		return fmt.Errorf("project %d is %s, cannot move to %s", id, project.Status, to)
	}

	project.Status = to
	s.persistProjectsLocked(ctx)

	if s.logger != nil {
		s.logger.Info("project status changed", "project_id", id, "from", from, "to", to)
	}
	return nil
}

// DeleteProject removes a project from any status; deleting an unknown id
// is a no-op.
func (s *Store) DeleteProject(ctx context.Context, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.projects[:0]
	removed := false
	for _, p := range s.projects {
		if p.ID == id {
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	s.projects = kept

	if removed {
		s.persistProjectsLocked(ctx)
		if s.logger != nil {
			s.logger.Info("project deleted", "project_id", id)
		}
	}
}

func (s *Store) findLocked(id int64) *Project {
	for _, p := range s.projects {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *Store) persistProjectsLocked(ctx context.Context) {
	s.saveCollection(ctx, storage.KeyProjects, s.projects)
}

func (s *Store) persistIdeasLocked(ctx context.Context) {
	s.saveCollection(ctx, storage.KeySavedIdeas, s.savedIdeas)
}

func (s *Store) saveCollection(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("failed to serialize collection", "key", key, "error", err)
		}
		return
	}
	if err := s.persist.Save(ctx, key, data); err != nil && s.logger != nil {
		s.logger.Warn("failed to persist collection", "key", key, "error", err)
	}
}

func cloneProject(p *Project) Project {
	out := *p
	if p.Metadata != nil {
		m := *p.Metadata
		out.Metadata = &m
	}
	return out
}
