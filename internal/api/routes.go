package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/storycrafter/storycrafter-agent/internal/config"
	"github.com/storycrafter/storycrafter-agent/internal/story"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))
	r.Get("/status", statusHandler(cfg))

	r.Get("/ideas", listIdeasHandler(cfg))
	r.Post("/ideas/generate", generateIdeasHandler(cfg))

	r.Get("/library/ideas", listSavedIdeasHandler(cfg))
	r.Post("/library/ideas", saveIdeaHandler(cfg))
	r.Post("/library/ideas/save-all", saveAllIdeasHandler(cfg))
	r.Delete("/library/ideas/{id}", deleteSavedIdeaHandler(cfg))

	r.Get("/projects", listProjectsHandler(cfg))
	r.Post("/projects", createProjectHandler(cfg))
	r.Post("/projects/{id}/archive", archiveProjectHandler(cfg))
	r.Post("/projects/{id}/unarchive", unarchiveProjectHandler(cfg))
	r.Post("/projects/{id}/view", viewProjectHandler(cfg))
	r.Delete("/projects/{id}", deleteProjectHandler(cfg))

	r.Post("/script/generate", generateScriptHandler(cfg))
	r.Get("/script", getScriptHandler(cfg))

	r.Post("/metadata/generate", generateMetadataHandler(cfg))
	r.Get("/metadata", getMetadataHandler(cfg))

	r.Get("/prompts", listPromptsHandler(cfg))
	r.Post("/prompts/{scene}/copy", copyPromptHandler(cfg))
	r.Get("/prompts/export", exportPromptsHandler(cfg))

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: config.Version,
			UptimeS: uptime,
		})
	}
}

func statusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, cfg.Session.Snapshot())
	}
}

func listIdeasHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, IdeasResponse{Ideas: cfg.Session.Ideas()})
	}
}

func generateIdeasHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GenerateIdeasRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		ideas, err := cfg.Session.GenerateIdeas(r.Context(), req.Instructions)
		if err != nil {
			WriteDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, IdeasResponse{Ideas: ideas})
	}
}

func listSavedIdeasHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, SavedIdeasResponse{Ideas: cfg.Store.ListSavedIdeas()})
	}
}

func saveIdeaHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SaveIdeaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		idea, err := cfg.Session.SaveIdea(r.Context(), req.Text)
		if err != nil {
			WriteDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, idea)
	}
}

func saveAllIdeasHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		saved := cfg.Session.SaveAllIdeas(r.Context())
		WriteJSON(w, http.StatusOK, SaveAllResponse{Saved: saved})
	}
}

func deleteSavedIdeaHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "id")
		if !ok {
			return
		}
		cfg.Store.DeleteIdea(r.Context(), id)
		w.WriteHeader(http.StatusNoContent)
	}
}

func listProjectsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := r.URL.Query().Get("status")
		switch status {
		case "", story.StatusWorking, story.StatusCompleted, story.StatusArchived:
		default:
			WriteError(w, http.StatusBadRequest, "unknown status filter", "BAD_REQUEST")
			return
		}
		projects := cfg.Store.ListProjects(status)
		if projects == nil {
			projects = []story.Project{}
		}
		WriteJSON(w, http.StatusOK, ProjectsResponse{Projects: projects})
	}
}

func createProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateProjectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		var src story.IdeaSource
		switch req.Kind {
		case story.SourceFresh:
			src = story.FreshIdea(story.VideoIdea{Title: req.Title, Idea: req.Idea})
		case story.SourceSaved:
			src = story.SavedIdeaRef(req.ID)
		default:
			WriteError(w, http.StatusBadRequest, "kind must be fresh or saved", "BAD_REQUEST")
			return
		}

		project, err := cfg.Session.StartProject(r.Context(), src)
		if err != nil {
			WriteDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, project)
	}
}

func archiveProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "id")
		if !ok {
			return
		}
		if err := cfg.Store.ArchiveProject(r.Context(), id); err != nil {
			WriteDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func unarchiveProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "id")
		if !ok {
			return
		}
		if err := cfg.Store.UnarchiveProject(r.Context(), id); err != nil {
			WriteDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func viewProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "id")
		if !ok {
			return
		}
		project, err := cfg.Session.ViewProject(r.Context(), id)
		if err != nil {
			WriteDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, project)
	}
}

func deleteProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "id")
		if !ok {
			return
		}
		cfg.Session.DeleteProject(r.Context(), id)
		w.WriteHeader(http.StatusNoContent)
	}
}

func generateScriptHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GenerateScriptRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		result, err := cfg.Session.GenerateScript(r.Context(), req.Idea, req.Duration)
		if err != nil {
			WriteDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, ScriptStageResponse{
			Script:   result.Script,
			Title:    result.Title,
			Prompts:  result.Prompts,
			Warnings: result.Warnings,
		})
	}
}

func getScriptHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, cfg.Session.Script())
	}
}

func generateMetadataHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metadata, err := cfg.Session.GenerateMetadata(r.Context())
		if err != nil {
			WriteDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, metadata)
	}
}

func getMetadataHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metadata := cfg.Session.Metadata()
		if metadata == nil {
			WriteError(w, http.StatusNotFound, "no metadata generated", "NOT_FOUND")
			return
		}
		WriteJSON(w, http.StatusOK, metadata)
	}
}

func listPromptsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, cfg.Session.Prompts())
	}
}

func copyPromptHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scene, err := strconv.Atoi(chi.URLParam(r, "scene"))
		if err != nil || scene < 1 {
			WriteError(w, http.StatusBadRequest, "scene must be a positive integer", "BAD_REQUEST")
			return
		}

		prompt, err := cfg.Session.CopyPrompt(scene)
		if err != nil {
			WriteDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, CopyPromptResponse{SceneNumber: scene, Prompt: prompt})
	}
}

func exportPromptsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := cfg.Session.ExportPrompts()
		if err != nil {
			WriteDomainError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(raw))
	}
}

func idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, http.StatusBadRequest, name+" must be a positive integer", "BAD_REQUEST")
		return 0, false
	}
	return id, true
}
