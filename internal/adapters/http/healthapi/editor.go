package healthapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/okian/healthdash/internal/adapters/catalog"
	"github.com/okian/healthdash/internal/adapters/http/api"
	"github.com/okian/healthdash/pkg/logger"
)

const maxBodyBytes = 1 << 20

func (s *Server) registerEditor(r chi.Router, ed catalog.Editor) {
	h := editorHandlers{srv: s, ed: ed}

	r.Route("/projects", func(r chi.Router) {
		r.With(api.Instrument("projects_list")).Get("/", h.listProjects)
		r.With(api.Instrument("projects_create")).Post("/", h.createProject)
		r.With(api.Instrument("project_get")).Get("/{id}", h.getProject)
		r.With(api.Instrument("project_update")).Put("/{id}", h.updateProject)
		r.With(api.Instrument("project_delete")).Delete("/{id}", h.deleteProject)
	})
	r.Route("/tasks", func(r chi.Router) {
		r.With(api.Instrument("tasks_create")).Post("/", h.createTask)
		r.With(api.Instrument("task_get")).Get("/{id}", h.getTask)
		r.With(api.Instrument("task_update")).Put("/{id}", h.updateTask)
		r.With(api.Instrument("task_delete")).Delete("/{id}", h.deleteTask)
	})
}

type editorHandlers struct {
	srv *Server
	ed  catalog.Editor
}

func (h editorHandlers) listProjects(w http.ResponseWriter, r *http.Request) {
	rows, err := h.ed.ListProjects(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h editorHandlers) getProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	row, err := h.ed.GetProject(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

func (h editorHandlers) createProject(w http.ResponseWriter, r *http.Request) {
	var in catalog.ProjectRow
	if !decodeBody(w, r, &in) {
		return
	}
	row, err := h.ed.CreateProject(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, row)
}

func (h editorHandlers) updateProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var patch catalog.ProjectPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	row, err := h.ed.UpdateProject(r.Context(), id, patch)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

func (h editorHandlers) deleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.ed.DeleteProject(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h editorHandlers) getTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	row, err := h.ed.GetTask(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

func (h editorHandlers) createTask(w http.ResponseWriter, r *http.Request) {
	var in catalog.TaskRow
	if !decodeBody(w, r, &in) {
		return
	}
	row, err := h.ed.CreateTask(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, row)
}

func (h editorHandlers) updateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var patch catalog.TaskPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	row, err := h.ed.UpdateTask(r.Context(), id, patch)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

func (h editorHandlers) deleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.ed.DeleteTask(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// fail maps catalog sentinels to status codes. Unknown errors are logged.
func (h editorHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Code: "not_found", Message: err.Error()})
	case errors.Is(err, catalog.ErrInvalid):
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "invalid_request", Message: err.Error()})
	default:
		ctx := r.Context()
		h.srv.logger.Error(ctx, "catalog edit failed",
			logger.String("request_id", middleware.GetReqID(ctx)),
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Code:    "catalog_unavailable",
			Message: ErrCatalog.Error(),
		})
	}
}

// pathID parses {id}. A non-numeric id names nothing, so it is a 404.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusNotFound, errorResponse{
			Code:    "not_found",
			Message: fmt.Sprintf("%s: id %q", catalog.ErrNotFound, raw),
		})
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "invalid_request", Message: err.Error()})
		return false
	}
	return true
}
