package handlers

import (
	"net/http"

	"github.com/site-tracker/engine/internal/api/types"
	"github.com/site-tracker/engine/internal/services"
)

const projectNotFound = "Project not found."

type ProjectsHandler struct {
	svc services.ProjectService
}

func NewProjectsHandler(svc services.ProjectService) *ProjectsHandler {
	return &ProjectsHandler{svc: svc}
}

// List godoc
// @Summary List projects visible to the caller
// @Tags projects
// @Security BearerAuth
// @Produce json
// @Param status query string false "status filter"
// @Param archived query string false "true or false"
// @Success 200 {object} types.APIResponse
// @Router /projects [get]
func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := types.ProjectListQuery{Status: r.URL.Query().Get("status"), Archived: r.URL.Query().Get("archived")}
	if err := validate(q); err != nil {
		writeError(w, r, err)
		return
	}
	items, err := h.svc.ListProjects(r.Context(), p, q.Filters())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Create godoc
// @Summary Create a project owned by the caller
// @Tags projects
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body types.ProjectRequest true "project"
// @Success 201 {object} types.APIResponse
// @Router /projects [post]
func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req types.ProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	proj, err := h.svc.CreateProject(r.Context(), p, req.Input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, proj)
}

func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id", projectNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}
	proj, err := h.svc.GetProject(r.Context(), p, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, proj)
}

func (h *ProjectsHandler) Replace(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id", projectNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req types.ProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	proj, err := h.svc.ReplaceProject(r.Context(), p, id, req.Input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, proj)
}

func (h *ProjectsHandler) Patch(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id", projectNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req types.ProjectPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	proj, err := h.svc.PatchProject(r.Context(), p, id, req.Patch())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, proj)
}

func (h *ProjectsHandler) Archive(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id", projectNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}
	proj, err := h.svc.ArchiveProject(r.Context(), p, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, proj)
}

// Delete removes the project with its folders, logs and attachments.
func (h *ProjectsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id", projectNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.DeleteProject(r.Context(), p, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
