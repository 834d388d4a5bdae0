package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/site-tracker/engine/internal/api/types"
	"github.com/site-tracker/engine/internal/services"
)

const logNotFound = "Daily log not found."

type LogsHandler struct {
	svc services.LogService
}

func NewLogsHandler(svc services.LogService) *LogsHandler {
	return &LogsHandler{svc: svc}
}

func (h *LogsHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	projectID, err := pathID(r, "id", projectNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req types.LogRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.Input()
	if err != nil {
		writeError(w, r, err)
		return
	}
	l, err := h.svc.CreateLog(r.Context(), p, projectID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

// List godoc
// @Summary List a project's daily logs, newest first
// @Tags logs
// @Security BearerAuth
// @Produce json
// @Param id path string true "project id"
// @Param startDate query string false "inclusive lower bound (alias from)"
// @Param endDate query string false "inclusive upper bound (alias to)"
// @Param activityType query string false "activity type"
// @Param folder query string false "folder id"
// @Param page query int false "page, from 1"
// @Param limit query int false "page size, at most 100"
// @Success 200 {object} types.APIResponse
// @Router /projects/{id}/logs [get]
func (h *LogsHandler) List(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	projectID, err := pathID(r, "id", projectNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}
	query, err := parseLogQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := h.svc.ListLogs(r.Context(), p, projectID, query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func parseLogQuery(r *http.Request) (services.LogQuery, error) {
	q := r.URL.Query()
	raw := types.LogListQuery{
		From:         first(q, "startDate", "from"),
		To:           first(q, "endDate", "to"),
		ActivityType: first(q, "activityType"),
		Folder:       first(q, "folder"),
	}
	var err error
	if raw.Page, err = atoi(first(q, "page")); err != nil {
		return services.LogQuery{}, err
	}
	if raw.Limit, err = atoi(first(q, "limit")); err != nil {
		return services.LogQuery{}, err
	}
	if err := validate(raw); err != nil {
		return services.LogQuery{}, err
	}

	out := services.LogQuery{ActivityType: raw.ActivityType, Page: raw.Page, Limit: raw.Limit}
	if out.From, err = optionalDate(raw.From); err != nil {
		return services.LogQuery{}, err
	}
	if out.To, err = optionalDate(raw.To); err != nil {
		return services.LogQuery{}, err
	}
	if raw.Folder != "" {
		id := uuid.MustParse(raw.Folder)
		out.FolderID = &id
	}
	return out, nil
}

func (h *LogsHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id", logNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}
	detail, err := h.svc.GetLog(r.Context(), p, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *LogsHandler) Attachments(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id", logNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := h.svc.ListLogAttachments(r.Context(), p, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *LogsHandler) Replace(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id", logNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req types.LogRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.Input()
	if err != nil {
		writeError(w, r, err)
		return
	}
	l, err := h.svc.ReplaceLog(r.Context(), p, id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (h *LogsHandler) Patch(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id", logNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req types.LogRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	patch, err := req.Patch()
	if err != nil {
		writeError(w, r, err)
		return
	}
	l, err := h.svc.PatchLog(r.Context(), p, id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (h *LogsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id", logNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.DeleteLog(r.Context(), p, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
