package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/site-tracker/engine/internal/api/types"
	"github.com/site-tracker/engine/internal/services"
)

type ReportsHandler struct {
	svc services.ReportService
}

func NewReportsHandler(svc services.ReportService) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

// Project godoc
// @Summary Render a project progress report
// @Tags reports
// @Security BearerAuth
// @Produce application/pdf
// @Param id path string true "project id"
// @Param startDate query string false "inclusive lower bound (alias from)"
// @Param endDate query string false "inclusive upper bound (alias to)"
// @Param folder query string false "folder id"
// @Param logIds query string false "comma separated log ids"
// @Success 200 {file} binary
// @Router /projects/{id}/report [get]
func (h *ReportsHandler) Project(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, []string{"startDate", "from"}, []string{"endDate", "to"})
}

// Daily serves the same document under the daily report route, which names its range from/to.
func (h *ReportsHandler) Daily(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, []string{"from", "startDate"}, []string{"to", "endDate"})
}

func (h *ReportsHandler) render(w http.ResponseWriter, r *http.Request, fromKeys, toKeys []string) {
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
	q, err := parseReportQuery(r, fromKeys, toKeys)
	if err != nil {
		writeError(w, r, err)
		return
	}
	doc, err := h.svc.ProjectReport(r.Context(), p, projectID, q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="project-report.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(doc)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

func parseReportQuery(r *http.Request, fromKeys, toKeys []string) (services.ReportQuery, error) {
	q := r.URL.Query()
	raw := types.ReportQueryParams{
		From:   first(q, fromKeys...),
		To:     first(q, toKeys...),
		Folder: first(q, "folder"),
	}
	for _, v := range q["logIds"] {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				raw.LogIDs = append(raw.LogIDs, id)
			}
		}
	}
	if err := validate(raw); err != nil {
		return services.ReportQuery{}, err
	}

	var out services.ReportQuery
	var err error
	if out.From, err = optionalDate(raw.From); err != nil {
		return services.ReportQuery{}, err
	}
	if out.To, err = optionalDate(raw.To); err != nil {
		return services.ReportQuery{}, err
	}
	if raw.Folder != "" {
		id := uuid.MustParse(raw.Folder)
		out.FolderID = &id
	}
	for _, s := range raw.LogIDs {
		out.LogIDs = append(out.LogIDs, uuid.MustParse(s))
	}
	return out, nil
}

func optionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := types.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
