package handlers

import (
	"net/http"

	"github.com/site-tracker/engine/internal/api/types"
	"github.com/site-tracker/engine/internal/services"
)

const folderNotFound = "Folder not found."

type FoldersHandler struct {
	svc services.FolderService
}

func NewFoldersHandler(svc services.FolderService) *FoldersHandler {
	return &FoldersHandler{svc: svc}
}

func (h *FoldersHandler) List(w http.ResponseWriter, r *http.Request) {
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
	items, err := h.svc.ListFolders(r.Context(), p, projectID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *FoldersHandler) Create(w http.ResponseWriter, r *http.Request) {
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
	var req types.FolderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	f, err := h.svc.CreateFolder(r.Context(), p, projectID, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (h *FoldersHandler) Rename(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id", folderNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req types.FolderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	f, err := h.svc.RenameFolder(r.Context(), p, id, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// Delete removes the folder; its logs stay in the project without a folder.
func (h *FoldersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id", folderNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.DeleteFolder(r.Context(), p, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
