package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/site-tracker/engine/internal/api/types"
	"github.com/site-tracker/engine/internal/services"
	appErr "github.com/site-tracker/engine/pkg/errors"
)

const (
	attachmentNotFound = "Attachment not found."
	multipartMemory    = 8 << 20
)

type AttachmentsHandler struct {
	svc    services.AttachmentService
	limits services.UploadLimits
}

func NewAttachmentsHandler(svc services.AttachmentService, limits services.UploadLimits) *AttachmentsHandler {
	return &AttachmentsHandler{svc: svc, limits: limits}
}

// Upload godoc
// @Summary Upload photos or PDFs to a daily log
// @Tags attachments
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "log id"
// @Param files formData file true "files (also files[])"
// @Param captions formData string false "caption per file, or one for all"
// @Param tags formData string false "comma separated tags per file, or one list for all"
// @Success 201 {object} types.APIResponse
// @Router /logs/{id}/attachments [post]
func (h *AttachmentsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logID, err := pathID(r, "id", logNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, int64(h.limits.MaxFiles)*h.limits.MaxBytes+(1<<20))
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, appErr.Invalid("File too large."))
			return
		}
		writeError(w, r, appErr.Invalid("Invalid multipart body."))
		return
	}
	defer r.MultipartForm.RemoveAll()

	form := r.MultipartForm
	in := services.UploadInput{
		Captions: formValues(form, "captions"),
		Tags:     formValues(form, "tags"),
	}
	for _, fh := range append(form.File["files"], form.File["files[]"]...) {
		in.Files = append(in.Files, uploadFile(fh))
	}

	items, err := h.svc.Upload(r.Context(), p, logID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, items)
}

func formValues(form *multipart.Form, name string) []string {
	return append(form.Value[name], form.Value[name+"[]"]...)
}

// uploadFile trusts the part's declared type unless it is missing or generic, in which
// case the first bytes decide.
func uploadFile(fh *multipart.FileHeader) services.UploadFile {
	ct := strings.TrimSpace(strings.Split(fh.Header.Get("Content-Type"), ";")[0])
	if ct == "" || ct == "application/octet-stream" {
		ct = sniff(fh)
	}
	return services.UploadFile{
		Name:        fh.Filename,
		ContentType: ct,
		Size:        fh.Size,
		Open:        func() (io.ReadCloser, error) { return fh.Open() },
	}
}

func sniff(fh *multipart.FileHeader) string {
	f, err := fh.Open()
	if err != nil {
		return "application/octet-stream"
	}
	defer f.Close()
	buf := make([]byte, 512)
	n, _ := io.ReadFull(f, buf)
	return strings.Split(http.DetectContentType(buf[:n]), ";")[0]
}

func (h *AttachmentsHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id", attachmentNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}
	comments, err := h.svc.ListComments(r.Context(), p, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// AddComment responds with the whole thread, oldest first.
func (h *AttachmentsHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id", attachmentNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req types.CommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	comments, err := h.svc.AddComment(r.Context(), p, id, req.Text)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, comments)
}

func (h *AttachmentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id", attachmentNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.DeleteAttachment(r.Context(), p, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
