package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/site-tracker/engine/internal/api/middleware"
	"github.com/site-tracker/engine/internal/api/types"
	"github.com/site-tracker/engine/internal/api/validators"
	"github.com/site-tracker/engine/internal/authz"
	appErr "github.com/site-tracker/engine/pkg/errors"
	"github.com/site-tracker/engine/pkg/logger"
	"go.uber.org/zap"
)

const maxJSONBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, data any) {
	types.Write(w, status, types.APIResponse{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr, status := types.FromAppError(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	types.Write(w, status, types.APIResponse{
		Success: false,
		Error:   apiErr,
		Meta:    &types.Meta{RequestID: middleware.GetRequestID(r.Context())},
	})
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var ae *appErr.AppError
		if errors.As(err, &ae) {
			return ae
		}
		return appErr.Invalid("Invalid JSON body.")
	}
	return nil
}

// principal returns the caller attached by the auth middleware.
func principal(r *http.Request) (authz.Principal, error) {
	p, ok := authz.FromContext(r.Context())
	if !ok {
		return authz.Principal{}, appErr.New(appErr.CodeUnauthorized, "Missing authorization token.")
	}
	return p, nil
}

// pathID parses a path parameter. A malformed id cannot exist, so it reports notFound.
func pathID(r *http.Request, name, notFound string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, appErr.NotFound(notFound)
	}
	return id, nil
}

func validate(v any) error {
	if err := validators.New().Struct(v); err != nil {
		return appErr.Invalid(validators.Message(err))
	}
	return nil
}

// first returns the first non-empty value among keys.
func first(q url.Values, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			return v
		}
	}
	return ""
}

func atoi(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, appErr.Invalid("Invalid number: " + s)
	}
	return n, nil
}
