package types

import (
	"errors"
	"net/http"

	appErr "github.com/site-tracker/engine/pkg/errors"
)

const genericMessage = "Internal server error."

// FromAppError converts err to the client facing error and its HTTP status. Errors without
// a code never expose their text.
func FromAppError(err error) (*APIError, int) {
	var ae *appErr.AppError
	if !errors.As(err, &ae) {
		return &APIError{Code: string(appErr.CodeInternal), Message: genericMessage}, http.StatusInternalServerError
	}
	status := appErr.HTTPStatus(ae.Code)
	code := string(ae.Code)
	msg := ae.Message
	if status >= http.StatusInternalServerError {
		code = string(appErr.CodeInternal)
		if msg == "" {
			msg = genericMessage
		}
	}
	return &APIError{Code: code, Message: msg}, status
}
