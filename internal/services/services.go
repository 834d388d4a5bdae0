package services

import (
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/site-tracker/engine/internal/models"
	appErr "github.com/site-tracker/engine/pkg/errors"
)

// Clock returns the current time. Services take one so lockout and expiry can be tested.
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

var validate = validator.New(validator.WithRequiredStructEnabled())

// checkVar validates a single value against tag and maps failures to message.
func checkVar(value any, tag, message string) error {
	if err := validate.Var(value, tag); err != nil {
		return appErr.Invalid(message)
	}
	return nil
}

func validProjectStatus(s string) bool {
	return slices.Contains([]string{models.ProjectActive, models.ProjectArchived, models.ProjectCompleted, models.ProjectOnHold}, s)
}

func validActivity(s string) bool { return slices.Contains(models.ActivityTypes, s) }

func validWeather(s string) bool { return slices.Contains(models.WeatherConditions, s) }

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// internal converts unexpected errors into a generic internal error with a client safe message.
// Errors that already carry a code pass through unchanged.
func internal(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr.CodeOf(err) != appErr.CodeUnknown && appErr.CodeOf(err) != appErr.CodeInternal {
		return err
	}
	return appErr.Wrap(err, appErr.CodeInternal, message)
}
