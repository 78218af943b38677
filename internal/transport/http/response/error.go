package response

import (
	"errors"
	"net/http"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/logger"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/views"
)

// PageRenderer is the subset of views.Renderer used for error pages.
type PageRenderer interface {
	Render(w http.ResponseWriter, status int, name string, p views.Page) error
}

// HTMLError returns a writer that turns an error into an HTML error page.
// Non-domain errors become a 500 without leaking details.
func HTMLError(pages PageRenderer) func(http.ResponseWriter, *http.Request, error) {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		status, msg := statusAndMessage(err)

		lg := logger.WithCtx(r.Context())
		if status >= 500 {
			lg.Error().Err(err).Int("status", status).Msg("request failed")
		} else {
			lg.Debug().Err(err).Int("status", status).Msg("request rejected")
		}

		renderErr := pages.Render(w, status, "error", views.Page{
			Status:     status,
			StatusText: http.StatusText(status),
			Message:    msg,
			RequestID:  RequestIDFromContext(r),
		})
		if renderErr != nil {
			http.Error(w, http.StatusText(status), status)
		}
	}
}

func statusAndMessage(err error) (int, string) {
	var de *domain.Error
	if !errors.As(err, &de) {
		return http.StatusInternalServerError, "Something went wrong. Please try again later."
	}
	status := statusFromKind(de.Kind)
	switch {
	case status == http.StatusServiceUnavailable:
		return status, "The service is temporarily unavailable. Please try again later."
	case status >= 500:
		return status, "Something went wrong. Please try again later."
	default:
		return status, de.Message
	}
}

// statusFromKind maps domain error kinds to HTTP status codes.
func statusFromKind(kind domain.ErrKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindAuth:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindRateLimited:
		return http.StatusTooManyRequests
	case domain.KindInfrastructure:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
