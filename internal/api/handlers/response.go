package handlers

import (
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/zatekoja/medlibrary/internal/domain/entities"
	"github.com/zatekoja/medlibrary/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/medlibrary/pkg/errors"
)

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithAppError maps an AppError type to its HTTP status. Internal
// details are logged, never returned.
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		observability.LoggerFromContext(r.Context()).Error().Err(err).
			Str("path", r.URL.Path).
			Msg("request failed")
	}
	respondWithError(w, status, apperrors.MessageOf(err))
}

// localeFrom reads ?lang=, falling back to the Accept-Language header
func localeFrom(r *http.Request) entities.Locale {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return entities.ParseLocale(lang)
	}
	return entities.ParseLocale(r.Header.Get("Accept-Language"))
}

func listResponse[T any](key string, items []T) map[string]interface{} {
	return map[string]interface{}{
		key:     items,
		"count": len(items),
	}
}

func parseLevel(raw string) (int, error) {
	level, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewValidationError("level must be an integer")
	}
	return level, nil
}
