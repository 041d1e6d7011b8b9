package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"intern-pulse-bot/internal/models"
	"intern-pulse-bot/internal/repository"
)

type contextKey string

const profileContextKey contextKey = "profile"

// ProfileFromContext returns the authenticated profile attached by
// RequireProfile, or nil when the request is unauthenticated.
func ProfileFromContext(ctx context.Context) *models.Profile {
	profile, _ := ctx.Value(profileContextKey).(*models.Profile)
	return profile
}

// RequireProfile resolves the X-User-Id header (set by the auth gateway in
// front of this service) into a Profile and attaches it to the request
// context. Requests without a resolvable profile are refused.
func RequireProfile(profiles repository.ProfileRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.Header.Get("X-User-Id")
			if userID == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			profile, err := profiles.GetByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					http.Error(w, "Unauthorized", http.StatusUnauthorized)
					return
				}
				log.Printf("Error resolving profile %s: %v", userID, err)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			ctx := context.WithValue(r.Context(), profileContextKey, profile)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates a route on the admin role. Must run after RequireProfile.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		profile := ProfileFromContext(r.Context())
		if profile == nil || profile.Role != models.RoleAdmin {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeServiceError maps the lifecycle error taxonomy onto HTTP statuses.
// None of these are fatal; the UI re-displays the form with the message.
func writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrMissingReason):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrNonWorkday):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrDuplicateEntry),
		errors.Is(err, models.ErrAlreadyClosed),
		errors.Is(err, models.ErrInvalidState):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		log.Printf("Internal error: %v", err)
		writeJSON(w, status, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
