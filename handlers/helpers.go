package handlers

import (
	"encoding/json"
	"net/http"
	"wayfare/middleware"
	"wayfare/services"
	"wayfare/utils/errors"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// requestUserID pulls the authenticated user id the JWT middleware stored on
// the request context.
func requestUserID(r *http.Request) (string, bool) {
	userID, ok := r.Context().Value("userID").(string)
	return userID, ok && userID != ""
}

// requireMember writes the appropriate error and returns false unless the
// requesting user belongs to the team.
func requireMember(w http.ResponseWriter, r *http.Request, users *services.UserService, team string) bool {
	userID, ok := requestUserID(r)
	if !ok {
		middleware.WriteError(w, errors.ErrUnauthorized)
		return false
	}
	if team == "" {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return false
	}
	member, err := users.IsMember(r.Context(), userID, team)
	if err != nil {
		middleware.WriteError(w, err)
		return false
	}
	if !member {
		middleware.WriteError(w, errors.ErrForbidden)
		return false
	}
	return true
}
