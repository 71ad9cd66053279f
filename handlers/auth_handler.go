package handlers

import (
	"encoding/json"
	"net/http"
	"wayfare/middleware"
	"wayfare/services"
	"wayfare/utils/errors"
)

type AuthHandler struct {
	userService *services.UserService
}

func NewAuthHandler(userService *services.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

func (h *AuthHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	userID, err := h.userService.Register(r.Context(), input.Username, input.Email, input.Password)
	if err != nil {
		middleware.WriteError(w, errors.Wrap(err, "REGISTRATION_ERROR", "Failed to register user", http.StatusInternalServerError))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"userID": userID})
}

func (h *AuthHandler) LoginUser(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}
	token, err := h.userService.Login(r.Context(), input.Username, input.Password)
	if err != nil {
		middleware.WriteError(w, errors.Wrap(err, "LOGIN_ERROR", "Failed to login user", http.StatusUnauthorized))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}
