package auth

import (
	"errors"
	"net/http"

	"github.com/taiwoajasa245/verse-courier/pkg/response"
)

type AuthHandler struct {
	service AuthService
}

func NewHandler(service AuthService) AuthHandler {
	return AuthHandler{service: service}
}

func (h *AuthHandler) TokenHandler(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid JSON body", err.Error())
		return
	}

	if req.Gateway == "" || req.Key == "" {
		response.Error(w, http.StatusBadRequest, "Missing required fields", map[string]string{
			"gateway": "Gateway is required",
			"key":     "Key is required",
		})
		return
	}

	token, err := h.service.IssueToken(r.Context(), req.Gateway, req.Key)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(w, http.StatusUnauthorized, "Invalid credentials", err.Error())
			return
		}
		response.Error(w, http.StatusInternalServerError, "Failed to issue token", err.Error())
		return
	}

	response.Success(w, token, "Ok")
}
