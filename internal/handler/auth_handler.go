package handler

import (
	"net/http"

	"github.com/ontohin26/ontohin/internal/auth"
	"github.com/ontohin26/ontohin/internal/service"
	"go.uber.org/zap"
)

type AuthHandler struct {
	svc *service.AuthService
	log *zap.Logger
}

func NewAuthHandler(svc *service.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, log: log}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}
	result, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUser(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	user, err := h.svc.Me(r.Context(), claims.UserID)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
