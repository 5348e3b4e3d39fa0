package http

import (
	"net/http"
	"time"
)

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Active       bool      `json:"active"`
	LastAccessAt time.Time `json:"last_access_at"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var body loginBody
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, r, err)
		return
	}

	user, err := s.uc.User.Authenticate(r.Context(), body.Email, body.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, userResponse{
		Email:        user.Email,
		Name:         user.Name,
		Role:         string(user.Role),
		Active:       user.Active,
		LastAccessAt: user.LastAccessAt,
	})
}
