package api

import (
	"net/http"

	"shareit/internal/httputil"
	"shareit/internal/models"

	"github.com/gorilla/mux"
)

func (s *HTTPServer) listUsers(w http.ResponseWriter, r *http.Request) error {
	users, err := s.services.Users.ListUsers(r.Context())
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, users)
	return nil
}

func (s *HTTPServer) getUser(w http.ResponseWriter, r *http.Request) error {
	id, err := httputil.PathID(mux.Vars(r), "id")
	if err != nil {
		return err
	}
	user, err := s.services.Users.GetUser(r.Context(), id)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, user)
	return nil
}

func (s *HTTPServer) createUser(w http.ResponseWriter, r *http.Request) error {
	var user models.User
	if err := httputil.DecodeJSON(r, &user); err != nil {
		return err
	}
	user.ID = 0
	if err := s.services.Users.CreateUser(r.Context(), &user); err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, user)
	return nil
}

func (s *HTTPServer) updateUser(w http.ResponseWriter, r *http.Request) error {
	id, err := httputil.PathID(mux.Vars(r), "id")
	if err != nil {
		return err
	}
	var patch models.UserPatch
	if err := httputil.DecodeJSON(r, &patch); err != nil {
		return err
	}
	user, err := s.services.Users.UpdateUser(r.Context(), id, patch)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, user)
	return nil
}

func (s *HTTPServer) deleteUser(w http.ResponseWriter, r *http.Request) error {
	id, err := httputil.PathID(mux.Vars(r), "id")
	if err != nil {
		return err
	}
	if err := s.services.Users.DeleteUser(r.Context(), id); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
