package api

import (
	"net/http"

	"shareit/internal/httputil"

	"github.com/gorilla/mux"
)

type itemRequestBody struct {
	Description string `json:"description"`
}

func (s *HTTPServer) createRequest(w http.ResponseWriter, r *http.Request) error {
	requestorID, err := s.userID(r)
	if err != nil {
		return err
	}
	var body itemRequestBody
	if err := httputil.DecodeJSON(r, &body); err != nil {
		return err
	}
	view, err := s.services.Requests.CreateRequest(r.Context(), requestorID, body.Description)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusCreated, view)
	return nil
}

func (s *HTTPServer) listOwnRequests(w http.ResponseWriter, r *http.Request) error {
	requestorID, err := s.userID(r)
	if err != nil {
		return err
	}
	views, err := s.services.Requests.ListOwnRequests(r.Context(), requestorID)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, views)
	return nil
}

func (s *HTTPServer) listOtherRequests(w http.ResponseWriter, r *http.Request) error {
	requestorID, err := s.userID(r)
	if err != nil {
		return err
	}
	views, err := s.services.Requests.ListOtherRequests(r.Context(), requestorID)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, views)
	return nil
}

func (s *HTTPServer) getRequest(w http.ResponseWriter, r *http.Request) error {
	id, err := httputil.PathID(mux.Vars(r), "id")
	if err != nil {
		return err
	}
	view, err := s.services.Requests.GetRequest(r.Context(), id)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, view)
	return nil
}
