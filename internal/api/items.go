package api

import (
	"net/http"

	"shareit/internal/httputil"
	"shareit/internal/models"

	"github.com/gorilla/mux"
)

type commentRequest struct {
	Text string `json:"text"`
}

func (s *HTTPServer) listOwnerItems(w http.ResponseWriter, r *http.Request) error {
	ownerID, err := s.userID(r)
	if err != nil {
		return err
	}
	items, err := s.services.Items.ListOwnerItems(r.Context(), ownerID)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, items)
	return nil
}

// getItem accepts an anonymous caller; only the owner sees booking dates.
func (s *HTTPServer) getItem(w http.ResponseWriter, r *http.Request) error {
	callerID, err := httputil.OptionalUserID(r, s.cfg.UserHeader)
	if err != nil {
		return err
	}
	itemID, err := httputil.PathID(mux.Vars(r), "id")
	if err != nil {
		return err
	}
	item, err := s.services.Items.GetItem(r.Context(), callerID, itemID)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, item)
	return nil
}

func (s *HTTPServer) searchItems(w http.ResponseWriter, r *http.Request) error {
	items, err := s.services.Items.Search(r.Context(), r.URL.Query().Get("text"))
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, items)
	return nil
}

func (s *HTTPServer) createItem(w http.ResponseWriter, r *http.Request) error {
	ownerID, err := s.userID(r)
	if err != nil {
		return err
	}
	var item models.Item
	if err := httputil.DecodeJSON(r, &item); err != nil {
		return err
	}
	item.ID = 0
	view, err := s.services.Items.CreateItem(r.Context(), ownerID, &item)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, view)
	return nil
}

func (s *HTTPServer) updateItem(w http.ResponseWriter, r *http.Request) error {
	callerID, err := s.userID(r)
	if err != nil {
		return err
	}
	itemID, err := httputil.PathID(mux.Vars(r), "id")
	if err != nil {
		return err
	}
	var patch models.ItemPatch
	if err := httputil.DecodeJSON(r, &patch); err != nil {
		return err
	}
	view, err := s.services.Items.UpdateItem(r.Context(), callerID, itemID, patch)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, view)
	return nil
}

func (s *HTTPServer) deleteItem(w http.ResponseWriter, r *http.Request) error {
	callerID, err := s.userID(r)
	if err != nil {
		return err
	}
	itemID, err := httputil.PathID(mux.Vars(r), "id")
	if err != nil {
		return err
	}
	if err := s.services.Items.DeleteItem(r.Context(), callerID, itemID); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (s *HTTPServer) addComment(w http.ResponseWriter, r *http.Request) error {
	authorID, err := s.userID(r)
	if err != nil {
		return err
	}
	itemID, err := httputil.PathID(mux.Vars(r), "id")
	if err != nil {
		return err
	}
	var req commentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		return err
	}
	comment, err := s.services.Items.AddComment(r.Context(), authorID, itemID, req.Text)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, comment)
	return nil
}
