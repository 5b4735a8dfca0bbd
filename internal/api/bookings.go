package api

import (
	"net/http"
	"strconv"

	"shareit/internal/domain"
	"shareit/internal/httputil"
	"shareit/internal/models"

	"github.com/gorilla/mux"
)

func (s *HTTPServer) createBooking(w http.ResponseWriter, r *http.Request) error {
	bookerID, err := s.userID(r)
	if err != nil {
		return err
	}
	var req models.BookingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		return err
	}
	view, err := s.services.Bookings.CreateBooking(r.Context(), bookerID, req.ItemID, req.Start.Time, req.End.Time)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, view)
	return nil
}

func (s *HTTPServer) approveBooking(w http.ResponseWriter, r *http.Request) error {
	callerID, err := s.userID(r)
	if err != nil {
		return err
	}
	bookingID, err := httputil.PathID(mux.Vars(r), "id")
	if err != nil {
		return err
	}
	raw := r.URL.Query().Get("approved")
	approved, err := strconv.ParseBool(raw)
	if err != nil {
		return domain.Validation("query parameter approved must be true or false, got %q", raw)
	}
	view, err := s.services.Bookings.ApproveBooking(r.Context(), callerID, bookingID, approved)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, view)
	return nil
}

func (s *HTTPServer) getBooking(w http.ResponseWriter, r *http.Request) error {
	callerID, err := s.userID(r)
	if err != nil {
		return err
	}
	bookingID, err := httputil.PathID(mux.Vars(r), "id")
	if err != nil {
		return err
	}
	view, err := s.services.Bookings.GetBooking(r.Context(), callerID, bookingID)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, view)
	return nil
}

func (s *HTTPServer) listBookerBookings(w http.ResponseWriter, r *http.Request) error {
	bookerID, err := s.userID(r)
	if err != nil {
		return err
	}
	views, err := s.services.Bookings.ListBookerBookings(r.Context(), bookerID, r.URL.Query().Get("state"))
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, views)
	return nil
}

func (s *HTTPServer) listOwnerBookings(w http.ResponseWriter, r *http.Request) error {
	ownerID, err := s.userID(r)
	if err != nil {
		return err
	}
	views, err := s.services.Bookings.ListOwnerBookings(r.Context(), ownerID, r.URL.Query().Get("state"))
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, views)
	return nil
}
