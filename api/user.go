package api

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user, err := s.directory.Me(r.Context(), userID(r))
	if err != nil {
		s.fail(w, err)

		return
	}

	s.respond(w, http.StatusOK, response{Status: "success", Data: user})
}

func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var patch map[string]any
	if err := decodeBody(r, &patch); err != nil {
		s.error(w, http.StatusBadRequest, "invalid body")

		return
	}

	user, err := s.directory.UpdateProfile(r.Context(), userID(r), patch)
	if err != nil {
		s.fail(w, err)

		return
	}

	s.respond(w, http.StatusOK, response{
		Status:  "success",
		Message: "Profile updated successfully!",
		Data:    user,
	})
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	users, err := s.directory.Discover(r.Context(), userID(r))
	if err != nil {
		s.fail(w, err)

		return
	}

	s.respond(w, http.StatusOK, response{
		Status:  "success",
		Message: "Users found successfully!",
		Data:    users,
	})
}

func (s *Server) handleAllUsers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	users, err := s.directory.AllVerified(r.Context(), userID(r))
	if err != nil {
		s.fail(w, err)

		return
	}

	s.respond(w, http.StatusOK, response{
		Status:  "success",
		Message: "Users found successfully!",
		Data:    users,
	})
}

func (s *Server) handleRequests(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requests, err := s.friends.PendingFor(r.Context(), userID(r))
	if err != nil {
		s.fail(w, err)

		return
	}

	s.respond(w, http.StatusOK, response{
		Status:  "success",
		Message: "Requests found successfully!",
		Data:    requests,
	})
}

func (s *Server) handleSentRequests(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requests, err := s.friends.SentBy(r.Context(), userID(r))
	if err != nil {
		s.fail(w, err)

		return
	}

	s.respond(w, http.StatusOK, response{
		Status:  "success",
		Message: "Requests found successfully!",
		Data:    requests,
	})
}

func (s *Server) handleFriends(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	friends, err := s.directory.Friends(r.Context(), userID(r))
	if err != nil {
		s.fail(w, err)

		return
	}

	s.respond(w, http.StatusOK, response{
		Status:  "success",
		Message: "Friends found successfully!",
		Data:    friends,
	})
}
