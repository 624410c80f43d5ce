package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"

	"github.com/hnh-zeal/ChatApp-Backend/domain"
	"github.com/hnh-zeal/ChatApp-Backend/pkg/roomtoken"
)

const zegoTokenTTL = time.Hour

// handleStartCall bootstraps a call over HTTP: it runs the same signaling
// start as the socket event, so the record exists and the callee is rung
// before the caller joins the room.
func (s *Server) handleStartCall(kind domain.CallKind) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var req struct {
			ID string `json:"id"`
		}
		if err := decodeBody(r, &req); err != nil {
			s.error(w, http.StatusBadRequest, "invalid body")

			return
		}

		from := userID(r)
		roomID := uuid.New().String()

		call, err := s.calls.Start(r.Context(), kind, from, req.ID, roomID)
		if err != nil {
			s.fail(w, err)

			return
		}

		callee, err := s.directory.Me(r.Context(), req.ID)
		if err != nil {
			s.fail(w, err)

			return
		}

		s.respond(w, http.StatusOK, response{
			Status: "success",
			Data: map[string]any{
				"from":     callee.Profile(),
				"roomID":   call.RoomID,
				"streamID": req.ID,
				"userID":   from,
				"userName": from,
			},
		})
	}
}

func (s *Server) handleCallLogs(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logs, err := s.calls.Logs(r.Context(), userID(r))
	if err != nil {
		s.fail(w, err)

		return
	}

	s.respond(w, http.StatusOK, response{
		Status:  "success",
		Message: "Call logs found successfully!",
		Data:    logs,
	})
}

func (s *Server) handleZegoToken(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		UserID string `json:"userId"`
		RoomID string `json:"room_id"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.error(w, http.StatusBadRequest, "invalid body")

		return
	}
	if req.UserID == "" {
		req.UserID = userID(r)
	}

	token, err := roomtoken.Generate(s.zegoAppID, req.UserID, req.RoomID, s.zegoSecret, zegoTokenTTL)
	if err != nil {
		s.fail(w, err)

		return
	}

	s.respond(w, http.StatusOK, response{
		Status:  "success",
		Message: "Token generated successfully",
		Token:   token,
	})
}
