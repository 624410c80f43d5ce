// Package api serves the request/response surface next to the socket
// broker: auth, directory projections, call bootstrap and tokens.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/hnh-zeal/ChatApp-Backend/domain"
	"github.com/hnh-zeal/ChatApp-Backend/pkg/ticket"
	"github.com/hnh-zeal/ChatApp-Backend/usecase"
)

type contextKey string

const userKey contextKey = "user"

type Server struct {
	auth      *usecase.Auth
	directory *usecase.Directory
	friends   *usecase.FriendWorkflow
	calls     *usecase.CallSignaling
	issuer    ticket.Issuer
	log       *zap.Logger

	zegoAppID  int64
	zegoSecret string
}

func NewServer(auth *usecase.Auth, directory *usecase.Directory, friends *usecase.FriendWorkflow, calls *usecase.CallSignaling, issuer ticket.Issuer, zegoAppID int64, zegoSecret string, log *zap.Logger) *Server {
	return &Server{
		auth:       auth,
		directory:  directory,
		friends:    friends,
		calls:      calls,
		issuer:     issuer,
		log:        log,
		zegoAppID:  zegoAppID,
		zegoSecret: zegoSecret,
	}
}

func (s *Server) Register(router *httprouter.Router) {
	router.POST("/auth/register", s.handleRegister)
	router.POST("/auth/login", s.handleLogin)
	router.POST("/auth/send-otp", s.handleSendOTP)
	router.POST("/auth/verify-otp", s.handleVerifyOTP)
	router.POST("/auth/forgot-password", s.handleForgotPassword)
	router.POST("/auth/reset-password", s.handleResetPassword)

	router.GET("/me", s.authorize(s.handleMe))
	router.PATCH("/me", s.authorize(s.handleUpdateMe))
	router.GET("/users", s.authorize(s.handleUsers))
	router.GET("/users/all", s.authorize(s.handleAllUsers))
	router.GET("/friends", s.authorize(s.handleFriends))
	router.GET("/requests", s.authorize(s.handleRequests))
	router.GET("/requests/sent", s.authorize(s.handleSentRequests))

	router.POST("/calls/audio", s.authorize(s.handleStartCall(domain.CallAudio)))
	router.POST("/calls/video", s.authorize(s.handleStartCall(domain.CallVideo)))
	router.GET("/calls/logs", s.authorize(s.handleCallLogs))
	router.POST("/zego-token", s.authorize(s.handleZegoToken))
}

// authorize verifies the Bearer ticket and stashes the user id in the
// request context.
func (s *Server) authorize(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		auth := r.Header.Get("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")

		userID, err := s.issuer.Verify(token)
		if err != nil {
			s.error(w, http.StatusUnauthorized, "unauthorized")

			return
		}

		ctx := context.WithValue(r.Context(), userKey, userID)
		next(w, r.WithContext(ctx), ps)
	}
}

func userID(r *http.Request) string {
	id, _ := r.Context().Value(userKey).(string)
	return id
}

type response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Token   string `json:"token,omitempty"`
}

func (s *Server) respond(w http.ResponseWriter, status int, res response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(res); err != nil {
		s.log.Error("api: encode response", zap.Error(err))
	}
}

func (s *Server) error(w http.ResponseWriter, status int, msg string) {
	s.respond(w, status, response{Status: "error", Message: msg})
}

// fail maps domain conditions onto HTTP statuses; anything unmapped is a
// logged 500.
func (s *Server) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrBadCredentials),
		errors.Is(err, domain.ErrNotVerified),
		errors.Is(err, domain.ErrInvalidOTP),
		errors.Is(err, domain.ErrInvalidToken):
		s.error(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Error("api: request failed", zap.Error(err))
		s.error(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
