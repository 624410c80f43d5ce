package api

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
		Password  string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.error(w, http.StatusBadRequest, "invalid body")

		return
	}
	if req.Email == "" || req.Password == "" {
		s.error(w, http.StatusBadRequest, "email and password are required")

		return
	}

	user, err := s.auth.Register(r.Context(), req.FirstName, req.LastName, req.Email, req.Password)
	if err != nil {
		s.fail(w, err)

		return
	}

	if err := s.auth.SendOTP(r.Context(), user.ID); err != nil {
		s.fail(w, err)

		return
	}

	s.respond(w, http.StatusOK, response{
		Status:  "success",
		Message: "OTP sent!",
		Data:    map[string]string{"user_id": user.ID},
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.error(w, http.StatusBadRequest, "invalid body")

		return
	}

	token, user, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(w, err)

		return
	}

	s.respond(w, http.StatusOK, response{
		Status:  "success",
		Message: "Logged in successfully!",
		Token:   token,
		Data:    map[string]string{"user_id": user.ID},
	})
}

func (s *Server) handleSendOTP(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.error(w, http.StatusBadRequest, "invalid body")

		return
	}

	if err := s.auth.SendOTP(r.Context(), req.UserID); err != nil {
		s.fail(w, err)

		return
	}

	s.respond(w, http.StatusOK, response{Status: "success", Message: "OTP sent!"})
}

func (s *Server) handleVerifyOTP(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.error(w, http.StatusBadRequest, "invalid body")

		return
	}

	token, user, err := s.auth.VerifyOTP(r.Context(), req.Email, req.OTP)
	if err != nil {
		s.fail(w, err)

		return
	}

	s.respond(w, http.StatusOK, response{
		Status:  "success",
		Message: "OTP verified successfully!",
		Token:   token,
		Data:    map[string]string{"user_id": user.ID},
	})
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.error(w, http.StatusBadRequest, "invalid body")

		return
	}

	if err := s.auth.ForgotPassword(r.Context(), req.Email); err != nil {
		s.fail(w, err)

		return
	}

	s.respond(w, http.StatusOK, response{Status: "success", Message: "Reset link sent if the account exists."})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.error(w, http.StatusBadRequest, "invalid body")

		return
	}

	token, err := s.auth.ResetPassword(r.Context(), req.Token, req.Password)
	if err != nil {
		s.fail(w, err)

		return
	}

	s.respond(w, http.StatusOK, response{
		Status:  "success",
		Message: "Password reset successfully!",
		Token:   token,
	})
}
