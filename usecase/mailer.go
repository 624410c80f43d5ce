package usecase

import (
	"context"

	"go.uber.org/zap"
)

// Mailer abstracts outbound mail; actual delivery is out of scope, so the
// default implementation only logs.
type Mailer interface {
	SendOTP(ctx context.Context, email, otp string) error
	SendPasswordReset(ctx context.Context, email, token string) error
}

type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendOTP(_ context.Context, email, otp string) error {
	m.log.Info("otp mail", zap.String("email", email), zap.String("otp", otp))
	return nil
}

func (m *LogMailer) SendPasswordReset(_ context.Context, email, token string) error {
	m.log.Info("password reset mail", zap.String("email", email), zap.String("token", token))
	return nil
}
