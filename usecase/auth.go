package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/hnh-zeal/ChatApp-Backend/domain"
	"github.com/hnh-zeal/ChatApp-Backend/pkg/ticket"
)

const (
	otpTTL        = 10 * time.Minute
	resetTokenTTL = 10 * time.Minute
	bcryptCost    = 12
)

// Auth issues the authenticated identity the broker trusts. Everything here
// ends in a ticket; the websocket handshake verifies it.
type Auth struct {
	users  domain.UserStore
	issuer ticket.Issuer
	mailer Mailer
	log    *zap.Logger
}

func NewAuth(users domain.UserStore, issuer ticket.Issuer, mailer Mailer, log *zap.Logger) *Auth {
	return &Auth{
		users:  users,
		issuer: issuer,
		mailer: mailer,
		log:    log,
	}
}

// Register creates an unverified account, or refreshes an existing
// unverified one so the signup can be retried. Verified emails are taken.
func (a *Auth) Register(ctx context.Context, firstName, lastName, email, password string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, errors.Wrap(err, "auth: hash password")
	}

	existing, err := a.users.FindByEmail(ctx, email)
	switch {
	case err == nil && existing.Verified:
		return nil, domain.ErrEmailTaken
	case err == nil:
		existing.FirstName = firstName
		existing.LastName = lastName
		existing.Password = string(hash)
		if err := a.users.Update(ctx, existing); err != nil {
			return nil, err
		}

		return existing, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	user := &domain.User{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Password:  string(hash),
		Status:    domain.StatusOffline,
	}
	if err := a.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// SendOTP mints a fresh one-time code, stores only its hash, and mails it.
func (a *Auth) SendOTP(ctx context.Context, userID string) error {
	user, err := a.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	otp, err := newOTP()
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(otp), bcryptCost)
	if err != nil {
		return errors.Wrap(err, "auth: hash otp")
	}

	user.OTP = string(hash)
	user.OTPExpiresAt = time.Now().Add(otpTTL)
	if err := a.users.Update(ctx, user); err != nil {
		return err
	}

	if err := a.mailer.SendOTP(ctx, user.Email, otp); err != nil {
		a.log.Warn("otp mail failed", zap.String("email", user.Email), zap.Error(err))
	}

	return nil
}

// VerifyOTP flips the account to verified and issues a ticket.
func (a *Auth) VerifyOTP(ctx context.Context, email, otp string) (string, *domain.User, error) {
	user, err := a.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil, domain.ErrInvalidOTP
	}
	if err != nil {
		return "", nil, err
	}

	if user.OTP == "" || time.Now().After(user.OTPExpiresAt) {
		return "", nil, domain.ErrInvalidOTP
	}
	if bcrypt.CompareHashAndPassword([]byte(user.OTP), []byte(otp)) != nil {
		return "", nil, domain.ErrInvalidOTP
	}

	user.Verified = true
	user.OTP = ""
	user.OTPExpiresAt = time.Time{}
	if err := a.users.Update(ctx, user); err != nil {
		return "", nil, err
	}

	token, err := a.issuer.Issue(user.ID)
	if err != nil {
		return "", nil, errors.Wrap(err, "auth: issue ticket")
	}

	return token, user, nil
}

// Login checks credentials and issues a ticket. A missing account and a bad
// password are indistinguishable to the caller.
func (a *Auth) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := a.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil, domain.ErrBadCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return "", nil, domain.ErrBadCredentials
	}
	if !user.Verified {
		return "", nil, domain.ErrNotVerified
	}

	token, err := a.issuer.Issue(user.ID)
	if err != nil {
		return "", nil, errors.Wrap(err, "auth: issue ticket")
	}

	return token, user, nil
}

// ForgotPassword stores a hashed, short-lived reset token and mails the
// plain one. Unknown emails are a silent success so the endpoint does not
// leak which addresses exist.
func (a *Auth) ForgotPassword(ctx context.Context, email string) error {
	user, err := a.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return errors.Wrap(err, "auth: reset token")
	}
	token := hex.EncodeToString(raw)

	user.PasswordResetToken = hashToken(token)
	user.PasswordResetExpires = time.Now().Add(resetTokenTTL)
	if err := a.users.Update(ctx, user); err != nil {
		return err
	}

	if err := a.mailer.SendPasswordReset(ctx, user.Email, token); err != nil {
		a.log.Warn("reset mail failed", zap.String("email", user.Email), zap.Error(err))
	}

	return nil
}

// ResetPassword consumes a reset token and issues a fresh ticket.
func (a *Auth) ResetPassword(ctx context.Context, token, password string) (string, error) {
	user, err := a.users.FindByResetToken(ctx, hashToken(token))
	if errors.Is(err, domain.ErrNotFound) {
		return "", domain.ErrInvalidToken
	}
	if err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", errors.Wrap(err, "auth: hash password")
	}

	user.Password = string(hash)
	user.PasswordResetToken = ""
	user.PasswordResetExpires = time.Time{}
	if err := a.users.Update(ctx, user); err != nil {
		return "", err
	}

	fresh, err := a.issuer.Issue(user.ID)
	if err != nil {
		return "", errors.Wrap(err, "auth: issue ticket")
	}

	return fresh, nil
}

func newOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", errors.Wrap(err, "auth: otp")
	}

	return fmt.Sprintf("%06d", n.Int64()), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
