// Package roomtoken mints the opaque room-access tokens handed to the call
// SDK on the client. The shape mirrors the provider's token04 contract:
// (appID, userID, roomID, secret, ttl) -> token.
package roomtoken

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrTokenExpired = errors.New("roomtoken: expired")

type payload struct {
	AppID   int64  `json:"app_id"`
	UserID  string `json:"user_id"`
	RoomID  string `json:"room_id"`
	Nonce   uint64 `json:"nonce"`
	Ctime   int64  `json:"ctime"`
	Expire  int64  `json:"expire"`
	Version string `json:"version"`
}

type envelope struct {
	Payload payload `json:"payload"`
	Sig     string  `json:"sig"`
}

func Generate(appID int64, userID, roomID, secret string, ttl time.Duration) (string, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("roomtoken: nonce: %w", err)
	}

	now := time.Now()
	p := payload{
		AppID:   appID,
		UserID:  userID,
		RoomID:  roomID,
		Nonce:   binary.BigEndian.Uint64(buf[:]),
		Ctime:   now.Unix(),
		Expire:  now.Add(ttl).Unix(),
		Version: "04",
	}

	env := envelope{
		Payload: p,
		Sig:     sign(p, secret),
	}

	b, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("roomtoken: marshal: %w", err)
	}

	return base64.StdEncoding.EncodeToString(b), nil
}

// Verify checks the signature and expiry, returning the user the token was
// minted for.
func Verify(token, secret string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("roomtoken: decode: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return "", fmt.Errorf("roomtoken: unmarshal: %w", err)
	}

	if !hmac.Equal([]byte(env.Sig), []byte(sign(env.Payload, secret))) {
		return "", errors.New("roomtoken: bad signature")
	}

	if time.Now().Unix() > env.Payload.Expire {
		return "", ErrTokenExpired
	}

	return env.Payload.UserID, nil
}

func sign(p payload, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d|%s|%s|%d|%d|%d", p.AppID, p.UserID, p.RoomID, p.Nonce, p.Ctime, p.Expire)
	return hex.EncodeToString(mac.Sum(nil))
}
