package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/hnh-zeal/ChatApp-Backend/domain"
)

type payloadError struct {
	err error
}

func (e payloadError) Error() string { return "bad payload: " + e.err.Error() }
func (e payloadError) Unwrap() error { return e.err }

func isBadPayload(err error) bool {
	var pe payloadError
	return errors.As(err, &pe)
}

func decode(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return payloadError{err: errors.New("empty")}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return payloadError{err: err}
	}

	return nil
}

func (c *Chat) routes() {
	c.router.On(evtFriendRequest, c.handleFriendRequest)
	c.router.On(evtAcceptRequest, c.handleAcceptRequest)
	c.router.On(evtCancelRequest, c.handleCancelRequest)

	c.router.On(evtGetConversations, c.handleGetConversations)
	c.router.On(evtStartConversation, c.handleStartConversation)
	c.router.On(evtGetMessages, c.handleCurrentConversation)
	c.router.On(evtCurrentConversation, c.handleCurrentConversation)
	c.router.On(evtTextMessage, c.handleTextMessage)
	c.router.On(evtClearMessages, c.handleClearMessages)
	c.router.On(evtDeleteConversation, c.handleDeleteConversation)

	for _, kind := range []domain.CallKind{domain.CallAudio, domain.CallVideo} {
		kind := kind
		c.router.On(fmt.Sprintf("start_%s_call", kind), c.handleStartCall(kind))
		c.router.On(fmt.Sprintf("%s_call_not_picked", kind), c.handleCallTransition(kind, transitionNotPicked))
		c.router.On(fmt.Sprintf("%s_call_accepted", kind), c.handleCallTransition(kind, transitionAccepted))
		c.router.On(fmt.Sprintf("%s_call_denied", kind), c.handleCallTransition(kind, transitionDenied))
		c.router.On(fmt.Sprintf("user_is_busy_%s_call", kind), c.handleCallTransition(kind, transitionBusy))
	}

	c.router.On(evtEnd, c.handleEnd)
}

func (c *Chat) handleFriendRequest(ctx context.Context, _ *Session, data json.RawMessage) error {
	var p struct {
		To   string `json:"to"`
		From string `json:"from"`
	}
	if err := decode(data, &p); err != nil {
		return err
	}

	_, _, err := c.friends.Send(ctx, p.From, p.To)

	return err
}

func (c *Chat) handleAcceptRequest(ctx context.Context, _ *Session, data json.RawMessage) error {
	var p struct {
		RequestID string `json:"request_id"`
	}
	if err := decode(data, &p); err != nil {
		return err
	}

	return c.friends.Accept(ctx, p.RequestID)
}

func (c *Chat) handleCancelRequest(ctx context.Context, _ *Session, data json.RawMessage) error {
	var p struct {
		RequestID string `json:"request_id"`
	}
	if err := decode(data, &p); err != nil {
		return err
	}

	return c.friends.Cancel(ctx, p.RequestID)
}

func (c *Chat) handleGetConversations(ctx context.Context, sess *Session, data json.RawMessage) error {
	var p struct {
		UserID string `json:"user_id"`
	}
	if err := decode(data, &p); err != nil {
		return err
	}
	if p.UserID == "" {
		p.UserID = sess.UserID
	}

	views, err := c.relay.List(ctx, p.UserID)
	if err != nil {
		return err
	}

	c.reply(sess, replyConversations, views)

	return nil
}

func (c *Chat) handleStartConversation(ctx context.Context, sess *Session, data json.RawMessage) error {
	var p struct {
		To   string `json:"to"`
		From string `json:"from"`
	}
	if err := decode(data, &p); err != nil {
		return err
	}

	open, err := c.relay.Start(ctx, p.To, p.From)
	if err != nil {
		return err
	}

	c.reply(sess, replyOpenChat, open)

	return nil
}

func (c *Chat) handleCurrentConversation(ctx context.Context, sess *Session, data json.RawMessage) error {
	var p struct {
		ConversationID string `json:"conversation_id"`
		UserID         string `json:"user_id"`
	}
	if err := decode(data, &p); err != nil {
		return err
	}

	current, err := c.relay.Current(ctx, p.ConversationID, p.UserID)
	if err != nil {
		return err
	}

	c.reply(sess, replyCurrentConversation, current)

	return nil
}

func (c *Chat) handleTextMessage(ctx context.Context, _ *Session, data json.RawMessage) error {
	var p struct {
		To             string `json:"to"`
		From           string `json:"from"`
		Message        string `json:"message"`
		ConversationID string `json:"conversation_id"`
		Type           string `json:"type"`
	}
	if err := decode(data, &p); err != nil {
		return err
	}
	// Empty defaults to Text downstream; anything else must be a known type
	// or it would land in the durable log as-is.
	if p.Type != "" && !domain.MessageType(p.Type).Valid() {
		return payloadError{err: errors.Errorf("unknown message type %q", p.Type)}
	}

	_, err := c.relay.Append(ctx, p.ConversationID, domain.Message{
		To:   p.To,
		From: p.From,
		Type: domain.MessageType(p.Type),
		Text: p.Message,
	})

	return err
}

func (c *Chat) handleClearMessages(ctx context.Context, sess *Session, data json.RawMessage) error {
	var p struct {
		UserID         string `json:"user_id"`
		ConversationID string `json:"conversation_id"`
	}
	if err := decode(data, &p); err != nil {
		return err
	}

	view, err := c.relay.Clear(ctx, p.ConversationID)
	if err != nil {
		return err
	}

	c.reply(sess, replyMessagesCleared, view)

	return nil
}

func (c *Chat) handleDeleteConversation(ctx context.Context, sess *Session, data json.RawMessage) error {
	var p struct {
		UserID         string `json:"user_id"`
		ConversationID string `json:"conversation_id"`
	}
	if err := decode(data, &p); err != nil {
		return err
	}

	if err := c.relay.Delete(ctx, p.ConversationID); err != nil {
		return err
	}

	c.reply(sess, replyConversationDeleted, map[string]string{"conversation_id": p.ConversationID})

	return nil
}

func (c *Chat) handleStartCall(kind domain.CallKind) Handler {
	return func(ctx context.Context, _ *Session, data json.RawMessage) error {
		var p struct {
			From   string `json:"from"`
			To     string `json:"to"`
			RoomID string `json:"roomID"`
		}
		if err := decode(data, &p); err != nil {
			return err
		}

		_, err := c.calls.Start(ctx, kind, p.From, p.To, p.RoomID)

		return err
	}
}

type callTransition int

const (
	transitionNotPicked callTransition = iota
	transitionAccepted
	transitionDenied
	transitionBusy
)

func (c *Chat) handleCallTransition(kind domain.CallKind, transition callTransition) Handler {
	return func(ctx context.Context, _ *Session, data json.RawMessage) error {
		var p struct {
			To   string `json:"to"`
			From string `json:"from"`
		}
		if err := decode(data, &p); err != nil {
			return err
		}

		var err error
		switch transition {
		case transitionNotPicked:
			_, err = c.calls.NotPicked(ctx, kind, p.To, p.From)
		case transitionAccepted:
			_, err = c.calls.Accepted(ctx, kind, p.To, p.From)
		case transitionDenied:
			_, err = c.calls.Denied(ctx, kind, p.To, p.From)
		case transitionBusy:
			_, err = c.calls.Busy(ctx, kind, p.To, p.From)
		}

		return err
	}
}

// handleEnd is the explicit logout-style event: it clears presence and the
// persisted online flag. No outbound push.
func (c *Chat) handleEnd(ctx context.Context, sess *Session, data json.RawMessage) error {
	var p struct {
		UserID string `json:"user_id"`
	}
	if len(data) > 0 {
		if err := decode(data, &p); err != nil {
			return err
		}
	}
	if p.UserID == "" {
		p.UserID = sess.UserID
	}

	if err := c.registry.Unregister(ctx, p.UserID); err != nil {
		return err
	}
	if err := c.users.SetStatus(ctx, p.UserID, domain.StatusOffline); err != nil && !errors.Is(err, domain.ErrNotFound) {
		c.log.Warn("set status offline", zap.String("user_id", p.UserID), zap.Error(err))
	}

	return nil
}
