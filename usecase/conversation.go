package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/hnh-zeal/ChatApp-Backend/domain"
)

// ConversationRelay appends to the durable log and fans the new message out
// to both participants' live sessions. The append always commits before any
// push, so delivery failure never desynchronizes the log.
type ConversationRelay struct {
	conversations domain.ConversationStore
	users         domain.UserStore
	pusher        Pusher
	log           *zap.Logger
}

func NewConversationRelay(conversations domain.ConversationStore, users domain.UserStore, pusher Pusher, log *zap.Logger) *ConversationRelay {
	return &ConversationRelay{
		conversations: conversations,
		users:         users,
		pusher:        pusher,
		log:           log,
	}
}

// ConversationView is a conversation hydrated with participant profiles.
type ConversationView struct {
	ID           string           `json:"id"`
	Participants []domain.Profile `json:"participants"`
	Messages     []domain.Message `json:"messages"`
	LastMessage  *domain.Message  `json:"lastMessage,omitempty"`
}

// OpenChat is the direct reply to start_conversation.
type OpenChat struct {
	Chat    ConversationView `json:"new_chat"`
	Contact domain.Profile   `json:"contact"`
}

// NewMessage is the payload pushed to both participants on append.
type NewMessage struct {
	Conversation ConversationView `json:"conversation"`
	Message      domain.Message   `json:"message"`
}

// Start finds the direct conversation for the pair or lazily creates it.
// Concurrent starts for the same pair settle on one conversation through
// the store's conditional upsert.
func (r *ConversationRelay) Start(ctx context.Context, to, from string) (*OpenChat, error) {
	conv, created, err := r.conversations.FindOrCreate(ctx, to, from)
	if err != nil {
		return nil, err
	}
	if created {
		r.log.Debug("conversation created",
			zap.String("conversation_id", conv.ID),
			zap.String("pair", conv.PairKey))
	}

	view, err := r.hydrate(ctx, conv)
	if err != nil {
		return nil, err
	}

	contact, err := r.users.FindByID(ctx, to)
	if err != nil {
		return nil, err
	}

	return &OpenChat{Chat: *view, Contact: contact.Profile()}, nil
}

// List returns the user's conversations with last message, most recent
// first.
func (r *ConversationRelay) List(ctx context.Context, userID string) ([]ConversationView, error) {
	user, err := r.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	convs, err := r.conversations.FindByIDs(ctx, user.Conversations)
	if err != nil {
		return nil, err
	}

	views := make([]ConversationView, 0, len(convs))
	for i := range convs {
		view, err := r.hydrate(ctx, &convs[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}

	sort.SliceStable(views, func(i, j int) bool {
		return lastMessageTime(views[i]).After(lastMessageTime(views[j]))
	})

	return views, nil
}

// CurrentConversation is the direct reply to get_current_conversation.
type CurrentConversation struct {
	Messages []domain.Message `json:"messages"`
	Contact  domain.Profile   `json:"contact"`
}

func (r *ConversationRelay) Current(ctx context.Context, conversationID, contactID string) (*CurrentConversation, error) {
	conv, err := r.conversations.FindByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	contact, err := r.users.FindByID(ctx, contactID)
	if err != nil {
		return nil, err
	}

	return &CurrentConversation{
		Messages: conv.Messages,
		Contact:  contact.Profile(),
	}, nil
}

// Messages returns the ordered log.
func (r *ConversationRelay) Messages(ctx context.Context, conversationID string) ([]domain.Message, error) {
	conv, err := r.conversations.FindByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	return conv.Messages, nil
}

// Append validates the conversation, commits the message, backfills both
// users' membership sets, then pushes new_message to both sides.
func (r *ConversationRelay) Append(ctx context.Context, conversationID string, msg domain.Message) (*domain.Message, error) {
	if _, err := r.conversations.FindByID(ctx, conversationID); err != nil {
		return nil, err
	}

	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	if msg.Type == "" {
		msg.Type = domain.MessageText
	}

	conv, err := r.conversations.Append(ctx, conversationID, msg)
	if err != nil {
		return nil, err
	}
	stamped := conv.LastMessage()

	// Lazy membership backfill for users added to the conversation out of
	// band. Idempotent on the store side.
	for _, userID := range []string{msg.To, msg.From} {
		if err := r.users.AddConversation(ctx, userID, conversationID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	view, err := r.hydrate(ctx, conv)
	if err != nil {
		return nil, err
	}

	payload := NewMessage{Conversation: *view, Message: *stamped}
	r.pusher.Push(ctx, msg.To, EventNewMessage, payload)
	r.pusher.Push(ctx, msg.From, EventNewMessage, payload)

	return stamped, nil
}

// Clear empties the message log; the conversation and its membership stay.
func (r *ConversationRelay) Clear(ctx context.Context, conversationID string) (*ConversationView, error) {
	conv, err := r.conversations.Clear(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	return r.hydrate(ctx, conv)
}

// Delete removes the conversation from every participant's membership set.
// The record itself is left behind; nobody references it anymore.
func (r *ConversationRelay) Delete(ctx context.Context, conversationID string) error {
	conv, err := r.conversations.FindByID(ctx, conversationID)
	if err != nil {
		return err
	}

	for _, userID := range conv.Participants {
		if err := r.users.RemoveConversation(ctx, userID, conversationID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
	}

	return nil
}

func (r *ConversationRelay) hydrate(ctx context.Context, conv *domain.Conversation) (*ConversationView, error) {
	users, err := r.users.FindByIDs(ctx, conv.Participants)
	if err != nil {
		return nil, err
	}

	profiles := make([]domain.Profile, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].Profile())
	}

	return &ConversationView{
		ID:           conv.ID,
		Participants: profiles,
		Messages:     conv.Messages,
		LastMessage:  conv.LastMessage(),
	}, nil
}

func lastMessageTime(v ConversationView) time.Time {
	if v.LastMessage == nil {
		return time.Time{}
	}
	return v.LastMessage.CreatedAt
}
