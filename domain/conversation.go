package domain

import (
	"context"
	"sort"
	"strings"
	"time"
)

type MessageType string

const (
	MessageText     MessageType = "Text"
	MessageMedia    MessageType = "Media"
	MessageDocument MessageType = "Document"
)

func (t MessageType) Valid() bool {
	switch t {
	case MessageText, MessageMedia, MessageDocument:
		return true
	}
	return false
}

// Message is immutable once appended. Seq is assigned by the store from the
// conversation's own counter, so ordering is commit order, never client order.
type Message struct {
	To        string      `bson:"to" json:"to"`
	From      string      `bson:"from" json:"from"`
	Type      MessageType `bson:"type" json:"type"`
	Text      string      `bson:"text,omitempty" json:"text,omitempty"`
	File      string      `bson:"file,omitempty" json:"file,omitempty"`
	Seq       int64       `bson:"seq" json:"seq"`
	CreatedAt time.Time   `bson:"created_at" json:"created_at"`
}

type Conversation struct {
	ID           string    `bson:"_id" json:"id"`
	PairKey      string    `bson:"pair_key" json:"-"`
	Participants []string  `bson:"participants" json:"participants"`
	Messages     []Message `bson:"messages" json:"messages"`
	Seq          int64     `bson:"seq" json:"-"`
}

func (c *Conversation) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return &c.Messages[len(c.Messages)-1]
}

// Counterpart returns the other participant of a direct conversation.
func (c *Conversation) Counterpart(userID string) string {
	for _, p := range c.Participants {
		if p != userID {
			return p
		}
	}
	return ""
}

// PairKey canonicalizes an unordered user pair into a single lookup key.
func PairKey(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return strings.Join(pair, "|")
}

type ConversationStore interface {
	// FindOrCreate returns the conversation for the unordered pair, creating
	// it atomically if absent. Reports whether it was created.
	FindOrCreate(ctx context.Context, userA, userB string) (*Conversation, bool, error)
	FindByID(ctx context.Context, id string) (*Conversation, error)
	FindByIDs(ctx context.Context, ids []string) ([]Conversation, error)
	// Append assigns the next sequence number and appends in one atomic
	// update. Returns the conversation after the append; the stamped
	// message is its last entry.
	Append(ctx context.Context, id string, msg Message) (*Conversation, error)
	Clear(ctx context.Context, id string) (*Conversation, error)
}
