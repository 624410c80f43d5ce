// Package memory implements the domain stores on process-local maps with
// the same conditional-update semantics as the mongo stores. It backs the
// test suites and any storage-free development setup.
package memory

import "github.com/google/uuid"

type Stores struct {
	Users          *UserStore
	Conversations  *ConversationStore
	FriendRequests *FriendRequestStore
	Calls          *CallStore
}

func NewStores() *Stores {
	return &Stores{
		Users:          NewUserStore(),
		Conversations:  NewConversationStore(),
		FriendRequests: NewFriendRequestStore(),
		Calls:          NewCallStore(),
	}
}

func newID() string {
	return uuid.New().String()
}
