package usecase

import "context"

// Outbound push event names. Pushes go to a resolved live session only,
// never broadcast; an unreachable target is a silent no-op.
const (
	EventNewFriendRequest = "new_friend_request"
	EventRequestSent      = "request_sent"
	EventRequestAccepted  = "request_accepted"
	EventRequestCancelled = "request_cancelled"
	EventNewMessage       = "new_message"
)

// Pusher is fire-and-forget delivery to a user's live session. There is no
// acknowledgment and no retry: durability lives in the stores, not in
// delivery.
type Pusher interface {
	Push(ctx context.Context, userID, event string, payload any)
}

// Notice is the minimal human-readable push payload.
type Notice struct {
	Message string `json:"message"`
}
