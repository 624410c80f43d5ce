package domain

import (
	"context"
	"time"
)

type CallKind string

const (
	CallAudio CallKind = "audio"
	CallVideo CallKind = "video"
)

type CallStatus string

const (
	CallOngoing CallStatus = "Ongoing"
	CallEnded   CallStatus = "Ended"
)

// Verdict is the terminal outcome of a call attempt, distinct from status:
// an accepted call keeps status Ongoing while its verdict is already set.
type Verdict string

const (
	VerdictUnset    Verdict = ""
	VerdictAccepted Verdict = "Accepted"
	VerdictDenied   Verdict = "Denied"
	VerdictMissed   Verdict = "Missed"
	VerdictBusy     Verdict = "Busy"
)

type Call struct {
	ID           string     `bson:"_id" json:"id"`
	Kind         CallKind   `bson:"kind" json:"kind"`
	PairKey      string     `bson:"pair_key" json:"-"`
	Participants []string   `bson:"participants" json:"participants"`
	From         string     `bson:"from" json:"from"`
	To           string     `bson:"to" json:"to"`
	Status       CallStatus `bson:"status" json:"status"`
	Verdict      Verdict    `bson:"verdict" json:"verdict,omitempty"`
	RoomID       string     `bson:"room_id" json:"roomID"`
	StartedAt    time.Time  `bson:"started_at" json:"started_at"`
	EndedAt      *time.Time `bson:"ended_at,omitempty" json:"ended_at,omitempty"`
}

type CallStore interface {
	Create(ctx context.Context, call *Call) error
	// FindOngoing matches the single Ongoing call with an unset verdict for
	// the unordered pair, the implicit lookup every signaling event uses.
	FindOngoing(ctx context.Context, kind CallKind, userA, userB string) (*Call, error)
	// Resolve conditionally sets the verdict on the Ongoing+unset call for
	// the pair. The filter guarantees a terminal verdict is written at most
	// once; ErrNotFound means no call matched, including one already
	// resolved. endedAt is stamped iff the status transitions to Ended.
	Resolve(ctx context.Context, kind CallKind, userA, userB string, verdict Verdict, end bool) (*Call, error)
	FindByParticipant(ctx context.Context, kind CallKind, userID string) ([]Call, error)
}
