package match

import (
	"github.com/oggyb/mockmatch/internal/db"
)

// State is the derived relationship status of an unordered pair.
type State string

const (
	StateNone     State = "none"
	StatePending  State = "pending"
	StateAccepted State = "accepted"
	StateRejected State = "rejected"
)

// PairState is the fold of one pair's relation log. It is never stored.
type PairState struct {
	A, B  uint64
	State State

	// LastSeq is the position of the newest record; the next append uses LastSeq+1.
	LastSeq uint32

	latestAB *db.RelationRecord
	latestBA *db.RelationRecord
}

// DeriveState folds the records of the pair (a, b) into its current state.
// records must be in log order; records of other pairs are ignored.
//
// Rules:
//   - any accepted record makes the pair accepted, permanently;
//   - otherwise the newest record decides: like → pending, dislike/cancel → rejected;
//   - no records → none.
func DeriveState(a, b uint64, records []db.RelationRecord) PairState {
	s := PairState{A: a, B: b, State: StateNone}
	for i := range records {
		s.apply(&records[i])
	}
	return s
}

func (s *PairState) apply(rec *db.RelationRecord) {
	switch {
	case rec.FromUserID == s.A && rec.ToUserID == s.B:
		s.latestAB = rec
	case rec.FromUserID == s.B && rec.ToUserID == s.A:
		s.latestBA = rec
	default:
		return
	}
	if rec.Seq > s.LastSeq {
		s.LastSeq = rec.Seq
	}

	if s.State == StateAccepted {
		return
	}
	switch {
	case rec.Status == db.StatusAccepted:
		s.State = StateAccepted
	case rec.Action == db.ActionLike:
		s.State = StatePending
	default:
		s.State = StateRejected
	}
}

// Accepted reports whether the pair is matched.
func (s PairState) Accepted() bool { return s.State == StateAccepted }

// Latest returns the newest record sent by from toward the other side, or nil.
func (s PairState) Latest(from uint64) *db.RelationRecord {
	switch from {
	case s.A:
		return s.latestAB
	case s.B:
		return s.latestBA
	}
	return nil
}

func (s PairState) other(id uint64) uint64 {
	if id == s.A {
		return s.B
	}
	return s.A
}

// PendingLikeFrom reports whether from's newest record is a like that has not been accepted.
func (s PairState) PendingLikeFrom(from uint64) bool {
	if s.Accepted() {
		return false
	}
	rec := s.Latest(from)
	return rec != nil && rec.Action == db.ActionLike && rec.Status != db.StatusAccepted
}

// InvitationFrom reports whether from has an unanswered pending like
// toward the other side: the other side has written nothing since.
func (s PairState) InvitationFrom(from uint64) bool {
	if !s.PendingLikeFrom(from) {
		return false
	}
	reply := s.Latest(s.other(from))
	return reply == nil || reply.Seq < s.Latest(from).Seq
}

// FoldByPartner folds every record involving user into one PairState per
// partner. records must be ordered by pair and position.
func FoldByPartner(user uint64, records []db.RelationRecord) map[uint64]PairState {
	states := make(map[uint64]*PairState)
	for i := range records {
		rec := &records[i]
		var partner uint64
		switch user {
		case rec.FromUserID:
			partner = rec.ToUserID
		case rec.ToUserID:
			partner = rec.FromUserID
		default:
			continue
		}
		st, ok := states[partner]
		if !ok {
			st = &PairState{A: user, B: partner, State: StateNone}
			states[partner] = st
		}
		st.apply(rec)
	}

	out := make(map[uint64]PairState, len(states))
	for partner, st := range states {
		out[partner] = *st
	}
	return out
}
