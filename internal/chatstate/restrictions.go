package chatstate

import (
	"context"
	"sync"
	"time"
)

// Restrictor applies a platform-side restriction to a member.
type Restrictor interface {
	Restrict(ctx context.Context, userID int64, until time.Time) error
}

// Restrictions tracks mute expirations (epoch seconds) for one chat.
// Writes happen only on the lane; reads are lock-free.
type Restrictions struct {
	lane       *Lane
	restrictor Restrictor
	now        func() time.Time
	expiries   sync.Map // int64 -> int64
}

// NewRestrictions returns a tracker writing through lane.
func NewRestrictions(lane *Lane, restrictor Restrictor, now func() time.Time) *Restrictions {
	if now == nil {
		now = time.Now
	}
	return &Restrictions{lane: lane, restrictor: restrictor, now: now}
}

// Mute restricts userID on the platform until now+d and extends the stored
// expiry. The merge is queued even when the platform call fails; the
// returned error is the platform error.
func (r *Restrictions) Mute(ctx context.Context, userID int64, d time.Duration) (int64, error) {
	until := r.now().Add(d).Unix()
	err := r.restrictor.Restrict(ctx, userID, time.Unix(until, 0))
	r.lane.Submit(func() {
		extendRestriction(&r.expiries, userID, until)
	})
	return until, err
}

// extendRestriction stores until for userID unless a later expiry is
// already recorded. Must only run on the lane.
func extendRestriction(expiries *sync.Map, userID, until int64) {
	if cur, ok := expiries.Load(userID); ok && cur.(int64) >= until {
		return
	}
	expiries.Store(userID, until)
}

// Lift forgets the restriction of userID.
func (r *Restrictions) Lift(userID int64) {
	r.lane.Submit(func() {
		r.expiries.Delete(userID)
	})
}

// IsRestricted reports whether userID has an expiry in the future. It may
// miss a merge still queued on the lane.
func (r *Restrictions) IsRestricted(userID int64) bool {
	until, ok := r.Expiry(userID)
	return ok && until > r.now().Unix()
}

// Expiry returns the stored expiry of userID.
func (r *Restrictions) Expiry(userID int64) (int64, bool) {
	v, ok := r.expiries.Load(userID)
	if !ok {
		return 0, false
	}
	return v.(int64), true
}

// Sweep removes every restriction expiring at or before now and returns how
// many were removed. It waits for previously queued merges.
func (r *Restrictions) Sweep(now time.Time) int {
	removed := 0
	r.lane.Do(func() {
		cutoff := now.Unix()
		r.expiries.Range(func(k, v any) bool {
			if v.(int64) <= cutoff {
				r.expiries.Delete(k)
				removed++
			}
			return true
		})
	})
	return removed
}

// Len returns the number of tracked restrictions after queued merges ran.
func (r *Restrictions) Len() int {
	n := 0
	r.lane.Do(func() {
		r.expiries.Range(func(_, _ any) bool {
			n++
			return true
		})
	})
	return n
}
