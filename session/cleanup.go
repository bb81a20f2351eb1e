package session

import (
	"github.com/sfurman3/inftext/usertable"
	"github.com/sfurman3/inftext/vector"
)

// Cleanup reclaims request-log history that every participant has moved
// past: closed do/undo clusters old enough (in vdiff terms) that keeping
// them around would let the log grow without bound (spec §4.H
// "Cleanup"). It is not required for correctness and is typically called
// periodically rather than after every request.
func (s *Session) Cleanup() {
	lcp := s.current.Copy()
	for _, u := range s.users.Users() {
		if u.Status() != usertable.Unavailable {
			lcp = vector.LCP(lcp, u.Vector())
		}
	}

	for _, u := range s.users.Users() {
		n := u.Log().Begin()
		for n < u.Log().End() {
			hi := u.Log().UpperRelated(n)
			lastReq, ok := u.Log().Get(hi - 1)
			if !ok {
				break
			}
			if !lastReq.Vector().CausallyBeforeInc(lcp, u.ID()) {
				break
			}

			nReq, ok := u.Log().Get(n)
			if !ok {
				break
			}
			if vector.VDiff(nReq.Vector(), lcp) >= s.cfg.MaxTotalLogSize {
				n = hi
				continue
			}
			break
		}
		u.Log().RemoveRequests(n)
	}
}
