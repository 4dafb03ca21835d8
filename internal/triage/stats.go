package triage

import "time"

// SessionStats holds the running counters for a triage session. The
// controller increments and decrements the counters as actions commit
// and undo; Refresh recomputes the derived total.
type SessionStats struct {
	KeptCount    int
	DeletedCount int
	TotalSeen    int
	StartTime    time.Time
}

// NewSessionStats starts the session clock.
func NewSessionStats() *SessionStats {
	return &SessionStats{StartTime: time.Now()}
}

// Refresh recomputes the derived seen total from the live counters and
// the set's remaining count.
func (s *SessionStats) Refresh(remaining int) {
	s.TotalSeen = s.KeptCount + s.DeletedCount + remaining
}

// Actioned returns how many images have been decided on so far.
func (s *SessionStats) Actioned() int {
	return s.KeptCount + s.DeletedCount
}

// PercentComplete reports triage progress against the session total.
func (s *SessionStats) PercentComplete(total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(s.Actioned()) / float64(total) * 100.0
}

// PercentDeleted reports deletions as a share of decided images.
func (s *SessionStats) PercentDeleted() float64 {
	actioned := s.Actioned()
	if actioned == 0 {
		return 0
	}
	return float64(s.DeletedCount) / float64(actioned) * 100.0
}

// Elapsed returns the session duration so far.
func (s *SessionStats) Elapsed() time.Duration {
	return time.Since(s.StartTime)
}
