package session

// CircleView is the presentation-facing view of one circle.
type CircleView struct {
	ID        int       `json:"id"`
	Position  Position  `json:"position"`
	State     Lifecycle `json:"state"`
	Remaining float64   `json:"remaining"`
	Opacity   float64   `json:"opacity"`
}

// Snapshot is what the presentation layer renders. GameID and SessionID
// are filled in by the owner of the state.
type Snapshot struct {
	GameID         string       `json:"game_id,omitempty"`
	SessionID      string       `json:"session_id,omitempty"`
	Generation     uint64       `json:"generation"`
	Phase          Phase        `json:"phase"`
	RequestedCount int          `json:"requested_count"`
	Elapsed        float64      `json:"elapsed"`
	NextExpected   int          `json:"next_expected"`
	AutoPlay       bool         `json:"auto_play"`
	Circles        []CircleView `json:"circles"`
}

// Snapshot copies the observable parts of s.
func (s State) Snapshot() Snapshot {
	views := make([]CircleView, 0, len(s.Circles))
	for _, c := range s.Circles {
		views = append(views, CircleView{
			ID:        c.ID,
			Position:  c.Position,
			State:     c.State,
			Remaining: c.RemainingSeconds(),
			Opacity:   c.Opacity(),
		})
	}
	return Snapshot{
		Generation:     s.Generation,
		Phase:          s.Phase,
		RequestedCount: s.Requested,
		Elapsed:        s.Elapsed(),
		NextExpected:   s.NextExpected,
		AutoPlay:       s.AutoPlay.Enabled,
		Circles:        views,
	}
}
