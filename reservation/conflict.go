package reservation

// Range is a proposed or existing booking of one room on one date,
// treated as the half-open interval [Start, End).
type Range struct {
	RoomID int64
	Date   string // YYYY-MM-DD
	Start  Clock
	End    Clock
}

// Overlaps reports whether r and o share a room, a date and at least one
// minute. Back-to-back ranges do not overlap.
func (r Range) Overlaps(o Range) bool {
	if r.RoomID != o.RoomID || r.Date != o.Date {
		return false
	}
	return r.Start < o.End && o.Start < r.End
}

// Room is a reservable conference room.
type Room struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Capacity  int    `json:"capacity"`
	HasScreen bool   `json:"hasScreen"`
	HasHDMI   bool   `json:"hasHdmi"`
}

// Entry is a known reservation as returned by the backend.
type Entry struct {
	ID        int64  `json:"id"`
	RoomID    int64  `json:"roomId"`
	RoomName  string `json:"roomName"`
	Date      string `json:"date"`
	Start     Clock  `json:"startTime"`
	End       Clock  `json:"endTime"`
	Cancelled bool   `json:"cancelled"`
	Reason    string `json:"cancelReason,omitempty"`
}

// Range returns the booked interval of e.
func (e Entry) Range() Range {
	return Range{RoomID: e.RoomID, Date: e.Date, Start: e.Start, End: e.End}
}

// HasConflict reports whether proposed overlaps any entry in existing
// that is not cancelled. It stops at the first match.
func HasConflict(proposed Range, existing []Entry) bool {
	for _, e := range existing {
		if e.Cancelled {
			continue
		}
		if proposed.Overlaps(e.Range()) {
			return true
		}
	}
	return false
}

// Conflicts returns every non-cancelled entry that overlaps proposed.
func Conflicts(proposed Range, existing []Entry) []Entry {
	var out []Entry
	for _, e := range existing {
		if !e.Cancelled && proposed.Overlaps(e.Range()) {
			out = append(out, e)
		}
	}
	return out
}
