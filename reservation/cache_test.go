package reservation

import (
	"testing"
	"time"
)

func TestCacheSoftCancelHidesFromActive(t *testing.T) {
	c := NewCache()
	c.Replace([]Entry{
		entry(t, 1, 1, "2024-03-01", "09:00", "10:00", false),
		entry(t, 2, 1, "2024-03-01", "11:00", "12:00", false),
	}, time.Now())

	c.SoftCancel(1)
	if !c.Pending(1) {
		t.Fatal("Expected 1 pending")
	}
	if got := c.Active(); len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("Expected only entry 2 active, got %+v", got)
	}

	c.Revert(1)
	if c.Pending(1) || len(c.Active()) != 2 {
		t.Fatal("Revert did not restore entry 1")
	}

	c.SoftCancel(1)
	c.Confirm(1)
	if c.Pending(1) || len(c.Active()) != 1 {
		t.Fatal("Confirm did not drop entry 1")
	}
}

func TestCacheReplaceKeepsInFlightTags(t *testing.T) {
	c := NewCache()
	c.Replace([]Entry{
		entry(t, 1, 1, "2024-03-01", "09:00", "10:00", false),
		entry(t, 2, 1, "2024-03-01", "11:00", "12:00", false),
	}, time.Now())
	c.SoftCancel(1, 2)

	// 1 still active on the server, 2 already gone
	c.Replace([]Entry{entry(t, 1, 1, "2024-03-01", "09:00", "10:00", false)}, time.Now())
	if !c.Pending(1) {
		t.Error("Tag for in-flight id 1 was dropped")
	}
	if c.Pending(2) {
		t.Error("Tag for vanished id 2 survived")
	}
	if len(c.Active()) != 0 {
		t.Error("Expected no active entries")
	}
}

func TestCacheAddUpserts(t *testing.T) {
	c := NewCache()
	c.Add(entry(t, 5, 1, "2024-03-01", "09:00", "10:00", false))
	c.Add(entry(t, 5, 1, "2024-03-01", "09:00", "11:00", false))
	got := c.Active()
	if len(got) != 1 || got[0].End.String() != "11:00" {
		t.Errorf("Expected one updated entry, got %+v", got)
	}
}

func TestCacheUpcomingSortedAndFiltered(t *testing.T) {
	c := NewCache()
	c.Replace([]Entry{
		entry(t, 1, 1, "2024-03-02", "09:00", "10:00", false),
		entry(t, 2, 1, "2024-03-01", "13:00", "14:00", false),
		entry(t, 3, 1, "2024-03-01", "08:00", "09:00", false), // ended
		entry(t, 4, 1, "2024-02-28", "13:00", "14:00", false), // past date
		entry(t, 5, 1, "2024-03-01", "11:00", "12:30", false), // in progress
		entry(t, 6, 1, "2024-03-01", "15:00", "16:00", true),
	}, time.Now())

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local)
	got := c.Upcoming(now)
	want := []int64{5, 2, 1}
	if len(got) != len(want) {
		t.Fatalf("Expected %d entries, got %+v", len(want), got)
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("Position %d: expected %d, got %d", i, id, got[i].ID)
		}
	}
}
