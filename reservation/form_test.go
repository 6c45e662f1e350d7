package reservation

import (
	"errors"
	"testing"
	"time"
)

func validForm() Form {
	return Form{
		RoomID:      "1",
		Date:        "2024-03-01",
		StartHour:   "9",
		StartMinute: "30",
		StartPeriod: "AM",
		EndHour:     "10",
		EndMinute:   "30",
		EndPeriod:   "AM",
	}
}

var formNow = time.Date(2024, 2, 28, 12, 0, 0, 0, time.Local)

func TestFormRange(t *testing.T) {
	r, err := validForm().Range(formNow)
	if err != nil {
		t.Fatalf("Range: %v", err)
	}
	if r.RoomID != 1 || r.Date != "2024-03-01" || r.Start.String() != "09:30" || r.End.String() != "10:30" {
		t.Errorf("Unexpected range %+v", r)
	}
}

func TestFormValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Form)
		now    time.Time
		want   string
	}{
		{"missing room", func(f *Form) { f.RoomID = "" }, formNow, MsgIncomplete},
		{"missing date", func(f *Form) { f.Date = "" }, formNow, MsgIncomplete},
		{"missing end minute", func(f *Form) { f.EndMinute = "" }, formNow, MsgIncomplete},
		{"bad period", func(f *Form) { f.StartPeriod = "XM" }, formNow, MsgInvalidTime},
		{"bad hour", func(f *Form) { f.StartHour = "13" }, formNow, MsgInvalidTime},
		{"non numeric minute", func(f *Form) { f.EndMinute = "ab" }, formNow, MsgInvalidTime},
		{"bad date", func(f *Form) { f.Date = "03/01/2024" }, formNow, MsgInvalidDate},
		{"bad room", func(f *Form) { f.RoomID = "x1" }, formNow, MsgInvalidRoom},
		{"zero room", func(f *Form) { f.RoomID = "0" }, formNow, MsgInvalidRoom},
		{"end before start", func(f *Form) { f.EndHour = "9"; f.EndMinute = "00" }, formNow, MsgEndAfter},
		{"end equals start", func(f *Form) { f.EndHour = "9" }, formNow, MsgEndAfter},
		{"date before today", func(f *Form) { f.Date = "2024-02-01" }, formNow, MsgPastDate},
		{"yesterday", func(f *Form) { f.Date = "2024-02-27" }, formNow, MsgPastDate},
		{
			"start passed today",
			func(*Form) {},
			time.Date(2024, 3, 1, 9, 45, 0, 0, time.Local),
			MsgLaterToday,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.mutate(&f)
			_, err := f.Range(tt.now)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
			if verr.Message != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, verr.Message)
			}
		})
	}
}

func TestFormLaterTodayAllowed(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 30, 0, 0, time.Local)
	if _, err := validForm().Range(now); err != nil {
		t.Errorf("Expected start at current minute to pass, got %v", err)
	}
}
