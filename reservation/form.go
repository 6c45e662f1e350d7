package reservation

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// Messages shown for local validation failures.
const (
	MsgIncomplete   = "Please complete all fields."
	MsgInvalidTime  = "Invalid time."
	MsgInvalidDate  = "Invalid date/time selection."
	MsgInvalidRoom  = "Please choose a room."
	MsgEndAfter     = "End time must be after start time."
	MsgLaterToday   = "Please choose a time later today."
	MsgPastDate     = "Please choose today or a later date."
	MsgSlotReserved = "That time slot is already reserved."
)

var validate = validator.New()

// Form is the raw reservation input as the kiosk collects it: a room,
// a date and 12-hour start/end times.
type Form struct {
	RoomID      string `json:"roomId" validate:"required,numeric"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	StartHour   string `json:"startHour" validate:"required,numeric"`
	StartMinute string `json:"startMin" validate:"required,numeric"`
	StartPeriod string `json:"startPeriod" validate:"required,oneof=AM PM"`
	EndHour     string `json:"endHour" validate:"required,numeric"`
	EndMinute   string `json:"endMin" validate:"required,numeric"`
	EndPeriod   string `json:"endPeriod" validate:"required,oneof=AM PM"`
}

// Range validates f and converts it to a 24-hour Range. now decides
// whether the date is today and whether the start has already passed.
func (f Form) Range(now time.Time) (Range, error) {
	if err := validate.Struct(f); err != nil {
		return Range{}, fieldError(err)
	}

	roomID, err := strconv.ParseInt(f.RoomID, 10, 64)
	if err != nil || roomID <= 0 {
		return Range{}, &ValidationError{Field: "roomId", Message: MsgInvalidRoom}
	}
	if _, err := ParseDate(f.Date); err != nil {
		return Range{}, &ValidationError{Field: "date", Message: MsgInvalidDate}
	}

	start, err := From12Hour(f.StartHour, f.StartMinute, f.StartPeriod)
	if err != nil {
		return Range{}, &ValidationError{Field: "start", Message: MsgInvalidTime}
	}
	end, err := From12Hour(f.EndHour, f.EndMinute, f.EndPeriod)
	if err != nil {
		return Range{}, &ValidationError{Field: "end", Message: MsgInvalidTime}
	}

	r := Range{RoomID: roomID, Date: f.Date, Start: start, End: end}
	if err := r.Validate(now); err != nil {
		return Range{}, err
	}
	return r, nil
}

// Validate checks the ordering invariant and rejects a date before today
// or a start already in the past when the date is today.
func (r Range) Validate(now time.Time) error {
	if !r.Start.Valid() || !r.End.Valid() {
		return &ValidationError{Field: "start", Message: MsgInvalidTime}
	}
	if r.End <= r.Start {
		return &ValidationError{Field: "end", Message: MsgEndAfter}
	}
	today := now.Format(DateLayout)
	if r.Date < today {
		return &ValidationError{Field: "date", Message: MsgPastDate}
	}
	if r.Date == today && r.Start < ClockOf(now) {
		return &ValidationError{Field: "start", Message: MsgLaterToday}
	}
	return nil
}

// fieldError maps validator output onto a single kiosk message. A
// missing field wins over a malformed one.
func fieldError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Message: MsgIncomplete}
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return &ValidationError{Field: fe.Field(), Message: MsgIncomplete}
		}
	}

	fe := verrs[0]
	msg := MsgInvalidTime
	switch {
	case fe.Tag() == "datetime":
		msg = MsgInvalidDate
	case fe.Field() == "RoomID":
		msg = MsgInvalidRoom
	}
	return &ValidationError{Field: fe.Field(), Message: msg}
}
