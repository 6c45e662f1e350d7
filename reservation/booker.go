package reservation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
)

// Backend is the authoritative reservation service.
type Backend interface {
	Rooms(ctx context.Context) ([]Room, error)
	MyReservations(ctx context.Context) ([]Entry, error)
	AllReservations(ctx context.Context) ([]Entry, error)
	Reserve(ctx context.Context, r Range) (Entry, error)
	CancelReservation(ctx context.Context, id int64) error
	CancelBulk(ctx context.Context, ids []int64) (BulkResult, error)
}

// BulkResult is the backend verdict for a bulk cancel. Ids absent from
// both lists are treated as failed.
type BulkResult struct {
	Cancelled []int64
	Failed    map[int64]string
}

// State is the submission state of a Booker.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	default:
		return "unknown"
	}
}

// Outcome is the result of one submission attempt, ready to show.
type Outcome struct {
	Reservation *Entry
	Message     string
	Err         error
}

// OK reports whether the reservation was created.
func (o Outcome) OK() bool {
	return o.Err == nil && o.Reservation != nil
}

// CancelFailure is one reservation that could not be cancelled.
type CancelFailure struct {
	ID    int64
	Error string
}

// CancelReport lists per-reservation cancellation outcomes.
type CancelReport struct {
	Succeeded []int64
	Failed    []CancelFailure
}

// Message summarizes r for the kiosk toast.
func (r CancelReport) Message() string {
	switch {
	case len(r.Failed) == 0:
		return fmt.Sprintf("Cancelled %d reservation(s).", len(r.Succeeded))
	case len(r.Succeeded) == 0:
		if strings.Contains(r.Failed[0].Error, "Database unavailable") {
			return "Database offline, cancellation didn't go through."
		}
		return "Unable to cancel selected reservations."
	default:
		return fmt.Sprintf("Cancelled %d reservation(s). %d failed.", len(r.Succeeded), len(r.Failed))
	}
}

// Booker runs the reservation submission flow for one signed-in user:
//
//	Idle -> Validating -> (conflict -> Idle) | Submitting -> Idle
//
// Every path ends in Idle with a message. There is no automatic retry.
type Booker struct {
	backend Backend
	now     func() time.Time

	mu    sync.Mutex
	state State
	rooms []Room

	existing *Cache // every known reservation of every room
	mine     *Cache // the user's own upcoming reservations
}

// NewBooker creates a Booker on top of backend.
func NewBooker(backend Backend) *Booker {
	return &Booker{
		backend:  backend,
		now:      time.Now,
		existing: NewCache(),
		mine:     NewCache(),
	}
}

// SetClock replaces the time source used for past-time checks.
func (b *Booker) SetClock(now func() time.Time) {
	b.now = now
}

// State returns the current submission state.
func (b *Booker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Rooms returns the rooms from the last refresh.
func (b *Booker) Rooms() []Room {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Room(nil), b.rooms...)
}

// Mine returns the user's upcoming reservations, sorted.
func (b *Booker) Mine() []Entry {
	return b.mine.Upcoming(b.now())
}

// Known returns every active reservation used by the conflict check.
func (b *Booker) Known() []Entry {
	return append(b.existing.Active(), b.mine.Active()...)
}

// Refresh reloads rooms and reservations. Each list is fetched
// independently; a failed fetch leaves that list empty (rooms) or as it
// was (reservations) and is reported in the returned error.
func (b *Booker) Refresh(ctx context.Context) error {
	var errs []error

	rooms, err := b.backend.Rooms(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("load rooms: %w", err))
		rooms = nil
	}
	b.mu.Lock()
	b.rooms = rooms
	b.mu.Unlock()

	if all, err := b.backend.AllReservations(ctx); err != nil {
		errs = append(errs, fmt.Errorf("load reservations: %w", err))
	} else {
		b.existing.Replace(all, b.now())
	}

	if mine, err := b.backend.MyReservations(ctx); err != nil {
		errs = append(errs, fmt.Errorf("load my reservations: %w", err))
	} else {
		b.mine.Replace(mine, b.now())
	}

	return errors.Join(errs...)
}

// Submit validates form, runs the advisory conflict check and, when the
// slot looks free, asks the backend to create the reservation.
func (b *Booker) Submit(ctx context.Context, form Form) Outcome {
	b.mu.Lock()
	if b.state != StateIdle {
		b.mu.Unlock()
		return Outcome{Err: ErrBusy, Message: "A reservation is already being submitted."}
	}
	b.state = StateValidating
	b.mu.Unlock()
	defer b.setState(StateIdle)

	r, err := form.Range(b.now())
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return Outcome{Err: err, Message: verr.Message}
		}
		return Outcome{Err: err, Message: MsgInvalidTime}
	}

	if HasConflict(r, b.Known()) {
		return Outcome{Err: ErrConflict, Message: MsgSlotReserved}
	}

	b.setState(StateSubmitting)
	created, err := b.backend.Reserve(ctx, r)
	if err != nil {
		return rejectionOutcome(err)
	}

	b.mine.Add(created)
	b.existing.Add(created)
	log.Printf("Reservation %d created: room %d %s %s-%s",
		created.ID, created.RoomID, created.Date, created.Start, created.End)

	if err := b.Refresh(ctx); err != nil {
		log.Printf("Reservation refresh after create: %v", err)
	}

	return Outcome{
		Reservation: &created,
		Message: fmt.Sprintf("Room Reserved:\n%s %s %s-%s",
			created.RoomName, created.Date, created.Start.Display(), created.End.Display()),
	}
}

func rejectionOutcome(err error) Outcome {
	var rej Rejection
	if !errors.As(err, &rej) {
		return Outcome{Err: fmt.Errorf("%w: %w", ErrUnavailable, err), Message: "Network error."}
	}
	msg := rej.ServerMessage()
	if rej.Conflict() {
		if msg == "" {
			msg = "This room is already reserved for that time."
		}
		return Outcome{Err: fmt.Errorf("%w: %w", ErrConflict, err), Message: msg}
	}
	if msg == "" {
		msg = "Reservation failed."
	}
	return Outcome{Err: err, Message: msg}
}

func (b *Booker) setState(s State) {
	b.mu.Lock()
	b.state = s
	b.mu.Unlock()
}

// CancelSelected cancels ids one by one. Each id is hidden locally as
// soon as its cancel is sent, removed once the backend confirms (or
// says it was already cancelled) and restored if the backend refuses.
func (b *Booker) CancelSelected(ctx context.Context, ids []int64) CancelReport {
	var report CancelReport
	if len(ids) == 0 {
		return report
	}

	for _, id := range ids {
		b.softCancel(id)
		err := b.backend.CancelReservation(ctx, id)
		if err == nil || alreadyCancelled(err) {
			b.confirm(id)
			report.Succeeded = append(report.Succeeded, id)
			continue
		}
		b.revert(id)
		report.Failed = append(report.Failed, CancelFailure{ID: id, Error: failureText(err)})
	}

	b.afterCancel(ctx, report)
	return report
}

// CancelBulk cancels ids in one request. When the backend reports
// per-id results they are honoured; otherwise the batch succeeds or
// fails as a whole.
func (b *Booker) CancelBulk(ctx context.Context, ids []int64) CancelReport {
	var report CancelReport
	if len(ids) == 0 {
		return report
	}

	for _, id := range ids {
		b.softCancel(id)
	}

	res, err := b.backend.CancelBulk(ctx, ids)
	if err != nil {
		text := failureText(err)
		for _, id := range ids {
			b.revert(id)
			report.Failed = append(report.Failed, CancelFailure{ID: id, Error: text})
		}
		b.afterCancel(ctx, report)
		return report
	}

	done := make(map[int64]bool, len(res.Cancelled))
	for _, id := range res.Cancelled {
		done[id] = true
	}
	for _, id := range ids {
		if done[id] {
			b.confirm(id)
			report.Succeeded = append(report.Succeeded, id)
			continue
		}
		b.revert(id)
		text, ok := res.Failed[id]
		if !ok {
			text = "not cancelled"
		}
		report.Failed = append(report.Failed, CancelFailure{ID: id, Error: text})
	}

	b.afterCancel(ctx, report)
	return report
}

func (b *Booker) afterCancel(ctx context.Context, report CancelReport) {
	log.Printf("Reservation cancel: %d ok, %d failed", len(report.Succeeded), len(report.Failed))
	if len(report.Succeeded) == 0 {
		return
	}
	if err := b.Refresh(ctx); err != nil {
		log.Printf("Reservation refresh after cancel: %v", err)
	}
}

func (b *Booker) softCancel(id int64) {
	b.existing.SoftCancel(id)
	b.mine.SoftCancel(id)
}

func (b *Booker) confirm(id int64) {
	b.existing.Confirm(id)
	b.mine.Confirm(id)
}

func (b *Booker) revert(id int64) {
	b.existing.Revert(id)
	b.mine.Revert(id)
}

func alreadyCancelled(err error) bool {
	var rej Rejection
	if !errors.As(err, &rej) {
		return false
	}
	return strings.Contains(strings.ToLower(rej.ServerMessage()), "already")
}

func failureText(err error) string {
	var rej Rejection
	if errors.As(err, &rej) && rej.ServerMessage() != "" {
		return rej.ServerMessage()
	}
	return "Network error"
}
