package api

import (
	"context"
	"fmt"
	"net/http"

	"smartkiosk/reservation"
)

var _ reservation.Backend = (*Client)(nil)

type roomsReply struct {
	Rooms []reservation.Room `json:"rooms"`
}

// Rooms lists the reservable rooms.
func (c *Client) Rooms(ctx context.Context) ([]reservation.Room, error) {
	var reply roomsReply
	if err := c.do(ctx, http.MethodGet, "/api/rooms/", nil, &reply); err != nil {
		return nil, err
	}
	return reply.Rooms, nil
}

type reservationsReply struct {
	Reservations []reservation.Entry `json:"reservations"`
}

// MyReservations lists the session user's reservations.
func (c *Client) MyReservations(ctx context.Context) ([]reservation.Entry, error) {
	var reply reservationsReply
	if err := c.do(ctx, http.MethodGet, "/api/rooms/reservations/my/", nil, &reply); err != nil {
		return nil, err
	}
	return reply.Reservations, nil
}

// AllReservations lists every room's reservations.
func (c *Client) AllReservations(ctx context.Context) ([]reservation.Entry, error) {
	var reply reservationsReply
	if err := c.do(ctx, http.MethodGet, "/api/rooms/reservations/all/", nil, &reply); err != nil {
		return nil, err
	}
	return reply.Reservations, nil
}

type reserveRequest struct {
	RoomID int64             `json:"roomId"`
	Date   string            `json:"date"`
	Start  reservation.Clock `json:"startTime"`
	End    reservation.Clock `json:"endTime"`
}

type reserveReply struct {
	OK          bool               `json:"ok"`
	Reservation *reservation.Entry `json:"reservation"`
}

// Reserve creates a reservation. The backend re-checks conflicts and
// answers 409 when the slot is taken.
func (c *Client) Reserve(ctx context.Context, r reservation.Range) (reservation.Entry, error) {
	var reply reserveReply
	req := reserveRequest{RoomID: r.RoomID, Date: r.Date, Start: r.Start, End: r.End}
	if err := c.do(ctx, http.MethodPost, "/api/rooms/reserve/", req, &reply); err != nil {
		return reservation.Entry{}, err
	}
	if !reply.OK || reply.Reservation == nil {
		return reservation.Entry{}, &Error{Status: http.StatusOK}
	}
	return *reply.Reservation, nil
}

// CancelReservation cancels one reservation.
func (c *Client) CancelReservation(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/rooms/reservations/%d/cancel/", id), nil, nil)
}

type bulkRequest struct {
	IDs []int64 `json:"ids"`
}

type bulkFailure struct {
	ID    int64  `json:"id"`
	Error string `json:"error"`
}

type bulkReply struct {
	Cancelled []int64       `json:"cancelled"`
	Failed    []bulkFailure `json:"failed"`
}

// CancelBulk cancels ids in one request. A reply without per-id lists
// means every id was cancelled.
func (c *Client) CancelBulk(ctx context.Context, ids []int64) (reservation.BulkResult, error) {
	var reply bulkReply
	if err := c.do(ctx, http.MethodPost, "/api/rooms/reservations/cancel-bulk/", bulkRequest{ids}, &reply); err != nil {
		return reservation.BulkResult{}, err
	}

	if reply.Cancelled == nil && reply.Failed == nil {
		return reservation.BulkResult{Cancelled: ids}, nil
	}
	res := reservation.BulkResult{
		Cancelled: reply.Cancelled,
		Failed:    make(map[int64]string, len(reply.Failed)),
	}
	for _, f := range reply.Failed {
		res.Failed[f.ID] = f.Error
	}
	return res, nil
}
