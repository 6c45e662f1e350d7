package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"smartkiosk/api"
	"smartkiosk/auth"
	"smartkiosk/reservation"
	"smartkiosk/swipe"
)

// controlRoutes is the local API used by the on-screen shell and by
// technicians. It is meant to listen on loopback only.
func (app *App) controlRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/status", app.getStatus)

	r.Post("/keys", app.postKeys)
	r.Post("/swipe", app.postSwipe)
	r.Post("/link", app.postLink)
	r.Delete("/link", app.deleteLink)

	r.Post("/login", app.postLogin)
	r.Post("/register", app.postRegister)
	r.Post("/logout", app.postLogout)
	r.Post("/password", app.postPassword)
	r.Post("/password/check", app.postPasswordCheck)
	r.Post("/password/reset", app.postPasswordReset)

	r.Route("/reservations", func(r chi.Router) {
		r.Get("/", app.getReservations)
		r.Post("/", app.postReservation)
		r.Post("/cancel", app.postCancel)
	})

	r.Route("/supplies", func(r chi.Router) {
		r.Get("/", app.getSupplies)
		r.Post("/", app.postSupplies)
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

type statusReply struct {
	ClientID   string    `json:"clientId"`
	Owner      string    `json:"owner"`
	Capture    string    `json:"capture"`
	Attract    bool      `json:"attract"`
	LinkOpen   bool      `json:"linkOpen"`
	LastResult string    `json:"lastResult,omitempty"`
	User       *api.User `json:"user,omitempty"`
	Booking    string    `json:"booking,omitempty"`
}

func (app *App) getStatus(w http.ResponseWriter, r *http.Request) {
	reply := statusReply{ClientID: app.cfg.ClientID}
	if owner := app.router.Owner(); owner != nil {
		reply.Owner = owner.Name()
		reply.Capture = owner.State().String()
	}

	app.mu.Lock()
	reply.Attract = app.attract
	reply.LinkOpen = app.closeLink != nil
	reply.LastResult = app.lastResult
	reply.User = app.user
	booker := app.booker
	app.mu.Unlock()

	if booker != nil {
		reply.Booking = booker.State().String()
	}
	writeJSON(w, http.StatusOK, reply)
}

func (app *App) postKeys(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Keys []swipe.Key `json:"keys"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	for _, k := range req.Keys {
		app.keyDown(k)
	}
	writeJSON(w, http.StatusAccepted, map[string]int{"keys": len(req.Keys)})
}

// postSwipe types raw followed by Enter, as a keyboard-wedge reader does.
func (app *App) postSwipe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Raw string `json:"raw"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Raw == "" {
		writeError(w, http.StatusBadRequest, "raw is required")
		return
	}
	for _, c := range req.Raw {
		app.keyDown(swipe.Key(string(c)))
	}
	app.keyDown(swipe.KeyEnter)
	writeJSON(w, http.StatusAccepted, map[string]int{"keys": len(req.Raw) + 1})
}

func (app *App) postLink(w http.ResponseWriter, r *http.Request) {
	var req linkRequest
	if err := decodeJSON(r, &req); err != nil || req.UserID < 0 {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := app.openLink(req.UserID); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (app *App) deleteLink(w http.ResponseWriter, r *http.Request) {
	if err := app.endLink(); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type registerRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Confirm  string `json:"confirm"`
}

// validate applies the kiosk's account rules in form order.
func (req *registerRequest) validate(domains []string) error {
	req.FullName = auth.FormatFullName(req.FullName)
	if err := auth.ValidateFullName(req.FullName); err != nil {
		return err
	}
	if err := auth.ValidateEmailDomain(req.Email, domains...); err != nil {
		return err
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		return err
	}
	return auth.ConfirmPassword(req.Password, req.Confirm)
}

func (app *App) postRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := req.validate(app.cfg.EmailDomains); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	err := app.backend.Register(r.Context(), api.Registration{
		FullName:   req.FullName,
		Email:      req.Email,
		Password:   req.Password,
		CardString: app.pendingCardString(),
	})
	if err != nil {
		writeBackendError(w, err)
		return
	}
	app.clearPendingCard()
	writeJSON(w, http.StatusCreated, map[string]bool{"ok": true})
}

func (app *App) postLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := app.backend.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeBackendError(w, err)
		return
	}
	app.signIn(user)
	writeJSON(w, http.StatusOK, user)
}

func (app *App) postLogout(w http.ResponseWriter, r *http.Request) {
	if err := app.signOut(r.Context()); err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type passwordRequest struct {
	Password string `json:"password"`
	Confirm  string `json:"confirm"`
}

func (app *App) postPassword(w http.ResponseWriter, r *http.Request) {
	user, _ := app.currentUser()
	if user == nil {
		writeError(w, http.StatusUnauthorized, errNoUser.Error())
		return
	}
	var req passwordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := auth.ConfirmPassword(req.Password, req.Confirm); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := app.backend.SetPassword(r.Context(), req.Password); err != nil {
		writeBackendError(w, err)
		return
	}

	app.mu.Lock()
	if app.user != nil {
		updated := *app.user
		updated.MustSetPassword = false
		app.user = &updated
	}
	app.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type passwordCheckReply struct {
	OK       bool   `json:"ok"`
	Error    string `json:"error,omitempty"`
	Strength string `json:"strength"`
	Score    int    `json:"score"`
}

func (app *App) postPasswordCheck(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	level := auth.Strength(req.Password)
	reply := passwordCheckReply{OK: true, Strength: level.String(), Score: int(level)}

	err := auth.ValidatePassword(req.Password)
	if err == nil && req.Confirm != "" {
		err = auth.ConfirmPassword(req.Password, req.Confirm)
	}
	if err != nil {
		reply.OK = false
		reply.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, reply)
}

func (app *App) postPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := auth.ValidateEmailDomain(req.Email, app.cfg.EmailDomains...); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := app.backend.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]bool{"ok": true})
}

type reservationsReply struct {
	Rooms        []reservation.Room  `json:"rooms"`
	Reservations []reservation.Entry `json:"reservations"`
}

func (app *App) getReservations(w http.ResponseWriter, r *http.Request) {
	_, booker := app.currentUser()
	if booker == nil {
		writeError(w, http.StatusUnauthorized, errNoUser.Error())
		return
	}
	reply := reservationsReply{Rooms: booker.Rooms(), Reservations: booker.Mine()}
	if reply.Rooms == nil {
		reply.Rooms = []reservation.Room{}
	}
	if reply.Reservations == nil {
		reply.Reservations = []reservation.Entry{}
	}
	writeJSON(w, http.StatusOK, reply)
}

type reservationReply struct {
	OK          bool               `json:"ok"`
	Message     string             `json:"message"`
	Reservation *reservation.Entry `json:"reservation,omitempty"`
}

func (app *App) postReservation(w http.ResponseWriter, r *http.Request) {
	_, booker := app.currentUser()
	if booker == nil {
		writeError(w, http.StatusUnauthorized, errNoUser.Error())
		return
	}
	var form reservation.Form
	if err := decodeJSON(r, &form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	out := booker.Submit(r.Context(), form)
	reply := reservationReply{OK: out.OK(), Message: out.Message, Reservation: out.Reservation}
	writeJSON(w, outcomeStatus(out), reply)
}

func outcomeStatus(out reservation.Outcome) int {
	var verr *reservation.ValidationError
	switch {
	case out.OK():
		return http.StatusCreated
	case errors.Is(out.Err, reservation.ErrConflict):
		return http.StatusConflict
	case errors.As(out.Err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(out.Err, reservation.ErrBusy):
		return http.StatusTooManyRequests
	case errors.Is(out.Err, reservation.ErrUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}

type cancelRequest struct {
	IDs  []int64 `json:"ids"`
	Bulk bool    `json:"bulk"`
}

type cancelReply struct {
	Cancelled []int64                     `json:"cancelled"`
	Failed    []reservation.CancelFailure `json:"failed"`
	Message   string                      `json:"message"`
}

func (app *App) postCancel(w http.ResponseWriter, r *http.Request) {
	_, booker := app.currentUser()
	if booker == nil {
		writeError(w, http.StatusUnauthorized, errNoUser.Error())
		return
	}
	var req cancelRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "no reservations selected")
		return
	}

	var report reservation.CancelReport
	if req.Bulk {
		report = booker.CancelBulk(r.Context(), req.IDs)
	} else {
		report = booker.CancelSelected(r.Context(), req.IDs)
	}

	reply := cancelReply{Cancelled: report.Succeeded, Failed: report.Failed, Message: report.Message()}
	if reply.Cancelled == nil {
		reply.Cancelled = []int64{}
	}
	if reply.Failed == nil {
		reply.Failed = []reservation.CancelFailure{}
	}
	writeJSON(w, http.StatusOK, reply)
}

func (app *App) getSupplies(w http.ResponseWriter, r *http.Request) {
	cats, err := app.backend.Items(r.Context())
	if err != nil {
		writeBackendError(w, err)
		return
	}
	if cats == nil {
		cats = []api.Category{}
	}
	writeJSON(w, http.StatusOK, cats)
}

func (app *App) postSupplies(w http.ResponseWriter, r *http.Request) {
	user, _ := app.currentUser()
	if user == nil {
		writeError(w, http.StatusUnauthorized, errNoUser.Error())
		return
	}
	var req struct {
		Items []int64 `json:"items"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	receipt, err := app.backend.RequestSupplies(r.Context(), api.SupplyRequest{
		Items:    req.Items,
		UserID:   user.ID,
		FullName: auth.DisplayName(user.FullName, user.Email),
		Email:    user.Email,
	})
	if err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

// writeBackendError relays a backend failure, keeping the server's
// message when there is one.
func writeBackendError(w http.ResponseWriter, err error) {
	var apiErr *api.Error
	switch {
	case errors.Is(err, api.ErrNoItems):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, api.ErrNetwork):
		writeError(w, http.StatusBadGateway, msgOffline)
	case errors.As(err, &apiErr):
		status := apiErr.Status
		if status < 400 {
			status = http.StatusBadGateway
		}
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.Error()
		}
		writeError(w, status, msg)
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
