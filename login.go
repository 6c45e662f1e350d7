package main

import (
	"context"
	"errors"
	"log"
	"time"

	"smartkiosk/api"
	"smartkiosk/auth"
	"smartkiosk/indicator"
	"smartkiosk/mqtt"
	"smartkiosk/reservation"
	"smartkiosk/swipe"
)

const loginOwner = "login"

// Login screen messages.
const (
	msgVerifying = "Verifying ID..."
	msgOffline   = "System Offline"
	msgNotLinked = "Card Not Linked"
	msgInvalid   = "Invalid Card"
)

// How long outcomes stay on screen. Variables so tests can shorten them.
var (
	loginSuccessDwell = 1200 * time.Millisecond
	loginFailureDwell = 3 * time.Second
)

// verifyTimeout bounds a backend call made for a swipe. The listener
// stays busy for the call plus the longest outcome dwell.
var verifyTimeout = 8 * time.Second

func busyConfig(c swipe.Config, dwell time.Duration) swipe.Config {
	c.BusyTimeout = verifyTimeout + dwell + time.Second
	return c
}

// verify runs fn on a context that survives the listener stopping, so
// a request already sent is allowed to complete.
func verify(ctx context.Context, fn func(context.Context) error) error {
	call, cancel := context.WithTimeout(context.WithoutCancel(ctx), verifyTimeout)
	defer cancel()
	return fn(call)
}

// loginFailure maps a card login error onto the message shown.
func loginFailure(err error) string {
	switch {
	case errors.Is(err, api.ErrNetwork):
		return msgOffline
	case errors.Is(err, api.ErrCardNotLinked):
		return msgNotLinked
	default:
		return msgInvalid
	}
}

// handleLoginSwipe runs while the login session is busy. Nothing is
// shown once ctx is cancelled: the listener was stopped and the result
// belongs to nobody.
func (app *App) handleLoginSwipe(ctx context.Context, ev swipe.Event) {
	app.indicator.Processing(msgVerifying)

	var user *api.User
	err := verify(ctx, func(call context.Context) (err error) {
		user, err = app.backend.CardLogin(call, ev.Raw)
		return err
	})
	if ctx.Err() != nil {
		log.Printf("Card login (%s) finished after listener stopped", ev.Fingerprint())
		return
	}
	if err != nil {
		msg := loginFailure(err)
		log.Printf("Card login failed (%s): %v", ev.Fingerprint(), err)
		app.setResult(msg)
		app.publish(mqtt.LeafSwipe, swipeReport{Result: msg, At: ev.At})
		app.indicator.Failure(&indicator.Status{Title: msg})
		if sleep(ctx, loginFailureDwell) {
			app.indicator.Ready()
		}
		return
	}

	greeting := auth.Greeting(user.FullName)
	log.Printf("Card login: user %d", user.ID)
	app.setResult(greeting)
	app.publish(mqtt.LeafSwipe, swipeReport{Result: "ok", At: ev.At})
	app.indicator.Success(&indicator.Status{Title: greeting})
	if !sleep(ctx, loginSuccessDwell) {
		return
	}
	app.signIn(user)
}

type swipeReport struct {
	Result string    `json:"result"`
	At     time.Time `json:"at"`
}

type loginReport struct {
	OK     bool  `json:"ok"`
	UserID int64 `json:"userId,omitempty"`
}

// signIn makes user the kiosk's current user with a fresh booker.
func (app *App) signIn(user *api.User) {
	booker := reservation.NewBooker(app.backend)

	app.mu.Lock()
	app.user = user
	app.booker = booker
	app.mu.Unlock()

	if user.MustSetPassword {
		log.Printf("User %d must set a password", user.ID)
	}
	app.publish(mqtt.LeafLogin, loginReport{OK: true, UserID: user.ID})
	go app.refreshReservations()
}

// signOut drops the current user and ends the backend session.
func (app *App) signOut(ctx context.Context) error {
	app.mu.Lock()
	had := app.user != nil
	app.user = nil
	app.booker = nil
	app.mu.Unlock()

	if !had {
		return nil
	}
	app.publish(mqtt.LeafLogin, loginReport{OK: false})
	app.indicator.Ready()
	return app.backend.Logout(ctx)
}

func (app *App) currentUser() (*api.User, *reservation.Booker) {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.user, app.booker
}

func (app *App) refreshReservations() {
	_, booker := app.currentUser()
	if booker == nil {
		return
	}
	ctx, cancel := context.WithTimeout(app.ctx, 15*time.Second)
	defer cancel()
	if err := booker.Refresh(ctx); err != nil {
		log.Printf("Refresh reservations: %v", err)
	}
}
