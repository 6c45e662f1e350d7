package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"smartkiosk/indicator"
	"smartkiosk/swipe"
)

const linkOwner = "cardlink"

// Card link messages.
const (
	msgLinkPrompt    = "Swipe Your UTA Card"
	msgLinkVerifying = "Verifying Identity..."
	msgLinkSaved     = "Identity Secured"
	msgLinkDenied    = "Access Denied"
)

var (
	linkSavedDwell = 2200 * time.Millisecond
	linkErrorDwell = 2 * time.Second
)

var (
	errLinkOpen   = errors.New("card link already open")
	errLinkClosed = errors.New("card link not open")
	errNoUser     = errors.New("no user signed in")
)

// openLink pushes the card-link listener over the login screen. A
// userID of zero captures the swipe for a registration instead of
// linking it to an existing account.
func (app *App) openLink(userID int64) error {
	app.touch()

	app.mu.Lock()
	defer app.mu.Unlock()
	if app.closeLink != nil {
		return errLinkOpen
	}

	s := swipe.NewSession(linkOwner, busyConfig(swipe.ModalConfig(), linkSavedDwell), app.linkHandler(userID))
	app.linkUser = userID
	app.closeLink = app.router.Push(s)
	app.indicator.Processing(msgLinkPrompt)
	return nil
}

// endLink pops the card-link listener. The login listener gets the
// reader back.
func (app *App) endLink() error {
	app.mu.Lock()
	release := app.closeLink
	app.closeLink = nil
	app.linkUser = 0
	app.mu.Unlock()

	if release == nil {
		return errLinkClosed
	}
	release()
	app.indicator.Ready()
	return nil
}

// linkButton opens card-link mode for the signed-in user, or closes it
// when already open.
func (app *App) linkButton() {
	if err := app.endLink(); err == nil {
		return
	}
	user, _ := app.currentUser()
	if user == nil {
		log.Printf("Link button: %v", errNoUser)
		return
	}
	if err := app.openLink(user.ID); err != nil {
		log.Printf("Link button: %v", err)
	}
}

func (app *App) linkHandler(userID int64) swipe.Handler {
	return func(ctx context.Context, ev swipe.Event) {
		app.indicator.Processing(msgLinkVerifying)

		var err error
		if userID != 0 {
			err = verify(ctx, func(call context.Context) error {
				return app.backend.LinkCard(call, userID, ev.Raw)
			})
		}
		if ctx.Err() != nil {
			log.Printf("Card link for user %d finished after listener stopped", userID)
			return
		}
		if userID == 0 {
			app.mu.Lock()
			app.pendingCard = ev.Raw
			app.mu.Unlock()
		}

		if err != nil {
			log.Printf("Card link for user %d failed (%s): %v", userID, ev.Fingerprint(), err)
			app.setResult(msgLinkDenied)
			app.indicator.Failure(&indicator.Status{Title: msgLinkDenied, Detail: "Invalid Card Type"})
			if sleep(ctx, linkErrorDwell) {
				app.indicator.Processing(msgLinkPrompt)
			}
			return
		}

		app.setResult(msgLinkSaved)
		app.indicator.Success(&indicator.Status{Title: msgLinkSaved, Detail: "Card Info Saved"})
		if sleep(ctx, linkSavedDwell) {
			app.endLink()
		}
	}
}

// pendingCardString returns the swipe captured for a registration.
func (app *App) pendingCardString() string {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.pendingCard
}

func (app *App) clearPendingCard() {
	app.mu.Lock()
	app.pendingCard = ""
	app.mu.Unlock()
}

type linkRequest struct {
	UserID int64 `json:"userId"`
}

func parseLinkRequest(payload []byte) (int64, error) {
	var req linkRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return 0, fmt.Errorf("decode link request: %w", err)
	}
	if req.UserID < 0 {
		return 0, fmt.Errorf("invalid user ID %d", req.UserID)
	}
	return req.UserID, nil
}
