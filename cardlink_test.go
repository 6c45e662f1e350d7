package main

import (
	"errors"
	"testing"
	"time"

	"smartkiosk/api"
)

func TestCardLinkSaved(t *testing.T) {
	app, rec, b := newTestApp(t)

	if err := app.openLink(7); err != nil {
		t.Fatal(err)
	}
	if app.router.Owner().Name() != linkOwner {
		t.Fatal("Expected card link to own the reader")
	}

	typeKeys(app, ";600123456=12?", true)
	waitFor(t, "link closed", func() bool { return app.router.Owner().Name() == loginOwner })

	if !rec.has("success:" + msgLinkSaved) {
		t.Errorf("Expected saved, got %v", rec.all())
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.links) != 1 || b.links[0]["userId"] != float64(7) || b.links[0]["raw_swipe"] != ";600123456=12?" {
		t.Errorf("Unexpected link request: %v", b.links)
	}
}

func TestCardLinkRejected(t *testing.T) {
	app, rec, _ := newTestApp(t)
	if err := app.openLink(7); err != nil {
		t.Fatal(err)
	}

	typeKeys(app, "garbage", true)
	waitFor(t, "denied", func() bool { return rec.has("failure:" + msgLinkDenied) })
	waitFor(t, "prompt", func() bool { return rec.last() == "processing:"+msgLinkPrompt })

	if app.router.Owner().Name() != linkOwner {
		t.Error("A rejected card must keep card link open")
	}
}

func TestCardLinkClosedMidRequest(t *testing.T) {
	app, rec, b := newTestApp(t)
	if err := app.openLink(7); err != nil {
		t.Fatal(err)
	}

	typeKeys(app, "slowcard", true)
	waitFor(t, "verifying", func() bool { return rec.has("processing:" + msgLinkVerifying) })
	if err := app.endLink(); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	close(b.block)
	waitFor(t, "request completes", func() bool { return b.servedLate() == 1 })
	time.Sleep(50 * time.Millisecond)

	if rec.has("success:" + msgLinkSaved) {
		t.Errorf("Closed card link must not show an outcome, got %v", rec.all())
	}
	if got := rec.last(); got != "ready" {
		t.Errorf("Expected ready, got %q", got)
	}
}

func TestCardLinkHungBackend(t *testing.T) {
	app, rec, b := newTestApp(t, func() { verifyTimeout = 50 * time.Millisecond })
	defer close(b.block)
	if err := app.openLink(7); err != nil {
		t.Fatal(err)
	}

	typeKeys(app, "slowcard", true)
	waitFor(t, "denied", func() bool { return rec.has("failure:" + msgLinkDenied) })
	waitFor(t, "prompt", func() bool { return rec.last() == "processing:"+msgLinkPrompt })
}

func TestCardLinkOpenClose(t *testing.T) {
	app, _, _ := newTestApp(t)

	if err := app.endLink(); !errors.Is(err, errLinkClosed) {
		t.Errorf("Expected errLinkClosed, got %v", err)
	}
	if err := app.openLink(7); err != nil {
		t.Fatal(err)
	}
	if err := app.openLink(8); !errors.Is(err, errLinkOpen) {
		t.Errorf("Expected errLinkOpen, got %v", err)
	}
	if err := app.endLink(); err != nil {
		t.Fatal(err)
	}
	if app.router.Owner().Name() != loginOwner {
		t.Error("Expected login to own the reader again")
	}
}

func TestCardCaptureForRegistration(t *testing.T) {
	app, _, b := newTestApp(t)
	if err := app.openLink(0); err != nil {
		t.Fatal(err)
	}

	typeKeys(app, "%B42424242?", true)
	waitFor(t, "capture", func() bool { return app.pendingCardString() != "" })

	if got := app.pendingCardString(); got != "%B42424242?" {
		t.Errorf("Unexpected capture %q", got)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.links) != 0 {
		t.Error("Registration capture must not call the link endpoint")
	}
}

func TestLinkButton(t *testing.T) {
	app, _, _ := newTestApp(t)

	app.linkButton()
	if app.router.Owner().Name() != loginOwner {
		t.Fatal("Link button without a user must do nothing")
	}

	app.mu.Lock()
	app.user = &api.User{ID: 7}
	app.mu.Unlock()

	app.linkButton()
	if app.router.Owner().Name() != linkOwner {
		t.Fatal("Expected card link open")
	}
	app.linkButton()
	if app.router.Owner().Name() != loginOwner {
		t.Error("Second press must close card link")
	}
}
