package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"smartkiosk/api"
	"smartkiosk/auth"
)

func call(t *testing.T, app *App, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
	}
	rec := httptest.NewRecorder()
	app.controlRoutes().ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("%s %s: %v", method, path, err)
		}
	}
	return rec, out
}

func TestControlHealthAndStatus(t *testing.T) {
	app, _, _ := newTestApp(t)

	if rec, _ := call(t, app, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Errorf("healthz = %d", rec.Code)
	}

	rec, out := call(t, app, http.MethodGet, "/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if out["clientId"] != "test-kiosk" || out["owner"] != loginOwner || out["capture"] != "idle" {
		t.Errorf("Unexpected status %v", out)
	}
	if out["linkOpen"] != false {
		t.Errorf("Unexpected linkOpen %v", out["linkOpen"])
	}
}

func TestControlLink(t *testing.T) {
	app, _, _ := newTestApp(t)

	tests := []struct {
		method string
		body   string
		want   int
	}{
		{http.MethodDelete, "", http.StatusNotFound},
		{http.MethodPost, `{"userId":7}`, http.StatusOK},
		{http.MethodPost, `{"userId":8}`, http.StatusConflict},
		{http.MethodPost, `{"user":8}`, http.StatusBadRequest},
		{http.MethodDelete, "", http.StatusOK},
	}
	for _, tt := range tests {
		if rec, _ := call(t, app, tt.method, "/link", tt.body); rec.Code != tt.want {
			t.Errorf("%s /link %s = %d, want %d", tt.method, tt.body, rec.Code, tt.want)
		}
	}
}

func TestControlKeys(t *testing.T) {
	app, _, _ := newTestApp(t)
	if err := app.openLink(7); err != nil {
		t.Fatal(err)
	}

	rec, _ := call(t, app, http.MethodPost, "/keys", `{"keys":["%","Shift","B","1"]}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("keys = %d", rec.Code)
	}
	if got := app.router.Owner().Buffered(); got != 3 {
		t.Errorf("Expected 3 buffered bytes, got %d", got)
	}
}

func TestControlSwipeLinksCard(t *testing.T) {
	app, _, b := newTestApp(t)
	if err := app.openLink(7); err != nil {
		t.Fatal(err)
	}

	if rec, _ := call(t, app, http.MethodPost, "/swipe", `{"raw":";600123456=12?"}`); rec.Code != http.StatusAccepted {
		t.Fatalf("swipe = %d", rec.Code)
	}
	waitFor(t, "link", func() bool {
		b.mu.Lock()
		defer b.mu.Unlock()
		return len(b.links) == 1
	})

	if rec, _ := call(t, app, http.MethodPost, "/swipe", `{}`); rec.Code != http.StatusBadRequest {
		t.Errorf("empty swipe = %d", rec.Code)
	}
}

func TestControlPasswordCheck(t *testing.T) {
	app, _, _ := newTestApp(t)

	_, out := call(t, app, http.MethodPost, "/password/check", `{"password":"abc"}`)
	if out["ok"] != false || out["error"] != auth.ErrPasswordShort.Error() {
		t.Errorf("Unexpected reply %v", out)
	}

	_, out = call(t, app, http.MethodPost, "/password/check", `{"password":"Abcdef1!","confirm":"Abcdef1?"}`)
	if out["ok"] != false || out["error"] != auth.ErrPasswordMismatch.Error() {
		t.Errorf("Unexpected mismatch reply %v", out)
	}

	_, out = call(t, app, http.MethodPost, "/password/check", `{"password":"Abcdef1!"}`)
	if out["ok"] != true || out["strength"] != "Strong" || out["score"] != float64(4) {
		t.Errorf("Unexpected strong reply %v", out)
	}
}

func TestControlRegister(t *testing.T) {
	app, _, b := newTestApp(t)

	bad := `{"fullName":"prakash kumar","email":"pk@gmail.com","password":"Abcdef1!","confirm":"Abcdef1!"}`
	rec, out := call(t, app, http.MethodPost, "/register", bad)
	if rec.Code != http.StatusUnprocessableEntity || out["error"] != auth.ErrEmailDomain.Error() {
		t.Errorf("Unexpected reply %d %v", rec.Code, out)
	}

	app.mu.Lock()
	app.pendingCard = "%B42424242?"
	app.mu.Unlock()

	good := `{"fullName":"prakash   KUMAR","email":"pk@mavs.uta.edu","password":"Abcdef1!","confirm":"Abcdef1!"}`
	if rec, _ := call(t, app, http.MethodPost, "/register", good); rec.Code != http.StatusCreated {
		t.Fatalf("register = %d", rec.Code)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.reg) != 1 || b.reg[0]["fullName"] != "Prakash Kumar" || b.reg[0]["cardString"] != "%B42424242?" {
		t.Errorf("Unexpected registration %v", b.reg)
	}
	if app.pendingCardString() != "" {
		t.Error("Pending card must be cleared after registration")
	}
}

func TestControlReservations(t *testing.T) {
	app, _, b := newTestApp(t)

	if rec, _ := call(t, app, http.MethodGet, "/reservations/", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 without user, got %d", rec.Code)
	}

	app.signIn(&api.User{ID: 7, FullName: "Prakash Kumar"})
	_, booker := app.currentUser()
	if err := booker.Refresh(app.ctx); err != nil {
		t.Fatal(err)
	}

	rec, out := call(t, app, http.MethodGet, "/reservations/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list = %d", rec.Code)
	}
	if rooms := out["rooms"].([]any); len(rooms) != 1 {
		t.Errorf("Unexpected rooms %v", rooms)
	}

	conflict := `{"roomId":"1","date":"2099-01-05","startHour":"9","startMin":"30","startPeriod":"AM","endHour":"10","endMin":"30","endPeriod":"AM"}`
	rec, out = call(t, app, http.MethodPost, "/reservations/", conflict)
	if rec.Code != http.StatusConflict || out["message"] != "That time slot is already reserved." {
		t.Errorf("Unexpected conflict reply %d %v", rec.Code, out)
	}

	incomplete := `{"roomId":"1","date":"2099-01-05"}`
	if rec, _ := call(t, app, http.MethodPost, "/reservations/", incomplete); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("incomplete = %d", rec.Code)
	}

	free := `{"roomId":"1","date":"2099-01-05","startHour":"1","startMin":"00","startPeriod":"PM","endHour":"2","endMin":"00","endPeriod":"PM"}`
	rec, out = call(t, app, http.MethodPost, "/reservations/", free)
	if rec.Code != http.StatusCreated || out["ok"] != true {
		t.Errorf("Unexpected create reply %d %v", rec.Code, out)
	}

	rec, out = call(t, app, http.MethodPost, "/reservations/cancel", `{"ids":[3]}`)
	if rec.Code != http.StatusOK || out["message"] != "Cancelled 1 reservation(s)." {
		t.Errorf("Unexpected cancel reply %d %v", rec.Code, out)
	}
	b.mu.Lock()
	if len(b.cancels) != 1 || b.cancels[0] != "3" {
		t.Errorf("Unexpected cancels %v", b.cancels)
	}
	b.mu.Unlock()

	if rec, _ := call(t, app, http.MethodPost, "/reservations/cancel", `{"ids":[]}`); rec.Code != http.StatusBadRequest {
		t.Errorf("empty cancel = %d", rec.Code)
	}
}

func TestControlSupplies(t *testing.T) {
	app, _, _ := newTestApp(t)

	rec := httptest.NewRecorder()
	app.controlRoutes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/supplies/", nil))
	var cats []api.Category
	if err := json.Unmarshal(rec.Body.Bytes(), &cats); err != nil {
		t.Fatal(err)
	}
	if len(cats) != 1 || cats[0].Name != "Paper" || cats[0].Items[0].ID != 4 {
		t.Errorf("Unexpected categories %+v", cats)
	}

	if rec, _ := call(t, app, http.MethodPost, "/supplies/", `{"items":[4]}`); rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without user, got %d", rec.Code)
	}

	app.signIn(&api.User{ID: 7, Email: "pk@mavs.uta.edu"})
	if rec, _ := call(t, app, http.MethodPost, "/supplies/", `{"items":[]}`); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for no items, got %d", rec.Code)
	}
	rec, out := call(t, app, http.MethodPost, "/supplies/", `{"items":[4]}`)
	if rec.Code != http.StatusCreated || out["requestId"] != float64(11) {
		t.Errorf("Unexpected receipt %d %v", rec.Code, out)
	}
}

func TestControlLoginLogout(t *testing.T) {
	app, _, _ := newTestApp(t)

	rec, out := call(t, app, http.MethodPost, "/login", `{"email":"pk@mavs.uta.edu","password":"nope"}`)
	if rec.Code != http.StatusUnauthorized || out["error"] != "Invalid credentials" {
		t.Errorf("Unexpected reply %d %v", rec.Code, out)
	}

	rec, out = call(t, app, http.MethodPost, "/login", `{"email":"pk@mavs.uta.edu","password":"Abcdef1!"}`)
	if rec.Code != http.StatusOK || out["id"] != float64(7) {
		t.Fatalf("Unexpected reply %d %v", rec.Code, out)
	}
	if user, _ := app.currentUser(); user == nil || user.ID != 7 {
		t.Fatalf("Expected user 7, got %+v", user)
	}

	if rec, _ := call(t, app, http.MethodPost, "/logout", ""); rec.Code != http.StatusOK {
		t.Errorf("logout = %d", rec.Code)
	}
	if user, _ := app.currentUser(); user != nil {
		t.Error("Expected signed out")
	}
}
