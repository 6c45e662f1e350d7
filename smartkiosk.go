package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"smartkiosk/api"
	"smartkiosk/button"
	"smartkiosk/eventpipe"
	"smartkiosk/indicator"
	"smartkiosk/mqtt"
	"smartkiosk/reader"
	"smartkiosk/reservation"
	"smartkiosk/swipe"
)

var myBuild string

// App holds the application state and dependencies.
type App struct {
	cfg       *Config
	backend   *api.Client
	mqtt      *mqtt.Client
	reader    reader.KeyReader
	indicator indicator.Indicator
	buttons   *button.Buttons
	pipe      *eventpipe.EventPipe
	control   *http.Server
	router    *swipe.Router
	login     *swipe.Session
	ctx       context.Context
	cancel    context.CancelFunc

	mu          sync.Mutex
	user        *api.User
	booker      *reservation.Booker
	closeLink   func()
	linkUser    int64
	pendingCard string
	lastResult  string
	lastInput   time.Time
	attract     bool
}

// newApp builds the capture pipeline around backend and ind. The login
// listener owns the reader until a modal is pushed over it.
func newApp(ctx context.Context, cfg *Config, backend *api.Client, ind indicator.Indicator) *App {
	ctx, cancel := context.WithCancel(ctx)
	app := &App{
		cfg:       cfg,
		backend:   backend,
		indicator: ind,
		router:    swipe.NewRouter(),
		ctx:       ctx,
		cancel:    cancel,
		lastInput: time.Now(),
	}
	app.router.SetChangeCallback(app.onOwnerChange)
	app.login = swipe.NewSession(loginOwner, busyConfig(swipe.PageConfig(), loginFailureDwell), app.handleLoginSwipe)
	app.router.Push(app.login)
	return app
}

func main() {
	fmt.Printf("smartkiosk build %s\n", myBuild)

	cfgfile := flag.String("cfg", "smartkiosk.cfg", "Config file")
	envfile := flag.String("env", ".env", "Environment file")
	flag.Parse()

	if err := godotenv.Load(*envfile); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: could not load %s: %v", *envfile, err)
	}

	cfg, err := LoadConfig(*cfgfile)
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	// Initialize indicator (LEDs, neopixels, screen)
	ind, err := indicator.New(cfg.Indicator)
	if err != nil {
		log.Fatalf("Init indicator: %v", err)
	}
	ind.ConnectionLost() // Start with connection lost state

	backend, err := api.New(cfg.API, cfg.ClientID)
	if err != nil {
		log.Fatalf("Init API client: %v", err)
	}

	app := newApp(context.Background(), cfg, backend, ind)

	// Initialize card reader
	app.reader, err = reader.New(cfg.Reader)
	if err != nil {
		log.Fatalf("Init reader: %v", err)
	}

	// Initialize push buttons if configured
	app.buttons, err = button.New(cfg.Button, button.Handlers{
		OnWake: app.wake,
		OnLink: app.linkButton,
	})
	if err != nil {
		log.Fatalf("Init buttons: %v", err)
	}

	// Initialize bench command pipe if configured
	app.pipe, err = eventpipe.New(cfg.EventPipe, app.handlePipeCommand)
	if err != nil {
		log.Fatalf("Init event pipe: %v", err)
	}

	// Initialize MQTT
	app.mqtt, err = mqtt.New(cfg.MQTT, cfg.ClientID, mqtt.Handlers{
		OnConnect:    app.onMQTTConnect,
		OnDisconnect: app.onMQTTDisconnect,
		OnMessage:    app.onMQTTMessage,
	})
	if err != nil {
		log.Fatalf("Init MQTT: %v", err)
	}
	for _, topic := range []string{mqtt.BroadcastRefresh, mqtt.ControlTopic(cfg.ClientID, mqtt.LeafLink)} {
		if err := app.mqtt.Subscribe(topic); err != nil {
			log.Printf("Subscribe error: %v", err)
		}
	}

	// Start background goroutines
	go func() {
		if err := app.mqtt.Connect(); err != nil {
			log.Printf("MQTT connect: %v", err)
		}
	}()
	go app.keyListener()
	go app.pingSender()
	go app.idleWatcher()
	if app.pipe != nil {
		go app.pipe.Start()
	}
	if cfg.Control.Listen != "" {
		app.control = &http.Server{
			Addr:              cfg.Control.Listen,
			Handler:           app.controlRoutes(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Printf("Control API listening on %s", cfg.Control.Listen)
			if err := app.control.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("Control API: %v", err)
			}
		}()
	}

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	fmt.Println("Shutting down...")
	app.shutdown()
	fmt.Println("Shutdown complete")
}

// shutdown stops input first so no handler starts while outputs are
// being released.
func (app *App) shutdown() {
	app.cancel()

	if app.control != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := app.control.Shutdown(ctx); err != nil {
			log.Printf("Control API shutdown: %v", err)
		}
		cancel()
	}
	if app.pipe != nil {
		app.pipe.Close()
	}
	app.router.Close()
	if app.reader != nil {
		app.reader.Close()
	}
	if err := app.buttons.Release(); err != nil {
		log.Printf("Release buttons: %v", err)
	}
	if app.mqtt != nil {
		app.mqtt.Disconnect()
	}
	app.indicator.Shutdown()
	if err := app.indicator.Release(); err != nil {
		log.Printf("Release indicator: %v", err)
	}
}

func (app *App) onMQTTConnect() {
	indicator.SetConnected(app.indicator, true)
	app.indicator.Idle()
	app.mu.Lock()
	app.attract = true
	app.mu.Unlock()
}

func (app *App) onMQTTDisconnect() {
	indicator.SetConnected(app.indicator, false)
	app.indicator.ConnectionLost()
}

func (app *App) onMQTTMessage(topic string, payload []byte) {
	if topic == mqtt.BroadcastRefresh {
		fmt.Println("Received reservation refresh message")
		go app.refreshReservations()
		return
	}

	leaf, ok := mqtt.ControlLeaf(topic, app.cfg.ClientID)
	if !ok {
		return
	}
	switch leaf {
	case mqtt.LeafLink:
		userID, err := parseLinkRequest(payload)
		if err != nil {
			log.Printf("Decode link request: %v", err)
			return
		}
		if err := app.openLink(userID); err != nil {
			log.Printf("Open card link: %v", err)
		}
	}
}

func (app *App) handlePipeCommand(cmd eventpipe.Command) {
	switch cmd.Kind {
	case eventpipe.KindKeys:
		for _, k := range cmd.Keys {
			app.keyDown(k)
		}
	case eventpipe.KindLink:
		if err := app.openLink(cmd.UserID); err != nil {
			log.Printf("Open card link: %v", err)
		}
	case eventpipe.KindUnlink:
		app.endLink()
	case eventpipe.KindRefresh:
		app.refreshReservations()
	case eventpipe.KindWake:
		app.wake()
	}
}

func (app *App) keyListener() {
	for {
		select {
		case <-app.ctx.Done():
			return
		default:
		}

		k, err := app.reader.ReadKey(app.ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			log.Printf("Read key: %v", err)
			time.Sleep(time.Second)
			continue
		}
		app.keyDown(k)
	}
}

// keyDown wakes the kiosk and hands k to the current capture owner.
func (app *App) keyDown(k swipe.Key) {
	app.touch()
	app.router.KeyDown(k)
}

// wake leaves the attract screen without feeding the reader.
func (app *App) wake() {
	app.touch()
}

func (app *App) touch() {
	app.mu.Lock()
	app.lastInput = time.Now()
	wasIdle := app.attract
	app.attract = false
	app.mu.Unlock()

	if wasIdle {
		app.indicator.Ready()
	}
}

func (app *App) idleWatcher() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-app.ctx.Done():
			return
		case now := <-ticker.C:
			app.checkIdle(now)
		}
	}
}

// checkIdle returns the kiosk to the attract screen once the login
// listener has been untouched for the idle period.
func (app *App) checkIdle(now time.Time) bool {
	idle := time.Duration(app.cfg.IdleSecs) * time.Second

	app.mu.Lock()
	if app.attract || app.closeLink != nil || now.Sub(app.lastInput) < idle {
		app.mu.Unlock()
		return false
	}
	if app.login.State() != swipe.StateIdle {
		app.mu.Unlock()
		return false
	}
	app.attract = true
	app.mu.Unlock()

	app.indicator.Idle()
	return true
}

func (app *App) pingSender() {
	ticker := time.NewTicker(time.Duration(app.cfg.PingSecs) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-app.ctx.Done():
			return
		case <-ticker.C:
			app.publish(mqtt.LeafPing, map[string]string{"status": "ok"})
		}
	}
}

func (app *App) onOwnerChange(owner string) {
	log.Printf("Reader owner is now %q", owner)
}

func (app *App) setResult(msg string) {
	app.mu.Lock()
	app.lastResult = msg
	app.mu.Unlock()
}

// publish is a no-op until MQTT is initialized.
func (app *App) publish(leaf string, v any) {
	if app.mqtt == nil {
		return
	}
	if err := app.mqtt.Status(leaf, v); err != nil {
		log.Printf("Publish %s: %v", leaf, err)
	}
}

// sleep waits for d or until ctx ends. It reports whether d elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
