package eventpipe

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"syscall"

	"smartkiosk/swipe"
)

// Config holds configuration for the event pipe.
type Config struct {
	Path string `yaml:"path"` // Path to named pipe (e.g., "/tmp/smartkiosk-events")
}

// Kind identifies a bench command.
type Kind int

const (
	KindKeys    Kind = iota // feed Keys to the capture owner
	KindLink                // open card-link mode for UserID
	KindUnlink              // close card-link mode
	KindRefresh             // reload reservations
	KindWake                // leave the attract screen
)

// Command is one parsed line from the pipe.
type Command struct {
	Kind   Kind
	Keys   []swipe.Key
	UserID int64
}

// EventHandler is called when a command is received from the pipe.
type EventHandler func(Command)

// EventPipe listens for events on a named pipe.
type EventPipe struct {
	path    string
	handler EventHandler
	ctx     context.Context
	cancel  context.CancelFunc
}

// New creates a new EventPipe. Returns nil if path is empty.
func New(cfg Config, handler EventHandler) (*EventPipe, error) {
	if cfg.Path == "" {
		return nil, nil
	}

	// Remove existing pipe if it exists
	os.Remove(cfg.Path)

	// Create the named pipe
	if err := syscall.Mkfifo(cfg.Path, 0666); err != nil {
		return nil, fmt.Errorf("create named pipe %s: %w", cfg.Path, err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	ep := &EventPipe{
		path:    cfg.Path,
		handler: handler,
		ctx:     ctx,
		cancel:  cancel,
	}

	return ep, nil
}

// Start begins listening for events on the pipe.
// This should be called as a goroutine.
func (ep *EventPipe) Start() {
	log.Printf("Event pipe listening on %s", ep.path)

	for {
		select {
		case <-ep.ctx.Done():
			return
		default:
		}

		// Open pipe for reading (blocks until writer connects)
		// We open in non-blocking mode first, then switch to blocking
		// This allows us to check for context cancellation
		file, err := os.OpenFile(ep.path, os.O_RDONLY, 0)
		if err != nil {
			if ep.ctx.Err() != nil {
				return
			}
			log.Printf("Event pipe open error: %v", err)
			continue
		}

		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			select {
			case <-ep.ctx.Done():
				file.Close()
				return
			default:
			}

			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			cmd, err := parseLine(line)
			if err != nil {
				log.Printf("Event pipe parse error: %v", err)
				continue
			}

			if ep.handler != nil {
				ep.handler(cmd)
			}
		}

		file.Close()
		// Writer closed the pipe, loop back to wait for next writer
	}
}

// Close stops the event pipe listener and removes the pipe.
func (ep *EventPipe) Close() error {
	ep.cancel()
	return os.Remove(ep.path)
}

// parseLine parses a command line into a Command.
// Command format:
//
//	key <name>      - One key press (a character or Enter, Shift, Tab, ...)
//	type <text>     - Each character of text as a key press
//	swipe <raw>     - Each character of raw followed by Enter
//	link <userid>   - Open card-link mode for a user
//	unlink          - Close card-link mode
//	refresh         - Reload reservations
//	wake            - Leave the attract screen
func parseLine(line string) (Command, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return Command{}, fmt.Errorf("empty command")
	}

	cmd := strings.ToLower(parts[0])
	rest := strings.TrimSpace(line[len(parts[0]):])

	switch cmd {
	case "key":
		if len(parts) != 2 {
			return Command{}, fmt.Errorf("key requires one key name")
		}
		return Command{Kind: KindKeys, Keys: []swipe.Key{keyName(parts[1])}}, nil

	case "type", "swipe":
		if rest == "" {
			return Command{}, fmt.Errorf("%s requires text", cmd)
		}
		keys := make([]swipe.Key, 0, len(rest)+1)
		for _, r := range rest {
			keys = append(keys, swipe.Key(string(r)))
		}
		if cmd == "swipe" {
			keys = append(keys, swipe.KeyEnter)
		}
		return Command{Kind: KindKeys, Keys: keys}, nil

	case "link":
		if len(parts) < 2 {
			return Command{}, fmt.Errorf("link requires user ID")
		}
		id, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil || id <= 0 {
			return Command{}, fmt.Errorf("invalid user ID: %s", parts[1])
		}
		return Command{Kind: KindLink, UserID: id}, nil

	case "unlink":
		return Command{Kind: KindUnlink}, nil
	case "refresh":
		return Command{Kind: KindRefresh}, nil
	case "wake":
		return Command{Kind: KindWake}, nil

	default:
		return Command{}, fmt.Errorf("unknown command: %s", cmd)
	}
}

// keyName maps a spelled-out key name onto its symbol.
func keyName(name string) swipe.Key {
	switch strings.ToLower(name) {
	case "enter", "return":
		return swipe.KeyEnter
	case "shift":
		return swipe.KeyShift
	case "tab":
		return swipe.KeyTab
	case "space":
		return " "
	case "control", "ctrl":
		return swipe.KeyControl
	case "alt":
		return swipe.KeyAlt
	}
	return swipe.Key(name)
}
