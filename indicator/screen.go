package indicator

import "smartkiosk/display"

// Screen implements Indicator on the framebuffer status screen.
type Screen struct {
	s *display.Screen
}

// NewScreen opens the status screen.
func NewScreen(cfg display.Config) (*Screen, error) {
	s, err := display.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Screen{s: s}, nil
}

func (sc *Screen) Idle()                 { sc.s.Show(display.Attract()) }
func (sc *Screen) Ready()                { sc.s.Show(display.Ready()) }
func (sc *Screen) Processing(msg string) { sc.s.Show(display.Processing(msg)) }
func (sc *Screen) ConnectionLost()       { sc.s.Show(display.ConnectionLost()) }
func (sc *Screen) Shutdown()             { sc.s.Show(display.Blank()) }
func (sc *Screen) Release() error        { return sc.s.Release() }

// Success implements Indicator.Success.
func (sc *Screen) Success(s *Status) {
	title, detail := s.text()
	if title == "" {
		title = "Success"
	}
	sc.s.Show(display.Success(title, detail))
}

// Failure implements Indicator.Failure.
func (sc *Screen) Failure(s *Status) {
	title, detail := s.text()
	if title == "" {
		title = "Error"
	}
	sc.s.Show(display.Failure(title, detail))
}
