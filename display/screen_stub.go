//go:build !screen

package display

// ScreenSupported returns whether screen support is compiled in.
func ScreenSupported() bool {
	return false
}

// Screen is a stub when screen support is not compiled in.
type Screen struct{}

// New returns an error when screen support is not compiled in.
func New(cfg Config) (*Screen, error) {
	return nil, ErrScreenNotCompiled
}

func (s *Screen) Show(sc Scene)  {}
func (s *Screen) Release() error { return nil }
