package indicator

// Noop implements Indicator but does nothing.
// Used when no indicators are configured.
type Noop struct{}

func (n *Noop) Idle()                 {}
func (n *Noop) Ready()                {}
func (n *Noop) Processing(msg string) {}
func (n *Noop) Success(s *Status)     {}
func (n *Noop) Failure(s *Status)     {}
func (n *Noop) ConnectionLost()       {}
func (n *Noop) Shutdown()             {}
func (n *Noop) Release() error        { return nil }
