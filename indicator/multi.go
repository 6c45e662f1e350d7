package indicator

import "errors"

// Multi combines multiple Indicator implementations.
type Multi struct {
	indicators []Indicator
}

// Idle implements Indicator.Idle.
func (m *Multi) Idle() {
	for _, ind := range m.indicators {
		ind.Idle()
	}
}

// Ready implements Indicator.Ready.
func (m *Multi) Ready() {
	for _, ind := range m.indicators {
		ind.Ready()
	}
}

// Processing implements Indicator.Processing.
func (m *Multi) Processing(msg string) {
	for _, ind := range m.indicators {
		ind.Processing(msg)
	}
}

// Success implements Indicator.Success.
func (m *Multi) Success(s *Status) {
	for _, ind := range m.indicators {
		ind.Success(s)
	}
}

// Failure implements Indicator.Failure.
func (m *Multi) Failure(s *Status) {
	for _, ind := range m.indicators {
		ind.Failure(s)
	}
}

// ConnectionLost implements Indicator.ConnectionLost.
func (m *Multi) ConnectionLost() {
	for _, ind := range m.indicators {
		ind.ConnectionLost()
	}
}

// Shutdown implements Indicator.Shutdown.
func (m *Multi) Shutdown() {
	for _, ind := range m.indicators {
		ind.Shutdown()
	}
}

// Release implements Indicator.Release. Every indicator is released even
// if some fail.
func (m *Multi) Release() error {
	var errs []error
	for _, ind := range m.indicators {
		if err := ind.Release(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
