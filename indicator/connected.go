package indicator

// connectionAware is implemented by indicators whose resting state
// depends on broker connectivity.
type connectionAware interface {
	SetConnected(ok bool)
}

// SetConnected reports broker connectivity to every indicator in ind
// that cares about it.
func SetConnected(ind Indicator, ok bool) {
	switch v := ind.(type) {
	case *Multi:
		for _, sub := range v.indicators {
			SetConnected(sub, ok)
		}
	case connectionAware:
		v.SetConnected(ok)
	}
}
