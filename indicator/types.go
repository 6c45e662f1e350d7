package indicator

// Status is the message shown with an outcome. Indicators without a
// display ignore it.
type Status struct {
	Title  string
	Detail string
}

func (s *Status) text() (string, string) {
	if s == nil {
		return "", ""
	}
	return s.Title, s.Detail
}
