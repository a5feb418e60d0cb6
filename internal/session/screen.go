package session

import "fmt"

// Screen is the single active phase of a session.
type Screen int

const (
	Landing Screen = iota
	Input
	Payment
	Analyzing
	Result
)

var screenNames = [...]string{"landing", "input", "payment", "analyzing", "result"}

func (s Screen) String() string {
	if s < Landing || s > Result {
		return fmt.Sprintf("Screen(%d)", int(s))
	}
	return screenNames[s]
}

func (s Screen) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Screen) UnmarshalText(b []byte) error {
	for i, name := range screenNames {
		if name == string(b) {
			*s = Screen(i)
			return nil
		}
	}
	return fmt.Errorf("unknown screen %q", b)
}
