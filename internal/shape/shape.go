package shape

import (
	"fmt"
	"strings"
)

// Mode selects which kind of body every instance is.
type Mode uint8

const (
	Box Mode = iota
	Sphere
)

func (m Mode) String() string {
	switch m {
	case Box:
		return "box"
	case Sphere:
		return "sphere"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// Next returns the mode a toggle switches to.
func (m Mode) Next() Mode {
	if m == Box {
		return Sphere
	}
	return Box
}

// ParseMode accepts "box" or "sphere" (case-insensitive).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "box":
		return Box, nil
	case "sphere":
		return Sphere, nil
	default:
		return 0, fmt.Errorf("unknown shape %q", s)
	}
}

// State is the single owned cell holding the active Mode. The toggle handler is its only writer;
// readers either poll Mode or subscribe to changes. Subscribers run synchronously inside Toggle,
// in subscription order.
type State struct {
	mode   Mode
	nextID int
	subs   []subscriber
}

type subscriber struct {
	id int
	fn func(Mode)
}

// NewState returns a state starting at initial.
func NewState(initial Mode) *State {
	return &State{mode: initial}
}

// Mode returns the active mode.
func (s *State) Mode() Mode {
	return s.mode
}

// Toggle flips the mode unconditionally, notifies subscribers and returns the new mode.
func (s *State) Toggle() Mode {
	s.mode = s.mode.Next()
	subs := append([]subscriber(nil), s.subs...)
	for _, sub := range subs {
		sub.fn(s.mode)
	}
	return s.mode
}

// Subscribe registers fn to be called after every Toggle. The returned func cancels the subscription.
func (s *State) Subscribe(fn func(Mode)) (cancel func()) {
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	return func() {
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}
