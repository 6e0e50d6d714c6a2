// Package input turns raw frontend events into semantic game actions.
package input

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// ErrUnknownAction is returned for action names no frontend should send.
var ErrUnknownAction = errors.New("unknown action")

// Kind is the semantic meaning of an action
type Kind uint8

const (
	KindUnknown Kind = iota
	// KindClick is a primary pointer press at (X, Y) in canvas coordinates.
	KindClick
	KindPause
	KindResume
	KindTogglePause
	KindToggleDebug
	KindCheat
)

// kindNames maps wire names and their aliases to kinds
var kindNames = map[string]Kind{
	"click": KindClick,
	"tap":   KindClick,

	"pause": KindPause,
	"blur":  KindPause,

	"resume": KindResume,
	"focus":  KindResume,

	"toggle_pause": KindTogglePause,
	"toggle_debug": KindToggleDebug,
	"debug":        KindToggleDebug,

	"cheat": KindCheat,
}

func (k Kind) String() string {
	switch k {
	case KindClick:
		return "click"
	case KindPause:
		return "pause"
	case KindResume:
		return "resume"
	case KindTogglePause:
		return "toggle_pause"
	case KindToggleDebug:
		return "toggle_debug"
	case KindCheat:
		return "cheat"
	default:
		return "unknown"
	}
}

// ParseKind resolves a wire name, case-insensitively.
func ParseKind(name string) (Kind, error) {
	k, ok := kindNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return KindUnknown, fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
	return k, nil
}

// Action is one semantic input event
type Action struct {
	Kind       Kind
	X, Y       float64 // canvas coordinates, click only
	Source     string  // "desktop", "terminal", or the remote address for API input
	ReceivedAt time.Time
}

// Click builds a click action.
func Click(x, y float64, source string) Action {
	return Action{Kind: KindClick, X: x, Y: y, Source: source}
}

// Dispatcher applies actions to the game.
type Dispatcher interface {
	Dispatch(Action) error
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(Action) error

func (f DispatcherFunc) Dispatch(a Action) error { return f(a) }

// Send stamps a with source and the current time and hands it straight to d,
// for frontends that run on the game's own thread and need no Queue.
// A refused action is logged and its error returned.
func Send(d Dispatcher, a Action, source string) error {
	a.Source = source
	a.ReceivedAt = time.Now()
	if err := d.Dispatch(a); err != nil {
		log.Printf("⚠️ %s from %s refused: %v", a.Kind, source, err)
		return err
	}
	return nil
}
