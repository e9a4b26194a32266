// Package input polls SDL2 events and maps keys to viewer actions.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType classifies a processed event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventMouseWheel
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Repeat bool
	Width  int
	Height int
	Wheel  float32 // scroll steps, positive away from the user
}

// Action is something the viewer can be asked to do.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionRestart
	ActionTurnLeft
	ActionTurnRight
	ActionRetarget
	ActionPause
	ActionFaster
	ActionSlower
	ActionWireframe
)

var actionNames = [...]string{
	ActionNone:      "none",
	ActionQuit:      "quit",
	ActionRestart:   "restart",
	ActionTurnLeft:  "turn-left",
	ActionTurnRight: "turn-right",
	ActionRetarget:  "retarget",
	ActionPause:     "pause",
	ActionFaster:    "faster",
	ActionSlower:    "slower",
	ActionWireframe: "wireframe",
}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return "unknown"
	}
	return actionNames[a]
}

// DefaultBindings returns the standard key map. Turning keys auto-repeat;
// the others fire once per press.
func DefaultBindings() map[sdl.Scancode]Action {
	return map[sdl.Scancode]Action{
		sdl.SCANCODE_ESCAPE: ActionQuit,
		sdl.SCANCODE_R:      ActionRestart,
		sdl.SCANCODE_LEFT:   ActionTurnLeft,
		sdl.SCANCODE_RIGHT:  ActionTurnRight,
		sdl.SCANCODE_T:      ActionRetarget,
		sdl.SCANCODE_SPACE:  ActionPause,
		sdl.SCANCODE_UP:     ActionFaster,
		sdl.SCANCODE_DOWN:   ActionSlower,
		sdl.SCANCODE_F:      ActionWireframe,
	}
}

// Input handles all input processing.
type Input struct {
	bindings map[sdl.Scancode]Action
	events   []Event
	actions  []Action
	wheel    float32
}

// New creates an input handler with the given key map.
func New(bindings map[sdl.Scancode]Action) *Input {
	return &Input{
		bindings: bindings,
		events:   make([]Event, 0, 16),
		actions:  make([]Action, 0, 4),
	}
}

// Update polls SDL events for this frame. It returns true if the window was
// asked to close.
func (i *Input) Update() bool {
	i.events = i.events[:0]
	i.actions = i.actions[:0]
	i.wheel = 0
	quit := false

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.events = append(i.events, Event{Type: EventQuit})
			quit = true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				i.events = append(i.events, Event{
					Type:   EventWindowResize,
					Width:  int(e.Data1),
					Height: int(e.Data2),
				})
			}

		case *sdl.KeyboardEvent:
			ev := Event{Key: e.Keysym.Scancode, Repeat: e.Repeat != 0}
			if e.Type == sdl.KEYDOWN {
				ev.Type = EventKeyDown
				i.bind(ev)
			} else {
				ev.Type = EventKeyUp
			}
			i.events = append(i.events, ev)

		case *sdl.MouseWheelEvent:
			steps := float32(e.Y)
			if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
				steps = -steps
			}
			i.wheel += steps
			i.events = append(i.events, Event{Type: EventMouseWheel, Wheel: steps})
		}
	}
	return quit
}

func (i *Input) bind(ev Event) {
	a, ok := i.bindings[ev.Key]
	if !ok {
		return
	}
	if ev.Repeat && a != ActionTurnLeft && a != ActionTurnRight {
		return
	}
	i.actions = append(i.actions, a)
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// Actions returns the actions triggered during the last Update, in order.
func (i *Input) Actions() []Action {
	return i.actions
}

// Wheel returns the scroll steps accumulated during the last Update.
func (i *Input) Wheel() float32 {
	return i.wheel
}
