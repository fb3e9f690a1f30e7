package swarmcanvas

import (
	"github.com/gdamore/tcell/v2"

	"github.com/picogrid/swarm-canvas/pkg/swarm"
)

type action int

const (
	actionNone action = iota
	actionQuit
	actionToggle
	actionReset
	actionFaster
	actionSlower
)

// speedStep matches the granularity of the speed control
const speedStep = 0.1

// keyAction maps terminal keys to engine controls:
// space pauses, r respawns, +/- change speed, q or Esc quits
func keyAction(ev *tcell.EventKey) action {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return actionQuit
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			return actionQuit
		case ' ', 'p':
			return actionToggle
		case 'r', 'R':
			return actionReset
		case '+', '=':
			return actionFaster
		case '-', '_':
			return actionSlower
		}
	}
	return actionNone
}

// apply runs a control against the engine
func apply(e *swarm.Engine, a action) error {
	switch a {
	case actionToggle:
		if e.State() == swarm.Running {
			e.Stop()
			return nil
		}
		return e.Start()
	case actionReset:
		e.Reset()
		return e.Start()
	case actionFaster:
		return e.SetSpeedMultiplier(swarm.ClampSpeed(e.SpeedMultiplier() + speedStep))
	case actionSlower:
		return e.SetSpeedMultiplier(swarm.ClampSpeed(e.SpeedMultiplier() - speedStep))
	}
	return nil
}

// pollKeys forwards key actions until the screen is finalised
func pollKeys(screen tcell.Screen, out chan<- action, quit <-chan struct{}) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventKey:
			a := keyAction(ev)
			if a == actionNone {
				continue
			}
			select {
			case out <- a:
			case <-quit:
				return
			}
		}
	}
}
