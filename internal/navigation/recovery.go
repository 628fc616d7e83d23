package navigation

import (
	"github.com/YusufSemihCan/Charon-LCBot/internal/logging"
)

func isSystem(s State) bool {
	return s == Unknown || s == Connecting || s == Disconnected
}

func known(s State) bool { return !isSystem(s) }

func atHub(s State) bool { return s == Hub }

// recover gets the client from a loading, disconnected or unrecognized screen
// onto one that satisfies done. Each round: done ends the loop; otherwise
// click retry-connection, else enter-game, else press Escape for a stray
// popup, then wait and resolve again.
func (n *Navigator) recover(target State, done func(State) bool) (bool, error) {
	for attempt := 1; attempt <= n.opts.RecoveryRetries; attempt++ {
		if err := n.actuator.CheckFailSafe(); err != nil {
			return false, err
		}
		if done(n.current) {
			logging.Info("[RECOVER] reached %s", n.current)
			return true, nil
		}
		logging.Info("[RECOVER] attempt %d/%d from %s (target %s)", attempt, n.opts.RecoveryRetries, n.current, target)

		clicked, err := n.clicker.ClickTemplate(ButtonRetryConnection)
		if err != nil {
			return false, err
		}
		if clicked {
			logging.Info("[RECOVER] retrying connection")
		} else {
			clicked, err = n.clicker.ClickTemplate(ButtonEnterGame)
			if err != nil {
				return false, err
			}
			if clicked {
				logging.Info("[RECOVER] entering game")
			}
		}

		if clicked {
			n.opts.Sleep(n.opts.ReconnectDelay)
		} else if n.current != Connecting {
			if err := n.clicker.Dismiss(); err != nil {
				return false, err
			}
		}

		n.opts.Sleep(n.opts.RecoveryDelay)
		if _, err := n.SynchronizeState(); err != nil {
			return false, err
		}
	}

	if done(n.current) {
		logging.Info("[RECOVER] reached %s", n.current)
		return true, nil
	}
	logging.Warn("[RECOVER] gave up after %d attempts at %s", n.opts.RecoveryRetries, n.current)
	return false, nil
}
