package schedule

import (
	"fmt"

	"server/internal/domain"
)

// Action is a requested subscription-level status change.
type Action string

const (
	ActionPause  Action = "pause"
	ActionResume Action = "resume"
	ActionCancel Action = "cancel"
)

// ParseAction validates an action received from a client.
func ParseAction(s string) (Action, bool) {
	switch Action(s) {
	case ActionPause, ActionResume, ActionCancel:
		return Action(s), true
	}
	return "", false
}

// Transition applies an action to the current subscription status.
//
//	active  --pause-->  paused
//	paused  --resume--> active
//	active|paused --cancel--> cancelled (terminal)
//
// Every other pair fails with domain.ErrInvalidTransition and leaves the
// caller's state untouched.
func Transition(current domain.SubscriptionStatus, action Action) (domain.SubscriptionStatus, error) {
	switch action {
	case ActionPause:
		if current == domain.SubscriptionActive {
			return domain.SubscriptionPaused, nil
		}
	case ActionResume:
		if current == domain.SubscriptionPaused {
			return domain.SubscriptionActive, nil
		}
	case ActionCancel:
		if current == domain.SubscriptionActive || current == domain.SubscriptionPaused {
			return domain.SubscriptionCancelled, nil
		}
	}
	return current, fmt.Errorf("%w: cannot %s a %s subscription", domain.ErrInvalidTransition, action, current)
}
