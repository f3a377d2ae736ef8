package chatturn

import (
	"fmt"
	"slices"
)

// State is a step of a single chat turn.
type State int

const (
	StateAuthenticating State = iota
	StateQuotaChecking
	StateValidating
	StateResolvingConversation
	StatePersistingUserMessage
	StateStreaming
	StatePersistingAssistantMessage
	StateTriggeringTitle
	StateDone
	StateFailed
)

var stateNames = map[State]string{
	StateAuthenticating:             "authenticating",
	StateQuotaChecking:              "quota_checking",
	StateValidating:                 "validating",
	StateResolvingConversation:      "resolving_conversation",
	StatePersistingUserMessage:      "persisting_user_message",
	StateStreaming:                  "streaming",
	StatePersistingAssistantMessage: "persisting_assistant_message",
	StateTriggeringTitle:            "triggering_title",
	StateDone:                       "done",
	StateFailed:                     "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// Any non-terminal state may also move to StateFailed. A failed assistant write still ends in Done:
// the user already has the streamed answer.
var transitions = map[State][]State{
	StateAuthenticating:             {StateQuotaChecking},
	StateQuotaChecking:              {StateValidating},
	StateValidating:                 {StateResolvingConversation},
	StateResolvingConversation:      {StatePersistingUserMessage},
	StatePersistingUserMessage:      {StateStreaming},
	StateStreaming:                  {StatePersistingAssistantMessage},
	StatePersistingAssistantMessage: {StateTriggeringTitle, StateDone},
	StateTriggeringTitle:            {StateDone},
}

// CanTransition reports whether from -> to is a legal step.
func CanTransition(from, to State) bool {
	if from.Terminal() {
		return false
	}
	if to == StateFailed {
		return true
	}
	return slices.Contains(transitions[from], to)
}

// Outcome labels how a turn ended.
type Outcome string

const (
	OutcomeCompleted     Outcome = "completed"
	OutcomeUnauthorized  Outcome = "unauthorized"
	OutcomeRateLimited   Outcome = "rate_limited"
	OutcomeUnavailable   Outcome = "unavailable"
	OutcomeInvalid       Outcome = "invalid"
	OutcomeNotFound      Outcome = "not_found"
	OutcomeStorageError  Outcome = "storage_error"
	OutcomeUpstreamError Outcome = "upstream_error"
	OutcomeAborted       Outcome = "aborted"
	OutcomePersistFailed Outcome = "persist_failed"
)

// Observer receives turn lifecycle events, typically for metrics.
type Observer interface {
	Transition(from, to State)
	Finished(outcome Outcome, model string, seconds float64)
	TitleDispatched(accepted bool)
}

type nopObserver struct{}

func (nopObserver) Transition(State, State)           {}
func (nopObserver) Finished(Outcome, string, float64) {}
func (nopObserver) TitleDispatched(bool)              {}
