package metrics

import "persona-chat/internal/domain/chatturn"

// TurnObserver exports chat turn lifecycle events as prometheus series.
type TurnObserver struct{}

var _ chatturn.Observer = TurnObserver{}

func NewTurnObserver() TurnObserver {
	return TurnObserver{}
}

func (TurnObserver) Transition(from, to chatturn.State) {
	TurnTransitionsTotal.WithLabelValues(from.String(), to.String()).Inc()
}

func (TurnObserver) Finished(outcome chatturn.Outcome, model string, seconds float64) {
	if model == "" {
		model = "unresolved"
	}
	TurnsTotal.WithLabelValues(string(outcome), model).Inc()
	TurnDuration.WithLabelValues(string(outcome)).Observe(seconds)
}

func (TurnObserver) TitleDispatched(accepted bool) {
	if accepted {
		RecordTitleJob("queued")
		return
	}
	RecordTitleJob("dropped")
}
