package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"persona-chat/internal/domain/chatturn"
)

func TestTurnObserver(t *testing.T) {
	obs := NewTurnObserver()
	before := testutil.ToFloat64(TurnsTotal.WithLabelValues("rate_limited", "unresolved"))
	dropped := testutil.ToFloat64(TitleJobsTotal.WithLabelValues("dropped"))

	obs.Finished(chatturn.OutcomeRateLimited, "", 0.01)
	obs.TitleDispatched(false)
	obs.Transition(chatturn.StateAuthenticating, chatturn.StateQuotaChecking)

	assert.Equal(t, before+1, testutil.ToFloat64(TurnsTotal.WithLabelValues("rate_limited", "unresolved")))
	assert.Equal(t, dropped+1, testutil.ToFloat64(TitleJobsTotal.WithLabelValues("dropped")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(TurnTransitionsTotal.WithLabelValues(chatturn.StateAuthenticating.String(), chatturn.StateQuotaChecking.String())), 1.0)
}

func TestUserAgentFamily(t *testing.T) {
	tests := []struct {
		ua     string
		family string
	}{
		{"Mozilla/5.0 (X11; Linux x86_64)", "browser"},
		{"curl/8.4.0", "cli"},
		{"persona-cli/dev", "persona_cli"},
		{"Go-http-client/1.1", "sdk"},
		{"", "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.family+"/"+tt.ua, func(t *testing.T) {
			assert.Equal(t, tt.family, userAgentFamily(normalizeUserAgent(tt.ua)))
		})
	}
}
