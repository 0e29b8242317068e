package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersRegisterAndCount(t *testing.T) {
	before := testutil.ToFloat64(ExtractionsTotal.WithLabelValues(OutcomeOK))
	ExtractionsTotal.WithLabelValues(OutcomeOK).Inc()
	after := testutil.ToFloat64(ExtractionsTotal.WithLabelValues(OutcomeOK))
	assert.Equal(t, before+1, after)
}

func TestSessionsActiveGauge(t *testing.T) {
	before := testutil.ToFloat64(SessionsActive)
	SessionsActive.Inc()
	SessionsActive.Dec()
	assert.Equal(t, before, testutil.ToFloat64(SessionsActive))
}
