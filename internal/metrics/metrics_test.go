package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	// Register should be safe to call multiple times
	Register()
	Register()

	t.Run("ObserveHTTP", func(t *testing.T) {
		before := testutil.ToFloat64(httpRequests.WithLabelValues("server", "GET", "/users", "200"))
		ObserveHTTP("server", "GET", "/users", 200, 15*time.Millisecond)
		after := testutil.ToFloat64(httpRequests.WithLabelValues("server", "GET", "/users", "200"))
		assert.Equal(t, before+1, after)
	})

	t.Run("DomainEvents", func(t *testing.T) {
		before := testutil.ToFloat64(domainEvents.WithLabelValues("booking_created"))
		IncDomainEvent("booking_created")
		assert.Equal(t, before+1, testutil.ToFloat64(domainEvents.WithLabelValues("booking_created")))
	})

	t.Run("UpstreamUnreachable", func(t *testing.T) {
		before := testutil.ToFloat64(upstreamRequests.WithLabelValues("error"))
		IncUpstream(0)
		assert.Equal(t, before+1, testutil.ToFloat64(upstreamRequests.WithLabelValues("error")))
	})

	t.Run("RateLimited", func(t *testing.T) {
		before := testutil.ToFloat64(rateLimited)
		IncRateLimited()
		assert.Equal(t, before+1, testutil.ToFloat64(rateLimited))
	})
}
