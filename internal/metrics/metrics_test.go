package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	require.NotPanics(t, func() {
		Init("v1.0.0", "abc123", "2026-01-30")
		Init("v1.0.0", "abc123", "2026-01-30")
	})
	require.Equal(t, 1.0, testutil.ToFloat64(AppInfo.WithLabelValues("v1.0.0", "abc123", "2026-01-30")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	EventMutations.WithLabelValues("create").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "planner_event_mutations_total")
}

type fakeStats struct{}

func (fakeStats) TotalConns() int32    { return 5 }
func (fakeStats) AcquiredConns() int32 { return 2 }
func (fakeStats) IdleConns() int32     { return 3 }
func (fakeStats) MaxConns() int32      { return 10 }

func TestDBCollector(t *testing.T) {
	collector := newDBCollector(func() PoolStats { return fakeStats{} })
	collector.collect()

	require.Equal(t, 5.0, testutil.ToFloat64(DBConnectionsOpen))
	require.Equal(t, 2.0, testutil.ToFloat64(DBConnectionsInUse))
	require.Equal(t, 3.0, testutil.ToFloat64(DBConnectionsIdle))
	require.Equal(t, 10.0, testutil.ToFloat64(DBConnectionsMax))
}

func TestDBCollector_StopsOnContext(t *testing.T) {
	collector := newDBCollector(func() PoolStats { return nil })
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		collector.Start(ctx, 10)
		close(done)
	}()
	cancel()
	<-done
}

func TestRecordPingError(t *testing.T) {
	before := testutil.ToFloat64(DBPingErrors.WithLabelValues("timeout"))
	RecordPingError(context.DeadlineExceeded)
	RecordPingError(nil)
	require.Equal(t, before+1, testutil.ToFloat64(DBPingErrors.WithLabelValues("timeout")))

	beforeErr := testutil.ToFloat64(DBPingErrors.WithLabelValues("error"))
	RecordPingError(errors.New("boom"))
	require.Equal(t, beforeErr+1, testutil.ToFloat64(DBPingErrors.WithLabelValues("error")))
}
