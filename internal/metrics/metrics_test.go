package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"presaleLedger/internal/model"
)

func TestObserveOperation(t *testing.T) {
	m := New()
	m.ObserveOperation("buy", "ok")
	m.ObserveOperation("buy", "ok")
	m.ObserveOperation("buy", "not_live")
	m.ObserveTokens("buy", 25)
	m.ObserveTokens("buy", 0)

	require.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues("buy", "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("buy", "not_live")))
	require.Equal(t, 25.0, testutil.ToFloat64(m.tokenUnits.WithLabelValues("buy")))
}

func TestObservePool(t *testing.T) {
	m := New()
	m.ObservePool(model.Pool{TokenAmount: 90, QuoteAmount: 1500, TokenPrice: 150, Status: true, StakedAmount: 10, PayoutsOwed: 11})

	require.Equal(t, 90.0, testutil.ToFloat64(m.tokenAmount))
	require.Equal(t, 1500.0, testutil.ToFloat64(m.quoteAmount))
	require.Equal(t, 150.0, testutil.ToFloat64(m.tokenPrice))
	require.Equal(t, 1.0, testutil.ToFloat64(m.saleStatus))
	require.Equal(t, 11.0, testutil.ToFloat64(m.payoutsOwed))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveOperation("buy", "ok")
	m.ObserveTokens("buy", 1)
	m.ObservePool(model.Pool{})
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.ObserveOperation("claim", "ok")
	path := filepath.Join(t.TempDir(), "presale.prom")

	require.NoError(t, m.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), `presale_operations_total{op="claim",result="ok"} 1`))
}
