package debts

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExclusivePrice(t *testing.T) {
	require.InDelta(t, 100.0, ExclusivePrice(116), 1e-9)
	require.InDelta(t, 50.0, ExclusivePrice(58), 1e-9)
	require.Zero(t, ExclusivePrice(0))
}

func TestBreakdownFromTotal(t *testing.T) {
	b := BreakdownFromTotal(116)
	require.InDelta(t, 100.0, b.Base, 1e-9)
	require.InDelta(t, 16.0, b.Tax, 1e-9)
	require.InDelta(t, 116.0, b.Total, 1e-9)
	require.InDelta(t, b.Total, b.Base+b.Tax, 1e-9)

	odd := BreakdownFromTotal(37.5)
	require.InDelta(t, odd.Total, odd.Base+odd.Tax, 1e-9)
	require.InDelta(t, odd.Base*VATRate, odd.Tax, 1e-9)
}
