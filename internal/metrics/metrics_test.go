package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, Register(reg))
	require.NoError(t, Register(reg))
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue metrics
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestObserveRoleChange(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, Register(reg))

	labels := map[string]string{"op": "assign", "result": "error"}
	before := counterValue(t, reg, "rolbazli_role_changes_total", labels)
	ObserveRoleChange("assign", errors.New("x"))
	ObserveRoleChange("assign", nil)
	assert.Equal(t, before+1, counterValue(t, reg, "rolbazli_role_changes_total", labels))
}
