package featureflags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnabled_BooleanValues(t *testing.T) {
	m := NewManager("a=on,b=off,c=true,d=false,e=1,f=0")

	assert.True(t, m.Enabled("a", "alice"))
	assert.True(t, m.Enabled("c", "alice"))
	assert.True(t, m.Enabled("e", "alice"))
	assert.False(t, m.Enabled("b", "alice"))
	assert.False(t, m.Enabled("d", "alice"))
	assert.False(t, m.Enabled("f", "alice"))
}

func TestEnabled_PercentageValues(t *testing.T) {
	m := NewManager("always=100%,never=0%,canary=25%")

	assert.True(t, m.Enabled("always", "alice"))
	assert.False(t, m.Enabled("never", "alice"))

	first := m.Enabled("canary", "bob")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, m.Enabled("canary", "bob"),
			"rollout evaluation must be deterministic per identity")
	}

	assert.False(t, m.Enabled("canary", ""), "percentage rollout requires an identity")
}

func TestEnabled_UnknownAndNil(t *testing.T) {
	m := NewManager("x=on")
	assert.False(t, m.Enabled("nosuch", "alice"))

	var nilManager *Manager
	assert.False(t, nilManager.Enabled("x", "alice"))
}

func TestParseAndSnapshot(t *testing.T) {
	m := NewManager(" bad ,x=on, y = 20% ,z=off ")

	raw := m.Raw()
	assert.Len(t, raw, 3)
	assert.Equal(t, "on", raw["x"])
	assert.Equal(t, "20%", raw["y"])
	assert.Equal(t, "off", raw["z"])

	snap := m.Snapshot("carol")
	assert.Len(t, snap, 3)
	assert.True(t, snap["x"])
	assert.False(t, snap["z"])
}
