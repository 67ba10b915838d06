package shipping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneIsDeep(t *testing.T) {
	base := NewBaseConfig()
	clone := base.Clone()

	clone.UnitConversions["lb"] = 0.453592
	clone.HazmatItems["battery"] = true
	clone.ParcelMaxKg["box"] = 20.0
	clone.DestAliases["usa"] = "US"

	_, ok := base.UnitConversions["lb"]
	assert.False(t, ok, "clone mutation leaked into the base unit table")
	assert.False(t, base.HazmatItems["battery"])
	assert.Equal(t, 30.0, base.ParcelMaxKg["box"])
	_, ok = base.DestAliases["usa"]
	assert.False(t, ok)
}

func TestBaseIsImpoverished(t *testing.T) {
	base := NewBaseConfig()
	carrier := NewCarrierConfig()

	// The base knows only metric units; the carrier knows imperial too.
	_, ok := base.UnitConversions["lb"]
	assert.False(t, ok)
	require.Contains(t, carrier.UnitConversions, "lb")
	assert.Equal(t, 0.453592, carrier.UnitConversions["lb"])

	// No policy knowledge beyond fireworks.
	assert.Empty(t, base.HazmatItems)
	assert.Empty(t, base.LiquidItems)
	assert.Empty(t, base.EmbargoDests)
	assert.True(t, base.ProhibitedItems["fireworks"])

	// The base overestimates both parcel caps it knows about.
	assert.Greater(t, base.ParcelMaxKg["box"], carrier.ParcelMaxKg["box"])
	assert.Greater(t, base.ParcelMaxKg["letter"], carrier.ParcelMaxKg["letter"])
}

func TestConfigConstructorsAreIndependent(t *testing.T) {
	a := NewBaseConfig()
	b := NewBaseConfig()

	a.ItemAliases["battery"] = "battery"
	_, ok := b.ItemAliases["battery"]
	assert.False(t, ok, "configs built from the seed must not share maps")
}
