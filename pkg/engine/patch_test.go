package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/mendloop/pkg/shipping"
)

func TestPatchID(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, PatchID("hazmat:battery"), PatchID("hazmat:battery"))
	})

	t.Run("ten hex characters", func(t *testing.T) {
		id := PatchID("unit:lb")
		assert.Len(t, id, 10)
		assert.Regexp(t, "^[0-9a-f]{10}$", id)
	})

	t.Run("category distinguishes seeds", func(t *testing.T) {
		assert.NotEqual(t, PatchID("item:battery"), PatchID("hazmat:battery"))
	})
}

func TestPatchMatches(t *testing.T) {
	patch := &Patch{Trigger: "battery"}

	assert.True(t, patch.Matches("Ship 2 kg battery box to US"))
	assert.True(t, patch.Matches("Ship 2 kg BATTERY box to US"))
	assert.True(t, patch.Matches("Ship 2 kg lithium battery box to US"))
	assert.False(t, patch.Matches("Ship 2 kg books box to US"))

	multi := &Patch{Trigger: "north korea"}
	assert.True(t, multi.Matches("Ship 1 kg books box to North Korea"))
	assert.False(t, multi.Matches("Ship 1 kg books box to korea"))
}

func TestOpsApply(t *testing.T) {
	cfg := shipping.NewBaseConfig()

	ops := []Op{
		AddUnitConversion{Unit: "lb", Factor: 0.453592},
		AddDestAlias{Phrase: "usa", Zone: "US"},
		AddItemAlias{Phrase: "battery", Item: "battery"},
		AddParcelAlias{Phrase: "tube", Parcel: "tube"},
		AddProhibitedItem{Item: "weapon"},
		AddHazmatItem{Item: "battery"},
		AddLiquidItem{Item: "perfume"},
		AddEmbargoDest{Dest: "iran"},
		SetParcelMaxKg{Parcel: "box", MaxKg: 20},
	}
	for _, op := range ops {
		op.Apply(cfg)
	}

	assert.Equal(t, 0.453592, cfg.UnitConversions["lb"])
	assert.Equal(t, "US", cfg.DestAliases["usa"])
	assert.Equal(t, "battery", cfg.ItemAliases["battery"])
	assert.Equal(t, "tube", cfg.ParcelAliases["tube"])
	assert.True(t, cfg.ProhibitedItems["weapon"])
	assert.True(t, cfg.HazmatItems["battery"])
	assert.True(t, cfg.LiquidItems["perfume"])
	assert.True(t, cfg.EmbargoDests["iran"])
	assert.Equal(t, 20.0, cfg.ParcelMaxKg["box"])
}

func TestPatchApplyIsAdditive(t *testing.T) {
	cfg := shipping.NewBaseConfig()
	before := len(cfg.ItemAliases)

	patch := &Patch{
		Trigger: "battery",
		Ops: []Op{
			AddHazmatItem{Item: "battery"},
			AddItemAlias{Phrase: "battery", Item: "battery"},
		},
	}
	patch.Apply(cfg)

	assert.Len(t, cfg.ItemAliases, before+1)
	require.True(t, cfg.HazmatItems["battery"])
	// Existing tables untouched.
	assert.Equal(t, "books", cfg.ItemAliases["books"])
}

func TestPatchSummary(t *testing.T) {
	patch := &Patch{
		Ops: []Op{
			AddHazmatItem{Item: "battery"},
			AddItemAlias{Phrase: "battery", Item: "battery"},
		},
	}
	assert.Equal(t, "hazmat=battery, item=battery", patch.Summary())

	empty := &Patch{}
	assert.Equal(t, "-", empty.Summary())
}
