package shipping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCarrierFeedbackAccept(t *testing.T) {
	carrier := NewCarrier()

	fb := carrier.Feedback("Ship 2 kg books box to US")
	require.True(t, fb.OK)
	require.NotNil(t, fb.Quote)
	assert.Equal(t, LabelOK, fb.Label())
	assert.Equal(t, "US", fb.Quote.Zone)
}

func TestCarrierFeedbackContext(t *testing.T) {
	carrier := NewCarrier()

	tests := []struct {
		name    string
		request string
		code    string
		check   func(t *testing.T, fb Feedback)
	}{
		{
			name:    "hazmat carries the item",
			request: "Ship 2 kg battery box to US",
			code:    CodeHazmatItem,
			check: func(t *testing.T, fb Feedback) {
				assert.Equal(t, "battery", fb.Context.Item)
			},
		},
		{
			name:    "prohibited carries the item",
			request: "Ship 2 kg weapon box to US",
			code:    CodeProhibitedItem,
			check: func(t *testing.T, fb Feedback) {
				assert.Equal(t, "weapon", fb.Context.Item)
			},
		},
		{
			name:    "liquid carries the item",
			request: "Ship 2 kg perfume box to US",
			code:    CodeLiquidDisallowed,
			check: func(t *testing.T, fb Feedback) {
				assert.Equal(t, "perfume", fb.Context.Item)
			},
		},
		{
			name:    "embargo carries the destination phrase",
			request: "Ship 1 kg books box to north korea",
			code:    CodeEmbargoDest,
			check: func(t *testing.T, fb Feedback) {
				assert.Equal(t, "north korea", fb.Context.Dest)
			},
		},
		{
			name:    "overweight carries parcel and cap",
			request: "Ship 25 kg books box to US",
			code:    CodeParcelOverweight,
			check: func(t *testing.T, fb Feedback) {
				assert.Equal(t, "box", fb.Context.Parcel)
				require.NotNil(t, fb.Context.MaxKg)
				assert.Equal(t, 20.0, *fb.Context.MaxKg)
			},
		},
		{
			name:    "unknown destination",
			request: "Ship 2 kg books box to atlantis",
			code:    CodeDestUnknown,
			check:   func(t *testing.T, fb Feedback) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := carrier.Feedback(tt.request)
			require.False(t, fb.OK)
			assert.Equal(t, tt.code, fb.ErrorCode)
			assert.Equal(t, tt.code, fb.Label())
			tt.check(t, fb)
		})
	}
}

func TestCarrierKnowsMoreThanBase(t *testing.T) {
	carrier := NewCarrier()

	// An imperial-unit request the base config cannot even parse.
	base := Evaluate("Ship 1 lb books box to US", NewBaseConfig(), 0)
	assert.Equal(t, CodeUnitUnknown, base.Label())

	fb := carrier.Feedback("Ship 1 lb books box to US")
	assert.True(t, fb.OK)
}
