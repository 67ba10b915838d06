package shipping

// SkillConfig holds every rule table the interpreter consults. The zero
// value is unusable; build one with NewBaseConfig or NewCarrierConfig and
// mutate clones only.
type SkillConfig struct {
	UnitConversions      map[string]float64
	DestAliases          map[string]string
	ItemAliases          map[string]string
	ParcelAliases        map[string]string
	BaseFee              float64
	PerKgRate            map[string]float64
	ProhibitedItems      map[string]bool
	HazmatItems          map[string]bool
	LiquidItems          map[string]bool
	EmbargoDests         map[string]bool
	ParcelMaxKg          map[string]float64
	LiquidAllowedParcels map[string]bool
}

// Clone returns a deep copy. Patches are applied to clones so the pristine
// base configuration survives the whole run.
func (c *SkillConfig) Clone() *SkillConfig {
	return &SkillConfig{
		UnitConversions:      cloneMap(c.UnitConversions),
		DestAliases:          cloneMap(c.DestAliases),
		ItemAliases:          cloneMap(c.ItemAliases),
		ParcelAliases:        cloneMap(c.ParcelAliases),
		BaseFee:              c.BaseFee,
		PerKgRate:            cloneMap(c.PerKgRate),
		ProhibitedItems:      cloneMap(c.ProhibitedItems),
		HazmatItems:          cloneMap(c.HazmatItems),
		LiquidItems:          cloneMap(c.LiquidItems),
		EmbargoDests:         cloneMap(c.EmbargoDests),
		ParcelMaxKg:          cloneMap(c.ParcelMaxKg),
		LiquidAllowedParcels: cloneMap(c.LiquidAllowedParcels),
	}
}

func cloneMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

var baseUnitConversions = map[string]float64{
	"kg":        1.0,
	"kilogram":  1.0,
	"kilograms": 1.0,
	"kgs":       1.0,
}

var carrierUnitConversions = map[string]float64{
	"kg":        1.0,
	"kilogram":  1.0,
	"kilograms": 1.0,
	"kgs":       1.0,
	"lb":        0.453592,
	"lbs":       0.453592,
	"pound":     0.453592,
	"pounds":    0.453592,
	"oz":        0.0283495,
	"ounce":     0.0283495,
	"ounces":    0.0283495,
}

var baseDestAliases = map[string]string{
	"us":          "US",
	"eu":          "EU",
	"apac":        "APAC",
	"north korea": "APAC",
	"iran":        "APAC",
	"syria":       "EU",
}

var carrierDestAliases = map[string]string{
	"us":                       "US",
	"eu":                       "EU",
	"apac":                     "APAC",
	"north korea":              "APAC",
	"iran":                     "APAC",
	"syria":                    "EU",
	"usa":                      "US",
	"united states":            "US",
	"united states of america": "US",
	"uk":                       "EU",
	"united kingdom":           "EU",
	"britain":                  "EU",
	"england":                  "EU",
	"europe":                   "EU",
	"european union":           "EU",
	"asia":                     "APAC",
	"japan":                    "APAC",
	"jp":                       "APAC",
	"australia":                "APAC",
	"aus":                      "APAC",
	"canada":                   "US",
}

var baseItemAliases = map[string]string{
	"books":       "books",
	"book":        "books",
	"clothes":     "clothes",
	"toys":        "toys",
	"electronics": "electronics",
	"laptop":      "electronics",
}

var carrierItemAliases = map[string]string{
	"books":           "books",
	"book":            "books",
	"clothes":         "clothes",
	"toys":            "toys",
	"electronics":     "electronics",
	"laptop":          "electronics",
	"battery":         "battery",
	"lithium battery": "battery",
	"paint":           "paint",
	"acid":            "acid",
	"perfume":         "perfume",
	"alcohol":         "alcohol",
	"knife":           "knife",
	"weapon":          "weapon",
	"fireworks":       "fireworks",
}

var baseParcelAliases = map[string]string{
	"box":      "box",
	"letter":   "letter",
	"envelope": "letter",
}

var carrierParcelAliases = map[string]string{
	"box":      "box",
	"letter":   "letter",
	"envelope": "letter",
	"tube":     "tube",
	"crate":    "crate",
	"pallet":   "pallet",
}

var carrierProhibitedItems = map[string]bool{
	"fireworks": true,
	"weapon":    true,
	"knife":     true,
}

var carrierHazmatItems = map[string]bool{
	"battery": true,
	"paint":   true,
	"acid":    true,
}

var carrierLiquidItems = map[string]bool{
	"perfume": true,
	"alcohol": true,
}

var carrierEmbargoDests = map[string]bool{
	"north korea": true,
	"iran":        true,
	"syria":       true,
}

// The base caps deliberately disagree with the carrier's: the skill starts
// out believing boxes take 30 kg while the carrier caps them at 20.
var baseParcelMaxKg = map[string]float64{
	"box":    30.0,
	"letter": 1.0,
}

var carrierParcelMaxKg = map[string]float64{
	"box":    20.0,
	"letter": 0.5,
	"tube":   5.0,
	"crate":  50.0,
	"pallet": 500.0,
}

var liquidAllowedParcels = map[string]bool{
	"crate":  true,
	"pallet": true,
}

var perKgRate = map[string]float64{
	"US":   6.0,
	"EU":   7.5,
	"APAC": 9.0,
}

// NewBaseConfig returns the impoverished starting configuration: metric
// units only, a short alias list, and almost no policy knowledge.
func NewBaseConfig() *SkillConfig {
	return &SkillConfig{
		UnitConversions: cloneMap(baseUnitConversions),
		DestAliases:     cloneMap(baseDestAliases),
		ItemAliases:     cloneMap(baseItemAliases),
		ParcelAliases:   cloneMap(baseParcelAliases),
		BaseFee:         5.0,
		PerKgRate:       cloneMap(perKgRate),
		ProhibitedItems: map[string]bool{"fireworks": true},
		HazmatItems:     map[string]bool{},
		LiquidItems:     map[string]bool{},
		EmbargoDests:    map[string]bool{},
		ParcelMaxKg:     cloneMap(baseParcelMaxKg),
		LiquidAllowedParcels: map[string]bool{
			"crate":  true,
			"pallet": true,
		},
	}
}

// NewCarrierConfig returns the carrier's complete configuration.
func NewCarrierConfig() *SkillConfig {
	return &SkillConfig{
		UnitConversions:      cloneMap(carrierUnitConversions),
		DestAliases:          cloneMap(carrierDestAliases),
		ItemAliases:          cloneMap(carrierItemAliases),
		ParcelAliases:        cloneMap(carrierParcelAliases),
		BaseFee:              5.0,
		PerKgRate:            cloneMap(perKgRate),
		ProhibitedItems:      cloneMap(carrierProhibitedItems),
		HazmatItems:          cloneMap(carrierHazmatItems),
		LiquidItems:          cloneMap(carrierLiquidItems),
		EmbargoDests:         cloneMap(carrierEmbargoDests),
		ParcelMaxKg:          cloneMap(carrierParcelMaxKg),
		LiquidAllowedParcels: cloneMap(liquidAllowedParcels),
	}
}
