package shipping

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	weightUnitRe = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*([a-zA-Z]+)`)
	wordRe       = regexp.MustCompile(`[a-zA-Z0-9]+`)
)

// Noise rule names. Each detection or policy check in the pipeline has its
// own rule so a noisy evaluation skips steps independently.
const (
	noiseDropUnit         = "drop_unit"
	noiseDropDest         = "drop_dest"
	noiseDropItem         = "drop_item"
	noiseDropParcel       = "drop_parcel"
	noiseIgnoreEmbargo    = "ignore_embargo"
	noiseIgnoreProhibited = "ignore_prohibited"
	noiseIgnoreHazmat     = "ignore_hazmat"
	noiseIgnoreLiquid     = "ignore_liquid"
)

// evalContext collects what the pipeline extracted before it stopped. The
// carrier uses it to tell a correction engine exactly which value tripped a
// rejection.
type evalContext struct {
	weight     *float64
	unit       string
	weightKg   float64
	destPhrase string
	zone       string
	item       string
	parcel     string
}

// ExtractWeight pulls the first number-plus-unit pair out of a request.
// Returns ok=false when no pair is present. Decimal commas are accepted.
func ExtractWeight(request string) (value float64, unit string, ok bool) {
	m := weightUnitRe.FindStringSubmatch(request)
	if m == nil {
		return 0, "", false
	}
	raw := strings.ReplaceAll(m[1], ",", ".")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, "", false
	}
	return v, strings.ToLower(m[2]), true
}

// Tokenize splits text into lower-cased maximal alphanumeric runs.
func Tokenize(text string) []string {
	tokens := wordRe.FindAllString(text, -1)
	for i, t := range tokens {
		tokens[i] = strings.ToLower(t)
	}
	return tokens
}

// FindAliasPhrase scans the request for the longest alias phrase present in
// the table, up to maxLen tokens. Longer phrases win over shorter ones;
// among equal lengths the leftmost occurrence wins.
func FindAliasPhrase(request string, aliases map[string]string, maxLen int) (string, bool) {
	tokens := Tokenize(request)
	for n := maxLen; n >= 1; n-- {
		for i := 0; i+n <= len(tokens); i++ {
			phrase := strings.Join(tokens[i:i+n], " ")
			if _, ok := aliases[phrase]; ok {
				return phrase, true
			}
		}
	}
	return "", false
}

// FindDestination locates the longest known destination phrase in a request.
func FindDestination(request string, aliases map[string]string) (string, bool) {
	return FindAliasPhrase(request, aliases, 3)
}

// FindItem locates the longest known item phrase in a request.
func FindItem(request string, aliases map[string]string) (string, bool) {
	return FindAliasPhrase(request, aliases, 3)
}

// FindParcel locates the longest known parcel phrase in a request.
func FindParcel(request string, aliases map[string]string) (string, bool) {
	return FindAliasPhrase(request, aliases, 2)
}

// noiseFlip decides whether a rule misfires for this request. The draw is a
// hash of rule+request, so a given request always misfires the same rules at
// a given rate; reruns are reproducible.
func noiseFlip(request, rule string, rate float64) bool {
	if rate <= 0 {
		return false
	}
	sum := sha1.Sum([]byte(rule + ":" + request))
	v, _ := strconv.ParseUint(hex.EncodeToString(sum[:])[:8], 16, 64)
	return float64(v)/float64(0xFFFFFFFF) < rate
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// Evaluate interprets one request against a configuration. The noise rate
// makes individual detection steps and restriction checks misfire
// deterministically per request; pass 0 for a faithful reading.
func Evaluate(request string, cfg *SkillConfig, noise float64) Result {
	result, _, _ := evaluate(request, cfg, noise, false)
	return result
}

// EvaluateTrace is Evaluate plus the step-by-step trace of what the
// interpreter saw and decided.
func EvaluateTrace(request string, cfg *SkillConfig, noise float64) (Result, []string) {
	result, steps, _ := evaluate(request, cfg, noise, true)
	return result, steps
}

func evaluate(request string, cfg *SkillConfig, noise float64, trace bool) (Result, []string, evalContext) {
	var steps []string
	var ectx evalContext
	step := func(format string, args ...interface{}) {
		if trace {
			steps = append(steps, fmt.Sprintf(format, args...))
		}
	}

	weight, unit, found := ExtractWeight(request)
	if found {
		ectx.weight = &weight
		ectx.unit = unit
		step("extract weight/unit -> %v %s", weight, unit)
	} else {
		step("extract weight/unit -> none")
	}

	if noiseFlip(request, noiseDropUnit, noise) {
		step("noise: drop unit")
		found = false
	}
	if !found {
		step("error: no_weight")
		return errResult(CodeNoWeight, "No weight/unit detected"), steps, ectx
	}

	factor, ok := cfg.UnitConversions[unit]
	if !ok {
		step("error: unit_unknown (%s)", unit)
		return errResult(CodeUnitUnknown, unit), steps, ectx
	}
	weightKg := weight * factor
	ectx.weightKg = weightKg
	step("unit conversion -> %v", factor)

	destPhrase, destOK := FindDestination(request, cfg.DestAliases)
	if noiseFlip(request, noiseDropDest, noise) {
		step("noise: drop dest")
		destOK = false
	}
	step("find destination -> %s", orNone(destPhrase, destOK))
	if !destOK {
		step("error: dest_unknown")
		return errResult(CodeDestUnknown, "unknown"), steps, ectx
	}
	zone := cfg.DestAliases[destPhrase]
	ectx.destPhrase = destPhrase
	ectx.zone = zone

	itemPhrase, itemOK := FindItem(request, cfg.ItemAliases)
	if noiseFlip(request, noiseDropItem, noise) {
		step("noise: drop item")
		itemOK = false
	}
	step("find item -> %s", orNone(itemPhrase, itemOK))
	if !itemOK {
		step("error: item_unknown")
		return errResult(CodeItemUnknown, "unknown"), steps, ectx
	}
	item := cfg.ItemAliases[itemPhrase]
	ectx.item = item

	parcelPhrase, parcelOK := FindParcel(request, cfg.ParcelAliases)
	if noiseFlip(request, noiseDropParcel, noise) {
		step("noise: drop parcel")
		parcelOK = false
	}
	step("find parcel -> %s", orNone(parcelPhrase, parcelOK))
	if !parcelOK {
		step("error: parcel_unknown")
		return errResult(CodeParcelUnknown, "unknown"), steps, ectx
	}
	parcel := cfg.ParcelAliases[parcelPhrase]
	ectx.parcel = parcel

	if noiseFlip(request, noiseIgnoreEmbargo, noise) {
		step("noise: ignore embargo")
	} else if cfg.EmbargoDests[destPhrase] {
		step("error: embargo_dest (%s)", destPhrase)
		return errResult(CodeEmbargoDest, destPhrase), steps, ectx
	}

	if noiseFlip(request, noiseIgnoreProhibited, noise) {
		step("noise: ignore prohibited")
	} else if cfg.ProhibitedItems[item] {
		step("error: prohibited_item (%s)", item)
		return errResult(CodeProhibitedItem, item), steps, ectx
	}

	if noiseFlip(request, noiseIgnoreHazmat, noise) {
		step("noise: ignore hazmat")
	} else if cfg.HazmatItems[item] {
		step("error: hazmat_item (%s)", item)
		return errResult(CodeHazmatItem, item), steps, ectx
	}

	if noiseFlip(request, noiseIgnoreLiquid, noise) {
		step("noise: ignore liquid rule")
	} else if cfg.LiquidItems[item] && !cfg.LiquidAllowedParcels[parcel] {
		step("error: liquid_disallowed (%s)", item)
		return errResult(CodeLiquidDisallowed, item), steps, ectx
	}

	if maxKg, capped := cfg.ParcelMaxKg[parcel]; capped && weightKg > maxKg {
		step("error: parcel_overweight (%s max=%v)", parcel, maxKg)
		return errResult(CodeParcelOverweight, parcel), steps, ectx
	}

	rate, ok := cfg.PerKgRate[zone]
	if !ok {
		step("error: zone_unknown (%s)", zone)
		return errResult(CodeZoneUnknown, zone), steps, ectx
	}

	cost := cfg.BaseFee + rate*weightKg
	step("zone -> %s", zone)
	step("weight_kg -> %v", round(weightKg, 3))
	step("cost -> %v", round(cost, 2))
	return Result{Quote: &Quote{
		WeightKg: round(weightKg, 3),
		Zone:     zone,
		Cost:     round(cost, 2),
	}}, steps, ectx
}

func errResult(code, detail string) Result {
	return Result{Error: &ParseError{Code: code, Detail: detail}}
}

func orNone(s string, ok bool) string {
	if !ok || s == "" {
		return "none"
	}
	return s
}
