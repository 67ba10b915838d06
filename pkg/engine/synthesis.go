package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/XiaoConstantine/mendloop/pkg/embedding"
	"github.com/XiaoConstantine/mendloop/pkg/errors"
	"github.com/XiaoConstantine/mendloop/pkg/shipping"
)

// diagnosis is the outcome of one strategy: the corrective operations and
// the identity seed ("<category>:<trigger>") they hang off.
type diagnosis struct {
	seed string
	ops  []Op
}

func (d diagnosis) trigger() string {
	_, trigger, _ := strings.Cut(d.seed, ":")
	return trigger
}

// skillDiagnoser corrects an under-informed skill: the carrier accepted the
// request but the skill rejected it with the given parse error.
type skillDiagnoser func(request string, perr *shipping.ParseError, carrierCfg *shipping.SkillConfig) (diagnosis, error)

// carrierDiagnoser corrects an over-permissive skill: the carrier rejected
// the request and its feedback context names the offending value.
type carrierDiagnoser func(request string, fb shipping.Feedback, carrierCfg *shipping.SkillConfig) (diagnosis, error)

// The two strategy registries. Diagnosing a new failure code is one entry
// here, not another branch in a conditional.
var (
	skillDiagnosers = map[string]skillDiagnoser{
		shipping.CodeUnitUnknown:   diagnoseUnknownUnit,
		shipping.CodeDestUnknown:   diagnoseUnknownDest,
		shipping.CodeItemUnknown:   diagnoseUnknownItem,
		shipping.CodeParcelUnknown: diagnoseUnknownParcel,
	}

	carrierDiagnosers = map[string]carrierDiagnoser{
		shipping.CodeProhibitedItem:   diagnoseRestrictedItem("prohibited", func(item string) Op { return AddProhibitedItem{Item: item} }),
		shipping.CodeHazmatItem:       diagnoseRestrictedItem("hazmat", func(item string) Op { return AddHazmatItem{Item: item} }),
		shipping.CodeLiquidDisallowed: diagnoseRestrictedItem("liquid", func(item string) Op { return AddLiquidItem{Item: item} }),
		shipping.CodeEmbargoDest:      diagnoseEmbargo,
		shipping.CodeParcelOverweight: diagnoseOverweight,
	}
)

// Synthesizer turns one diagnosed failure into one candidate patch with its
// self-test set.
type Synthesizer struct {
	embedder   *embedding.HashingEmbedder
	carrier    *shipping.Carrier
	carrierCfg *shipping.SkillConfig
}

// NewSynthesizer builds a synthesizer that sources corrections from the
// carrier's complete tables.
func NewSynthesizer(embedder *embedding.HashingEmbedder, carrier *shipping.Carrier) *Synthesizer {
	return &Synthesizer{
		embedder:   embedder,
		carrier:    carrier,
		carrierCfg: carrier.Config(),
	}
}

// Synthesize diagnoses the mismatch between the skill's result and the
// carrier's feedback and returns one minimal candidate patch. It fails with
// a NoStrategy error when no registered strategy covers the failure code,
// and MissingContext when the carrier feedback lacks the value a strategy
// needs.
func (s *Synthesizer) Synthesize(request string, predicted shipping.Result, fb shipping.Feedback) (*Patch, error) {
	var diag diagnosis
	var err error

	if fb.OK {
		// Carrier accepted; the skill's own failure tells us what it
		// does not know yet.
		if predicted.Error == nil {
			return nil, errors.New(errors.NoStrategy, "no failure to patch")
		}
		diagnose, ok := skillDiagnosers[predicted.Error.Code]
		if !ok {
			return nil, errors.WithFields(
				errors.New(errors.NoStrategy, "no patch strategy for skill failure"),
				errors.Fields{"code": predicted.Error.Code})
		}
		diag, err = diagnose(request, predicted.Error, s.carrierCfg)
	} else {
		diagnose, ok := carrierDiagnosers[fb.ErrorCode]
		if !ok {
			return nil, errors.WithFields(
				errors.New(errors.NoStrategy, "no patch strategy for carrier rejection"),
				errors.Fields{"code": fb.ErrorCode})
		}
		diag, err = diagnose(request, fb, s.carrierCfg)
	}
	if err != nil {
		return nil, err
	}
	if len(diag.ops) == 0 {
		return nil, errors.New(errors.NoStrategy, "diagnosis produced an empty payload")
	}

	trigger := diag.trigger()
	patch := &Patch{
		ID:               PatchID(diag.seed),
		Trigger:          trigger,
		Ops:              diag.ops,
		Status:           StatusCandidate,
		TriggerEmbedding: s.embedder.Embed(trigger),
		SourceRequest:    request,
		CreatedAt:        time.Now(),
	}
	patch.Tests = s.buildTests(request, patch.Ops)
	return patch, nil
}

func diagnoseUnknownUnit(request string, perr *shipping.ParseError, carrierCfg *shipping.SkillConfig) (diagnosis, error) {
	unit := perr.Detail
	factor, ok := carrierCfg.UnitConversions[unit]
	if !ok {
		return diagnosis{}, errors.WithFields(
			errors.New(errors.NoStrategy, "unit unknown to the carrier too"),
			errors.Fields{"unit": unit})
	}
	return diagnosis{
		seed: "unit:" + unit,
		ops:  []Op{AddUnitConversion{Unit: unit, Factor: factor}},
	}, nil
}

func diagnoseUnknownDest(request string, _ *shipping.ParseError, carrierCfg *shipping.SkillConfig) (diagnosis, error) {
	phrase, ok := shipping.FindDestination(request, carrierCfg.DestAliases)
	if !ok {
		return diagnosis{}, errors.New(errors.NoStrategy, "destination unknown to the carrier too")
	}
	return diagnosis{
		seed: "dest:" + phrase,
		ops:  []Op{AddDestAlias{Phrase: phrase, Zone: carrierCfg.DestAliases[phrase]}},
	}, nil
}

func diagnoseUnknownItem(request string, _ *shipping.ParseError, carrierCfg *shipping.SkillConfig) (diagnosis, error) {
	phrase, ok := shipping.FindItem(request, carrierCfg.ItemAliases)
	if !ok {
		return diagnosis{}, errors.New(errors.NoStrategy, "item unknown to the carrier too")
	}
	return diagnosis{
		seed: "item:" + phrase,
		ops:  []Op{AddItemAlias{Phrase: phrase, Item: carrierCfg.ItemAliases[phrase]}},
	}, nil
}

func diagnoseUnknownParcel(request string, _ *shipping.ParseError, carrierCfg *shipping.SkillConfig) (diagnosis, error) {
	phrase, ok := shipping.FindParcel(request, carrierCfg.ParcelAliases)
	if !ok {
		return diagnosis{}, errors.New(errors.NoStrategy, "parcel unknown to the carrier too")
	}
	return diagnosis{
		seed: "parcel:" + phrase,
		ops:  []Op{AddParcelAlias{Phrase: phrase, Parcel: carrierCfg.ParcelAliases[phrase]}},
	}, nil
}

// diagnoseRestrictedItem covers the three restricted-item codes. The item is
// also registered as an alias so the patched skill recognizes it and then
// restricts it, instead of rejecting it as unknown.
func diagnoseRestrictedItem(category string, restrict func(item string) Op) carrierDiagnoser {
	return func(_ string, fb shipping.Feedback, _ *shipping.SkillConfig) (diagnosis, error) {
		item := fb.Context.Item
		if item == "" {
			return diagnosis{}, errors.WithFields(
				errors.New(errors.MissingContext, "carrier feedback lacks the offending item"),
				errors.Fields{"code": fb.ErrorCode})
		}
		return diagnosis{
			seed: category + ":" + item,
			ops: []Op{
				restrict(item),
				AddItemAlias{Phrase: item, Item: item},
			},
		}, nil
	}
}

func diagnoseEmbargo(_ string, fb shipping.Feedback, carrierCfg *shipping.SkillConfig) (diagnosis, error) {
	dest := fb.Context.Dest
	if dest == "" {
		return diagnosis{}, errors.New(errors.MissingContext, "carrier feedback lacks the embargoed destination")
	}
	zone, ok := carrierCfg.DestAliases[dest]
	if !ok {
		zone = "APAC"
	}
	return diagnosis{
		seed: "embargo:" + dest,
		ops: []Op{
			AddEmbargoDest{Dest: dest},
			AddDestAlias{Phrase: dest, Zone: zone},
		},
	}, nil
}

func diagnoseOverweight(_ string, fb shipping.Feedback, _ *shipping.SkillConfig) (diagnosis, error) {
	parcel := fb.Context.Parcel
	if parcel == "" || fb.Context.MaxKg == nil {
		return diagnosis{}, errors.New(errors.MissingContext, "carrier feedback lacks the parcel weight cap")
	}
	return diagnosis{
		seed: "parcel_max:" + parcel,
		ops: []Op{
			AddParcelAlias{Phrase: parcel, Parcel: parcel},
			SetParcelMaxKg{Parcel: parcel, MaxKg: *fb.Context.MaxKg},
		},
	}, nil
}

// buildTests derives one self-test per payload kind the patch carries.
// These pin the fix: the gate replays them at activation and every later
// candidate must keep them green.
func (s *Synthesizer) buildTests(request string, ops []Op) []PatchTest {
	var tests []PatchTest

	// Restriction codes per item, so an item-alias test expects the
	// restricted label rather than "ok" when the same patch restricts it.
	restricted := make(map[string]string)
	parcelMax := make(map[string]float64)
	for _, op := range ops {
		switch o := op.(type) {
		case AddProhibitedItem:
			restricted[o.Item] = shipping.CodeProhibitedItem
		case AddHazmatItem:
			restricted[o.Item] = shipping.CodeHazmatItem
		case AddLiquidItem:
			restricted[o.Item] = shipping.CodeLiquidDisallowed
		case SetParcelMaxKg:
			parcelMax[o.Parcel] = o.MaxKg
		}
	}
	embargoed := make(map[string]bool)
	for _, op := range ops {
		if o, ok := op.(AddEmbargoDest); ok {
			embargoed[o.Dest] = true
		}
	}

	for _, op := range ops {
		switch o := op.(type) {
		case AddUnitConversion:
			tests = append(tests, PatchTest{
				Request: fmt.Sprintf("Ship 1 %s books box to US", o.Unit),
				Label:   shipping.LabelOK,
			})
		case AddDestAlias:
			label := shipping.LabelOK
			if embargoed[o.Phrase] {
				label = shipping.CodeEmbargoDest
			}
			tests = append(tests, PatchTest{
				Request: fmt.Sprintf("Ship 1 kg books box to %s", o.Phrase),
				Label:   label,
			})
		case AddItemAlias:
			label := shipping.LabelOK
			if code, ok := restricted[o.Phrase]; ok {
				label = code
			}
			tests = append(tests, PatchTest{
				Request: fmt.Sprintf("Ship 1 kg %s box to US", o.Phrase),
				Label:   label,
			})
		case AddProhibitedItem:
			tests = append(tests, PatchTest{
				Request: fmt.Sprintf("Ship 1 kg %s box to US", o.Item),
				Label:   shipping.CodeProhibitedItem,
			})
		case AddHazmatItem:
			tests = append(tests, PatchTest{
				Request: fmt.Sprintf("Ship 1 kg %s box to US", o.Item),
				Label:   shipping.CodeHazmatItem,
			})
		case AddLiquidItem:
			tests = append(tests, PatchTest{
				Request: fmt.Sprintf("Ship 1 kg %s box to US", o.Item),
				Label:   shipping.CodeLiquidDisallowed,
			})
		case AddEmbargoDest:
			tests = append(tests, PatchTest{
				Request: fmt.Sprintf("Ship 1 kg books box to %s", o.Dest),
				Label:   shipping.CodeEmbargoDest,
			})
		case AddParcelAlias:
			safe := 1.0
			if maxKg, ok := parcelMax[o.Phrase]; ok {
				safe = maxKg / 2
				if safe < 0.1 {
					safe = 0.1
				}
			}
			tests = append(tests, PatchTest{
				Request: fmt.Sprintf("Ship %s kg books %s to US", formatWeight(safe), o.Phrase),
				Label:   shipping.LabelOK,
			})
		case SetParcelMaxKg:
			tests = append(tests, PatchTest{
				Request: fmt.Sprintf("Ship %s kg books %s to US", formatWeight(o.MaxKg+1), o.Parcel),
				Label:   shipping.CodeParcelOverweight,
			})
		}
	}

	if len(tests) == 0 {
		// Should not happen given the non-empty payload invariant, but a
		// patch without tests must at least pin its originating failure.
		tests = append(tests, PatchTest{
			Request: request,
			Label:   s.carrier.Feedback(request).Label(),
		})
	}
	return tests
}

func formatWeight(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
