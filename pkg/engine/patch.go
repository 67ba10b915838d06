// Package engine implements the adaptive patch loop: it drives simulated
// shipping requests through the skill, compares the outcome against the
// carrier, and on a mismatch synthesizes a small corrective patch that must
// survive a regression gate before it is ever retrieved again.
package engine

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/XiaoConstantine/mendloop/pkg/embedding"
	"github.com/XiaoConstantine/mendloop/pkg/shipping"
)

// PatchStatus is a patch's lifecycle state.
type PatchStatus string

const (
	// StatusCandidate is a freshly synthesized patch that has not faced
	// the regression gate yet.
	StatusCandidate PatchStatus = "candidate"
	// StatusActive marks a patch that passed the gate and is retrievable.
	StatusActive PatchStatus = "active"
	// StatusQuarantined marks a patch that failed the gate. It is kept
	// for audit but never retrieved and never retried.
	StatusQuarantined PatchStatus = "quarantined"
)

// PatchTest is one synthesized regression case: a request and the label it
// must produce once the patch is applied.
type PatchTest struct {
	Request string
	Label   string
}

// Op is a single typed correction applied to a skill configuration. Every
// payload a patch can carry is its own Op type, so application is a uniform
// dispatch and nothing is silently ignored.
type Op interface {
	Apply(cfg *shipping.SkillConfig)
	Describe() string
}

// AddUnitConversion teaches the skill a unit-to-kilogram factor.
type AddUnitConversion struct {
	Unit   string
	Factor float64
}

func (o AddUnitConversion) Apply(cfg *shipping.SkillConfig) {
	cfg.UnitConversions[o.Unit] = o.Factor
}

func (o AddUnitConversion) Describe() string {
	return "unit=" + o.Unit
}

// AddDestAlias teaches the skill a destination phrase and its zone.
type AddDestAlias struct {
	Phrase string
	Zone   string
}

func (o AddDestAlias) Apply(cfg *shipping.SkillConfig) {
	cfg.DestAliases[o.Phrase] = o.Zone
}

func (o AddDestAlias) Describe() string {
	return "dest=" + o.Phrase
}

// AddItemAlias teaches the skill an item phrase and its canonical item.
type AddItemAlias struct {
	Phrase string
	Item   string
}

func (o AddItemAlias) Apply(cfg *shipping.SkillConfig) {
	cfg.ItemAliases[o.Phrase] = o.Item
}

func (o AddItemAlias) Describe() string {
	return "item=" + o.Phrase
}

// AddParcelAlias teaches the skill a parcel phrase and its canonical parcel.
type AddParcelAlias struct {
	Phrase string
	Parcel string
}

func (o AddParcelAlias) Apply(cfg *shipping.SkillConfig) {
	cfg.ParcelAliases[o.Phrase] = o.Parcel
}

func (o AddParcelAlias) Describe() string {
	return "parcel=" + o.Phrase
}

// AddProhibitedItem marks an item as prohibited.
type AddProhibitedItem struct {
	Item string
}

func (o AddProhibitedItem) Apply(cfg *shipping.SkillConfig) {
	cfg.ProhibitedItems[o.Item] = true
}

func (o AddProhibitedItem) Describe() string {
	return "prohibited=" + o.Item
}

// AddHazmatItem marks an item as hazardous material.
type AddHazmatItem struct {
	Item string
}

func (o AddHazmatItem) Apply(cfg *shipping.SkillConfig) {
	cfg.HazmatItems[o.Item] = true
}

func (o AddHazmatItem) Describe() string {
	return "hazmat=" + o.Item
}

// AddLiquidItem marks an item as a liquid.
type AddLiquidItem struct {
	Item string
}

func (o AddLiquidItem) Apply(cfg *shipping.SkillConfig) {
	cfg.LiquidItems[o.Item] = true
}

func (o AddLiquidItem) Describe() string {
	return "liquid=" + o.Item
}

// AddEmbargoDest marks a destination phrase as embargoed.
type AddEmbargoDest struct {
	Dest string
}

func (o AddEmbargoDest) Apply(cfg *shipping.SkillConfig) {
	cfg.EmbargoDests[o.Dest] = true
}

func (o AddEmbargoDest) Describe() string {
	return "embargo=" + o.Dest
}

// SetParcelMaxKg records a parcel's maximum allowed weight.
type SetParcelMaxKg struct {
	Parcel string
	MaxKg  float64
}

func (o SetParcelMaxKg) Apply(cfg *shipping.SkillConfig) {
	cfg.ParcelMaxKg[o.Parcel] = o.MaxKg
}

func (o SetParcelMaxKg) Describe() string {
	return fmt.Sprintf("parcel_max=%s:%v", o.Parcel, o.MaxKg)
}

// Patch is one learned correction: a trigger phrase, the operations that fix
// the diagnosed gap, and the self-tests that pin the fix in place.
type Patch struct {
	ID      string
	Trigger string
	Ops     []Op
	Tests   []PatchTest
	Status  PatchStatus

	// TriggerEmbedding is computed once at synthesis; retrieval scores
	// against it rather than re-embedding.
	TriggerEmbedding embedding.Vector

	// Provenance: the request whose failure produced this patch.
	SourceRequest string
	SourceTraceID string
	CreatedAt     time.Time
}

var foldCaser = cases.Fold()

// Matches reports whether the patch's trigger occurs in the request,
// case-insensitively under Unicode case folding.
func (p *Patch) Matches(request string) bool {
	return strings.Contains(foldCaser.String(request), foldCaser.String(p.Trigger))
}

// Apply merges every operation into the configuration.
func (p *Patch) Apply(cfg *shipping.SkillConfig) {
	for _, op := range p.Ops {
		op.Apply(cfg)
	}
}

// Summary renders the patch's payload as a short comma-separated list.
func (p *Patch) Summary() string {
	if len(p.Ops) == 0 {
		return "-"
	}
	parts := make([]string, len(p.Ops))
	for i, op := range p.Ops {
		parts[i] = op.Describe()
	}
	return strings.Join(parts, ", ")
}

// PatchID derives the stable identifier for a diagnosis seed. The seed is
// "<category>:<trigger>", so two diagnoses of the same underlying cause
// collapse to one identifier no matter which request surfaced them.
func PatchID(seed string) string {
	sum := sha1.Sum([]byte(seed))
	return hex.EncodeToString(sum[:])[:10]
}
