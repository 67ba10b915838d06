package shipping

// Carrier is the ground-truth oracle. It evaluates with the complete
// configuration at zero noise, so its verdict is what the skill would say if
// it knew everything the carrier knows.
type Carrier struct {
	cfg *SkillConfig
}

// NewCarrier builds the oracle over the complete carrier configuration.
func NewCarrier() *Carrier {
	return &Carrier{cfg: NewCarrierConfig()}
}

// Config exposes the carrier's complete rule tables. Diagnosis reads them to
// source the corrections the skill's own tables are missing.
func (c *Carrier) Config() *SkillConfig {
	return c.cfg
}

// Feedback returns the carrier's verdict on a request. Rejections carry the
// extracted artifact (item, destination, parcel, unit, weight cap) that
// triggered the rule, so a caller can learn the specific missing fact.
func (c *Carrier) Feedback(request string) Feedback {
	result, _, ectx := evaluate(request, c.cfg, 0, false)
	if result.OK() {
		return Feedback{OK: true, Quote: result.Quote}
	}
	if result.Error == nil {
		return Feedback{OK: false, ErrorCode: "unknown"}
	}

	fb := Feedback{OK: false, ErrorCode: result.Error.Code}
	switch result.Error.Code {
	case CodeProhibitedItem, CodeHazmatItem, CodeLiquidDisallowed, CodeItemUnknown:
		fb.Context.Item = ectx.item
	case CodeEmbargoDest, CodeDestUnknown:
		fb.Context.Dest = ectx.destPhrase
	case CodeParcelOverweight:
		fb.Context.Parcel = ectx.parcel
		if maxKg, ok := c.cfg.ParcelMaxKg[ectx.parcel]; ok {
			fb.Context.MaxKg = &maxKg
		}
	case CodeParcelUnknown:
		fb.Context.Parcel = ectx.parcel
	case CodeUnitUnknown:
		fb.Context.Unit = ectx.unit
	}
	return fb
}
