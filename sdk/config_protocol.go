package sdk

import (
	"stuhfl_go/internal/protocol/stuhfl"
)

type Gen2ProtocolCfg struct {
	Tari   Tari
	BLF    Gen2LinkFrequency
	Coding Coding
	TRext  bool
}

func DefaultGen2ProtocolCfg() Gen2ProtocolCfg {
	return Gen2ProtocolCfg{Tari: Tari25_00, BLF: Gen2BLF256, Coding: CodingMiller8, TRext: true}
}

func (c Gen2ProtocolCfg) validate(op string) error {
	if c.Tari > Tari25_00 {
		return invalidArg(op, "Tari", "%d unknown", c.Tari)
	}
	if c.BLF > Gen2BLF640 {
		return invalidArg(op, "BLF", "%d unknown", c.BLF)
	}
	if c.Coding > CodingMiller8 {
		return invalidArg(op, "Coding", "%d unknown", c.Coding)
	}
	return nil
}

func (c Gen2ProtocolCfg) encode(w *stuhfl.Writer) {
	w.U8(stuhfl.FieldTari, uint8(c.Tari)).
		U8(stuhfl.FieldBLF, uint8(c.BLF)).
		U8(stuhfl.FieldCoding, uint8(c.Coding)).
		Bool(stuhfl.FieldTRext, c.TRext)
}

func decodeGen2ProtocolCfg(r stuhfl.Record) Gen2ProtocolCfg {
	return Gen2ProtocolCfg{
		Tari:   Tari(r.U8(stuhfl.FieldTari)),
		BLF:    Gen2LinkFrequency(r.U8(stuhfl.FieldBLF)),
		Coding: Coding(r.U8(stuhfl.FieldCoding)),
		TRext:  r.Bool(stuhfl.FieldTRext),
	}
}

type GbProtocolCfg struct {
	Tc     GbTc
	BLF    GbLinkFrequency
	Coding Coding
	TRext  bool
}

func DefaultGbProtocolCfg() GbProtocolCfg {
	return GbProtocolCfg{Tc: GbTc12_5, BLF: GbBLF320, Coding: CodingMiller2, TRext: true}
}

func (c GbProtocolCfg) validate(op string) error {
	if c.Tc > GbTc12_5 {
		return invalidArg(op, "Tc", "%d unknown", c.Tc)
	}
	if c.BLF > GbBLF640 {
		return invalidArg(op, "BLF", "%d unknown", c.BLF)
	}
	if c.Coding > CodingMiller8 {
		return invalidArg(op, "Coding", "%d unknown", c.Coding)
	}
	return nil
}

func (c GbProtocolCfg) encode(w *stuhfl.Writer) {
	w.U8(stuhfl.FieldTari, uint8(c.Tc)).
		U8(stuhfl.FieldBLF, uint8(c.BLF)).
		U8(stuhfl.FieldCoding, uint8(c.Coding)).
		Bool(stuhfl.FieldTRext, c.TRext)
}

func decodeGbProtocolCfg(r stuhfl.Record) GbProtocolCfg {
	return GbProtocolCfg{
		Tc:     GbTc(r.U8(stuhfl.FieldTari)),
		BLF:    GbLinkFrequency(r.U8(stuhfl.FieldBLF)),
		Coding: Coding(r.U8(stuhfl.FieldCoding)),
		TRext:  r.Bool(stuhfl.FieldTRext),
	}
}

type Iso6bProtocolCfg struct {
	BLF Iso6bLinkFrequency
}

func DefaultIso6bProtocolCfg() Iso6bProtocolCfg {
	return Iso6bProtocolCfg{BLF: Iso6bBLF40}
}

func (c Iso6bProtocolCfg) validate(op string) error {
	if c.BLF > Iso6bBLF160 {
		return invalidArg(op, "BLF", "%d unknown", c.BLF)
	}
	return nil
}

// AutoTuning retunes the antenna during inventory when reflected power drifts.
type AutoTuning struct {
	Interval               uint16
	Level                  uint8
	Algorithm              TuningAlgorithm
	FalsePositiveDetection bool
}

func DefaultAutoTuning() AutoTuning {
	return AutoTuning{Interval: 7, Level: 20, Algorithm: TuneFast, FalsePositiveDetection: true}
}

func (a AutoTuning) validate(op string) error {
	if !a.Algorithm.valid() {
		return invalidArg(op, "AutoTuning.Algorithm", "%d unknown", a.Algorithm)
	}
	return nil
}

func (a AutoTuning) encode(w *stuhfl.Writer) {
	w.U16(stuhfl.FieldTuneInterval, a.Interval).
		U8(stuhfl.FieldTuneLevel, a.Level).
		U8(stuhfl.FieldTuneAlgorithm, uint8(a.Algorithm)).
		Bool(stuhfl.FieldFalsePositive, a.FalsePositiveDetection)
}

func decodeAutoTuning(r stuhfl.Record) AutoTuning {
	return AutoTuning{
		Interval:               r.U16(stuhfl.FieldTuneInterval),
		Level:                  r.U8(stuhfl.FieldTuneLevel),
		Algorithm:              TuningAlgorithm(r.U8(stuhfl.FieldTuneAlgorithm)),
		FalsePositiveDetection: r.Bool(stuhfl.FieldFalsePositive),
	}
}

type AdaptiveSensitivity struct {
	Enabled bool
	Start   int8
	Min     int8
	Max     int8
}

func DefaultAdaptiveSensitivity() AdaptiveSensitivity {
	return AdaptiveSensitivity{Enabled: true, Start: 3, Min: -17, Max: 19}
}

func (a AdaptiveSensitivity) validate(op string) error {
	if a.Min < -17 || a.Max > 19 || a.Min > a.Max {
		return invalidArg(op, "AdaptiveSensitivity", "range %d..%d outside -17..19", a.Min, a.Max)
	}
	if a.Start < a.Min || a.Start > a.Max {
		return invalidArg(op, "AdaptiveSensitivity.Start", "%d outside %d..%d", a.Start, a.Min, a.Max)
	}
	return nil
}

func (a AdaptiveSensitivity) encode(w *stuhfl.Writer) {
	w.Bool(stuhfl.FieldAdaptiveRx, a.Enabled).
		I8(stuhfl.FieldRxStart, a.Start).
		I8(stuhfl.FieldRxMin, a.Min).
		I8(stuhfl.FieldRxMax, a.Max)
}

func decodeAdaptiveSensitivity(r stuhfl.Record) AdaptiveSensitivity {
	return AdaptiveSensitivity{
		Enabled: r.Bool(stuhfl.FieldAdaptiveRx),
		Start:   r.I8(stuhfl.FieldRxStart),
		Min:     r.I8(stuhfl.FieldRxMin),
		Max:     r.I8(stuhfl.FieldRxMax),
	}
}

// AdaptiveOutputPower bounds are output levels in dB, so Min is the
// strongest (0) and Max the weakest (-19).
type AdaptiveOutputPower struct {
	Enabled bool
	Start   int8
	Min     int8
	Max     int8
}

func DefaultAdaptiveOutputPower() AdaptiveOutputPower {
	return AdaptiveOutputPower{Enabled: false, Start: -2, Min: 0, Max: -19}
}

func (a AdaptiveOutputPower) validate(op string) error {
	if a.Min > 0 || a.Max < -19 || a.Max > a.Min {
		return invalidArg(op, "AdaptiveOutputPower", "range %d..%d outside 0..-19", a.Min, a.Max)
	}
	if a.Start > a.Min || a.Start < a.Max {
		return invalidArg(op, "AdaptiveOutputPower.Start", "%d outside %d..%d", a.Start, a.Min, a.Max)
	}
	return nil
}

func (a AdaptiveOutputPower) encode(w *stuhfl.Writer) {
	w.Bool(stuhfl.FieldAdaptiveTx, a.Enabled).
		I8(stuhfl.FieldTxStart, a.Start).
		I8(stuhfl.FieldTxMin, a.Min).
		I8(stuhfl.FieldTxMax, a.Max)
}

func decodeAdaptiveOutputPower(r stuhfl.Record) AdaptiveOutputPower {
	return AdaptiveOutputPower{
		Enabled: r.Bool(stuhfl.FieldAdaptiveTx),
		Start:   r.I8(stuhfl.FieldTxStart),
		Min:     r.I8(stuhfl.FieldTxMin),
		Max:     r.I8(stuhfl.FieldTxMax),
	}
}

type Gen2InventoryOptions struct {
	Fast    bool
	AutoAck bool
	ReadTID bool
}

// Gen2AntiCollision drives the Q algorithm.
type Gen2AntiCollision struct {
	AdaptiveQ       bool
	StartQ          uint8
	MinQ            uint8
	MaxQ            uint8
	AdjustNIC       bool
	SingleAdjust    bool
	UseCeilFloor    bool
	ResetAfterRound bool
}

func DefaultGen2AntiCollision() Gen2AntiCollision {
	return Gen2AntiCollision{AdaptiveQ: true, StartQ: 6, MinQ: 2, MaxQ: 15}
}

func (a Gen2AntiCollision) validate(op string) error {
	if a.MaxQ > 15 {
		return invalidArg(op, "AntiCollision.MaxQ", "%d exceeds 15", a.MaxQ)
	}
	if a.MinQ > a.MaxQ {
		return invalidArg(op, "AntiCollision.MinQ", "%d above MaxQ %d", a.MinQ, a.MaxQ)
	}
	if a.StartQ < a.MinQ || a.StartQ > a.MaxQ {
		return invalidArg(op, "AntiCollision.StartQ", "%d outside %d..%d", a.StartQ, a.MinQ, a.MaxQ)
	}
	return nil
}

type Gen2Query struct {
	Sel                 QuerySel
	Session             Session
	Target              Target
	ToggleTarget        bool
	TargetDepletionMode bool
}

func DefaultGen2Query() Gen2Query {
	return Gen2Query{Sel: SelAll, Session: S0, Target: TargetA, ToggleTarget: true}
}

func (q Gen2Query) validate(op string) error {
	switch q.Sel {
	case SelAll, SelNotSL, SelSL:
	default:
		return invalidArg(op, "Query.Sel", "%d unknown", q.Sel)
	}
	if q.Session > S3 {
		return invalidArg(op, "Query.Session", "%d unknown", q.Session)
	}
	if q.Target > TargetB {
		return invalidArg(op, "Query.Target", "%d unknown", q.Target)
	}
	return nil
}

type Gen2InventoryCfg struct {
	Options             Gen2InventoryOptions
	AntiCollision       Gen2AntiCollision
	AutoTuning          AutoTuning
	Query               Gen2Query
	AdaptiveSensitivity AdaptiveSensitivity
	AdaptiveOutputPower AdaptiveOutputPower
}

func DefaultGen2InventoryCfg() Gen2InventoryCfg {
	return Gen2InventoryCfg{
		Options:             Gen2InventoryOptions{Fast: true},
		AntiCollision:       DefaultGen2AntiCollision(),
		AutoTuning:          DefaultAutoTuning(),
		Query:               DefaultGen2Query(),
		AdaptiveSensitivity: DefaultAdaptiveSensitivity(),
		AdaptiveOutputPower: DefaultAdaptiveOutputPower(),
	}
}

func (c Gen2InventoryCfg) validate(op string) error {
	checks := []func(string) error{
		c.AntiCollision.validate,
		c.AutoTuning.validate,
		c.Query.validate,
		c.AdaptiveSensitivity.validate,
		c.AdaptiveOutputPower.validate,
	}
	for _, check := range checks {
		if err := check(op); err != nil {
			return err
		}
	}
	return nil
}

func (c Gen2InventoryCfg) encode(w *stuhfl.Writer) {
	w.Bool(stuhfl.FieldFast, c.Options.Fast).
		Bool(stuhfl.FieldAutoAck, c.Options.AutoAck).
		Bool(stuhfl.FieldReadTID, c.Options.ReadTID).
		Bool(stuhfl.FieldAdaptiveQ, c.AntiCollision.AdaptiveQ).
		U8(stuhfl.FieldStartQ, c.AntiCollision.StartQ).
		U8(stuhfl.FieldMinQ, c.AntiCollision.MinQ).
		U8(stuhfl.FieldMaxQ, c.AntiCollision.MaxQ).
		Bool(stuhfl.FieldAdjustNIC, c.AntiCollision.AdjustNIC).
		Bool(stuhfl.FieldSingleAdjust, c.AntiCollision.SingleAdjust).
		Bool(stuhfl.FieldUseCeilFloor, c.AntiCollision.UseCeilFloor).
		Bool(stuhfl.FieldResetAfterRound, c.AntiCollision.ResetAfterRound).
		U8(stuhfl.FieldSel, uint8(c.Query.Sel)).
		U8(stuhfl.FieldSession, uint8(c.Query.Session)).
		U8(stuhfl.FieldTarget, uint8(c.Query.Target)).
		Bool(stuhfl.FieldToggleTarget, c.Query.ToggleTarget).
		Bool(stuhfl.FieldDepletion, c.Query.TargetDepletionMode)
	c.AutoTuning.encode(w)
	c.AdaptiveSensitivity.encode(w)
	c.AdaptiveOutputPower.encode(w)
}

func decodeGen2InventoryCfg(r stuhfl.Record) Gen2InventoryCfg {
	return Gen2InventoryCfg{
		Options: Gen2InventoryOptions{
			Fast:    r.Bool(stuhfl.FieldFast),
			AutoAck: r.Bool(stuhfl.FieldAutoAck),
			ReadTID: r.Bool(stuhfl.FieldReadTID),
		},
		AntiCollision: Gen2AntiCollision{
			AdaptiveQ:       r.Bool(stuhfl.FieldAdaptiveQ),
			StartQ:          r.U8(stuhfl.FieldStartQ),
			MinQ:            r.U8(stuhfl.FieldMinQ),
			MaxQ:            r.U8(stuhfl.FieldMaxQ),
			AdjustNIC:       r.Bool(stuhfl.FieldAdjustNIC),
			SingleAdjust:    r.Bool(stuhfl.FieldSingleAdjust),
			UseCeilFloor:    r.Bool(stuhfl.FieldUseCeilFloor),
			ResetAfterRound: r.Bool(stuhfl.FieldResetAfterRound),
		},
		AutoTuning: decodeAutoTuning(r),
		Query: Gen2Query{
			Sel:                 QuerySel(r.U8(stuhfl.FieldSel)),
			Session:             Session(r.U8(stuhfl.FieldSession)),
			Target:              Target(r.U8(stuhfl.FieldTarget)),
			ToggleTarget:        r.Bool(stuhfl.FieldToggleTarget),
			TargetDepletionMode: r.Bool(stuhfl.FieldDepletion),
		},
		AdaptiveSensitivity: decodeAdaptiveSensitivity(r),
		AdaptiveOutputPower: decodeAdaptiveOutputPower(r),
	}
}

type GbAntiCollision struct {
	EndThreshold uint8
	CCNThreshold uint8
	CINThreshold uint8
}

type GbQuery struct {
	Condition           GbCondition
	Session             Session
	Target              uint8
	ToggleTarget        bool
	TargetDepletionMode bool
}

type GbInventoryCfg struct {
	AntiCollision       GbAntiCollision
	AutoTuning          AutoTuning
	Query               GbQuery
	AdaptiveSensitivity AdaptiveSensitivity
	AdaptiveOutputPower AdaptiveOutputPower
}

func DefaultGbInventoryCfg() GbInventoryCfg {
	return GbInventoryCfg{
		AntiCollision:       GbAntiCollision{EndThreshold: 2, CCNThreshold: 3, CINThreshold: 4},
		AutoTuning:          DefaultAutoTuning(),
		Query:               GbQuery{Condition: GbConditionAll, Session: S0, ToggleTarget: true},
		AdaptiveSensitivity: DefaultAdaptiveSensitivity(),
		AdaptiveOutputPower: DefaultAdaptiveOutputPower(),
	}
}

func (c GbInventoryCfg) validate(op string) error {
	if c.Query.Condition > GbConditionFlag1 {
		return invalidArg(op, "Query.Condition", "%d unknown", c.Query.Condition)
	}
	if c.Query.Session > S3 {
		return invalidArg(op, "Query.Session", "%d unknown", c.Query.Session)
	}
	if c.Query.Target > 1 {
		return invalidArg(op, "Query.Target", "%d out of range 0..1", c.Query.Target)
	}
	if err := c.AutoTuning.validate(op); err != nil {
		return err
	}
	if err := c.AdaptiveSensitivity.validate(op); err != nil {
		return err
	}
	return c.AdaptiveOutputPower.validate(op)
}

func (c GbInventoryCfg) encode(w *stuhfl.Writer) {
	w.U8(stuhfl.FieldEndThreshold, c.AntiCollision.EndThreshold).
		U8(stuhfl.FieldCCNThreshold, c.AntiCollision.CCNThreshold).
		U8(stuhfl.FieldCINThreshold, c.AntiCollision.CINThreshold).
		U8(stuhfl.FieldSel, uint8(c.Query.Condition)).
		U8(stuhfl.FieldSession, uint8(c.Query.Session)).
		U8(stuhfl.FieldTarget, c.Query.Target).
		Bool(stuhfl.FieldToggleTarget, c.Query.ToggleTarget).
		Bool(stuhfl.FieldDepletion, c.Query.TargetDepletionMode)
	c.AutoTuning.encode(w)
	c.AdaptiveSensitivity.encode(w)
	c.AdaptiveOutputPower.encode(w)
}

func decodeGbInventoryCfg(r stuhfl.Record) GbInventoryCfg {
	return GbInventoryCfg{
		AntiCollision: GbAntiCollision{
			EndThreshold: r.U8(stuhfl.FieldEndThreshold),
			CCNThreshold: r.U8(stuhfl.FieldCCNThreshold),
			CINThreshold: r.U8(stuhfl.FieldCINThreshold),
		},
		AutoTuning: decodeAutoTuning(r),
		Query: GbQuery{
			Condition:           GbCondition(r.U8(stuhfl.FieldSel)),
			Session:             Session(r.U8(stuhfl.FieldSession)),
			Target:              r.U8(stuhfl.FieldTarget),
			ToggleTarget:        r.Bool(stuhfl.FieldToggleTarget),
			TargetDepletionMode: r.Bool(stuhfl.FieldDepletion),
		},
		AdaptiveSensitivity: decodeAdaptiveSensitivity(r),
		AdaptiveOutputPower: decodeAdaptiveOutputPower(r),
	}
}

type Iso6bInventoryCfg struct {
	AutoTuning          AutoTuning
	AdaptiveSensitivity AdaptiveSensitivity
	AdaptiveOutputPower AdaptiveOutputPower
}

func DefaultIso6bInventoryCfg() Iso6bInventoryCfg {
	return Iso6bInventoryCfg{
		AutoTuning:          DefaultAutoTuning(),
		AdaptiveSensitivity: DefaultAdaptiveSensitivity(),
		AdaptiveOutputPower: DefaultAdaptiveOutputPower(),
	}
}

func (c Iso6bInventoryCfg) validate(op string) error {
	if err := c.AutoTuning.validate(op); err != nil {
		return err
	}
	if err := c.AdaptiveSensitivity.validate(op); err != nil {
		return err
	}
	return c.AdaptiveOutputPower.validate(op)
}

func (c Iso6bInventoryCfg) encode(w *stuhfl.Writer) {
	c.AutoTuning.encode(w)
	c.AdaptiveSensitivity.encode(w)
	c.AdaptiveOutputPower.encode(w)
}

func decodeIso6bInventoryCfg(r stuhfl.Record) Iso6bInventoryCfg {
	return Iso6bInventoryCfg{
		AutoTuning:          decodeAutoTuning(r),
		AdaptiveSensitivity: decodeAdaptiveSensitivity(r),
		AdaptiveOutputPower: decodeAdaptiveOutputPower(r),
	}
}
