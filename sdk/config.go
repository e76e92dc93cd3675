package sdk

import (
	"time"

	"stuhfl_go/internal/protocol/stuhfl"
)

const (
	MaxChannels         = 53
	DefaultFrequencyKHz = 865700
)

// AntennaPower switches the RF carrier on or off.
type AntennaPower struct {
	On        bool
	Timeout   time.Duration
	Frequency uint32
}

func DefaultAntennaPower() AntennaPower {
	return AntennaPower{On: false, Timeout: 0, Frequency: DefaultFrequencyKHz}
}

func (p AntennaPower) encode(w *stuhfl.Writer) {
	w.Bool(stuhfl.FieldOn, p.On).
		U16(stuhfl.FieldTimeout, uint16(p.Timeout/time.Millisecond)).
		U32(stuhfl.FieldFrequency, p.Frequency)
}

func decodeAntennaPower(r stuhfl.Record) AntennaPower {
	return AntennaPower{
		On:        r.Bool(stuhfl.FieldOn),
		Timeout:   time.Duration(r.U16(stuhfl.FieldTimeout)) * time.Millisecond,
		Frequency: r.U32(stuhfl.FieldFrequency),
	}
}

func (p AntennaPower) validate(op string) error {
	if p.Timeout < 0 || p.Timeout > 0xFFFF*time.Millisecond {
		return invalidArg(op, "Timeout", "%s out of range 0..65535ms", p.Timeout)
	}
	return nil
}

// TxRx holds output level, sensitivity and antenna selection.
type TxRx struct {
	TxOutputLevel            int8
	RxSensitivity            int8
	UsedAntenna              Antenna
	AlternateAntennaInterval uint16
}

func DefaultTxRx() TxRx {
	return TxRx{TxOutputLevel: -2, RxSensitivity: 3, UsedAntenna: Antenna1, AlternateAntennaInterval: 1}
}

func (t TxRx) validate(op string) error {
	if t.TxOutputLevel > 0 || t.TxOutputLevel < -19 {
		return invalidArg(op, "TxOutputLevel", "%d out of range -19..0", t.TxOutputLevel)
	}
	if t.RxSensitivity < -17 || t.RxSensitivity > 19 {
		return invalidArg(op, "RxSensitivity", "%d out of range -17..19", t.RxSensitivity)
	}
	if !t.UsedAntenna.valid() {
		return invalidArg(op, "UsedAntenna", "%d out of range 1..4", t.UsedAntenna)
	}
	return nil
}

func (t TxRx) encode(w *stuhfl.Writer) {
	w.I8(stuhfl.FieldTxOutputLevel, t.TxOutputLevel).
		I8(stuhfl.FieldRxSensitivity, t.RxSensitivity).
		U8(stuhfl.FieldAntenna, uint8(t.UsedAntenna)).
		U16(stuhfl.FieldAltAntInterval, t.AlternateAntennaInterval)
}

func decodeTxRx(r stuhfl.Record) TxRx {
	return TxRx{
		TxOutputLevel:            r.I8(stuhfl.FieldTxOutputLevel),
		RxSensitivity:            r.I8(stuhfl.FieldRxSensitivity),
		UsedAntenna:              Antenna(r.U8(stuhfl.FieldAntenna)),
		AlternateAntennaInterval: r.U16(stuhfl.FieldAltAntInterval),
	}
}

// Caps is one antenna-matching capacitor triple.
type Caps struct {
	Cin  uint8
	Clen uint8
	Cout uint8
}

func (c Caps) writer() *stuhfl.Writer {
	return stuhfl.NewWriter().
		U8(stuhfl.FieldCin, c.Cin).
		U8(stuhfl.FieldClen, c.Clen).
		U8(stuhfl.FieldCout, c.Cout)
}

func decodeCaps(r stuhfl.Record) Caps {
	return Caps{Cin: r.U8(stuhfl.FieldCin), Clen: r.U8(stuhfl.FieldClen), Cout: r.U8(stuhfl.FieldCout)}
}

// Channel is one frequency with per-antenna tuning caps.
type Channel struct {
	Frequency uint32
	Caps      [2]Caps
}

// ChannelList is the reader's hopping table. Writing it switches the active
// tuning profile, which can change the antenna in use.
type ChannelList struct {
	Persistent     bool
	ChannelListIdx uint8
	Items          []Channel
}

func DefaultChannelList() ChannelList {
	return SingleChannelList(DefaultFrequencyKHz)
}

// SingleChannelList is a one-entry list, used when hopping is off.
func SingleChannelList(freq uint32) ChannelList {
	return ChannelList{Items: []Channel{{Frequency: freq, Caps: [2]Caps{DefaultCaps(), DefaultCaps()}}}}
}

func (l ChannelList) validate(op string) error {
	if len(l.Items) == 0 {
		return invalidArg(op, "Items", "at least one channel required")
	}
	if len(l.Items) > MaxChannels {
		return invalidArg(op, "Items", "%d channels exceed %d", len(l.Items), MaxChannels)
	}
	if int(l.ChannelListIdx) >= len(l.Items) {
		return invalidArg(op, "ChannelListIdx", "%d outside %d channels", l.ChannelListIdx, len(l.Items))
	}
	for i, ch := range l.Items {
		if ch.Frequency == 0 {
			return invalidArg(op, "Items", "channel %d has no frequency", i)
		}
	}
	return nil
}

func (l ChannelList) encode(w *stuhfl.Writer) {
	w.Bool(stuhfl.FieldPersistent, l.Persistent).U8(stuhfl.FieldChannelListIdx, l.ChannelListIdx)
	for _, ch := range l.Items {
		item := stuhfl.NewWriter().U32(stuhfl.FieldFrequency, ch.Frequency)
		for _, caps := range ch.Caps {
			item.Record(stuhfl.FieldCaps, caps.writer())
		}
		w.Record(stuhfl.FieldChannel, item)
	}
}

func decodeChannelList(op string, r stuhfl.Record) (ChannelList, error) {
	out := ChannelList{
		Persistent:     r.Bool(stuhfl.FieldPersistent),
		ChannelListIdx: r.U8(stuhfl.FieldChannelListIdx),
	}
	raw := r.All(stuhfl.FieldChannel)
	if len(raw) > MaxChannels {
		return ChannelList{}, protocolErr(op, "%d channels exceed %d", len(raw), MaxChannels)
	}
	for _, v := range raw {
		item, err := stuhfl.Decode(v)
		if err != nil {
			return ChannelList{}, &ProtocolError{Op: op, Err: err}
		}
		ch := Channel{Frequency: item.U32(stuhfl.FieldFrequency)}
		for i, capsRaw := range item.All(stuhfl.FieldCaps) {
			if i >= len(ch.Caps) {
				break
			}
			caps, err := stuhfl.Decode(capsRaw)
			if err != nil {
				return ChannelList{}, &ProtocolError{Op: op, Err: err}
			}
			ch.Caps[i] = decodeCaps(caps)
		}
		out.Items = append(out.Items, ch)
	}
	return out, nil
}

// FreqHop controls channel dwell times.
type FreqHop struct {
	MaxSendingTime time.Duration
	MinSendingTime time.Duration
	Mode           FreqHopMode
}

func DefaultFreqHop() FreqHop {
	return FreqHop{MaxSendingTime: 400 * time.Millisecond, MinSendingTime: 400 * time.Millisecond, Mode: HopIgnoreMin}
}

func (h FreqHop) validate(op string) error {
	if h.MaxSendingTime < 0 || h.MaxSendingTime > 0xFFFF*time.Millisecond {
		return invalidArg(op, "MaxSendingTime", "%s out of range", h.MaxSendingTime)
	}
	if h.MinSendingTime < 0 || h.MinSendingTime > h.MaxSendingTime {
		return invalidArg(op, "MinSendingTime", "%s must be within 0..MaxSendingTime", h.MinSendingTime)
	}
	if h.Mode > HopFastFCC {
		return invalidArg(op, "Mode", "%d unknown", h.Mode)
	}
	return nil
}

func (h FreqHop) encode(w *stuhfl.Writer) {
	w.U16(stuhfl.FieldMaxSendingTime, uint16(h.MaxSendingTime/time.Millisecond)).
		U16(stuhfl.FieldMinSendingTime, uint16(h.MinSendingTime/time.Millisecond)).
		U8(stuhfl.FieldHopMode, uint8(h.Mode))
}

func decodeFreqHop(r stuhfl.Record) FreqHop {
	return FreqHop{
		MaxSendingTime: time.Duration(r.U16(stuhfl.FieldMaxSendingTime)) * time.Millisecond,
		MinSendingTime: time.Duration(r.U16(stuhfl.FieldMinSendingTime)) * time.Millisecond,
		Mode:           FreqHopMode(r.U8(stuhfl.FieldHopMode)),
	}
}

// FreqLBT configures listen-before-talk.
type FreqLBT struct {
	ListeningTime    time.Duration
	IdleTime         time.Duration
	RSSILogThreshold uint8
	SkipLBTCheck     bool
}

func DefaultFreqLBT() FreqLBT {
	return FreqLBT{ListeningTime: time.Millisecond, IdleTime: 0, RSSILogThreshold: 31, SkipLBTCheck: true}
}

func (l FreqLBT) validate(op string) error {
	if l.ListeningTime < 0 || l.ListeningTime > 0xFFFF*time.Millisecond {
		return invalidArg(op, "ListeningTime", "%s out of range", l.ListeningTime)
	}
	if l.IdleTime < 0 || l.IdleTime > 0xFFFF*time.Millisecond {
		return invalidArg(op, "IdleTime", "%s out of range", l.IdleTime)
	}
	return nil
}

func (l FreqLBT) encode(w *stuhfl.Writer) {
	w.U16(stuhfl.FieldListeningTime, uint16(l.ListeningTime/time.Millisecond)).
		U16(stuhfl.FieldIdleTime, uint16(l.IdleTime/time.Millisecond)).
		U8(stuhfl.FieldRSSILogThreshold, l.RSSILogThreshold).
		Bool(stuhfl.FieldSkipLBTCheck, l.SkipLBTCheck)
}

func decodeFreqLBT(r stuhfl.Record) FreqLBT {
	return FreqLBT{
		ListeningTime:    time.Duration(r.U16(stuhfl.FieldListeningTime)) * time.Millisecond,
		IdleTime:         time.Duration(r.U16(stuhfl.FieldIdleTime)) * time.Millisecond,
		RSSILogThreshold: r.U8(stuhfl.FieldRSSILogThreshold),
		SkipLBTCheck:     r.Bool(stuhfl.FieldSkipLBTCheck),
	}
}

// FreqRSSI is the channel noise measured at one frequency.
type FreqRSSI struct {
	Frequency uint32
	RSSILogI  uint8
	RSSILogQ  uint8
}

// ReflectedPower is the reflected carrier measured at one frequency.
type ReflectedPower struct {
	Frequency  uint32
	Antenna    Antenna
	ReflectedI int16
	ReflectedQ int16
}

// TuningCaps are the stored caps for one antenna and channel.
type TuningCaps struct {
	Antenna        Antenna
	ChannelListIdx uint8
	Caps           Caps
}

func DefaultCaps() Caps {
	return Caps{Cin: 15, Clen: 15, Cout: 15}
}

func (t TuningCaps) validate(op string) error {
	if !t.Antenna.valid() {
		return invalidArg(op, "Antenna", "%d out of range 1..4", t.Antenna)
	}
	if int(t.ChannelListIdx) >= MaxChannels {
		return invalidArg(op, "ChannelListIdx", "%d exceeds %d", t.ChannelListIdx, MaxChannels-1)
	}
	return nil
}

func (t TuningCaps) encode(w *stuhfl.Writer) {
	w.U8(stuhfl.FieldAntenna, uint8(t.Antenna)).
		U8(stuhfl.FieldChannelListIdx, t.ChannelListIdx).
		Record(stuhfl.FieldCaps, t.Caps.writer())
}

func decodeTuningCaps(op string, r stuhfl.Record) (TuningCaps, error) {
	caps, err := r.Sub(stuhfl.FieldCaps)
	if err != nil {
		return TuningCaps{}, &ProtocolError{Op: op, Err: err}
	}
	return TuningCaps{
		Antenna:        Antenna(r.U8(stuhfl.FieldAntenna)),
		ChannelListIdx: r.U8(stuhfl.FieldChannelListIdx),
		Caps:           decodeCaps(caps),
	}, nil
}
