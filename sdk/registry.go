package sdk

import (
	"context"

	"github.com/sirupsen/logrus"

	"stuhfl_go/internal/protocol/stuhfl"
)

func (c *Conn) setConfig(ctx context.Context, domain byte, cfg any, encode func(*stuhfl.Writer)) (Status, error) {
	w := stuhfl.NewWriter()
	encode(w)
	st, _, err := c.ExecuteCommand(ctx, stuhfl.GroupSet, domain, w.Encode())
	c.trace(commandName(stuhfl.GroupSet, domain), logrus.Fields{"in": cfg}, st, err)
	return st, err
}

func (c *Conn) getConfig(ctx context.Context, domain byte, in *stuhfl.Writer) (Status, stuhfl.Record, error) {
	return c.exchange(ctx, stuhfl.GroupGet, domain, in)
}

func (c *Conn) traceGet(domain byte, in, out any, st Status, err error) {
	fields := logrus.Fields{"out": out}
	if in != nil {
		fields["in"] = in
	}
	c.trace(commandName(stuhfl.GroupGet, domain), fields, st, err)
}

func (c *Conn) SetAntennaPower(ctx context.Context, cfg AntennaPower) (Status, error) {
	if err := cfg.validate("Set_AntennaPower"); err != nil {
		return 0, err
	}
	return c.setConfig(ctx, stuhfl.ConfigAntennaPower, cfg, cfg.encode)
}

func (c *Conn) GetAntennaPower(ctx context.Context) (AntennaPower, Status, error) {
	st, rec, err := c.getConfig(ctx, stuhfl.ConfigAntennaPower, nil)
	var out AntennaPower
	if err == nil {
		out = decodeAntennaPower(rec)
	}
	c.traceGet(stuhfl.ConfigAntennaPower, nil, out, st, err)
	return out, st, err
}

func (c *Conn) SetTxRx(ctx context.Context, cfg TxRx) (Status, error) {
	if err := cfg.validate("Set_TxRxCfg"); err != nil {
		return 0, err
	}
	return c.setConfig(ctx, stuhfl.ConfigTxRx, cfg, cfg.encode)
}

// GetTxRx always asks the reader; the answer is never cached.
func (c *Conn) GetTxRx(ctx context.Context) (TxRx, Status, error) {
	st, rec, err := c.getConfig(ctx, stuhfl.ConfigTxRx, nil)
	var out TxRx
	if err == nil {
		out = decodeTxRx(rec)
	}
	c.traceGet(stuhfl.ConfigTxRx, nil, out, st, err)
	return out, st, err
}

// SetChannelList replaces the hopping table. The reader switches its active
// tuning profile as a side effect, so re-read TxRx before tuning.
func (c *Conn) SetChannelList(ctx context.Context, cfg ChannelList) (Status, error) {
	if err := cfg.validate("Set_ChannelList"); err != nil {
		return 0, err
	}
	return c.setConfig(ctx, stuhfl.ConfigChannelList, cfg, cfg.encode)
}

func (c *Conn) GetChannelList(ctx context.Context) (ChannelList, Status, error) {
	op := commandName(stuhfl.GroupGet, stuhfl.ConfigChannelList)
	st, rec, err := c.getConfig(ctx, stuhfl.ConfigChannelList, nil)
	var out ChannelList
	if err == nil {
		out, err = decodeChannelList(op, rec)
	}
	c.traceGet(stuhfl.ConfigChannelList, nil, out, st, err)
	return out, st, err
}

func (c *Conn) SetFreqHop(ctx context.Context, cfg FreqHop) (Status, error) {
	if err := cfg.validate("Set_FreqHop"); err != nil {
		return 0, err
	}
	return c.setConfig(ctx, stuhfl.ConfigFreqHop, cfg, cfg.encode)
}

func (c *Conn) GetFreqHop(ctx context.Context) (FreqHop, Status, error) {
	st, rec, err := c.getConfig(ctx, stuhfl.ConfigFreqHop, nil)
	var out FreqHop
	if err == nil {
		out = decodeFreqHop(rec)
	}
	c.traceGet(stuhfl.ConfigFreqHop, nil, out, st, err)
	return out, st, err
}

func (c *Conn) SetFreqLBT(ctx context.Context, cfg FreqLBT) (Status, error) {
	if err := cfg.validate("Set_FreqLBT"); err != nil {
		return 0, err
	}
	return c.setConfig(ctx, stuhfl.ConfigFreqLBT, cfg, cfg.encode)
}

func (c *Conn) GetFreqLBT(ctx context.Context) (FreqLBT, Status, error) {
	st, rec, err := c.getConfig(ctx, stuhfl.ConfigFreqLBT, nil)
	var out FreqLBT
	if err == nil {
		out = decodeFreqLBT(rec)
	}
	c.traceGet(stuhfl.ConfigFreqLBT, nil, out, st, err)
	return out, st, err
}

// GetFreqRSSI measures channel noise at freq.
func (c *Conn) GetFreqRSSI(ctx context.Context, freq uint32) (FreqRSSI, Status, error) {
	in := stuhfl.NewWriter().U32(stuhfl.FieldFrequency, freq)
	st, rec, err := c.getConfig(ctx, stuhfl.ConfigFreqRSSI, in)
	out := FreqRSSI{Frequency: freq}
	if err == nil {
		out.RSSILogI = rec.U8(stuhfl.FieldRSSILogI)
		out.RSSILogQ = rec.U8(stuhfl.FieldRSSILogQ)
	}
	c.traceGet(stuhfl.ConfigFreqRSSI, freq, out, st, err)
	return out, st, err
}

// GetReflectedPower measures the reflected carrier on one antenna.
func (c *Conn) GetReflectedPower(ctx context.Context, freq uint32, antenna Antenna) (ReflectedPower, Status, error) {
	op := commandName(stuhfl.GroupGet, stuhfl.ConfigFreqReflectedPower)
	if !antenna.valid() {
		return ReflectedPower{}, 0, invalidArg(op, "Antenna", "%d out of range 1..4", antenna)
	}
	in := stuhfl.NewWriter().U32(stuhfl.FieldFrequency, freq).U8(stuhfl.FieldAntenna, uint8(antenna))
	st, rec, err := c.getConfig(ctx, stuhfl.ConfigFreqReflectedPower, in)
	out := ReflectedPower{Frequency: freq, Antenna: antenna}
	if err == nil {
		out.ReflectedI = rec.I16(stuhfl.FieldReflectedI)
		out.ReflectedQ = rec.I16(stuhfl.FieldReflectedQ)
	}
	c.traceGet(stuhfl.ConfigFreqReflectedPower, logrus.Fields{"freq": freq, "antenna": antenna}, out, st, err)
	return out, st, err
}

func (c *Conn) SetGen2ProtocolCfg(ctx context.Context, cfg Gen2ProtocolCfg) (Status, error) {
	if err := cfg.validate("Set_Gen2_ProtocolCfg"); err != nil {
		return 0, err
	}
	return c.setConfig(ctx, stuhfl.ConfigGen2Protocol, cfg, cfg.encode)
}

func (c *Conn) GetGen2ProtocolCfg(ctx context.Context) (Gen2ProtocolCfg, Status, error) {
	st, rec, err := c.getConfig(ctx, stuhfl.ConfigGen2Protocol, nil)
	var out Gen2ProtocolCfg
	if err == nil {
		out = decodeGen2ProtocolCfg(rec)
	}
	c.traceGet(stuhfl.ConfigGen2Protocol, nil, out, st, err)
	return out, st, err
}

func (c *Conn) SetGbProtocolCfg(ctx context.Context, cfg GbProtocolCfg) (Status, error) {
	if err := cfg.validate("Set_Gb29768_ProtocolCfg"); err != nil {
		return 0, err
	}
	return c.setConfig(ctx, stuhfl.ConfigGb29768Protocol, cfg, cfg.encode)
}

func (c *Conn) GetGbProtocolCfg(ctx context.Context) (GbProtocolCfg, Status, error) {
	st, rec, err := c.getConfig(ctx, stuhfl.ConfigGb29768Protocol, nil)
	var out GbProtocolCfg
	if err == nil {
		out = decodeGbProtocolCfg(rec)
	}
	c.traceGet(stuhfl.ConfigGb29768Protocol, nil, out, st, err)
	return out, st, err
}

func (c *Conn) SetIso6bProtocolCfg(ctx context.Context, cfg Iso6bProtocolCfg) (Status, error) {
	if err := cfg.validate("Set_Iso6b_ProtocolCfg"); err != nil {
		return 0, err
	}
	return c.setConfig(ctx, stuhfl.ConfigIso6bProtocol, cfg, func(w *stuhfl.Writer) {
		w.U8(stuhfl.FieldBLF, uint8(cfg.BLF))
	})
}

func (c *Conn) GetIso6bProtocolCfg(ctx context.Context) (Iso6bProtocolCfg, Status, error) {
	st, rec, err := c.getConfig(ctx, stuhfl.ConfigIso6bProtocol, nil)
	var out Iso6bProtocolCfg
	if err == nil {
		out.BLF = Iso6bLinkFrequency(rec.U8(stuhfl.FieldBLF))
	}
	c.traceGet(stuhfl.ConfigIso6bProtocol, nil, out, st, err)
	return out, st, err
}

func (c *Conn) SetGen2InventoryCfg(ctx context.Context, cfg Gen2InventoryCfg) (Status, error) {
	if err := cfg.validate("Set_Gen2_InventoryCfg"); err != nil {
		return 0, err
	}
	return c.setConfig(ctx, stuhfl.ConfigGen2Inventory, cfg, cfg.encode)
}

func (c *Conn) GetGen2InventoryCfg(ctx context.Context) (Gen2InventoryCfg, Status, error) {
	st, rec, err := c.getConfig(ctx, stuhfl.ConfigGen2Inventory, nil)
	var out Gen2InventoryCfg
	if err == nil {
		out = decodeGen2InventoryCfg(rec)
	}
	c.traceGet(stuhfl.ConfigGen2Inventory, nil, out, st, err)
	return out, st, err
}

func (c *Conn) SetGbInventoryCfg(ctx context.Context, cfg GbInventoryCfg) (Status, error) {
	if err := cfg.validate("Set_Gb29768_InventoryCfg"); err != nil {
		return 0, err
	}
	return c.setConfig(ctx, stuhfl.ConfigGb29768Inventory, cfg, cfg.encode)
}

func (c *Conn) GetGbInventoryCfg(ctx context.Context) (GbInventoryCfg, Status, error) {
	st, rec, err := c.getConfig(ctx, stuhfl.ConfigGb29768Inventory, nil)
	var out GbInventoryCfg
	if err == nil {
		out = decodeGbInventoryCfg(rec)
	}
	c.traceGet(stuhfl.ConfigGb29768Inventory, nil, out, st, err)
	return out, st, err
}

func (c *Conn) SetIso6bInventoryCfg(ctx context.Context, cfg Iso6bInventoryCfg) (Status, error) {
	if err := cfg.validate("Set_Iso6b_InventoryCfg"); err != nil {
		return 0, err
	}
	return c.setConfig(ctx, stuhfl.ConfigIso6bInventory, cfg, cfg.encode)
}

func (c *Conn) GetIso6bInventoryCfg(ctx context.Context) (Iso6bInventoryCfg, Status, error) {
	st, rec, err := c.getConfig(ctx, stuhfl.ConfigIso6bInventory, nil)
	var out Iso6bInventoryCfg
	if err == nil {
		out = decodeIso6bInventoryCfg(rec)
	}
	c.traceGet(stuhfl.ConfigIso6bInventory, nil, out, st, err)
	return out, st, err
}

func (c *Conn) SetTuningCaps(ctx context.Context, cfg TuningCaps) (Status, error) {
	if err := cfg.validate("Set_TuningCaps"); err != nil {
		return 0, err
	}
	return c.setConfig(ctx, stuhfl.ConfigTuningCaps, cfg, cfg.encode)
}

// GetTuningCaps reads the caps stored for one antenna and channel index.
func (c *Conn) GetTuningCaps(ctx context.Context, antenna Antenna, channelListIdx uint8) (TuningCaps, Status, error) {
	op := commandName(stuhfl.GroupGet, stuhfl.ConfigTuningCaps)
	req := TuningCaps{Antenna: antenna, ChannelListIdx: channelListIdx}
	if err := req.validate(op); err != nil {
		return TuningCaps{}, 0, err
	}
	in := stuhfl.NewWriter().U8(stuhfl.FieldAntenna, uint8(antenna)).U8(stuhfl.FieldChannelListIdx, channelListIdx)
	st, rec, err := c.getConfig(ctx, stuhfl.ConfigTuningCaps, in)
	var out TuningCaps
	if err == nil {
		out, err = decodeTuningCaps(op, rec)
	}
	c.traceGet(stuhfl.ConfigTuningCaps, req, out, st, err)
	return out, st, err
}
