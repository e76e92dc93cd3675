package sdk

import "context"

// Gen2Setup is the minimal reader configuration for Gen2 work.
type Gen2Setup struct {
	Antenna     Antenna
	SingleTag   bool
	FreqHopping bool
	Algorithm   TuningAlgorithm
	// Profile selects the hopping channel plan; the zero value is Europe.
	Profile Profile
}

func DefaultGen2Setup() Gen2Setup {
	return Gen2Setup{Antenna: Antenna1, FreqHopping: true, Algorithm: TuneMedium}
}

// gen2InventoryCfg tunes the Q algorithm for one tag or for a population.
func (s Gen2Setup) gen2InventoryCfg() Gen2InventoryCfg {
	cfg := DefaultGen2InventoryCfg()
	cfg.Options = Gen2InventoryOptions{Fast: true}
	cfg.AntiCollision.AdaptiveQ = !s.SingleTag
	if s.SingleTag {
		cfg.AntiCollision.StartQ = 0
		cfg.AntiCollision.MinQ = 0
	} else {
		cfg.AntiCollision.StartQ = 4
	}
	cfg.Query.ToggleTarget = true
	cfg.Query.TargetDepletionMode = true
	cfg.AdaptiveSensitivity.Enabled = false
	cfg.AdaptiveOutputPower.Enabled = false
	return cfg
}

func (s Gen2Setup) channelList() (ChannelList, error) {
	if s.FreqHopping {
		return ChannelListForProfile(s.Profile)
	}
	return SingleChannelList(DefaultFrequencyKHz), nil
}

// ConfigureGen2 writes TxRx, Gen2 inventory and protocol settings, LBT,
// channel list and hopping, clears the select list and tunes. Every step
// runs; the first non-OK status is returned. A transport or protocol error
// aborts the sequence.
func (c *Conn) ConfigureGen2(ctx context.Context, s Gen2Setup) (Status, error) {
	const op = "ConfigureGen2"
	if !s.Antenna.valid() {
		return 0, invalidArg(op, "Antenna", "%d out of range 1..4", s.Antenna)
	}
	if !s.Algorithm.valid() {
		return 0, invalidArg(op, "Algorithm", "%d unknown", s.Algorithm)
	}
	channels, err := s.channelList()
	if err != nil {
		return 0, err
	}

	txrx := DefaultTxRx()
	txrx.UsedAntenna = s.Antenna
	txrx.AlternateAntennaInterval = 1

	lbt := DefaultFreqLBT()
	lbt.ListeningTime = 0
	lbt.SkipLBTCheck = true

	inv := s.gen2InventoryCfg()
	steps := []func() (Status, error){
		func() (Status, error) { return c.SetTxRx(ctx, txrx) },
		func() (Status, error) { return c.SetGen2InventoryCfg(ctx, inv) },
		func() (Status, error) { return c.SetGen2ProtocolCfg(ctx, DefaultGen2ProtocolCfg()) },
		func() (Status, error) { return c.SetFreqLBT(ctx, lbt) },
		func() (Status, error) { return c.SetChannelList(ctx, channels) },
		func() (Status, error) { return c.SetFreqHop(ctx, DefaultFreqHop()) },
		func() (Status, error) { return c.Gen2Select(ctx, DefaultGen2Select()) },
		func() (Status, error) { return c.TuneChannel(ctx, TuneRequest{Algorithm: s.Algorithm, TuneAll: true}) },
	}

	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		st, err := step()
		if err != nil {
			return st, err
		}
		statuses = append(statuses, st)
	}
	return FirstFailure(statuses...), nil
}
