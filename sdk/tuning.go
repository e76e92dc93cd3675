package sdk

import (
	"context"

	"github.com/sirupsen/logrus"

	"stuhfl_go/internal/protocol/stuhfl"
)

type TuneRequest struct {
	Algorithm              TuningAlgorithm
	TuneAll                bool
	FalsePositiveDetection bool
	Persistent             bool
	ChannelListIdx         uint8
}

// TuneChannel retunes the antenna matching network. The antenna is read
// from the reader right before tuning because a channel list change may
// have switched it. TuneNone does nothing.
func (c *Conn) TuneChannel(ctx context.Context, req TuneRequest) (Status, error) {
	const op = "TuneChannel"
	if !req.Algorithm.valid() {
		return 0, invalidArg(op, "Algorithm", "%d unknown", req.Algorithm)
	}
	if req.Algorithm == TuneNone {
		return StatusNone, nil
	}

	txrx, st, err := c.GetTxRx(ctx)
	if err != nil || !st.OK() {
		return st, err
	}

	w := stuhfl.NewWriter().
		U8(stuhfl.FieldAntenna, uint8(txrx.UsedAntenna)).
		U8(stuhfl.FieldTuneAlgorithm, uint8(req.Algorithm)).
		Bool(stuhfl.FieldFalsePositive, req.FalsePositiveDetection).
		Bool(stuhfl.FieldPersistent, req.Persistent).
		U8(stuhfl.FieldChannelListIdx, req.ChannelListIdx).
		Bool(stuhfl.FieldTuneAll, req.TuneAll)
	st, _, err = c.ExecuteCommand(ctx, stuhfl.GroupTune, stuhfl.CodeTuneChannel, w.Encode())
	c.trace(op, logrus.Fields{
		"antenna": txrx.UsedAntenna, "algorithm": req.Algorithm.String(), "tuneAll": req.TuneAll,
		"falsePositiveDetection": req.FalsePositiveDetection, "persistent": req.Persistent,
		"channelListIdx": req.ChannelListIdx,
	}, st, err)
	return st, err
}
