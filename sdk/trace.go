package sdk

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"stuhfl_go/internal/protocol/stuhfl"
)

var commandNames = map[uint16]string{
	cmd(stuhfl.GroupTune, stuhfl.CodeTuneChannel): "TuneChannel",

	cmd(stuhfl.GroupSL, stuhfl.CodeGen2Inventory):        "Gen2_Inventory",
	cmd(stuhfl.GroupSL, stuhfl.CodeGen2Select):           "Gen2_Select",
	cmd(stuhfl.GroupSL, stuhfl.CodeGen2Read):             "Gen2_Read",
	cmd(stuhfl.GroupSL, stuhfl.CodeGen2Write):            "Gen2_Write",
	cmd(stuhfl.GroupSL, stuhfl.CodeGen2BlockWrite):       "Gen2_BlockWrite",
	cmd(stuhfl.GroupSL, stuhfl.CodeGen2Lock):             "Gen2_Lock",
	cmd(stuhfl.GroupSL, stuhfl.CodeGen2Kill):             "Gen2_Kill",
	cmd(stuhfl.GroupSL, stuhfl.CodeGen2GenericCmd):       "Gen2_GenericCmd",
	cmd(stuhfl.GroupSL, stuhfl.CodeGen2QueryMeasureRssi): "Gen2_QueryMeasureRssi",
	cmd(stuhfl.GroupSL, stuhfl.CodeGen2Challenge):        "Gen2_Challenge",
	cmd(stuhfl.GroupSL, stuhfl.CodeGen2Authenticate):     "Gen2_Authenticate",
	cmd(stuhfl.GroupSL, stuhfl.CodeGen2AuthComm):         "Gen2_AuthComm",
	cmd(stuhfl.GroupSL, stuhfl.CodeGen2SecureComm):       "Gen2_SecureComm",
	cmd(stuhfl.GroupSL, stuhfl.CodeGen2KeyUpdate):        "Gen2_KeyUpdate",
	cmd(stuhfl.GroupSL, stuhfl.CodeGen2TagPrivilege):     "Gen2_TagPrivilege",
	cmd(stuhfl.GroupSL, stuhfl.CodeGen2ReadBuffer):       "Gen2_ReadBuffer",
	cmd(stuhfl.GroupSL, stuhfl.CodeGen2Untraceable):      "Gen2_Untraceable",

	cmd(stuhfl.GroupSL, stuhfl.CodeGbInventory): "Gb29768_Inventory",
	cmd(stuhfl.GroupSL, stuhfl.CodeGbSort):      "Gb29768_Sort",
	cmd(stuhfl.GroupSL, stuhfl.CodeGbRead):      "Gb29768_Read",
	cmd(stuhfl.GroupSL, stuhfl.CodeGbWrite):     "Gb29768_Write",
	cmd(stuhfl.GroupSL, stuhfl.CodeGbLock):      "Gb29768_Lock",
	cmd(stuhfl.GroupSL, stuhfl.CodeGbKill):      "Gb29768_Kill",
	cmd(stuhfl.GroupSL, stuhfl.CodeGbErase):     "Gb29768_Erase",

	cmd(stuhfl.GroupSL, stuhfl.CodeIso6bInventory): "Iso6b_Inventory",
	cmd(stuhfl.GroupSL, stuhfl.CodeIso6bSelect):    "Iso6b_Select",
	cmd(stuhfl.GroupSL, stuhfl.CodeIso6bRead):      "Iso6b_Read",
	cmd(stuhfl.GroupSL, stuhfl.CodeIso6bWrite):     "Iso6b_Write",
}

var configNames = map[byte]string{
	stuhfl.ConfigAntennaPower:       "AntennaPower",
	stuhfl.ConfigTxRx:               "TxRxCfg",
	stuhfl.ConfigChannelList:        "ChannelList",
	stuhfl.ConfigFreqHop:            "FreqHop",
	stuhfl.ConfigFreqLBT:            "FreqLBT",
	stuhfl.ConfigFreqRSSI:           "FreqRSSI",
	stuhfl.ConfigFreqReflectedPower: "FreqReflectedPowerInfo",
	stuhfl.ConfigGen2Protocol:       "Gen2_ProtocolCfg",
	stuhfl.ConfigGb29768Protocol:    "Gb29768_ProtocolCfg",
	stuhfl.ConfigIso6bProtocol:      "Iso6b_ProtocolCfg",
	stuhfl.ConfigGen2Inventory:      "Gen2_InventoryCfg",
	stuhfl.ConfigGb29768Inventory:   "Gb29768_InventoryCfg",
	stuhfl.ConfigIso6bInventory:     "Iso6b_InventoryCfg",
	stuhfl.ConfigTuningCaps:         "TuningCaps",
}

func cmd(group, code byte) uint16 {
	return uint16(group)<<8 | uint16(code)
}

func commandName(group, code byte) string {
	switch group {
	case stuhfl.GroupSet, stuhfl.GroupGet:
		prefix := "Set_"
		if group == stuhfl.GroupGet {
			prefix = "Get_"
		}
		if name, ok := configNames[code]; ok {
			return prefix + name
		}
	}
	if name, ok := commandNames[cmd(group, code)]; ok {
		return name
	}
	return fmt.Sprintf("cmd_%02X%02X", group, code)
}

// trace emits one entry per command with every input and output field.
func (c *Conn) trace(op string, fields logrus.Fields, st Status, err error) {
	entry := c.log.WithFields(fields).WithField("status", st.String())
	if err != nil {
		entry.WithError(err).Warn(op)
		return
	}
	if !st.OK() {
		entry.Debug(op)
		return
	}
	entry.Trace(op)
}
