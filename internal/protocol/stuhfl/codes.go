package stuhfl

// Command groups.
const (
	GroupSet  byte = 0x02
	GroupGet  byte = 0x03
	GroupTune byte = 0x04
	GroupSL   byte = 0x05
)

// Configuration domain codes, shared by GroupSet and GroupGet.
const (
	ConfigAntennaPower       byte = 0x01
	ConfigTxRx               byte = 0x02
	ConfigChannelList        byte = 0x04
	ConfigFreqHop            byte = 0x05
	ConfigFreqLBT            byte = 0x06
	ConfigFreqRSSI           byte = 0x08
	ConfigFreqReflectedPower byte = 0x09
	ConfigGen2Protocol       byte = 0x0B
	ConfigGb29768Protocol    byte = 0x0C
	ConfigIso6bProtocol      byte = 0x0D
	ConfigGen2Inventory      byte = 0x0E
	ConfigGb29768Inventory   byte = 0x0F
	ConfigIso6bInventory     byte = 0x10
	ConfigTuningCaps         byte = 0x11
)

// Tune group codes.
const (
	CodeTuneChannel byte = 0x01
)

// SL group codes for Gen2.
const (
	CodeGen2Inventory        byte = 0x01
	CodeGen2Select           byte = 0x02
	CodeGen2Read             byte = 0x03
	CodeGen2Write            byte = 0x04
	CodeGen2BlockWrite       byte = 0x05
	CodeGen2Lock             byte = 0x06
	CodeGen2Kill             byte = 0x07
	CodeGen2GenericCmd       byte = 0x08
	CodeGen2QueryMeasureRssi byte = 0x09
	CodeGen2Challenge        byte = 0x0A
	CodeGen2Authenticate     byte = 0x0B
	CodeGen2AuthComm         byte = 0x0C
	CodeGen2SecureComm       byte = 0x0D
	CodeGen2KeyUpdate        byte = 0x0E
	CodeGen2TagPrivilege     byte = 0x0F
	CodeGen2ReadBuffer       byte = 0x10
	CodeGen2Untraceable      byte = 0x11
)

// SL group codes for GB29768.
const (
	CodeGbInventory byte = 0x20
	CodeGbSort      byte = 0x21
	CodeGbRead      byte = 0x22
	CodeGbWrite     byte = 0x23
	CodeGbLock      byte = 0x24
	CodeGbKill      byte = 0x25
	CodeGbErase     byte = 0x26
)

// SL group codes for ISO6B.
const (
	CodeIso6bInventory byte = 0x30
	CodeIso6bSelect    byte = 0x31
	CodeIso6bRead      byte = 0x32
	CodeIso6bWrite     byte = 0x33
)

// Reader status values carried in every response frame.
const (
	StatusNone    uint16 = 0x0000
	StatusGeneric uint16 = 0x0001
	StatusNoMem   uint16 = 0x0002
	StatusBusy    uint16 = 0x0003
	StatusIO      uint16 = 0x0004
	StatusTimeout uint16 = 0x0005
	StatusRequest uint16 = 0x0006
	StatusNoMsg   uint16 = 0x0007
	StatusParam   uint16 = 0x0008
	StatusProto   uint16 = 0x0009

	StatusChipNoResp   uint16 = 0x0010
	StatusChipHeader   uint16 = 0x0011
	StatusChipPreamble uint16 = 0x0012
	StatusChipRxCount  uint16 = 0x0013
	StatusChipCRC      uint16 = 0x0014
	StatusChipFIFO     uint16 = 0x0015
	StatusChipColl     uint16 = 0x0016

	StatusReflectedPower uint16 = 0x0020

	StatusGen2Select          uint16 = 0x0030
	StatusGen2Access          uint16 = 0x0031
	StatusGen2ReqRN           uint16 = 0x0032
	StatusGen2ChannelTimeout  uint16 = 0x0033
	StatusGen2Other           uint16 = 0x0034
	StatusGen2NotSupported    uint16 = 0x0035
	StatusGen2Privileges      uint16 = 0x0036
	StatusGen2MemOverrun      uint16 = 0x0037
	StatusGen2MemLocked       uint16 = 0x0038
	StatusGen2Crypto          uint16 = 0x0039
	StatusGen2Encapsulation   uint16 = 0x003A
	StatusGen2RespBufOverflow uint16 = 0x003B
	StatusGen2SecurityTimeout uint16 = 0x003C
	StatusGen2PowerShortage   uint16 = 0x003D
	StatusGen2NonSpecific     uint16 = 0x0040

	StatusGbPowerShortage   uint16 = 0x0050
	StatusGbPermission      uint16 = 0x0051
	StatusGbStorageOverflow uint16 = 0x0052
	StatusGbStorageLocked   uint16 = 0x0053
	StatusGbPassword        uint16 = 0x0054
	StatusGbAuth            uint16 = 0x0055
	StatusGbAccess          uint16 = 0x0056
	StatusGbAccessTimeout   uint16 = 0x0057
	StatusGbOther           uint16 = 0x0058

	StatusIso6bNoTag         uint16 = 0x0060
	StatusIso6bIRQ           uint16 = 0x0061
	StatusIso6bRegFIFO       uint16 = 0x0062
	StatusIso6bOther         uint16 = 0x0063
	StatusIso6bAccessTimeout uint16 = 0x0064
)

// Field is a TLV tag in a command payload. The namespace is flat and shared
// by every command so that nested records can reuse common fields.
type Field byte

// Reader, antenna and frequency fields.
const (
	FieldAntenna          Field = 0x01
	FieldFrequency        Field = 0x02
	FieldPersistent       Field = 0x03
	FieldTimeout          Field = 0x04
	FieldOn               Field = 0x05
	FieldTxOutputLevel    Field = 0x06
	FieldRxSensitivity    Field = 0x07
	FieldAltAntInterval   Field = 0x08
	FieldChannelListIdx   Field = 0x09
	FieldChannel          Field = 0x0A
	FieldCaps             Field = 0x0B
	FieldCin              Field = 0x0C
	FieldClen             Field = 0x0D
	FieldCout             Field = 0x0E
	FieldMaxSendingTime   Field = 0x10
	FieldMinSendingTime   Field = 0x11
	FieldHopMode          Field = 0x12
	FieldListeningTime    Field = 0x13
	FieldIdleTime         Field = 0x14
	FieldRSSILogThreshold Field = 0x15
	FieldSkipLBTCheck     Field = 0x16
	FieldRSSILogI         Field = 0x17
	FieldRSSILogQ         Field = 0x18
	FieldReflectedI       Field = 0x19
	FieldReflectedQ       Field = 0x1A
)

// Protocol and inventory configuration fields.
const (
	FieldTari            Field = 0x20
	FieldBLF             Field = 0x21
	FieldCoding          Field = 0x22
	FieldTRext           Field = 0x23
	FieldFast            Field = 0x24
	FieldAutoAck         Field = 0x25
	FieldReadTID         Field = 0x26
	FieldAdaptiveQ       Field = 0x27
	FieldStartQ          Field = 0x28
	FieldMinQ            Field = 0x29
	FieldMaxQ            Field = 0x2A
	FieldAdjustNIC       Field = 0x2C
	FieldSingleAdjust    Field = 0x2D
	FieldUseCeilFloor    Field = 0x2E
	FieldResetAfterRound Field = 0x2F
	FieldTuneInterval    Field = 0x30
	FieldTuneLevel       Field = 0x31
	FieldTuneAlgorithm   Field = 0x32
	FieldFalsePositive   Field = 0x33
	FieldSel             Field = 0x34
	FieldSession         Field = 0x35
	FieldTarget          Field = 0x36
	FieldToggleTarget    Field = 0x37
	FieldDepletion       Field = 0x38
	FieldAdaptiveRx      Field = 0x39
	FieldRxStart         Field = 0x3A
	FieldRxMin           Field = 0x3B
	FieldRxMax           Field = 0x3C
	FieldAdaptiveTx      Field = 0x3D
	FieldTxStart         Field = 0x3E
	FieldTxMin           Field = 0x3F
	FieldTxMax           Field = 0x40
	FieldEndThreshold    Field = 0x41
	FieldCCNThreshold    Field = 0x42
	FieldCINThreshold    Field = 0x43
	FieldTuneAll         Field = 0x44
)

// Select, sort and access fields.
const (
	FieldMode           Field = 0x50
	FieldAction         Field = 0x51
	FieldBank           Field = 0x52
	FieldMask           Field = 0x53
	FieldMaskBitPointer Field = 0x54
	FieldMaskBitLength  Field = 0x55
	FieldTruncate       Field = 0x56
	FieldRule           Field = 0x57
	FieldGroup          Field = 0x58
	FieldAddress        Field = 0x59
	FieldBitMask        Field = 0x5A
	FieldFilter         Field = 0x5B
	FieldPassword       Field = 0x60
	FieldWordPtr        Field = 0x61
	FieldByteCount      Field = 0x62
	FieldData           Field = 0x63
	FieldTagReply       Field = 0x64
	FieldLockMask       Field = 0x65
	FieldLockAction     Field = 0x66
	FieldRecommission   Field = 0x67
	FieldLockConfig     Field = 0x68
	FieldBytePtr        Field = 0x69
)

// Generic command, RSSI measurement and security fields.
const (
	FieldGenericMode       Field = 0x70
	FieldNoResponseTime    Field = 0x71
	FieldSendBitLength     Field = 0x72
	FieldRcvBitLength      Field = 0x73
	FieldAppendRN16        Field = 0x74
	FieldMeasureCount      Field = 0x75
	FieldMeasure           Field = 0x76
	FieldSenRep            Field = 0x80
	FieldIncRepLen         Field = 0x81
	FieldImmed             Field = 0x82
	FieldCSI               Field = 0x83
	FieldKeyID             Field = 0x84
	FieldMessage           Field = 0x85
	FieldMessageBitLength  Field = 0x86
	FieldResponse          Field = 0x87
	FieldResponseBitLength Field = 0x88
	FieldResponseHeaderBit Field = 0x89
	FieldPrivAction        Field = 0x8A
	FieldPrivTarget        Field = 0x8B
	FieldPrivilege         Field = 0x8C
	FieldBitCount          Field = 0x8D
	FieldAssertU           Field = 0x8E
	FieldHideEPC           Field = 0x8F
	FieldNewEPCLength      Field = 0x90
	FieldHideTID           Field = 0x91
	FieldHideUser          Field = 0x92
	FieldRange             Field = 0x93
	FieldTagErrorCode      Field = 0x94
)

// Inventory option, tag, statistics and slot fields.
const (
	FieldRSSIMode            Field = 0xA0
	FieldRoundCount          Field = 0xA1
	FieldInventoryDelay      Field = 0xA2
	FieldReportHeartbeat     Field = 0xA3
	FieldReportSlotInfo      Field = 0xA4
	FieldTagListSizeMax      Field = 0xA5
	FieldTagListSize         Field = 0xA6
	FieldTag                 Field = 0xA7
	FieldSlotID              Field = 0xA8
	FieldTimestamp           Field = 0xA9
	FieldAGC                 Field = 0xAA
	FieldRSSILinI            Field = 0xAB
	FieldRSSILinQ            Field = 0xAC
	FieldPC                  Field = 0xAD
	FieldXPC                 Field = 0xAE
	FieldEPC                 Field = 0xAF
	FieldTID                 Field = 0xB0
	FieldStatistics          Field = 0xB1
	FieldTuningStatus        Field = 0xB2
	FieldRSSILogMean         Field = 0xB3
	FieldSensitivity         Field = 0xB4
	FieldQ                   Field = 0xB5
	FieldADC                 Field = 0xB6
	FieldTagCount            Field = 0xB7
	FieldEmptySlotCount      Field = 0xB8
	FieldCollisionCount      Field = 0xB9
	FieldSlotCount           Field = 0xBA
	FieldPreambleErrCount    Field = 0xBB
	FieldCRCErrCount         Field = 0xBC
	FieldHeaderErrCount      Field = 0xBD
	FieldRxCountErrCount     Field = 0xBE
	FieldResendAckCount      Field = 0xBF
	FieldNoiseSuspicionCount Field = 0xC0
	FieldSlot                Field = 0xC1
	FieldSlotKind            Field = 0xC2
)
