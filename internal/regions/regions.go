package regions

import "strings"

// Caps is a factory antenna-matching capacitor triple (Cin, Clen, Cout).
type Caps [3]uint8

// Channel is one carrier frequency in kHz with caps for both antenna ports.
type Channel struct {
	FrequencyKHz uint32
	Caps         [2]Caps
}

// Region represents one UHF regulatory channel plan.
type Region struct {
	Code     string
	Name     string
	Band     string
	Channels []Channel
}

// DefaultCaps is used where no factory tuning exists for a channel.
var DefaultCaps = Caps{15, 15, 15}

var Catalog = []Region{
	{
		Code: "EU", Name: "Europe", Band: "865-868 MHz",
		Channels: []Channel{
			{FrequencyKHz: 865700, Caps: [2]Caps{{12, 12, 14}, {12, 9, 16}}},
			{FrequencyKHz: 866300, Caps: [2]Caps{{12, 12, 14}, {11, 9, 16}}},
			{FrequencyKHz: 866900, Caps: [2]Caps{{11, 12, 14}, {11, 9, 16}}},
			{FrequencyKHz: 867500, Caps: [2]Caps{{11, 12, 14}, {11, 9, 16}}},
		},
	},
	{Code: "US", Name: "United States", Band: "902-928 MHz", Channels: stepped(902750, 500, 50)},
	{Code: "JP", Name: "Japan", Band: "920.5-922.1 MHz", Channels: stepped(920500, 200, 9)},
	{Code: "CN", Name: "China 840", Band: "840-845 MHz", Channels: stepped(840625, 250, 16)},
	{Code: "CN2", Name: "China 920", Band: "920-925 MHz", Channels: stepped(920625, 250, 16)},
}

func stepped(start, step uint32, n int) []Channel {
	out := make([]Channel, n)
	for i := range out {
		out[i] = Channel{
			FrequencyKHz: start + uint32(i)*step,
			Caps:         [2]Caps{DefaultCaps, DefaultCaps},
		}
	}
	return out
}

// Lookup finds a region by code, case-insensitively.
func Lookup(code string) (Region, bool) {
	code = strings.TrimSpace(code)
	for _, region := range Catalog {
		if strings.EqualFold(region.Code, code) {
			return region, true
		}
	}
	return Region{}, false
}

func DefaultIndex() int {
	for i, region := range Catalog {
		if region.Code == "EU" {
			return i
		}
	}
	return 0
}
