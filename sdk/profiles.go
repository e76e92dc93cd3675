package sdk

import (
	"fmt"

	"github.com/pkg/errors"

	"stuhfl_go/internal/regions"
)

// Profile is a regional channel plan.
type Profile uint8

const (
	ProfileEurope Profile = iota
	ProfileUSA
	ProfileJapan
	ProfileChina
	ProfileChina2
)

var profileCodes = map[Profile]string{
	ProfileEurope: "EU",
	ProfileUSA:    "US",
	ProfileJapan:  "JP",
	ProfileChina:  "CN",
	ProfileChina2: "CN2",
}

func (p Profile) String() string {
	if code, ok := profileCodes[p]; ok {
		return code
	}
	return fmt.Sprintf("profile(%d)", uint8(p))
}

// ParseProfile accepts the region codes printed by String.
func ParseProfile(code string) (Profile, error) {
	region, ok := regions.Lookup(code)
	if ok {
		for p, c := range profileCodes {
			if c == region.Code {
				return p, nil
			}
		}
	}
	return ProfileEurope, errors.Errorf("unknown profile %q", code)
}

// ChannelListForProfile returns the session-scoped channel list for a region.
func ChannelListForProfile(p Profile) (ChannelList, error) {
	code, ok := profileCodes[p]
	if !ok {
		return ChannelList{}, invalidArg("ChannelListForProfile", "Profile", "%d unknown", p)
	}
	region, ok := regions.Lookup(code)
	if !ok {
		return ChannelList{}, invalidArg("ChannelListForProfile", "Profile", "no channel plan for %s", code)
	}

	out := ChannelList{Items: make([]Channel, 0, len(region.Channels))}
	for _, ch := range region.Channels {
		item := Channel{Frequency: ch.FrequencyKHz}
		for i, caps := range ch.Caps {
			item.Caps[i] = Caps{Cin: caps[0], Clen: caps[1], Cout: caps[2]}
		}
		out.Items = append(out.Items, item)
	}
	return out, nil
}
