package transport

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	"go.bug.st/serial/enumerator"
)

// USB identity of the evaluation board's serial bridge.
const (
	ReaderVID = "0403"
	ReaderPID = "6015"
)

// PortInfo describes one serial port visible to the host.
type PortInfo struct {
	Name    string
	USB     bool
	VID     string
	PID     string
	Serial  string
	Product string
	Reader  bool
}

// ListPorts enumerates serial ports; probable reader ports sort first.
func ListPorts() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, errors.Wrap(err, "enumerate serial ports")
	}

	out := make([]PortInfo, 0, len(details))
	for _, d := range details {
		if d == nil {
			continue
		}
		info := PortInfo{
			Name:    d.Name,
			USB:     d.IsUSB,
			VID:     d.VID,
			PID:     d.PID,
			Serial:  d.SerialNumber,
			Product: d.Product,
		}
		info.Reader = IsReaderPort(info)
		out = append(out, info)
	}
	sortPorts(out)
	return out, nil
}

// IsReaderPort reports whether the port matches the reader's USB identity.
func IsReaderPort(info PortInfo) bool {
	return info.USB &&
		strings.EqualFold(strings.TrimSpace(info.VID), ReaderVID) &&
		strings.EqualFold(strings.TrimSpace(info.PID), ReaderPID)
}

// FindReaderPort returns the first port that looks like a reader.
func FindReaderPort() (string, error) {
	ports, err := ListPorts()
	if err != nil {
		return "", err
	}
	return pickReaderPort(ports)
}

func pickReaderPort(ports []PortInfo) (string, error) {
	for _, p := range ports {
		if p.Reader {
			return p.Name, nil
		}
	}
	return "", errors.Errorf("no reader found (usb %s:%s) among %d ports", ReaderVID, ReaderPID, len(ports))
}

func sortPorts(ports []PortInfo) {
	sort.SliceStable(ports, func(i, j int) bool {
		if ports[i].Reader != ports[j].Reader {
			return ports[i].Reader
		}
		return ports[i].Name < ports[j].Name
	})
}
