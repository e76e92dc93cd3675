// Package simulator is a virtual ST25RU3993 reader that speaks the wire
// protocol over an in-memory port. It keeps a tag population, records every
// request and can inject faults.
package simulator

import (
	"io"
	"sync"
	"time"

	"stuhfl_go/internal/protocol/stuhfl"
)

const DefaultReadTimeout = 20 * time.Millisecond

// Record is one request the simulator received.
type Record struct {
	Group   byte
	Code    byte
	Payload stuhfl.Record
	Raw     []byte
}

type txrx struct {
	txOutputLevel int8
	rxSensitivity int8
	antenna       uint8
	altInterval   uint16
}

// Reader implements transport.Port.
type Reader struct {
	mu          sync.Mutex
	readTimeout time.Duration
	closed      bool
	inbox       []byte
	out         []byte
	notify      chan struct{}

	requests []Record

	configs    map[byte]stuhfl.Record
	txrx       txrx
	startQ     uint8
	readTID    bool
	channels   []uint32
	tuned      bool
	tags       []*tag
	selects    []selectRule
	switchTo   uint8
	forced     map[uint16]uint16
	corrupt    bool
	drop       bool
	truncate   bool
	overReport int
}

func New(tags ...Tag) *Reader {
	r := &Reader{
		readTimeout: DefaultReadTimeout,
		notify:      make(chan struct{}, 1),
		configs:     make(map[byte]stuhfl.Record),
		txrx:        txrx{txOutputLevel: -2, rxSensitivity: 3, antenna: 1, altInterval: 1},
		startQ:      4,
		channels:    []uint32{865700},
		forced:      make(map[uint16]uint16),
	}
	for _, t := range tags {
		r.tags = append(r.tags, newTag(t))
	}
	return r
}

func (r *Reader) SetReadTimeout(d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.readTimeout = d
	return nil
}

// Read returns queued response bytes, or (0, nil) once the read timeout
// passes with nothing queued.
func (r *Reader) Read(p []byte) (int, error) {
	r.mu.Lock()
	deadline := time.Now().Add(r.readTimeout)
	r.mu.Unlock()

	for {
		r.mu.Lock()
		if r.closed {
			r.mu.Unlock()
			return 0, io.ErrClosedPipe
		}
		if len(r.out) > 0 {
			n := copy(p, r.out)
			r.out = r.out[n:]
			r.mu.Unlock()
			return n, nil
		}
		r.mu.Unlock()

		wait := time.Until(deadline)
		if wait <= 0 {
			return 0, nil
		}
		timer := time.NewTimer(wait)
		select {
		case <-r.notify:
		case <-timer.C:
		}
		timer.Stop()
	}
}

// Write accepts request bytes and queues one response per complete frame.
func (r *Reader) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return 0, io.ErrClosedPipe
	}

	r.inbox = append(r.inbox, p...)
	frames, remaining := stuhfl.ParseRequests(r.inbox)
	r.inbox = append(r.inbox[:0], remaining...)
	for _, f := range frames {
		payload, _ := stuhfl.Decode(f.Data)
		r.requests = append(r.requests, Record{Group: f.Group, Code: f.Code, Payload: payload, Raw: f.Raw})
		r.queue(r.respond(f.Group, f.Code, payload))
	}
	if len(r.out) > 0 {
		select {
		case r.notify <- struct{}{}:
		default:
		}
	}
	return len(p), nil
}

func (r *Reader) queue(packet []byte) {
	switch {
	case r.drop:
		r.drop = false
		return
	case r.corrupt:
		r.corrupt = false
		packet[len(packet)-1] ^= 0xFF
	case r.truncate:
		r.truncate = false
		packet = packet[:len(packet)/2]
	}
	r.out = append(r.out, packet...)
}

func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	select {
	case r.notify <- struct{}{}:
	default:
	}
	return nil
}

// Requests returns every request received so far.
func (r *Reader) Requests() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Record(nil), r.requests...)
}

// Count returns how many requests with this group and code were received.
func (r *Reader) Count(group, code byte) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, rec := range r.requests {
		if rec.Group == group && rec.Code == code {
			n++
		}
	}
	return n
}

func (r *Reader) LastRequest(group, code byte) (Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.requests) - 1; i >= 0; i-- {
		if r.requests[i].Group == group && r.requests[i].Code == code {
			return r.requests[i], true
		}
	}
	return Record{}, false
}

func (r *Reader) ClearRequests() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = nil
}

// ForceStatus makes every later request with this group and code fail
// with status and no side effects. Status zero removes the override.
func (r *Reader) ForceStatus(group, code byte, status uint16) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := uint16(group)<<8 | uint16(code)
	if status == stuhfl.StatusNone {
		delete(r.forced, key)
		return
	}
	r.forced[key] = status
}

// CorruptNextResponse flips the CRC of the next response.
func (r *Reader) CorruptNextResponse() {
	r.mu.Lock()
	r.corrupt = true
	r.mu.Unlock()
}

// DropNextResponse swallows the next response.
func (r *Reader) DropNextResponse() {
	r.mu.Lock()
	r.drop = true
	r.mu.Unlock()
}

// TruncateNextResponse sends only the first half of the next response.
func (r *Reader) TruncateNextResponse() {
	r.mu.Lock()
	r.truncate = true
	r.mu.Unlock()
}

// OverReport makes inventory rounds report extra tags beyond the
// requested tag list size.
func (r *Reader) OverReport(extra int) {
	r.mu.Lock()
	r.overReport = extra
	r.mu.Unlock()
}

// SwitchAntennaOnChannelList makes the next channel list write select
// antenna, as a profile switch on real hardware does.
func (r *Reader) SwitchAntennaOnChannelList(antenna uint8) {
	r.mu.Lock()
	r.switchTo = antenna
	r.mu.Unlock()
}

func (r *Reader) Tuned() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tuned
}

func (r *Reader) Antenna() uint8 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.txrx.antenna
}

// AddTag puts another tag into the field.
func (r *Reader) AddTag(t Tag) {
	r.mu.Lock()
	r.tags = append(r.tags, newTag(t))
	r.mu.Unlock()
}

func (r *Reader) TagCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tags)
}

// Memory returns a copy of one bank of the i-th tag.
func (r *Reader) Memory(i int, bank uint8) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i < 0 || i >= len(r.tags) || bank > bankUser {
		return nil
	}
	return append([]byte(nil), r.tags[i].banks[bank]...)
}
