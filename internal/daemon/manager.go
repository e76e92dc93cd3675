package daemon

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"stuhfl_go/internal/cache"
	"stuhfl_go/internal/config"
	"stuhfl_go/sdk"
)

// ErrBusy is returned when a one-shot round and the scan loop would
// share the reader.
var ErrBusy = errors.New("inventory running")

// TagEvent is one tag sighting from an inventory round.
type TagEvent struct {
	EPC     string    `json:"epc"`
	TID     string    `json:"tid,omitempty"`
	PC      string    `json:"pc"`
	Antenna int       `json:"antenna"`
	RSSI    int       `json:"rssi"`
	AGC     int       `json:"agc"`
	Round   uint64    `json:"round"`
	First   bool      `json:"first"`
	At      time.Time `json:"at"`
}

type TagHandler func(TagEvent)

type Status struct {
	Running      bool      `json:"running"`
	Connected    bool      `json:"connected"`
	Port         string    `json:"port"`
	Profile      string    `json:"profile"`
	Antenna      int       `json:"antenna"`
	Algorithm    string    `json:"algorithm"`
	Tuning       string    `json:"tuning"`
	Frequency    uint32    `json:"frequency_khz"`
	Rounds       uint64    `json:"rounds"`
	TagReads     uint64    `json:"tag_reads"`
	UniqueSeen   int       `json:"unique_seen"`
	LastTagEPC   string    `json:"last_tag_epc"`
	LastTagAt    time.Time `json:"last_tag_at"`
	LastStatus   string    `json:"last_status"`
	LastError    string    `json:"last_error"`
	LastStartAt  time.Time `json:"last_start_at"`
	RestartCount uint64    `json:"restart_count"`
}

// Manager runs the inventory loop in the background and keeps its status.
type Manager struct {
	cfg   config.Config
	dial  Dialer
	seen  *cache.Store
	onTag TagHandler

	dialMu sync.Mutex

	mu      sync.Mutex
	running bool
	oneShot int
	cancel  context.CancelFunc
	stop    *sdk.StopToken
	done    chan struct{}
	conn    *sdk.Conn
	status  Status
}

func New(cfg config.Config, dial Dialer, onTag TagHandler) *Manager {
	return &Manager{
		cfg:   cfg,
		dial:  dial,
		seen:  cache.New(),
		onTag: onTag,
		status: Status{
			Profile:   cfg.Profile,
			Antenna:   cfg.Antenna,
			Algorithm: cfg.TuneAlgorithm,
			Tuning:    sdk.Untuned.String(),
		},
	}
}

func (m *Manager) SetTagHandler(onTag TagHandler) {
	m.mu.Lock()
	m.onTag = onTag
	m.mu.Unlock()
}

func (m *Manager) Start(parent context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return nil
	}
	if m.oneShot > 0 {
		m.mu.Unlock()
		return ErrBusy
	}
	ctx, cancel := context.WithCancel(parent)
	m.running = true
	m.cancel = cancel
	m.stop = sdk.NewStopToken()
	m.done = make(chan struct{})
	m.status.Running = true
	m.status.LastError = ""
	m.status.LastStartAt = time.Now()
	stop, done := m.stop, m.done
	m.mu.Unlock()

	go m.scanLoop(ctx, stop, done)
	return nil
}

// Stop ends the loop after the current round and waits for it.
func (m *Manager) Stop() {
	m.mu.Lock()
	cancel, stop, done, conn := m.cancel, m.stop, m.done, m.conn
	m.cancel = nil
	m.mu.Unlock()

	if stop != nil {
		stop.Stop()
	}
	if conn != nil {
		conn.StopRunner()
	}
	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Close stops the loop and releases the reader.
func (m *Manager) Close() error {
	m.Stop()
	m.dialMu.Lock()
	defer m.dialMu.Unlock()
	m.mu.Lock()
	conn := m.conn
	m.conn = nil
	m.status.Connected = false
	m.status.Port = ""
	m.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Disconnect()
}

func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.status
	st.UniqueSeen = m.seen.Size()
	return st
}

func (m *Manager) StatusText() string {
	st := m.Status()
	return fmt.Sprintf(
		"running=%v connected=%v port=%s\nprofile=%s antenna=%d tune=%s tuning=%s freq=%dkHz\nrounds=%d reads=%d seen=%d last_tag=%s at=%s\nrestarts=%d last_status=%s last_error=%s",
		st.Running,
		st.Connected,
		fallback(st.Port, "-"),
		fallback(st.Profile, "-"),
		st.Antenna,
		fallback(st.Algorithm, "-"),
		fallback(st.Tuning, "-"),
		st.Frequency,
		st.Rounds,
		st.TagReads,
		st.UniqueSeen,
		fallback(trimEPC(st.LastTagEPC), "-"),
		formatTime(st.LastTagAt),
		st.RestartCount,
		fallback(st.LastStatus, "-"),
		fallback(st.LastError, "-"),
	)
}

// Seen lists every EPC observed since the last reset.
func (m *Manager) Seen() []cache.Entry {
	return m.seen.Snapshot()
}

func (m *Manager) ResetSeen() {
	m.seen.Reset()
}

// InventoryOnce runs a single round on an idle manager. Start is refused
// until it returns.
func (m *Manager) InventoryOnce(ctx context.Context) (*sdk.InventoryData, sdk.Status, error) {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return nil, 0, ErrBusy
	}
	m.oneShot++
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.oneShot--
		m.mu.Unlock()
	}()

	conn, err := m.ensureConn(ctx)
	if err != nil {
		m.setError(err)
		return nil, 0, err
	}

	data := sdk.NewInventoryData(m.cfg.TagListSize)
	st, err := conn.Inventory(ctx, sdk.ProtocolGen2, sdk.DefaultInventoryOption(), data)
	if err != nil {
		m.setError(err)
		if sdk.IsTransport(err) {
			m.dropConn()
		}
		return nil, st, err
	}
	m.recordRound(data, st)
	return data, st, nil
}

func (m *Manager) scanLoop(ctx context.Context, stop *sdk.StopToken, done chan struct{}) {
	defer close(done)
	defer m.finishStopped()

	retry := m.cfg.RetryDelay
	if retry < 500*time.Millisecond {
		retry = 2 * time.Second
	}

	for {
		if ctx.Err() != nil || stop.Stopped() {
			return
		}

		conn, err := m.ensureConn(ctx)
		if err != nil {
			m.setError(err)
			log.Printf("[daemon] connect failed: %v", err)
			if !sleepWithContext(ctx, retry) {
				return
			}
			continue
		}

		opts := m.cfg.RunnerOptions()
		opts.Stop = stop
		st, err := conn.RunInventory(ctx, opts, func(data *sdk.InventoryData) {
			m.recordRound(data, sdk.StatusNone)
		}, nil)
		m.setLastStatus(st)

		switch {
		case ctx.Err() != nil || stop.Stopped():
			return
		case err != nil:
			m.setError(err)
			log.Printf("[daemon] inventory failed: %v", err)
			if sdk.IsTransport(err) || sdk.IsProtocol(err) {
				m.dropConn()
			}
		case !st.Recoverable():
			m.setError(errors.Errorf("inventory ended with %s", st))
			log.Printf("[daemon] inventory ended with %s", st)
		default:
			log.Printf("[daemon] inventory finished after %d rounds", m.cfg.Rounds)
			return
		}

		if !sleepWithContext(ctx, retry) {
			return
		}
		m.mu.Lock()
		m.status.RestartCount++
		m.mu.Unlock()
	}
}

// ensureConn dials and configures the reader on first use. Concurrent
// callers share one dial.
func (m *Manager) ensureConn(ctx context.Context) (*sdk.Conn, error) {
	m.dialMu.Lock()
	defer m.dialMu.Unlock()

	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()
	if conn != nil {
		return conn, nil
	}

	conn, err := m.dial(ctx)
	if err != nil {
		return nil, err
	}
	st, err := conn.ConfigureGen2(ctx, m.cfg.Gen2Setup())
	if err == nil && !st.OK() {
		err = errors.Errorf("status %s", st)
	}
	if err != nil {
		_ = conn.Disconnect()
		return nil, errors.Wrap(err, "configure reader")
	}
	log.Printf("[daemon] reader ready on %s", conn.PortName())

	m.mu.Lock()
	m.conn = conn
	m.status.Connected = true
	m.status.Port = conn.PortName()
	m.status.LastError = ""
	m.mu.Unlock()
	return conn, nil
}

func (m *Manager) dropConn() {
	m.mu.Lock()
	conn := m.conn
	m.conn = nil
	m.status.Connected = false
	m.status.Port = ""
	m.mu.Unlock()
	if conn != nil {
		_ = conn.Disconnect()
	}
}

func (m *Manager) recordRound(data *sdk.InventoryData, st sdk.Status) {
	now := time.Now()
	events := make([]TagEvent, 0, len(data.Tags))

	m.mu.Lock()
	m.status.Rounds++
	round := m.status.Rounds
	m.status.Tuning = data.Statistics.TuningStatus.String()
	m.status.Frequency = data.Statistics.Frequency
	if st != sdk.StatusNone {
		m.status.LastStatus = st.String()
	}
	for _, tag := range data.Tags {
		epc := sdk.HexID(tag.EPC)
		if epc == "" {
			continue
		}
		rssi := int(tag.RSSILinI)
		ev := TagEvent{
			EPC:     epc,
			TID:     sdk.HexID(tag.TID),
			PC:      sdk.HexID(tag.PC),
			Antenna: int(tag.Antenna),
			RSSI:    rssi,
			AGC:     int(tag.AGC),
			Round:   round,
			First:   m.seen.Observe(epc, rssi, now),
			At:      now,
		}
		m.status.TagReads++
		m.status.LastTagEPC = epc
		m.status.LastTagAt = now
		events = append(events, ev)
	}
	onTag := m.onTag
	m.mu.Unlock()

	if onTag == nil {
		return
	}
	for _, ev := range events {
		onTag(ev)
	}
}

func (m *Manager) setLastStatus(st sdk.Status) {
	m.mu.Lock()
	m.status.LastStatus = st.String()
	m.mu.Unlock()
}

func (m *Manager) setError(err error) {
	if err == nil {
		return
	}
	m.mu.Lock()
	m.status.LastError = err.Error()
	m.mu.Unlock()
}

func (m *Manager) finishStopped() {
	m.mu.Lock()
	m.running = false
	m.cancel = nil
	m.stop = nil
	m.done = nil
	m.status.Running = false
	m.mu.Unlock()
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func fallback(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func trimEPC(epc string) string {
	if len(epc) <= 24 {
		return epc
	}
	return epc[:24] + "..."
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format(time.RFC3339)
}
