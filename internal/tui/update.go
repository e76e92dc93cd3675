package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"

	"stuhfl_go/sdk"
)

const commandTimeout = 10 * time.Second

func NewModel(opts Options) Model {
	if opts.Setup == (sdk.Gen2Setup{}) {
		opts.Setup = DefaultSetup()
	}

	in := textinput.New()
	in.Placeholder = "E2 80 11 60 ..."
	in.CharLimit = 96
	in.Width = 48

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		opts:       opts,
		connecting: true,
		spinner:    sp,
		input:      in,
		status:     "Connecting to reader",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(connectCmd(m.opts), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.width > 20 {
			m.input.Width = m.width - 14
		}
		return m, nil

	case tea.KeyMsg:
		if m.inputMode != inputModeNone {
			return m.updateInput(msg)
		}
		return m.updateKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case readyMsg:
		m.connecting = false
		if msg.Err != nil {
			m.status = "Connect failed: " + msg.Err.Error()
			m.pushOutput("connect error: " + msg.Err.Error())
			return m, nil
		}
		m.reader = msg.Reader
		m.status = "Reader connected on " + msg.Reader.Conn().PortName()
		return m, nil

	case inventoryMsg:
		return m.onInventory(msg), nil

	case selectMsg:
		m.busy = false
		if msg.Err != nil || !msg.Status.OK() {
			m.status = "Select failed: " + errOrStatus(msg.Err, msg.Status)
			return m, nil
		}
		m.selected = msg.EPC
		m.status = "Selected " + sdk.HexID(msg.EPC)
		return m, nil

	case tidMsg:
		m.busy = false
		if msg.Err != nil || !msg.Status.OK() {
			m.status = "TID read failed: " + errOrStatus(msg.Err, msg.Status)
			return m, nil
		}
		m.status = "TID received"
		m.pushOutput("TID " + sdk.HexID(msg.Data))
		return m, nil

	case infoMsg:
		m.busy = false
		if msg.Err != nil {
			m.status = "Reader info failed: " + msg.Err.Error()
			return m, nil
		}
		m.status = "Reader info received"
		m.pushOutput(msg.Lines...)
		return m, nil

	case disconnectedMsg:
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "Q":
		m.quitting = true
		m.status = "Disconnecting"
		return m, disconnectCmd(m.reader)
	case "c":
		m.output = nil
		m.status = "Output cleared"
		return m, nil
	}

	if m.connecting || m.busy {
		return m, nil
	}
	if m.reader == nil {
		m.status = "Reader not connected"
		return m, nil
	}

	switch msg.String() {
	case "1":
		m.busy = true
		m.status = "Inventory running"
		return m, inventoryCmd(m.reader)
	case "2":
		m.inputMode = inputModeSelectEPC
		m.input.SetValue(firstEPCHex(m.lastEPCs))
		m.input.CursorEnd()
		m.status = "Enter EPC to select"
		return m, m.input.Focus()
	case "3":
		if len(m.selected) == 0 {
			m.status = "Select a tag first"
			return m, nil
		}
		m.busy = true
		m.status = "Reading TID"
		return m, readTIDCmd(m.reader)
	case "4":
		m.busy = true
		m.status = "Reading reader settings"
		return m, infoCmd(m.reader)
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.inputMode = inputModeNone
		m.input.Blur()
		m.status = "Select cancelled"
		return m, nil
	case tea.KeyEnter:
		epc, err := parseHexInput(m.input.Value())
		if err != nil {
			m.status = "Invalid EPC: " + err.Error()
			return m, nil
		}
		m.inputMode = inputModeNone
		m.input.Blur()
		m.busy = true
		m.status = "Selecting " + sdk.HexID(epc)
		return m, selectCmd(m.reader, epc)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) onInventory(msg inventoryMsg) Model {
	m.busy = false
	if msg.Err != nil {
		m.status = "Inventory failed: " + msg.Err.Error()
		m.pushOutput("inventory error: " + msg.Err.Error())
		return m
	}

	m.rounds++
	m.tagTotal += len(msg.Data.Tags)
	m.lastEPCs = make([][]byte, 0, len(msg.Data.Tags))
	for _, tag := range msg.Data.Tags {
		m.lastEPCs = append(m.lastEPCs, append([]byte(nil), tag.EPC...))
	}

	m.pushOutput(fmt.Sprintf("-- round %d: %d tags, %s, %s --", m.rounds, len(msg.Data.Tags), msg.Status, msg.Took.Round(time.Millisecond)))
	if dump := strings.TrimRight(sdk.FormatInventory(msg.Data), "\n"); dump != "" {
		m.pushOutput(strings.Split(dump, "\n")...)
	}
	if len(msg.Data.Tags) == 0 {
		m.status = "Inventory done: no tag in field"
	} else {
		m.status = fmt.Sprintf("Inventory done: %d tag reads", len(msg.Data.Tags))
	}
	return m
}

func (m *Model) pushOutput(lines ...string) {
	m.output = append(m.output, lines...)
	if len(m.output) > maxOutput {
		m.output = append([]string(nil), m.output[len(m.output)-maxOutput:]...)
	}
}

func connectCmd(opts Options) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		if opts.Dial == nil {
			return readyMsg{Err: errors.New("no reader configured")}
		}
		conn, err := opts.Dial(ctx)
		if err != nil {
			return readyMsg{Err: err}
		}
		reader, err := sdk.NewGen2Reader(ctx, conn, opts.Setup)
		if err != nil {
			_ = conn.Disconnect()
			return readyMsg{Err: err}
		}
		st, err := reader.Tune(ctx, opts.Setup.Algorithm)
		if err == nil && !st.OK() {
			err = errors.Errorf("tune: %s", st)
		}
		if err != nil {
			_ = conn.Disconnect()
			return readyMsg{Err: err}
		}
		return readyMsg{Reader: reader}
	}
}

func inventoryCmd(reader *sdk.Gen2Reader) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		start := time.Now()
		data, st, err := reader.InventoryRound(ctx)
		return inventoryMsg{Data: data, Status: st, Err: err, Took: time.Since(start)}
	}
}

func selectCmd(reader *sdk.Gen2Reader, epc []byte) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		st, err := reader.SelectEPC(ctx, epc)
		return selectMsg{EPC: epc, Status: st, Err: err}
	}
}

func readTIDCmd(reader *sdk.Gen2Reader) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		res, st, err := reader.Read(ctx, sdk.Gen2ReadInput{Bank: sdk.BankTID, ByteCount: tidWords * 2})
		return tidMsg{Data: res.Data, Status: st, Err: err}
	}
}

func infoCmd(reader *sdk.Gen2Reader) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		conn := reader.Conn()

		txrx, st, err := conn.GetTxRx(ctx)
		if err == nil && !st.OK() {
			err = errors.Errorf("get txrx: %s", st)
		}
		if err != nil {
			return infoMsg{Err: err}
		}
		channels, st, err := conn.GetChannelList(ctx)
		if err == nil && !st.OK() {
			err = errors.Errorf("get channel list: %s", st)
		}
		if err != nil {
			return infoMsg{Err: err}
		}
		return infoMsg{Lines: infoLines(txrx, channels)}
	}
}

func disconnectCmd(reader *sdk.Gen2Reader) tea.Cmd {
	return func() tea.Msg {
		if reader == nil {
			return disconnectedMsg{}
		}
		return disconnectedMsg{Err: reader.Conn().Disconnect()}
	}
}
