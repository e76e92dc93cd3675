package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"

	"stuhfl_go/internal/daemon"
	"stuhfl_go/sdk"
)

type inputMode int

const (
	inputModeNone inputMode = iota
	inputModeSelectEPC
)

type menuItem struct {
	Key   string
	Label string
	Desc  string
}

var mainMenu = []menuItem{
	{Key: "1", Label: "Inventory", Desc: "Run one Gen2 inventory round"},
	{Key: "2", Label: "Select EPC", Desc: "Restrict tag access to one EPC"},
	{Key: "3", Label: "Read TID", Desc: "Read TID words of the selected tag"},
	{Key: "4", Label: "Reader Info", Desc: "Show TxRx and channel list"},
	{Key: "c", Label: "Clear", Desc: "Clear the output pane"},
	{Key: "q", Label: "Quit", Desc: "Disconnect and exit"},
}

const (
	tidWords  = 6
	maxOutput = 400
)

// Options wires the model to a reader.
type Options struct {
	Dial  daemon.Dialer
	Setup sdk.Gen2Setup
}

// DefaultSetup is the fixed menu configuration: one antenna, hopping on,
// fast tune and a non-adaptive Q.
func DefaultSetup() sdk.Gen2Setup {
	return sdk.Gen2Setup{
		Antenna:     sdk.Antenna1,
		SingleTag:   true,
		FreqHopping: true,
		Algorithm:   sdk.TuneFast,
	}
}

type readyMsg struct {
	Reader *sdk.Gen2Reader
	Err    error
}

type inventoryMsg struct {
	Data   *sdk.InventoryData
	Status sdk.Status
	Err    error
	Took   time.Duration
}

type selectMsg struct {
	EPC    []byte
	Status sdk.Status
	Err    error
}

type tidMsg struct {
	Data   []byte
	Status sdk.Status
	Err    error
}

type infoMsg struct {
	Lines []string
	Err   error
}

type disconnectedMsg struct {
	Err error
}

// Model is the app state.
type Model struct {
	opts   Options
	reader *sdk.Gen2Reader

	connecting bool
	busy       bool
	quitting   bool
	spinner    spinner.Model
	input      textinput.Model
	inputMode  inputMode

	status string
	output []string

	rounds   int
	tagTotal int
	lastEPCs [][]byte
	selected []byte

	width  int
	height int
}
