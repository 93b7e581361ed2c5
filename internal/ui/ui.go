package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/sptty/internal/models"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoadingView ViewState = iota
	ListView
	DoneView
)

// DeviceController lists devices and moves playback between them.
type DeviceController interface {
	Devices(ctx context.Context) ([]models.Device, error)
	TransferPlayback(ctx context.Context, deviceID string, play bool) error
}

// Model represents the device picker state.
type Model struct {
	ctx      context.Context
	view     ViewState
	player   DeviceController
	play     bool
	width    int
	height   int
	list     list.Model
	devices  []models.Device
	selected *models.Device
	err      error
	help     help.Model
	keys     keyMap
}

// NewModel creates a picker. When play is set, selecting a device also starts playback.
func NewModel(ctx context.Context, player DeviceController, play bool) *Model {
	return &Model{
		ctx:    ctx,
		view:   LoadingView,
		player: player,
		play:   play,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Selected returns the device playback was transferred to, if any.
func (m *Model) Selected() *models.Device {
	return m.selected
}

// Err returns the error that ended the picker, if any.
func (m *Model) Err() error {
	return m.err
}

// Init fetches the device list.
func (m *Model) Init() tea.Cmd {
	return m.fetchDevices()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.view == ListView {
			m.list.SetSize(msg.Width-4, msg.Height-6)
		}
		return m, nil

	case tea.KeyMsg:
		if m.view != ListView {
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		}
		return m.handleListKeys(msg)

	case Msg:
		return m.handleMsg(msg)
	}

	if m.view == ListView {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgDevicesFetched:
		data := msg.data.(devicesFetched)
		if data.err != nil {
			m.err = data.err
			m.view = DoneView
			return m, tea.Quit
		}

		m.devices = data.devices
		items := make([]list.Item, len(data.devices))
		for i, d := range data.devices {
			items[i] = deviceItem{device: d}
		}
		m.list = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.list.Title = "Spotify Connect Devices"
		m.list.SetShowHelp(false)
		m.list.SetSize(max(m.width-4, 20), max(m.height-6, 10))
		m.view = ListView
		return m, nil

	case MsgTransferComplete:
		data := msg.data.(transferComplete)
		m.view = DoneView
		if data.err != nil {
			m.err = data.err
		} else {
			device := data.device
			m.selected = &device
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter), key.Matches(msg, m.keys.play):
		item, ok := m.list.SelectedItem().(deviceItem)
		if !ok {
			return m, nil
		}
		play := m.play || key.Matches(msg, m.keys.play)
		m.view = LoadingView
		return m, m.transfer(item.device, play)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) fetchDevices() tea.Cmd {
	return func() tea.Msg {
		devices, err := m.player.Devices(m.ctx)
		return devicesFetchedMsg(devices, err)
	}
}

func (m *Model) transfer(device models.Device, play bool) tea.Cmd {
	return func() tea.Msg {
		err := m.player.TransferPlayback(m.ctx, device.ID, play)
		return transferCompleteMsg(device, err)
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case LoadingView:
		return styles.help.Render("Talking to Spotify...")
	case ListView:
		if len(m.devices) == 0 {
			return styles.warn.Render("No devices found. Start the agent or open Spotify on a device.\n\nPress q to quit")
		}
		return fmt.Sprintf("%s\n\n%s", m.list.View(), m.help.View(m.keys))
	case DoneView:
		if m.err != nil {
			return styles.err.Render(fmt.Sprintf("Error: %v", m.err)) + "\n"
		}
		if m.selected != nil {
			return styles.ok.Render("✓ Playback transferred to "+m.selected.Name) + "\n"
		}
	}
	return ""
}

// Run shows the picker until a device is chosen or the user quits.
//
// A nil device with a nil error means the user quit without choosing.
func Run(ctx context.Context, player DeviceController, play bool) (*models.Device, error) {
	m := NewModel(ctx, player, play)
	if _, err := tea.NewProgram(m, tea.WithContext(ctx)).Run(); err != nil {
		return nil, fmt.Errorf("device picker failed: %w", err)
	}
	return m.Selected(), m.Err()
}
