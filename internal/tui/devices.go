// SPDX-License-Identifier: MIT
// Package tui provides the interactive device picker for the devices
// command.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"lightwave/internal/capture"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#5A56E0")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5A56E0")).
			Bold(true)
)

// DevicePickerModel is the Bubble Tea model for selecting a capture device.
type DevicePickerModel struct {
	devices       []capture.Device
	selectedIndex int
	viewport      viewport.Model
	ready         bool
	err           error

	// ChosenID is the host device id confirmed with enter, or -1.
	ChosenID int
}

// NewDevicePicker returns a model with no device chosen.
func NewDevicePicker() DevicePickerModel {
	return DevicePickerModel{ChosenID: -1}
}

type devicesMsg struct {
	devices []capture.Device
}

type errMsg struct {
	err error
}

func (m DevicePickerModel) Init() tea.Cmd {
	return fetchDevices
}

func fetchDevices() tea.Msg {
	if err := capture.Initialize(); err != nil {
		return errMsg{err}
	}
	defer capture.Terminate()

	devices, err := capture.HostDevices()
	if err != nil {
		return errMsg{err}
	}

	inputs := devices[:0:0]
	for _, d := range devices {
		if d.MaxInputChannels > 0 {
			inputs = append(inputs, d)
		}
	}
	return devicesMsg{inputs}
}

func (m DevicePickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-4)
			m.ready = true
			if len(m.devices) > 0 {
				m.viewport.SetContent(m.renderDevices())
			}
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 4
		}

	case devicesMsg:
		m.devices = msg.devices
		if m.ready {
			m.viewport.SetContent(m.renderDevices())
		}

	case errMsg:
		m.err = msg.err
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.selectedIndex > 0 {
				m.selectedIndex--
				m.viewport.SetContent(m.renderDevices())
			}
		case "down", "j":
			if m.selectedIndex < len(m.devices)-1 {
				m.selectedIndex++
				m.viewport.SetContent(m.renderDevices())
			}
		case "enter":
			if len(m.devices) > 0 {
				m.ChosenID = m.devices[m.selectedIndex].ID
			}
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m DevicePickerModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n", m.err)
	}
	if !m.ready {
		return "Loading devices..."
	}

	header := titleStyle.Render("Capture Devices")
	footer := infoStyle.Render("up/down: select - enter: confirm - q: quit")
	return fmt.Sprintf("%s\n%s\n%s", header, m.viewport.View(), footer)
}

func (m DevicePickerModel) renderDevices() string {
	if len(m.devices) == 0 {
		return "No input devices found."
	}

	var b strings.Builder
	for i, d := range m.devices {
		line := fmt.Sprintf("[%d] %s (in=%d, %.0f Hz)",
			d.ID, d.Name, d.MaxInputChannels, d.DefaultSampleRate)
		if i == m.selectedIndex {
			b.WriteString(highlightStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// PickDevice runs the picker and returns the chosen host device id, or -1
// when the user quit without choosing.
func PickDevice() (int, error) {
	program := tea.NewProgram(NewDevicePicker(), tea.WithAltScreen())
	final, err := program.Run()
	if err != nil {
		return -1, err
	}
	if m, ok := final.(DevicePickerModel); ok {
		if m.err != nil {
			return -1, m.err
		}
		return m.ChosenID, nil
	}
	return -1, nil
}
