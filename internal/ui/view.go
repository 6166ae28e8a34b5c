// ABOUTME: Rendering for the channel rack TUI
// ABOUTME: Draws transport header, step grid with playhead and status line
package ui

import (
	"fmt"
	"strings"

	"github.com/Resonate-Protocol/stepseq-go/pkg/sequencer"
	"github.com/charmbracelet/lipgloss"
)

const nameWidth = 14

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	stepOnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	stepOffStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	playheadStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("57"))

	cursorStyle = lipgloss.NewStyle().
			Reverse(true)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().Faint(true)
)

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderRack())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

// renderHeader renders transport state
func (m Model) renderHeader() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("stepseq"))
	if m.name != "" {
		b.WriteString(valueStyle.Render(" · " + m.name))
	}
	b.WriteString("\n")

	state := "■ Stopped"
	if m.state.Playing {
		state = "▶ Playing"
	}
	b.WriteString(headerStyle.Render("Transport: "))
	b.WriteString(valueStyle.Render(state))
	b.WriteString(headerStyle.Render("  BPM: "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%d", m.state.BPM)))
	b.WriteString(headerStyle.Render("  Steps: "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%d", m.state.Steps)))

	if m.port > 0 {
		b.WriteString(headerStyle.Render("  Remote: "))
		b.WriteString(valueStyle.Render(fmt.Sprintf(":%d (%d connected)", m.port, m.remotes)))
	}
	return b.String()
}

// renderRack renders one line per channel
func (m Model) renderRack() string {
	if len(m.state.Channels) == 0 {
		return valueStyle.Render("  No channels. Press 'a' to add one.") + "\n"
	}

	var b strings.Builder
	for i, ch := range m.state.Channels {
		b.WriteString(m.renderChannel(i, ch))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderChannel(i int, ch sequencer.ChannelState) string {
	name := fmt.Sprintf("%-*s", nameWidth, truncate(ch.Name, nameWidth))
	marker := "  "
	if i == m.row {
		marker = "> "
		name = selectedStyle.Render(name)
	}

	var steps strings.Builder
	for s, on := range ch.Steps {
		if s > 0 && s%4 == 0 {
			steps.WriteString(" ")
		}
		steps.WriteString(m.renderStep(i, s, on))
	}

	sample := ch.Sample
	if sample == "" {
		sample = "(no sample)"
	}

	return fmt.Sprintf("%s%s %s  vol [%s] pitch %+3d  %s",
		marker, name, steps.String(),
		renderBar(ch.Volume, 10), ch.Pitch,
		valueStyle.Render(truncate(sample, 24)))
}

func (m Model) renderStep(row, step int, on bool) string {
	cell := stepOffStyle.Render("·")
	if on {
		cell = stepOnStyle.Render("■")
	}

	switch {
	case row == m.row && step == m.col:
		return cursorStyle.Render(cell)
	case m.state.Playing && step == m.state.Playhead:
		return playheadStyle.Render(cell)
	}
	return cell
}

// renderStatus renders the prompt or the last message
func (m Model) renderStatus() string {
	if m.prompt != promptNone {
		return m.input.View()
	}
	if m.message == "" {
		return ""
	}
	if m.isError {
		return errorStyle.Render(m.message)
	}
	return valueStyle.Render(m.message)
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	if m.prompt != promptNone {
		return helpStyle.Render("enter:Confirm  esc:Cancel")
	}
	return helpStyle.Render("space:Play/Stop  ←→↑↓:Move  enter:Toggle  a:Add  D:Delete  +/-:BPM  [/]:Volume  ,/.:Pitch  o:Load  e:Export  q:Quit")
}

// Utility functions
func renderBar(value float64, width int) string {
	filled := int(value*float64(width) + 0.5)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}
