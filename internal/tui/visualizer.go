// SPDX-License-Identifier: MIT
/*
Package tui renders frames in the terminal with Bubble Tea. It is a
best-effort preview of the dot field: the pipeline never blocks on the
terminal, frames that arrive while one is being drawn are dropped.
*/
package tui

import (
	"fmt"
	"math"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"vortex/internal/visual"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

// Sink adapts the frame stream to the Bubble Tea event loop. Emit clones
// the frame (the pipeline reuses its buffer) and drops it if the model
// has not consumed the previous one yet.
type Sink struct {
	frames chan *visual.Frame
	closed int32
}

// NewSink creates a sink with a small frame backlog.
func NewSink() *Sink {
	return &Sink{frames: make(chan *visual.Frame, 2)}
}

// Emit hands a frame to the model. Never blocks; a slow terminal just
// sees fewer frames.
func (s *Sink) Emit(frame *visual.Frame) error {
	if atomic.LoadInt32(&s.closed) == 1 {
		return nil
	}
	select {
	case s.frames <- frame.Clone():
	default:
	}
	return nil
}

// Close marks the sink dead. The channel is left open so a concurrent
// Emit cannot panic; the model simply stops receiving.
func (s *Sink) Close() error {
	atomic.StoreInt32(&s.closed, 1)
	return nil
}

type keyMap struct {
	Quit key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(key.WithKeys("q", "esc", "ctrl+c")),
}

type frameMsg struct {
	frame *visual.Frame
}

// VisualizerModel is the Bubble Tea model that plots each frame's dots
// onto a character grid.
type VisualizerModel struct {
	sink        *Sink
	worldRadius float64 // dot coordinate magnitude mapped to the grid edge

	frame  *visual.Frame
	width  int
	height int
	ready  bool
}

// NewVisualizerModel creates the model. worldRadius should be the
// mapper's maximum dot radius so the whole pattern fits the grid.
func NewVisualizerModel(sink *Sink, worldRadius float64) VisualizerModel {
	if worldRadius <= 0 {
		worldRadius = 1
	}
	return VisualizerModel{sink: sink, worldRadius: worldRadius}
}

// Init starts listening for frames.
func (m VisualizerModel) Init() tea.Cmd {
	return m.waitForFrame()
}

func (m VisualizerModel) waitForFrame() tea.Cmd {
	return func() tea.Msg {
		return frameMsg{frame: <-m.sink.frames}
	}
}

// Update handles input, resizes and incoming frames.
func (m VisualizerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case frameMsg:
		m.frame = msg.frame
		return m, m.waitForFrame()

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			return m, tea.Quit
		}
	}
	return m, nil
}

// View renders the current frame.
func (m VisualizerModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	title := titleStyle.Render("vortex")
	help := helpStyle.Render("q: Quit")

	gridHeight := m.height - 4
	if gridHeight < 3 || m.width < 3 {
		return fmt.Sprintf("%s\n\n%s", title, help)
	}

	var status string
	if m.frame != nil {
		status = statusStyle.Render(fmt.Sprintf(
			"frame %d  loudness %5.1f dB  rotation %4.2f rad  dots %d",
			m.frame.Seq, m.frame.Loudness, m.frame.Rotation, len(m.frame.Dots)))
	} else {
		status = statusStyle.Render("waiting for audio...")
	}

	return fmt.Sprintf("%s  %s\n%s\n%s", title, status, m.renderGrid(m.width, gridHeight), help)
}

// renderGrid plots the dots onto a width x height cell grid. Terminal
// cells are roughly twice as tall as wide, so the vertical axis is
// compressed to keep the pattern circular.
func (m VisualizerModel) renderGrid(width, height int) string {
	type cell struct {
		set   bool
		big   bool
		color string
	}
	grid := make([]cell, width*height)

	if m.frame != nil {
		cx := float64(width) / 2
		cy := float64(height) / 2
		scaleX := cx / m.worldRadius
		scaleY := cy / m.worldRadius

		for i := range m.frame.Dots {
			d := &m.frame.Dots[i]
			x := int(math.Round(cx + d.X*scaleX))
			y := int(math.Round(cy + d.Y*scaleY))
			if x < 0 || x >= width || y < 0 || y >= height {
				continue
			}
			c := &grid[y*width+x]
			// Larger dots win the cell.
			if !c.set || d.Size > 4 {
				c.set = true
				c.big = d.Size > 4
				c.color = fmt.Sprintf("#%02x%02x%02x", d.R, d.G, d.B)
			}
		}
	}

	var sb strings.Builder
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := grid[y*width+x]
			if !c.set {
				sb.WriteByte(' ')
				continue
			}
			glyph := "•"
			if c.big {
				glyph = "●"
			}
			sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c.color)).Render(glyph))
		}
		if y < height-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// StartVisualizer runs the TUI until the user quits or the program is
// stopped from outside via the returned program handle.
func StartVisualizer(sink *Sink, worldRadius float64) *tea.Program {
	return tea.NewProgram(
		NewVisualizerModel(sink, worldRadius),
		tea.WithAltScreen(),
	)
}
