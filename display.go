package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gosuri/uilive"
	"github.com/mattn/go-isatty"
)

// view is everything the display shows. Position 0 means no beat has sounded
// since the last start.
type view struct {
	Tempo     int
	TempoName string
	Beats     int
	Position  int
	Running   bool
}

type theme struct {
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Dim     lipgloss.Color
}

var defaultTheme = theme{
	Primary: lipgloss.Color("#00ff9f"),
	Accent:  lipgloss.Color("#ff5f87"),
	Dim:     lipgloss.Color("#6e7681"),
}

type styles struct {
	Tempo   lipgloss.Style
	Name    lipgloss.Style
	Accent  lipgloss.Style
	Beat    lipgloss.Style
	Rest    lipgloss.Style
	Running lipgloss.Style
	Stopped lipgloss.Style
	Help    lipgloss.Style
}

func newStyles(t theme) styles {
	return styles{
		Tempo:   lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Name:    lipgloss.NewStyle().Italic(true),
		Accent:  lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		Beat:    lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Rest:    lipgloss.NewStyle().Foreground(t.Dim),
		Running: lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Stopped: lipgloss.NewStyle().Foreground(t.Dim),
		Help:    lipgloss.NewStyle().Foreground(t.Dim),
	}
}

const helpLine = "space play/stop · ↑↓ bpm · pgup/pgdn ±10 · ←→ beats · q quit"

func (st styles) render(v view) string {
	state := st.Stopped.Render("■ stopped")
	if v.Running {
		state = st.Running.Render("▶ playing")
	}

	position := "-"
	if v.Position > 0 {
		position = fmt.Sprint(v.Position)
	}

	markers := make([]string, 0, v.Beats)
	for i := 1; i <= v.Beats; i++ {
		switch {
		case i == v.Position && i == 1:
			markers = append(markers, st.Accent.Render("●"))
		case i == v.Position:
			markers = append(markers, st.Beat.Render("●"))
		default:
			markers = append(markers, st.Rest.Render("○"))
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "  %s bpm  %s   %s\n", st.Tempo.Render(fmt.Sprint(v.Tempo)), st.Name.Render(v.TempoName), state)
	fmt.Fprintf(&b, "  beat %s / %d   %s\n", position, v.Beats, strings.Join(markers, " "))
	fmt.Fprintf(&b, "  %s\n", st.Help.Render(helpLine))
	return b.String()
}

// plainLine is the single-line form used when output is not a terminal.
func plainLine(v view) string {
	state := "stopped"
	if v.Running {
		state = "playing"
	}
	if v.Position == 0 {
		return fmt.Sprintf("%s %d bpm (%s) %d beats", state, v.Tempo, v.TempoName, v.Beats)
	}
	kind := "beat"
	if v.Position == 1 {
		kind = "accent"
	}
	return fmt.Sprintf("%s %d/%d %d bpm (%s)", kind, v.Position, v.Beats, v.Tempo, v.TempoName)
}

type display interface {
	Show(v view) error
	Close() error
}

// liveDisplay redraws the frame in place.
type liveDisplay struct {
	w      *uilive.Writer
	styles styles
}

func (d *liveDisplay) Show(v view) error {
	fmt.Fprint(d.w, d.styles.render(v))
	return d.w.Flush()
}

func (d *liveDisplay) Close() error {
	return d.w.Flush()
}

// lineDisplay prints one line per change.
type lineDisplay struct {
	out  io.Writer
	last string
}

func (d *lineDisplay) Show(v view) error {
	line := plainLine(v)
	if line == d.last {
		return nil
	}
	d.last = line
	_, err := fmt.Fprintln(d.out, line)
	return err
}

func (d *lineDisplay) Close() error { return nil }

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func newDisplay(out *os.File) display {
	if !isTerminal(out) {
		return &lineDisplay{out: out}
	}
	w := uilive.New()
	w.Out = out
	return &liveDisplay{w: w, styles: newStyles(defaultTheme)}
}
