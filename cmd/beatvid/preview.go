package main

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	tea "charm.land/bubbletea/v2"

	"go.jacobcolvin.com/beatvid/effect"
	"go.jacobcolvin.com/beatvid/frame"
	"go.jacobcolvin.com/beatvid/log"
	"go.jacobcolvin.com/beatvid/scene"
	"go.jacobcolvin.com/beatvid/settings"
)

// The preview renders effects on a downscaled canvas to keep up with the
// frame rate.
var previewSize = image.Pt(scene.Width/4, scene.Height/4)

const previewHelp = "e effect  +/- duration  b background  f foreground  w watermark  r restart  space pause  q quit"

func newPreviewCmd(a *app) *cobra.Command {
	sf := &sceneFlags{}

	cmd := &cobra.Command{
		Use:   "preview [flags]",
		Short: "Play the effect in the terminal",
		Long: `Preview plays the scene and effect at 30 frames per second using colored
half-block characters. Keys change the effect and scene while it plays.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.preview(cmd, sf)
		},
	}

	sf.register(cmd.Flags())

	err := sf.registerCompletions(cmd)
	if err != nil {
		fmt.Fprintf(a.stderr, "register completions: %v\n", err)
	}

	return cmd
}

func (a *app) preview(cmd *cobra.Command, sf *sceneFlags) error {
	s, err := sf.apply(cmd, a.settingsPath)
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so logs go to the status line instead.
	pub := log.NewPublisher(log.WithBufferSize(16))
	defer pub.Close() //nolint:errcheck // Always nil.

	handler, err := a.logCfg.NewHandler(pub)
	if err != nil {
		return err
	}

	m := newPreviewModel(s, sf.unlocked, slog.New(handler), pub.Subscribe())

	cols, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if err == nil {
		m.cols, m.rows = cols, rows
	}

	err = m.rebuild()
	if err != nil {
		return err
	}

	_, err = tea.NewProgram(m, tea.WithContext(cmd.Context())).Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running preview: %w", err)
	}

	return sf.saveSettings(m.settings, a.settingsPath, a.logger)
}

type (
	tickMsg struct{}
	logMsg  string
)

type previewModel struct {
	logger   *slog.Logger
	session  *frame.Session
	settings *settings.File
	sub      *log.Subscription
	frame    *image.RGBA
	logLine  string
	buf      strings.Builder
	cols     int
	rows     int
	index    int
	unlocked bool
	paused   bool
}

func newPreviewModel(s *settings.File, unlocked bool, logger *slog.Logger, sub *log.Subscription) *previewModel {
	return &previewModel{
		logger:   logger,
		settings: s,
		sub:      sub,
		unlocked: unlocked,
		cols:     80,
		rows:     24,
	}
}

// rebuild composes the scene again and starts a new session, so playback
// restarts at frame zero.
func (m *previewModel) rebuild() error {
	sess, err := sessionFor(m.settings, m.unlocked, previewSize, m.logger)
	if err != nil {
		return err
	}

	m.session = sess
	m.frame = nil

	return nil
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(effect.FPS), func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m *previewModel) waitLog() tea.Cmd {
	return func() tea.Msg {
		entry, ok := <-m.sub.C()
		if !ok {
			return nil
		}

		return logMsg(entry)
	}
}

// Init starts playback and log delivery.
func (m *previewModel) Init() tea.Cmd {
	return tea.Batch(tick(), m.waitLog())
}

// Update handles keys, resizes, ticks and log lines.
func (m *previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return m, m.key(msg.String())

	case tea.WindowSizeMsg:
		m.cols, m.rows = msg.Width, msg.Height

	case tickMsg:
		if !m.paused {
			m.advance()
		}

		return m, tick()

	case logMsg:
		m.logLine = strings.TrimSpace(string(msg))

		return m, m.waitLog()
	}

	return m, nil
}

func (m *previewModel) key(k string) tea.Cmd {
	s := m.settings

	switch k {
	case "q", "esc", "ctrl+c":
		return tea.Quit

	case "space", " ":
		m.paused = !m.paused

		return nil

	case "r":
		m.session.Reset()

		return nil

	case "e":
		s.Effect.Type = cycle(s.Effect.Type, len(effect.Kinds()))

	case "+", "=":
		s.Effect.Duration = stepDuration(s.Effect.Duration, 1)

	case "-":
		s.Effect.Duration = stepDuration(s.Effect.Duration, -1)

	case "b":
		s.Background.Type = cycle(s.Background.Type, len(scene.GetAllBackgroundStrings()))
		if s.Background.Type == int(scene.BackgroundCustomColor) && s.Background.Color == "" {
			s.Background.Color = "#1e90ff"
		}

	case "f":
		s.Foreground.Type = cycle(s.Foreground.Type, len(scene.GetAllForegroundStrings()))

	case "w":
		s.ShowWatermark = !s.ShowWatermark

	default:
		return nil
	}

	err := m.rebuild()
	if err != nil {
		m.logger.Error("rebuilding scene", slog.Any("err", err))
	}

	return nil
}

func (m *previewModel) advance() {
	if m.session == nil {
		return
	}

	img, n, err := m.session.Next()
	if err != nil {
		m.logger.Debug("frame unavailable", slog.Int("frame", n), slog.Any("err", err))

		return
	}

	m.index = n
	m.frame = fitCells(img, m.cols, max(m.rows-2, 1))
}

// View draws the current frame and the status lines.
func (m *previewModel) View() tea.View {
	m.buf.Reset()

	if m.frame != nil {
		drawHalfBlocks(&m.buf, m.frame)
	}

	sel := effect.None()
	if m.session != nil {
		sel = m.session.Selector()
	}

	status := fmt.Sprintf("%s  frame %d  %s", sel, m.index, previewHelp)
	if m.paused {
		status = "paused  " + status
	}

	m.buf.WriteString(truncate(status, m.cols))
	m.buf.WriteByte('\n')
	m.buf.WriteString(truncate(m.logLine, m.cols))

	v := tea.NewView(m.buf.String())
	v.AltScreen = true

	return v
}

// cycle returns the discriminant after v among n values. Unknown values
// restart at zero.
func cycle(v, n int) int {
	if v < 0 || v >= n {
		return 0
	}

	return (v + 1) % n
}

func stepDuration(d, delta int) int {
	if d <= 0 {
		d = effect.DefaultDuration
	}

	return min(max(d+delta, effect.MinDuration), effect.MaxDuration)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}

	return string(r[:n])
}
