package tui

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"github.com/specflow-dev/specflow/internal/progress"
)

// watchDebounce collapses save bursts into one reload; editors and the
// engine's atomic writes can fire several events per save.
const watchDebounce = 100 * time.Millisecond

type fileChangedMsg struct{}

type reloadMsg struct{}

type watchErrMsg struct{ err error }

type watchClosedMsg struct{}

// WatchModel is the live progress view behind `specflow status --watch`.
// It watches the spec's progress file and re-renders on every save.
type WatchModel struct {
	specName     string
	progressPath string
	watcher      *fsnotify.Watcher
	spinner      spinner.Model
	status       SpecStatus
	err          error
	pending      bool
	quitting     bool
}

// NewWatch builds the watch model and starts watching the directory
// holding the progress file. The directory is watched rather than the
// file because progress saves are atomic renames, which would orphan a
// watch on the file itself.
func NewWatch(specName, progressPath string) (WatchModel, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return WatchModel{}, err
	}
	if err := watcher.Add(filepath.Dir(progressPath)); err != nil {
		watcher.Close()
		return WatchModel{}, err
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = Primary

	m := WatchModel{
		specName:     specName,
		progressPath: progressPath,
		watcher:      watcher,
		spinner:      sp,
	}
	return m.reloaded(), nil
}

// Close releases the filesystem watcher.
func (m WatchModel) Close() error {
	return m.watcher.Close()
}

// reloaded returns the model with a fresh snapshot of the progress file.
func (m WatchModel) reloaded() WatchModel {
	p, err := progress.Load(m.progressPath)
	if err != nil {
		m.err = err
		return m
	}
	st := SpecStatusFromProgress(m.specName, p)
	st.UpdatedAt = time.Now()
	m.status = st
	m.err = nil
	return m
}

// listen blocks until the next relevant filesystem event.
func (m WatchModel) listen() tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case ev, ok := <-m.watcher.Events:
				if !ok {
					return watchClosedMsg{}
				}
				if filepath.Base(ev.Name) != filepath.Base(m.progressPath) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				return fileChangedMsg{}
			case err, ok := <-m.watcher.Errors:
				if !ok {
					return watchClosedMsg{}
				}
				return watchErrMsg{err: err}
			}
		}
	}
}

func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listen())
}

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case fileChangedMsg:
		if m.pending {
			return m, m.listen()
		}
		m.pending = true
		return m, tea.Batch(
			m.listen(),
			tea.Tick(watchDebounce, func(time.Time) tea.Msg { return reloadMsg{} }),
		)

	case reloadMsg:
		m.pending = false
		return m.reloaded(), nil

	case watchErrMsg:
		m.err = msg.err
		return m, m.listen()

	case watchClosedMsg:
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m WatchModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.spinner.View())
	b.WriteString(Title.Render("watching " + m.specName))
	b.WriteString("\n\n")
	b.WriteString(RenderSpecStatus(m.status))
	if m.err != nil {
		b.WriteString(Error.Render("error: " + m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(HelpBar.Render(HelpKey.Render("q") + " quit"))
	b.WriteString("\n")
	return b.String()
}

// RunWatch renders the live view until the user quits.
func RunWatch(specName, progressPath string) error {
	m, err := NewWatch(specName, progressPath)
	if err != nil {
		return err
	}
	defer m.Close()

	_, err = tea.NewProgram(m).Run()
	return err
}
