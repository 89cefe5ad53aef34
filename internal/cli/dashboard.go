package cli

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"auto-transcoder/internal/model"
	"auto-transcoder/internal/overseer"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// maxItemsPerCard bounds how many recent files a job card shows.
const maxItemsPerCard = 8

var (
	watchTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	watchMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	watchErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	watchOKStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	watchPanelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

type watchNotifMsg struct {
	n overseer.Notification
}

type watchItem struct {
	file     string
	status   model.WorkerStatus
	pct      float64
	duration float64
	message  string
	bar      progress.Model
}

type watchJobCard struct {
	name   string
	status model.JobStatus
	items  []*watchItem
}

type watchModel struct {
	cards    []*watchJobCard
	byName   map[string]*watchJobCard
	width    int
	height   int
	lastErr  string
	quitting bool
}

func newWatchModel(jobs []model.TranscodeJob) *watchModel {
	m := &watchModel{byName: make(map[string]*watchJobCard, len(jobs))}
	for _, job := range jobs {
		card := &watchJobCard{name: job.Name, status: model.JobIdle}
		m.cards = append(m.cards, card)
		m.byName[job.Name] = card
	}
	sort.Slice(m.cards, func(i, j int) bool { return m.cards[i].name < m.cards[j].name })
	return m
}

func (m *watchModel) Init() tea.Cmd {
	return nil
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
	case watchNotifMsg:
		m.apply(msg.n)
	}
	return m, nil
}

func (m *watchModel) apply(n overseer.Notification) {
	if n.Kind == overseer.NotifyOverseerError {
		m.lastErr = n.Message
		return
	}

	card, ok := m.byName[n.JobName]
	if !ok {
		return
	}

	switch n.Kind {
	case overseer.NotifyJobStatus:
		card.status = n.JobStatus
	case overseer.NotifyWorkItemDuration:
		card.item(n.InputFile).duration = n.Seconds
	case overseer.NotifyWorkItemProgress:
		card.item(n.InputFile).pct = n.Percent
	case overseer.NotifyWorkItemStatus:
		item := card.item(n.InputFile)
		item.status = n.WorkerStatus
		item.message = n.Message
		if n.WorkerStatus == model.WorkerDone {
			item.pct = 100
		}
	}
}

// item finds or creates the per-file row, evicting the oldest finished row
// when the card is full.
func (c *watchJobCard) item(file string) *watchItem {
	for _, it := range c.items {
		if it.file == file {
			return it
		}
	}
	if len(c.items) >= maxItemsPerCard {
		for i, it := range c.items {
			if it.status == model.WorkerDone || it.status == model.WorkerError {
				c.items = append(c.items[:i], c.items[i+1:]...)
				break
			}
		}
	}
	it := &watchItem{
		file:   file,
		status: model.WorkerPending,
		bar:    progress.New(progress.WithDefaultGradient()),
	}
	c.items = append(c.items, it)
	return it
}

func (m *watchModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(watchTitleStyle.Render("auto-transcoder"))
	b.WriteString(watchMutedStyle.Render("  q to quit"))
	b.WriteString("\n\n")

	for _, card := range m.cards {
		b.WriteString(watchPanelStyle.Width(m.panelWidth()).Render(card.render(m.panelWidth() - 4)))
		b.WriteString("\n")
	}
	if m.lastErr != "" {
		b.WriteString(watchErrorStyle.Render("error: " + m.lastErr))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *watchModel) panelWidth() int {
	if m.width <= 0 {
		return 80
	}
	if m.width > 100 {
		return 100
	}
	return m.width
}

func (c *watchJobCard) render(width int) string {
	var b strings.Builder
	b.WriteString(watchTitleStyle.Render(c.name))
	b.WriteString(" ")
	b.WriteString(renderJobStatus(c.status))

	for _, it := range c.items {
		b.WriteString("\n")
		b.WriteString(it.render(width))
	}
	if len(c.items) == 0 {
		b.WriteString("\n")
		b.WriteString(watchMutedStyle.Render("no files this cycle"))
	}
	return b.String()
}

func (it *watchItem) render(width int) string {
	name := truncateRunes(filepath.Base(it.file), 33)

	switch it.status {
	case model.WorkerDone:
		return fmt.Sprintf("%-36s %s", name, watchOKStyle.Render("done"))
	case model.WorkerError:
		msg := it.message
		if width > 44 {
			msg = truncateRunes(msg, width-40)
		}
		return fmt.Sprintf("%-36s %s %s", name, watchErrorStyle.Render("error"), watchMutedStyle.Render(msg))
	}

	barWidth := width - 44
	if barWidth < 10 {
		barWidth = 10
	}
	it.bar.Width = barWidth
	if it.duration <= 0 {
		return fmt.Sprintf("%-36s %s", name, watchMutedStyle.Render("running (duration unknown)"))
	}
	return fmt.Sprintf("%-36s %s %3.0f%%", name, it.bar.ViewAs(it.pct/100), it.pct)
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 1 {
		return string(r[:max])
	}
	return string(r[:max-1]) + "…"
}

func renderJobStatus(status model.JobStatus) string {
	switch status {
	case model.JobRunning:
		return watchOKStyle.Render(string(status))
	case model.JobError:
		return watchErrorStyle.Render(string(status))
	default:
		return watchMutedStyle.Render(string(status))
	}
}

// runWatchDashboard drives the overseer underneath a bubbletea program; the
// overseer's notifications feed the model via Program.Send.
func runWatchDashboard(jobs []model.TranscodeJob, initialScan bool) error {
	p := tea.NewProgram(newWatchModel(jobs), tea.WithAltScreen())
	ov := overseer.New(func(n overseer.Notification) {
		p.Send(watchNotifMsg{n: n})
	})

	setupErr := make(chan error, 1)
	go func() {
		for _, job := range jobs {
			if err := ov.AddJob(job); err != nil {
				setupErr <- err
				p.Quit()
				return
			}
		}
		if initialScan {
			for _, job := range jobs {
				ov.ScanNow(job.Name)
			}
		}
		setupErr <- nil
	}()

	_, runErr := p.Run()
	ov.Close()
	if err := <-setupErr; err != nil {
		return err
	}
	return runErr
}
