package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"movierec/internal/domain"
)

// RecommenderPort is the TUI-facing subset of the recommender service.
type RecommenderPort interface {
	Titles() []string
	Recommend(ctx context.Context, title string) ([]domain.Card, error)
	RecommendFromHistory(ctx context.Context, name string, r io.Reader) domain.HistoryResult
}

type mode int

const (
	modeTitle mode = iota
	modeHistory
)

const (
	titlePrompt   = "movie> "
	historyPrompt = "history file> "
	takeoutHint   = "Export from https://takeout.google.com/ : YouTube and YouTube Music, only Watch history."
)

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	service  RecommenderPort
	ctx      context.Context
	input    textinput.Model
	viewport viewport.Model
	mode     mode
	heading  string
	cards    []domain.Card
	message  string
	status   string
	ready    bool
	openFile func(path string) (io.ReadCloser, error)
}

// New creates a new TUI model instance with the catalog as input suggestions.
func New(ctx context.Context, service RecommenderPort) Model {
	ti := textinput.New()
	ti.Prompt = titlePrompt
	ti.Placeholder = "Type a movie title (tab completes) and press Enter"
	ti.ShowSuggestions = true
	ti.SetSuggestions(service.Titles())
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		service:  service,
		ctx:      ctx,
		input:    ti,
		viewport: vp,
		status:   fmt.Sprintf("Loaded %d titles. ctrl+o: upload watch history, ctrl+c: quit.", len(service.Titles())),
		openFile: func(path string) (io.ReadCloser, error) { return os.Open(path) },
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + 1 + qh + 1 // header + heading, status, hint, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderCards())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			if m.mode == modeHistory {
				m = m.submitHistory()
			} else {
				m = m.submitTitle()
			}
			m.viewport.SetContent(m.renderCards())
			m.viewport.GotoTop()
			return m, nil
		case "ctrl+o":
			m = m.switchMode(modeHistory)
			return m, nil
		case "esc":
			if m.mode == modeHistory {
				m = m.switchMode(modeTitle)
				return m, nil
			}
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) switchMode(to mode) Model {
	m.mode = to
	m.input.SetValue("")
	if to == modeHistory {
		m.input.Prompt = historyPrompt
		m.input.Placeholder = "Path to watch-history.json or watch-history.html"
		m.input.ShowSuggestions = false
		m.status = "Enter a watch-history export path. esc: back to title search."
	} else {
		m.input.Prompt = titlePrompt
		m.input.Placeholder = "Type a movie title (tab completes) and press Enter"
		m.input.ShowSuggestions = true
		m.status = "ctrl+o: upload watch history, ctrl+c: quit."
	}
	return m
}

// submitTitle runs a lookup for the exact input text.
func (m Model) submitTitle() Model {
	title := m.input.Value()
	if strings.TrimSpace(title) == "" {
		return m
	}
	cards, err := m.service.Recommend(m.ctx, title)
	if err != nil {
		m.status = "Error: " + err.Error()
		m.cards = nil
		m.heading = ""
		m.message = ""
		return m
	}
	m.heading = fmt.Sprintf("Movies similar to %s:", title)
	m.cards = cards
	m.message = ""
	m.status = fmt.Sprintf("%d recommendations for %q", len(cards), title)
	return m
}

func (m Model) submitHistory() Model {
	path := strings.TrimSpace(m.input.Value())
	if path == "" {
		return m
	}
	f, err := m.openFile(path)
	if err != nil {
		m.status = "Error: " + err.Error()
		return m
	}
	defer f.Close()

	res := m.service.RecommendFromHistory(m.ctx, filepath.Base(path), f)
	m.cards = res.Cards
	m.heading = "Recommended Movies Based on Your Watch History"
	switch {
	case res.Warning != "":
		m.message = res.Warning
		m.status = "History upload failed"
	case res.Info != "":
		m.message = res.Info
		m.status = "History processed"
	default:
		m.message = ""
		m.status = fmt.Sprintf("%d recommendations from %s", len(res.Cards), filepath.Base(path))
	}
	return m
}

// View renders the TUI layout and current cards.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Movie Recommender")
	heading := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.heading)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	if m.mode == modeHistory {
		input += "\n" + hintStyle.Render(takeoutHint)
	}
	return header + "\n" + heading + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderCards() string {
	if m.message != "" && len(m.cards) == 0 {
		return messageStyle.Render(m.message)
	}
	if len(m.cards) == 0 {
		return "No recommendations yet."
	}
	var b strings.Builder
	for i, c := range m.cards {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(titleStyle.Render(fmt.Sprintf("%d. %s", i+1, c.Title)))
		b.WriteString("\n   Poster: ")
		b.WriteString(c.PosterURL)
		if len(c.Platforms) > 0 {
			b.WriteString("\n   OTT Platform: ")
			b.WriteString(renderPlatforms(c.Platforms))
		}
	}
	return b.String()
}

func renderPlatforms(links []domain.PlatformLink) string {
	parts := make([]string, len(links))
	for i, l := range links {
		if l.URL == "" {
			parts[i] = l.Name
			continue
		}
		parts[i] = platformStyle.Render(l.Name) + " (" + l.URL + ")"
	}
	return strings.Join(parts, " | ")
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	titleStyle     = lipgloss.NewStyle().Bold(true)
	platformStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	messageStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	hintStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
