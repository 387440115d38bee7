// Package tui renders the dashboard in a terminal with bubbletea.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/rs/zerolog"

	"github.com/homelabdash/homelabdash/internal/catalog"
	"github.com/homelabdash/homelabdash/internal/dashboard"
	"github.com/homelabdash/homelabdash/internal/source"
)

// Loader produces the terminal load state. *source.Loader satisfies it.
type Loader interface {
	Run(ctx context.Context) source.LoadState
}

// LoadedMsg delivers the outcome of the load to the model.
type LoadedMsg struct {
	State source.LoadState
}

// Config holds the model's dependencies.
type Config struct {
	Loader Loader
	Logger zerolog.Logger

	// Now stamps the footer year. Defaults to time.Now.
	Now func() time.Time
}

// Model is the bubbletea model for the dashboard. All state changes go
// through the embedded controller.
type Model struct {
	controller *dashboard.Controller
	loader     Loader
	logger     zerolog.Logger
	now        func() time.Time

	search  textinput.Model
	spinner spinner.Model
	styles  styles
	width   int
}

// New creates a model in the Loading state with the search box focused.
func New(cfg Config) *Model {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	st := newStyles()

	ti := textinput.New()
	ti.Placeholder = dashboard.SearchHint
	ti.Prompt = "/ "
	ti.Width = 40
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorAccent))
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorText))
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorMuted))
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(colorAccent))

	return &Model{
		controller: dashboard.NewController(),
		loader:     cfg.Loader,
		logger:     cfg.Logger,
		now:        now,
		search:     ti,
		spinner:    sp,
		styles:     st,
	}
}

// Controller exposes the model's dashboard state.
func (m *Model) Controller() *dashboard.Controller {
	return m.controller
}

// Init starts the load, the spinner and the cursor blink.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.Load(), m.spinner.Tick, textinput.Blink)
}

// Load returns a command that runs the loader and reports a LoadedMsg.
func (m *Model) Load() tea.Cmd {
	loader := m.loader
	return func() tea.Msg {
		return LoadedMsg{State: loader.Run(context.Background())}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		m.controller.SetLoadState(msg.State)
		return m, nil

	case spinner.TickMsg:
		if m.controller.LoadState().Terminal() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "tab":
		m.cycleFilter(1)
		return m, nil
	case "shift+tab":
		m.cycleFilter(-1)
		return m, nil
	}

	if m.search.Focused() {
		if msg.Type == tea.KeyEsc {
			m.search.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.controller.SetSearch(m.search.Value())
		return m, cmd
	}

	switch key := msg.String(); key {
	case "q", "esc":
		return m, tea.Quit
	case "/":
		return m, m.search.Focus()
	case "1", "2", "3", "4":
		m.setFilter(catalog.Filters[key[0]-'1'])
	}
	return m, nil
}

func (m *Model) cycleFilter(step int) {
	current := 0
	for i, f := range catalog.Filters {
		if f == m.controller.Filter() {
			current = i
			break
		}
	}
	n := len(catalog.Filters)
	m.setFilter(catalog.Filters[((current+step)%n+n)%n])
}

func (m *Model) setFilter(f catalog.Filter) {
	m.controller.SetFilter(f)
	m.logger.Debug().Str("filter", string(f)).Msg("filter changed")
}

// View implements tea.Model.
func (m *Model) View() string {
	page := m.controller.Page()
	st := m.styles

	var b strings.Builder

	b.WriteString(st.title.Render(dashboard.Title) + "\n")
	b.WriteString(st.subtitle.Render(dashboard.Subtitle) + "\n\n")
	b.WriteString(m.renderStats(page.Stats) + "\n\n")
	b.WriteString(m.search.View() + "\n")
	b.WriteString(m.renderFilters(page.Filter) + "\n\n")

	switch {
	case page.Phase == source.PhaseLoading:
		b.WriteString(m.spinner.View() + " " + st.muted.Render(page.Message) + "\n")
	case !page.ShowGrid():
		b.WriteString(st.muted.Render(page.Message) + "\n")
	case page.Empty():
		b.WriteString(st.muted.Render(dashboard.EmptyMessage) + "\n")
	default:
		for _, card := range page.Cards {
			b.WriteString(m.renderCard(card) + "\n")
		}
	}

	b.WriteString("\n" + st.muted.Render(fmt.Sprintf("Homelab · %d", m.now().Year())) + "\n")
	b.WriteString(st.help.Render(m.helpLine()))

	return b.String()
}

func (m *Model) renderStats(c catalog.Counts) string {
	st := m.styles
	stat := func(label string, v int) string {
		return st.statLabel.Render(label) + " " + st.statValue.Render(fmt.Sprint(v))
	}
	return strings.Join([]string{
		stat("Total", c.Total),
		stat("Online", c.Online),
		stat("Offline", c.Offline),
		stat("Maint.", c.Maintenance),
	}, "   ")
}

func (m *Model) renderFilters(active catalog.Filter) string {
	parts := make([]string, 0, len(catalog.Filters))
	for i, f := range catalog.Filters {
		label := fmt.Sprintf("%d %s", i+1, f.Label())
		if f == active {
			parts = append(parts, m.styles.filterActive.Render(label))
		} else {
			parts = append(parts, m.styles.filter.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderCard(card dashboard.Card) string {
	st := m.styles

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		st.cardName.Render(card.Name)+" ",
		st.muted.Render(card.Type)+" ",
		st.pillStyle(catalog.Status(card.Status)).Render(card.Status),
	)

	url := st.muted.Render(card.URLText())
	if card.HasURL() {
		url = hyperlink(card.URL, st.link.Render(card.URL))
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		header,
		card.Notes,
		st.muted.Render("URL:")+" "+url,
	)

	style := st.card
	if m.width > 4 {
		style = style.Width(m.width - 2)
	}
	return style.Render(body)
}

// hyperlink wraps text in an OSC 8 link so terminals that support it open
// target on click. Other terminals show the text unchanged.
func hyperlink(target, text string) string {
	return ansi.SetHyperlink(target) + text + ansi.ResetHyperlink()
}

func (m *Model) helpLine() string {
	if m.search.Focused() {
		return "type to search • tab/shift+tab filter • esc leave search • ctrl+c quit"
	}
	return "/ search • 1-4 or tab filter • q quit"
}

// Run starts the program in the alternate screen and blocks until it exits.
// Cancelling ctx exits cleanly.
func Run(ctx context.Context, m *Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
