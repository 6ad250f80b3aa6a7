package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mithrel/foliage/pkg/api"
)

// Browse opens an interactive Bubble Tea table over the article feed and
// returns the selected article, or nil when the user just quits.
func Browse(_ context.Context, articles []api.Article) (*api.Article, error) {
	cols := []table.Column{
		{Title: "ID", Width: 14},
		{Title: "Title", Width: 44},
		{Title: "Tags", Width: 20},
		{Title: "Published", Width: 10},
	}

	rows := make([]table.Row, 0, len(articles))
	for _, a := range articles {
		rows = append(rows, table.Row{
			shortID(a.ID),
			truncate(a.Title, 44),
			truncate(joinTags(a.TagNames()), 20),
			a.PublishedAt.Local().Format("2006-01-02"),
		})
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(minInt(14, maxInt(3, len(rows)+3))),
	)

	// Basic styling
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	m := model{table: t, selected: -1}
	p := tea.NewProgram(m)
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	fm, ok := final.(model)
	if !ok || fm.selected < 0 || fm.selected >= len(articles) {
		return nil, nil
	}
	sel := articles[fm.selected]
	return &sel, nil
}

type model struct {
	table    table.Model
	selected int
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.selected = -1
			return m, tea.Quit
		case "enter":
			m.selected = m.table.Cursor()
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if m.table.Height() < 3 {
		return "(no articles)\n"
	}
	return m.table.View() + "\n↑/↓ to navigate • enter to read • q to exit\n"
}

func joinTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	s := tags[0]
	for i := 1; i < len(tags); i++ {
		s += ", " + tags[i]
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

func shortID(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[:12]
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
