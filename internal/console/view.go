package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)

	sentimentStyles = map[string]lipgloss.Style{
		"positive": lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		"negative": lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		"neutral":  lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		"unknown":  mutedStyle,
	}
)

// View renders the active screen.
func (m Model) View() string {
	header := titleStyle.Render("News Research Radar")
	status := statusStyle.Render(m.status)

	switch m.screen {
	case screenLogin:
		return header + "\n\n" + boxStyle.Render(m.username.View()+"\n"+m.password.View()) +
			"\n" + mutedStyle.Render("tab: switch field  enter: login  ctrl+c: quit") + "\n" + status
	case screenFeedback:
		return header + "\n\n" + boxStyle.Render(m.note.View()) + "\n" + status
	}

	help := "enter: search  up/down: browse  ctrl+t: topics  ctrl+f: feedback  ctrl+e: export"
	if m.screen == screenTopics {
		help = "esc: back  ctrl+e: export"
	}
	body := m.viewport.View()
	if !m.ready {
		body = m.content()
	}
	return header + "  " + mutedStyle.Render("user: "+m.user) + "\n" +
		boxStyle.Render(body) + "\n" +
		boxStyle.Render(m.query.View()) + "\n" +
		mutedStyle.Render(help) + "\n" + status
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.content())
	m.viewport.GotoTop()
}

func (m Model) content() string {
	if m.screen == screenTopics {
		return renderTopics(m)
	}
	if len(m.docs) == 0 {
		return "No articles yet."
	}

	d := m.docs[m.cursor]
	wrap := lipgloss.NewStyle().Width(m.viewport.Width)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", mutedStyle.Render(fmt.Sprintf("Article %d/%d", m.cursor+1, len(m.docs))))
	b.WriteString(titleStyle.Render(d.Title) + "\n")
	if d.Source != "" || d.URL != "" {
		b.WriteString(mutedStyle.Render(strings.TrimSpace(d.Source+"  "+d.URL)) + "\n")
	}
	b.WriteString("\n")
	if d.Description != "" {
		b.WriteString(wrap.Render(d.Description) + "\n\n")
	}
	b.WriteString(titleStyle.Render("Summary: ") + wrap.Render(d.Summary) + "\n")

	style, ok := sentimentStyles[d.Sentiment]
	if !ok {
		style = mutedStyle
	}
	b.WriteString(titleStyle.Render("Sentiment: ") + style.Render(d.Sentiment) + "\n")
	if len(d.Keywords) > 0 {
		b.WriteString(mutedStyle.Render("Keywords: "+strings.Join(d.Keywords, ", ")) + "\n")
	}
	return b.String()
}

func renderTopics(m Model) string {
	if len(m.topics) == 0 {
		return "No topics."
	}
	var b strings.Builder
	for _, t := range m.topics {
		ordered := t.MostSignificantFirst()
		fmt.Fprintf(&b, "%s: %s\n", titleStyle.Render(t.Label), strings.Join(ordered.Terms, ", "))
	}
	return b.String()
}
