package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/listfeed/listfeed/internal/logtail"
	"github.com/listfeed/listfeed/internal/records"
	"github.com/listfeed/listfeed/internal/state"
)

const chromeHeight = 2 // header + footer

func (m Model) bodyHeight() int {
	return max(m.height-chromeHeight, 1)
}

func (m Model) compact() bool {
	return m.width < LayoutCompactWidth
}

// listWidth is the width of the record list including its border.
func (m Model) listWidth() int {
	if m.compact() {
		return m.width
	}
	return int(float64(m.width) * ListPaneRatio)
}

func (m *Model) resize() {
	body := m.bodyHeight()
	if m.compact() {
		m.detail.Width = max(m.width-2, 1)
		m.detail.Height = max(body/2-2, 1)
	} else {
		m.detail.Width = max(m.width-m.listWidth()-2, 1)
		m.detail.Height = max(body-2, 1)
	}
	m.logs.Width = max(m.width, 1)
	m.logs.Height = body
	m.updateDetail()
}

// updateDetail refreshes the detail viewport for the selected record.
func (m *Model) updateDetail() {
	if !m.ready {
		return
	}
	_, v, ok := m.current()
	if !ok || len(v.Records) == 0 {
		m.detail.SetContent("")
		return
	}
	rec := v.Records[clamp(m.selected[m.active], 0, len(v.Records)-1)]
	m.detail.SetContent(m.renderDetail(rec))
	m.detail.GotoTop()
}

func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	if m.showLogs {
		b.WriteString(m.renderLogs())
	} else {
		b.WriteString(m.renderBody())
	}
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	styles := m.theme.Styles()

	parts := []string{styles.Logo.Render("listfeed")}
	for i, r := range m.resources {
		label := r.Title()
		if n := len(m.views[i].Records); m.views[i].Phase == state.Loaded {
			label = fmt.Sprintf("%s %d", label, n)
		}
		if i == m.active {
			parts = append(parts, styles.ActiveTab.Render(label))
		} else {
			parts = append(parts, styles.Tab.Render(label))
		}
	}

	if _, v, ok := m.current(); ok {
		parts = append(parts, m.theme.PhaseStyle(v.Phase).Render(strings.ToUpper(v.Phase.String())))
		if !v.Updated.IsZero() {
			parts = append(parts, styles.MutedText.Render("updated "+humanizeDuration(m.now.Sub(v.Updated))+" ago"))
		}
	}
	if m.showLogs {
		parts = append(parts, styles.WarningText.Render("LOG"))
	}

	return styles.Header.Width(m.width).Render(strings.Join(parts, "  "))
}

func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	return styles.Footer.Width(m.width).Render(m.help.View(m.keys))
}

func (m Model) renderBody() string {
	styles := m.theme.Styles()
	r, v, ok := m.current()
	if !ok {
		return m.fill(styles.MutedText.Render("No resources configured."))
	}

	switch v.Phase {
	case state.Idle:
		return m.fill(styles.MutedText.Render(fmt.Sprintf("%s not loaded yet. Press R to load.", r.Title())))
	case state.Loading:
		return m.fill(m.spinner.View() + " " + styles.Text.Render(fmt.Sprintf("Loading %s…", strings.ToLower(r.Title()))))
	case state.Failed:
		return m.renderFailed(v)
	}

	if len(v.Records) == 0 {
		return m.fill(styles.MutedText.Render(fmt.Sprintf("No %s returned.", strings.ToLower(r.Title()))))
	}
	return m.renderRecords(v, m.bodyHeight())
}

// renderFailed shows the error banner. Records from an earlier success stay
// visible beneath it.
func (m Model) renderFailed(v View) string {
	styles := m.theme.Styles()
	lines := []string{
		styles.DangerText.Render(v.ErrorMessage()),
		styles.MutedText.Render("Press ") + styles.AccentText.Render("r") + styles.MutedText.Render(" to retry"),
	}
	if v.Failures > 1 {
		lines = append(lines, styles.FaintText.Render(fmt.Sprintf("%d failures in a row", v.Failures)))
	}
	banner := styles.Banner.Width(max(min(m.width-2, 72), 10)).Render(strings.Join(lines, "\n"))

	if len(v.Records) == 0 {
		return m.fill(banner)
	}
	rest := m.bodyHeight() - lipgloss.Height(banner)
	if rest < 3 {
		return m.fill(banner)
	}
	return lipgloss.JoinVertical(lipgloss.Left, banner, m.renderRecords(v, rest))
}

func (m Model) renderRecords(v View, height int) string {
	if m.compact() {
		listH := max(height-height/2, 3)
		list := m.renderList(v.Records, m.width, listH)
		return lipgloss.JoinVertical(lipgloss.Left, list, m.renderDetailPane(m.width, height-listH))
	}
	list := m.renderList(v.Records, m.listWidth(), height)
	return lipgloss.JoinHorizontal(lipgloss.Top, list, m.renderDetailPane(m.width-m.listWidth(), height))
}

// renderList draws the record rows in a bordered pane of the given outer size,
// scrolled so the selection stays visible.
func (m Model) renderList(recs []records.Record, width, height int) string {
	styles := m.theme.Styles()
	innerW := max(width-2, 1)
	innerH := max(height-2, 1)

	sel := clamp(m.selected[m.active], 0, len(recs)-1)
	start := clamp(sel-innerH/2, 0, max(len(recs)-innerH, 0))
	end := min(start+innerH, len(recs))

	rows := make([]string, 0, innerH)
	for i := start; i < end; i++ {
		rec := recs[i]
		title := truncate(rec.Title(), innerW)
		sub := ""
		if room := innerW - lipgloss.Width(title) - 2; room > 4 {
			sub = truncate(rec.Subtitle(), room)
		}
		if i == sel {
			line := title
			if sub != "" {
				line += "  " + sub
			}
			rows = append(rows, styles.Selected.Width(innerW).Render(line))
			continue
		}
		line := styles.Text.Render(title)
		if sub != "" {
			line += "  " + styles.MutedText.Render(sub)
		}
		rows = append(rows, line)
	}

	return styles.Pane.
		BorderForeground(lipgloss.Color(m.theme.BorderFocus)).
		Width(innerW).
		Height(innerH).
		Render(strings.Join(rows, "\n"))
}

func (m Model) renderDetailPane(width, height int) string {
	styles := m.theme.Styles()
	return styles.Pane.
		Width(max(width-2, 1)).
		Height(max(height-2, 1)).
		Render(m.detail.View())
}

func (m Model) renderDetail(rec records.Record) string {
	styles := m.theme.Styles()
	fields := rec.Fields()

	labelW := 0
	for _, f := range fields {
		labelW = max(labelW, lipgloss.Width(f.Label))
	}

	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render(rec.Title()))
	b.WriteString("\n\n")
	valueW := max(m.detail.Width-labelW-2, 8)
	for _, f := range fields {
		label := styles.MutedText.Render(fmt.Sprintf("%-*s", labelW, f.Label))
		b.WriteString(label + "  " + styles.Text.Render(truncateMiddle(f.Value, valueW)) + "\n")
	}
	if link := rec.Link(); link != "" {
		b.WriteString("\n")
		b.WriteString(styles.MutedText.Render("Open") + "  " + styles.InfoText.Underline(true).Render(link))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderLogs() string {
	styles := m.theme.Styles()
	switch {
	case m.logPath == "":
		return m.fill(styles.MutedText.Render("Logging to stderr; no log file to show."))
	case m.logErr != nil:
		return m.fill(styles.DangerText.Render("Read log: " + m.logErr.Error()))
	case m.logs.TotalLineCount() == 0:
		return m.fill(styles.MutedText.Render("Log is empty: " + truncateMiddle(m.logPath, m.width-16)))
	}
	return m.logs.View()
}

func (m Model) renderLogLines(entries []logtail.Entry) string {
	styles := m.theme.Styles()
	lines := make([]string, len(entries))
	for i, e := range entries {
		text := truncate(logtail.Format(e), max(m.width, 20))
		switch e.Level {
		case "ERROR", "DPANIC", "PANIC", "FATAL":
			lines[i] = styles.DangerText.Render(text)
		case "WARN":
			lines[i] = styles.WarningText.Render(text)
		case "DEBUG":
			lines[i] = styles.FaintText.Render(text)
		default:
			lines[i] = styles.Text.Render(text)
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	title := styles.AccentText.Bold(true).Render("listfeed keys")
	body := m.help.FullHelpView(m.keys.FullHelp())
	hint := styles.FaintText.Render("press any key to close")
	box := styles.Pane.
		BorderForeground(lipgloss.Color(m.theme.BorderFocus)).
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body, "", hint))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// fill centres content in the body area.
func (m Model) fill(content string) string {
	return lipgloss.Place(m.width, m.bodyHeight(), lipgloss.Center, lipgloss.Center, content)
}
