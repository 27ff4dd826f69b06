package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/crewdeck/crewdeck/internal/api"
	"github.com/crewdeck/crewdeck/internal/playback"
	"github.com/crewdeck/crewdeck/internal/profile"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	accentStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	detailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
)

// View renders the whole dashboard frame.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}
	sections := []string{
		a.renderHeader(width),
		a.renderTabBar(),
		a.renderBody(width),
		a.renderLogPanel(width),
		a.renderStatusLine(),
	}
	out := make([]string, 0, len(sections))
	for _, section := range sections {
		if section != "" {
			out = append(out, section)
		}
	}
	return strings.Join(out, "\n")
}

func (a *App) renderHeader(width int) string {
	line := headerStyle.Render(a.profile.Branding(a.internal))
	if a.profile.Tagline != "" {
		line += "  " + dimStyle.Render(a.profile.Tagline)
	}
	backend := dimStyle.Render(a.cfg.BaseURL())
	gap := width - lipgloss.Width(line) - lipgloss.Width(backend)
	if gap < 2 {
		return line
	}
	return line + strings.Repeat(" ", gap) + backend
}

func (a *App) renderTabBar() string {
	tabs := a.visibleTabs()
	if len(tabs) == 0 {
		return ""
	}
	active := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF")).Underline(true)
	parts := make([]string, 0, len(tabs))
	for i, tab := range tabs {
		label := fmt.Sprintf("%d:%s", i+1, tabLabel(tab, a.snapshot.QueueLength()))
		if tab.ID == a.active {
			parts = append(parts, active.Render(label))
		} else {
			parts = append(parts, mutedStyle.Render(label))
		}
	}
	return strings.Join(parts, "  ")
}

// tabLabel decorates review tabs with the live queue count.
func tabLabel(tab profile.Tab, queueLength int) string {
	if tab.Review {
		return fmt.Sprintf("%s (%d)", tab.Title, queueLength)
	}
	return tab.Title
}

func (a *App) renderBody(width int) string {
	tab, ok := a.currentTab()
	if !ok {
		return a.placeholder("No tabs to show")
	}
	inner := width - 4
	if inner < 20 {
		inner = 20
	}
	var body string
	switch {
	case tab.Raw:
		body = a.renderRawTab(tab)
	case tab.Review:
		body = a.renderReview(inner)
	case tab.Slot == "":
		body = a.renderActivity(inner)
	default:
		switch tab.Slot {
		case api.SlotService:
			body = a.renderService()
		case api.SlotStats:
			body = a.renderOverview()
		case api.SlotAgents:
			body = a.renderAgents(inner)
		case api.SlotFunnel:
			body = a.renderFunnel(inner)
		case api.SlotJobs:
			body = a.renderJobs(inner)
		case api.SlotSources:
			body = a.renderSources()
		case api.SlotCompliance:
			body = a.renderCompliance()
		default:
			body = a.renderRawTab(tab)
		}
	}
	frame := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Width(width - 2)
	return frame.Render(body)
}

func (a *App) placeholder(message string) string {
	text := dimStyle.Italic(true).Render(message)
	if a.loading {
		return a.spinner.View() + " " + text
	}
	return text
}

func (a *App) renderOverview() string {
	snap := a.snapshot
	if snap == nil || snap.Stats == nil {
		return a.placeholder("Waiting for dashboard stats. Press r to refresh.")
	}
	stats := snap.Stats
	row := func(name, detail string) string {
		return accentStyle.Render(runewidth.FillRight(name, 11)) + valueStyle.Render(detail)
	}
	lines := make([]string, 0, 8)
	if snap.Service != nil {
		svc := snap.Service
		lines = append(lines,
			row("Service", fmt.Sprintf("%s %s, %s", svc.Service, svc.Version, svc.Status)),
			"")
	}
	lines = append(lines,
		row("Sourcing", fmt.Sprintf("%d sourced from %d sources, avg match %.2f",
			stats.Sourcing.TotalSourced, stats.Sourcing.SourcesActive, stats.Sourcing.AvgMatchScore)),
		row("Screening", fmt.Sprintf("%d screened: %d approved, %d pending, %d rejected",
			stats.Screening.TotalScreened, stats.Screening.Approved,
			stats.Screening.PendingReview, stats.Screening.Rejected)),
		row("Pipeline", fmt.Sprintf("%d active, %d hired, %.1f hires/week",
			stats.Pipeline.TotalActive, stats.Pipeline.TotalHired, stats.Pipeline.PipelineVelocity)),
		row("Matching", fmt.Sprintf("%d matches, avg score %.2f",
			stats.Matching.TotalMatches, stats.Matching.AvgMatchScore)),
	)
	if snap.Pipeline != nil {
		lines = append(lines, "",
			dimStyle.Render(fmt.Sprintf("%d candidates across %d pipeline stages",
				snap.Pipeline.TotalCandidates, len(snap.Pipeline.Pipeline))))
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderService() string {
	snap := a.snapshot
	if snap == nil || snap.Service == nil {
		return a.placeholder("Waiting for backend status. Press r to refresh.")
	}
	svc := snap.Service
	row := func(name, detail string) string {
		if detail == "" {
			return ""
		}
		return accentStyle.Render(runewidth.FillRight(name, 14)) + valueStyle.Render(detail)
	}
	lines := []string{
		row("Service", svc.Service),
		row("Company", svc.Company),
		row("Version", svc.Version),
		row("Architecture", svc.Architecture),
		row("Status", svc.Status),
	}
	if len(svc.Capabilities) > 0 {
		lines = append(lines, row("Capabilities", strings.Join(svc.Capabilities, ", ")))
	}
	out := lines[:0]
	for _, line := range lines {
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func (a *App) renderAgents(width int) string {
	snap := a.snapshot
	if snap == nil || snap.Agents == nil {
		return a.placeholder("Waiting for the agent fleet. Press r to refresh.")
	}
	idx := snap.Agents
	descWidth := width - 30
	if descWidth < 16 {
		descWidth = 16
	}
	row := func(agent api.AgentInfo) string {
		status := agent.Status
		if !agent.Enabled {
			status = "disabled"
		}
		return valueStyle.Render(runewidth.FillRight(truncateCell(agent.Name, 18), 19)) +
			agentStatusStyle(status).Render(runewidth.FillRight(status, 11)) +
			detailStyle.Render(truncateCell(agent.Description, descWidth))
	}
	lines := []string{
		dimStyle.Render(runewidth.FillRight("AGENT", 19) + runewidth.FillRight("STATUS", 11) + "ROLE"),
		row(idx.Orchestrator),
	}
	names := make([]string, 0, len(idx.Agents))
	for name := range idx.Agents {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		lines = append(lines, row(idx.Agents[name]))
	}
	if len(idx.Workflows) > 0 {
		lines = append(lines, "", dimStyle.Render("workflows: "+strings.Join(idx.Workflows, ", ")))
	}
	return strings.Join(lines, "\n")
}

func agentStatusStyle(status string) lipgloss.Style {
	switch strings.ToLower(status) {
	case "error", "failed", "offline", "disabled":
		return errorStyle
	case "working", "busy", "running":
		return warnStyle
	default:
		return successStyle
	}
}

func (a *App) renderFunnel(width int) string {
	snap := a.snapshot
	if snap == nil || snap.Funnel == nil {
		return a.placeholder("Waiting for funnel data. Press r to refresh.")
	}
	report := snap.Funnel
	usable := width - 32
	if usable < 10 {
		usable = 10
	}
	lines := make([]string, 0, len(report.Funnel)+2)
	for _, stage := range report.Funnel {
		bar := strings.Repeat("█", funnelBarWidth(stage.Percentage, usable))
		lines = append(lines,
			valueStyle.Render(runewidth.FillRight(truncateCell(stage.StageDisplay, 14), 15))+
				accentStyle.Render(bar)+
				dimStyle.Render(fmt.Sprintf(" %d (%.0f%%)", stage.Count, stage.Percentage)))
	}
	lines = append(lines, "", dimStyle.Render(fmt.Sprintf("Total in funnel: %d", report.TotalInFunnel)))
	return strings.Join(lines, "\n")
}

// funnelBarWidth scales a percentage onto usable cells with a floor of one
// tenth of the full width, so even near-empty stages stay visible.
func funnelBarWidth(percentage float64, usable int) int {
	if usable <= 0 {
		return 0
	}
	floor := usable / 10
	if floor < 1 {
		floor = 1
	}
	width := int(float64(usable) * percentage / 100)
	if width < floor {
		width = floor
	}
	if width > usable {
		width = usable
	}
	return width
}

func (a *App) renderJobs(width int) string {
	snap := a.snapshot
	if snap == nil || snap.Jobs == nil {
		return a.placeholder("Waiting for open roles. Press r to refresh.")
	}
	jobs := snap.Jobs
	if len(jobs.Jobs) == 0 {
		return dimStyle.Render("No open roles.")
	}
	titleWidth := width - 52
	if titleWidth < 18 {
		titleWidth = 18
	}
	lines := []string{dimStyle.Render(
		runewidth.FillRight("ROLE", titleWidth+1) +
			runewidth.FillRight("DEPT", 14) +
			runewidth.FillRight("LOCATION", 17) +
			runewidth.FillRight("PIPE", 6) + "PRIORITY")}
	for _, job := range jobs.Jobs {
		lines = append(lines,
			valueStyle.Render(runewidth.FillRight(truncateCell(job.Title, titleWidth), titleWidth+1))+
				detailStyle.Render(runewidth.FillRight(truncateCell(job.Department, 12), 14))+
				detailStyle.Render(runewidth.FillRight(truncateCell(job.Location, 15), 17))+
				valueStyle.Render(runewidth.FillRight(strconv.Itoa(job.PipelineCount), 6))+
				priorityStyle(job.Priority).Render(job.Priority))
	}
	lines = append(lines, "", dimStyle.Render(fmt.Sprintf("%d roles open", jobs.Count)))
	return strings.Join(lines, "\n")
}

func priorityStyle(priority string) lipgloss.Style {
	switch strings.ToLower(priority) {
	case "critical":
		return errorStyle
	case "high":
		return warnStyle
	default:
		return dimStyle
	}
}

func (a *App) renderReview(width int) string {
	snap := a.snapshot
	if snap == nil || snap.Screening == nil || len(snap.Screening.Candidates) == 0 {
		return dimStyle.Render("Review queue is empty.")
	}
	queue := snap.Screening
	noteWidth := width - 6
	if noteWidth < 20 {
		noteWidth = 20
	}
	lines := make([]string, 0, len(queue.Candidates)*4)
	for i, cand := range queue.Candidates {
		cursor := "  "
		nameStyle := valueStyle
		if i == a.selection {
			cursor = accentStyle.Render("> ")
			nameStyle = valueStyle.Bold(true)
		}
		title := cand.Title
		if title == "" {
			title = "unknown role"
		}
		lines = append(lines, cursor+nameStyle.Render(cand.Name)+dimStyle.Render(" · "+title))
		s := cand.Scores
		lines = append(lines, detailStyle.Render(fmt.Sprintf(
			"    overall %.2f  tech %.2f  exp %.2f  edu %.2f  culture %.2f",
			s.Overall, s.Technical, s.Experience, s.Education, s.Cultural)))
		if len(cand.RedFlags) > 0 {
			lines = append(lines, warnStyle.Render("    flags: "+truncateCell(strings.Join(cand.RedFlags, "; "), noteWidth)))
		}
		if cand.AINotes != "" {
			lines = append(lines, dimStyle.Render("    "+truncateCell(cand.AINotes, noteWidth)))
		}
		lines = append(lines, "")
	}
	lines = append(lines, dimStyle.Render(fmt.Sprintf(
		"%d awaiting review, avg score %.2f. a approve · x reject · j/k move",
		queue.QueueLength, queue.AvgScore)))
	return strings.Join(lines, "\n")
}

func (a *App) renderActivity(width int) string {
	entries := a.feed.Entries()
	if len(entries) == 0 && a.demo == nil {
		return a.placeholder("No activity yet. Press d to replay the hiring workflow.")
	}
	messageWidth := width - 26
	if messageWidth < 20 {
		messageWidth = 20
	}
	lines := make([]string, 0, len(entries)+8)
	for _, entry := range entries {
		lines = append(lines,
			dimStyle.Render(entry.Time.Format("15:04:05"))+" "+
				accentStyle.Render(runewidth.FillRight(truncateCell(entry.Agent, 13), 14))+
				feedKindStyle(entry.Kind).Render(truncateCell(entry.Message, messageWidth)))
	}
	if a.engine.Busy() {
		lines = append(lines, "",
			warnStyle.Render(fmt.Sprintf("demo %s, step %d of %d",
				a.engine.State(), a.engine.Position(), a.engine.Steps())))
	}
	if a.demo != nil {
		summary := a.demo.Summary
		lines = append(lines, "", accentStyle.Render("Workflow result"))
		detail := fmt.Sprintf("%d sourced, %d screened", summary.TotalSourced, summary.TotalScreened)
		if summary.Message != "" {
			detail += ". " + summary.Message
		}
		lines = append(lines, valueStyle.Render(detail))
		for i, cand := range a.demo.Top() {
			lines = append(lines, detailStyle.Render(fmt.Sprintf(
				"  %d. %s · %s (%.2f)", i+1, cand.Name, cand.Title, cand.MatchScore)))
		}
	}
	return strings.Join(lines, "\n")
}

func feedKindStyle(kind playback.Kind) lipgloss.Style {
	switch kind {
	case playback.KindAction:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF"))
	case playback.KindSuccess:
		return successStyle
	case playback.KindError:
		return errorStyle
	default:
		return valueStyle
	}
}

func (a *App) renderSources() string {
	snap := a.snapshot
	if snap == nil || snap.Sources == nil {
		return a.placeholder("Waiting for sourcing platforms. Press r to refresh.")
	}
	src := snap.Sources
	lines := []string{valueStyle.Render(fmt.Sprintf("%d sourcing platforms connected", src.TotalSources))}
	if len(src.SourcesByType) > 0 {
		kinds := make([]string, 0, len(src.SourcesByType))
		for kind := range src.SourcesByType {
			kinds = append(kinds, kind)
		}
		sort.Strings(kinds)
		parts := make([]string, 0, len(kinds))
		for _, kind := range kinds {
			parts = append(parts, fmt.Sprintf("%s %d", prettifyKey(kind), src.SourcesByType[kind]))
		}
		lines = append(lines, dimStyle.Render(strings.Join(parts, " · ")))
	}
	if len(src.Sources) > 0 {
		names := make([]string, 0, len(src.Sources))
		for name := range src.Sources {
			names = append(names, name)
		}
		sort.Strings(names)
		lines = append(lines, "")
		for _, name := range names {
			info := src.Sources[name]
			line := accentStyle.Render(runewidth.FillRight(name, 20)) + detailStyle.Render(info.Type)
			if info.Description != "" {
				line += dimStyle.Render(": " + info.Description)
			}
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderCompliance() string {
	snap := a.snapshot
	if snap == nil || snap.Compliance == nil {
		return a.placeholder("Waiting for the compliance report. Press r to refresh.")
	}
	rep := snap.Compliance
	lines := make([]string, 0, 24)
	section := func(title string, body map[string]any) {
		if len(body) == 0 {
			return
		}
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, accentStyle.Render(title))
		keys := make([]string, 0, len(body))
		for k := range body {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			lines = append(lines,
				detailStyle.Render(runewidth.FillRight(prettifyKey(k), 28))+
					valueStyle.Render(formatAny(body[k])))
		}
	}
	section("Summary", rep.Summary)
	section("Human in the loop", rep.HumanInLoop)
	section("AI oversight", rep.AIOversight)
	section("Decision distribution", rep.DecisionDistribution)
	section("Data protection", rep.DataProtection)
	if rep.GeneratedAt != "" {
		lines = append(lines, "", dimStyle.Render("generated "+rep.GeneratedAt))
	}
	if len(lines) == 0 {
		return dimStyle.Render("Compliance report is empty.")
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderRawTab(tab profile.Tab) string {
	raw := a.snapshot.RawSlot(tab.Slot)
	if len(raw) == 0 {
		return a.placeholder("Waiting for " + tab.Title + " data. Press r to refresh.")
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return valueStyle.Render(string(raw))
	}
	return detailStyle.Render(buf.String())
}

func (a *App) renderLogPanel(width int) string {
	if len(a.recent) == 0 {
		return ""
	}
	maxLine := width - 2
	if maxLine < 20 {
		maxLine = 20
	}
	lines := make([]string, 0, len(a.recent)+1)
	lines = append(lines, mutedStyle.Render("Logbook"))
	for _, line := range a.recent {
		lines = append(lines, dimStyle.Render(truncateCell(line, maxLine)))
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderStatusLine() string {
	left := a.status
	if a.loading {
		left = strings.TrimSpace(a.spinner.View() + " " + left)
	}
	if left == "" {
		left = "Ready"
	}
	parts := make([]string, 0, 8)
	for _, binding := range a.keys.helpBindings() {
		help := binding.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}
	return valueStyle.Render(left) + "  " + dimStyle.Render(strings.Join(parts, " · "))
}

// truncateCell shortens plain text to the given display width. Styled text
// must be truncated before styling; escape sequences would be counted.
func truncateCell(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "...")
}

func prettifyKey(key string) string {
	return strings.ReplaceAll(key, "_", " ")
}

// formatAny renders a decoded JSON value for the compliance pane. Whole
// numbers drop the decimal point that float64 decoding gives them.
func formatAny(v any) string {
	switch t := v.(type) {
	case float64:
		if t == math.Trunc(t) {
			return strconv.FormatFloat(t, 'f', 0, 64)
		}
		return strconv.FormatFloat(t, 'f', 2, 64)
	case string:
		return t
	case nil:
		return "-"
	default:
		return fmt.Sprintf("%v", t)
	}
}
