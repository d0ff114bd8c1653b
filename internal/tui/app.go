package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lu-zhengda/appsweep/internal/catalog"
	"github.com/lu-zhengda/appsweep/internal/engine"
	"github.com/lu-zhengda/appsweep/internal/plan"
	"github.com/lu-zhengda/appsweep/internal/remover"
	"github.com/lu-zhengda/appsweep/internal/scanner"
	"github.com/lu-zhengda/appsweep/internal/utils"
)

type viewState int

const (
	viewList viewState = iota
	viewPlan
	viewConfirm
	viewResult
	viewOrphans
)

// Backend is the subset of the engine the TUI drives.
type Backend interface {
	List() []catalog.AppInfo
	Plan(ctx context.Context, app catalog.AppInfo) (plan.Plan, error)
	Remove(ctx context.Context, p plan.Plan) remover.Result
	Orphans(ctx context.Context) ([]scanner.Orphan, error)
}

var _ Backend = (*engine.Engine)(nil)

type appsLoadedMsg struct {
	apps []catalog.AppInfo
}

type planDoneMsg struct {
	plan plan.Plan
	err  error
}

type removeDoneMsg struct {
	result remover.Result
}

type orphansDoneMsg struct {
	orphans []scanner.Orphan
	err     error
}

type Model struct {
	ctx         context.Context
	backend     Backend
	currentView viewState

	loading bool
	status  string // what the spinner is waiting on

	apps         []catalog.AppInfo
	filtered     []catalog.AppInfo
	filter       textinput.Model
	filtering    bool
	cursor       int
	scrollOffset int

	plan       plan.Plan
	planScroll int

	result remover.Result

	orphans      []scanner.Orphan
	orphanCursor int
	orphanScroll int

	err error

	spinner spinner.Model
	help    help.Model
	keys    keyMap

	width  int
	height int
}

// New returns the root model. ctx bounds every engine call the TUI makes.
func New(ctx context.Context, b Backend) Model {
	if ctx == nil {
		ctx = context.Background()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorPrimary)

	ti := textinput.New()
	ti.Placeholder = "Filter applications..."
	ti.Prompt = "/ "
	ti.CharLimit = 100
	ti.Width = 40

	return Model{
		ctx:     ctx,
		backend: b,
		loading: true,
		status:  "Reading applications...",
		filter:  ti,
		spinner: sp,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadApps())
}

func (m Model) loadApps() tea.Cmd {
	return func() tea.Msg {
		return appsLoadedMsg{apps: m.backend.List()}
	}
}

func (m Model) doPlan(app catalog.AppInfo) tea.Cmd {
	return func() tea.Msg {
		p, err := m.backend.Plan(m.ctx, app)
		return planDoneMsg{plan: p, err: err}
	}
}

func (m Model) doRemove() tea.Cmd {
	p := m.plan
	return func() tea.Msg {
		return removeDoneMsg{result: m.backend.Remove(m.ctx, p)}
	}
}

func (m Model) doOrphans() tea.Cmd {
	return func() tea.Msg {
		orphans, err := m.backend.Orphans(m.ctx)
		return orphansDoneMsg{orphans: orphans, err: err}
	}
}

func (m Model) startLoading(status string, cmd tea.Cmd) (Model, tea.Cmd) {
	m.loading = true
	m.status = status
	m.err = nil
	return m, tea.Batch(cmd, m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case appsLoadedMsg:
		m.loading = false
		m.apps = msg.apps
		m.applyFilter()
		return m, nil

	case planDoneMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.plan = msg.plan
		m.planScroll = 0
		m.currentView = viewPlan
		return m, nil

	case removeDoneMsg:
		m.loading = false
		m.result = msg.result
		m.currentView = viewResult
		return m, nil

	case orphansDoneMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.orphans = msg.orphans
		m.orphanCursor = 0
		m.orphanScroll = 0
		m.currentView = viewOrphans
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.loading {
			return m, nil
		}
		if m.filtering {
			return m.updateFilter(msg)
		}
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		if key.Matches(msg, m.keys.Help) {
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}

		switch m.currentView {
		case viewList:
			return m.updateList(msg)
		case viewPlan:
			return m.updatePlan(msg)
		case viewConfirm:
			return m.updateConfirm(msg)
		case viewResult:
			return m.updateResult(msg)
		case viewOrphans:
			return m.updateOrphans(msg)
		}
	}
	return m, nil
}

// applyFilter recomputes the visible list with the same case-insensitive
// substring rule the catalog search uses.
func (m *Model) applyFilter() {
	m.filtered = catalog.Filter(m.apps, m.filter.Value())
	if m.cursor >= len(m.filtered) {
		m.cursor = len(m.filtered) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.ensureCursorVisible()
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.filtering = false
		m.filter.Blur()
		return m, nil
	case "esc":
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.applyFilter()
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.ensureCursorVisible()
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
			m.ensureCursorVisible()
		}
	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		return m, m.filter.Focus()
	case key.Matches(msg, m.keys.Open), key.Matches(msg, m.keys.Remove):
		if len(m.filtered) == 0 {
			return m, nil
		}
		app := m.filtered[m.cursor]
		return m.startLoading(fmt.Sprintf("Looking for files left by %s...", app.Name), m.doPlan(app))
	case key.Matches(msg, m.keys.Orphans):
		return m.startLoading("Looking for orphaned files...", m.doOrphans())
	case key.Matches(msg, m.keys.Rescan):
		return m.startLoading("Reading applications...", m.loadApps())
	case key.Matches(msg, m.keys.Back):
		if m.filter.Value() != "" {
			m.filter.SetValue("")
			m.applyFilter()
		}
	}
	return m, nil
}

func (m Model) updatePlan(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.planScroll > 0 {
			m.planScroll--
		}
	case key.Matches(msg, m.keys.Down):
		if m.planScroll < len(m.plan.Residuals)-m.visibleItemCount() {
			m.planScroll++
		}
	case key.Matches(msg, m.keys.Remove):
		m.currentView = viewConfirm
	case key.Matches(msg, m.keys.Back):
		m.currentView = viewList
	}
	return m, nil
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		return m.startLoading(fmt.Sprintf("Removing %s...", m.plan.App.Name), m.doRemove())
	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Back):
		m.currentView = viewPlan
	}
	return m, nil
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Open), key.Matches(msg, m.keys.Rescan):
		m.currentView = viewList
		return m.startLoading("Reading applications...", m.loadApps())
	}
	return m, nil
}

func (m Model) updateOrphans(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.orphanCursor > 0 {
			m.orphanCursor--
			m.orphanScroll = scrollTo(m.orphanCursor, m.orphanScroll, m.visibleItemCount())
		}
	case key.Matches(msg, m.keys.Down):
		if m.orphanCursor < len(m.orphans)-1 {
			m.orphanCursor++
			m.orphanScroll = scrollTo(m.orphanCursor, m.orphanScroll, m.visibleItemCount())
		}
	case key.Matches(msg, m.keys.Rescan):
		return m.startLoading("Looking for orphaned files...", m.doOrphans())
	case key.Matches(msg, m.keys.Back):
		m.currentView = viewList
	}
	return m, nil
}

func (m *Model) ensureCursorVisible() {
	m.scrollOffset = scrollTo(m.cursor, m.scrollOffset, m.visibleItemCount())
}

// scrollTo returns the scroll offset that keeps cursor inside a window of
// visible rows.
func scrollTo(cursor, offset, visible int) int {
	if cursor < offset {
		return cursor
	}
	if cursor >= offset+visible {
		return cursor - visible + 1
	}
	return offset
}

func (m Model) visibleItemCount() int {
	// Reserve lines for: header(2) + filter/summary(3) + status bar(1) + help(3) = 9
	available := m.height - 9
	if available < 5 {
		available = 5
	}
	return available
}

// --- Views ---

func (m Model) View() string {
	if m.loading {
		return renderHeader() + m.spinner.View() + " " + m.status + "\n"
	}

	switch m.currentView {
	case viewPlan:
		return m.viewPlan()
	case viewConfirm:
		return m.viewConfirm()
	case viewResult:
		return m.viewResult()
	case viewOrphans:
		return m.viewOrphans()
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	s := renderHeader("Applications")

	if m.filtering || m.filter.Value() != "" {
		s += "  " + m.filter.View() + "\n\n"
	}

	if m.err != nil {
		s += failStyle.Render("  "+m.err.Error()) + "\n\n"
	}

	if len(m.filtered) == 0 {
		if len(m.apps) == 0 {
			s += "  No applications found.\n"
		} else {
			s += fmt.Sprintf("  No applications match %q.\n", m.filter.Value())
		}
		return s + m.viewHelp()
	}

	visible := m.visibleItemCount()
	total := len(m.filtered)
	end := m.scrollOffset + visible
	if end > total {
		end = total
	}

	for i := m.scrollOffset; i < end; i++ {
		a := m.filtered[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%-32s %10s", cursor, truncPath(a.Name, 32), utils.FormatSize(a.Size))
		if i == m.cursor {
			s += selectedStyle.Render(line) + "  " + dimStyle.Render(a.BundleID) + "\n"
		} else {
			s += line + "\n"
		}
	}

	if total > visible {
		s += dimStyle.Render(fmt.Sprintf("  [%d-%d of %d]", m.scrollOffset+1, end, total)) + "\n"
	}

	var totalSize int64
	for _, a := range m.filtered {
		totalSize += a.Size
	}
	s += "\n" + statusBarStyle.Render(fmt.Sprintf(" %d applications (%s) ", total, utils.FormatSize(totalSize)))
	return s + m.viewHelp()
}

func (m Model) viewPlan() string {
	p := m.plan
	s := renderHeader("Applications", p.App.Name)

	s += fmt.Sprintf("  Path:       %s\n", p.App.Path)
	id := p.App.BundleID
	if id == "" {
		id = dimStyle.Render("(none)")
	}
	s += fmt.Sprintf("  Bundle ID:  %s\n", id)
	if p.App.Version != "" {
		s += fmt.Sprintf("  Version:    %s\n", p.App.Version)
	}
	s += fmt.Sprintf("  Bundle:     %s\n\n", utils.FormatSize(p.App.Size))

	if len(p.Residuals) == 0 {
		s += dimStyle.Render("  No leftover files found.") + "\n"
	} else {
		s += titleStyle.Render(fmt.Sprintf("  Leftovers (%d)", len(p.Residuals))) + "\n"
		visible := m.visibleItemCount()
		end := m.planScroll + visible
		if end > len(p.Residuals) {
			end = len(p.Residuals)
		}
		for _, r := range p.Residuals[m.planScroll:end] {
			ratio := 0.0
			if p.TotalSize > 0 {
				ratio = float64(r.Size) / float64(p.TotalSize)
			}
			loc := lipgloss.NewStyle().Foreground(locationColor(r.Location)).Render(fmt.Sprintf("%-12s", truncPath(r.Location, 12)))
			s += fmt.Sprintf("    %s %-40s %10s %s %s\n",
				loc,
				truncPath(r.Path, 40),
				utils.FormatSize(r.Size),
				renderProgressBar(ratio, 10),
				dimStyle.Render(r.MatchedBy.String()))
		}
		if len(p.Residuals) > visible {
			s += dimStyle.Render(fmt.Sprintf("    [%d-%d of %d]", m.planScroll+1, end, len(p.Residuals))) + "\n"
		}
	}

	s += "\n" + statusBarStyle.Render(fmt.Sprintf(" Total reclaimable: %s ", utils.FormatSize(p.TotalSize)))
	s += renderFooter("d remove | j/k scroll | esc back | q quit")
	return s
}

func (m Model) viewConfirm() string {
	p := m.plan
	s := dangerStyle.Render(" CONFIRM REMOVAL ") + "\n\n"

	s += fmt.Sprintf("  %s (%s)\n", truncPath(p.App.Path, 60), utils.FormatSize(p.App.Size))
	for _, r := range p.Residuals {
		s += fmt.Sprintf("  %s (%s)\n", truncPath(r.Path, 60), utils.FormatSize(r.Size))
	}

	s += fmt.Sprintf("\n  %d items | %s | ", p.Items(), utils.FormatSize(p.TotalSize))
	s += warnStyle.Render("deleted permanently, not moved to Trash") + "\n"
	s += renderFooter("y confirm | n cancel | q quit")
	return s
}

func (m Model) viewResult() string {
	res := m.result
	s := renderHeader("Applications", m.plan.App.Name, "Result")

	switch {
	case res.OK() && len(res.Failures()) == 0:
		s += successStyle.Render(fmt.Sprintf("  Removed %s: %d items (%s freed)",
			m.plan.App.Name, res.Removed(), utils.FormatSize(res.Freed()))) + "\n"
	case res.OK():
		s += warnStyle.Render(fmt.Sprintf("  Removed %s with %d leftover failures (%s freed)",
			m.plan.App.Name, len(res.Failures()), utils.FormatSize(res.Freed()))) + "\n"
	default:
		s += failStyle.Render(fmt.Sprintf("  Could not remove %s", m.plan.App.Name)) + "\n"
	}

	for _, o := range res.Failures() {
		s += failStyle.Render(fmt.Sprintf("  [FAIL] %s: %v", truncPath(o.Path, 50), o.Err)) + "\n"
	}

	if res.NeedsPrivileges() {
		s += dimStyle.Render("\n  Tip: run 'sudo appsweep remove "+m.plan.App.Name+"' in a terminal") + "\n"
	}

	s += renderFooter("enter/esc back to list | q quit")
	return s
}

func (m Model) viewOrphans() string {
	s := renderHeader("Orphans")

	if len(m.orphans) == 0 {
		s += "  No orphaned files found.\n"
		return s + renderFooter("esc back | q quit")
	}

	visible := m.visibleItemCount()
	total := len(m.orphans)
	end := m.orphanScroll + visible
	if end > total {
		end = total
	}

	var totalSize int64
	for _, o := range m.orphans {
		totalSize += o.Size
	}

	for i := m.orphanScroll; i < end; i++ {
		o := m.orphans[i]
		cursor := "  "
		if i == m.orphanCursor {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%-50s %10s", cursor, truncPath(o.Path, 50), utils.FormatSize(o.Size))
		if i == m.orphanCursor {
			s += selectedStyle.Render(line) + "  " + dimStyle.Render(o.AppName) + "\n"
		} else {
			s += line + "\n"
		}
	}
	if total > visible {
		s += dimStyle.Render(fmt.Sprintf("  [%d-%d of %d]", m.orphanScroll+1, end, total)) + "\n"
	}

	s += "\n" + statusBarStyle.Render(fmt.Sprintf(" %d orphaned items (%s) ", total, utils.FormatSize(totalSize)))
	s += renderFooter("j/k navigate | r rescan | esc back | q quit")
	return s
}

func (m Model) viewHelp() string {
	return helpStyle.Render(m.help.View(m.keys))
}
