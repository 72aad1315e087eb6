package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
	"github.com/urfave/cli/v2"

	"doc-search/config"
	"doc-search/render"
	"doc-search/search"
)

// progressMsg updates the top progress line while loading.
// Format in View: "⏳ {Stage} [num/total]: filename"
type progressMsg struct {
	Stage string
	Count int
	Total int
	Path  string
}

// progressState holds the most recent progress snapshot written by the
// coordinator and read by the UI poll tick.
type progressState struct {
	mu     sync.Mutex
	latest progressMsg
	have   bool
}

func (p *progressState) set(msg progressMsg) {
	p.mu.Lock()
	p.latest = msg
	p.have = true
	p.mu.Unlock()
}

func (p *progressState) get() (progressMsg, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latest, p.have
}

// Styles
var (
	appStyle = lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7aa2f7"))

	subHeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7dcfff")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a9b1d6"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f7768e")).
			Bold(true)
)

type model struct {
	ctx      context.Context
	cancel   context.CancelFunc
	engine   *search.SearchEngine
	opts     *options
	progress *progressState
	styles   *render.Styles

	// Results and paging
	result        *search.SearchResult
	entries       []search.Entry
	visible       []int // indices into entries after filtering
	currentPage   int
	contentScroll int

	// progress totals
	totalFiles int

	// Session and timing
	startWall  time.Time
	searchTime time.Duration
	searchErr  error
	quitting   bool
	loading    bool

	// Window size
	width  int
	height int

	// Filter over file names ("/")
	filtering bool
	filter    string

	// UI state
	confirmSelected string // "yes" or "no"
	memUsageText    string // e.g., " • RAM: XXX MB • CPU: YY%"
	progressText    string
}

func newModel(ctx context.Context, engine *search.SearchEngine, opts *options) model {
	ctx, cancel := context.WithCancel(ctx)
	m := model{
		ctx:             ctx,
		cancel:          cancel,
		engine:          engine,
		opts:            opts,
		progress:        &progressState{},
		loading:         true,
		confirmSelected: "yes",
		startWall:       time.Now(),
	}
	if opts.color {
		m.styles = render.NewStyles(lipgloss.DefaultRenderer())
	}
	// Stream progress from the engine to the TUI header
	engine.OnProgress = func(stage string, processed, total int, path string) {
		m.progress.set(progressMsg{Stage: stage, Count: processed, Total: total, Path: path})
	}
	return m
}

func (m model) Init() tea.Cmd {
	// Start polling progress and kick off the background search immediately.
	return tea.Batch(pollProgress(), m.runSearch(), m.memUsageTick())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		// While loading, only allow quit
		if m.loading {
			if msg.String() == "q" {
				return m.quit()
			}
			return m, nil
		}
		if m.filtering {
			return m.updateFilter(msg), nil
		}

		switch msg.String() {
		case "q":
			return m.quit()
		case "/":
			m.filtering = true
			return m, nil
		case "esc":
			m.filter = ""
			m.applyFilter()
			return m, nil
		case "left", "h":
			m.confirmSelected = "yes"
			return m, nil
		case "right", "l":
			m.confirmSelected = "no"
			return m, nil

		case "enter":
			if m.confirmSelected == "no" {
				return m.quit()
			}
			// default/"yes": advance or quit if at end
			if m.currentPage < m.totalPages()-1 {
				m.currentPage++
				m.contentScroll = 0
				return m, nil
			}
			return m.quit()

		case "n", " ":
			if m.currentPage < m.totalPages()-1 {
				m.currentPage++
			}
			m.contentScroll = 0
			return m, nil
		case "p":
			if m.currentPage > 0 {
				m.currentPage--
			}
			m.contentScroll = 0
			return m, nil

		case "home":
			m.currentPage = 0
			m.contentScroll = 0
			return m, nil
		case "end":
			m.currentPage = max(m.totalPages()-1, 0)
			m.contentScroll = 0
			return m, nil
		case "up", "k":
			m.contentScroll = max(m.contentScroll-1, 0)
			return m, nil
		case "down", "j":
			m.contentScroll++
			return m, nil
		case "pgup":
			m.contentScroll = max(m.contentScroll-5, 0)
			return m, nil
		case "pgdown":
			m.contentScroll += 5
			return m, nil
		}
		return m, nil

	case searchResultMsg:
		// Search completed: store results, compute pages, stop loading
		m.result = msg.result
		m.searchErr = msg.err
		m.searchTime = msg.searchTime
		m.entries = pageEntries(msg.result, m.opts.showAll)
		m.applyFilter()
		m.loading = false
		return m, nil

	case memUsageMsg:
		m.memUsageText = msg.Text
		return m, m.memUsageTick()

	case progressTick:
		// Periodic poll: read the most recent progress snapshot
		if lp, ok := m.progress.get(); ok {
			m.totalFiles = lp.Total
			m.progressText = fmt.Sprintf("%s [%d/%d]: %s", capitalize(lp.Stage), lp.Count, lp.Total, lp.Path)
		}
		if m.loading {
			return m, pollProgress()
		}
		return m, nil
	}
	return m, nil
}

func (m model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.cancel()
	return m, tea.Quit
}

func (m model) updateFilter(msg tea.KeyMsg) model {
	switch msg.Type {
	case tea.KeyEnter:
		m.filtering = false
	case tea.KeyEsc:
		m.filtering = false
		m.filter = ""
	case tea.KeyBackspace:
		if r := []rune(m.filter); len(r) > 0 {
			m.filter = string(r[:len(r)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		m.filter += string(msg.Runes)
	}
	m.applyFilter()
	return m
}

// applyFilter recomputes the visible pages from the fuzzy file-name filter.
func (m *model) applyFilter() {
	m.visible = filterEntries(m.entries, m.filter)
	m.currentPage = 0
	m.contentScroll = 0
}

// filterEntries returns the indices of entries whose name fuzzy-matches
// query, best match first. An empty query keeps every entry in order.
func filterEntries(entries []search.Entry, query string) []int {
	if query == "" {
		out := make([]int, len(entries))
		for i := range entries {
			out[i] = i
		}
		return out
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	matches := fuzzy.Find(query, names)
	out := make([]int, len(matches))
	for i, match := range matches {
		out[i] = match.Index
	}
	return out
}

// pageEntries lists the documents shown one per page.
func pageEntries(result *search.SearchResult, all bool) []search.Entry {
	if all {
		return result.Entries()
	}
	return result.Matched()
}

func (m model) totalPages() int {
	return len(m.visible)
}

func (m model) View() string {
	width := m.width
	height := m.height
	if width <= 0 {
		width = 120
	}
	if height <= 0 {
		height = 30
	}

	if m.quitting {
		return "Goodbye!\n"
	}

	// Build header lines
	var headerLines []string
	headerLines = append(headerLines, "")
	headerLines = append(headerLines, lipgloss.NewStyle().Foreground(lipgloss.Color("#7aa2f7")).Bold(true).
		Render(fmt.Sprintf("doc-search v%s", version)))
	headerLines = append(headerLines, "")

	var terms []string
	for _, w := range m.opts.request.Terms {
		terms = append(terms, fmt.Sprintf("%q", w))
	}
	headerLines = append(headerLines, subHeaderStyle.Render(
		"🔍 Searching: "+strings.Join(terms, " ")+" ("+m.opts.request.ModeDescription()+")"))

	targetDesc := m.opts.root + " • " + config.GetFileTypeDescription(m.opts.extended)
	targetStyled := lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	headerLines = append(headerLines, targetStyled.Render(wrapTextWithIndent("📁 Target: ", targetDesc, width-4)))

	engine := fmt.Sprintf("⚙️ Engine: Workers %d%s", m.engine.Workers(), m.memUsageText)
	headerLines = append(headerLines, lipgloss.NewStyle().Foreground(lipgloss.Color("#bb9af7")).Render(engine))

	// Elapsed search time (freeze after completion)
	elapsed := time.Since(m.startWall)
	if !m.loading {
		elapsed = m.searchTime
	}
	matched := 0
	if m.result != nil {
		matched = len(m.result.Matched())
	}
	status := fmt.Sprintf("⏱️ Searched: %.1fs • Matched: %d of %d files", elapsed.Seconds(), matched, m.totalFiles)
	headerLines = append(headerLines, lipgloss.NewStyle().Foreground(lipgloss.Color("#e0af68")).Render(status))

	searchInfo := strings.Join(headerLines, "\n")
	headerHeight := strings.Count(searchInfo, "\n") + 1
	// Reserve progress, bottom status and footer rows to keep the box position stable
	const progressHeight, bottomStatusHeight, footerHeight, chromeHeight = 1, 1, 1, 4

	var parts []string
	parts = append(parts, searchInfo)
	switch {
	case m.loading:
		txt := "⏳ Processing"
		if m.progressText != "" {
			txt = "⏳ " + m.progressText
		}
		parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color("#7dcfff")).Render(txt))
	case m.filtering || m.filter != "":
		parts = append(parts, infoStyle.Render(fmt.Sprintf("Filter: %s (%d files)", m.filter, len(m.visible))))
	case m.searchErr != nil:
		parts = append(parts, errorStyle.Render("Search interrupted: "+m.searchErr.Error()))
	default:
		parts = append(parts, "")
	}

	boxOuterWidth := width - 4
	innerWidth := max(boxOuterWidth-6, 10)

	var boxContent string
	switch {
	case m.loading:
		boxContent = "Searching..."
	case len(m.visible) == 0:
		boxContent = "No results found."
	default:
		entry := m.entries[m.visible[m.currentPage]]
		boxContent = render.Text(search.NewSearchResult(entry), render.TextOptions{
			Request: m.opts.request,
			Styles:  m.styles,
			Width:   innerWidth,
			Verbose: true,
		})
		n := entry.Result.OccurrenceCount()
		noun := "matching lines"
		if n == 1 {
			noun = "matching line"
		}
		boxContent += fmt.Sprintf("\nResult %d of %d • %d %s", m.currentPage+1, len(m.visible), n, noun)
	}

	contentHeight := max(height-headerHeight-progressHeight-bottomStatusHeight-footerHeight-chromeHeight, 1)

	// Window the box content according to contentScroll to enable vertical scrolling
	lines := strings.Split(boxContent, "\n")
	maxStart := max(len(lines)-contentHeight, 0)
	start := min(m.contentScroll, maxStart)
	end := min(start+contentHeight, len(lines))
	window := strings.Join(lines[start:end], "\n")
	parts = append(parts, appStyle.Width(boxOuterWidth).Height(contentHeight).Render(window))

	// Non-scrolling bottom status (buttons)
	if !m.loading && len(m.visible) > 0 {
		yesSel := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#1a1b26")).
			Background(lipgloss.Color("#9ece6a")).
			Padding(0, 1)
		yesUn := lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9ece6a")).
			Padding(0, 1)
		noSel := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#c0caf5")).
			Background(lipgloss.Color("#414868")).
			Padding(0, 1)
		noUn := lipgloss.NewStyle().
			Foreground(lipgloss.Color("#565f89")).
			Padding(0, 1)

		yesBtn, noBtn := yesSel.Render("[ Yes ]"), noUn.Render("[ No ]")
		if m.confirmSelected == "no" {
			yesBtn, noBtn = yesUn.Render("[ Yes ]"), noSel.Render("[ No ]")
		}
		parts = append(parts, infoStyle.Render("Continue? ")+yesBtn+"    "+noBtn)
	} else {
		parts = append(parts, "")
	}

	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Align(lipgloss.Center).
		Render("🔚 'ENTER' continue • 'q' quit • p: previous • n: next • /: filter files")
	parts = append(parts, footer)

	return strings.Join(parts, "\n")
}

// runSearch executes the engine in the background and reports the result.
func (m model) runSearch() tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		result, err := m.engine.Execute(m.ctx, m.opts.root)
		if result == nil {
			result = search.NewSearchResult()
		}
		return searchResultMsg{result: result, err: err, searchTime: time.Since(start)}
	}
}

func wrapTextWithIndent(prefix, text string, width int) string {
	prefixWidth := lipgloss.Width(prefix)
	indent := strings.Repeat(" ", prefixWidth)
	wrapped := lipgloss.NewStyle().Width(max(width-prefixWidth, 1)).Render(text)
	return prefix + strings.ReplaceAll(wrapped, "\n", "\n"+indent)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (m model) memUsageTick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		mem, cpu := sampleMemoryAndCPU()
		return memUsageMsg{Text: fmt.Sprintf(" • Heap %5.1f MB • RSS %5.1f MB • CPU %5.1f%%",
			float64(mem.heap)/(1024*1024), float64(mem.rss)/(1024*1024), cpu)}
	})
}

func pollProgress() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(time.Time) tea.Msg {
		return progressTick{}
	})
}

// runTUI shows the interactive viewer until the user quits.
func runTUI(ctx context.Context, engine *search.SearchEngine, opts *options) error {
	m := newModel(ctx, engine, opts)
	defer m.cancel()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return cli.Exit(fmt.Sprintf("tui: %v", err), ExitRuntime)
	}
	fm, ok := final.(model)
	if !ok || fm.searchErr == nil {
		return nil
	}
	switch {
	case interrupted(fm.searchErr):
		if fm.quitting {
			return nil
		}
		return cli.Exit(fmt.Sprintf("search interrupted: %v", fm.searchErr), ExitRuntime)
	case errors.Is(fm.searchErr, search.ErrPathNotFound), errors.Is(fm.searchErr, search.ErrUnsupportedFormat):
		return cli.Exit(fm.searchErr.Error(), ExitUsage)
	default:
		return cli.Exit(fm.searchErr.Error(), ExitRuntime)
	}
}

// Messages for TUI updates
type searchResultMsg struct {
	result     *search.SearchResult
	err        error
	searchTime time.Duration
}

type memUsageMsg struct {
	Text string
}

type progressTick struct{}
