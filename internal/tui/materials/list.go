// ABOUTME: Materials table screen with paging, category filter and search
// ABOUTME: Loads one page at a time; stale responses from earlier requests are dropped

package materials

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/materialhub/materialhub-cli/internal/catalog"
	"github.com/materialhub/materialhub-cli/internal/client"
	"github.com/materialhub/materialhub-cli/internal/models"
	"github.com/materialhub/materialhub-cli/internal/router"
	"github.com/materialhub/materialhub-cli/internal/tui/screen"
	"github.com/materialhub/materialhub-cli/internal/tui/styles"
)

// PageSize is how many materials one page shows
const PageSize = 20

// Source is the part of the materials API the screens use
type Source interface {
	List(ctx context.Context, p client.ListParams) (*models.MaterialPage, error)
	Get(ctx context.Context, id int) (*models.Material, error)
	Like(ctx context.Context, id int) (*models.LikeResult, error)
}

// Catalogs loads the category list used by the filter
type Catalogs interface {
	Load(ctx context.Context) (*catalog.Catalog, error)
}

type pageLoadedMsg struct {
	seq  int
	page *models.MaterialPage
	err  error
}

type catalogLoadedMsg struct {
	cat *catalog.Catalog
	err error
}

// List is the /materials screen
type List struct {
	ctx      context.Context
	src      Source
	catalogs Catalogs

	params     client.ListParams
	categories []models.Category
	catIndex   int // 0 is "all"

	table     table.Model
	search    textinput.Model
	searching bool
	spinner   spinner.Model
	loading   bool
	seq       int

	page  *models.MaterialPage
	err   error
	width int
}

// NewList builds the screen; nothing is fetched until Init
func NewList(ctx context.Context, src Source, catalogs Catalogs) *List {
	ti := textinput.New()
	ti.Placeholder = "search titles and descriptions"
	ti.CharLimit = 100
	ti.Prompt = "/ "

	t := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
		table.WithHeight(PageSize),
	)
	t.SetStyles(styles.Table())

	return &List{
		ctx:      ctx,
		src:      src,
		catalogs: catalogs,
		params:   client.ListParams{PageParams: client.PageParams{Page: 1, Size: PageSize}},
		table:    t,
		search:   ti,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

func columns(width int) []table.Column {
	title := max(20, width-64)
	return []table.Column{
		{Title: "ID", Width: 5},
		{Title: "Title", Width: title},
		{Title: "Category", Width: 10},
		{Title: "Map", Width: 10},
		{Title: "Type", Width: 6},
		{Title: "Likes", Width: 6},
		{Title: "Uploader", Width: 12},
	}
}

func (l *List) Init() tea.Cmd {
	cmds := []tea.Cmd{l.load(), l.spinner.Tick}
	if l.catalogs != nil {
		cmds = append(cmds, l.loadCatalog())
	}
	return tea.Batch(cmds...)
}

func (l *List) load() tea.Cmd {
	l.seq++
	l.loading = true
	seq, params := l.seq, l.params
	return func() tea.Msg {
		page, err := l.src.List(l.ctx, params)
		return pageLoadedMsg{seq: seq, page: page, err: err}
	}
}

func (l *List) loadCatalog() tea.Cmd {
	return func() tea.Msg {
		cat, err := l.catalogs.Load(l.ctx)
		return catalogLoadedMsg{cat: cat, err: err}
	}
}

// Capturing reports whether the search field has focus
func (l *List) Capturing() bool { return l.searching }

func (l *List) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		l.width = msg.Width
		l.table.SetColumns(columns(msg.Width))
		l.table.SetHeight(max(5, min(PageSize, msg.Height-6)))
		return l, nil

	case pageLoadedMsg:
		if msg.seq != l.seq {
			return l, nil
		}
		l.loading = false
		l.err = msg.err
		if msg.err == nil {
			l.page = msg.page
			l.table.SetRows(rows(msg.page.Materials))
			l.table.SetCursor(0)
		}
		return l, nil

	case catalogLoadedMsg:
		if msg.err == nil {
			l.categories = msg.cat.Categories
		}
		return l, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		l.spinner, cmd = l.spinner.Update(msg)
		return l, cmd

	case tea.KeyMsg:
		if l.searching {
			return l.updateSearch(msg)
		}
		return l.updateTable(msg)
	}
	return l, nil
}

func (l *List) updateSearch(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		l.searching = false
		l.search.Blur()
		l.search.SetValue(l.params.Search)
		return l, nil
	case "enter":
		l.searching = false
		l.search.Blur()
		l.params.Search = strings.TrimSpace(l.search.Value())
		l.params.Page = 1
		return l, l.load()
	}
	var cmd tea.Cmd
	l.search, cmd = l.search.Update(msg)
	return l, cmd
}

func (l *List) updateTable(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if row := l.table.SelectedRow(); row != nil {
			return l, screen.Navigate("/materials/" + row[0])
		}
		return l, nil
	case "/":
		l.searching = true
		return l, l.search.Focus()
	case "c":
		l.cycleCategory()
		return l, l.load()
	case "n", "right":
		if l.page != nil && l.params.Page < l.page.Pages() {
			l.params.Page++
			return l, l.load()
		}
		return l, nil
	case "p", "left":
		if l.params.Page > 1 {
			l.params.Page--
			return l, l.load()
		}
		return l, nil
	case "r":
		return l, l.load()
	case "b", "esc":
		return l, screen.Navigate(router.HomePath)
	}

	var cmd tea.Cmd
	l.table, cmd = l.table.Update(msg)
	return l, cmd
}

// cycleCategory moves the filter to the next category, wrapping to "all"
func (l *List) cycleCategory() {
	if len(l.categories) == 0 {
		return
	}
	l.catIndex = (l.catIndex + 1) % (len(l.categories) + 1)
	l.params.Category = ""
	if l.catIndex > 0 {
		l.params.Category = l.categories[l.catIndex-1].Value
	}
	l.params.Page = 1
}

func rows(ms []models.Material) []table.Row {
	out := make([]table.Row, len(ms))
	for i, m := range ms {
		out[i] = table.Row{
			strconv.Itoa(m.ID),
			m.Title,
			m.Category,
			m.MapName,
			m.FileType,
			strconv.Itoa(m.Likes),
			m.Uploader.Username,
		}
	}
	return out
}

func (l *List) filterLine() string {
	category := "all"
	if l.params.Category != "" {
		category = l.params.Category
	}
	parts := []string{"Category: " + category}
	if l.params.Search != "" {
		parts = append(parts, fmt.Sprintf("Search: %q", l.params.Search))
	}
	if l.page != nil {
		parts = append(parts, fmt.Sprintf("Page %d of %d (%d total)", l.params.Page, max(1, l.page.Pages()), l.page.Total))
	}
	return strings.Join(parts, "  ·  ")
}

func (l *List) View() string {
	var b strings.Builder
	b.WriteString(styles.Title.Render("Materials"))
	b.WriteString("\n")
	b.WriteString(styles.Subtitle.Render(l.filterLine()))
	b.WriteString("\n")

	if l.searching {
		b.WriteString(l.search.View())
		b.WriteString("\n\n")
	}

	switch {
	case l.err != nil:
		b.WriteString(styles.StatusCritical.Render("Error: " + screen.ErrorText(l.err)))
	case l.page == nil:
		b.WriteString(l.spinner.View() + " Loading materials...")
	case len(l.page.Materials) == 0:
		b.WriteString(styles.Subtitle.Render("No materials match these filters."))
	default:
		b.WriteString(l.table.View())
		if l.loading {
			b.WriteString("\n" + l.spinner.View() + " Refreshing...")
		}
	}
	return b.String()
}

func (l *List) Shortcuts() []string {
	if l.searching {
		return []string{"Enter Search", "Esc Cancel"}
	}
	return []string{"↑↓ Select", "Enter Open", "/ Search", "c Category", "n/p Page", "b Back"}
}
