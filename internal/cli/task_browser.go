package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/alexanderramin/taskflow/internal/cli/formatter"
	"github.com/alexanderramin/taskflow/internal/domain"
	"github.com/alexanderramin/taskflow/internal/filter"
	"github.com/alexanderramin/taskflow/internal/identity"
	"github.com/alexanderramin/taskflow/internal/service"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// statusKeys maps the digit keys to the status they toggle.
var statusKeys = map[string]domain.TaskStatus{
	"1": domain.TaskTodo,
	"2": domain.TaskInProgress,
	"3": domain.TaskReview,
	"4": domain.TaskDone,
}

// sortCycle is the order "s" steps through.
var sortCycle = append([]filter.SortKey{filter.SortNone}, filter.SortKeys...)

// quickCycle is the order "v" steps through.
var quickCycle = append([]filter.QuickView{filter.QuickNone}, filter.QuickViews...)

type browserKeys struct {
	Up, Down, Search, Status, Assignee, Priority, Label, View, Sort, Reverse, Clear, Quit key.Binding
}

var defaultBrowserKeys = browserKeys{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Status:   key.NewBinding(key.WithKeys("1", "2", "3", "4"), key.WithHelp("1-4", "status")),
	Assignee: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "assignee")),
	Priority: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "priority")),
	Label:    key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "label")),
	View:     key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "my view")),
	Sort:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
	Reverse:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reverse")),
	Clear:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k browserKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Status, k.Assignee, k.Priority, k.Label, k.View, k.Sort, k.Reverse, k.Clear, k.Quit}
}

// taskBrowser lets the operator refine a task list. a/p/l toggle the
// assignee, priority or first label of the task under the cursor; v steps
// through the quick views of the operator's own tasks.
type taskBrowser struct {
	view   *filter.View
	keys   browserKeys
	search textinput.Model
	now    time.Time

	cursor    int
	searching bool
	height    int
}

func newTaskBrowser(view *filter.View, st filter.State, sort filter.Sort, now time.Time) *taskBrowser {
	if st.Quick.Operator == "" {
		st.Quick.Operator = view.State().Quick.Operator
	}
	view.SetState(st)
	view.SetSort(sort)

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "title, description or key"
	ti.SetValue(st.Query)

	return &taskBrowser{view: view, keys: defaultBrowserKeys, search: ti, now: now, height: 20}
}

func (b *taskBrowser) Init() tea.Cmd { return nil }

func (b *taskBrowser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.height = max(msg.Height-8, 3)
		return b, nil
	case tea.KeyMsg:
		if b.searching {
			return b.updateSearch(msg)
		}
		return b.updateList(msg)
	}
	return b, nil
}

func (b *taskBrowser) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		b.searching = false
		b.search.Blur()
		b.setState(func(st *filter.State) { st.Query = b.search.Value() })
		return b, nil
	case tea.KeyEsc:
		b.searching = false
		b.search.Blur()
		b.search.SetValue(b.view.State().Query)
		return b, nil
	}
	var cmd tea.Cmd
	b.search, cmd = b.search.Update(msg)
	return b, cmd
}

func (b *taskBrowser) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tasks := b.view.Tasks()

	switch {
	case key.Matches(msg, b.keys.Quit):
		return b, tea.Quit
	case key.Matches(msg, b.keys.Up):
		if b.cursor > 0 {
			b.cursor--
		}
	case key.Matches(msg, b.keys.Down):
		if b.cursor < len(tasks)-1 {
			b.cursor++
		}
	case key.Matches(msg, b.keys.Search):
		b.searching = true
		return b, b.search.Focus()
	case key.Matches(msg, b.keys.Status):
		status := statusKeys[msg.String()]
		b.setState(func(st *filter.State) { st.ToggleStatus(status) })
	case key.Matches(msg, b.keys.Assignee):
		if t, ok := b.current(tasks); ok && t.AssigneeID != "" {
			b.setState(func(st *filter.State) { st.ToggleAssignee(t.AssigneeID) })
		}
	case key.Matches(msg, b.keys.Priority):
		if t, ok := b.current(tasks); ok && t.Priority != "" {
			b.setState(func(st *filter.State) { st.TogglePriority(t.Priority) })
		}
	case key.Matches(msg, b.keys.Label):
		if t, ok := b.current(tasks); ok && len(t.Tags) > 0 {
			b.setState(func(st *filter.State) { st.ToggleLabel(t.Tags[0]) })
		}
	case key.Matches(msg, b.keys.View):
		b.setState(func(st *filter.State) {
			i := slices.Index(quickCycle, st.Quick.View)
			st.Quick.View = quickCycle[(i+1)%len(quickCycle)]
		})
	case key.Matches(msg, b.keys.Sort):
		s := b.view.Sort()
		i := slices.Index(sortCycle, s.Key)
		s.Key = sortCycle[(i+1)%len(sortCycle)]
		b.view.SetSort(s)
		b.cursor = 0
	case key.Matches(msg, b.keys.Reverse):
		s := b.view.Sort()
		s.Reverse = !s.Reverse
		b.view.SetSort(s)
	case key.Matches(msg, b.keys.Clear):
		b.search.SetValue("")
		b.setState(func(st *filter.State) { st.Clear() })
	}
	return b, nil
}

func (b *taskBrowser) current(tasks []domain.Task) (domain.Task, bool) {
	if b.cursor < 0 || b.cursor >= len(tasks) {
		return domain.Task{}, false
	}
	return tasks[b.cursor], true
}

func (b *taskBrowser) setState(edit func(st *filter.State)) {
	st := b.view.State()
	edit(&st)
	b.view.SetState(st)
	b.cursor = min(b.cursor, max(len(b.view.Tasks())-1, 0))
}

func (b *taskBrowser) View() string {
	var sb strings.Builder
	tasks := b.view.Tasks()

	if b.searching {
		sb.WriteString(b.search.View() + "\n")
	} else if summary := formatter.FormatFilterSummary(b.view.State(), b.view.Sort()); summary != "" {
		sb.WriteString(summary + "\n")
	}

	if len(tasks) == 0 {
		if b.view.Total() == 0 {
			sb.WriteString(formatter.Dim("No tasks found.") + "\n")
		} else {
			sb.WriteString(formatter.Dim("No tasks match the current filters.") + "\n")
		}
	}

	start := 0
	if b.cursor >= b.height {
		start = b.cursor - b.height + 1
	}
	end := min(start+b.height, len(tasks))
	for i := start; i < end; i++ {
		sb.WriteString(b.renderRow(tasks[i], i == b.cursor) + "\n")
	}

	sb.WriteString(formatter.Dim(fmt.Sprintf("Showing %d of %d tasks", len(tasks), b.view.Total())) + "\n")

	help := make([]string, 0, len(b.keys.ShortHelp()))
	for _, k := range b.keys.ShortHelp() {
		h := k.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	sb.WriteString(formatter.Dim(strings.Join(help, " · ")))
	return sb.String()
}

func (b *taskBrowser) renderRow(t domain.Task, selected bool) string {
	cursor := "  "
	if selected {
		cursor = formatter.StyleGreen.Render("▸ ")
	}
	line := fmt.Sprintf("%s%-10s %s  %s  %s",
		cursor,
		taskKey(t),
		formatter.TaskStatusPill(t.Status),
		formatter.Truncate(t.Title, 50),
		formatter.DueStyled(t.DueDate, b.now),
	)
	if len(t.Tags) > 0 {
		line += "  " + formatter.StylePurple.Render(strings.Join(t.Tags, ", "))
	}
	return line
}

func taskKey(t domain.Task) string {
	if t.ShortKey != "" {
		return t.ShortKey
	}
	if len(t.ID) > 8 {
		return t.ID[:8]
	}
	return t.ID
}

func runTaskBrowser(ctx context.Context, out io.Writer, app *App, scope service.Scope, st filter.State, sort filter.Sort) error {
	view, err := app.Tasks.Browse(ctx, scope)
	if err != nil {
		return err
	}
	if st.Quick.View != filter.QuickNone && st.Quick.Operator == "" && view.State().Quick.Operator == "" {
		return fmt.Errorf("view %q needs the operator: %w", st.Quick.View, identity.ErrMissing)
	}
	browser := newTaskBrowser(view, st, sort, app.now())
	_, err = tea.NewProgram(browser, tea.WithOutput(out), tea.WithContext(ctx), tea.WithAltScreen()).Run()
	return err
}
