package cli

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/alexanderramin/taskflow/internal/domain"
	"github.com/alexanderramin/taskflow/internal/filter"
	"github.com/alexanderramin/taskflow/internal/migration"
	"github.com/spf13/pflag"
)

// destination is a parsed "backlog", "keep" or "sprint:ID".
type destination struct {
	Dest   migration.Destination
	Target string
}

func parseDestination(s string) (destination, error) {
	s = strings.TrimSpace(s)
	kind, target, _ := strings.Cut(s, ":")
	switch migration.Destination(strings.ToLower(kind)) {
	case migration.DestinationBacklog:
		return destination{Dest: migration.DestinationBacklog}, nil
	case migration.DestinationKeep:
		return destination{Dest: migration.DestinationKeep}, nil
	case migration.DestinationSprint:
		target = strings.TrimSpace(target)
		if target == "" {
			return destination{}, fmt.Errorf("destination %q needs a sprint id (sprint:ID)", s)
		}
		return destination{Dest: migration.DestinationSprint, Target: target}, nil
	}
	return destination{}, fmt.Errorf("unknown destination %q (want backlog, keep or sprint:ID)", s)
}

func (d destination) String() string {
	if d.Dest == migration.DestinationSprint {
		return "sprint:" + d.Target
	}
	return string(d.Dest)
}

// moveSpec is one --move TASK=DEST entry. Task is an ID or short key.
type moveSpec struct {
	Task string
	destination
}

// moveFlag collects repeated --move flags.
type moveFlag struct {
	specs []moveSpec
}

var _ pflag.Value = (*moveFlag)(nil)

func (f *moveFlag) String() string {
	parts := make([]string, len(f.specs))
	for i, s := range f.specs {
		parts[i] = s.Task + "=" + s.destination.String()
	}
	return strings.Join(parts, ",")
}

func (f *moveFlag) Set(v string) error {
	task, dest, ok := strings.Cut(v, "=")
	task = strings.TrimSpace(task)
	if !ok || task == "" {
		return fmt.Errorf("expected TASK=DEST, got %q", v)
	}
	d, err := parseDestination(dest)
	if err != nil {
		return err
	}
	f.specs = append(f.specs, moveSpec{Task: task, destination: d})
	return nil
}

func (f *moveFlag) Type() string { return "task=dest" }

// destinationFlag is a single optional destination such as --all.
type destinationFlag struct {
	set bool
	destination
}

var _ pflag.Value = (*destinationFlag)(nil)

func (f *destinationFlag) String() string {
	if !f.set {
		return ""
	}
	return f.destination.String()
}

func (f *destinationFlag) Set(v string) error {
	d, err := parseDestination(v)
	if err != nil {
		return err
	}
	f.destination = d
	f.set = true
	return nil
}

func (f *destinationFlag) Type() string { return "dest" }

type sortFlag struct {
	key filter.SortKey
}

var _ pflag.Value = (*sortFlag)(nil)

func (f *sortFlag) String() string { return string(f.key) }

func (f *sortFlag) Set(v string) error {
	k, err := filter.ParseSortKey(v)
	if err != nil {
		return err
	}
	f.key = k
	return nil
}

func (f *sortFlag) Type() string { return "key" }

// quickFlag selects one of the operator's quick views.
type quickFlag struct {
	view filter.QuickView
}

var _ pflag.Value = (*quickFlag)(nil)

func (f *quickFlag) String() string { return string(f.view) }

func (f *quickFlag) Set(v string) error {
	view, err := filter.ParseQuickView(v)
	if err != nil {
		return err
	}
	f.view = view
	return nil
}

func (f *quickFlag) Type() string { return "view" }

// dateFlag parses YYYY-MM-DD in the local time zone.
type dateFlag struct {
	t time.Time
}

var _ pflag.Value = (*dateFlag)(nil)

func (f *dateFlag) String() string {
	if f.t.IsZero() {
		return ""
	}
	return f.t.Format(time.DateOnly)
}

func (f *dateFlag) Set(v string) error {
	t, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(v), time.Local)
	if err != nil {
		return fmt.Errorf("invalid date %q (want YYYY-MM-DD)", v)
	}
	f.t = t
	return nil
}

func (f *dateFlag) Type() string { return "date" }

func parseStatuses(vals []string) ([]domain.TaskStatus, error) {
	var out []domain.TaskStatus
	for _, v := range vals {
		s := domain.TaskStatus(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(v), "-", "_")))
		if !domain.ValidTaskStatuses[s] {
			return nil, fmt.Errorf("unknown status %q", v)
		}
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out, nil
}

func parsePriorities(vals []string) ([]domain.Priority, error) {
	var out []domain.Priority
	for _, v := range vals {
		p := domain.Priority(strings.ToUpper(strings.TrimSpace(v)))
		if p == "BLOCK" {
			p = domain.PriorityBlocker
		}
		if !domain.ValidPriorities[p] {
			return nil, fmt.Errorf("unknown priority %q", v)
		}
		if !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out, nil
}
