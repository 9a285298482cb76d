package cli

import (
	"time"

	"github.com/alexanderramin/taskflow/internal/service"
	"golang.org/x/text/language"
)

// App holds the services CLI commands call.
type App struct {
	Closure  service.SprintClosureService
	Tasks    service.TaskQueryService
	Projects service.ProjectService

	// Bootstrap wires the services from the global flags before any
	// subcommand runs. Tests wire App directly and leave it nil.
	Bootstrap func(opts GlobalOptions) error

	// IsInteractive reports whether forms and spinners may be shown.
	IsInteractive func() bool

	// DefaultProject is used when --project is omitted.
	DefaultProject string

	Locale language.Tag
	Now    func() time.Time
}

// GlobalOptions are the persistent flags shared by every command.
type GlobalOptions struct {
	ConfigPath string
	DataDir    string
	LogLevel   string
	LogFile    string
	Operator   string
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}
