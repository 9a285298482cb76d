package cli

import (
	"fmt"

	"github.com/alexanderramin/taskflow/internal/cli/formatter"
	"github.com/alexanderramin/taskflow/internal/domain"
	"github.com/alexanderramin/taskflow/internal/migration"
	"github.com/charmbracelet/huh"
)

// destinationOptions lists backlog, keep and every candidate sprint.
func destinationOptions(candidates []domain.Sprint) []huh.Option[string] {
	opts := []huh.Option[string]{
		huh.NewOption("Move to backlog", destination{Dest: migration.DestinationBacklog}.String()),
		huh.NewOption("Keep in the closed sprint", destination{Dest: migration.DestinationKeep}.String()),
	}
	for _, sp := range candidates {
		d := destination{Dest: migration.DestinationSprint, Target: sp.ID}
		opts = append(opts, huh.NewOption("Move to "+sp.Name, d.String()))
	}
	return opts
}

// closureForm asks for every task's destination and a final confirmation.
// values is keyed by task ID and pre-filled with the current choices.
func closureForm(session *migration.Session, values map[string]*string, confirmed *bool) *huh.Form {
	options := destinationOptions(session.Candidates())
	current := make(map[string]string)
	for _, c := range session.Choices() {
		current[c.TaskID] = destination{Dest: c.Destination, Target: c.TargetSprintID}.String()
	}

	var fields []huh.Field
	for _, t := range session.Tasks() {
		v := current[t.ID]
		values[t.ID] = &v
		title := t.Title
		if t.ShortKey != "" {
			title = t.ShortKey + "  " + t.Title
		}
		fields = append(fields, huh.NewSelect[string]().
			Title(title).
			Description(formatter.Dim(string(t.Status))).
			Options(options...).
			Value(values[t.ID]))
	}

	confirmField := huh.NewConfirm().
		Title(fmt.Sprintf("%s sprint %s?", capitalize(string(session.Action())), sprintName(session))).
		Affirmative("Yes").
		Negative("No").
		Value(confirmed)

	groups := []*huh.Group{}
	if len(fields) > 0 {
		groups = append(groups, huh.NewGroup(fields...).Title("Where should each incomplete task go?"))
	}
	groups = append(groups, huh.NewGroup(confirmField))

	return huh.NewForm(groups...).WithTheme(huhTheme()).WithShowHelp(false)
}

// runClosureForm runs closureForm and applies the answers to session.
func runClosureForm(session *migration.Session) (bool, error) {
	values := make(map[string]*string)
	var confirmed bool
	if err := closureForm(session, values, &confirmed).Run(); err != nil {
		return false, err
	}
	if err := applyFormValues(session, values); err != nil {
		return false, err
	}
	return confirmed, nil
}

func applyFormValues(session *migration.Session, values map[string]*string) error {
	for taskID, v := range values {
		d, err := parseDestination(*v)
		if err != nil {
			return err
		}
		if err := session.SetChoice(taskID, d.Dest, d.Target); err != nil {
			return err
		}
	}
	return nil
}

func confirm(title string) (bool, error) {
	var ok bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().Title(title).Affirmative("Yes").Negative("No").Value(&ok),
	)).WithTheme(huhTheme()).WithShowHelp(false)
	if err := form.Run(); err != nil {
		return false, err
	}
	return ok, nil
}
