package prompts

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"notion-importer/internal/analyze"
	"notion-importer/internal/mapping"
	"notion-importer/internal/notion"
)

// DefinitionAnswers holds the choices of the new definition form.
type DefinitionAnswers struct {
	Name       string
	TargetID   string
	Type       analyze.TypeID
	Collection string
	OutputPath string
}

// RunNewDefinitionForm asks for the parts of a new definition that were not
// given on the command line. Fields of answers already set are kept and not
// asked again.
func RunNewDefinitionForm(
	answers *DefinitionAnswers,
	targets []notion.Object,
	types []*analyze.TypeInfo,
	collections func(analyze.TypeID) []string,
	existing map[string]bool,
) error {
	var fields []huh.Field

	if answers.Name == "" {
		fields = append(fields, huh.NewInput().
			Title("Definition name").
			Placeholder("e.g., Items, Items_"+mapping.GroupKeyPlaceholder).
			Value(&answers.Name).
			Validate(definitionNameValidator(existing)))
	}

	if answers.TargetID == "" {
		options := make([]huh.Option[string], len(targets))
		for i, t := range targets {
			options[i] = huh.NewOption(fmt.Sprintf("%s (%s)", t.MainTitle(), t.ObjectType), t.ID)
		}

		fields = append(fields, huh.NewSelect[string]().
			Title("Notion database").
			Options(options...).
			Filtering(true).
			Value(&answers.TargetID).
			Height(10))
	}

	if answers.Type == "" {
		options := make([]huh.Option[analyze.TypeID], len(types))
		for i, t := range types {
			options[i] = huh.NewOption(t.ID.Short(), t.ID)
		}

		fields = append(fields, huh.NewSelect[analyze.TypeID]().
			Title("Destination type").
			Options(options...).
			Filtering(true).
			Value(&answers.Type).
			Height(10))
	}

	if answers.OutputPath == "" {
		fields = append(fields, huh.NewInput().
			Title("Output folder").
			Placeholder("assets").
			Value(&answers.OutputPath).
			Validate(requiredValidator("output folder")))
	}

	if len(fields) > 0 {
		if err := huh.NewForm(huh.NewGroup(fields...)).WithTheme(Theme()).Run(); err != nil {
			return err
		}
	}

	if answers.Collection != "" || collections == nil {
		return nil
	}

	names := collections(answers.Type)
	if len(names) == 0 {
		return nil
	}

	options := []huh.Option[string]{huh.NewOption("none (one asset per page)", "")}
	for _, n := range names {
		options = append(options, huh.NewOption(n, n))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Collection field").
				Options(options...).
				Value(&answers.Collection),
		),
	).WithTheme(Theme()).Run()
}
