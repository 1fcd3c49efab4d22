package prompts

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
)

// GroupPrompter asks which group of a filtered definition to write.
type GroupPrompter struct{}

// SelectGroup implements importer.Prompter.
func (GroupPrompter) SelectGroup(ctx context.Context, definition string, keys []string) (string, error) {
	if len(keys) == 1 {
		return keys[0], nil
	}

	options := make([]huh.Option[string], len(keys))
	for i, k := range keys {
		options[i] = huh.NewOption(k, k)
	}

	value := keys[0]

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(fmt.Sprintf("Group of %s to import", definition)).
				Options(options...).
				Filtering(true).
				Value(&value).
				Height(10),
		),
	).WithTheme(Theme()).RunWithContext(ctx)

	return value, err
}
