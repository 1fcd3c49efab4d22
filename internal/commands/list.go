package commands

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"notion-importer/internal/mapping"
	"notion-importer/internal/notion"
	"notion-importer/internal/prompts"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known Notion objects and saved definitions",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runList(a)
		},
	}
}

func runList(a *app) error {
	forest, err := a.settings.Forest()
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, prompts.Heading("Notion objects"))

	if len(forest.Objects()) == 0 {
		fmt.Fprintln(a.out, "No objects known, run connect first.")
	} else {
		table := tablewriter.NewWriter(a.out)
		table.SetHeader([]string{"Title", "Type", "ID", "Properties"})
		table.SetAutoFormatHeaders(false)
		table.SetAutoWrapText(false)

		forest.Walk(func(o *notion.Object, depth int) {
			title := o.MainTitle()
			if title == "" {
				title = "(untitled)"
			}

			table.Append([]string{
				strings.Repeat("  ", depth) + title,
				o.ObjectType.String(),
				notion.NormalizeID(o.ID),
				strconv.Itoa(len(forest.Properties(o.ID))),
			})
		})

		table.Render()
	}

	paths, err := mapping.List(a.definitionsDir())
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, prompts.Heading("Definitions"))

	if len(paths) == 0 {
		fmt.Fprintln(a.out, "No definitions saved.")

		return nil
	}

	table := tablewriter.NewWriter(a.out)
	table.SetHeader([]string{"Name", "Mode", "Type", "Target", "Fields"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)

	for _, p := range paths {
		def, err := mapping.LoadFile(p)
		if err != nil {
			table.Append([]string{filepath.Base(p), "", "", "", "invalid: " + err.Error()})

			continue
		}

		target := def.TargetDB.Title
		if target == "" {
			target = def.TargetDB.ID
		}

		table.Append([]string{
			def.DefinitionName,
			def.MappingMode.String(),
			def.TargetTypeName().Short(),
			fmt.Sprintf("%s (%s)", target, def.TargetDB.ObjectType),
			strconv.Itoa(len(def.MappingData)),
		})
	}

	table.Render()

	return nil
}
