package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"notion-importer/internal/analyze"
)

func newTypesCmd(a *app) *cobra.Command {
	var namespace string

	cmd := &cobra.Command{
		Use:   "types",
		Short: "List the destination types compiled into the importer",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runTypes(a, namespace)
		},
	}

	cmd.Flags().StringVarP(&namespace, "namespace", "n", "", "Only list types of this namespace")

	return cmd
}

func runTypes(a *app, namespace string) error {
	types := a.registry.ListAssignableTypes(namespace)
	if len(types) == 0 {
		fmt.Fprintln(a.out, "No destination types registered.")

		return nil
	}

	table := tablewriter.NewWriter(a.out)
	table.SetHeader([]string{"Type", "Namespace", "Fields", "Collections"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)

	for _, t := range types {
		fields := a.registry.ListFields(t)
		table.Append([]string{t.ID.Short(), t.Namespace, strconv.Itoa(len(fields)), strings.Join(collectionFields(fields), ", ")})
	}

	table.Render()

	return nil
}

// collectionFields describes the fields a collection definition can target.
func collectionFields(fields []analyze.FieldInfo) []string {
	var out []string

	for _, f := range fields {
		if f.Semantic.IsCollection() {
			out = append(out, fmt.Sprintf("%s (%s)", f.Name, f.Semantic.ElemMode))
		}
	}

	return out
}
