package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/docker/go-units"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/thisMagpie/nmatrix/matlab"
)

var listHeader = []string{"NAME", "CLASS", "DTYPE", "DIMS", "COMPLEX", "NNZ", "SIZE"}

// NewListCmd returns the list command.
func NewListCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:     "list FILE...",
		Short:   "list the variables of .mat files",
		Example: `matinfo list data.mat results.mat.xz`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loader, err := newLoader()
			if err != nil {
				return err
			}
			for _, path := range args {
				f, err := loader.Load(path)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s)\n", path, f.Header.Text, f.Header.ByteOrder)
				table := tablewriter.NewWriter(cmd.OutOrStdout())
				table.SetHeader(listHeader)
				for _, m := range f.Vars() {
					table.Append(listRow(m))
				}
				if all {
					for _, r := range f.Records() {
						if r.Kind != matlab.KindMatrix {
							table.Append([]string{r.Name, r.Kind.String(), r.Type.String(), "", "", "", units.BytesSize(float64(r.Length))})
						}
					}
				}
				table.Render()
				reportErrors(path, f)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "also list skipped and failed elements")
	return cmd
}

func listRow(m *matlab.Matrix) []string {
	dims := make([]string, len(m.Dimension))
	for i, d := range m.Dimension {
		dims[i] = strconv.Itoa(d)
	}
	size := float64(m.NNZ() * m.Dtype().Size())
	return []string{
		m.Name,
		m.Class.String(),
		m.Dtype().String(),
		strings.Join(dims, "x"),
		strconv.FormatBool(m.Flags.Complex),
		strconv.Itoa(m.NNZ()),
		units.BytesSize(size),
	}
}
