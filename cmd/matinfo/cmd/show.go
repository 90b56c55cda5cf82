package cmd

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/thisMagpie/nmatrix/internal/fingerprint"
	"github.com/thisMagpie/nmatrix/matlab"
)

// NewShowCmd returns the show command.
func NewShowCmd() *cobra.Command {
	var digest bool
	cmd := &cobra.Command{
		Use:     "show FILE NAME",
		Short:   "print one variable",
		Example: `matinfo show data.mat A --digest`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			loader, err := newLoader()
			if err != nil {
				return err
			}
			f, err := loader.Load(args[0])
			if err != nil {
				return err
			}
			vars := f.Lookup(args[1])
			if len(vars) == 0 {
				return errors.Errorf("no variable %q in %s", args[1], args[0])
			}
			for _, m := range vars {
				if digest {
					fmt.Fprintf(cmd.OutOrStdout(), "%s blake3:%s\n", m.Name, fingerprint.Hex(m))
					continue
				}
				if err := printMatrix(cmd.OutOrStdout(), m); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&digest, "digest", false, "print the BLAKE3 fingerprint instead of the values")
	return cmd
}

func printMatrix(w io.Writer, m *matlab.Matrix) error {
	fmt.Fprintf(w, "%s: %s %v %s\n", m.Name, m.Class, m.Dimension, m.Dtype())
	switch {
	case m.Class == matlab.MxChar:
		fmt.Fprintln(w, m.Text())
		return nil
	case m.Flags.Complex:
		vals, err := m.DenseComplex()
		if err != nil {
			return err
		}
		if len(m.Dimension) != 2 {
			fmt.Fprintln(w, vals)
			return nil
		}
		rows, cols := m.Dimension[0], m.Dimension[1]
		row := make([]complex128, cols)
		for r := 0; r < rows; r++ {
			for c := range row {
				row[c] = vals[c*rows+r]
			}
			fmt.Fprintln(w, row)
		}
		return nil
	case len(m.Dimension) == 2:
		rows, err := m.RowMajor()
		if err != nil {
			return err
		}
		for _, r := range rows {
			fmt.Fprintln(w, r)
		}
		return nil
	default:
		vals, err := m.Dense()
		if err != nil {
			return err
		}
		fmt.Fprintln(w, vals)
		return nil
	}
}
