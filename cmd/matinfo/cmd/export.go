package cmd

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/thisMagpie/nmatrix/internal/export"
)

// NewExportCmd returns the export command.
func NewExportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:     "export FILE...",
		Short:   "export variables into a SQLite database",
		Example: `matinfo export data.mat --out data.db`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return errors.New("--out is required")
			}
			loader, err := newLoader()
			if err != nil {
				return err
			}
			ex, err := export.Open(out)
			if err != nil {
				return err
			}
			defer ex.Close()

			for _, path := range args {
				f, err := loader.Load(path)
				if err != nil {
					return err
				}
				reportErrors(path, f)
				n, err := ex.Write(cmd.Context(), path, f)
				if err != nil {
					return err
				}
				logrus.Infof("exported %d variables from %s to %s", n, path, out)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "database file to write")
	return cmd
}
