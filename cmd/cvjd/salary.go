package main

import (
	"github.com/spf13/cobra"

	"github.com/cognicore/cvjd/internal/output"
	"github.com/cognicore/cvjd/pkg/cvjd/normalize"
	"github.com/cognicore/cvjd/pkg/cvjd/salary"
	"github.com/cognicore/cvjd/pkg/cvjd/store"
)

func salaryCmd(a *app) *cobra.Command {
	var columns []string

	cmd := &cobra.Command{
		Use:   "salary",
		Short: "Parse salary strings into annual thousands",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			t, err := a.loadTable(columns...)
			if err != nil {
				return err
			}

			norm, err := normalize.New()
			if err != nil {
				return err
			}
			parser := salary.NewParser(norm)

			cols := make([]output.Column, len(columns))
			for j, col := range columns {
				values := make([]store.Scalar, len(t.Records))
				for i, rec := range t.Records {
					if s, ok := parser.Parse(rec.Field(col)); ok {
						values[i] = store.Scalar{Value: float64(s.Annual), Valid: true}
					}
				}
				cols[j] = output.Column{Name: "parsed_" + col, Values: values}
			}

			st, runID, err := a.openRun(ctx)
			if err != nil {
				return err
			}
			if st != nil {
				defer st.Close()
			}

			if err := a.writeScalars(ctx, st, runID, "salary", recordIDs(t), cols); err != nil {
				return err
			}
			return a.finish()
		},
	}

	cmd.Flags().StringSliceVar(&columns, "columns", []string{"desiredSalary", "currentSalary"}, "salary columns to parse")
	return cmd
}
