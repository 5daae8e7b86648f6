package main

import (
	"github.com/spf13/cobra"

	"github.com/cognicore/cvjd/internal/output"
	"github.com/cognicore/cvjd/pkg/cvjd/overlap"
	"github.com/cognicore/cvjd/pkg/cvjd/store"
)

func overlapCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "overlap",
		Short: "Count words shared by each CV and job description",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			required := append(append([]string{}, overlap.CVColumns...), overlap.JDColumns...)
			t, err := a.loadTable(required...)
			if err != nil {
				return err
			}

			comp, err := a.loadComponents()
			if err != nil {
				return err
			}
			counts := overlap.NewCounter(comp.Tokenizer, comp.Filter).ComputeAll(t.Records)

			values := make([]store.Scalar, len(counts))
			for i, n := range counts {
				values[i] = store.Scalar{Value: float64(n), Valid: true}
			}

			st, runID, err := a.openRun(ctx)
			if err != nil {
				return err
			}
			if st != nil {
				defer st.Close()
			}

			cols := []output.Column{{Name: "equal_job", Values: values}}
			if err := a.writeScalars(ctx, st, runID, "equal_job", recordIDs(t), cols); err != nil {
				return err
			}
			return a.finish()
		},
	}
}
