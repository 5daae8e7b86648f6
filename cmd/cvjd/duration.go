package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/cognicore/cvjd/internal/output"
	"github.com/cognicore/cvjd/pkg/cvjd/duration"
	"github.com/cognicore/cvjd/pkg/cvjd/store"
)

func durationCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "duration",
		Short: "Average job length in days from the work history",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			t, err := a.loadTable(duration.Field)
			if err != nil {
				return err
			}

			now := time.Now()
			values := make([]store.Scalar, len(t.Records))
			for i, rec := range t.Records {
				spans, err := duration.Extract(rec.Field(duration.Field), now)
				if err != nil {
					a.log.WithError(err).WithField("record", rec.ID).Debug("unreadable work history")
					continue
				}
				if mean, ok := duration.Mean(spans); ok {
					values[i] = store.Scalar{Value: mean, Valid: true}
				}
			}

			st, runID, err := a.openRun(ctx)
			if err != nil {
				return err
			}
			if st != nil {
				defer st.Close()
			}

			cols := []output.Column{{Name: "work_duration_mean", Values: values}}
			if err := a.writeScalars(ctx, st, runID, "work_duration_mean", recordIDs(t), cols); err != nil {
				return err
			}
			return a.finish()
		},
	}
}
