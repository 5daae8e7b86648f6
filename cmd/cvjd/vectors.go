package main

import (
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cognicore/cvjd/internal/output"
	"github.com/cognicore/cvjd/pkg/cvjd/featurize"
	"github.com/cognicore/cvjd/pkg/cvjd/store"
)

func vectorsCmd(a *app) *cobra.Command {
	var groups []string

	cmd := &cobra.Command{
		Use:   "vectors",
		Short: "Build TF-IDF + PCA vectors for each column group",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			selected, err := a.cfg.FeatureGroups(groups...)
			if err != nil {
				return err
			}

			t, err := a.loadTable()
			if err != nil {
				return err
			}

			comp, err := a.loadComponents()
			if err != nil {
				return err
			}

			fz := featurize.New(comp.Pipeline, a.log)
			fz.SetObserver(a.metrics)
			fz.SetParallelism(a.cfg.Parallelism)

			results, err := fz.RunAll(ctx, t, selected)
			if err != nil {
				return err
			}

			names := make([]string, len(results))
			for i, r := range results {
				names[i] = r.Group.Name
			}
			st, runID, err := a.openRun(ctx, names...)
			if err != nil {
				return err
			}
			if st != nil {
				defer st.Close()
			}

			for _, r := range results {
				path := a.outputPath(r.Group.Name)
				if err := output.WriteMatrix(path, a.idHeader(), r.Features); err != nil {
					return fmt.Errorf("group %s: %w", r.Group.Name, err)
				}
				if st != nil {
					if err := st.SaveMatrix(ctx, runID, r.Group.Name, output.StoreMatrix(r.Features)); err != nil {
						return fmt.Errorf("group %s: store: %w", r.Group.Name, err)
					}
					if err := st.SaveScalars(ctx, runID, r.Group.Name+".explained_variance_ratio", varianceScalars(r)); err != nil {
						return fmt.Errorf("group %s: store: %w", r.Group.Name, err)
					}
				}
				a.log.WithFields(logrus.Fields{
					"group": r.Group.Name,
					"path":  path,
				}).Info("wrote vectors")
			}

			return a.finish()
		},
	}

	cmd.Flags().StringSliceVar(&groups, "groups", nil, "only build these groups (default all)")
	return cmd
}

// varianceScalars keys each component's explained variance ratio by its index.
func varianceScalars(r *featurize.Result) []store.Scalar {
	out := make([]store.Scalar, len(r.ExplainedVarianceRatio))
	for k, v := range r.ExplainedVarianceRatio {
		out[k] = store.Scalar{ID: strconv.Itoa(k), Value: v, Valid: true}
	}
	return out
}
