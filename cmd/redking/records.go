package main

import (
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/redking/cost"
	"github.com/lixenwraith/redking/evolve"
	"github.com/lixenwraith/redking/store"
)

func (a *app) voteCmd() *cobra.Command {
	var up, down int
	cmd := &cobra.Command{
		Use:   "vote <id>",
		Short: "Record feedback on a run and refresh fitness",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if up < 0 || down < 0 {
				return fmt.Errorf("votes must not be negative")
			}
			if up == 0 && down == 0 {
				return fmt.Errorf("nothing to record: use --up or --down")
			}

			s, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			defer store.CloseIfSupported(s)

			ctx := cmd.Context()
			if err := s.AddFeedback(ctx, args[0], up, down); err != nil {
				return err
			}
			if _, err := evolve.NewFitnessTracker(s, a.logger).Update(ctx); err != nil {
				return err
			}
			rec, err := s.Get(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  +%d -%d  fitness %g\n", rec.ID, rec.Upvotes, rec.Downvotes, rec.Fitness)
			return nil
		},
	}
	cmd.Flags().IntVar(&up, "up", 0, "Upvotes to add")
	cmd.Flags().IntVar(&down, "down", 0, "Downvotes to add")
	return cmd
}

func (a *app) fitnessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fitness",
		Short: "Recompute fitness for every run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			defer store.CloseIfSupported(s)

			changed, err := evolve.NewFitnessTracker(s, a.logger).Update(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %d records\n", changed)
			return nil
		},
	}
}

func (a *app) lineageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lineage <id>",
		Short: "Show a run and its ancestors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			defer store.CloseIfSupported(s)

			chain, err := evolve.Lineage(cmd.Context(), s, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for depth, rec := range chain {
				fmt.Fprintf(out, "%d  %s  %s  fitness %g  %s\n",
					depth, rec.ID, rec.CreatedAt.Format(time.RFC3339), rec.Fitness, rec.Params)
			}
			if last := chain[len(chain)-1]; last.HasParent() {
				fmt.Fprintf(out, "parent %s no longer exists\n", last.ParentID)
			}
			return nil
		},
	}
}

// exportDoc is the YAML layout written by export
type exportDoc struct {
	Exported time.Time           `yaml:"exported"`
	Runs     []store.RunRecord   `yaml:"runs"`
	Children map[string][]string `yaml:"children"`
}

func (a *app) exportCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all runs and their lineage as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			defer store.CloseIfSupported(s)

			runs, err := s.ListAll(cmd.Context())
			if err != nil {
				return err
			}
			children := evolve.Children(runs)
			delete(children, "")

			data, err := yaml.Marshal(exportDoc{
				Exported: time.Now().UTC(),
				Runs:     runs,
				Children: children,
			})
			if err != nil {
				return fmt.Errorf("encode yaml: %w", err)
			}

			if outPath == "" || outPath == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return os.WriteFile(outPath, data, 0644)
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (stdout when empty)")
	return cmd
}

func (a *app) sampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sample",
		Short: "Print a random parameter set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
			params := cost.Encode(cost.Random(rng))
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", evolve.BaseName(params), params)
			return nil
		},
	}
}
