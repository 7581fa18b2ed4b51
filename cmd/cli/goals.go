package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dvloznov/zenith/internal/domain"
	"github.com/dvloznov/zenith/internal/planner"
)

func newGoalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Manage savings goals",
	}
	cmd.AddCommand(newGoalAddCmd(), newGoalListCmd(), newGoalShowCmd())
	return cmd
}

func newGoalAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name> <target>",
		Short: "Add a savings goal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := domain.ParseAmount(args[1])
			if err != nil {
				return err
			}
			return run(cmd, false, true, func(a *app) error {
				g, change, err := a.sess.AddGoal(args[0], target)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Added goal %s (%s)\n", g.Name, g.ID)
				printChange(a.out, change)
				return nil
			})
		},
	}
}

func newGoalListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List goals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, false, false, func(a *app) error {
				tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tTARGET\tDONE\tPLAN")
				for _, g := range a.sess.Goals() {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n",
						g.ID, g.Name, domain.FormatAmount(g.TargetAmount), g.IsCompleted, g.PlanStatus)
				}
				return tw.Flush()
			})
		},
	}
}

func newGoalShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a goal and its budget plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, false, false, func(a *app) error {
				g, err := a.sess.Goal(args[0])
				if err != nil {
					return err
				}
				printGoal(a, g)
				return nil
			})
		},
	}
}

func printGoal(a *app, g domain.Goal) {
	fmt.Fprintf(a.out, "%s: $%s (completed: %t, plan: %s)\n",
		g.Name, domain.FormatAmount(g.TargetAmount), g.IsCompleted, g.PlanStatus)
	if g.HasPlan() {
		fmt.Fprintf(a.out, "\n%s\n", g.BudgetPlan)
	}
}

func newPlanCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "plan [goal-id]",
		Short: "Generate or update budget plans with Gemini",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) == 1) {
				return fmt.Errorf("pass a goal id or --all")
			}
			return run(cmd, true, true, func(a *app) error {
				ctx := cmd.Context()
				// Failed requests leave the goal in error, which is saved too.
				if all {
					results, err := a.sess.RequestAllPlans(ctx)
					if err != nil {
						return keepChanges(err)
					}
					for _, r := range results {
						printResult(a, r)
					}
					return nil
				}

				task, err := a.sess.RequestPlan(ctx, args[0])
				if err != nil {
					return keepChanges(err)
				}
				res, err := task.Wait(ctx)
				if err != nil {
					return keepChanges(err)
				}
				if res.Err != nil {
					return keepChanges(fmt.Errorf("plan for %s: %w", res.GoalID, res.Err))
				}
				if res.Outcome != planner.OutcomeGenerated {
					return keepChanges(fmt.Errorf("plan for %s was %s", res.GoalID, res.Outcome))
				}
				g, err := a.sess.Goal(args[0])
				if err != nil {
					return err
				}
				printGoal(a, g)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Plan every goal that is not completed")
	return cmd
}

func printResult(a *app, r planner.Result) {
	g, err := a.sess.Goal(r.GoalID)
	if err != nil {
		return
	}
	switch r.Outcome {
	case planner.OutcomeGenerated:
		fmt.Fprintf(a.out, "== %s ==\n%s\n\n", g.Name, r.Plan)
	default:
		fmt.Fprintf(a.out, "== %s == %s: %v\n\n", g.Name, r.Outcome, r.Err)
	}
}

func newSuggestGoalsCmd() *cobra.Command {
	var accept bool
	cmd := &cobra.Command{
		Use:   "suggest-goals",
		Short: "Ask Gemini for savings goal ideas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, true, accept, func(a *app) error {
				suggestions, err := a.sess.SuggestGoals(cmd.Context())
				if err != nil {
					return err
				}
				if len(suggestions) == 0 {
					fmt.Fprintln(a.out, "No suggestions.")
					return nil
				}
				for _, sg := range suggestions {
					fmt.Fprintf(a.out, "- %s: $%s\n", sg.Name, domain.FormatAmount(sg.TargetAmount))
					if !accept {
						continue
					}
					g, change, err := a.sess.AcceptSuggestion(sg)
					if err != nil {
						return err
					}
					fmt.Fprintf(a.out, "  added as %s\n", g.ID)
					printChange(a.out, change)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&accept, "accept", false, "Add every suggestion as a goal")
	return cmd
}

func newScenarioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenario <what-if>",
		Short: "Analyze a what-if scenario against your finances and goals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, true, false, func(a *app) error {
				analysis, err := a.sess.AnalyzeScenario(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(a.out, analysis)
				return nil
			})
		},
	}
}
