package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"cloud.google.com/go/civil"
	"github.com/spf13/cobra"

	"github.com/dvloznov/zenith/internal/domain"
	"github.com/dvloznov/zenith/internal/ledger"
)

func newSnapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Show income, expenses, balance and points",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, false, false, func(a *app) error {
				snap := a.sess.Snapshot()
				fmt.Fprintf(a.out, "Income:   $%s\n", domain.FormatAmount(snap.TotalIncome))
				fmt.Fprintf(a.out, "Expenses: $%s\n", domain.FormatAmount(snap.TotalExpenses))
				fmt.Fprintf(a.out, "Balance:  $%s\n", domain.FormatAmount(snap.Balance))
				fmt.Fprintf(a.out, "Points:   %d\n", a.sess.Points())
				return nil
			})
		},
	}
}

func newTxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Add, delete and list transactions",
	}
	cmd.AddCommand(newTxAddCmd(), newTxDeleteCmd(), newTxListCmd())
	return cmd
}

func newTxAddCmd() *cobra.Command {
	var (
		description string
		amount      string
		date        string
		typ         string
		category    string
		suggest     bool
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := buildDraft(description, amount, date, typ, category)
			if err != nil {
				return err
			}
			needAI := suggest && category == ""
			return run(cmd, needAI, true, func(a *app) error {
				if needAI {
					label, err := a.sess.SuggestCategory(cmd.Context(), description)
					if err != nil {
						return err
					}
					if label == "" {
						return fmt.Errorf("no category suggested for %q; pass --category", description)
					}
					fmt.Fprintf(a.out, "Suggested category: %s\n", label)
					draft.Category = label
				}

				tx, change, err := a.sess.AddTransaction(draft)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Added %s\n", tx.ID)
				printChange(a.out, change)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "What the money was for")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "Amount, e.g. 4.50")
	cmd.Flags().StringVar(&date, "date", "", "Date YYYY-MM-DD (default today)")
	cmd.Flags().StringVarP(&typ, "type", "t", "expense", "income or expense")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Category label")
	cmd.Flags().BoolVar(&suggest, "suggest", false, "Ask Gemini for a category when --category is empty")
	return cmd
}

func buildDraft(description, amount, date, typ, category string) (domain.TransactionDraft, error) {
	amt, err := domain.ParseAmount(amount)
	if err != nil {
		return domain.TransactionDraft{}, err
	}
	d := civil.DateOf(time.Now())
	if date != "" {
		if d, err = domain.ParseDate(date); err != nil {
			return domain.TransactionDraft{}, err
		}
	}
	tt, err := domain.ParseTransactionType(typ)
	if err != nil {
		return domain.TransactionDraft{}, err
	}
	return domain.TransactionDraft{
		Description: description,
		Amount:      amt,
		Date:        d,
		Type:        tt,
		Category:    category,
	}, nil
}

func newTxDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, false, true, func(a *app) error {
				deleted, change := a.sess.DeleteTransaction(args[0])
				if !deleted {
					return fmt.Errorf("transaction %s: %w", args[0], domain.ErrNotFound)
				}
				fmt.Fprintf(a.out, "Deleted %s\n", args[0])
				printChange(a.out, change)
				return nil
			})
		},
	}
}

func newTxListCmd() *cobra.Command {
	var typ, category string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter ledger.Filter
			if typ != "" {
				tt, err := domain.ParseTransactionType(typ)
				if err != nil {
					return err
				}
				filter.Type = tt
			}
			filter.Category = category

			return run(cmd, false, false, func(a *app) error {
				tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tDATE\tTYPE\tAMOUNT\tCATEGORY\tDESCRIPTION")
				for _, tx := range a.sess.Transactions(filter) {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
						tx.ID, tx.Date, tx.Type, domain.FormatAmount(tx.Amount), tx.Category, tx.Description)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVarP(&typ, "type", "t", "", "Only income or expense")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Only this category")
	return cmd
}
