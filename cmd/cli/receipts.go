package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dvloznov/zenith/internal/ai"
	"github.com/dvloznov/zenith/internal/domain"
	"github.com/dvloznov/zenith/internal/gcsuploader"
)

func newScanReceiptCmd() *cobra.Command {
	var (
		upload   bool
		record   bool
		category string
	)
	cmd := &cobra.Command{
		Use:   "scan-receipt <file|gs://bucket/object>",
		Short: "Extract a transaction draft from a receipt image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if record && category == "" {
				return fmt.Errorf("--record needs --category")
			}
			source := args[0]

			return run(cmd, true, record, func(a *app) error {
				ctx := cmd.Context()

				var store *gcsuploader.GCSReceiptStore
				if strings.HasPrefix(source, "gs://") || upload {
					if a.cfg.GCS.Bucket == "" {
						return fmt.Errorf("GCS_BUCKET or gcs.bucket is required for %s", source)
					}
					s, err := gcsuploader.NewGCSReceiptStore(ctx, a.cfg.GCS.Bucket)
					if err != nil {
						return err
					}
					defer s.Close()
					store = s
				}

				var image ai.ReceiptImage
				switch {
				case strings.HasPrefix(source, "gs://"):
					img, err := store.FetchReceipt(ctx, source)
					if err != nil {
						return err
					}
					image = img
				default:
					data, err := os.ReadFile(source)
					if err != nil {
						return fmt.Errorf("reading receipt: %w", err)
					}
					image = ai.ReceiptImage{Data: data, MIMEType: gcsuploader.MIMETypeForName(filepath.Base(source))}

					if upload {
						uri, err := store.UploadReceipt(ctx, image.Data, image.MIMEType)
						if err != nil {
							return err
						}
						fmt.Fprintf(a.out, "Uploaded to %s\n", uri)
					}
				}

				draft, err := a.sess.ScanReceipt(ctx, image)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "%s  $%s  %s\n", draft.Date, domain.FormatAmount(draft.Amount), draft.Description)

				if !record {
					return nil
				}
				draft.Category = category
				tx, change, err := a.sess.AddTransaction(draft)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Recorded %s\n", tx.ID)
				printChange(a.out, change)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&upload, "upload", false, "Upload a local image to the receipts bucket first")
	cmd.Flags().BoolVar(&record, "record", false, "Record the draft as an expense")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Category for --record")
	return cmd
}
