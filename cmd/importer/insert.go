package main

import (
	"fmt"

	"taod/internal/models"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func getInsertCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "insert <main_file> <support_file>",
		Short: "Inserts accidents and involved persons",
		Long: `Inserts the accidents of the main file and the involved persons of the
supplementary file in one transaction.

This command:
  1. Loads the municipality code table from the database
  2. Decodes the main file and indexes accidents by natural key
  3. Decodes the supplementary file against that index
  4. Stores both in one transaction and verifies the row counts

Nothing is stored if any row fails to decode.

Examples:
  importer insert honhyo_2022.csv hojuhyo_2022.csv
  importer insert --dry-run honhyo_2022.csv hojuhyo_2022.csv`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			svc, repo, closeDB, err := openImportService(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			beforeAccidents, beforePersons, err := repo.CountImported(ctx)
			if err != nil {
				return err
			}

			summary, err := svc.Import(ctx, models.ImportRequest{
				MainFile:    args[0],
				SupportFile: args[1],
				DryRun:      dryRun,
			})
			if err != nil {
				log.Error().Err(err).Msg("import failed")
				return err
			}

			if !dryRun {
				afterAccidents, afterPersons, err := repo.CountImported(ctx)
				if err != nil {
					return err
				}
				if err := verifyCounts(summary, afterAccidents-beforeAccidents, afterPersons-beforePersons); err != nil {
					return err
				}
			}

			log.Info().
				Int("accidents", summary.Accidents).
				Int("involved_persons", summary.InvolvedPersons).
				Int("duplicate_keys", len(summary.DuplicateKeys)).
				Bool("dry_run", summary.DryRun).
				Msg("import complete")

			verb := "Imported"
			if summary.DryRun {
				verb = "Validated"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s accidents and %s involved persons\n", verb,
				humanize.Comma(int64(summary.Accidents)), humanize.Comma(int64(summary.InvolvedPersons)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "decode and validate without storing")
	return cmd
}

// verifyCounts compares the rows added to each table with the summary.
func verifyCounts(summary *models.ImportSummary, accidents, persons int64) error {
	if accidents != int64(summary.Accidents) {
		return fmt.Errorf("accident count mismatch: expected %d, got %d", summary.Accidents, accidents)
	}
	if persons != int64(summary.InvolvedPersons) {
		return fmt.Errorf("involved person count mismatch: expected %d, got %d", summary.InvolvedPersons, persons)
	}
	return nil
}
