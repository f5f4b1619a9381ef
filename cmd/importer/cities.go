package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func getCitiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cities <code_file>",
		Short: "Loads the municipality code table",
		Long: `Loads the table that maps the prefecture and municipality codes of the
main file to JIS municipality codes. Rows are prefecture code, municipality
code and JIS code. Existing entries are replaced.

Examples:
  importer cities codes.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			svc, _, closeDB, err := openImportService(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			n, err := svc.ImportCityCodes(ctx, args[0])
			if err != nil {
				return err
			}

			log.Info().Int("cities", n).Str("file", args[0]).Msg("city codes loaded")
			return nil
		},
	}
	return cmd
}
