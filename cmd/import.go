package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/wordbot/internal/database"
	"github.com/example/wordbot/internal/importer"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Look up every word of an .xlsx or .csv word list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, logger, err := setup()
		if err != nil {
			return err
		}

		db, err := openDB(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		importCfg := importer.DefaultImportConfig()
		importCfg.FilePath = args[0]
		importCfg.WordColumn, _ = cmd.Flags().GetString("column")
		importCfg.SheetName, _ = cmd.Flags().GetString("sheet")
		importCfg.StartRow, _ = cmd.Flags().GetInt("start-row")

		im := importer.New(newCache(cfg.Dictionary, db, logger), database.NewWordRepository(db), logger)
		result, err := im.Import(ctx, importCfg)
		if err != nil {
			return fmt.Errorf("import %s: %w", args[0], err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "processed: %d, cached: %d, fetched: %d, failed: %d\n",
			result.TotalProcessed, result.Cached, result.Fetched, result.Failed)
		for _, e := range result.Errors {
			fmt.Fprintln(out, "  "+e)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().String("column", "A", "column holding the words")
	importCmd.Flags().String("sheet", "", "sheet to read (default: first sheet)")
	importCmd.Flags().Int("start-row", 2, "first row to import, 1-based")
}
