package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gjunjie/medical-paper-downloader/internal/history"
)

const defaultHistoryDB = "paperdl-history.db"

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded batch runs",
	Long: `History lists batch runs previously recorded with batch --history-db,
newest first, with per-term download counts.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().String("history-db", "", "SQLite database to read (default paperdl-history.db)")
	historyCmd.Flags().IntP("limit", "n", 20, "maximum runs to list")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("history-db")
	if path == "" {
		path = viper.GetString("history.db")
	}
	if path == "" {
		path = defaultHistoryDB
	}

	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	return store.List(os.Stdout, limit)
}
