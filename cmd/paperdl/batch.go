package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gjunjie/medical-paper-downloader/internal/batch"
	"github.com/gjunjie/medical-paper-downloader/internal/catalog"
	"github.com/gjunjie/medical-paper-downloader/internal/history"
	"github.com/gjunjie/medical-paper-downloader/internal/page"
	"github.com/gjunjie/medical-paper-downloader/pkg/types"
)

var batchCmd = &cobra.Command{
	Use:   "batch [search terms...]",
	Short: "Download papers for many search terms",
	Long: `Batch runs the fetch pipeline over a list of search terms, creating one
subdirectory per term under the output directory. Failures are isolated per
paper and per term; the run always processes every term and ends with a
summary. Terms come from arguments, a YAML terms file, or both.`,
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().IntP("max-results", "k", 20, "maximum papers to download per term")
	batchCmd.Flags().String("out", "downloads", "base output directory")
	batchCmd.Flags().String("mode", "pmc", "catalog mode: pmc (direct) or pubmed (cross-referenced)")
	batchCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")
	batchCmd.Flags().Duration("delay", 0, "delay between downloads (default 500ms)")
	batchCmd.Flags().String("terms-file", "", "YAML file with a terms: list")
	batchCmd.Flags().String("report", "", "write a YAML run report to this path")
	batchCmd.Flags().String("history-db", "", "record the run in this SQLite database")

	rootCmd.AddCommand(batchCmd)
}

// batchConfigFromFlags extends a FetchConfig with the batch-only settings.
func batchConfigFromFlags(cmd *cobra.Command, fetchCfg types.FetchConfig) types.BatchConfig {
	report, _ := cmd.Flags().GetString("report")
	historyDB, _ := cmd.Flags().GetString("history-db")
	if historyDB == "" {
		historyDB = viper.GetString("history.db")
	}
	return types.BatchConfig{
		FetchConfig: fetchCfg,
		ReportPath:  report,
		HistoryDB:   historyDB,
	}
}

func runBatch(cmd *cobra.Command, args []string) error {
	terms := args
	if termsFile, _ := cmd.Flags().GetString("terms-file"); termsFile != "" {
		fileTerms, err := batch.ReadTermsFile(termsFile)
		if err != nil {
			return err
		}
		terms = append(fileTerms, terms...)
	}
	if len(terms) == 0 {
		return fmt.Errorf("provide search terms as arguments or via --terms-file")
	}

	fetchCfg, err := fetchConfigFromFlags(cmd)
	if err != nil {
		return err
	}
	cfg := batchConfigFromFlags(cmd, fetchCfg)

	client := page.NewHTTPClient(cfg.HTTPConfig)
	resolver := &catalog.Resolver{Client: client}

	started := time.Now()
	result := batch.Run(cmd.Context(), client, resolver, terms, cfg, os.Stdout)

	if cfg.ReportPath != "" {
		if err := batch.WriteReport(cfg.ReportPath, cfg, result); err != nil {
			return err
		}
		fmt.Printf("Report written to %s\n", cfg.ReportPath)
	}

	if cfg.HistoryDB != "" {
		store, err := history.Open(cfg.HistoryDB)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Record(started, cfg, result); err != nil {
			return fmt.Errorf("recording run history: %w", err)
		}
	}

	if result.HasFailures() {
		if n := result.FilesFailed(); n > 0 {
			return fmt.Errorf("%d file(s) failed to download", n)
		}
		return fmt.Errorf("one or more terms could not be resolved")
	}
	return nil
}
