package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gjunjie/medical-paper-downloader/internal/catalog"
	"github.com/gjunjie/medical-paper-downloader/internal/download"
	"github.com/gjunjie/medical-paper-downloader/internal/page"
	"github.com/gjunjie/medical-paper-downloader/pkg/types"
)

const (
	defaultTimeout = 30 * time.Second
	defaultDelay   = 500 * time.Millisecond

	// The NCBI sites serve interstitial pages to clients that do not look
	// like browsers, so the default User-Agent mimics one.
	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [search term]",
	Short: "Download the top matching papers for one search term",
	Long: `Fetch searches the chosen catalog for a term and downloads up to k of the
top-ranked open-access papers as PDFs. In pmc mode hits are downloaded
directly; in pubmed mode each hit's free-full-text cross-reference into PMC
is followed, and records without one are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().IntP("max-results", "k", 5, "maximum papers to download")
	fetchCmd.Flags().String("out", "downloads", "output directory")
	fetchCmd.Flags().String("mode", string(types.ModeDirect), "catalog mode: pmc (direct) or pubmed (cross-referenced)")
	fetchCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")
	fetchCmd.Flags().Duration("delay", 0, "delay between downloads (default 500ms)")

	rootCmd.AddCommand(fetchCmd)
}

// fetchConfigFromFlags builds a FetchConfig from command flags, falling
// back to config-file values and then to compiled defaults.
func fetchConfigFromFlags(cmd *cobra.Command) (types.FetchConfig, error) {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = viper.GetDuration("http.timeout")
	}
	if timeout == 0 {
		timeout = defaultTimeout
	}

	userAgent := viper.GetString("http.user_agent")
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	delay, _ := cmd.Flags().GetDuration("delay")
	if delay == 0 {
		delay = viper.GetDuration("download_delay")
	}
	if delay == 0 {
		delay = defaultDelay
	}

	modeStr, _ := cmd.Flags().GetString("mode")
	mode, err := types.ParseMode(modeStr)
	if err != nil {
		return types.FetchConfig{}, err
	}

	k, _ := cmd.Flags().GetInt("max-results")
	if k <= 0 {
		return types.FetchConfig{}, fmt.Errorf("max-results must be positive, got %d", k)
	}
	out, _ := cmd.Flags().GetString("out")

	return types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: userAgent,
		},
		MaxResults:    k,
		Mode:          mode,
		OutputDir:     out,
		DownloadDelay: delay,
	}, nil
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := fetchConfigFromFlags(cmd)
	if err != nil {
		return err
	}

	client := page.NewHTTPClient(cfg.HTTPConfig)
	resolver := &catalog.Resolver{Client: client}

	_, err = download.FetchTerm(cmd.Context(), client, resolver, args[0], cfg, os.Stdout)
	return err
}
