package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/iexc-go/iexc/internal/history"
	"github.com/iexc-go/iexc/internal/iex"
)

// tokenEnv is consulted when --token is not given.
const tokenEnv = "IEXC_API_TOKEN"

var quoteCmd = &cobra.Command{
	Use:   "quote <SYMBOL>...",
	Short: "Fetch the latest price of one or more stock symbols",
	Long: `Quote fetches the latest price of each symbol from IEX Cloud. Symbols are
fetched concurrently, one connection per request.

The API token is read from --token or the ` + tokenEnv + ` environment variable.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)
	quoteCmd.Flags().StringP("token", "a", "", "API token used for all requests to IEX endpoints")
	quoteCmd.Flags().StringP("endpoint", "e", "production", "IEX Cloud endpoint (production, sandbox)")
	quoteCmd.Flags().Float64("rps", 0, "Maximum requests per second (0 = unlimited)")
	quoteCmd.Flags().Int("workers", 4, "Number of concurrent requests")
	quoteCmd.Flags().String("history", "", "SQLite database to record fetched quotes in")
	quoteCmd.Flags().String("api-domain", "", "Override the API domain")
	quoteCmd.Flags().MarkHidden("api-domain") //nolint:errcheck
}

func runQuote(cmd *cobra.Command, args []string) error {
	token, _ := cmd.Flags().GetString("token")
	if token == "" {
		token = os.Getenv(tokenEnv)
	}
	if token == "" {
		return fmt.Errorf("API token is required (use --token or %s)", tokenEnv)
	}

	endpointName, _ := cmd.Flags().GetString("endpoint")
	rps, _ := cmd.Flags().GetFloat64("rps")
	workers, _ := cmd.Flags().GetInt("workers")
	historyPath, _ := cmd.Flags().GetString("history")
	apiDomain, _ := cmd.Flags().GetString("api-domain")

	endpoint, err := iex.ParseEndpoint(endpointName)
	if err != nil {
		return err
	}
	if apiDomain == "" {
		apiDomain = endpoint.Domain()
	}

	httpClient, err := newHTTPClient(cmd, apiDomain)
	if err != nil {
		return err
	}
	client, err := iex.New(endpoint, token, iex.WithHTTPClient(httpClient), iex.WithRateLimit(rps))
	if err != nil {
		return err
	}
	reporter, err := newReporter(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	// Open the store before fetching so a bad path fails fast.
	var store history.Store
	if historyPath != "" {
		s, err := history.NewSQLiteStore(historyPath)
		if err != nil {
			return fmt.Errorf("failed to open history database %q: %w", historyPath, err)
		}
		defer s.Close()
		store = s
	}

	progress(cmd, "Endpoint: %s (%s:%d)", client.Endpoint(), httpClient.Domain(), httpClient.Port())
	progress(cmd, "Fetching %d symbol(s) with %d worker(s)", len(args), workers)

	results := client.Prices(ctx, args, workers)

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			continue
		}
		if store == nil {
			continue
		}
		rec := &history.Record{
			Symbol:    res.Quote.Symbol,
			Price:     res.Quote.Price,
			Endpoint:  res.Quote.Endpoint.String(),
			FetchedAt: res.Quote.FetchedAt,
		}
		if err := store.Save(ctx, rec); err != nil {
			slog.Warn("failed to record quote", "symbol", rec.Symbol, "error", err)
		}
	}

	if err := withOutput(cmd, func(w io.Writer) error {
		return reporter.Quotes(ctx, results, w)
	}); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d quote(s) failed", failed, len(results))
	}
	return nil
}
