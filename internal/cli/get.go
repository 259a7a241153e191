package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/iexc-go/iexc/internal/report"
)

var getCmd = &cobra.Command{
	Use:   "get <domain> [path]",
	Short: "Send a GET request and print the response",
	Long: `Get opens a connection to domain, sends "GET <path> HTTP/1.1" with Host and
Accept headers, and prints the parsed response. The path defaults to "/".`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.Flags().Bool("body-only", false, "Print only the response body (text format)")
}

func runGet(cmd *cobra.Command, args []string) error {
	domain := args[0]
	path := "/"
	if len(args) == 2 {
		path = args[1]
	}

	client, err := newHTTPClient(cmd, domain)
	if err != nil {
		return err
	}
	reporter, err := newReporter(cmd)
	if err != nil {
		return err
	}
	if tr, ok := reporter.(*report.TextReporter); ok {
		tr.BodyOnly, _ = cmd.Flags().GetBool("body-only")
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	scheme := "https"
	if !client.Secure() {
		scheme = "http"
	}
	progress(cmd, "GET %s://%s:%d%s", scheme, client.Domain(), client.Port(), path)

	resp, err := client.Get(ctx, path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	progress(cmd, "%d %s (%d bytes)", resp.StatusCode, resp.StatusMessage, len(resp.Body))

	return withOutput(cmd, func(w io.Writer) error {
		return reporter.Response(ctx, resp, w)
	})
}
