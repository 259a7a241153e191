package cli

import (
	"context"
	"crypto/x509"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/iexc-go/iexc/internal/httpclient"
	"github.com/iexc-go/iexc/internal/report"
)

// newHTTPClient builds a client for domain from the persistent connection
// and parser flags.
func newHTTPClient(cmd *cobra.Command, domain string) (*httpclient.Client, error) {
	insecure, _ := cmd.Flags().GetBool("insecure")
	port, _ := cmd.Flags().GetInt("port")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	dialTimeout, _ := cmd.Flags().GetDuration("dial-timeout")
	caFile, _ := cmd.Flags().GetString("ca-file")
	allowBareLF, _ := cmd.Flags().GetBool("allow-bare-lf")
	lenientCL, _ := cmd.Flags().GetBool("lenient-content-length")

	parserOpts := httpclient.DefaultParserOptions()
	parserOpts.AllowBareLF = allowBareLF
	parserOpts.LenientContentLength = lenientCL

	opts := []httpclient.Option{
		httpclient.WithReadTimeout(timeout),
		httpclient.WithDialTimeout(dialTimeout),
		httpclient.WithParserOptions(parserOpts),
	}
	if port != 0 {
		opts = append(opts, httpclient.WithPort(port))
	}
	if caFile != "" {
		pool, err := loadRootCAs(caFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, httpclient.WithRootCAs(pool))
	}

	if insecure {
		return httpclient.NewInsecure(domain, opts...), nil
	}
	return httpclient.New(domain, opts...), nil
}

// loadRootCAs reads a PEM bundle into a certificate pool.
func loadRootCAs(path string) (*x509.CertPool, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA file %q: %w", path, err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificates found in CA file %q", path)
	}
	return pool, nil
}

// newReporter returns the reporter selected by --format.
func newReporter(cmd *cobra.Command) (report.Reporter, error) {
	format, _ := cmd.Flags().GetString("format")
	reporter, err := report.New(format)
	if err != nil {
		return nil, fmt.Errorf("unknown report format %q: %w", format, err)
	}
	return reporter, nil
}

// withOutput calls fn with the --output file, or the command's stdout when
// the flag is empty.
func withOutput(cmd *cobra.Command, fn func(w io.Writer) error) error {
	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath == "" {
		return fn(cmd.OutOrStdout())
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", outputPath, err)
	}
	defer f.Close()
	return fn(f)
}

// progress prints a "[*]" line on stderr when --verbose is set.
func progress(cmd *cobra.Command, format string, args ...interface{}) {
	if verbose, _ := cmd.Flags().GetInt("verbose"); verbose > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "[*] "+format+"\n", args...)
	}
}

// commandContext returns the command context, cancelled on CTRL+C.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt)
}
