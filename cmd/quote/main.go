package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/bonus/internal/quotecli"
	"github.com/okian/bonus/pkg/logger"
)

func main() {
	var (
		tiers    = flag.String("tiers", "", "Tier document URL or file")
		version  = flag.String("version", "", "Version token appended as ?v=")
		server   = flag.String("server", "", "Base URL of a running bonus service")
		locale   = flag.String("locale", quotecli.DefaultLocale, "BCP 47 locale for amounts")
		symbol   = flag.String("symbol", quotecli.DefaultSymbol, "Currency symbol")
		rounding = flag.String("rounding", quotecli.DefaultRounding, "floor or round")
		timeout  = flag.Duration("timeout", quotecli.DefaultTimeout, "Fetch timeout")
		asJSON   = flag.Bool("json", false, "Print one JSON quote per line")
		verbose  = flag.Bool("verbose", false, "Log tier loading to stderr")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		quotecli.ShowHelp(os.Stdout)
		return
	}

	if err := logger.Init(logger.WithWriter(os.Stderr)); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if !*verbose {
		_ = logger.SetLevelString("error")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := &quotecli.Config{
		Tiers:    *tiers,
		Version:  *version,
		Server:   *server,
		Locale:   *locale,
		Symbol:   *symbol,
		Rounding: *rounding,
		Timeout:  *timeout,
		JSON:     *asJSON,
		Verbose:  *verbose,
	}
	if err := quotecli.Run(ctx, cfg, flag.Args(), os.Stdout); err != nil {
		os.Stderr.WriteString("quote: " + err.Error() + "\n")
		if errors.Is(err, quotecli.ErrNoAmounts) || errors.Is(err, quotecli.ErrNoSource) {
			quotecli.ShowHelp(os.Stderr)
		}
		os.Exit(1)
	}
}
