// Command intake walks an operator through the moving-request form in a
// terminal and submits the result to the lead endpoint. It is used for
// phone-in requests.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"naql_backend/internal/leads/client"
	"naql_backend/internal/leads/domain"
	"naql_backend/internal/leads/wizard"
	"naql_backend/platform/config"
	"naql_backend/platform/logger"
)

const terminalUserAgent = "naql-intake-terminal"

func main() {
	cfg := config.LoadClient()

	apiURL := flag.String("api", cfg.GetIntakeAPIURL(), "base URL of the lead API")
	pageURL := flag.String("page", "/?utm_source=phone&utm_medium=call_center", "landing URL recorded as attribution")
	flag.Parse()

	log := logger.New(cfg.Env)
	log.Info("starting intake terminal", "api", *apiURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	term := newTerminal(os.Stdin, os.Stdout)
	c := wizard.New(wizard.Options{
		Submitter:   client.New(*apiURL),
		Notifier:    term,
		Navigator:   term,
		Attribution: domain.CaptureAttribution(*pageURL, "", terminalUserAgent),
	})

	if err := run(ctx, c, term); err != nil {
		log.Error("intake aborted", "error", err)
		os.Exit(1)
	}
}
