package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"qrpay-certifier/internal/core/config"
	"qrpay-certifier/internal/core/keys"
	"qrpay-certifier/internal/core/logger"
	"qrpay-certifier/internal/core/proxy"
	"qrpay-certifier/internal/features/payment/adapters"
	"qrpay-certifier/internal/features/payment/service"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const usage = `Usage: certifier [command] [flags]

Commands:
  certify   QR payment, settlement wait and refund (default)
  query     look an order up, --wait polls until it settles
  refund    refund an earlier payment
  keycheck  verify the RSA key files
  serve     run the operator console

Run "certifier <command> --help" for the flags of a command.
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	command := "certify"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		command, args = args[0], args[1:]
	}

	fs := pflag.NewFlagSet(command, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.String("log-level", "", "log verbosity (debug, info, warn, error)")
	fs.String("gateway-url", "", "gateway API base URL")
	fs.Int("poll-max-wait-seconds", 0, "settlement wait budget in seconds")
	fs.Int("poll-interval-seconds", 0, "seconds between status queries")

	var (
		certifyOpts certifyOptions
		queryOpts   queryOptions
		refundOpts  refundOptions
	)
	switch command {
	case "certify":
		certifyOpts.register(fs)
	case "query":
		queryOpts.register(fs)
	case "refund":
		refundOpts.register(fs)
	case "serve":
		fs.Int("server-port", 0, "console listen port")
	case "keycheck":
	case "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", command, usage)
		return 1
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 1
	}

	cfg, err := config.Load(".", fs)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return 1
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		fmt.Fprintf(stderr, "Failed to init logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	l := logger.Get()
	l.Debug("Certifier starting",
		zap.String("command", command),
		zap.String("environment", cfg.Environment),
		zap.String("gateway_url", cfg.Gateway.URL),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	con := newConsole(stdin, stdout)

	if command == "keycheck" {
		return exitCode(ctx, con, runKeycheck(con, cfg.Gateway))
	}

	gateway, err := newGatewayClient(cfg)
	if err != nil {
		return exitCode(ctx, con, err)
	}

	if command == "serve" {
		return exitCode(ctx, con, runServe(ctx, cfg, gateway))
	}

	svc := service.NewPaymentService(gateway, nil, cfg.Merchant.UserID)
	poll := pollOptions(cfg.Polling)

	switch command {
	case "query":
		err = runQuery(ctx, con, svc, poll, queryOpts)
	case "refund":
		err = runRefund(ctx, con, svc, refundOpts)
	default:
		err = runCertify(ctx, con, svc, poll, certifyOpts)
	}
	return exitCode(ctx, con, err)
}

// newGatewayClient loads the merchant key and builds the signed API client.
func newGatewayClient(cfg *config.AppConfig) (*adapters.GatewayClient, error) {
	privatePEM, err := keys.Load(cfg.Gateway.PrivateKeyFile, keys.KindPrivate)
	if err != nil {
		return nil, err
	}
	signer, err := keys.NewSigner(privatePEM)
	if err != nil {
		return nil, err
	}

	return adapters.NewGatewayClient(cfg.Gateway, cfg.Merchant, proxy.FromConfig(cfg.Proxy), signer), nil
}

func pollOptions(cfg config.PollingConfig) service.PollOptions {
	return service.PollOptions{
		MaxWait:  time.Duration(cfg.MaxWaitSeconds) * time.Second,
		Interval: time.Duration(cfg.IntervalSeconds) * time.Second,
	}
}

// exitCode reports err to the operator. Interrupts and declined
// confirmations are not failures.
func exitCode(ctx context.Context, con *console, err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled) || ctx.Err() != nil:
		con.printf("\n\nInterrupted.\n")
		return 0
	case errors.Is(err, errAborted):
		con.printf("\nCancelled.\n")
		return 0
	}

	con.printf("\nError: %v\n", err)
	return 1
}
