package main

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"qrguard-lab/internal/config"
	"qrguard-lab/internal/domain/models"
	"qrguard-lab/internal/domain/services"
	grpcclient "qrguard-lab/internal/grpc/qrguard"
	"qrguard-lab/pkg/logger"
)

// Exit codes
const (
	exitOK         = 0
	exitSuspicious = 1
	exitUsage      = 2
)

var errNoInput = errors.New("no content given: pass it as arguments or pipe one item per line")

type options struct {
	configPath  string
	threshold   float64
	weightsFile string
	prefix      string
	remote      string
	verbose     bool
}

// newRootCmd builds the qrcheck command. Flags left unset fall back to the
// scoring and payment sections of the service configuration.
func newRootCmd(stdin io.Reader, exitCode *int) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "qrcheck [content...]",
		Short:         "Check decoded QR content or pasted links for phishing risk",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.verbose {
				logger.SetGlobal(logger.NewDevelopment())
			}

			if err := opts.resolve(cmd); err != nil {
				return err
			}

			inputs := args
			if len(inputs) == 0 {
				inputs = readLines(stdin)
			}
			if len(inputs) == 0 {
				return errNoInput
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			printBanner()
			if opts.remote != "" {
				code, err := runRemote(ctx, opts.remote, inputs)
				*exitCode = code
				return err
			}

			code, err := runLocal(ctx, opts, inputs)
			*exitCode = code
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "service config file supplying defaults")
	flags.Float64VarP(&opts.threshold, "threshold", "t", config.DefaultThreshold, "score at or above which a link is flagged")
	flags.StringVarP(&opts.weightsFile, "weights", "w", "", "YAML weight table overriding the embedded model")
	flags.StringVarP(&opts.prefix, "prefix", "p", config.DefaultPaymentLinkPrefix, "payment deep link prefix")
	flags.StringVarP(&opts.remote, "remote", "r", "", "gRPC address of a running qrguard server (local model when empty)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "print feature values and debug logs")

	return cmd
}

// resolve fills flags the user did not set from the loaded configuration
func (o *options) resolve(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if !flags.Changed("threshold") {
		o.threshold = cfg.Scoring.Threshold
	}
	if !flags.Changed("weights") {
		o.weightsFile = cfg.Scoring.WeightsFile
	}
	if !flags.Changed("prefix") {
		o.prefix = cfg.Payment.LinkPrefix
	}
	return nil
}

func execute() int {
	logger.SetGlobal(logger.New(logger.Config{Level: "error", Format: "console", Output: os.Stderr}))

	exitCode := exitOK
	if err := newRootCmd(os.Stdin, &exitCode).Execute(); err != nil {
		logger.Global().Error().Err(err).Msg("qrcheck failed")
		if errors.Is(err, errNoInput) {
			return exitUsage
		}
		if exitCode == exitOK {
			exitCode = exitSuspicious
		}
	}
	return exitCode
}

func runLocal(ctx context.Context, opts *options, inputs []string) (int, error) {
	weights := services.DefaultWeights()
	if opts.weightsFile != "" {
		w, err := services.LoadWeights(opts.weightsFile)
		if err != nil {
			return exitSuspicious, err
		}
		weights = w
	}

	log := logger.Global()
	assessor := services.NewAssessor(weights, opts.threshold, log)
	svc := services.NewQRSecurityService(assessor, nil, services.QRSecurityConfig{PaymentLinkPrefix: opts.prefix}, log)

	code := exitOK
	for _, in := range inputs {
		result, err := svc.Scan(ctx, &models.QRScanRequest{Content: in, SourceApp: "qrcheck"})
		if err != nil {
			return exitSuspicious, err
		}
		printResult(result)
		if opts.verbose && result.ContentType == models.QRContentURL {
			_, features := assessor.Explain(result.RawContent)
			printFeatures(features)
		}
		if result.Assessment != nil && result.Assessment.IsSuspicious {
			code = exitSuspicious
		}
		newline()
	}

	printStats(svc.GetStats())
	return code, nil
}

func runRemote(ctx context.Context, addr string, inputs []string) (int, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return exitSuspicious, err
	}
	defer conn.Close()

	client := grpcclient.NewClient(conn)
	code := exitOK
	for _, in := range inputs {
		resp, err := client.Scan(ctx, in)
		if err != nil {
			logger.Global().Error().Err(err).Str("content", in).Msg("remote scan failed")
			code = exitSuspicious
			continue
		}
		if printRemoteResult(resp.AsMap()) {
			code = exitSuspicious
		}
		newline()
	}
	return code, nil
}

func readLines(r io.Reader) []string {
	if f, ok := r.(*os.File); ok {
		if info, err := f.Stat(); err != nil || info.Mode()&os.ModeCharDevice != 0 {
			return nil
		}
	}

	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
