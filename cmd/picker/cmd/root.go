package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/media-library/backend/internal/client"
	"github.com/media-library/backend/internal/hook"
	"github.com/media-library/backend/internal/logging"
	"github.com/media-library/backend/internal/picker"
	"github.com/media-library/backend/internal/tui"
)

// errNothingSelected is returned when the picker was cancelled.
var errNothingSelected = errors.New("no files selected")

type options struct {
	baseURL  string
	apiURL   string
	multiple bool
	folder   string
	headers  map[string]string
	data     map[string]string
	defaults string
	msgpack  bool
	timeout  time.Duration
	logLevel string
	logFile  string
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "media-picker",
		Short: "Pick files from a media library in the terminal",
		Long: `media-picker browses the listing endpoint of a media library server,
lets you search, page through and select files, and prints the selection
as uploader entries in JSON on stdout.

Example:
  media-picker --base-url http://localhost:8089 --multiple --folder avatars`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	flags := rootCmd.Flags()
	flags.StringVar(&opts.baseURL, "base-url", getEnvOrDefault("MEDIA_LIBRARY_URL", "http://localhost:8089"), "media library server base URL")
	flags.StringVar(&opts.apiURL, "url", "", "listing endpoint for this session (defaults to the configured api_url)")
	flags.BoolVar(&opts.multiple, "multiple", false, "allow selecting several files")
	flags.StringVar(&opts.folder, "folder", "", "preselected folder")
	flags.StringToStringVar(&opts.headers, "header", nil, "extra request header as key=value (repeatable)")
	flags.StringToStringVar(&opts.data, "data", nil, "extra query parameter as key=value (repeatable)")
	flags.StringVar(&opts.defaults, "defaults", "", "YAML file overriding the picker defaults")
	flags.BoolVar(&opts.msgpack, "msgpack", false, "request msgpack responses")
	flags.DurationVar(&opts.timeout, "timeout", 30*time.Second, "per-request timeout")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level")
	flags.StringVar(&opts.logFile, "log-file", "", "write logs to this file (logging is off otherwise)")

	return rootCmd
}

func getEnvOrDefault(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

func (o *options) pickerConfig() (picker.Config, error) {
	if o.defaults == "" {
		return picker.DefaultConfig(), nil
	}
	return picker.LoadConfig(o.defaults)
}

func (o *options) logger() (zerolog.Logger, io.Closer, error) {
	if o.logFile == "" {
		return zerolog.Nop(), io.NopCloser(nil), nil
	}
	f, err := os.OpenFile(o.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return logging.New(o.logLevel, f), f, nil
}

func (o *options) client() *client.Client {
	return client.New(
		client.WithBaseURL(o.baseURL),
		client.WithMsgpack(o.msgpack),
		client.WithTimeout(o.timeout),
	)
}

func run(ctx context.Context, o *options, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := o.pickerConfig()
	if err != nil {
		return err
	}
	logger, closer, err := o.logger()
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	reg := picker.NewRegistry(cfg, logger)
	fetcher := o.client()

	var orch *picker.Orchestrator
	h := hook.New(reg.Defaults(), nil, func(opts picker.Options) {
		opts.APIURL = o.apiURL
		opts.AjaxData = o.data
		opts.AjaxHeaders = o.headers
		s, effects := reg.Open(opts)
		orch = picker.NewOrchestrator(s, fetcher, logger)
		orch.Start(ctx, effects)
	}, logger)

	u := newStdoutUploader(o.multiple, o.folder)
	h.Register(u)
	if !u.HasBrowseTrigger() {
		return fmt.Errorf("uploader has no browse trigger")
	}
	u.trigger.Open()

	p := tea.NewProgram(tui.New(orch), tea.WithOutput(os.Stderr), tea.WithContext(ctx))
	_, runErr := p.Run()

	// Make sure the session is closed before reading the uploader.
	if err := orch.Close(); err != nil && !errors.Is(err, picker.ErrSessionClosed) {
		return err
	}
	<-orch.Done()

	if runErr != nil && ctx.Err() == nil {
		return fmt.Errorf("picker failed: %w", runErr)
	}

	value := u.Value()
	if value == nil {
		return errNothingSelected
	}
	_, err = stdout.Write(value)
	return err
}
