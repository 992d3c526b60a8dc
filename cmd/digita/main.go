// Package main provides the CLI entrypoint for digita.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/digita/internal/catalog"
	"github.com/verte-zerg/digita/internal/clock"
	"github.com/verte-zerg/digita/internal/config"
	"github.com/verte-zerg/digita/internal/dictation"
	"github.com/verte-zerg/digita/internal/log"
	"github.com/verte-zerg/digita/internal/model"
	"github.com/verte-zerg/digita/internal/session"
	"github.com/verte-zerg/digita/internal/sink"
	"github.com/verte-zerg/digita/internal/store"
	"github.com/verte-zerg/digita/internal/tui"
)

const (
	defaultLogLevel       = "info"
	defaultTimeoutSeconds = 15
	defaultCurveWindow    = 20
)

var (
	testMode      string
	testLang      string
	testRate      float64
	testSpeechCmd string
	catalogPath   string
	webhookURL    string
	sinkTimeout   int
	sinkStore     bool
	logLevel      string
	logFile       string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "digita",
		Short:         "Portuguese typing assessment",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTestCmd,
	}

	rootCmd.Flags().StringVar(&testMode, "mode", "", "preselect test type (texto or audio)")
	rootCmd.Flags().StringVar(&testLang, "lang", dictation.DefaultLang, "dictation language tag")
	rootCmd.Flags().Float64Var(&testRate, "rate", dictation.DefaultRate, "dictation speech rate multiplier")
	rootCmd.Flags().StringVar(&testSpeechCmd, "speech-cmd", dictation.DefaultCommand, "text-to-speech command")
	rootCmd.Flags().StringVar(&catalogPath, "catalog", config.DefaultCatalogPath(), "extra texts catalog (TOML)")
	rootCmd.Flags().StringVar(&webhookURL, "webhook-url", "", "URL receiving each finished attempt")
	rootCmd.Flags().IntVar(&sinkTimeout, "timeout", defaultTimeoutSeconds, "result delivery timeout in seconds")
	rootCmd.Flags().BoolVar(&sinkStore, "store", true, "save attempts to the local history database")
	rootCmd.Flags().StringVar(&logLevel, "log-level", defaultLogLevel, "diagnostics log level")
	rootCmd.Flags().StringVar(&logFile, "log-file", config.DefaultLogPath(), "diagnostics log file")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newTextsCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

func runTestCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.Loader{}.Load(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFileConfig(cmd, fileCfg)

	mode, err := parseOptionalMode(testMode)
	if err != nil {
		return err
	}
	if testRate <= 0 {
		return fmt.Errorf("--rate must be > 0")
	}
	if sinkTimeout <= 0 {
		return fmt.Errorf("--timeout must be > 0")
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("digita needs an interactive terminal")
	}

	if err := log.Init(log.Options{Path: logFile, Level: logLevel}); err != nil {
		logErrf("diagnostics log disabled: %v\n", err)
	}
	defer log.Close()

	extra, err := catalog.LoadFile(catalogPath)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	texts, err := catalog.New(extra...)
	if err != nil {
		return fmt.Errorf("failed to build catalog: %w", err)
	}

	loop := clock.NewLoop(nil)

	var speaker dictation.Speaker
	execSpeaker, err := dictation.ParseCommand(testSpeechCmd, loop.Post)
	if err != nil {
		return err
	}
	if _, lerr := exec.LookPath(execSpeaker.Name); lerr != nil {
		log.Warnf("speech command %q not found, audio tests will be silent", execSpeaker.Name)
		logErrln("speech command not found; audio tests will have no dictation:", execSpeaker.Name)
	} else {
		speaker = execSpeaker
		defer execSpeaker.Close()
	}

	sinks, closeSinks, err := openSinks()
	if err != nil {
		return err
	}
	defer closeSinks()

	var dispatcher *sink.Dispatcher
	var resultSink session.ResultSink
	if len(sinks) > 0 {
		dispatcher = sink.NewDispatcher(sinks, loop.Post, time.Duration(sinkTimeout)*time.Second)
		resultSink = dispatcher
	}

	m, err := tui.NewModel(tui.Config{
		Clock:   loop,
		Texts:   texts,
		Sink:    resultSink,
		Speaker: speaker,
		Lang:    testLang,
		Rate:    testRate,
		User:    userFromConfig(fileCfg.User),
		Mode:    mode,
	})
	if err != nil {
		return err
	}

	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithReportFocus())
	loop.Bind(tui.Poster(program))
	log.Info("assessment started")
	_, runErr := program.Run()
	m.Machine().Close()

	if dispatcher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(sinkTimeout)*time.Second)
		defer cancel()
		if err := dispatcher.Close(ctx); err != nil {
			logErrf("some results were not delivered: %v\n", err)
			log.Errorf("pending deliveries abandoned: %v", err)
		}
	}
	if runErr != nil {
		return fmt.Errorf("failed to run TUI: %w", runErr)
	}
	return nil
}

// openSinks builds the configured result sinks. The returned close function
// releases the history database.
func openSinks() (sink.Multi, func(), error) {
	var sinks sink.Multi
	closeFn := func() {}
	if sinkStore {
		st, err := store.Open(config.DefaultDBPath())
		if err != nil {
			return nil, closeFn, fmt.Errorf("failed to open db: %w", err)
		}
		sinks = append(sinks, sink.StoreSink{Store: st})
		closeFn = func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close db: %v\n", cerr)
			}
		}
	}
	if webhookURL != "" {
		sinks = append(sinks, &sink.WebhookSink{URL: webhookURL, Timeout: time.Duration(sinkTimeout) * time.Second})
	} else {
		log.Debugf("no webhook configured; results stay local")
	}
	return sinks, closeFn, nil
}

func applyFileConfig(cmd *cobra.Command, cfg config.FileConfig) {
	applyStringConfig(cmd, "mode", &testMode, cfg.Test.Mode)
	applyStringConfig(cmd, "lang", &testLang, cfg.Test.Lang)
	applyFloatConfig(cmd, "rate", &testRate, cfg.Test.Rate)
	applyStringConfig(cmd, "speech-cmd", &testSpeechCmd, cfg.Test.SpeechCmd)
	applyStringConfig(cmd, "catalog", &catalogPath, cfg.Catalog.Path)
	applyStringConfig(cmd, "webhook-url", &webhookURL, cfg.Sink.WebhookURL)
	applyIntConfig(cmd, "timeout", &sinkTimeout, cfg.Sink.TimeoutSeconds)
	applyBoolConfig(cmd, "store", &sinkStore, cfg.Sink.Store)
	applyStringConfig(cmd, "log-level", &logLevel, cfg.Log.Level)
	applyStringConfig(cmd, "log-file", &logFile, cfg.Log.File)
}

func userFromConfig(u config.UserConfig) model.UserData {
	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}
	return model.UserData{
		Name:       deref(u.Name),
		Email:      deref(u.Email),
		Matricula:  deref(u.Matricula),
		ExternalID: deref(u.ExternalID),
	}
}

func parseOptionalMode(s string) (model.Mode, error) {
	if s == "" {
		return "", nil
	}
	return model.ParseMode(s)
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
