package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/digita/internal/catalog"
	"github.com/verte-zerg/digita/internal/classify"
	"github.com/verte-zerg/digita/internal/config"
	"github.com/verte-zerg/digita/internal/dictation"
	"github.com/verte-zerg/digita/internal/model"
	"github.com/verte-zerg/digita/internal/stats"
	"github.com/verte-zerg/digita/internal/store"
)

var (
	textsDifficulty string

	checkRef     string
	checkTextID  int
	checkTyped   string
	checkSeconds int

	statsMode        string
	statsDifficulty  string
	statsSince       string
	statsLast        int
	statsCurveWindow int
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newTextsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "texts",
		Short: "List reference texts",
		Args:  cobra.NoArgs,
		RunE:  runTextsCmd,
	}
	cmd.Flags().StringVar(&textsDifficulty, "difficulty", "", "difficulty filter (facil, medio, dificil)")
	cmd.Flags().StringVar(&catalogPath, "catalog", config.DefaultCatalogPath(), "extra texts catalog (TOML)")
	return cmd
}

func runTextsCmd(cmd *cobra.Command, _ []string) error {
	var difficulty model.Difficulty
	if textsDifficulty != "" {
		d, err := model.ParseDifficulty(textsDifficulty)
		if err != nil {
			return err
		}
		difficulty = d
	}
	texts, err := loadCatalog(catalogPath)
	if err != nil {
		return err
	}
	return renderTexts(cmd.OutOrStdout(), texts.Filter(difficulty))
}

func renderTexts(w io.Writer, texts []model.ReferenceText) error {
	if len(texts) == 0 {
		_, err := fmt.Fprintln(w, "No texts found.")
		return err
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "Level", "Words", "Budget", "Text")
	for _, text := range texts {
		t.Row(
			fmt.Sprintf("%d", text.ID),
			text.Difficulty.Label(),
			fmt.Sprintf("%d", stats.WordCount(text.Body)),
			text.Difficulty.TimeBudget().String(),
			preview(text.Body, 48),
		)
	}
	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Score a typed text file against a reference",
		Long:  "Score a typed text file against a reference. With --typed - or without --typed the typed text is read from stdin.",
		Args:  cobra.NoArgs,
		RunE:  runCheckCmd,
	}
	cmd.Flags().StringVar(&checkRef, "ref", "", "reference text file")
	cmd.Flags().IntVar(&checkTextID, "text-id", 0, "catalog text id used as reference")
	cmd.Flags().StringVar(&checkTyped, "typed", "-", "typed text file")
	cmd.Flags().IntVar(&checkSeconds, "seconds", 60, "elapsed seconds used for WPM")
	cmd.Flags().StringVar(&catalogPath, "catalog", config.DefaultCatalogPath(), "extra texts catalog (TOML)")
	return cmd
}

func runCheckCmd(cmd *cobra.Command, _ []string) error {
	if checkSeconds < 0 {
		return fmt.Errorf("--seconds must be >= 0")
	}
	var ref string
	switch {
	case checkTextID != 0:
		texts, err := loadCatalog(catalogPath)
		if err != nil {
			return err
		}
		text, ok := texts.ByID(checkTextID)
		if !ok {
			return fmt.Errorf("text %d not found", checkTextID)
		}
		ref = text.Body
	case checkRef != "":
		data, err := os.ReadFile(checkRef)
		if err != nil {
			return fmt.Errorf("failed to read reference: %w", err)
		}
		ref = strings.TrimRight(string(data), "\r\n")
	default:
		return fmt.Errorf("--ref or --text-id is required")
	}

	var typed string
	if checkTyped == "" || checkTyped == "-" {
		data, err := readAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read typed text: %w", err)
		}
		typed = data
	} else {
		data, err := os.ReadFile(checkTyped)
		if err != nil {
			return fmt.Errorf("failed to read typed text: %w", err)
		}
		typed = strings.TrimRight(string(data), "\r\n")
	}
	return renderCheck(cmd.OutOrStdout(), ref, typed, checkSeconds)
}

func renderCheck(w io.Writer, ref, typed string, seconds int) error {
	metrics := stats.Final(ref, typed, seconds)
	errs := classify.DetectErrors(ref, typed)
	goals := stats.Goals(metrics.WPM, metrics.Accuracy)
	lines := []string{
		fmt.Sprintf("WPM: %d", metrics.WPM),
		fmt.Sprintf("Accuracy: %d%%", metrics.Accuracy),
		fmt.Sprintf("Words: %d", metrics.Words),
		fmt.Sprintf("Goals met: %t", goals.All()),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if err := stats.RenderErrorTable(w, classify.Summary(errs)); err != nil {
		return err
	}
	return stats.RenderErrorList(w, errs)
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show attempt history",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsMode, "mode", "", "mode filter (texto or audio)")
	cmd.Flags().StringVar(&statsDifficulty, "difficulty", "", "difficulty filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N attempts")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := statsConfig()
	if err != nil {
		return err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	report, err := stats.BuildReport(context.Background(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}
	width := 0
	if fd := int(os.Stdout.Fd()); term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil {
			width = max(10, w-30)
		}
	}
	return stats.Render(cmd.OutOrStdout(), report, width)
}

func statsConfig() (model.StatsConfig, error) {
	cfg := model.StatsConfig{Last: statsLast, CurveWindow: statsCurveWindow}
	if statsMode != "" {
		if _, err := model.ParseMode(statsMode); err != nil {
			return cfg, err
		}
		cfg.Mode = statsMode
	}
	if statsDifficulty != "" {
		if _, err := model.ParseDifficulty(statsDifficulty); err != nil {
			return cfg, err
		}
		cfg.Difficulty = statsDifficulty
	}
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return cfg, fmt.Errorf("invalid --since value: %w", err)
		}
		cfg.Since = &parsed
	}
	if cfg.Last < 0 {
		return cfg, fmt.Errorf("--last must be >= 0")
	}
	return cfg, nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	extra, err := catalog.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	texts, err := catalog.New(extra...)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog: %w", err)
	}
	return texts, nil
}

func readAll(r io.Reader) (string, error) {
	var b strings.Builder
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	first := true
	for scanner.Scan() {
		if !first {
			b.WriteByte('\n')
		}
		b.WriteString(scanner.Text())
		first = false
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return b.String(), nil
}

func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# digita configuration
# Uncomment a value to enable it. CLI flags override config values.
# %s, %s and %s override the matching keys.

[user]
# name = "Maria da Silva"
# email = "maria@exemplo.com"
# matricula = "123456"       # 4 to 10 digits
# external-id = ""           # CPF, used when there is no matricula

[test]
# mode = "texto"             # Preselect texto or audio
# lang = %q               # Dictation language tag
# rate = %.1f                 # Speech rate multiplier
# speech-cmd = %q

[catalog]
# path = %q

[sink]
# webhook-url = ""           # Receives every finished attempt as JSON
# timeout-seconds = %d
# store = true               # Keep local history for "digita stats"

[log]
# level = %q
# file = %q
`,
		config.EnvWebhookURL,
		config.EnvLogLevel,
		config.EnvSpeechCmd,
		dictation.DefaultLang,
		dictation.DefaultRate,
		dictation.DefaultCommand,
		config.DefaultCatalogPath(),
		defaultTimeoutSeconds,
		defaultLogLevel,
		config.DefaultLogPath(),
	)
}
