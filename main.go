// figloc — Figma UI-text localization: extracts design strings, keeps
// per-language JSON documents in sync, and translates changes with AI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/figtools/figloc/cache"
	"github.com/figtools/figloc/config"
	"github.com/figtools/figloc/confidence"
	"github.com/figtools/figloc/figma"
	"github.com/figtools/figloc/flatmap"
	"github.com/figtools/figloc/i18n"
	"github.com/figtools/figloc/keygen"
	"github.com/figtools/figloc/langmeta"
	"github.com/figtools/figloc/merge"
	"github.com/figtools/figloc/nested"
	"github.com/figtools/figloc/store"
	"github.com/figtools/figloc/translate"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

var (
	rootDir string
	verbose bool
)

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "figloc",
		Short: "Figma UI-text localization with AI translation",
		Long: `figloc — Figma UI-text localization with AI translation.

Extracts text nodes from a Figma file, derives stable dotted i18n keys from
the design structure, and maintains one nested JSON document per language in
the locales directory. Changes against the previous run are detected via a
cached snapshot, so only added and edited strings are re-translated.

Commands:
  status      Show project info and translation statistics
  extract     Fetch the Figma file and rebuild the source-language document
  translate   Translate missing entries of the target documents using AI
  update      Incremental end-to-end run: extract, diff, translate, score
  sync        Reconcile target documents against the source (no network)

AI Providers:
  google         Google AI (Gemini) — GOOGLE_API_KEY
  groq           Groq — GROQ_API_KEY
  custom-openai  OpenAI-compatible endpoint — OPENAI_API_KEY, OPENAI_BASE_URL
  ollama         Ollama local server — no credentials

Figma access uses FIGMA_TOKEN; the file key comes from .figloc.yaml or
FIGMA_FILE_KEY. Variables may live in a .env file in the project root.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
			// A missing .env is fine; real environment always wins.
			_ = godotenv.Load(filepath.Join(rootDir, ".env"))
			i18n.Init("")
		},
	}

	// Global persistent flags — inherited by all subcommands
	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Project root directory")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newStatusCmd(),
		newExtractCmd(),
		newTranslateCmd(),
		newUpdateCmd(),
		newSyncCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// signalContext returns a context canceled on Ctrl+C.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// loadProject reads .figloc.yaml and the environment, and applies the custom
// prompts file if one is configured.
func loadProject() (*config.Project, *config.Env, error) {
	proj, err := config.Load(rootDir)
	if err != nil {
		return nil, nil, err
	}
	env, err := config.ReadEnv()
	if err != nil {
		return nil, nil, err
	}
	if path := proj.PromptsPath(); path != "" {
		if err := translate.LoadPromptsFromFile(path); err != nil {
			return nil, nil, err
		}
	}
	return proj, env, nil
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("figloc version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}

	return cmd
}

// ---------------------------------------------------------------------------
// extract (fetch Figma file, rebuild source document, report diff)
// ---------------------------------------------------------------------------

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Fetch the Figma file and rebuild the source-language document",
		Long: `Fetch the Figma file, collect visible text nodes, derive dotted keys from
the design structure, and rewrite the source-language JSON document.

Reports what changed against the cached snapshot of the previous run but
does not rewrite the snapshot — only a completed 'update' run does, so an
interrupted translation can always be resumed with the same diff.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()
			return runExtract(ctx)
		},
	}

	return cmd
}

func runExtract(ctx context.Context) error {
	proj, env, err := loadProject()
	if err != nil {
		return err
	}
	if err := env.RequireExtraction(proj); err != nil {
		return err
	}

	current, file, err := fetchCurrent(ctx, proj, env)
	if err != nil {
		return err
	}
	logSuccess("Fetched %q (last modified %s): %d strings", file.Name, file.LastModified, current.Len())

	st := store.New(proj.LocalesPath())
	if err := st.Save(proj.SourceLang, nested.FromFlat(current)); err != nil {
		return err
	}
	logSuccess("Wrote %s", st.Path(proj.SourceLang))

	snap, err := cache.Load(proj.Root())
	if err != nil {
		return err
	}
	diff := flatmap.Compare(current, snap.Entries)
	reportDiff(diff)
	return nil
}

// fetchCurrent fetches the Figma file and derives the current flat snapshot:
// every visible text node keyed by its design path.
func fetchCurrent(ctx context.Context, proj *config.Project, env *config.Env) (*flatmap.FlatMap, *figma.File, error) {
	client := figma.NewClient(env.FigmaToken, env.FileKey(proj))

	logInfo("%s", i18n.T("Fetching Figma file..."))
	file, err := client.FetchFile(ctx)
	if err != nil {
		return nil, nil, err
	}

	nodes := figma.CollectTextNodes(file.Document)
	gen := keygen.New()
	current := flatmap.New()
	for _, n := range nodes {
		current.Set(gen.Derive(n.Path, n.Text), n.Text)
	}
	return current, file, nil
}

func reportDiff(diff flatmap.Diff) {
	if diff.Empty() {
		logInfo("%s", i18n.T("Nothing to do — design is unchanged"))
		return
	}
	logInfo("Changes vs previous run: %d added, %d changed, %d removed",
		diff.Added.Len(), diff.Changed.Len(), len(diff.Removed))
}

// ---------------------------------------------------------------------------
// translate (fill missing entries of the target documents)
// ---------------------------------------------------------------------------

func newTranslateCmd() *cobra.Command {
	var (
		force bool
		langs []string
		delay time.Duration
	)

	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate missing entries of the target documents using AI",
		Long: `Translate target-language documents from the source-language document.

By default only entries that are missing or empty in a target are sent to
the provider; --force retranslates everything. Works entirely from the
locales directory — run 'extract' first to refresh the source document.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()
			return runTranslate(ctx, force, langs, delay)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Retranslate all entries, not just missing ones")
	cmd.Flags().StringSliceVarP(&langs, "lang", "l", nil, "Target language(s) to translate (default: all configured)")
	cmd.Flags().DurationVar(&delay, "delay", time.Second, "Delay between batch requests")

	return cmd
}

func runTranslate(ctx context.Context, force bool, langs []string, delay time.Duration) error {
	proj, env, err := loadProject()
	if err != nil {
		return err
	}
	if err := env.RequireTranslation(proj.Provider); err != nil {
		return err
	}

	targets := langs
	if len(targets) == 0 {
		targets = proj.Languages
	}
	if len(targets) == 0 {
		return fmt.Errorf("no target languages: set 'languages' in %s or pass --lang", config.FileName)
	}

	st := store.New(proj.LocalesPath())
	source, err := st.Load(proj.SourceLang)
	if err != nil {
		return err
	}
	if len(source) == 0 {
		return fmt.Errorf("source document %s is empty: run 'figloc extract' first", st.Path(proj.SourceLang))
	}

	conf, err := confidence.Load(proj.Root())
	if err != nil {
		return err
	}

	prov := buildProvider(proj, env)
	for _, lang := range targets {
		tree, err := st.Load(lang)
		if err != nil {
			return err
		}

		var work *flatmap.FlatMap
		if force {
			work = nested.Flatten(source)
		} else {
			work = merge.Untranslated(source, tree)
		}
		if work.Len() == 0 {
			logInfo("%s: nothing to translate", lang)
			continue
		}

		if err := translateLanguage(ctx, st, conf, prov, proj, lang, tree, work, nil, delay); err != nil {
			return err
		}
	}

	logSuccess("%s", i18n.T("Done"))
	return nil
}

// translateLanguage runs the translate and score passes for one language and
// persists its document immediately, so a fatal failure on a later language
// never loses completed work.
func translateLanguage(ctx context.Context, st *store.Store, conf *confidence.Store, prov translate.Provider, proj *config.Project, lang string, tree nested.Tree, work *flatmap.FlatMap, removed []string, delay time.Duration) error {
	meta := langmeta.Resolve(lang)
	logInfo("%s %s %s (%s): %d entries", i18n.T("Translating"), meta.Flag, meta.Native, lang, work.Len())

	opts := translateOptions(prov, proj, lang, delay)
	translated, report, err := translate.Batch(ctx, work, opts)
	if err != nil {
		return fmt.Errorf("translating %s: %w", lang, err)
	}
	fmt.Fprintln(os.Stderr)

	st.Apply(tree, translated, removed)
	if err := st.Save(lang, tree); err != nil {
		return err
	}

	logSuccess("%s: %d translated, %d kept English (%d batches, %d degraded)",
		lang, report.Translated, report.FallbackEntries, report.Batches, report.FallbackBatches)
	if report.PlaceholderWarnings > 0 {
		logWarning("%s: %d placeholder mismatches, review %s", lang, report.PlaceholderWarnings, st.Path(lang))
	}

	logInfo("%s", i18n.T("Scoring translation confidence..."))
	scores := translate.Score(ctx, work, translated, opts)
	conf.Merge(lang, scores)
	// Written per language, like the locale document: a fatal failure on a
	// later language keeps the scores already earned.
	if err := conf.Save(); err != nil {
		return err
	}
	if avg, n := conf.Average(lang); n > 0 {
		logInfo("%s: average confidence %.0f%% over %d entries", lang, avg, n)
	}
	return nil
}

// buildProvider resolves the configured provider with credentials and
// overrides from the environment.
func buildProvider(proj *config.Project, env *config.Env) translate.Provider {
	prov := translate.DefaultProviders()[proj.Provider]
	prov.APIKey = env.APIKey(proj.Provider)
	if proj.Model != "" {
		prov.Model = proj.Model
	}
	switch proj.Provider {
	case translate.ProviderCustomOpenAI:
		prov.BaseURL = env.OpenAIBaseURL
	case translate.ProviderOllama:
		if env.OllamaHost != "" {
			prov.BaseURL = env.OllamaHost
		}
	}
	return prov
}

func translateOptions(prov translate.Provider, proj *config.Project, lang string, delay time.Duration) translate.Options {
	return translate.Options{
		Provider:       prov,
		Language:       lang,
		LanguageName:   langmeta.Name(lang),
		BatchSize:      proj.BatchSize,
		ScoreBatchSize: proj.ScoreBatchSize,
		RequestDelay:   delay,
		OnProgress: func(lang string, done, total int) {
			fmt.Fprintf(os.Stderr, "\r  %s: %d/%d", lang, done, total)
		},
		OnLog:   logInfo,
		OnError: logWarning,
		Verbose: verbose,
	}
}

// ---------------------------------------------------------------------------
// update (incremental end-to-end run)
// ---------------------------------------------------------------------------

func newUpdateCmd() *cobra.Command {
	var delay time.Duration

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Incremental end-to-end run: extract, diff, translate, score",
		Long: `Fetch the Figma file, diff it against the cached snapshot of the previous
run, and push only the added and changed strings through translation and
confidence scoring. Keys that disappeared from the design are removed from
every target document.

The snapshot is rewritten only after every target language has been
translated, so an interrupted run resumes with the full remaining diff.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()
			return runUpdate(ctx, delay)
		},
	}

	cmd.Flags().DurationVar(&delay, "delay", time.Second, "Delay between batch requests")

	return cmd
}

func runUpdate(ctx context.Context, delay time.Duration) error {
	proj, env, err := loadProject()
	if err != nil {
		return err
	}
	if err := env.RequireExtraction(proj); err != nil {
		return err
	}
	if len(proj.Languages) > 0 {
		if err := env.RequireTranslation(proj.Provider); err != nil {
			return err
		}
	}

	current, file, err := fetchCurrent(ctx, proj, env)
	if err != nil {
		return err
	}
	logSuccess("Fetched %q (last modified %s): %d strings", file.Name, file.LastModified, current.Len())

	snap, err := cache.Load(proj.Root())
	if err != nil {
		return err
	}
	diff := flatmap.Compare(current, snap.Entries)
	if diff.Empty() {
		logInfo("%s", i18n.T("Nothing to do — design is unchanged"))
		return nil
	}
	reportDiff(diff)

	st := store.New(proj.LocalesPath())
	if err := st.Save(proj.SourceLang, nested.FromFlat(current)); err != nil {
		return err
	}

	conf, err := confidence.Load(proj.Root())
	if err != nil {
		return err
	}

	work := diff.WorkSet()
	prov := buildProvider(proj, env)
	for _, lang := range proj.Languages {
		tree, err := st.Load(lang)
		if err != nil {
			return err
		}
		if err := translateLanguage(ctx, st, conf, prov, proj, lang, tree, work, diff.Removed, delay); err != nil {
			return err
		}
	}

	conf.Purge(diff.Removed)
	if err := conf.Save(); err != nil {
		return err
	}

	snap.Replace(current)
	if err := snap.Save(); err != nil {
		return err
	}
	logSuccess("%s", i18n.T("Done"))
	return nil
}

// ---------------------------------------------------------------------------
// sync (offline structural reconciliation)
// ---------------------------------------------------------------------------

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile target documents against the source (no network)",
		Long: `Rebuild every target document against the source-language document:
keys missing from a target are added with empty translations, orphaned keys
are dropped, existing translations are kept. Purely structural — nothing is
fetched and nothing is translated.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync()
		},
	}

	return cmd
}

func runSync() error {
	proj, _, err := loadProject()
	if err != nil {
		return err
	}

	st := store.New(proj.LocalesPath())
	source, err := st.Load(proj.SourceLang)
	if err != nil {
		return err
	}
	if len(source) == 0 {
		return fmt.Errorf("source document %s is empty: run 'figloc extract' first", st.Path(proj.SourceLang))
	}

	targets := proj.Languages
	if len(targets) == 0 {
		// Fall back to whatever documents exist on disk.
		existing, err := st.Languages()
		if err != nil {
			return err
		}
		for _, lang := range existing {
			if lang != proj.SourceLang {
				targets = append(targets, lang)
			}
		}
	}

	for _, lang := range targets {
		tree, err := st.Load(lang)
		if err != nil {
			return err
		}
		out, stats := merge.Reconcile(source, tree)
		if err := st.Save(lang, out); err != nil {
			return err
		}
		logSuccess("%s: %d kept, %d added empty, %d orphans dropped", lang, stats.Kept, stats.Added, stats.Removed)
	}
	return nil
}

// ---------------------------------------------------------------------------
// status (read-only: project info + translation stats)
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show project info and translation statistics",
		Long: `Show project configuration and per-language translation progress.

Displays the configured provider, locales directory, and for every target
language the share of translated entries and the average confidence score.
Does not modify any files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus()
		},
	}

	return cmd
}

func runStatus() error {
	proj, env, err := loadProject()
	if err != nil {
		return err
	}

	// Project info header
	fmt.Fprintf(os.Stderr, "\n%sProject%s\n", colorBlue, colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))

	absRoot, _ := filepath.Abs(proj.Root())
	fmt.Fprintf(os.Stderr, "  Root:       %s\n", absRoot)

	fileKey := env.FileKey(proj)
	if fileKey == "" {
		fileKey = "(not set)"
	}
	fmt.Fprintf(os.Stderr, "  File key:   %s\n", fileKey)
	fmt.Fprintf(os.Stderr, "  Locales:    %s\n", proj.LocalesPath())

	prov := buildProvider(proj, env)
	fmt.Fprintf(os.Stderr, "  Provider:   %s (%s)\n", prov.Name, prov.Model)

	st := store.New(proj.LocalesPath())
	source, err := st.Load(proj.SourceLang)
	if err != nil {
		return err
	}
	total := nested.Flatten(source).Len()
	fmt.Fprintf(os.Stderr, "  Source:     %s (%d strings)\n", proj.SourceLang, total)

	snap, err := cache.Load(proj.Root())
	if err != nil {
		return err
	}
	if snap.Entries.Len() > 0 {
		fmt.Fprintf(os.Stderr, "  Snapshot:   %d strings\n", snap.Entries.Len())
	} else {
		fmt.Fprintf(os.Stderr, "  Snapshot:   (none — next update translates everything)\n")
	}

	conf, err := confidence.Load(proj.Root())
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n%sLanguages%s\n", colorBlue, colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))

	if len(proj.Languages) == 0 {
		fmt.Fprintf(os.Stderr, "  (none configured)\n\n")
		return nil
	}

	for _, lang := range proj.Languages {
		tree, err := st.Load(lang)
		if err != nil {
			return err
		}
		missing := merge.Untranslated(source, tree).Len()
		done := total - missing

		pct := 0.0
		if total > 0 {
			pct = float64(done) / float64(total) * 100
		}

		meta := langmeta.Resolve(lang)
		line := fmt.Sprintf("  %s %-8s %-24s %4d/%-4d %5.1f%%", meta.Flag, lang, meta.Native, done, total, pct)
		if avg, n := conf.Average(lang); n > 0 {
			line += fmt.Sprintf("  conf %3.0f%%", avg)
		}
		fmt.Fprintln(os.Stderr, line)
	}
	fmt.Fprintln(os.Stderr)
	return nil
}
