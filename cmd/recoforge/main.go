package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iishyfishyy/recoforge/internal/catalog"
	"github.com/iishyfishyy/recoforge/internal/config"
	"github.com/iishyfishyy/recoforge/internal/embeddings"
	"github.com/iishyfishyy/recoforge/internal/logger"
	"github.com/iishyfishyy/recoforge/internal/recommend"
	"github.com/iishyfishyy/recoforge/internal/ui"
)

var (
	// version is set by goreleaser at build time
	version = "dev"
	commit  = "none"
	date    = "unknown"

	// CLI flags
	debug        bool
	providerFlag string
	modelFlag    string
	catalogFlag  string
	tagsFlag     string
	kFlag        int
	copyFlag     bool
	jsonFlag     bool
	historyLimit int
	historyClear bool
	importTable  string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		ui.ShowError(err.Error())
		os.Exit(1)
	}
}

// newRootCmd builds the command tree; flag variables are reset to their defaults
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "recoforge",
		Short:         "Content-based recommendations from a catalog",
		Long:          "recoforge ranks catalog items by semantic similarity to a description or to an item you like",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runInteractive,
	}

	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&providerFlag, "provider", "", "Embedding provider (tfidf, ollama, openai)")
	rootCmd.PersistentFlags().StringVar(&modelFlag, "model", "", "Embedding model for the selected provider")

	describeCmd := &cobra.Command{
		Use:   "describe [text]",
		Short: "Recommend items matching a description",
		RunE:  runDescribe,
	}
	addQueryFlags(describeCmd)

	similarCmd := &cobra.Command{
		Use:   "similar ITEM",
		Short: "Recommend items similar to a catalog item",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSimilar,
	}
	addQueryFlags(similarCmd)

	interactiveCmd := &cobra.Command{
		Use:   "interactive",
		Short: "Ask for recommendations interactively",
		Args:  cobra.NoArgs,
		RunE:  runInteractive,
	}
	interactiveCmd.Flags().StringVar(&catalogFlag, "catalog", "", "Catalog file (JSON, YAML or SQLite); empty for the sample catalog")
	rootCmd.Flags().StringVar(&catalogFlag, "catalog", "", "Catalog file (JSON, YAML or SQLite); empty for the sample catalog")

	itemsCmd := &cobra.Command{
		Use:   "items",
		Short: "List catalog items",
		Args:  cobra.NoArgs,
		RunE:  runItems,
	}
	itemsCmd.Flags().StringVar(&catalogFlag, "catalog", "", "Catalog file (JSON, YAML or SQLite); empty for the sample catalog")
	itemsCmd.Flags().StringVar(&tagsFlag, "tags", recommend.NoTagFilter, "Comma-separated tags every item must have")
	itemsCmd.Flags().BoolVar(&jsonFlag, "json", false, "Print items as JSON")

	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage catalog files",
	}
	importCmd := &cobra.Command{
		Use:   "import SRC DEST.db",
		Short: "Convert a JSON or YAML catalog into a SQLite database",
		Args:  cobra.ExactArgs(2),
		RunE:  runImport,
	}
	importCmd.Flags().StringVar(&importTable, "table", catalog.DefaultTable, "Table to read when SRC is itself a SQLite database")
	catalogCmd.AddCommand(importCmd)

	configureCmd := &cobra.Command{
		Use:   "configure",
		Short: "Choose the embedding provider and defaults",
		Args:  cobra.NoArgs,
		RunE:  runConfigure,
	}

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show past queries",
		Args:  cobra.NoArgs,
		RunE:  runHistory,
	}
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of entries to show (0 for all)")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "Delete all history")

	rootCmd.AddCommand(describeCmd, similarCmd, interactiveCmd, itemsCmd, catalogCmd, configureCmd, historyCmd)
	return rootCmd
}

func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&catalogFlag, "catalog", "", "Catalog file (JSON, YAML or SQLite); empty for the sample catalog")
	cmd.Flags().StringVar(&tagsFlag, "tags", recommend.NoTagFilter, "Comma-separated tags every result must have")
	cmd.Flags().IntVarP(&kFlag, "top", "k", 0, "Number of recommendations (default from config)")
	cmd.Flags().BoolVar(&copyFlag, "copy", false, "Copy the results to the clipboard")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Print results as JSON")
}

// app carries what every command needs after startup
type app struct {
	cfg *config.Config
	log *logger.Logger

	// set once the user picks a catalog interactively
	chosen  bool
	catalog string
}

func newApp() (*app, error) {
	level := "error"
	if debug {
		level = "debug"
	}
	log := logger.New(os.Stderr, level)

	if err := config.LoadEnv(); err != nil {
		ui.ShowWarning(fmt.Sprintf("Could not load .env: %v", err))
	}

	configPath, _ := config.GetConfigPath()
	log.Debug("Config: loading from %s", configPath)

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if providerFlag != "" {
		cfg.Embeddings.Provider = providerFlag
	}
	if modelFlag != "" {
		switch strings.ToLower(cfg.Embeddings.Provider) {
		case embeddings.ProviderOllama:
			cfg.Embeddings.Ollama.Model = modelFlag
		case embeddings.ProviderOpenAI:
			cfg.Embeddings.OpenAI.Model = modelFlag
		default:
			log.Info("--model is ignored by the %s provider", cfg.Embeddings.Provider)
		}
	}

	log.Debug("Config: provider=%s catalog=%q k=%d history=%v",
		cfg.Embeddings.Provider, cfg.Catalog, cfg.DefaultK, cfg.History)

	return &app{cfg: cfg, log: log}, nil
}

// catalogPath picks the --catalog flag over the configured default
func (a *app) catalogPath() string {
	if a.chosen {
		return a.catalog
	}
	if catalogFlag != "" {
		return catalogFlag
	}
	return a.cfg.Catalog
}

func (a *app) k() int {
	if kFlag != 0 {
		return kFlag
	}
	return a.cfg.DefaultK
}

func catalogLabel(path string) string {
	if path == "" {
		return catalog.SampleName
	}
	return path
}

// openEngine loads the catalog at path and embeds it with the configured provider
func (a *app) openEngine(ctx context.Context, path string) (*recommend.Engine, error) {
	src, err := catalog.Open(path)
	if err != nil {
		return nil, err
	}

	embedder, err := embeddings.NewEmbedder(a.cfg.EmbedderConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	a.log.Debug("Embeddings: using %s", embedder.Name())

	store, err := recommend.Build(ctx, src, embedder, recommend.WithBuildLogger(a.log))
	if err != nil {
		return nil, err
	}
	a.log.Debug("Catalog: %s loaded with %d items (%d dims)", catalogLabel(path), store.Len(), store.Dimensions())

	return recommend.NewEngine(store, embedder, recommend.WithEngineLogger(a.log)), nil
}
