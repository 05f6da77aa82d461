package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/blackmichael/bluesky-posts/internal/bluesky"
	"github.com/blackmichael/bluesky-posts/internal/cache"
	"github.com/blackmichael/bluesky-posts/internal/config"
	"github.com/blackmichael/bluesky-posts/internal/domain"
	"github.com/blackmichael/bluesky-posts/internal/export"
	"github.com/blackmichael/bluesky-posts/internal/fetch"
)

var (
	flagUsername string
	flagPassword string
	flagHandle   string
	flagFile     string
	flagList     string
	flagSearch   string
	flagLimit    int
	flagOutput   string
	flagFormat   string
	flagFrom     string
	flagMention  string
	flagLanguage string
	flagSince    string
	flagUntil    string
	flagDomain   string
	flagArchive  bool
	flagPDS      string
	flagConfig   string
	flagVerbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "bskyposts",
	Short: "Fetch Bluesky posts by user, list, or search and export them",
	Long: `bskyposts retrieves posts from Bluesky over the public AT Protocol API,
paginating past the per-request cap, and exports them as JSON, CSV, or Parquet.

Targets: a single handle (-a), a file of handles (-f), a Bluesky list URL (-l),
or a full-text search (-s). With no target, an interactive prompt asks for one.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&flagUsername, "username", "u", "", "Bluesky handle or email (or set BLUESKY_HANDLE)")
	flags.StringVarP(&flagPassword, "password", "p", "", "Bluesky app password (or set BLUESKY_APP_PASSWORD)")

	flags.StringVarP(&flagHandle, "handle", "a", "", "fetch posts from a single user by handle")
	flags.StringVarP(&flagFile, "file", "f", "", "file with Bluesky handles, one per line")
	flags.StringVarP(&flagList, "list", "l", "", "Bluesky list URL to fetch posts from")
	flags.StringVarP(&flagSearch, "search", "s", "", "search for posts matching a query")

	flags.IntVarP(&flagLimit, "limit", "n", 0, "maximum posts per user (default 20), or total for search")
	flags.StringVarP(&flagOutput, "output", "o", "", "output file path (default: auto-generated)")
	flags.StringVarP(&flagFormat, "format", "e", export.FormatCSV, "export format: json, csv, or parquet")

	flags.StringVar(&flagFrom, "from", "", "search filter: posts authored by this user")
	flags.StringVar(&flagMention, "mention", "", "search filter: posts mentioning this user")
	flags.StringVar(&flagLanguage, "language", "", "search filter: language code")
	flags.StringVar(&flagSince, "since", "", "search filter: start date (YYYY-MM-DD)")
	flags.StringVar(&flagUntil, "until", "", "search filter: end date (YYYY-MM-DD)")
	flags.StringVar(&flagDomain, "domain", "", "search filter: keep posts linking to this domain")

	flags.BoolVar(&flagArchive, "archive", false, "also archive fetched posts to the local SQLite database")
	flags.StringVar(&flagPDS, "pds", "", "PDS service URL (default https://bsky.social)")
	flags.StringVar(&flagConfig, "config", "", "path to config file")
	flags.BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if flagUsername != "" {
		cfg.Handle = flagUsername
	}
	if flagPassword != "" {
		cfg.Password = flagPassword
	}
	if flagPDS != "" {
		cfg.PDS = flagPDS
	}
	if cfg.Handle == "" || cfg.Password == "" {
		return fmt.Errorf("credentials required: pass --username and --password or set BLUESKY_HANDLE and BLUESKY_APP_PASSWORD")
	}

	query, base, err := buildQuery()
	if err != nil {
		return err
	}

	client := bluesky.NewClient(cfg.PDS)
	if err := client.Login(ctx, cfg.Handle, cfg.Password); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}
	logger.Info("authenticated", "handle", client.Handle(), "did", client.DID())

	service := fetch.New(client, logger, func(pageRecords, total int) {
		logger.Debug("page retrieved", "records", pageRecords, "total", total)
	})

	results, err := service.Run(ctx, query)
	if err != nil {
		return err
	}
	if results.Total() == 0 {
		logger.Info("no posts found")
		return nil
	}
	logger.Info("retrieval complete", "records", results.Total())

	if flagArchive {
		if err := archiveResults(cfg, results, logger); err != nil {
			logger.Warn("archiving failed", "error", err)
		}
	}

	path := export.OutputPath(cfg.OutputDir, base, flagFormat, flagOutput)
	if err := export.Write(path, flagFormat, results); err != nil {
		return fmt.Errorf("export results: %w", err)
	}
	logger.Info("export complete", "path", path, "format", flagFormat, "records", results.Total())
	return nil
}

// buildQuery turns the target-selection flags into a fully-specified query
// plus the base name used for generated output files. With no target flag
// set it falls back to the interactive prompt.
func buildQuery() (domain.Query, string, error) {
	switch {
	case flagHandle != "":
		q, err := domain.NewUserTimelineQuery(flagHandle, flagLimit)
		return q, "bluesky_posts_" + domain.NormalizeHandle(flagHandle), err

	case flagFile != "":
		handles, err := readHandlesFile(flagFile)
		if err != nil {
			return domain.Query{}, "", err
		}
		q, err := domain.NewUserSetQuery(handles, flagLimit)
		return q, "bluesky_posts_multiple_users", err

	case flagList != "":
		q, err := domain.NewListQuery(flagList, flagLimit)
		base := "bluesky_list"
		if ref, perr := domain.ParseListURL(flagList); perr == nil {
			base += "_" + ref.ID
		}
		return q, base, err

	case flagSearch != "":
		q, err := domain.NewSearchQuery(flagSearch, flagLimit, domain.SearchFilters{
			From:     flagFrom,
			Mention:  flagMention,
			Language: flagLanguage,
			Since:    flagSince,
			Until:    flagUntil,
			Domain:   flagDomain,
		})
		return q, "bluesky_search_" + strings.ReplaceAll(flagSearch, " ", "_"), err

	default:
		return promptQuery(os.Stdin, os.Stderr, flagLimit)
	}
}

func readHandlesFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read handles file: %w", err)
	}
	var handles []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			handles = append(handles, line)
		}
	}
	if len(handles) == 0 {
		return nil, fmt.Errorf("no handles found in %s", path)
	}
	return handles, nil
}

func archiveResults(cfg *config.Config, results *domain.ResultSet, logger *slog.Logger) error {
	path := cfg.ArchivePath
	if path == "" {
		var err error
		if path, err = config.DefaultArchivePath(); err != nil {
			return err
		}
	}
	store, err := cache.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.SaveResultSet(results)
	if err != nil {
		return err
	}
	logger.Info("archived posts", "path", path, "records", n)
	return nil
}
