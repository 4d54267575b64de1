package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/hyperjump/memefeed/internal/cli"
	"github.com/hyperjump/memefeed/internal/config"
	"github.com/hyperjump/memefeed/internal/feedback"
	"github.com/hyperjump/memefeed/internal/models"
	"github.com/hyperjump/memefeed/internal/recommend"
	"github.com/hyperjump/memefeed/internal/storage"
	"github.com/hyperjump/memefeed/pkg/utils"
	"go.uber.org/zap"
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

// argsReorder moves any flags (and their values) that appear after positional
// arguments to the front so that flag.Parse() sees them. Go's flag package stops
// at the first non-flag argument, so "memefeed like 3 --server x" would otherwise
// leave --server unparsed.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// parseIndexList parses "0, 2,5" into indices. An empty string yields no indices.
func parseIndexList(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid index %q", part)
		}
		out = append(out, n)
	}
	return out, nil
}

func getJSON(serverURL, path string, out interface{}) error {
	resp, err := httpClient.Get(strings.TrimRight(serverURL, "/") + path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	return decodeResponse(resp, out)
}

func postJSON(serverURL, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	resp, err := httpClient.Post(strings.TrimRight(serverURL, "/")+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	return decodeResponse(resp, out)
}

func decodeResponse(resp *http.Response, out interface{}) error {
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func outputFlag(fs *flag.FlagSet) *string {
	return fs.String("output", "text", "output format: text or json")
}

// localEngine builds an engine over the configured data set for offline commands.
func localEngine(configPath string) (*recommend.Engine, *config.Config, func()) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		fail("Failed to load config: %v", err)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fail("Failed to create logger: %v", err)
	}
	cfg.Search.Enabled = boolPtr(false)
	components, err := initializeComponents(context.Background(), cfg, logger)
	if err != nil {
		fail("Failed to load data: %v", err)
	}
	return components.Engine, cfg, func() {
		components.Close()
		_ = logger.Sync()
	}
}

func boolPtr(b bool) *bool { return &b }

func runRecommend() {
	fs := flag.NewFlagSet("recommend", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (offline mode)")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = offline on the local data set)")
	k := fs.Int("k", 10, "number of recommendations")
	liked := fs.String("liked", "", "comma-separated liked indices (offline mode)")
	output := outputFlag(fs)
	_ = fs.Parse(argsReorder(os.Args[2:]))

	format, err := cli.ParseOutputFormat(*output)
	if err != nil {
		fail("%v", err)
	}
	if *k < 0 {
		fail("--k must be non-negative")
	}

	var resp models.RecommendResponse
	if *serverURL != "" {
		if err := getJSON(*serverURL, "/api/v1/recommendations?k="+strconv.Itoa(*k), &resp); err != nil {
			fail("Recommend failed: %v", err)
		}
	} else {
		likedIdx, err := parseIndexList(*liked)
		if err != nil {
			fail("%v", err)
		}
		engine, _, closeFn := localEngine(*configPath)
		defer closeFn()
		for _, idx := range likedIdx {
			if _, err := engine.RecordFeedback(feedback.ActionLike, idx); err != nil {
				fail("Invalid liked index: %v", err)
			}
		}
		recs := engine.Recommend(*k)
		resp = models.RecommendResponse{Recommendations: recs, Count: len(recs)}
	}
	if err := cli.WriteRecommendations(os.Stdout, &resp, format); err != nil {
		fail("Output failed: %v", err)
	}
}

func runFeedback(command string) {
	fs := flag.NewFlagSet(command, flag.ExitOnError)
	serverURL := fs.String("server", defaultServerURL, "server URL")
	output := outputFlag(fs)
	_ = fs.Parse(argsReorder(os.Args[2:]))

	format, err := cli.ParseOutputFormat(*output)
	if err != nil {
		fail("%v", err)
	}
	if fs.NArg() != 1 {
		fail("Usage: memefeed %s <index> [--server URL]", command)
	}
	index, err := strconv.Atoi(fs.Arg(0))
	if err != nil {
		fail("index must be an integer, got %q", fs.Arg(0))
	}
	if *serverURL == "" {
		fail("%s needs a running server (--server)", command)
	}

	var res models.FeedbackResult
	req := models.FeedbackRequest{Action: command, Index: &index}
	if err := postJSON(*serverURL, "/api/v1/feedback", req, &res); err != nil {
		fail("Feedback failed: %v", err)
	}
	if err := cli.WriteFeedbackResult(os.Stdout, &res, format); err != nil {
		fail("Output failed: %v", err)
	}
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (offline mode)")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = read the local data set)")
	output := outputFlag(fs)
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*output)
	if err != nil {
		fail("%v", err)
	}

	var st models.Status
	if *serverURL != "" {
		if err := getJSON(*serverURL, "/api/v1/status", &st); err != nil {
			fail("Status failed: %v", err)
		}
	} else {
		engine, cfg, closeFn := localEngine(*configPath)
		defer closeFn()
		st = engine.Status()
		st.DataSource = cfg.Data.Source
		if n, err := storage.DiskUsageBytes(cfg.Data.Paths()...); err == nil {
			st.DiskUsageBytes = &n
		}
	}
	if err := cli.WriteStatus(os.Stdout, &st, format); err != nil {
		fail("Output failed: %v", err)
	}
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	serverURL := fs.String("server", defaultServerURL, "server URL")
	limit := fs.Int("limit", 10, "number of results")
	output := outputFlag(fs)
	_ = fs.Parse(argsReorder(os.Args[2:]))

	format, err := cli.ParseOutputFormat(*output)
	if err != nil {
		fail("%v", err)
	}
	query := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if query == "" {
		fail("Usage: memefeed search [--server URL] [--limit N] <query>")
	}
	var resp models.SearchResponse
	path := "/api/v1/search?q=" + url.QueryEscape(query) + "&limit=" + strconv.Itoa(*limit)
	if err := getJSON(*serverURL, path, &resp); err != nil {
		fail("Search failed: %v", err)
	}
	if err := cli.WriteSearchResults(os.Stdout, &resp, format); err != nil {
		fail("Output failed: %v", err)
	}
}

func runImport() {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	embeddings := fs.String("embeddings", "", "embeddings CSV (default: data.embeddings_path)")
	identifiers := fs.String("identifiers", "", "identifier JSON (default: data.identifiers_path)")
	database := fs.String("database", "", "SQLite database (default: data.database_path)")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fail("Failed to load config: %v", err)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fail("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	data := cfg.Data
	data.Source = config.SourceCSV
	if *embeddings != "" {
		data.EmbeddingsPath = *embeddings
	}
	if *identifiers != "" {
		data.IdentifiersPath = *identifiers
	}
	if *database != "" {
		data.DatabasePath = *database
	}

	n, err := importDataSet(context.Background(), data, logger)
	if err != nil {
		fail("Import failed: %v", err)
	}
	fmt.Printf("Imported %d items into %s\n", n, data.DatabasePath)
}

// importDataSet loads the CSV/JSON pair named by data and replaces the SQLite items table with it.
func importDataSet(ctx context.Context, data config.DataConfig, logger *zap.Logger) (int, error) {
	store, err := loadStore(ctx, data, logger)
	if err != nil {
		return 0, err
	}
	db, err := storage.NewSQLiteStorage(data.DatabasePath)
	if err != nil {
		return 0, err
	}
	defer db.Close()
	if err := db.ImportStore(ctx, store); err != nil {
		return 0, err
	}
	logger.Info("data set imported",
		zap.String("database", data.DatabasePath),
		zap.Int("items", store.Size()),
		zap.Int("dimension", store.Dimension()),
	)
	return store.Size(), nil
}
