// Command warncheck runs the warnings keyword filter over an RSS document and
// prints the JSON the proxy would return for it. It is used to check keyword
// coverage against a saved copy of the CWA feed or against the live feed.
//
// Usage:
//
//	go run ./cmd/warncheck -file testdata/cwa_warning.xml
//	go run ./cmd/warncheck -url https://www.cwa.gov.tw/rss/Data/cwa_warning.xml -timeout 10s
//	go run ./cmd/warncheck -file feed.xml -keywords 警報,特報,颱風
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/cwa-proxy-service/internal/adapter/cwa"
	"github.com/couchcryptid/cwa-proxy-service/internal/config"
	"github.com/couchcryptid/cwa-proxy-service/internal/domain"
	"github.com/couchcryptid/cwa-proxy-service/internal/observability"
	"github.com/mmcdole/gofeed"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	file := flag.String("file", "", "path to a saved RSS document")
	feedURL := flag.String("url", "", "warnings feed URL to fetch")
	timeout := flag.Duration("timeout", 10*time.Second, "request timeout when fetching -url")
	keywords := flag.String("keywords", "", "comma-separated keywords (default: built-in warning keywords)")
	flag.Parse()

	if (*file == "") == (*feedURL == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -file or -url is required")
		flag.Usage()
		os.Exit(2)
	}

	if code := run(*file, *feedURL, *timeout, *keywords, os.Stdout, os.Stderr); code != 0 {
		os.Exit(code)
	}
}

func run(file, feedURL string, timeout time.Duration, keywords string, stdout, stderr io.Writer) int {
	items, err := load(file, feedURL, timeout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "FAIL: %v\n", err)
		return 1
	}

	filter := domain.DefaultKeywordFilter()
	if keywords != "" {
		filter = domain.NewKeywordFilter(strings.Split(keywords, ",")...)
	}
	matched := filter.Apply(items)

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(domain.NewWarningsResponse(matched)); err != nil {
		fmt.Fprintf(stderr, "FAIL: encode: %v\n", err)
		return 1
	}

	fmt.Fprintf(stderr, "matched %d of %d items (keywords: %s)\n", len(matched), len(items), strings.Join(filter.Keywords(), ", "))
	return 0
}

func load(file, feedURL string, timeout time.Duration, stderr io.Writer) ([]domain.WarningItem, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		fmt.Fprintln(stderr, describeFeed(data))
		return cwa.ParseWarnings(bytes.NewReader(data))
	}

	if feedURL == "" {
		return nil, errors.New("no feed source")
	}
	cfg := &config.Config{CWAWarningsFeedURL: feedURL, CWATimeout: timeout}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	client := cwa.NewClient(cfg, observability.NewMetricsWith(prometheus.NewRegistry()), logger)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return client.FetchWarnings(ctx)
}

// describeFeed reports what a feed reader would make of the document, so a
// saved copy can be checked for feed type and channel title before filtering.
func describeFeed(data []byte) string {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return fmt.Sprintf("feed: unrecognised (%v)", err)
	}
	return fmt.Sprintf("feed: %s (%s %s, %d items)", feed.Title, feed.FeedType, feed.FeedVersion, len(feed.Items))
}
