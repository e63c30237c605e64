// Package main implements catalogctl, a small CLI consumer of the parse
// service built on pkg/client. It loads a category batch by batch the way
// the storefront does, through the same long-lived freshness cache.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/shishl0/kaspi-catalog/pkg/client"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "Parse service base URL")
	categoryKey := flag.String("category", "ram", "Category key (ram, videocards, cpus) or a raw category URL")
	pages := flag.Int("pages", 1, "Number of batches to load")
	cacheDir := flag.String("cache-dir", defaultCacheDir(), "Freshness cache directory (empty disables caching)")
	clearCache := flag.Bool("clear-cache", false, "Drop the cached payload for the category and exit")
	refresh := flag.Bool("refresh", false, "Bypass the freshness cache for the first batch")
	asJSON := flag.Bool("json", false, "Print products as JSON instead of a table")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cat, err := resolveCategory(*categoryKey)
	if err != nil {
		fatalf("%v", err)
	}

	var opts []client.Option
	var cache *client.FreshnessCache
	if *cacheDir != "" {
		store, err := client.NewStore(*cacheDir)
		if err != nil {
			fatalf("open cache dir: %v", err)
		}
		cache = client.NewFreshnessCache(store)
		opts = append(opts, client.WithCache(cache))
	}

	if *clearCache {
		if cache == nil {
			fatalf("clear-cache requires a cache dir")
		}
		if err := cache.Clear(cat.Key); err != nil {
			fatalf("clear cache: %v", err)
		}
		fmt.Printf("cleared cache for %s\n", cat.Key)
		return
	}

	c := client.New(*server, opts...)

	var state client.CategoryState
	if *refresh {
		state, err = c.Refresh(ctx, cat)
	} else {
		state, err = c.LoadCategory(ctx, cat)
	}
	if err != nil {
		fatalf("load %s: %v", cat.Key, err)
	}

	for page := 1; page < *pages && state.HasMore; page++ {
		state, err = c.LoadMore(ctx, cat, state)
		if err != nil {
			fatalf("load more: %v", err)
		}
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(state.Products); err != nil {
			fatalf("encode products: %v", err)
		}
		return
	}

	fmt.Printf("%s: %d products (page %d, more=%v, fetched %s)\n",
		cat.Label, len(state.Products), state.Page, state.HasMore, state.FetchedAtISO)
	for _, p := range state.Products {
		fmt.Printf("%8d  %10d ₸  %.1f★  %s\n", p.ID, p.Price, p.Rating, p.Name)
		if p.Description != "" {
			fmt.Printf("            %s\n", p.Description)
		}
	}
}

// resolveCategory maps a preset key to its category, or wraps a raw URL.
func resolveCategory(key string) (client.Category, error) {
	for _, cat := range client.DefaultCategories() {
		if cat.Key == key {
			return cat, nil
		}
	}
	if strings.HasPrefix(key, "https://") || strings.HasPrefix(key, "http://") {
		return client.Category{Key: "custom", Label: "Custom", URL: key}, nil
	}
	return client.Category{}, fmt.Errorf("unknown category %q", key)
}

func defaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return base + string(os.PathSeparator) + "kaspi-catalog"
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
