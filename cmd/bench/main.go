package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/notebox/internal/platform"
	"github.com/aretw0/notebox/pkg/core"
)

func main() {
	count := flag.Int("count", 1000, "Number of notes to generate")
	adapter := flag.String("adapter", "fs", "Store adapter: fs or sqlite")
	keep := flag.Bool("keep", false, "Keep the benchmark store after running")
	flag.Parse()

	benchDir, err := os.MkdirTemp("", "notebox_bench_")
	if err != nil {
		panic(err)
	}
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
		}
	}()

	// Generation goes through markdown import, like an existing collection.
	mdDir := filepath.Join(benchDir, "markdown")
	if err := os.MkdirAll(mdDir, 0755); err != nil {
		panic(err)
	}
	fmt.Printf("Generating %d notes in %s...\n", *count, mdDir)
	startGen := time.Now()
	for i := 0; i < *count; i++ {
		content := fmt.Sprintf("---\ntitle: Note %d\ntags: [benchmark, t%d]\n---\n# Benchmark Note %d\nThis is a test note.", i, i%10, i)
		filename := filepath.Join(mdDir, fmt.Sprintf("note_%d.md", i))
		if err := os.WriteFile(filename, []byte(content), 0644); err != nil {
			panic(err)
		}
	}
	fmt.Printf("Generation took: %v\n", time.Since(startGen))

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	storePath := filepath.Join(benchDir, "store")
	open := func() *core.Repository {
		repo, err := platform.New(context.TODO(), storePath,
			platform.WithAdapter(*adapter),
			platform.WithLogger(logger),
			platform.WithDevSafety(false),
		)
		if err != nil {
			panic(err)
		}
		return repo
	}

	ctx := context.TODO()
	repo := open()
	startImport := time.Now()
	n, err := platform.Import(ctx, repo, mdDir)
	if err != nil {
		panic(err)
	}
	importDuration := time.Since(startImport)
	platform.Close(repo.Store())

	// A fresh repository simulates a new CLI command run.
	startLoad := time.Now()
	repo = open()
	loadDuration := time.Since(startLoad)
	defer platform.Close(repo.Store())

	startQuery := time.Now()
	hits := repo.Visible("note 9", core.Filter{})
	queryDuration := time.Since(startQuery)

	startSave := time.Now()
	note := repo.Notes()[0]
	note.Content += "\nedited"
	if _, err := repo.Save(ctx, note); err != nil {
		panic(err)
	}
	saveDuration := time.Since(startSave)

	fmt.Printf("--------------------------------------------------\n")
	fmt.Printf("Benchmark Result (%d notes, %s):\n", n, *adapter)
	fmt.Printf("  Import: %v\n", importDuration)
	fmt.Printf("  Load:   %v\n", loadDuration)
	fmt.Printf("  Query:  %v (%d hits)\n", queryDuration, len(hits))
	fmt.Printf("  Save:   %v\n", saveDuration)
	fmt.Printf("--------------------------------------------------\n")
}
