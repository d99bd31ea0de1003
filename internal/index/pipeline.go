package index

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"tsrefactor/internal/langmodel"
)

// Stats reports loading results.
type Stats struct {
	FilesTotal   int
	FilesLoaded  int
	FilesSkipped int
	// FilesWithErrors counts files the parser had to recover in.
	FilesWithErrors int
	Duration        time.Duration
}

// fileWork is a file read from disk, waiting to be parsed.
type fileWork struct {
	seq  int
	path string
	src  []byte
	err  error
}

// runPipeline reads files with a worker pool and parses them into prog in
// the order of paths. Parsing stays on one goroutine since the program is
// not safe for concurrent use.
func runPipeline(prog *langmodel.Program, paths []string, numWorkers int, log *logrus.Logger) (*Stats, error) {
	start := time.Now()
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	// Stage 1: feed paths
	pathCh := make(chan fileWork, numWorkers)
	go func() {
		defer close(pathCh)
		for i, p := range paths {
			pathCh <- fileWork{seq: i, path: p}
		}
	}()

	// Stage 2: read (N workers)
	readCh := make(chan fileWork, numWorkers)
	var readWg sync.WaitGroup
	for range numWorkers {
		readWg.Add(1)
		go func() {
			defer readWg.Done()
			for w := range pathCh {
				w.src, w.err = os.ReadFile(w.path)
				readCh <- w
			}
		}()
	}
	go func() {
		readWg.Wait()
		close(readCh)
	}()

	read := make([]fileWork, len(paths))
	for w := range readCh {
		read[w.seq] = w
	}

	// Stage 3: parse (1 worker, original order)
	stats := Stats{FilesTotal: len(paths)}
	for _, w := range read {
		if w.err != nil {
			log.WithError(w.err).WithField("file", w.path).Warn("skipping unreadable file")
			stats.FilesSkipped++
			continue
		}
		f, err := prog.Open(w.path, w.src)
		if err != nil {
			log.WithError(err).WithField("file", w.path).Warn("skipping unparsable file")
			stats.FilesSkipped++
			continue
		}
		if f.HasSyntaxErrors() {
			log.WithField("file", w.path).Debug("file has syntax errors")
			stats.FilesWithErrors++
		}
		stats.FilesLoaded++
	}
	stats.Duration = time.Since(start)

	if stats.FilesTotal > 0 && stats.FilesLoaded == 0 {
		return &stats, fmt.Errorf("load: none of %d files could be loaded", stats.FilesTotal)
	}
	return &stats, nil
}
