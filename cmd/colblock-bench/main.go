// Command colblock-bench writes and reads back a synthetic int32 column at a
// range of compression levels, reporting the resulting file size and reading
// latency. It exists mainly to give the repo's Logger/Metrics collaborator
// interfaces a real zap/Prometheus-backed caller to run against.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/bsm/colblock"
	"github.com/bsm/colblock/internal/obs"
)

func main() {
	n := flag.Int("n", 1_000_000, "number of int32 elements")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	metrics := obs.NewPrometheusMetrics(prometheus.DefaultRegisterer)
	obsv := colblock.Observability{
		Logger:  obs.NewZapLogger(logger),
		Metrics: metrics,
	}

	src := make([]byte, *n*4)
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < *n; i++ {
		binary.LittleEndian.PutUint32(src[i*4:], uint32(rng.Intn(1000)))
	}

	for _, level := range []int{0, 25, 50, 75, 100} {
		runOnce(obsv, src, level)
	}
}

func runOnce(obsv colblock.Observability, src []byte, level int) {
	f, err := os.CreateTemp("", "colblock-bench-*")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer os.Remove(f.Name())
	defer f.Close()

	sink, err := colblock.NewFileSink(f)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	col := colblock.Int32Column{Level: level}

	start := time.Now()
	if _, _, err := col.Write(obsv, sink, src, ""); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	writeElapsed := time.Since(start)

	info, err := f.Stat()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	n := len(src) / 4
	out := make([]byte, len(src))
	start = time.Now()
	if err := col.Read(obsv, f, 0, 0, n, n, out); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	readElapsed := time.Since(start)

	fmt.Printf("level=%-3d size=%d write=%s read=%s\n", level, info.Size(), writeElapsed, readElapsed)
}
