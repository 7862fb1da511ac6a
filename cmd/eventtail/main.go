// ════════════════════════════════════════════════════════════════════════════
// Event Log Tailer - Main Entry Point
// ────────────────────────────────────────────────────────────────────────────
// Component: Main Entry Point & Pipeline Orchestration
//
// Description:
//   Composes the record framer, mmap log reader, tail notifier, SPSC ring,
//   and validator into a three-goroutine pipeline: producer reads and
//   frames records off the mapped file and pushes them onto the ring;
//   consumer pops them and drives the validator and latency histogram;
//   monitor reports cumulative/interval counts on a fixed period.
// ════════════════════════════════════════════════════════════════════════════

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/JulianZhan/trading-ledger/internal/control"
	"github.com/JulianZhan/trading-ledger/internal/diag"
	"github.com/JulianZhan/trading-ledger/internal/frame"
	"github.com/JulianZhan/trading-ledger/internal/histogram"
	"github.com/JulianZhan/trading-ledger/internal/logreader"
	"github.com/JulianZhan/trading-ledger/internal/ring"
	"github.com/JulianZhan/trading-ledger/internal/tailnotify"
	"github.com/JulianZhan/trading-ledger/internal/validator"
)

const (
	ringCapacity    = 4096 // power of two; usable capacity is ringCapacity-1
	waitTimeout     = 100 * time.Millisecond
	monitorInterval = 5 * time.Second
	histogramEvery  = 10_000
)

func main() {
	logPath := flag.String("log", "data/event_log.bin", "path to the event log file")
	ledgerPath := flag.String("ledger", "", "path to the validator's sqlite running-totals side table (empty disables persistence)")
	lenient := flag.Bool("lenient", false, "skip records that fail CRC verification instead of halting (default: strict)")
	flag.Parse()
	if flag.NArg() > 0 {
		*logPath = flag.Arg(0)
	}

	os.Exit(run(*logPath, *ledgerPath, *lenient))
}

func run(logPath, ledgerPath string, lenient bool) int {
	reader, err := logreader.Open(logPath)
	if err != nil {
		diag.Error("OPEN", err)
		return 1
	}
	defer reader.Close()

	notifier, err := tailnotify.New(logPath)
	if err != nil {
		diag.Error("NOTIFY_INIT", err)
		return 1
	}
	defer notifier.Close()

	v, closeValidator, err := buildValidator(ledgerPath)
	if err != nil {
		diag.Error("VALIDATOR_INIT", err)
		return 1
	}
	defer closeValidator()

	r := ring.New[frame.Event](ringCapacity)
	h := histogram.New()
	g := control.New()

	diag.Info("READY", fmt.Sprintf("tailing %s (lenient=%v)", logPath, lenient))

	setupSignalHandling(g)

	g.Workers.Add(2)
	go runProducer(reader, notifier, r, g, lenient)
	go runConsumer(r, v, h, g)

	monitorDone := make(chan struct{})
	go runMonitor(g, monitorDone)

	g.Workers.Wait()
	close(monitorDone)

	reportFinal(v, h)

	if err := g.Fatal.Err(); err != nil {
		diag.Error("FATAL", err)
		return 1
	}
	diag.Info("DONE", "clean shutdown")
	return 0
}

func buildValidator(ledgerPath string) (validator.Validator, func(), error) {
	if ledgerPath == "" {
		return validator.NewStub(), func() {}, nil
	}
	ledger, err := validator.OpenLedger(ledgerPath)
	if err != nil {
		return nil, nil, fmt.Errorf("main: open ledger: %w", err)
	}
	sv, err := validator.NewStubWithLedger(ledger)
	if err != nil {
		ledger.Close()
		return nil, nil, fmt.Errorf("main: build validator: %w", err)
	}
	return sv, func() {
		sv.Flush()
		ledger.Close()
	}, nil
}

// runProducer reads framed records off the mapped file and pushes them
// onto the ring, consulting the tail notifier whenever it catches up to
// the writer (spec §4.2, §4.3, §5).
//
// Payload bytes returned by ReadNext alias the current mmap view. They
// are copied into a freshly allocated Event before being handed to the
// ring, because a later RemapIfGrown unmaps that view out from under any
// slice still referencing it — the consumer may not have processed an
// item yet when the producer remaps (spec §9, "Mapped-file lifetime
// across growth").
func runProducer(reader *logreader.Reader, notifier tailnotify.Notifier, r *ring.Ring[frame.Event], g *control.Group, lenient bool) {
	defer g.Workers.Done()

	var produced uint64
	for {
		if g.Shutdown.IsSet() {
			return
		}

		ev, ok, err := reader.ReadNext()
		if err != nil {
			var crcErr *frame.CRCMismatchError
			if lenient && errors.As(err, &crcErr) {
				diag.Error("PRODUCER_CRC_SKIP", err)
				if serr := reader.SkipBadRecord(); serr != nil {
					g.Fail(fmt.Errorf("producer: %w", serr))
					return
				}
				continue
			}
			g.Fail(fmt.Errorf("producer: %w", err))
			return
		}

		if !ok {
			grew, rerr := reader.RemapIfGrown()
			if rerr != nil {
				g.Fail(fmt.Errorf("producer: remap: %w", rerr))
				return
			}
			if grew {
				continue
			}
			if _, werr := notifier.Wait(waitTimeout); werr != nil {
				g.Fail(fmt.Errorf("producer: wait: %w", werr))
				return
			}
			continue
		}

		owned := ev
		owned.Payload = append([]byte(nil), ev.Payload...)
		for !r.TryPush(&owned) {
			if g.Shutdown.IsSet() {
				return
			}
			runtime.Gosched()
		}
		produced++
		g.ProducerCount.Store(produced)
	}
}

// runConsumer drains the ring, feeding each event to the validator and
// timing the call for the latency histogram. It keeps draining after the
// shutdown flag is raised and exits only once the ring is also empty,
// so no buffered event is lost on a clean shutdown (spec §5).
func runConsumer(r *ring.Ring[frame.Event], v validator.Validator, h *histogram.Histogram, g *control.Group) {
	defer g.Workers.Done()

	var consumed uint64
	for {
		item, ok := r.TryPop()
		if !ok {
			if g.Shutdown.IsSet() {
				return
			}
			runtime.Gosched()
			continue
		}

		start := time.Now()
		if err := v.ProcessEvent(*item); err != nil {
			g.Fail(fmt.Errorf("consumer: %w", err))
			return
		}
		h.Record(uint64(time.Since(start).Nanoseconds()))

		consumed++
		g.ConsumerCount.Store(consumed)
		if consumed%histogramEvery == 0 {
			logHistogramSummary(h)
			h.Reset()
		}
	}
}

// runMonitor reports cumulative and interval event counts on a fixed
// period until done is closed, which run does once both workers have
// joined. It reads the workers' counters but never synchronizes with the
// workers directly.
func runMonitor(g *control.Group, done <-chan struct{}) {
	ticker := time.NewTicker(monitorInterval)
	defer ticker.Stop()

	var lastConsumed uint64
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			current := g.ConsumerCount.Load()
			diag.Timestamped("MONITOR", fmt.Sprintf("consumed_total=%d consumed_interval=%d produced_total=%d",
				current, current-lastConsumed, g.ProducerCount.Load()))
			lastConsumed = current
		}
	}
}

func logHistogramSummary(h *histogram.Histogram) {
	s := h.Snapshot()
	diag.Info("LATENCY_US", fmt.Sprintf("count=%d min=%.2f mean=%.2f p50=%.2f p90=%.2f p99=%.2f p999=%.2f max=%.2f",
		s.Count, s.MinUs, s.MeanUs, s.P50Us, s.P90Us, s.P99Us, s.P999Us, s.MaxUs))
}

func reportFinal(v validator.Validator, h *histogram.Histogram) {
	logHistogramSummary(h)
	report, err := v.Summary().Report()
	if err != nil {
		diag.Error("SUMMARY_REPORT", err)
		return
	}
	diag.Info("SUMMARY", string(report))
}

// setupSignalHandling requests a clean shutdown on SIGINT/SIGTERM by
// raising the shared shutdown flag, the same control-group coordination
// point the producer and consumer already poll — no os.Exit call here,
// unlike the teacher's handler, because the exit code now depends on
// whether either worker also recorded a fatal error.
func setupSignalHandling(g *control.Group) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		diag.Info("SIGNAL", "received interrupt, shutting down")
		g.Fail(nil)
	}()
}
