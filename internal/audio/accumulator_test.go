package audio

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

var epoch = time.Unix(1700000000, 0)

func newTestAccumulator() *Accumulator {
	acc := NewAccumulator(AccumulatorConfig{
		SampleRate:     16000,
		WordsPerSecond: 2.5,
		VAD:            &VADConfig{EnergyThreshold: 0.015, SilenceFrames: 10, FrameSize: 320},
	})
	acc.Reset(epoch)
	return acc
}

func TestAccumulator_IngestUpdatesCounters(t *testing.T) {
	acc := newTestAccumulator()

	snap := acc.Ingest(Batch{Samples: constantFrame(8000, 0.2), ArrivedAt: epoch.Add(700 * time.Millisecond)})

	if snap.Samples != 8000 {
		t.Errorf("Expected 8000 samples, got %d", snap.Samples)
	}
	if snap.Duration != 500*time.Millisecond {
		t.Errorf("Expected 500ms accumulated, got %v", snap.Duration)
	}
	if snap.SinceBoundary != 700*time.Millisecond {
		t.Errorf("Expected 700ms since boundary, got %v", snap.SinceBoundary)
	}
	// 0.5s of voiced audio at 2.5 words/s
	if snap.EstimatedWords != 1 {
		t.Errorf("Expected 1 estimated word, got %d", snap.EstimatedWords)
	}
}

func TestAccumulator_SilenceEstimatesNoWords(t *testing.T) {
	acc := newTestAccumulator()

	snap := acc.Ingest(Batch{Samples: constantFrame(32000, 0.0005), ArrivedAt: epoch})
	if snap.EstimatedWords != 0 {
		t.Errorf("Expected 0 words for silence, got %d", snap.EstimatedWords)
	}
}

func TestAccumulator_DrainResets(t *testing.T) {
	acc := newTestAccumulator()
	acc.Ingest(Batch{Samples: []float32{0.1, 0.2, 0.3}, ArrivedAt: epoch})

	cut := epoch.Add(time.Second)
	d, ok := acc.Drain(cut)
	if !ok {
		t.Fatal("Expected drain to succeed")
	}
	if len(d.Samples) != 3 || d.Samples[2] != 0.3 {
		t.Errorf("Expected drained samples [0.1 0.2 0.3], got %v", d.Samples)
	}
	if !d.CutAt.Equal(cut) {
		t.Errorf("Expected CutAt %v, got %v", cut, d.CutAt)
	}

	snap := acc.Snapshot(cut)
	if snap.Samples != 0 || snap.Duration != 0 || snap.SinceBoundary != 0 {
		t.Errorf("Expected counters reset after drain, got %+v", snap)
	}
	if !snap.LastBoundary.Equal(cut) {
		t.Errorf("Expected boundary clock restarted at %v, got %v", cut, snap.LastBoundary)
	}
}

func TestAccumulator_DrainEmptyIsNoop(t *testing.T) {
	acc := newTestAccumulator()

	if _, ok := acc.Drain(epoch.Add(5 * time.Second)); ok {
		t.Error("Expected drain of empty accumulator to report false")
	}
	if snap := acc.Snapshot(epoch); !snap.LastBoundary.Equal(epoch) {
		t.Error("Expected empty drain to leave the boundary clock alone")
	}
}

func TestAccumulator_DrainIfRespectsDecision(t *testing.T) {
	acc := newTestAccumulator()
	acc.Ingest(Batch{Samples: constantFrame(100, 0.1), ArrivedAt: epoch})

	if _, ok := acc.DrainIf(epoch, func(Snapshot) bool { return false }); ok {
		t.Error("Expected DrainIf to keep samples when decide returns false")
	}
	if snap := acc.Snapshot(epoch); snap.Samples != 100 {
		t.Errorf("Expected 100 samples retained, got %d", snap.Samples)
	}

	d, ok := acc.DrainIf(epoch, func(s Snapshot) bool { return s.Samples >= 100 })
	if !ok || len(d.Samples) != 100 {
		t.Errorf("Expected 100 samples drained, got ok=%v len=%d", ok, len(d.Samples))
	}
}

func TestAccumulator_DiscardAndReset(t *testing.T) {
	acc := newTestAccumulator()
	acc.Ingest(Batch{Samples: constantFrame(640, 0.1), ArrivedAt: epoch})

	if n := acc.Discard(); n != 640 {
		t.Errorf("Expected 640 discarded, got %d", n)
	}

	acc.Ingest(Batch{Samples: constantFrame(10, 0.1), ArrivedAt: epoch})
	later := epoch.Add(time.Minute)
	if n := acc.Reset(later); n != 10 {
		t.Errorf("Expected Reset to report 10 discarded, got %d", n)
	}
	if snap := acc.Snapshot(later); snap.SinceBoundary != 0 {
		t.Errorf("Expected boundary clock restarted, got %v since boundary", snap.SinceBoundary)
	}
}

// Every ingested sample must come out of exactly one drain, even with
// concurrent policy cuts and early triggers racing each other.
func TestAccumulator_ConcurrentDrainsNoLossNoDuplication(t *testing.T) {
	acc := newTestAccumulator()

	const (
		producers = 4
		batches   = 500
		batchSize = 160
	)

	var drained atomic.Int64
	seen := make([]atomic.Int32, producers*batches*batchSize)

	record := func(d Drained) {
		for _, s := range d.Samples {
			idx := int(s)
			seen[idx].Add(1)
		}
		drained.Add(int64(len(d.Samples)))
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})

	// Racing drainers: a threshold cut and an unconditional early trigger
	var drainers sync.WaitGroup
	for i := 0; i < 3; i++ {
		drainers.Add(1)
		go func(i int) {
			defer drainers.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				var d Drained
				var ok bool
				if i%2 == 0 {
					d, ok = acc.DrainIf(time.Now(), func(s Snapshot) bool { return s.Samples >= 800 })
				} else {
					d, ok = acc.Drain(time.Now())
				}
				if ok {
					record(d)
				}
			}
		}(i)
	}

	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for b := 0; b < batches; b++ {
				batch := make([]float32, batchSize)
				base := (p*batches + b) * batchSize
				for i := range batch {
					// Sample values double as unique indices
					batch[i] = float32(base + i)
				}
				acc.Ingest(Batch{Samples: batch, ArrivedAt: time.Now()})
			}
		}(p)
	}

	wg.Wait()
	close(stop)
	drainers.Wait()

	if d, ok := acc.Drain(time.Now()); ok {
		record(d)
	}

	total := int64(producers * batches * batchSize)
	if drained.Load() != total {
		t.Fatalf("Expected %d samples drained, got %d", total, drained.Load())
	}
	for i := range seen {
		if n := seen[i].Load(); n != 1 {
			t.Fatalf("Sample %d drained %d times", i, n)
		}
	}
}
