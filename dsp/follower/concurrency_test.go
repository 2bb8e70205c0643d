package follower

import (
	"sync"
	"testing"
)

// TestConcurrentParameterPublish hammers the setter surface from several
// goroutines while the processing goroutine runs, exercising the lock-free
// hand-off under the race detector.
func TestConcurrentParameterPublish(t *testing.T) {
	f := New()
	if err := f.Prepare(48000, 256); err != nil {
		t.Fatal(err)
	}

	block := make([]float64, 256)
	for i := range block {
		block[i] = 0.25
	}

	var wg sync.WaitGroup

	stop := make(chan struct{})

	wg.Add(1)

	go func() {
		defer wg.Done()

		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}

			_ = f.SetGain(1.0 + float64(i%10)*0.1)
			_ = f.SetOutputRange(0, float64(60+i%67))
			_ = f.SetLowpassCutoff(float64(1000 + i%10000))
			_ = f.SetHighpassCutoff(float64(i % 200))
			_ = f.SetRecoveryTime(0.01 + float64(i%100)*0.001)
		}
	}()

	wg.Add(1)

	go func() {
		defer wg.Done()

		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}

			_ = f.CurrentValue()
		}
	}()

	for i := 0; i < 2000; i++ {
		if err := f.ProcessBuffer([][]float64{block}); err != nil {
			t.Fatalf("ProcessBuffer() error = %v", err)
		}
	}

	close(stop)
	wg.Wait()

	// Final value must still be inside the widest range any publisher used.
	if v := f.CurrentValue(); v < 0 || v > 127 {
		t.Errorf("CurrentValue() = %d, want within [0, 127]", v)
	}
}
