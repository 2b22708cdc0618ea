package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

func TestRun_PreservesSubmissionOrder(t *testing.T) {
	paths := make([]string, 50)
	for i := range paths {
		paths[i] = fmt.Sprintf("file-%02d", i)
	}

	results := Run(context.Background(), 8, paths, func(_ context.Context, p string) (string, error) {
		// Los primeros tardan más para desordenar la finalización
		var n int
		fmt.Sscanf(p, "file-%d", &n)
		time.Sleep(time.Duration(50-n) * 100 * time.Microsecond)
		return "done:" + p, nil
	})

	if len(results) != len(paths) {
		t.Fatalf("Expected %d results, got %d", len(paths), len(results))
	}
	for i, res := range results {
		if res.Index != i {
			t.Errorf("Result %d has index %d", i, res.Index)
		}
		if res.Path != paths[i] {
			t.Errorf("Result %d paired with path %s, want %s", i, res.Path, paths[i])
		}
		if res.Value != "done:"+paths[i] {
			t.Errorf("Result %d has value %s", i, res.Value)
		}
	}
}

func TestRun_ErrorsStayWithTheirTask(t *testing.T) {
	paths := []string{"ok-1", "bad", "ok-2"}
	boom := errors.New("boom")

	results := Run(context.Background(), 2, paths, func(_ context.Context, p string) (int, error) {
		if p == "bad" {
			return 0, boom
		}
		return len(p), nil
	})

	if results[0].Err != nil || results[2].Err != nil {
		t.Errorf("Unexpected errors: %v, %v", results[0].Err, results[2].Err)
	}
	if !errors.Is(results[1].Err, boom) {
		t.Errorf("Expected boom for 'bad', got %v", results[1].Err)
	}
}

func TestRun_BoundedWorkers(t *testing.T) {
	paths := make([]string, 40)
	for i := range paths {
		paths[i] = fmt.Sprint(i)
	}

	var active, peak atomic.Int64
	Run(context.Background(), 3, paths, func(_ context.Context, _ string) (struct{}, error) {
		n := active.Add(1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		active.Add(-1)
		return struct{}{}, nil
	})

	if peak.Load() > 3 {
		t.Errorf("Expected at most 3 concurrent tasks, saw %d", peak.Load())
	}
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int64
	results := Run(ctx, 2, []string{"a", "b"}, func(_ context.Context, _ string) (int, error) {
		calls.Add(1)
		return 1, nil
	})

	if calls.Load() != 0 {
		t.Errorf("Expected no task to run, got %d", calls.Load())
	}
	for _, res := range results {
		if !errors.Is(res.Err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", res.Err)
		}
	}
}

func TestRun_Empty(t *testing.T) {
	results := Run(context.Background(), 4, nil, func(_ context.Context, _ string) (int, error) {
		return 0, nil
	})
	if len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
}

func TestProgress_Snapshot(t *testing.T) {
	var nilProgress *Progress
	if nilProgress.Snapshot() != (Snapshot{}) {
		t.Error("Expected zero snapshot for nil Progress")
	}

	p := &Progress{}
	p.FilesDiscovered.Add(3)
	p.FullHashed.Add(2)
	p.Errors.Add(1)

	s := p.Snapshot()
	if s.FilesDiscovered != 3 || s.FullHashed != 2 || s.Errors != 1 {
		t.Errorf("Unexpected snapshot: %+v", s)
	}
}
