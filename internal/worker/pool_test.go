package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type countingJob struct {
	counter *atomic.Int64
}

type countingResult struct {
	err error
}

func (r *countingResult) GetError() error { return r.err }

func (j *countingJob) Execute(ctx context.Context) Result {
	j.counter.Add(1)
	return &countingResult{}
}

func TestPool_ExecutesAllJobs(t *testing.T) {
	pool := NewPool(4)
	pool.Start()

	var counter atomic.Int64
	for i := 0; i < 20; i++ {
		pool.Submit(&countingJob{counter: &counter})
	}

	results := pool.Wait()

	if counter.Load() != 20 {
		t.Errorf("Expected 20 executions, got %d", counter.Load())
	}
	if len(results) != 20 {
		t.Errorf("Expected 20 results, got %d", len(results))
	}
}

func TestPool_ZeroWorkersDefaultsToOne(t *testing.T) {
	pool := NewPool(0)
	pool.Start()

	var counter atomic.Int64
	pool.Submit(&countingJob{counter: &counter})

	results := pool.Wait()
	if len(results) != 1 {
		t.Errorf("Expected 1 result, got %d", len(results))
	}
}

func TestLimiter_AllowRespectsBurst(t *testing.T) {
	limiter := NewLimiter(0.001, 2) // effectively no refill during the test

	if !limiter.Allow("openai") {
		t.Error("First request should be allowed")
	}
	if !limiter.Allow("openai") {
		t.Error("Second request should be allowed (burst 2)")
	}
	if limiter.Allow("openai") {
		t.Error("Third request should be throttled")
	}

	// A different key has its own budget.
	if !limiter.Allow("anthropic") {
		t.Error("Different key should have an independent budget")
	}
}

func TestLimiter_WaitHonorsContextCancellation(t *testing.T) {
	limiter := NewLimiter(0.001, 1)
	_ = limiter.Allow("ollama") // drain the burst

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := limiter.Wait(ctx, "ollama")
	if err == nil {
		t.Error("Expected an error when the context ends before clearance")
	}
	if time.Since(start) > time.Second {
		t.Error("Wait should return promptly after context cancellation")
	}
}
