package scanner

import (
	"context"
	"sync"
	"time"
)

// WorkerConfig holds options for the worker pool.
type WorkerConfig struct {
	Threads   int
	Throttler *Throttler
}

// RunWorkerPool fans out work items across workers and returns a channel
// of results. Results arrive in completion order; ScanResult.Index carries
// the item's position. The channel is closed when all items have been
// processed or ctx is cancelled.
func RunWorkerPool(
	ctx context.Context,
	req *Requester,
	items []WorkItem,
	cfg WorkerConfig,
) <-chan ScanResult {
	threads := cfg.Threads
	if threads < 1 {
		threads = 1
	}
	itemsCh := make(chan WorkItem, threads*2)
	resultsCh := make(chan ScanResult, threads*2)

	var wg sync.WaitGroup

	// Producer: feed items into channel.
	go func() {
		defer close(itemsCh)
		for _, item := range items {
			select {
			case itemsCh <- item:
			case <-ctx.Done():
				return
			}
		}
	}()

	send := func(r ScanResult) bool {
		select {
		case resultsCh <- r:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for i := 0; i < threads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range itemsCh {
				delay := cfg.Throttler.Delay()
				if delay > 0 {
					select {
					case <-time.After(delay):
					case <-ctx.Done():
						return
					}
				}

				resp, err := req.Do(ctx, item.Request)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					cfg.Throttler.RecordError()
					if !send(ScanResult{Index: item.Index, Error: err}) {
						return
					}
					continue
				}

				cfg.Throttler.RecordStatus(resp.StatusCode)
				if !send(ScanResult{Index: item.Index, Response: resp}) {
					return
				}
			}
		}()
	}

	// Closer: when all workers finish, close the results channel.
	go func() {
		wg.Wait()
		close(resultsCh)
	}()

	return resultsCh
}
