package application

import (
	"context"
	"sync"

	"ave-shopify-connector/internal/domain"
)

// DefaultFanOutConcurrency bounds how many stores a single call dispatches
// to at once.
const DefaultFanOutConcurrency = 4

// fanOut runs dispatch once per store with bounded concurrency and collects
// the per-store results keyed by store URL. A failing store never affects
// the dispatches of its siblings.
func fanOut(ctx context.Context, stores []domain.StoreCredential, concurrency int, dispatch func(context.Context, domain.StoreCredential) domain.StoreResult) *domain.FanOutReport {
	if concurrency <= 0 {
		concurrency = DefaultFanOutConcurrency
	}

	report := &domain.FanOutReport{
		Stores:  stores,
		Results: make(map[string]domain.StoreResult, len(stores)),
	}

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		sem = make(chan struct{}, concurrency)
	)
	for _, cred := range stores {
		wg.Add(1)
		sem <- struct{}{}
		go func(cred domain.StoreCredential) {
			defer wg.Done()
			defer func() { <-sem }()
			res := dispatch(ctx, cred)
			mu.Lock()
			report.Results[cred.URL] = res
			mu.Unlock()
		}(cred)
	}
	wg.Wait()
	return report
}
