package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/veritas/internal/common"
	"github.com/ternarybob/veritas/internal/models"
)

type fakeRefresher struct {
	fn func(ctx context.Context, ticker string) error
}

func (f *fakeRefresher) Refresh(ctx context.Context, ticker string) error {
	if f.fn == nil {
		return nil
	}
	return f.fn(ctx, ticker)
}

// fakeStatusStore is an in-memory TickerStatusStorage with fault injection.
type fakeStatusStore struct {
	mu       sync.Mutex
	statuses map[string]*models.TickerStatus
	failGet  bool
}

func newFakeStatusStore() *fakeStatusStore {
	return &fakeStatusStore{statuses: make(map[string]*models.TickerStatus)}
}

func (s *fakeStatusStore) SaveStatus(ctx context.Context, status *models.TickerStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[status.Ticker] = status
	return nil
}

func (s *fakeStatusStore) GetStatus(ctx context.Context, ticker string) (*models.TickerStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGet {
		return nil, fmt.Errorf("store unavailable")
	}
	status, ok := s.statuses[ticker]
	if !ok {
		return nil, fmt.Errorf("ticker status not found: %s", ticker)
	}
	return status, nil
}

func (s *fakeStatusStore) GetActiveTickers(ctx context.Context) ([]*models.TickerStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var active []*models.TickerStatus
	for _, status := range s.statuses {
		if status.Active {
			active = append(active, status)
		}
	}
	return active, nil
}

func (s *fakeStatusStore) GetAllStatuses(ctx context.Context) ([]*models.TickerStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []*models.TickerStatus
	for _, status := range s.statuses {
		all = append(all, status)
	}
	return all, nil
}

func (s *fakeStatusStore) DeleteStatus(ctx context.Context, ticker string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.statuses, ticker)
	return nil
}

func newTestService(news, financials *fakeRefresher, store *fakeStatusStore) *Service {
	config := &common.OrchestratorConfig{
		Concurrency: 3,
		BatchDelay:  0,
		MaxAgeHours: 24,
		MaxTickers:  50,
	}
	return NewService(news, financials, nil, nil, store, config, arbor.NewLogger())
}

func TestUpdateTickerBothSucceed(t *testing.T) {
	store := newFakeStatusStore()
	svc := newTestService(&fakeRefresher{}, &fakeRefresher{}, store)

	result := svc.UpdateTicker(context.Background(), "aapl")

	if !result.Success {
		t.Error("Expected success when both sub-tasks succeed")
	}
	if !result.NewsUpdated || !result.FinancialsUpdated {
		t.Errorf("Expected both sub-tasks updated, got news=%v financials=%v",
			result.NewsUpdated, result.FinancialsUpdated)
	}
	if result.Error != "" {
		t.Errorf("Expected no error, got %q", result.Error)
	}
	if result.Ticker != "AAPL" {
		t.Errorf("Expected normalized ticker AAPL, got %s", result.Ticker)
	}

	status, err := store.GetStatus(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Expected ticker status recorded: %v", err)
	}
	if !status.LastSuccess {
		t.Error("Expected recorded status to show success")
	}
}

func TestUpdateTickerOneSubTaskFails(t *testing.T) {
	news := &fakeRefresher{}
	financials := &fakeRefresher{fn: func(ctx context.Context, ticker string) error {
		return fmt.Errorf("quote fetch failed")
	}}
	svc := newTestService(news, financials, newFakeStatusStore())

	result := svc.UpdateTicker(context.Background(), "MSFT")

	if !result.Success {
		t.Error("Expected success when one sub-task succeeds")
	}
	if !result.NewsUpdated {
		t.Error("Expected news marked updated")
	}
	if result.FinancialsUpdated {
		t.Error("Expected financials marked failed")
	}
	if result.Error != "Financials: quote fetch failed" {
		t.Errorf("Expected only the failing sub-task's message, got %q", result.Error)
	}
	if strings.Contains(result.Error, "News:") {
		t.Errorf("Error must not mention the succeeding sub-task: %q", result.Error)
	}
}

func TestUpdateTickerBothFail(t *testing.T) {
	news := &fakeRefresher{fn: func(ctx context.Context, ticker string) error {
		return fmt.Errorf("feed down")
	}}
	financials := &fakeRefresher{fn: func(ctx context.Context, ticker string) error {
		return fmt.Errorf("quote down")
	}}
	svc := newTestService(news, financials, newFakeStatusStore())

	result := svc.UpdateTicker(context.Background(), "MSFT")

	if result.Success {
		t.Error("Expected failure when both sub-tasks fail")
	}
	expected := "News: feed down; Financials: quote down"
	if result.Error != expected {
		t.Errorf("Expected %q, got %q", expected, result.Error)
	}
}

func TestUpdateTickerSubTaskPanic(t *testing.T) {
	news := &fakeRefresher{fn: func(ctx context.Context, ticker string) error {
		panic("nil sentiment")
	}}
	svc := newTestService(news, &fakeRefresher{}, newFakeStatusStore())

	result := svc.UpdateTicker(context.Background(), "TSLA")

	if !result.Success {
		t.Error("Expected success from the surviving sub-task")
	}
	if !strings.Contains(result.Error, "News: panic: nil sentiment") {
		t.Errorf("Expected panic captured as sub-task error, got %q", result.Error)
	}
}

func TestUpdateBatchEmpty(t *testing.T) {
	svc := newTestService(&fakeRefresher{}, &fakeRefresher{}, newFakeStatusStore())

	batch := svc.UpdateBatch(context.Background(), nil)

	if batch.TotalProcessed != 0 || batch.SuccessCount != 0 || batch.ErrorCount != 0 {
		t.Errorf("Expected zero counts, got total=%d success=%d errors=%d",
			batch.TotalProcessed, batch.SuccessCount, batch.ErrorCount)
	}
	if len(batch.Results) != 0 {
		t.Errorf("Expected empty results, got %d", len(batch.Results))
	}
}

func TestUpdateBatchIsolatesFailure(t *testing.T) {
	fail := func(ctx context.Context, ticker string) error {
		if ticker == "T2" {
			panic("exploded")
		}
		return nil
	}
	news := &fakeRefresher{fn: fail}
	financials := &fakeRefresher{fn: fail}
	svc := newTestService(news, financials, newFakeStatusStore())

	batch := svc.UpdateBatch(context.Background(), []string{"T1", "T2", "T3"})

	if batch.TotalProcessed != 3 {
		t.Errorf("Expected 3 processed, got %d", batch.TotalProcessed)
	}
	if batch.SuccessCount != 2 {
		t.Errorf("Expected 2 successes, got %d", batch.SuccessCount)
	}
	if batch.ErrorCount != 1 {
		t.Errorf("Expected 1 error, got %d", batch.ErrorCount)
	}
	if batch.SuccessCount+batch.ErrorCount != batch.TotalProcessed {
		t.Error("Counts must sum to total processed")
	}

	// Input order preserved
	for i, want := range []string{"T1", "T2", "T3"} {
		if batch.Results[i].Ticker != want {
			t.Errorf("Result %d: expected %s, got %s", i, want, batch.Results[i].Ticker)
		}
	}

	if batch.Results[1].Success {
		t.Error("Expected T2 to fail")
	}
	if !strings.Contains(batch.Results[1].Error, "exploded") {
		t.Errorf("Expected T2 error to carry the panic message, got %q", batch.Results[1].Error)
	}
	if !batch.Results[0].Success || !batch.Results[2].Success {
		t.Error("Expected T1 and T3 to succeed despite T2 failing")
	}
}

func TestUpdateBatchWindowConcurrency(t *testing.T) {
	var mu sync.Mutex
	var current, peak int

	track := func(ctx context.Context, ticker string) error {
		mu.Lock()
		current++
		if current > peak {
			peak = current
		}
		mu.Unlock()

		time.Sleep(10 * time.Millisecond)

		mu.Lock()
		current--
		mu.Unlock()
		return nil
	}

	// News tracks concurrency; financials is a no-op so each ticker counts once.
	news := &fakeRefresher{fn: track}
	svc := newTestService(news, &fakeRefresher{}, newFakeStatusStore())

	tickers := []string{"A", "B", "C", "D", "E", "F", "G"}
	batch := svc.UpdateBatch(context.Background(), tickers)

	if batch.SuccessCount != len(tickers) {
		t.Fatalf("Expected all to succeed, got %d/%d", batch.SuccessCount, len(tickers))
	}
	if peak > 3 {
		t.Errorf("Expected at most 3 concurrent refreshes, observed %d", peak)
	}
}

func TestShouldUpdate(t *testing.T) {
	ctx := context.Background()
	store := newFakeStatusStore()
	svc := newTestService(&fakeRefresher{}, &fakeRefresher{}, store)

	// No record yet
	if !svc.ShouldUpdate(ctx, "NEW", 0) {
		t.Error("Expected stale for unknown ticker")
	}

	// Fresh record
	store.SaveStatus(ctx, &models.TickerStatus{
		Ticker:      "FRESH",
		Active:      true,
		LastUpdated: time.Now().Add(-1 * time.Hour),
	})
	if svc.ShouldUpdate(ctx, "FRESH", 0) {
		t.Error("Expected fresh ticker to not need an update")
	}

	// Old record
	store.SaveStatus(ctx, &models.TickerStatus{
		Ticker:      "OLD",
		Active:      true,
		LastUpdated: time.Now().Add(-48 * time.Hour),
	})
	if !svc.ShouldUpdate(ctx, "OLD", 0) {
		t.Error("Expected stale for record past the age threshold")
	}

	// A per-call age window overrides the configured default
	if svc.ShouldUpdate(ctx, "OLD", 72) {
		t.Error("Expected OLD to be fresh under a widened age window")
	}

	// Store failure fails open
	store.failGet = true
	if !svc.ShouldUpdate(ctx, "FRESH", 0) {
		t.Error("Expected stale when the status lookup fails")
	}
}

func TestUpdateSmartSkipsFresh(t *testing.T) {
	ctx := context.Background()
	store := newFakeStatusStore()

	store.SaveStatus(ctx, &models.TickerStatus{
		Ticker:      "FRESH",
		Active:      true,
		LastUpdated: time.Now().Add(-1 * time.Hour),
	})
	store.SaveStatus(ctx, &models.TickerStatus{
		Ticker:      "STALE",
		Active:      true,
		LastUpdated: time.Now().Add(-72 * time.Hour),
	})
	store.SaveStatus(ctx, &models.TickerStatus{
		Ticker:      "GONE",
		Active:      false,
		LastUpdated: time.Now().Add(-72 * time.Hour),
	})

	var mu sync.Mutex
	refreshed := make(map[string]bool)
	news := &fakeRefresher{fn: func(ctx context.Context, ticker string) error {
		mu.Lock()
		refreshed[ticker] = true
		mu.Unlock()
		return nil
	}}
	svc := newTestService(news, &fakeRefresher{}, store)

	batch, err := svc.UpdateSmart(ctx, nil)
	if err != nil {
		t.Fatalf("UpdateSmart failed: %v", err)
	}

	if batch.TotalProcessed != 1 {
		t.Errorf("Expected only the stale active ticker processed, got %d", batch.TotalProcessed)
	}
	if !refreshed["STALE"] {
		t.Error("Expected STALE to be refreshed")
	}
	if refreshed["FRESH"] || refreshed["GONE"] {
		t.Errorf("Expected FRESH and inactive tickers skipped, refreshed: %v", refreshed)
	}
}
