package sharpe

import (
	"math"
	"runtime"
	"sync"
)

// BatchCalculateSharpeRatios calculates Sharpe ratios for multiple symbols.
//
// The risk-free rate is validated once up front; an invalid rate fails the
// entire batch immediately. Per-symbol calculation failures do not abort the
// batch: a symbol whose series fails with a recognized calculation error is
// recorded as (NaN, partial=true) so one bad series cannot prevent the others
// from producing results. Every input symbol appears in the output map.
//
// Symbols are processed by a worker pool; since each computation is pure and
// independent, parallelism does not change observable semantics and results
// are keyed by symbol regardless of completion order.
func BatchCalculateSharpeRatios(priceData map[string][]float64, p Params) (map[string]Result, error) {
	if err := ValidateRiskFreeRate(p.RiskFreeRate); err != nil {
		return nil, err
	}

	results := make(map[string]Result, len(priceData))
	if len(priceData) == 0 {
		return results, nil
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > len(priceData) {
		numWorkers = len(priceData)
	}

	jobs := make(chan batchJob, len(priceData))
	out := make(chan batchResult, len(priceData))

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			batchWorker(jobs, out, p)
		}()
	}

	for symbol, prices := range priceData {
		jobs <- batchJob{symbol: symbol, prices: prices}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(out)
	}()

	for r := range out {
		results[r.symbol] = r.result
	}

	return results, nil
}

type batchJob struct {
	symbol string
	prices []float64
}

type batchResult struct {
	symbol string
	result Result
}

// batchWorker processes batch jobs, converting per-symbol failures into
// (NaN, true) placeholders.
func batchWorker(jobs <-chan batchJob, out chan<- batchResult, p Params) {
	for job := range jobs {
		result, err := CalculateSharpeRatio(job.prices, p)
		if err != nil {
			result = Result{Ratio: math.NaN(), Partial: true}
		}
		out <- batchResult{symbol: job.symbol, result: result}
	}
}
