package iex

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Result is the outcome of fetching one symbol in a batch.
type Result struct {
	Symbol string
	Quote  *Quote
	Err    error
}

// job is one symbol to fetch, remembered by its position in the batch.
type job struct {
	index  int
	symbol string
}

type indexedResult struct {
	index  int
	result Result
}

// workerPool fetches quotes concurrently. Every worker issues its own
// requests, so each fetch still owns a dedicated connection.
type workerPool struct {
	workers int
	jobs    chan job
	results chan indexedResult
	wg      sync.WaitGroup
}

// newWorkerPool creates a pool with the given number of workers.
// The jobs channel is buffered at workers*2 to allow some pipelining.
func newWorkerPool(workers int) *workerPool {
	if workers <= 0 {
		workers = 1
	}
	return &workerPool{
		workers: workers,
		jobs:    make(chan job, workers*2),
		results: make(chan indexedResult, workers*2),
	}
}

func (p *workerPool) start(ctx context.Context, c *Client) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, c)
	}
}

func (p *workerPool) worker(ctx context.Context, c *Client) {
	defer p.wg.Done()

	for j := range p.jobs {
		p.results <- indexedResult{index: j.index, result: p.fetch(ctx, c, j)}
	}
}

func (p *workerPool) fetch(ctx context.Context, c *Client, j job) (res Result) {
	res.Symbol = j.symbol

	// Recover from panics so one bad job does not crash the pool.
	defer func() {
		if r := recover(); r != nil {
			slog.Error("quote worker recovered from panic",
				"symbol", j.symbol,
				"panic", fmt.Sprintf("%v", r),
			)
			res.Quote = nil
			res.Err = fmt.Errorf("iex: quote %s: panic: %v", j.symbol, r)
		}
	}()

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	q, err := c.Price(ctx, j.symbol)
	if err != nil {
		slog.Debug("quote fetch failed", "symbol", j.symbol, "error", err)
		res.Err = err
		return res
	}
	res.Quote = q
	return res
}

func (p *workerPool) submit(j job) {
	p.jobs <- j
}

// close signals that no more jobs will be submitted, then waits for all
// workers to finish and closes the results channel.
func (p *workerPool) close() {
	close(p.jobs)
	p.wg.Wait()
	close(p.results)
}

// Prices fetches the latest price of every symbol using up to workers
// concurrent requests. Results are returned in the order of symbols; a
// failure for one symbol is recorded in its Result and does not stop the
// others.
func (c *Client) Prices(ctx context.Context, symbols []string, workers int) []Result {
	out := make([]Result, len(symbols))
	if len(symbols) == 0 {
		return out
	}
	if workers > len(symbols) {
		workers = len(symbols)
	}

	pool := newWorkerPool(workers)
	pool.start(ctx, c)

	go func() {
		for i, s := range symbols {
			pool.submit(job{index: i, symbol: s})
		}
		pool.close()
	}()

	for r := range pool.results {
		out[r.index] = r.result
	}
	return out
}
