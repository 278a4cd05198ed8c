package report

import (
	"context"
	"sync"

	"github.com/KaramelBytes/ecoreport/internal/patient"
	"golang.org/x/sync/errgroup"
)

// BatchItem is the outcome for one input of a batch.
type BatchItem struct {
	Path   string
	Result *Result
	Output string
	Err    error
}

// BatchOptions configures RunBatch.
type BatchOptions struct {
	// Workers bounds the number of documents processed at once.
	Workers int
	// Tipo forces the study type of every document; empty detects it.
	Tipo patient.Type
	// Writer, when set, writes each successful result.
	Writer *Writer
	// OnDone is called once per document as it finishes; calls are serialized.
	OnDone func(done, total int, item BatchItem)
}

// RunBatch processes every path independently. A failing document is
// recorded in its item and does not stop the others; only cancellation of
// ctx aborts the batch. Items are returned in input order.
func (p *Processor) RunBatch(ctx context.Context, paths []string, opt BatchOptions) ([]BatchItem, error) {
	items := make([]BatchItem, len(paths))
	for i, path := range paths {
		items[i].Path = path
	}
	workers := opt.Workers
	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var mu sync.Mutex
	done := 0
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			item := BatchItem{Path: path}
			item.Result, item.Err = p.Process(gctx, path, opt.Tipo)
			if item.Err == nil && opt.Writer != nil {
				item.Output, item.Err = opt.Writer.Write(item.Result)
			}
			if item.Err != nil {
				p.logger.Warn("document failed", "file", path, "err", item.Err)
			}
			items[i] = item
			if opt.OnDone != nil {
				mu.Lock()
				done++
				opt.OnDone(done, len(paths), item)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return items, err
	}
	return items, nil
}

// Failed counts the items that ended in error.
func Failed(items []BatchItem) int {
	n := 0
	for _, it := range items {
		if it.Err != nil {
			n++
		}
	}
	return n
}
