package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	markclip "github.com/alnah/go-markclip"
	"github.com/alnah/go-markclip/internal/fileutil"
)

// Pool abstracts converter pool operations for testability.
type Pool interface {
	Acquire() (*markclip.Converter, error)
	Release(*markclip.Converter)
	Size() int
}

// Compile-time interface implementation check.
var _ Pool = (*markclip.ConverterPool)(nil)

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath   string
	OutputPath  string
	PreviewPath string
	Images      int
	Err         error
	Duration    time.Duration
}

// batchError reports failed conversions. It unwraps to the first failure
// so the exit code reflects its kind.
type batchError struct {
	failed int
	total  int
	first  error
}

func (e *batchError) Error() string {
	return fmt.Sprintf("%d of %d conversion(s) failed", e.failed, e.total)
}

func (e *batchError) Unwrap() error { return e.first }

// convertBatch processes files concurrently using the converter pool.
// A failed file does not stop its siblings.
func convertBatch(ctx context.Context, pool Pool, files []FileToConvert, params *conversionParams) []ConversionResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := min(pool.Size(), len(files))

	results := make([]ConversionResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()

			conv, err := pool.Acquire()
			if err != nil {
				// Converter creation failed, mark this worker's jobs as failed
				for idx := range jobs {
					results[idx] = ConversionResult{InputPath: files[idx].InputPath, Err: err}
				}
				return
			}
			defer pool.Release(conv)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = ConversionResult{InputPath: files[idx].InputPath, Err: ctx.Err()}
					continue
				}
				results[idx] = convertFile(ctx, conv, files[idx], params)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// convertFile parses, converts and delivers a single file.
func convertFile(ctx context.Context, conv *markclip.Converter, f FileToConvert, params *conversionParams) ConversionResult {
	start := time.Now()
	result := ConversionResult{InputPath: f.InputPath}
	fail := func(err error) ConversionResult {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	content, err := os.ReadFile(f.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		return fail(fmt.Errorf("%w: %w", ErrReadHTML, err))
	}

	pageURL := params.pageURL
	if pageURL == "" {
		pageURL = fileURL(f.InputPath)
	}
	article, err := conv.Parse(ctx, markclip.ParseRequest{
		Document:      string(content),
		URL:           pageURL,
		Selection:     params.selection,
		SelectionOnly: params.selection != "",
	})
	if err != nil {
		return fail(err)
	}

	res, err := conv.Convert(ctx, article, params.opts)
	if err != nil {
		return fail(err)
	}

	location, err := conv.Deliver(ctx, conv.NewFileDeliverer(f.OutputDir), article, res, params.opts)
	if err != nil {
		return fail(err)
	}
	result.OutputPath = location
	result.Images = len(res.Images)

	if params.previewer != nil {
		page, err := params.previewer.Render(ctx, res.Markdown)
		if err != nil {
			return fail(err)
		}
		previewPath := strings.TrimSuffix(location, ".md") + ".html"
		if err := fileutil.WriteFile(previewPath, []byte(page)); err != nil {
			return fail(fmt.Errorf("%w: %w", ErrWriteOutput, err))
		}
		result.PreviewPath = previewPath
	}

	result.Duration = time.Since(start)
	return result
}

// ResultSummary holds the count of succeeded and failed conversions.
type ResultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed conversions.
func countResults(results []ConversionResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// printResults outputs conversion results and returns a *batchError when
// any conversion failed.
func printResults(results []ConversionResult, quiet, verbose bool, env *Environment) error {
	summary := countResults(results)

	var first error
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			if first == nil {
				first = r.Err
			}
			continue
		}

		if quiet {
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%d images, %v)\n", r.InputPath, r.OutputPath, r.Images, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
		if r.PreviewPath != "" {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.PreviewPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	if summary.Failed > 0 {
		return &batchError{failed: summary.Failed, total: len(results), first: first}
	}
	return nil
}
