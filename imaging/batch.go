package imaging

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Job is one image to render to a target pixel box.
type Job struct {
	Filename string
	Data     []byte
	TargetW  int
	TargetH  int
}

// Result pairs a job with its outcome. Err is typically a *otdoc.DecodeError
// the caller logs and skips.
type Result struct {
	Job      Job
	Rendered *Rendered
	Err      error
}

// RenderAll renders a batch of images on at most workers goroutines,
// bounding the memory cost of bursts of large attachments. Results keep
// job order. Individual decode failures land in their Result; only context
// cancellation aborts the batch.
func RenderAll(ctx context.Context, jobs []Job, workers int) ([]Result, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]Result, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, job := range jobs {
		i, job := i, job
		results[i].Job = job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i].Rendered, results[i].Err = Render(job.Filename, job.Data, job.TargetW, job.TargetH)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
