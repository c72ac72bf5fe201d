package uploads

import (
	"context"
	"fmt"

	"dmadmin/internal/documents"
	"dmadmin/pkg/types"

	"golang.org/x/sync/errgroup"
)

// SaveFunc stores an accepted upload and returns the storage path used.
type SaveFunc func(ctx context.Context, upload *types.Upload) (string, error)

// Job is one file field of a multi-file form.
type Job struct {
	Upload *types.Upload
	Rule   documents.Rule
	Save   SaveFunc
}

// Outcome is the result of a single Job. Err is a *types.ValidationError
// when the upload was rejected and any other error when saving failed.
type Outcome struct {
	Field string
	Path  string
	Err   error
}

func (o Outcome) OK() bool {
	return o.Err == nil
}

// Process validates and saves every job concurrently. Jobs never affect one
// another: a rejected or failed upload is reported in its own Outcome and
// the rest still run. Outcomes are returned in job order.
func Process(ctx context.Context, jobs []Job) []Outcome {
	outcomes := make([]Outcome, len(jobs))

	// Jobs report failures in their Outcome and never return an error, so
	// the group context is only cancelled when ctx is.
	g, gctx := errgroup.WithContext(ctx)
	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				outcomes[i] = Outcome{Field: job.Upload.Field, Err: err}
				return nil
			}
			outcomes[i] = run(gctx, job)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func run(ctx context.Context, job Job) Outcome {
	out := Outcome{Field: job.Upload.Field}

	ok, err := job.Rule.Check(job.Upload.Body)
	if err != nil {
		out.Err = fmt.Errorf("failed to inspect %s upload: %w", job.Upload.Field, err)
		return out
	}
	if !ok {
		out.Err = types.NewValidationError(job.Upload.Field, job.Rule.Code)
		return out
	}

	out.Path, out.Err = job.Save(ctx, job.Upload)
	return out
}
