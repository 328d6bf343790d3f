package ratings

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/reed-hollis/photoshelfbackend/workers"
)

// FileRatingWriter writes an agreed rating into a photo file. For RAW files
// the implementation targets the XMP sidecar, never the RAW file itself.
type FileRatingWriter interface {
	WriteRating(ctx context.Context, filePath string, rating int) error
}

// ApplyFailure records one write that could not be completed during a batch
// apply. Failures are returned to the caller, never thrown, and never abort
// sibling jobs.
type ApplyFailure struct {
	File   string `json:"file"`
	Op     string `json:"op"`
	Reason string `json:"reason"`
}

// ApplySummary reports the outcome of one batch apply.
type ApplySummary struct {
	BatchID     string         `json:"batch_id"`
	DBUpdates   int            `json:"db_updates"`
	FileUpdates int            `json:"file_updates"`
	Failures    []ApplyFailure `json:"failures"`
}

// Applier executes the job lists produced by Aggregate against the rating
// store and the metadata writer for one collection.
type Applier struct {
	Store  RecordStore
	Writer FileRatingWriter
	Pool   *workers.WritebackPool
}

// Apply aligns every rating source for the collection in one batch.
// hasConflicts is the caller's precomputed gate; the snapshots are
// re-checked here as well so a stale caller can never force a partial
// apply. Ordering guarantee: ResetOverruleFlags runs strictly after every
// queued job has settled, and exactly once.
func (a *Applier) Apply(ctx context.Context, snaps []Snapshot, hasConflicts bool) ApplySummary {
	summary := ApplySummary{BatchID: uuid.NewString(), Failures: []ApplyFailure{}}

	if hasConflicts || HasConflicts(snaps) {
		log.Printf("apply: refusing batch %s, collection still has unresolved conflicts", summary.BatchID)
		return summary
	}

	lists := Aggregate(snaps)
	log.Printf("apply: batch %s queued %d job(s) (store=%d jpg=%d raw=%d)",
		summary.BatchID, lists.Total(), len(lists.StoreAuthoritative), len(lists.JpgAuthoritative), len(lists.RawAuthoritative))

	byIdentity := make(map[string]Snapshot, len(snaps))
	for _, s := range snaps {
		byIdentity[s.Identity] = s
	}

	// store-authoritative photos fan out as file write-backs, one job per
	// JPG or RAW target that is missing the rating or carries a stale one
	var fileJobs []workers.WritebackJob
	for _, job := range lists.StoreAuthoritative {
		s := byIdentity[job.Identity]
		if s.JpgPath != "" && (Normalize(s.Jpg) == nil || *Normalize(s.Jpg) != job.Rating) {
			fileJobs = append(fileJobs, workers.WritebackJob{
				Identity: job.Identity, FilePath: s.JpgPath, Target: "jpg", Rating: job.Rating,
			})
		}
		if s.RawPath != "" && (Normalize(s.Raw) == nil || *Normalize(s.Raw) != job.Rating) {
			fileJobs = append(fileJobs, workers.WritebackJob{
				Identity: job.Identity, FilePath: s.RawPath, Target: "raw", Rating: job.Rating,
			})
		}
	}

	results := a.Pool.Run(ctx, fileJobs, func(ctx context.Context, j workers.WritebackJob) error {
		return a.Writer.WriteRating(ctx, j.FilePath, j.Rating)
	})
	for _, res := range results {
		if res.Err != nil {
			summary.Failures = append(summary.Failures, ApplyFailure{
				File: res.Job.FilePath, Op: "write_" + res.Job.Target, Reason: res.Err.Error(),
			})
			continue
		}
		summary.FileUpdates++
	}

	// embedded-authoritative photos write back into the rating store; the
	// record is created (or refreshed) with the overrule flag down
	overruleOff := false
	storeWrite := func(job Job, op string) {
		rating := job.Rating
		if err := a.Store.Upsert(job.Identity, &rating, &overruleOff); err != nil {
			log.Printf("apply: ERROR upserting %s rating for %s: %v", op, job.Identity, err)
			summary.Failures = append(summary.Failures, ApplyFailure{
				File: job.Identity, Op: op, Reason: err.Error(),
			})
			return
		}
		summary.DBUpdates++
	}
	for _, job := range lists.JpgAuthoritative {
		storeWrite(job, "db_upsert_jpg")
	}
	for _, job := range lists.RawAuthoritative {
		storeWrite(job, "db_upsert_raw")
	}

	// every job has settled; clear the overrule flags so future divergence
	// is detected fresh
	if err := a.Store.ResetOverruleFlags(); err != nil {
		log.Printf("apply: ERROR resetting overrule flags for batch %s: %v", summary.BatchID, err)
		summary.Failures = append(summary.Failures, ApplyFailure{
			Op: "reset_overrule_flags", Reason: err.Error(),
		})
	}

	log.Printf("apply: batch %s done (db=%d files=%d failures=%d)",
		summary.BatchID, summary.DBUpdates, summary.FileUpdates, len(summary.Failures))
	return summary
}
