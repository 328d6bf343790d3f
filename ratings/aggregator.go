package ratings

// Job is one pending write of an agreed rating for a photo identity.
type Job struct {
	Identity string `json:"identity"`
	Rating   int    `json:"rating"`
}

// JobLists partitions a collection's pending write-backs by which source is
// authoritative for each photo. Store-authoritative jobs flow out into file
// metadata; jpg-/raw-authoritative jobs flow into the rating store.
type JobLists struct {
	StoreAuthoritative []Job `json:"store_authoritative"`
	JpgAuthoritative   []Job `json:"jpg_authoritative"`
	RawAuthoritative   []Job `json:"raw_authoritative"`
}

// Empty reports whether no jobs were produced
func (jl JobLists) Empty() bool {
	return len(jl.StoreAuthoritative) == 0 && len(jl.JpgAuthoritative) == 0 && len(jl.RawAuthoritative) == 0
}

// Total returns the number of queued jobs across all three lists
func (jl JobLists) Total() int {
	return len(jl.StoreAuthoritative) + len(jl.JpgAuthoritative) + len(jl.RawAuthoritative)
}

// Aggregate decides, per photo, which single source is authoritative and
// queues the write-backs needed to bring the other sources into agreement.
// Hard gate: if any photo in the collection still classifies as a conflict,
// the result is deterministically empty — partial application across a
// collection with known disagreements is never allowed.
//
// Authority, in priority order:
//  1. overrule set and stored rating present → store
//  2. stored rating present and at least one embedded source absent → store
//  3. only the JPG rating present → jpg (write-back into the store)
//  4. only the RAW rating present → raw (write-back into the store)
//  5. nothing rated → no job
//
// Pure function: performs no I/O; execution belongs to the Applier.
func Aggregate(snaps []Snapshot) JobLists {
	if HasConflicts(snaps) {
		return JobLists{}
	}

	var out JobLists
	for _, s := range snaps {
		stored := Normalize(s.Stored)
		jpg := Normalize(s.Jpg)
		raw := Normalize(s.Raw)

		switch {
		case stored != nil && s.Overrule:
			out.StoreAuthoritative = append(out.StoreAuthoritative, Job{Identity: s.Identity, Rating: *stored})
		case stored != nil && (jpg == nil || raw == nil):
			out.StoreAuthoritative = append(out.StoreAuthoritative, Job{Identity: s.Identity, Rating: *stored})
		case jpg != nil && stored == nil && raw == nil:
			out.JpgAuthoritative = append(out.JpgAuthoritative, Job{Identity: s.Identity, Rating: *jpg})
		case raw != nil && stored == nil && jpg == nil:
			out.RawAuthoritative = append(out.RawAuthoritative, Job{Identity: s.Identity, Rating: *raw})
		}
	}
	return out
}
