package uploading

type Outcome string

const OutcomeSucceeded Outcome = "succeeded"
const OutcomeFellBackToLegacy Outcome = "fell_back_to_legacy"
const OutcomeFailed Outcome = "failed"

// OutcomeCancelled marks entries that never started because cancellation was
// observed first. It is not a failure: callers use it to decide whether to
// roll back records created before the upload.
const OutcomeCancelled Outcome = "cancelled"

// TransferResult is the terminal state of one plan entry. Key is the storage
// key the bytes actually landed under (primary or legacy), or the primary
// key for entries that never landed.
type TransferResult struct {
	LogicalId string
	Key       string
	Outcome   Outcome
	Error     error
}

type BatchResult struct {
	Results []TransferResult
}

type BatchSummary struct {
	Total     int
	Succeeded int
	FellBack  int
	Failed    int
	Cancelled int
}

func (r *BatchResult) Summary() BatchSummary {
	s := BatchSummary{Total: len(r.Results)}
	for _, res := range r.Results {
		switch res.Outcome {
		case OutcomeSucceeded:
			s.Succeeded++
		case OutcomeFellBackToLegacy:
			s.FellBack++
		case OutcomeFailed:
			s.Failed++
		case OutcomeCancelled:
			s.Cancelled++
		}
	}
	return s
}
