package constants

// RecordStatus classifies an extracted record by how many fields were recovered.
type RecordStatus string

const (
	RecordFull    RecordStatus = "FULL"    // every field recovered
	RecordPartial RecordStatus = "PARTIAL" // at least one field missing
)

// RunStatus is the outcome label used in logs and metrics for one document run.
type RunStatus string

const (
	RunOK         RunStatus = "ok"
	RunEmpty      RunStatus = "empty"      // no notices found
	RunMisaligned RunStatus = "misaligned" // name/segment counts diverged
	RunFailed     RunStatus = "failed"     // document text or context failure
)
