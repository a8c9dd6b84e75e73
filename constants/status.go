package constants

// JobStatus is the canonical status for batch jobs in the job store.
type JobStatus string

// Stable values (store these exact strings).
const (
	JobStatusQueued     JobStatus = "QUEUED"     // accepted, not yet started
	JobStatusProcessing JobStatus = "PROCESSING" // workers running
	JobStatusCompleted  JobStatus = "COMPLETED"  // all files processed
	JobStatusFailed     JobStatus = "FAILED"     // terminal failure before completion
)

// DocState tracks a single document through the processing pipeline.
type DocState string

const (
	DocStateUnclassified DocState = "UNCLASSIFIED"
	DocStateClassified   DocState = "CLASSIFIED"
	DocStateExtracted    DocState = "EXTRACTED"
	DocStateValidated    DocState = "VALIDATED"
	DocStateAccepted     DocState = "ACCEPTED"
	DocStateRejected     DocState = "REJECTED"
)
