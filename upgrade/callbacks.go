package upgrade

import "time"

// Phase represents the current stage of an upgrade session.
type Phase string

// Phase constants reported to progress callbacks.
const (
	// PhaseEntering indicates the module is being switched into bootloader mode
	PhaseEntering Phase = "entering"

	// PhaseSynchronizing indicates the bootloader handshake is in progress
	PhaseSynchronizing Phase = "synchronizing"

	// PhaseErasing indicates flash sectors are being erased
	PhaseErasing Phase = "erasing"

	// PhaseWriting indicates firmware data is being written and verified
	PhaseWriting Phase = "writing"

	// PhaseRebooting indicates the module is being returned to its firmware
	PhaseRebooting Phase = "rebooting"

	// PhaseComplete indicates every record was processed successfully
	PhaseComplete Phase = "complete"
)

// Progress is a snapshot of session progress passed to ProgressCallback.
// The UWF stream is consumed lazily, so no total is known in advance;
// consumers display counters rather than percentages.
type Progress struct {
	// Phase describes the current stage
	Phase Phase

	// Records is the number of records pulled from the file so far
	Records int

	// BytesWritten is the firmware data delivered so far
	BytesWritten int

	// Elapsed is the time since the session started
	Elapsed time.Duration
}

// ProgressCallback is invoked as the session advances. Implementations
// should return quickly; the serial exchange blocks while they run.
type ProgressCallback func(Progress)
