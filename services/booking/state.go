package booking

// State is a step of the commit pipeline.
type State string

const (
	StateReceived   State = "received"
	StateVerifying  State = "verifying"
	StateReserving  State = "reserving"
	StatePersisting State = "persisting"
	StateRecording  State = "recording"
	StateCommitted  State = "committed"

	// StateRejected ends a commit that changed nothing.
	StateRejected State = "rejected"
	// StateRolledBack ends a commit whose reservations were released again.
	StateRolledBack State = "rolled_back"
)
