package worker

import "time"

// DefaultJobTimeout bounds a job when the pool is built without one
const DefaultJobTimeout = 2 * time.Minute

// Log messages
const (
	LogMsgWorkerJobFailed  = "Worker job failed"
	LogMsgWorkerJobPanic   = "Worker job panicked"
	LogMsgWorkerJobDone    = "Worker job finished"
	LogMsgQueueFull        = "Worker queue full, job dropped"
	LogMsgPoolStopped      = "Worker pool stopped"
	LogMsgPoolStopTimedOut = "Worker pool stop timed out"
)

// Test pool configuration values used in pool_test.go
const (
	TestWorkerCount = 2
	TestQueueSize   = 10
)
