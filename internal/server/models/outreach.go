package models

// GeneratedEmail is an unpersisted preview awaiting approval.
type GeneratedEmail struct {
	CustomerID        int64
	ToEmail           string
	Subject           string
	Body              string
	IsCompliant       bool
	ComplianceSummary string
}

// SendResult is the outcome of one preview within a batch.
type SendResult struct {
	CustomerID int64
	EmailLogID int64
	OK         bool
	Error      string
}

type BatchResult struct {
	Attempted int
	Sent      int
	Failed    int
	Results   []SendResult
}
