package output

// Run status values carried in the JSON summary.
const (
	StatusCompleted   = "completed"
	StatusBuildFailed = "build_failed"
)

// Per-file status values.
const (
	FileSuccess = "success"
	FileFailure = "failure"
)

// FileResult records the outcome of regenerating one fixture.
type FileResult struct {
	Input         string `json:"input"`
	Artifact      string `json:"artifact,omitempty"`
	Status        string `json:"status"`
	Error         string `json:"error,omitempty"`
	ExecutionTime int64  `json:"execution_time"` // milliseconds
}

// Summary is the machine-readable result of a whole regeneration run.
// The same payload is printed with --json and sent to the completion webhook.
type Summary struct {
	Status        string       `json:"status"`
	Success       int          `json:"success"`
	Failed        int          `json:"failed"`
	Files         []FileResult `json:"files"`
	ExecutionTime int64        `json:"execution_time"` // milliseconds

	// Side-channel status (only in local output, not sent to the webhook)
	UploadErrors []string `json:"upload_errors,omitempty"`
	WebhookSent  bool     `json:"webhook_sent,omitempty"`
	WebhookError string   `json:"webhook_error,omitempty"`
}

// ExitCode maps the summary onto the process exit status: 0 only for a
// completed run with zero failures.
func (s *Summary) ExitCode() int {
	if s.Status == StatusCompleted && s.Failed == 0 {
		return 0
	}
	return 1
}

// Artifacts returns the paths of all artifacts written during the run.
func (s *Summary) Artifacts() []string {
	var paths []string
	for _, f := range s.Files {
		if f.Status == FileSuccess && f.Artifact != "" {
			paths = append(paths, f.Artifact)
		}
	}
	return paths
}
