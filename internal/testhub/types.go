package testhub

// Project is a test hub project.
type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Owner       string `json:"owner,omitempty"`
}

// TestAsset is an executable test belonging to a project.
type TestAsset struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ExternalType string `json:"external_type,omitempty"`
	Path         string `json:"path,omitempty"`
	Revision     string `json:"revision,omitempty"`
	LastModified int64  `json:"last_modified,omitempty"`
}

// Execution is a launched test run.
type Execution struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	ResultID string `json:"resultId,omitempty"`
}

// Result is a finished (or in-progress) test result.
type Result struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	Verdict   string `json:"verdict,omitempty"`
	StartDate int64  `json:"startDate,omitempty"`
	Duration  int64  `json:"duration,omitempty"`
}

// Artifact is a file attached to a result (screenshots, logs, report data).
type Artifact struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Size int64  `json:"size,omitempty"`
}

// PerformanceSummary is the optional aggregate timing data of a result.
type PerformanceSummary struct {
	TotalRequests  int     `json:"totalRequests"`
	FailedRequests int     `json:"failedRequests"`
	AverageMillis  float64 `json:"averageMillis"`
}

// ResultDetail aggregates a result with its optional enrichments. Each
// enrichment is fetched independently; a Has* flag is false when the fetch
// failed or the hub has nothing to report, and one failure never aborts the
// others.
type ResultDetail struct {
	Result Result

	Artifacts    []Artifact
	HasArtifacts bool

	Performance    PerformanceSummary
	HasPerformance bool
}

// page is the hub's paged-list envelope.
type page[T any] struct {
	Content       []T `json:"content"`
	TotalElements int `json:"totalElements"`
}
