package report

// Report is the JSON record written next to a reduced image.
type Report struct {
	Version     int        `json:"version"`
	GeneratedAt string     `json:"generated_at"`
	Profile     string     `json:"profile"`
	Source      SourceInfo `json:"source"`
	Output      OutputInfo `json:"output"`
	Stats       Stats      `json:"stats"`
}

// SourceInfo holds metadata about the original image.
type SourceInfo struct {
	Name     string `json:"name"`
	MIMEType string `json:"mime_type"`
	Format   string `json:"format"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Size     int64  `json:"size"`
}

// OutputInfo describes the encoded payload that was saved.
type OutputInfo struct {
	Path      string `json:"path"` // relative to the report's directory
	Format    string `json:"format"`
	MIMEType  string `json:"mime_type"`
	Quality   int    `json:"quality"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Size      int64  `json:"size"`   // bytes on disk
	Digest    string `json:"digest"` // 16 hex chars of xxhash64
	Flattened bool   `json:"flattened,omitempty"`
	Preview   string `json:"preview,omitempty"`
	SessionID string `json:"session_id"`
	RequestID string `json:"request_id"`
}

// Stats compares output against source.
type Stats struct {
	ReductionPercent int     `json:"reduction_percent"` // may be negative
	Ratio            float64 `json:"ratio"`             // output / source
	ElapsedMS        int64   `json:"elapsed_ms"`
}

// SupportedReportVersion is the current schema version.
const SupportedReportVersion = 1
