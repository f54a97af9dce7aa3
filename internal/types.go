package internal

// TechnologyColumns is the fixed column order of the Technology Stack sheet.
var TechnologyColumns = []string{
	"Category",
	"Subcategory",
	"Live Count",
	"Dead Count",
	"Latest Timestamp",
	"Oldest Timestamp",
	"Latest_Time",
	"Oldest_Time",
}

// TechnologyRecord is one normalized technology row.
type TechnologyRecord struct {
	Category        string `json:"category" yaml:"category"`
	Subcategory     string `json:"subcategory" yaml:"subcategory"`
	LiveCount       int    `json:"liveCount" yaml:"liveCount"`
	DeadCount       int    `json:"deadCount" yaml:"deadCount"`
	LatestTimestamp string `json:"latestTimestamp" yaml:"latestTimestamp"`
	OldestTimestamp string `json:"oldestTimestamp" yaml:"oldestTimestamp"`
	LatestTime      string `json:"latestTime" yaml:"latestTime"`
	OldestTime      string `json:"oldestTime" yaml:"oldestTime"`
}

// Values returns the cell values in TechnologyColumns order.
func (r TechnologyRecord) Values() []any {
	return []any{
		r.Category,
		r.Subcategory,
		r.LiveCount,
		r.DeadCount,
		r.LatestTimestamp,
		r.OldestTimestamp,
		r.LatestTime,
		r.OldestTime,
	}
}

type ProfileSource string

const (
	SourceAPI  ProfileSource = "api"
	SourceFile ProfileSource = "file"
)

type RunStatus string

const (
	RunOK     RunStatus = "ok"
	RunFailed RunStatus = "failed"
)

// RunRecord is one row of the run history.
type RunRecord struct {
	ID         string        `json:"id" yaml:"id"`
	Command    string        `json:"command" yaml:"command"`
	Domain     string        `json:"domain,omitempty" yaml:"domain,omitempty"`
	Source     ProfileSource `json:"source" yaml:"source"`
	Model      string        `json:"model,omitempty" yaml:"model,omitempty"`
	Records    int           `json:"records" yaml:"records"`
	Analysis   bool          `json:"analysis" yaml:"analysis"`
	Output     string        `json:"output,omitempty" yaml:"output,omitempty"`
	Status     RunStatus     `json:"status" yaml:"status"`
	Error      string        `json:"error,omitempty" yaml:"error,omitempty"`
	StartedAt  string        `json:"startedAt" yaml:"startedAt"`
	DurationMs int64         `json:"durationMs" yaml:"durationMs"`
}
