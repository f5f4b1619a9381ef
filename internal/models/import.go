package models

// ImportRequest names the two files of one import run.
type ImportRequest struct {
	MainFile    string `json:"main_file"`
	SupportFile string `json:"support_file"`
	DryRun      bool   `json:"dry_run"`
}

// ImportSummary reports the outcome of a successful import run.
type ImportSummary struct {
	Accidents       int      `json:"accidents"`
	InvolvedPersons int      `json:"involved_persons"`
	DuplicateKeys   []string `json:"duplicate_keys,omitempty"`
	DryRun          bool     `json:"dry_run"`
}
