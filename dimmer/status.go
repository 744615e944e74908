package dimmer

// Status is a snapshot of the dimmer for display and the web API.
type Status struct {
	Level       string `json:"level"`
	Nominal     string `json:"nominal"`
	Power       bool   `json:"power"`
	Ramping     bool   `json:"ramping"`
	Step        int    `json:"step"`
	Steps       int    `json:"steps"`
	Progress    int    `json:"progress"`
	LastOutcome string `json:"lastOutcome,omitempty"`
}
