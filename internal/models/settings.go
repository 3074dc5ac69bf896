package models

// Settings represents application-wide settings
type Settings struct {
	Timezone   string `json:"timezone"`    // IANA timezone name (e.g. "America/New_York", or "Local" for system timezone)
	CutoffTime string `json:"cutoff_time"` // displayed end-of-day cutoff, "HH:MM"
}
