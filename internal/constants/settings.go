package constants

const (
	SettingTimezone   = "timezone"
	SettingCutoffTime = "cutoff_time"

	DefaultTimezone   = "Local" // Use system local timezone by default
	DefaultCutoffTime = "23:59"
)
