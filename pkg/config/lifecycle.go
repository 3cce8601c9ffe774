package config

// DeletionConfig holds the account deletion sweep configuration
type DeletionConfig struct {
	// CronSchedule is the robfig/cron expression of the nightly sweep.
	CronSchedule   string `env:"DELETION_CRON_SCHEDULE" env-default:"0 2 * * *"`
	ReportTo       string `env:"DELETION_REPORT_TO" env-default:""`
	AnonymousNames string `env:"ANONYMOUS_NAME_PREFIX" env-default:"Ratsuchende_r"`
}

// AssignmentConfig holds the bulk agency assignment configuration
type AssignmentConfig struct {
	Workers  int    `env:"ASSIGNMENT_WORKERS" env-default:"4"`
	ReportTo string `env:"ASSIGNMENT_REPORT_TO" env-default:""`
}
