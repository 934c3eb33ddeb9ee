package constants

// Advisory lock ids shared by every process pointed at the same database.
const (
	MigrationLock = iota + 7100
)

// Document keys used by every storage driver.
const (
	QueueKey    = "queue"
	HistoryKey  = "history"
	ServersKey  = "servers"
	SettingsKey = "settings"
)

var DocumentKeys = []string{
	QueueKey,
	HistoryKey,
	ServersKey,
	SettingsKey,
}

const (
	// DefaultRetryInterval is applied when a queue item is added without one.
	DefaultRetryInterval = 30

	// MaxJournalEntries bounds the in-memory log list served to the operator.
	MaxJournalEntries = 1000
)
