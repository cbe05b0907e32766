package metrics

const namespaceWatcher = "icq_watcher"

const (
	subsystemEngine    = "engine"
	subsystemRest      = "rest"
	subsystemSubsystem = "subsystem"
)
