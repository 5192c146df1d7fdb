package eventsvc

var (
	VERSION = "dev"
	COMMIT  = "unknown"
)
