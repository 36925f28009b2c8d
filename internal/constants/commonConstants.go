package constants

import "time"

type (
	APIStatus   string
	CachePrefix string
)

const (
	APIStatusOk    APIStatus = "ok"
	APIStatusError APIStatus = "error"

	CachePrefixFeedLogbook CachePrefix = "OGN_LOGBOOK_"
)

const (
	// CrewFileName is reserved in every day directory; all other *.json files are flights.
	CrewFileName = "affectations.json"

	// UpdatesRetention is how long an applied edit stays in the updates journal.
	UpdatesRetention = 5 * time.Minute

	// DefaultMaxRequestsPerClient caps concurrent requests from one address.
	DefaultMaxRequestsPerClient = 10

	DefaultSyncInterval = 300 * time.Second
	DefaultPort         = 7878
	DefaultFeedBaseURL  = "http://flightbook.glidernet.org/api"
)
