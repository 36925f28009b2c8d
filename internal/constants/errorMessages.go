package constants

const (
	MsgTooManyRequests   = "Too many requests from this client"
	MsgUnknownAirfield   = "Airfield is not configured"
	MsgInvalidDateRange  = "Invalid date range"
	MsgArchiveDisabled   = "Flight archive is disabled"
	MsgFlightLogFetched  = "Flight log fetched"
	MsgUpdatesFetched    = "Recent updates fetched"
	MsgUpdateApplied     = "Update applied"
	MsgUpdateIgnored     = "Update ignored"
	MsgInfosFetched      = "Airfield lists fetched"
	MsgGliderStatsLoaded = "Glider statistics fetched"
)
