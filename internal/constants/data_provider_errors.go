package constants

// Feed error codes
const (
	ErrCodeNetworkError      = "NETWORK_ERROR"
	ErrCodeRateLimited       = "RATE_LIMITED"
	ErrCodeAirfieldNotFound  = "AIRFIELD_NOT_FOUND"
	ErrCodeUpstreamError     = "UPSTREAM_ERROR"
	ErrCodeInvalidDataFormat = "INVALID_DATA_FORMAT"
)

var DataProviderErrorMessages = map[string]string{
	ErrCodeNetworkError:      "Unable to reach the OGN flightbook",
	ErrCodeRateLimited:       "The OGN flightbook is rate limiting requests",
	ErrCodeAirfieldNotFound:  "The OGN flightbook does not know this airfield",
	ErrCodeUpstreamError:     "The OGN flightbook returned an error",
	ErrCodeInvalidDataFormat: "The OGN flightbook returned an unreadable logbook",
}

// GetErrorMessage returns the human-readable message for an error code
func GetErrorMessage(code string) string {
	if msg, exists := DataProviderErrorMessages[code]; exists {
		return msg
	}
	return "An unknown error occurred"
}
