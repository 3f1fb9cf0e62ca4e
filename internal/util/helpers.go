package util

import (
	"time"
)

// ISOTimestamp formats fractional epoch seconds as an ISO-8601 (RFC 3339) string in UTC.
func ISOTimestamp(epoch float64) string {
	sec := int64(epoch)
	nsec := int64((epoch - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec).UTC().Format(time.RFC3339)
}
