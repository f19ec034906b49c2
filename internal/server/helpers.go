package server

import (
	"math"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
)

func newRequestID() string {
	return uuid.NewString()
}

// clientIP keys on the connection peer only; forwarding headers are client controlled.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func retryAfterSeconds(every time.Duration) int {
	secs := int(math.Ceil(every.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}
