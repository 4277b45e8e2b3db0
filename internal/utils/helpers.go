// Package utils provides utility functions used throughout the application.
package utils

import (
	"net"
	"net/http"
	"regexp"
	"strings"
)

// GetRequestIP gets the client IP address from the request
func GetRequestIP(r *http.Request) string {
	ip := r.Header.Get("X-Forwarded-For")
	if ip == "" {
		ip = r.RemoteAddr
	}

	if strings.Contains(ip, ",") {
		ip = strings.TrimSpace(strings.Split(ip, ",")[0])
	}

	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}

	return ip
}

// ExactMatchPattern builds a case-insensitive anchored regex that matches s literally.
// Query values are escaped so they cannot inject regex syntax into database filters.
func ExactMatchPattern(s string) string {
	return "^" + regexp.QuoteMeta(s) + "$"
}

// ContainsPattern builds an unanchored regex that matches s literally.
func ContainsPattern(s string) string {
	return regexp.QuoteMeta(s)
}
