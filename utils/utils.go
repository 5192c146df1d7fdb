package utils

import (
	"fmt"
	"net"
	"reflect"
	"time"
)

func Pointer[T any](v T) *T {
	return &v
}

// DurationS converts a seconds setting to a time.Duration.
func DurationS(seconds int64) time.Duration {
	return time.Duration(seconds) * time.Second
}

func DefaultIfZero[T any](v T, fallback T) T {
	if reflect.ValueOf(v).IsZero() {
		return fallback
	}
	return v
}

func Must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// ListenAddrToURL returns a URL clients can dial for a listen address.
// Wildcard hosts resolve to the loopback address.
func ListenAddrToURL(https bool, listen string) string {
	scheme := "http"
	if https {
		scheme = "https"
	}

	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return fmt.Sprintf("%s://%s", scheme, listen)
	}

	if host == "" || host == "0.0.0.0" {
		host = "127.0.0.1"
	}

	return fmt.Sprintf("%s://%s:%s", scheme, host, port)
}
