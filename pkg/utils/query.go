package utils

import (
	"net/url"
	"strconv"
)

// QueryInt reads a positive integer query parameter, returning fallback
// when key is absent, malformed or below 1.
func QueryInt(q url.Values, key string, fallback int) int {
	n, err := strconv.Atoi(q.Get(key))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
