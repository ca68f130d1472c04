package placeholders

import (
	"strconv"
	"time"
)

func resolveUnixTimestamp(now func() time.Time) PlaceholderResolver {
	return func() (string, error) {
		return strconv.FormatInt(now().UTC().Unix(), 10), nil
	}
}

func resolveISO8601Timestamp(now func() time.Time) PlaceholderResolver {
	return func() (string, error) {
		return now().UTC().Format(time.RFC3339), nil
	}
}
