package endpoint

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/drophub/airdrop/lib/errors"
)

// Possible address: 0x52908400098527886E0F7030069857D2E4169EE7
var addressRegexp = regexp.MustCompile("^0x[0-9a-fA-F]{40}$")

// timestampLineRegexp matches the anti-replay anchor line of a signed
// message: a `Timestamp:` or `Time:` key (case-insensitive) followed by a
// date/time value.
var timestampLineRegexp = regexp.MustCompile(
	`(?i)^\s*(timestamp|time)\s*:\s*(.+?)\s*$`)

// timestampLayouts are the layouts accepted for the timestamp value, most
// common first.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// ValidateAddress validates a wallet address.
func ValidateAddress(
	ctx context.Context,
	address string,
) (*string, error) {

	if !addressRegexp.MatchString(address) {
		return nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "address_invalid",
			"The address you provided is invalid: %s. Addresses must "+
				"match 0x followed by 40 hex digits.",
			address,
		))
	}

	return &address, nil
}

// ExtractTimestamp extracts the timestamp embedded in a signed message. The
// first line whose key matches `Timestamp` or `Time` (case-insensitive) is
// used; its value is parsed as a date.
func ExtractTimestamp(
	ctx context.Context,
	message string,
) (*time.Time, error) {

	for _, line := range strings.Split(message, "\n") {
		m := timestampLineRegexp.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		for _, layout := range timestampLayouts {
			if timestamp, err := time.Parse(layout, m[2]); err == nil {
				return &timestamp, nil
			}
		}

		return nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "timestamp_invalid",
			"The message timestamp failed to parse as a date: %s.",
			m[2],
		))
	}

	return nil, errors.Trace(errors.NewUserErrorf(nil,
		400, "timestamp_missing",
		"The message you provided does not embed a timestamp. A "+
			"`Timestamp:` line is required as anti-replay anchor.",
	))
}
