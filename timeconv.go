package duckvec

import (
	"time"
)

// Temporal columns are stored as integer offsets from the Unix epoch: DATE
// as days, TIME as microseconds since midnight, and the TIMESTAMP family as
// seconds, milliseconds, microseconds or nanoseconds. All conversions are
// UTC; the engine carries no zone information.

const (
	microsPerSecond = 1_000_000
	secondsPerDay   = 24 * 60 * 60
)

// TimeFromDate converts a days-since-epoch date cell to a Go time.Time at
// midnight UTC.
func TimeFromDate(days int32) time.Time {
	return time.Unix(int64(days)*secondsPerDay, 0).UTC()
}

// DateFromTime converts a Go time.Time to a days-since-epoch date cell.
// Times before midnight UTC of the epoch round toward the earlier day.
func DateFromTime(t time.Time) int32 {
	sec := t.UTC().Unix()
	days := sec / secondsPerDay
	if sec < 0 && sec%secondsPerDay != 0 {
		days--
	}
	return int32(days)
}

// TimeFromMicros converts a micros-since-epoch timestamp cell to a Go
// time.Time in UTC.
func TimeFromMicros(micros int64) time.Time {
	return time.Unix(micros/microsPerSecond, (micros%microsPerSecond)*1000).UTC()
}

// MicrosFromTime converts a Go time.Time to a micros-since-epoch timestamp
// cell. Sub-microsecond precision is truncated.
func MicrosFromTime(t time.Time) int64 {
	t = t.UTC()
	return t.Unix()*microsPerSecond + int64(t.Nanosecond())/1000
}

// TimeFromSeconds converts a seconds-since-epoch timestamp cell.
func TimeFromSeconds(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

// TimeFromMillis converts a millis-since-epoch timestamp cell.
func TimeFromMillis(millis int64) time.Time {
	return time.Unix(millis/1000, (millis%1000)*1_000_000).UTC()
}

// TimeFromNanos converts a nanos-since-epoch timestamp cell.
func TimeFromNanos(nanos int64) time.Time {
	return time.Unix(0, nanos).UTC()
}

// DurationFromTimeCell converts a micros-since-midnight TIME cell to a Go
// time.Duration.
func DurationFromTimeCell(micros int64) time.Duration {
	return time.Duration(micros) * time.Microsecond
}

// timestampToTime dispatches on the timestamp kind's unit.
func timestampToTime(kind Kind, raw int64) time.Time {
	switch kind {
	case KindTimestampS:
		return TimeFromSeconds(raw)
	case KindTimestampMS:
		return TimeFromMillis(raw)
	case KindTimestampNS:
		return TimeFromNanos(raw)
	default:
		// TIMESTAMP and TIMESTAMP_TZ both store microseconds.
		return TimeFromMicros(raw)
	}
}
