// Package datetime formats and parses the date-time strings used across
// scripts and reports, in both western and Chinese-character styles.
package datetime

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"

	"github.com/datazip-inc/dskit/types"
)

// ErrParse is returned when none of the known formats match the input
var ErrParse = errors.New("unable to parse date string")

type Lang string

const (
	EN Lang = "en"
	CN Lang = "cn"
	ZH Lang = "zh"
)

const (
	enDateTime = "2006-01-02 15:04:05"
	enDate     = "2006-01-02"
	cnDateTime = "2006年01月02日 15时04分05秒"
	cnDate     = "2006年01月02日"
)

// builtin layouts, tried in order. Numeric fields are unpadded so both
// "2022-02-06" and "2022-2-6" match.
var layouts = []string{
	"2006-1-2 15:4:5",
	"2006/1/2 15:4:5",
	"2006-1-2",
	"2006/1/2",
	"15:4:5",
	"2006年1月2日 15时4分5秒",
	"2006年1月2日 15:4:5",
	"2006年1月2日",
}

func layoutFor(lang Lang, withTime bool) (string, error) {
	switch Lang(strings.ToLower(string(lang))) {
	case EN, "":
		if withTime {
			return enDateTime, nil
		}
		return enDate, nil
	case CN, ZH:
		if withTime {
			return cnDateTime, nil
		}
		return cnDate, nil
	default:
		return "", types.Preconditionf("unsupported language[%s]", lang)
	}
}

// FormatDateTime renders t as "2022-02-06 18:46:27" (en) or
// "2022年02月06日 18时46分27秒" (cn, zh).
func FormatDateTime(t time.Time, lang Lang) (string, error) {
	layout, err := layoutFor(lang, true)
	if err != nil {
		return "", err
	}
	return t.Format(layout), nil
}

// FormatDate renders only the date part of t.
func FormatDate(t time.Time, lang Lang) (string, error) {
	layout, err := layoutFor(lang, false)
	if err != nil {
		return "", err
	}
	return t.Format(layout), nil
}

// Parse converts s into a time in the local time zone. customFormat, when
// not empty, is a strftime format (e.g. "%d.%m.%Y") tried before the
// builtin layouts. Time-only input is placed on 1900-01-01.
func Parse(s string, customFormat string) (time.Time, error) {
	if customFormat != "" {
		if t, err := strftime.Parse(customFormat, s); err == nil {
			return normalize(inLocal(t)), nil
		}
	}

	for _, layout := range layouts {
		t, err := time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			return normalize(t), nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrParse, s)
}

// inLocal keeps the wall clock of t but places it in the local zone, the
// zone the builtin layouts parse into.
func inLocal(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.Local)
}

func normalize(t time.Time) time.Time {
	if t.Year() == 0 {
		return time.Date(1900, time.January, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	}
	return t
}

// Truncate drops the clock part of t, returning midnight of the same day
func Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
