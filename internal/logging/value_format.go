package logging

import (
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// plainValue renders v without quoting; used for the line header.
func plainValue(v slog.Value) string {
	v = v.Resolve()
	if v.Kind() == slog.KindTime {
		return v.Time().In(time.Local).Format(logTimestampLayout)
	}
	return v.String()
}

// fieldValue renders v for an indented field line, quoting values that
// would otherwise read ambiguously.
func fieldValue(v slog.Value) string {
	s := plainValue(v)
	if s == "" || strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '"' || r == '=' }) {
		return strconv.Quote(s)
	}
	return s
}
