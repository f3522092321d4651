package logging

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

const logTimestampLayout = "2006-01-02 15:04:05"

var levelColours = map[slog.Level]string{
	slog.LevelDebug: "\x1b[90m",
	slog.LevelInfo:  "\x1b[36m",
	slog.LevelWarn:  "\x1b[33m",
	slog.LevelError: "\x1b[31m",
}

const colourReset = "\x1b[0m"

// fieldLabels overrides the titleized key for well-known fields.
var fieldLabels = map[string]string{
	FieldEventType: "Event",
	FieldErrorHint: "Hint",
	FieldRunID:     "Run",
	"status_code":  "Status",
}

// consoleHandler writes one header line per record followed by indented
// fields:
//
//	2025-01-02 15:04:05 INFO [publisher] kena 2.5 – entry created
//	    - Status: 201
//
// The component and sutra subject attributes move into the header.
type consoleHandler struct {
	mu     *sync.Mutex
	out    io.Writer
	level  slog.Leveler
	caller bool
	colour bool
	prefix string
	attrs  []slog.Attr
}

func newConsoleHandler(out io.Writer, level slog.Leveler, caller, colour bool) *consoleHandler {
	return &consoleHandler{mu: &sync.Mutex{}, out: out, level: level, caller: caller, colour: colour}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append(make([]slog.Attr, 0, len(h.attrs)+len(attrs)), h.attrs...), h.qualify(attrs)...)
	return &next
}

// WithGroup prefixes later attribute keys with the group name.
func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func (h *consoleHandler) qualify(attrs []slog.Attr) []slog.Attr {
	if h.prefix == "" {
		return attrs
	}
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: h.prefix + a.Key, Value: a.Value}
	}
	return out
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	line := consoleLine{}
	for _, a := range h.attrs {
		line.absorb(a)
	}
	record.Attrs(func(a slog.Attr) bool {
		if h.prefix != "" {
			a.Key = h.prefix + a.Key
		}
		line.absorb(a)
		return true
	})

	when := record.Time
	if when.IsZero() {
		when = time.Now()
	}

	var b strings.Builder
	b.WriteString(when.In(time.Local).Format(logTimestampLayout))
	b.WriteByte(' ')
	b.WriteString(h.levelLabel(record.Level))
	if line.component != "" {
		b.WriteString(" [" + line.component + "]")
	}
	if subject := FormatSubject(line.upanishad, line.chapter, line.sutra); subject != "" {
		b.WriteString(" " + subject)
	}
	message := strings.TrimSpace(record.Message)
	if message == "" {
		message = "(no message)"
	}
	b.WriteString(" – " + message + "\n")

	if h.caller && record.PC != 0 {
		if frame := record.Source(); frame != nil {
			line.set("caller", slog.StringValue(filepath.Base(frame.File)+":"+strconv.Itoa(frame.Line)))
		}
	}
	for _, f := range line.fields {
		b.WriteString("    - " + fieldLabel(f.Key) + ": " + fieldValue(f.Value) + "\n")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

func (h *consoleHandler) levelLabel(level slog.Level) string {
	var label string
	switch {
	case level >= slog.LevelError:
		level, label = slog.LevelError, "ERROR"
	case level >= slog.LevelWarn:
		level, label = slog.LevelWarn, "WARN"
	case level >= slog.LevelInfo:
		level, label = slog.LevelInfo, "INFO"
	default:
		level, label = slog.LevelDebug, "DEBUG"
	}
	if !h.colour {
		return label
	}
	return levelColours[level] + label + colourReset
}

// consoleLine sorts a record's attributes into header parts and fields.
// Fields keep first-seen order; a repeated key overwrites the earlier value.
type consoleLine struct {
	component string
	upanishad string
	chapter   string
	sutra     string
	fields    []slog.Attr
}

func (l *consoleLine) absorb(a slog.Attr) {
	if a.Key == "" {
		return
	}
	a.Value = a.Value.Resolve()
	if a.Value.Kind() == slog.KindGroup {
		for _, member := range a.Value.Group() {
			member.Key = a.Key + "." + member.Key
			l.absorb(member)
		}
		return
	}
	switch a.Key {
	case FieldComponent:
		if l.component == "" {
			l.component = plainValue(a.Value)
		}
	case FieldUpanishad:
		l.upanishad = plainValue(a.Value)
	case FieldChapter:
		l.chapter = plainValue(a.Value)
	case FieldSutra:
		l.sutra = plainValue(a.Value)
	default:
		l.set(a.Key, a.Value)
	}
}

func (l *consoleLine) set(key string, value slog.Value) {
	for i := range l.fields {
		if l.fields[i].Key == key {
			l.fields[i].Value = value
			return
		}
	}
	l.fields = append(l.fields, slog.Attr{Key: key, Value: value})
}

func fieldLabel(key string) string {
	if label, ok := fieldLabels[key]; ok {
		return label
	}
	words := strings.FieldsFunc(key, func(r rune) bool { return r == '_' || r == '-' || r == '.' })
	if len(words) == 0 {
		return key
	}
	for i, w := range words {
		w = strings.ToLower(w)
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
