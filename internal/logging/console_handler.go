package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

// prettyHandler renders one header line per record followed by indented
// attribute lines. Component, run, recipe, and template fields are lifted into
// the header.
type prettyHandler struct {
	mu        *sync.Mutex
	writer    io.Writer
	level     *slog.LevelVar
	attrs     []slog.Attr
	groups    []string
	addSource bool
}

func newPrettyHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &prettyHandler{mu: &sync.Mutex{}, writer: w, level: lvl, addSource: addSource}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *prettyHandler) Handle(_ context.Context, record slog.Record) error {
	if record.Level < h.level.Level() {
		return nil
	}

	timestamp := record.Time
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	var collected fieldSet
	prefix := strings.Join(h.groups, ".")
	for _, attr := range h.attrs {
		collected.add(prefix, attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		collected.add(prefix, attr)
		return true
	})
	kvs := collected.list

	var hdr header
	fields := make([]kv, 0, len(kvs))
	for _, kv := range kvs {
		switch kv.key {
		case FieldComponent:
			hdr.component = plainValue(kv.value)
			continue
		case FieldRunID:
			hdr.runID = plainValue(kv.value)
		case FieldRecipe:
			hdr.recipe = plainValue(kv.value)
		case FieldTemplate:
			hdr.template = plainValue(kv.value)
		}
		fields = append(fields, kv)
	}

	message := strings.TrimSpace(record.Message)
	if message == "" {
		message = "(no message)"
	}

	var buf bytes.Buffer
	buf.Grow(128 + len(fields)*32)
	buf.WriteString(formatTimestamp(timestamp))
	buf.WriteByte(' ')
	buf.WriteString(levelLabel(record.Level))
	if hdr.component != "" {
		buf.WriteString(" [")
		buf.WriteString(hdr.component)
		buf.WriteByte(']')
	}
	if subject := hdr.subject(); subject != "" {
		buf.WriteByte(' ')
		buf.WriteString(subject)
	}
	buf.WriteString(" - ")
	buf.WriteString(message)
	if h.addSource {
		if src := record.Source(); src != nil {
			buf.WriteString(" [")
			buf.WriteString(filepath.Base(src.File))
			buf.WriteByte(':')
			buf.WriteString(strconv.Itoa(src.Line))
			buf.WriteByte(']')
		}
	}
	buf.WriteByte('\n')

	verbose := record.Level < slog.LevelInfo
	for _, kv := range fields {
		if !verbose && hdr.lifted(kv.key) {
			continue
		}
		buf.WriteString("    ")
		buf.WriteString(kv.key)
		buf.WriteString(": ")
		buf.WriteString(quotedValue(kv.value))
		buf.WriteByte('\n')
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf.Bytes())
	return err
}

type header struct {
	component string
	runID     string
	recipe    string
	template  string
}

func (h header) subject() string {
	parts := make([]string, 0, 3)
	if h.runID != "" {
		id := h.runID
		if len(id) > 8 {
			id = id[:8]
		}
		parts = append(parts, "run "+id)
	}
	if h.recipe != "" {
		parts = append(parts, h.recipe)
	}
	if h.template != "" {
		parts = append(parts, "template "+h.template)
	}
	return strings.Join(parts, " · ")
}

// lifted reports whether key is already shown in the header line.
func (h header) lifted(key string) bool {
	switch key {
	case FieldRunID:
		return h.runID != ""
	case FieldRecipe:
		return h.recipe != ""
	case FieldTemplate:
		return h.template != ""
	}
	return false
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(slices.Clip(h.attrs), attrs...)
	return &next
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	next := *h
	next.groups = append(slices.Clip(h.groups), name)
	return &next
}

type kv struct {
	key   string
	value slog.Value
}

// fieldSet collects flattened attributes. A repeated key keeps its first
// position and its last value.
type fieldSet struct {
	list []kv
	pos  map[string]int
}

func (f *fieldSet) add(prefix string, attr slog.Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	value := attr.Value.Resolve()
	key := joinKey(prefix, attr.Key)
	if value.Kind() == slog.KindGroup {
		for _, member := range value.Group() {
			f.add(key, member)
		}
		return
	}
	if key == "" {
		return
	}
	if f.pos == nil {
		f.pos = make(map[string]int)
	}
	if i, ok := f.pos[key]; ok {
		f.list[i].value = value
		return
	}
	f.pos[key] = len(f.list)
	f.list = append(f.list, kv{key: key, value: value})
}

func joinKey(prefix, key string) string {
	switch {
	case prefix == "":
		return key
	case key == "":
		return prefix
	default:
		return prefix + "." + key
	}
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
