// Package status is the user-visible message area plus the developer logger.
package status

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jeandeaual/go-locale"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultCapacity is the number of lines kept in memory
const DefaultCapacity = 200

// Level is the severity of a status line
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

// String returns the tag printed in front of a line
func (l Level) String() string {
	switch l {
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// Entry is one line of the status area
type Entry struct {
	Time  time.Time
	Level Level
	Text  string
}

// String formats the entry the way it is mirrored to the writer
func (e Entry) String() string {
	return fmt.Sprintf("%s [%s] %s", e.Time.Format("15:04:05"), e.Level, e.Text)
}

// Log is a bounded, locale-aware message area. It is safe for concurrent use
// because GUI widgets read it from their own goroutine.
type Log struct {
	mu       sync.Mutex
	entries  []Entry
	capacity int
	out      io.Writer
	printer  *message.Printer
	subs     map[int]func(Entry)
	nextSub  int
	now      func() time.Time
}

// Option configures a Log
type Option func(*Log)

// WithCapacity overrides the number of retained lines
func WithCapacity(n int) Option {
	return func(l *Log) {
		if n > 0 {
			l.capacity = n
		}
	}
}

// WithLanguage forces the language used to format arguments
func WithLanguage(tag language.Tag) Option {
	return func(l *Log) {
		l.printer = message.NewPrinter(tag)
	}
}

// WithClock replaces time.Now, used by tests
func WithClock(now func() time.Time) Option {
	return func(l *Log) {
		l.now = now
	}
}

// New creates a status log mirroring every line to out (may be nil)
func New(out io.Writer, opts ...Option) *Log {
	l := &Log{
		capacity: DefaultCapacity,
		out:      out,
		subs:     make(map[int]func(Entry)),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.printer == nil {
		l.printer = message.NewPrinter(DetectLanguage())
	}
	return l
}

// DetectLanguage returns the user's locale, falling back to English
func DetectLanguage() language.Tag {
	name, err := locale.GetLocale()
	if err != nil || name == "" {
		return language.English
	}
	// "de_DE.UTF-8" style values
	name = strings.SplitN(name, ".", 2)[0]
	name = strings.ReplaceAll(name, "_", "-")
	tag, err := language.Parse(name)
	if err != nil {
		return language.English
	}
	return tag
}

// Infof appends an informational line
func (l *Log) Infof(format string, args ...any) {
	l.add(LevelInfo, format, args...)
}

// Warnf appends a warning line
func (l *Log) Warnf(format string, args ...any) {
	l.add(LevelWarn, format, args...)
}

// Errorf appends an error line
func (l *Log) Errorf(format string, args ...any) {
	l.add(LevelError, format, args...)
}

func (l *Log) add(level Level, format string, args ...any) {
	l.mu.Lock()
	entry := Entry{Time: l.now(), Level: level, Text: l.printer.Sprintf(format, args...)}
	l.entries = append(l.entries, entry)
	if over := len(l.entries) - l.capacity; over > 0 {
		l.entries = append(l.entries[:0], l.entries[over:]...)
	}
	out := l.out
	subs := make([]func(Entry), 0, len(l.subs))
	for _, fn := range l.subs {
		subs = append(subs, fn)
	}
	l.mu.Unlock()

	if out != nil {
		fmt.Fprintln(out, entry.String())
	}
	for _, fn := range subs {
		fn(entry)
	}
}

// Entries returns a copy of the retained lines, oldest first
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}

// Last returns the newest line, if any
func (l *Log) Last() (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) == 0 {
		return Entry{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// Text returns all retained lines joined by newlines
func (l *Log) Text() string {
	entries := l.Entries()
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.String()
	}
	return strings.Join(lines, "\n")
}

// Subscribe registers fn for every new line and returns a function that removes it.
// fn runs on the goroutine that logged the line.
func (l *Log) Subscribe(fn func(Entry)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextSub
	l.nextSub++
	l.subs[id] = fn
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.subs, id)
	}
}

// NewLogger creates the developer logger: text output at Info, Debug when verbose
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard returns a logger that drops everything
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
