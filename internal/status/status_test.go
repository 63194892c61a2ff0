package status

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func fixedClock() func() time.Time {
	t := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func TestLogMirrorsAndKeepsEntries(t *testing.T) {
	var out bytes.Buffer
	log := New(&out, WithLanguage(language.English), WithClock(fixedClock()))

	log.Infof("loaded %d objects", 3)
	log.Errorf("export failed: %v", "no geometry")

	entries := log.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "loaded 3 objects", entries[0].Text)
	assert.Equal(t, LevelError, entries[1].Level)
	assert.Contains(t, out.String(), "12:00:00 [INFO] loaded 3 objects")
	assert.Contains(t, out.String(), "[ERROR] export failed: no geometry")
}

func TestLogIsBounded(t *testing.T) {
	log := New(nil, WithCapacity(3), WithLanguage(language.English))
	for i := 0; i < 5; i++ {
		log.Infof("line %d", i)
	}
	entries := log.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "line 2", entries[0].Text)

	last, ok := log.Last()
	require.True(t, ok)
	assert.Equal(t, "line 4", last.Text)
}

func TestLogFormatsForLocale(t *testing.T) {
	log := New(nil, WithLanguage(language.German))
	log.Infof("area %.2f", 3.5)
	last, _ := log.Last()
	assert.Equal(t, "area 3,50", last.Text)
}

func TestSubscribe(t *testing.T) {
	log := New(nil, WithLanguage(language.English))
	var got []string
	unsubscribe := log.Subscribe(func(e Entry) { got = append(got, e.Text) })

	log.Warnf("first")
	unsubscribe()
	log.Warnf("second")

	assert.Equal(t, []string{"first"}, got)
}

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, false).Debug("hidden")
	assert.Empty(t, buf.String())

	NewLogger(&buf, true).Debug("shown", "n", 1)
	assert.Contains(t, buf.String(), fmt.Sprintf("msg=shown n=%d", 1))
}
