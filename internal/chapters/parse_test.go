package chapters

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chapterforge/chapterforge-server/internal/timestamp"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseCompletion_RoundTripScenario(t *testing.T) {
	// 25:10 exceeds the 1510s duration and is dropped; the rest sorts
	// chronologically.
	reply := "00:00 Introduction\n05:00 Setup\n25:10 Out Of Bounds\n15:00 Wrap Up"

	got := ParseCompletion(reply, 1510, testLogger())

	require.Len(t, got, 3)
	assert.Equal(t, Chapter{Timestamp: "00:00", Title: "Introduction"}, got[0])
	assert.Equal(t, Chapter{Timestamp: "05:00", Title: "Setup"}, got[1])
	assert.Equal(t, Chapter{Timestamp: "15:00", Title: "Wrap Up"}, got[2])
}

func TestParseCompletion_Separators(t *testing.T) {
	reply := "00:00 - Opening\n02:30- Middle\n1:02:05 Closing thoughts"

	got := ParseCompletion(reply, 4000, testLogger())

	require.Len(t, got, 3)
	assert.Equal(t, "Opening", got[0].Title)
	assert.Equal(t, "Middle", got[1].Title)
	assert.Equal(t, Chapter{Timestamp: "01:02:05", Title: "Closing thoughts"}, got[2])
}

func TestParseCompletion_NonMatchingLinesSkipped(t *testing.T) {
	reply := "Here are your chapters:\n\n00:00 Intro\nhope that helps!\n03:00 Main part"

	got := ParseCompletion(reply, 600, testLogger())

	require.Len(t, got, 2)
	assert.Equal(t, "Intro", got[0].Title)
	assert.Equal(t, "Main part", got[1].Title)
}

func TestParseCompletion_EmptySynthesizesIntroduction(t *testing.T) {
	for _, reply := range []string{"", "no chapters here", "sorry, I cannot do that"} {
		got := ParseCompletion(reply, 600, testLogger())
		require.Len(t, got, 1, "reply %q", reply)
		assert.Equal(t, introChapter, got[0])
	}
}

func TestParseCompletion_PrependsIntroduction(t *testing.T) {
	got := ParseCompletion("02:00 Starts late\n04:00 Continues", 600, testLogger())

	require.Len(t, got, 3)
	assert.Equal(t, introChapter, got[0])
	assert.Equal(t, "Starts late", got[1].Title)
}

func TestParseCompletion_DuplicateTimesKeepFirst(t *testing.T) {
	got := ParseCompletion("00:00 First\n00:00 Second\n03:00 Third\n3:00 Fourth", 600, testLogger())

	require.Len(t, got, 2)
	assert.Equal(t, "First", got[0].Title)
	assert.Equal(t, "Third", got[1].Title)
}

func TestParseCompletion_Guarantees(t *testing.T) {
	// Properties that hold for any reply: non-empty output, first decodes
	// to 0, strictly increasing, all within duration.
	replies := []string{
		"",
		"garbage\nmore garbage",
		"99:59 way too late",
		"05:00 B\n01:00 A\n05:00 C\n00:00 Z",
		"00:30 only one",
	}

	for _, reply := range replies {
		got := ParseCompletion(reply, 400, testLogger())
		require.NotEmpty(t, got, "reply %q", reply)

		first, err := timestamp.Parse(got[0].Timestamp)
		require.NoError(t, err)
		assert.Zero(t, first, "reply %q", reply)

		prev := -1
		for _, ch := range got {
			secs, err := timestamp.Parse(ch.Timestamp)
			require.NoError(t, err)
			assert.Greater(t, secs, prev, "reply %q", reply)
			assert.LessOrEqual(t, float64(secs), 400.0, "reply %q", reply)
			prev = secs
		}
	}
}

func TestIsGenericTitle(t *testing.T) {
	generic := []string{"", "  ", "Section", "section", "Chapter 3", "Part 12", "7", "03:00", "12 - "}
	for _, title := range generic {
		assert.True(t, IsGenericTitle(title), "title %q", title)
	}

	named := []string{"Introduction", "Setting up the build", "Chapter overview", "Part of the problem"}
	for _, title := range named {
		assert.False(t, IsGenericTitle(title), "title %q", title)
	}
}

func TestAnalyze(t *testing.T) {
	list := []Chapter{
		{Timestamp: "00:00", Title: "Introduction"},
		{Timestamp: "01:00", Title: "Section"},
		{Timestamp: "02:00", Title: "Section"},
		{Timestamp: "03:00", Title: "Real title"},
	}

	got := Analyze(list)
	assert.Equal(t, 4, got.Total)
	assert.Equal(t, 2, got.GenericCount)
	assert.InDelta(t, 0.5, got.GenericPercent, 1e-9)

	assert.Zero(t, Analyze(nil).Total)
}
