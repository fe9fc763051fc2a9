package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chapterforge/chapterforge-server/internal/errors"
	"github.com/chapterforge/chapterforge-server/internal/extract"
)

func captionServer(t *testing.T) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/watch":
			fmt.Fprintf(w, `<html><script>var ytInitialPlayerResponse = {"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[{"baseUrl":"%s/caps?lang=en","languageCode":"en","kind":"asr"}]}}};</script></html>`, srv.URL)
		case r.URL.Path == "/caps" && r.URL.Query().Get("fmt") == "json3":
			fmt.Fprint(w, `{"events":[
				{"tStartMs":0,"dDurationMs":3000,"segs":[{"utf8":"hello and welcome"}]},
				{"tStartMs":90000,"dDurationMs":3000,"segs":[{"utf8":"wrapping up"}]}
			]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTranscriptService_Fetch(t *testing.T) {
	srv := captionServer(t)
	extractor := extract.New(extract.Config{WatchBase: srv.URL + "/watch?v=", MaxAttempts: 1}, testLogger())
	svc := NewTranscriptService(extractor, testLogger())

	res, err := svc.Fetch(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	require.NoError(t, err)

	assert.Equal(t, "dQw4w9WgXcQ", res.VideoID)
	assert.Equal(t, "en", res.Track)
	require.Len(t, res.Entries, 2)
	assert.Equal(t, "00:00", res.Entries[0].Timestamp)
	assert.Equal(t, "hello and welcome", res.Entries[0].Text)
	assert.Equal(t, "01:30", res.Entries[1].Timestamp)
}

func TestTranscriptService_Fetch_InvalidURL(t *testing.T) {
	extractor := extract.New(extract.Config{MaxAttempts: 1}, testLogger())
	svc := NewTranscriptService(extractor, testLogger())

	_, err := svc.Fetch(context.Background(), "https://example.com/watch-me")
	require.Error(t, err)

	var domainErr *errors.Error
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, errors.CodeValidation, domainErr.Code)
}
