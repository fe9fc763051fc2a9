package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chapterforge/chapterforge-server/internal/completion"
	"github.com/chapterforge/chapterforge-server/internal/errors"
	"github.com/chapterforge/chapterforge-server/internal/transcript"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeClient returns a canned completion or error and records the request.
type fakeClient struct {
	content string
	err     error
	gotReq  *completion.Request
}

func (f *fakeClient) Complete(_ context.Context, req completion.Request) (string, error) {
	f.gotReq = &req
	if f.err != nil {
		return "", f.err
	}
	return f.content, nil
}

// fakeFactory wires fake clients into the strategy chain.
type fakeFactory struct {
	server    completion.Client
	serverErr error
	user      completion.Client
	userKeys  []string
}

func (f *fakeFactory) Server() (completion.Client, error) {
	if f.serverErr != nil {
		return nil, f.serverErr
	}
	return f.server, nil
}

func (f *fakeFactory) ForKey(key string) completion.Client {
	f.userKeys = append(f.userKeys, key)
	return f.user
}

// timedRaw builds a records payload spanning n segments of the given
// spacing in seconds.
func timedRaw(n int, spacing float64) transcript.Raw {
	recs := make([]map[string]any, n)
	for i := range recs {
		recs[i] = map[string]any{
			"text":  fmt.Sprintf("talking about topic %d in some detail here.", i),
			"start": float64(i) * spacing,
		}
	}
	return transcript.Records(recs)
}

const goodReply = "00:00 Introduction\n05:00 Topic Deep Dive\n10:00 Closing Thoughts"

func TestGenerate_ServerKeyFirst(t *testing.T) {
	server := &fakeClient{content: goodReply}
	svc := NewChapterService(&fakeFactory{server: server}, DefaultSettings(), testLogger())

	res, err := svc.Generate(context.Background(), GenerateRequest{Raw: timedRaw(40, 30)})
	require.NoError(t, err)

	assert.Equal(t, StrategyServerKey, res.Strategy)
	require.Len(t, res.Chapters, 3)
	assert.Equal(t, "00:00", res.Chapters[0].Timestamp)
	assert.Equal(t, "Introduction", res.Chapters[0].Title)

	require.NotNil(t, server.gotReq)
	assert.Contains(t, server.gotReq.System, "YouTube chapter generator")
	assert.Contains(t, server.gotReq.User, "ALL AVAILABLE TIMESTAMPS")
	assert.InDelta(t, 0.5, server.gotReq.Temperature, 0.0001)
}

func TestGenerate_FallsBackToUserKey(t *testing.T) {
	f := &fakeFactory{
		serverErr: errors.CredentialMissing("no server completion credential configured"),
		user:      &fakeClient{content: goodReply},
	}
	svc := NewChapterService(f, DefaultSettings(), testLogger())

	res, err := svc.Generate(context.Background(), GenerateRequest{
		Raw:     timedRaw(40, 30),
		UserKey: "sk-user",
	})
	require.NoError(t, err)

	assert.Equal(t, StrategyUserKey, res.Strategy)
	assert.Equal(t, []string{"sk-user"}, f.userKeys)
}

func TestGenerate_LocalFallback(t *testing.T) {
	f := &fakeFactory{
		server: &fakeClient{err: errors.RateLimited("completion provider throttled the request")},
		user:   &fakeClient{err: errors.CredentialInvalid("completion credential rejected")},
	}
	svc := NewChapterService(f, DefaultSettings(), testLogger())

	res, err := svc.Generate(context.Background(), GenerateRequest{
		Raw:     timedRaw(60, 30),
		UserKey: "sk-user",
		Debug:   true,
	})
	require.NoError(t, err)

	assert.Equal(t, StrategyLocal, res.Strategy)
	require.NotEmpty(t, res.Chapters)
	assert.Equal(t, "Introduction", res.Chapters[0].Title)

	require.NotNil(t, res.Debug)
	assert.Len(t, res.Debug.Attempts, 3)
	assert.Contains(t, res.Debug.Attempts[2], "local: ok")
}

func TestGenerate_UnparseableReplyMovesOn(t *testing.T) {
	f := &fakeFactory{server: &fakeClient{content: "I cannot generate chapters for this video."}}
	svc := NewChapterService(f, DefaultSettings(), testLogger())

	res, err := svc.Generate(context.Background(), GenerateRequest{Raw: timedRaw(60, 30)})
	require.NoError(t, err)
	assert.Equal(t, StrategyLocal, res.Strategy)
}

func TestGenerate_UntimedSkipsLocal(t *testing.T) {
	f := &fakeFactory{
		server: &fakeClient{err: errors.RateLimited("completion provider throttled the request")},
	}
	svc := NewChapterService(f, DefaultSettings(), testLogger())

	_, err := svc.Generate(context.Background(), GenerateRequest{
		Raw: transcript.Text("one long blob of prose with no markers at all"),
	})
	require.Error(t, err)

	var domainErr *errors.Error
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, errors.CodeRateLimited, domainErr.Code)
}

func TestGenerate_UntimedUsesPlainPrompt(t *testing.T) {
	server := &fakeClient{content: goodReply}
	svc := NewChapterService(&fakeFactory{server: server}, DefaultSettings(), testLogger())

	res, err := svc.Generate(context.Background(), GenerateRequest{
		Raw: transcript.Text("one long blob of prose with no markers at all"),
	})
	require.NoError(t, err)
	assert.Equal(t, StrategyServerKey, res.Strategy)

	require.NotNil(t, server.gotReq)
	assert.Contains(t, server.gotReq.User, "TRANSCRIPT:")
	assert.NotContains(t, server.gotReq.User, "RECOMMENDED CHAPTER POINTS")
}

func TestGenerate_EmptyTranscript(t *testing.T) {
	svc := NewChapterService(&fakeFactory{}, DefaultSettings(), testLogger())

	_, err := svc.Generate(context.Background(), GenerateRequest{Raw: transcript.Text("   ")})
	require.Error(t, err)

	var domainErr *errors.Error
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, errors.CodeMissingTranscript, domainErr.Code)
}

func TestGenerate_DebugInfo(t *testing.T) {
	svc := NewChapterService(&fakeFactory{server: &fakeClient{content: goodReply}}, DefaultSettings(), testLogger())

	res, err := svc.Generate(context.Background(), GenerateRequest{
		Raw:     timedRaw(60, 30),
		VideoID: "dQw4w9WgXcQ",
		Debug:   true,
	})
	require.NoError(t, err)

	d := res.Debug
	require.NotNil(t, d)
	assert.NotEmpty(t, d.RequestID)
	assert.Equal(t, "dQw4w9WgXcQ", d.VideoID)
	assert.Equal(t, 60, d.Segments)
	assert.False(t, d.Untimed)
	assert.NotEmpty(t, d.Anchors)
	assert.Equal(t, StrategyServerKey, d.Strategy)
	assert.Equal(t, 3, d.TitleAnalysis.Total)
}

func TestGenerate_NoDebugByDefault(t *testing.T) {
	svc := NewChapterService(&fakeFactory{server: &fakeClient{content: goodReply}}, DefaultSettings(), testLogger())

	res, err := svc.Generate(context.Background(), GenerateRequest{Raw: timedRaw(60, 30)})
	require.NoError(t, err)
	assert.Nil(t, res.Debug)
}
