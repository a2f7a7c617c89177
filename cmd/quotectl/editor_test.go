package main

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"villaquote/internal/modules/pricing"
	"villaquote/internal/modules/quote"
	"villaquote/internal/types"
)

type call struct {
	kind      string
	component pricing.Component
	req       pricing.Request
}

type recordingScheduler struct {
	calls []call
}

func (r *recordingScheduler) Change(c pricing.Component, req pricing.Request) error {
	r.calls = append(r.calls, call{kind: "change", component: c, req: req})
	return nil
}

func (r *recordingScheduler) BeginLoad() error {
	r.calls = append(r.calls, call{kind: "begin"})
	return nil
}

func (r *recordingScheduler) EndLoad() error {
	r.calls = append(r.calls, call{kind: "end"})
	return nil
}

type stubQuotes struct {
	loaded  *quote.LoadResult
	created *quote.CreateCommand
	updated *quote.UpdateCommand
}

func (s *stubQuotes) Create(_ context.Context, cmd quote.CreateCommand) (*quote.Quote, error) {
	s.created = &cmd
	return &quote.Quote{ID: "q-new", CustomerName: cmd.CustomerName}, nil
}

func (s *stubQuotes) Update(_ context.Context, cmd quote.UpdateCommand) (*quote.Quote, error) {
	s.updated = &cmd
	return &quote.Quote{ID: cmd.ID}, nil
}

func (s *stubQuotes) Load(_ context.Context, id types.ID) (*quote.LoadResult, error) {
	if s.loaded == nil || s.loaded.Quote.ID != id {
		return nil, quote.ErrNotFound
	}
	return s.loaded, nil
}

func (s *stubQuotes) List(_ context.Context, _ int) ([]*quote.Quote, error) {
	return []*quote.Quote{{ID: "q-1", CustomerName: "Kim", TotalPrice: 880, CreatedAt: time.Now()}}, nil
}

func TestEditorCommands(t *testing.T) {
	sched := &recordingScheduler{}
	var out bytes.Buffer
	ed := newEditor(sched, nil, &out, "en")
	ctx := context.Background()

	lines := []string{
		"villa 2025-03-06 2025-03-08 2",
		"vehicle 2025-03-06 7_seater airport",
		"golf 2025-03-07 paradise 2",
		"guide 3 6",
		"fasttrack roundtrip 3",
		"companion 2025-03-07 2 22",
		"companion 2025-03-08 1",
	}
	for _, l := range lines {
		_, err := ed.exec(ctx, l)
		require.NoError(t, err, l)
	}

	require.Len(t, sched.calls, len(lines))
	require.Equal(t, pricing.ComponentVilla, sched.calls[0].component)
	last := sched.calls[len(sched.calls)-1].req
	require.Equal(t, pricing.VillaSelection{Enabled: true, CheckIn: "2025-03-06", CheckOut: "2025-03-08", Rooms: 2}, last.Villa)
	require.Len(t, last.Companion.Rows, 2)
	require.Equal(t, pricing.CompanionHours12, last.Companion.Rows[1].Hours)
	require.Equal(t, pricing.FastTrackSelection{Enabled: true, Type: pricing.FastTrackRoundTrip, Persons: 3}, last.FastTrack)

	_, err := ed.exec(ctx, "off golf")
	require.NoError(t, err)
	require.False(t, ed.req.Golf.Enabled)
	require.Empty(t, ed.req.Golf.Rows)

	done, err := ed.exec(ctx, "quit")
	require.NoError(t, err)
	require.True(t, done)
}

func TestEditorRejectsBadInput(t *testing.T) {
	ed := newEditor(&recordingScheduler{}, nil, &bytes.Buffer{}, "en")
	ctx := context.Background()

	for _, l := range []string{
		"villa 2025-03-08 2025-03-06 1",
		"villa 2025-03-06",
		"vehicle 2025-03-06 bus city",
		"golf 2025-03-07 paradise zero",
		"fasttrack sideways 2",
		"companion 2025-03-07 1 6",
		"off spa",
		"dance",
		"save Kim",
	} {
		_, err := ed.exec(ctx, l)
		require.Error(t, err, l)
	}

	_, err := ed.exec(ctx, "guide 2")
	require.True(t, errors.Is(err, errUsage))
}

func TestEditorLoadAndResave(t *testing.T) {
	sched := &recordingScheduler{}
	saved := pricing.Request{
		Villa: pricing.VillaSelection{Enabled: true, CheckIn: "2025-03-06", CheckOut: "2025-03-08", Rooms: 1},
		Guide: pricing.GuideSelection{Enabled: true, Days: 2, GroupSize: 4},
	}
	qs := &stubQuotes{loaded: &quote.LoadResult{
		Quote:      &quote.Quote{ID: "q-1", CustomerName: "Kim", TotalPrice: 970, Breakdown: quote.StoredBreakdown{Lang: "ko"}},
		Selections: saved,
		Source:     quote.SourceStructured,
	}}
	var out bytes.Buffer
	ed := newEditor(sched, qs, &out, "en")
	ctx := context.Background()

	_, err := ed.exec(ctx, "load q-1")
	require.NoError(t, err)

	require.Equal(t, "begin", sched.calls[0].kind)
	require.Equal(t, "end", sched.calls[len(sched.calls)-1].kind)
	require.Len(t, sched.calls, len(pricing.Components)+2)
	require.Equal(t, saved, sched.calls[len(sched.calls)-2].req)
	require.Contains(t, out.String(), "stored total $970")

	_, err = ed.exec(ctx, "guide 3 4")
	require.NoError(t, err)
	_, err = ed.exec(ctx, "save")
	require.NoError(t, err)
	require.Nil(t, qs.created)
	require.NotNil(t, qs.updated)
	require.Equal(t, types.ID("q-1"), qs.updated.ID)
	require.Equal(t, "ko", qs.updated.Lang)
	require.Equal(t, 3, qs.updated.Selections.Guide.Days)

	_, err = ed.exec(ctx, "load q-404")
	require.ErrorIs(t, err, quote.ErrNotFound)

	out.Reset()
	_, err = ed.exec(ctx, "list")
	require.NoError(t, err)
	require.Contains(t, out.String(), "Kim")
}

func TestEditorSaveNew(t *testing.T) {
	qs := &stubQuotes{}
	ed := newEditor(&recordingScheduler{}, qs, &bytes.Buffer{}, "vi")
	ctx := context.Background()

	_, err := ed.exec(ctx, "guide 1 2")
	require.NoError(t, err)
	_, err = ed.exec(ctx, "save Le Van An")
	require.NoError(t, err)
	require.Equal(t, "Le Van An", qs.created.CustomerName)
	require.Equal(t, "vi", qs.created.Lang)
	require.Equal(t, types.ID("q-new"), ed.loadedID)
}

// blockingScheduler stalls Change until released, like a scheduler whose
// events buffer is full.
type blockingScheduler struct {
	recordingScheduler
	release chan struct{}
}

func (b *blockingScheduler) Change(c pricing.Component, req pricing.Request) error {
	<-b.release
	return b.recordingScheduler.Change(c, req)
}

func TestSyncWriterIsFreeWhileExecBlocks(t *testing.T) {
	var mu sync.Mutex
	var buf bytes.Buffer
	out := &syncWriter{mu: &mu, w: &buf}
	sched := &blockingScheduler{release: make(chan struct{})}
	ed := newEditor(sched, nil, out, "en")

	done := make(chan error, 1)
	go func() {
		_, err := ed.exec(context.Background(), "guide 2 4")
		done <- err
	}()

	// The results printer can still take the lock while exec waits.
	printed := make(chan struct{})
	go func() {
		mu.Lock()
		printBreakdown(&buf, pricing.Breakdown{Total: 280}, false)
		mu.Unlock()
		close(printed)
	}()
	select {
	case <-printed:
	case <-time.After(time.Second):
		t.Fatal("printer blocked behind a pending edit")
	}

	close(sched.release)
	require.NoError(t, <-done)
	require.Contains(t, buf.String(), "total      $280")
}
