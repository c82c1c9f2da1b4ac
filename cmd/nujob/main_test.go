package main

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnthonySaldana/nujob/internal/domain/entity"
)

type fakeApplier struct {
	active  atomic.Int32
	maxSeen atomic.Int32

	mu   sync.Mutex
	urls []string
}

func (f *fakeApplier) Apply(ctx context.Context, url string, profile *entity.ApplicantProfile) (*entity.RunResult, error) {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		m := f.maxSeen.Load()
		if n <= m || f.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond)

	f.mu.Lock()
	f.urls = append(f.urls, url)
	f.mu.Unlock()

	switch url {
	case "https://fail.example/job":
		return &entity.RunResult{URL: url, Status: entity.RunFailed, Error: "navigation error"}, errors.New("navigation error")
	case "https://nil.example/job":
		return nil, errors.New("boom")
	}
	return &entity.RunResult{
		URL:       url,
		Site:      "generic",
		Status:    entity.RunCompleted,
		Submitted: true,
		Report:    entity.FillReport{Attempted: 3},
	}, nil
}

func TestRunBatch(t *testing.T) {
	urls := []string{
		"https://a.example/1",
		"https://fail.example/job",
		"https://b.example/2",
		"https://nil.example/job",
		"https://c.example/3",
	}
	applier := &fakeApplier{}

	results := runBatch(context.Background(), applier, urls, &entity.ApplicantProfile{}, 2)

	require.Len(t, results, len(urls))
	for i, r := range results {
		assert.Equal(t, urls[i], r.URL, "results keep input order")
	}
	assert.Len(t, applier.urls, len(urls), "a failed run does not stop the batch")
	assert.LessOrEqual(t, applier.maxSeen.Load(), int32(2))

	assert.Equal(t, entity.RunFailed, results[3].Status)
	assert.Equal(t, "boom", results[3].Error)
}

func TestRunBatch_ParallelFloor(t *testing.T) {
	applier := &fakeApplier{}
	results := runBatch(context.Background(), applier, []string{"https://a.example/1", "https://b.example/2"}, nil, 0)

	assert.Len(t, results, 2)
	assert.Equal(t, int32(1), applier.maxSeen.Load())
}

func TestPrintResults(t *testing.T) {
	var buf bytes.Buffer
	failed := printResults(&buf, []*entity.RunResult{
		{URL: "https://a.example/1", Site: "greenhouse", Status: entity.RunCompleted, Degraded: true, Report: entity.FillReport{Attempted: 5, Skipped: 1}},
		{URL: "https://b.example/2", Site: "lever", Status: entity.RunFailed, Error: "submission error"},
	})

	assert.Equal(t, 1, failed)
	out := buf.String()
	assert.Contains(t, out, "completed (degraded)")
	assert.Contains(t, out, "greenhouse")
	assert.Contains(t, out, "error: submission error")
}

func TestProfileCmd_PrintsSample(t *testing.T) {
	t.Setenv("PROFILE_PATH", "")
	t.Chdir(t.TempDir())

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"profile"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "firstName: John")
}

func TestApplyCmd_RequiresURL(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"apply"})

	assert.Error(t, root.Execute())
}
