package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kernmvcd/wnv-pipeline/internal/store"
)

func TestPipelineStageOrder(t *testing.T) {
	stages := pipelineStageList()
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = s.name
	}

	// Dependency order: boundaries first, merge before its consumers,
	// zonal before repair.
	assert.Equal(t, "boundaries", names[0])
	assert.Less(t, indexOf(names, "normalize"), indexOf(names, "merge"))
	assert.Less(t, indexOf(names, "merge"), indexOf(names, "zonal"))
	assert.Less(t, indexOf(names, "zonal"), indexOf(names, "repair"))
	assert.Less(t, indexOf(names, "merge"), indexOf(names, "persistence"))
	assert.Less(t, indexOf(names, "merge"), indexOf(names, "animate"))
}

func TestStageFnCoversEveryStage(t *testing.T) {
	for _, s := range pipelineStageList() {
		assert.NotNil(t, stageFn(s.name))
	}
	assert.Panics(t, func() { stageFn("no-such-stage") })
}

func TestFormatStageRuns(t *testing.T) {
	started := time.Date(2021, 7, 8, 10, 0, 0, 0, time.UTC)
	finished := started.Add(90 * time.Second)

	var sb strings.Builder
	formatStageRuns(&sb, []store.StageRun{
		{Stage: "merge", Status: store.StatusComplete, Detail: "46 acquisitions merged", StartedAt: started, FinishedAt: &finished},
		{Stage: "zonal", Status: store.StatusRunning, StartedAt: started},
	})

	out := sb.String()
	assert.Contains(t, out, "merge")
	assert.Contains(t, out, "complete")
	assert.Contains(t, out, "1m30s")
	assert.Contains(t, out, "46 acquisitions merged")
	// Unfinished runs show a placeholder duration.
	assert.Contains(t, out, "-")
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}
