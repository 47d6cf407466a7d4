package service

import (
	"context"
	"strings"
	"testing"

	"github.com/cropwise/advisor/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectEvents(t *testing.T, reply *domain.StructuredReply) []domain.StreamEvent {
	t.Helper()
	var events []domain.StreamEvent
	for ev := range Rechunk(context.Background(), reply, 0) {
		events = append(events, ev)
	}
	return events
}

func TestRechunkReconstruction(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{name: "simple sentence", reply: "Use neem oil on affected leaves"},
		{name: "leading and trailing spaces", reply: "  spaced out  "},
		{name: "newlines and tabs", reply: "Step 1:\n\tinspect leaves\nStep 2: remove by hand"},
		{name: "multiple spaces between words", reply: "slow   release   of   words"},
		{name: "single word", reply: "aphids"},
		{name: "whitespace only", reply: "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := &domain.StructuredReply{Reply: tt.reply}
			reply.Normalize()

			var sb strings.Builder
			events := collectEvents(t, reply)
			for _, ev := range events {
				if ev.Type == domain.EventChunk {
					sb.WriteString(ev.Content)
				}
			}

			// Joining all chunks reproduces the reply exactly
			assert.Equal(t, tt.reply, sb.String())
		})
	}
}

func TestRechunkEventOrdering(t *testing.T) {
	reply := &domain.StructuredReply{
		Reply:    "Spray in the evening",
		Actions:  []string{"spray neem oil"},
		Warnings: []string{"avoid windy days"},
	}
	reply.Normalize()

	events := collectEvents(t, reply)
	require.NotEmpty(t, events)

	// chunks first, then exactly one metadata, then exactly one done
	var metadataIdx, doneIdx int
	metadataCount, doneCount := 0, 0
	for i, ev := range events {
		switch ev.Type {
		case domain.EventMetadata:
			metadataCount++
			metadataIdx = i
		case domain.EventDone:
			doneCount++
			doneIdx = i
		case domain.EventChunk:
			assert.Less(t, i, len(events)-2, "chunk after metadata/done")
		}
	}
	assert.Equal(t, 1, metadataCount)
	assert.Equal(t, 1, doneCount)
	assert.Equal(t, len(events)-2, metadataIdx)
	assert.Equal(t, len(events)-1, doneIdx)

	meta := events[metadataIdx]
	assert.Equal(t, []string{"spray neem oil"}, meta.Actions)
	assert.Equal(t, []string{"avoid windy days"}, meta.Warnings)
}

func TestRechunkEmptyReply(t *testing.T) {
	reply := &domain.StructuredReply{}
	reply.Normalize()

	events := collectEvents(t, reply)

	// zero text chunks is valid; metadata and done still arrive
	require.Len(t, events, 2)
	assert.Equal(t, domain.EventMetadata, events[0].Type)
	assert.Equal(t, domain.EventDone, events[1].Type)
}

func TestRechunkStopsOnCancel(t *testing.T) {
	reply := &domain.StructuredReply{Reply: strings.Repeat("word ", 500)}
	reply.Normalize()

	ctx, cancel := context.WithCancel(context.Background())
	events := Rechunk(ctx, reply, 0)

	// read a few events, then walk away
	<-events
	<-events
	cancel()

	count := 0
	for range events {
		count++
	}
	assert.Less(t, count, 500, "stream should stop after cancellation")
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a b", []string{"a", " b"}},
		{" a b ", []string{" a", " b "}},
		{"one", []string{"one"}},
		{"", nil},
		{"\n\ta  b", []string{"\n\ta", "  b"}},
	}

	for _, tt := range tests {
		got := tokenize(tt.in)
		assert.Equal(t, tt.want, got, "tokenize(%q)", tt.in)
		assert.Equal(t, tt.in, strings.Join(got, ""))
	}
}
