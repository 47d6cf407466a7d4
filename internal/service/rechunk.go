package service

import (
	"context"
	"time"

	"github.com/cropwise/advisor/internal/domain"
)

// Rechunk re-emits a complete structured reply as a paced client stream:
// one chunk event per word token (original spacing preserved), then one
// metadata event carrying the auxiliary lists, then one done event. Raw
// upstream fragments are never forwarded directly because they may be
// partial JSON.
//
// The delay between chunks is cosmetic pacing; zero is valid. The sequence
// stops early when ctx is cancelled.
func Rechunk(ctx context.Context, reply *domain.StructuredReply, delay time.Duration) <-chan domain.StreamEvent {
	events := make(chan domain.StreamEvent)

	go func() {
		defer close(events)

		for i, token := range tokenize(reply.Reply) {
			if i > 0 && delay > 0 {
				select {
				case <-time.After(delay):
				case <-ctx.Done():
					return
				}
			}
			select {
			case events <- domain.StreamEvent{Type: domain.EventChunk, Content: token}:
			case <-ctx.Done():
				return
			}
		}

		meta := reply.Metadata()
		select {
		case events <- domain.StreamEvent{
			Type:              domain.EventMetadata,
			LikelyCauses:      meta.LikelyCauses,
			Actions:           meta.Actions,
			Warnings:          meta.Warnings,
			FollowUpQuestions: meta.FollowUpQuestions,
		}:
		case <-ctx.Done():
			return
		}

		select {
		case events <- domain.StreamEvent{Type: domain.EventDone}:
		case <-ctx.Done():
		}
	}()

	return events
}

// tokenize splits text into word tokens, each carrying its leading
// whitespace, so that concatenating all tokens reproduces the input exactly
func tokenize(text string) []string {
	var tokens []string
	i := 0
	for i < len(text) {
		j := i
		for j < len(text) && isSpace(text[j]) {
			j++
		}
		k := j
		for k < len(text) && !isSpace(text[k]) {
			k++
		}
		if k == j {
			// trailing whitespace: attach to the last token
			if len(tokens) > 0 {
				tokens[len(tokens)-1] += text[i:j]
			} else {
				tokens = append(tokens, text[i:j])
			}
			break
		}
		tokens = append(tokens, text[i:k])
		i = k
	}
	return tokens
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
