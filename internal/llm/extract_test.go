package llm

import (
	"errors"
	"testing"

	"github.com/cropwise/advisor/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStructuredReply(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantErr   bool
		wantReply string
		check     func(t *testing.T, reply *domain.StructuredReply)
	}{
		{
			name:      "bare json object",
			raw:       `{"reply":"Check for aphids","actions":["inspect undersides of leaves"]}`,
			wantReply: "Check for aphids",
			check: func(t *testing.T, reply *domain.StructuredReply) {
				assert.Equal(t, []string{"inspect undersides of leaves"}, reply.Actions)
			},
		},
		{
			name:      "json wrapped in prose",
			raw:       `Sure, here you go: {"reply":"Use neem oil","actions":["spray neem oil"]}`,
			wantReply: "Use neem oil",
			check: func(t *testing.T, reply *domain.StructuredReply) {
				assert.Equal(t, []string{"spray neem oil"}, reply.Actions)
				assert.Empty(t, reply.Warnings)
				assert.Empty(t, reply.FollowUpQuestions)
			},
		},
		{
			name:      "json in code fence",
			raw:       "```json\n{\"reply\":\"Rotate crops\",\"warnings\":[\"wear gloves\"]}\n```",
			wantReply: "Rotate crops",
			check: func(t *testing.T, reply *domain.StructuredReply) {
				assert.Equal(t, []string{"wear gloves"}, reply.Warnings)
			},
		},
		{
			name:      "braces inside string values",
			raw:       `{"reply":"Mix at {rate} per liter","actions":[]}`,
			wantReply: "Mix at {rate} per liter",
		},
		{
			name:      "malformed object before valid one",
			raw:       `{"reply": broken} then {"reply":"second try"}`,
			wantReply: "second try",
		},
		{
			name:    "plain prose",
			raw:     "I think it's aphids",
			wantErr: true,
		},
		{
			name:    "empty input",
			raw:     "",
			wantErr: true,
		},
		{
			name:    "unterminated object",
			raw:     `{"reply":"never closed`,
			wantErr: true,
		},
		{
			name:      "absent fields default to empty",
			raw:       `{"reply":"ok"}`,
			wantReply: "ok",
			check: func(t *testing.T, reply *domain.StructuredReply) {
				assert.NotNil(t, reply.LikelyCauses)
				assert.NotNil(t, reply.Actions)
				assert.NotNil(t, reply.Warnings)
				assert.NotNil(t, reply.FollowUpQuestions)
			},
		},
		{
			name:      "confidence clamped into unit interval",
			raw:       `{"reply":"ok","likely_causes":[{"name":"aphids","confidence":1.7},{"name":"mites","confidence":-0.2}]}`,
			wantReply: "ok",
			check: func(t *testing.T, reply *domain.StructuredReply) {
				require.Len(t, reply.LikelyCauses, 2)
				assert.Equal(t, 1.0, reply.LikelyCauses[0].Confidence)
				assert.Equal(t, 0.0, reply.LikelyCauses[1].Confidence)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply, err := ParseStructuredReply(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, domain.ErrUnparseableResponse))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantReply, reply.Reply)
			if tt.check != nil {
				tt.check(t, reply)
			}
		})
	}
}

func TestExtractJSONFindsFirstObject(t *testing.T) {
	raw := `noise {"a":1} {"b":2}`
	data, err := ExtractJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))
}

func TestDecodeIntoTypedShape(t *testing.T) {
	raw := "The model says:\n" + `{"pest":"Aphid","scientific_name":"Aphidoidea","confidence":0.9,"description":"clusters on stems","recommendations":["release ladybugs"]}`

	identification := &domain.PestIdentification{}
	require.NoError(t, DecodeInto(raw, identification))
	identification.Normalize()

	assert.Equal(t, "Aphid", identification.Pest)
	assert.Equal(t, 0.9, identification.Confidence)
	assert.Equal(t, []string{"release ladybugs"}, identification.Recommendations)
}
