package llm

import (
	"encoding/json"
	"fmt"

	"github.com/cropwise/advisor/internal/domain"
)

// ExtractJSON locates the first well-formed JSON object embedded in raw
// generation output. The backend may wrap the object in prose or code
// fences, so every '{' is a candidate start until one decodes.
func ExtractJSON(raw string) ([]byte, error) {
	for start := 0; start < len(raw); start++ {
		if raw[start] != '{' {
			continue
		}
		end, ok := matchBrace(raw, start)
		if !ok {
			continue
		}
		candidate := []byte(raw[start : end+1])
		if json.Valid(candidate) {
			return candidate, nil
		}
	}
	return nil, domain.ErrUnparseableResponse
}

// matchBrace finds the index of the brace closing raw[start], tracking
// string literals and escapes
func matchBrace(raw string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return i, true
				}
			}
		}
	}
	return 0, false
}

// DecodeInto extracts the first JSON object from raw output and decodes it
// into v
func DecodeInto(raw string, v any) error {
	data, err := ExtractJSON(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnparseableResponse, err)
	}
	return nil
}

// ParseStructuredReply extracts a StructuredReply from raw generation output.
// Fields absent from the decoded object default to empty values; confidence
// values are clamped into [0,1]. Fails with domain.ErrUnparseableResponse
// when raw contains no decodable object — the caller supplies the fallback.
func ParseStructuredReply(raw string) (*domain.StructuredReply, error) {
	reply := &domain.StructuredReply{}
	if err := DecodeInto(raw, reply); err != nil {
		return nil, err
	}
	reply.Normalize()
	return reply, nil
}
