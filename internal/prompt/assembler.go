// Package prompt builds deterministic generation requests from policy text,
// retrieved domain context, and conversation history.
package prompt

import (
	"fmt"
	"strings"

	"github.com/cropwise/advisor/internal/domain"
	"github.com/cropwise/advisor/internal/llm"
)

// Options carries the per-request directives appended to the policy header
type Options struct {
	Language string
	Location string
	Crop     string
	Weather  string
}

// Assemble combines policy, context bundle, chronological history and the
// new user message into one generation request. Output depends only on its
// inputs. History is passed through untruncated; windowing is the caller's
// concern.
func Assemble(policy string, bundle *domain.ContextBundle, history []*domain.Message, newMessage string, opts Options) llm.Request {
	var sb strings.Builder
	sb.WriteString(policy)

	if opts.Language != "" {
		fmt.Fprintf(&sb, "\n\nRespond in %s.", opts.Language)
	}
	if opts.Crop != "" || opts.Location != "" {
		sb.WriteString("\n\nFarmer context:")
		if opts.Crop != "" {
			fmt.Fprintf(&sb, "\n- Crop: %s", opts.Crop)
		}
		if opts.Location != "" {
			fmt.Fprintf(&sb, "\n- Location: %s", opts.Location)
		}
	}
	if opts.Weather != "" {
		fmt.Fprintf(&sb, "\n\nCurrent weather: %s", opts.Weather)
	}

	if section := renderBundle(bundle); section != "" {
		sb.WriteString("\n\n")
		sb.WriteString(section)
	}

	messages := make([]llm.Message, 0, len(history)+1)
	for _, m := range history {
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, llm.Message{Role: domain.RoleUser, Content: newMessage})

	return llm.Request{
		SystemPrompt: sb.String(),
		Messages:     messages,
	}
}

// renderBundle serializes the context bundle as a reference section
func renderBundle(bundle *domain.ContextBundle) string {
	if bundle.Empty() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Known pests and advisories")
	if bundle.Crop != nil {
		fmt.Fprintf(&sb, " for %s", bundle.Crop.Name)
		if bundle.Crop.ScientificName != "" {
			fmt.Fprintf(&sb, " (%s)", bundle.Crop.ScientificName)
		}
	}
	sb.WriteString(":")

	for _, pa := range bundle.Pests {
		fmt.Fprintf(&sb, "\n- %s", pa.Pest.Name)
		if pa.Pest.Type != "" {
			fmt.Fprintf(&sb, " [%s]", pa.Pest.Type)
		}
		if pa.Pest.Symptoms != "" {
			fmt.Fprintf(&sb, ": symptoms: %s", pa.Pest.Symptoms)
		}
		if pa.Advisory != nil {
			if pa.Advisory.Prevention != "" {
				fmt.Fprintf(&sb, "; prevention: %s", pa.Advisory.Prevention)
			}
			if pa.Advisory.Biological != "" {
				fmt.Fprintf(&sb, "; biological: %s", pa.Advisory.Biological)
			}
			if pa.Advisory.Chemical != "" {
				fmt.Fprintf(&sb, "; chemical: %s", pa.Advisory.Chemical)
			}
			if pa.Advisory.SafetyNotes != "" {
				fmt.Fprintf(&sb, "; safety: %s", pa.Advisory.SafetyNotes)
			}
		}
	}

	return sb.String()
}
