// Package compose produces email drafts: generation from a prompt, rewriting
// of existing content, and subject-line suggestions. The completion provider
// is optional; rewrite and suggest fall back to mechanical local logic when
// it is absent, and the response is flagged as degraded.
package compose

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rowanvale/maildraft/internal/completion"
	"github.com/rowanvale/maildraft/internal/domain"
	"github.com/rowanvale/maildraft/internal/telemetry"
)

// Tones accepted by generate and rewrite. Unknown tones fall back to the default.
const (
	ToneProfessional = "professional"
	ToneFriendly     = "friendly"
	ToneFormal       = "formal"
	ToneCasual       = "casual"
	TonePersuasive   = "persuasive"
)

// Lengths accepted by generate. Advisory to the provider only, never enforced.
const (
	LengthShort  = "short"
	LengthMedium = "medium"
	LengthLong   = "long"
)

// Rewrite actions.
const (
	ActionShorten   = "shorten"
	ActionExpand    = "expand"
	ActionFormalize = "formalize"
	ActionImprove   = "improve"
)

var validTones = map[string]bool{
	ToneProfessional: true,
	ToneFriendly:     true,
	ToneFormal:       true,
	ToneCasual:       true,
	TonePersuasive:   true,
}

var validLengths = map[string]bool{
	LengthShort:  true,
	LengthMedium: true,
	LengthLong:   true,
}

// Service handles draft generation, rewriting and subject suggestions.
type Service struct {
	provider completion.Client // nil when no provider credential is configured
	logger   *slog.Logger
}

// NewService creates a compose service. provider may be nil; generation then
// fails as unconfigured and rewrite/suggest run their local fallbacks.
func NewService(provider completion.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{provider: provider, logger: logger}
}

// Generation is the outcome of Generate.
type Generation struct {
	Email  string
	Tone   string
	Length string
}

// Generate asks the provider for a draft. Tone and length are folded into the
// system instruction; the provider's output is returned verbatim.
func (s *Service) Generate(ctx context.Context, prompt, tone, length string) (*Generation, error) {
	const op = "compose.generate"

	if strings.TrimSpace(prompt) == "" {
		return nil, domain.Invalid(op, "Prompt is required")
	}
	tone = normalizeTone(tone)
	length = normalizeLength(length)

	if s.provider == nil {
		return nil, domain.NotConfigured(op, "GROQ not configured")
	}

	system := fmt.Sprintf("You are a professional email writer. Generate a %s email based on the following prompt. "+
		"The email should be %s in length and follow proper email etiquette. "+
		"Return only the email content without any additional formatting or explanations.", tone, length)

	text, err := s.provider.Complete(ctx, system, prompt)
	if err != nil {
		return nil, domain.WrapError(err, domain.EPROVIDER, op, "Failed to generate email")
	}

	telemetry.Business.Generations.WithLabelValues(tone, length).Inc()
	return &Generation{Email: text, Tone: tone, Length: length}, nil
}

// Rewrite is the outcome of RewriteContent. Degraded marks output produced by
// the local fallback rather than the provider.
type Rewrite struct {
	Content  string
	Action   string
	Degraded bool
}

// RewriteContent transforms existing content per the requested action.
func (s *Service) RewriteContent(ctx context.Context, content, action, tone, length string) (*Rewrite, error) {
	const op = "compose.rewrite"

	if strings.TrimSpace(content) == "" {
		return nil, domain.Invalid(op, "Content is required")
	}
	action = normalizeAction(action)
	tone = normalizeTone(tone)
	length = normalizeLength(length)

	telemetry.Business.Rewrites.WithLabelValues(action).Inc()

	if s.provider == nil {
		telemetry.Business.DegradedFallbacks.WithLabelValues("rewrite").Inc()
		return &Rewrite{Content: localRewrite(content, action), Action: action, Degraded: true}, nil
	}

	system := fmt.Sprintf("You are a professional email editor. %s Maintain a %s tone and keep the result %s in length. "+
		"Return only the rewritten email content without any additional formatting or explanations.",
		actionInstruction(action), tone, length)

	text, err := s.provider.Complete(ctx, system, content)
	if err != nil {
		return nil, domain.WrapError(err, domain.EPROVIDER, op, "Failed to rewrite email")
	}
	return &Rewrite{Content: text, Action: action}, nil
}

// Suggestions is the outcome of SuggestSubjects.
type Suggestions struct {
	Subjects []string
	Degraded bool
}

// SuggestSubjects asks the provider for exactly three subject-line candidates.
// The provider is told to answer with a JSON array; if it does not, the raw
// response is split by line instead. With no provider configured this returns
// deterministic placeholder subjects rather than failing.
func (s *Service) SuggestSubjects(ctx context.Context, prompt, content string) (*Suggestions, error) {
	const op = "compose.suggest"

	prompt = strings.TrimSpace(prompt)
	content = strings.TrimSpace(content)
	if prompt == "" && content == "" {
		return nil, domain.Invalid(op, "Prompt or email content is required")
	}

	telemetry.Business.SubjectSuggestions.Inc()

	if s.provider == nil {
		telemetry.Business.DegradedFallbacks.WithLabelValues("suggest").Inc()
		return &Suggestions{Subjects: placeholderSubjects(prompt, content), Degraded: true}, nil
	}

	system := "You are a professional email writer. Suggest exactly three concise subject lines for the email " +
		"described below. Respond with a JSON array of three strings and nothing else."
	user := prompt
	if user == "" {
		user = content
	} else if content != "" {
		user = prompt + "\n\nEmail content:\n" + content
	}

	text, err := s.provider.Complete(ctx, system, user)
	if err != nil {
		return nil, domain.WrapError(err, domain.EPROVIDER, op, "Failed to suggest subjects")
	}

	return &Suggestions{Subjects: parseSubjects(text)}, nil
}

// parseSubjects extracts three subjects from the provider response: a JSON
// array when the provider obeyed, otherwise the first three non-empty lines.
func parseSubjects(text string) []string {
	trimmed := strings.TrimSpace(text)

	var arr []string
	if err := json.Unmarshal([]byte(trimmed), &arr); err == nil {
		return firstThree(arr)
	}

	// Some models wrap JSON in a code fence.
	if stripped := stripCodeFence(trimmed); stripped != trimmed {
		if err := json.Unmarshal([]byte(stripped), &arr); err == nil {
			return firstThree(arr)
		}
	}

	var lines []string
	for _, line := range strings.Split(trimmed, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return firstThree(lines)
}

func firstThree(items []string) []string {
	out := make([]string, 0, 3)
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
		if len(out) == 3 {
			break
		}
	}
	return out
}

func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// placeholderSubjects builds three deterministic template subjects from
// whatever the caller provided.
func placeholderSubjects(prompt, content string) []string {
	topic := firstWords(prompt, 6)
	if topic == "" {
		topic = firstWords(content, 6)
	}
	if topic == "" {
		topic = "your email"
	}
	return []string{
		fmt.Sprintf("Regarding: %s", topic),
		fmt.Sprintf("Follow-up on %s", topic),
		fmt.Sprintf("Quick note about %s", topic),
	}
}

func firstWords(text string, n int) string {
	words := strings.Fields(text)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}

func normalizeTone(tone string) string {
	if !validTones[tone] {
		return ToneProfessional
	}
	return tone
}

func normalizeLength(length string) string {
	if !validLengths[length] {
		return LengthMedium
	}
	return length
}

func normalizeAction(action string) string {
	switch action {
	case ActionShorten, ActionExpand, ActionFormalize, ActionImprove:
		return action
	default:
		return ActionImprove
	}
}

func actionInstruction(action string) string {
	switch action {
	case ActionShorten:
		return "Rewrite the following email to be roughly half as long while keeping every key point."
	case ActionExpand:
		return "Expand the following email with additional supporting detail and context."
	case ActionFormalize:
		return "Rewrite the following email in a formal business register."
	default:
		return "Improve the clarity, flow and wording of the following email."
	}
}

// localRewrite is the mechanical fallback applied when no provider is
// configured. It is deliberately dumb and clearly flagged as degraded.
func localRewrite(content, action string) string {
	switch action {
	case ActionShorten:
		lines := strings.Split(content, "\n")
		keep := (len(lines) + 1) / 2
		return strings.Join(lines[:keep], "\n")
	case ActionExpand:
		return content + "\n\nI wanted to add a bit more context to the above. " +
			"Please let me know if you have any questions or need further details, " +
			"and I would be happy to elaborate on any point."
	case ActionFormalize:
		return "Dear Sir or Madam,\n\n" + content + "\n\nYours faithfully,"
	default:
		return content
	}
}
