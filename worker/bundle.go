package worker

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/poiesic/secondbrain/core"
)

// Bundle is the string-keyed input or output of a task.
type Bundle map[string]string

// Input keys.
const (
	KeyTaskType           = "task_type"
	KeyContent            = "content"
	KeyURI                = "uri"
	KeyLanguage           = "language"
	KeySummaryType        = "summary_type"
	KeyMaxLength          = "max_length"
	KeyMaxTags            = "max_tags"
	KeyCustomInstructions = "custom_instructions"
	KeyAIModel            = "ai_model"
	KeyContentType        = "content_type"
	KeyCardID             = "card_id"
	KeyCardID2            = "card_id_2"
)

// Output keys.
const (
	KeyResult    = "result"
	KeyError     = "error"
	KeyErrorKind = "error_kind"
	KeyTaskID    = "task_id"
)

// Task types.
const (
	TaskSummarize       = "summarize"
	TaskTranscribe      = "transcribe"
	TaskExtractText     = "extract_text"
	TaskGenerateTags    = "generate_tags"
	TaskGenerateTitle   = "generate_title"
	TaskBuildGraph      = "build_graph"
	TaskFindConnections = "find_connections"
)

// Defaults applied when a bundle omits a parameter.
const (
	DefaultLanguage  = "en"
	DefaultMaxLength = 1000
	DefaultMaxTags   = 5
)

// Kinds reported under KeyErrorKind besides the ai.Kind names.
const (
	KindInvalidInput = "invalid_input"
	KindNotFound     = "not_found"
	KindCanceled     = "canceled"
)

// Err returns the error message of an output bundle and whether the task failed.
func (b Bundle) Err() (string, bool) {
	msg, ok := b[KeyError]
	return msg, ok
}

// Result returns the result of an output bundle.
func (b Bundle) Result() string {
	return b[KeyResult]
}

// Clone returns a copy of b.
func (b Bundle) Clone() Bundle {
	out := make(Bundle, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

func (b Bundle) text(key string) string {
	return strings.TrimSpace(b[key])
}

func (b Bundle) require(key string) (string, error) {
	v := b.text(key)
	if v == "" {
		return "", invalidInput("%s not specified", key)
	}
	return v, nil
}

func (b Bundle) language() string {
	if lang := b.text(KeyLanguage); lang != "" {
		return lang
	}
	return DefaultLanguage
}

// positive parses key as a positive integer. Missing or unusable values
// give def.
func (b Bundle) positive(key string, def int) int {
	n, err := strconv.Atoi(b.text(key))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// cardType decodes the content type hint. An unknown name is no hint.
func (b Bundle) cardType() core.CardType {
	t, err := core.ParseCardType(b.text(KeyContentType))
	if err != nil {
		return 0
	}
	return t
}

func (b Bundle) summarizationOptions() core.SummarizationOptions {
	return core.SummarizationOptions{
		Type:               core.ParseSummaryType(b.text(KeySummaryType)),
		Language:           b.language(),
		MaxLength:          b.positive(KeyMaxLength, DefaultMaxLength),
		CustomInstructions: b.text(KeyCustomInstructions),
	}
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
