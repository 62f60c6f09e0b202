// Package compress rewrites an agent transcript that outgrew its token
// budget into a compact digest. Compression is lossy and total: the result
// is the system prompt plus one user message carrying the digest, so
// anything worth keeping verbatim must already live in the knowledge store.
package compress

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/taskforce/core"
	"github.com/hupe1980/taskforce/logging"
	"github.com/hupe1980/taskforce/model"
	"github.com/hupe1980/taskforce/tokenizer"
)

// DefaultThreshold is the transcript size in tokens above which compression
// kicks in.
const DefaultThreshold = 400000

// DigestSystemPrompt instructs the model during the digest call.
const DigestSystemPrompt = "You are an expert at creating structured, information-dense summaries that preserve critical context."

// ResumeInstruction follows the digest in the rewritten transcript.
const ResumeInstruction = "Here is the compressed version of what has happened so far. Pick up where you left off and continue completing the task."

const digestTemplate = `Analyze this conversation and create a structured summary for management tracking:

%s

Provide a summary in this format:

**PROGRESS MADE:**
- List what tasks have been completed or are in progress
- Note which tools were used and their success/failure status
- Track overall project status

**DATABASE STORAGE:**
- **CRITICAL**: List ALL database IDs with a brief description of what each contains
- Format: "ID_12345: Market analysis data from Agent A"
- Include any file paths, URLs, or references needed for retrieval
- This is the master index for all collected information

**TASK ASSIGNMENTS:**
- Which agents have been assigned what tasks
- Status of each delegation (pending, completed, failed)
- Any agents still working or waiting for instructions

**NEXT STEPS:**
- What still needs to be done to complete the task
- Which database IDs need to be retrieved for the final answer
- Any remaining delegations or coordination needed

Keep it concise - the summary is for tracking and coordination, not storing detailed findings.`

// Options configure a Compressor.
type Options struct {
	// Counter measures transcripts. Defaults to tokenizer.HeuristicCounter.
	Counter tokenizer.Counter
	// Threshold in tokens. Defaults to DefaultThreshold.
	Threshold int
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// Compressor decides when a transcript is too large and produces its digest.
// It holds no per-run state and may be shared by concurrent agents.
type Compressor struct {
	model     model.Model
	counter   tokenizer.Counter
	threshold int
	logger    logging.Logger
}

// New creates a Compressor that summarizes with m.
func New(m model.Model, optFns ...func(o *Options)) *Compressor {
	opts := Options{
		Counter:   tokenizer.HeuristicCounter{},
		Threshold: DefaultThreshold,
		Logger:    logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Counter == nil {
		opts.Counter = tokenizer.HeuristicCounter{}
	}

	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Compressor{model: m, counter: opts.Counter, threshold: opts.Threshold, logger: opts.Logger}
}

// Threshold returns the configured budget in tokens.
func (c *Compressor) Threshold() int { return c.threshold }

// ShouldCompress reports whether transcript exceeds the budget.
func (c *Compressor) ShouldCompress(transcript []core.Message) bool {
	return c.counter.CountMessages(transcript) > c.threshold
}

// Compress summarizes transcript with one model call and returns
// [system(systemPrompt), user(digest)].
func (c *Compressor) Compress(ctx context.Context, transcript []core.Message, systemPrompt string) ([]core.Message, error) {
	start := time.Now()

	resp, err := model.Complete(ctx, c.model, model.Request{Messages: []core.Message{
		core.NewSystemMessage(DigestSystemPrompt),
		core.NewUserMessage(DigestPrompt(transcript)),
	}})
	if err != nil {
		return nil, fmt.Errorf("compress transcript: %w", err)
	}

	c.logger.Info("compress.done",
		"messages_before", len(transcript),
		"tokens_before", c.counter.CountMessages(transcript),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return []core.Message{
		core.NewSystemMessage(systemPrompt),
		core.NewUserMessage(Summary(resp.Text)),
	}, nil
}

// Summary renders the user message that replaces a compressed history.
func Summary(digest string) string {
	return "CONTEXT SUMMARY:\n" + digest + "\n\n" + ResumeInstruction
}

// DigestPrompt renders the digest request for transcript. A leading system
// message is left out; it is restored verbatim after compression.
func DigestPrompt(transcript []core.Message) string {
	msgs := transcript
	if len(msgs) > 0 && msgs[0].Role == core.RoleSystem {
		msgs = msgs[1:]
	}

	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		parts = append(parts, strings.ToUpper(string(m.Role))+": "+m.Content)
	}

	return fmt.Sprintf(digestTemplate, strings.Join(parts, "\n\n"))
}
