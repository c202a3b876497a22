// Package answer implements docs-only mode: retrieval-augmented answering
// strictly grounded in the indexed documentation.
//
// The grounding guarantee: when retrieval yields no sufficiently relevant
// chunk, the reply is exactly NotFoundReply with no citations; the model
// is never asked to answer from thin air.
package answer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/navassist/docbot/internal/index"
	"github.com/navassist/docbot/internal/llm"
)

// NotFoundReply is the fixed reply when nothing relevant is indexed.
const NotFoundReply = "I couldn't find anything about that in the documentation manuals."

// MaxCitations bounds how many source references a reply carries.
const MaxCitations = 2

// maxQuotedRunes is the longest double-quoted span allowed to pass through
// verbatim; longer spans are shortened to reduce verbatim-leak risk.
const maxQuotedRunes = 60

// ErrEmptyQuestion indicates the request carried no question text.
var ErrEmptyQuestion = errors.New("question is required")

// longQuote matches double-quoted spans longer than maxQuotedRunes bytes.
// Byte length over-approximates rune length, which only makes the check
// stricter for multi-byte text.
var longQuote = regexp.MustCompile(fmt.Sprintf(`"[^"\n]{%d,}"`, maxQuotedRunes+1))

// Retriever is the nearest-neighbor search behavior the answerer depends on.
type Retriever interface {
	Search(ctx context.Context, query string, k int, minScore float32) ([]index.Chunk, error)
}

// Citation points a reply back at a likely source page.
type Citation struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Result is a grounded answer with its citations.
type Result struct {
	Reply     string     `json:"reply"`
	Citations []Citation `json:"citations"`
}

// Config holds the answerer settings.
type Config struct {
	TopK        int
	MinScore    float32
	Temperature float32 // low, grounded sampling temperature
	Tone        string
}

// Answerer produces grounded answers with citations.
type Answerer struct {
	retriever Retriever
	completer llm.Completer
	cfg       Config
	logger    *slog.Logger
}

// New creates an Answerer.
func New(retriever Retriever, completer llm.Completer, cfg Config, logger *slog.Logger) *Answerer {
	if cfg.TopK <= 0 {
		cfg.TopK = 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Answerer{
		retriever: retriever,
		completer: completer,
		cfg:       cfg,
		logger:    logger,
	}
}

// Answer retrieves the top-scoring chunks for question and asks the model
// to answer using only that material.
func (a *Answerer) Answer(ctx context.Context, question string) (*Result, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	chunks, err := a.retriever.Search(ctx, question, a.cfg.TopK, a.cfg.MinScore)
	if err != nil {
		return nil, fmt.Errorf("retrieving sources: %w", err)
	}
	if len(chunks) == 0 {
		a.logger.Debug("no relevant chunks", "question_len", len(question))
		return &Result{Reply: NotFoundReply, Citations: []Citation{}}, nil
	}

	reply, err := a.completer.Complete(ctx,
		[]llm.Message{{Role: llm.RoleUser, Content: buildUserPrompt(question, chunks)}},
		llm.CompleteOptions{
			System:      a.systemPrompt(),
			Temperature: a.cfg.Temperature,
		})
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	reply = shortenLongQuotes(strings.TrimSpace(reply))
	if reply == "" {
		a.logger.Warn("model returned empty grounded reply")
		return &Result{Reply: NotFoundReply, Citations: []Citation{}}, nil
	}

	return &Result{Reply: reply, Citations: citations(chunks)}, nil
}

// systemPrompt restricts the model to the supplied sources and sets tone.
func (a *Answerer) systemPrompt() string {
	tone := a.cfg.Tone
	if tone == "" {
		tone = "friendly and concise"
	}
	var b strings.Builder
	b.WriteString("You are a documentation assistant. Answer using ONLY the source excerpts provided in the user message. ")
	b.WriteString("If the excerpts do not contain the answer, say you could not find it in the manuals. ")
	b.WriteString("Keep the answer " + tone + " and conversational. ")
	b.WriteString("Paraphrase in your own words instead of quoting the sources verbatim. ")
	b.WriteString("End your answer with a single line starting with \"Source:\" naming the manual page you relied on.")
	return b.String()
}

// buildUserPrompt embeds the question plus the labeled source excerpts.
func buildUserPrompt(question string, chunks []index.Chunk) string {
	var b strings.Builder
	b.WriteString("Question: ")
	b.WriteString(question)
	b.WriteString("\n\nSource excerpts:\n")
	for i, c := range chunks {
		fmt.Fprintf(&b, "\n[%d] %s (%s)\n%s\n", i+1, c.Title, c.SourceURL, c.Text)
	}
	return b.String()
}

// citations returns up to MaxCitations distinct sources from the ranked
// chunks. These are likely sources, not verified-used ones.
func citations(chunks []index.Chunk) []Citation {
	out := make([]Citation, 0, MaxCitations)
	seen := make(map[string]struct{}, MaxCitations)
	for _, c := range chunks {
		if _, dup := seen[c.SourceURL]; dup {
			continue
		}
		seen[c.SourceURL] = struct{}{}
		out = append(out, Citation{URL: c.SourceURL, Title: c.Title})
		if len(out) == MaxCitations {
			break
		}
	}
	return out
}

// shortenLongQuotes replaces over-long double-quoted spans with a
// shortened excerpt marker.
func shortenLongQuotes(reply string) string {
	return longQuote.ReplaceAllStringFunc(reply, func(match string) string {
		inner := []rune(match[1 : len(match)-1])
		if len(inner) <= maxQuotedRunes {
			return match
		}
		return `"` + string(inner[:maxQuotedRunes]) + `..." (excerpt shortened)`
	})
}
