package query

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_generator.go -package=mocks aireas/internal/query StructuredGenerator

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"

	"aireas/internal/contextutil"
	"aireas/internal/service"
)

// StructuredGenerator runs a schema-constrained completion and decodes the
// result into out.
type StructuredGenerator interface {
	GenerateStructured(ctx context.Context, prompt string, schema *genai.Schema, out any) error
}

// Kind classifies a user question by how it should be retrieved.
type Kind string

const (
	// KindSimple questions map to a single retrieval query.
	KindSimple Kind = "simple"
	// KindCompound questions bundle several sub-questions and are split
	// before retrieval.
	KindCompound Kind = "compound"
)

// Processed is the retrieval-ready form of a user question.
type Processed struct {
	Kind Kind
	// Query is the text handed to retrieval: the rephrased question for a
	// simple one, or the comma-joined sub-questions for a compound one.
	Query string
	// SubQuestions holds the individual sub-questions of a compound question.
	SubQuestions []string
}

// Processor rewrites raw user questions into retrieval-ready queries using
// structured model calls.
type Processor struct {
	llm StructuredGenerator
}

// NewProcessor creates a query processor.
func NewProcessor(llm StructuredGenerator) (*Processor, error) {
	if llm == nil {
		return nil, fmt.Errorf("structured generator is required")
	}
	return &Processor{llm: llm}, nil
}

var classifySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"kind": {
			Type:        genai.TypeString,
			Enum:        []string{string(KindSimple), string(KindCompound)},
			Description: "Whether the question asks one thing or bundles several.",
		},
	},
	Required: []string{"kind"},
}

var decomposeSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"sub_questions": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "The standalone sub-questions contained in the input, at most three.",
		},
	},
	Required: []string{"sub_questions"},
}

var rephraseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"question": {
			Type:        genai.TypeString,
			Description: "The question rewritten as a single standalone retrieval query.",
		},
	},
	Required: []string{"question"},
}

// Process classifies the question and routes it: compound questions are
// decomposed into sub-questions, simple ones are rephrased standalone.
func (p *Processor) Process(ctx context.Context, question string) (Processed, error) {
	logger := contextutil.LoggerFromContext(ctx)

	question = strings.TrimSpace(question)
	if question == "" {
		return Processed{}, service.WrapError(service.ErrInvalidInput, fmt.Errorf("question is empty"))
	}

	kind, err := p.Classify(ctx, question)
	if err != nil {
		return Processed{}, err
	}

	if kind == KindCompound {
		subs, err := p.Decompose(ctx, question)
		if err != nil {
			return Processed{}, err
		}
		logger.InfoContext(ctx, "question decomposed", "sub_questions", len(subs))
		return Processed{Kind: KindCompound, Query: strings.Join(subs, ", "), SubQuestions: subs}, nil
	}

	rephrased, err := p.Rephrase(ctx, question)
	if err != nil {
		return Processed{}, err
	}
	return Processed{Kind: KindSimple, Query: rephrased, SubQuestions: []string{rephrased}}, nil
}

// Classify decides whether a question is simple or compound.
func (p *Processor) Classify(ctx context.Context, question string) (Kind, error) {
	prompt := fmt.Sprintf(
		"Classify the following question. A question is %q when it bundles multiple distinct questions, %q when it asks one thing.\n\nQuestion: %s",
		KindCompound, KindSimple, question,
	)

	var out struct {
		Kind string `json:"kind"`
	}
	if err := p.llm.GenerateStructured(ctx, prompt, classifySchema, &out); err != nil {
		return "", service.WrapError(service.ErrExternalService, err)
	}

	switch Kind(out.Kind) {
	case KindSimple, KindCompound:
		return Kind(out.Kind), nil
	default:
		return "", service.WrapError(service.ErrSchemaViolation, fmt.Errorf("unknown classification %q", out.Kind))
	}
}

// Decompose splits a compound question into at most three lower-cased
// standalone sub-questions. Blank sub-questions are dropped.
func (p *Processor) Decompose(ctx context.Context, question string) ([]string, error) {
	prompt := fmt.Sprintf(
		"Break the following question into at most three standalone sub-questions, each answerable on its own.\n\nQuestion: %s",
		question,
	)

	var out struct {
		SubQuestions []string `json:"sub_questions"`
	}
	if err := p.llm.GenerateStructured(ctx, prompt, decomposeSchema, &out); err != nil {
		return nil, service.WrapError(service.ErrExternalService, err)
	}

	subs := make([]string, 0, 3)
	for _, s := range out.SubQuestions {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		subs = append(subs, s)
		if len(subs) == 3 {
			break
		}
	}
	if len(subs) == 0 {
		return nil, service.WrapError(service.ErrSchemaViolation, fmt.Errorf("decomposition produced no sub-questions"))
	}
	return subs, nil
}

// Rephrase rewrites a question as a single lower-cased standalone query.
func (p *Processor) Rephrase(ctx context.Context, question string) (string, error) {
	prompt := fmt.Sprintf(
		"Rewrite the following question as a single standalone retrieval query, keeping all named entities.\n\nQuestion: %s",
		question,
	)

	var out struct {
		Question string `json:"question"`
	}
	if err := p.llm.GenerateStructured(ctx, prompt, rephraseSchema, &out); err != nil {
		return "", service.WrapError(service.ErrExternalService, err)
	}

	rephrased := strings.ToLower(strings.TrimSpace(out.Question))
	if rephrased == "" {
		return "", service.WrapError(service.ErrSchemaViolation, fmt.Errorf("rephrasing produced no question"))
	}
	return rephrased, nil
}
