// Package triage classifies mail items by urgency and drafts replies for the
// urgent ones.
package triage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"mailwatch/internal/agent"
	"mailwatch/internal/graph"
	"mailwatch/internal/observability"
)

// ErrClassificationUnavailable wraps generator failures during classification.
var ErrClassificationUnavailable = errors.New("triage: classification unavailable")

var (
	classifyOptions = agent.Options{Temperature: 0.3, MaxTokens: 150}
	suggestOptions  = agent.Options{Temperature: 0.5, MaxTokens: 300}
)

type Result struct {
	Item       graph.MailItem
	Urgency    Urgency
	Suggestion string
}

// Notifier receives every High result.
type Notifier interface {
	Notify(ctx context.Context, r Result) error
}

type Pipeline struct {
	gen      agent.Generator
	notifier Notifier
	log      *observability.Logger
}

func NewPipeline(gen agent.Generator, notifier Notifier, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		gen:      gen,
		notifier: notifier,
		log:      observability.Component(logger, "triage"),
	}
}

// Classify never fails: an unusable or missing answer maps to DefaultUrgency.
func (p *Pipeline) Classify(ctx context.Context, item graph.MailItem) Urgency {
	ctx, span := observability.StartSpan(ctx, "triage.classify")
	defer span.End()

	p.log.Debug(ctx, "classifying email", "subject", observability.Truncate(item.Subject, 50))
	answer, err := p.generate(ctx, ClassifyPrompt(item), classifyOptions)
	if err != nil {
		p.log.Warn(ctx, "model returned no answer, using default urgency",
			"default", string(DefaultUrgency),
			"error", fmt.Errorf("%w: %w", ErrClassificationUnavailable, err).Error(),
		)
		return DefaultUrgency
	}

	urgency, ok := ParseUrgency(answer)
	if !ok {
		p.log.Warn(ctx, "unexpected model answer, using default urgency", "answer", observability.Truncate(answer, 80), "default", string(DefaultUrgency))
		return urgency
	}
	span.SetAttributes(attribute.String("urgency", string(urgency)))
	p.log.Info(ctx, "email classified", "urgency", string(urgency))
	return urgency
}

func (p *Pipeline) SuggestReply(ctx context.Context, item graph.MailItem) (string, error) {
	ctx, span := observability.StartSpan(ctx, "triage.suggest")
	defer span.End()

	text, err := p.generate(ctx, SuggestPrompt(item), suggestOptions)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("suggest reply: %w", err)
	}
	return text, nil
}

// Process classifies item and, for High items, attaches a reply suggestion
// and notifies. Suggestion and notification failures never change the urgency.
func (p *Pipeline) Process(ctx context.Context, item graph.MailItem) Result {
	res := Result{Item: item, Urgency: p.Classify(ctx, item)}
	if res.Urgency != High {
		return res
	}

	suggestion, err := p.SuggestReply(ctx, item)
	if err != nil {
		p.log.Warn(ctx, "reply suggestion failed, using fallback text", "error", err.Error())
		suggestion = fallbackReply
	}
	res.Suggestion = suggestion

	if p.notifier != nil {
		if err := p.notifier.Notify(ctx, res); err != nil {
			p.log.Warn(ctx, "urgent email notification failed", "error", err.Error())
		}
	}
	return res
}

func (p *Pipeline) generate(ctx context.Context, prompt string, opts agent.Options) (string, error) {
	if p.gen == nil {
		return "", agent.ErrEmptyResponse
	}
	return p.gen.Generate(ctx, agent.UserPrompt(prompt), opts)
}
