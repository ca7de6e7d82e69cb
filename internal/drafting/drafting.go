// Package drafting turns a scheduled plan item into a first-pass content brief
// using a structured LLM completion.
package drafting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"basegraph.app/cadence/common/llm"
	"basegraph.app/cadence/common/logger"
	"basegraph.app/cadence/internal/model"
)

// ErrDraftingDisabled is returned when no LLM client is configured.
var ErrDraftingDisabled = errors.New("drafting is disabled")

const (
	maxAttempts   = 3
	promptVersion = "v1"
)

// Draft is the brief returned for one plan item.
type Draft struct {
	Headline     string   `json:"headline" jsonschema_description:"Final headline, at most 80 characters"`
	Summary      string   `json:"summary" jsonschema_description:"Two or three sentences on what the piece covers and for whom"`
	Outline      []string `json:"outline" jsonschema_description:"Ordered section headings, 3 to 7 entries"`
	CallToAction string   `json:"call_to_action" jsonschema_description:"One sentence telling the reader what to do next"`
}

var draftSchema = llm.GenerateSchema[Draft]()

// ItemLoader resolves a plan item. Errors are returned to the caller as is.
type ItemLoader interface {
	GetItem(ctx context.Context, planID, itemID int64) (*model.PlanItem, error)
}

type Service struct {
	llm   llm.Client
	items ItemLoader
	sleep func(ctx context.Context, d time.Duration) error
}

// NewService returns a drafting service. A nil client yields a service whose
// Draft always fails with ErrDraftingDisabled.
func NewService(client llm.Client, items ItemLoader) *Service {
	return &Service{llm: client, items: items, sleep: sleepContext}
}

// WithSleep replaces the retry backoff sleeper. A non-nil error from sleep
// aborts the draft.
func (s *Service) WithSleep(sleep func(ctx context.Context, d time.Duration) error) *Service {
	s.sleep = sleep
	return s
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Service) Enabled() bool {
	return s != nil && s.llm != nil
}

func (s *Service) Draft(ctx context.Context, planID, itemID int64) (*Draft, error) {
	if !s.Enabled() {
		return nil, ErrDraftingDisabled
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		PlanID:    logger.Ptr(planID),
		Component: "cadence.drafting",
	})

	item, err := s.items.GetItem(ctx, planID, itemID)
	if err != nil {
		return nil, err
	}

	prompt := buildPrompt(item.PlanItemDraft)
	start := time.Now()

	var draft Draft
	var resp *llm.Response
	for attempt := 0; attempt < maxAttempts; attempt++ {
		draft = Draft{}
		resp, err = s.llm.Chat(ctx, llm.Request{
			SystemPrompt: systemPrompt,
			UserPrompt:   prompt,
			SchemaName:   "content_draft",
			Schema:       draftSchema,
			Temperature:  llm.Temp(0.7),
		}, &draft)
		if err == nil {
			break
		}
		if !llm.IsRetryable(ctx, err) {
			return nil, fmt.Errorf("drafting item: %w", err)
		}
		slog.WarnContext(ctx, "draft retry", "item_id", itemID, "attempt", attempt+1, "error", err)
		if attempt < maxAttempts-1 {
			if serr := s.sleep(ctx, time.Duration(1<<attempt)*time.Second); serr != nil {
				return nil, fmt.Errorf("drafting item: %w", serr)
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("drafting item after %d attempts: %w", maxAttempts, err)
	}

	if draft.Outline == nil {
		draft.Outline = []string{}
	}

	attrs := []any{
		"item_id", itemID,
		"model", s.llm.Model(),
		"prompt_version", promptVersion,
		"latency_ms", time.Since(start).Milliseconds(),
	}
	if resp != nil {
		attrs = append(attrs, "prompt_tokens", resp.PromptTokens, "completion_tokens", resp.CompletionTokens)
	}
	slog.InfoContext(ctx, "draft generated", attrs...)

	return &draft, nil
}

func buildPrompt(item model.PlanItemDraft) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "## Channel\n%s\n\n", item.Channel)
	fmt.Fprintf(&sb, "## Working title\n%s\n\n", item.Title)
	fmt.Fprintf(&sb, "## Topic\n%s (primary keyword: %s)\n\n", item.ClusterLabel, item.PrimaryKeyword)

	if len(item.SecondaryKeywords) > 0 {
		sb.WriteString("## Secondary keywords\n")
		for _, kw := range item.SecondaryKeywords {
			fmt.Fprintf(&sb, "- %s\n", kw)
		}
		sb.WriteString("\n")
	}

	writeLinks(&sb, "Internal links to weave in", item.InternalLinks)
	writeLinks(&sb, "External sources to cite", item.ExternalLinks)

	if item.Note != "" {
		fmt.Fprintf(&sb, "## Note\n%s\n", item.Note)
	}
	return sb.String()
}

func writeLinks(sb *strings.Builder, heading string, links []model.LinkSuggestion) {
	if len(links) == 0 {
		return
	}
	fmt.Fprintf(sb, "## %s\n", heading)
	for _, l := range links {
		if l.Title != "" {
			fmt.Fprintf(sb, "- %s (%s)\n", l.Title, l.URL)
		} else {
			fmt.Fprintf(sb, "- %s\n", l.URL)
		}
	}
	sb.WriteString("\n")
}

const systemPrompt = `You write content briefs for a marketing team's publication calendar.

Given a scheduled item, produce a brief the writer can start from.

## Channels

- blog: long-form article, outline of 4 to 7 sections
- linkedin: short post, outline of 3 beats
- newsletter: digest intro that ties the combined topics together
- landing: conversion page, outline of page sections

## Rules

- Keep the primary keyword in the headline when it reads naturally
- Use secondary keywords in outline headings, never stuffed
- Mention where internal links fit in the outline
- Plain language, no hype words
- A "(test)" note means the topic underperformed: propose a fresh angle`
