// Package bot contains the message pipeline: every fetched relay item runs
// through normalization, the group filter, persistence and the /summary
// command check, and a well-formed command triggers the summary round trip
// back into the chat.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jholhewres/sumbot/pkg/sumbot/signal"
	"github.com/jholhewres/sumbot/pkg/sumbot/store"
)

// commandSummary is the exact text that triggers a summary. Anything else,
// including variations with arguments or whitespace, is a plain message.
const commandSummary = "/summary"

// rejectionText is sent back to the group when /summary is not a reply. The
// quoted message marks where the discussion starts; without it there is no
// range to summarize.
const rejectionText = "ERROR: The command /summary must be a reply to the first message in the discussion, the chat logs from that point on will be summarized."

// systemPrompt is the fixed instruction given to the model along with the
// transcript.
const systemPrompt = `Your task is to summarize text messages. You will be given some messages of a group chat. Identify the discussion from the rest of the conversation, then summarize the discussion; disregard everything but the discussion you identify.

Format your summary as:

1. The overarching topic of discussion; if there are multiple, state that
2. Every person's viewpoints
3. A play by play: a more in-depth sequential timeline of the discussion

If you cannot find a discussion, respond with that instead of inventing one.`

// Dispatcher delivers a text message to the configured group.
type Dispatcher interface {
	SendText(ctx context.Context, text string) error
}

// Summarizer turns a transcript into summary text.
type Summarizer interface {
	Complete(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// Bot wires the store, the summarizer and the dispatcher into the per-item
// pipeline.
type Bot struct {
	store      store.MessageStore
	summarizer Summarizer
	dispatcher Dispatcher
	groupID    string
	limit      int
	logger     *slog.Logger
}

// New creates a Bot scoped to a single group. limit caps how many messages a
// summary covers.
func New(st store.MessageStore, summarizer Summarizer, dispatcher Dispatcher, groupID string, limit int, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		store:      st,
		summarizer: summarizer,
		dispatcher: dispatcher,
		groupID:    groupID,
		limit:      limit,
		logger:     logger.With("component", "bot"),
	}
}

// HandleItem runs one raw relay item through the pipeline. Items that carry
// no chat payload or belong to another group are skipped without error.
// Errors are returned for the caller's log sink; the caller decides batch
// isolation.
func (b *Bot) HandleItem(ctx context.Context, item signal.Item) error {
	msg, ok := signal.Normalize(item)
	if !ok {
		return nil
	}

	// Strict allow-list: the bot operates in exactly one group. Messages
	// from anywhere else are never persisted or processed.
	if msg.GroupID != b.groupID {
		b.logger.Debug("message from different group ignored", "group_id", msg.GroupID)
		return nil
	}

	// Persist unconditionally, commands included.
	id, err := b.store.Insert(ctx, store.ChatMessage{
		SourceNumber: msg.SourceNumber,
		SourceName:   msg.SourceName,
		Timestamp:    msg.Timestamp,
		GroupID:      msg.GroupID,
		Text:         msg.Text,
	})
	if err != nil {
		return fmt.Errorf("persisting message: %w", err)
	}
	b.logger.Debug("message logged",
		"id", id,
		"source", msg.SourceName,
		"timestamp", msg.Timestamp,
	)

	if msg.Text != commandSummary {
		return nil
	}

	if !msg.IsReply() {
		// Command misuse is answered in the chat, not treated as a system
		// error. A failed send is logged and swallowed.
		if err := b.dispatcher.SendText(ctx, rejectionText); err != nil {
			b.logger.Warn("failed to send rejection", "error", err)
		}
		return nil
	}

	return b.Summarize(ctx, msg.QuoteID)
}

// Summarize fetches the message range after the given anchor token, asks the
// model for a summary and sends the result to the group verbatim.
func (b *Bot) Summarize(ctx context.Context, afterToken string) error {
	return b.summarizeRange(ctx, afterToken, b.limit)
}

// SummarizeRecent summarizes the group's recent tail (no anchor). A
// non-positive limit falls back to the bot's configured limit.
func (b *Bot) SummarizeRecent(ctx context.Context, limit int) error {
	if limit <= 0 {
		limit = b.limit
	}
	return b.summarizeRange(ctx, "", limit)
}

func (b *Bot) summarizeRange(ctx context.Context, afterToken string, limit int) error {
	lines, err := b.store.RangeAfter(ctx, b.groupID, afterToken, limit)
	if err != nil {
		return fmt.Errorf("fetching message range: %w", err)
	}
	b.logger.Info("summary range fetched", "messages", len(lines), "anchor", afterToken)

	summary, err := b.summarizer.Complete(ctx, systemPrompt, formatTranscript(lines))
	if err != nil {
		return fmt.Errorf("generating summary: %w", err)
	}

	// The model's output is trusted as-is; no validation or retry.
	if err := b.dispatcher.SendText(ctx, summary); err != nil {
		b.logger.Warn("failed to send summary", "error", err)
	}
	return nil
}

// formatTranscript joins range lines as "sender: text", oldest first.
func formatTranscript(lines []store.Line) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, l.SourceName+": "+l.Text)
	}
	return strings.Join(parts, "\n")
}
