package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"smart-todo/internal/model"
	"smart-todo/internal/repository"
	"smart-todo/internal/service"
	"smart-todo/internal/suggest"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageTitle
	stageDescription
	stageReview
)

const (
	draftSuggest = "suggest"
	draftSave    = "save"
	draftDiscard = "discard"
)

type conversationState struct {
	stage   conversationStage
	session *suggest.Session
}

// startDraft opens a new editing session for the chat. A title given with
// the command skips the first question.
func (b *Bot) startDraft(chatID int64, title string) error {
	state := &conversationState{
		stage:   stageTitle,
		session: suggest.NewSession(suggest.NewDraft(title)),
	}
	b.setConversation(chatID, state)
	b.logger.Info("draft started", zap.String("session", state.session.ID()))

	if title == "" {
		return b.sendWithReplyMarkup(chatID, "🆕 New task.\n<b>Step 1:</b> what should it be called?", cancelKeyboard())
	}
	state.stage = stageDescription
	return b.sendWithReplyMarkup(chatID, "✏️ Add a short description (or press «Skip»).", skipKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message, state *conversationState) error {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	switch state.stage {
	case stageTitle:
		if text == "" {
			return b.sendWithReplyMarkup(chatID, "The title cannot be empty.", cancelKeyboard())
		}
		state.session.Edit(func(d *suggest.TaskDraft) { d.Title = text })
		state.stage = stageDescription
		return b.sendWithReplyMarkup(chatID, "✏️ Add a short description (or press «Skip»).", skipKeyboard())
	case stageDescription:
		if !isSkipInput(text) {
			state.session.Edit(func(d *suggest.TaskDraft) { d.Description = text })
		}
		state.stage = stageReview
		return b.sendDraft(ctx, chatID, state.session.Draft(), nil)
	case stageReview:
		categories, err := b.svc.Categories.List(ctx)
		if err != nil {
			return b.sendText(chatID, fmt.Sprintf("Could not load categories: %s", escape(err.Error())))
		}
		edit, err := parseDraftEdit(text, categories)
		if err != nil {
			return b.sendText(chatID, escape(err.Error()))
		}
		draft := state.session.Edit(edit)
		return b.sendDraft(ctx, chatID, draft, nil)
	default:
		b.clearConversation(chatID)
		return b.sendText(chatID, "The dialog was reset. Start again with /newtask.")
	}
}

func (b *Bot) handleDraftAction(ctx context.Context, chatID int64, action string) error {
	state := b.getConversation(chatID)
	if state == nil || state.stage != stageReview {
		return b.sendText(chatID, "There is no draft to work on. Start one with /newtask.")
	}

	switch action {
	case draftSuggest:
		if err := b.sendWithReplyMarkup(chatID, "🤔 Thinking…", tgbotapi.NewRemoveKeyboard(true)); err != nil {
			return err
		}
		b.inflight.Add(1)
		go b.runSuggestion(ctx, chatID, state.session)
		return nil
	case draftSave:
		return b.saveDraft(ctx, chatID, state.session)
	case draftDiscard:
		b.clearConversation(chatID)
		return b.sendText(chatID, "✖️ Draft discarded.")
	default:
		return nil
	}
}

// runSuggestion asks the engine for the missing fields. A newer request on
// the same session makes this one stale and it stays silent.
func (b *Bot) runSuggestion(ctx context.Context, chatID int64, session *suggest.Session) {
	defer b.inflight.Done()

	outcome, err := b.svc.Engine.Suggest(ctx, session)
	var sendErr error
	switch {
	case errors.Is(err, suggest.ErrStaleSuggestion):
		return
	case errors.Is(err, suggest.ErrInvalidDraft):
		sendErr = b.sendText(chatID, "Add a title or a description first.")
	case errors.Is(err, suggest.ErrMalformedSuggestion):
		b.logger.Warn("unusable suggestion", zap.String("session", session.ID()), zap.Error(err))
		sendErr = b.sendDraft(ctx, chatID, session.Draft(), nil, "⚠️ The suggestion could not be read. The draft is unchanged.")
	case err != nil:
		b.logger.Error("suggestion failed", zap.String("session", session.ID()), zap.Error(err))
		sendErr = b.sendDraft(ctx, chatID, session.Draft(), nil, "⚠️ No suggestion right now. The draft is unchanged.")
	default:
		sendErr = b.sendDraft(ctx, chatID, outcome.Draft, &outcome.Report)
	}
	if sendErr != nil {
		b.logger.Error("send suggestion", zap.Error(sendErr))
	}
}

func (b *Bot) saveDraft(ctx context.Context, chatID int64, session *suggest.Session) error {
	task, err := b.svc.Tasks.Create(ctx, session.Draft())
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return b.sendText(chatID, escape(err.Error()))
		}
		return b.sendText(chatID, fmt.Sprintf("Could not save the task: %s", escape(err.Error())))
	}
	b.clearConversation(chatID)

	if err := b.sendText(chatID, fmt.Sprintf("💾 Task #%d «%s» saved.", task.ID, escape(normalizeTitle(task.Title)))); err != nil {
		return err
	}
	return b.sendTaskList(ctx, chatID, repository.TaskFilter{}, true)
}

func (b *Bot) sendDraft(ctx context.Context, chatID int64, draft suggest.TaskDraft, report *suggest.MergeReport, notes ...string) error {
	categories, _ := b.svc.Categories.List(ctx)
	catNames := make(map[uint]string, len(categories))
	for _, cat := range categories {
		catNames[cat.ID] = cat.Name
	}

	var builder strings.Builder
	builder.WriteString(formatDraft(draft, catNames))
	if report != nil {
		builder.WriteString(formatReport(*report))
	}
	for _, note := range notes {
		builder.WriteString("\n" + note)
	}
	builder.WriteString("\n\n<i>Edit with a line like</i> <code>deadline: 2025-07-01</code>, <code>priority: 0.8</code> <i>or</i> <code>category: Work</code>.")

	return b.sendWithReplyMarkup(chatID, builder.String(), draftKeyboard())
}

// editError is a message for the owner about a rejected draft edit.
type editError string

func (e editError) Error() string { return string(e) }

// parseDraftEdit reads one "field: value" line typed during review.
func parseDraftEdit(text string, categories []model.Category) (func(*suggest.TaskDraft), error) {
	key, value, ok := strings.Cut(text, ":")
	if !ok {
		return nil, editError("Use «field: value», for example «priority: 0.8».")
	}
	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)
	unset := value == "-" || strings.EqualFold(value, "none")

	switch key {
	case "title":
		if value == "" {
			return nil, editError("The title cannot be empty.")
		}
		return func(d *suggest.TaskDraft) { d.Title = value }, nil
	case "description":
		if unset {
			value = ""
		}
		return func(d *suggest.TaskDraft) { d.Description = value }, nil
	case "deadline":
		if unset {
			return func(d *suggest.TaskDraft) { d.Deadline = nil }, nil
		}
		deadline, err := suggest.ParseDeadline(value)
		if err != nil {
			return nil, editError("Use a date like 2025-07-01 or 2025-07-01T17:00.")
		}
		return func(d *suggest.TaskDraft) { d.Deadline = &deadline }, nil
	case "priority":
		priority, err := strconv.ParseFloat(value, 64)
		if err != nil || priority < 0 || priority > 1 {
			return nil, editError("Priority is a number from 0 to 1.")
		}
		return func(d *suggest.TaskDraft) { d.PriorityScore = priority }, nil
	case "category":
		if unset {
			return func(d *suggest.TaskDraft) { d.CategoryID = nil }, nil
		}
		res := suggest.Resolve(value, categories)
		if res.Unresolved() {
			return nil, editError(fmt.Sprintf("Unknown category «%s». Add it with /addcategory %s.", value, value))
		}
		id := res.ID
		return func(d *suggest.TaskDraft) { d.CategoryID = &id }, nil
	default:
		return nil, editError(fmt.Sprintf("Unknown field «%s». Use title, description, deadline, priority or category.", key))
	}
}

func (b *Bot) setConversation(chatID int64, state *conversationState) {
	b.mu.Lock()
	previous := b.conversations[chatID]
	b.conversations[chatID] = state
	b.mu.Unlock()

	if previous != nil {
		previous.session.Close()
	}
}

func (b *Bot) getConversation(chatID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[chatID]
}

func (b *Bot) clearConversation(chatID int64) {
	b.mu.Lock()
	state := b.conversations[chatID]
	delete(b.conversations, chatID)
	b.mu.Unlock()

	if state != nil {
		state.session.Close()
	}
}

func (b *Bot) closeConversations() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for chatID, state := range b.conversations {
		state.session.Close()
		delete(b.conversations, chatID)
	}
}
