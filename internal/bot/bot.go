package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"smart-todo/internal/model"
	"smart-todo/internal/repository"
	"smart-todo/internal/service"
	"smart-todo/internal/suggest"
	"smart-todo/internal/transfer"
)

const (
	cbCompletePrefix = "complete:"
	cbDeletePrefix   = "delete:"
	cbDraftPrefix    = "draft:"
)

const (
	btnSkip             = "⏭️ Skip"
	btnConfirm          = "✅ Confirm"
	btnCancel           = "↩️ Cancel"
	btnCancelDialog     = "⏪ Stop input"
	btnSuggest          = "✨ Suggest"
	btnSave             = "💾 Save"
	btnDiscard          = "✖️ Discard"
	noCategory          = "No category"
	noCategoryKey       = "__no_category__"
	menuLabelNewTask    = "➕ New task"
	menuLabelTasks      = "📋 Tasks"
	menuLabelCategories = "📂 Categories"
	menuLabelHelp       = "ℹ️ Help"
)

const (
	maxImportBytes  = 1 << 20
	recentContexts  = 10
	downloadTimeout = 30 * time.Second
)

type confirmationAction int

const (
	actionComplete confirmationAction = iota
	actionDelete
)

type confirmationRequest struct {
	taskID uint
	action confirmationAction
}

// telegramAPI is the part of tgbotapi.BotAPI the bot uses.
type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Services are the application components the bot talks to.
type Services struct {
	Tasks      *service.TaskService
	Categories *service.CategoryService
	Contexts   *service.ContextService
	Digest     *service.DigestService
	Engine     *suggest.Engine
	Reconciler *transfer.Reconciler
}

// Bot aggregates Telegram API with services. It answers only the owner chat.
type Bot struct {
	api        telegramAPI
	ownerID    int64
	svc        Services
	httpClient *http.Client
	logger     *zap.Logger

	conversations map[int64]*conversationState
	confirmations map[int64]confirmationRequest
	mu            sync.Mutex
	inflight      sync.WaitGroup
}

func New(token string, ownerID int64, svc Services, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	b := newBot(api, ownerID, svc, logger)
	b.logger.Info("bot authorized", zap.String("account", api.Self.UserName))
	return b, nil
}

func newBot(api telegramAPI, ownerID int64, svc Services, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{
		api:           api,
		ownerID:       ownerID,
		svc:           svc,
		httpClient:    &http.Client{Timeout: downloadTimeout},
		logger:        logger,
		conversations: make(map[int64]*conversationState),
		confirmations: make(map[int64]confirmationRequest),
	}
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.logger.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		b.handleUpdate(ctx, update)
	}

	b.inflight.Wait()
	b.closeConversations()
	return nil
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		cb := update.CallbackQuery
		if cb.Message == nil || !b.isOwner(cb.Message.Chat) {
			return
		}
		if err := b.handleCallback(ctx, cb); err != nil {
			b.logger.Error("handle callback", zap.Error(err))
		}
	case update.Message != nil:
		if !b.isOwner(update.Message.Chat) {
			if update.Message.Chat != nil {
				b.logger.Warn("ignored message from stranger", zap.Int64("chat_id", update.Message.Chat.ID))
			}
			return
		}
		if err := b.handleMessage(ctx, update.Message); err != nil {
			b.logger.Error("handle message", zap.Error(err))
		}
	}
}

func (b *Bot) isOwner(chat *tgbotapi.Chat) bool {
	return chat != nil && chat.IsPrivate() && chat.ID == b.ownerID
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID

	if msg.Document != nil {
		return b.handleImport(ctx, chatID, msg.Document)
	}

	if !msg.IsCommand() && isCancelDialogInput(msg.Text) {
		b.clearConversation(chatID)
		b.clearConfirmation(chatID)
		return b.sendText(chatID, "⏪ Input cancelled.")
	}

	if !msg.IsCommand() {
		if handled, err := b.handleMenuAlias(ctx, msg); handled {
			return err
		}
	}

	if msg.IsCommand() {
		b.logger.Info("command", zap.String("command", msg.Command()))
		return b.handleCommand(ctx, msg)
	}

	if pending, ok := b.getConfirmation(chatID); ok {
		return b.handleConfirmationResponse(ctx, msg, pending)
	}

	if state := b.getConversation(chatID); state != nil {
		return b.handleConversation(ctx, msg, state)
	}

	return b.sendText(chatID, "I did not get that. Use /newtask to add a task, /note to save context or /help for all commands.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start", "help":
		return b.handleHelp(chatID)
	case "note":
		return b.handleAddContext(ctx, chatID, args, model.SourceNote)
	case "email":
		return b.handleAddContext(ctx, chatID, args, model.SourceEmail)
	case "whatsapp":
		return b.handleAddContext(ctx, chatID, args, model.SourceWhatsApp)
	case "meeting":
		return b.handleAddContext(ctx, chatID, args, model.SourceMeeting)
	case "context":
		return b.handleListContext(ctx, chatID)
	case "newtask":
		return b.startDraft(chatID, args)
	case "tasks":
		return b.handleListTasks(ctx, chatID, args)
	case "done":
		return b.handleDone(ctx, chatID, args)
	case "delete":
		return b.handleDelete(ctx, chatID, args)
	case "categories":
		return b.handleCategories(ctx, chatID)
	case "addcategory":
		return b.handleAddCategory(ctx, chatID, args)
	case "export":
		return b.handleExport(ctx, chatID)
	case "digest":
		return b.handleDigest(ctx, chatID)
	case "cancel":
		b.clearConversation(chatID)
		b.clearConfirmation(chatID)
		return b.sendText(chatID, "⏪ Input cancelled.")
	default:
		return b.sendText(chatID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleHelp(chatID int64) error {
	text := "👋 <b>Smart todo</b>: I turn your notes into well-filled tasks.\n\n" +
		"<b>Context</b>\n" +
		"• /note, /email, /whatsapp, /meeting &lt;text&gt; — save context\n" +
		"• /context — recent context entries\n\n" +
		"<b>Tasks</b>\n" +
		"• /newtask [title] — draft a task and let me suggest the rest\n" +
		"• /tasks [pending|in_progress|completed] [text] — list or search tasks\n" +
		"• /done &lt;id&gt; — mark a task completed\n" +
		"• /delete &lt;id&gt; — delete a task\n" +
		"• /categories, /addcategory &lt;name&gt; — categories\n\n" +
		"<b>Data</b>\n" +
		"• /export — tasks as a JSON file\n" +
		"• send a JSON file to import it\n" +
		"• /digest — summary of open tasks\n" +
		"• /cancel — stop the current input"
	return b.sendText(chatID, text)
}

func (b *Bot) handleAddContext(ctx context.Context, chatID int64, content string, source model.SourceType) error {
	if content == "" {
		return b.sendText(chatID, fmt.Sprintf("Add the text after the command: /%s Call the client tomorrow", strings.ToLower(string(source))))
	}
	entry, err := b.svc.Contexts.Append(ctx, content, source)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not save context: %s", escape(err.Error())))
	}
	return b.sendText(chatID, fmt.Sprintf("📎 Saved context #%d (%s).", entry.ID, strings.ToLower(string(entry.SourceType))))
}

func (b *Bot) handleListContext(ctx context.Context, chatID int64) error {
	entries, err := b.svc.Contexts.List(ctx)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not load context: %s", escape(err.Error())))
	}
	if len(entries) == 0 {
		return b.sendText(chatID, "No context yet. Save some with /note.")
	}
	if len(entries) > recentContexts {
		entries = entries[:recentContexts]
	}

	var builder strings.Builder
	builder.WriteString("🗂 <b>Recent context</b>\n\n")
	for _, entry := range entries {
		builder.WriteString(formatContextEntry(entry))
	}
	return b.sendText(chatID, strings.TrimSpace(builder.String()))
}

// handleListTasks takes an optional status as the first word. Any other text
// is a search over title, description and category.
func (b *Bot) handleListTasks(ctx context.Context, chatID int64, args string) error {
	args = strings.TrimSpace(args)
	filter := repository.TaskFilter{}
	openOnly := args == ""
	if !openOnly {
		query := args
		first, rest, _ := strings.Cut(args, " ")
		if status, err := model.ParseStatus(first); err == nil {
			filter.Status = &status
			query = strings.TrimSpace(rest)
		}
		if query != "" {
			filter.Query = &query
		}
	}
	return b.sendTaskList(ctx, chatID, filter, openOnly)
}

func (b *Bot) handleDone(ctx context.Context, chatID int64, args string) error {
	taskID, err := parseID(args)
	if err != nil {
		return b.sendText(chatID, "Give the task id: /done 12")
	}

	task, err := b.svc.Tasks.SetStatus(ctx, taskID, model.StatusCompleted)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return b.sendText(chatID, "Task not found.")
		}
		return b.sendText(chatID, fmt.Sprintf("Error: %s", escape(err.Error())))
	}
	return b.sendText(chatID, fmt.Sprintf("✅ Task «%s» completed.", escape(normalizeTitle(task.Title))))
}

func (b *Bot) handleDelete(ctx context.Context, chatID int64, args string) error {
	taskID, err := parseID(args)
	if err != nil {
		return b.sendText(chatID, "Give the task id: /delete 12")
	}

	task, err := b.svc.Tasks.Get(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return b.sendText(chatID, "Task not found.")
		}
		return b.sendText(chatID, fmt.Sprintf("Error: %s", escape(err.Error())))
	}
	if err := b.svc.Tasks.Delete(ctx, taskID); err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not delete the task: %s", escape(err.Error())))
	}
	return b.sendText(chatID, fmt.Sprintf("🗑 Task «%s» deleted.", escape(normalizeTitle(task.Title))))
}

func (b *Bot) handleCategories(ctx context.Context, chatID int64) error {
	categories, err := b.svc.Categories.List(ctx)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not load categories: %s", escape(err.Error())))
	}
	if len(categories) == 0 {
		return b.sendText(chatID, "No categories yet. Add one with /addcategory Work.")
	}
	var builder strings.Builder
	builder.WriteString("📂 <b>Categories</b>\n")
	for _, cat := range categories {
		builder.WriteString(fmt.Sprintf("• %s <i>(used %d×)</i>\n", escape(strings.TrimSpace(cat.Name)), cat.UsageFrequency))
	}
	return b.sendText(chatID, strings.TrimSpace(builder.String()))
}

func (b *Bot) handleAddCategory(ctx context.Context, chatID int64, name string) error {
	category, err := b.svc.Categories.Add(ctx, name)
	switch {
	case errors.Is(err, service.ErrValidation):
		return b.sendText(chatID, "Give the category name: /addcategory Work")
	case errors.Is(err, repository.ErrDuplicateCategory):
		return b.sendText(chatID, "This category already exists.")
	case err != nil:
		return b.sendText(chatID, fmt.Sprintf("Could not add the category: %s", escape(err.Error())))
	}
	return b.sendText(chatID, fmt.Sprintf("🏷 Category «%s» added.", escape(category.Name)))
}

func (b *Bot) handleDigest(ctx context.Context, chatID int64) error {
	text, err := b.svc.Digest.Summary(ctx, time.Now())
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not build the digest: %s", escape(err.Error())))
	}
	return b.sendText(chatID, text)
}

// SendDigest sends the open task summary to the owner.
func (b *Bot) SendDigest(ctx context.Context) error {
	text, err := b.svc.Digest.Summary(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("build digest: %w", err)
	}
	if err := b.sendText(b.ownerID, text); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}
	return nil
}

func (b *Bot) handleExport(ctx context.Context, chatID int64) error {
	tasks, err := b.svc.Tasks.List(ctx, repository.TaskFilter{})
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not load tasks: %s", escape(err.Error())))
	}
	data, err := transfer.Export(tasks)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not export: %s", escape(err.Error())))
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  fmt.Sprintf("tasks-%s.json", time.Now().Format("20060102")),
		Bytes: data,
	})
	doc.Caption = fmt.Sprintf("📦 %d tasks", len(tasks))
	_, err = b.api.Send(doc)
	return err
}

func (b *Bot) handleImport(ctx context.Context, chatID int64, doc *tgbotapi.Document) error {
	if !strings.HasSuffix(strings.ToLower(doc.FileName), ".json") && doc.MimeType != "application/json" {
		return b.sendText(chatID, "Send a .json file produced by /export.")
	}
	if doc.FileSize > maxImportBytes {
		return b.sendText(chatID, "The file is too large.")
	}

	data, err := b.download(ctx, doc.FileID)
	if err != nil {
		b.logger.Error("download import file", zap.String("file", doc.FileName), zap.Error(err))
		return b.sendText(chatID, "Could not download the file.")
	}

	summary, err := b.svc.Reconciler.Import(ctx, data)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Import failed: %s", escape(err.Error())))
	}
	return b.sendText(chatID, formatImportSummary(summary))
}

func (b *Bot) download(ctx context.Context, fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("file url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get file: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImportBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if len(data) > maxImportBytes {
		return nil, errors.New("file too large")
	}
	return data, nil
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.logger.Warn("callback ack", zap.Error(err))
	}

	chatID := cb.Message.Chat.ID
	data := cb.Data

	switch {
	case strings.HasPrefix(data, cbDraftPrefix):
		return b.handleDraftAction(ctx, chatID, strings.TrimPrefix(data, cbDraftPrefix))
	case strings.HasPrefix(data, cbCompletePrefix):
		taskID, err := parseID(strings.TrimPrefix(data, cbCompletePrefix))
		if err != nil {
			return nil
		}
		return b.askConfirmation(ctx, chatID, taskID, actionComplete)
	case strings.HasPrefix(data, cbDeletePrefix):
		taskID, err := parseID(strings.TrimPrefix(data, cbDeletePrefix))
		if err != nil {
			return nil
		}
		return b.askConfirmation(ctx, chatID, taskID, actionDelete)
	default:
		return nil
	}
}

func (b *Bot) askConfirmation(ctx context.Context, chatID int64, taskID uint, action confirmationAction) error {
	task, err := b.svc.Tasks.Get(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return b.sendText(chatID, "Task not found.")
		}
		return err
	}

	var text string
	if action == actionDelete {
		text = fmt.Sprintf("Delete task «%s» (#%d)?", escape(normalizeTitle(task.Title)), task.ID)
	} else {
		if task.Status == model.StatusCompleted {
			return b.sendText(chatID, "The task is already completed.")
		}
		text = fmt.Sprintf("Mark task «%s» (#%d) as completed?", escape(normalizeTitle(task.Title)), task.ID)
	}
	b.setConfirmation(chatID, confirmationRequest{taskID: task.ID, action: action})
	return b.sendWithReplyMarkup(chatID, text, confirmKeyboard())
}

func (b *Bot) handleConfirmationResponse(ctx context.Context, msg *tgbotapi.Message, req confirmationRequest) error {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)
	switch {
	case isConfirmInput(text):
		b.clearConfirmation(chatID)
		args := strconv.FormatUint(uint64(req.taskID), 10)
		var err error
		if req.action == actionDelete {
			err = b.handleDelete(ctx, chatID, args)
		} else {
			err = b.handleDone(ctx, chatID, args)
		}
		if err != nil {
			return err
		}
		return b.sendTaskList(ctx, chatID, repository.TaskFilter{}, true)
	case isCancelInput(text):
		b.clearConfirmation(chatID)
		return b.sendMenuPlaceholder(chatID)
	default:
		return b.sendWithReplyMarkup(chatID, "Confirm or cancel, please.", confirmKeyboard())
	}
}

func (b *Bot) sendTaskList(ctx context.Context, chatID int64, filter repository.TaskFilter, openOnly bool) error {
	tasks, err := b.svc.Tasks.List(ctx, filter)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not load tasks: %s", escape(err.Error())))
	}

	categories, _ := b.svc.Categories.List(ctx)
	catNames := make(map[uint]string)
	for _, cat := range categories {
		catNames[cat.ID] = cat.Name
	}

	type categoryGroup struct {
		Name  string
		Tasks []model.Task
	}

	groups := make(map[string]*categoryGroup)
	order := make([]string, 0, len(tasks))

	for _, task := range tasks {
		if openOnly && task.Status == model.StatusCompleted {
			continue
		}
		key, display := normalizedCategory(task.CategoryID, catNames)
		group, ok := groups[key]
		if !ok {
			group = &categoryGroup{Name: display}
			groups[key] = group
			order = append(order, key)
		}
		group.Tasks = append(group.Tasks, task)
	}

	if len(groups) == 0 {
		return b.sendText(chatID, "No tasks here. Add one with /newtask.")
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i] == noCategoryKey {
			return false
		}
		if order[j] == noCategoryKey {
			return true
		}
		return strings.Compare(groups[order[i]].Name, groups[order[j]].Name) < 0
	})

	now := time.Now()
	var builder strings.Builder
	builder.WriteString("📋 <b>Tasks</b>\n")
	builder.WriteString("Highest priority first. Use the buttons to complete or delete.\n\n")

	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, key := range order {
		section := groups[key]
		builder.WriteString(fmt.Sprintf("<b>%s</b>\n", section.Name))
		for _, task := range section.Tasks {
			builder.WriteString(service.FormatTask(task, nil, now))
			var row []tgbotapi.InlineKeyboardButton
			if task.Status != model.StatusCompleted {
				row = append(row, tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("✅ #%d · %s", task.ID, shortTitle(task.Title, 20)), fmt.Sprintf("%s%d", cbCompletePrefix, task.ID)))
			}
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("🗑 #%d", task.ID), fmt.Sprintf("%s%d", cbDeletePrefix, task.ID)))
			buttons = append(buttons, row)
		}
		builder.WriteByte('\n')
	}

	msg := tgbotapi.NewMessage(chatID, strings.TrimSpace(builder.String()))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err = b.api.Send(msg)
	return err
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	chatID := msg.Chat.ID
	switch strings.TrimSpace(strings.ToLower(msg.Text)) {
	case strings.ToLower(menuLabelNewTask):
		return true, b.startDraft(chatID, "")
	case strings.ToLower(menuLabelTasks):
		return true, b.handleListTasks(ctx, chatID, "")
	case strings.ToLower(menuLabelCategories):
		return true, b.handleCategories(ctx, chatID)
	case strings.ToLower(menuLabelHelp):
		return true, b.handleHelp(chatID)
	default:
		return false, nil
	}
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendMenuPlaceholder(chatID int64) error {
	return b.sendText(chatID, "🔹 Main menu")
}

func (b *Bot) getConfirmation(chatID int64) (confirmationRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	req, ok := b.confirmations[chatID]
	return req, ok
}

func (b *Bot) setConfirmation(chatID int64, req confirmationRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.confirmations[chatID] = req
}

func (b *Bot) clearConfirmation(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.confirmations, chatID)
}
