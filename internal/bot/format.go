package bot

import (
	"fmt"
	"html"
	"sort"
	"strconv"
	"strings"
	"unicode"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"smart-todo/internal/model"
	"smart-todo/internal/suggest"
	"smart-todo/internal/transfer"
)

const maxListedFailures = 10

func formatDraft(d suggest.TaskDraft, catNames map[uint]string) string {
	var b strings.Builder
	b.WriteString("📝 <b>Draft</b>\n")
	b.WriteString(fmt.Sprintf("• <b>Title:</b> %s\n", orDash(escape(normalizeTitle(d.Title)))))
	b.WriteString(fmt.Sprintf("• <b>Description:</b> %s\n", orDash(escape(strings.TrimSpace(d.Description)))))

	deadline := ""
	if d.Deadline != nil {
		deadline = d.Deadline.Format("2006-01-02 15:04")
	}
	b.WriteString(fmt.Sprintf("• <b>Deadline:</b> %s\n", orDash(deadline)))

	category := ""
	if d.CategoryID != nil {
		category = escape(catNames[*d.CategoryID])
	}
	b.WriteString(fmt.Sprintf("• <b>Category:</b> %s\n", orDash(category)))
	b.WriteString(fmt.Sprintf("• <b>Priority:</b> %.2f", d.PriorityScore))
	return b.String()
}

func formatReport(r suggest.MergeReport) string {
	var b strings.Builder
	if len(r.Applied) == 0 {
		b.WriteString("\n\n✨ Nothing new to fill in.")
	} else {
		b.WriteString(fmt.Sprintf("\n\n✨ Filled in: %s.", strings.Join(r.Applied, ", ")))
	}
	if r.UnresolvedCategory != "" {
		name := escape(r.UnresolvedCategory)
		b.WriteString(fmt.Sprintf("\n⚠️ Suggested category «%s» does not exist. Add it with /addcategory %s or pick another one.", name, name))
	}
	return b.String()
}

func formatContextEntry(entry model.ContextEntry) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<b>#%d</b> %s · %s\n", entry.ID, strings.ToLower(string(entry.SourceType)), entry.CreatedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("   %s\n", escape(shortTitle(entry.Content, 160))))
	if keywords := entry.ProcessedInsights["keywords"]; keywords != "" {
		b.WriteString(fmt.Sprintf("   🔑 %s\n", escape(keywords)))
	}
	b.WriteByte('\n')
	return b.String()
}

func formatImportSummary(s transfer.Summary) string {
	var b strings.Builder
	b.WriteString("📥 <b>Import finished</b>\n")
	b.WriteString(fmt.Sprintf("• created: %d\n• updated: %d\n• failed: %d\n", s.Created, s.Updated, s.Failed()))

	failures := append([]transfer.Failure(nil), s.Failures...)
	sort.SliceStable(failures, func(i, j int) bool { return failures[i].Index < failures[j].Index })
	for i, f := range failures {
		if i == maxListedFailures {
			b.WriteString(fmt.Sprintf("   … and %d more\n", len(failures)-maxListedFailures))
			break
		}
		b.WriteString(fmt.Sprintf("   record %d: %s\n", f.Index, escape(f.Reason)))
	}
	return strings.TrimSpace(b.String())
}

func draftKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(btnSuggest, cbDraftPrefix+draftSuggest),
			tgbotapi.NewInlineKeyboardButtonData(btnSave, cbDraftPrefix+draftSave),
			tgbotapi.NewInlineKeyboardButtonData(btnDiscard, cbDraftPrefix+draftDiscard),
		),
	)
}

func confirmKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnConfirm),
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelNewTask),
			tgbotapi.NewKeyboardButton(menuLabelTasks),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelCategories),
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = false
	return kb
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func skipKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func isSkipInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == "-" || value == strings.ToLower(btnSkip) || value == "skip"
}

func isConfirmInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnConfirm) || value == "confirm" || value == "yes"
}

func isCancelInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancel) || value == "cancel" || value == "no"
}

func isCancelDialogInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancelDialog) || value == "stop"
}

func parseID(raw string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, err
	}
	if value == 0 {
		return 0, fmt.Errorf("id must be positive")
	}
	return uint(value), nil
}

func escape(s string) string {
	return html.EscapeString(s)
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

func shortTitle(title string, maxLen int) string {
	clean := strings.TrimSpace(strings.ReplaceAll(title, "\n", " "))
	clean = normalizeTitle(clean)
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func normalizeTitle(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	runes := []rune(value)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func normalizedCategory(categoryID *uint, catNames map[uint]string) (string, string) {
	if categoryID == nil {
		return noCategoryKey, categoryLabel(noCategory)
	}
	if name, ok := catNames[*categoryID]; ok {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			return noCategoryKey, categoryLabel(noCategory)
		}
		return strings.ToLower(trimmed), categoryLabel(trimmed)
	}
	return noCategoryKey, categoryLabel(noCategory)
}

func categoryLabel(name string) string {
	base := strings.TrimSpace(name)
	var icon string
	switch strings.ToLower(base) {
	case "work":
		icon = "💼"
	case "personal":
		icon = "🧩"
	case "shopping":
		icon = "🛒"
	case "health":
		icon = "🩺"
	case "study":
		icon = "🎓"
	case strings.ToLower(noCategory):
		icon = "📁"
	default:
		icon = "🏷️"
	}
	return fmt.Sprintf("%s %s", icon, escape(base))
}
