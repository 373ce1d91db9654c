// messages.go contains message templates and formatting functions for Telegram.

package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/quizroom/internal/domain/entities"
)

const msgResultSubmitted = "📝 New test result"

// md escapes plain text for MarkdownV2.
func md(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, s)
}

func bold(s string) string {
	return "*" + md(s) + "*"
}

// newMessage creates a message with MarkdownV2 parse mode.
func newMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	return msg
}

// formatResult renders one stored result for the admin chat.
func formatResult(res *entities.Result, taker entities.Identity) string {
	who := taker.Email
	if who == "" {
		who = taker.UserID
	}

	var sb strings.Builder
	sb.WriteString(bold(msgResultSubmitted))
	sb.WriteString("\n\n")
	sb.WriteString(md(fmt.Sprintf("Test: %s", res.TestTitle)))
	sb.WriteString("\n")
	sb.WriteString(md(fmt.Sprintf("User: %s", who)))
	sb.WriteString("\n")
	sb.WriteString(md(fmt.Sprintf("Score: %d/%d (%.2f%%)", res.Score, res.Total, res.Percentage())))

	unanswered := 0
	for _, a := range res.Answers {
		if !a.Answered() {
			unanswered++
		}
	}
	if unanswered > 0 {
		sb.WriteString("\n")
		sb.WriteString(md(fmt.Sprintf("Unanswered: %d", unanswered)))
	}

	return sb.String()
}
