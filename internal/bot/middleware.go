package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// withUserCheck upserts the sender into the users table before handling, so
// every inbound interaction refreshes the display name and last-seen stamp.
func (b *Bot) withUserCheck(handler func(context.Context, tgbotapi.Update)) func(tgbotapi.Update) {
	return func(update tgbotapi.Update) {
		ctx := context.Background()
		from := update.Message.From
		if from == nil {
			return
		}

		if err := b.service.RegisterUser(ctx, from.ID, from.FirstName, from.UserName); err != nil {
			b.logger.Errorf("Failed to register user %d: %v", from.ID, err)
			b.sendMessage(update.Message.Chat.ID, "Something went wrong. Please try again later.", nil)
			return
		}

		handler(ctx, update)
	}
}
