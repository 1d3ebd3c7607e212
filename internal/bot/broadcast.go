package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Broadcast wizard: capture a message, confirm, then fan it out in the
// background. Individual delivery failures never abort the batch; the owner
// gets a sent/failed summary once it drains.

func (b *Bot) startBroadcast(chatID, userID int64) {
	if !b.isOwner(userID) {
		return
	}
	b.setState(userID, stateBroadcastMessage)
	b.sendMessage(chatID, "📣 **Broadcast Mode**\nSend any message (text, photo, sticker, etc.) to broadcast. /cancel to return.", nil)
}

func (b *Bot) handleBroadcastMessage(userID int64, msg *tgbotapi.Message) {
	if msg.Text == "/cancel" {
		b.setState(userID, stateDefault)
		b.adminMenu(context.Background(), msg.Chat.ID, userID)
		return
	}

	s := b.session(userID)
	b.sessionMutex.Lock()
	s.state = stateBroadcastConfirm
	s.broadcastChatID = msg.Chat.ID
	s.broadcastMessageID = msg.MessageID
	b.sessionMutex.Unlock()

	keyboard := tgbotapi.NewReplyKeyboard([]tgbotapi.KeyboardButton{tgbotapi.NewKeyboardButton("yes")})
	keyboard.ResizeKeyboard = true
	keyboard.OneTimeKeyboard = true
	b.sendMessage(msg.Chat.ID, "This is the message to send to ALL users. Reply 'yes' to send, or /cancel.", keyboard)
}

func (b *Bot) handleBroadcastConfirm(ctx context.Context, userID int64, text string) {
	s := b.session(userID)
	b.sessionMutex.Lock()
	fromChatID := s.broadcastChatID
	messageID := s.broadcastMessageID
	s.state = stateDefault
	s.broadcastChatID = 0
	s.broadcastMessageID = 0
	b.sessionMutex.Unlock()

	if !strings.EqualFold(strings.TrimSpace(text), "yes") {
		b.adminMenu(ctx, fromChatID, userID)
		return
	}

	go b.runBroadcast(fromChatID, messageID, fromChatID)

	b.sendMessage(fromChatID, "🚀 **Broadcast scheduled!** Sending in the background. I will notify you when it's complete.", nil)
	b.adminMenu(ctx, fromChatID, userID)
}

func (b *Bot) runBroadcast(fromChatID int64, messageID int, adminChatID int64) {
	users, err := b.service.ListUsers(context.Background(), b.config.BotOwnerID)
	if err != nil {
		b.logger.Errorf("Broadcast aborted, failed to list recipients: %v", err)
		b.sendMessage(adminChatID, "❌ Broadcast failed: could not load the recipient list.", nil)
		return
	}

	sent, failed := 0, 0
	for _, u := range users {
		if _, err := b.API.CopyMessage(tgbotapi.NewCopyMessage(u.UserID, fromChatID, messageID)); err != nil {
			b.logger.Warnf("Broadcast to user %d failed: %v", u.UserID, err)
			failed++
			continue
		}
		sent++
		if sent%25 == 0 {
			time.Sleep(time.Second)
		}
	}

	b.sendMessage(adminChatID, fmt.Sprintf("✅ **Broadcast Complete!**\n\nSent: %d\nFailed: %d", sent, failed), nil)
}
