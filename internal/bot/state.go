package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Wizard states. Each pending interaction is an explicit state on the
// session, not a loose flag.
const (
	stateDefault          = ""
	stateBroadcastMessage = "broadcast_message"
	stateBroadcastConfirm = "broadcast_confirm"
	stateResetUserConfirm = "reset_user_confirm"
	stateResetAllConfirm  = "reset_all_confirm"
)

// session is the per-user conversational state: the wizard position, the
// user an admin is watching, and the message queued for broadcast.
type session struct {
	state              string
	watchedUserID      int64
	resetTargetID      int64
	broadcastChatID    int64
	broadcastMessageID int
}

// sendMessage is the single send path; everything goes out as Markdown.
func (b *Bot) sendMessage(chatID int64, text string, replyMarkup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if replyMarkup != nil {
		msg.ReplyMarkup = replyMarkup
	}
	if _, err := b.API.Send(msg); err != nil {
		b.logger.Errorf("Failed to send message: %v", err)
	}
}

func (b *Bot) session(userID int64) *session {
	b.sessionMutex.Lock()
	defer b.sessionMutex.Unlock()
	s, ok := b.sessions[userID]
	if !ok {
		s = &session{}
		b.sessions[userID] = s
	}
	return s
}

func (b *Bot) setState(userID int64, state string) {
	s := b.session(userID)
	b.sessionMutex.Lock()
	defer b.sessionMutex.Unlock()
	s.state = state
	b.logger.Debugf("Set state for user %d: %q", userID, state)
}

func (b *Bot) getState(userID int64) string {
	s := b.session(userID)
	b.sessionMutex.Lock()
	defer b.sessionMutex.Unlock()
	return s.state
}

func (b *Bot) setWatched(userID, targetID int64) {
	s := b.session(userID)
	b.sessionMutex.Lock()
	defer b.sessionMutex.Unlock()
	s.watchedUserID = targetID
}

func (b *Bot) getWatched(userID int64) int64 {
	s := b.session(userID)
	b.sessionMutex.Lock()
	defer b.sessionMutex.Unlock()
	return s.watchedUserID
}

// resetSession clears all conversational state, e.g. on /start or when
// returning to the admin panel.
func (b *Bot) resetSession(userID int64) {
	b.sessionMutex.Lock()
	defer b.sessionMutex.Unlock()
	delete(b.sessions, userID)
}

// queryUserID resolves whose ledger a menu action targets: the watched user
// when the owner is in watch mode, otherwise the sender.
func (b *Bot) queryUserID(userID int64) int64 {
	if b.isOwner(userID) {
		if watched := b.getWatched(userID); watched != 0 {
			return watched
		}
	}
	return userID
}

func (b *Bot) isWatching(userID int64) bool {
	return b.isOwner(userID) && b.getWatched(userID) != 0
}
