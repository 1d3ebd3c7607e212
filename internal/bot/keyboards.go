package bot

import (
	"fmt"

	"github.com/escrowhq/escrow_bot/internal/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	btnINRDashboard    = "🇮🇳 INR Dashboard"
	btnCryptoDashboard = "💰 CRYPTO Dashboard"
	btnTotalHolding    = "📊 My Holding"
	btnTotalFees       = "💸 My Fees"
	btnPending         = "⏳ My Pending Deals"
	btnVolume          = "📈 My Escrow Volume"

	btnAdminGlobalStats = "🌐 Global Stats"
	btnAdminAllPending  = "⏳ All Pending Deals"
	btnAdminExport      = "📊 Export Data"
	btnAdminBroadcast   = "📣 Broadcast"
	btnAdminResetUser   = "🗑 Reset Watched User"
	btnAdminResetAll    = "🗑 Reset All Data"

	btnBackToMenu  = "◀️ Back to Menu"
	btnBackToAdmin = "◀️ Back to Admin Panel"

	btnFeesToday   = "Today's Fees"
	btnFeesWeekly  = "This Week's Fees"
	btnFeesMonthly = "This Month's Fees"
	btnFeesAllTime = "All-Time Fees"

	btnVolumeToday   = "Today's Volume"
	btnVolumeWeekly  = "This Week's Volume"
	btnVolumeMonthly = "This Month's Volume"
	btnVolumeAllTime = "All-Time Volume"

	watchUserPrefix   = "👤 Watch "
	callbackFeePrefix = "fee_select|||"
)

func userKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		[]tgbotapi.KeyboardButton{
			tgbotapi.NewKeyboardButton(btnINRDashboard),
			tgbotapi.NewKeyboardButton(btnCryptoDashboard),
		},
		[]tgbotapi.KeyboardButton{
			tgbotapi.NewKeyboardButton(btnTotalHolding),
			tgbotapi.NewKeyboardButton(btnPending),
		},
		[]tgbotapi.KeyboardButton{
			tgbotapi.NewKeyboardButton(btnVolume),
			tgbotapi.NewKeyboardButton(btnTotalFees),
		},
	)
	kb.ResizeKeyboard = true
	return kb
}

func adminWatchKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		[]tgbotapi.KeyboardButton{
			tgbotapi.NewKeyboardButton(btnINRDashboard),
			tgbotapi.NewKeyboardButton(btnCryptoDashboard),
		},
		[]tgbotapi.KeyboardButton{
			tgbotapi.NewKeyboardButton(btnTotalHolding),
			tgbotapi.NewKeyboardButton(btnPending),
		},
		[]tgbotapi.KeyboardButton{
			tgbotapi.NewKeyboardButton(btnVolume),
			tgbotapi.NewKeyboardButton(btnTotalFees),
		},
		[]tgbotapi.KeyboardButton{
			tgbotapi.NewKeyboardButton(btnAdminResetUser),
			tgbotapi.NewKeyboardButton(btnBackToAdmin),
		},
	)
	kb.ResizeKeyboard = true
	return kb
}

// mainKeyboard picks the menu for whoever the reply is going to.
func (b *Bot) mainKeyboard(userID int64) tgbotapi.ReplyKeyboardMarkup {
	if b.isWatching(userID) {
		return adminWatchKeyboard()
	}
	return userKeyboard()
}

func adminPanelKeyboard(users []models.User) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton

	var watchRow []tgbotapi.KeyboardButton
	for _, u := range users {
		watchRow = append(watchRow, tgbotapi.NewKeyboardButton(
			fmt.Sprintf("%s%s (%d)", watchUserPrefix, u.FirstName, u.UserID),
		))
		if len(watchRow) == 2 {
			rows = append(rows, watchRow)
			watchRow = nil
		}
	}
	if len(watchRow) > 0 {
		rows = append(rows, watchRow)
	}

	rows = append(rows,
		[]tgbotapi.KeyboardButton{
			tgbotapi.NewKeyboardButton(btnAdminGlobalStats),
			tgbotapi.NewKeyboardButton(btnAdminAllPending),
		},
		[]tgbotapi.KeyboardButton{
			tgbotapi.NewKeyboardButton(btnAdminExport),
			tgbotapi.NewKeyboardButton(btnAdminBroadcast),
		},
		[]tgbotapi.KeyboardButton{
			tgbotapi.NewKeyboardButton(btnAdminResetAll),
		},
	)

	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}

func periodKeyboard(today, weekly, monthly, allTime, back string) tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		[]tgbotapi.KeyboardButton{
			tgbotapi.NewKeyboardButton(today),
			tgbotapi.NewKeyboardButton(weekly),
		},
		[]tgbotapi.KeyboardButton{
			tgbotapi.NewKeyboardButton(monthly),
			tgbotapi.NewKeyboardButton(allTime),
		},
		[]tgbotapi.KeyboardButton{
			tgbotapi.NewKeyboardButton(back),
		},
	)
	kb.ResizeKeyboard = true
	return kb
}

func (b *Bot) backButton(userID int64) string {
	if b.isWatching(userID) {
		return btnBackToAdmin
	}
	return btnBackToMenu
}
