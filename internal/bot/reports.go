package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/escrowhq/escrow_bot/internal/models"
	"github.com/escrowhq/escrow_bot/internal/service"
	"github.com/escrowhq/escrow_bot/utils"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram rejects messages beyond 4096 chars; chunk a little below that.
const messageChunkLimit = 4000

func (b *Bot) showDashboard(ctx context.Context, chatID, userID int64, currency models.Currency) {
	queryID := b.queryUserID(userID)

	pending, err := b.service.PendingDeals(ctx, queryID, &currency)
	if err != nil {
		b.logger.Errorf("Failed to load %s dashboard for user %d: %v", currency, queryID, err)
		b.sendMessage(chatID, "❌ An unexpected error occurred.", nil)
		return
	}

	symbol := currency.Symbol()
	holding := 0.0
	var rows [][]tgbotapi.KeyboardButton
	for _, tx := range pending {
		holding += tx.ReceivedAmount
		rows = append(rows, []tgbotapi.KeyboardButton{
			tgbotapi.NewKeyboardButton(fmt.Sprintf("Release %s (%s%s)", tx.TradeID, symbol, utils.FormatAmount(tx.ReceivedAmount))),
		})
	}
	rows = append(rows, []tgbotapi.KeyboardButton{tgbotapi.NewKeyboardButton(b.backButton(userID))})
	keyboard := tgbotapi.NewReplyKeyboard(rows...)
	keyboard.ResizeKeyboard = true
	keyboard.OneTimeKeyboard = true

	var text string
	if currency == models.CurrencyINR {
		text = fmt.Sprintf("🇮🇳 **INR DASHBOARD**\n\n💵 **Holding:** %s%s\n\n⬇️ **Pending Releases:**",
			symbol, utils.FormatAmount(holding))
	} else {
		fees, err := b.service.FeeTotals(ctx, &queryID, service.PeriodAllTime)
		if err != nil {
			b.logger.Errorf("Failed to load crypto fees for user %d: %v", queryID, err)
			b.sendMessage(chatID, "❌ An unexpected error occurred.", nil)
			return
		}
		earned := 0.0
		for _, t := range fees {
			if t.Currency == models.CurrencyCrypto {
				earned = t.Total
			}
		}
		text = fmt.Sprintf("💰 **CRYPTO DASHBOARD**\n\n💵 **Holding:** %s%s\n⚡️ **Fees Earned:** %s%s\n\n⬇️ **Pending Releases:**",
			symbol, utils.FormatAmount(holding), symbol, utils.FormatAmount(earned))
	}
	if len(pending) == 0 {
		text += fmt.Sprintf("\nNo pending %s releases.", strings.ToUpper(string(currency)))
	}
	b.sendMessage(chatID, text, keyboard)
}

func (b *Bot) showTotalHolding(ctx context.Context, chatID, userID int64) {
	queryID := b.queryUserID(userID)
	totals, err := b.service.HoldingTotals(ctx, &queryID)
	if err != nil {
		b.logger.Errorf("Failed to load holding totals for user %d: %v", queryID, err)
		b.sendMessage(chatID, "❌ An unexpected error occurred.", nil)
		return
	}
	text := formatTotals("📊 **TOTAL HOLDING**", totals, "No funds are currently held in escrow.")
	b.sendMessage(chatID, text, b.mainKeyboard(userID))
}

func (b *Bot) showPendingDeals(ctx context.Context, chatID, userID int64) {
	queryID := b.queryUserID(userID)
	pending, err := b.service.PendingDeals(ctx, queryID, nil)
	if err != nil {
		b.logger.Errorf("Failed to load pending deals for user %d: %v", queryID, err)
		b.sendMessage(chatID, "❌ An unexpected error occurred.", nil)
		return
	}

	markup := b.mainKeyboard(userID)
	if len(pending) == 0 {
		b.sendMessage(chatID, "✅ **NO PENDING RELEASES**", markup)
		return
	}

	blocks := make([]string, 0, len(pending))
	for _, tx := range pending {
		blocks = append(blocks, b.dealBlock(tx, ""))
	}
	b.sendChunked(chatID, fmt.Sprintf("⏳ **PENDING RELEASES (%d)**\n", len(pending)), blocks, markup)
}

func (b *Bot) showFeesMenu(chatID, userID int64) {
	keyboard := periodKeyboard(btnFeesToday, btnFeesWeekly, btnFeesMonthly, btnFeesAllTime, b.backButton(userID))
	b.sendMessage(chatID, "💸 **Fee Report**\n\nSelect a time period.", keyboard)
}

func (b *Bot) showVolumeMenu(chatID, userID int64) {
	keyboard := periodKeyboard(btnVolumeToday, btnVolumeWeekly, btnVolumeMonthly, btnVolumeAllTime, b.backButton(userID))
	b.sendMessage(chatID, "📈 **Escrow Volume Report**\n\nSelect a time period.", keyboard)
}

func (b *Bot) showFees(ctx context.Context, chatID, userID int64, period service.Period, title string) {
	queryID := b.queryUserID(userID)
	totals, err := b.service.FeeTotals(ctx, &queryID, period)
	if err != nil {
		b.logger.Errorf("Failed to load fee totals for user %d: %v", queryID, err)
		b.sendMessage(chatID, "❌ An unexpected error occurred.", nil)
		return
	}
	b.sendMessage(chatID, formatTotals("💸 **"+title+"**", totals, "No fees earned in this period."), nil)
}

func (b *Bot) showVolume(ctx context.Context, chatID, userID int64, period service.Period, title string) {
	queryID := b.queryUserID(userID)
	totals, err := b.service.VolumeTotals(ctx, &queryID, period)
	if err != nil {
		b.logger.Errorf("Failed to load volume totals for user %d: %v", queryID, err)
		b.sendMessage(chatID, "❌ An unexpected error occurred.", nil)
		return
	}
	b.sendMessage(chatID, formatTotals("📈 **"+title+"**", totals, "No escrow deals were started in this period."), nil)
}

// formatTotals renders per-currency sums, or the sentinel line when nothing
// carries a positive sum.
func formatTotals(title string, totals []models.CurrencyTotal, empty string) string {
	text := title + "\n\n"
	if len(totals) == 0 {
		return text + empty
	}
	lines := make([]string, 0, len(totals))
	for _, t := range totals {
		lines = append(lines, fmt.Sprintf("▪️ %s: %s%s",
			strings.ToUpper(string(t.Currency)), t.Currency.Symbol(), utils.FormatAmount(t.Total)))
	}
	return text + strings.Join(lines, "\n")
}

func (b *Bot) dealBlock(tx models.Transaction, userDisplay string) string {
	symbol := tx.Currency.Symbol()
	escrowedBy := strings.TrimSpace(tx.EscrowedBy)
	if escrowedBy == "" {
		escrowedBy = "N/A"
	}

	block := "\n\n🟩 **ESCROW DEAL** 🟩\n"
	if userDisplay != "" {
		block += fmt.Sprintf("**User**: %s\n", userDisplay)
	}
	block += fmt.Sprintf(
		"**ID**: `%s`\n"+
			"**Received**: %s%s\n"+
			"**Fee**: %s%s\n"+
			"**Release**: **%s%s**\n"+
			"**Date**: %s\n"+
			"**Escrowed By**: %s",
		tx.TradeID,
		symbol, utils.FormatAmount(tx.ReceivedAmount),
		symbol, utils.FormatAmount(tx.Fee),
		symbol, utils.FormatAmount(tx.ReleaseAmount),
		b.formatDate(tx.ReceivedDate),
		utils.EscapeMarkdown(escrowedBy),
	)
	return block
}

func (b *Bot) formatDate(t time.Time) string {
	return t.In(b.service.ReportLocation()).Format("02-Jan-2006, 03:04 PM")
}

// sendChunked sends a header plus blocks, splitting into several messages
// under the Telegram limit; the reply markup rides on the final chunk.
func (b *Bot) sendChunked(chatID int64, header string, blocks []string, markup interface{}) {
	current := header
	for _, block := range blocks {
		if len(current)+len(block) > messageChunkLimit {
			b.sendMessage(chatID, current, nil)
			current = "...(continued)\n"
		}
		current += block
	}
	b.sendMessage(chatID, current, markup)
}
