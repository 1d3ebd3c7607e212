package bot

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/escrowhq/escrow_bot/utils"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const resetAllPhrase = "RESET ALL"

func (b *Bot) adminMenu(ctx context.Context, chatID, userID int64) {
	if !b.isOwner(userID) {
		b.sendMessage(chatID, "You are not authorized to use this command.", nil)
		return
	}
	b.resetSession(userID)

	users, err := b.service.ListUsers(ctx, b.config.BotOwnerID)
	if err != nil {
		b.logger.Errorf("Failed to list users for admin menu: %v", err)
		b.sendMessage(chatID, "❌ An unexpected error occurred.", nil)
		return
	}
	b.sendMessage(chatID, "🧑‍💼 **Admin Panel**", adminPanelKeyboard(users))
}

func (b *Bot) showGlobalStats(ctx context.Context, chatID, userID int64) {
	if !b.isOwner(userID) {
		return
	}
	stats, err := b.service.GlobalStats(ctx)
	if err != nil {
		b.logger.Errorf("Failed to load global stats: %v", err)
		b.sendMessage(chatID, "❌ An unexpected error occurred.", nil)
		return
	}

	text := fmt.Sprintf("🌐 **Global Bot Statistics**\n\n👥 **Total Users:** %d\n⏳ **Pending Deals:** %d\n\n",
		stats.TotalUsers, stats.PendingDeals)

	text += "💰 **Total Fees Earned (All Time)**\n"
	if len(stats.AllTimeFees) == 0 {
		text += "  - No fees earned yet.\n"
	} else {
		for _, t := range stats.AllTimeFees {
			text += fmt.Sprintf("  - `%s`: %s%s\n", strings.ToUpper(string(t.Currency)), t.Currency.Symbol(), utils.FormatAmount(t.Total))
		}
	}

	text += "\n📊 **Total Funds Holding (Current)**\n"
	if len(stats.HoldingTotals) == 0 {
		text += "  - No funds are being held.\n"
	} else {
		for _, t := range stats.HoldingTotals {
			text += fmt.Sprintf("  - `%s`: %s%s\n", strings.ToUpper(string(t.Currency)), t.Currency.Symbol(), utils.FormatAmount(t.Total))
		}
	}

	b.sendMessage(chatID, text, nil)
}

func (b *Bot) showAllPendingDeals(ctx context.Context, chatID, userID int64) {
	if !b.isOwner(userID) {
		return
	}
	deals, err := b.service.AllPendingDeals(ctx)
	if err != nil {
		b.logger.Errorf("Failed to load all pending deals: %v", err)
		b.sendMessage(chatID, "❌ An unexpected error occurred.", nil)
		return
	}

	if len(deals) == 0 {
		b.sendMessage(chatID, "✅ **NO PENDING DEALS GLOBALLY**", nil)
		return
	}

	blocks := make([]string, 0, len(deals))
	for _, d := range deals {
		display := utils.EscapeMarkdown(d.FirstName)
		if d.Username != nil && *d.Username != "" {
			display += fmt.Sprintf(" (@%s)", utils.EscapeMarkdown(*d.Username))
		}
		escrowedBy := strings.TrimSpace(d.EscrowedBy)
		if escrowedBy == "" {
			escrowedBy = "N/A"
		}
		symbol := d.Currency.Symbol()
		blocks = append(blocks, fmt.Sprintf(
			"\n\n🟩 **ESCROW DEAL** 🟩\n"+
				"**User**: %s\n"+
				"**ID**: `%s`\n"+
				"**Received**: %s%s\n"+
				"**Fee**: %s%s\n"+
				"**Release**: **%s%s**\n"+
				"**Date**: %s\n"+
				"**Escrowed By**: %s",
			display,
			d.TradeID,
			symbol, utils.FormatAmount(d.ReceivedAmount),
			symbol, utils.FormatAmount(d.Fee),
			symbol, utils.FormatAmount(d.ReleaseAmount),
			b.formatDate(d.ReceivedDate),
			utils.EscapeMarkdown(escrowedBy),
		))
	}
	b.sendChunked(chatID, fmt.Sprintf("🌐 **ALL PENDING DEALS (%d)**\n", len(deals)), blocks, nil)
}

var reWatchTarget = regexp.MustCompile(`\((\d+)\)`)

func (b *Bot) startWatchingUser(ctx context.Context, chatID, userID int64, text string) {
	match := reWatchTarget.FindStringSubmatch(text)
	if match == nil {
		b.sendMessage(chatID, "Could not identify the user from the button.", nil)
		return
	}
	targetID, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		b.sendMessage(chatID, "Could not identify the user from the button.", nil)
		return
	}

	name := strings.TrimPrefix(text, watchUserPrefix)
	if idx := strings.LastIndex(name, " ("); idx >= 0 {
		name = name[:idx]
	}

	b.setWatched(userID, targetID)
	b.sendMessage(chatID,
		fmt.Sprintf("🎭 You are now watching **%s**. All dashboard buttons will now show their data.", utils.EscapeMarkdown(name)),
		adminWatchKeyboard())
}

// handleExport generates the CSV off the hot path so a big ledger never
// stalls the update loop.
func (b *Bot) handleExport(ctx context.Context, chatID, userID int64) {
	if !b.isOwner(userID) {
		return
	}
	b.sendMessage(chatID, "⏳ Generating CSV export... This may take a moment.", nil)

	go func() {
		data, count, err := b.service.ExportCSV(ctx)
		if err != nil {
			b.logger.Errorf("Failed to export data: %v", err)
			b.sendMessage(chatID, "❌ An error occurred during the export.", nil)
			return
		}
		if count == 0 {
			b.sendMessage(chatID, "No transaction data to export.", nil)
			return
		}

		filename := fmt.Sprintf("transactions_%s.csv", time.Now().In(b.service.ReportLocation()).Format("2006-01-02"))
		doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: filename, Bytes: data})
		doc.Caption = "Full export of the `transactions` table."
		if _, err := b.API.Send(doc); err != nil {
			b.logger.Errorf("Failed to send export document: %v", err)
			b.sendMessage(chatID, "❌ An error occurred during the export.", nil)
		}
	}()
}

func (b *Bot) startResetUser(chatID, userID int64) {
	if !b.isOwner(userID) {
		return
	}
	target := b.getWatched(userID)
	if target == 0 {
		b.sendMessage(chatID, "Pick a user to watch first, then reset their data.", nil)
		return
	}

	s := b.session(userID)
	b.sessionMutex.Lock()
	s.state = stateResetUserConfirm
	s.resetTargetID = target
	b.sessionMutex.Unlock()

	b.sendMessage(chatID,
		fmt.Sprintf("⚠️ This wipes **all** transactions of user `%d`. Reply `yes` to confirm, anything else cancels.", target),
		tgbotapi.NewRemoveKeyboard(true))
}

func (b *Bot) handleResetUserConfirm(ctx context.Context, chatID, userID int64, text string) {
	s := b.session(userID)
	b.sessionMutex.Lock()
	target := s.resetTargetID
	s.state = stateDefault
	s.resetTargetID = 0
	b.sessionMutex.Unlock()

	if !strings.EqualFold(strings.TrimSpace(text), "yes") {
		b.adminMenu(ctx, chatID, userID)
		return
	}

	affected, err := b.service.ResetUser(ctx, target)
	if err != nil {
		b.logger.Errorf("Failed to reset user %d: %v", target, err)
		b.sendMessage(chatID, "❌ An unexpected error occurred.", nil)
		return
	}
	b.sendMessage(chatID, fmt.Sprintf("🗑 Removed %d transactions of user `%d`.", affected, target), nil)
	b.adminMenu(ctx, chatID, userID)
}

func (b *Bot) startResetAll(chatID, userID int64) {
	if !b.isOwner(userID) {
		return
	}
	b.setState(userID, stateResetAllConfirm)
	b.sendMessage(chatID,
		fmt.Sprintf("⚠️ This wipes the **entire ledger** for every user. Type `%s` to confirm, anything else cancels.", resetAllPhrase),
		tgbotapi.NewRemoveKeyboard(true))
}

func (b *Bot) handleResetAllConfirm(ctx context.Context, chatID, userID int64, text string) {
	b.setState(userID, stateDefault)

	if strings.TrimSpace(text) != resetAllPhrase {
		b.adminMenu(ctx, chatID, userID)
		return
	}

	affected, err := b.service.ResetAll(ctx)
	if err != nil {
		b.logger.Errorf("Failed to reset all data: %v", err)
		b.sendMessage(chatID, "❌ An unexpected error occurred.", nil)
		return
	}
	b.sendMessage(chatID, fmt.Sprintf("🗑 The ledger has been wiped: %d transactions removed.", affected), nil)
	b.adminMenu(ctx, chatID, userID)
}
