package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/escrowhq/escrow_bot/internal/models"
	"github.com/escrowhq/escrow_bot/internal/parser"
	"github.com/escrowhq/escrow_bot/internal/service"
	"github.com/escrowhq/escrow_bot/utils"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleNewDeal(ctx context.Context, chatID, userID int64, text string) {
	deal, err := parser.ParseNewDeal(text)
	if err != nil {
		var parseErr *parser.ParseError
		if errors.As(err, &parseErr) {
			b.sendMessage(chatID, fmt.Sprintf("❌ **Error:** Could not find `%s` in the forwarded message.", parseErr.Field), nil)
			return
		}
		b.logger.Errorf("Unexpected parse failure for user %d: %v", userID, err)
		b.sendMessage(chatID, "❌ **Error:** Could not process the forwarded message.", nil)
		return
	}

	tx, feePending, err := b.service.SubmitDeal(ctx, userID, deal)
	switch {
	case errors.Is(err, service.ErrDuplicateTradeID):
		b.sendMessage(chatID, fmt.Sprintf("⚠️ **Duplicate:** You already have a deal with ID `%s`.", deal.TradeID), nil)
	case err != nil:
		b.logger.Errorf("Failed to submit deal %s for user %d: %v", deal.TradeID, userID, err)
		b.sendMessage(chatID, "❌ **Error:** Could not process the forwarded message.", nil)
	case feePending:
		b.sendFeeSelection(chatID, deal)
	default:
		b.sendMessage(chatID, dealConfirmation(tx), nil)
	}
}

func (b *Bot) sendFeeSelection(chatID int64, deal *models.ParsedDeal) {
	var buttons []tgbotapi.InlineKeyboardButton
	for _, p := range service.AllowedFeePercents {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("%g%% Fee", p),
			fmt.Sprintf("%s%g|||%s", callbackFeePrefix, p, deal.TradeID),
		))
	}
	keyboard := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(buttons...))

	text := fmt.Sprintf(
		"**Confirm Crypto Deal: `%s`**\n\nReceived: $%s\n\nPlease select the escrow fee percentage:",
		deal.TradeID, utils.FormatAmount(deal.ReceivedAmount),
	)
	b.sendMessage(chatID, text, keyboard)
}

func (b *Bot) handleFeeSelection(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	b.answerCallback(callback.ID, "")

	parts := strings.Split(strings.TrimPrefix(callback.Data, callbackFeePrefix), "|||")
	if len(parts) != 2 {
		b.logger.Errorf("Invalid fee selection callback data: %s", callback.Data)
		b.editMessage(callback, "❌ **Error:** Could not process your selection. Please try again.")
		return
	}
	percent, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		b.logger.Errorf("Invalid fee percent in callback data %q: %v", callback.Data, err)
		b.editMessage(callback, "❌ **Error:** Could not process your selection. Please try again.")
		return
	}
	tradeID := parts[1]

	tx, err := b.service.SelectCryptoFee(ctx, callback.From.ID, tradeID, percent)
	switch {
	case errors.Is(err, service.ErrStaleSelection):
		b.editMessage(callback, "❌ **Error:** This deal selection has expired. Please forward the deal message again.")
	case errors.Is(err, service.ErrDuplicateTradeID):
		b.editMessage(callback, fmt.Sprintf("⚠️ **Duplicate:** You already have a deal with ID `%s`.", tradeID))
	case errors.Is(err, service.ErrInvalidFeePercent):
		b.editMessage(callback, "❌ **Error:** Could not process your selection. Please try again.")
	case err != nil:
		b.logger.Errorf("Fee selection failed for user %d, trade %s: %v", callback.From.ID, tradeID, err)
		b.editMessage(callback, "❌ An unexpected error occurred.")
	default:
		b.editMessage(callback, dealConfirmation(tx))
	}
}

func (b *Bot) handleCompletedDeal(ctx context.Context, chatID, userID int64, text string) {
	completion, err := parser.ParseCompletion(text)
	if err != nil {
		b.sendMessage(chatID, "❌ **Error:** Could not find `Trade ID:` in 'Deal Completed' message.", nil)
		return
	}

	err = b.service.CompleteByTradeID(ctx, userID, completion.TradeID)
	switch {
	case errors.Is(err, service.ErrNotFoundOrCompleted):
		b.sendMessage(chatID, fmt.Sprintf("⚠️ **Not Found:** No pending transaction for `%s` found to complete.", completion.TradeID), nil)
	case err != nil:
		b.logger.Errorf("Failed to complete deal %s for user %d: %v", completion.TradeID, userID, err)
		b.sendMessage(chatID, "❌ An unexpected error occurred.", nil)
	default:
		b.sendMessage(chatID, fmt.Sprintf("✅ **Deal Completed:** `%s` has been marked as completed.", completion.TradeID), nil)
	}
}

// handleRelease acts on the ledger the dashboard was showing: the watched
// user's when the owner is in watch mode, otherwise the sender's own.
func (b *Bot) handleRelease(ctx context.Context, chatID, userID int64, tradeID string) {
	ownerID := b.queryUserID(userID)

	currency, err := b.service.ReleaseByTradeID(ctx, ownerID, tradeID)
	switch {
	case errors.Is(err, service.ErrNotFoundOrCompleted):
		b.sendMessage(chatID, fmt.Sprintf("⚠️ Transaction `%s` not found or already completed.", tradeID), nil)
	case err != nil:
		b.logger.Errorf("Failed to release deal %s for user %d: %v", tradeID, ownerID, err)
		b.sendMessage(chatID, "❌ An unexpected error occurred.", nil)
	default:
		b.sendMessage(chatID, fmt.Sprintf("✅ **Funds Released!**\nTrade ID `%s` is now complete.", tradeID), nil)
		b.showDashboard(ctx, chatID, userID, currency)
	}
}

func (b *Bot) editMessage(callback *tgbotapi.CallbackQuery, text string) {
	edit := tgbotapi.NewEditMessageText(callback.Message.Chat.ID, callback.Message.MessageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.API.Send(edit); err != nil {
		b.logger.Errorf("Failed to edit message: %v", err)
	}
}

func dealConfirmation(tx *models.Transaction) string {
	symbol := tx.Currency.Symbol()
	return fmt.Sprintf(
		"✅ **New %s Escrow Added!**\n\n"+
			"🆔 **Trade ID:** `%s`\n"+
			"📥 **Received:** %s%s\n"+
			"💸 **Fee Cut:** %s%s\n"+
			"📤 **To Release:** %s%s",
		strings.ToUpper(string(tx.Currency)),
		tx.TradeID,
		symbol, utils.FormatAmount(tx.ReceivedAmount),
		symbol, utils.FormatAmount(tx.Fee),
		symbol, utils.FormatAmount(tx.ReleaseAmount),
	)
}
