package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/escrowhq/escrow_bot/internal/models"
	"github.com/escrowhq/escrow_bot/internal/parser"
	"github.com/escrowhq/escrow_bot/internal/service"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) HandleUpdate(update tgbotapi.Update) {
	b.withUserCheck(func(ctx context.Context, update tgbotapi.Update) {
		msg := update.Message
		text := msg.Text
		chatID := msg.Chat.ID
		userID := msg.From.ID

		b.logger.Infof("Processing message from user %d: %s", userID, text)

		// Forwarded deal-terminal messages go straight to the parser.
		if msg.ForwardDate != 0 {
			switch parser.Match(text) {
			case parser.KindNewDeal:
				b.handleNewDeal(ctx, chatID, userID, text)
				return
			case parser.KindCompletion:
				b.handleCompletedDeal(ctx, chatID, userID, text)
				return
			}
		}

		switch b.getState(userID) {
		case stateBroadcastMessage:
			b.handleBroadcastMessage(userID, msg)
			return
		case stateBroadcastConfirm:
			b.handleBroadcastConfirm(ctx, userID, text)
			return
		case stateResetUserConfirm:
			b.handleResetUserConfirm(ctx, chatID, userID, text)
			return
		case stateResetAllConfirm:
			b.handleResetAllConfirm(ctx, chatID, userID, text)
			return
		}

		switch text {
		case "/start", btnBackToMenu:
			b.handleStart(ctx, chatID, userID, msg.From.FirstName)
		case "/admin", btnBackToAdmin:
			b.adminMenu(ctx, chatID, userID)
		case btnINRDashboard:
			b.showDashboard(ctx, chatID, userID, models.CurrencyINR)
		case btnCryptoDashboard:
			b.showDashboard(ctx, chatID, userID, models.CurrencyCrypto)
		case btnTotalHolding:
			b.showTotalHolding(ctx, chatID, userID)
		case btnPending:
			b.showPendingDeals(ctx, chatID, userID)
		case btnTotalFees:
			b.showFeesMenu(chatID, userID)
		case btnVolume:
			b.showVolumeMenu(chatID, userID)
		case btnFeesToday:
			b.showFees(ctx, chatID, userID, service.PeriodToday, "FEES EARNED TODAY")
		case btnFeesWeekly:
			b.showFees(ctx, chatID, userID, service.PeriodWeekly, "FEES EARNED THIS WEEK")
		case btnFeesMonthly:
			b.showFees(ctx, chatID, userID, service.PeriodMonthly, "FEES EARNED THIS MONTH")
		case btnFeesAllTime:
			b.showFees(ctx, chatID, userID, service.PeriodAllTime, "ALL-TIME FEES EARNED")
		case btnVolumeToday:
			b.showVolume(ctx, chatID, userID, service.PeriodToday, "ESCROW VOLUME TODAY")
		case btnVolumeWeekly:
			b.showVolume(ctx, chatID, userID, service.PeriodWeekly, "ESCROW VOLUME THIS WEEK")
		case btnVolumeMonthly:
			b.showVolume(ctx, chatID, userID, service.PeriodMonthly, "ESCROW VOLUME THIS MONTH")
		case btnVolumeAllTime:
			b.showVolume(ctx, chatID, userID, service.PeriodAllTime, "ALL-TIME ESCROW VOLUME")
		case btnAdminGlobalStats:
			b.showGlobalStats(ctx, chatID, userID)
		case btnAdminAllPending:
			b.showAllPendingDeals(ctx, chatID, userID)
		case btnAdminExport:
			b.handleExport(ctx, chatID, userID)
		case btnAdminBroadcast:
			b.startBroadcast(chatID, userID)
		case btnAdminResetUser:
			b.startResetUser(chatID, userID)
		case btnAdminResetAll:
			b.startResetAll(chatID, userID)
		default:
			if tradeID, ok := parser.ParseRelease(text); ok {
				b.handleRelease(ctx, chatID, userID, tradeID)
				return
			}
			if b.isOwner(userID) && strings.HasPrefix(text, watchUserPrefix) {
				b.startWatchingUser(ctx, chatID, userID, text)
				return
			}
			b.sendMessage(chatID, "Please use the buttons or forward a deal message.", b.mainKeyboard(userID))
		}
	})(update)
}

func (b *Bot) handleStart(ctx context.Context, chatID, userID int64, firstName string) {
	b.resetSession(userID)
	b.sendMessage(chatID, fmt.Sprintf("🙏🏻 **Welcome, %s!**", firstName), userKeyboard())
}
