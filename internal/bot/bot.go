package bot

import (
	"context"
	"strings"
	"sync"

	"github.com/escrowhq/escrow_bot/config"
	"github.com/escrowhq/escrow_bot/internal/service"
	"github.com/escrowhq/escrow_bot/utils"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Bot struct {
	API          *tgbotapi.BotAPI
	service      *service.Service
	logger       *utils.Logger
	config       *config.Config
	sessions     map[int64]*session
	sessionMutex *sync.Mutex
}

func NewBot(
	api *tgbotapi.BotAPI,
	svc *service.Service,
	logger *utils.Logger,
	config *config.Config,
) *Bot {
	return &Bot{
		API:          api,
		service:      svc,
		logger:       logger,
		config:       config,
		sessions:     make(map[int64]*session),
		sessionMutex: &sync.Mutex{},
	}
}

func (b *Bot) Start() {
	b.logger.Info("Starting bot...")
	updates := b.API.GetUpdatesChan(tgbotapi.NewUpdate(0))
	for update := range updates {
		b.logger.Debugf("Received update: %+v", update)
		if update.CallbackQuery != nil {
			b.handleCallbackQuery(update.CallbackQuery)
			continue
		}
		if update.Message != nil {
			b.HandleUpdate(update)
		}
	}
}

func (b *Bot) handleCallbackQuery(callback *tgbotapi.CallbackQuery) {
	ctx := context.Background()
	if strings.HasPrefix(callback.Data, callbackFeePrefix) {
		b.handleFeeSelection(ctx, callback)
		return
	}
	b.answerCallback(callback.ID, "")
}

func (b *Bot) answerCallback(callbackID, text string) {
	if _, err := b.API.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		b.logger.Errorf("Failed to answer callback: %v", err)
	}
}

func (b *Bot) isOwner(userID int64) bool {
	return userID == b.config.BotOwnerID
}
