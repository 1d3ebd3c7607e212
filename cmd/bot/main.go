package main

import (
	"github.com/escrowhq/escrow_bot/config"
	"github.com/escrowhq/escrow_bot/db"
	"github.com/escrowhq/escrow_bot/internal/bot"
	"github.com/escrowhq/escrow_bot/internal/repository"
	"github.com/escrowhq/escrow_bot/internal/service"
	"github.com/escrowhq/escrow_bot/utils"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func main() {
	logger := utils.InitLogger()
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		logger.Fatal("Failed to load config: ", err)
	}

	database, err := db.ConnectDb(cfg.DB_URL, logger)
	if err != nil {
		logger.Fatal(err)
	}

	if err := db.Migrate(database, true, logger); err != nil {
		logger.Fatal(err)
	}

	repo := repository.NewRepository(database, logger)
	ledgerService, err := service.NewService(repo, &cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create ledger service: ", err)
	}

	telegramBot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		logger.Fatal("Failed to create bot API: ", err)
	}

	bot := bot.NewBot(telegramBot, ledgerService, logger, &cfg)
	bot.Start()
}
