package app

import (
	"context"
	"os"

	"github.com/go-redis/redis/v8"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
	"github.com/yanashcherbakova/QueueTubeBot/store"
	"github.com/yanashcherbakova/QueueTubeBot/youtube"
)

type Application struct {
	Logger *logrus.Logger

	Bot *tgbotapi.BotAPI

	UserStore     store.UserStore
	PlaylistStore store.PlaylistStore
	ItemStore     store.ItemStore
	Conversations store.ConversationStore

	Classifier youtube.Classifier

	Redis *redis.Client
}

func NewApplication() (*Application, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	db, err := createSQLDB()
	if err != nil {
		return nil, err
	}

	rc := createRedisClient()

	bot, err := tgbotapi.NewBotAPI(os.Getenv("TELEGRAM_TOKEN"))
	if err != nil {
		return nil, err
	}

	classifier, err := youtube.NewClassifier(context.Background(), os.Getenv("YT_API_KEY"))
	if err != nil {
		return nil, err
	}

	app := &Application{
		Logger: logger,

		Bot: bot,

		UserStore:     store.NewUserStore(db),
		PlaylistStore: store.NewPlaylistStore(db),
		ItemStore:     store.NewItemStore(db),
		Conversations: store.NewConversationStore(rc, "conversations"),

		Classifier: classifier,

		Redis: rc,
	}

	// users before playlists before items, the FKs depend on it
	if err := app.UserStore.CreateTable(); err != nil {
		return nil, err
	}
	if err := app.PlaylistStore.CreateTable(); err != nil {
		return nil, err
	}
	if err := app.ItemStore.CreateTable(); err != nil {
		return nil, err
	}

	return app, nil
}
