package app

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yanashcherbakova/QueueTubeBot/store"
	"github.com/yanashcherbakova/QueueTubeBot/youtube"
)

const updateTimeout = 30 * time.Second

var botCommands = []tgbotapi.BotCommand{
	{Command: "start", Description: "Start the bot"},
	{Command: "show_playlists", Description: "Show your playlists"},
	{Command: "next", Description: "Get the next video (random or by position in /show_playlists)"},
	{Command: "delete_playlist", Description: "Delete a playlist by its position"},
	{Command: "restart", Description: "Restart a playlist by its position"},
	{Command: "stat", Description: "Show your statistics"},
	{Command: "help", Description: "Show available commands"},
}

// RunBot registers the command menu and consumes the long-polling
// update stream. Each update is handled on its own goroutine; all
// durable state lives in the stores.
func (app *Application) RunBot() error {
	if _, err := app.Bot.Request(tgbotapi.NewSetMyCommands(botCommands...)); err != nil {
		return err
	}

	app.Logger.WithField("bot", app.Bot.Self.UserName).Info("bot started")

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = int(updateTimeout / time.Second)

	for update := range app.Bot.GetUpdatesChan(cfg) {
		go app.handleUpdate(update)
	}
	return nil
}

func (app *Application) handleUpdate(update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Text == "" {
		return
	}

	log := app.Logger.WithFields(logrus.Fields{
		"update_id":      update.UpdateID,
		"chat_id":        msg.Chat.ID,
		"from_id":        msg.From.ID,
		"correlation_id": uuid.NewString(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), updateTimeout)
	defer cancel()

	if msg.IsCommand() {
		app.dispatchCommand(ctx, log, msg)
		return
	}
	app.dispatchText(ctx, log, msg)
}

func (app *Application) dispatchCommand(ctx context.Context, log *logrus.Entry, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		app.handleStart(ctx, log, msg)
	case "next":
		app.handleNext(ctx, log, msg)
	case "show_playlists":
		app.handleShowPlaylists(ctx, log, msg)
	case "delete_playlist":
		app.handleStartConfirm(ctx, log, msg, store.AwaitingDelete)
	case "restart":
		app.handleStartConfirm(ctx, log, msg, store.AwaitingRestart)
	case "stat":
		app.handleStat(ctx, log, msg)
	case "cancel":
		app.handleCancel(ctx, log, msg)
	case "help":
		app.handleHelp(log, msg)
	}
}

// dispatchText routes non-command messages: a pending confirmation
// consumes the answer first, otherwise a YouTube link gets ingested and
// everything else is ignored.
func (app *Application) dispatchText(ctx context.Context, log *logrus.Entry, msg *tgbotapi.Message) {
	awaiting, err := app.Conversations.Awaiting(ctx, msg.Chat.ID)
	if err != nil {
		log.WithError(err).Error("failed to read conversation state")
	}
	if awaiting != store.AwaitingNothing {
		app.handleConfirmAnswer(ctx, log, msg, awaiting)
		return
	}

	if youtube.IsYouTubeLink(msg.Text) {
		app.handleIngest(ctx, log, msg)
	}
}

func (app *Application) reply(log *logrus.Entry, chatID int64, text string) {
	out := tgbotapi.NewMessage(chatID, text)
	if _, err := app.Bot.Send(out); err != nil {
		log.WithError(err).Error("failed to send reply")
	}
}

func (app *Application) replyHTML(log *logrus.Entry, chatID int64, text string) {
	out := tgbotapi.NewMessage(chatID, text)
	out.ParseMode = tgbotapi.ModeHTML
	out.DisableWebPagePreview = true
	if _, err := app.Bot.Send(out); err != nil {
		log.WithError(err).Error("failed to send reply")
	}
}
