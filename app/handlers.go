package app

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
	"github.com/yanashcherbakova/QueueTubeBot/models"
	"github.com/yanashcherbakova/QueueTubeBot/store"
	"github.com/yanashcherbakova/QueueTubeBot/youtube"
)

// currentUser resolves the sender to an internal user record, creating
// it and its default playlist on first contact. The record is cached
// per conversation; cache failures fall through to the database.
func (app *Application) currentUser(ctx context.Context, log *logrus.Entry, msg *tgbotapi.Message) (*store.CachedUser, error) {
	cached, err := app.Conversations.User(ctx, msg.Chat.ID)
	if err != nil {
		log.WithError(err).Warn("conversation cache unavailable")
	}
	if cached != nil {
		return cached, nil
	}

	userID, err := app.UserStore.Ensure(ctx, msg.From.ID, displayName(msg.From))
	if err != nil {
		return nil, err
	}
	defaultID, err := app.PlaylistStore.EnsureDefault(ctx, userID)
	if err != nil {
		return nil, err
	}

	user := &store.CachedUser{
		UserID:            userID,
		DefaultPlaylistID: defaultID,
		DisplayName:       displayName(msg.From),
	}
	if err := app.Conversations.SaveUser(ctx, msg.Chat.ID, *user); err != nil {
		log.WithError(err).Warn("failed to cache user")
	}
	return user, nil
}

func displayName(from *tgbotapi.User) string {
	if from.UserName != "" {
		return from.UserName
	}
	return from.FirstName
}

func (app *Application) handleStart(ctx context.Context, log *logrus.Entry, msg *tgbotapi.Message) {
	user, err := app.currentUser(ctx, log, msg)
	if err != nil {
		log.WithError(err).Error("failed to init user")
		app.reply(log, msg.Chat.ID, "🔴 Internal error. Failed to init user")
		return
	}

	app.reply(log, msg.Chat.ID, fmt.Sprintf("Hi, @%s! Send me youtube playlist link to start\nUse /help for command list", user.DisplayName))
}

func (app *Application) handleIngest(ctx context.Context, log *logrus.Entry, msg *tgbotapi.Message) {
	user, err := app.currentUser(ctx, log, msg)
	if err != nil {
		log.WithError(err).Error("failed to restore user")
		app.reply(log, msg.Chat.ID, "🔴 Internal error. Please try again.")
		return
	}

	link := strings.TrimSpace(msg.Text)
	if !youtube.IsYouTubeLink(link) {
		app.reply(log, msg.Chat.ID, "Error: Not YouTube link")
		return
	}

	switch app.Classifier.Classify(link) {
	case youtube.KindPlaylist:
		app.ingestPlaylist(ctx, log, msg.Chat.ID, user, link)
	case youtube.KindVideo:
		app.ingestVideo(ctx, log, msg.Chat.ID, user, link)
	default:
		log.Warn("link is neither a video nor a playlist")
		app.reply(log, msg.Chat.ID, "Type error: not a video / not a playlist")
	}
}

func (app *Application) ingestPlaylist(ctx context.Context, log *logrus.Entry, chatID int64, user *store.CachedUser, link string) {
	extracted, err := app.Classifier.ExtractPlaylist(ctx, link)
	if err != nil {
		log.WithError(err).Error("playlist extraction failed")
		app.reply(log, chatID, "🔴 YouTube did not recognize this link.")
		return
	}

	playlist := models.PlaylistDBModel{
		UserID:           user.UserID,
		SourceRef:        link,
		Title:            extracted.Title,
		TotalDurationSec: extracted.TotalDurationSec,
		Status:           models.StatusPending,
	}
	items := make([]models.PlaylistItemDBModel, 0, len(extracted.Items))
	for _, it := range extracted.Items {
		pos := it.Position
		items = append(items, models.PlaylistItemDBModel{
			Position:    &pos,
			Title:       it.Title,
			URL:         it.URL,
			DurationSec: it.DurationSec,
			Status:      models.StatusPending,
		})
	}

	playlistID, err := app.PlaylistStore.CreateWithItems(ctx, playlist, items)
	if err != nil {
		log.WithError(err).Error("failed to save playlist")
		app.reply(log, chatID, "Internal error while saving link.")
		return
	}

	if playlistID == 0 {
		app.reply(log, chatID, "Hi! This playlist already exists")
		return
	}
	log.WithField("playlist_id", playlistID).Info("playlist saved")
	app.reply(log, chatID, "Playlist saved")
}

func (app *Application) ingestVideo(ctx context.Context, log *logrus.Entry, chatID int64, user *store.CachedUser, link string) {
	video, err := app.Classifier.ExtractVideo(ctx, link)
	if err != nil {
		// degrade to a placeholder rather than refusing the link
		log.WithError(err).Warn("video extraction failed, saving placeholder")
		video = &youtube.Video{URL: link}
	}

	if err := app.ItemStore.AddSingle(ctx, user.DefaultPlaylistID, video.Title, video.URL, video.DurationSec); err != nil {
		log.WithError(err).Error("failed to save video")
		app.reply(log, chatID, "Internal error while saving link.")
		return
	}
	if _, err := app.PlaylistStore.SetPending(ctx, user.DefaultPlaylistID, user.UserID); err != nil {
		log.WithError(err).Error("failed to reopen default playlist")
	}

	title := video.Title
	if title == "" {
		title = "video"
	}
	app.reply(log, chatID, fmt.Sprintf("Video: 🎥 %s\nadded to your custom playlist", title))
}

func (app *Application) handleNext(ctx context.Context, log *logrus.Entry, msg *tgbotapi.Message) {
	user, err := app.currentUser(ctx, log, msg)
	if err != nil {
		log.WithError(err).Error("failed to restore user")
		app.reply(log, msg.Chat.ID, "🔴 Internal error. Please try again.")
		return
	}

	var playlistID int64
	if arg := strings.TrimSpace(msg.CommandArguments()); arg != "" {
		pos, convErr := strconv.Atoi(arg)
		if convErr != nil {
			app.reply(log, msg.Chat.ID, "Playlist number must be an integer")
			return
		}
		playlistID, err = app.PlaylistStore.ResolvePosition(ctx, user.UserID, pos)
		if err != nil {
			log.WithError(err).Error("failed to resolve playlist position")
			app.reply(log, msg.Chat.ID, "🔴 Internal error. Try again later.")
			return
		}
	}

	if playlistID == 0 {
		playlistID, err = app.PlaylistStore.PickRandomReady(ctx, user.UserID)
		if err != nil {
			log.WithError(err).Error("failed to pick a playlist")
			app.reply(log, msg.Chat.ID, "🔴 Internal error. Try again later.")
			return
		}
	}
	if playlistID == 0 {
		app.reply(log, msg.Chat.ID, "No playlists with -- pending -- status")
		return
	}

	item, err := app.PlaylistStore.FindNextPending(ctx, playlistID, user.UserID)
	if err != nil {
		log.WithError(err).Error("failed to find next video")
		app.reply(log, msg.Chat.ID, "🔴 Internal error. Try again later.")
		return
	}
	if item == nil {
		app.reply(log, msg.Chat.ID, "Try again. No videos with -- pending -- status in current playlist")
		return
	}

	app.reply(log, msg.Chat.ID, item.URL)

	if ok, err := app.ItemStore.MarkDone(ctx, item.ID, playlistID, user.UserID); err != nil {
		log.WithError(err).Error("failed to mark video done")
	} else if ok {
		log.WithField("url", item.URL).Info("video marked as done")
	}

	if ok, err := app.PlaylistStore.TouchLastServed(ctx, playlistID, user.UserID); err != nil {
		log.WithError(err).Error("failed to touch last served")
	} else if ok {
		log.Info("playlist last served stamped")
	}

	done, err := app.PlaylistStore.MarkDoneIfSettled(ctx, playlistID, user.UserID)
	if err != nil {
		log.WithError(err).Error("failed to settle playlist")
		return
	}
	if done {
		log.WithField("playlist_id", playlistID).Info("playlist marked as done")
		app.reply(log, msg.Chat.ID, "Playlist has been marked as done!")
	}
}

func (app *Application) handleShowPlaylists(ctx context.Context, log *logrus.Entry, msg *tgbotapi.Message) {
	user, err := app.currentUser(ctx, log, msg)
	if err != nil {
		log.WithError(err).Error("failed to restore user")
		app.reply(log, msg.Chat.ID, "🔴 Internal error. Please try again.")
		return
	}

	rows, err := app.PlaylistStore.Overview(ctx, user.UserID)
	if err != nil {
		log.WithError(err).Error("failed to fetch playlists")
		app.reply(log, msg.Chat.ID, "🔴 Failed to fetch playlists.")
		return
	}

	app.replyHTML(log, msg.Chat.ID, renderOverview(rows))
}

// handleStartConfirm arms the two-step confirmation for a destructive
// action and shows the numbered overview to pick from.
func (app *Application) handleStartConfirm(ctx context.Context, log *logrus.Entry, msg *tgbotapi.Message, action store.AwaitingAction) {
	user, err := app.currentUser(ctx, log, msg)
	if err != nil {
		log.WithError(err).Error("failed to restore user")
		app.reply(log, msg.Chat.ID, "🔴 Internal error. Please try again.")
		return
	}

	rows, err := app.PlaylistStore.Overview(ctx, user.UserID)
	if err != nil {
		log.WithError(err).Error("failed to fetch playlists")
		app.reply(log, msg.Chat.ID, "🔴 Failed to fetch playlists.")
		return
	}

	if err := app.Conversations.SetAwaiting(ctx, msg.Chat.ID, action); err != nil {
		log.WithError(err).Error("failed to arm confirmation")
		app.reply(log, msg.Chat.ID, "🔴 Internal error. Please try again.")
		return
	}

	instruction := "🗑️ To delete playlist send the number\n✋🏻 To cancel command send /cancel\n"
	if action == store.AwaitingRestart {
		instruction = "🔄 To restart playlist send the number\n✋🏻 To cancel command send /cancel\n"
	}
	app.replyHTML(log, msg.Chat.ID, instruction+renderOverview(rows))
}

// handleConfirmAnswer consumes the number sent while a confirmation is
// armed. Non-numeric input keeps the flag armed and asks again.
func (app *Application) handleConfirmAnswer(ctx context.Context, log *logrus.Entry, msg *tgbotapi.Message, action store.AwaitingAction) {
	user, err := app.currentUser(ctx, log, msg)
	if err != nil {
		log.WithError(err).Error("failed to restore user")
		app.reply(log, msg.Chat.ID, "🔴 Internal error. Please try again.")
		return
	}

	pos, convErr := strconv.Atoi(strings.TrimSpace(msg.Text))
	if convErr != nil {
		app.reply(log, msg.Chat.ID, "Please send a NUMBER of the playlist or /cancel.")
		return
	}

	if _, err := app.Conversations.ClearAwaiting(ctx, msg.Chat.ID); err != nil {
		log.WithError(err).Error("failed to clear confirmation")
	}

	switch action {
	case store.AwaitingDelete:
		app.performDelete(ctx, log, msg.Chat.ID, user, pos)
	case store.AwaitingRestart:
		app.performRestart(ctx, log, msg.Chat.ID, user, pos)
	}
}

func (app *Application) performDelete(ctx context.Context, log *logrus.Entry, chatID int64, user *store.CachedUser, pos int) {
	playlistID, err := app.PlaylistStore.ResolvePosition(ctx, user.UserID, pos)
	if err != nil {
		log.WithError(err).Error("failed to resolve playlist position")
		app.reply(log, chatID, "🔴 Internal error. Try again later.")
		return
	}
	if playlistID == 0 {
		app.reply(log, chatID, "No playlist found by that number.")
		return
	}

	deleted, err := app.PlaylistStore.Delete(ctx, playlistID, user.UserID)
	if err != nil {
		log.WithError(err).Error("failed to delete playlist")
		app.reply(log, chatID, "🔴 Failed to delete the playlist.")
		return
	}
	if deleted == nil {
		app.reply(log, chatID, "Nothing to delete (already removed?).")
		return
	}

	log.WithFields(logrus.Fields{"playlist_id": deleted.ID, "title": deleted.Title}).Info("playlist deleted")
	app.replyHTML(log, chatID, fmt.Sprintf(
		"Deleted:\n%d %s\n🔗 <a href=\"%s\">link</a>",
		deleted.ID, html.EscapeString(deleted.Title), html.EscapeString(deleted.SourceRef)))
}

func (app *Application) performRestart(ctx context.Context, log *logrus.Entry, chatID int64, user *store.CachedUser, pos int) {
	playlistID, err := app.PlaylistStore.ResolvePosition(ctx, user.UserID, pos)
	if err != nil {
		log.WithError(err).Error("failed to resolve playlist position")
		app.reply(log, chatID, "🔴 Internal error. Try again later.")
		return
	}
	if playlistID == 0 {
		app.reply(log, chatID, "No playlist found by that number.")
		return
	}

	result, err := app.PlaylistStore.Restart(ctx, playlistID, user.UserID)
	if err != nil {
		log.WithError(err).Error("failed to restart playlist")
		app.reply(log, chatID, "🔴 Internal error while restarting playlist.")
		return
	}

	log.WithFields(logrus.Fields{"playlist_id": playlistID, "items_reset": result.ItemsReset}).Info("restart handled")
	app.reply(log, chatID, result.Message)
}

func (app *Application) handleStat(ctx context.Context, log *logrus.Entry, msg *tgbotapi.Message) {
	user, err := app.currentUser(ctx, log, msg)
	if err != nil {
		log.WithError(err).Error("failed to restore user")
		app.reply(log, msg.Chat.ID, "🔴 Internal error. Please try again.")
		return
	}

	stats, err := app.PlaylistStore.UserStats(ctx, user.UserID)
	if err != nil {
		log.WithError(err).Error("failed to compute statistics")
		app.reply(log, msg.Chat.ID, "🔴 Internal error. Try again later.")
		return
	}

	app.reply(log, msg.Chat.ID, renderStats(stats))
	log.Info("user stat delivered")
}

func (app *Application) handleCancel(ctx context.Context, log *logrus.Entry, msg *tgbotapi.Message) {
	action, err := app.Conversations.ClearAwaiting(ctx, msg.Chat.ID)
	if err != nil {
		log.WithError(err).Error("failed to clear confirmation")
		app.reply(log, msg.Chat.ID, "🔴 Internal error. Please try again.")
		return
	}

	switch action {
	case store.AwaitingDelete:
		app.reply(log, msg.Chat.ID, "Deletion cancelled.")
	case store.AwaitingRestart:
		app.reply(log, msg.Chat.ID, "Restart cancelled.")
	default:
		app.reply(log, msg.Chat.ID, "Nothing to cancel.")
	}
}

func (app *Application) handleHelp(log *logrus.Entry, msg *tgbotapi.Message) {
	app.reply(log, msg.Chat.ID, "Here are the available commands:\n\n"+
		"/start - Start the bot\n"+
		"/show_playlists - Show your playlists\n"+
		"/next [playlist position] - Get the next video (random if no number)\n"+
		"/delete_playlist - Delete a playlist by number\n"+
		"/restart - Restart a playlist by its position\n"+
		"/stat - Show your statistics\n")
}
