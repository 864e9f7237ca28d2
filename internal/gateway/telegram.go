package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"wishwall/internal/models"
	"wishwall/internal/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	greetingText = "Hi! Send me a photo with a caption holding your warm wish. " +
		"After moderation it will appear on the wedding site! ❤️"
	needPhotoText = "A wish is only accepted as a photo together with a caption. " +
		"Please send a photo and write your wish as its caption."
	needCaptionText = "A wish is only accepted as a photo together with a caption. " +
		"Please add your wish as a caption to the photo."
	acceptedText   = "Thank you! Your wish was sent for moderation 🎉"
	tryLaterText   = "Could not save your photo. Please try again later."
	alreadyDecided = "This wish has already been decided."
)

// Gateway is the Telegram front end: it receives guest submissions, forwards
// them to the fixed admin chat with decision buttons, and applies the admin's
// callback taps through the moderation workflow.
type Gateway struct {
	bot         *tgbotapi.BotAPI
	service     *services.ModerationService
	adminChatID int64
	client      *http.Client
}

func New(bot *tgbotapi.BotAPI, service *services.ModerationService, adminChatID int64) *Gateway {
	return &Gateway{
		bot:         bot,
		service:     service,
		adminChatID: adminChatID,
		client:      &http.Client{Timeout: 30 * time.Second},
	}
}

// Run long-polls for updates until the context is cancelled.
func (g *Gateway) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := g.bot.GetUpdatesChan(u)

	logrus.WithField("username", g.bot.Self.UserName).Info("Bot started")

	for {
		select {
		case <-ctx.Done():
			g.bot.StopReceivingUpdates()
			return ctx.Err()
		case update := <-updates:
			switch {
			case update.CallbackQuery != nil:
				g.handleCallback(ctx, update.CallbackQuery)
			case update.Message != nil:
				g.handleMessage(ctx, update.Message)
			}
		}
	}
}

func (g *Gateway) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	switch {
	case msg.IsCommand():
		g.handleCommand(ctx, msg)
	case len(msg.Photo) > 0:
		g.handlePhoto(ctx, msg)
	default:
		// Text, stickers, voice: nothing we can put on the wall.
		g.reply(msg, needPhotoText)
	}
}

func (g *Gateway) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start", "help":
		g.reply(msg, greetingText)
	case "stats":
		if msg.Chat.ID != g.adminChatID {
			return
		}
		count, err := g.service.PendingCount(ctx)
		if err != nil {
			logrus.WithError(err).Error("Failed to count pending wishes")
			g.reply(msg, "Failed to fetch stats.")
			return
		}
		g.reply(msg, fmt.Sprintf("Wishes awaiting moderation: %d", count))
	}
}

func (g *Gateway) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	caption := strings.TrimSpace(msg.Caption)
	if caption == "" {
		g.reply(msg, needCaptionText)
		return
	}

	// The last entry is the largest size Telegram rendered.
	photo := msg.Photo[len(msg.Photo)-1]
	data, ext, err := g.downloadPhoto(ctx, photo.FileID)
	if err != nil {
		logrus.WithError(err).Error("Failed to download photo")
		g.reply(msg, tryLaterText)
		return
	}

	wish, err := g.service.Submit(ctx, services.SubmitRequest{
		Message:     caption,
		Image:       data,
		ImageExt:    ext,
		SubmitterID: msg.Chat.ID,
	})
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			g.reply(msg, needCaptionText)
			return
		}
		logrus.WithError(err).Error("Failed to submit wish")
		g.reply(msg, tryLaterText)
		return
	}

	g.reply(msg, acceptedText)
	g.notifyModerator(wish, data, ext)
}

// notifyModerator forwards the photo and caption to the admin chat with the
// approve/reject buttons bound to the wish id.
func (g *Gateway) notifyModerator(wish *models.Wish, image []byte, ext string) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Approve", callbackData(models.DecisionApprove, wish.ID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Reject", callbackData(models.DecisionReject, wish.ID)),
		),
	)

	photo := tgbotapi.NewPhoto(g.adminChatID, tgbotapi.FileBytes{
		Name:  "wish" + ext,
		Bytes: image,
	})
	photo.Caption = fmt.Sprintf("New wish #%s:\n%s", wish.ID.Hex(), wish.Message)
	photo.ReplyMarkup = keyboard

	if _, err := g.bot.Send(photo); err != nil {
		// The wish stays pending; the admin can still find it via /stats.
		logrus.WithError(err).Warnf("Failed to notify moderator about wish %s", wish.ID.Hex())
	}
}

func (g *Gateway) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	decision, id, err := parseCallback(cq.Data)
	if err != nil {
		logrus.WithError(err).WithField("data", cq.Data).Warn("Ignoring malformed callback")
		g.answerCallback(cq, "Unknown action")
		return
	}

	result, err := g.service.Decide(ctx, id, decision)
	if err != nil {
		logrus.WithError(err).Error("Failed to apply decision")
		g.answerCallback(cq, "Failed to apply decision, try again")
		return
	}

	if !result.Applied {
		// Duplicate tap or a second moderator lost the race.
		g.answerCallback(cq, alreadyDecided)
		return
	}

	if cq.Message != nil {
		edit := tgbotapi.NewEditMessageCaption(
			cq.Message.Chat.ID,
			cq.Message.MessageID,
			fmt.Sprintf("%s\n\nStatus: %s", cq.Message.Caption, result.Status),
		)
		if _, err := g.bot.Send(edit); err != nil {
			logrus.WithError(err).Warn("Failed to edit moderation message")
		}
	}

	g.answerCallback(cq, fmt.Sprintf("Wish %s", result.Status))
}

func (g *Gateway) downloadPhoto(ctx context.Context, fileID string) ([]byte, string, error) {
	file, err := g.bot.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve file: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(g.bot.Token), nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build download request: %v", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download file: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected download status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read file body: %v", err)
	}

	return data, path.Ext(file.FilePath), nil
}

func (g *Gateway) reply(msg *tgbotapi.Message, text string) {
	reply := tgbotapi.NewMessage(msg.Chat.ID, text)
	reply.ReplyToMessageID = msg.MessageID
	if _, err := g.bot.Send(reply); err != nil {
		logrus.WithError(err).Warn("Failed to send reply")
	}
}

func (g *Gateway) answerCallback(cq *tgbotapi.CallbackQuery, text string) {
	if _, err := g.bot.Request(tgbotapi.NewCallback(cq.ID, text)); err != nil {
		logrus.WithError(err).Warn("Failed to answer callback")
	}
}

func callbackData(decision models.Decision, id primitive.ObjectID) string {
	return string(decision) + ":" + id.Hex()
}

// parseCallback splits "approve:<hex>" / "reject:<hex>" button payloads.
func parseCallback(data string) (models.Decision, primitive.ObjectID, error) {
	action, idStr, found := strings.Cut(data, ":")
	if !found {
		return "", primitive.NilObjectID, fmt.Errorf("callback data %q has no id", data)
	}

	decision := models.Decision(action)
	if decision != models.DecisionApprove && decision != models.DecisionReject {
		return "", primitive.NilObjectID, fmt.Errorf("unknown callback action %q", action)
	}

	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		return "", primitive.NilObjectID, fmt.Errorf("invalid wish id %q: %v", idStr, err)
	}

	return decision, id, nil
}
