// Package telegram is the chat front end: it collects the three uploads,
// triggers the pipeline and delivers the finished card.
package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/mgetnet/faydagen/internal/pipeline"
	"github.com/mgetnet/faydagen/internal/session"
)

const welcomeText = `📄 *Fayda ID Bot*

Send me 3 screenshots in order:
1️⃣ Front page
2️⃣ Back page
3️⃣ Photo+QR

I'll generate an ID card.`

const helpText = `*Available Commands:*

/start - Start over with a fresh session
/cancel - Discard uploaded images
/status - Show how many images I have
/help - Show this help

Send the three screenshots one by one; I reply once all three arrive.`

// Config holds Telegram bot configuration
type Config struct {
	Token     string
	AllowList []int64 // Allowed user IDs (empty = allow all)
}

// Bot wires Telegram updates to the session store and pipeline.
type Bot struct {
	api       *tgbotapi.BotAPI
	sessions  *session.Store
	pipeline  *pipeline.Pipeline
	logger    *zap.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	allowList map[int64]bool
}

// NewBot creates a new Telegram bot
func NewBot(cfg Config, sessions *session.Store, pipe *pipeline.Pipeline, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	api.Debug = false
	logger.Info("Authorized on Telegram", zap.String("username", api.Self.UserName))

	ctx, cancel := context.WithCancel(context.Background())

	allowList := make(map[int64]bool)
	for _, id := range cfg.AllowList {
		allowList[id] = true
	}

	return &Bot{
		api:       api,
		sessions:  sessions,
		pipeline:  pipe,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		allowList: allowList,
	}, nil
}

// Start starts the update loop.
func (b *Bot) Start() {
	b.wg.Add(1)
	go b.run()
}

// Stop stops the bot and waits for in-flight handlers.
func (b *Bot) Stop() {
	b.cancel()
	b.wg.Wait()
}

func (b *Bot) run() {
	defer b.wg.Done()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-b.ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := b.handleUpdate(update); err != nil {
				b.logger.Error("Failed to handle update", zap.Error(err))
			}
		}
	}
}

func (b *Bot) handleUpdate(update tgbotapi.Update) error {
	if update.Message == nil {
		return nil
	}

	msg := update.Message
	userID := msg.From.ID

	if len(b.allowList) > 0 && !b.allowList[userID] {
		b.sendMessage(msg.Chat.ID, "⛔ You are not authorized to use this bot.")
		return nil
	}

	if msg.IsCommand() {
		return b.handleCommand(msg)
	}

	if msg.Photo != nil && len(msg.Photo) > 0 {
		return b.handlePhoto(msg)
	}

	if msg.Text != "" {
		_, err := b.sendMessage(msg.Chat.ID, "Send me screenshots, not text. Use /help if you're stuck.")
		return err
	}

	return nil
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	userID := msg.From.ID

	switch msg.Command() {
	case "start":
		b.sessions.Start(userID)
		_, err := b.sendMessage(chatID, welcomeText)
		return err

	case "help":
		_, err := b.sendMessage(chatID, helpText)
		return err

	case "cancel":
		if b.sessions.Cancel(userID) {
			_, err := b.sendMessage(chatID, "🗑 Session discarded. Send /start to begin again.")
			return err
		}
		_, err := b.sendMessage(chatID, "Nothing to cancel.")
		return err

	case "status":
		sess, ok := b.sessions.Get(userID)
		if !ok {
			_, err := b.sendMessage(chatID, "No session yet. Send /start to begin.")
			return err
		}
		_, err := b.sendMessage(chatID, fmt.Sprintf("📸 %d/%d images received.", len(sess.Images), session.RequiredImages))
		return err

	default:
		_, err := b.sendMessage(chatID, "❓ Unknown command. Use /help for available commands.")
		return err
	}
}

func (b *Bot) handlePhoto(msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	userID := msg.From.ID

	// Largest size is last.
	photo := msg.Photo[len(msg.Photo)-1]

	localPath := b.sessions.ImagePath(userID)
	if err := b.downloadFile(photo.FileID, localPath); err != nil {
		b.logger.Error("Failed to download photo", zap.Int64("user_id", userID), zap.Error(err))
		_, sendErr := b.sendMessage(chatID, "❌ Error receiving image, please resend it.")
		return sendErr
	}

	count, ready, err := b.sessions.AddImage(userID, localPath)
	if err != nil {
		os.Remove(localPath)
		_, sendErr := b.sendMessage(chatID, "⏳ Still processing your previous images, hold on.")
		return sendErr
	}

	b.sendMessage(chatID, fmt.Sprintf("✅ Image %d/%d received", count, session.RequiredImages))

	if !ready {
		return nil
	}
	return b.processSession(chatID, userID)
}

// processSession runs the pipeline for a Ready session. Cleanup of session
// files is unconditional: it happens whether the run succeeds, fails or
// panics, and the user always gets either the card or one failure notice.
func (b *Bot) processSession(chatID, userID int64) error {
	final := session.StateFailed
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Pipeline panicked", zap.Int64("user_id", userID), zap.Any("panic", r))
			b.sendMessage(chatID, "❌ Something went wrong, please try again with /start.")
		}
		b.sessions.Finish(userID, final)
	}()

	images, err := b.sessions.Images(userID)
	if err != nil || len(images) < session.RequiredImages {
		b.sendMessage(chatID, "❌ Something went wrong, please try again with /start.")
		return err
	}

	b.sendMessage(chatID, "⏳ Processing...")

	ctx, cancel := context.WithTimeout(b.ctx, 3*time.Minute)
	defer cancel()

	outPath := b.sessions.ImagePath(userID)
	result, err := b.pipeline.Run(ctx, images[0], images[1], images[2], outPath)
	if err != nil {
		b.logger.Error("Pipeline failed", zap.Int64("user_id", userID), zap.Error(err))
		_, sendErr := b.sendMessage(chatID, "❌ Couldn't generate the card from those images. Try clearer screenshots and /start again.")
		return sendErr
	}

	caption := "🪪 Here's your ID card."
	if result.Synthetic {
		caption = "🪪 Couldn't read your ID well; this card shows SAMPLE data only."
	}

	reply := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(result.OutputPath))
	reply.Caption = caption
	if _, err := b.api.Send(reply); err != nil {
		b.logger.Error("Failed to send card", zap.Int64("user_id", userID), zap.Error(err))
		return err
	}

	final = session.StateComplete
	return nil
}

// downloadFile downloads a Telegram file to destPath.
func (b *Bot) downloadFile(fileID, destPath string) error {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return fmt.Errorf("failed to get file info: %w", err)
	}

	resp, err := http.Get(file.Link(b.api.Token))
	if err != nil {
		return fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}
	return nil
}

func (b *Bot) sendMessage(chatID int64, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	sent, err := b.api.Send(msg)
	if err != nil {
		// Try without markdown if it fails
		msg.ParseMode = ""
		sent, err = b.api.Send(msg)
		if err != nil {
			return 0, err
		}
	}
	return sent.MessageID, nil
}
