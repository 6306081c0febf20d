package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/nutrilog/nutrilog/internal/config"
	conversationdomain "github.com/nutrilog/nutrilog/internal/conversation/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const helpText = `📸 Send a meal photo plus a description,
or just describe what you ate.
/summary — weekly average
/reset — start the day over`

type Params struct {
	fx.In

	Cfg          config.Config
	Log          *zap.Logger
	Conversation conversationdomain.Service
}

// Bot routes Telegram updates to the state machine and replies back. It is
// deliberately thin: event mapping and photo download only.
type Bot struct {
	api          *tgbotapi.BotAPI
	log          *zap.Logger
	conversation conversationdomain.Service
	httpClient   *http.Client
}

func New(p Params) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(p.Cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &Bot{
		api:          api,
		log:          p.Log.Named("telegram.bot"),
		conversation: p.Conversation,
		httpClient: &http.Client{
			Timeout: p.Cfg.ProviderTimeout,
		},
	}, nil
}

// Run consumes the long-poll update channel until ctx is cancelled. Each
// update is handled on its own goroutine; per-user ordering is enforced
// downstream by the session store.
func (b *Bot) Run(ctx context.Context) {
	b.log.Info("telegram bot started", zap.String("username", b.api.Self.UserName))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			if update.Message == nil {
				continue
			}
			go b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	// Channel posts and anonymous admin messages carry no sender; there is no
	// user to keep a ledger for, so they are dropped.
	if msg.From == nil {
		b.log.Debug("ignoring message without sender", zap.Int64("chat_id", msg.Chat.ID))
		return
	}
	userID := strconv.FormatInt(msg.From.ID, 10)

	ev, helpReply, ok := b.mapMessage(ctx, userID, msg)
	if helpReply != "" {
		b.send(msg.Chat.ID, helpReply)
		return
	}
	if !ok {
		return
	}

	reply := b.conversation.Handle(ctx, ev)
	if reply.Text != "" {
		b.send(msg.Chat.ID, reply.Text)
	}
}

// mapMessage converts a Telegram message into a state-machine event. The
// legacy trigger phrases ("primeira refeição", /resumo) stay supported next
// to the English commands.
func (b *Bot) mapMessage(ctx context.Context, userID string, msg *tgbotapi.Message) (conversationdomain.Event, string, bool) {
	if msg.IsCommand() {
		switch msg.Command() {
		case "start", "help":
			return conversationdomain.Event{}, helpText, false
		case "reset":
			return conversationdomain.Event{UserID: userID, Type: conversationdomain.EventReset}, "", true
		case "summary", "resumo":
			return conversationdomain.Event{UserID: userID, Type: conversationdomain.EventSummary}, "", true
		default:
			return conversationdomain.Event{}, helpText, false
		}
	}

	if len(msg.Photo) > 0 {
		photo, err := b.downloadPhoto(ctx, msg.Photo)
		if err != nil {
			b.log.Warn("photo download failed", zap.Error(err), zap.String("user_id", userID))
			return conversationdomain.Event{}, "⚠️ I couldn't download that photo, please resend it.", false
		}
		return conversationdomain.Event{UserID: userID, Type: conversationdomain.EventPhoto, Photo: photo}, "", true
	}

	text := strings.TrimSpace(msg.Text)
	if strings.EqualFold(text, "primeira refeição") {
		return conversationdomain.Event{UserID: userID, Type: conversationdomain.EventReset}, "", true
	}
	if text == "" {
		return conversationdomain.Event{}, "", false
	}
	return conversationdomain.Event{UserID: userID, Type: conversationdomain.EventText, Text: text}, "", true
}

// downloadPhoto fetches the bytes of the largest available photo size.
func (b *Bot) downloadPhoto(ctx context.Context, sizes []tgbotapi.PhotoSize) ([]byte, error) {
	largest := sizes[len(sizes)-1]
	url, err := b.api.GetFileDirectURL(largest.FileID)
	if err != nil {
		return nil, fmt.Errorf("resolve photo url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create photo request: %w", err)
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch photo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch photo: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// send delivers one reply. Delivery failures are fatal to that reply only.
func (b *Bot) send(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Error("reply delivery failed", zap.Error(err), zap.Int64("chat_id", chatID))
	}
}

func registerLifecycle(lc fx.Lifecycle, b *Bot) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go b.Run(ctx)
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			// Give in-flight handlers a moment to finish their replies.
			select {
			case <-stopCtx.Done():
			case <-time.After(time.Second):
			}
			return nil
		},
	})
}

// Module wires the Telegram dispatcher.
var Module = fx.Module("telegram.bot",
	fx.Provide(New),
	fx.Invoke(registerLifecycle),
)
