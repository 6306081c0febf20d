package telegram

import (
	"context"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	conversationdomain "github.com/nutrilog/nutrilog/internal/conversation/domain"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type conversationStub struct {
	handled int
}

func (c *conversationStub) Handle(ctx context.Context, ev conversationdomain.Event) conversationdomain.Reply {
	c.handled++
	return conversationdomain.Reply{UserID: ev.UserID}
}

func TestHandleMessage_IgnoresSenderlessMessages(t *testing.T) {
	conv := &conversationStub{}
	b := &Bot{log: zap.NewNop(), conversation: conv}

	b.handleMessage(context.Background(), &tgbotapi.Message{
		From: nil,
		Chat: &tgbotapi.Chat{ID: 99},
		Text: "channel announcement",
	})

	assert.Zero(t, conv.handled)
}

func command(name string) *tgbotapi.Message {
	return &tgbotapi.Message{
		Text: "/" + name,
		Entities: []tgbotapi.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: len(name) + 1},
		},
	}
}

func TestMapMessage(t *testing.T) {
	b := &Bot{log: zap.NewNop()}
	ctx := context.Background()

	tests := []struct {
		name     string
		msg      *tgbotapi.Message
		wantType conversationdomain.EventType
		wantText string
		wantHelp bool
		wantOK   bool
	}{
		{name: "start shows help", msg: command("start"), wantHelp: true},
		{name: "help shows help", msg: command("help"), wantHelp: true},
		{name: "unknown command shows help", msg: command("banana"), wantHelp: true},
		{name: "reset command", msg: command("reset"), wantType: conversationdomain.EventReset, wantOK: true},
		{name: "summary command", msg: command("summary"), wantType: conversationdomain.EventSummary, wantOK: true},
		{name: "resumo alias", msg: command("resumo"), wantType: conversationdomain.EventSummary, wantOK: true},
		{name: "plain text", msg: &tgbotapi.Message{Text: "two eggs"}, wantType: conversationdomain.EventText, wantText: "two eggs", wantOK: true},
		{name: "text is trimmed", msg: &tgbotapi.Message{Text: "  toast  "}, wantType: conversationdomain.EventText, wantText: "toast", wantOK: true},
		{name: "reset trigger phrase", msg: &tgbotapi.Message{Text: "Primeira Refeição"}, wantType: conversationdomain.EventReset, wantOK: true},
		{name: "empty text ignored", msg: &tgbotapi.Message{Text: "   "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, help, ok := b.mapMessage(ctx, "42", tt.msg)

			if tt.wantHelp {
				assert.Equal(t, helpText, help)
				assert.False(t, ok)
				return
			}
			assert.Empty(t, help)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.Equal(t, "42", ev.UserID)
			assert.Equal(t, tt.wantType, ev.Type)
			assert.Equal(t, tt.wantText, ev.Text)
		})
	}
}
