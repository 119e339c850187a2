package notify

import (
	"fmt"
	"log"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// Pusher is the subset of the LINE Messaging API client used for pushes.
type Pusher interface {
	PushMessage(req *messaging_api.PushMessageRequest, xLineRetryKey string) (*messaging_api.PushMessageResponse, error)
}

// LineNotifier pushes notifications to one LINE user in the background.
type LineNotifier struct {
	bot Pusher
	to  string
}

func NewLineNotifier(bot Pusher, to string) *LineNotifier {
	return &LineNotifier{bot: bot, to: to}
}

// NewLineNotifierFromToken creates the Messaging API client for channelToken.
func NewLineNotifierFromToken(channelToken, to string) (*LineNotifier, error) {
	bot, err := messaging_api.NewMessagingApiAPI(channelToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create LINE bot client: %w", err)
	}
	return NewLineNotifier(bot, to), nil
}

func (l *LineNotifier) Notify(n Notification) {
	go func() {
		if err := l.push(n); err != nil {
			log.Printf("Failed to push notification: %v", err)
		}
	}()
}

func (l *LineNotifier) push(n Notification) error {
	text := n.Message
	if n.Level == LevelError {
		text = "⚠️ " + text
	}

	_, err := l.bot.PushMessage(
		&messaging_api.PushMessageRequest{
			To:       l.to,
			Messages: []messaging_api.MessageInterface{&messaging_api.TextMessage{Text: text}},
		},
		"",
	)
	return err
}
