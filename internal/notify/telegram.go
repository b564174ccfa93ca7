package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"
)

// Sender delivers text and photo messages to a single chat target.
type Sender interface {
	SendText(ctx context.Context, target ChatTarget, text string) error
	SendPhoto(ctx context.Context, target ChatTarget, caption string, photo []byte) error
}

// TelegramSender sends messages via the Telegram Bot API.
type TelegramSender struct {
	BotToken string
	apiBase  string
	http     *http.Client
}

// NewTelegramSender creates a Telegram sender.
func NewTelegramSender(botToken string) *TelegramSender {
	return &TelegramSender{
		BotToken: botToken,
		apiBase:  "https://api.telegram.org",
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Validate checks the sender configuration.
func (t *TelegramSender) Validate() error {
	if t.BotToken == "" {
		return errors.New("telegram: bot token is required")
	}
	return nil
}

// SendText delivers a plain text message.
func (t *TelegramSender) SendText(ctx context.Context, target ChatTarget, text string) error {
	payload := map[string]interface{}{
		"chat_id": target.ChatID,
		"text":    text,
	}
	if target.ThreadID != nil {
		payload["message_thread_id"] = *target.ThreadID
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram: marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.http.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// SendPhoto delivers a PNG attachment with a caption.
func (t *TelegramSender) SendPhoto(ctx context.Context, target ChatTarget, caption string, photo []byte) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("chat_id", strconv.FormatInt(target.ChatID, 10)); err != nil {
		return fmt.Errorf("telegram: write field: %w", err)
	}
	if target.ThreadID != nil {
		if err := w.WriteField("message_thread_id", strconv.FormatInt(*target.ThreadID, 10)); err != nil {
			return fmt.Errorf("telegram: write field: %w", err)
		}
	}
	if caption != "" {
		if err := w.WriteField("caption", caption); err != nil {
			return fmt.Errorf("telegram: write field: %w", err)
		}
	}

	part, err := w.CreateFormFile("photo", "schedule.png")
	if err != nil {
		return fmt.Errorf("telegram: create form file: %w", err)
	}
	if _, err := part.Write(photo); err != nil {
		return fmt.Errorf("telegram: write photo: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("telegram: close multipart: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendPhoto", t.apiBase, t.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return fmt.Errorf("telegram: create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := t.http.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram: unexpected status %d", resp.StatusCode)
	}
	return nil
}
