package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Kargones/authgate/internal/pkg/logging"
	"github.com/Kargones/authgate/internal/pkg/urlutil"
)

// Параметры Telegram Bot API.
const (
	TelegramAPIBaseURL = "https://api.telegram.org/bot"
	TelegramParseMode  = "Markdown"

	// maxTelegramResponseSize: ответ sendMessage читается не дальше 1 KB.
	maxTelegramResponseSize = 1 << 10
	// maxTelegramText: лимит Telegram на длину сообщения в символах.
	maxTelegramText = 4096
)

// TelegramSink отправляет события в чаты Telegram. Обычно получает только
// error и fatal (см. TelegramConfig.MinLevel).
type TelegramSink struct {
	config     TelegramConfig
	origin     Origin
	baseURL    string
	httpClient HTTPClient
	now        func() time.Time
}

// NewTelegramSink создаёт TelegramSink с указанной конфигурацией.
func NewTelegramSink(config TelegramConfig, origin Origin) *TelegramSink {
	if config.Timeout <= 0 {
		config.Timeout = DefaultTelegramTimeout
	}
	return &TelegramSink{
		config:     config,
		origin:     origin,
		baseURL:    TelegramAPIBaseURL,
		httpClient: &http.Client{Timeout: config.Timeout},
		now:        time.Now,
	}
}

// SetHTTPClient подменяет HTTP клиент.
func (t *TelegramSink) SetHTTPClient(client HTTPClient) {
	t.httpClient = client
}

// Record отправляет событие во все чаты.
func (t *TelegramSink) Record(ctx context.Context, ev logging.TelemetryEvent) error {
	var sb strings.Builder
	sb.WriteString("*authgate ")
	sb.WriteString(escapeMarkdown(strings.ToUpper(string(ev.Level))))
	sb.WriteString("*\n\n")
	sb.WriteString(escapeMarkdown(ev.Message))
	sb.WriteString("\n")
	if len(ev.Fields) > 0 {
		sb.WriteString("\n*Context:* `")
		sb.WriteString(escapeMarkdown(ev.Fields.Encode()))
		sb.WriteString("`\n")
	}
	t.writeFooter(&sb, ev.Timestamp)
	return t.broadcast(ctx, sb.String())
}

// CaptureException отправляет исключение во все чаты. Стек не отправляется.
func (t *TelegramSink) CaptureException(ctx context.Context, err error, extra logging.Fields) error {
	var sb strings.Builder
	sb.WriteString("*authgate EXCEPTION*\n\n*Error:* `")
	sb.WriteString(escapeMarkdown(logging.ErrorText(err)))
	sb.WriteString("`\n")
	if len(extra) > 0 {
		sb.WriteString("*Context:* `")
		sb.WriteString(escapeMarkdown(extra.Encode()))
		sb.WriteString("`\n")
	}
	t.writeFooter(&sb, t.now())
	return t.broadcast(ctx, sb.String())
}

func (t *TelegramSink) writeFooter(sb *strings.Builder, ts time.Time) {
	sb.WriteString("\n_Time:_ ")
	sb.WriteString(escapeMarkdown(ts.UTC().Format(time.RFC3339)))
	if t.origin.Environment != "" {
		sb.WriteString("\n_Env:_ ")
		sb.WriteString(escapeMarkdown(t.origin.Environment))
	}
	if t.origin.Hostname != "" {
		sb.WriteString("\n_Host:_ ")
		sb.WriteString(escapeMarkdown(t.origin.Hostname))
	}
}

// broadcast отправляет text во все чаты. Ошибка одного чата не отменяет остальные.
func (t *TelegramSink) broadcast(ctx context.Context, text string) error {
	if utf8.RuneCountInString(text) > maxTelegramText {
		text = string([]rune(text)[:maxTelegramText])
	}

	// Отмена ctx вызывающего не прерывает отправку, срок задаёт Timeout клиента.
	ctx = context.WithoutCancel(ctx)

	var errs []error
	for _, chatID := range t.config.ChatIDs {
		if err := t.sendToChat(ctx, chatID, text); err != nil {
			errs = append(errs, fmt.Errorf("chat %s: %w", chatID, err))
		}
	}
	return errors.Join(errs...)
}

// markdownReplacer экранирует символы Markdown v1. Backslash экранируется первым.
var markdownReplacer = strings.NewReplacer(
	`\`, `\\`,
	"_", "\\_",
	"*", "\\*",
	"`", "\\`",
	"[", "\\[",
	"]", "\\]",
	"(", "\\(",
	")", "\\)",
	">", "\\>",
)

func escapeMarkdown(s string) string {
	return markdownReplacer.Replace(s)
}

type telegramRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// telegramResponse: поля ответа sendMessage, нужные для проверки успеха.
type telegramResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code,omitempty"`
	Description string `json:"description,omitempty"`
}

// sendToChat вызывает sendMessage для одного чата. Токен бота входит в URL,
// поэтому из текста ошибок транспорта он вырезается.
func (t *TelegramSink) sendToChat(ctx context.Context, chatID, text string) error {
	payload, err := json.Marshal(telegramRequest{ChatID: chatID, Text: text, ParseMode: TelegramParseMode})
	if err != nil {
		return fmt.Errorf("marshal sendMessage: %w", err)
	}

	endpoint := t.baseURL + t.config.BotToken + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build sendMessage: %s", urlutil.MaskSecret(err.Error(), t.config.BotToken))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sendMessage: %s", urlutil.MaskSecret(err.Error(), t.config.BotToken))
	}
	defer resp.Body.Close()

	var result telegramResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxTelegramResponseSize)).Decode(&result); err != nil {
		return fmt.Errorf("decode sendMessage response (HTTP %d): %w", resp.StatusCode, err)
	}
	if !result.OK {
		return fmt.Errorf("telegram API error %d: %s", result.ErrorCode, result.Description)
	}
	return nil
}
