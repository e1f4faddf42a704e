package telemetry

import "errors"

// Ошибки валидации конфигурации.
var (
	// ErrFluentHostRequired: адрес fluentd/fluent-bit не указан.
	ErrFluentHostRequired = errors.New("telemetry: fluent host is required when fluent channel is enabled")

	// ErrFluentPortInvalid: порт вне диапазона 1..65535.
	ErrFluentPortInvalid = errors.New("telemetry: fluent port must be in range 1..65535")

	// ErrWebhookURLRequired: URL для webhook не указан.
	ErrWebhookURLRequired = errors.New("telemetry: at least one url is required when webhook channel is enabled")

	// ErrWebhookURLInvalid: URL имеет невалидный формат.
	ErrWebhookURLInvalid = errors.New("telemetry: webhook url has invalid format (must have http(s) scheme and host)")

	// ErrWebhookHeaderInvalid: HTTP заголовок содержит недопустимые символы.
	ErrWebhookHeaderInvalid = errors.New("telemetry: webhook header contains invalid characters")

	// ErrTelegramBotTokenRequired: bot token не указан.
	ErrTelegramBotTokenRequired = errors.New("telemetry: bot_token is required when telegram channel is enabled")

	// ErrTelegramChatIDRequired: chat_id не указан.
	ErrTelegramChatIDRequired = errors.New("telemetry: at least one chat_id is required when telegram channel is enabled")

	// ErrTelegramChatIDInvalid: chat_id имеет невалидный формат (ожидается числовой ID или @username).
	ErrTelegramChatIDInvalid = errors.New("telemetry: chat_id must be a numeric ID or @username")

	// ErrLevelInvalid: неизвестный уровень в правилах каналов.
	ErrLevelInvalid = errors.New("telemetry: unknown level (expected trace, debug, info, warn, error or fatal)")
)
