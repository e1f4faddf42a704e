package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Kargones/authgate/internal/pkg/logging"
	"github.com/Kargones/authgate/internal/pkg/urlutil"
)

// maxResponseBodySize: максимальный размер тела HTTP ответа для диагностики (1 KB).
const maxResponseBodySize = 1024

// HTTPClient определяет интерфейс HTTP клиента для тестирования.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// httpError представляет HTTP ошибку (не network).
type httpError struct {
	StatusCode int
	Body       string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// WebhookSink отправляет события и исключения JSON POST запросом на каждый URL.
// Повторов нет: неудачная отправка возвращается как ошибка и больше не повторяется.
type WebhookSink struct {
	config     WebhookConfig
	origin     Origin
	httpClient HTTPClient
	now        func() time.Time
}

// NewWebhookSink создаёт WebhookSink с указанной конфигурацией.
func NewWebhookSink(config WebhookConfig, origin Origin) *WebhookSink {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = DefaultWebhookTimeout
	}
	return &WebhookSink{
		config:     config,
		origin:     origin,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

// SetHTTPClient устанавливает кастомный HTTPClient (для тестирования).
func (w *WebhookSink) SetHTTPClient(client HTTPClient) {
	w.httpClient = client
}

// Record отправляет событие.
func (w *WebhookSink) Record(ctx context.Context, ev logging.TelemetryEvent) error {
	return w.post(ctx, newEventPayload(ev, w.origin))
}

// CaptureException отправляет исключение.
func (w *WebhookSink) CaptureException(ctx context.Context, err error, extra logging.Fields) error {
	return w.post(ctx, newExceptionPayload(err, extra, w.now(), w.origin))
}

// post отправляет payload на все URL. Ошибка одного URL не отменяет остальные.
func (w *WebhookSink) post(ctx context.Context, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	// Отмена ctx вызывающего не прерывает отправку, срок задаёт Timeout клиента.
	ctx = context.WithoutCancel(ctx)

	var errs []error
	for _, url := range w.config.URLs {
		if err := w.sendRequest(ctx, url, body); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", urlutil.MaskURL(url), err))
		}
	}
	return errors.Join(errs...)
}

// sendRequest отправляет HTTP POST запрос с телом body.
func (w *WebhookSink) sendRequest(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "authgate/1.0")
	for key, value := range w.config.Headers {
		req.Header.Set(key, value)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %s", urlutil.MaskURLsInText(err.Error(), url))
	}
	defer resp.Body.Close()

	// 2xx: успех. Дренируем body для переиспользования keep-alive соединений.
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBodySize)) //nolint:errcheck // best-effort drain
		return nil
	}

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	return &httpError{StatusCode: resp.StatusCode, Body: string(respBody)}
}
