package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/Kargones/authgate/internal/constants"
	"github.com/Kargones/authgate/internal/pkg/apperrors"
	"github.com/Kargones/authgate/internal/pkg/logging"
	"github.com/Kargones/authgate/internal/service/auth"
)

// healthTimeout ограничивает проверку зависимостей в /healthz.
const healthTimeout = 2 * time.Second

// defaultMultipartMemory: лимит памяти multipart формы без MaxBodyBytes.
const defaultMultipartMemory = 32 << 20

// errUnsupportedMediaType: тело не JSON и не форма.
var errUnsupportedMediaType = errors.New("unsupported content type")

type handlers struct {
	actions      Actions
	health       Pinger
	logger       logging.Logger
	maxBodyBytes int64
}

// errorBody: ответ на запрос, который не дошёл до действия.
type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (h *handlers) signIn(w http.ResponseWriter, r *http.Request) {
	h.serveAction(w, r, constants.ActSignIn, h.actions.SignIn)
}

func (h *handlers) signUp(w http.ResponseWriter, r *http.Request) {
	h.serveAction(w, r, constants.ActSignUp, h.actions.SignUp)
}

// serveAction декодирует тело, выполняет действие и выбирает код ответа:
// успех формы → 303 на Redirect, успех JSON → 200,
// ошибки полей → 422, прочие ошибки → 400.
func (h *handlers) serveAction(
	w http.ResponseWriter,
	r *http.Request,
	action string,
	run func(ctx context.Context, input auth.Input) auth.ActionState,
) {
	if h.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}

	input, isForm, err := h.decode(r)
	if err != nil {
		failure := apperrors.NewOpaqueFailure(apperrors.ErrHTTPBadRequest, "некорректное тело запроса", err)
		h.logger.WithContext(r.Context()).Warn("Некорректное тело запроса", logging.Fields{
			"action":       action,
			"content_type": r.Header.Get("Content-Type"),
			"error":        failure,
		})
		writeJSON(w, http.StatusBadRequest, errorBody{Success: false, Error: apperrors.UserMessage(failure)})
		return
	}

	state := run(r.Context(), input)

	switch {
	case state.Success && isForm:
		http.Redirect(w, r, state.Redirect, http.StatusSeeOther)
	case state.Success:
		writeJSON(w, http.StatusOK, state)
	case len(state.FieldErrors) > 0:
		writeJSON(w, http.StatusUnprocessableEntity, state)
	default:
		writeJSON(w, http.StatusBadRequest, state)
	}
}

// decode читает JSON объект или форму. Для формы берётся первое значение
// каждого поля.
func (h *handlers) decode(r *http.Request) (auth.Input, bool, error) {
	mediaType := "application/json"
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return nil, false, fmt.Errorf("parse content type: %w", err)
		}
		mediaType = mt
	}

	switch mediaType {
	case "application/json":
		doc, err := jsonschema.UnmarshalJSON(r.Body)
		if err != nil {
			return nil, false, fmt.Errorf("decode json: %w", err)
		}
		obj, ok := doc.(map[string]any)
		if !ok {
			return nil, false, fmt.Errorf("decode json: expected object, got %T", doc)
		}
		return auth.Input(obj), false, nil

	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, true, fmt.Errorf("parse form: %w", err)
		}
	case "multipart/form-data":
		maxMemory := h.maxBodyBytes
		if maxMemory <= 0 {
			maxMemory = defaultMultipartMemory
		}
		if err := r.ParseMultipartForm(maxMemory); err != nil {
			return nil, true, fmt.Errorf("parse multipart form: %w", err)
		}
	default:
		return nil, false, fmt.Errorf("%w: %s", errUnsupportedMediaType, mediaType)
	}

	input := make(auth.Input, len(r.PostForm))
	for key, values := range r.PostForm {
		if len(values) > 0 {
			input[key] = values[0]
		}
	}
	return input, true, nil
}

// healthz отвечает 200, если хранилище доступно, иначе 503.
func (h *handlers) healthz(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := h.health.Ping(ctx); err != nil {
			h.logger.WithContext(r.Context()).Warn("Health check не пройден", logging.Fields{"error": err})
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": constants.Version})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body) //nolint:errcheck // клиент мог закрыть соединение
}
