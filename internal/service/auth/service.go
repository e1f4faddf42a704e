// Package auth реализует действия входа и регистрации.
//
// Каждое действие следует одному протоколу: нормализация идентификаторов,
// валидация, вызов Authenticator. Ошибки полей возвращаются пользователю
// без записи в лог; все прочие ошибки пишутся на уровне ERROR с email
// (и именем при регистрации), а пользователь получает безопасное сообщение.
// Пароль никогда не попадает в лог.
package auth

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Kargones/authgate/internal/constants"
	"github.com/Kargones/authgate/internal/pkg/apperrors"
	"github.com/Kargones/authgate/internal/pkg/logging"
	"github.com/Kargones/authgate/internal/pkg/metrics"
	"github.com/Kargones/authgate/internal/pkg/validation"
)

// Input: сырые значения формы. Значения не обязаны быть строками:
// неверный тип сообщается валидацией как ошибка поля.
type Input map[string]any

// ActionState: результат действия для клиента.
type ActionState struct {
	Success     bool              `json:"success"`
	Error       string            `json:"error,omitempty"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
	Redirect    string            `json:"redirect,omitempty"`
}

// Service выполняет действия аутентификации.
type Service struct {
	validator *validation.Validator
	authn     Authenticator
	logger    logging.Logger
	metrics   metrics.Collector
	tracer    trace.Tracer
}

// NewService создаёт Service. Все зависимости обязательны.
func NewService(
	validator *validation.Validator,
	authn Authenticator,
	logger logging.Logger,
	collector metrics.Collector,
	tracer trace.Tracer,
) *Service {
	return &Service{
		validator: validator,
		authn:     authn,
		logger:    logger,
		metrics:   collector,
		tracer:    tracer,
	}
}

// SignIn выполняет вход по email и паролю.
func (s *Service) SignIn(ctx context.Context, input Input) ActionState {
	in := normalize(input)
	return s.run(ctx, constants.ActSignIn, validation.FormSignIn, in,
		logging.Fields{"email": in["email"]},
		func(ctx context.Context) (logging.Fields, error) {
			email, _ := in["email"].(string)
			password, _ := in["password"].(string)
			account, err := s.authn.SignIn(ctx, email, password)
			if err != nil {
				return nil, err
			}
			return logging.Fields{"email": account.Email}, nil
		})
}

// SignUp регистрирует новую учётную запись.
func (s *Service) SignUp(ctx context.Context, input Input) ActionState {
	in := normalize(input)
	return s.run(ctx, constants.ActSignUp, validation.FormSignUp, in,
		logging.Fields{"email": in["email"], "name": in["name"]},
		func(ctx context.Context) (logging.Fields, error) {
			name, _ := in["name"].(string)
			email, _ := in["email"].(string)
			password, _ := in["password"].(string)
			account, err := s.authn.SignUp(ctx, name, email, password)
			if err != nil {
				return nil, err
			}
			return logging.Fields{"email": account.Email, "name": account.Name}, nil
		})
}

// run: общий протокол действия. identity: контекст для записи об ошибке.
func (s *Service) run(
	ctx context.Context,
	action, form string,
	in Input,
	identity logging.Fields,
	call func(ctx context.Context) (logging.Fields, error),
) (state ActionState) {
	ctx, span := s.tracer.Start(ctx, "auth."+action,
		trace.WithAttributes(attribute.String("auth.action", action)))
	defer span.End()

	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			state = s.fail(ctx, span, action, start, identity, apperrors.Capture(r))
		}
	}()

	if err := s.validator.Validate(form, in); err != nil {
		return s.fail(ctx, span, action, start, identity, err)
	}

	fields, err := call(ctx)
	if err != nil {
		return s.fail(ctx, span, action, start, identity, apperrors.NewOpaqueFailure(failureCode(action), action+" failed", err))
	}

	s.logger.WithContext(ctx).Info(successMessage(action), fields)
	s.metrics.RecordAuthAttempt(action, metrics.OutcomeSuccess, time.Since(start))
	span.SetStatus(codes.Ok, "")

	return ActionState{Success: true, Redirect: constants.RedirectAfterAuth}
}

// fail классифицирует ошибку до записи в лог.
func (s *Service) fail(
	ctx context.Context,
	span trace.Span,
	action string,
	start time.Time,
	identity logging.Fields,
	err error,
) ActionState {
	if fieldErrors, ok := apperrors.FieldErrors(err); ok {
		s.metrics.RecordAuthAttempt(action, metrics.OutcomeValidationError, time.Since(start))
		span.SetAttributes(attribute.Int("auth.field_errors", len(fieldErrors)))
		return ActionState{FieldErrors: fieldErrors}
	}

	s.logger.WithContext(ctx).Error(failureMessage(action), identity, err)
	s.metrics.RecordAuthAttempt(action, metrics.OutcomeFailure, time.Since(start))
	span.RecordError(err)
	span.SetStatus(codes.Error, failureCode(action))

	return ActionState{Error: apperrors.UserMessage(err)}
}

// normalize возвращает копию input с нормализованными email и name.
func normalize(input Input) Input {
	out := make(Input, len(input))
	for k, v := range input {
		out[k] = v
	}
	if email, ok := out["email"].(string); ok {
		out["email"] = validation.NormalizeEmail(email)
	}
	if name, ok := out["name"].(string); ok {
		out["name"] = validation.NormalizeName(name)
	}
	return out
}

func failureCode(action string) string {
	if action == constants.ActSignUp {
		return apperrors.ErrAuthSignUp
	}
	return apperrors.ErrAuthSignIn
}

func successMessage(action string) string {
	if action == constants.ActSignUp {
		return "User signed up"
	}
	return "User signed in"
}

func failureMessage(action string) string {
	if action == constants.ActSignUp {
		return "Sign up failed"
	}
	return "Sign in failed"
}
