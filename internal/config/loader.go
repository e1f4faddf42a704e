package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Kargones/authgate/internal/constants"
	"github.com/Kargones/authgate/internal/pkg/apperrors"
)

// EnvDotEnvFile: переменная окружения с путём к файлу .env.
const EnvDotEnvFile = constants.EnvPrefix + "DOTENV_FILE"

// defaultDotEnvFile: файл .env, который читается, если AG_DOTENV_FILE не задан.
const defaultDotEnvFile = ".env"

// Load загружает конфигурацию: .env → YAML (AG_CONFIG_FILE) → AG_* → Validate.
// Ошибки возвращаются как *apperrors.OpaqueFailure с кодом категории CONFIG.
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, apperrors.NewOpaqueFailure(apperrors.ErrConfigLoad,
			"не удалось прочитать файл .env", err)
	}

	cfg := &Config{}

	if path := os.Getenv(constants.EnvConfigFile); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, apperrors.NewOpaqueFailure(apperrors.ErrConfigParse,
				"не удалось разобрать файл конфигурации", err)
		}
	}

	// env-default применяется только к полям, которые остались нулевыми после YAML.
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, apperrors.NewOpaqueFailure(apperrors.ErrConfigLoad,
			"не удалось прочитать переменные окружения", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, apperrors.NewOpaqueFailure(apperrors.ErrConfigValidate,
			"конфигурация невалидна", err)
	}

	return cfg, nil
}

// loadDotEnv загружает .env в окружение процесса. Уже заданные переменные
// не перезаписываются. Отсутствие файла по умолчанию не является ошибкой.
func loadDotEnv() error {
	path := os.Getenv(EnvDotEnvFile)
	explicit := path != ""
	if !explicit {
		path = defaultDotEnvFile
	}

	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// loadFile читает YAML конфигурацию. Неизвестные ключи считаются ошибкой:
// опечатка в имени ключа иначе молча оставила бы значение по умолчанию.
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path) //nolint:gosec // путь задаёт оператор
	if err != nil {
		return fmt.Errorf("чтение %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		// Пустой файл допустим.
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("разбор %s: %w", path, err)
	}
	return nil
}
