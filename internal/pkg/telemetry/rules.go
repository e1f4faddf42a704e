package telemetry

import "github.com/Kargones/authgate/internal/pkg/logging"

// Rules решает, какие уровни отправляются в какой канал.
// Правило канала полностью заменяет глобальное.
type Rules struct {
	global   logging.TelemetryLevel
	channels map[string]logging.TelemetryLevel
}

// NewRules создаёт Rules из строковых уровней. Пустой или неизвестный
// глобальный уровень означает "trace"; пустые правила каналов пропускаются.
func NewRules(global string, channels map[string]string) *Rules {
	r := &Rules{
		global:   logging.LevelTrace,
		channels: make(map[string]logging.TelemetryLevel, len(channels)),
	}
	if lvl, ok := ParseLevel(global); ok {
		r.global = lvl
	}
	for name, raw := range channels {
		if lvl, ok := ParseLevel(raw); ok {
			r.channels[name] = lvl
		}
	}
	return r
}

// Allow сообщает, отправляется ли событие уровня level в канал channel.
func (r *Rules) Allow(channel string, level logging.TelemetryLevel) bool {
	min := r.global
	if lvl, ok := r.channels[channel]; ok {
		min = lvl
	}
	return level.AtLeast(min)
}
