package sinks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/labstack/gommon/color"

	"flightsim/logging"
)

// ConsoleSink formats events as one line each. When cfg.UseColor is set it
// colors the severity token via gommon/color, matching the teacher's own
// colored-console convention.
type ConsoleSink struct {
	logger   *log.Logger
	useColor bool
	color    *color.Color
}

func NewConsoleSink(w io.Writer, cfg logging.ConsoleConfig) *ConsoleSink {
	prefix := ""
	flags := log.LstdFlags
	return &ConsoleSink{
		logger:   log.New(w, prefix, flags),
		useColor: cfg.UseColor,
		color:    color.New(),
	}
}

func (s *ConsoleSink) Write(event logging.Event) error {
	if s.logger == nil {
		return nil
	}
	payload := formatPayload(event.Payload)
	targets := formatTargets(event.Targets)
	s.logger.Printf("[%s] tick=%d actor=%s severity=%s%s%s", event.Type, event.Tick, formatEntity(event.Actor), s.formatSeverityColored(event.Severity), targets, payload)
	return nil
}

func (s *ConsoleSink) formatSeverityColored(sev logging.Severity) string {
	text := formatSeverity(sev)
	if !s.useColor {
		return text
	}
	switch sev {
	case logging.SeverityDebug:
		return s.color.Grey(text)
	case logging.SeverityInfo:
		return s.color.Green(text)
	case logging.SeverityWarn:
		return s.color.Yellow(text)
	case logging.SeverityError:
		return s.color.Red(text)
	default:
		return text
	}
}

func (s *ConsoleSink) Close(context.Context) error {
	return nil
}

func formatSeverity(sev logging.Severity) string {
	switch sev {
	case logging.SeverityDebug:
		return "debug"
	case logging.SeverityInfo:
		return "info"
	case logging.SeverityWarn:
		return "warn"
	case logging.SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

func formatEntity(ref logging.EntityRef) string {
	if ref.ID == "" {
		return string(ref.Kind)
	}
	if ref.Kind == "" {
		return ref.ID
	}
	return fmt.Sprintf("%s:%s", ref.Kind, ref.ID)
}

func formatTargets(targets []logging.EntityRef) string {
	if len(targets) == 0 {
		return ""
	}
	parts := make([]string, 0, len(targets))
	for _, target := range targets {
		parts = append(parts, formatEntity(target))
	}
	return fmt.Sprintf(" targets=%s", strings.Join(parts, ","))
}

func formatPayload(payload any) string {
	if payload == nil {
		return ""
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf(" payload=%v", payload)
	}
	return fmt.Sprintf(" payload=%s", data)
}
