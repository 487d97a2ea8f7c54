package postprocess

import (
	"errors"
	"fmt"
	"strings"
)

// Markers classify pipeline failures. Test with errors.Is.
var (
	ErrProbe     = errors.New("probe failed")
	ErrDetection = errors.New("scene detection failed")
	ErrTrim      = errors.New("trim failed")
	ErrAlignment = errors.New("alignment failed")
	ErrConcat    = errors.New("concatenation failed")
	ErrNoInput   = errors.New("no usable input")
)

// wrap tags err with marker and the stage/item it came from.
func wrap(marker error, stage, item, message string, err error) error {
	detail := buildDetail(stage, item, message)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// wrapProbe reports a probe failure inside another stage so both markers match.
func wrapProbe(marker error, stage, item, message string, err error) error {
	return fmt.Errorf("%w: %w: %s: %w", marker, ErrProbe, buildDetail(stage, item, message), err)
}

func buildDetail(stage, item, message string) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{stage, item, message} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
