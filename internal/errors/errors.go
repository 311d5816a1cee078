package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for common failure scenarios.
var (
	ErrInvalidInput    = errors.New("invalid url or id")
	ErrShortVideo      = errors.New("short video not allowed")
	ErrShortExcluded   = errors.New("short video excluded after lookup")
	ErrQueueFull       = errors.New("queue full")
	ErrInvalidImport   = errors.New("invalid playlist format")
	ErrNoSelection     = errors.New("no item selected")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrLocked          = errors.New("controls locked")
	ErrNotFound        = errors.New("video not found")
	ErrNetworkError    = errors.New("network error")
	ErrTimeout         = errors.New("request timeout")
	ErrConfigNotFound  = errors.New("config file not found")
	ErrInvalidConfig   = errors.New("invalid configuration")
)

// TubeqError wraps an error with a user-friendly suggestion.
type TubeqError struct {
	Err        error
	Suggestion string
}

func (e *TubeqError) Error() string {
	return e.Err.Error()
}

func (e *TubeqError) Unwrap() error {
	return e.Err
}

// WithSuggestion wraps an error with a helpful suggestion.
func WithSuggestion(err error, suggestion string) error {
	return &TubeqError{
		Err:        err,
		Suggestion: suggestion,
	}
}

// QueueFullError reports a rejected insert together with the configured
// capacity. It matches ErrQueueFull under errors.Is.
type QueueFullError struct {
	Capacity int
}

func (e *QueueFullError) Error() string {
	return fmt.Sprintf("%s (max %d)", ErrQueueFull, e.Capacity)
}

func (e *QueueFullError) Unwrap() error {
	return ErrQueueFull
}

// QueueFull returns a *QueueFullError so every surface reports the same limit.
func QueueFull(capacity int) error {
	return &QueueFullError{Capacity: capacity}
}

// Notice returns the single user-facing message shown for err.
func Notice(err error) string {
	if err == nil {
		return ""
	}

	var full *QueueFullError
	switch {
	case errors.As(err, &full):
		return fmt.Sprintf("キューが満杯です（最大%d件）", full.Capacity)
	case errors.Is(err, ErrQueueFull):
		return "キューが満杯です"
	case errors.Is(err, ErrShortExcluded):
		return "ショート動画（縦長または#shortsを含む）を検出したため、除外しました。"
	case errors.Is(err, ErrShortVideo):
		return "ショート動画は再生リストに追加できません。"
	case errors.Is(err, ErrInvalidInput):
		return "URLまたはIDが無効です"
	case errors.Is(err, ErrInvalidImport):
		return "読み込みに失敗しました（ルートは配列である必要があります）"
	case errors.Is(err, ErrNoSelection):
		return "曲が選択されていません"
	case errors.Is(err, ErrIndexOutOfRange):
		return "範囲外の位置です"
	case errors.Is(err, ErrLocked):
		return "ロック中です（長押しで解除）"
	case errors.Is(err, ErrNotFound):
		return "動画が見つかりません"
	case errors.Is(err, ErrNetworkError), errors.Is(err, ErrTimeout):
		return "ネットワークエラー: メタデータを取得できませんでした"
	}
	return err.Error()
}

// GetSuggestion returns a suggestion for the given error.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	var tqErr *TubeqError
	if errors.As(err, &tqErr) && tqErr.Suggestion != "" {
		return tqErr.Suggestion
	}

	errStr := strings.ToLower(err.Error())

	if errors.Is(err, ErrInvalidInput) {
		return "Pass an 11-character video id or a youtube.com / youtu.be URL"
	}

	if errors.Is(err, ErrQueueFull) {
		return "Remove items with 'tubeq queue remove' or 'tubeq queue dedupe'"
	}

	if errors.Is(err, ErrInvalidImport) {
		return "The playlist file must contain a JSON array of items"
	}

	if errors.Is(err, ErrNoSelection) || errors.Is(err, ErrIndexOutOfRange) {
		return "Run 'tubeq queue list' to see valid positions"
	}

	if errors.Is(err, ErrNetworkError) || errors.Is(err, ErrTimeout) ||
		strings.Contains(errStr, "network") || strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection refused") {
		return "Check your internet connection and try again"
	}

	if strings.Contains(errStr, "mpv") {
		return "Install mpv or set player.backend = \"none\" in ~/.tubeqrc"
	}

	if errors.Is(err, ErrConfigNotFound) || errors.Is(err, ErrInvalidConfig) || strings.Contains(errStr, "config") {
		return "Run 'tubeq config init' to create a configuration file"
	}

	return ""
}

// Format returns a formatted error message with suggestion if available.
func Format(err error) string {
	if err == nil {
		return ""
	}

	suggestion := GetSuggestion(err)
	if suggestion != "" {
		return fmt.Sprintf("Error: %s\n\nSuggestion: %s", err.Error(), suggestion)
	}

	return fmt.Sprintf("Error: %s", err.Error())
}

// PartialResult represents a result that may have partial failures.
type PartialResult[T any] struct {
	Data   T
	Errors []error
}

// HasErrors returns true if there were any errors.
func (p *PartialResult[T]) HasErrors() bool {
	return len(p.Errors) > 0
}

// AddError adds an error to the partial result.
func (p *PartialResult[T]) AddError(err error) {
	if err != nil {
		p.Errors = append(p.Errors, err)
	}
}

// ErrorSummary returns a summary of all errors.
func (p *PartialResult[T]) ErrorSummary() string {
	if len(p.Errors) == 0 {
		return ""
	}
	if len(p.Errors) == 1 {
		return p.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:\n", len(p.Errors)))
	for i, err := range p.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}
