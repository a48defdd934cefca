package dishadvisor

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// CoordinationLogger is the interface for coordinator logging.
type CoordinationLogger interface {
	LogStep(step StepLog) error
}

// NewCoordinationLogFilePath returns a file path under dir named after the run time and a cleaned up backend/model name.
func NewCoordinationLogFilePath(dir, model string) string {
	name := strings.NewReplacer(":", "_", "/", "_", " ", "_").Replace(strings.ToLower(model))
	return filepath.Join(dir, fmt.Sprintf("%d.%s.json", time.Now().Unix(), name))
}

// StepLog represents a single step in a recommendation run
type StepLog struct {
	RunID     string        `json:"run_id"`
	Step      int           `json:"step"`
	Name      string        `json:"name"`
	Timestamp time.Time     `json:"timestamp"`
	LLMInput  string        `json:"llm_input,omitempty"`
	LLMOutput string        `json:"llm_output,omitempty"`
	ToolCalls []ToolCallLog `json:"tool_calls,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// ToolCallLog represents a tool execution within a step
type ToolCallLog struct {
	Name   string         `json:"name"`
	Input  map[string]any `json:"input"`
	Output map[string]any `json:"output"`
	Error  string         `json:"error,omitempty"`
}

// FileCoordinationLogger accumulates steps and writes them out on Flush.
type FileCoordinationLogger struct {
	mu     sync.Mutex
	steps  []StepLog
	writer io.Writer
}

func NewFileCoordinationLogger(writer io.Writer) *FileCoordinationLogger {
	return &FileCoordinationLogger{
		steps:  make([]StepLog, 0),
		writer: writer,
	}
}

func (l *FileCoordinationLogger) LogStep(step StepLog) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.steps = append(l.steps, step)
	return nil
}

// Flush writes all accumulated steps to the writer and clears the buffer.
func (l *FileCoordinationLogger) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.writer == nil {
		return nil
	}

	data, err := json.MarshalIndent(map[string]any{
		"recommendation_session": map[string]any{
			"timestamp": time.Now(),
			"steps":     l.steps,
		},
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal coordination log: %w", err)
	}

	if _, err := l.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write coordination log: %w", err)
	}

	l.steps = l.steps[:0]
	return nil
}

// NoOpCoordinationLogger discards all log entries
type NoOpCoordinationLogger struct{}

func NewNoOpCoordinationLogger() *NoOpCoordinationLogger {
	return &NoOpCoordinationLogger{}
}

func (nop *NoOpCoordinationLogger) LogStep(step StepLog) error {
	return nil
}

// StdoutCoordinationLogger logs each step as a JSON line (for Lambda/CloudWatch)
type StdoutCoordinationLogger struct {
	out io.Writer
}

func NewStdoutCoordinationLogger() *StdoutCoordinationLogger {
	return &StdoutCoordinationLogger{out: os.Stdout}
}

func (l *StdoutCoordinationLogger) LogStep(step StepLog) error {
	data, err := json.Marshal(step)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(l.out, string(data))
	return err
}
