package remotelog

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// requestTimeout жёсткий таймаут отправки, после него событие считается потерянным
const requestTimeout = 5 * time.Second

// Client отправляет события на удалённый endpoint.
// Невалидные события молча отбрасываются (остаётся только локальная
// диагностика), сетевые ошибки поглощаются с fallback-ом в локальный лог.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
	local    *zap.Logger
}

func NewClient(endpoint, token string, local *zap.Logger) *Client {
	if local == nil {
		local = zap.NewNop()
	}
	return &Client{
		endpoint: endpoint,
		token:    token,
		http:     &http.Client{Timeout: requestTimeout},
		local:    local,
	}
}

func (c *Client) Log(ctx context.Context, stack Stack, level Level, pkg Package, message string) {
	stack, level, pkg = normalize(stack, level, pkg)

	if !isValidStack(stack) {
		c.local.Warn("событие отброшено: невалидный stack", zap.String("stack", string(stack)))
		return
	}
	if !isValidLevel(level) {
		c.local.Warn("событие отброшено: невалидный level", zap.String("level", string(level)))
		return
	}
	if !isValidPackage(pkg, stack) {
		c.local.Warn("событие отброшено: невалидный package",
			zap.String("package", string(pkg)),
			zap.String("stack", string(stack)),
		)
		return
	}

	event := Event{
		Stack:   string(stack),
		Level:   string(level),
		Package: string(pkg),
		Message: message,
	}

	if err := c.post(ctx, event); err != nil {
		// Fallback в локальный лог, вызывающий код об ошибке не узнаёт
		c.local.Info("remote log fallback",
			zap.String("stack", event.Stack),
			zap.String("level", event.Level),
			zap.String("package", event.Package),
			zap.String("message", event.Message),
			zap.Error(err),
		)
	}
}

func (c *Client) post(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode}
	}

	var logResp Response
	if err := json.NewDecoder(resp.Body).Decode(&logResp); err == nil {
		c.local.Debug("событие отправлено", zap.String("log_id", logResp.LogID))
	}

	return nil
}

// Шорткаты для backend-стека, по аналогии с уровнями zap.

func (c *Client) Debug(ctx context.Context, pkg Package, message string) {
	c.Log(ctx, StackBackend, LevelDebug, pkg, message)
}

func (c *Client) Info(ctx context.Context, pkg Package, message string) {
	c.Log(ctx, StackBackend, LevelInfo, pkg, message)
}

func (c *Client) Warn(ctx context.Context, pkg Package, message string) {
	c.Log(ctx, StackBackend, LevelWarn, pkg, message)
}

func (c *Client) Error(ctx context.Context, pkg Package, message string) {
	c.Log(ctx, StackBackend, LevelError, pkg, message)
}

func (c *Client) Fatal(ctx context.Context, pkg Package, message string) {
	c.Log(ctx, StackBackend, LevelFatal, pkg, message)
}

// StatusError не-200 ответ лог-сервиса.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return http.StatusText(e.Code)
}
