package alimtalk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	reportsusecase "kstock_reporter/internal/feature/reports/usecase"
	"kstock_reporter/internal/shared/retry"
)

const (
	sendPath = "/v2/send"

	sendAttempts     = 2
	defaultSendDelay = time.Second
)

// Client はAlimTalkリレーAPI経由でメッセージを配信するNotifier実装です。
type Client struct {
	cfg        Config
	httpClient *http.Client
	retryDelay time.Duration
}

// ClientがNotifierを実装していることをコンパイル時に検証します。
var _ reportsusecase.Notifier = (*Client)(nil)

// NewClient は指定された設定とHTTPクライアントでClientの新しいインスタンスを生成します。
func NewClient(cfg Config, httpClient *http.Client) *Client {
	return &Client{cfg: cfg, httpClient: httpClient, retryDelay: defaultSendDelay}
}

// sendRequest はリレーAPIの送信リクエストボディです。
type sendRequest struct {
	SenderKey string `json:"sender_key"`
	To        string `json:"to"`
	Message   string `json:"message"`
}

// Send はメッセージを1件配信します。一時的な失敗はsendAttempts回まで
// リトライし、それでも失敗した場合はエラーを返します。
func (c *Client) Send(ctx context.Context, to, message string) error {
	payload, err := json.Marshal(sendRequest{SenderKey: c.cfg.Sender, To: to, Message: message})
	if err != nil {
		return err
	}

	err = retry.Do(ctx, "alimtalk send", sendAttempts, c.retryDelay, func() error {
		req, rerr := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+sendPath, bytes.NewReader(payload))
		if rerr != nil {
			return rerr
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

		res, rerr := c.httpClient.Do(req)
		if rerr != nil {
			return rerr
		}
		defer func() {
			if cerr := res.Body.Close(); cerr != nil {
				slog.Warn("failed to close response body", "error", cerr)
			}
		}()

		if res.StatusCode >= 400 {
			return fmt.Errorf("alimtalk http %d", res.StatusCode)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("alimtalk sent", "to", maskPhone(to))
	return nil
}

// maskPhone は電話番号の下4桁以外を伏せてログ用に整形します。
func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return "****"
	}
	return "****" + phone[len(phone)-4:]
}
