// Package retry provides a bounded, fixed-delay retry policy for
// operations against external collaborators.
package retry

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Do はopを最大attempts回、固定のdelay間隔で実行します。
// すべての試行が失敗した場合は最後のエラーを返します。
// ctxのキャンセルは試行間の待機を打ち切ります。
func Do(ctx context.Context, name string, attempts uint64, delay time.Duration, op func() error) error {
	if attempts == 0 {
		attempts = 1
	}

	var attempt uint64
	wrapped := func() error {
		attempt++
		err := op()
		if err != nil {
			slog.Warn("operation failed", "name", name, "attempt", attempt, "max_attempts", attempts, "error", err)
		}
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(delay), attempts-1),
		ctx,
	)
	if err := backoff.Retry(wrapped, policy); err != nil {
		slog.Error("operation failed after all attempts", "name", name, "attempts", attempts, "error", err)
		return err
	}
	return nil
}
