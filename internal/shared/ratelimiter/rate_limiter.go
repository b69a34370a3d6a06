// Package ratelimiter throttles calls to external market data providers.
package ratelimiter

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// Pacer は外部API呼び出しの頻度を制限するインターフェースです。
type Pacer interface {
	Wait(ctx context.Context) error
}

// CallPacer は連続する呼び出しの間に最低限の待機時間を挟み、
// さらに一定回数ごとに長めの休止を入れます。プロバイダー側の
// スループット制限（例: Upbitは約150ms間隔）に合わせた制約です。
type CallPacer struct {
	limiter    *rate.Limiter
	burstEvery int           // 何回ごとに長い休止を入れるか（0で無効）
	burstPause time.Duration // 長い休止の長さ
	count      int
}

// NewCallPacer は呼び出し間隔intervalと、burstEvery回ごとの
// burstPause休止を持つCallPacerを生成します。
func NewCallPacer(interval time.Duration, burstEvery int, burstPause time.Duration) *CallPacer {
	return &CallPacer{
		limiter:    rate.NewLimiter(rate.Every(interval), 1),
		burstEvery: burstEvery,
		burstPause: burstPause,
	}
}

// Wait は次の呼び出しが許可されるまでブロックします。
func (p *CallPacer) Wait(ctx context.Context) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}

	p.count++
	if p.burstEvery > 0 && p.count%p.burstEvery == 0 {
		slog.Debug("pacer burst pause", "calls", p.count, "pause", p.burstPause)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.burstPause):
		}
	}
	return nil
}
