// Package http は外部API呼び出し用のHTTPクライアント生成を提供します。
package http

import (
	"net"
	"net/http"
	"time"
)

// NewHTTPClient はタイムアウト付きのHTTPクライアントを作成します。
// http.DefaultClientにはタイムアウトがないため、外部プロバイダー呼び出しは
// 常にこのクライアントを使います。
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        50,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: t}
}
