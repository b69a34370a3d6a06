package di

import (
	"log/slog"

	reportsusecase "kstock_reporter/internal/feature/reports/usecase"
	infrahttp "kstock_reporter/internal/platform/http"
	"kstock_reporter/internal/platform/notification/alimtalk"
)

// NewNotifier creates an AlimTalk notifier when the relay is configured.
// Returns nil when unconfigured, in which case delivery is skipped.
func NewNotifier() reportsusecase.Notifier {
	cfg := alimtalk.LoadConfig()
	if !cfg.Enabled() {
		slog.Warn("alimtalk not configured, report delivery disabled")
		return nil
	}
	httpClient := infrahttp.NewHTTPClient(cfg.Timeout)
	return alimtalk.NewClient(cfg, httpClient)
}
