package notify

import (
	"context"

	"go.uber.org/zap"

	"sigtrack/internal/config"
	"sigtrack/internal/report"
)

// ReportDelivery renders the trailing-window summary and detail and pushes
// them to the messaging channel. Wired as a cron job.
type ReportDelivery struct {
	Reporter *report.Reporter
	Sender   *Telegram
	Logger   *zap.Logger
	Config   config.ReportConfig
}

func (d *ReportDelivery) RunOnce(ctx context.Context) error {
	if d == nil || d.Reporter == nil || !d.Sender.Enabled() {
		return nil
	}
	summary, err := d.Reporter.Summary(ctx, d.Config.WindowMinutes)
	if err != nil {
		return err
	}
	if err := d.Sender.Send(ctx, report.RenderSummary(summary)); err != nil {
		return err
	}
	detail, err := d.Reporter.Detail(ctx, d.Config.WindowMinutes, d.Config.MaxRows)
	if err != nil {
		return err
	}
	if len(detail.Rows) == 0 {
		return nil
	}
	return d.Sender.Send(ctx, report.RenderDetail(detail))
}
