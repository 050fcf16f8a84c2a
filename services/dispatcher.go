package services

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/IDD-NAJ/ulster-delt-sub000/metrics"
	"github.com/IDD-NAJ/ulster-delt-sub000/models"
	"github.com/IDD-NAJ/ulster-delt-sub000/storage"
	"github.com/IDD-NAJ/ulster-delt-sub000/utils"
)

const alertHistoryKey = "monitoring:alerts:history"

// AlertDispatcher fans permitted alerts out to the configured channels
// and appends the batch to the history log. Channels are best-effort and
// isolated: one failing never blocks the others or the history append.
type AlertDispatcher struct {
	store   storage.Store
	email   EmailSender // nil when the channel is disabled
	chat    ChatSender
	webhook WebhookSender
}

func NewAlertDispatcher(store storage.Store, email EmailSender, chat ChatSender, webhook WebhookSender) *AlertDispatcher {
	return &AlertDispatcher{
		store:   store,
		email:   email,
		chat:    chat,
		webhook: webhook,
	}
}

// Dispatch sends the batch through every enabled channel and records it
// in history exactly once. Empty batches are a no-op.
func (d *AlertDispatcher) Dispatch(ctx context.Context, alerts []models.Alert) {
	if len(alerts) == 0 {
		return
	}

	log := utils.Logger("dispatcher")
	for _, a := range alerts {
		log.WithFields(map[string]interface{}{
			"alert_type": a.Type,
			"severity":   a.Severity,
			"value":      a.Value,
		}).Warn(a.Message)
		metrics.IncrementAlertsFired(string(a.Severity))
	}

	// Email carries only the critical subset; the other channels always
	// get the full batch.
	if d.email != nil {
		if criticals := filterCritical(alerts); len(criticals) > 0 {
			subject := fmt.Sprintf("[CRITICAL] %d monitoring alert(s)", len(criticals))
			html, err := renderAlertEmail(criticals)
			if err == nil {
				err = d.email.SendEmail(ctx, subject, html)
			}
			if err != nil {
				metrics.IncrementNotifyErrors("email")
				log.WithError(err).Error("email channel failed")
			}
		}
	}

	if d.chat != nil {
		if err := d.chat.SendMessage(ctx, NewAlertChatMessage(alerts)); err != nil {
			metrics.IncrementNotifyErrors("chat")
			log.WithError(err).Error("chat channel failed")
		}
	}

	batch := models.AlertBatch{Timestamp: time.Now(), Alerts: alerts}

	if d.webhook != nil {
		if err := d.webhook.Send(ctx, batch); err != nil {
			metrics.IncrementNotifyErrors("webhook")
			log.WithError(err).Error("webhook channel failed")
		}
	}

	// History records what should have been sent, delivered or not.
	if err := d.appendHistory(ctx, batch); err != nil {
		log.WithError(err).Error("failed to append alert history")
	}
}

func filterCritical(alerts []models.Alert) []models.Alert {
	var out []models.Alert
	for _, a := range alerts {
		if a.Severity == models.SeverityCritical {
			out = append(out, a)
		}
	}
	return out
}

func (d *AlertDispatcher) appendHistory(ctx context.Context, batch models.AlertBatch) error {
	payload, err := json.Marshal(batch)
	if err != nil {
		return err
	}
	return d.store.ListPush(ctx, alertHistoryKey, payload)
}

// History returns alert batches within [start, end], most recent first.
func (d *AlertDispatcher) History(ctx context.Context, start, end time.Time) ([]models.AlertBatch, error) {
	raw, err := d.store.ListRange(ctx, alertHistoryKey, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("reading alert history: %w", err)
	}

	var out []models.AlertBatch
	for _, item := range raw {
		var batch models.AlertBatch
		if err := json.Unmarshal(item, &batch); err != nil {
			utils.Logger("dispatcher").WithError(err).Warn("skipping corrupt history entry")
			continue
		}
		if batch.Timestamp.Before(start) || batch.Timestamp.After(end) {
			continue
		}
		out = append(out, batch)
	}
	return out, nil
}

// Statistics aggregates the full history: total batches, counts by
// severity and type, and the 10 most recent batches.
func (d *AlertDispatcher) Statistics(ctx context.Context) (*models.AlertStatistics, error) {
	raw, err := d.store.ListRange(ctx, alertHistoryKey, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("reading alert history: %w", err)
	}

	stats := &models.AlertStatistics{
		BySeverity: make(map[models.Severity]int),
		ByType:     make(map[string]int),
		Recent:     []models.AlertBatch{},
	}
	for _, item := range raw {
		var batch models.AlertBatch
		if err := json.Unmarshal(item, &batch); err != nil {
			continue
		}
		stats.Total++
		for _, a := range batch.Alerts {
			stats.BySeverity[a.Severity]++
			stats.ByType[a.Type]++
		}
		if len(stats.Recent) < 10 {
			stats.Recent = append(stats.Recent, batch)
		}
	}
	return stats, nil
}

var alertEmailTmpl = template.Must(template.New("alertEmail").Parse(`<html>
<body style="font-family: sans-serif;">
<h2>Monitoring alerts</h2>
{{range .Groups}}
<h3 style="text-transform: uppercase;">{{.Severity}}</h3>
<ul>
{{range .Alerts}}
<li>
<strong>{{.Type}}</strong>: {{.Message}} (value: {{.Value}})
{{if .Tags}}<br/><em>{{range $k, $v := .Tags}}{{$k}}={{$v}} {{end}}</em>{{end}}
</li>
{{end}}
</ul>
{{end}}
<p>Sent {{.SentAt}}</p>
</body>
</html>`))

type alertEmailGroup struct {
	Severity models.Severity
	Alerts   []models.Alert
}

// renderAlertEmail renders alerts as an HTML document grouped by severity.
func renderAlertEmail(alerts []models.Alert) (string, error) {
	var groups []alertEmailGroup
	for _, sev := range models.Severities {
		var group []models.Alert
		for _, a := range alerts {
			if a.Severity == sev {
				group = append(group, a)
			}
		}
		if len(group) > 0 {
			groups = append(groups, alertEmailGroup{Severity: sev, Alerts: group})
		}
	}

	var buf strings.Builder
	err := alertEmailTmpl.Execute(&buf, map[string]interface{}{
		"Groups": groups,
		"SentAt": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
