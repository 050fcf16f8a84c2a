package services

import (
	"context"
	"fmt"
	"time"

	"github.com/IDD-NAJ/ulster-delt-sub000/config"
	"github.com/IDD-NAJ/ulster-delt-sub000/metrics"
	"github.com/IDD-NAJ/ulster-delt-sub000/models"
	"github.com/IDD-NAJ/ulster-delt-sub000/storage"
	"github.com/IDD-NAJ/ulster-delt-sub000/utils"
)

// CooldownGate suppresses repeat alerts of the same (type, severity)
// pair inside the severity's cooldown window. The state lives in the
// backend as a key with TTL; a live key means suppressed.
type CooldownGate struct {
	store     storage.Store
	cooldowns config.Cooldowns
}

func NewCooldownGate(store storage.Store, cooldowns config.Cooldowns) *CooldownGate {
	return &CooldownGate{store: store, cooldowns: cooldowns}
}

func cooldownKey(a models.Alert) string {
	return fmt.Sprintf("cooldown:%s:%s", a.Type, a.Severity)
}

// Allow reports whether the alert may be dispatched, arming the cooldown
// when it is. The backend's set-if-absent keeps the check-and-set atomic
// across concurrent cycles. A backend failure fails open: losing a
// duplicate suppression is cheaper than losing the alert.
func (g *CooldownGate) Allow(ctx context.Context, a models.Alert) bool {
	ttl := g.cooldowns.For(a.Severity)
	stamp := []byte(time.Now().UTC().Format(time.RFC3339Nano))

	set, err := g.store.SetIfAbsent(ctx, cooldownKey(a), stamp, ttl)
	if err != nil {
		utils.Logger("cooldown").WithError(err).
			WithField("alert_type", a.Type).
			Warn("cooldown check failed, allowing alert through")
		return true
	}
	if !set {
		metrics.IncrementAlertsSuppressed()
	}
	return set
}
