package cache

import (
	"context"
	"fmt"
	"time"
)

// Delivery markers are diagnostics only: reconciliation stays correct
// without Redis, so every helper here degrades to a no-op when the
// cache is off.

const (
	deliveryMarkerTTL = 24 * time.Hour
	credentialNoteTTL = 7 * 24 * time.Hour
	deliveryKeyFormat = "webhook:seen:%s"
	credentialKeyFmt  = "payment:credential:%s"
)

type deliveryMarker struct {
	FirstSeenAt time.Time `json:"first_seen_at"`
	Count       int64     `json:"count"`
}

// MarkDeliverySeen records a webhook delivery for a payment id and
// reports whether it had been seen before.
func MarkDeliverySeen(ctx context.Context, paymentID string) (bool, error) {
	if !Enabled() || paymentID == "" {
		return false, nil
	}
	key := fmt.Sprintf(deliveryKeyFormat, paymentID)

	var marker deliveryMarker
	found, err := GetJSON(ctx, key, &marker)
	if err != nil {
		return false, err
	}
	if !found {
		marker = deliveryMarker{FirstSeenAt: time.Now(), Count: 1}
		return false, SetJSON(ctx, key, marker, deliveryMarkerTTL)
	}
	marker.Count++
	return true, SetJSON(ctx, key, marker, deliveryMarkerTTL)
}

// RecordResolvingCredential notes which configured credential resolved
// a payment, for operator diagnostics.
func RecordResolvingCredential(ctx context.Context, paymentID string, credentialIndex int) error {
	if !Enabled() || paymentID == "" || credentialIndex < 0 {
		return nil
	}
	key := fmt.Sprintf(credentialKeyFmt, paymentID)
	return SetJSON(ctx, key, map[string]interface{}{
		"credential_index": credentialIndex,
		"resolved_at":      time.Now(),
	}, credentialNoteTTL)
}
