// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package access

import (
	"testing"
	"time"

	"github.com/jeranaias/heartmind/internal/model"
)

func TestEvaluate(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	tests := []struct {
		name   string
		user   *model.User
		can    bool
		reason model.AccessReason
	}{
		{"nil user", nil, false, model.ReasonBlocked},
		{"subscribed with free", &model.User{SubscriptionExpiresAt: &future, FreeMessages: 3}, true, model.ReasonSubscribed},
		{"subscribed no free", &model.User{SubscriptionExpiresAt: &future}, true, model.ReasonSubscribed},
		{"expired with free", &model.User{SubscriptionExpiresAt: &past, FreeMessages: 1}, true, model.ReasonFreeRemaining},
		{"free only", &model.User{FreeMessages: 5}, true, model.ReasonFreeRemaining},
		{"nothing left", &model.User{FreeMessages: 0}, false, model.ReasonBlocked},
		{"expired nothing left", &model.User{SubscriptionExpiresAt: &past}, false, model.ReasonBlocked},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := Evaluate(tc.user, now)
			if d.CanChat != tc.can {
				t.Errorf("CanChat = %v, want %v", d.CanChat, tc.can)
			}
			if d.Reason != tc.reason {
				t.Errorf("Reason = %q, want %q", d.Reason, tc.reason)
			}
		})
	}
}

// canChat must hold exactly when subscribed or free messages remain.
func TestEvaluate_CanChatIff(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	expiries := []*time.Time{nil, ptr(now.Add(-time.Second)), ptr(now), ptr(now.Add(time.Second))}

	for _, exp := range expiries {
		for free := 0; free <= 3; free++ {
			u := &model.User{SubscriptionExpiresAt: exp, FreeMessages: free}
			want := u.IsSubscribed(now) || u.FreeMessages > 0
			if got := Evaluate(u, now).CanChat; got != want {
				t.Errorf("Evaluate(exp=%v, free=%d).CanChat = %v, want %v", exp, free, got, want)
			}
		}
	}
}

func TestGate_UsesInjectedClock(t *testing.T) {
	expiry := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	user := &model.User{SubscriptionExpiresAt: &expiry}

	current := expiry.Add(-time.Minute)
	gate := NewGate(func() time.Time { return current })
	if !gate.Evaluate(user).CanChat {
		t.Error("should chat before expiry")
	}

	current = expiry.Add(time.Minute)
	if gate.Evaluate(user).CanChat {
		t.Error("should be blocked after expiry")
	}
}

// Scenario: no subscription and no free messages leaves only the payment path.
func TestGate_BlockedOffersPayment(t *testing.T) {
	gate := NewGate(nil)
	d := gate.Evaluate(&model.User{ID: "u", FreeMessages: 0})
	if d.CanChat {
		t.Error("CanChat should be false")
	}
	if !d.NeedsPayment() {
		t.Error("NeedsPayment should be true")
	}
}

func ptr(t time.Time) *time.Time { return &t }
