// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"time"
)

// User is the authenticated profile returned by /api/auth/me.
//
// A User is replaced wholesale on every refresh; callers never mutate one
// that came from the identity cache.
type User struct {
	ID                    string     `json:"_id"`
	Name                  string     `json:"name,omitempty"`
	Email                 string     `json:"email,omitempty"`
	SubscriptionExpiresAt *time.Time `json:"subscriptionExpiresAt,omitempty"`
	FreeMessages          int        `json:"freeMessages"`
}

// IsSubscribed reports whether the subscription is active at now.
func (u *User) IsSubscribed(now time.Time) bool {
	if u == nil || u.SubscriptionExpiresAt == nil {
		return false
	}
	return u.SubscriptionExpiresAt.After(now)
}

// HasFreeMessages reports whether at least one free message remains.
func (u *User) HasFreeMessages() bool {
	return u != nil && u.FreeMessages > 0
}

// Clone returns a deep copy of u.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.SubscriptionExpiresAt != nil {
		t := *u.SubscriptionExpiresAt
		c.SubscriptionExpiresAt = &t
	}
	return &c
}

// UnmarshalJSON decodes a profile, treating a null or empty expiry as absent
// and clamping a negative free count to zero.
func (u *User) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID                    string          `json:"_id"`
		Name                  string          `json:"name"`
		Email                 string          `json:"email"`
		SubscriptionExpiresAt json.RawMessage `json:"subscriptionExpiresAt"`
		FreeMessages          int             `json:"freeMessages"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*u = User{
		ID:           raw.ID,
		Name:         raw.Name,
		Email:        raw.Email,
		FreeMessages: raw.FreeMessages,
	}
	if u.FreeMessages < 0 {
		u.FreeMessages = 0
	}

	if len(raw.SubscriptionExpiresAt) > 0 && string(raw.SubscriptionExpiresAt) != "null" {
		var s string
		if err := json.Unmarshal(raw.SubscriptionExpiresAt, &s); err != nil {
			return err
		}
		if s != "" {
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				return err
			}
			u.SubscriptionExpiresAt = &t
		}
	}
	return nil
}
