// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tomtom215/socialpulse/internal/models"
)

var suiteBase = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testEvent(id string, platform models.Platform, ts time.Time) *models.Event {
	return &models.Event{
		ID:       id,
		Type:     models.EventTypeEngagement,
		Platform: platform,
		Actor:    models.Actor{PlatformUserID: "actor-" + id, Username: "user_" + id},
		Subject: models.Subject{
			ContentID:       "content-" + id,
			ContentType:     models.ContentTypePost,
			OwnerPlatformID: "owner-1",
		},
		Metrics:    models.Metrics{Count: 1},
		Metadata:   models.Metadata{Source: models.SourceAPI},
		Timestamp:  ts,
		IngestedAt: ts.Add(time.Second),
	}
}

// runBackendSuite exercises the behaviour every backend must share.
func runBackendSuite(t *testing.T, open func(t *testing.T) Backend) {
	t.Run("insert and get round trip", func(t *testing.T) {
		b := open(t)
		ctx := context.Background()

		dur := int64(4500)
		val := 2.5
		verified := true
		e := testEvent("evt-1", models.PlatformInstagram, suiteBase)
		e.Actor.DisplayName = "Display"
		e.Metrics = models.Metrics{Count: 3, DurationMS: &dur, Value: &val}
		e.Metadata.IsVerified = &verified
		e.Metadata.RawEventID = "raw-1"
		e.AttributedUserID = "user-42"

		if err := b.Insert(ctx, e); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
		got, err := b.Get(ctx, "evt-1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.Metrics.Count != 3 || got.Metrics.DurationMS == nil || *got.Metrics.DurationMS != 4500 {
			t.Errorf("Expected metrics to round trip, got %+v", got.Metrics)
		}
		if got.Metrics.Value == nil || *got.Metrics.Value != 2.5 {
			t.Errorf("Expected value 2.5, got %v", got.Metrics.Value)
		}
		if got.Metadata.IsVerified == nil || !*got.Metadata.IsVerified {
			t.Errorf("Expected is_verified true, got %v", got.Metadata.IsVerified)
		}
		if got.Actor.DisplayName != "Display" || got.Actor.AvatarURL != "" {
			t.Errorf("Expected optional actor fields to round trip, got %+v", got.Actor)
		}
		if got.AttributedUserID != "user-42" {
			t.Errorf("Expected attributed user user-42, got %q", got.AttributedUserID)
		}
		if !got.Timestamp.Equal(suiteBase) {
			t.Errorf("Expected timestamp %v, got %v", suiteBase, got.Timestamp)
		}
	})

	t.Run("get unknown id", func(t *testing.T) {
		b := open(t)
		if _, err := b.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("duplicate id", func(t *testing.T) {
		b := open(t)
		ctx := context.Background()
		if err := b.Insert(ctx, testEvent("dup", models.PlatformTwitter, suiteBase)); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
		err := b.Insert(ctx, testEvent("dup", models.PlatformTwitter, suiteBase))
		if !errors.Is(err, ErrDuplicateEvent) {
			t.Errorf("Expected ErrDuplicateEvent, got %v", err)
		}
		if !errors.Is(err, ErrStorageFailure) {
			t.Errorf("Expected duplicate id to count as a storage failure, got %v", err)
		}
	})

	t.Run("duplicate raw event id per platform", func(t *testing.T) {
		b := open(t)
		ctx := context.Background()

		first := testEvent("a", models.PlatformTikTok, suiteBase)
		first.Metadata.RawEventID = "native-7"
		if err := b.Insert(ctx, first); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}

		again := testEvent("b", models.PlatformTikTok, suiteBase)
		again.Metadata.RawEventID = "native-7"
		if err := b.Insert(ctx, again); !errors.Is(err, ErrDuplicateRawEvent) {
			t.Errorf("Expected ErrDuplicateRawEvent, got %v", err)
		}

		other := testEvent("c", models.PlatformYouTube, suiteBase)
		other.Metadata.RawEventID = "native-7"
		if err := b.Insert(ctx, other); err != nil {
			t.Errorf("Expected same raw id on another platform to be accepted, got %v", err)
		}

		for _, id := range []string{"d", "e"} {
			if err := b.Insert(ctx, testEvent(id, models.PlatformTikTok, suiteBase)); err != nil {
				t.Errorf("Expected events without raw id to never collide, got %v", err)
			}
		}
	})

	t.Run("update and delete refuse", func(t *testing.T) {
		b := open(t)
		ctx := context.Background()
		e := testEvent("keep", models.PlatformFacebook, suiteBase)
		if err := b.Insert(ctx, e); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
		if err := b.Update(ctx, "keep", e); !errors.Is(err, ErrImmutabilityViolation) {
			t.Errorf("Expected ErrImmutabilityViolation from Update, got %v", err)
		}
		if err := b.Delete(ctx, "keep"); !errors.Is(err, ErrImmutabilityViolation) {
			t.Errorf("Expected ErrImmutabilityViolation from Delete, got %v", err)
		}
		if _, err := b.Get(ctx, "keep"); err != nil {
			t.Errorf("Expected event to survive, got %v", err)
		}
	})

	t.Run("list by platform", func(t *testing.T) {
		b := open(t)
		ctx := context.Background()
		for i := 0; i < 5; i++ {
			e := testEvent(fmt.Sprintf("th-%d", i), models.PlatformThreads, suiteBase.Add(time.Duration(i)*time.Hour))
			if err := b.Insert(ctx, e); err != nil {
				t.Fatalf("Insert failed: %v", err)
			}
		}
		if err := b.Insert(ctx, testEvent("tw-0", models.PlatformTwitter, suiteBase)); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}

		page, err := b.ListByPlatform(ctx, PlatformQuery{Platform: models.PlatformThreads, Limit: 2, Page: 1})
		if err != nil {
			t.Fatalf("ListByPlatform failed: %v", err)
		}
		if page.Total != 5 || page.TotalPages != 3 {
			t.Errorf("Expected total 5 over 3 pages, got %d over %d", page.Total, page.TotalPages)
		}
		if len(page.Events) != 2 || page.Events[0].ID != "th-4" || page.Events[1].ID != "th-3" {
			t.Errorf("Expected newest first [th-4 th-3], got %v", ids(page.Events))
		}

		last, err := b.ListByPlatform(ctx, PlatformQuery{Platform: models.PlatformThreads, Limit: 2, Page: 3})
		if err != nil {
			t.Fatalf("ListByPlatform failed: %v", err)
		}
		if len(last.Events) != 1 || last.Events[0].ID != "th-0" {
			t.Errorf("Expected [th-0] on last page, got %v", ids(last.Events))
		}

		start := suiteBase.Add(time.Hour)
		end := suiteBase.Add(3 * time.Hour)
		window, err := b.ListByPlatform(ctx, PlatformQuery{Platform: models.PlatformThreads, Start: &start, End: &end})
		if err != nil {
			t.Fatalf("ListByPlatform failed: %v", err)
		}
		if window.Total != 3 || window.Limit != DefaultLimit || window.Page != 1 {
			t.Errorf("Expected 3 events in window with default paging, got total=%d limit=%d page=%d",
				window.Total, window.Limit, window.Page)
		}

		empty, err := b.ListByPlatform(ctx, PlatformQuery{Platform: models.PlatformYouTube})
		if err != nil {
			t.Fatalf("ListByPlatform failed: %v", err)
		}
		if empty.Events == nil || len(empty.Events) != 0 || empty.TotalPages != 0 {
			t.Errorf("Expected empty non-nil page, got %+v", empty)
		}
	})

	t.Run("directory", func(t *testing.T) {
		b := open(t)
		ctx := context.Background()

		if _, found, err := b.LookupOwner(ctx, models.PlatformTwitter, "123"); err != nil || found {
			t.Fatalf("Expected unlinked account, got found=%v err=%v", found, err)
		}
		if err := b.LinkAccount(ctx, models.PlatformTwitter, "123", "user-1"); err != nil {
			t.Fatalf("LinkAccount failed: %v", err)
		}
		if err := b.LinkAccount(ctx, models.PlatformTwitter, "123", "user-2"); err != nil {
			t.Fatalf("LinkAccount relink failed: %v", err)
		}
		userID, found, err := b.LookupOwner(ctx, models.PlatformTwitter, "123")
		if err != nil || !found || userID != "user-2" {
			t.Errorf("Expected user-2, got %q found=%v err=%v", userID, found, err)
		}
		if _, found, _ := b.LookupOwner(ctx, models.PlatformThreads, "123"); found {
			t.Error("Expected lookup to be scoped by platform")
		}
	})

	t.Run("rollups", func(t *testing.T) {
		b := open(t)
		ctx := context.Background()

		steps := []struct {
			platform models.Platform
			at       time.Time
		}{
			{models.PlatformInstagram, suiteBase},
			{models.PlatformInstagram, suiteBase.Add(2 * time.Hour)},
			{models.PlatformTikTok, suiteBase.Add(time.Hour)},
			{models.PlatformInstagram, suiteBase.Add(-time.Hour)},
		}
		for _, s := range steps {
			if err := b.ApplyRollup(ctx, "user-9", s.platform, 1, s.at); err != nil {
				t.Fatalf("ApplyRollup failed: %v", err)
			}
		}

		sum, err := b.GetRollup(ctx, "user-9")
		if err != nil {
			t.Fatalf("GetRollup failed: %v", err)
		}
		if sum.Total != 4 {
			t.Errorf("Expected total 4, got %d", sum.Total)
		}
		if sum.PerPlatform[models.PlatformInstagram] != 3 || sum.PerPlatform[models.PlatformTikTok] != 1 {
			t.Errorf("Expected instagram=3 tiktok=1, got %v", sum.PerPlatform)
		}
		if !sum.LastIngestedAt.Equal(suiteBase.Add(2 * time.Hour)) {
			t.Errorf("Expected last ingested %v, got %v", suiteBase.Add(2*time.Hour), sum.LastIngestedAt)
		}

		none, err := b.GetRollup(ctx, "nobody")
		if err != nil {
			t.Fatalf("GetRollup failed: %v", err)
		}
		if none.Total != 0 || len(none.PerPlatform) != 0 {
			t.Errorf("Expected empty rollup, got %+v", none)
		}
	})

	t.Run("ping", func(t *testing.T) {
		b := open(t)
		if err := b.Ping(context.Background()); err != nil {
			t.Errorf("Expected ping to succeed, got %v", err)
		}
	})
}

func ids(events []*models.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}
