package ratelimit

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tool_review_server/internal/dao/mysql"
	"tool_review_server/internal/model"
	"tool_review_server/internal/service/identity"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(&model.RateLimitCounter{}); err != nil {
		t.Fatal(err)
	}
	return NewService(mysql.NewRepositories(db).RateLimit)
}

func anonActor(uuid string) *identity.Actor {
	return &identity.Actor{
		Kind:          identity.KindAnonymous,
		AnonymousUuid: uuid,
		ActorKey:      "anonymous:" + uuid,
		IPHash:        "deadbeef",
	}
}

func userActor(uuid string) *identity.Actor {
	return &identity.Actor{
		Kind:     identity.KindUser,
		UserUuid: uuid,
		ActorKey: "user:" + uuid,
		IPHash:   "deadbeef",
	}
}

func TestCheckAndConsumeUpToCap(t *testing.T) {
	svc := newTestService(t)
	actor := anonActor("A1")

	// 匿名用户 review_create 每日上限 5 次
	for i := 0; i < 5; i++ {
		result, err := svc.CheckAndConsume(ActionReviewCreate, actor, 1)
		if err != nil {
			t.Fatal(err)
		}
		if !result.Allowed {
			t.Fatalf("request %d denied before cap", i+1)
		}
		if result.Remaining != 5-i-1 {
			t.Fatalf("request %d remaining = %d, want %d", i+1, result.Remaining, 5-i-1)
		}
	}

	// 超出上限后持续拒绝，计数不再增长
	for i := 0; i < 3; i++ {
		result, err := svc.CheckAndConsume(ActionReviewCreate, actor, 1)
		if err != nil {
			t.Fatal(err)
		}
		if result.Allowed {
			t.Fatal("request allowed beyond cap")
		}
		if result.Remaining != 0 {
			t.Fatalf("remaining = %d after cap, want 0", result.Remaining)
		}
	}
}

func TestCheckAndConsumeScopesIndependent(t *testing.T) {
	svc := newTestService(t)

	// 注册用户与匿名用户各自独立计数
	for i := 0; i < 5; i++ {
		if _, err := svc.CheckAndConsume(ActionReviewCreate, anonActor("A1"), 1); err != nil {
			t.Fatal(err)
		}
	}
	result, err := svc.CheckAndConsume(ActionReviewCreate, userActor("U1"), 1)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed || result.Remaining != 9 {
		t.Fatalf("user quota affected by anonymous consumption: %+v", result)
	}
}

func TestUnknownActionUnlimited(t *testing.T) {
	svc := newTestService(t)
	result, err := svc.CheckAndConsume("unknown_action", anonActor("A1"), 1)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed || result.Remaining != -1 {
		t.Fatalf("unknown action should be unlimited: %+v", result)
	}
}

func TestIPSegmentLimitIndependentOfActorScope(t *testing.T) {
	svc := newTestService(t)
	actor := anonActor("A1")

	segment, err := svc.CheckIPSegmentLimit(ActionLikeCreate, actor)
	if err != nil {
		t.Fatal(err)
	}
	if !segment.Allowed || segment.Remaining != 199 {
		t.Fatalf("ip segment first consume: %+v", segment)
	}

	// 行为人维度消费不影响 ip_segment 维度计数
	if _, err := svc.CheckAndConsume(ActionLikeCreate, actor, 1); err != nil {
		t.Fatal(err)
	}
	segment, err = svc.CheckIPSegmentLimit(ActionLikeCreate, actor)
	if err != nil {
		t.Fatal(err)
	}
	if segment.Remaining != 198 {
		t.Fatalf("ip segment remaining = %d, want 198", segment.Remaining)
	}
}

func TestRemainingQuotaDoesNotConsume(t *testing.T) {
	svc := newTestService(t)
	actor := anonActor("A1")

	for i := 0; i < 3; i++ {
		result, err := svc.RemainingQuota(ActionReviewCreate, actor)
		if err != nil {
			t.Fatal(err)
		}
		if !result.Allowed || result.Remaining != 5 {
			t.Fatalf("read-only query changed quota: %+v", result)
		}
	}

	if _, err := svc.CheckAndConsume(ActionReviewCreate, actor, 2); err != nil {
		t.Fatal(err)
	}
	result, err := svc.RemainingQuota(ActionReviewCreate, actor)
	if err != nil {
		t.Fatal(err)
	}
	if result.Remaining != 3 {
		t.Fatalf("remaining = %d after consuming 2, want 3", result.Remaining)
	}
}

func TestWindowRollover(t *testing.T) {
	svc := newTestService(t)
	actor := anonActor("A1")

	day1 := time.Date(2025, 6, 1, 12, 0, 0, 0, windowZone)
	svc.now = func() time.Time { return day1 }

	for i := 0; i < 5; i++ {
		if _, err := svc.CheckAndConsume(ActionReviewCreate, actor, 1); err != nil {
			t.Fatal(err)
		}
	}
	result, err := svc.CheckAndConsume(ActionReviewCreate, actor, 1)
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed {
		t.Fatal("allowed beyond cap on day 1")
	}

	// 跨入次日后配额重置
	svc.now = func() time.Time { return day1.AddDate(0, 0, 1) }
	result, err = svc.CheckAndConsume(ActionReviewCreate, actor, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed || result.Remaining != 4 {
		t.Fatalf("quota not reset after window rollover: %+v", result)
	}
}

func TestWindowDateUsesFixedZone(t *testing.T) {
	// UTC 2025-06-01 20:00 在 UTC+8 已是 6 月 2 日
	utcEvening := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	if got := windowDate(utcEvening); got != "2025-06-02" {
		t.Fatalf("windowDate = %s, want 2025-06-02", got)
	}

	reset := resetAt(utcEvening)
	want := time.Date(2025, 6, 3, 0, 0, 0, 0, windowZone)
	if !reset.Equal(want) {
		t.Fatalf("resetAt = %v, want %v", reset, want)
	}
}
