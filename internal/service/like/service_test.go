package like

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tool_review_server/internal/dao/mysql"
	"tool_review_server/internal/infrastructure/eventbus"
	"tool_review_server/internal/model"
	"tool_review_server/internal/service/identity"
	"tool_review_server/internal/service/ratelimit"
	"tool_review_server/pkg/errorx"
)

type capturePublisher struct {
	events []eventbus.AbuseEvent
}

func (p *capturePublisher) Publish(_ context.Context, event eventbus.AbuseEvent) {
	p.events = append(p.events, event)
}

func (p *capturePublisher) Close() {}

// memoryCache 内存版缓存，SubmitTask 同步执行便于断言
type memoryCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string]string{}}
}

func (c *memoryCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memoryCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[key], nil
}

func (c *memoryCache) GetOrError(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.data[key]; ok {
		return v, nil
	}
	return "", errorx.New(errorx.CodeNotFound, "缓存未命中")
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memoryCache) DeleteByPattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

func (c *memoryCache) DeleteByPatterns(ctx context.Context, patterns []string) error {
	for _, pattern := range patterns {
		if err := c.DeleteByPattern(ctx, pattern); err != nil {
			return err
		}
	}
	return nil
}

func (c *memoryCache) SubmitTask(action func()) { action() }

func (c *memoryCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

func newTestEnv(t *testing.T) (*Service, *ratelimit.Service, *mysql.Repositories, *capturePublisher, *memoryCache) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}
	err = db.AutoMigrate(
		&model.Review{}, &model.Comment{}, &model.LikeRecord{}, &model.RateLimitCounter{},
		&model.UserInfo{}, &model.AnonymousUser{},
	)
	if err != nil {
		t.Fatal(err)
	}
	repos := mysql.NewRepositories(db)
	limiter := ratelimit.NewService(repos.RateLimit)
	publisher := &capturePublisher{}
	cache := newMemoryCache()
	svc := NewService(repos.Like, repos.Review, repos.Comment, repos.User, repos.Anonymous, limiter, publisher, cache)
	return svc, limiter, repos, publisher, cache
}

func seedReview(t *testing.T, repos *mysql.Repositories, uuid string, status model.ContentStatus) {
	t.Helper()
	err := repos.Review.Create(&model.Review{
		Uuid:       uuid,
		TargetUuid: "T1",
		ActorKey:   "user:author",
		UserUuid:   "author",
		Rating:     4,
		Content:    "一条用于测试的点评内容",
		Status:     status,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func anonActor(uuid string) *identity.Actor {
	return &identity.Actor{
		Kind:          identity.KindAnonymous,
		AnonymousUuid: uuid,
		ActorKey:      "anonymous:" + uuid,
		IPHash:        "deadbeef",
	}
}

func TestToggleFirstLikeThenIdempotent(t *testing.T) {
	svc, _, repos, _, _ := newTestEnv(t)
	seedReview(t, repos, "R1", model.ContentPublished)
	actor := anonActor("A1")

	first, err := svc.Toggle(context.Background(), model.TargetReview, "R1", actor)
	if err != nil {
		t.Fatal(err)
	}
	if !first.Liked || !first.IsNew || first.LikesCount != 1 {
		t.Fatalf("first toggle: %+v", first)
	}

	// 重复点赞幂等：计数不变、不新建记录
	second, err := svc.Toggle(context.Background(), model.TargetReview, "R1", actor)
	if err != nil {
		t.Fatal(err)
	}
	if !second.Liked || second.IsNew || second.LikesCount != 1 {
		t.Fatalf("second toggle: %+v", second)
	}

	review, err := repos.Review.FindByUuid("R1")
	if err != nil {
		t.Fatal(err)
	}
	if review.LikesCount != 1 {
		t.Fatalf("likes_count = %d, want 1", review.LikesCount)
	}
}

func TestToggleDistinctActorsAccumulate(t *testing.T) {
	svc, _, repos, _, _ := newTestEnv(t)
	seedReview(t, repos, "R1", model.ContentPublished)

	for i, actor := range []*identity.Actor{anonActor("A1"), anonActor("A2"), anonActor("A3")} {
		result, err := svc.Toggle(context.Background(), model.TargetReview, "R1", actor)
		if err != nil {
			t.Fatal(err)
		}
		if result.LikesCount != i+1 {
			t.Fatalf("actor %d: likesCount = %d, want %d", i+1, result.LikesCount, i+1)
		}
	}
}

func TestToggleTargetMissingOrDeleted(t *testing.T) {
	svc, _, repos, _, _ := newTestEnv(t)
	seedReview(t, repos, "R_deleted", model.ContentDeleted)

	_, err := svc.Toggle(context.Background(), model.TargetReview, "R_nope", anonActor("A1"))
	if errorx.GetIdent(err) != errorx.IdentLikeTargetNotFound {
		t.Fatalf("missing target: err = %v", err)
	}

	// 已删除目标与缺失目标同样处理
	_, err = svc.Toggle(context.Background(), model.TargetReview, "R_deleted", anonActor("A1"))
	if errorx.GetIdent(err) != errorx.IdentLikeTargetNotFound {
		t.Fatalf("deleted target: err = %v", err)
	}
}

func TestToggleRateLimited(t *testing.T) {
	svc, limiter, repos, publisher, _ := newTestEnv(t)
	seedReview(t, repos, "R1", model.ContentPublished)
	actor := anonActor("A1")

	// 预先耗尽行为人维度的 like_create 配额（匿名上限 30）
	for i := 0; i < 30; i++ {
		result, err := limiter.CheckAndConsume(ratelimit.ActionLikeCreate, actor, 1)
		if err != nil {
			t.Fatal(err)
		}
		if !result.Allowed {
			t.Fatalf("quota exhausted early at %d", i)
		}
	}

	_, err := svc.Toggle(context.Background(), model.TargetReview, "R1", actor)
	if errorx.GetIdent(err) != errorx.IdentRateLimitExceeded {
		t.Fatalf("err = %v, want rate limited", err)
	}
	if len(publisher.events) == 0 || publisher.events[0].Type != eventbus.EventRateLimitDenied {
		t.Fatal("rate_limit_denied event not published")
	}
}

func TestToggleExistingLikeSkipsQuota(t *testing.T) {
	svc, limiter, repos, _, _ := newTestEnv(t)
	seedReview(t, repos, "R1", model.ContentPublished)
	actor := anonActor("A1")

	if _, err := svc.Toggle(context.Background(), model.TargetReview, "R1", actor); err != nil {
		t.Fatal(err)
	}

	// 已点赞后的重复调用不消费配额
	before, err := limiter.RemainingQuota(ratelimit.ActionLikeCreate, actor)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		if _, err := svc.Toggle(context.Background(), model.TargetReview, "R1", actor); err != nil {
			t.Fatal(err)
		}
	}
	after, err := limiter.RemainingQuota(ratelimit.ActionLikeCreate, actor)
	if err != nil {
		t.Fatal(err)
	}
	if after.Remaining != before.Remaining {
		t.Fatalf("idempotent toggle consumed quota: %d -> %d", before.Remaining, after.Remaining)
	}
}

func TestStatsByTarget(t *testing.T) {
	svc, _, repos, _, _ := newTestEnv(t)
	seedReview(t, repos, "R1", model.ContentPublished)

	userLiker := &identity.Actor{Kind: identity.KindUser, UserUuid: "U1", ActorKey: "user:U1", IPHash: "deadbeef"}
	for _, actor := range []*identity.Actor{userLiker, anonActor("A1"), anonActor("A2")} {
		if _, err := svc.Toggle(context.Background(), model.TargetReview, "R1", actor); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := svc.StatsByTarget(context.Background(), model.TargetReview, "R1")
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 3 || stats.UserCount != 1 || stats.AnonymousCount != 2 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestStatsByTargetCachedAndInvalidatedOnNewLike(t *testing.T) {
	svc, _, repos, _, cache := newTestEnv(t)
	seedReview(t, repos, "R1", model.ContentPublished)
	key := statsCacheKey(model.TargetReview, "R1")

	if _, err := svc.Toggle(context.Background(), model.TargetReview, "R1", anonActor("A1")); err != nil {
		t.Fatal(err)
	}
	stats, err := svc.StatsByTarget(context.Background(), model.TargetReview, "R1")
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 1 {
		t.Fatalf("total = %d, want 1", stats.Total)
	}
	if !cache.has(key) {
		t.Fatal("stats not cached after read")
	}

	// 新增点赞后缓存失效，下一次读取反映新计数
	if _, err := svc.Toggle(context.Background(), model.TargetReview, "R1", anonActor("A2")); err != nil {
		t.Fatal(err)
	}
	if cache.has(key) {
		t.Fatal("new like did not invalidate stats cache")
	}
	stats, err = svc.StatsByTarget(context.Background(), model.TargetReview, "R1")
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 2 {
		t.Fatalf("total = %d, want 2", stats.Total)
	}
}

// raceLikeRepo 在首次落库前先提交另一条并发点赞，模拟限流往返期间的并发提交
type raceLikeRepo struct {
	mysql.LikeRepository
	concurrent *model.LikeRecord
}

func (r *raceLikeRepo) CreateAndIncrement(like *model.LikeRecord) error {
	if r.concurrent != nil {
		c := r.concurrent
		r.concurrent = nil
		if err := r.LikeRepository.CreateAndIncrement(c); err != nil {
			return err
		}
	}
	return r.LikeRepository.CreateAndIncrement(like)
}

func TestToggleLikesCountReflectsStoredCount(t *testing.T) {
	_, _, repos, _, _ := newTestEnv(t)
	seedReview(t, repos, "R1", model.ContentPublished)

	raceRepo := &raceLikeRepo{
		LikeRepository: repos.Like,
		concurrent: &model.LikeRecord{
			TargetType:    model.TargetReview,
			TargetUuid:    "R1",
			ActorKey:      "anonymous:A_other",
			AnonymousUuid: "A_other",
		},
	}
	limiter := ratelimit.NewService(repos.RateLimit)
	svc := NewService(raceRepo, repos.Review, repos.Comment, repos.User, repos.Anonymous,
		limiter, &capturePublisher{}, newMemoryCache())

	// 本次请求读到的初始计数是 0，但落库时另一条点赞已提交，
	// 返回的计数必须是落库后的真实值
	result, err := svc.Toggle(context.Background(), model.TargetReview, "R1", anonActor("A1"))
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsNew {
		t.Fatal("expected a new like")
	}
	if result.LikesCount != 2 {
		t.Fatalf("likesCount = %d, want 2 (stored count after concurrent like)", result.LikesCount)
	}
}

func TestRecentByTargetAuthorUnion(t *testing.T) {
	svc, _, repos, _, _ := newTestEnv(t)
	seedReview(t, repos, "R1", model.ContentPublished)

	err := repos.User.Create(&model.UserInfo{
		Uuid: "U1", Nickname: "老王", Email: "u1@example.com", RawPassword: "secret123",
	})
	if err != nil {
		t.Fatal(err)
	}
	liker := &identity.Actor{Kind: identity.KindUser, UserUuid: "U1", ActorKey: "user:U1", IPHash: "deadbeef"}
	if _, err := svc.Toggle(context.Background(), model.TargetReview, "R1", liker); err != nil {
		t.Fatal(err)
	}
	// 悬空匿名引用回退为占位作者
	if _, err := svc.Toggle(context.Background(), model.TargetReview, "R1", anonActor("A_gone")); err != nil {
		t.Fatal(err)
	}

	likes, err := svc.RecentByTarget(model.TargetReview, "R1", 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(likes) != 2 {
		t.Fatalf("len(likes) = %d, want 2", len(likes))
	}
	names := map[string]bool{}
	for _, l := range likes {
		names[l.Author.Name] = true
	}
	if !names["老王"] || !names["匿名用户"] {
		t.Fatalf("authors = %v", names)
	}
}

func TestLikedSet(t *testing.T) {
	svc, _, repos, _, _ := newTestEnv(t)
	seedReview(t, repos, "R1", model.ContentPublished)
	seedReview(t, repos, "R2", model.ContentPublished)
	actor := anonActor("A1")

	if _, err := svc.Toggle(context.Background(), model.TargetReview, "R1", actor); err != nil {
		t.Fatal(err)
	}

	liked, err := svc.LikedSet(model.TargetReview, []string{"R1", "R2"}, actor)
	if err != nil {
		t.Fatal(err)
	}
	if !liked["R1"] || liked["R2"] {
		t.Fatalf("liked set = %v", liked)
	}

	empty, err := svc.LikedSet(model.TargetReview, nil, actor)
	if err != nil {
		t.Fatal(err)
	}
	if len(empty) != 0 {
		t.Fatalf("empty input returned %v", empty)
	}
}
