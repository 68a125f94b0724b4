package review

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
	"tool_review_server/internal/dto/request"
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

func (p *capturePublisher) has(eventType string) bool {
	for _, e := range p.events {
		if e.Type == eventType {
			return true
		}
	}
	return false
}

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

func newTestEnv(t *testing.T) (*Service, *mysql.Repositories, *capturePublisher, *memoryCache) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}
	err = db.AutoMigrate(
		&model.Review{}, &model.Target{}, &model.UserInfo{}, &model.AnonymousUser{},
		&model.LikeRecord{}, &model.RateLimitCounter{},
	)
	if err != nil {
		t.Fatal(err)
	}
	repos := mysql.NewRepositories(db)
	publisher := &capturePublisher{}
	cache := newMemoryCache()
	svc := NewService(repos.Review, repos.Target, repos.User, repos.Anonymous,
		repos.Like, ratelimit.NewService(repos.RateLimit), publisher, cache)

	err = repos.Target.Create(&model.Target{
		Uuid: "T1", Name: "测试工具", Slug: "test-tool", Type: model.ToolEditor,
	})
	if err != nil {
		t.Fatal(err)
	}
	return svc, repos, publisher, cache
}

func userActor(uuid string) *identity.Actor {
	return &identity.Actor{
		Kind:     identity.KindUser,
		UserUuid: uuid,
		ActorKey: "user:" + uuid,
		IPHash:   "deadbeef",
	}
}

// validContent 满足 50 字符下限的干净正文
func validContent() string {
	return strings.Repeat("代码补全体验不错，重构提示也准确。", 5)
}

func createReq(content string) *request.CreateReviewRequest {
	return &request.CreateReviewRequest{
		TargetId: "T1",
		Category: "日常编码",
		Rating:   4,
		Content:  content,
	}
}

func TestCreatePublishesCleanContent(t *testing.T) {
	svc, _, publisher, _ := newTestEnv(t)

	result, err := svc.Create(context.Background(), createReq(validContent()), userActor("U1"))
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != string(model.ContentPublished) {
		t.Fatalf("status = %s, want published", result.Status)
	}
	if publisher.has(eventbus.EventContentFlagged) {
		t.Fatal("clean content published content_flagged event")
	}
}

func TestCreateFlaggedContentPending(t *testing.T) {
	svc, repos, publisher, _ := newTestEnv(t)

	content := "这个工具完全是垃圾，" + validContent()
	result, err := svc.Create(context.Background(), createReq(content), userActor("U1"))
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != string(model.ContentPending) {
		t.Fatalf("status = %s, want pending", result.Status)
	}
	if !publisher.has(eventbus.EventContentFlagged) {
		t.Fatal("content_flagged event not published")
	}

	// 待审核内容不出现在公开列表
	list, err := svc.List(&request.ListReviewRequest{TargetId: "T1"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if list.Total != 0 {
		t.Fatalf("pending review visible in list: total = %d", list.Total)
	}
	review, err := repos.Review.FindByUuid(result.Id)
	if err != nil {
		t.Fatal(err)
	}
	if review.Status != model.ContentPending {
		t.Fatalf("stored status = %s", review.Status)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _, _, _ := newTestEnv(t)
	actor := userActor("U1")

	cases := []*request.CreateReviewRequest{
		{TargetId: "T1", Category: "日常编码", Rating: 0, Content: validContent()},
		{TargetId: "T1", Category: "日常编码", Rating: 6, Content: validContent()},
		{TargetId: "T1", Category: "日常编码", Rating: 4, Content: "太短了"},
		{TargetId: "T1", Category: "日常编码", Rating: 4, Content: strings.Repeat("长", 2001)},
	}
	for i, req := range cases {
		_, err := svc.Create(context.Background(), req, actor)
		if errorx.GetIdent(err) != errorx.IdentReviewValidation {
			t.Fatalf("case %d: err = %v, want %s", i, err, errorx.IdentReviewValidation)
		}
	}
}

func TestCreateTargetNotFound(t *testing.T) {
	svc, _, _, _ := newTestEnv(t)
	req := createReq(validContent())
	req.TargetId = "T_nope"
	_, err := svc.Create(context.Background(), req, userActor("U1"))
	if errorx.GetIdent(err) != errorx.IdentTargetNotFound {
		t.Fatalf("err = %v, want %s", err, errorx.IdentTargetNotFound)
	}
}

func TestCreateRateLimited(t *testing.T) {
	svc, _, publisher, _ := newTestEnv(t)
	actor := userActor("U1")

	// 注册用户 review_create 每日上限 10 次
	for i := 0; i < 10; i++ {
		if _, err := svc.Create(context.Background(), createReq(validContent()), actor); err != nil {
			t.Fatal(err)
		}
	}
	_, err := svc.Create(context.Background(), createReq(validContent()), actor)
	if errorx.GetIdent(err) != errorx.IdentRateLimitExceeded {
		t.Fatalf("err = %v, want rate limited", err)
	}
	if !publisher.has(eventbus.EventRateLimitDenied) {
		t.Fatal("rate_limit_denied event not published")
	}
}

func TestGetByIdOnlyPublished(t *testing.T) {
	svc, repos, _, _ := newTestEnv(t)

	result, err := svc.Create(context.Background(), createReq(validContent()), userActor("U1"))
	if err != nil {
		t.Fatal(err)
	}
	review, err := svc.GetById(result.Id, nil)
	if err != nil {
		t.Fatal(err)
	}
	if review.Id != result.Id || review.Status != string(model.ContentPublished) {
		t.Fatalf("unexpected review: %+v", review)
	}

	// 隐藏后对外等同于不存在
	if err := repos.Review.UpdateStatus(result.Id, model.ContentHidden); err != nil {
		t.Fatal(err)
	}
	_, err = svc.GetById(result.Id, nil)
	if errorx.GetIdent(err) != errorx.IdentReviewNotFound {
		t.Fatalf("hidden review: err = %v", err)
	}
}

func TestListIsLikedByMe(t *testing.T) {
	svc, repos, _, _ := newTestEnv(t)
	actor := userActor("U1")

	result, err := svc.Create(context.Background(), createReq(validContent()), actor)
	if err != nil {
		t.Fatal(err)
	}
	err = repos.Like.CreateAndIncrement(&model.LikeRecord{
		TargetType: model.TargetReview,
		TargetUuid: result.Id,
		ActorKey:   actor.ActorKey,
		UserUuid:   actor.UserUuid,
	})
	if err != nil {
		t.Fatal(err)
	}

	list, err := svc.List(&request.ListReviewRequest{TargetId: "T1"}, actor)
	if err != nil {
		t.Fatal(err)
	}
	if list.Total != 1 || !list.Reviews[0].IsLikedByMe {
		t.Fatalf("list = %+v", list)
	}
	if list.Reviews[0].LikesCount != 1 {
		t.Fatalf("likesCount = %d, want 1", list.Reviews[0].LikesCount)
	}

	// 其他行为人视角不带点赞标记
	other, err := svc.List(&request.ListReviewRequest{TargetId: "T1"}, userActor("U2"))
	if err != nil {
		t.Fatal(err)
	}
	if other.Reviews[0].IsLikedByMe {
		t.Fatal("is_liked_by_me leaked to other actor")
	}
}

func TestStatsAggregationAndCache(t *testing.T) {
	svc, _, _, cache := newTestEnv(t)

	ratings := []int{5, 5, 4, 3}
	for i, rating := range ratings {
		req := createReq(validContent())
		req.Rating = rating
		if _, err := svc.Create(context.Background(), req, userActor("U"+strings.Repeat("x", i+1))); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := svc.Stats(context.Background(), "T1")
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 4 {
		t.Fatalf("total = %d, want 4", stats.Total)
	}
	if stats.AvgRating != 4.25 {
		t.Fatalf("avgRating = %v, want 4.25", stats.AvgRating)
	}
	if stats.RatingDistribution[5] != 2 || stats.RatingDistribution[4] != 1 || stats.RatingDistribution[3] != 1 {
		t.Fatalf("distribution = %v", stats.RatingDistribution)
	}
	if stats.CategoryStats["日常编码"] != 4 {
		t.Fatalf("categoryStats = %v", stats.CategoryStats)
	}

	// 统计结果已写入缓存
	if cached, _ := cache.Get(context.Background(), "review_stats_T1"); cached == "" {
		t.Fatal("stats not cached")
	}

	// 新点评创建后缓存失效
	if _, err := svc.Create(context.Background(), createReq(validContent()), userActor("U_new")); err != nil {
		t.Fatal(err)
	}
	if cached, _ := cache.Get(context.Background(), "review_stats_T1"); cached != "" {
		t.Fatal("stats cache not invalidated after create")
	}
}

func TestCreateInvalidatesTargetListCache(t *testing.T) {
	svc, _, _, cache := newTestEnv(t)

	// 目标列表含点评数/平均分聚合，新点评必须让所有类型维度的列表缓存失效
	_ = cache.Set(context.Background(), "target_list:all", "stale", time.Minute)
	_ = cache.Set(context.Background(), "target_list:editor", "stale", time.Minute)

	if _, err := svc.Create(context.Background(), createReq(validContent()), userActor("U1")); err != nil {
		t.Fatal(err)
	}
	if cached, _ := cache.Get(context.Background(), "target_list:all"); cached != "" {
		t.Fatal("target list cache not invalidated after create")
	}
	if cached, _ := cache.Get(context.Background(), "target_list:editor"); cached != "" {
		t.Fatal("typed target list cache not invalidated after create")
	}
}
