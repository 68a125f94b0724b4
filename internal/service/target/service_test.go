package target

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
	"tool_review_server/internal/model"
	"tool_review_server/pkg/errorx"
)

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

func newTestEnv(t *testing.T) (*Service, *mysql.Repositories, *memoryCache) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(&model.Target{}, &model.Review{}); err != nil {
		t.Fatal(err)
	}
	repos := mysql.NewRepositories(db)
	cache := newMemoryCache()
	svc := NewService(repos.Target, repos.Review, cache)
	return svc, repos, cache
}

func createTarget(t *testing.T, svc *Service, name, slug string) string {
	t.Helper()
	rsp, err := svc.Create(&request.CreateTargetRequest{
		Name: name,
		Slug: slug,
		Type: string(model.ToolEditor),
	})
	if err != nil {
		t.Fatal(err)
	}
	return rsp.Id
}

func TestListCachedAndInvalidatedOnCreate(t *testing.T) {
	svc, _, cache := newTestEnv(t)
	createTarget(t, svc, "智能编辑器", "smart-editor")

	list, err := svc.List(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(list.Targets) != 1 {
		t.Fatalf("targets = %d, want 1", len(list.Targets))
	}
	if !cache.has(listCacheKey("")) {
		t.Fatal("list not cached after read")
	}

	// 新建目标按前缀整组失效列表缓存，下一次读取包含新目标
	createTarget(t, svc, "补全助手", "complete-helper")
	if cache.has(listCacheKey("")) {
		t.Fatal("create did not invalidate list cache")
	}
	list, err = svc.List(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(list.Targets) != 2 {
		t.Fatalf("targets = %d, want 2", len(list.Targets))
	}
}

func TestListIncludesPublishedReviewAggregates(t *testing.T) {
	svc, repos, _ := newTestEnv(t)
	uuid := createTarget(t, svc, "智能编辑器", "smart-editor")

	for i, rating := range []int{5, 3} {
		err := repos.Review.Create(&model.Review{
			Uuid:       "R" + string(rune('1'+i)),
			TargetUuid: uuid,
			ActorKey:   "anonymous:A" + string(rune('1'+i)),
			Rating:     rating,
			Content:    "一条用于聚合统计的点评内容",
			Status:     model.ContentPublished,
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	// pending 不计入聚合
	err := repos.Review.Create(&model.Review{
		Uuid: "R3", TargetUuid: uuid, ActorKey: "anonymous:A3",
		Rating: 1, Content: "待审核的点评内容", Status: model.ContentPending,
	})
	if err != nil {
		t.Fatal(err)
	}

	list, err := svc.List(context.Background(), string(model.ToolEditor))
	if err != nil {
		t.Fatal(err)
	}
	if len(list.Targets) != 1 {
		t.Fatalf("targets = %d, want 1", len(list.Targets))
	}
	got := list.Targets[0]
	if got.ReviewCount != 2 || got.AvgRating != 4.0 {
		t.Fatalf("aggregates = {count: %d, avg: %v}, want {2, 4}", got.ReviewCount, got.AvgRating)
	}
}

func TestGetBySlugNotFound(t *testing.T) {
	svc, _, _ := newTestEnv(t)

	_, err := svc.GetBySlug(string(model.ToolEditor), "no-such-tool")
	if err == nil {
		t.Fatal("missing slug accepted")
	}
	if errorx.GetIdent(err) != errorx.IdentTargetNotFound {
		t.Fatalf("ident = %s, want %s", errorx.GetIdent(err), errorx.IdentTargetNotFound)
	}
}
