package identity

import (
	"errors"
	"fmt"
	"testing"

	"gorm.io/gorm"

	"tool_review_server/internal/model"
	"tool_review_server/pkg/errorx"
)

// fakeAnonRepo 内存版匿名用户存储，序号分配逻辑与真实实现一致
type fakeAnonRepo struct {
	byFingerprint map[string]*model.AnonymousUser
	touched       map[string]int
	failNextWith  error                // 非 nil 时下一次 CreateWithNextSequence 返回该错误
	raceWinner    *model.AnonymousUser // 非 nil 时创建撞唯一索引，胜者记录同时落库
	seqCollisions int                  // >0 时创建撞序号唯一索引（胜者是别的指纹），递减后返回冲突
}

func newFakeAnonRepo() *fakeAnonRepo {
	return &fakeAnonRepo{
		byFingerprint: map[string]*model.AnonymousUser{},
		touched:       map[string]int{},
	}
}

func (r *fakeAnonRepo) FindByUuid(uuid string) (*model.AnonymousUser, error) {
	for _, anon := range r.byFingerprint {
		if anon.Uuid == uuid {
			return anon, nil
		}
	}
	return nil, errorx.New(errorx.CodeNotFound, "匿名用户不存在")
}

func (r *fakeAnonRepo) FindByUuids(uuids []string) ([]model.AnonymousUser, error) {
	var result []model.AnonymousUser
	for _, anon := range r.byFingerprint {
		for _, uuid := range uuids {
			if anon.Uuid == uuid {
				result = append(result, *anon)
			}
		}
	}
	return result, nil
}

func (r *fakeAnonRepo) FindByFingerprint(fingerprint string) (*model.AnonymousUser, error) {
	if anon, ok := r.byFingerprint[fingerprint]; ok {
		return anon, nil
	}
	return nil, errorx.New(errorx.CodeNotFound, "匿名用户不存在")
}

func (r *fakeAnonRepo) TouchLastSeen(uuid string) error {
	r.touched[uuid]++
	return nil
}

func (r *fakeAnonRepo) CreateWithNextSequence(anon *model.AnonymousUser, sequenceStart int) error {
	if r.raceWinner != nil {
		r.byFingerprint[r.raceWinner.DeviceFingerprint] = r.raceWinner
		r.raceWinner = nil
		return gorm.ErrDuplicatedKey
	}
	if r.seqCollisions > 0 {
		r.seqCollisions--
		return gorm.ErrDuplicatedKey
	}
	if r.failNextWith != nil {
		err := r.failNextWith
		r.failNextWith = nil
		return err
	}
	next := sequenceStart + len(r.byFingerprint)
	anon.SequenceNumber = next
	anon.DisplayName = fmt.Sprintf("匿名#%d", next)
	r.byFingerprint[anon.DeviceFingerprint] = anon
	return nil
}

type fakeUserRepo struct{}

func (r *fakeUserRepo) FindByUuid(uuid string) (*model.UserInfo, error) {
	return nil, errorx.New(errorx.CodeNotFound, "用户不存在")
}

func (r *fakeUserRepo) FindByEmail(email string) (*model.UserInfo, error) {
	return nil, errorx.New(errorx.CodeNotFound, "用户不存在")
}

func (r *fakeUserRepo) FindByUuids(uuids []string) ([]model.UserInfo, error) {
	return nil, nil
}

func (r *fakeUserRepo) Create(user *model.UserInfo) error { return nil }

func newTestService() (*Service, *fakeAnonRepo) {
	anonRepo := newFakeAnonRepo()
	return NewService(&fakeUserRepo{}, anonRepo), anonRepo
}

func TestResolveSessionWinsOverFingerprint(t *testing.T) {
	svc, anonRepo := newTestService()

	actor, err := svc.Resolve("U123", "fingerprint-abc", "1.2.3.4")
	if err != nil {
		t.Fatal(err)
	}
	if actor.Kind != KindUser {
		t.Fatalf("kind = %s, want user", actor.Kind)
	}
	if actor.ActorKey != "user:U123" {
		t.Fatalf("actorKey = %s", actor.ActorKey)
	}
	if len(anonRepo.byFingerprint) != 0 {
		t.Fatal("session resolution should not create anonymous identity")
	}
}

func TestResolveBareIPActor(t *testing.T) {
	svc, _ := newTestService()

	actor, err := svc.Resolve("", "", "1.2.3.4")
	if err != nil {
		t.Fatal(err)
	}
	if actor.Kind != KindAnonymous {
		t.Fatalf("kind = %s, want anonymous", actor.Kind)
	}
	if actor.ActorKey != "ip:"+HashIP("1.2.3.4") {
		t.Fatalf("actorKey = %s", actor.ActorKey)
	}
	if actor.CanWrite() {
		t.Fatal("bare ip actor must not have write identity")
	}
}

func TestResolveShortFingerprintRejected(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Resolve("", "short", "1.2.3.4")
	if err == nil {
		t.Fatal("short fingerprint accepted")
	}
	if errorx.GetIdent(err) != errorx.IdentFingerprintInvalid {
		t.Fatalf("ident = %s, want %s", errorx.GetIdent(err), errorx.IdentFingerprintInvalid)
	}
}

func TestResolveCreatesAnonymousOnFirstSight(t *testing.T) {
	svc, _ := newTestService()

	actor, err := svc.Resolve("", "abcdefghij", "1.2.3.4")
	if err != nil {
		t.Fatal(err)
	}
	if actor.Kind != KindAnonymous || actor.AnonymousUuid == "" {
		t.Fatalf("unexpected actor: %+v", actor)
	}
	// 首个匿名用户从起始序号分配展示名
	if actor.DisplayName != "匿名#9527" {
		t.Fatalf("displayName = %s, want 匿名#9527", actor.DisplayName)
	}
	if actor.ActorKey != "anonymous:"+actor.AnonymousUuid {
		t.Fatalf("actorKey = %s", actor.ActorKey)
	}
	if !actor.CanWrite() {
		t.Fatal("fingerprint actor should have write identity")
	}
}

func TestResolveSameFingerprintStableIdentity(t *testing.T) {
	svc, anonRepo := newTestService()

	first, err := svc.Resolve("", "abcdefghij", "1.2.3.4")
	if err != nil {
		t.Fatal(err)
	}
	// 同一指纹从另一个 IP 再次解析，身份不变
	second, err := svc.Resolve("", "abcdefghij", "5.6.7.8")
	if err != nil {
		t.Fatal(err)
	}
	if second.AnonymousUuid != first.AnonymousUuid {
		t.Fatalf("identity changed: %s -> %s", first.AnonymousUuid, second.AnonymousUuid)
	}
	if anonRepo.touched[first.AnonymousUuid] != 1 {
		t.Fatalf("lastSeenAt touched %d times, want 1", anonRepo.touched[first.AnonymousUuid])
	}
}

func TestResolveConcurrentFirstSightFallsBackToExisting(t *testing.T) {
	svc, anonRepo := newTestService()

	// 模拟并发首见落败：创建时撞上指纹唯一索引，此刻胜者记录已在库中，
	// 落败方重读后必须采用胜者身份
	anonRepo.raceWinner = &model.AnonymousUser{
		Uuid:              "A_winner",
		DeviceFingerprint: "abcdefghij",
		DisplayName:       "匿名#9527",
	}

	actor, err := svc.Resolve("", "abcdefghij", "1.2.3.4")
	if err != nil {
		t.Fatal(err)
	}
	if actor.AnonymousUuid != "A_winner" {
		t.Fatalf("loser did not adopt winner identity: %+v", actor)
	}
}

func TestResolveSequenceCollisionWithOtherFingerprintRetries(t *testing.T) {
	svc, anonRepo := newTestService()

	// 并发首见不同指纹分到同一序号：创建撞的是序号唯一索引，
	// 库中没有本指纹的记录，重读查不到，必须换序号重建而非向调用方报错
	anonRepo.seqCollisions = 1

	actor, err := svc.Resolve("", "my-own-fingerprint", "1.2.3.4")
	if err != nil {
		t.Fatal(err)
	}
	if actor.AnonymousUuid == "" || actor.DisplayName != "匿名#9527" {
		t.Fatalf("retry did not create identity: %+v", actor)
	}
	if _, ok := anonRepo.byFingerprint["my-own-fingerprint"]; !ok {
		t.Fatal("identity not persisted after retry")
	}
}

func TestResolveSequenceCollisionRetryExhausted(t *testing.T) {
	svc, anonRepo := newTestService()
	anonRepo.seqCollisions = 100

	_, err := svc.Resolve("", "my-own-fingerprint", "1.2.3.4")
	if err == nil {
		t.Fatal("exhausted retries should fail")
	}
	// 内部冲突不得以"不存在"的口径泄露给调用方
	if errorx.IsNotFound(err) {
		t.Fatalf("retry exhaustion surfaced as not-found: %v", err)
	}
}

func TestResolveUnknownDBErrorPropagates(t *testing.T) {
	svc, anonRepo := newTestService()
	dbErr := errors.New("connection lost")
	anonRepo.failNextWith = dbErr

	_, err := svc.Resolve("", "abcdefghij", "1.2.3.4")
	if !errors.Is(err, dbErr) {
		t.Fatalf("err = %v, want wrapped %v", err, dbErr)
	}
}

func TestClientIPFromHeaders(t *testing.T) {
	cases := []struct {
		forwardedFor string
		realIP       string
		want         string
	}{
		{"1.2.3.4, 10.0.0.1, 10.0.0.2", "9.9.9.9", "1.2.3.4"},
		{"  1.2.3.4  ", "", "1.2.3.4"},
		{"", "9.9.9.9", "9.9.9.9"},
		{", 10.0.0.1", "9.9.9.9", "9.9.9.9"},
		{"", "", "unknown"},
	}
	for _, c := range cases {
		if got := ClientIPFromHeaders(c.forwardedFor, c.realIP); got != c.want {
			t.Fatalf("ClientIPFromHeaders(%q, %q) = %q, want %q", c.forwardedFor, c.realIP, got, c.want)
		}
	}
}

func TestHashIPStableAndOpaque(t *testing.T) {
	h1 := HashIP("1.2.3.4")
	h2 := HashIP("1.2.3.4")
	if h1 != h2 {
		t.Fatal("hash not stable for same input")
	}
	if h1 == "1.2.3.4" {
		t.Fatal("hash must not expose raw ip")
	}
	if len(h1) != 8 {
		t.Fatalf("hash length = %d, want 8 hex chars", len(h1))
	}
	if HashIP("5.6.7.8") == h1 {
		t.Fatal("different ips should hash differently")
	}
}
