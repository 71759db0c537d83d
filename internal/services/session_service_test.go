package services

import (
	"testing"
	"time"
)

func TestSessionCreateAndGet(t *testing.T) {
	svc := NewSessionService(time.Hour, "My Presentation", nil)

	s := svc.Create()
	if s.ID == "" {
		t.Fatal("会话ID不能为空")
	}
	if s.Registry.Title() != "My Presentation" {
		t.Fatalf("默认标题错误: %q", s.Registry.Title())
	}

	got, ok := svc.Get(s.ID)
	if !ok || got != s {
		t.Fatal("应能取回同一个会话")
	}
	if _, ok := svc.Get("missing"); ok {
		t.Fatal("不存在的会话不应返回")
	}
}

func TestSessionGetOrCreate(t *testing.T) {
	svc := NewSessionService(time.Hour, "T", nil)

	s, created := svc.GetOrCreate("")
	if !created {
		t.Fatal("空ID应创建新会话")
	}
	again, created := svc.GetOrCreate(s.ID)
	if created || again != s {
		t.Fatal("已有会话不应重新创建")
	}
	other, created := svc.GetOrCreate("unknown")
	if !created || other.ID == "unknown" {
		t.Fatal("未知ID应创建新会话并分配新ID")
	}
	if svc.Count() != 2 {
		t.Fatalf("会话数 = %d，期望 2", svc.Count())
	}
}

func TestSessionCleanupExpired(t *testing.T) {
	var expired []string
	svc := NewSessionService(time.Minute, "T", func(id string) {
		expired = append(expired, id)
	})

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	old := svc.Create()
	now = now.Add(45 * time.Second)
	fresh := svc.Create()

	now = now.Add(30 * time.Second)
	if n := svc.CleanupExpired(); n != 1 {
		t.Fatalf("清理数量 = %d，期望 1", n)
	}
	if len(expired) != 1 || expired[0] != old.ID {
		t.Fatalf("回调参数错误: %v", expired)
	}
	if _, ok := svc.Get(old.ID); ok {
		t.Fatal("过期会话应被删除")
	}
	if _, ok := svc.Get(fresh.ID); !ok {
		t.Fatal("未过期会话应保留")
	}
}

func TestSessionGetRefreshesLastUsed(t *testing.T) {
	svc := NewSessionService(time.Minute, "T", nil)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	s := svc.Create()
	now = now.Add(50 * time.Second)
	svc.Get(s.ID)
	now = now.Add(50 * time.Second)

	if n := svc.CleanupExpired(); n != 0 {
		t.Fatal("最近访问过的会话不应过期")
	}
	if !s.LastUsed().Equal(time.Date(2024, 1, 1, 12, 0, 50, 0, time.UTC)) {
		t.Fatalf("LastUsed = %v", s.LastUsed())
	}
}

func TestSessionStopIsIdempotent(t *testing.T) {
	svc := NewSessionService(0, "T", nil)
	svc.StartCleanup(time.Millisecond)
	svc.Stop()
	svc.Stop()
}
