// internal/auth/auth_test.go
package auth

import (
	"strings"
	"testing"
	"time"
)

func TestSignAndVerify(t *testing.T) {
	signer, err := NewSessionSigner("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("创建签名器失败: %v", err)
	}

	token, err := signer.Sign("session-1")
	if err != nil {
		t.Fatalf("签名失败: %v", err)
	}

	decoded, err := signer.Verify(token)
	if err != nil {
		t.Fatalf("验证失败: %v", err)
	}
	if decoded.SessionID != "session-1" {
		t.Errorf("会话ID不匹配: %s", decoded.SessionID)
	}
	if decoded.ExpiresAt-decoded.IssuedAt != int64(time.Hour.Seconds()) {
		t.Errorf("过期时间不正确: %+v", decoded)
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	signer, _ := NewSessionSigner("test-secret", time.Hour)
	other, _ := NewSessionSigner("other-secret", time.Hour)

	token, _ := signer.Sign("session-1")

	if _, err := other.Verify(token); err == nil {
		t.Error("不同密钥签发的令牌应验证失败")
	}

	parts := strings.Split(token, ".")
	forged := parts[0] + "x." + parts[1]
	if _, err := signer.Verify(forged); err == nil {
		t.Error("篡改后的令牌应验证失败")
	}

	if _, err := signer.Verify("not-a-token"); err == nil {
		t.Error("格式错误的令牌应验证失败")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	signer, _ := NewSessionSigner("test-secret", time.Minute)
	base := time.Now()
	signer.now = func() time.Time { return base }

	token, _ := signer.Sign("session-1")

	signer.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, err := signer.Verify(token); err == nil {
		t.Fatal("过期令牌应验证失败")
	}
}

func TestSignRejectsInvalidID(t *testing.T) {
	signer, _ := NewSessionSigner("", time.Hour)
	if _, err := signer.Sign(""); err == nil {
		t.Error("空会话ID应签名失败")
	}
	if _, err := signer.Sign("a|b"); err == nil {
		t.Error("包含分隔符的会话ID应签名失败")
	}
}

func TestNeedsRefresh(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	signer, err := NewSessionSignerWithClock("test-secret", 2*time.Hour, func() time.Time { return now })
	if err != nil {
		t.Fatalf("创建签名器失败: %v", err)
	}

	raw, _ := signer.Sign("session-1")
	token, err := signer.Verify(raw)
	if err != nil {
		t.Fatalf("验证失败: %v", err)
	}
	if signer.NeedsRefresh(token) {
		t.Fatal("刚签发的令牌不需要刷新")
	}

	now = now.Add(59 * time.Minute)
	if signer.NeedsRefresh(token) {
		t.Fatal("剩余超过一半时不需要刷新")
	}

	now = now.Add(2 * time.Minute)
	if !signer.NeedsRefresh(token) {
		t.Fatal("剩余不足一半时应刷新")
	}

	// 刷新后的令牌在原过期时间之后仍然有效
	raw, _ = signer.Sign("session-1")
	now = now.Add(90 * time.Minute)
	if _, err := signer.Verify(raw); err != nil {
		t.Fatalf("刷新后的令牌应仍有效: %v", err)
	}

	if !signer.NeedsRefresh(nil) {
		t.Fatal("没有令牌时应签发")
	}
}
