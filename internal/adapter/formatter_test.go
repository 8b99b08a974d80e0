package adapter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kapu/destiny-clan-bot-go/internal/domain"
)

func TestFormatReport(t *testing.T) {
	f := NewResponseFormatter("$", "Bot", 21)

	out := f.FormatReport(&domain.ReportView{
		Title:       "차단 목록",
		Description: "총 2명",
		Lines:       []string{"a", "b"},
		Footer:      "1 / 1 페이지",
	})
	assert.Equal(t, "📋 차단 목록\n총 2명\n\na\nb\n\n1 / 1 페이지", out)
}

func TestFormatEmptyReport(t *testing.T) {
	f := NewResponseFormatter("$", "Bot", 21)

	out := f.FormatReport(&domain.ReportView{Title: "휴가 목록", Description: "0명 휴가 중"})
	assert.Equal(t, "📋 휴가 목록\n0명 휴가 중\n\n(없음)", out)
}

func TestFormatNotification(t *testing.T) {
	f := NewResponseFormatter("$", "Bot", 21)

	out := f.FormatNotification(domain.Notification{
		Title:       "클랜원 변동 알림",
		Description: "10명 → 11명 (+1)",
		Fields:      []domain.NotificationField{{Name: "가입 (1명)", Value: "🔵 A#0001 (Steam)"}},
		Timestamp:   time.Date(2024, 5, 10, 3, 0, 0, 0, time.UTC),
	})
	assert.Equal(t, "📢 클랜원 변동 알림\n10명 → 11명 (+1)\n\n[가입 (1명)]\n🔵 A#0001 (Steam)\n🕒 2024-05-10 12:00", out)
}

func TestFormatHelpUsesPrefix(t *testing.T) {
	out := NewResponseFormatter("!", "Drifter", 30).FormatHelp()

	assert.Contains(t, out, "Drifter 명령어")
	assert.Contains(t, out, "!휴가 등록")
	assert.Contains(t, out, "기본 30일")
	assert.NotContains(t, out, "$")
}

func TestFormatCheckResult(t *testing.T) {
	f := NewResponseFormatter("$", "Bot", 21)

	assert.Contains(t, f.FormatCheckResult(true, 40, 0, 0, 0), "첫 점검")
	assert.Contains(t, f.FormatCheckResult(false, 40, 0, 0, 0), "변동 없음")
	out := f.FormatCheckResult(false, 41, 2, 1, 1)
	assert.Contains(t, out, "가입 2명, 탈퇴 1명")
	assert.Contains(t, out, "전송 실패 1곳")
}

func TestFormatUptime(t *testing.T) {
	f := NewResponseFormatter("$", "Bot", 21)
	start := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	out := f.FormatUptime(start, start.Add(26*time.Hour+5*time.Minute))
	assert.Contains(t, out, "1일 2시간 5분")
}
