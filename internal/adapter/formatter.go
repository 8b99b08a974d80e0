package adapter

import (
	"fmt"
	"strings"
	"time"

	"github.com/kapu/destiny-clan-bot-go/internal/domain"
	"github.com/kapu/destiny-clan-bot-go/internal/util"
)

// ResponseFormatter renders reports and notifications as KakaoTalk text.
type ResponseFormatter struct {
	prefix      string
	botName     string
	offlineDays int
}

func NewResponseFormatter(prefix, botName string, offlineDays int) *ResponseFormatter {
	if strings.TrimSpace(prefix) == "" {
		prefix = "$"
	}
	if strings.TrimSpace(botName) == "" {
		botName = "클랜 봇"
	}
	return &ResponseFormatter{prefix: prefix, botName: botName, offlineDays: offlineDays}
}

// FormatReport renders a query result. An empty view still shows its title.
func (f *ResponseFormatter) FormatReport(view *domain.ReportView) string {
	if view == nil {
		return f.FormatError("표시할 내용이 없습니다.")
	}
	out, err := executeFormatterTemplate("report", view)
	if err != nil {
		return f.fallbackReport(view)
	}
	return out
}

func (f *ResponseFormatter) fallbackReport(view *domain.ReportView) string {
	var sb strings.Builder
	sb.WriteString("📋 " + view.Title)
	for _, line := range view.Lines {
		sb.WriteString("\n" + line)
	}
	return sb.String()
}

// FormatNotification renders one roster notification for delivery.
func (f *ResponseFormatter) FormatNotification(n domain.Notification) string {
	out, err := executeFormatterTemplate("notification", n)
	if err != nil {
		var sb strings.Builder
		sb.WriteString("📢 " + n.Title)
		for _, field := range n.Fields {
			sb.WriteString("\n[" + field.Name + "]\n" + field.Value)
		}
		return sb.String()
	}
	return out
}

func (f *ResponseFormatter) FormatHelp() string {
	out, err := executeFormatterTemplate("help", map[string]any{
		"Name":        f.botName,
		"Prefix":      f.prefix,
		"OfflineDays": f.offlineDays,
	})
	if err != nil {
		return fmt.Sprintf("%s 도움말을 불러오지 못했습니다. %s도움말 을 다시 입력해주세요.", f.botName, f.prefix)
	}
	return out
}

func (f *ResponseFormatter) FormatError(message string) string {
	return fmt.Sprintf("❌ %s", message)
}

func (f *ResponseFormatter) FormatUptime(startedAt, now time.Time) string {
	return fmt.Sprintf("⏱️ %s 실행 시간: %s\n시작: %s",
		f.botName,
		util.FormatDuration(now.Sub(startedAt)),
		util.FormatKST(startedAt, "2006-01-02 15:04"),
	)
}

func (f *ResponseFormatter) FormatRestAdded(rec domain.RestRecord) string {
	return fmt.Sprintf("🏖️ %s (%s) 휴가 등록: %s까지", rec.DisplayName, rec.BungieName, rec.EndDate)
}

func (f *ResponseFormatter) FormatRestRemoved(rec domain.RestRecord) string {
	name := rec.BungieName
	if name == "" {
		name = rec.MembershipID
	}
	return fmt.Sprintf("✅ %s 휴가 해제", name)
}

func (f *ResponseFormatter) FormatBlockAdded(rec domain.BlockRecord) string {
	return fmt.Sprintf("🚫 %s (%s) 차단 등록", rec.BungieName, rec.MembershipID)
}

func (f *ResponseFormatter) FormatBlockRemoved(rec domain.BlockRecord) string {
	return fmt.Sprintf("✅ %s (%s) 차단 해제", rec.BungieName, rec.MembershipID)
}

func (f *ResponseFormatter) FormatAlertToggled(enabled bool) string {
	if enabled {
		return "🔔 이 방에서 클랜원 변동 알림을 받습니다."
	}
	return "🔕 이 방의 클랜원 변동 알림을 껐습니다."
}

// FormatCheckResult summarises a manual reconciliation cycle.
func (f *ResponseFormatter) FormatCheckResult(coldStart bool, memberCount, joined, left, failedTargets int) string {
	if coldStart {
		return fmt.Sprintf("✅ 점검 완료: 클랜원 %d명 기록 (첫 점검)", memberCount)
	}
	if joined == 0 && left == 0 {
		return fmt.Sprintf("✅ 점검 완료: 변동 없음 (클랜원 %d명)", memberCount)
	}
	msg := fmt.Sprintf("✅ 점검 완료: 가입 %d명, 탈퇴 %d명 (클랜원 %d명)", joined, left, memberCount)
	if failedTargets > 0 {
		msg += fmt.Sprintf("\n⚠️ 알림 전송 실패 %d곳", failedTargets)
	}
	return msg
}
