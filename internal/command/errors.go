package command

import (
	stderrors "errors"

	"github.com/kapu/destiny-clan-bot-go/internal/service/reconcile"
	"github.com/kapu/destiny-clan-bot-go/internal/service/registry"
	"github.com/kapu/destiny-clan-bot-go/internal/service/report"
	"github.com/kapu/destiny-clan-bot-go/pkg/errors"
)

// describeError maps a service error to chat text. expected is false for
// failures worth an error log.
func describeError(err error, notFound string) (msg string, expected bool) {
	var validation *errors.ValidationError

	switch {
	case stderrors.As(err, &validation):
		return validation.Message, true
	case stderrors.Is(err, report.ErrNotClanMember):
		return "클랜원이 아닙니다.", true
	case stderrors.Is(err, registry.ErrInvalidLookupKey):
		return "이름#코드 또는 숫자 ID를 입력해주세요.", true
	case stderrors.Is(err, reconcile.ErrCycleInFlight):
		return "이미 점검이 진행 중입니다. 잠시 후 다시 시도해주세요.", true
	case errors.IsNotFound(err):
		if notFound == "" {
			notFound = "플레이어를 찾을 수 없습니다."
		}
		return notFound, true
	case errors.IsRateLimited(err):
		return "Bungie API 요청 한도를 초과했습니다. 잠시 후 다시 시도해주세요.", true
	case errors.IsAuth(err):
		return "Bungie API 인증에 실패했습니다. 관리자에게 문의해주세요.", false
	case errors.IsTransient(err):
		return "Bungie API가 응답하지 않습니다. 잠시 후 다시 시도해주세요.", true
	default:
		return "요청을 처리하지 못했습니다.", false
	}
}
