package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kapu/destiny-clan-bot-go/internal/domain"
	"github.com/kapu/destiny-clan-bot-go/internal/iris"
)

func parse(text string) *ParsedCommand {
	return NewMessageAdapter("$").ParseMessage(&iris.Message{Msg: text, Room: "r1"})
}

func TestParseSimpleCommands(t *testing.T) {
	cases := map[string]domain.CommandType{
		"$정보":     domain.CommandInfo,
		"$업타임":    domain.CommandUptime,
		"$접속":     domain.CommandOnline,
		"$미접":     domain.CommandOffline,
		"$휴가":     domain.CommandRestList,
		"$휴가 목록":  domain.CommandRestList,
		"$차단":     domain.CommandBlockList,
		"$알림":     domain.CommandAlertToggle,
		"$점검":     domain.CommandCheck,
		"$기록":     domain.CommandHistory,
		"$도움말":    domain.CommandHelp,
		"$HELP":   domain.CommandHelp,
		"$휴가 뭐지":  domain.CommandHelp,
		"$모르는말":   domain.CommandUnknown,
		"정보":      domain.CommandUnknown,
		"$":       domain.CommandUnknown,
		"  $접속  ": domain.CommandOnline,
	}
	for text, want := range cases {
		assert.Equal(t, want, parse(text).Type, text)
	}
}

func TestParseOfflineDays(t *testing.T) {
	assert.Equal(t, 30, parse("$미접 30").Params["days"])
	assert.Equal(t, 14, parse("$미접 14일").Params["days"])
	assert.Equal(t, maxOfflineDays, parse("$미접 9999").Params["days"])
	assert.NotContains(t, parse("$미접 abc").Params, "days")
	assert.NotContains(t, parse("$미접 0").Params, "days")
}

func TestParseRestAdd(t *testing.T) {
	cmd := parse("$휴가 등록 Guardian One#0042 2024-06-01 여름 휴가")

	assert.Equal(t, domain.CommandRestAdd, cmd.Type)
	assert.Equal(t, "Guardian One#0042", cmd.Params["query"])
	assert.Equal(t, domain.Date{Year: 2024, Month: 6, Day: 1}, cmd.Params["end_date"])
	assert.Equal(t, "여름 휴가", cmd.Params["description"])
}

func TestParseRestAddWithoutDate(t *testing.T) {
	cmd := parse("$휴가 등록 Guardian#0042 내일까지")

	assert.Equal(t, domain.CommandRestAdd, cmd.Type)
	assert.Equal(t, "Guardian#0042 내일까지", cmd.Params["query"])
	assert.NotContains(t, cmd.Params, "end_date")
}

func TestParseRestRemove(t *testing.T) {
	cmd := parse("$휴가 해제 Guardian#0042")
	assert.Equal(t, domain.CommandRestRemove, cmd.Type)
	assert.Equal(t, "Guardian#0042", cmd.Params["query"])

	assert.Empty(t, parse("$휴가 해제").Params)
}

func TestParseBlockCommands(t *testing.T) {
	cmd := parse("$차단 등록 Bad Actor#0013 팀킬 반복")
	assert.Equal(t, domain.CommandBlockAdd, cmd.Type)
	assert.Equal(t, "Bad Actor#0013", cmd.Params["key"])
	assert.Equal(t, "팀킬 반복", cmd.Params["description"])

	cmd = parse("$차단 등록 4611686018467000000 부계정")
	assert.Equal(t, "4611686018467000000", cmd.Params["key"])
	assert.Equal(t, "부계정", cmd.Params["description"])

	cmd = parse("$차단 해제 Bad Actor#0013")
	assert.Equal(t, domain.CommandBlockRemove, cmd.Type)
	assert.Equal(t, "Bad Actor#0013", cmd.Params["key"])
}

func TestParseBlockListPage(t *testing.T) {
	assert.Equal(t, 0, parse("$차단 목록").Params["page"])
	assert.Equal(t, 0, parse("$차단 목록 1").Params["page"])
	assert.Equal(t, 2, parse("$차단 목록 3").Params["page"])
	assert.Equal(t, -1, parse("$차단 목록 -1").Params["page"])
	assert.Equal(t, 0, parse("$차단 목록 x").Params["page"])
}

func TestParseHistoryLimit(t *testing.T) {
	assert.Equal(t, 5, parse("$기록 5").Params["limit"])
	assert.Equal(t, 50, parse("$기록 500").Params["limit"])
	assert.Empty(t, parse("$기록").Params)
}

func TestParseNilMessage(t *testing.T) {
	assert.Equal(t, domain.CommandUnknown, NewMessageAdapter("$").ParseMessage(nil).Type)
}
