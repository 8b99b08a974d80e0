package util

import (
	"strconv"
	"time"
)

var kstLocation *time.Location

func init() {
	var err error
	kstLocation, err = time.LoadLocation("Asia/Seoul")
	if err != nil {
		kstLocation = time.FixedZone("KST", 9*60*60)
	}
}

func KST() *time.Location {
	return kstLocation
}

func ToKST(t time.Time) time.Time {
	return t.In(kstLocation)
}

func FormatKST(t time.Time, layout string) string {
	return t.In(kstLocation).Format(layout)
}

func NowKST() time.Time {
	return time.Now().In(kstLocation)
}

// DaysSince returns the number of whole days between then and now.
func DaysSince(then, now time.Time) int {
	if now.Before(then) {
		return 0
	}
	return int(now.Sub(then).Hours() / 24)
}

// FormatDuration renders an uptime style duration such as "3일 4시간 5분".
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return "1분 미만"
	}

	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	out := ""
	if days > 0 {
		out += strconv.Itoa(days) + "일 "
	}
	if days > 0 || hours > 0 {
		out += strconv.Itoa(hours) + "시간 "
	}
	out += strconv.Itoa(minutes) + "분"
	return out
}
