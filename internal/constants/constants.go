package constants

import "time"

var CacheTTL = struct {
	ActivitySummary time.Duration
	RosterView      time.Duration
}{
	ActivitySummary: 2 * time.Minute,  // 2분 - 접속 중 활동 정보
	RosterView:      60 * time.Second, // 1분 - 조회용 클랜원 목록
}

var WebSocketConfig = struct {
	MaxReconnectAttempts int
	ReconnectDelay       time.Duration
}{
	MaxReconnectAttempts: 5,
	ReconnectDelay:       5 * time.Second,
}

var RedisConfig = struct {
	ReadyTimeout time.Duration
}{
	ReadyTimeout: 5 * time.Second,
}

var RetryConfig = struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Jitter      time.Duration
}{
	MaxAttempts: 3,
	BaseDelay:   500 * time.Millisecond,
	Jitter:      250 * time.Millisecond,
}

var CircuitBreakerConfig = struct {
	FailureThreshold    int
	ResetTimeout        time.Duration
	RateLimitTimeout    time.Duration
	HealthCheckInterval time.Duration
	HealthCheckTimeout  time.Duration
}{
	FailureThreshold:    3,                // 3회 연속 실패 시 Circuit OPEN
	ResetTimeout:        30 * time.Second, // 기본 재시도 대기 시간 (30초)
	RateLimitTimeout:    1 * time.Minute,  // Throttle 응답 시 기본 대기 시간
	HealthCheckInterval: 10 * time.Minute, // Health Check 주기 (10분)
	HealthCheckTimeout:  10 * time.Second, // Health Check 타임아웃 (10초)
}

var PaginationConfig = struct {
	ItemsPerPage             int
	MaxFieldsPerNotification int
}{
	ItemsPerPage:             10, // 페이지당 항목 수
	MaxFieldsPerNotification: 5,  // 알림 1건당 필드 수
}

var APIConfig = struct {
	BungieBaseURL    string
	BungieTimeout    time.Duration
	ActivityTimeout  time.Duration
	MembersPageSize  int
	MaxMemberPages   int
	MaxRetryAttempts int
}{
	BungieBaseURL:    "https://www.bungie.net/Platform",
	BungieTimeout:    15 * time.Second,
	ActivityTimeout:  10 * time.Second,
	MembersPageSize:  100,
	MaxMemberPages:   5,
	MaxRetryAttempts: 3,
}

var ScheduleConfig = struct {
	ReconcileInterval   time.Duration
	ActivityConcurrency int
	DeliveryConcurrency int
	OfflineCutoffDays   int
}{
	ReconcileInterval:   time.Hour,
	ActivityConcurrency: 10,
	DeliveryConcurrency: 4,
	OfflineCutoffDays:   21,
}

var StringLimits = struct {
	NotificationTitle       int
	NotificationDescription int
	FieldName               int
	FieldValue              int
	RestDescription         int
	BlockDescription        int
}{
	NotificationTitle:       256,
	NotificationDescription: 4096,
	FieldName:               256,
	FieldValue:              1024,
	RestDescription:         500,
	BlockDescription:        500,
}
