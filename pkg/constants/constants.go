package constants

const (
	EVENT_CHANNEL_SIZE         = 256 // 滥用事件通道大小（channel 模式）
	REDIS_TIMEOUT              = 1   // redis 缓存 TTL (分钟)
	REFRESH_TOKEN_EXPIRY_HOURS = 168 // Refresh Token 有效期（小时），168小时 = 7天

	// ANONYMOUS_SEQUENCE_START 匿名用户序号起始值
	// 展示名为 "匿名#<序号>"，首个匿名用户即 "匿名#9527"
	ANONYMOUS_SEQUENCE_START = 9527

	// AUTO_HIDE_THRESHOLD 举报自动隐藏阈值
	// 同一内容的 open 状态举报达到该数量时自动隐藏
	AUTO_HIDE_THRESHOLD = 5

	// MIN_FINGERPRINT_LENGTH 设备指纹最小长度
	MIN_FINGERPRINT_LENGTH = 10
)
