package respond

// ReportRespond 举报单响应
type ReportRespond struct {
	Id         string `json:"id"`
	TargetType string `json:"target_type"`
	TargetId   string `json:"target_id"`
	Reason     string `json:"reason"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
}

// ReportListRespond 举报单列表响应
type ReportListRespond struct {
	Reports []ReportRespond `json:"reports"`
	Total   int64           `json:"total"`
}
