package respond

// TargetRespond 点评目标详情响应
type TargetRespond struct {
	Id          string   `json:"id"`
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Type        string   `json:"type"`
	LogoUrl     string   `json:"logo_url"`
	Description string   `json:"description"`
	WebsiteUrl  string   `json:"website_url"`
	Developer   string   `json:"developer"`
	Features    []string `json:"features"`
	// ReviewCount / AvgRating 为已发布点评口径的聚合
	ReviewCount int64   `json:"review_count"`
	AvgRating   float64 `json:"avg_rating"`
}

// TargetListRespond 目标列表响应
type TargetListRespond struct {
	Targets []TargetRespond `json:"targets"`
}
