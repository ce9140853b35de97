package model

// BatchFailure 批量导入中单条记录的失败信息
type BatchFailure struct {
	Index  int    `json:"index"` // 在提交数组中的下标
	Reason string `json:"reason"`
}

// BatchResult 批量导入结果
// 逐条尽力写入，单条失败不影响其余记录
type BatchResult struct {
	Created  int            `json:"created"`
	Failures []BatchFailure `json:"failures,omitempty"`
}
