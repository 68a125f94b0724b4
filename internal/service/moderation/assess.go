// Package moderation 内容评估与举报聚合服务
// 本文件实现内容评估器：纯函数、无 I/O、确定性，
// 用于决定新建内容的初始状态（pending 或 published）
package moderation

import (
	"strings"
)

// 评估结论的 reason 取值
const (
	ReasonSensitiveWord = "sensitive_word" // 命中敏感词
	ReasonRepetitive    = "repetitive"     // 长文本中单字符连续重复（灌水特征）
)

// sensitiveWords 固定敏感词表，大小写不敏感的子串匹配
var sensitiveWords = []string{
	"垃圾", "傻逼", "操你", "妈的", "他妈", "草泥", "尼玛",
	"fuck", "shit", "damn", "asshole",
}

// repeatThreshold 单字符连续重复次数阈值（达到该次数即标记）
const repeatThreshold = 11

// repeatMinContentLen 重复检测只对超过该字符数的内容生效
const repeatMinContentLen = 200

// Assessment 内容评估结论
type Assessment struct {
	Flagged bool   // true 表示进入待审核队列（初始状态 pending）
	Reason  string // 标记原因，未标记时为空
}

// Assess 对提交文本做廉价启发式扫描，首个命中的规则生效：
// 1. 大小写不敏感的敏感词子串匹配
// 2. 超过 200 字符的内容中出现单个字符连续重复 11 次及以上
func Assess(content string) Assessment {
	lower := strings.ToLower(content)
	for _, word := range sensitiveWords {
		if strings.Contains(lower, strings.ToLower(word)) {
			return Assessment{Flagged: true, Reason: ReasonSensitiveWord}
		}
	}

	runes := []rune(content)
	if len(runes) > repeatMinContentLen && hasLongRun(runes) {
		return Assessment{Flagged: true, Reason: ReasonRepetitive}
	}

	return Assessment{}
}

// hasLongRun 判断是否存在长度达到 repeatThreshold 的同字符连续段
func hasLongRun(runes []rune) bool {
	run := 1
	for i := 1; i < len(runes); i++ {
		if runes[i] == runes[i-1] {
			run++
			if run >= repeatThreshold {
				return true
			}
		} else {
			run = 1
		}
	}
	return false
}
