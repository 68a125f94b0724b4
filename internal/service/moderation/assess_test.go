package moderation

import (
	"strings"
	"testing"
)

func TestAssessCleanContent(t *testing.T) {
	result := Assess("这个工具的代码补全非常好用，重构大文件时也很稳定")
	if result.Flagged {
		t.Fatalf("clean content flagged: %+v", result)
	}
}

func TestAssessSensitiveWord(t *testing.T) {
	result := Assess("这个工具просто垃圾，完全不能用")
	if !result.Flagged {
		t.Fatal("sensitive word not flagged")
	}
	if result.Reason != ReasonSensitiveWord {
		t.Fatalf("reason = %s, want %s", result.Reason, ReasonSensitiveWord)
	}
}

func TestAssessSensitiveWordCaseInsensitive(t *testing.T) {
	result := Assess("what the FUCK is this tool doing")
	if !result.Flagged || result.Reason != ReasonSensitiveWord {
		t.Fatalf("uppercase sensitive word not flagged: %+v", result)
	}
}

func TestAssessRepetitiveLongContent(t *testing.T) {
	// 超过 200 字符且存在 11 次以上的同字符连续段
	content := strings.Repeat("好", 250)
	result := Assess(content)
	if !result.Flagged {
		t.Fatal("repetitive long content not flagged")
	}
	if result.Reason != ReasonRepetitive {
		t.Fatalf("reason = %s, want %s", result.Reason, ReasonRepetitive)
	}
}

func TestAssessRepetitiveShortContentNotFlagged(t *testing.T) {
	// 同字符连续重复但总长不超过 200 字符，不触发重复检测
	result := Assess(strings.Repeat("好", 60))
	if result.Flagged {
		t.Fatalf("short repetitive content flagged: %+v", result)
	}
}

func TestAssessLongContentWithoutRunsNotFlagged(t *testing.T) {
	// 超过 200 字符但没有长连续段
	result := Assess(strings.Repeat("编码", 120))
	if result.Flagged {
		t.Fatalf("long varied content flagged: %+v", result)
	}
}

func TestAssessSensitiveWordWinsOverRepetitive(t *testing.T) {
	content := "垃圾" + strings.Repeat("好", 250)
	result := Assess(content)
	if result.Reason != ReasonSensitiveWord {
		t.Fatalf("reason = %s, want %s", result.Reason, ReasonSensitiveWord)
	}
}
