package tracking

import (
	"regexp"
	"strings"
)

// MinNoteWords 理由文本的最小词数
const MinNoteWords = 5

// NoteReason 理由文本被拒绝的原因
type NoteReason string

const (
	NoteOK            NoteReason = ""
	NoteRequired      NoteReason = "required"
	NoteTooShort      NoteReason = "too_short"
	NoteNotMeaningful NoteReason = "not_meaningful"
	NoteTooRepetitive NoteReason = "too_repetitive"
)

// NoteVerdict 理由文本的校验结果
type NoteVerdict struct {
	OK        bool       `json:"ok"`
	Reason    NoteReason `json:"reason,omitempty"`
	WordCount int        `json:"wordCount"`
	MinWords  int        `json:"minWords"`
}

// 低质量文本模式，整串匹配
var (
	affectWordPattern = regexp.MustCompile(`(?i)^(good|bad|ok|okay|fine|nice|great|cool|poor|meh)[[:punct:]]*$`)
	fillerTokens      = map[string]bool{
		"a": true, "b": true, "x": true, "test": true, "asdf": true,
		"qwerty": true, "1234": true, "abc": true, "zzz": true,
	}
	trivialTokens = map[string]bool{
		"no": true, "yes": true, "maybe": true, "idk": true,
		"dunno": true, "whatever": true,
	}
)

// ValidateNote 低质量理由检测，规则按序应用，命中即止。
// 纯函数，不依赖任何状态。
func ValidateNote(text string) NoteVerdict {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return NoteVerdict{Reason: NoteRequired, MinWords: MinNoteWords}
	}

	words := strings.Fields(trimmed)
	verdict := NoteVerdict{WordCount: len(words), MinWords: MinNoteWords}

	if len(words) < MinNoteWords {
		verdict.Reason = NoteTooShort
		return verdict
	}

	if isLowEffort(trimmed) {
		verdict.Reason = NoteNotMeaningful
		return verdict
	}

	if len(words) > 3 {
		unique := make(map[string]bool, len(words))
		for _, w := range words {
			unique[strings.ToLower(w)] = true
		}
		if float64(len(unique))/float64(len(words)) < 0.5 {
			verdict.Reason = NoteTooRepetitive
			return verdict
		}
	}

	verdict.OK = true
	return verdict
}

func isLowEffort(s string) bool {
	lower := strings.ToLower(s)
	if affectWordPattern.MatchString(s) {
		return true
	}
	if fillerTokens[lower] || trivialTokens[lower] {
		return true
	}
	return isRepeatedChar(lower)
}

// isRepeatedChar 整串为同一字符重复 5 次以上（如 "aaaaa"）。
// RE2 不支持反向引用，逐字符比较即可。
func isRepeatedChar(s string) bool {
	runes := []rune(s)
	if len(runes) < 5 {
		return false
	}
	for _, r := range runes[1:] {
		if r != runes[0] {
			return false
		}
	}
	return true
}
