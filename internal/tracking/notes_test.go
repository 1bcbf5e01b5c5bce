package tracking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateNote(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		ok     bool
		reason NoteReason
	}{
		{"empty", "", false, NoteRequired},
		{"whitespace only", "   \t\n ", false, NoteRequired},
		{"single affect word", "ok", false, NoteTooShort},
		{"affect word with punctuation", "good!!", false, NoteTooShort},
		{"four words", "layout feels a bit", false, NoteTooShort},
		{"five varied words", "This is fine I guess", true, NoteOK},
		{"exactly min words varied", "clear labels and readable typography", true, NoteOK},
		{"repeated token", "test test test test test", false, NoteTooRepetitive},
		{"mostly repeated", "good good good good good layout", false, NoteTooRepetitive},
		{"repetition case insensitive", "Nice nice NICE nice layout", false, NoteTooRepetitive},
		{"long meaningful", "the left variant groups related actions together which reduces scanning time", true, NoteOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ValidateNote(tt.text)
			assert.Equal(t, tt.ok, v.OK)
			assert.Equal(t, tt.reason, v.Reason)
		})
	}
}

func TestValidateNoteWordCount(t *testing.T) {
	v := ValidateNote("the spacing is much better")
	assert.True(t, v.OK)
	assert.Equal(t, 5, v.WordCount)
	assert.Equal(t, MinNoteWords, v.MinWords)
}

func TestLowEffortPatterns(t *testing.T) {
	for _, s := range []string{"ok", "OK.", "good!", "bad", "meh", "asdf", "qwerty", "1234", "zzz", "aaaaa", "xxxxxxx", "idk", "whatever", "Yes"} {
		assert.True(t, isLowEffort(s), "expected %q to be low effort", s)
	}
	for _, s := range []string{"okay-ish but cramped", "goodness", "testing", "ab", "aaab"} {
		assert.False(t, isLowEffort(s), "expected %q not to be low effort", s)
	}
}

func TestRepeatedCharDetection(t *testing.T) {
	// 按符文比较，多字节字符同样适用
	for _, s := range []string{"aaaaa", "!!!!!!", "％％％％％", "bbbbbbbbbb"} {
		assert.True(t, isRepeatedChar(s), "expected %q to be a repeated char run", s)
	}
	for _, s := range []string{"", "aaaa", "aaaab", "abcde", "aabaa"} {
		assert.False(t, isRepeatedChar(s), "expected %q not to be a repeated char run", s)
	}
}
