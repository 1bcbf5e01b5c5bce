package util

import (
	"errors"
	"io"
	"net/http"
	"strings"
)

// sniffLen http.DetectContentType 最多消费的字节数
const sniffLen = 512

// ValidateMimeType 按文件内容而不是扩展名判定 MIME 类型。
// allowed 支持完整类型（"text/csv"）或前缀（"image/"）。
func ValidateMimeType(reader io.Reader, allowed []string) (string, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(reader, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}

	mimeType := http.DetectContentType(head[:n])
	for _, a := range allowed {
		if mimeType == a || strings.HasPrefix(mimeType, a) {
			return mimeType, nil
		}
	}
	return mimeType, errors.New("invalid file type: " + mimeType)
}

func IsImage(mimeType string) bool {
	return strings.HasPrefix(mimeType, MimeImage)
}
