package book

import (
	"regexp"
	"strings"
)

var nonDigit = regexp.MustCompile(`[^0-9X]`)

// NormalizeISBN 去除分隔符并校验位数
// 支持ISBN-10(末位可为X)与ISBN-13,只检查位数,不校验校验位
func NormalizeISBN(isbn string) (string, error) {
	clean := nonDigit.ReplaceAllString(strings.ToUpper(isbn), "")

	switch len(clean) {
	case 10:
		if strings.ContainsRune(clean[:9], 'X') {
			return "", ErrInvalidISBN
		}
	case 13:
		if strings.ContainsRune(clean, 'X') {
			return "", ErrInvalidISBN
		}
	default:
		return "", ErrInvalidISBN
	}
	return clean, nil
}
