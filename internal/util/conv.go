package util

import "strconv"

// MustParseUint 解析路径参数里的数字 ID，非法输入返回 0。
// 0 不是合法主键，后续查询会以 NotFound 收场，无需在每个 handler 里重复校验。
func MustParseUint(s string) uint {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return uint(n)
}
