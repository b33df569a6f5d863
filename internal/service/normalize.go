package service

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// Normalize 规范化标签用于大小写/空白不敏感比较
// 转大写并去除全部空白字符（含内部空白，不只是首尾）。
// 仅用于比较，原始标签始终保留用于存储与显示。
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// isElementIDRef 判断值是否为现有文本资源的 id 引用
// uuid 为当前主键形态；纯数字兼容旧系统迁移数据的自增 id。
// id 引用直接透传，不检查存在性（信任调用方）。
func isElementIDRef(s string) bool {
	if s == "" {
		return false
	}
	if _, err := uuid.Parse(s); err == nil {
		return true
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// isBlankOrNA 判断单元格值是否为空白或 NA 占位
func isBlankOrNA(s string) bool {
	t := strings.TrimSpace(s)
	return t == "" || strings.EqualFold(t, "NA") || strings.EqualFold(t, "N/A")
}
