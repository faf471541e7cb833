// Package utils 通用小工具，不依赖 internal
package utils

import "time"

// CoalesceString 返回第一个非空字符串
func CoalesceString(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}

// Duration 解析配置里的时长字符串。空串、解析失败或非正值都返回 def，
// 让调用方的默认值兜底而不是带着 0 超时跑。
func Duration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
