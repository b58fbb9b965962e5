package recognition

import (
	"strings"
	"unicode"
)

// maxKeywords 单条消息最多提取的关键词数量
const maxKeywords = 5

// stopWords 关键词停用词表
var stopWords = map[string]struct{}{
	"this": {}, "that": {}, "with": {}, "have": {}, "will": {},
	"been": {}, "from": {}, "they": {}, "them": {}, "your": {},
	"what": {}, "when": {}, "were": {}, "their": {}, "would": {},
	"there": {}, "about": {}, "which": {}, "really": {}, "very": {},
}

// ExtractKeywords 从消息正文提取关键词
//
// 算法：小写化后按空白切分，保留同时满足以下条件的 token：
//   - 长度大于 3
//   - 仅由字母组成（含标点/数字的 token 整体丢弃，不做剥离）
//   - 不在停用词表中
//
// 按原文出现顺序截取前 5 个，不去重（重复的合格词可能多次出现）。
// 空输入返回空序列。
func ExtractKeywords(message string) []string {
	keywords := []string{}
	for _, token := range strings.Fields(strings.ToLower(message)) {
		if len([]rune(token)) <= 3 {
			continue
		}
		if !isAlphabetic(token) {
			continue
		}
		if _, stop := stopWords[token]; stop {
			continue
		}
		keywords = append(keywords, token)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}

func isAlphabetic(token string) bool {
	for _, r := range token {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
