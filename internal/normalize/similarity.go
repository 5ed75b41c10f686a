package normalize

import "strings"

// DuplicateThreshold 标题相似度超过该值即视为重复
const DuplicateThreshold = 0.85

// 过长的标题只比较前缀，避免 O(n*m) 在异常输入上放大
const maxCompareRunes = 300

// TitleSimilarity 计算两个标题的相似度（0..1），忽略大小写与多余空白。
// 使用 2*LCS/(len(a)+len(b))，对称；完全相同为 1，完全不同为 0。
func TitleSimilarity(a, b string) float64 {
	ra := []rune(foldTitle(a))
	rb := []rune(foldTitle(b))
	if len(ra) > maxCompareRunes {
		ra = ra[:maxCompareRunes]
	}
	if len(rb) > maxCompareRunes {
		rb = rb[:maxCompareRunes]
	}
	if len(ra) == 0 && len(rb) == 0 {
		return 1
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	return 2 * float64(lcsLen(ra, rb)) / float64(len(ra)+len(rb))
}

// IsDuplicateTitle 判断两个标题是否近似重复
func IsDuplicateTitle(a, b string) bool {
	return TitleSimilarity(a, b) > DuplicateThreshold
}

func foldTitle(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// lcsLen 最长公共子序列长度，两行滚动数组
func lcsLen(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
