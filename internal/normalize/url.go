package normalize

import (
	"net/url"
	"strings"
)

// IdentityParams 规范化时保留的查询参数，这些参数决定文章身份而不是跟踪来源
var IdentityParams = []string{"id", "postId", "idxno", "no", "articleId", "aid", "oid", "blogId", "logNo", "docId"}

// URL 规范化链接用于去重：去掉 fragment、去掉路径末尾的斜杠、只保留身份参数。
// 大小写保持不变（路径区分大小写）。结果满足 URL(URL(u)) == URL(u)。
func URL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		if i := strings.IndexByte(raw, '#'); i >= 0 {
			raw = raw[:i]
		}
		return raw
	}

	u.Fragment = ""
	u.RawFragment = ""
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = strings.TrimRight(u.RawPath, "/")

	if u.RawQuery != "" {
		q := u.Query()
		kept := url.Values{}
		for _, k := range IdentityParams {
			if vs, ok := q[k]; ok {
				kept[k] = vs
			}
		}
		u.RawQuery = kept.Encode()
	}
	u.ForceQuery = false

	return u.String()
}

// Domain 返回链接的主机名（去掉 www. 前缀），解析失败返回空字符串
func Domain(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
