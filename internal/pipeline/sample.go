package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/LJTian/InterestHub/internal/catalog"
	"github.com/LJTian/InterestHub/internal/collector"
	"github.com/LJTian/InterestHub/internal/processor"
)

// PlaceholderHost 占位条目使用的域名，real 模式的展示层据此过滤
const PlaceholderHost = "example.com"

var sampleTemplates = []string{
	"%s 관련 최신 정보 및 팁",
	"요즘 뜨는 %s 트렌드 한눈에 보기",
	"초보자를 위한 %s 시작 가이드",
	"전문가가 알려주는 %s 핵심 노하우",
	"이번 주 꼭 알아야 할 %s 소식",
	"%s, 실패 없이 시작하는 방법",
	"많은 사람들이 묻는 %s 질문 모음",
	"%s 비용을 아끼는 현실적인 방법",
	"직접 해본 %s 후기와 솔직한 평가",
	"%s 입문자가 자주 하는 실수 다섯 가지",
	"주말에 해보기 좋은 %s 아이디어",
	"데이터로 살펴본 %s 변화",
}

// IsPlaceholder 判断是否为 demo 模式生成的占位条目
func IsPlaceholder(a collector.Article) bool {
	return a.Domain() == PlaceholderHost
}

// padWithSamples 用占位条目补足到 target。占位条目同样经过去重器，保证输出仍满足去重约束；
// 发布时间均匀分布在 [window.Start, now] 内。
func padWithSamples(items []collector.Article, cat catalog.Category, target int, window processor.Window, now time.Time, dedup *processor.Deduplicator) []collector.Article {
	need := target - len(items)
	if need <= 0 {
		return items
	}
	keywords := cat.Keywords
	if len(keywords) == 0 {
		keywords = []string{cat.Name}
	}

	end := now
	if end.After(window.End) {
		end = window.End
	}
	span := end.Sub(window.Start)
	if span < 0 {
		span = 0
	}
	stepDur := span / time.Duration(need+1)

	n := 0
	for ti := 0; ti < len(sampleTemplates) && n < need; ti++ {
		for ki := 0; ki < len(keywords) && n < need; ki++ {
			kw := keywords[(ti+ki)%len(keywords)]
			a := collector.Article{
				Title:       fmt.Sprintf(sampleTemplates[ti], kw),
				URL:         fmt.Sprintf("https://%s/%s/%d", PlaceholderHost, cat.Key, len(items)+1),
				Source:      cat.Name,
				PublishedAt: end.Add(-stepDur * time.Duration(n+1)),
				Summary:     fmt.Sprintf("%s에 대한 최신 정보와 유용한 팁을 소개합니다. %s 관련 실생활에 도움이 되는 내용을 확인해보세요.", kw, strings.Join(keywords[:min(2, len(keywords))], "·")),
				Category:    cat.Key,
			}
			if !dedup.Accept(a) {
				continue
			}
			items = append(items, a)
			n++
		}
	}
	return items
}
