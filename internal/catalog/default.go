package catalog

var defaultCategories = []Category{
	{Key: "health", Name: "건강·운동", Keywords: []string{"건강", "운동", "다이어트", "헬스", "요가", "필라테스"},
		GoogleQuery: "건강 운동 OR 다이어트 OR 헬스", NaverQuery: "건강 운동"},
	{Key: "food", Name: "맛집·레시피", Keywords: []string{"맛집", "레시피", "요리", "혼밥", "카페"},
		GoogleQuery: "맛집 레시피 OR 요리", NaverQuery: "맛집 레시피"},
	{Key: "finance", Name: "재테크·돈관리", Keywords: []string{"재테크", "투자", "주식", "가계부", "절약"},
		GoogleQuery: "재테크 투자 OR 주식", NaverQuery: "재테크 투자"},
	{Key: "travel", Name: "여행·주말나들이", Keywords: []string{"여행", "주말", "당일치기", "여행지", "명소"},
		GoogleQuery: "여행 주말 OR 당일치기", NaverQuery: "여행 주말"},
	{Key: "relationship", Name: "연애·관계·심리", Keywords: []string{"연애", "심리", "관계", "MBTI", "대화법"},
		GoogleQuery: "연애 심리 OR 관계", NaverQuery: "연애 심리"},
	{Key: "self_improvement", Name: "자기계발·공부법", Keywords: []string{"자기계발", "공부법", "시간관리", "독서"},
		GoogleQuery: "자기계발 공부법 OR 시간관리", NaverQuery: "자기계발 공부법"},
	{Key: "it", Name: "IT·앱·AI 트렌드", Keywords: []string{"IT", "앱", "AI", "기술", "스마트폰"},
		GoogleQuery: "IT AI OR 앱 OR 기술", NaverQuery: "IT AI"},
	{Key: "beauty", Name: "뷰티·패션·그루밍", Keywords: []string{"뷰티", "패션", "스킨케어", "화장품"},
		GoogleQuery: "뷰티 패션 OR 스킨케어", NaverQuery: "뷰티 패션"},
	{Key: "home", Name: "집·인테리어·살림", Keywords: []string{"인테리어", "집꾸미기", "정리정돈", "청소"},
		GoogleQuery: "인테리어 집꾸미기 OR 정리정돈", NaverQuery: "인테리어 집꾸미기"},
	{Key: "hobby", Name: "취미·문화생활", Keywords: []string{"영화", "드라마", "전시", "음악", "취미"},
		GoogleQuery: "영화 드라마 OR 전시 OR 음악", NaverQuery: "영화 드라마"},
	{Key: "family", Name: "육아·가족·반려동물", Keywords: []string{"육아", "아이", "반려동물", "강아지", "고양이"},
		GoogleQuery: "육아 반려동물 OR 강아지", NaverQuery: "육아 반려동물"},
	// 体育新闻更新快，博客源价值不大
	{Key: "sports", Name: "스포츠", Keywords: []string{"스포츠", "축구", "야구", "농구", "배구"},
		GoogleQuery: "스포츠 축구 OR 야구 OR 농구", NaverQuery: "스포츠 축구",
		Sources: []string{SourceGoogleNews, SourceNaverNews, SourceFeedRSS}},
}

// Default 返回内置的 12 个分类
func Default() *Catalog {
	cats := make([]Category, len(defaultCategories))
	copy(cats, defaultCategories)
	return New(cats)
}
