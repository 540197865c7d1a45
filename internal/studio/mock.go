package studio

import (
	"strconv"
	"strings"

	"detailgen/internal/domain"
	"detailgen/internal/imageutil"
	"detailgen/internal/providers/genai"
)

type mockLocale struct {
	categories     []string
	suggestions    []string
	descriptions   []string
	specifications []string
	styleNames     map[domain.Style]string
	platformNames  map[domain.Platform]string
	styleSuffix    string
	platformSuffix string
}

var mockLocales = map[domain.Language]mockLocale{
	domain.LanguageTraditionalChinese: {
		categories: []string{"電子產品", "服裝", "家居用品", "美妝", "食品"},
		suggestions: []string{
			"建議突出產品的主要功能特點",
			"使用高品質的產品圖片",
			"添加詳細的產品規格說明",
			"包含用戶評價和使用場景",
		},
		descriptions: []string{
			"這是一款高品質的產品，採用先進技術製造，具有出色的性能和耐用性。",
			"精心設計的產品，注重細節和用戶體驗，適合日常使用。",
			"專業級產品，滿足高標準要求，是您理想的選擇。",
		},
		specifications: []string{"材質：優質材料", "尺寸：標準規格", "重量：輕便設計", "顏色：多種可選", "包裝：精美包裝"},
		styleNames: map[domain.Style]string{
			domain.StyleMinimal: "極簡", domain.StyleCyber: "賽博", domain.StyleChinese: "國潮", domain.StyleJapanese: "日系清新",
			domain.StyleLuxury: "輕奢高端", domain.StyleNatural: "自然有機", domain.StyleCute: "可愛萌系", domain.StyleApple: "Apple 科技風",
		},
		platformNames: map[domain.Platform]string{
			domain.PlatformAmazon: "Amazon", domain.PlatformTaobao: "淘寶", domain.PlatformJD: "京東", domain.PlatformShopee: "蝦皮",
		},
		styleSuffix:    "風格",
		platformSuffix: "專供",
	},
	domain.LanguageSimplifiedChinese: {
		categories: []string{"电子产品", "服装", "家居用品", "美妆", "食品"},
		suggestions: []string{
			"建议突出产品的主要功能特点",
			"使用高质量的产品图片",
			"添加详细的产品规格说明",
			"包含用户评价和使用场景",
		},
		descriptions: []string{
			"这是一款高品质的产品，采用先进技术制造，具有出色的性能和耐用性。",
			"精心设计的产品，注重细节和用户体验，适合日常使用。",
			"专业级产品，满足高标准要求，是您理想的选择。",
		},
		specifications: []string{"材质：优质材料", "尺寸：标准规格", "重量：轻便设计", "颜色：多种可选", "包装：精美包装"},
		styleNames: map[domain.Style]string{
			domain.StyleMinimal: "极简", domain.StyleCyber: "赛博", domain.StyleChinese: "国潮", domain.StyleJapanese: "日系清新",
			domain.StyleLuxury: "轻奢高端", domain.StyleNatural: "自然有机", domain.StyleCute: "可爱萌系", domain.StyleApple: "Apple 科技风",
		},
		platformNames: map[domain.Platform]string{
			domain.PlatformAmazon: "Amazon", domain.PlatformTaobao: "淘宝", domain.PlatformJD: "京东", domain.PlatformShopee: "虾皮",
		},
		styleSuffix:    "风格",
		platformSuffix: "专供",
	},
	domain.LanguageEnglish: {
		categories: []string{"Electronics", "Clothing", "Home Goods", "Beauty", "Food"},
		suggestions: []string{
			"Highlight the main features of the product",
			"Use high-quality product images",
			"Add detailed product specifications",
			"Include user reviews and usage scenarios",
		},
		descriptions: []string{
			"This is a high-quality product manufactured with advanced technology, featuring excellent performance and durability.",
			"A carefully designed product with attention to detail and user experience, suitable for daily use.",
			"Professional-grade product that meets high standards, an ideal choice for you.",
		},
		specifications: []string{
			"Material: Premium quality",
			"Size: Standard dimensions",
			"Weight: Lightweight design",
			"Color: Multiple options",
			"Packaging: Premium packaging",
		},
		styleNames: map[domain.Style]string{
			domain.StyleMinimal: "Minimal", domain.StyleCyber: "Cyber", domain.StyleChinese: "Chinese Traditional", domain.StyleJapanese: "Japanese Fresh",
			domain.StyleLuxury: "Luxury Premium", domain.StyleNatural: "Natural Organic", domain.StyleCute: "Cute & Adorable", domain.StyleApple: "Apple Tech Style",
		},
		platformNames: map[domain.Platform]string{
			domain.PlatformAmazon: "Amazon", domain.PlatformTaobao: "Taobao", domain.PlatformJD: "JD", domain.PlatformShopee: "Shopee",
		},
		styleSuffix:    " Style",
		platformSuffix: " Exclusive",
	},
}

func localeFor(lang domain.Language) mockLocale {
	if loc, ok := mockLocales[lang]; ok {
		return loc
	}
	return mockLocales[domain.LanguageSimplifiedChinese]
}

// pick maps a hex seed onto [0, n).
func pick(seed string, n int) int {
	if n <= 0 {
		return 0
	}
	if len(seed) > 8 {
		seed = seed[:8]
	}
	v, err := strconv.ParseUint(seed, 16, 64)
	if err != nil {
		return 0
	}
	return int(v % uint64(n))
}

// MockAnalysis returns a deterministic analysis for the image in lang.
func MockAnalysis(imageBase64 string, lang domain.Language) domain.ProductAnalysis {
	loc := localeFor(lang)
	seed := genai.Seed("analysis", lang, imageBase64)
	return domain.ProductAnalysis{
		Category:       loc.categories[pick(seed, len(loc.categories))],
		Description:    loc.descriptions[pick(seed[8:], len(loc.descriptions))],
		Suggestions:    append([]string(nil), loc.suggestions...),
		Specifications: append([]string(nil), loc.specifications...),
	}
}

// MockTexts derives listing copy from the analysis alone.
func MockTexts(req TextRequest) domain.ListingTexts {
	loc := localeFor(req.Language)
	category := req.Product.Analysis.Category
	if category == "" {
		category = req.Product.CategoryOrAnalysis()
	}
	title := category + " - " + loc.styleNames[req.Style] + loc.styleSuffix + " " +
		loc.platformNames[req.Platform] + loc.platformSuffix

	return domain.ListingTexts{
		Title:          title,
		Description:    req.Product.Analysis.Description + "\n\n" + strings.Join(req.Product.Analysis.Suggestions, "\n"),
		Specifications: append([]string{}, req.Product.Analysis.Specifications...),
	}
}

// MockImage renders an offline placeholder sized for the image type.
func MockImage(prompt string, kind domain.ImageType) string {
	w, h := genai.PlaceholderSize(kind.AspectRatio())
	png := genai.RenderPlaceholder(w, h, genai.Seed("image", prompt, kind))
	return imageutil.DataURL("image/png", png)
}

// MockEdit renders an offline placeholder for an edit request.
func MockEdit(imageBase64, prompt string) string {
	w, h := genai.PlaceholderSize("1:1")
	png := genai.RenderPlaceholder(w, h, genai.Seed("edit", prompt, imageBase64))
	return imageutil.DataURL("image/png", png)
}

type detailMockLocale struct {
	titleFormat    func(brand, category, style string) string
	styleNames     map[domain.Style]string
	price          string
	originalPrice  string
	cta            string
	painPoints     []string
	solutions      []string
	visualizations []string
	reviews        []domain.Review
	salesData      string
	certifications []string
	shipping       string
	returnPolicy   string
	faq            []domain.FAQ
	recommended    []string
}

func brandPrefix(brand string) string {
	if brand = strings.TrimSpace(brand); brand != "" {
		return brand + " "
	}
	return ""
}

var detailMocks = map[domain.Language]detailMockLocale{
	domain.LanguageTraditionalChinese: {
		titleFormat: func(brand, category, style string) string {
			return brandPrefix(brand) + category + " - 高品質" + style + "風格"
		},
		styleNames: map[domain.Style]string{
			domain.StyleMinimal: "極簡", domain.StyleCyber: "賽博", domain.StyleChinese: "國潮", domain.StyleJapanese: "日系清新",
			domain.StyleLuxury: "輕奢高端", domain.StyleNatural: "自然有機", domain.StyleCute: "可愛萌系", domain.StyleApple: "Apple 科技風",
		},
		price:          "¥299",
		originalPrice:  "¥399",
		cta:            "立即購買",
		painPoints:     []string{"痛點1", "痛點2", "痛點3"},
		solutions:      []string{"解決方案1", "解決方案2", "解決方案3"},
		visualizations: []string{"視覺化1", "視覺化2", "視覺化3"},
		reviews:        []domain.Review{{Text: "很好用！", Rating: 5}, {Text: "品質不錯", Rating: 4}, {Text: "值得推薦", Rating: 5}},
		salesData:      "月銷1000+",
		certifications: []string{"品質認證", "專利證書"},
		shipping:       "全台免運，3-5天送達",
		returnPolicy:   "7天無理由退換貨",
		faq: []domain.FAQ{
			{Question: "如何清洗？", Answer: "可用清水清洗"},
			{Question: "是否免運？", Answer: "是的，全台免運"},
			{Question: "保固多久？", Answer: "1年保固"},
		},
		recommended: []string{"推薦商品1", "推薦商品2", "推薦商品3"},
	},
	domain.LanguageSimplifiedChinese: {
		titleFormat: func(brand, category, style string) string {
			return brandPrefix(brand) + category + " - 高品质" + style + "风格"
		},
		styleNames: map[domain.Style]string{
			domain.StyleMinimal: "极简", domain.StyleCyber: "赛博", domain.StyleChinese: "国潮", domain.StyleJapanese: "日系清新",
			domain.StyleLuxury: "轻奢高端", domain.StyleNatural: "自然有机", domain.StyleCute: "可爱萌系", domain.StyleApple: "Apple 科技风",
		},
		price:          "¥299",
		originalPrice:  "¥399",
		cta:            "立即购买",
		painPoints:     []string{"痛点1", "痛点2", "痛点3"},
		solutions:      []string{"解决方案1", "解决方案2", "解决方案3"},
		visualizations: []string{"可视化1", "可视化2", "可视化3"},
		reviews:        []domain.Review{{Text: "很好用！", Rating: 5}, {Text: "质量不错", Rating: 4}, {Text: "值得推荐", Rating: 5}},
		salesData:      "月销1000+",
		certifications: []string{"质检认证", "专利证书"},
		shipping:       "全国包邮，3-5天送达",
		returnPolicy:   "7天无理由退换货",
		faq: []domain.FAQ{
			{Question: "如何清洗？", Answer: "可用清水清洗"},
			{Question: "是否包邮？", Answer: "是的，全国包邮"},
			{Question: "质保多久？", Answer: "1年质保"},
		},
		recommended: []string{"推荐商品1", "推荐商品2", "推荐商品3"},
	},
	domain.LanguageEnglish: {
		titleFormat: func(brand, category, style string) string {
			return brandPrefix(brand) + category + " - High Quality " + style + " Style"
		},
		styleNames: map[domain.Style]string{
			domain.StyleMinimal: "Minimal", domain.StyleCyber: "Cyber", domain.StyleChinese: "Chinese Traditional", domain.StyleJapanese: "Japanese Fresh",
			domain.StyleLuxury: "Luxury Premium", domain.StyleNatural: "Natural Organic", domain.StyleCute: "Cute & Adorable", domain.StyleApple: "Apple Tech Style",
		},
		price:          "$29.99",
		originalPrice:  "$39.99",
		cta:            "Buy Now",
		painPoints:     []string{"Pain Point 1", "Pain Point 2", "Pain Point 3"},
		solutions:      []string{"Solution 1", "Solution 2", "Solution 3"},
		visualizations: []string{"Visualization 1", "Visualization 2", "Visualization 3"},
		reviews: []domain.Review{
			{Text: "Great product!", Rating: 5},
			{Text: "Good quality", Rating: 4},
			{Text: "Worth recommending", Rating: 5},
		},
		salesData:      "1000+ sold this month",
		certifications: []string{"Quality Certification", "Patent Certificate"},
		shipping:       "Free shipping, 3-5 days delivery",
		returnPolicy:   "7-day return policy",
		faq: []domain.FAQ{
			{Question: "How to clean?", Answer: "Can be cleaned with water"},
			{Question: "Is shipping free?", Answer: "Yes, free shipping nationwide"},
			{Question: "Warranty period?", Answer: "1 year warranty"},
		},
		recommended: []string{"Recommended Product 1", "Recommended Product 2", "Recommended Product 3"},
	},
}

// MockDetailPage returns the localized placeholder detail page.
func MockDetailPage(product domain.Product, style domain.Style, lang domain.Language, brand string) domain.DetailPageContent {
	loc, ok := detailMocks[lang]
	if !ok {
		loc = detailMocks[domain.LanguageEnglish]
	}
	styleName, ok := loc.styleNames[style]
	if !ok {
		styleName = loc.styleNames[domain.StyleMinimal]
	}
	return domain.DetailPageContent{
		BuyBox: domain.BuyBox{
			Title:         loc.titleFormat(brand, product.CategoryOrAnalysis(), styleName),
			Price:         loc.price,
			OriginalPrice: loc.originalPrice,
			CTA:           loc.cta,
		},
		ValueProposition: domain.ValueProposition{
			PainPoints:     append([]string(nil), loc.painPoints...),
			Solutions:      append([]string(nil), loc.solutions...),
			Visualizations: append([]string(nil), loc.visualizations...),
		},
		SocialProof: domain.SocialProof{
			Reviews:        append([]domain.Review(nil), loc.reviews...),
			SalesData:      loc.salesData,
			Certifications: append([]string(nil), loc.certifications...),
		},
		ServiceGuarantee: domain.ServiceGuarantee{
			Shipping:     loc.shipping,
			ReturnPolicy: loc.returnPolicy,
			FAQ:          append([]domain.FAQ(nil), loc.faq...),
		},
		CrossSell: domain.CrossSell{
			Recommendations: append([]string(nil), loc.recommended...),
		},
	}
}
