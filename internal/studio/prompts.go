package studio

import (
	"fmt"
	"strings"

	"detailgen/internal/domain"
)

const analysisPromptEN = `Please analyze this product image and provide the following information (in English):
1. Product category (one word or phrase)
2. Product description (2-3 sentences)
3. Listing suggestions (3-4 items, one sentence each)
4. Product specifications (5 items, format: attribute: value)

Please return in JSON format as follows:
{
  "category": "Product Category",
  "description": "Product Description",
  "suggestions": ["Suggestion 1", "Suggestion 2", "Suggestion 3"],
  "specifications": ["Spec 1", "Spec 2", "Spec 3", "Spec 4", "Spec 5"]
}`

const analysisPromptTW = `請分析這張產品圖片，提供以下資訊（用繁體中文回答）：
1. 產品類別（一個詞或短語）
2. 產品描述（2-3句話）
3. 上架建議（3-4條，每條一句話）
4. 產品規格（5條，格式：屬性名：屬性值）

請以JSON格式返回，格式如下：
{
  "category": "產品類別",
  "description": "產品描述",
  "suggestions": ["建議1", "建議2", "建議3"],
  "specifications": ["規格1", "規格2", "規格3", "規格4", "規格5"]
}`

const analysisPromptCN = `请分析这张产品图片，提供以下信息（用简体中文回答）：
1. 产品类别（一个词或短语）
2. 产品描述（2-3句话）
3. 上架建议（3-4条，每条一句话）
4. 产品规格（5条，格式：属性名：属性值）

请以JSON格式返回，格式如下：
{
  "category": "产品类别",
  "description": "产品描述",
  "suggestions": ["建议1", "建议2", "建议3"],
  "specifications": ["规格1", "规格2", "规格3", "规格4", "规格5"]
}`

// AnalysisPrompt returns the vision prompt for the platform's audience.
func AnalysisPrompt(platform domain.Platform) string {
	switch platform.AnalysisLanguage() {
	case domain.LanguageEnglish:
		return analysisPromptEN
	case domain.LanguageTraditionalChinese:
		return analysisPromptTW
	default:
		return analysisPromptCN
	}
}

var copyPlatformNames = map[domain.Platform]string{
	domain.PlatformAmazon: "Amazon",
	domain.PlatformTaobao: "淘宝",
	domain.PlatformJD:     "京东",
	domain.PlatformShopee: "蝦皮購物",
}

var copyStyleNames = map[domain.Style]string{
	domain.StyleMinimal:  "极简",
	domain.StyleCyber:    "赛博",
	domain.StyleChinese:  "国潮",
	domain.StyleJapanese: "日系清新",
	domain.StyleLuxury:   "轻奢高端",
	domain.StyleNatural:  "自然有机",
	domain.StyleCute:     "可爱萌系",
	domain.StyleApple:    "Apple 科技风",
}

// TextPrompt builds the listing copy prompt. Chinese languages get the
// Chinese template; brand and extra-info lines appear only when set.
func TextPrompt(req TextRequest) string {
	zh := req.Language.IsChinese()
	platform := copyPlatformNames[req.Platform]
	style := copyStyleNames[req.Style]
	analysis := req.Product.Analysis

	var lines strings.Builder
	if brand := strings.TrimSpace(req.BrandName); brand != "" {
		if zh {
			fmt.Fprintf(&lines, "品牌名：%s\n", brand)
		} else {
			fmt.Fprintf(&lines, "Brand Name: %s\n", brand)
		}
	}
	if extra := strings.TrimSpace(req.ExtraInfo); extra != "" {
		if zh {
			fmt.Fprintf(&lines, "补充信息：%s\n", extra)
		} else {
			fmt.Fprintf(&lines, "Additional Info: %s\n", extra)
		}
	}

	if zh {
		return fmt.Sprintf(`基于以下产品信息，生成%s平台的商品文案（%s风格）：

%s产品类别：%s
产品描述：%s
产品规格：%s

请生成：
1. 商品标题（吸引人，包含关键词）
2. 商品描述（详细，突出卖点，适合%s平台）
3. 商品规格列表（5条）

以JSON格式返回：
{
  "title": "商品标题",
  "description": "商品描述",
  "specifications": ["规格1", "规格2", "规格3", "规格4", "规格5"]
}`, platform, style, lines.String(), req.Product.CategoryOrAnalysis(), analysis.Description,
			strings.Join(analysis.Specifications, "、"), platform)
	}
	return fmt.Sprintf(`Generate product copy for %s platform (%s style) based on:

%sCategory: %s
Description: %s
Specifications: %s

Generate:
1. Product title (attractive, includes keywords)
2. Product description (detailed, highlights selling points, suitable for %s)
3. Specification list (5 items)

Return in JSON format:
{
  "title": "Product Title",
  "description": "Product Description",
  "specifications": ["Spec1", "Spec2", "Spec3", "Spec4", "Spec5"]
}`, platform, style, lines.String(), req.Product.CategoryOrAnalysis(), analysis.Description,
		strings.Join(analysis.Specifications, ", "), platform)
}

var imageStylePhrases = map[domain.Style]string{
	domain.StyleMinimal:  "极简风格，简洁现代，突出产品本身，干净背景",
	domain.StyleCyber:    "赛博风格，科技感强，未来感，炫酷",
	domain.StyleChinese:  "国潮风格，传统与现代结合，文化元素",
	domain.StyleJapanese: "日系清新风格，柔和淡雅，文艺气息，清新自然",
	domain.StyleLuxury:   "轻奢高端风格，精致优雅，高级质感，奢华氛围",
	domain.StyleNatural:  "自然有机风格，清新自然，绿色环保，原生态感",
	domain.StyleCute:     "可爱萌系风格，活泼可爱，粉嫩色调，童趣元素",
	domain.StyleApple:    "Apple科技风格，极简纯净，大量留白，高级灰白配色，产品悬浮展示",
}

var imagePlatformPhrases = map[domain.Platform]string{
	domain.PlatformAmazon: "适合Amazon平台，专业产品摄影风格",
	domain.PlatformTaobao: "适合淘宝平台，营销感强，吸引眼球",
	domain.PlatformJD:     "适合京东平台，高端品质展示",
	domain.PlatformShopee: "适合蝦皮平台，乾淨白底，可加小促銷標，行動端優先",
}

// ImagePrompt decorates prompt with the style and platform phrases.
func ImagePrompt(prompt string, style domain.Style, platform domain.Platform) string {
	return fmt.Sprintf("%s，%s，%s，高质量产品图片", prompt, imageStylePhrases[style], imagePlatformPhrases[platform])
}

type detailLocale struct {
	brandLabel string
	extraLabel string
	platforms  map[domain.Platform]string
	closing    map[domain.Platform]string
	styles     map[domain.Style]string
	template   string
}

var detailLocales = map[domain.Language]detailLocale{
	domain.LanguageTraditionalChinese: {
		brandLabel: "品牌名：",
		extraLabel: "補充資訊：",
		platforms: map[domain.Platform]string{
			domain.PlatformAmazon: "Amazon（跨境電商）",
			domain.PlatformTaobao: "淘寶（國內電商）",
			domain.PlatformShopee: "蝦皮購物（台灣及東南亞市場，行動端優先）",
			domain.PlatformJD:     "京東（高端電商）",
		},
		closing: map[domain.Platform]string{
			domain.PlatformAmazon: "Amazon",
			domain.PlatformTaobao: "淘寶",
			domain.PlatformShopee: "蝦皮購物",
			domain.PlatformJD:     "京東",
		},
		styles: map[domain.Style]string{
			domain.StyleMinimal:  "極簡風格",
			domain.StyleCyber:    "賽博風格",
			domain.StyleChinese:  "國潮風格",
			domain.StyleJapanese: "日系清新風格",
			domain.StyleLuxury:   "輕奢高端風格",
			domain.StyleNatural:  "自然有機風格",
			domain.StyleCute:     "可愛萌系風格",
			domain.StyleApple:    "Apple 科技風格",
		},
		template: `請為以下產品生成完整的電商詳情頁內容（5大核心模組），所有文字請使用繁體中文：

{lines}產品類別：{category}
產品描述：{description}
產品規格：{specs}

目標平台：{platform}
風格：{style}

請生成以下5大核心模組的詳細內容，以JSON格式返回，所有文字必須使用繁體中文：

1. 首屏決策區（Buy Box）：
   - title: 商品標題（包含品牌、核心關鍵詞、屬性、場景）
   - price: 當前價格
   - originalPrice: 原價（可選）
   - cta: 行動按鈕文字

2. 賣點展示區（Value Proposition）：
   - painPoints: 用戶痛點陣列（3-5條）
   - solutions: 產品解決方案陣列（3-5條）
   - visualizations: 視覺化展示建議陣列（3條）

3. 信任背書區（Social Proof）：
   - reviews: 用戶評價陣列，每個包含text（評價內容）和rating（評分1-5）
   - salesData: 銷量數據描述
   - certifications: 認證證書陣列

4. 服務保障區（Service & Guarantee）：
   - shipping: 物流政策描述
   - returnPolicy: 退換貨政策描述
   - faq: 常見問題陣列，每個包含question和answer

5. 關聯推薦區（Cross-sell）：
   - recommendations: 推薦商品陣列（3-5條）

請確保內容真實、吸引人，符合{closing}平台的風格特點。返回純JSON格式，不要包含markdown程式碼區塊。所有生成的文字內容必須使用繁體中文。`,
	},
	domain.LanguageSimplifiedChinese: {
		brandLabel: "品牌名：",
		extraLabel: "补充信息：",
		platforms: map[domain.Platform]string{
			domain.PlatformAmazon: "Amazon（跨境电商）",
			domain.PlatformTaobao: "淘宝（国内电商）",
			domain.PlatformShopee: "虾皮购物（台湾及东南亚市场，移动端优先）",
			domain.PlatformJD:     "京东（高端电商）",
		},
		closing: map[domain.Platform]string{
			domain.PlatformAmazon: "Amazon",
			domain.PlatformTaobao: "淘宝",
			domain.PlatformShopee: "虾皮购物",
			domain.PlatformJD:     "京东",
		},
		styles: map[domain.Style]string{
			domain.StyleMinimal:  "极简风格",
			domain.StyleCyber:    "赛博风格",
			domain.StyleChinese:  "国潮风格",
			domain.StyleJapanese: "日系清新风格",
			domain.StyleLuxury:   "轻奢高端风格",
			domain.StyleNatural:  "自然有机风格",
			domain.StyleCute:     "可爱萌系风格",
			domain.StyleApple:    "Apple 科技风格",
		},
		template: `请为以下产品生成完整的电商详情页内容（5大核心模块），所有文字请使用简体中文：

{lines}产品类别：{category}
产品描述：{description}
产品规格：{specs}

目标平台：{platform}
风格：{style}

请生成以下5大核心模块的详细内容，以JSON格式返回，所有文字必须使用简体中文：

1. 首屏决策区（Buy Box）：
   - title: 商品标题（包含品牌、核心关键词、属性、场景）
   - price: 当前价格
   - originalPrice: 原价（可选）
   - cta: 行动按钮文字

2. 卖点展示区（Value Proposition）：
   - painPoints: 用户痛点数组（3-5条）
   - solutions: 产品解决方案数组（3-5条）
   - visualizations: 可视化展示建议数组（3条）

3. 信任背书区（Social Proof）：
   - reviews: 用户评价数组，每个包含text（评价内容）和rating（评分1-5）
   - salesData: 销量数据描述
   - certifications: 认证证书数组

4. 服务保障区（Service & Guarantee）：
   - shipping: 物流政策描述
   - returnPolicy: 退换货政策描述
   - faq: 常见问题数组，每个包含question和answer

5. 关联推荐区（Cross-sell）：
   - recommendations: 推荐商品数组（3-5条）

请确保内容真实、吸引人，符合{closing}平台的风格特点。返回纯JSON格式，不要包含markdown代码块。所有生成的文字内容必须使用简体中文。`,
	},
	domain.LanguageEnglish: {
		brandLabel: "Brand Name: ",
		extraLabel: "Additional Info: ",
		platforms: map[domain.Platform]string{
			domain.PlatformAmazon: "Amazon (Cross-border)",
			domain.PlatformTaobao: "Taobao (Domestic)",
			domain.PlatformShopee: "Shopee (Taiwan & Southeast Asia, Mobile-first)",
			domain.PlatformJD:     "JD (Premium)",
		},
		closing: map[domain.Platform]string{
			domain.PlatformAmazon: "Amazon",
			domain.PlatformTaobao: "Taobao",
			domain.PlatformShopee: "Shopee",
			domain.PlatformJD:     "JD",
		},
		styles: map[domain.Style]string{
			domain.StyleMinimal:  "Minimal",
			domain.StyleCyber:    "Cyber",
			domain.StyleChinese:  "Chinese Traditional",
			domain.StyleJapanese: "Japanese Fresh",
			domain.StyleLuxury:   "Luxury Premium",
			domain.StyleNatural:  "Natural Organic",
			domain.StyleCute:     "Cute & Adorable",
			domain.StyleApple:    "Apple Tech Style",
		},
		template: `Please generate complete e-commerce detail page content (5 core modules) for the following product:

{lines}Product Category: {category}
Product Description: {description}
Product Specifications: {specs}

Target Platform: {platform}
Style: {style}

Please generate detailed content for the following 5 core modules, return in JSON format:

1. Buy Box:
   - title: Product title (include brand, core keywords, attributes, scene)
   - price: Current price
   - originalPrice: Original price (optional)
   - cta: Call-to-action button text

2. Value Proposition:
   - painPoints: Array of user pain points (3-5 items)
   - solutions: Array of product solutions (3-5 items)
   - visualizations: Array of visualization suggestions (3 items)

3. Social Proof:
   - reviews: Array of user reviews, each with text (review content) and rating (1-5)
   - salesData: Sales data description
   - certifications: Array of certifications

4. Service & Guarantee:
   - shipping: Shipping policy description
   - returnPolicy: Return policy description
   - faq: Array of FAQs, each with question and answer

5. Cross-sell:
   - recommendations: Array of recommended products (3-5 items)

Ensure content is authentic, attractive, and matches the style of {closing} platform. Return pure JSON format, do not include markdown code blocks.`,
	},
}

// DetailPagePrompt builds the five-module detail page prompt in the
// requested language.
func DetailPagePrompt(req DetailPageRequest) string {
	loc, ok := detailLocales[req.Language]
	if !ok {
		loc = detailLocales[domain.LanguageEnglish]
	}
	var lines strings.Builder
	if brand := strings.TrimSpace(req.BrandName); brand != "" {
		lines.WriteString(loc.brandLabel + brand + "\n")
	}
	if extra := strings.TrimSpace(req.ExtraInfo); extra != "" {
		lines.WriteString(loc.extraLabel + extra + "\n")
	}
	r := strings.NewReplacer(
		"{lines}", lines.String(),
		"{category}", req.Product.CategoryOrAnalysis(),
		"{description}", req.Product.Analysis.Description,
		"{specs}", strings.Join(req.Product.Analysis.Specifications, ", "),
		"{platform}", loc.platforms[req.Platform],
		"{style}", loc.styles[req.Style],
		"{closing}", loc.closing[req.Platform],
	)
	return r.Replace(loc.template)
}

var mainShots = []string{
	"产品主图，正面完整展示，纯净背景",
	"45度侧面角度，展示产品立体感",
	"细节特写，突出材质与做工",
	"生活场景图，产品在真实使用环境中",
	"多角度组合展示，包含包装与配件",
}

// sceneShot is the index in mainShots rendered as a lifestyle scene.
const sceneShot = 3

// MainImagePrompt returns the prompt and image type of the i-th carousel
// image. Shots repeat with a variant number past the fixed list.
func MainImagePrompt(category string, i int) (string, domain.ImageType) {
	shot := mainShots[i%len(mainShots)]
	if round := i / len(mainShots); round > 0 {
		shot = fmt.Sprintf("%s（变体%d）", shot, round+1)
	}
	kind := domain.ImageTypeMain
	if i%len(mainShots) == sceneShot {
		kind = domain.ImageTypeScene
	}
	return category + "，" + shot, kind
}

// DetailImagePrompt returns the prompt of the i-th portrait detail image,
// cycling through the value-proposition visualizations.
func DetailImagePrompt(category string, visualizations []string, i int) string {
	subject := category
	if len(visualizations) > 0 {
		subject = visualizations[i%len(visualizations)]
	}
	return fmt.Sprintf("%s详情页配图：%s，竖版3:4构图", category, subject)
}
