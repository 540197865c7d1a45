package studio

import (
	"strings"
	"testing"

	"detailgen/internal/domain"
)

func TestDetailPagePrompt(t *testing.T) {
	product := domain.Product{
		Category: "desk lamp",
		Analysis: domain.ProductAnalysis{
			Description:    "LED lamp",
			Specifications: []string{"power: 5W", "color: white"},
		},
	}
	tests := []struct {
		name     string
		language domain.Language
		brand    string
		extra    string
		want     []string
		absent   []string
	}{
		{
			name:     "traditional chinese",
			language: domain.LanguageTraditionalChinese,
			brand:    "Lumi",
			extra:    "USB-C",
			want: []string{
				"所有文字請使用繁體中文",
				"品牌名：Lumi\n",
				"補充資訊：USB-C\n",
				"產品類別：desk lamp",
				"產品規格：power: 5W, color: white",
				"目標平台：蝦皮購物（台灣及東南亞市場，行動端優先）",
				"風格：極簡風格",
				"符合蝦皮購物平台",
			},
		},
		{
			name:     "simplified chinese",
			language: domain.LanguageSimplifiedChinese,
			brand:    "Lumi",
			want: []string{
				"所有文字请使用简体中文",
				"品牌名：Lumi\n产品类别：desk lamp",
				"目标平台：虾皮购物（台湾及东南亚市场，移动端优先）",
				"风格：极简风格",
			},
			absent: []string{"补充信息："},
		},
		{
			name:     "english",
			language: domain.LanguageEnglish,
			extra:    "ships in 24h",
			want: []string{
				"Please generate complete e-commerce detail page content",
				"Additional Info: ships in 24h\nProduct Category: desk lamp",
				"Target Platform: Shopee (Taiwan & Southeast Asia, Mobile-first)",
				"Style: Minimal",
				"matches the style of Shopee platform",
			},
			absent: []string{"Brand Name:"},
		},
		{
			name:     "unknown language falls back to english",
			language: domain.Language("fr"),
			brand:    "   ",
			want:     []string{"Product Description: LED lamp"},
			absent:   []string{"Brand Name:", "Additional Info:", "{lines}"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := DetailPagePrompt(DetailPageRequest{
				Product:   product,
				Platform:  domain.PlatformShopee,
				Style:     domain.StyleMinimal,
				Language:  tc.language,
				BrandName: tc.brand,
				ExtraInfo: tc.extra,
			})
			for _, want := range tc.want {
				if !strings.Contains(got, want) {
					t.Fatalf("prompt missing %q:\n%s", want, got)
				}
			}
			for _, absent := range tc.absent {
				if strings.Contains(got, absent) {
					t.Fatalf("prompt should not contain %q:\n%s", absent, got)
				}
			}
		})
	}
}

func TestDetailPagePromptWithoutOptionalLines(t *testing.T) {
	got := DetailPagePrompt(DetailPageRequest{
		Product:  domain.Product{Analysis: domain.ProductAnalysis{Category: "mug"}},
		Platform: domain.PlatformTaobao,
		Style:    domain.StyleCute,
		Language: domain.LanguageTraditionalChinese,
	})
	if strings.Contains(got, "品牌名") || strings.Contains(got, "補充資訊") {
		t.Fatalf("unexpected optional lines:\n%s", got)
	}
	if !strings.Contains(got, "：\n\n產品類別：mug") {
		t.Fatalf("category should follow the header directly:\n%s", got)
	}
}
