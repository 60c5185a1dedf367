package domain

import (
	"fmt"
	"sort"
	"strings"
)

// NotAvailable marque les champs du placeholder "données insuffisantes"
const NotAvailable = "N/A"

// CombinationRecommendation est une suggestion de combinaison de catégories de matériels.
// Éphémère: produite à chaque requête, jamais persistée.
type CombinationRecommendation struct {
	Label                 string   `json:"label"`
	ExpectedROI           string   `json:"expected_roi"`
	ExpectedROIValue      float64  `json:"expected_roi_value"`
	UseCase               string   `json:"use_case"`
	SuggestedMaterialMix  string   `json:"suggested_material_mix"`
	TargetCustomerProfile string   `json:"target_customer_profile"`
	CoreCategories        []string `json:"core_categories"`
	SuggestedProductTiers []string `json:"suggested_product_tiers,omitempty"`
	CompositeScore        float64  `json:"composite_score"`
}

// IsPlaceholder indique s'il s'agit de l'entrée "données insuffisantes"
func (r CombinationRecommendation) IsPlaceholder() bool {
	return r.ExpectedROI == NotAvailable
}

// CategorySetKey retourne une clé indépendante de l'ordre des catégories
func (r CombinationRecommendation) CategorySetKey() string {
	return categorySetKey(r.CoreCategories)
}

// InsufficientDataRecommendation est retournée quand aucun historique à ROI élevé n'existe
func InsufficientDataRecommendation() CombinationRecommendation {
	return CombinationRecommendation{
		Label:                 "暂无足够数据生成物料组合优化建议",
		ExpectedROI:           NotAvailable,
		UseCase:               NotAvailable,
		SuggestedMaterialMix:  NotAvailable,
		TargetCustomerProfile: NotAvailable,
		CoreCategories:        []string{},
	}
}

// comboTemplate décrit la rotation des cas d'usage par rang
type comboTemplate struct {
	useCase  string
	mix      string
	profile  string
	products []string
}

var comboTemplates = []comboTemplate{
	{useCase: "终端陈列与促销活动", mix: "主要展示物料 + 辅助促销物料", profile: "所有客户，尤其高价值客户", products: []string{"高端产品", "中端产品"}},
	{useCase: "长期品牌建设", mix: "品牌宣传物料 + 高端礼品", profile: "高端市场客户", products: []string{"高端产品", "中端产品"}},
	{useCase: "快速促单与客户转化", mix: "促销物料 + 实用赠品", profile: "大众市场客户", products: []string{"高端产品", "中端产品"}},
}

// NewRecordRecommendation construit la recommandation issue d'un enregistrement historique.
// rank commence à 1 et sélectionne le cas d'usage (le dernier modèle s'applique au-delà de 3).
func NewRecordRecommendation(rank int, categories []string, roi, score float64) CombinationRecommendation {
	idx := rank - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(comboTemplates) {
		idx = len(comboTemplates) - 1
	}
	tpl := comboTemplates[idx]

	return CombinationRecommendation{
		Label:                 fmt.Sprintf("推荐物料组合%d: 以【%s】为核心", rank, strings.Join(categories, "、")),
		ExpectedROI:           fmt.Sprintf("%.2f", roi),
		ExpectedROIValue:      roi,
		UseCase:               tpl.useCase,
		SuggestedMaterialMix:  tpl.mix,
		TargetCustomerProfile: tpl.profile,
		CoreCategories:        append([]string(nil), categories...),
		SuggestedProductTiers: append([]string(nil), tpl.products...),
		CompositeScore:        score,
	}
}

// NewPairRecommendation construit la recommandation issue d'une paire de catégories
func NewPairRecommendation(rank int, pair CategoryPair, avgROI float64) CombinationRecommendation {
	return CombinationRecommendation{
		Label:                 fmt.Sprintf("推荐物料组合%d: 【%s】+【%s】黄金搭配", rank, pair.First, pair.Second),
		ExpectedROI:           fmt.Sprintf("%.2f", avgROI),
		ExpectedROIValue:      avgROI,
		UseCase:               "综合营销活动",
		SuggestedMaterialMix:  fmt.Sprintf("%s为主，%s为辅，比例约7:3", pair.First, pair.Second),
		TargetCustomerProfile: "适合追求高效益的客户",
		CoreCategories:        []string{pair.First, pair.Second},
		SuggestedProductTiers: []string{"中端产品", "入门产品"},
	}
}

// CategoryPair est une paire non ordonnée de catégories; First <= Second
type CategoryPair struct {
	First  string `json:"first"`
	Second string `json:"second"`
}

// NewCategoryPair normalise l'ordre des deux catégories
func NewCategoryPair(a, b string) CategoryPair {
	if b < a {
		a, b = b, a
	}
	return CategoryPair{First: a, Second: b}
}

// String retourne "a + b"
func (p CategoryPair) String() string {
	return p.First + " + " + p.Second
}

func categorySetKey(categories []string) string {
	sorted := append([]string(nil), categories...)
	sort.Strings(sorted)
	return strings.Join(sorted, "|")
}
