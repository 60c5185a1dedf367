package domain

// Definition associe un terme métier à son explication
type Definition struct {
	Term        string `json:"term"`
	Description string `json:"description"`
}

// businessDefinitions documente les indicateurs affichés, dans l'ordre d'affichage
var businessDefinitions = []Definition{
	{Term: "投资回报率(ROI)", Description: "销售总额 ÷ 物料总成本。ROI>1表示物料投入产生了正回报，ROI>2表示表现优秀。"},
	{Term: "物料销售比率", Description: "物料总成本占销售总额的百分比。该比率越低，表示物料使用效率越高。"},
	{Term: "客户价值分层", Description: "根据ROI和销售额将客户分为四类：\n1) 高价值客户：ROI≥2.0且销售额在前25%；\n2) 成长型客户：ROI≥1.0且销售额高于中位数；\n3) 稳定型客户：ROI≥1.0但销售额较低；\n4) 低效型客户：ROI<1.0，投入产出比不理想。"},
	{Term: "物料使用效率", Description: "衡量单位物料投入所产生的销售额，计算方式为：销售额 ÷ 物料数量。"},
	{Term: "物料多样性", Description: "客户使用的不同种类物料数量，多样性高的客户通常有更好的展示效果。"},
	{Term: "物料投放密度", Description: "单位时间内的物料投放量，反映物料投放的集中度。"},
	{Term: "物料使用周期", Description: "从物料投放到产生销售效果的时间周期，用于优化投放时机。"},
}

// categoryInsights décrit l'effet attendu de chaque catégorie de matériel
var categoryInsights = []Definition{
	{Term: "促销物料", Description: "用于短期促销活动，ROI通常在活动期间较高，适合季节性销售峰值前投放。"},
	{Term: "陈列物料", Description: "提升产品在终端的可见度，有助于长期销售增长，ROI相对稳定。"},
	{Term: "宣传物料", Description: "增强品牌认知，长期投资回报稳定，适合新市场或新产品推广。"},
	{Term: "赠品", Description: "刺激短期销售，提升客户满意度，注意控制成本避免过度赠送。"},
	{Term: "包装物料", Description: "提升产品价值感，增加客户复购率，对高端产品尤为重要。"},
}

// BusinessDefinitions retourne une copie des définitions métier
func BusinessDefinitions() []Definition {
	return append([]Definition(nil), businessDefinitions...)
}

// CategoryInsights retourne une copie des analyses par catégorie
func CategoryInsights() []Definition {
	return append([]Definition(nil), categoryInsights...)
}

// CategoryInsight retourne l'analyse d'une catégorie
func CategoryInsight(category string) (string, bool) {
	for _, d := range categoryInsights {
		if d.Term == category {
			return d.Description, true
		}
	}
	return "", false
}
