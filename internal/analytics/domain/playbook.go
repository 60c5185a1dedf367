package domain

// Playbook est la stratégie fixe associée à un segment de valeur
type Playbook struct {
	Strategy    string `json:"strategy" yaml:"strategy"`
	MaterialMix string `json:"material_mix" yaml:"material_mix"`
	SpendDelta  string `json:"spend_delta" yaml:"spend_delta"`
	Innovation  string `json:"innovation" yaml:"innovation"`
	Focus       string `json:"focus" yaml:"focus"`
}

// playbooks est la table de correspondance statique segment → stratégie
var playbooks = map[ValueSegment]Playbook{
	SegmentHighValue: {
		Strategy:    "维护与深化",
		MaterialMix: "全套高质量物料",
		SpendDelta:  "维持或适度增加(5-10%)",
		Innovation:  "优先试用新物料",
		Focus:       "保持ROI稳定性，避免过度投放",
	},
	SegmentGrowth: {
		Strategy:    "精准投放",
		MaterialMix: "聚焦高效转化物料",
		SpendDelta:  "有条件增加(10-15%)",
		Innovation:  "定期更新物料组合",
		Focus:       "提升销售额规模，保持ROI",
	},
	SegmentStable: {
		Strategy:    "效率优化",
		MaterialMix: "优化高ROI物料占比",
		SpendDelta:  "维持不变",
		Innovation:  "测试新物料效果",
		Focus:       "提高物料使用效率，挖掘增长点",
	},
	SegmentInefficient: {
		Strategy:    "控制与改进",
		MaterialMix: "减少低效物料",
		SpendDelta:  "减少(20-30%)",
		Innovation:  "暂缓新物料试用",
		Focus:       "诊断低效原因，培训后再投放",
	},
}

// PlaybookFor retourne la stratégie d'un segment
func PlaybookFor(segment ValueSegment) (Playbook, bool) {
	p, ok := playbooks[segment]
	return p, ok
}
