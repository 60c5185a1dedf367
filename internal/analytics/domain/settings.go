package domain

import "errors"

// Settings regroupe les seuils métier de l'analyse.
// Les valeurs par défaut reproduisent les règles du tableau de bord d'origine.
type Settings struct {
	HighValueROI      float64 `yaml:"high_value_roi" json:"high_value_roi"`
	BaseROI           float64 `yaml:"base_roi" json:"base_roi"`
	HighSalesQuantile float64 `yaml:"high_sales_quantile" json:"high_sales_quantile"`

	Recommendation RecommendationSettings `yaml:"recommendation" json:"recommendation"`
	PairUsage      PairUsageSettings      `yaml:"pair_usage" json:"pair_usage"`
}

// RecommendationSettings paramètre le moteur de combinaisons
type RecommendationSettings struct {
	MinROI        float64 `yaml:"min_roi" json:"min_roi"`
	RecordCap     int     `yaml:"record_cap" json:"record_cap"`
	TopCategories int     `yaml:"top_categories" json:"top_categories"`
	TopRecords    int     `yaml:"top_records" json:"top_records"`
	TopPairs      int     `yaml:"top_pairs" json:"top_pairs"`
}

// PairUsageSettings paramètre l'analyse d'usage des paires de catégories
type PairUsageSettings struct {
	MinSharePct     float64 `yaml:"min_share_pct" json:"min_share_pct"`
	MinDistributors int     `yaml:"min_distributors" json:"min_distributors"`
	Limit           int     `yaml:"limit" json:"limit"`
}

// DefaultSettings retourne les seuils d'origine
func DefaultSettings() Settings {
	return Settings{
		HighValueROI:      2.0,
		BaseROI:           1.0,
		HighSalesQuantile: 0.75,
		Recommendation: RecommendationSettings{
			MinROI:        2.0,
			RecordCap:     20,
			TopCategories: 3,
			TopRecords:    3,
			TopPairs:      3,
		},
		PairUsage: PairUsageSettings{
			MinSharePct:     10,
			MinDistributors: 3,
			Limit:           10,
		},
	}
}

// Validate vérifie la cohérence des seuils
func (s Settings) Validate() error {
	if s.BaseROI < 0 || s.HighValueROI < s.BaseROI {
		return errors.New("high_value_roi must be >= base_roi >= 0")
	}
	if s.HighSalesQuantile <= 0 || s.HighSalesQuantile >= 1 {
		return errors.New("high_sales_quantile must be in (0, 1)")
	}
	r := s.Recommendation
	if r.RecordCap <= 0 || r.TopCategories < 2 || r.TopRecords <= 0 || r.TopPairs < 0 {
		return errors.New("recommendation limits must be positive (top_categories >= 2)")
	}
	if s.PairUsage.MinDistributors <= 0 || s.PairUsage.Limit <= 0 {
		return errors.New("pair_usage limits must be positive")
	}
	return nil
}
