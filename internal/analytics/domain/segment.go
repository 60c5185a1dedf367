package domain

import "fmt"

// ValueSegment est l'un des quatre niveaux de valeur ordonnés
type ValueSegment string

const (
	SegmentHighValue   ValueSegment = "高价值客户"
	SegmentGrowth      ValueSegment = "成长型客户"
	SegmentStable      ValueSegment = "稳定型客户"
	SegmentInefficient ValueSegment = "低效型客户"
)

// AllSegments liste les segments du plus au moins valorisé
var AllSegments = []ValueSegment{SegmentHighValue, SegmentGrowth, SegmentStable, SegmentInefficient}

// Rank retourne la position ordinale du segment (0 = plus haut), -1 si inconnu
func (s ValueSegment) Rank() int {
	for i, seg := range AllSegments {
		if seg == s {
			return i
		}
	}
	return -1
}

// ParseValueSegment valide un libellé de segment
func ParseValueSegment(label string) (ValueSegment, error) {
	s := ValueSegment(label)
	if s.Rank() < 0 {
		return "", fmt.Errorf("unknown value segment %q", label)
	}
	return s, nil
}

// SegmentThresholds sont les statistiques de population calculées une fois
// sur le tableau complet, avant toute classification.
type SegmentThresholds struct {
	P75Sales    float64 `json:"p75_sales"`
	MedianSales float64 `json:"median_sales"`
	HighROI     float64 `json:"high_roi"`
	BaseROI     float64 `json:"base_roi"`
}

// Classify est le classificateur pur: premier prédicat satisfait, dans l'ordre
func Classify(roi, salesTotal float64, t SegmentThresholds) ValueSegment {
	switch {
	case roi >= t.HighROI && salesTotal > t.P75Sales:
		return SegmentHighValue
	case roi >= t.BaseROI && salesTotal > t.MedianSales:
		return SegmentGrowth
	case roi >= t.BaseROI:
		return SegmentStable
	default:
		return SegmentInefficient
	}
}
