package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Month représente un mois calendaire, clé de toutes les agrégations.
// Value Object: immuable, égalité par valeur, utilisable comme clé de map.
type Month struct {
	year  int
	month time.Month
}

// monthLayouts sont les formats acceptés à l'ingestion, du plus précis au plus court
var monthLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"2006-01",
	"2006/01",
	"200601",
}

// NewMonth crée un Month avec validation
func NewMonth(year int, month time.Month) (Month, error) {
	if year < 1 {
		return Month{}, errors.New("year must be positive")
	}
	if month < time.January || month > time.December {
		return Month{}, fmt.Errorf("invalid month: %d", month)
	}
	return Month{year: year, month: month}, nil
}

// MustNewMonth crée un Month en paniquant si invalide
func MustNewMonth(year int, month time.Month) Month {
	m, err := NewMonth(year, month)
	if err != nil {
		panic(fmt.Sprintf("invalid month: %v", err))
	}
	return m
}

// MonthOf retourne le mois contenant t
func MonthOf(t time.Time) Month {
	return Month{year: t.Year(), month: t.Month()}
}

// ParseMonth lit un mois de livraison ("2024-01", "2024-01-15", ...)
func ParseMonth(value string) (Month, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Month{}, errors.New("month cannot be empty")
	}
	for _, layout := range monthLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return MonthOf(t), nil
		}
	}
	return Month{}, fmt.Errorf("unparseable month %q", value)
}

// Year retourne l'année
func (m Month) Year() int {
	return m.year
}

// Month retourne le mois de l'année
func (m Month) Month() time.Month {
	return m.month
}

// Quarter retourne le trimestre (1-4)
func (m Month) Quarter() int {
	return (int(m.month)-1)/3 + 1
}

// Start retourne le premier jour du mois à minuit UTC
func (m Month) Start() time.Time {
	return time.Date(m.year, m.month, 1, 0, 0, 0, 0, time.UTC)
}

// AddMonths décale le mois de n mois
func (m Month) AddMonths(n int) Month {
	return MonthOf(m.Start().AddDate(0, n, 0))
}

// Before indique si m précède other
func (m Month) Before(other Month) bool {
	return m.Compare(other) < 0
}

// Compare retourne -1, 0 ou 1
func (m Month) Compare(other Month) int {
	switch {
	case m.year != other.year:
		if m.year < other.year {
			return -1
		}
		return 1
	case m.month != other.month:
		if m.month < other.month {
			return -1
		}
		return 1
	}
	return 0
}

// IsZero vérifie si le mois n'est pas renseigné
func (m Month) IsZero() bool {
	return m.year == 0
}

// String retourne le libellé "2006-01"
func (m Month) String() string {
	if m.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d", m.year, int(m.month))
}

// Label retourne le libellé court du tableau de bord ("01月")
func (m Month) Label() string {
	return fmt.Sprintf("%02d月", int(m.month))
}

// MarshalText sérialise le mois en "2006-01"
func (m Month) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText relit un mois sérialisé
func (m *Month) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*m = Month{}
		return nil
	}
	parsed, err := ParseMonth(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
