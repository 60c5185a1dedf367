package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	analyticsapp "materialroi/internal/analytics/application"
	shareddomain "materialroi/internal/shared/domain"
)

// parseQuery lit le filtre depuis les paramètres d'URL.
// Les listes acceptent des paramètres répétés ou séparés par des virgules.
func parseQuery(r *http.Request) (analyticsapp.Query, error) {
	values := r.URL.Query()

	var q analyticsapp.Query
	if raw := values.Get("sample"); raw != "" {
		sample, err := strconv.ParseBool(raw)
		if err != nil {
			return q, fmt.Errorf("invalid sample flag %q", raw)
		}
		q.Sample = sample
	}

	if raw := values.Get("month"); raw != "" {
		month, err := shareddomain.ParseMonth(raw)
		if err != nil {
			return q, fmt.Errorf("invalid month %q", raw)
		}
		q.Filter.Month = month
	}

	q.Filter.Regions = list(values["region"])
	q.Filter.Provinces = list(values["province"])
	q.Filter.Categories = list(values["category"])
	q.Filter.Salespersons = list(values["salesperson"])
	q.Filter.Distributors = list(values["distributor"])
	return q, nil
}

func list(raw []string) []string {
	var out []string
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
