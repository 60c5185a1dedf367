package infrastructure

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"materialroi/internal/shared/domain"
)

// Noms de colonnes logiques, indépendants de la langue de l'en-tête
const (
	colCustomerID   = "customer_id"
	colCustomerName = "customer_name"
	colRegion       = "region"
	colProvince     = "province"
	colSalesperson  = "salesperson"
	colShipMonth    = "ship_month"
	colProductCode  = "product_code"
	colProductName  = "product_name"
	colCategory     = "material_category"
	colQuantity     = "quantity"
	colUnitPrice    = "unit_price"
	colMaterialCost = "material_cost"
	colSalesAmount  = "sales_amount"
)

// headerAliases associe les en-têtes des classeurs métier aux colonnes logiques
var headerAliases = map[string]string{
	"客户代码":      colCustomerID,
	"经销商名称":     colCustomerName,
	"所属区域":      colRegion,
	"省份":        colProvince,
	"销售人员":      colSalesperson,
	"申请人":       colSalesperson,
	"发运月份":      colShipMonth,
	"产品代码":      colProductCode,
	"物料代码":      colProductCode,
	"产品名称":      colProductName,
	"物料名称":      colProductName,
	"物料类别":      colCategory,
	"物料类别.1":    colCategory,
	"求和项:数量（箱）": colQuantity,
	"数量":        colQuantity,
	"单价（元）":     colUnitPrice,
	"求和项:单价（箱）": colUnitPrice,
	"物料成本":      colMaterialCost,
	"销售金额":      colSalesAmount,
}

// header indexe les colonnes logiques présentes dans un en-tête CSV
type header struct {
	source  string
	indexes map[string]int
}

func parseHeader(source string, record []string) header {
	h := header{source: source, indexes: make(map[string]int, len(record))}
	for i, raw := range record {
		name := strings.TrimSpace(strings.TrimPrefix(raw, "\ufeff"))
		if logical, ok := headerAliases[name]; ok {
			name = logical
		} else {
			name = strings.ToLower(name)
		}
		if _, dup := h.indexes[name]; !dup {
			h.indexes[name] = i
		}
	}
	return h
}

func (h header) has(col string) bool {
	_, ok := h.indexes[col]
	return ok
}

func (h header) require(cols ...string) error {
	var missing []string
	for _, c := range cols {
		if !h.has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s: missing columns %s", h.source, strings.Join(missing, ", "))
	}
	return nil
}

// row lit les cellules d'un enregistrement et conserve la première erreur rencontrée
type row struct {
	h      header
	line   int
	record []string
	err    error
}

func (r *row) fail(col string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("%s line %d column %s: %w", r.h.source, r.line, col, err)
	}
}

func (r *row) text(col string) string {
	i, ok := r.h.indexes[col]
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

func (r *row) month(col string) domain.Month {
	m, err := domain.ParseMonth(r.text(col))
	if err != nil {
		r.fail(col, err)
	}
	return m
}

func (r *row) float(col string) float64 {
	v, ok := r.optionalFloat(col)
	if !ok && r.err == nil {
		r.fail(col, fmt.Errorf("value is required"))
	}
	return v
}

func (r *row) optionalFloat(col string) (float64, bool) {
	raw := strings.ReplaceAll(r.text(col), ",", "")
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		r.fail(col, err)
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		r.fail(col, fmt.Errorf("%q is not a finite number", raw))
		return 0, false
	}
	return v, true
}

// quantity accepte un entier positif ou nul, éventuellement écrit "12.0"
func (r *row) quantity(col string) domain.Quantity {
	v := r.float(col)
	if r.err != nil {
		return domain.Quantity{}
	}
	if v != math.Trunc(v) {
		r.fail(col, fmt.Errorf("quantity %v is not a whole number", v))
		return domain.Quantity{}
	}
	if v < 0 {
		r.fail(col, errors.New("quantity cannot be negative"))
		return domain.Quantity{}
	}
	q, err := domain.NewQuantity(int(v))
	if err != nil {
		r.fail(col, err)
	}
	return q
}
