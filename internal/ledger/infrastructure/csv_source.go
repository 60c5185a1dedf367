package infrastructure

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"materialroi/internal/ledger/domain"
	sharedinfra "materialroi/internal/shared/infrastructure"
)

// Source fournit les trois tables brutes d'une exécution
type Source interface {
	Name() string
	Load(ctx context.Context) (domain.RawTables, error)
}

// CSVSource lit les tables depuis trois fichiers CSV
type CSVSource struct {
	MaterialPath string
	SalesPath    string
	PricePath    string
	logger       zerolog.Logger
}

// NewCSVSource crée une source CSV
func NewCSVSource(materialPath, salesPath, pricePath string, logger zerolog.Logger) *CSVSource {
	return &CSVSource{
		MaterialPath: materialPath,
		SalesPath:    salesPath,
		PricePath:    pricePath,
		logger:       logger.With().Str("component", "csv_source").Logger(),
	}
}

// Name retourne le nom de la source
func (s *CSVSource) Name() string {
	return "csv"
}

// Load lit les trois fichiers en parallèle
func (s *CSVSource) Load(ctx context.Context) (domain.RawTables, error) {
	var tables domain.RawTables

	err := sharedinfra.RunAll(ctx, 3,
		func(context.Context) error {
			rows, err := readFile(s.MaterialPath, ReadMaterials)
			tables.Materials = rows
			return err
		},
		func(context.Context) error {
			rows, err := readFile(s.SalesPath, ReadSales)
			tables.Sales = rows
			return err
		},
		func(context.Context) error {
			rows, err := readFile(s.PricePath, ReadPrices)
			tables.Prices = rows
			return err
		},
	)
	if err != nil {
		return domain.RawTables{}, err
	}

	s.logger.Debug().
		Int("materials", len(tables.Materials)).
		Int("sales", len(tables.Sales)).
		Int("prices", len(tables.Prices)).
		Msg("csv tables loaded")
	return tables, nil
}

func readFile[T any](path string, read func(name string, r io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return read(path, f)
}

// eachRecord valide l'en-tête puis transmet chaque enregistrement numéroté
func eachRecord(name string, r io.Reader, onHeader func(h header) error, fn func(h header, line int, record []string) error) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	first, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%s: empty file", name)
	}
	if err != nil {
		return fmt.Errorf("%s: read header: %w", name, err)
	}
	h := parseHeader(name, first)
	if err := onHeader(h); err != nil {
		return err
	}

	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		line++
		if err != nil {
			return fmt.Errorf("%s line %d: %w", name, line, err)
		}
		if err := fn(h, line, record); err != nil {
			return err
		}
	}
}

func readParty(r *row) domain.Party {
	return domain.Party{
		CustomerID:   r.text(colCustomerID),
		CustomerName: r.text(colCustomerName),
		Region:       r.text(colRegion),
		Province:     r.text(colProvince),
		Salesperson:  r.text(colSalesperson),
	}
}

// ReadMaterials lit la table des matériels. La présence de la colonne de coût
// détermine la variante: lignes déjà chiffrées ou lignes brutes à chiffrer.
func ReadMaterials(name string, r io.Reader) ([]domain.MaterialRow, error) {
	var rows []domain.MaterialRow
	var costed bool

	onHeader := func(h header) error {
		costed = h.has(colMaterialCost)
		return h.require(colCustomerID, colCustomerName, colSalesperson, colShipMonth, colProductCode, colQuantity)
	}
	err := eachRecord(name, r, onHeader, func(h header, line int, record []string) error {
		cur := &row{h: h, line: line, record: record}
		base := domain.MaterialBase{
			Party:       readParty(cur),
			ShipMonth:   cur.month(colShipMonth),
			ProductCode: cur.text(colProductCode),
			ProductName: cur.text(colProductName),
			Category:    cur.text(colCategory),
			Quantity:    cur.quantity(colQuantity),
		}
		if costed {
			price, _ := cur.optionalFloat(colUnitPrice)
			rows = append(rows, domain.CostedMaterialRow{
				MaterialBase: base,
				UnitPrice:    price,
				MaterialCost: cur.float(colMaterialCost),
			})
		} else {
			var price *float64
			if v, ok := cur.optionalFloat(colUnitPrice); ok {
				price = &v
			}
			rows = append(rows, domain.RawMaterialRow{MaterialBase: base, UnitPrice: price})
		}
		return cur.err
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ReadSales lit la table des ventes; sans colonne de montant, il sera calculé
func ReadSales(name string, r io.Reader) ([]domain.SalesRow, error) {
	var rows []domain.SalesRow
	var costed bool

	onHeader := func(h header) error {
		costed = h.has(colSalesAmount)
		if !costed {
			return h.require(colCustomerID, colCustomerName, colSalesperson, colShipMonth, colQuantity, colUnitPrice)
		}
		return h.require(colCustomerID, colCustomerName, colSalesperson, colShipMonth, colQuantity)
	}
	err := eachRecord(name, r, onHeader, func(h header, line int, record []string) error {
		cur := &row{h: h, line: line, record: record}
		base := domain.SalesBase{
			Party:     readParty(cur),
			ShipMonth: cur.month(colShipMonth),
			Quantity:  cur.quantity(colQuantity),
		}
		if costed {
			base.UnitPrice, _ = cur.optionalFloat(colUnitPrice)
			rows = append(rows, domain.CostedSalesRow{SalesBase: base, SalesAmount: cur.float(colSalesAmount)})
		} else {
			base.UnitPrice = cur.float(colUnitPrice)
			rows = append(rows, domain.RawSalesRow{SalesBase: base})
		}
		return cur.err
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ReadPrices lit le référentiel de prix; un prix vide reste nul
func ReadPrices(name string, r io.Reader) ([]domain.PriceEntry, error) {
	var entries []domain.PriceEntry

	onHeader := func(h header) error {
		return h.require(colProductCode)
	}
	err := eachRecord(name, r, onHeader, func(h header, line int, record []string) error {
		cur := &row{h: h, line: line, record: record}
		entry := domain.PriceEntry{
			ProductCode: cur.text(colProductCode),
			ProductName: cur.text(colProductName),
			Category:    cur.text(colCategory),
		}
		if v, ok := cur.optionalFloat(colUnitPrice); ok {
			entry.UnitPrice = &v
		}
		entries = append(entries, entry)
		return cur.err
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
