package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	ledgerdomain "materialroi/internal/ledger/domain"
)

// ExportFormat représente le format d'export
type ExportFormat string

const (
	ExportFormatCSV     ExportFormat = "csv"
	ExportFormatParquet ExportFormat = "parquet"
)

// ExportType représente la table exportée
type ExportType string

const (
	ExportTypeDistributors    ExportType = "distributors"
	ExportTypeRecommendations ExportType = "recommendations"
)

// ErrUnsupportedExport signale une combinaison type/format non disponible
var ErrUnsupportedExport = errors.New("unsupported export")

// ExportJob représente un job d'export
type ExportJob struct {
	format     ExportFormat
	exportType ExportType
	sample     bool
	filter     ledgerdomain.Filter
	createdAt  time.Time
}

// NewExportJob crée un nouveau job d'export avec validation.
// Les recommandations ne sont exportées qu'en CSV.
func NewExportJob(format ExportFormat, exportType ExportType, sample bool, filter ledgerdomain.Filter) (*ExportJob, error) {
	if format != ExportFormatCSV && format != ExportFormatParquet {
		return nil, fmt.Errorf("%w: format %q", ErrUnsupportedExport, format)
	}
	if exportType != ExportTypeDistributors && exportType != ExportTypeRecommendations {
		return nil, fmt.Errorf("%w: type %q", ErrUnsupportedExport, exportType)
	}
	if exportType == ExportTypeRecommendations && format != ExportFormatCSV {
		return nil, fmt.Errorf("%w: %s as %s", ErrUnsupportedExport, exportType, format)
	}

	return &ExportJob{
		format:     format,
		exportType: exportType,
		sample:     sample,
		filter:     filter,
		createdAt:  time.Now(),
	}, nil
}

// ParseExportFormat lit un format sans tenir compte de la casse
func ParseExportFormat(value string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(strings.TrimSpace(value))); f {
	case ExportFormatCSV, ExportFormatParquet:
		return f, nil
	case "":
		return ExportFormatCSV, nil
	default:
		return "", fmt.Errorf("%w: format %q", ErrUnsupportedExport, value)
	}
}

// Format retourne le format d'export
func (ej *ExportJob) Format() ExportFormat {
	return ej.format
}

// ExportType retourne le type d'export
func (ej *ExportJob) ExportType() ExportType {
	return ej.exportType
}

// Sample indique si le jeu de démonstration est exporté
func (ej *ExportJob) Sample() bool {
	return ej.sample
}

// Filter retourne le filtre appliqué
func (ej *ExportJob) Filter() ledgerdomain.Filter {
	return ej.filter
}

// CreatedAt retourne la date de création
func (ej *ExportJob) CreatedAt() time.Time {
	return ej.createdAt
}

// FileName retourne le nom de fichier proposé au téléchargement
func (ej *ExportJob) FileName() string {
	return fmt.Sprintf("%s_%s.%s", ej.exportType, ej.createdAt.Format("20060102_150405"), ej.format)
}

// ContentType retourne le type MIME du fichier
func (ej *ExportJob) ContentType() string {
	if ej.format == ExportFormatParquet {
		return "application/vnd.apache.parquet"
	}
	return "text/csv; charset=utf-8"
}
