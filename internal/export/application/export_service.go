package application

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	analyticsapp "materialroi/internal/analytics/application"
	analyticsdomain "materialroi/internal/analytics/domain"
	"materialroi/internal/export/domain"
	"materialroi/internal/export/infrastructure"
	sharedinfra "materialroi/internal/shared/infrastructure"
)

// ReportProvider fournit le rapport à exporter
type ReportProvider interface {
	Report(ctx context.Context, q analyticsapp.Query) (*analyticsdomain.Report, error)
}

// ExportFile est le résultat d'un export
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
	Rows        int
}

// ExportService produit les fichiers CSV et Parquet à partir des rapports
type ExportService struct {
	reports     ReportProvider
	workerCount int
	batchSize   int
	logger      zerolog.Logger
}

// NewExportService crée une nouvelle instance de ExportService
func NewExportService(reports ReportProvider, workerCount, batchSize int, logger zerolog.Logger) *ExportService {
	if workerCount <= 0 {
		workerCount = 4
	}
	if batchSize <= 0 {
		batchSize = 1000
	}
	return &ExportService{
		reports:     reports,
		workerCount: workerCount,
		batchSize:   batchSize,
		logger:      logger.With().Str("component", "export_service").Logger(),
	}
}

// Export exécute le job
func (s *ExportService) Export(ctx context.Context, job *domain.ExportJob) (*ExportFile, error) {
	report, err := s.reports.Report(ctx, analyticsapp.Query{Sample: job.Sample(), Filter: job.Filter()})
	if err != nil {
		return nil, err
	}

	var data []byte
	var rows int
	switch job.ExportType() {
	case domain.ExportTypeDistributors:
		rows = len(report.Distributors)
		data, err = s.exportDistributors(ctx, report.Distributors, job.Format())
	case domain.ExportTypeRecommendations:
		rows = len(report.Recommendations)
		data, err = s.exportRecommendations(report.Recommendations)
	default:
		err = fmt.Errorf("%w: type %q", domain.ErrUnsupportedExport, job.ExportType())
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("type", string(job.ExportType())).
		Str("format", string(job.Format())).
		Int("rows", rows).
		Int("bytes", len(data)).
		Msg("export generated")

	return &ExportFile{
		Name:        job.FileName(),
		ContentType: job.ContentType(),
		Data:        data,
		Rows:        rows,
	}, nil
}

// exportDistributors convertit les métriques par lots en parallèle puis encode le fichier
func (s *ExportService) exportDistributors(ctx context.Context, metrics []analyticsdomain.DistributorMetric, format domain.ExportFormat) ([]byte, error) {
	rows := make([]domain.DistributorExportRow, len(metrics))
	tasks := make([]sharedinfra.Task, 0, len(metrics)/s.batchSize+1)
	for start := 0; start < len(metrics); start += s.batchSize {
		end := start + s.batchSize
		if end > len(metrics) {
			end = len(metrics)
		}
		batchStart, batchEnd := start, end
		tasks = append(tasks, func(ctx context.Context) error {
			for i := batchStart; i < batchEnd; i++ {
				rows[i] = domain.NewDistributorExportRow(metrics[i])
			}
			return ctx.Err()
		})
	}
	if err := sharedinfra.RunAll(ctx, s.workerCount, tasks...); err != nil {
		return nil, fmt.Errorf("convert distributor rows: %w", err)
	}

	switch format {
	case domain.ExportFormatParquet:
		parquetRows := make([]domain.DistributorParquetRow, len(rows))
		for i, r := range rows {
			parquetRows[i] = r.ToParquet()
		}
		return infrastructure.EncodeParquet(parquetRows, int64(s.workerCount))
	default:
		records := make([][]string, len(rows))
		for i, r := range rows {
			records[i] = r.ToCSVRow()
		}
		return infrastructure.EncodeCSV(domain.DistributorCSVHeaders(), records, s.batchSize)
	}
}

func (s *ExportService) exportRecommendations(recs []analyticsdomain.CombinationRecommendation) ([]byte, error) {
	records := make([][]string, len(recs))
	for i, r := range recs {
		records[i] = domain.RecommendationCSVRow(r)
	}
	return infrastructure.EncodeCSV(domain.RecommendationCSVHeaders(), records, s.batchSize)
}
