package application

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	analyticsapp "materialroi/internal/analytics/application"
	analyticsdomain "materialroi/internal/analytics/domain"
	"materialroi/internal/export/domain"
	ledgerdomain "materialroi/internal/ledger/domain"
	shareddomain "materialroi/internal/shared/domain"
)

type fakeReports struct {
	report *analyticsdomain.Report
	err    error
	last   analyticsapp.Query
}

func (f *fakeReports) Report(_ context.Context, q analyticsapp.Query) (*analyticsdomain.Report, error) {
	f.last = q
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

func testReport(n int) *analyticsdomain.Report {
	metrics := make([]analyticsdomain.DistributorMetric, n)
	for i := range metrics {
		metrics[i] = analyticsdomain.DistributorMetric{
			DistributorKey: analyticsdomain.DistributorKey{
				CustomerID:   fmt.Sprintf("C%03d", i),
				CustomerName: fmt.Sprintf("经销商%03d", i),
				Month:        shareddomain.MustNewMonth(2024, time.January),
				Salesperson:  "张三",
			},
			MaterialCostTotal: 100,
			SalesTotal:        float64(150 + i),
			ROI:               float64(150+i) / 100,
			CostRatioPct:      100 / float64(150+i) * 100,
			MaterialDiversity: 2,
			Segment:           analyticsdomain.SegmentStable,
		}
	}
	return &analyticsdomain.Report{
		Distributors:    metrics,
		Recommendations: []analyticsdomain.CombinationRecommendation{analyticsdomain.InsufficientDataRecommendation()},
	}
}

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	require.True(t, bytes.HasPrefix(data, []byte("\ufeff")))
	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\ufeff")))).ReadAll()
	require.NoError(t, err)
	return records
}

func TestExportService_DistributorsCSV(t *testing.T) {
	reports := &fakeReports{report: testReport(25)}
	service := NewExportService(reports, 3, 4, zerolog.Nop())

	filter := ledgerdomain.Filter{Regions: []string{"华东"}}
	job, err := domain.NewExportJob(domain.ExportFormatCSV, domain.ExportTypeDistributors, true, filter)
	require.NoError(t, err)

	file, err := service.Export(context.Background(), job)
	require.NoError(t, err)

	assert.Equal(t, 25, file.Rows)
	assert.Equal(t, job.FileName(), file.Name)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)
	assert.Equal(t, analyticsapp.Query{Sample: true, Filter: filter}, reports.last)

	records := readCSV(t, file.Data)
	require.Len(t, records, 26)
	assert.Equal(t, domain.DistributorCSVHeaders(), records[0])
	// l'ordre des lignes est conservé malgré la conversion par lots
	for i := 1; i < len(records); i++ {
		assert.Equal(t, fmt.Sprintf("C%03d", i-1), records[i][0])
	}
	assert.Equal(t, "100.00元", records[1][6])
	assert.Equal(t, "1.50", records[1][8])
}

func TestExportService_DistributorsParquet(t *testing.T) {
	service := NewExportService(&fakeReports{report: testReport(10)}, 2, 0, zerolog.Nop())

	job, err := domain.NewExportJob(domain.ExportFormatParquet, domain.ExportTypeDistributors, false, ledgerdomain.Filter{})
	require.NoError(t, err)

	file, err := service.Export(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, 10, file.Rows)
	assert.Equal(t, "application/vnd.apache.parquet", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Data, []byte("PAR1")))
}

func TestExportService_Recommendations(t *testing.T) {
	service := NewExportService(&fakeReports{report: testReport(1)}, 0, 0, zerolog.Nop())

	job, err := domain.NewExportJob(domain.ExportFormatCSV, domain.ExportTypeRecommendations, false, ledgerdomain.Filter{})
	require.NoError(t, err)

	file, err := service.Export(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, 1, file.Rows)

	records := readCSV(t, file.Data)
	require.Len(t, records, 2)
	assert.Equal(t, domain.RecommendationCSVHeaders(), records[0])
	assert.Equal(t, "N/A", records[1][1])
}

func TestExportService_ProviderError(t *testing.T) {
	boom := errors.New("boom")
	service := NewExportService(&fakeReports{err: boom}, 1, 1, zerolog.Nop())

	job, err := domain.NewExportJob(domain.ExportFormatCSV, domain.ExportTypeDistributors, false, ledgerdomain.Filter{})
	require.NoError(t, err)

	file, err := service.Export(context.Background(), job)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, file)
}

func TestExportService_CancelledContext(t *testing.T) {
	service := NewExportService(&fakeReports{report: testReport(50)}, 2, 5, zerolog.Nop())
	job, err := domain.NewExportJob(domain.ExportFormatCSV, domain.ExportTypeDistributors, false, ledgerdomain.Filter{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = service.Export(ctx, job)
	assert.ErrorIs(t, err, context.Canceled)
}

// ========================================
// Benchmarks: Export
// ========================================

func BenchmarkExportService_CSV(b *testing.B) {
	service := NewExportService(&fakeReports{report: testReport(5000)}, 4, 500, zerolog.Nop())
	job, _ := domain.NewExportJob(domain.ExportFormatCSV, domain.ExportTypeDistributors, false, ledgerdomain.Filter{})
	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_, _ = service.Export(ctx, job)
	}
}

func BenchmarkExportService_Parquet(b *testing.B) {
	service := NewExportService(&fakeReports{report: testReport(5000)}, 4, 500, zerolog.Nop())
	job, _ := domain.NewExportJob(domain.ExportFormatParquet, domain.ExportTypeDistributors, false, ledgerdomain.Filter{})
	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_, _ = service.Export(ctx, job)
	}
}
