package infrastructure

import (
	"bytes"
	"fmt"

	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

// EncodeParquet écrit les lignes (structures tagguées parquet) dans un fichier Parquet en mémoire.
// parallelism est le nombre de goroutines de sérialisation utilisées par parquet-go.
func EncodeParquet[T any](rows []T, parallelism int64) ([]byte, error) {
	if parallelism <= 0 {
		parallelism = 1
	}

	var buffer bytes.Buffer
	pw, err := writer.NewParquetWriterFromWriter(&buffer, new(T), parallelism)
	if err != nil {
		return nil, fmt.Errorf("create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for i := range rows {
		if err := pw.Write(rows[i]); err != nil {
			return nil, fmt.Errorf("write parquet row %d: %w", i+1, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return nil, fmt.Errorf("finalize parquet: %w", err)
	}
	return buffer.Bytes(), nil
}
