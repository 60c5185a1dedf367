package infrastructure

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// utf8BOM permet aux tableurs d'ouvrir les en-têtes chinois correctement
const utf8BOM = "\ufeff"

// EncodeCSV écrit l'en-tête et les lignes dans un buffer en mémoire.
// Le writer est vidé toutes les batchSize lignes.
func EncodeCSV(header []string, rows [][]string, batchSize int) ([]byte, error) {
	if batchSize <= 0 {
		batchSize = 1000
	}

	buffer := bytes.NewBuffer(make([]byte, 0, 64*1024))
	buffer.WriteString(utf8BOM)
	writer := csv.NewWriter(buffer)

	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for i, row := range rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row %d: %w", i+1, err)
		}
		if (i+1)%batchSize == 0 {
			writer.Flush()
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
