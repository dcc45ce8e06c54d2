package corpus

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"hotel-review-rag/models"
)

// LoadCSV CSV 파일에서 리뷰 컬럼을 읽어 Document 슬라이스로 반환합니다.
// 값이 없거나 공백뿐인 행은 건너뜁니다.
func LoadCSV(path, column string) ([]*models.Document, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", models.ErrDataNotFound, path)
		}
		return nil, fmt.Errorf("코퍼스 파일 확인 실패: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("코퍼스 파일 열기 실패: %w", err)
	}
	defer f.Close()

	return Read(f, path, column)
}

// Read CSV 스트림을 읽습니다. 첫 행은 헤더로 취급합니다.
func Read(r io.Reader, source, column string) ([]*models.Document, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &models.SchemaError{Column: column, Required: []string{column}}
	}
	if err != nil {
		return nil, fmt.Errorf("CSV 헤더 읽기 실패: %w", err)
	}

	colIdx := -1
	for i, name := range header {
		// pandas로 저장한 파일은 UTF-8 BOM이 붙어있는 경우가 많음
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
			header[0] = name
		}
		if name == column {
			colIdx = i
		}
	}
	if colIdx < 0 {
		return nil, &models.SchemaError{Column: column, Required: []string{column}, Found: header}
	}

	var documents []*models.Document
	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("CSV %d행 읽기 실패: %w", row+1, err)
		}
		row++

		if colIdx >= len(record) {
			continue
		}
		text := strings.TrimSpace(record[colIdx])
		if text == "" {
			continue
		}

		documents = append(documents, &models.Document{
			ID:      fmt.Sprintf("review-%d", row),
			Content: text,
			Meta: map[string]string{
				"source": source,
				"row":    strconv.Itoa(row),
			},
		})
	}

	return documents, nil
}
