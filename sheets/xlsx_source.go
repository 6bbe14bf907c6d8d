package sheets

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// XLSXSource 로컬 엑셀 파일을 시세표 소스로 사용하는 구현입니다.
// 오프라인 운영과 테스트 픽스처 용도입니다.
type XLSXSource struct {
	path string
}

// NewXLSXSource 새로운 엑셀 파일 소스를 생성합니다.
func NewXLSXSource(path string) *XLSXSource {
	return &XLSXSource{path: path}
}

// SectionNames 엑셀 파일의 시트 이름 목록을 반환합니다.
func (s *XLSXSource) SectionNames(ctx context.Context) ([]string, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", s.path, err)
	}
	defer f.Close()

	return f.GetSheetList(), nil
}

// Rows 지정한 시트의 전체 셀 데이터를 반환합니다.
func (s *XLSXSource) Rows(ctx context.Context, section string) ([][]string, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", s.path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(section)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", section, err)
	}
	return rows, nil
}
