package sheets

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// Section 이름이 붙은 시세표 한 구역(시트 한 장)의 셀 데이터입니다.
// 빈 셀은 빈 문자열로 표현됩니다.
type Section struct {
	Name string
	Rows [][]string
}

// ErrNoSections 데이터 소스에서 읽을 수 있는 구역이 하나도 없을 때 반환됩니다.
var ErrNoSections = errors.New("sheets: no sections available")

// Source 시세표 데이터 소스 추상화입니다.
// 구역 이름 목록을 조회한 뒤 구역별로 셀 범위를 읽습니다.
type Source interface {
	// SectionNames 시트(구역) 이름 목록을 반환합니다.
	SectionNames(ctx context.Context) ([]string, error)
	// Rows 지정한 구역의 전체 셀 데이터를 반환합니다.
	Rows(ctx context.Context, section string) ([][]string, error)
}

// FetchAll 모든 구역을 읽어 Section 목록으로 반환합니다.
// 구역 간 순서 의존이 없으므로 구역별 조회는 병렬로 수행합니다.
// 결과 순서는 구역 이름 목록의 순서를 따릅니다.
func FetchAll(ctx context.Context, src Source) ([]Section, error) {
	names, err := src.SectionNames(ctx)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, ErrNoSections
	}

	sections := make([]Section, len(names))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			rows, err := src.Rows(gctx, name)
			if err != nil {
				return err
			}
			sections[i] = Section{Name: name, Rows: rows}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sections, nil
}
