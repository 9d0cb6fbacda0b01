package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontfamily"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

const (
	codesPerRow     = 3
	defaultStudy    = "PAWS"
	defaultGuidance = "Enter this code in the app when asked for your invitation code. Each code can be used once."
)

var ErrNoCodes = errors.New("code sheet has no codes")

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateCodeSheet(ctx context.Context, sheet CodeSheet) (io.Reader, error) {
	if len(sheet.Codes) == 0 {
		return nil, ErrNoCodes
	}

	study := strings.TrimSpace(sheet.StudyName)
	if study == "" {
		study = defaultStudy
	}
	guidance := strings.TrimSpace(sheet.Instructions)
	if guidance == "" {
		guidance = defaultGuidance
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, study+" invitation codes", props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	meta := fmt.Sprintf("%d codes", len(sheet.Codes))
	if sheet.BatchID != "" {
		meta += " | batch " + sheet.BatchID
	}
	if !sheet.GeneratedAt.IsZero() {
		meta += " | generated " + sheet.GeneratedAt.UTC().Format("2006-01-02 15:04 MST")
	}
	m.AddRow(8, text.NewCol(12, meta, props.Text{Size: 9}))
	m.AddRow(14, text.NewCol(12, guidance, props.Text{Size: 9, Top: 2}))

	for start := 0; start < len(sheet.Codes); start += codesPerRow {
		m.AddRow(18, codeCells(sheet.Codes[start:min(start+codesPerRow, len(sheet.Codes))])...)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}

func codeCells(codes []string) []core.Col {
	cellStyle := &props.Cell{BorderType: border.Full, BorderThickness: 0.2}
	cols := make([]core.Col, 0, codesPerRow)
	for _, code := range codes {
		cols = append(cols, col.New(12/codesPerRow).Add(
			text.New(code, props.Text{
				Family: fontfamily.Courier,
				Size:   14,
				Style:  fontstyle.Bold,
				Align:  align.Center,
				Top:    5,
			}),
		).WithStyle(cellStyle))
	}
	for len(cols) < codesPerRow {
		cols = append(cols, col.New(12/codesPerRow))
	}
	return cols
}
