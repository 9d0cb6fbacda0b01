package pdf

import (
	"context"
	"io"
	"time"
)

// CodeSheet is a printable list of invitation codes handed out to study
// participants.
type CodeSheet struct {
	StudyName    string
	BatchID      string
	GeneratedAt  time.Time
	Instructions string
	Codes        []string
}

type Provider interface {
	GenerateCodeSheet(ctx context.Context, sheet CodeSheet) (io.Reader, error)
}

type NoOpProvider struct{}

func (p *NoOpProvider) GenerateCodeSheet(ctx context.Context, sheet CodeSheet) (io.Reader, error) {
	return nil, nil
}
