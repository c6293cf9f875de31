package history

import (
	"bytes"
	"context"
	"fmt"
	"slices"

	"github.com/lox/headsup/internal/fileutil"
	"github.com/lox/headsup/internal/phh"
)

// ExportPHH writes the n most recent hands, oldest first, to path as a .phhs
// document and returns how many were written.
func (s *Store) ExportPHH(ctx context.Context, path string, n int, session string) (int, error) {
	hands, err := s.Recent(ctx, n, session)
	if err != nil {
		return 0, err
	}
	slices.Reverse(hands)

	histories := make([]*phh.HandHistory, 0, len(hands))
	for _, h := range hands {
		histories = append(histories, phh.FromResult(h.ID, h.Session, h.SmallBlind, h.BigBlind, h.Result(), h.PlayedAt))
	}

	var buf bytes.Buffer
	if err := phh.EncodeAll(&buf, histories); err != nil {
		return 0, err
	}
	if err := fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return 0, fmt.Errorf("history: export %s: %w", path, err)
	}
	s.logger.Info("exported hands", "path", path, "hands", len(histories))
	return len(histories), nil
}
