// Package backup exports and imports player documents as zstd-compressed JSON
// lines, one player per line, preceded by a header line.
package backup

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"idle_garage/internal/domain"

	"github.com/klauspost/compress/zstd"
)

const FormatVersion = 1

var ErrBadHeader = errors.New("backup: bad header")

type Header struct {
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
}

// Source is what Export reads from.
type Source interface {
	Each(ctx context.Context, fn func(*domain.Player) error) error
}

// Sink is what Import writes to.
type Sink interface {
	Create(ctx context.Context, p *domain.Player) (bool, error)
	SaveFields(ctx context.Context, p *domain.Player, fields domain.FieldSet) error
}

// Export writes every player of src to w and returns how many were written.
func Export(ctx context.Context, src Source, w io.Writer, now time.Time) (int, error) {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return 0, err
	}
	bw := bufio.NewWriterSize(enc, 128*1024)
	je := json.NewEncoder(bw)

	if err := je.Encode(Header{Version: FormatVersion, CreatedAt: now.UTC()}); err != nil {
		enc.Close()
		return 0, err
	}

	n := 0
	err = src.Each(ctx, func(p *domain.Player) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		n++
		return je.Encode(p)
	})
	if err != nil {
		enc.Close()
		return n, fmt.Errorf("export players: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return n, err
	}
	return n, enc.Close()
}

// ImportStats counts what Import did.
type ImportStats struct {
	Created     int `json:"created"`
	Overwritten int `json:"overwritten"`
	Skipped     int `json:"skipped"`
}

// Import reads a backup from r. Existing players are skipped unless overwrite
// is set, in which case the whole document is replaced.
func Import(ctx context.Context, r io.Reader, dst Sink, overwrite bool) (ImportStats, error) {
	var st ImportStats

	dec, err := zstd.NewReader(r)
	if err != nil {
		return st, err
	}
	defer dec.Close()

	jd := json.NewDecoder(bufio.NewReaderSize(dec, 128*1024))

	var h Header
	if err := jd.Decode(&h); err != nil {
		return st, fmt.Errorf("%w: %v", ErrBadHeader, err)
	}
	if h.Version != FormatVersion {
		return st, fmt.Errorf("%w: version %d", ErrBadHeader, h.Version)
	}

	for line := 1; ; line++ {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		var p domain.Player
		if err := jd.Decode(&p); err == io.EOF {
			return st, nil
		} else if err != nil {
			return st, fmt.Errorf("player %d: %w", line, err)
		}
		if p.UserID == 0 {
			st.Skipped++
			continue
		}

		created, err := dst.Create(ctx, &p)
		if err != nil {
			return st, fmt.Errorf("create player %d: %w", p.UserID, err)
		}
		switch {
		case created:
			st.Created++
		case overwrite:
			if err := dst.SaveFields(ctx, &p, domain.FieldAll); err != nil {
				return st, fmt.Errorf("overwrite player %d: %w", p.UserID, err)
			}
			st.Overwritten++
		default:
			st.Skipped++
		}
	}
}
