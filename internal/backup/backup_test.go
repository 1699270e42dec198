package backup

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"idle_garage/internal/catalog"
	"idle_garage/internal/game"
	"idle_garage/internal/repository"

	"github.com/klauspost/compress/zstd"
)

var t0 = time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

func openStore(t *testing.T) *repository.SQLitePlayerRepository {
	t.Helper()
	db, err := repository.OpenSQLite(repository.MemoryDSN)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return repository.NewSQLitePlayerRepository(db)
}

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	engine := game.NewEngine(catalog.Default(), nil)

	src := openStore(t)
	for i, name := range []string{"A", "B", "C"} {
		p := engine.NewPlayer(int64(i+1), name, t0)
		p.GameCoins = int64(1000 * (i + 1))
		if _, err := src.Create(ctx, &p); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	var buf bytes.Buffer
	n, err := Export(ctx, src, &buf, t0)
	if err != nil || n != 3 {
		t.Fatalf("export = %d, %v", n, err)
	}

	dst := openStore(t)
	existing := engine.NewPlayer(2, "Old", t0)
	if _, err := dst.Create(ctx, &existing); err != nil {
		t.Fatalf("seed dst: %v", err)
	}

	st, err := Import(ctx, bytes.NewReader(buf.Bytes()), dst, false)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if st.Created != 2 || st.Skipped != 1 || st.Overwritten != 0 {
		t.Fatalf("stats = %+v", st)
	}
	if p, _ := dst.Get(ctx, 2); p.FirstName != "Old" {
		t.Fatalf("existing player overwritten without overwrite flag")
	}

	st, err = Import(ctx, bytes.NewReader(buf.Bytes()), dst, true)
	if err != nil || st.Overwritten != 3 {
		t.Fatalf("overwrite import = %+v, %v", st, err)
	}
	p, err := dst.Get(ctx, 2)
	if err != nil || p.FirstName != "B" || p.GameCoins != 2000 || len(p.Buildings) != 5 {
		t.Fatalf("restored = %+v, %v", p, err)
	}
}

func TestImportRejectsForeignData(t *testing.T) {
	dst := openStore(t)
	ctx := context.Background()

	if _, err := Import(ctx, bytes.NewReader([]byte("not zstd at all")), dst, false); err == nil {
		t.Fatalf("garbage accepted")
	}

	var buf bytes.Buffer
	enc, _ := zstd.NewWriter(&buf)
	_, _ = enc.Write([]byte(`{"version":99}` + "\n"))
	_ = enc.Close()
	if _, err := Import(ctx, &buf, dst, false); !errors.Is(err, ErrBadHeader) {
		t.Fatalf("err = %v; want ErrBadHeader", err)
	}
}
