package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/klauspost/compress/zstd"
	"github.com/nathoo/dotiam/types"
	bbolt "go.etcd.io/bbolt"
)

var (
	bucketRuns = []byte("runs")
	bucketMeta = []byte("meta")
)

// BoltStorage keeps zstd-compressed run blobs in one bucket and their
// listing metadata in another.
type BoltStorage struct {
	bolt   *bbolt.DB
	logger *slog.Logger
	enc    *zstd.Encoder
	dec    *zstd.Decoder
}

// Ensure BoltStorage implements Storage interface
var _ Storage = (*BoltStorage)(nil)

// NewBoltStorage opens or creates a bbolt database file and ensures all
// buckets exist.
func NewBoltStorage(path string, logger *slog.Logger) (*BoltStorage, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("bolt: open %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketRuns, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("bolt: create buckets: %w", err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		db.Close()
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		db.Close()
		return nil, err
	}

	return &BoltStorage{bolt: db, logger: logger, enc: enc, dec: dec}, nil
}

func (b *BoltStorage) Ping(ctx context.Context) error {
	return b.bolt.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketRuns) == nil {
			return fmt.Errorf("bolt: missing runs bucket")
		}
		return nil
	})
}

func (b *BoltStorage) Close() error {
	b.dec.Close()
	_ = b.enc.Close()
	return b.bolt.Close()
}

func (b *BoltStorage) CreateRun(ctx context.Context, id string, gs *types.GameState) error {
	return b.put(id, gs, true)
}

func (b *BoltStorage) SaveRun(ctx context.Context, id string, gs *types.GameState) error {
	return b.put(id, gs, false)
}

func (b *BoltStorage) put(id string, gs *types.GameState, create bool) error {
	data, err := encodeRun(gs)
	if err != nil {
		return err
	}
	meta, err := json.Marshal(infoFor(id, gs, now()))
	if err != nil {
		return fmt.Errorf("bolt: encode run info: %w", err)
	}
	blob := b.enc.EncodeAll(data, nil)

	err = b.bolt.Update(func(tx *bbolt.Tx) error {
		runs := tx.Bucket(bucketRuns)
		exists := runs.Get([]byte(id)) != nil
		if create && exists {
			return ErrRunExists
		}
		if !create && !exists {
			return ErrRunNotFound
		}
		if err := runs.Put([]byte(id), blob); err != nil {
			return err
		}
		return tx.Bucket(bucketMeta).Put([]byte(id), meta)
	})
	if err != nil && err != ErrRunExists && err != ErrRunNotFound {
		b.logger.Error("Failed to save run", "run_id", id, "error", err)
		return fmt.Errorf("bolt: save run %s: %w", id, err)
	}
	return err
}

func (b *BoltStorage) LoadRun(ctx context.Context, id string) (*types.GameState, error) {
	var blob []byte
	err := b.bolt.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketRuns).Get([]byte(id))
		if v == nil {
			return ErrRunNotFound
		}
		// Values are only valid inside the transaction.
		blob = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	data, err := b.dec.DecodeAll(blob, nil)
	if err != nil {
		b.logger.Error("Failed to decompress run", "run_id", id, "error", err)
		return nil, fmt.Errorf("bolt: decompress run %s: %w", id, err)
	}
	return decodeRun(data)
}

func (b *BoltStorage) DeleteRun(ctx context.Context, id string) error {
	return b.bolt.Update(func(tx *bbolt.Tx) error {
		runs := tx.Bucket(bucketRuns)
		if runs.Get([]byte(id)) == nil {
			return ErrRunNotFound
		}
		if err := runs.Delete([]byte(id)); err != nil {
			return err
		}
		return tx.Bucket(bucketMeta).Delete([]byte(id))
	})
}

func (b *BoltStorage) ListRuns(ctx context.Context) ([]RunInfo, error) {
	var runs []RunInfo
	err := b.bolt.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketMeta).ForEach(func(k, v []byte) error {
			var info RunInfo
			if err := json.Unmarshal(v, &info); err != nil {
				return fmt.Errorf("bolt: decode run info %s: %w", k, err)
			}
			runs = append(runs, info)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sortRuns(runs)
	return runs, nil
}
