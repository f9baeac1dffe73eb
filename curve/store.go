package curve

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/uyouii/agedepth-algorithms/common"
	"github.com/uyouii/agedepth-algorithms/model"
	"github.com/uyouii/agedepth-algorithms/utils"
)

// Store loads calibration curves from a directory and caches them. Loaded
// curves are immutable, so a Store is safe for concurrent use.
type Store struct {
	fsys fs.FS

	mu    sync.Mutex
	cache map[string]*Curve
}

func NewStore(fsys fs.FS) *Store {
	return &Store{
		fsys:  fsys,
		cache: map[string]*Curve{},
	}
}

func NewDirStore(dir string) *Store {
	return NewStore(os.DirFS(dir))
}

// Load returns one of the standard curves or the user mixed curve.
func (s *Store) Load(ctx context.Context, id model.CurveID) (*Curve, error) {
	name, err := fileName(id)
	if err != nil {
		return nil, err
	}
	return s.LoadCustom(ctx, name)
}

// LoadCustom reads a curve file by name. Files ending in .csv use FormatCSV.
func (s *Store) LoadCustom(ctx context.Context, name string) (*Curve, error) {
	if c, ok := s.cached(name); ok {
		return c, nil
	}

	logger := utils.GetLogger(ctx)

	f, err := s.fsys.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Error("calibration curve not found", zap.String("name", name))
			return nil, &common.CurveNotFoundError{ID: name}
		}
		return nil, pkgerrors.Wrapf(err, "open curve %s", name)
	}
	defer f.Close()

	c, err := Read(f, name, FormatOf(name))
	if err != nil {
		logger.Error("read calibration curve failed", zap.String("name", name), zap.Error(err))
		return nil, err
	}

	logger.Info("loaded calibration curve", zap.String("name", name), zap.Int("rows", c.Len()),
		zap.Float64("min_cal_bp", c.MinAge()), zap.Float64("max_cal_bp", c.MaxAge()))
	return s.store(name, c), nil
}

func (s *Store) LoadPostbomb(ctx context.Context, id PostbombID) (*Curve, error) {
	if err := id.validate(); err != nil {
		return nil, err
	}
	return s.LoadCustom(ctx, postbombFiles[id])
}

// SplicePostbomb loads postbomb curve id and splices it into base.
func (s *Store) SplicePostbomb(ctx context.Context, base *Curve, id PostbombID) (*Curve, error) {
	bomb, err := s.LoadPostbomb(ctx, id)
	if err != nil {
		return nil, err
	}
	return SplicePostbomb(base, bomb)
}

// Resolve loads curve id, with the postbomb curve spliced in when it belongs
// to that curve's hemisphere. The spliced curve is cached too.
func (s *Store) Resolve(ctx context.Context, id model.CurveID, postbomb PostbombID) (*Curve, error) {
	if postbomb != PostbombNone {
		if err := postbomb.validate(); err != nil {
			return nil, err
		}
	}
	if !postbomb.SplicesInto(id) {
		return s.Load(ctx, id)
	}

	key := id.String() + "+" + postbomb.String()
	if c, ok := s.cached(key); ok {
		return c, nil
	}
	base, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	spliced, err := s.SplicePostbomb(ctx, base, postbomb)
	if err != nil {
		return nil, err
	}
	return s.store(key, spliced.withName(key)), nil
}

func (s *Store) cached(key string) (*Curve, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cache[key]
	return c, ok
}

func (s *Store) store(key string, c *Curve) *Curve {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.cache[key]; ok {
		return existing
	}
	s.cache[key] = c
	return c
}
