package videostorage

import (
	"errors"

	"github.com/tauraamui/dragonpano/pkg/log"
	"github.com/tauraamui/dragonpano/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const SQLITE_INMEM_FILE_PATH = "file::memory:?cache=shared"

// SampleFrame is one encoded artifact row.
type SampleFrame struct {
	SampleIndex int `gorm:"primaryKey;autoIncrement:false"`
	Ext         string
	Data        []byte
}

type sqliteStore struct {
	db    *gorm.DB
	ext   string
	codec Codec
}

// NewSQLiteStore keeps every artifact as a row of a single sqlite
// database file, re-saving an index replaces its row.
func NewSQLiteStore(path, ext string, codec Codec) (Store, error) {
	db, err := openDBConnection(path)
	if err != nil {
		return nil, xerror.Errorf("unable to open artifact db connection: %w", err)
	}

	if err := db.AutoMigrate(&SampleFrame{}); err != nil {
		return nil, xerror.Errorf("unable to run automigrations: %w", err)
	}

	return &sqliteStore{db: db, ext: ext, codec: codec}, nil
}

var openDBConnection = func(path string) (*gorm.DB, error) {
	silent := logger.New(nil, logger.Config{LogLevel: logger.Silent})
	return gorm.Open(sqlite.Open(path), &gorm.Config{Logger: silent})
}

func (s *sqliteStore) Save(index int, frame videoframe.Frame) error {
	data, err := s.codec.Encode(s.ext, frame)
	if err != nil {
		return xerror.Errorf("unable to encode sample %d: %w", index, err)
	}

	row := SampleFrame{SampleIndex: index, Ext: s.ext, Data: data}
	if err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
		return xerror.Errorf("unable to store sample %d: %w", index, err)
	}
	log.Debug("Stored sample artifact: %s", ArtifactName(index, s.ext))
	return nil
}

func (s *sqliteStore) Load(index int) (videoframe.Frame, error) {
	row := SampleFrame{}
	if err := s.db.First(&row, "sample_index = ?", index).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xerror.Errorf("%w: %s", ErrArtifactMissing, ArtifactName(index, s.ext))
		}
		return nil, xerror.Errorf("unable to load sample %d: %w", index, err)
	}
	return s.codec.Decode(row.Data)
}

func (s *sqliteStore) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
