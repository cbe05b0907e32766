package badgerimpl

import (
	"fmt"

	"github.com/dgraph-io/badger/v2"
	"github.com/rs/zerolog"

	"github.com/onflow/icq-watcher/storage"
)

// Open opens (or creates) a badger database in dir.
func Open(dir string, log zerolog.Logger) (storage.DB, error) {
	opts := badger.
		DefaultOptions(dir).
		WithKeepL0InMemory(true).
		WithLogger(&logger{log: log.With().Str("component", "badger").Logger()})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("could not open badger db: %w", err)
	}
	return ToDB(db), nil
}

// logger adapts zerolog to the badger logging interface.
type logger struct {
	log zerolog.Logger
}

func (l *logger) Errorf(msg string, args ...interface{}) {
	l.log.Error().Msgf(msg, args...)
}

func (l *logger) Warningf(msg string, args ...interface{}) {
	l.log.Warn().Msgf(msg, args...)
}

func (l *logger) Infof(msg string, args ...interface{}) {
	l.log.Debug().Msgf(msg, args...)
}

func (l *logger) Debugf(msg string, args ...interface{}) {
	l.log.Trace().Msgf(msg, args...)
}
