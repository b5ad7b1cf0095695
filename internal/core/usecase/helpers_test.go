package usecase

import (
	"context"
	"strconv"
	"sync"

	"valuation-service/internal/core/domain"
	"valuation-service/internal/core/port"
	"valuation-service/pkg/ml/boosting"
	"valuation-service/pkg/ml/encoding"
)

var sectors = []string{"vitacura", "las condes", "la reina", "providencia", "nunoa"}

// syntheticDataset builds a deterministic property table whose price depends
// on sector, type and area.
func syntheticDataset(name string, n, offset int) *domain.Dataset {
	header := []string{
		domain.ColumnID, domain.ColumnType, domain.ColumnSector,
		domain.ColumnNetUsableArea, domain.ColumnNetArea,
		domain.ColumnNRooms, domain.ColumnNBathroom,
		domain.ColumnLatitude, domain.ColumnLongitude, domain.ColumnPrice,
	}
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

	rows := make([][]string, 0, n)
	for i := offset; i < offset+n; i++ {
		sector := sectors[i%len(sectors)]
		typ := "departamento"
		if i%3 == 0 {
			typ = "casa"
		}
		area := 40 + float64((i*37)%160)
		rooms := 1 + float64(i%5)
		price := area * (40 + 10*float64(i%len(sectors)))
		if typ == "casa" {
			price *= 1.2
		}
		rows = append(rows, []string{
			strconv.Itoa(i), typ, sector,
			f(area), f(area + 20),
			f(rooms), f(1 + float64(i%3)),
			f(-33.4 - float64(i%7)*0.01), f(-70.55 - float64(i%5)*0.01),
			f(price),
		})
	}
	return domain.NewDataset(name, header, rows)
}

func dropColumns(ds *domain.Dataset, drop ...string) *domain.Dataset {
	skip := make(map[string]bool, len(drop))
	for _, d := range drop {
		skip[d] = true
	}
	var header []string
	var keep []int
	for j, c := range ds.Header {
		if !skip[c] {
			header = append(header, c)
			keep = append(keep, j)
		}
	}
	rows := make([][]string, len(ds.Rows))
	for i, r := range ds.Rows {
		for _, j := range keep {
			rows[i] = append(rows[i], r[j])
		}
	}
	return domain.NewDataset(ds.Name, header, rows)
}

func fastSettings() TrainingSettings {
	p := boosting.DefaultParams()
	p.NEstimators = 60
	p.LearningRate = 0.1
	p.MaxDepth = 3
	return TrainingSettings{Params: p, Remainder: "passthrough", Encoder: encoding.DefaultOptions()}
}

type memoryStore struct {
	mu      sync.Mutex
	saved   *domain.TrainedModel
	saveErr error
}

func (s *memoryStore) Save(ctx context.Context, m *domain.TrainedModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = m
	return nil
}

func (s *memoryStore) Load(ctx context.Context) (*domain.TrainedModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved == nil {
		return nil, domain.ErrArtifactNotFound
	}
	return s.saved, nil
}

func (s *memoryStore) Location() string { return "memory" }

type logEntry struct {
	level  string
	msg    string
	fields port.Fields
}

// recordingLogger collects entries from itself and all children.
type recordingLogger struct {
	mu      *sync.Mutex
	entries *[]logEntry
	base    port.Fields
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{mu: &sync.Mutex{}, entries: &[]logEntry{}, base: port.Fields{}}
}

func (l *recordingLogger) add(level, msg string, fields port.Fields) {
	merged := port.Fields{}
	for k, v := range l.base {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	l.mu.Lock()
	*l.entries = append(*l.entries, logEntry{level: level, msg: msg, fields: merged})
	l.mu.Unlock()
}

func (l *recordingLogger) Info(msg string, f port.Fields)             { l.add("info", msg, f) }
func (l *recordingLogger) Warn(msg string, f port.Fields)             { l.add("warn", msg, f) }
func (l *recordingLogger) Error(msg string, err error, f port.Fields) { l.add("error", msg, f) }
func (l *recordingLogger) Debug(msg string, f port.Fields)            { l.add("debug", msg, f) }

func (l *recordingLogger) WithFields(f port.Fields) port.LoggerPort {
	merged := port.Fields{}
	for k, v := range l.base {
		merged[k] = v
	}
	for k, v := range f {
		merged[k] = v
	}
	return &recordingLogger{mu: l.mu, entries: l.entries, base: merged}
}

func (l *recordingLogger) find(level string) []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []logEntry
	for _, e := range *l.entries {
		if e.level == level {
			out = append(out, e)
		}
	}
	return out
}
