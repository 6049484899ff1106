package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/okian/healthdash/internal/domain/model"
	"github.com/okian/healthdash/pkg/metrics"
)

//go:embed seed.yaml
var defaultSeed []byte

// Memory is a fixed, in-process catalog. Its records never change after
// construction.
type Memory struct {
	records []model.ProjectRecord
}

var _ Catalog = (*Memory)(nil)

// NewMemory holds a copy of records. Records without an id are given one.
func NewMemory(records []model.ProjectRecord) *Memory {
	out := make([]model.ProjectRecord, len(records))
	for i, r := range records {
		if strings.TrimSpace(r.ID) == "" {
			r.ID = uuid.NewString()
		}
		r.RiskFactors = append([]string(nil), r.RiskFactors...)
		out[i] = r
	}
	return &Memory{records: out}
}

// LoadFile builds a Memory catalog from a YAML file with a top-level
// "projects" list.
func LoadFile(path string) (*Memory, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadSeed, path, err)
	}
	return fromKoanf(k)
}

// Default returns the catalog built from the seed compiled into the binary.
func Default() (*Memory, error) {
	return LoadBytes(defaultSeed)
}

// LoadBytes is LoadFile for YAML already in memory.
func LoadBytes(b []byte) (*Memory, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(b), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadSeed, err)
	}
	return fromKoanf(k)
}

func fromKoanf(k *koanf.Koanf) (*Memory, error) {
	var records []model.ProjectRecord
	if err := k.UnmarshalWithConf("projects", &records, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadSeed, err)
	}
	return NewMemory(records), nil
}

// List implements Catalog. Order is the seed order.
func (m *Memory) List(_ context.Context) ([]model.ProjectRecord, error) {
	start := time.Now()
	out := make([]model.ProjectRecord, len(m.records))
	for i, r := range m.records {
		r.RiskFactors = append([]string(nil), r.RiskFactors...)
		out[i] = r
	}
	metrics.RecordCatalogQuery(BackendMemory, float64(time.Since(start).Microseconds())/1000)
	return out, nil
}
