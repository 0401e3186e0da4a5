// Package campaign loads campaign files: descriptive metadata plus the
// ordered rule set the topic classifier is built from.
package campaign

import (
	"embed"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"campaignpulse/internal/classifier"
)

//go:embed campaigns/*.yaml
var campaignFS embed.FS

// DefaultFile is the embedded campaign used when none is configured.
const DefaultFile = "campaigns/bon-yurt-morenitas.yaml"

const dateLayout = "2006-01-02"

var ErrInvalidCampaign = errors.New("invalid campaign")

type Metadata struct {
	CampaignName string   `koanf:"campaign_name" json:"campaign_name"`
	Product      string   `koanf:"product" json:"product"`
	Categories   []string `koanf:"categories" json:"categories"`
	Version      string   `koanf:"version" json:"version"`
	LastUpdated  string   `koanf:"last_updated" json:"last_updated"`
}

// Clone returns a copy that shares nothing with m.
func (m Metadata) Clone() Metadata {
	m.Categories = append([]string(nil), m.Categories...)
	return m
}

type Campaign struct {
	Metadata Metadata           `koanf:"metadata"`
	Rules    classifier.RuleSet `koanf:"classifier"`
}

// Load reads a campaign file from disk.
func Load(path string) (*Campaign, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load campaign %s: %w", path, err)
	}
	return decode(k)
}

// Default returns the embedded Bon Yurt Morenitas campaign.
func Default() (*Campaign, error) {
	data, err := campaignFS.ReadFile(DefaultFile)
	if err != nil {
		return nil, err
	}

	k := koanf.New(".")
	if err := k.Load(embedded(data), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load embedded campaign: %w", err)
	}
	return decode(k)
}

// LoadOrDefault loads path, or the embedded campaign when path is empty.
func LoadOrDefault(path string) (*Campaign, error) {
	if path == "" {
		return Default()
	}
	return Load(path)
}

func decode(k *koanf.Koanf) (*Campaign, error) {
	c := &Campaign{}
	if err := k.Unmarshal("", c); err != nil {
		return nil, fmt.Errorf("decode campaign: %w", err)
	}
	return c, nil
}

// Engine builds the classifier engine for the campaign's rule set.
func (c *Campaign) Engine(opts ...classifier.Option) (*classifier.Engine, error) {
	return classifier.New(c.Rules, opts...)
}

// Validate checks the metadata and that the declared categories are exactly
// the topics the rule set can produce.
func (c *Campaign) Validate() error {
	if c.Metadata.CampaignName == "" {
		return fmt.Errorf("%w: campaign_name is required", ErrInvalidCampaign)
	}
	if c.Metadata.LastUpdated != "" {
		if _, err := time.Parse(dateLayout, c.Metadata.LastUpdated); err != nil {
			return fmt.Errorf("%w: last_updated %q is not YYYY-MM-DD", ErrInvalidCampaign, c.Metadata.LastUpdated)
		}
	}

	engine, err := c.Engine()
	if err != nil {
		return err
	}

	declared := append([]string(nil), c.Metadata.Categories...)
	produced := make([]string, 0, len(engine.Topics()))
	for _, t := range engine.Topics() {
		produced = append(produced, string(t))
	}
	sort.Strings(declared)
	sort.Strings(produced)

	if !equal(declared, produced) {
		return fmt.Errorf("%w: categories %v do not match rule topics %v", ErrInvalidCampaign, declared, produced)
	}
	return nil
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// embedded serves an in-memory YAML document to koanf.
type embedded []byte

func (e embedded) ReadBytes() ([]byte, error) {
	return e, nil
}

func (e embedded) Read() (map[string]any, error) {
	return nil, errors.New("embedded provider does not support Read()")
}
