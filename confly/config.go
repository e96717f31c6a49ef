package confly

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// PathConfig groups the filesystem locations a run reads from and writes
// to.
type PathConfig struct {
	DirProject string `json:"dir_project"`
	DirOutput  string `json:"dir_output"`
	FilePTable string `json:"file_ptable"`
	FileInput  string `json:"file_input"`
}

// PRNGConfig seeds the deterministic engine. Engine is decoded but not
// read: the engine is always MT19937.
type PRNGConfig struct {
	Engine string `json:"engine"`
	Seed   int64  `json:"seed"`
	Test   uint64 `json:"test"`
}

// NoiseConfig is the configuration's noise block. DPF_mu, DPF_b and
// DPG_eps become NoiseParams (see ResponseNoise); the Cell-Key parameters
// CK_D, CK_var and CK_js are decoded but not read by this module.
type NoiseConfig struct {
	DPFMu  float64 `json:"DPF_mu"`
	DPFB   float64 `json:"DPF_b"`
	DPGEps float64 `json:"DPG_eps"`
	CKD    float64 `json:"CK_D"`
	CKVar  float64 `json:"CK_var"`
	CKJS   float64 `json:"CK_js"`
}

// MicroColumnConfig describes one field of the microdata schema. Column
// names are not carried in the file; they are synthesized positionally at
// load time as "col<i>".
type MicroColumnConfig struct {
	Type string `json:"type"`
	Cube bool   `json:"cube"`
}

// Config is the full run configuration, decoded from the JSON document.
// Column 0 (the record id) is implicit and is not listed under "micro";
// every entry there becomes schema column i+1.
type Config struct {
	Path     PathConfig          `json:"path"`
	Machines []string            `json:"machines"`
	Rate     float64             `json:"rate"`
	Size     uint64              `json:"size"`
	Begin    int64               `json:"begin"`
	PRNG     PRNGConfig          `json:"prng"`
	Noise    NoiseConfig         `json:"noise"`
	Micro    []MicroColumnConfig `json:"micro"`
}

// LoadConfig reads and decodes the JSON configuration at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigMissingOrMalformed, err)
	}

	var cfg Config
	if err := jsonAPI.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigMissingOrMalformed, err)
	}
	if len(cfg.Micro) == 0 {
		return nil, fmt.Errorf("%w: micro schema is empty", ErrConfigMissingOrMalformed)
	}
	return &cfg, nil
}

// Schema builds the runtime Schema from the configuration's micro array,
// prepending the implicit record-id column 0.
func (c *Config) Schema() (Schema, error) {
	schema := make(Schema, len(c.Micro)+1)
	schema[0] = Column{Name: "rowid", Type: Long}
	for i, mc := range c.Micro {
		t, err := ParseColumnType(mc.Type)
		if err != nil {
			return nil, err
		}
		schema[i+1] = Column{Name: fmt.Sprintf("col%d", i+1), Type: t, Cube: mc.Cube}
	}
	return schema, nil
}

// ResponseNoise converts the configuration's noise block into the
// NoiseParams the Response accumulator consumes.
func (c *Config) ResponseNoise() NoiseParams {
	return NoiseParams{
		LaplaceMu:  c.Noise.DPFMu,
		LaplaceB:   c.Noise.DPFB,
		GeometricE: c.Noise.DPGEps,
	}
}
