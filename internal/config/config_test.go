package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PhysioAlign/internal/model"
)

const sampleYAML = `
join: outer
output_dir: out
subjects:
  - id: Patient_1
    cgm_file: raw/p1/glucose.csv
    ecg_files:
      - raw/p1/ecg_a.csv
      - raw/p1/ecg_b.csv
  - id: Patient_2
    cgm_file: raw/p2/glucose.csv
    ecg_files:
      - raw/p2/ecg.csv
    output_dir: custom/p2
database:
  sqlite_path: data/runs.db
`

func load(t *testing.T, content string) (*Config, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return Load(path)
}

func TestLoad(t *testing.T) {
	cfg, err := load(t, sampleYAML)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, model.JoinOuter, cfg.JoinMode())
	assert.Equal(t, "data/runs.db", cfg.Database.SQLitePath)
	require.Len(t, cfg.Subjects, 2)
	assert.Equal(t, filepath.Join("out", "Patient_1"), cfg.Subjects[0].OutputDir,
		"missing subject output_dir defaults under the global one")
	assert.Equal(t, "custom/p2", cfg.Subjects[1].OutputDir)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(t, `
subjects:
  - id: P1
    cgm_file: g.csv
    ecg_files: [e.csv]
`)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, model.JoinInner, cfg.JoinMode())
	assert.Equal(t, "", cfg.Database.SQLitePath)
	assert.Equal(t, "", cfg.Schedule.Cron)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("JOIN_MODE", "outer")
	cfg, err := load(t, `
subjects:
  - id: P1
    cgm_file: g.csv
    ecg_files: [e.csv]
`)
	require.NoError(t, err)
	assert.Equal(t, "outer", cfg.Join)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{"no subjects", `join: inner`, "at least one subject"},
		{"bad join", "join: sideways\nsubjects:\n  - id: P1\n    cgm_file: g.csv\n    ecg_files: [e.csv]", "join"},
		{"missing id", "subjects:\n  - cgm_file: g.csv\n    ecg_files: [e.csv]", "id is required"},
		{"missing cgm", "subjects:\n  - id: P1\n    ecg_files: [e.csv]", "cgm_file"},
		{"no ecg files", "subjects:\n  - id: P1\n    cgm_file: g.csv", "ecg file"},
		{"duplicate id", "subjects:\n  - id: P1\n    cgm_file: g.csv\n    ecg_files: [e.csv]\n  - id: P1\n    cgm_file: g2.csv\n    ecg_files: [e2.csv]", "duplicate"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := load(t, tc.yaml)
			require.NoError(t, err)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
