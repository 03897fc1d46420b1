package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		path  string
		want  Dataset
		label string
	}{
		{"src/Polarstern_24_0/Polarstern_24_0_all_points.lev10", Dataset{FamilyAOD, FrequencyPoint, Level10}, "Polarstern_24_0"},
		{"Polarstern_24_0_all_points.lev15", Dataset{FamilyAOD, FrequencyPoint, Level15}, "Polarstern_24_0"},
		{"Polarstern_24_0_all_points.lev20", Dataset{FamilyAOD, FrequencyPoint, Level20}, "Polarstern_24_0"},
		{"Polarstern_24_0_daily.lev15", Dataset{FamilyAOD, FrequencyDaily, Level15}, "Polarstern_24_0"},
		{"Polarstern_24_0_daily.lev20", Dataset{FamilyAOD, FrequencyDaily, Level20}, "Polarstern_24_0"},
		{"Polarstern_24_0_series.lev15", Dataset{FamilyAOD, FrequencySeries, Level15}, "Polarstern_24_0"},
		{"Polarstern_24_0_series.lev20", Dataset{FamilyAOD, FrequencySeries, Level20}, "Polarstern_24_0"},
		{"Polarstern_24_0_all_points.ONEILL_10", Dataset{FamilySDA, FrequencyPoint, Level10}, "Polarstern_24_0"},
		{"Polarstern_24_0_all_points.ONEILL_15", Dataset{FamilySDA, FrequencyPoint, Level15}, "Polarstern_24_0"},
		{"Polarstern_24_0_all_points.ONEILL_20", Dataset{FamilySDA, FrequencyPoint, Level20}, "Polarstern_24_0"},
		{"Polarstern_24_0_daily.ONEILL_15", Dataset{FamilySDA, FrequencyDaily, Level15}, "Polarstern_24_0"},
		{"Polarstern_24_0_daily.ONEILL_20", Dataset{FamilySDA, FrequencyDaily, Level20}, "Polarstern_24_0"},
		{"Polarstern_24_0_series.ONEILL_15", Dataset{FamilySDA, FrequencySeries, Level15}, "Polarstern_24_0"},
		{"Polarstern_24_0_series.ONEILL_20", Dataset{FamilySDA, FrequencySeries, Level20}, "Polarstern_24_0"},
	}

	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			rf, ok := Classify(tc.path)
			require.True(t, ok)
			assert.Equal(t, tc.want, rf.Dataset)
			assert.Equal(t, tc.label, rf.Label)
			assert.Equal(t, tc.path, rf.Path)
		})
	}
}

func TestClassify_Unmatched(t *testing.T) {
	for _, path := range []string{
		"README.txt",
		"Polarstern_24_0_daily.lev15.csv",
		"Polarstern_24_0_daily.lev10",
		"Polarstern_24_0_series.ONEILL_10",
		"Polarstern_24_0_monthly.lev15",
	} {
		_, ok := Classify(path)
		assert.False(t, ok, path)
	}
}

func TestDatasets_FourteenCombinations(t *testing.T) {
	ds := Datasets()
	require.Len(t, ds, 14)

	seen := map[Dataset]bool{}
	for _, d := range ds {
		assert.False(t, seen[d], "duplicate %s", d)
		seen[d] = true
		assert.NotEqual(t, SchemaUnknown, d.Schema())
	}
}

func TestDataset_Selector(t *testing.T) {
	d := Dataset{FamilySDA, FrequencySeries, Level20}
	assert.Equal(t, Selector{Schema: SchemaSDASeries, Level: Level20}, d.Selector())
	assert.Equal(t, "sda_series@20", d.Selector().String())
	assert.Equal(t, "SDA/Series/20", d.String())
}
