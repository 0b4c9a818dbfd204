package exclusion

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"
)

func TestParsePattern(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "test", "*test*"},
		{"leading_star", "*test", "*test*"},
		{"trailing_star", "test*", "*test*"},
		{"both_stars", "**test**", "*test*"},
		{"inner_star_kept", "a*b", "*a*b*"},
		{"whitespace", "  dev  ", "*dev*"},
		{"empty", "", ""},
		{"only_stars", "***", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParsePattern(tc.input).String())
		})
	}
}

func TestPattern_Matches(t *testing.T) {
	p := ParsePattern("*Test*")
	assert.True(t, p.Matches("vm-test-01"))
	assert.True(t, p.Matches("TESTSERVER"))
	assert.False(t, p.Matches("prod-db"))
	assert.False(t, p.Matches(""))

	var zero Pattern
	assert.True(t, zero.Empty())
	assert.False(t, zero.Matches("anything"))
}

func TestBuild_VMRules(t *testing.T) {
	list := strings.Join([]string{
		"web01",
		"db01,vm-101",
		"",
		"   ",
		"# comment",
		" app01 , vm-200 ",
	}, "\n")

	idx, err := Build(Options{VMList: strings.NewReader(list)})
	require.NoError(t, err)
	assert.Equal(t, 3, idx.VMRuleCount())

	// Rule without id matches any id.
	assert.True(t, idx.VMExcluded("web01", "vm-1"))
	assert.True(t, idx.VMExcluded("WEB01", ""))

	// Rule with id matches only that id.
	assert.True(t, idx.VMExcluded("db01", "vm-101"))
	assert.False(t, idx.VMExcluded("db01", "vm-999"))

	assert.True(t, idx.VMExcluded("app01", "VM-200"), "id comparison is case-insensitive")
	assert.False(t, idx.VMExcluded("other", "vm-101"))
}

func TestBuild_DuplicateVMRuleFirstWins(t *testing.T) {
	single, err := Build(Options{VMList: strings.NewReader("db01,vm-101\n")})
	require.NoError(t, err)
	dupSameID, err := Build(Options{VMList: strings.NewReader("db01,vm-101\ndb01,vm-101\n")})
	require.NoError(t, err)
	dupOtherID, err := Build(Options{VMList: strings.NewReader("db01,vm-101\ndb01\n")})
	require.NoError(t, err)

	lookups := []struct{ name, id string }{
		{"db01", "vm-101"},
		{"db01", "vm-102"},
		{"db01", ""},
		{"db02", "vm-101"},
	}
	for _, p := range lookups {
		want := single.VMExcluded(p.name, p.id)
		assert.Equal(t, want, dupSameID.VMExcluded(p.name, p.id), "same-id duplicate %v", p)
		assert.Equal(t, want, dupOtherID.VMExcluded(p.name, p.id), "other-id duplicate %v", p)
	}
	assert.Equal(t, 1, dupOtherID.VMRuleCount())
}

func TestBuild_CustomSeparator(t *testing.T) {
	idx, err := Build(Options{VMList: strings.NewReader("db01;vm-101\n"), Separator: ';'})
	require.NoError(t, err)
	assert.True(t, idx.VMExcluded("db01", "vm-101"))
	assert.False(t, idx.VMExcluded("db01", "vm-102"))
}

func TestBuild_JobList(t *testing.T) {
	idx, err := Build(Options{JobList: strings.NewReader("Nightly SQL\n\n  Weekly Files  \n")})
	require.NoError(t, err)
	assert.Equal(t, 2, idx.JobRuleCount())
	assert.True(t, idx.JobExcludedByName("Nightly SQL"))
	assert.True(t, idx.JobExcludedByName("weekly files"))
	assert.False(t, idx.JobExcludedByName("Nightly"), "job list is exact, not substring")
}

func TestIndex_PatternsAreAdditive(t *testing.T) {
	idx, err := Build(Options{
		VMPattern:  "*test*",
		VMList:     strings.NewReader("prod01\n"),
		JobPattern: "decommissioned",
		JobList:    strings.NewReader("Legacy Job\n"),
	})
	require.NoError(t, err)

	assert.True(t, idx.ExcludesVM("prod01", "x"), "list match")
	assert.True(t, idx.ExcludesVM("vm-test-1", "x"), "pattern match")
	assert.False(t, idx.ExcludesVM("prod02", "x"))

	assert.True(t, idx.ExcludesJob("Legacy Job", ""), "list match")
	assert.True(t, idx.ExcludesJob("Any", "Decommissioned 2024"), "pattern on description")
	assert.False(t, idx.ExcludesJob("Any", ""), "absent description never matches")
	assert.Equal(t, "*test*", idx.VMPattern().String())
	assert.Equal(t, "*decommissioned*", idx.JobPattern().String())
}

func TestLoadFile_MissingIsSoft(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	r := LoadFile(filepath.Join(t.TempDir(), "missing.txt"), zap.New(core))
	assert.Nil(t, r)
	assert.Equal(t, 1, logs.Len())

	idx, err := Build(Options{VMList: r, VMPattern: "dev"})
	require.NoError(t, err)
	assert.True(t, idx.ExcludesVM("dev-01", ""), "pattern exclusion still applies")
}

func TestLoadFile_Reads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vms.txt")
	require.NoError(t, os.WriteFile(path, []byte("web01\n"), 0o600))

	r := LoadFile(path, zap.NewNop())
	require.NotNil(t, r)
	idx, err := Build(Options{VMList: r})
	require.NoError(t, err)
	assert.True(t, idx.VMExcluded("web01", "any"))

	assert.Nil(t, LoadFile("", zap.NewNop()))
}
