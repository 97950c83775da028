package checklist

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bpkit/bpkit/internal/constitution"
)

func TestCriteriaFor_ItemCounts(t *testing.T) {
	strategic := CriteriaFor(constitution.Strategic)
	feature := CriteriaFor(constitution.Feature)

	assert.Len(t, strategic, 10)
	assert.Len(t, feature, 15)
	assert.Equal(t, "CHK001", strategic[0].ID)
	assert.Equal(t, "CHK015", feature[14].ID)
	assert.Equal(t, "Traceability", strategic[0].Category)
}

func TestCompletion(t *testing.T) {
	c := &Checklist{Items: []Item{
		{ID: "CHK001", Checked: true},
		{ID: "CHK002", Checked: false},
	}}
	assert.InDelta(t, 50.0, c.Completion(), 0.001)
	assert.Equal(t, 1, c.Remaining())

	empty := &Checklist{}
	assert.InDelta(t, 0.0, empty.Completion(), 0.001)
}

func TestRender_AndParseRoundTrip(t *testing.T) {
	now := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	c := New("company-constitution", constitution.Strategic, now)
	c.Items[0].Checked = true
	c.Items[3].Checked = true

	rendered, err := c.Render()
	require.NoError(t, err)

	assert.Contains(t, rendered, "# Quality Checklist: company-constitution")
	assert.Contains(t, rendered, "**Type**: strategic")
	assert.Contains(t, rendered, "**Generated**: 2025-03-14")
	assert.Contains(t, rendered, "## Traceability")
	assert.Contains(t, rendered, "- [x] Every principle links back to a pitch deck section")
	assert.Contains(t, rendered, "- [ ] Every principle states a testable MUST requirement")

	path := filepath.Join(t.TempDir(), "company-constitution.md")
	require.NoError(t, os.WriteFile(path, []byte(rendered), 0o644))

	parsed, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "company-constitution", parsed.ConstitutionName)
	assert.Equal(t, constitution.Strategic, parsed.Kind)
	require.Len(t, parsed.Items, 10)
	assert.True(t, parsed.Items[0].Checked)
	assert.False(t, parsed.Items[1].Checked)
	assert.InDelta(t, 20.0, parsed.Completion(), 0.001)
	assert.Equal(t, "Quality", parsed.Items[3].Category)
}

func TestParseFile_FeatureKind(t *testing.T) {
	content := strings.Join([]string{
		"# Quality Checklist: 001-booking",
		"",
		"**Constitution**: 001-booking",
		"**Type**: feature",
		"",
		"## Traceability",
		"",
		"- [X] Feature links to its strategic constitution",
		"- [ ] No circular dependencies with other features",
		"",
	}, "\n")
	path := filepath.Join(t.TempDir(), "001-booking.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, constitution.Feature, c.Kind)
	require.Len(t, c.Items, 2)
	assert.True(t, c.Items[0].Checked)
	assert.InDelta(t, 50.0, c.Completion(), 0.001)
}

func TestParseFile_Missing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "absent.md"))
	assert.Error(t, err)
}

func TestItem_Markdown(t *testing.T) {
	it := Item{Description: "Rationale is recorded for every principle"}
	assert.Equal(t, "- [ ] Rationale is recorded for every principle", it.Markdown())
	it.Checked = true
	assert.Equal(t, "- [x] Rationale is recorded for every principle", it.Markdown())
}
