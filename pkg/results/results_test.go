package results_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/resultsync/pkg/results"
)

func TestOutcomePriorityOrder(t *testing.T) {
	all := results.All()
	require.Len(t, all, 6)
	for i := 1; i < len(all); i++ {
		assert.Greater(t, all[i].Priority(), all[i-1].Priority(), "%s should outrank %s", all[i], all[i-1])
	}
	assert.Equal(t, results.NoTest, all[0])
	assert.Equal(t, results.OK, all[len(all)-1])
}

func TestOutcomeWireSpelling(t *testing.T) {
	tests := []struct {
		outcome results.Outcome
		wire    string
	}{
		{results.NoTest, "NO TEST"},
		{results.Skip, "SKIP"},
		{results.OK, "OK"},
		{results.Timeout, "TIMEOUT"},
		{results.Error, "ERROR"},
		{results.Fail, "FAIL"},
	}

	for _, tt := range tests {
		t.Run(tt.wire, func(t *testing.T) {
			assert.Equal(t, tt.wire, tt.outcome.String())

			parsed, err := results.ParseOutcome(tt.wire)
			require.NoError(t, err)
			assert.Equal(t, tt.outcome, parsed)
		})
	}
}

func TestParseOutcomeRejectsUnknown(t *testing.T) {
	for _, s := range []string{"", "NO_TEST", "ok", "PASS", "NOTEST"} {
		_, err := results.ParseOutcome(s)
		assert.Error(t, err, s)
	}
}

func TestInvalidOutcome(t *testing.T) {
	var zero results.Outcome
	assert.False(t, zero.Valid())
	assert.Equal(t, 0, zero.Priority())
	assert.Equal(t, "Outcome(0)", zero.String())

	_, err := zero.MarshalText()
	assert.Error(t, err)
}

func TestAcceptableOutcomes(t *testing.T) {
	acceptable := map[results.Outcome]bool{
		results.NoTest:  true,
		results.Skip:    true,
		results.OK:      true,
		results.Timeout: false,
		results.Error:   false,
		results.Fail:    false,
	}
	for o, want := range acceptable {
		assert.Equal(t, want, results.IsAcceptable(o), o.String())
	}
}

func TestMax(t *testing.T) {
	for _, a := range results.All() {
		for _, b := range results.All() {
			got := results.Max(a, b)
			if a.Priority() > b.Priority() {
				assert.Equal(t, a, got)
			} else {
				assert.Equal(t, b, got)
			}
		}
	}
}

func TestSetJSON(t *testing.T) {
	raw := `{"linux-x64":{"app1":"NO TEST","app2":"OK"},"macos":{"app1":"FAIL"}}`

	var set results.Set
	require.NoError(t, json.Unmarshal([]byte(raw), &set))

	o, ok := set.Get("linux-x64", "app1")
	require.True(t, ok)
	assert.Equal(t, results.NoTest, o)
	assert.Equal(t, 3, set.Len())

	out, err := json.Marshal(set)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
}

func TestSetJSONRejectsUnknownOutcome(t *testing.T) {
	var set results.Set
	err := json.Unmarshal([]byte(`{"p":{"b":"MAYBE"}}`), &set)
	assert.Error(t, err)
}

func TestSetAcceptable(t *testing.T) {
	ok := results.Set{"p": {"b1": results.OK, "b2": results.Skip}}
	assert.True(t, ok.Acceptable())
	assert.Empty(t, ok.Failures())

	failed := results.Set{"p": {"b1": results.Fail}}
	assert.False(t, failed.Acceptable())
	assert.Equal(t, []results.Entry{{Platform: "p", Build: "b1", Outcome: results.Fail}}, failed.Failures())

	assert.True(t, results.New().Acceptable())
}

func TestSetCloneIsDeep(t *testing.T) {
	orig := results.Set{"p": {"b": results.OK}}
	cp := orig.Clone()
	cp.Put("p", "b", results.Fail)
	cp.Put("q", "b", results.Skip)

	o, _ := orig.Get("p", "b")
	assert.Equal(t, results.OK, o)
	_, ok := orig.Get("q", "b")
	assert.False(t, ok)
}

func TestSetEntriesSorted(t *testing.T) {
	set := results.Set{
		"ubuntu": {"b": results.OK, "a": results.Skip},
		"centos": {"z": results.Error},
	}

	entries := set.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "centos", entries[0].Platform)
	assert.Equal(t, "a", entries[1].Build)
	assert.Equal(t, "b", entries[2].Build)

	counts := set.Counts()
	assert.Equal(t, 1, counts[results.OK])
	assert.Equal(t, 1, counts[results.Error])
}

func TestHasPlatformToken(t *testing.T) {
	set := results.Set{"linux-x64-v2": {"app1": results.OK}}
	assert.True(t, set.HasPlatformToken("linux-x64"))
	assert.True(t, set.HasPlatformToken("linux-x64-v2"))
	assert.False(t, set.HasPlatformToken("macos"))
}
