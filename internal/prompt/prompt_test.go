package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"projanalyzer/internal/model"
)

func TestBuild(t *testing.T) {
	mapping := model.NewAnalysisMapping()
	mapping.Add("pkg/b.py", "print(2)")
	mapping.Add("a.py", "print(1)  \n")

	expected := "Analyze the Python project 'Demo' and provide:\n" +
		"1. A comprehensive project summary.\n" +
		"2. A detailed README.md file.\n" +
		"3. Key architectural insights and potential improvements.\n\n" +
		"### pkg/b.py\nprint(2)" +
		"\n\n" +
		"### a.py\nprint(1)  \n"

	assert.Equal(t, expected, Build(mapping, "Demo", ""))
}

func TestBuildIsDeterministic(t *testing.T) {
	build := func() string {
		mapping := model.NewAnalysisMapping()
		for _, name := range []string{"z.py", "m.py", "a.py"} {
			mapping.Add(name, name+" body")
		}
		return Build(mapping, "Same", "Python")
	}

	assert.Equal(t, build(), build())
}

func TestBuildPassesNameVerbatim(t *testing.T) {
	got := Build(model.NewAnalysisMapping(), "it's/odd\nname", "Ruby")
	assert.Equal(t, Preamble("it's/odd\nname", "Ruby"), got)
	assert.Contains(t, got, "Analyze the Ruby project 'it's/odd\nname' and provide:")
}
