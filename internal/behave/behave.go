package behave

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/programme-lv/speedwar/internal/contest"
	"github.com/programme-lv/speedwar/internal/tester"
)

// SpecRequest represents a request block inside a scenario entry. Exactly
// one of Dir and Archive is set; both are relative to the behaviour file.
type SpecRequest struct {
	Problem int    `toml:"problem"`
	Lang    string `toml:"lang"`
	Dir     string `toml:"dir"`
	Archive string `toml:"archive"`
}

// SpecExpect describes the expected judging result
type SpecExpect struct {
	Result        string `toml:"result"`
	ErrorContains string `toml:"error_contains"`
	// MaxScoreMs fails a successful run that was slower than this.
	MaxScoreMs int64 `toml:"max_score_ms"`
	// RequireEnergy fails a successful run without an energy reading.
	RequireEnergy bool `toml:"require_energy"`
}

// specSuite maps to [[scenarios]] entries. The request is written as an
// array-of-tables, so we model it as a slice and use the first element.
type specSuite struct {
	Description string        `toml:"description"`
	RequestAOT  []SpecRequest `toml:"request"`
	Expect      SpecExpect    `toml:"expect"`
}

type specRoot struct {
	Suites []specSuite `toml:"scenarios"`
}

// Case is a runnable scenario converted from TOML
type Case struct {
	Name    string
	Request tester.Request
	Expect  SpecExpect
}

// Parse reads a behaviour TOML file and converts it to runnable cases,
// zipping submission directories on the way.
func Parse(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read behaviour file: %w", err)
	}
	var root specRoot
	if err := toml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	baseDir := filepath.Dir(path)

	cases := make([]Case, 0, len(root.Suites))
	for _, suite := range root.Suites {
		if len(suite.RequestAOT) == 0 {
			return nil, fmt.Errorf("scenario %q is missing request block", suite.Description)
		}
		reqSpec := suite.RequestAOT[0]

		lang, err := contest.ParseLang(reqSpec.Lang)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", suite.Description, err)
		}
		if reqSpec.Problem < 1 {
			return nil, fmt.Errorf("scenario %q: problem must be positive", suite.Description)
		}
		if suite.Expect.Result == "" {
			return nil, fmt.Errorf("scenario %q: expected result is missing", suite.Description)
		}

		var archive []byte
		switch {
		case reqSpec.Dir != "" && reqSpec.Archive != "":
			return nil, fmt.Errorf("scenario %q: set either dir or archive, not both", suite.Description)
		case reqSpec.Dir != "":
			archive, err = ZipDir(filepath.Join(baseDir, reqSpec.Dir))
		case reqSpec.Archive != "":
			archive, err = os.ReadFile(filepath.Join(baseDir, reqSpec.Archive))
		default:
			err = fmt.Errorf("no dir or archive given")
		}
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", suite.Description, err)
		}

		cases = append(cases, Case{
			Name: suite.Description,
			Request: tester.Request{
				ProblemID: reqSpec.Problem,
				Lang:      lang,
				Archive:   archive,
			},
			Expect: suite.Expect,
		})
	}

	return cases, nil
}
