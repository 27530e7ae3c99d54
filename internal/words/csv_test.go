package words

import (
	"errors"
	"strings"
	"testing"
)

func TestParseWordSetsGroupsByCategory(t *testing.T) {
	csv := `word,definition,category
Algorithm,A step-by-step procedure,Technology
Atom,Basic unit of matter,Science
Cache,A temporary storage area,Technology
`
	groups, err := ParseWordSets(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if groups["Technology"]["Cache"] != "A temporary storage area" {
		t.Fatalf("Technology group wrong: %v", groups["Technology"])
	}
	if len(groups["Science"]) != 1 {
		t.Fatalf("Science group wrong: %v", groups["Science"])
	}
}

func TestParseWordSetsWithoutCategoryColumn(t *testing.T) {
	csv := "word,definition\nAtom,Basic unit of matter\n"
	groups, err := ParseWordSets(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if groups[""]["Atom"] != "Basic unit of matter" {
		t.Fatalf("uncategorized rows not grouped under empty key: %v", groups)
	}
}

func TestParseWordSetsMissingColumns(t *testing.T) {
	cases := []struct {
		name    string
		csv     string
		missing string
	}{
		{"no definition", "word,meaning\nAtom,Basic unit\n", "definition"},
		{"no word", "term,definition\nAtom,Basic unit\n", "word"},
		{"empty file", "", "word, definition"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseWordSets(strings.NewReader(tc.csv))
			var dfe *DataFormatError
			if !errors.As(err, &dfe) {
				t.Fatalf("got %v, want DataFormatError", err)
			}
			if !strings.Contains(dfe.Error(), tc.missing) {
				t.Fatalf("error %q does not name %q", dfe.Error(), tc.missing)
			}
		})
	}
}

func TestParseWordSetsSkipsBlankRows(t *testing.T) {
	csv := "word,definition\nAtom,Basic unit of matter\n,missing word\nCache,\n"
	groups, err := ParseWordSets(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(groups[""]) != 1 {
		t.Fatalf("blank rows not skipped: %v", groups[""])
	}
}

func TestParseWordSetsQuotedCommas(t *testing.T) {
	csv := "word,definition\nChemistry,\"The study of matter, its properties\"\n"
	groups, err := ParseWordSets(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if groups[""]["Chemistry"] != "The study of matter, its properties" {
		t.Fatalf("quoted field mangled: %q", groups[""]["Chemistry"])
	}
}

func TestParseWordSetsHeaderCaseInsensitive(t *testing.T) {
	csv := "Word,Definition,Category\nAtom,Basic unit of matter,Science\n"
	groups, err := ParseWordSets(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if groups["Science"]["Atom"] == "" {
		t.Fatalf("mixed-case header not recognized: %v", groups)
	}
}
