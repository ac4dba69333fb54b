package textnorm

import "testing"

func TestNormalize_Folds(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"smart quotes", "“Hello,” she said. It’s fine.", `"Hello," she said. It's fine.`},
		{"en dash", "2019–2024 was busy", "2019—2024 was busy"},
		{"double hyphen", "wait -- really?", "wait — really?"},
		{"triple hyphen", "wait --- really?", "wait — really?"},
		{"rule preserved", "----", "----"},
		{"ellipsis", "well…", "well..."},
		{"nbsp", "a b", "a b"},
		{"zero width space", "a\u200bb", "ab"},
		{"bom stripped", "\ufeffwell begun", "well begun"},
		{"crlf", "a\r\nb", "a\nb"},
		{"space runs", "a   \t b", "a b"},
		{"blank line runs", "a\n\n\n\nb", "a\n\nb"},
		{"trailing space", "a  \nb", "a\nb"},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("%s: Normalize(%q) = %q, want %q", c.name, c.in, got, c.want)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"“Curly” — dashes – and… spaces everywhere\r\n\r\n\r\nOk -- done.",
		"plain ascii text.\nnothing to do here.",
		"rules ---- stay -- dashes fold",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent:\n once=%q\ntwice=%q", once, twice)
		}
	}
}

func TestNormalize_NFC(t *testing.T) {
	// e + combining acute accent composes to é.
	in := "café"
	want := "café"
	if got := Normalize(in); got != want {
		t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
	}
}
