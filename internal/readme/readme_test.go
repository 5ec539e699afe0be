package readme

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const profile = `# Hi there

## Today
- 👟 Steps today: 1234
- 😴 Sleep last night: 5h 5m
- 🏋️ Latest workout: Old Ride
- ⏱️ Workout time: 10m

Steps today: is also matched here
`

func mustDefaults(t *testing.T) []Rule {
	t.Helper()
	rules, err := DefaultRules()
	if err != nil {
		t.Fatalf("DefaultRules: %v", err)
	}
	return rules
}

func TestApply_DefaultRules(t *testing.T) {
	values := map[string]string{
		"steps":        "8421",
		"sleep":        "6h 52m",
		"workout_name": "Morning Run",
		"workout_time": "1h 02m",
	}
	out, n := Apply(profile, mustDefaults(t), values)

	for _, want := range []string{
		"- 👟 Steps today: 8421\n",
		"- 😴 Sleep last night: 6h 52m\n",
		"- 🏋️ Latest workout: Morning Run\n",
		"- ⏱️ Workout time: 1h 02m\n",
		"Steps today: 8421\n",
		"# Hi there\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
	if n != 5 {
		t.Fatalf("expected 5 replaced lines, got %d", n)
	}
}

func TestApply_MissingMetricUntouched(t *testing.T) {
	out, n := Apply(profile, mustDefaults(t), map[string]string{"sleep": "7h 0m"})
	if !strings.Contains(out, "Steps today: 1234") || !strings.Contains(out, "Latest workout: Old Ride") {
		t.Fatalf("unrelated lines changed:\n%s", out)
	}
	if n != 1 {
		t.Fatalf("expected 1 replaced line, got %d", n)
	}
}

func TestApply_CountsMatchedLinesEvenWhenUnchanged(t *testing.T) {
	out, n := Apply("Steps today: 5\nSleep last night: 1h 0m\n", mustDefaults(t),
		map[string]string{"steps": "5", "sleep": "2h 0m"})
	if n != 2 {
		t.Fatalf("expected 2 replaced lines, got %d", n)
	}
	if out != "Steps today: 5\nSleep last night: 2h 0m\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestApply_PreservesCRLF(t *testing.T) {
	in := "a\r\nSteps today: 1\r\nb\r\n"
	out, _ := Apply(in, mustDefaults(t), map[string]string{"steps": "2"})
	if out != "a\r\nSteps today: 2\r\nb\r\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestApply_DollarInValueIsLiteral(t *testing.T) {
	out, _ := Apply("Latest workout: x", mustDefaults(t), map[string]string{"workout_name": "$1 ${prefix} run"})
	if out != "Latest workout: $1 ${prefix} run" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestParseRules_Invalid(t *testing.T) {
	cases := map[string]string{
		"empty list":     "rules: []\n",
		"missing prefix": "rules:\n  - metric: steps\n    pattern: '^Steps: .*$'\n",
		"bad regex":      "rules:\n  - metric: steps\n    pattern: '(?P<prefix>['\n",
		"unknown field":  "rules:\n  - metric: steps\n    pattern: '(?P<prefix>a)'\n    extra: 1\n",
		"bad metric":     "rules:\n  - metric: Steps!\n    pattern: '(?P<prefix>a)'\n",
		"not yaml":       "rules: [\n",
	}
	for name, body := range cases {
		if _, err := ParseRules([]byte(body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadRules_File(t *testing.T) {
	p := filepath.Join(t.TempDir(), "rules.yaml")
	body := "rules:\n  - metric: steps\n    pattern: '^(?P<prefix><!-- steps -->).*$'\n"
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	rules, err := LoadRules(p)
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	out, _ := Apply("<!-- steps -->old", rules, map[string]string{"steps": "9"})
	if out != "<!-- steps -->9" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestUpdateFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "README.md")
	if err := os.WriteFile(p, []byte("# me\n- 👟 Steps today: 1234\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	rules := mustDefaults(t)

	res, err := UpdateFile(p, rules, map[string]string{"steps": "1234"})
	if err != nil {
		t.Fatalf("UpdateFile: %v", err)
	}
	if res.Changed || res.Replaced != 1 {
		t.Fatalf("expected a matched but unchanged line, got %+v", res)
	}

	res, err = UpdateFile(p, rules, map[string]string{"steps": "99"})
	if err != nil {
		t.Fatalf("UpdateFile: %v", err)
	}
	if !res.Changed || res.Replaced != 1 {
		t.Fatalf("expected change, got %+v", res)
	}
	b, _ := os.ReadFile(p)
	if string(b) != "# me\n- 👟 Steps today: 99\n" {
		t.Fatalf("file not rewritten:\n%s", b)
	}

	if _, err := UpdateFile(filepath.Join(t.TempDir(), "missing.md"), rules, nil); err == nil {
		t.Fatal("expected error for missing file")
	}
}
