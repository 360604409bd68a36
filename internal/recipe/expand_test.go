package recipe_test

import (
	"errors"
	"math"
	"reflect"
	"slices"
	"strings"
	"sync"
	"testing"

	"replicator/internal/recipe"
)

func mustParse(t *testing.T, doc string) *recipe.Recipe {
	t.Helper()
	r, err := recipe.Parse([]byte(doc), "test.yml")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	return r
}

func tokens(seq []recipe.Invocation) [][]string {
	out := make([][]string, 0, len(seq))
	for _, inv := range seq {
		out = append(out, inv.Tokens)
	}
	return out
}

func TestExpandScenario(t *testing.T) {
	r := mustParse(t, sampleRecipe)
	got := slices.Collect(r.Expand())
	want := [][]string{
		{"ffmpeg", "-preset", "fast", "-crf", "18", "-vf", "scale=640:-1"},
		{"ffmpeg", "-preset", "fast", "-crf", "28", "-vf", "scale=640:-1"},
	}
	if !reflect.DeepEqual(tokens(got), want) {
		t.Fatalf("unexpected invocations:\n got %v\nwant %v", tokens(got), want)
	}
	if got[0].Tool() != recipe.ToolFFmpeg {
		t.Fatalf("unexpected tool %q", got[0].Tool())
	}
	if strings.Join(got[1].Args(), " ") != "-preset fast -crf 28 -vf scale=640:-1" {
		t.Fatalf("unexpected args %v", got[1].Args())
	}
	if got[0].Label() != "crf-00-scale-00" || got[1].Label() != "crf-01-scale-00" {
		t.Fatalf("unexpected labels %q, %q", got[0].Label(), got[1].Label())
	}
}

const threeAxisRecipe = `
base:
  codec: vp9
  container: webm
  library: libvpx-vp9
  medium: video
  tool: ffmpeg
  default_flags:
    codec: ["-c:v", "libvpx-vp9"]
    rate: ["-b:v", "0"]
variation:
  a: [["-a1"], ["-a2"], ["-a3"]]
  b: [["-b1"], ["-b2", "x"]]
  c: [["-c1"], ["-c2"], ["-c3"], ["-c4"]]
`

func TestExpandCountMatchesProduct(t *testing.T) {
	r := mustParse(t, threeAxisRecipe)
	got := slices.Collect(r.Expand())
	if len(got) != 3*2*4 {
		t.Fatalf("expected %d invocations, got %d", 24, len(got))
	}
	if r.Count() != len(got) {
		t.Fatalf("Count() = %d, want %d", r.Count(), len(got))
	}
	if r.Size(recipe.ModeProduct) != 24 {
		t.Fatalf("Size(product) = %d", r.Size(recipe.ModeProduct))
	}
}

func TestExpandOrderLastAxisFastest(t *testing.T) {
	r := mustParse(t, threeAxisRecipe)
	got := slices.Collect(r.Expand())
	wantFirst := []string{"ffmpeg", "-c:v", "libvpx-vp9", "-b:v", "0", "-a1", "-b1", "-c1"}
	wantSecond := []string{"ffmpeg", "-c:v", "libvpx-vp9", "-b:v", "0", "-a1", "-b1", "-c2"}
	wantFifth := []string{"ffmpeg", "-c:v", "libvpx-vp9", "-b:v", "0", "-a1", "-b2", "x", "-c1"}
	wantLast := []string{"ffmpeg", "-c:v", "libvpx-vp9", "-b:v", "0", "-a3", "-b2", "x", "-c4"}
	if !reflect.DeepEqual(got[0].Tokens, wantFirst) {
		t.Fatalf("first: got %v want %v", got[0].Tokens, wantFirst)
	}
	if !reflect.DeepEqual(got[1].Tokens, wantSecond) {
		t.Fatalf("second: got %v want %v", got[1].Tokens, wantSecond)
	}
	if !reflect.DeepEqual(got[4].Tokens, wantFifth) {
		t.Fatalf("fifth: got %v want %v", got[4].Tokens, wantFifth)
	}
	if !reflect.DeepEqual(got[len(got)-1].Tokens, wantLast) {
		t.Fatalf("last: got %v want %v", got[len(got)-1].Tokens, wantLast)
	}
}

func TestExpandSharesBasePrefix(t *testing.T) {
	r := mustParse(t, threeAxisRecipe)
	prefix := []string{"ffmpeg", "-c:v", "libvpx-vp9", "-b:v", "0"}
	for inv := range r.Expand() {
		if !slices.Equal(inv.Tokens[:len(prefix)], prefix) {
			t.Fatalf("invocation %v does not start with %v", inv.Tokens, prefix)
		}
		if len(inv.Selections) != 3 {
			t.Fatalf("expected one selection per axis, got %+v", inv.Selections)
		}
	}
}

func TestExpandIsDeterministicAndRestartable(t *testing.T) {
	r := mustParse(t, threeAxisRecipe)
	seq := r.Expand()
	first := tokens(slices.Collect(seq))
	second := tokens(slices.Collect(seq))
	third := tokens(slices.Collect(mustParse(t, threeAxisRecipe).Expand()))
	if !reflect.DeepEqual(first, second) || !reflect.DeepEqual(first, third) {
		t.Fatal("expansion is not deterministic")
	}
}

func TestExpandStopsEarly(t *testing.T) {
	r := mustParse(t, threeAxisRecipe)
	n := 0
	for range r.Expand() {
		n++
		if n == 5 {
			break
		}
	}
	if n != 5 {
		t.Fatalf("expected early stop after 5, got %d", n)
	}
}

func TestExpandTokensAreIndependent(t *testing.T) {
	r := mustParse(t, sampleRecipe)
	got := slices.Collect(r.Expand())
	got[0].Tokens[1] = "mutated"
	if got[1].Tokens[1] != "-preset" {
		t.Fatal("invocations share token storage")
	}
	again := slices.Collect(r.Expand())
	if again[0].Tokens[1] != "-preset" {
		t.Fatal("mutating an invocation changed the recipe")
	}
}

func TestExpandSingleTupleAxisIsConstant(t *testing.T) {
	r := mustParse(t, sampleRecipe)
	for inv := range r.Expand() {
		if !slices.Equal(inv.Tokens[len(inv.Tokens)-2:], []string{"-vf", "scale=640:-1"}) {
			t.Fatalf("single tuple axis missing from %v", inv.Tokens)
		}
	}
}

func TestExpandKeepsDuplicateFlags(t *testing.T) {
	doc := strings.Replace(sampleRecipe, `["-crf", "18"]`, `["-preset", "slow"]`, 1)
	r := mustParse(t, doc)
	first := slices.Collect(r.Expand())[0]
	want := []string{"ffmpeg", "-preset", "fast", "-preset", "slow", "-vf", "scale=640:-1"}
	if !slices.Equal(first.Tokens, want) {
		t.Fatalf("got %v want %v", first.Tokens, want)
	}
}

func TestExpandConcurrentUse(t *testing.T) {
	r := mustParse(t, threeAxisRecipe)
	want := tokens(slices.Collect(r.Expand()))
	var wg sync.WaitGroup
	errs := make(chan string, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := tokens(slices.Collect(r.Expand())); !reflect.DeepEqual(got, want) {
				errs <- "concurrent expansion diverged"
			}
		}()
	}
	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Fatal(msg)
	}
}

func TestExpandAxesReplacesMatchingDefaultGroup(t *testing.T) {
	doc := `
base:
  codec: h264
  container: mp4
  library: libx264
  medium: video
  tool: ffmpeg
  default_flags:
    preset: ["-preset", "fast"]
    crf: ["-crf", "23"]
variation:
  crf:
    - ["-crf", "18"]
    - ["-crf", "28"]
  tune:
    - ["-tune", "film"]
`
	r := mustParse(t, doc)
	got := slices.Collect(r.ExpandAxes())
	want := [][]string{
		{"ffmpeg", "-preset", "fast", "-crf", "18"},
		{"ffmpeg", "-preset", "fast", "-crf", "28"},
		{"ffmpeg", "-preset", "fast", "-crf", "23", "-tune", "film"},
	}
	if !reflect.DeepEqual(tokens(got), want) {
		t.Fatalf("unexpected axis invocations:\n got %v\nwant %v", tokens(got), want)
	}
	if r.AxisCount() != 3 || r.Size(recipe.ModeAxis) != 3 {
		t.Fatalf("unexpected axis count %d", r.AxisCount())
	}
	if got[1].Label() != "crf-01" || got[2].Label() != "tune-00" {
		t.Fatalf("unexpected labels %q, %q", got[1].Label(), got[2].Label())
	}
	viaMode := tokens(slices.Collect(r.Invocations(recipe.ModeAxis)))
	if !reflect.DeepEqual(viaMode, want) {
		t.Fatal("Invocations(ModeAxis) differs from ExpandAxes")
	}
}

func TestCheckSize(t *testing.T) {
	r := mustParse(t, threeAxisRecipe)
	if err := r.CheckSize(recipe.ModeProduct, 0); err != nil {
		t.Fatalf("limit 0 must disable the check: %v", err)
	}
	if err := r.CheckSize(recipe.ModeProduct, 24); err != nil {
		t.Fatalf("limit equal to size must pass: %v", err)
	}
	err := r.CheckSize(recipe.ModeProduct, 10)
	var overflow *recipe.ExpansionOverflow
	if !errors.As(err, &overflow) {
		t.Fatalf("expected ExpansionOverflow, got %v", err)
	}
	if overflow.Size != 24 || overflow.Limit != 10 {
		t.Fatalf("unexpected overflow %+v", overflow)
	}
	if err := r.CheckSize(recipe.ModeAxis, 10); err != nil {
		t.Fatalf("axis mode has 9 invocations, got %v", err)
	}
}

func TestCountSaturates(t *testing.T) {
	tuples := make([][]string, 1<<16)
	for i := range tuples {
		tuples[i] = []string{"-x"}
	}
	r := &recipe.Recipe{Base: recipe.Base{Tool: recipe.ToolFFmpeg}}
	for i := 0; i < 5; i++ {
		r.Variation = append(r.Variation, recipe.Axis{Name: "a", Tuples: tuples})
	}
	if r.Count() != math.MaxInt {
		t.Fatalf("expected saturation, got %d", r.Count())
	}
}

func TestParseMode(t *testing.T) {
	cases := map[string]recipe.Mode{"": recipe.ModeProduct, "Product": recipe.ModeProduct, " axis ": recipe.ModeAxis}
	for in, want := range cases {
		got, err := recipe.ParseMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := recipe.ParseMode("zip"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}
