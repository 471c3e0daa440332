package redirect

import "testing"

func TestApplyNoMatchReturnsOriginal(t *testing.T) {
	tab := New()
	tab.Add(Redirect{SubjectEnv: "app", BeforePrefix: "old", AfterPrefix: "new"})

	got := tab.Apply("app", "unrelated/path", false)
	if got != "unrelated/path" {
		t.Errorf("Apply() = %q, want unchanged path", got)
	}
}

func TestApplyRewritesExactPrefix(t *testing.T) {
	tab := New()
	tab.Add(Redirect{SubjectEnv: "app", BeforePrefix: "old", AfterPrefix: "new"})

	got := tab.Apply("app", "old/sub/path", false)
	if got != "new/sub/path" {
		t.Errorf("Apply() = %q, want new/sub/path", got)
	}
}

func TestApplyRewritesExactMatchWhenNotDirect(t *testing.T) {
	tab := New()
	tab.Add(Redirect{SubjectEnv: "app", BeforePrefix: "old", AfterPrefix: "new"})

	got := tab.Apply("app", "old", false)
	if got != "new" {
		t.Errorf("Apply() = %q, want new", got)
	}
}

func TestApplySkipsExactMatchWhenDirect(t *testing.T) {
	tab := New()
	tab.Add(Redirect{SubjectEnv: "app", BeforePrefix: "old", AfterPrefix: "new"})

	got := tab.Apply("app", "old", true)
	if got != "old" {
		t.Errorf("Apply(direct=true) on an exact-match path = %q, want unchanged old", got)
	}
}

func TestApplyDoesNotMatchPartialSegment(t *testing.T) {
	tab := New()
	tab.Add(Redirect{SubjectEnv: "app", BeforePrefix: "old", AfterPrefix: "new"})

	// "oldstuff" is not "old" plus a "/" boundary, so it must not match.
	got := tab.Apply("app", "oldstuff", false)
	if got != "oldstuff" {
		t.Errorf("Apply() = %q, want unchanged oldstuff (no segment boundary)", got)
	}
}

func TestApplyOnlyAffectsItsOwnSubject(t *testing.T) {
	tab := New()
	tab.Add(Redirect{SubjectEnv: "app", BeforePrefix: "old", AfterPrefix: "new"})

	got := tab.Apply("other", "old/sub", false)
	if got != "old/sub" {
		t.Errorf("Apply() for an unrelated subject env = %q, want unchanged", got)
	}
}

func TestSubjectPrefixCoversNestedEnvironments(t *testing.T) {
	tab := New()
	tab.Add(Redirect{SubjectEnv: "p", BeforePrefix: "old", AfterPrefix: "new"})

	for _, env := range []string{"p", "p/a", "p/b/c"} {
		got := tab.Apply(env, "old/x", false)
		if got != "new/x" {
			t.Errorf("Apply(%q) = %q, want new/x (subject %q covers every environment below it)", env, got, "p")
		}
	}
}

func TestSubjectPrefixDoesNotMatchPartialSegment(t *testing.T) {
	tab := New()
	tab.Add(Redirect{SubjectEnv: "p", BeforePrefix: "old", AfterPrefix: "new"})

	got := tab.Apply("pq", "old/x", false)
	if got != "old/x" {
		t.Errorf("Apply(\"pq\") = %q, want unchanged (no segment boundary after subject %q)", got, "p")
	}
}

func TestMoreSpecificSubjectPrefixShadows(t *testing.T) {
	tab := New()
	tab.Add(Redirect{SubjectEnv: "p", BeforePrefix: "old", AfterPrefix: "general"})
	tab.Add(Redirect{SubjectEnv: "p/b", BeforePrefix: "old", AfterPrefix: "specific"})

	if got := tab.Apply("p/b", "old/x", false); got != "specific/x" {
		t.Errorf("Apply(\"p/b\") = %q, want specific/x (longer subject prefix shadows)", got)
	}
	if got := tab.Apply("p/a", "old/x", false); got != "general/x" {
		t.Errorf("Apply(\"p/a\") = %q, want general/x (only the shorter subject covers p/a)", got)
	}
}

func TestApplyMostSpecificPrefixWins(t *testing.T) {
	tab := New()
	tab.Add(Redirect{SubjectEnv: "app", BeforePrefix: "a", AfterPrefix: "short"})
	tab.Add(Redirect{SubjectEnv: "app", BeforePrefix: "a/b", AfterPrefix: "long"})

	got := tab.Apply("app", "a/b/c", false)
	if got != "long/c" {
		t.Errorf("Apply() = %q, want long/c (longest matching prefix wins)", got)
	}
}

func TestFirstConsultFreezesSubsequentAddsAreIgnored(t *testing.T) {
	tab := New()
	tab.Add(Redirect{SubjectEnv: "app", BeforePrefix: "old", AfterPrefix: "new"})

	// First consultation freezes "app"'s redirect set.
	tab.Apply("app", "old/x", false)
	if !tab.HasBeenConsulted("app") {
		t.Error("expected app to be marked consulted after its first Apply call")
	}

	// A redirect added after the freeze must not take effect for "app".
	tab.Add(Redirect{SubjectEnv: "app", BeforePrefix: "late", AfterPrefix: "too-late"})
	got := tab.Apply("app", "late/x", false)
	if got != "late/x" {
		t.Errorf("Apply() after freeze = %q, want unchanged (redirect added post-freeze must be ignored)", got)
	}
}

func TestFreezeIsPerSubject(t *testing.T) {
	tab := New()
	tab.Apply("app", "x", false) // freezes "app" with an empty live set

	tab.Add(Redirect{SubjectEnv: "other", BeforePrefix: "old", AfterPrefix: "new"})
	got := tab.Apply("other", "old/x", false)
	if got != "new/x" {
		t.Errorf("Apply() for a not-yet-consulted subject = %q, want new/x", got)
	}
}

func TestAddAndApplyStripASCIIWhitespace(t *testing.T) {
	tab := New()
	tab.Add(Redirect{SubjectEnv: " app ", BeforePrefix: "old ", AfterPrefix: "\tnew"})

	got := tab.Apply("app", " old/sub ", false)
	if got != "new/sub" {
		t.Errorf("Apply() = %q, want new/sub (whitespace stripped on both sides)", got)
	}
}

func TestHasBeenConsultedFalseBeforeApply(t *testing.T) {
	tab := New()
	if tab.HasBeenConsulted("app") {
		t.Error("HasBeenConsulted should be false before any Apply call")
	}
}
