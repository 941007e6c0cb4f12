package headers

import "testing"

func TestTable_DeduplicatesStandaloneHeaders(t *testing.T) {
	tbl := New([]string{"User-Agent", "X-Forwarded-For", "User-Agent"}, false)
	if tbl.Len() != 2 {
		t.Fatalf("expected 2 unique headers, got %d", tbl.Len())
	}
	idx, ok := tbl.Find("User-Agent")
	if !ok || idx != 0 {
		t.Fatalf("expected User-Agent at index 0, got %d ok=%v", idx, ok)
	}
}

func TestTable_ExpandsPseudoHeaderIntoSegments(t *testing.T) {
	pseudo := "User-Agent" + string(rune(PseudoSeparator)) + "Sec-CH-UA-Platform"
	tbl := New([]string{pseudo}, false)

	if tbl.Len() != 3 {
		t.Fatalf("expected pseudo + 2 segments = 3 headers, got %d", tbl.Len())
	}

	pseudoIdx, ok := tbl.Find(pseudo)
	if !ok {
		t.Fatalf("expected to find the pseudo-header by its joined name")
	}
	h := tbl.At(pseudoIdx)
	if !h.IsPseudo || len(h.Segments) != 2 {
		t.Fatalf("expected a pseudo header with 2 segments, got %+v", h)
	}

	uaIdx, ok := tbl.Find("User-Agent")
	if !ok {
		t.Fatalf("expected User-Agent to also exist standalone")
	}
	found := false
	for _, p := range tbl.At(uaIdx).Parents {
		if p == pseudoIdx {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected User-Agent's Parents to include the pseudo-header")
	}
}

func TestTable_UpperPrefixedAlias(t *testing.T) {
	tbl := New([]string{"User-Agent"}, true)
	idx, ok := tbl.Find("HTTP_User-Agent")
	if !ok {
		t.Fatalf("expected HTTP_-prefixed alias to resolve")
	}
	direct, _ := tbl.Find("User-Agent")
	if idx != direct {
		t.Fatalf("expected alias to resolve to the same index")
	}
}

func TestTable_UpperPrefixedAlias_DisabledByDefault(t *testing.T) {
	tbl := New([]string{"User-Agent"}, false)
	if _, ok := tbl.Find("HTTP_User-Agent"); ok {
		t.Fatalf("expected alias lookup to fail when not configured")
	}
}

func TestTable_AssemblePseudo(t *testing.T) {
	pseudo := "A" + string(rune(PseudoSeparator)) + "B"
	tbl := New([]string{pseudo}, false)
	pseudoIdx, _ := tbl.Find(pseudo)

	values := map[string]string{"A": "1", "B": "2"}
	assembled, ok := tbl.AssemblePseudo(pseudoIdx, func(segIdx int) (string, bool) {
		v, found := values[tbl.At(segIdx).Name]
		return v, found
	})
	if !ok {
		t.Fatalf("expected assembly to succeed")
	}
	expected := "1" + string(rune(PseudoSeparator)) + "2"
	if assembled != expected {
		t.Fatalf("got %q, want %q", assembled, expected)
	}
}

func TestTable_AssemblePseudo_FailsOnMissingSegment(t *testing.T) {
	pseudo := "A" + string(rune(PseudoSeparator)) + "B"
	tbl := New([]string{pseudo}, false)
	pseudoIdx, _ := tbl.Find(pseudo)

	_, ok := tbl.AssemblePseudo(pseudoIdx, func(segIdx int) (string, bool) {
		return "", false
	})
	if ok {
		t.Fatalf("expected assembly to fail when a segment has no value")
	}
}
