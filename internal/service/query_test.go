package service

import "testing"

func TestComposeQuery_AllSegments(t *testing.T) {
	got := ComposeQuery(
		"Acme Coffee",
		"A specialty coffee roaster",
		"food",
		[]string{"commuters", "students"},
		[]string{"single origin beans", "same day delivery"},
	)

	want := "Acme Coffee. A specialty coffee roaster. " +
		"Target audience: commuters, students. " +
		"Unique selling points: single origin beans, same day delivery. " +
		"Industry: food."
	if got != want {
		t.Errorf("unexpected query:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestComposeQuery_RequiredSegmentsOnly(t *testing.T) {
	got := ComposeQuery("Acme Coffee", "A specialty coffee roaster", "food", nil, nil)

	want := "Acme Coffee. A specialty coffee roaster. Industry: food."
	if got != want {
		t.Errorf("unexpected query:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestComposeQuery_AudienceOnly(t *testing.T) {
	got := ComposeQuery("Acme", "Desc", "retail", []string{"locals"}, nil)

	want := "Acme. Desc. Target audience: locals. Industry: retail."
	if got != want {
		t.Errorf("unexpected query:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestComposeQuery_SellingPointsOnly(t *testing.T) {
	got := ComposeQuery("Acme", "Desc", "retail", nil, []string{"free returns"})

	want := "Acme. Desc. Unique selling points: free returns. Industry: retail."
	if got != want {
		t.Errorf("unexpected query:\ngot:  %q\nwant: %q", got, want)
	}
}
