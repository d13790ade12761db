package letter

import (
	"strings"
	"testing"
	"time"
)

func TestFormatCurrencyGroups(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"138000000", "138.000.000"},
		{"1000", "1.000"},
		{"100", "100"},
		{"", ""},
		{"1234567", "1.234.567"},
		{"138.000.000", "138.000.000"},
		{"Rp1000", "Rp1.000"},
		{"12345 dan 6789", "12.345 dan 6.789"},
		{"12,5", "12,5"},
	}
	for _, tc := range cases {
		if got := FormatCurrencyGroups(tc.in); got != tc.want {
			t.Fatalf("FormatCurrencyGroups(%q): expected %q got %q", tc.in, tc.want, got)
		}
	}
}

func TestFormatCurrencyGroupsDotCount(t *testing.T) {
	for n := 1; n <= 24; n++ {
		in := strings.Repeat("7", n)
		got := FormatCurrencyGroups(in)
		if dots := strings.Count(got, "."); dots != (n-1)/3 {
			t.Fatalf("length %d: expected %d dots got %d (%q)", n, (n-1)/3, dots, got)
		}
		if strings.ReplaceAll(got, ".", "") != in {
			t.Fatalf("length %d: digits changed: %q", n, got)
		}
	}
}

func TestFormatCurrencyGroupsIdempotent(t *testing.T) {
	for _, in := range []string{"1", "1000", "138000000", "Rp 25000000", "9876543210", "harga 1500000,00"} {
		once := FormatCurrencyGroups(in)
		if twice := FormatCurrencyGroups(once); twice != once {
			t.Fatalf("%q: second pass changed %q to %q", in, once, twice)
		}
	}
}

func TestFormatLocalDate(t *testing.T) {
	cases := []struct {
		at   time.Time
		want string
	}{
		{time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC), "15 Oktober 2026"},
		{time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC), "5 Januari 2024"},
		{time.Date(2025, time.May, 31, 23, 59, 0, 0, time.UTC), "31 Mei 2025"},
		{time.Date(2023, time.August, 17, 8, 0, 0, 0, time.UTC), "17 Agustus 2023"},
	}
	for _, tc := range cases {
		if got := FormatLocalDate(tc.at); got != tc.want {
			t.Fatalf("FormatLocalDate(%s): expected %q got %q", tc.at, tc.want, got)
		}
	}
}

func TestHumanizeKey(t *testing.T) {
	cases := map[string]string{
		"kacaDepan":       "Kaca Depan",
		"modelBody":       "Model Body",
		"bangkuPenumpang": "Bangku Penumpang",
		"cat":             "Cat",
		"audioVisual":     "Audio Visual",
		"":                "",
	}
	for in, want := range cases {
		if got := HumanizeKey(in); got != want {
			t.Fatalf("HumanizeKey(%q): expected %q got %q", in, want, got)
		}
	}
}

func TestEscapeMarkdown(t *testing.T) {
	cases := map[string]string{
		"PT. *Maju* [1]\r\nbaris": `PT\. \*Maju\* \[1\] baris`,
		"    Yogyakarta":          "Yogyakarta",
		"\t\n Yogyakarta  Kota":   "Yogyakarta  Kota",
		"   ":                    "",
	}
	for in, want := range cases {
		if got := EscapeMarkdown(in); got != want {
			t.Fatalf("EscapeMarkdown(%q): expected %q got %q", in, want, got)
		}
	}
}
