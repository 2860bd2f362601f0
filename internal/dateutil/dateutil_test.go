package dateutil

import (
	"testing"
	"time"
)

// refTime is Tuesday 2024-03-05 14:07:09.042 at UTC+02:00.
var refTime = time.Date(2024, time.March, 5, 14, 7, 9, 42*int(time.Millisecond), time.FixedZone("EET", 2*60*60))

func TestFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		format string
		want   string
	}{
		// Single tokens
		{name: "YYYY", format: "YYYY", want: "2024"},
		{name: "YY", format: "YY", want: "24"},
		{name: "MMMM", format: "MMMM", want: "March"},
		{name: "MMM", format: "MMM", want: "Mar"},
		{name: "MM", format: "MM", want: "03"},
		{name: "M", format: "M", want: "3"},
		{name: "DD", format: "DD", want: "05"},
		{name: "D", format: "D", want: "5"},
		{name: "Do", format: "Do", want: "5th"},
		{name: "DDDD", format: "DDDD", want: "065"},
		{name: "dddd", format: "dddd", want: "Tuesday"},
		{name: "ddd", format: "ddd", want: "Tue"},
		{name: "dd", format: "dd", want: "Tu"},
		{name: "d", format: "d", want: "2"},
		{name: "HH", format: "HH", want: "14"},
		{name: "H", format: "H", want: "14"},
		{name: "hh", format: "hh", want: "02"},
		{name: "h", format: "h", want: "2"},
		{name: "mm", format: "mm", want: "07"},
		{name: "m", format: "m", want: "7"},
		{name: "ss", format: "ss", want: "09"},
		{name: "s", format: "s", want: "9"},
		{name: "SSS", format: "SSS", want: "042"},
		{name: "A", format: "A", want: "PM"},
		{name: "a", format: "a", want: "pm"},
		{name: "Z", format: "Z", want: "+02:00"},
		{name: "ZZ", format: "ZZ", want: "+0200"},
		{name: "Q", format: "Q", want: "1"},
		{name: "WW", format: "WW", want: "10"},

		// Combined formats
		{name: "ISO-like timestamp", format: "YYYY-MM-DDTHH:mm:ss", want: "2024-03-05T14:07:09"},
		{name: "long date", format: "dddd, MMMM Do YYYY", want: "Tuesday, March 5th 2024"},
		{name: "european", format: "DD/MM/YYYY", want: "05/03/2024"},

		// Literals
		{name: "bracket escape", format: "[Today is] dddd", want: "Today is Tuesday"},
		{name: "bracket protects tokens", format: "[YYYY]", want: "YYYY"},
		{name: "unclosed bracket is literal", format: "[YYYY", want: "[2024"},
		{name: "digits are literal", format: "1 YYYY", want: "1 2024"},
		{name: "empty format", format: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Format(refTime, tt.format)
			if got != tt.want {
				t.Errorf("Format(%q) = %q, want %q", tt.format, got, tt.want)
			}
		})
	}
}

func TestOrdinal(t *testing.T) {
	t.Parallel()

	tests := map[int]string{
		1: "1st", 2: "2nd", 3: "3rd", 4: "4th",
		11: "11th", 12: "12th", 13: "13th",
		21: "21st", 22: "22nd", 23: "23rd", 31: "31st",
	}
	for n, want := range tests {
		if got := ordinal(n); got != want {
			t.Errorf("ordinal(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestISO(t *testing.T) {
	t.Parallel()

	got := ISO(refTime)
	want := "2024-03-05T12:07:09.042Z"
	if got != want {
		t.Errorf("ISO() = %q, want %q", got, want)
	}
}
