package event

import (
	"encoding/json"
	"testing"
	"time"
)

func TestRawUnmarshalSchemaVariants(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Raw
	}{
		{
			name: "legacy date key with string title",
			in:   `{"id":"asa-2026-abstract","series":"ASA","year":2026,"type":"abstract_deadline","date":"2026-05-10","title":"ASA abstract deadline"}`,
			want: Raw{
				ID:     "asa-2026-abstract",
				Series: "ASA",
				Year:   2026,
				Type:   "abstract_deadline",
				Date:   "2026-05-10",
				Title:  Title{Text: "ASA abstract deadline"},
			},
		},
		{
			name: "single_date with localized title",
			in:   `{"id":"x","type":"early_bird_deadline","single_date":"2026-07-01","title":{"en":"Early bird","pt":"Inscrição antecipada"}}`,
			want: Raw{
				ID:         "x",
				Type:       "early_bird_deadline",
				SingleDate: "2026-07-01",
				Title:      Title{Localized: map[string]string{"en": "Early bird", "pt": "Inscrição antecipada"}},
			},
		},
		{
			name: "ranged congress with string year",
			in:   `{"id":"wca-2026","series":"WCA","year":"2026","type":"congress","start_date":"2026-03-05","end_date":"2026-03-09"}`,
			want: Raw{
				ID:        "wca-2026",
				Series:    "WCA",
				Year:      2026,
				Type:      "congress",
				StartDate: "2026-03-05",
				EndDate:   "2026-03-09",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Raw
			if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got.ID != tt.want.ID || got.Series != tt.want.Series || got.Year != tt.want.Year ||
				got.Type != tt.want.Type || got.Date != tt.want.Date ||
				got.SingleDate != tt.want.SingleDate || got.StartDate != tt.want.StartDate ||
				got.EndDate != tt.want.EndDate {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
			if got.Title.Text != tt.want.Title.Text {
				t.Errorf("title text = %q, want %q", got.Title.Text, tt.want.Title.Text)
			}
			for lang, s := range tt.want.Title.Localized {
				if got.Title.Localized[lang] != s {
					t.Errorf("title[%s] = %q, want %q", lang, got.Title.Localized[lang], s)
				}
			}
		})
	}
}

func TestTitleResolve(t *testing.T) {
	tests := []struct {
		name   string
		title  Title
		lang   string
		want   string
		wantOK bool
	}{
		{"plain string", Title{Text: "WCA 2026"}, "pt", "WCA 2026", true},
		{"exact language", Title{Localized: map[string]string{"en": "Congress", "pt": "Congresso"}}, "pt", "Congresso", true},
		{"default fallback", Title{Localized: map[string]string{"en": "Congress"}}, "pt", "Congress", true},
		{"any fallback", Title{Localized: map[string]string{"fr": "Congrès"}}, "pt", "Congrès", true},
		{"empty", Title{}, "en", "", false},
		{"empty strings only", Title{Localized: map[string]string{"en": ""}}, "en", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.title.Resolve(tt.lang, "en")
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Resolve = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	loc := time.Local
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	}

	tests := []struct {
		name      string
		raw       Raw
		wantOK    bool
		wantStart time.Time
		wantEnd   time.Time
		wantRange bool
	}{
		{
			name:      "single date deadline",
			raw:       Raw{ID: "a", SingleDate: "2026-05-10"},
			wantOK:    true,
			wantStart: day(2026, 5, 10),
			wantEnd:   day(2026, 5, 10),
		},
		{
			name:      "legacy date key",
			raw:       Raw{ID: "b", Date: "2026-05-10"},
			wantOK:    true,
			wantStart: day(2026, 5, 10),
			wantEnd:   day(2026, 5, 10),
		},
		{
			name:      "ranged congress",
			raw:       Raw{ID: "c", StartDate: "2026-10-01", EndDate: "2026-10-05"},
			wantOK:    true,
			wantStart: day(2026, 10, 1),
			wantEnd:   day(2026, 10, 5),
			wantRange: true,
		},
		{
			name:      "single_date wins over start_date",
			raw:       Raw{ID: "d", SingleDate: "2026-05-10", StartDate: "2026-06-01"},
			wantOK:    true,
			wantStart: day(2026, 5, 10),
			wantEnd:   day(2026, 5, 10),
		},
		{
			name:   "no usable date",
			raw:    Raw{ID: "e", Type: "abstract_deadline"},
			wantOK: false,
		},
		{
			name:   "malformed date treated as absent",
			raw:    Raw{ID: "f", SingleDate: "not-a-date"},
			wantOK: false,
		},
		{
			name:      "malformed end keeps start",
			raw:       Raw{ID: "g", StartDate: "2026-10-01", EndDate: "soon"},
			wantOK:    true,
			wantStart: day(2026, 10, 1),
			wantEnd:   day(2026, 10, 1),
		},
		{
			name:      "inverted range clamps to start",
			raw:       Raw{ID: "h", StartDate: "2026-10-05", EndDate: "2026-10-01"},
			wantOK:    true,
			wantStart: day(2026, 10, 5),
			wantEnd:   day(2026, 10, 5),
		},
		{
			name:      "same-day range is not ranged",
			raw:       Raw{ID: "i", StartDate: "2026-10-01", EndDate: "2026-10-01"},
			wantOK:    true,
			wantStart: day(2026, 10, 1),
			wantEnd:   day(2026, 10, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.raw, loc)
			if ok != tt.wantOK {
				t.Fatalf("Normalize ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if !got.Start.Equal(tt.wantStart) {
				t.Errorf("Start = %v, want %v", got.Start, tt.wantStart)
			}
			if !got.End.Equal(tt.wantEnd) {
				t.Errorf("End = %v, want %v", got.End, tt.wantEnd)
			}
			if got.Ranged != tt.wantRange {
				t.Errorf("Ranged = %v, want %v", got.Ranged, tt.wantRange)
			}
		})
	}
}

func TestNormalizeDefaults(t *testing.T) {
	got, ok := Normalize(Raw{ID: "x", Series: "  ASA ", SingleDate: "2026-05-10"}, time.Local)
	if !ok {
		t.Fatal("expected ok")
	}
	if got.Status != StatusActive {
		t.Errorf("Status = %q, want %q", got.Status, StatusActive)
	}
	if got.Series != "asa" {
		t.Errorf("Series = %q, want normalized %q", got.Series, "asa")
	}
	if got.Priority != 0 {
		t.Errorf("Priority = %d, want 0", got.Priority)
	}
}

func TestLint(t *testing.T) {
	events := []Raw{
		{ID: "a", StartDate: "2026-10-01", EndDate: "2026-10-05"},
		{ID: "a", SingleDate: "2026-05-10"},
		{ID: "", SingleDate: "2026-05-10"},
		{ID: "b", StartDate: "2026-10-05", EndDate: "2026-10-01"},
	}

	problems := Lint(events)
	if len(problems) != 3 {
		t.Fatalf("got %d problems, want 3: %v", len(problems), problems)
	}
}
