package correlate

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/papapumpkin/ziwei/internal/chart"
)

func TestBuildMutagenTagMap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutagen []string
		prefix  string
		want    TagMap
	}{
		{
			name:    "nil list",
			mutagen: nil,
			prefix:  "yearly-",
			want:    TagMap{},
		},
		{
			name:    "skips empty entries",
			mutagen: []string{"StarA", "", "StarB", "StarC"},
			prefix:  "yearly-",
			want: TagMap{
				"StarA": {"yearly-Lu"},
				"StarB": {"yearly-Ke"},
				"StarC": {"yearly-Ji"},
			},
		},
		{
			name:    "same star twice keeps both in order",
			mutagen: []string{"StarA", "StarA"},
			prefix:  "daily-",
			want:    TagMap{"StarA": {"daily-Lu", "daily-Quan"}},
		},
		{
			name:    "label table exhausted falls back to index",
			mutagen: []string{"a", "b", "c", "d", "e"},
			prefix:  "p-",
			want: TagMap{
				"a": {"p-Lu"},
				"b": {"p-Quan"},
				"c": {"p-Ke"},
				"d": {"p-Ji"},
				"e": {"p-4"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := BuildMutagenTagMap(tt.mutagen, tt.prefix, English().MutagenLabels)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("BuildMutagenTagMap mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildNatalTagMap(t *testing.T) {
	t.Parallel()

	palaces := []chart.Palace{
		{
			Name:           "Life",
			MajorStars:     []chart.Star{{Name: "StarA", Mutagen: "Ji"}, {Name: "StarB"}},
			MinorStars:     []chart.Star{{Name: "StarM", Mutagen: "Ke"}},
			AdjectiveStars: []chart.Star{{Name: "StarAdj", Mutagen: "Lu"}},
		},
		{
			Name:       "Career",
			MajorStars: []chart.Star{{Name: "StarA", Mutagen: "Quan"}, {Name: "", Mutagen: "Lu"}},
		},
	}

	got := BuildNatalTagMap(palaces, "natal-")
	want := TagMap{
		"StarA": {"natal-Ji", "natal-Quan"},
		"StarM": {"natal-Ke"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BuildNatalTagMap mismatch (-want +got):\n%s", diff)
	}

	if got := BuildNatalTagMap(nil, "natal-"); len(got) != 0 {
		t.Errorf("BuildNatalTagMap(nil) = %v, want empty", got)
	}
}

func TestTagMaps_OrderAndAbsentScopes(t *testing.T) {
	t.Parallel()

	h := &chart.Horoscope{
		Decadal: &chart.Scope{Mutagen: []string{"StarD"}},
		Yearly:  &chart.Scope{Mutagen: []string{"StarA"}},
	}
	maps := English().TagMaps(testNatal(), h)

	if len(maps) != 1+len(chart.ScopeKinds()) {
		t.Fatalf("len(maps) = %d, want %d", len(maps), 1+len(chart.ScopeKinds()))
	}
	wantFirst := []map[string][]string{
		{"StarA": {"natal-Ji"}},
		{"StarD": {"decadal-Lu"}},
		{},
		{"StarA": {"yearly-Lu"}},
		{}, {}, {},
	}
	for i, want := range wantFirst {
		if diff := cmp.Diff(TagMap(want), maps[i]); diff != "" {
			t.Errorf("maps[%d] mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestTagMaps_NilInputs(t *testing.T) {
	t.Parallel()

	maps := Chinese().TagMaps(nil, nil)
	for i, m := range maps {
		if len(m) != 0 {
			t.Errorf("maps[%d] = %v, want empty", i, m)
		}
	}
}

func TestTagMaps_ChineseVocabulary(t *testing.T) {
	t.Parallel()

	natal := &chart.Natal{Palaces: []chart.Palace{{MajorStars: []chart.Star{{Name: "太阳", Mutagen: "忌"}}}}}
	h := &chart.Horoscope{Yearly: &chart.Scope{Mutagen: []string{"太阳"}}}

	star := Annotate(chart.Star{Name: "太阳"}, Chinese().TagMaps(natal, h))
	want := []string{"本命忌", "流年禄"}
	if diff := cmp.Diff(want, star.Tags); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}
}

func TestVocabularyFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		lang    string
		natal   string
		wantErr bool
	}{
		{"", "natal-", false},
		{"en", "natal-", false},
		{"EN-US", "natal-", false},
		{"zh", "本命", false},
		{"zh-CN", "本命", false},
		{"fr", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			t.Parallel()
			v, err := VocabularyFor(tt.lang)
			if (err != nil) != tt.wantErr {
				t.Fatalf("VocabularyFor(%q) error = %v, wantErr %v", tt.lang, err, tt.wantErr)
			}
			if v.NatalPrefix != tt.natal {
				t.Errorf("NatalPrefix = %q, want %q", v.NatalPrefix, tt.natal)
			}
		})
	}
}

func TestVocabulary_FreshPerCall(t *testing.T) {
	t.Parallel()

	v := English()
	v.ScopePrefixes[chart.ScopeYearly] = "changed-"
	v.MutagenLabels[0] = "changed"

	again, err := VocabularyFor("en")
	if err != nil {
		t.Fatalf("VocabularyFor: %v", err)
	}
	if got := again.ScopePrefixes[chart.ScopeYearly]; got != "yearly-" {
		t.Errorf("yearly prefix = %q, want yearly-", got)
	}
	if got := again.MutagenLabels[0]; got != "Lu" {
		t.Errorf("first label = %q, want Lu", got)
	}

	kinds := chart.ScopeKinds()
	kinds[0] = chart.ScopeHourly
	if got := chart.ScopeKinds()[0]; got != chart.ScopeDecadal {
		t.Errorf("ScopeKinds()[0] = %s, want decadal", got)
	}
}
