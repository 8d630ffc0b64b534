package category

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapCategoryKnownLabels(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"Home, Garden & Interior", "Bolig, Have & Gør-det-selv"},
		{"  car & motor ", "Køretøjer & Transport"},
		{"HEALTH & BEAUTY", "Sport, Dyr, Outdoor, Sundhed & Beauty"},
		{"Fashion", "Tøj, Mode & Accessoires"},
		{"baby, børn og teenager", "Baby, Børn & Forældre"},
		{"Telephony & Internet", "Elektronik & Teknologi"},
		{"Telecom", "Telefoni, internet, Underholdning, Medie & Spil"},
		{"Food & Drink", "Mad, Drikke & Fest"},
		{"Games & Dating", "Dating & Voksen"},
		{"Travel & Accomodation", "Rejser & Oplevelser"},
		{"Work & Education", "Arbejde & Uddannelse"},
		{"Books & Art", "Bøger, Litteratur & Kunst"},
		{"Insurance & Pension", "Penge & Forsikring"},
		{"Payday loans", "Finans & Krypto"},
		{"Business-to-business", "B2B"},
		{"Gifts & Flowers", "Shopping & Gaver"},
		{"Research panels & surveys", "Undersøgelser & Markedsføring"},
		{"Non profit & charity", "Non-Profit & Velgørenhed"},
		{"Energy", "Energi & Utility"},
		{"Sustainable", "Bæredygtighed & Miljø"},
		{"Leadshare / Leadreward", "Lodtrækninger og Konkurrencer"},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, MapCategory(tt.label))
		})
	}
}

func TestMapCategoryUnknownFallsBackToDefault(t *testing.T) {
	for _, label := range []string{"", "   ", "pets", "home", "home & garden & more", "fashion!"} {
		assert.Equal(t, Default, MapCategory(label), "label %q", label)
	}
}

func TestMapCategoryIsExactMatchOnly(t *testing.T) {
	assert.Equal(t, Default, MapCategory("fashion and more"))
	assert.Equal(t, Default, MapCategory("sport"))
}

func TestTaxonomyLabelsAreDisjointAndLowerCase(t *testing.T) {
	seen := map[string]string{}
	for _, b := range taxonomy {
		for _, label := range b.labels {
			require.Equal(t, strings.ToLower(strings.TrimSpace(label)), label, "label must be stored normalized")
			prev, dup := seen[label]
			require.False(t, dup, "label %q in %q and %q", label, prev, b.name)
			seen[label] = b.name
		}
	}
	assert.Len(t, index, len(seen))
}

func TestBuildIndexPanicsOnOverlap(t *testing.T) {
	assert.Panics(t, func() {
		buildIndex([]bucket{
			{"A", []string{"x"}},
			{"B", []string{"x"}},
		})
	})
}

func TestEveryLabelMapsToADeclaredBucket(t *testing.T) {
	buckets := map[string]bool{}
	for _, b := range Buckets() {
		buckets[b] = true
	}
	for _, b := range taxonomy {
		for _, label := range b.labels {
			got := MapCategory(label)
			assert.True(t, buckets[got])
			assert.Equal(t, got, MapCategory(label), "mapping must be deterministic")
		}
	}
}

func TestBucketsEndsWithDefault(t *testing.T) {
	all := Buckets()
	require.Len(t, all, len(taxonomy)+1)
	assert.Equal(t, Default, all[len(all)-1])
	assert.Equal(t, "Bolig, Have & Gør-det-selv", all[0])
}

func TestRepairEncoding(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"ascii untouched", "Sport & Fitness", "Sport & Fitness"},
		{"correct danish untouched", "Bøger og kunst", "Bøger og kunst"},
		{"double encoded oe", "BÃ¸ger og kunst", "Bøger og kunst"},
		{"double encoded ae and aa", "MÃ¦rker pÃ¥ tÃ¸j", "Mærker på tøj"},
		{"upper case via replacement", "Ã˜kologi", "Økologi"},
		{"AE via replacement", "Ã†bler", "Æbler"},
		{"AA via replacement", "Ã…rhus", "Århus"},
		{"non latin input", "日本語", "日本語"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RepairEncoding(tt.in))
		})
	}
}

func TestRepairEncodingIsIdempotentOnCorrectText(t *testing.T) {
	inputs := []string{
		"Bolig, have og interiør",
		"Tøj og accessories",
		"Café Ærø Å",
		"plain ascii",
		"emoji 🎉 text",
	}
	for _, in := range inputs {
		once := RepairEncoding(in)
		assert.Equal(t, in, once)
		assert.Equal(t, once, RepairEncoding(once))
	}
}

func TestNormalizeRepairsBeforeMapping(t *testing.T) {
	repaired, mapping := Normalize("TÃ¸j og accessories")
	assert.Equal(t, "Tøj og accessories", repaired)
	assert.Equal(t, "Tøj, Mode & Accessoires", mapping)
}
