package intake

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCalculateDefaults(t *testing.T) {
	res := Calculate(DefaultInput())
	require.Equal(t, 1618, res.BMR)
	require.Equal(t, 2507, res.Maintenance)
	require.Equal(t, 2256, res.Cut)
	require.Equal(t, 2758, res.Bulk)
	require.Equal(t, 126, res.Protein)
	require.Equal(t, 42, res.ProteinPerMeal)
}

func TestCalculateFemale(t *testing.T) {
	in := DefaultInput()
	in.Gender = Female
	res := Calculate(in)
	require.Equal(t, 2250, res.Maintenance)
	require.Equal(t, 2025, res.Cut)
	require.Equal(t, 2475, res.Bulk)
	require.Equal(t, 105, res.Protein)
	require.Equal(t, 35, res.ProteinPerMeal)
}

func TestCalculateActivityFactors(t *testing.T) {
	prev := 0
	for _, level := range Activities {
		in := DefaultInput()
		in.Activity = level.Value
		res := Calculate(in)
		require.Greater(t, res.Maintenance, prev, level.Value)
		prev = res.Maintenance
	}
}

func TestParseInput(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Input
	}{
		{name: "empty uses defaults", query: "", want: DefaultInput()},
		{
			name:  "values",
			query: "gender=female&weight=55&height=160&age=25&activity=light",
			want:  Input{Gender: Female, Weight: 55, Height: 160, Age: 25, Activity: Light},
		},
		{
			name:  "clamped",
			query: "weight=500&height=100&age=5",
			want:  Input{Gender: Male, Weight: WeightMax, Height: HeightMin, Age: AgeMin, Activity: Moderate},
		},
		{
			name:  "garbage falls back",
			query: "gender=other&weight=abc&height=NaN&age=+&activity=couch",
			want:  DefaultInput(),
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q, err := url.ParseQuery(tc.query)
			require.NoError(t, err)
			require.Equal(t, tc.want, ParseInput(q))
		})
	}
}

func TestInputQuery(t *testing.T) {
	in := Input{Gender: Female, Weight: 52.5, Height: 158, Age: 41, Activity: Athlete}
	require.Equal(t, in, ParseInput(in.Query()))
}

func TestActivityLabelKey(t *testing.T) {
	require.Equal(t, "intake.activity.moderate", Activities[2].LabelKey())
}
